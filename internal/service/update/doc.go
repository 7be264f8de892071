// Package update wires the settings file and command-line options onto the
// update coordinator.
//
// It is the glue behind the stepladder commands: loading configuration,
// choosing the fetcher and manifest cache, attaching progress logging, and
// turning run results into log output.
package update

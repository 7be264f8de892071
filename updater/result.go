package updater

import "github.com/stepladder-dev/stepladder/install"

// RunOptions tunes a single call to Update. A nil value means a real run.
type RunOptions struct {
	// Simulate exercises the whole pipeline, including downloads, but probes
	// installations instead of writing file contents.
	Simulate bool
}

// Result describes how an update run ended.
type Result struct {
	// Status is the run's terminal status.
	Status Status
	// Applied lists the versions finished during the run, in apply order.
	// In a simulate run these are the versions that probed clean.
	Applied []string
	// Reports maps versions to their per-entry traces. Populated only for
	// simulate runs; real runs log the trace instead of returning it.
	Reports map[string]*install.Report
}

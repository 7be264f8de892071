// Package fetch retrieves release artifacts by URL.
//
// Two strategies are provided: HTTPFetcher for http and https URLs and
// FileFetcher, a plain byte-stream opener for file URLs and local paths.
// Default wires both behind a scheme mux so callers never pick a strategy
// by hand. Every strategy validates the URL before doing any I/O.
package fetch

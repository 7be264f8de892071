package version

import "fmt"

var (
	// Version is the release the binary was built from. Set via ldflags.
	Version = "0.0.0-dev"
	// Commit is the short git SHA recorded at build time.
	Commit = "none"
	// BuildTime is the UTC timestamp recorded at build time.
	BuildTime = "unknown"
)

// Short returns just the version number.
func Short() string {
	return Version
}

// Full renders the version with its build metadata for CLI output.
func Full() string {
	return fmt.Sprintf("stepladder %s (commit %s, built %s)", Version, Commit, BuildTime)
}

// UserAgent identifies this build in outgoing HTTP requests.
func UserAgent() string {
	return "stepladder/" + Version
}

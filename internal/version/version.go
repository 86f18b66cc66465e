// Package version holds build metadata injected at link time:
// go build -ldflags "-X git.home.luguber.info/inful/navindex/internal/version.Version=v0.3.0".
package version

import "fmt"

// Version is the navindex release.
var Version = "dev"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders version, commit and build time on one line.
func String() string {
	return fmt.Sprintf("navindex %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}

// Package version holds build metadata injected with -ldflags.
package version

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/bissquit/statuspage/internal/version.Version=1.2.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return Version + " (" + GitCommit + ", " + BuildDate + ")"
}

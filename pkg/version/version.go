// Package version holds build-time version information.
package version

var (
	// Version is the semantic version, set at build time with -ldflags.
	Version = "dev"
	// GitCommit is the git commit hash, set at build time with -ldflags.
	GitCommit = "unknown"
)

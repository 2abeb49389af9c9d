// Package buildinfo holds version information stamped at build time.
package buildinfo

// Version is overridden at release time with
// -ldflags "-X github.com/silver2dream/build-utils/internal/buildinfo.Version=v1.2.3".
var Version = "dev"

// String returns the version line printed by every tool's --version flag.
func String(tool string) string {
	return tool + " " + Version
}

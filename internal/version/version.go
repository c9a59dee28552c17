// Package version holds the build version stamped by the release
// pipeline via -ldflags.
package version

var Version = "dev"

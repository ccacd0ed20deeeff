// Package version carries build information for the framegraph binary.
//
// Version, commit, branch, and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/framegraph/version.Version=1.0.0" ./cmd/framegraph
//
// Unset values fall back to the VCS stamps in runtime/debug build info.
package version

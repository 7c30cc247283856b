// Package version holds build information injected at link time.
package version

import "runtime"

// Set via -ldflags at build time, e.g.
//
//	go build -ldflags "-X github.com/survaize/survaize/version.GitRelease=v0.3.0"
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
)

// GoInfo reports the Go toolchain the binary was built with.
var GoInfo = runtime.Version()

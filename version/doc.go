// Package version reports build information.
//
// Version, commit, branch and build time are set with -ldflags; anything
// left unset is filled from the module build info:
//
//	go build -ldflags "-X github.com/kbukum/scenedi/version.Version=1.0.0" ./cmd/scenedi-demo
package version

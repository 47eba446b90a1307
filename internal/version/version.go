// Package version records the build version stamped at link time.
package version

// Version is overridden via -ldflags at release build time.
var Version = "0.1.0-dev"

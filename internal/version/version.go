// Package version reports the build version of commander-forge.
// Release builds set it with:
//
//	go build -ldflags "-X github.com/ramonehamilton/commander-forge/internal/version.Version=v1.0.0"
package version

import "runtime/debug"

// Version is the application version, "dev" unless set at build time.
var Version = "dev"

// GetVersion returns the build version. Development builds fall back to the
// module version recorded by the Go toolchain when one is available.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

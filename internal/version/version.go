// Package version exposes build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/rbright/jarvis/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// String reports the version line printed by `jarvis version`.
func String() string {
	return fmt.Sprintf("jarvis %s (commit=%s, date=%s, go=%s)", resolved(), Commit, Date, runtime.Version())
}

// resolved falls back to the module version recorded by `go install` when
// no version was linked in.
func resolved() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// Package version reports how the drivermatch binary was built. Release
// builds set the variables below with -ldflags; other builds fall back to
// the module and VCS data the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags "-X github.com/HerbHall/drivermatch/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// ModulePath is reported when the binary carries no build info.
const ModulePath = "github.com/HerbHall/drivermatch"

// Build describes the running binary.
type Build struct {
	Module    string
	Version   string
	Commit    string
	Date      string
	Modified  bool
	GoVersion string
}

// Current resolves the build description. ldflags values win; unset fields
// are filled from the embedded VCS stamp when one exists.
func Current() Build {
	b := Build{
		Module:    ModulePath,
		Version:   Version,
		Commit:    GitCommit,
		Date:      BuildDate,
		GoVersion: runtime.Version(),
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if info.Main.Path != "" {
		b.Module = info.Main.Path
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "unknown" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.Date == "unknown" {
				b.Date = s.Value
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	return b
}

// Info is the one-line form printed by "drivermatch version".
func Info() string {
	b := Current()
	commit := b.Commit
	if b.Modified {
		commit += "+dirty"
	}
	return fmt.Sprintf("drivermatch %s (%s, commit: %s, built: %s, go: %s, %s/%s)",
		b.Version, b.Module, commit, b.Date, b.GoVersion, runtime.GOOS, runtime.GOARCH)
}

// Short returns the release version, "dev" for local builds.
func Short() string {
	return Version
}

// Map is the build description embedded in the /health response.
func Map() map[string]string {
	b := Current()
	return map[string]string{
		"service":    "drivermatch",
		"module":     b.Module,
		"version":    b.Version,
		"git_commit": b.Commit,
		"build_date": b.Date,
		"modified":   fmt.Sprint(b.Modified),
		"go_version": b.GoVersion,
		"platform":   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Build-time variables injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	if bi, ok := debug.ReadBuildInfo(); ok {
		applyBuildInfo(bi)
	}
}

// String renders the one-line version banner printed by `domainintel version`.
func String() string {
	return fmt.Sprintf("domainintel %s (commit %s, built %s)", Version, Commit, Date)
}

// applyBuildInfo fills in values that ldflags left at their defaults.
// ldflags always win.
func applyBuildInfo(bi *debug.BuildInfo) {
	if Version == "dev" {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			Version = strings.TrimPrefix(v, "v")
		}
	}

	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; Commit == "none" && rev != "" {
		if len(rev) > 7 {
			rev = rev[:7]
		}
		Commit = rev
	}
	if t := settings["vcs.time"]; Date == "unknown" && t != "" {
		Date = t
	}
}

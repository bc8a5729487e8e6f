package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
)

// Set by -ldflags "-X github.com/zxhio/arpresolve/pkg/builder.Version=...".
var (
	Version   = "unknown"
	Commit    = "unknown"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	fillFromBuildInfo(info)
}

// fillFromBuildInfo takes the module version and VCS stamps of `go install`
// builds for the fields not set by the linker.
func fillFromBuildInfo(info *debug.BuildInfo) {
	if Version == "unknown" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "unknown" && len(s.Value) >= 7 {
				Commit = s.Value[:7]
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = s.Value
			}
		}
	}
}

func BuildInfo() string {
	return fmt.Sprintf("%s %s (%s %s) %s", filepath.Base(os.Args[0]), Version, Commit, Date, GoVersion)
}

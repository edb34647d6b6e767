package main

import (
	"runtime/debug"

	"github.com/broady/byname/bynamegen"
)

// HeaderVersion is the version written into generated files. It leaves out
// VCS details so that regenerating at another commit is a no-op.
func HeaderVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "v" + bynamegen.Version
}

// Version returns the module version when installed with go install, and
// "devel-<bynamegen.Version>" plus the VCS revision, if known, for local builds.
func Version() string {
	base := bynamegen.Version

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return base
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return "devel-" + base + "+" + s.Value[:7]
		}
	}
	return "devel-" + base
}

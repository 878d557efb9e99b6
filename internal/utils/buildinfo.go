package utils

import (
	"runtime/debug"
	"strings"
)

const (
	unknownVersion     = "unknown"
	develBuildVersion  = "(devel)"
	vcsRevisionSetting = "vcs.revision"
	vcsModifiedSetting = "vcs.modified"
	shortRevisionSize  = 12
	dirtySuffix        = "-dirty"
)

// Version is set at link time with -ldflags "-X github.com/temirov/ctxt/internal/utils.Version=v1.2.3".
var Version = ""

// GetApplicationVersion returns the linked version, the module version recorded in
// the build info, or the VCS revision the binary was built from, in that order.
func GetApplicationVersion() string {
	if trimmed := strings.TrimSpace(Version); trimmed != "" {
		return trimmed
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return unknownVersion
	}
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != develBuildVersion {
		return buildInfo.Main.Version
	}
	return revisionFromSettings(buildInfo.Settings)
}

func revisionFromSettings(settings []debug.BuildSetting) string {
	var revision string
	var modified bool
	for _, setting := range settings {
		switch setting.Key {
		case vcsRevisionSetting:
			revision = setting.Value
		case vcsModifiedSetting:
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return unknownVersion
	}
	if len(revision) > shortRevisionSize {
		revision = revision[:shortRevisionSize]
	}
	if modified {
		revision += dirtySuffix
	}
	return revision
}

// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version, set for releases.
	Version = "0.1.0-dev"
)

// buildInfo is the subset of the embedded build information Info uses.
type buildInfo struct {
	moduleVersion string
	revision      string
	modified      bool
	time          string
}

func readBuildInfo() (buildInfo, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return buildInfo{}, false
	}
	result := buildInfo{moduleVersion: info.Main.Version}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			result.revision = setting.Value
		case "vcs.modified":
			result.modified = setting.Value == "true"
		case "vcs.time":
			result.time = setting.Value
		}
	}
	return result, true
}

// Info returns a formatted version string suitable for --version output.
func Info() string {
	embedded, _ := readBuildInfo()
	return format(embedded)
}

func format(embedded buildInfo) string {
	version, commit, dirty, built := Version, GitCommit, GitDirty == "true", BuildTime
	if version == "0.1.0-dev" && embedded.moduleVersion != "" && embedded.moduleVersion != "(devel)" {
		version = embedded.moduleVersion
	}
	if commit == "unknown" && embedded.revision != "" {
		commit = embedded.revision
		if len(commit) > 12 {
			commit = commit[:12]
		}
		dirty = embedded.modified
	}
	if built == "unknown" && embedded.time != "" {
		built = embedded.time
	}
	suffix := ""
	if dirty {
		suffix = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", version, commit, suffix, built)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version number.
func Short() string {
	return Version
}

// SPDX-License-Identifier: MIT
//
// Package build carries the metadata embedded into the waveform binary at
// link time: application name, build timestamp, Git commit hash and semantic
// version. Set them with
//
//	go build -ldflags "-X waveform/pkg/build.buildName=waveform \
//	  -X waveform/pkg/build.buildTime=$(date -u +%FT%TZ) \
//	  -X waveform/pkg/build.buildCommit=$(git rev-parse --short HEAD) \
//	  -X waveform/pkg/build.buildVersion=v0.1.0"
package build

import "fmt"

// Description is the one line summary shown by the command line help.
const Description = "Real-time audio spectrum analyser and level meter"

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Package-level variables for build information. These are populated by -ldflags
// during compilation. Default values of "unknown" are used during development.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:        "waveform",
		Description: Description,
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "unknown",
	}
)

// Initialize validates and copies build information from ldflags variables
// into the buildFlags struct. Returns an error if any required build flag is
// missing, in which case the development defaults stay in place.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// String formats the build information for the info command.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}

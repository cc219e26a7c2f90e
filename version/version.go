package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// Build information. These variables are set at build time via ldflags.
var (
	// CommitHash is the git commit hash when the binary was built
	CommitHash = "dev"

	// BuildTime is when the binary was built
	BuildTime = "unknown"

	// Version is the semantic version (if tagged)
	Version = "dev"
)

// Info contains version and build information
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	return fmt.Sprintf("azsku %s (commit %s, built %s)", i.Version, i.Short(), i.BuildTime)
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// Compatible reports whether fingerprints recorded by the extractor version
// stored can be compared with those produced by current. The canonical record
// layout only changes on a major release, so any current >= stored within the
// same major version qualifies. Non-semver versions (dev builds) are only
// compatible with an identical string.
func Compatible(stored, current string) bool {
	if stored == current {
		return true
	}
	storedVer, err := semver.NewVersion(stored)
	if err != nil {
		return false
	}
	currentVer, err := semver.NewVersion(current)
	if err != nil {
		return false
	}
	constraint, err := semver.NewConstraint(fmt.Sprintf("^%s", storedVer.String()))
	if err != nil {
		return false
	}
	return constraint.Check(currentVer)
}

package domain

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// MinimumGitVersion is the oldest git release the sync workflow relies on.
const MinimumGitVersion = ">= 2.20.0"

var gitVersionRegex = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// Version wraps semver.Version for additional methods.
type Version struct {
	*semver.Version
}

// NewVersion creates a new Version from a string.
func NewVersion(s string) (*Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, err
	}
	return &Version{v}, nil
}

// ParseGitVersion extracts the version from `git --version` output such as
// "git version 2.39.2.windows.1" or "git version 2.39.3 (Apple Git-145)".
func ParseGitVersion(output string) (*Version, error) {
	m := gitVersionRegex.FindStringSubmatch(output)
	if m == nil {
		return nil, fmt.Errorf("no version found in %q", output)
	}
	patch := m[3]
	if patch == "" {
		patch = "0"
	}
	return NewVersion(fmt.Sprintf("%s.%s.%s", m[1], m[2], patch))
}

// Satisfies reports whether the version matches the given constraint.
func (v *Version) Satisfies(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}
	return c.Check(v.Version), nil
}

// Compare compares two versions.
func (v *Version) Compare(other *Version) int {
	return v.Version.Compare(other.Version)
}

// String returns the version string with v prefix.
func (v *Version) String() string {
	return "v" + v.Version.String()
}

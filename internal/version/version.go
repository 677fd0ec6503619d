package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

func (vt VersionType) String() string {
	return string(vt)
}

// VersionType represents a semantic version bump level
type VersionType string

const (
	Patch VersionType = "Patch"
	Minor VersionType = "Minor"
	Major VersionType = "Major"
)

// ParseVersionType converts a string like "major" into a VersionType enum
func ParseVersionType(s string) (VersionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return Major, nil
	case "minor":
		return Minor, nil
	case "patch":
		return Patch, nil
	default:
		return "", fmt.Errorf("invalid bump type: %q. Must be one of: major, minor, patch", s)
	}
}

// Increment returns v bumped by the given level.
// A pre-release patch bump drops the pre-release (1.2.3-rc.1 -> 1.2.3).
func Increment(v *semver.Version, bump VersionType) (semver.Version, bool) {
	switch bump {
	case Major:
		return v.IncMajor(), true
	case Minor:
		return v.IncMinor(), true
	case Patch:
		return v.IncPatch(), true
	default:
		return *v, false
	}
}

// Next builds the version that follows lastTag.
//
//   - lastTag is "<prefix><semver>", prefix is stripped before parsing
//   - PR builds get "<prefix><next>-<sha[:7]>"; an unknown bump keeps the
//     current version instead of failing
//   - other builds get "<prefix><next>" and require a valid bump
func Next(lastTag, prefix string, bump VersionType, isPR bool, sha string) (string, error) {
	core := strings.TrimPrefix(lastTag, prefix)
	current, err := semver.NewVersion(core)
	if err != nil {
		return "", errors.Wrapf(err, "invalid semver: %s", core)
	}

	next, ok := Increment(current, bump)
	if isPR {
		if !ok {
			next = *semver.New(current.Major(), current.Minor(), current.Patch(), "", "")
		}
		return fmt.Sprintf("%s%s-%s", prefix, next.String(), shortSHA(sha)), nil
	}
	if !ok {
		return "", errors.Errorf("failed to increment version: %s. Invalid increment type: %q", core, bump)
	}
	return prefix + next.String(), nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// internal/tags/kind.go
//
// Version classification. Every version string falls into exactly one
// VersionKind; the order of the checks in Classify is the priority order
// and must not be shuffled. Assembly (generate.go) dispatches on the kind.

package tags

import (
	"regexp"
	"strings"
)

// VersionKind is the closed set of version shapes the generator knows about.
type VersionKind int

const (
	// KindLatest is the literal "latest" (or an empty version).
	KindLatest VersionKind = iota
	// KindImmutable covers SHAs and channel names: sha-*, 20-40 hex chars,
	// main, master, release-candidate.
	KindImmutable
	// KindPreRelease is anything mentioning alpha, beta or rc.
	KindPreRelease
	// KindSuffixed is a *_prod / *-prod / *-feature-* build.
	KindSuffixed
	// KindAppName is <app>-<numeric version>, e.g. api-1.2.3.
	KindAppName
	// KindDate is YYYYMMDD, YYYY.MM.DD or vYYYY.MM.DD.
	KindDate
	// KindSemver is an optionally v-prefixed dotted-numeric version.
	KindSemver
	// KindOpaque is everything else. Emitted as-is, nothing derived.
	KindOpaque
)

var kindNames = map[VersionKind]string{
	KindLatest:     "latest",
	KindImmutable:  "immutable",
	KindPreRelease: "pre-release",
	KindSuffixed:   "suffixed",
	KindAppName:    "app-name",
	KindDate:       "date",
	KindSemver:     "semver",
	KindOpaque:     "opaque",
}

func (k VersionKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

var (
	hexSHA   = regexp.MustCompile(`^[0-9a-f]{20,40}$`)
	numeric  = regexp.MustCompile(`^v?\d+(\.\d+)*$`)
	dateLike = regexp.MustCompile(`^(?:\d{8}|v?\d{4}\.\d{2}\.\d{2})$`)
)

// Classify maps a raw version string onto its VersionKind.
func Classify(version string) VersionKind {
	v := strings.TrimSpace(version)
	switch {
	case v == "" || v == "latest":
		return KindLatest
	case isImmutable(v):
		return KindImmutable
	case isPreRelease(v):
		return KindPreRelease
	case strings.HasSuffix(v, "_prod") || strings.HasSuffix(v, "-prod") || strings.Contains(v, "-feature-"):
		return KindSuffixed
	case isAppName(v):
		return KindAppName
	case dateLike.MatchString(v):
		return KindDate
	case numeric.MatchString(v):
		return KindSemver
	default:
		return KindOpaque
	}
}

func isImmutable(v string) bool {
	switch v {
	case "main", "master", "release-candidate":
		return true
	}
	return strings.HasPrefix(v, "sha-") || hexSHA.MatchString(v)
}

func isPreRelease(v string) bool {
	lower := strings.ToLower(v)
	return strings.Contains(lower, "alpha") ||
		strings.Contains(lower, "beta") ||
		strings.Contains(lower, "rc")
}

func isAppName(v string) bool {
	app, ver, ok := splitAppVersion(v)
	return ok && app != "" && numeric.MatchString(ver)
}

// splitAppVersion cuts "<app>-<version>" at the last hyphen.
func splitAppVersion(v string) (app, ver string, ok bool) {
	i := strings.LastIndexByte(v, '-')
	if i < 0 {
		return "", "", false
	}
	return v[:i], v[i+1:], true
}

package version

import (
	"regexp"
	"sort"
	"strings"

	"github.com/woozymasta/semver"
)

// LatestTag picks the highest tag and the prefix new versions should use.
//
// No tags yields "<prefix or v>0.0.0". Without an explicit prefix, "v" is
// inferred when every tag starts with it. Tags are ranked by the numeric core
// in front of the first "-"; on a tie a release beats a pre-release.
// When the winner looks like "<prefix><app>-<ver>", the prefix widens to
// include "<app>-". A trailing pre-release such as "-abc1234" does not count.
func LatestTag(tags []string, prefix string) (string, string) {
	if len(tags) == 0 {
		return orV(prefix) + "0.0.0", orV(prefix)
	}

	if prefix == "" && allHavePrefix(tags, "v") {
		prefix = "v"
	}

	filtered := tags
	if prefix != "" {
		filtered = make([]string, 0, len(tags))
		for _, t := range tags {
			if strings.HasPrefix(t, prefix) {
				filtered = append(filtered, t)
			}
		}
	}
	if len(filtered) == 0 {
		return orV(prefix) + "0.0.0", orV(prefix)
	}

	type ranked struct {
		tag string
		ver semver.Semver
		pre bool
	}
	rs := make([]ranked, 0, len(filtered))
	for _, t := range filtered {
		rest := strings.TrimLeft(strings.TrimPrefix(t, prefix), "-")
		parts := strings.SplitN(rest, "-", 2)
		rs = append(rs, ranked{tag: t, ver: coerce(parts[0]), pre: len(parts) > 1})
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if c := rs[i].ver.Compare(rs[j].ver); c != 0 {
			return c > 0
		}
		return !rs[i].pre && rs[j].pre
	})

	last := rs[0].tag
	if prefix != "" && !strings.HasSuffix(prefix, "-") && strings.Contains(last, "-") {
		i := strings.LastIndex(last, "-")
		if actual := last[:i+1]; strings.HasPrefix(actual, prefix) && leadingCore.MatchString(last[i+1:]) {
			prefix = actual
		}
	}
	return last, prefix
}

var (
	zero, _     = semver.Parse("0.0.0")
	leadingCore = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?`)
	anyCore     = regexp.MustCompile(`(\d+)(?:\.(\d+))?(?:\.(\d+))?`)
)

// coerce reads the first X[.Y[.Z]] found in s as X.Y.Z, so "api1.2" ranks as
// 1.2.0. Without digits s ranks as 0.0.0.
func coerce(s string) semver.Semver {
	m := anyCore.FindStringSubmatch(s)
	if m == nil {
		return zero
	}
	for i := 2; i <= 3; i++ {
		if m[i] == "" {
			m[i] = "0"
		}
	}
	if v, ok := semver.Parse(m[1] + "." + m[2] + "." + m[3]); ok && v.IsValid() {
		return v
	}
	return zero
}

func allHavePrefix(tags []string, prefix string) bool {
	for _, t := range tags {
		if !strings.HasPrefix(t, prefix) {
			return false
		}
	}
	return true
}

func orV(prefix string) string {
	if prefix == "" {
		return "v"
	}
	return prefix
}

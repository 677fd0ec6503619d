// internal/tags/generate.go
//
// Generate turns (image, version, branch, registries) into the ordered tag
// list pushed for one build.
//
// Rules per VersionKind:
//   - latest      → :latest only
//   - immutable   → :<version> (sha, main, master, release-candidate)
//   - pre-release → :<version>
//   - suffixed    → :<version> (*_prod, *-prod, *-feature-*)
//   - app-name    → :<app>-<ver> [ + :<app>-latest ] + :<app>-<maj>.<min>, :<app>-<maj>
//   - date        → :<version> [ + :latest ]
//   - semver      → :<version> [ + :latest ] + :<maj>.<min>, :<maj>
//   - opaque      → :<version>
//
// The branch label (pr-<n> for PRs, never main/master) follows the exact tag
// for every kind. Bracketed latest tags need WithLatest. A PR build is pinned
// like an immutable one: exact tag and pr-<n> only, no latest, no cascades,
// and a branch literally named latest is dropped.
// Zero-major versions never cascade.
//
// Nothing here fails: odd input degrades to fewer tags, never to none.

package tags

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Options is the input of Generate.
type Options struct {
	Image      string   // base image name without tag
	Version    string   // raw version; empty means "latest"
	Branch     string   // branch name or PR number; empty when unknown
	Registries []string // registry hosts, each adds a qualified copy of every tag
	WithLatest bool     // allow latest / <app>-latest

	Target        string // build target
	PrependTarget bool   // prefix every label with "<target>-"
}

// Generate returns the deduplicated tags for opts in emission order.
func Generate(opts Options, log *zap.Logger) []string {
	if log == nil {
		log = zap.NewNop()
	}

	image := cleanImage(opts.Image, log)
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "latest"
	}

	set := NewTagSet(image, targetPrefix(opts, log), opts.Registries)

	if !set.Add(version) {
		log.Warn("Version is not usable as a tag, falling back to latest", zap.String("version", version))
		version = "latest"
		set.Add(version)
	}

	isPR := IsPullRequest(opts.Branch)
	kind := Classify(version)
	log.Debug("Classified version", zap.String("version", version), zap.Stringer("kind", kind))

	// Pinned builds get the exact tag and the branch tag, nothing that moves.
	pinned := isPR || kind == KindImmutable || kind == KindPreRelease || kind == KindSuffixed

	if branch := SanitizeBranch(opts.Branch); branch != "" {
		switch {
		case branch == "main" || branch == "master":
			log.Debug("Skipping branch tag for default branch", zap.String("branch", branch))
		case pinned && branch == "latest":
			log.Info("Skipping latest branch tag for pinned build", zap.String("version", version))
		default:
			set.Add(branch)
		}
	}

	if kind == KindLatest {
		return set.Tags()
	}
	if pinned {
		log.Info("Skipping latest and cascading tags",
			zap.String("version", version), zap.Stringer("kind", kind), zap.Bool("pr", isPR))
		return set.Tags()
	}

	switch kind {
	case KindOpaque:
		log.Info("Skipping latest and cascading tags", zap.String("version", version), zap.Stringer("kind", kind))
	case KindAppName:
		app, ver, _ := splitAppVersion(version)
		if opts.WithLatest {
			set.Add(app + "-latest")
		}
		for _, c := range cascades(ver) {
			if label := app + "-" + c; label != version {
				set.Add(label)
			}
		}
	case KindDate:
		if opts.WithLatest {
			set.Add("latest")
		}
	case KindSemver:
		if opts.WithLatest {
			set.Add("latest")
		}
		for _, c := range cascades(version) {
			if c != version {
				set.Add(c)
			}
		}
	}

	return set.Tags()
}

// cascades derives the major.minor and major labels of a dotted-numeric
// version, keeping its v prefix. Single-segment and zero-major versions
// produce nothing.
func cascades(version string) []string {
	prefix := ""
	if strings.HasPrefix(version, "v") {
		prefix = "v"
	}
	parts := strings.Split(strings.TrimPrefix(version, "v"), ".")
	if len(parts) < 2 {
		return nil
	}
	if major, err := strconv.Atoi(parts[0]); err != nil || major == 0 {
		return nil
	}

	var out []string
	if len(parts) > 2 {
		out = append(out, prefix+parts[0]+"."+parts[1])
	}
	return append(out, prefix+parts[0])
}

func targetPrefix(opts Options, log *zap.Logger) string {
	if !opts.PrependTarget {
		return ""
	}
	target := sanitizeLabel(opts.Target)
	if target == "" {
		log.Warn("Target prepending enabled but no target provided, skipping target prefix")
		return ""
	}
	return target + "-"
}

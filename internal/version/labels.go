package version

import (
	"go.uber.org/zap"
)

// Labels maps PR label names onto bump levels.
type Labels struct {
	Major string
	Minor string
	Patch string
}

// DefaultLabels mirrors the label names the workflows use.
var DefaultLabels = Labels{Major: "major", Minor: "minor", Patch: "patch"}

// ResolveFromLabels picks the bump level from PR labels.
// Major wins over Minor over Patch; no match means Patch.
func ResolveFromLabels(labels []string, names Labels, log *zap.Logger) VersionType {
	if log == nil {
		log = zap.NewNop()
	}
	if len(labels) == 0 {
		log.Info("No labels found, defaulting to patch increment")
		return Patch
	}
	log.Info("Checking labels",
		zap.Strings("labels", labels),
		zap.String("major", names.Major),
		zap.String("minor", names.Minor),
		zap.String("patch", names.Patch),
	)

	has := make(map[string]bool, len(labels))
	for _, l := range labels {
		has[l] = true
	}

	bump := Patch
	switch {
	case names.Major != "" && has[names.Major]:
		bump = Major
	case names.Minor != "" && has[names.Minor]:
		bump = Minor
	case names.Patch != "" && has[names.Patch]:
		bump = Patch
	default:
		log.Info("No matching semver labels found, using default patch increment")
	}
	log.Info("Resolved increment", zap.Stringer("increment", bump))
	return bump
}

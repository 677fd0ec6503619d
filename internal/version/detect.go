package version

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const tagRefPrefix = "refs/tags/"

// LabelSource looks up pull request labels.
type LabelSource interface {
	Labels(ctx context.Context, number int) ([]string, error)
	CommitLabels(ctx context.Context, sha string) ([]string, bool, error)
}

// TagSource lists the repository's tags.
type TagSource interface {
	ListTags(ctx context.Context) ([]string, error)
}

// DetectInput is what DetectIncrement needs to know about the run.
type DetectInput struct {
	Explicit string
	IsPR     bool
	PRNumber int
	SHA      string
}

// DetectIncrement decides the bump level.
//
// An explicit increment wins. Otherwise PR events read the PR's labels and
// pushes read the labels of the PR the commit was merged from. Lookup
// failures are logged and fall back to Patch.
func DetectIncrement(ctx context.Context, in DetectInput, src LabelSource, names Labels, log *zap.Logger) (VersionType, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if in.Explicit != "" {
		bump, err := ParseVersionType(in.Explicit)
		if err != nil {
			return "", errors.WithStack(err)
		}
		log.Info("Using explicit increment", zap.Stringer("increment", bump))
		return bump, nil
	}
	if src == nil {
		log.Warn("No label source configured, defaulting to patch increment")
		return Patch, nil
	}

	var labels []string
	switch {
	case in.IsPR && in.PRNumber > 0:
		l, err := src.Labels(ctx, in.PRNumber)
		if err != nil {
			log.Warn("Failed to get PR labels", zap.Int("pr", in.PRNumber), zap.Error(err))
			return Patch, nil
		}
		labels = l
	case in.SHA != "":
		l, ok, err := src.CommitLabels(ctx, in.SHA)
		if err != nil {
			log.Warn("Failed to get associated PR labels", zap.String("sha", in.SHA), zap.Error(err))
			return Patch, nil
		}
		if !ok {
			log.Info("No PR associated with commit", zap.String("sha", in.SHA))
		}
		labels = l
	}
	return ResolveFromLabels(labels, names, log), nil
}

// ResolveLastTag returns the tag the next version is derived from and the
// prefix to build it with.
//
// A tag ref returns that tag. A non-empty base wins over the repository's
// tags. Otherwise the tags are listed and ranked with LatestTag.
func ResolveLastTag(ctx context.Context, ref, base, prefix string, src TagSource, log *zap.Logger) (string, string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if tag, ok := strings.CutPrefix(ref, tagRefPrefix); ok {
		log.Info("Running on a tag", zap.String("tag", tag))
		return tag, prefix, nil
	}
	if base != "" {
		log.Info("Using base version", zap.String("base", base))
		return base, prefix, nil
	}
	if src == nil {
		return "", "", errors.New("no tag source configured and no base version given")
	}

	tags, err := src.ListTags(ctx)
	if err != nil {
		return "", "", errors.Wrap(err, "listing tags")
	}
	last, p := LatestTag(tags, prefix)
	log.Info("Resolved last tag", zap.String("tag", last), zap.String("prefix", p), zap.Int("candidates", len(tags)))
	return last, p, nil
}

// NextForRef is Next, except that a run on refs/tags/<t> yields <t> itself.
func NextForRef(ref, lastTag, prefix string, bump VersionType, isPR bool, sha string) (string, error) {
	if tag, ok := strings.CutPrefix(ref, tagRefPrefix); ok {
		return tag, nil
	}
	return Next(lastTag, prefix, bump, isPR, sha)
}

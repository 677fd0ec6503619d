package runtime

import (
	"go.uber.org/zap"
)

// DefaultCanaryLabel is the PR label that publishes canary images.
const DefaultCanaryLabel = "canary"

// ShouldPush decides whether the built image is published.
// We push when:
//   - force is set
//   - the ref is a tag
//   - it is a push event on the default branch
//   - it is a pull request carrying canaryLabel
func ShouldPush(ctx Context, canaryLabel string, force bool, log *zap.Logger) bool {
	if log == nil {
		log = zap.NewNop()
	}
	if canaryLabel == "" {
		canaryLabel = DefaultCanaryLabel
	}
	log = log.With(
		zap.String("event", ctx.EventName),
		zap.String("ref", ctx.Ref),
		zap.String("defaultBranch", ctx.DefaultBranch),
	)

	switch {
	case force:
		log.Info("Force push is enabled, will push image")
		return true
	case ctx.IsTag():
		log.Info("Push event for a tag, will push image")
		return true
	case ctx.EventName == "push" && ctx.IsDefaultBranch():
		log.Info("Push to default branch, will push image")
		return true
	case ctx.IsPullRequest():
		if ctx.HasLabel(canaryLabel) {
			log.Info("PR has canary label, will push image", zap.String("label", canaryLabel))
			return true
		}
		log.Info("PR does not have canary label, skipping push", zap.String("label", canaryLabel))
		return false
	}
	log.Info("No push conditions met, skipping push")
	return false
}

// internal/docker/plan.go
//
// The planner converts the facts inputs + GitHub context into a Plan:
// where to build from (compose or fallback), which tags to apply and
// whether to push. This is the "brains" of the facts step.
//
//   - dockerfile / context / target / args → compose.Resolve
//   - tags                                 → tags.Generate
//   - push                                 → runtime.ShouldPush

package docker

import (
	"go.uber.org/zap"

	"github.com/mbround18/gh-reusable/internal/compose"
	"github.com/mbround18/gh-reusable/internal/runtime"
	"github.com/mbround18/gh-reusable/internal/tags"
)

// FactsInput are the facts action inputs.
type FactsInput struct {
	Image      string
	Version    string
	Registries []string
	Dockerfile string
	Context    string
	Target     string
	Workspace  string

	CanaryLabel   string
	ForcePush     bool
	WithLatest    bool
	PrependTarget bool
}

// Plan is the output of the planner.
type Plan struct {
	Dockerfile string
	Context    string
	Target     string
	BuildArgs  compose.Args // exported as BUILD_ARG_<KEY>

	Tags []string
	Push bool
}

// PlanBuild turns the inputs and context into a Plan.
func PlanBuild(rc runtime.Context, in FactsInput, log *zap.Logger) Plan {
	if log == nil {
		log = zap.NewNop()
	}

	res := compose.Resolve(compose.Options{
		Workspace:  in.Workspace,
		Image:      in.Image,
		Dockerfile: in.Dockerfile,
		Context:    in.Context,
		Target:     in.Target,
	}, log.Named("compose"))

	refs := tags.Generate(tags.Options{
		Image:         in.Image,
		Version:       in.Version,
		Branch:        rc.BranchName(),
		Registries:    in.Registries,
		WithLatest:    in.WithLatest,
		Target:        res.Target,
		PrependTarget: in.PrependTarget,
	}, log.Named("tags"))
	log.Info("Generated tags", zap.Strings("tags", refs))

	return Plan{
		Dockerfile: res.Dockerfile,
		Context:    res.Context,
		Target:     res.Target,
		BuildArgs:  res.Args,
		Tags:       refs,
		Push:       runtime.ShouldPush(rc, in.CanaryLabel, in.ForcePush, log.Named("push")),
	}
}

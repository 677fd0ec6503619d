package runtime

type Flow string

const (
	FlowPullRequest Flow = "pull-request"
	FlowTag         Flow = "tag"
	FlowDefault     Flow = "default"
	FlowBranch      Flow = "branch"
	FlowOther       Flow = "other"
)

func (f Flow) String() string {
	return string(f)
}

// ResolveFlow classifies the run. Pull requests win over everything else.
func ResolveFlow(ctx Context) Flow {
	switch {
	case ctx.IsPullRequest():
		return FlowPullRequest
	case ctx.IsTag():
		return FlowTag
	case ctx.IsDefaultBranch():
		return FlowDefault
	case ctx.BranchName() != "":
		return FlowBranch
	default:
		return FlowOther
	}
}

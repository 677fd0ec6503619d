package github

type nameNode struct {
	Name string `json:"name"`
}

type labelConnection struct {
	Nodes []nameNode `json:"nodes"`
}

func (l labelConnection) names() []string {
	out := make([]string, 0, len(l.Nodes))
	for _, n := range l.Nodes {
		out = append(out, n.Name)
	}
	return out
}

type lastTagData struct {
	Repository *struct {
		Refs *struct {
			Nodes []nameNode `json:"nodes"`
		} `json:"refs"`
	} `json:"repository"`
}

type prLabelsData struct {
	Repository *struct {
		PullRequest *struct {
			Labels labelConnection `json:"labels"`
		} `json:"pullRequest"`
	} `json:"repository"`
}

type commitPRData struct {
	Repository *struct {
		Object *struct {
			AssociatedPullRequests struct {
				Nodes []struct {
					Number int             `json:"number"`
					Labels labelConnection `json:"labels"`
				} `json:"nodes"`
			} `json:"associatedPullRequests"`
		} `json:"object"`
	} `json:"repository"`
}

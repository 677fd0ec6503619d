package github

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mbround18/gh-reusable/internal/assets"
)

type PullRequestsService interface {
	Labels(ctx context.Context, number int) ([]string, error)
	CommitLabels(ctx context.Context, sha string) ([]string, bool, error)
}

type pullRequestsService struct {
	client *Client
}

// Labels returns the label names of pull request number.
func (s *pullRequestsService) Labels(ctx context.Context, number int) ([]string, error) {
	vars, err := s.client.repoVars()
	if err != nil {
		return nil, err
	}
	vars["prNumber"] = number

	var data prLabelsData
	if err := s.client.Query(ctx, assets.MustQuery(assets.QueryPRLabels), vars, &data); err != nil {
		return nil, errors.Wrapf(err, "failed to get labels of PR #%d", number)
	}
	if data.Repository == nil || data.Repository.PullRequest == nil {
		return nil, errors.Errorf("PR #%d not found", number)
	}
	return data.Repository.PullRequest.Labels.names(), nil
}

// CommitLabels returns the labels of the first pull request associated with sha.
// The bool is false when no pull request is associated with the commit.
func (s *pullRequestsService) CommitLabels(ctx context.Context, sha string) ([]string, bool, error) {
	vars, err := s.client.repoVars()
	if err != nil {
		return nil, false, err
	}
	vars["commitSha"] = sha

	var data commitPRData
	if err := s.client.Query(ctx, assets.MustQuery(assets.QueryCommitAssociatedPR), vars, &data); err != nil {
		return nil, false, errors.Wrapf(err, "failed to get associated PR of %s", sha)
	}
	if data.Repository == nil || data.Repository.Object == nil {
		return nil, false, nil
	}
	prs := data.Repository.Object.AssociatedPullRequests.Nodes
	if len(prs) == 0 {
		return nil, false, nil
	}
	return prs[0].Labels.names(), true, nil
}

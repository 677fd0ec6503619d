package github

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mbround18/gh-reusable/internal/assets"
)

// ErrNoTags is returned when the tag listing comes back without a refs connection,
// which GitHub does for unknown or inaccessible repositories.
var ErrNoTags = errors.New("failed to fetch last tag information")

type TagsService interface {
	ListTags(ctx context.Context) ([]string, error)
}

type tagsService struct {
	client *Client
}

// ListTags returns the names of the repository's most recent tags.
// A repository without tags yields an empty slice.
func (s *tagsService) ListTags(ctx context.Context) ([]string, error) {
	vars, err := s.client.repoVars()
	if err != nil {
		return nil, err
	}

	var data lastTagData
	if err := s.client.Query(ctx, assets.MustQuery(assets.QueryLastTag), vars, &data); err != nil {
		return nil, errors.Wrap(err, "failed to fetch tags")
	}
	if data.Repository == nil || data.Repository.Refs == nil {
		return nil, ErrNoTags
	}

	tags := make([]string, 0, len(data.Repository.Refs.Nodes))
	for _, n := range data.Repository.Refs.Nodes {
		tags = append(tags, n.Name)
	}
	return tags, nil
}

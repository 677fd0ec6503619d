package assets

import (
	"embed"

	"github.com/pkg/errors"
	"github.com/ridge/must"
)

//go:embed queries/*.gql
var queries embed.FS

// Query names.
const (
	QueryLastTag            = "get_last_tag"
	QueryPRLabels           = "pr_labels"
	QueryCommitAssociatedPR = "commit_associated_pr"
)

// Query loads an embedded GraphQL document by name.
func Query(name string) (string, error) {
	data, err := queries.ReadFile("queries/" + name + ".gql")
	if err != nil {
		return "", errors.Wrapf(err, "unknown query %q", name)
	}
	return string(data), nil
}

// MustQuery is Query for names known at compile time.
func MustQuery(name string) string {
	return must.String(Query(name))
}

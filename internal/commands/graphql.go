package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mbround18/gh-reusable/pkg/github"
)

var argSeparator = regexp.MustCompile(`[\n,]+`)

func newGraphQLCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graphql",
		Short: "Run a GraphQL query against the GitHub API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.graphql(cmd.Context(),
				stringInput(cmd, "query", ""),
				stringInput(cmd, "args", ""),
				stringInput(cmd, "token", os.Getenv("GITHUB_TOKEN")),
				stringInput(cmd, "url", github.DefaultURL),
			)
		},
	}
	f := cmd.Flags()
	f.String("query", "", "Query text or path to a query file")
	f.String("args", "", "Variables as key=value, separated by commas or newlines")
	f.String("token", "", "GitHub token, defaults to GITHUB_TOKEN")
	f.String("url", github.DefaultURL, "GraphQL endpoint")
	return cmd
}

func (a *App) graphql(ctx context.Context, query, args, token, url string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if query == "" {
		return errors.New("query is required")
	}
	if info, err := os.Stat(query); err == nil && !info.IsDir() {
		data, err := os.ReadFile(query)
		if err != nil {
			return errors.Wrapf(err, "reading query file %s", query)
		}
		a.Log.Debug("Loaded query from file", zap.String("path", query))
		query = string(data)
	}

	client, err := github.NewClient(token, github.WithURL(url), github.WithLogger(a.Log.Named("github")))
	if err != nil {
		return err
	}

	body, reqErr := client.DoRequest(ctx, github.Request{Query: query, Variables: ParseArgs(args)})
	if body != nil {
		if err := a.Out.SetOutput("result", compactJSON(body)); err != nil {
			return err
		}
	}
	return reqErr
}

// ParseArgs turns "k1=v1,k2=v2" (commas or newlines) into query variables.
// Pairs without "=" or with an empty key are dropped.
func ParseArgs(s string) map[string]interface{} {
	vars := map[string]interface{}{}
	for _, pair := range argSeparator.Split(s, -1) {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		vars[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return vars
}

func compactJSON(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return string(body)
	}
	return buf.String()
}

package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mbround18/gh-reusable/internal/runtime"
	"github.com/mbround18/gh-reusable/internal/version"
	"github.com/mbround18/gh-reusable/pkg/github"
)

type semverInput struct {
	Token     string
	Base      string
	Prefix    string
	Increment string
	Labels    version.Labels
}

func newSemverCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "semver",
		Short: "Compute the next semantic version from tags and PR labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.semver(cmd.Context(), semverInput{
				Token:     stringInput(cmd, "token", os.Getenv("GITHUB_TOKEN")),
				Base:      stringInput(cmd, "base", ""),
				Prefix:    stringInput(cmd, "prefix", ""),
				Increment: stringInput(cmd, "increment", ""),
				Labels: version.Labels{
					Major: stringInput(cmd, "major-label", version.DefaultLabels.Major),
					Minor: stringInput(cmd, "minor-label", version.DefaultLabels.Minor),
					Patch: stringInput(cmd, "patch-label", version.DefaultLabels.Patch),
				},
			})
		},
	}
	f := cmd.Flags()
	f.String("token", "", "GitHub token, defaults to GITHUB_TOKEN")
	f.String("base", "", "Version to increment instead of the latest tag")
	f.String("prefix", "", "Tag prefix such as v or app-v")
	f.String("increment", "", "Force major, minor or patch")
	f.String("major-label", version.DefaultLabels.Major, "PR label for a major bump")
	f.String("minor-label", version.DefaultLabels.Minor, "PR label for a minor bump")
	f.String("patch-label", version.DefaultLabels.Patch, "PR label for a patch bump")
	return cmd
}

func (a *App) semver(ctx context.Context, in semverInput) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rc := runtime.LoadContext(a.Log.Named("context"))
	rc.LogSummary(a.Log)

	var (
		tagSrc   version.TagSource
		labelSrc version.LabelSource
	)
	if in.Token != "" {
		client, err := github.NewClientFromEnv(in.Token,
			github.WithLogger(a.Log.Named("github")),
			github.WithRetry(2, time.Second),
		)
		if err != nil {
			return err
		}
		tagSrc, labelSrc = client.Tags, client.PullRequests
	} else {
		a.Log.Warn("No GitHub token, tags and labels will not be looked up")
	}

	lastTag, prefix, err := version.ResolveLastTag(ctx, rc.Ref, in.Base, in.Prefix, tagSrc, a.Log)
	if err != nil {
		return err
	}

	bump := version.Patch
	if !rc.IsTag() {
		bump, err = version.DetectIncrement(ctx, version.DetectInput{
			Explicit: in.Increment,
			IsPR:     rc.IsPullRequest(),
			PRNumber: rc.PRNumber,
			SHA:      rc.SHA,
		}, labelSrc, in.Labels, a.Log)
		if err != nil {
			return err
		}
	}

	next, err := version.NextForRef(rc.Ref, lastTag, prefix, bump, rc.IsPullRequest(), rc.SHA)
	if err != nil {
		return err
	}
	a.Log.Info("New version",
		zap.String("last", lastTag),
		zap.Stringer("increment", bump),
		zap.String("version", next),
	)
	return a.Out.SetOutput("new_version", next)
}

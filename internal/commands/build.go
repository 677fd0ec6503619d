package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mbround18/gh-reusable/internal/docker"
	"github.com/mbround18/gh-reusable/internal/executil"
	"github.com/mbround18/gh-reusable/internal/runtime"
)

func newBuildCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run docker buildx build and report the image digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.build(cmd.Context(), docker.Inputs{
				Image:      stringInput(cmd, "image", ""),
				Dockerfile: stringInput(cmd, "dockerfile", ""),
				Context:    stringInput(cmd, "context", ""),
				Push:       boolInput(cmd, "push"),
				BuildArgs:  stringInput(cmd, "build-args", ""),
				Target:     stringInput(cmd, "target", ""),
				Platforms:  stringInput(cmd, "platforms", ""),
				DryRun:     app.DryRun,
			})
		},
	}
	f := cmd.Flags()
	f.String("image", "", "Comma separated image refs to tag")
	f.String("dockerfile", "./Dockerfile", "Path to the Dockerfile")
	f.String("context", ".", "Build context")
	f.Bool("push", false, "Push instead of loading into the local daemon")
	f.String("build-args", "", "Space separated KEY=VALUE build args")
	f.String("target", "", "Build target")
	f.String("platforms", "linux/amd64", "Target platforms")
	return cmd
}

func (a *App) build(ctx context.Context, in docker.Inputs) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rc := runtime.LoadContext(a.Log.Named("context"))

	opts, err := docker.NewBuildOptions(in, rc, os.Environ(), a.Log)
	if err != nil {
		return err
	}
	a.Log.Info("Building image", zap.Strings("refs", opts.Refs), zap.Bool("push", opts.Push))

	run := executil.Runner{
		Log:    a.Log.Named("exec"),
		DryRun: opts.DryRun,
		Redact: docker.RedactBuildArgs,
	}
	digest, err := docker.Build(ctx, opts, run, a.Log.Named("docker"))
	if err != nil {
		return err
	}
	return a.Out.SetOutput("image-id", digest)
}

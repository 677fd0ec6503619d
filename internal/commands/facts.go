package commands

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/ridge/must"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mbround18/gh-reusable/internal/docker"
	"github.com/mbround18/gh-reusable/internal/runtime"
	"github.com/mbround18/gh-reusable/internal/tags"
)

func newFactsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Resolve dockerfile, context, tags and push decision for an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.facts(docker.FactsInput{
				Image:         stringInput(cmd, "image", ""),
				Version:       stringInput(cmd, "version", ""),
				Registries:    tags.ParseRegistries(stringInput(cmd, "registries", "")),
				Dockerfile:    stringInput(cmd, "dockerfile", "./Dockerfile"),
				Context:       stringInput(cmd, "context", "."),
				Target:        stringInput(cmd, "target", ""),
				CanaryLabel:   stringInput(cmd, "canary-label", runtime.DefaultCanaryLabel),
				ForcePush:     boolInput(cmd, "force-push"),
				WithLatest:    boolInput(cmd, "with-latest"),
				PrependTarget: boolInput(cmd, "prepend-target"),
			})
		},
	}
	f := cmd.Flags()
	f.String("image", "", "Image name without tag")
	f.String("version", "", "Version to tag the image with")
	f.String("registries", "", "Comma separated registries to tag for")
	f.String("dockerfile", "./Dockerfile", "Dockerfile used when no compose service matches")
	f.String("context", ".", "Build context used when no compose service matches")
	f.String("target", "", "Build target, overrides the compose target")
	f.String("canary-label", runtime.DefaultCanaryLabel, "PR label that publishes the image")
	f.Bool("force-push", false, "Always push the image")
	f.Bool("with-latest", false, "Add latest tags outside pull requests")
	f.Bool("prepend-target", false, "Prefix every tag with the target")
	return cmd
}

func (a *App) facts(in docker.FactsInput) error {
	if in.Image == "" {
		return errors.New("image is required")
	}
	log := a.Log.With(zap.String("image", in.Image))

	rc := runtime.LoadContext(log.Named("context"))
	rc.LogSummary(log)

	in.Workspace = rc.Workspace
	if in.Workspace == "" {
		in.Workspace = must.String(os.Getwd())
	}

	plan := docker.PlanBuild(rc, in, log)
	for _, k := range plan.BuildArgs.Keys() {
		if err := a.Out.ExportVariable("BUILD_ARG_"+k, plan.BuildArgs[k]); err != nil {
			return err
		}
	}

	outputs := []struct{ name, value string }{
		{"dockerfile", plan.Dockerfile},
		{"context", plan.Context},
		{"target", plan.Target},
		{"push", strconv.FormatBool(plan.Push)},
		{"tags", strings.Join(plan.Tags, ",")},
	}
	for _, o := range outputs {
		if err := a.Out.SetOutput(o.name, o.value); err != nil {
			return err
		}
	}
	return nil
}

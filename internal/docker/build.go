// internal/docker/build.go
package docker

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mbround18/gh-reusable/internal/executil"
)

// Args assembles the `docker buildx build` argument list for opts.
func Args(opts *BuildOptions) []string {
	args := []string{"buildx", "build"}
	for _, a := range opts.BuildArgs {
		args = append(args, "--build-arg", a)
	}
	for _, a := range opts.EnvArgs {
		args = append(args, "--build-arg", a)
	}
	args = append(args,
		"--cache-from", "type=gha",
		"--cache-to", "type=gha,mode=max",
		"--file", opts.Dockerfile,
		"--platform", opts.Platforms,
	)
	if opts.BuilderID != "" {
		args = append(args, "--attest", "type=provenance,mode=max,builder-id="+opts.BuilderID)
	}
	for _, r := range opts.Refs {
		args = append(args, "--tag", r)
	}
	if opts.Target != "" {
		args = append(args, "--target", opts.Target)
	}
	if opts.Push {
		args = append(args, "--push")
	} else {
		args = append(args, "--load")
	}
	if opts.MetadataFile != "" {
		args = append(args, "--metadata-file", opts.MetadataFile)
	}
	return append(args, opts.Context)
}

// Build runs the buildx build and returns the image digest from the
// metadata file. A missing or unreadable metadata file is not an error.
func Build(ctx context.Context, opts *BuildOptions, run Runner, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts == nil {
		return "", errors.New("Build: opts is nil")
	}
	if len(opts.Refs) == 0 {
		return "", errors.New("Build: Refs must have at least one repo:tag")
	}

	if !opts.DryRun {
		if st, err := os.Stat(opts.Dockerfile); err != nil || st.IsDir() {
			return "", errors.Errorf("Build: Dockerfile %q not found or not a file", opts.Dockerfile)
		}
		if st, err := os.Stat(opts.Context); err != nil || !st.IsDir() {
			return "", errors.Errorf("Build: context %q not found or not a directory", opts.Context)
		}
	}

	args := Args(opts)
	target := opts.Target
	if target == "" {
		target = "default"
	}
	log.Info("Building Docker image",
		zap.String("dockerfile", opts.Dockerfile),
		zap.String("context", opts.Context),
		zap.Bool("push", opts.Push),
		zap.String("target", target),
		zap.String("platforms", opts.Platforms),
		zap.Strings("tags", opts.Refs),
	)
	log.Debug("Executing", zap.String("cmd", "docker "+executil.ShellQuoteArgs(RedactBuildArgs(args))))

	if err := run.Run(ctx, "docker", args...); err != nil {
		return "", errors.Wrap(err, "docker build failed")
	}
	if opts.DryRun || opts.MetadataFile == "" {
		return "", nil
	}

	digest, err := ReadDigest(opts.MetadataFile)
	if err != nil {
		log.Warn("Failed to parse metadata", zap.Error(err))
		return "", nil
	}
	if digest == "" {
		log.Info("Image ID unknown")
	} else {
		log.Info("Image ID", zap.String("digest", digest))
	}
	return strings.TrimSpace(digest), nil
}

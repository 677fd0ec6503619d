// internal/docker/options.go
//
// This layer turns the build action inputs plus the GitHub context into
// concrete BuildOptions: refs are repaired and validated, build args are
// collected from the input and from BUILD_ARG_* variables, and the buildx
// metadata and provenance settings are derived from the runner.

package docker

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mbround18/gh-reusable/internal/runtime"
	"github.com/mbround18/gh-reusable/internal/tags"
)

const (
	defaultPlatforms = "linux/amd64"
	buildArgPrefix   = "BUILD_ARG_"
	metadataFileName = "docker-metadata.json"
)

// Inputs are the raw build action inputs.
type Inputs struct {
	Image      string // comma-separated repo:tag refs
	Dockerfile string
	Context    string
	Push       bool
	BuildArgs  string // space-separated KEY=VALUE
	Target     string
	Platforms  string
	DryRun     bool
}

// NewBuildOptions validates in and assembles BuildOptions.
// environ is the process environment in os.Environ form.
func NewBuildOptions(in Inputs, rc runtime.Context, environ []string, log *zap.Logger) (*BuildOptions, error) {
	if log == nil {
		log = zap.NewNop()
	}

	refs := tags.ValidateTags(strings.Split(in.Image, ","), log)
	if len(refs) == 0 {
		return nil, errors.New("no image refs given")
	}
	if err := ValidateRefs(refs); err != nil {
		return nil, err
	}

	dockerfile := strings.TrimSpace(in.Dockerfile)
	if dockerfile == "" {
		dockerfile = "./Dockerfile"
	}
	ctxPath := strings.TrimSpace(in.Context)
	if ctxPath == "" {
		ctxPath = "."
	}
	platforms := strings.TrimSpace(in.Platforms)
	if platforms == "" {
		platforms = defaultPlatforms
	}

	return &BuildOptions{
		Refs:         refs,
		Dockerfile:   dockerfile,
		Context:      ctxPath,
		BuildArgs:    strings.Fields(in.BuildArgs),
		EnvArgs:      EnvBuildArgs(environ),
		Target:       strings.TrimSpace(in.Target),
		Platforms:    platforms,
		Push:         in.Push,
		BuilderID:    rc.BuilderID(),
		MetadataFile: filepath.Join(rc.RunnerTemp, metadataFileName),
		DryRun:       in.DryRun,
	}, nil
}

// ValidateRefs checks every ref is a well-formed image tag reference.
func ValidateRefs(refs []string) error {
	for _, r := range refs {
		if _, err := name.NewTag(r); err != nil {
			return errors.Wrapf(err, "invalid image reference %q", r)
		}
	}
	return nil
}

// EnvBuildArgs turns BUILD_ARG_<KEY>=<VALUE> entries into KEY=VALUE, sorted by key.
func EnvBuildArgs(environ []string) []string {
	var out []string
	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, buildArgPrefix) {
			continue
		}
		if arg := strings.TrimPrefix(key, buildArgPrefix); arg != "" {
			out = append(out, arg+"="+val)
		}
	}
	sort.Strings(out)
	return out
}

package docker

import "context"

// BuildOptions is everything `docker buildx build` needs for one image.
type BuildOptions struct {
	Refs       []string // validated repo:tag refs
	Dockerfile string   // default: "./Dockerfile"
	Context    string   // default: "."
	BuildArgs  []string // KEY=VALUE from the build-args input, in input order
	EnvArgs    []string // KEY=VALUE from BUILD_ARG_* variables, sorted by key
	Target     string   // optional multi-stage target
	Platforms  string   // default: "linux/amd64"
	Push       bool     // --push instead of --load

	BuilderID    string // provenance builder id
	MetadataFile string // buildx --metadata-file
	DryRun       bool   // print only
}

// Runner runs an external command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

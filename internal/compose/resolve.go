package compose

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
	"go.uber.org/zap"
)

// FileNames are the compose file names searched, in order.
var FileNames = []string{"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"}

const defaultDockerfile = "Dockerfile"

// Options are the build inputs before compose is consulted.
type Options struct {
	Workspace  string
	Image      string
	Dockerfile string
	Context    string
	Target     string
}

// Result is the resolved build configuration.
type Result struct {
	Dockerfile string
	Context    string
	Target     string
	Args       Args

	// File and Service are set when the values came from a compose file.
	File    string
	Service string
}

// Resolve looks for a compose service building opts.Image and returns its
// dockerfile, context, target and args. Without a match it returns the
// fallback values from opts. An explicit opts.Target always wins.
func Resolve(opts Options, log *zap.Logger) Result {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Context == "" {
		opts.Context = "."
	}
	if opts.Dockerfile == "" {
		opts.Dockerfile = "./" + defaultDockerfile
	}
	log.Info("Docker context resolution",
		zap.String("image", opts.Image),
		zap.String("dockerfile", opts.Dockerfile),
		zap.String("context", opts.Context),
		zap.String("target", opts.Target),
		zap.String("workspace", opts.Workspace),
	)

	fallback := Result{Dockerfile: opts.Dockerfile, Context: opts.Context, Target: opts.Target}

	path := Find(opts.Workspace, opts.Context)
	if path == "" {
		log.Info("No docker-compose file found, using fallback values")
		return fallback
	}
	log.Info("Found compose file", zap.String("file", path))

	f, err := Parse(path)
	if err != nil {
		log.Warn("Error parsing compose file", zap.Error(err))
		return fallback
	}
	log.Info("Services found", zap.Strings("services", f.ServiceNames()))

	name, svc, ok := f.Match(opts.Image)
	if !ok {
		log.Info("No matching service found", zap.String("image", opts.Image))
		return fallback
	}
	if svc.Build == nil || svc.Build.Context == "" {
		log.Info("Service has no usable build configuration", zap.String("service", name))
		return fallback
	}

	b := svc.Build
	dockerfile := b.Dockerfile
	if dockerfile == "" {
		dockerfile = defaultDockerfile
	}
	buildCtx := rebase(opts.Workspace, filepath.Dir(path), b.Context)
	if !filepath.IsAbs(dockerfile) {
		dockerfile = dotSlash(filepath.Join(buildCtx, dockerfile))
	}

	res := Result{
		Dockerfile: dockerfile,
		Context:    buildCtx,
		Target:     b.Target,
		Args:       b.Args,
		File:       path,
		Service:    name,
	}
	if opts.Target != "" {
		res.Target = opts.Target
		log.Info("Target from input", zap.String("target", res.Target))
	} else if res.Target != "" {
		log.Info("Target from docker-compose", zap.String("target", res.Target))
	}

	log.Info("Using configuration from docker-compose",
		zap.String("service", name),
		zap.String("dockerfile", res.Dockerfile),
		zap.String("context", res.Context),
		zap.Strings("args", res.Args.Keys()),
	)
	return res
}

// Candidates lists the compose paths to probe, in search order.
func Candidates(workspace, context string) []string {
	var out []string
	for _, name := range FileNames {
		if context != "" && context != "." {
			out = append(out, filepath.Join(workspace, context, name))
		}
		out = append(out, filepath.Join(workspace, name))
	}
	return out
}

// Find returns the first existing compose file, or "".
func Find(workspace, context string) string {
	for _, p := range Candidates(workspace, context) {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// Match returns the first service, by name order, whose image repository is image.
func (f *File) Match(image string) (string, Service, bool) {
	for _, name := range f.ServiceNames() {
		svc := f.Services[name]
		if svc.Image != "" && sameRepository(svc.Image, image) {
			return name, svc, true
		}
	}
	return "", Service{}, false
}

// sameRepository compares the repository part of two image references,
// either literally or after docker.io normalization.
func sameRepository(serviceImage, image string) bool {
	image = strings.TrimSpace(image)
	if image == "" {
		return false
	}
	if stripTag(serviceImage) == stripTag(image) {
		return true
	}
	a, err := reference.ParseNormalizedNamed(serviceImage)
	if err != nil {
		return false
	}
	b, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return false
	}
	return reference.TrimNamed(a).Name() == reference.TrimNamed(b).Name() ||
		reference.FamiliarName(a) == stripTag(image)
}

// stripTag drops a :tag or @digest from the last path component.
func stripTag(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.Index(ref, "@"); i >= 0 {
		ref = ref[:i]
	}
	slash := strings.LastIndex(ref, "/")
	if i := strings.LastIndex(ref, ":"); i > slash {
		ref = ref[:i]
	}
	return ref
}

// rebase makes a compose build context relative to the workspace.
// Contexts of a compose file at the workspace root are kept as written.
func rebase(workspace, composeDir, context string) string {
	if filepath.IsAbs(context) {
		return context
	}
	if filepath.Clean(composeDir) == filepath.Clean(workspace) {
		return context
	}
	full := filepath.Join(composeDir, context)
	rel, err := filepath.Rel(workspace, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return full
	}
	return dotSlash(rel)
}

func dotSlash(p string) string {
	p = filepath.ToSlash(p)
	if p == "." || strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/") {
		return p
	}
	return "./" + p
}

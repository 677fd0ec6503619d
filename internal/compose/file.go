package compose

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the part of a compose file we care about.
type File struct {
	Services map[string]Service `yaml:"services"`
}

// Service is a compose service with an image and an optional build section.
type Service struct {
	Image string `yaml:"image"`
	Build *Build `yaml:"build"`
}

// Build is a service build section. Compose accepts either a context path
// string or a mapping; both decode into this struct.
type Build struct {
	Context    string
	Dockerfile string
	Target     string
	Args       Args
}

// Args holds build args. Compose allows a mapping or a KEY=VALUE list.
type Args map[string]string

// Parse reads and decodes the compose file at path.
func Parse(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading compose file %s", path)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parsing compose file %s", path)
	}
	return &f, nil
}

// ServiceNames returns the service names in sorted order.
func (f *File) ServiceNames() []string {
	names := make([]string, 0, len(f.Services))
	for name := range f.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Build) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		b.Context = node.Value
		return nil
	case yaml.MappingNode:
		var raw struct {
			Context    string    `yaml:"context"`
			Dockerfile string    `yaml:"dockerfile"`
			Target     string    `yaml:"target"`
			Args       yaml.Node `yaml:"args"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		b.Context = raw.Context
		b.Dockerfile = raw.Dockerfile
		b.Target = raw.Target
		if raw.Args.Kind != 0 {
			if err := b.Args.UnmarshalYAML(&raw.Args); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Errorf("line %d: build must be a string or a mapping", node.Line)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Args) UnmarshalYAML(node *yaml.Node) error {
	out := Args{}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			if v.Tag == "!!null" {
				out[k.Value] = ""
				continue
			}
			out[k.Value] = v.Value
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			k, v, _ := strings.Cut(item.Value, "=")
			if k = strings.TrimSpace(k); k != "" {
				out[k] = v
			}
		}
	case yaml.ScalarNode:
		if node.Tag != "!!null" {
			return errors.Errorf("line %d: args must be a mapping or a list", node.Line)
		}
	default:
		return errors.Errorf("line %d: args must be a mapping or a list", node.Line)
	}
	*a = out
	return nil
}

// Keys returns the arg names in sorted order.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package tags

import (
	"strings"

	"github.com/samber/lo"
)

// TagSet is an insertion-ordered set of fully-qualified image tags.
// Each label added produces the bare image:label tag followed by one
// registry/image:label tag per registry, in registry order.
type TagSet struct {
	image      string
	prefix     string
	registries []string

	order []string
	seen  map[string]struct{}
}

// NewTagSet returns an empty set for image. prefix is prepended to every label.
func NewTagSet(image, prefix string, registries []string) *TagSet {
	return &TagSet{
		image:      image,
		prefix:     prefix,
		registries: normalizeRegistries(registries),
		seen:       make(map[string]struct{}),
	}
}

// Add inserts label for the bare image and every registry.
// It returns false if the label was empty after sanitizing or was already present.
func (s *TagSet) Add(label string) bool {
	label = sanitizeLabel(label)
	if label == "" {
		return false
	}
	full := s.prefix + label
	if len(full) > maxLabelLen {
		full = full[:maxLabelLen]
	}

	added := s.insert(s.image + ":" + full)
	for _, r := range s.registries {
		if s.insert(r + "/" + s.image + ":" + full) {
			added = true
		}
	}
	return added
}

// Has reports whether image:label (bare, without registry) is present.
func (s *TagSet) Has(label string) bool {
	_, ok := s.seen[s.image+":"+s.prefix+sanitizeLabel(label)]
	return ok
}

func (s *TagSet) insert(tag string) bool {
	if _, ok := s.seen[tag]; ok {
		return false
	}
	s.seen[tag] = struct{}{}
	s.order = append(s.order, tag)
	return true
}

// Tags returns a copy of the tags in insertion order.
func (s *TagSet) Tags() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of tags in the set.
func (s *TagSet) Len() int {
	return len(s.order)
}

// ParseRegistries splits a comma-separated registry list.
func ParseRegistries(csv string) []string {
	return normalizeRegistries(strings.Split(csv, ","))
}

// normalizeRegistries trims entries, drops empty ones and duplicates.
func normalizeRegistries(in []string) []string {
	trimmed := lo.Map(in, func(r string, _ int) string {
		return strings.TrimRight(strings.TrimSpace(r), "/")
	})
	return lo.Uniq(lo.Compact(trimmed))
}

package tags

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Docker caps a tag at 128 characters.
const maxLabelLen = 128

// fallbackImage is used when nothing usable is left of the image input.
const fallbackImage = "unnamed"

var (
	labelInvalid  = regexp.MustCompile(`[^\w.-]`)
	branchInvalid = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	prNumber      = regexp.MustCompile(`^\d+$`)
)

// sanitizeLabel forces label into Docker tag grammar: [\w][\w.-]{0,127}.
// Anything after an embedded colon is dropped.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if i := strings.IndexByte(label, ':'); i >= 0 {
		label = label[:i]
	}
	label = labelInvalid.ReplaceAllString(label, "-")
	label = strings.TrimLeft(label, ".-")
	if len(label) > maxLabelLen {
		label = label[:maxLabelLen]
	}
	return label
}

// SanitizeBranch turns a branch name or PR number into a tag label.
// Numeric input becomes pr-<n>; characters outside [a-zA-Z0-9._-] become "-".
func SanitizeBranch(branch string) string {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return ""
	}
	if prNumber.MatchString(branch) {
		branch = "pr-" + branch
	}
	return branchInvalid.ReplaceAllString(branch, "-")
}

// IsPullRequest reports whether branch names a PR: a bare number or pr-<...>.
func IsPullRequest(branch string) bool {
	branch = strings.TrimSpace(branch)
	return prNumber.MatchString(branch) || strings.HasPrefix(branch, "pr-")
}

// cleanImage cuts image at its first comma, then drops a tag from the last
// path component, so a registry port (host:5000/app) is kept. The result is
// lower-cased, as repository names must be.
func cleanImage(image string, log *zap.Logger) string {
	image = strings.TrimSpace(image)
	if i := strings.IndexByte(image, ','); i >= 0 {
		log.Warn("Invalid image name format, contains commas", zap.String("image", image))
		image = image[:i]
	}
	slash := strings.LastIndexByte(image, '/')
	if i := strings.IndexByte(image[slash+1:], ':'); i >= 0 {
		log.Warn("Image already has a tag, extracting base image name", zap.String("image", image))
		image = image[:slash+1+i]
	}
	if lower := strings.ToLower(image); lower != image {
		log.Warn("Image name has upper-case characters, lower-casing", zap.String("image", image))
		image = lower
	}
	image = strings.TrimSpace(image)
	if image == "" {
		log.Warn("Image name is empty, using fallback", zap.String("image", fallbackImage))
		return fallbackImage
	}
	return image
}

// ValidateTags repairs refs whose tag part carries more than one colon by
// keeping only name:first-label. Empty refs and duplicates are dropped.
// A registry port (host:5000/app:1) is not counted as a tag colon.
func ValidateTags(refs []string, log *zap.Logger) []string {
	if log == nil {
		log = zap.NewNop()
	}
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}

		head, tail := "", ref
		if i := strings.LastIndexByte(ref, '/'); i >= 0 {
			head, tail = ref[:i+1], ref[i+1:]
		}
		if parts := strings.Split(tail, ":"); len(parts) > 2 {
			fixed := head + parts[0] + ":" + parts[1]
			log.Warn("Found malformed tag, fixing format", zap.String("tag", ref), zap.String("fixed", fixed))
			ref = fixed
		}

		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}

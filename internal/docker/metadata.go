package docker

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ReadDigest returns the image digest from a buildx metadata file.
// buildx writes a flat "containerimage.digest" key; a nested
// {"containerimage": {"digest": ...}} object is accepted as well.
// A missing file yields "" and no error.
func ReadDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, "reading metadata %s", path)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", errors.Wrapf(err, "parsing metadata %s", path)
	}

	if v, ok := raw["containerimage.digest"]; ok {
		var digest string
		if err := json.Unmarshal(v, &digest); err != nil {
			return "", errors.Wrap(err, "containerimage.digest")
		}
		return digest, nil
	}
	if v, ok := raw["containerimage"]; ok {
		var nested struct {
			Digest string `json:"digest"`
		}
		if err := json.Unmarshal(v, &nested); err != nil {
			return "", errors.Wrap(err, "containerimage")
		}
		return nested.Digest, nil
	}
	return "", nil
}

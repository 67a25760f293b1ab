// Package pkgmeta reads product metadata out of a JavaScript package manifest.
package pkgmeta

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/twpayne/go-vfs"
	"github.com/variantdev/docship/pkg/semver"
)

const VersionPath = "$.version"

// Version returns the "v"-prefixed product version declared in the manifest at path
func Version(fs vfs.FS, path string) (string, error) {
	bs, err := fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	var doc interface{}
	if err := json.Unmarshal(bs, &doc); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}

	raw, err := jsonpath.Get(VersionPath, doc)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", path, VersionPath, err)
	}

	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s: %s: expected string, got %T", path, VersionPath, raw)
	}

	v, err := semver.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%s: invalid version %q: %w", path, s, err)
	}

	return semver.Tag(v), nil
}

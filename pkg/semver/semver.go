package semver

import (
	"regexp"
	"strings"

	sv "github.com/Masterminds/semver"
)

type Version = sv.Version

func Parse(s string) (*Version, error) {
	fixedS := nonSemverWorkaround(strings.TrimSpace(s))

	return sv.NewVersion(fixedS)
}

// Tag renders v as the "v"-prefixed string used for image build args and release notes
func Tag(v *Version) string {
	return "v" + v.String()
}

var versionRegex = regexp.MustCompile(`v?([0-9]+)(\.[0-9]+)?(\.[0-9]+)?` + `(.*)`)

// nonSemverWorkaround turns "1.2.3.4" into "1.2.3-4" so that four-part versions still parse
func nonSemverWorkaround(s string) string {
	matches := versionRegex.FindStringSubmatch(s)

	var preLike string

	if len(matches) > 3 {
		preLike = matches[4]
	}

	if preLike != "" && preLike[0] == '.' {
		s = strings.Join(matches[1:4], "")
		s += "-" + preLike[1:]
	}

	return s
}

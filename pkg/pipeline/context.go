package pipeline

import (
	"fmt"
	"strings"
)

// BuildContext identifies what triggered a pipeline run.
// An absent tag is "" and an absent pull request is 0.
type BuildContext struct {
	Branch      string `yaml:"branch"`
	Tag         string `yaml:"tag,omitempty"`
	PullRequest int    `yaml:"pullRequest,omitempty"`
}

func (c BuildContext) IsTagged() bool {
	return c.Tag != ""
}

func (c BuildContext) IsPullRequest() bool {
	return c.PullRequest != 0
}

func (c BuildContext) String() string {
	parts := []string{"branch=" + c.Branch}
	if c.IsTagged() {
		parts = append(parts, "tag="+c.Tag)
	}
	if c.IsPullRequest() {
		parts = append(parts, fmt.Sprintf("pr=%d", c.PullRequest))
	}
	return strings.Join(parts, ",")
}

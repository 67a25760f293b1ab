// Package buildkite adapts pipeline steps to the Buildkite agent.
package buildkite

import (
	"fmt"
	"strconv"

	"github.com/variantdev/docship/pkg/pipeline"
)

const (
	EnvBranch      = "BUILDKITE_BRANCH"
	EnvTag         = "BUILDKITE_TAG"
	EnvPullRequest = "BUILDKITE_PULL_REQUEST"
	EnvCommit      = "BUILDKITE_COMMIT"
)

// FromEnv reads the build context of the current Buildkite job.
// Buildkite sets BUILDKITE_PULL_REQUEST to "false" for non pull request builds.
func FromEnv(getenv func(string) string) (pipeline.BuildContext, error) {
	c := pipeline.BuildContext{
		Branch: getenv(EnvBranch),
		Tag:    getenv(EnvTag),
	}

	pr := getenv(EnvPullRequest)
	if pr == "" || pr == "false" {
		return c, nil
	}

	n, err := strconv.Atoi(pr)
	if err != nil {
		return pipeline.BuildContext{}, fmt.Errorf("parsing %s=%q: %w", EnvPullRequest, pr, err)
	}
	c.PullRequest = n

	return c, nil
}

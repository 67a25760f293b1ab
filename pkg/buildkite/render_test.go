package buildkite

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/variantdev/docship/pkg/pipeline"
	"gopkg.in/yaml.v3"
)

func TestRender(t *testing.T) {
	planner := pipeline.NewPlanner(pipeline.DefaultResolver(), "docs")
	r := &Renderer{Command: []string{"docship", "--config", "docship.yaml"}}

	bs, err := r.Render(planner.Plan(pipeline.BuildContext{Branch: "master"}))
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]interface{}
	if err := yaml.Unmarshal(bs, &got); err != nil {
		t.Fatalf("rendered pipeline is not yaml: %v\n%s", err, bs)
	}

	expected := map[string]interface{}{
		"steps": []interface{}{
			map[string]interface{}{
				"label":   ":hammer: Build",
				"command": "docship --config docship.yaml run build --branch master",
				"agents":  map[string]interface{}{"queue": "builder"},
			},
			"wait",
			map[string]interface{}{
				"label":             ":rocket: Deploy to Staging",
				"command":           "docship --config docship.yaml run deploy --branch master",
				"concurrency":       1,
				"concurrency_group": "docs/staging/deploy",
			},
			map[string]interface{}{
				"block": ":shipit: Deploy to Production?",
			},
			map[string]interface{}{
				"label":   ":git: Tag Release",
				"command": "docship --config docship.yaml run tag-release --branch master",
			},
		},
	}

	if d := cmp.Diff(expected, got); d != "" {
		t.Errorf("unexpected pipeline: %s\n%s", d, bs)
	}
}

func TestCommandLine(t *testing.T) {
	r := &Renderer{}

	testcases := []struct {
		step     pipeline.Step
		expected string
	}{
		{
			step: pipeline.Step{
				Action:  pipeline.ActionDeploy,
				Context: pipeline.BuildContext{Branch: "master", Tag: "docs/release-2024-01-01-abcdef012345"},
			},
			expected: "docship run deploy --branch master --tag docs/release-2024-01-01-abcdef012345",
		},
		{
			step: pipeline.Step{
				Action:  pipeline.ActionBuild,
				Context: pipeline.BuildContext{Branch: "it's a branch", PullRequest: 42},
			},
			expected: `docship run build --branch 'it'"'"'s a branch' --pr 42`,
		},
	}

	for _, tc := range testcases {
		if got := r.CommandLine(tc.step); got != tc.expected {
			t.Errorf("unexpected command: expected=%s, got=%s", tc.expected, got)
		}
	}
}

package buildkite

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/variantdev/docship/pkg/pipeline"
	"gopkg.in/yaml.v3"
)

type commandStep struct {
	Label            string            `yaml:"label"`
	Command          string            `yaml:"command"`
	Agents           map[string]string `yaml:"agents,omitempty"`
	Concurrency      int               `yaml:"concurrency,omitempty"`
	ConcurrencyGroup string            `yaml:"concurrency_group,omitempty"`
}

type blockStep struct {
	Block string `yaml:"block"`
}

type document struct {
	Steps []interface{} `yaml:"steps"`
}

// Renderer turns steps into a Buildkite pipeline document whose command steps call back into this binary
type Renderer struct {
	// Command is the invocation prefix of command steps, e.g. ["docship", "--config", "docship.yaml"]
	Command []string
}

func (r *Renderer) Render(steps []pipeline.Step) ([]byte, error) {
	doc := document{Steps: []interface{}{}}

	for _, s := range steps {
		switch s.Action {
		case pipeline.ActionWait:
			doc.Steps = append(doc.Steps, "wait")
		case pipeline.ActionBlock:
			doc.Steps = append(doc.Steps, blockStep{Block: s.Name})
		default:
			doc.Steps = append(doc.Steps, commandStep{
				Label:            s.Name,
				Command:          r.CommandLine(s),
				Agents:           s.Agents,
				Concurrency:      s.Concurrency,
				ConcurrencyGroup: s.ConcurrencyGroup,
			})
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding pipeline: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// CommandLine is the shell command a Buildkite agent runs for a step
func (r *Renderer) CommandLine(s pipeline.Step) string {
	command := r.Command
	if len(command) == 0 {
		command = []string{"docship"}
	}

	args := append(append([]string{}, command...), "run", string(s.Action), "--branch", s.Context.Branch)
	if s.Context.IsTagged() {
		args = append(args, "--tag", s.Context.Tag)
	}
	if s.Context.IsPullRequest() {
		args = append(args, "--pr", fmt.Sprintf("%d", s.Context.PullRequest))
	}

	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

var safeWord = regexp.MustCompile(`^[A-Za-z0-9_./:@=+-]+$`)

func shellQuote(s string) string {
	if safeWord.MatchString(s) {
		return s
	}
	return "'" + strings.Replace(s, "'", `'"'"'`, -1) + "'"
}

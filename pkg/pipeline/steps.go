package pipeline

import (
	"fmt"
)

type Action string

const (
	ActionBuild             Action = "build"
	ActionDeploy            Action = "deploy"
	ActionUpdateSearchIndex Action = "update-search-index"
	ActionTagRelease        Action = "tag-release"
	ActionWait              Action = "wait"
	ActionBlock             Action = "block"
)

// Runnable actions are the ones that have side effects when executed
var Runnable = []Action{ActionBuild, ActionDeploy, ActionUpdateSearchIndex, ActionTagRelease}

func ParseAction(s string) (Action, error) {
	for _, a := range append(Runnable, ActionWait, ActionBlock) {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// IsControl reports whether the action only controls the flow of a run
func (a Action) IsControl() bool {
	return a == ActionWait || a == ActionBlock
}

// Step is one entry of a planned pipeline.
// Steps are plain data. Executing one is up to Actions.
type Step struct {
	Name    string
	Action  Action
	Context BuildContext

	// Agents selects the agent pool, e.g. {"queue": "builder"}
	Agents map[string]string

	// Steps sharing a ConcurrencyGroup run at most Concurrency at a time
	ConcurrencyGroup string
	Concurrency      int
}

const (
	buildStepName       = ":hammer: Build"
	indexStepName       = ":feelsgood: Update Search Index"
	tagReleaseStepName  = ":git: Tag Release"
	productionGateLabel = ":shipit: Deploy to Production?"
)

// Planner computes the steps of a run from its build context
type Planner struct {
	Resolver *Resolver

	// ShortName prefixes concurrency groups
	ShortName string

	// AllowPRs disables planning for pull requests when false
	AllowPRs bool

	// BuilderQueue is the agent queue image builds are scheduled on
	BuilderQueue string
}

func NewPlanner(r *Resolver, shortName string) *Planner {
	return &Planner{
		Resolver:     r,
		ShortName:    shortName,
		AllowPRs:     true,
		BuilderQueue: "builder",
	}
}

// Plan returns
//   [deploy, wait, update-search-index] for a tagged context,
//   [build, wait, deploy] for a pull request, and
//   [build, wait, deploy, block, tag-release] otherwise.
func (p *Planner) Plan(c BuildContext) []Step {
	if c.IsPullRequest() && !p.AllowPRs {
		return nil
	}

	if c.IsTagged() {
		return []Step{
			p.deployStep(c),
			p.waitStep(c),
			{Name: indexStepName, Action: ActionUpdateSearchIndex, Context: c},
		}
	}

	steps := []Step{
		p.buildStep(c),
		p.waitStep(c),
		p.deployStep(c),
	}

	if !c.IsPullRequest() {
		steps = append(steps,
			Step{Name: productionGateLabel, Action: ActionBlock, Context: c},
			Step{Name: tagReleaseStepName, Action: ActionTagRelease, Context: c},
		)
	}

	return steps
}

func (p *Planner) buildStep(c BuildContext) Step {
	s := Step{Name: buildStepName, Action: ActionBuild, Context: c}
	if p.BuilderQueue != "" {
		s.Agents = map[string]string{"queue": p.BuilderQueue}
	}
	return s
}

func (p *Planner) waitStep(c BuildContext) Step {
	return Step{Name: "wait", Action: ActionWait, Context: c}
}

func (p *Planner) deployStep(c BuildContext) Step {
	t := p.Resolver.Resolve(c)
	return Step{
		Name:             fmt.Sprintf(":rocket: Deploy to %s", t.Kind.Label()),
		Action:           ActionDeploy,
		Context:          c,
		ConcurrencyGroup: fmt.Sprintf("%s/%s/deploy", p.ShortName, t.ConcurrencyScope),
		Concurrency:      1,
	}
}

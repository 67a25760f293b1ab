package pipeline

import "fmt"

type Kind string

const (
	Production Kind = "production"
	Preview    Kind = "preview"
	Staging    Kind = "staging"
)

// Label is how the kind of a target is shown in step names
func (k Kind) Label() string {
	switch k {
	case Production:
		return "Production"
	case Preview:
		return "Dev"
	default:
		return "Staging"
	}
}

// Target is the environment a build context deploys to
type Target struct {
	Kind             Kind
	Environment      string
	Hostname         string
	ConcurrencyScope string
	Replicas         int
	Production       bool
}

// Resolver maps build contexts to deployment targets
type Resolver struct {
	Mainline string

	ProductionHost string
	StagingHost    string

	// PreviewPrefix is prepended to the pull request number to name preview environments
	PreviewPrefix string
	// PreviewDomain is the parent domain of preview hosts
	PreviewDomain string
}

func DefaultResolver() *Resolver {
	return &Resolver{
		Mainline:       "master",
		ProductionHost: "docs.expo.io",
		StagingHost:    "staging.docs.expo.io",
		PreviewPrefix:  "docs-pr-",
		PreviewDomain:  "pr.exp.host",
	}
}

func (r *Resolver) Resolve(c BuildContext) Target {
	switch {
	case c.IsTagged() && !c.IsPullRequest():
		return Target{
			Kind:             Production,
			Environment:      "production",
			Hostname:         r.ProductionHost,
			ConcurrencyScope: "prod",
			Replicas:         2,
			Production:       true,
		}
	case c.IsPullRequest():
		env := fmt.Sprintf("%s%d", r.PreviewPrefix, c.PullRequest)
		return Target{
			Kind:             Preview,
			Environment:      env,
			Hostname:         fmt.Sprintf("%s.%s", env, r.PreviewDomain),
			ConcurrencyScope: fmt.Sprintf("pr-%d", c.PullRequest),
			Replicas:         1,
		}
	default:
		return Target{
			Kind:             Staging,
			Environment:      "staging",
			Hostname:         r.StagingHost,
			ConcurrencyScope: "staging",
			Replicas:         1,
		}
	}
}

// CanDeploy reports whether a context is allowed to deploy at all
func (r *Resolver) CanDeploy(c BuildContext) bool {
	return c.IsPullRequest() || c.Branch == r.Mainline || c.IsTagged()
}

// CanUpdateIndex reports whether a context may refresh the search index
func (r *Resolver) CanUpdateIndex(c BuildContext) bool {
	return c.Branch == r.Mainline || c.IsTagged()
}

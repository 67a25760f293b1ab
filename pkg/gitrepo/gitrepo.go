package gitrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-github/v27/github"
	"golang.org/x/oauth2"
	"k8s.io/klog/klogr"
)

const (
	StatePending = "pending"
	StateSuccess = "success"
	StateFailure = "failure"
)

type Client struct {
	github *github.Client

	owner, repo string

	Logger logr.Logger
}

type Option func(*Client) error

// BaseURL points the client at a GitHub Enterprise or test server
func BaseURL(u string) Option {
	return func(c *Client) error {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		parsed, err := url.Parse(u)
		if err != nil {
			return fmt.Errorf("parsing base url: %w", err)
		}
		c.github.BaseURL = parsed
		return nil
	}
}

func Logger(l logr.Logger) Option {
	return func(c *Client) error {
		c.Logger = l
		return nil
	}
}

// NewClient returns a client for the repository named "owner/name".
// An empty token yields an unauthenticated client.
func NewClient(ctx context.Context, ownerRepo, token string, opts ...Option) (*Client, error) {
	ownerAndRepo := strings.Split(ownerRepo, "/")
	if len(ownerAndRepo) != 2 || ownerAndRepo[0] == "" || ownerAndRepo[1] == "" {
		return nil, fmt.Errorf("unexpected format of repository: %q", ownerRepo)
	}

	var gc *github.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		gc = github.NewClient(oauth2.NewClient(ctx, ts))
	} else {
		gc = github.NewClient(nil)
	}

	c := &Client{
		github: gc,
		owner:  ownerAndRepo[0],
		repo:   ownerAndRepo[1],
	}

	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}

	if c.Logger == nil {
		c.Logger = klogr.New()
	}

	return c, nil
}

// Deployment describes a deployment to be recorded on GitHub
type Deployment struct {
	ProjectName    string
	Environment    string
	URL            string
	DeploymentType string

	// PullRequest is zero unless the deployment is a pull request preview
	PullRequest int

	// Ref is the commit being deployed
	Ref string
}

// StatusTimeout bounds the request that records the final state of a deployment.
// That request is not tied to the deploy context, so a cancelled deploy is still marked failed.
var StatusTimeout = 30 * time.Second

// PerformDeployment records a pending deployment, runs deploy, and marks the deployment
// success or failure depending on its outcome.
// deploy is always run. Errors from GitHub are logged and never replace the result of deploy,
// which is returned unmodified.
func (c *Client) PerformDeployment(ctx context.Context, d Deployment, deploy func(context.Context) error) error {
	id, err := c.createDeployment(ctx, d)
	if err != nil {
		c.Logger.Error(err, "deployment.create", "environment", d.Environment)
	} else if err := c.setStatus(ctx, id, d, StatePending); err != nil {
		c.Logger.Error(err, "deployment.status", "id", id, "state", StatePending)
	}

	deployErr := deploy(ctx)

	if id == 0 {
		return deployErr
	}

	state := StateSuccess
	if deployErr != nil {
		state = StateFailure
	}

	statusCtx, cancel := context.WithTimeout(context.Background(), StatusTimeout)
	defer cancel()

	if err := c.setStatus(statusCtx, id, d, state); err != nil {
		c.Logger.Error(err, "deployment.status", "id", id, "state", state)
	}

	return deployErr
}

func (c *Client) createDeployment(ctx context.Context, d Deployment) (int64, error) {
	payload := map[string]interface{}{
		"projectName":    d.ProjectName,
		"deploymentType": d.DeploymentType,
		"url":            d.URL,
	}
	if d.PullRequest != 0 {
		payload["prNumber"] = d.PullRequest
	}

	bs, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding deployment payload: %w", err)
	}

	req := &github.DeploymentRequest{
		Ref:              github.String(d.Ref),
		Task:             github.String("deploy:" + d.ProjectName),
		AutoMerge:        github.Bool(false),
		RequiredContexts: &[]string{},
		Payload:          github.String(string(bs)),
		Environment:      github.String(d.Environment),
		Description:      github.String(fmt.Sprintf("%s (%s)", d.ProjectName, d.DeploymentType)),
	}

	created, _, err := c.github.Repositories.CreateDeployment(ctx, c.owner, c.repo, req)
	if err != nil {
		return 0, fmt.Errorf("create deployment: %w", err)
	}

	c.Logger.V(1).Info("deployment.created", "id", created.GetID(), "environment", d.Environment)

	return created.GetID(), nil
}

func (c *Client) setStatus(ctx context.Context, id int64, d Deployment, state string) error {
	req := &github.DeploymentStatusRequest{
		State:          github.String(state),
		EnvironmentURL: github.String(d.URL),
		Description:    github.String(fmt.Sprintf("%s %s", d.Environment, state)),
	}

	if _, _, err := c.github.Repositories.CreateDeploymentStatus(ctx, c.owner, c.repo, id, req); err != nil {
		return fmt.Errorf("create deployment status %q: %w", state, err)
	}

	c.Logger.V(1).Info("deployment.status", "id", id, "state", state)

	return nil
}

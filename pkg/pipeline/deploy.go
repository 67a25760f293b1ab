package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/variantdev/docship/pkg/dockerregistry"
	"github.com/variantdev/docship/pkg/gitrepo"
	"github.com/variantdev/docship/pkg/helm"
	"github.com/variantdev/docship/pkg/tmpl"
	"github.com/variantdev/docship/pkg/yamlpatch"
)

// Deployer installs the docs chart into the environment of a build context,
// recording the deployment with the status tracker.
type Deployer struct {
	Resolver *Resolver
	Tracker  StatusTracker
	Cluster  ClusterDeployer
	Locks    *ScopeLocks

	// Registry, when set, is asked whether the image exists before deploying a tagged context
	Registry ImageVerifier

	Image ImageCoordinates

	ProjectName    string
	DeploymentType string
	ClusterName    string
	ChartPath      string
	ReleasePrefix  string

	// ValuesOverlay is merged over the computed values after rendering its strings as templates
	ValuesOverlay map[string]interface{}
	// ValuesPatches are JSON patches applied last
	ValuesPatches []string

	Out    io.Writer
	Logger logr.Logger
}

// ValuesData is what values overlay templates are rendered against
type ValuesData struct {
	Target  Target
	Image   ImageCoordinates
	Context BuildContext
}

func (d *Deployer) Deploy(ctx context.Context, c BuildContext) (Result, error) {
	logger := loggerOrDefault(d.Logger)

	if !d.Resolver.CanDeploy(c) {
		logger.V(1).Info("deploy.skip", "context", c.String())
		return skipped(string(ActionDeploy), fmt.Sprintf("%s is not deployable", c)), nil
	}

	t := d.Resolver.Resolve(c)

	release, err := d.Release(t, c)
	if err != nil {
		return Result{}, &DeployError{Environment: t.Environment, Err: err}
	}

	locks := d.Locks
	if locks == nil {
		locks = defaultScopeLocks
	}

	logger.V(1).Info("deploy.lock", "scope", t.ConcurrencyScope)

	unlock, err := locks.Acquire(ctx, t.ConcurrencyScope)
	if err != nil {
		return Result{}, &DeployError{Environment: t.Environment, Err: err}
	}
	defer unlock()

	if c.IsTagged() && d.Registry != nil {
		if err := d.verifyImage(ctx); err != nil {
			return Result{}, &DeployError{Environment: t.Environment, Err: err}
		}
	}

	collapsed(d.Out, ":gcloud: Deploy to K8s...")

	logger.Info("deploy.begin", "environment", t.Environment, "host", t.Hostname, "image", d.Image.String())

	record := gitrepo.Deployment{
		ProjectName:    d.ProjectName,
		Environment:    t.Environment,
		URL:            "https://" + t.Hostname,
		DeploymentType: d.DeploymentType,
		PullRequest:    c.PullRequest,
		Ref:            d.Image.Tag,
	}

	err = d.Tracker.PerformDeployment(ctx, record, func(ctx context.Context) error {
		return d.Cluster.DeployChart(ctx, release)
	})
	if err != nil {
		logger.Error(err, "deploy.failed", "environment", t.Environment)
		return Result{}, &DeployError{Environment: t.Environment, Err: err}
	}

	logger.Info("deploy.done", "environment", t.Environment)

	return succeeded(string(ActionDeploy)), nil
}

// Release builds the chart release for a target
func (d *Deployer) Release(t Target, c BuildContext) (helm.Release, error) {
	values, err := d.Values(t, c)
	if err != nil {
		return helm.Release{}, err
	}

	return helm.Release{
		ClusterName: d.ClusterName,
		ChartPath:   d.ChartPath,
		Namespace:   t.Environment,
		ReleaseName: d.ReleasePrefix + t.Environment,
		Values:      values,
	}, nil
}

func (d *Deployer) Values(t Target, c BuildContext) (map[string]interface{}, error) {
	values := map[string]interface{}{
		"image": map[string]interface{}{
			"repository": d.Image.Repository,
			"tag":        d.Image.Tag,
		},
		"replicaCount": t.Replicas,
		"ingress": []interface{}{
			map[string]interface{}{"host": t.Hostname},
		},
	}

	if len(d.ValuesOverlay) > 0 {
		overlay, err := tmpl.RenderValues(d.ValuesOverlay, ValuesData{Target: t, Image: d.Image, Context: c})
		if err != nil {
			return nil, fmt.Errorf("rendering values overlay: %w", err)
		}
		values = yamlpatch.Merge(values, overlay)
	}

	if len(d.ValuesPatches) > 0 {
		patched, err := yamlpatch.Patch(values, d.ValuesPatches...)
		if err != nil {
			return nil, fmt.Errorf("patching values: %w", err)
		}
		values = patched
	}

	return values, nil
}

func (d *Deployer) verifyImage(ctx context.Context) error {
	_, repo := dockerregistry.SplitImage(d.Image.Repository)

	ok, err := d.Registry.HasTag(ctx, repo, d.Image.Tag)
	if err != nil {
		return fmt.Errorf("verifying image %s: %w", d.Image, err)
	}
	if !ok {
		return fmt.Errorf("image %s not found in registry", d.Image)
	}
	return nil
}

package pipeline

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/variantdev/docship/pkg/gitrepo"
	"github.com/variantdev/docship/pkg/helm"
	"github.com/variantdev/docship/pkg/rocker"
	"k8s.io/klog/klogr"
)

type ImageBuilder interface {
	Build(ctx context.Context, opts rocker.BuildOptions) error
}

type ClusterDeployer interface {
	DeployChart(ctx context.Context, r helm.Release) error
}

// StatusTracker must run deploy, record its outcome, and return its error unmodified
type StatusTracker interface {
	PerformDeployment(ctx context.Context, d gitrepo.Deployment, deploy func(context.Context) error) error
}

type VCS interface {
	RevParser
	Tag(ctx context.Context, name string) error
	Push(ctx context.Context, remote, ref string) error
}

type IndexUpdater interface {
	Update(ctx context.Context, hostname string) error
}

// Uploader appends steps to the run that is currently executing
type Uploader interface {
	UploadSteps(ctx context.Context, steps []Step) error
}

// Approver blocks until a human approves the block step, or returns an error
type Approver interface {
	Approve(ctx context.Context, s Step) error
}

type ImageVerifier interface {
	HasTag(ctx context.Context, repository, tag string) (bool, error)
}

type ImageCoordinates struct {
	Repository string
	Tag        string
}

func (c ImageCoordinates) String() string {
	return fmt.Sprintf("%s:%s", c.Repository, c.Tag)
}

func loggerOrDefault(l logr.Logger) logr.Logger {
	if l == nil {
		return klogr.New()
	}
	return l
}

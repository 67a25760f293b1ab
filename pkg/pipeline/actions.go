package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/variantdev/docship/pkg/telemetry"
)

// StepRunner executes the side effect of a single step
type StepRunner interface {
	Run(ctx context.Context, s Step) (Result, error)
}

// Actions dispatches steps to the action implementing them
type Actions struct {
	Build   *ImageBuild
	Deploy  *Deployer
	Index   *IndexUpdate
	Release *Tagger

	// Metrics, when set, counts steps by pipeline and action
	Metrics  *telemetry.Metrics
	Pipeline string

	Logger logr.Logger
}

func (a *Actions) Run(ctx context.Context, s Step) (Result, error) {
	logger := loggerOrDefault(a.Logger)

	start := time.Now()

	res, err := a.dispatch(ctx, s)

	status := telemetry.StatusSuccess
	switch {
	case err != nil:
		status = telemetry.StatusError
		logger.Error(err, "step.failed", "step", s.Name)
	case res.Outcome == Skipped:
		status = telemetry.StatusSkipped
		logger.Info("step.skipped", "step", s.Name, "reason", res.Reason)
	default:
		logger.V(1).Info("step.succeeded", "step", s.Name)
	}

	if a.Metrics != nil {
		if merr := a.Metrics.Observe("step", start, time.Now(), status, a.Pipeline, string(s.Action)); merr != nil {
			logger.Error(merr, "step.metrics", "step", s.Name)
		}
	}

	if err != nil {
		return Result{}, err
	}

	res.Step = s.Name
	return res, nil
}

func (a *Actions) dispatch(ctx context.Context, s Step) (Result, error) {
	switch s.Action {
	case ActionBuild:
		if a.Build == nil {
			break
		}
		return a.Build.Build(ctx, s.Context)
	case ActionDeploy:
		if a.Deploy == nil {
			break
		}
		return a.Deploy.Deploy(ctx, s.Context)
	case ActionUpdateSearchIndex:
		if a.Index == nil {
			break
		}
		return a.Index.UpdateIndex(ctx, s.Context)
	case ActionTagRelease:
		if a.Release == nil {
			break
		}
		return a.Release.TagRelease(ctx, s.Context)
	case ActionWait, ActionBlock:
		return Result{}, fmt.Errorf("step %q is a %s step and has nothing to run", s.Name, s.Action)
	default:
		return Result{}, fmt.Errorf("step %q has unknown action %q", s.Name, s.Action)
	}

	return Result{}, fmt.Errorf("no %s action configured for step %q", s.Action, s.Name)
}

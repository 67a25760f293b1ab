package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"
)

// Tagger cuts a release tag and feeds the steps for the tagged context back into the running pipeline
type Tagger struct {
	Namer    *VersionNamer
	VCS      VCS
	Planner  *Planner
	Uploader Uploader

	Remote    string
	TagPrefix string

	Out    io.Writer
	Logger logr.Logger
}

func (t *Tagger) TagRelease(ctx context.Context, c BuildContext) (Result, error) {
	logger := loggerOrDefault(t.Logger)

	collapsed(t.Out, ":git: Tagging Release...")

	name, err := t.Namer.Name(ctx)
	if err != nil {
		return Result{}, err
	}

	tag := t.TagPrefix + name

	if err := t.VCS.Tag(ctx, tag); err != nil {
		return Result{}, &VCSPushError{Remote: t.Remote, Tag: tag, Err: err}
	}

	collapsed(t.Out, ":github: Pushing Release...")

	if err := t.VCS.Push(ctx, t.Remote, tag); err != nil {
		return Result{}, &VCSPushError{Remote: t.Remote, Tag: tag, Err: err}
	}

	logger.Info("release.tagged", "tag", tag, "remote", t.Remote)

	next := BuildContext{Branch: c.Branch, Tag: tag}
	steps := t.Planner.Plan(next)

	if err := t.Uploader.UploadSteps(ctx, steps); err != nil {
		return Result{}, fmt.Errorf("uploading steps for %s: %w", next, err)
	}

	logger.V(1).Info("release.uploaded", "steps", len(steps))

	return succeeded(string(ActionTagRelease)), nil
}

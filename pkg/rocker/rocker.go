// Package rocker builds and pushes container images with the rocker CLI.
package rocker

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-logr/logr"
	"github.com/variantdev/docship/pkg/shell"
	"k8s.io/klog/klogr"
)

type BuildOptions struct {
	// Rockerfile is the path to the Rockerfile (or Dockerfile) to build
	Rockerfile string

	// Context is the build context directory
	Context string

	Vars map[string]string

	Pull bool
	Push bool
}

type Builder struct {
	Logger logr.Logger

	Shell *shell.Shell

	Dir string

	rocker string
}

func New(sh *shell.Shell, logger logr.Logger) *Builder {
	if sh == nil {
		sh = shell.New()
	}
	if logger == nil {
		logger = klogr.New()
	}
	return &Builder{
		Logger: logger,
		Shell:  sh,
		rocker: "rocker",
	}
}

// Args returns the command line passed to rocker for opts
func Args(opts BuildOptions) []string {
	args := []string{"build"}

	if opts.Rockerfile != "" {
		args = append(args, "-f", opts.Rockerfile)
	}

	keys := make([]string, 0, len(opts.Vars))
	for k := range opts.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--var", fmt.Sprintf("%s=%s", k, opts.Vars[k]))
	}

	if opts.Pull {
		args = append(args, "--pull")
	}
	if opts.Push {
		args = append(args, "--push")
	}

	ctxDir := opts.Context
	if ctxDir == "" {
		ctxDir = "."
	}

	return append(args, ctxDir)
}

// Build runs rocker, streaming its output to the logger line by line
func (b *Builder) Build(ctx context.Context, opts BuildOptions) error {
	cmd := &shell.Command{
		Name: b.rocker,
		Args: Args(opts),
		Dir:  b.Dir,
	}

	res, err := b.Shell.Capture(ctx, cmd, shell.CaptureOpts{
		LogStdout: func(s string) { b.Logger.Info(s) },
		LogStderr: func(s string) { b.Logger.Info(s, "stream", "stderr") },
	})
	if err != nil {
		status := 1
		if res != nil {
			status = res.ExitStatus
		}
		return fmt.Errorf("rocker build %s (exit status %d): %w", opts.Rockerfile, status, err)
	}

	return nil
}

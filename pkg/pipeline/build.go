package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/twpayne/go-vfs"
	"github.com/variantdev/docship/pkg/pkgmeta"
	"github.com/variantdev/docship/pkg/rocker"
)

// ImageBuild builds and pushes the docs image for the triggering commit
type ImageBuild struct {
	Builder ImageBuilder
	FS      vfs.FS

	// CacheDirs are removed before every build since stale site generator caches drop content
	CacheDirs []string

	PackageJSON string
	Rockerfile  string
	ContextDir  string

	Image ImageCoordinates

	Out    io.Writer
	Logger logr.Logger
}

func (b *ImageBuild) Build(ctx context.Context, c BuildContext) (Result, error) {
	logger := loggerOrDefault(b.Logger)

	fs := b.FS
	if fs == nil {
		fs = vfs.HostOSFS
	}

	collapsed(b.Out, ":hammer: Building Docs...")

	for _, dir := range b.CacheDirs {
		logger.V(1).Info("build.clean", "dir", dir)
		if err := fs.RemoveAll(dir); err != nil {
			return Result{}, &BuildError{Image: b.Image.String(), Err: fmt.Errorf("removing cache %s: %w", dir, err)}
		}
	}

	version, err := pkgmeta.Version(fs, b.PackageJSON)
	if err != nil {
		return Result{}, &BuildError{Image: b.Image.String(), Err: err}
	}

	contextDir := b.ContextDir
	if contextDir == "" {
		contextDir = "."
	}

	opts := rocker.BuildOptions{
		Rockerfile: b.Rockerfile,
		Context:    contextDir,
		Vars: map[string]string{
			"ImageName":   b.Image.Repository,
			"ImageTag":    b.Image.Tag,
			"DocsVersion": version,
		},
		Pull: true,
		Push: true,
	}

	logger.Info("build.begin", "image", b.Image.String(), "version", version, "context", c.String())

	if err := b.Builder.Build(ctx, opts); err != nil {
		return Result{}, &BuildError{Image: b.Image.String(), Err: err}
	}

	return succeeded(string(ActionBuild)), nil
}

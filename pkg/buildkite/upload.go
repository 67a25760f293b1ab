package buildkite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/twpayne/go-vfs"
	"github.com/variantdev/docship/pkg/cmdsite"
	"github.com/variantdev/docship/pkg/pipeline"
	"k8s.io/klog/klogr"
)

// Uploader appends steps to the running build with `buildkite-agent pipeline upload`
type Uploader struct {
	Logger logr.Logger

	Renderer *Renderer

	// Dir is where rendered pipeline files are kept for the agent to read
	Dir string

	fs    vfs.FS
	site  *cmdsite.CommandSite
	agent string
	now   func() time.Time
}

type Option func(*Uploader)

func Commander(cmdr cmdsite.RunCommand) Option {
	return func(u *Uploader) {
		u.site = cmdsite.New(cmdsite.RunCmd(cmdr))
	}
}

func FS(fs vfs.FS) Option {
	return func(u *Uploader) {
		u.fs = fs
	}
}

func Dir(dir string) Option {
	return func(u *Uploader) {
		u.Dir = dir
	}
}

func Logger(l logr.Logger) Option {
	return func(u *Uploader) {
		u.Logger = l
	}
}

func Now(now func() time.Time) Option {
	return func(u *Uploader) {
		u.now = now
	}
}

func NewUploader(r *Renderer, opts ...Option) *Uploader {
	u := &Uploader{
		Renderer: r,
		agent:    "buildkite-agent",
	}

	for _, o := range opts {
		o(u)
	}

	if u.Logger == nil {
		u.Logger = klogr.New()
	}

	if u.fs == nil {
		u.fs = vfs.HostOSFS
	}

	if u.site == nil {
		u.site = cmdsite.New()
	}

	if u.Dir == "" {
		u.Dir = ".docship/buildkite"
	}

	if u.now == nil {
		u.now = time.Now
	}

	return u
}

// UploadSteps renders steps to a file and hands it to the agent
func (u *Uploader) UploadSteps(ctx context.Context, steps []pipeline.Step) error {
	if len(steps) == 0 {
		u.Logger.V(1).Info("upload.empty")
		return nil
	}

	bs, err := u.Renderer.Render(steps)
	if err != nil {
		return err
	}

	if err := vfs.MkdirAll(u.fs, u.Dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(u.Dir, fmt.Sprintf("pipeline-%d.yml", u.now().UnixNano()))

	if err := u.fs.WriteFile(path, bs, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	u.Logger.V(1).Info("upload.begin", "path", path, "steps", len(steps))

	if err := u.site.RunCommand(ctx, u.agent, []string{"pipeline", "upload", path}, os.Stdout, os.Stderr); err != nil {
		return fmt.Errorf("uploading %s: %w", path, err)
	}

	return nil
}

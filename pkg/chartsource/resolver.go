// Package chartsource resolves a helm chart reference to a local directory.
//
// A reference is either a path to a chart directory in the working tree or any go-getter URL,
// e.g. "git::https://github.com/expo/charts.git//docs?ref=v1.2.0". Remote charts are fetched once
// into the cache directory and reused by subsequent deploys in the same workspace.
package chartsource

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-getter"
	"github.com/twpayne/go-vfs"
	"k8s.io/klog/klogr"
)

type Getter interface {
	Get(dst, src string) error
}

type GoGetter struct {
	// Pwd is used to resolve relative go-getter sources
	Pwd string
}

func (g *GoGetter) Get(dst, src string) error {
	client := &getter.Client{
		Src:  src,
		Dst:  dst,
		Pwd:  g.Pwd,
		Mode: getter.ClientModeDir,
	}
	return client.Get()
}

type Resolver struct {
	Logger logr.Logger

	// Home is the directory remote charts are cached under
	Home string

	Getter Getter

	fs vfs.FS
}

type Option func(*Resolver)

func Home(dir string) Option {
	return func(r *Resolver) {
		r.Home = dir
	}
}

func FS(fs vfs.FS) Option {
	return func(r *Resolver) {
		r.fs = fs
	}
}

func WithGetter(g Getter) Option {
	return func(r *Resolver) {
		r.Getter = g
	}
}

func Logger(l logr.Logger) Option {
	return func(r *Resolver) {
		r.Logger = l
	}
}

func New(opts ...Option) *Resolver {
	r := &Resolver{}

	for _, o := range opts {
		o(r)
	}

	if r.Logger == nil {
		r.Logger = klogr.New()
	}

	if r.fs == nil {
		r.fs = vfs.HostOSFS
	}

	if r.Home == "" {
		r.Home = ".docship/cache/charts"
	}

	if r.Getter == nil {
		r.Getter = &GoGetter{}
	}

	return r
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Resolve returns a local directory containing the chart referenced by src
func (r *Resolver) Resolve(src string) (string, error) {
	if r.dirExists(src) {
		return src, nil
	}

	dst := filepath.Join(r.Home, unsafeChars.ReplaceAllString(src, "_"))
	if r.dirExists(dst) {
		r.Logger.V(1).Info("chart.cached", "src", src, "dir", dst)
		return dst, nil
	}

	r.Logger.V(1).Info("chart.fetch", "src", src, "dir", dst)

	if err := r.Getter.Get(dst, src); err != nil {
		return "", fmt.Errorf("fetching chart %q: %w", src, err)
	}

	return dst, nil
}

func (r *Resolver) dirExists(path string) bool {
	s, err := r.fs.Stat(path)
	return err == nil && s != nil && s.IsDir()
}

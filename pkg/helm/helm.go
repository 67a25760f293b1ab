// Package helm deploys charts to a cluster with the helm CLI.
package helm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/twpayne/go-vfs"
	"github.com/variantdev/docship/pkg/chartsource"
	"github.com/variantdev/docship/pkg/cmdsite"
	"github.com/variantdev/docship/pkg/yamlpatch"
	"k8s.io/klog/klogr"
)

// Release is a declarative description of one chart installation
type Release struct {
	ClusterName string
	ChartPath   string
	Namespace   string
	ReleaseName string
	Values      map[string]interface{}
}

type Deployer struct {
	Logger logr.Logger

	// WorkDir is where rendered values files are written
	WorkDir string

	// Timeout is passed to helm --timeout when non-empty, e.g. "10m"
	Timeout string

	fs     vfs.FS
	site   *cmdsite.CommandSite
	charts *chartsource.Resolver
	helm   string
}

type Option func(*Deployer)

func Commander(cmdr cmdsite.RunCommand) Option {
	return func(d *Deployer) {
		d.site = cmdsite.New(cmdsite.RunCmd(cmdr))
	}
}

func FS(fs vfs.FS) Option {
	return func(d *Deployer) {
		d.fs = fs
	}
}

func Charts(r *chartsource.Resolver) Option {
	return func(d *Deployer) {
		d.charts = r
	}
}

func WorkDir(dir string) Option {
	return func(d *Deployer) {
		d.WorkDir = dir
	}
}

func Logger(l logr.Logger) Option {
	return func(d *Deployer) {
		d.Logger = l
	}
}

func Timeout(t string) Option {
	return func(d *Deployer) {
		d.Timeout = t
	}
}

func New(opts ...Option) *Deployer {
	d := &Deployer{
		helm: "helm",
	}

	for _, o := range opts {
		o(d)
	}

	if d.Logger == nil {
		d.Logger = klogr.New()
	}

	if d.fs == nil {
		d.fs = vfs.HostOSFS
	}

	if d.site == nil {
		d.site = cmdsite.New()
	}

	if d.charts == nil {
		d.charts = chartsource.New(chartsource.FS(d.fs), chartsource.Logger(d.Logger))
	}

	if d.WorkDir == "" {
		d.WorkDir = ".docship/helm"
	}

	return d
}

// DeployChart installs or upgrades the release and waits for it to become ready
func (d *Deployer) DeployChart(ctx context.Context, r Release) error {
	chart, err := d.charts.Resolve(r.ChartPath)
	if err != nil {
		return err
	}

	valuesFile, err := d.writeValues(r)
	if err != nil {
		return err
	}

	args := []string{
		"upgrade", r.ReleaseName, chart,
		"--install",
		"--namespace", r.Namespace,
		"--values", valuesFile,
		"--wait",
	}
	if r.ClusterName != "" {
		args = append(args, "--kube-context", r.ClusterName)
	}
	if d.Timeout != "" {
		args = append(args, "--timeout", d.Timeout)
	}

	d.Logger.V(1).Info("helm.upgrade", "release", r.ReleaseName, "namespace", r.Namespace, "cluster", r.ClusterName)

	if err := d.site.RunCommand(ctx, d.helm, args, os.Stdout, os.Stderr); err != nil {
		return fmt.Errorf("helm upgrade %s: %w", r.ReleaseName, err)
	}

	return nil
}

func (d *Deployer) writeValues(r Release) (string, error) {
	bs, err := yamlpatch.Marshal(r.Values)
	if err != nil {
		return "", fmt.Errorf("marshalling values for %s: %w", r.ReleaseName, err)
	}

	if err := vfs.MkdirAll(d.fs, d.WorkDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(d.WorkDir, r.ReleaseName+".values.yaml")

	d.Logger.V(2).Info("helm.values", "path", path, "data", string(bs))

	if err := d.fs.WriteFile(path, bs, 0644); err != nil {
		return "", err
	}

	return path, nil
}

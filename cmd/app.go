package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
	"github.com/twpayne/go-vfs"
	"github.com/variantdev/docship/pkg/buildkite"
	"github.com/variantdev/docship/pkg/chartsource"
	"github.com/variantdev/docship/pkg/config"
	"github.com/variantdev/docship/pkg/dockerregistry"
	"github.com/variantdev/docship/pkg/gitops"
	"github.com/variantdev/docship/pkg/gitrepo"
	"github.com/variantdev/docship/pkg/helm"
	"github.com/variantdev/docship/pkg/pipeline"
	"github.com/variantdev/docship/pkg/rocker"
	"github.com/variantdev/docship/pkg/searchindex"
	"github.com/variantdev/docship/pkg/shell"
	"github.com/variantdev/docship/pkg/telemetry"
)

type contextOptions struct {
	branch string
	tag    string
	pr     int
}

func (o *contextOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.branch, "branch", "", "Branch of the build. Defaults to $BUILDKITE_BRANCH on Buildkite, or the checked out branch")
	fs.StringVar(&o.tag, "tag", "", "Release tag of the build, if any")
	fs.IntVar(&o.pr, "pr", 0, "Pull request number of the build, if any")
}

type app struct {
	conf    *config.Config
	log     logr.Logger
	git     *gitops.Client
	metrics *telemetry.Metrics

	// command is how uploaded Buildkite steps invoke this binary
	command []string
}

// executable is the command uploaded steps run
var executable = os.Args[0]

func newApp(configPath string, log logr.Logger) (*app, error) {
	conf, err := config.Load(vfs.HostOSFS, configPath)
	if err != nil {
		return nil, err
	}

	metrics := telemetry.NewMetrics("docship", []string{"pipeline", "step"},
		telemetry.WithConstLabels(conf.Metrics.Labels),
	)
	var histogramOpts []telemetry.HistogramOption
	if len(conf.Metrics.Buckets) > 0 {
		histogramOpts = append(histogramOpts, telemetry.WithHistogramBuckets(conf.Metrics.Buckets))
	}
	metrics.EnableHandlingTimeHistogram(histogramOpts...)

	command := []string{executable}
	if configPath != config.DefaultPath {
		command = append(command, "--config", configPath)
	}

	return &app{
		conf:    conf,
		log:     log,
		git:     gitops.New(),
		metrics: metrics,
		command: command,
	}, nil
}

// buildContext prefers flags, then the Buildkite environment, then the local checkout
func (a *app) buildContext(ctx context.Context, o *contextOptions, fs *pflag.FlagSet) (pipeline.BuildContext, error) {
	if fs.Changed("branch") || fs.Changed("tag") || fs.Changed("pr") {
		return pipeline.BuildContext{Branch: o.branch, Tag: o.tag, PullRequest: o.pr}, nil
	}

	if os.Getenv("BUILDKITE") == "true" {
		return buildkite.FromEnv(os.Getenv)
	}

	branch, err := a.git.GetCurrentBranch(ctx)
	if err != nil {
		return pipeline.BuildContext{}, fmt.Errorf("detecting branch: %w", err)
	}

	return pipeline.BuildContext{Branch: branch}, nil
}

func (a *app) commit(ctx context.Context) (string, error) {
	if c := os.Getenv(a.conf.CommitEnv); c != "" {
		return c, nil
	}

	c, err := a.git.Commit(ctx, "HEAD")
	if err != nil {
		return "", fmt.Errorf("$%s is not set and HEAD cannot be resolved: %w", a.conf.CommitEnv, err)
	}
	return c, nil
}

func (a *app) uploader() *buildkite.Uploader {
	return buildkite.NewUploader(&buildkite.Renderer{Command: a.command}, buildkite.Logger(a.log))
}

func (a *app) versionNamer(ctx context.Context) (*pipeline.VersionNamer, error) {
	commit, err := a.commit(ctx)
	if err != nil {
		return nil, err
	}
	return &pipeline.VersionNamer{VCS: a.git, Commit: commit}, nil
}

func (a *app) actions(ctx context.Context, uploader pipeline.Uploader) (*pipeline.Actions, error) {
	conf := a.conf

	commit, err := a.commit(ctx)
	if err != nil {
		return nil, err
	}

	image := pipeline.ImageCoordinates{Repository: conf.Image.Repository, Tag: commit}
	resolver := conf.Resolver()

	sh := shell.New()

	tracker, err := a.tracker(ctx)
	if err != nil {
		return nil, err
	}

	cluster := helm.New(
		helm.Logger(a.log),
		helm.Charts(chartsource.New(chartsource.Logger(a.log))),
		helm.Timeout(conf.Deploy.Timeout),
	)

	deployer := &pipeline.Deployer{
		Resolver:       resolver,
		Tracker:        tracker,
		Cluster:        cluster,
		Locks:          pipeline.NewScopeLocks(),
		Image:          image,
		ProjectName:    conf.Deploy.ProjectName,
		DeploymentType: conf.Deploy.DeploymentType,
		ClusterName:    conf.Deploy.ClusterName,
		ChartPath:      conf.Deploy.Chart,
		ReleasePrefix:  conf.Deploy.ReleasePrefix,
		ValuesOverlay:  conf.Deploy.Values,
		ValuesPatches:  conf.Deploy.ValuesPatches,
		Out:            os.Stdout,
		Logger:         a.log,
	}

	if conf.Image.Verify {
		base, _ := dockerregistry.SplitImage(conf.Image.Repository)
		registry, err := dockerregistry.New(base, os.Getenv(conf.Image.RegistryUserEnv), os.Getenv(conf.Image.RegistryPasswordEnv))
		if err != nil {
			return nil, err
		}
		deployer.Registry = registry
	}

	return &pipeline.Actions{
		Build: &pipeline.ImageBuild{
			Builder:     rocker.New(sh, a.log),
			FS:          vfs.HostOSFS,
			CacheDirs:   conf.Image.CacheDirs,
			PackageJSON: conf.Image.PackageJSON,
			Rockerfile:  conf.Image.Rockerfile,
			ContextDir:  conf.Image.Context,
			Image:       image,
			Out:         os.Stdout,
			Logger:      a.log,
		},
		Deploy: deployer,
		Index: &pipeline.IndexUpdate{
			Resolver: resolver,
			Updater:  searchindex.New(sh, conf.SearchIndex.Command, conf.SearchIndex.Args...),
			Out:      os.Stdout,
			Logger:   a.log,
		},
		Release: &pipeline.Tagger{
			Namer:     &pipeline.VersionNamer{VCS: a.git, Commit: commit},
			VCS:       a.git,
			Planner:   conf.Planner(),
			Uploader:  uploader,
			Remote:    conf.Release.Remote,
			TagPrefix: conf.Release.TagPrefix,
			Out:       os.Stdout,
			Logger:    a.log,
		},
		Metrics:  a.metrics,
		Pipeline: conf.ShortName,
		Logger:   a.log,
	}, nil
}

func (a *app) tracker(ctx context.Context) (*gitrepo.Client, error) {
	conf := a.conf

	repo := conf.GitHub.Repository
	if repo == "" {
		r, err := a.git.Repo(ctx, conf.Release.Remote)
		if err != nil {
			return nil, fmt.Errorf("detecting github repository: %w", err)
		}
		repo = r
	}

	opts := []gitrepo.Option{gitrepo.Logger(a.log)}
	if conf.GitHub.BaseURL != "" {
		opts = append(opts, gitrepo.BaseURL(conf.GitHub.BaseURL))
	}

	return gitrepo.NewClient(ctx, repo, os.Getenv(conf.GitHub.TokenEnv), opts...)
}

// observe records a whole run and pushes the metrics gathered by this process
func (a *app) observe(start time.Time, err error) {
	status := telemetry.StatusSuccess
	if err != nil {
		status = telemetry.StatusError
	}

	if oerr := a.metrics.Observe("pipeline", start, time.Now(), status, a.conf.ShortName); oerr != nil {
		a.log.Error(oerr, "metrics.observe")
	}

	gw := a.conf.Metrics.Pushgateway
	if gw == "" {
		return
	}

	if perr := a.metrics.Push(gw, a.conf.Metrics.Job); perr != nil {
		a.log.Error(perr, "metrics.push", "pushgateway", gw)
		return
	}

	a.log.V(1).Info("metrics.pushed", "pushgateway", gw)
}

package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/variantdev/docship/pkg/gitrepo"
	"github.com/variantdev/docship/pkg/helm"
	"github.com/variantdev/docship/pkg/rocker"
)

type fakeVCS struct {
	mu sync.Mutex

	short   string
	lookErr error
	tagErr  error
	pushErr error

	calls []string
}

func (v *fakeVCS) record(format string, args ...interface{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, fmt.Sprintf(format, args...))
}

func (v *fakeVCS) RevParse(ctx context.Context, shortLen int, ref string) (string, error) {
	v.record("rev-parse --short=%d %s", shortLen, ref)
	return v.short, v.lookErr
}

func (v *fakeVCS) Tag(ctx context.Context, name string) error {
	v.record("tag %s", name)
	return v.tagErr
}

func (v *fakeVCS) Push(ctx context.Context, remote, ref string) error {
	v.record("push %s %s", remote, ref)
	return v.pushErr
}

type fakeTracker struct {
	mu sync.Mutex

	records []gitrepo.Deployment
	states  []string
}

func (t *fakeTracker) PerformDeployment(ctx context.Context, d gitrepo.Deployment, deploy func(context.Context) error) error {
	t.mu.Lock()
	t.records = append(t.records, d)
	t.states = append(t.states, gitrepo.StatePending)
	t.mu.Unlock()

	err := deploy(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.states = append(t.states, gitrepo.StateFailure)
		return err
	}
	t.states = append(t.states, gitrepo.StateSuccess)
	return nil
}

type interval struct {
	start, end time.Time
}

type fakeCluster struct {
	mu sync.Mutex

	delay time.Duration
	err   error

	releases  []helm.Release
	intervals []interval
	active    int
	maxActive int
}

func (c *fakeCluster) DeployChart(ctx context.Context, r helm.Release) error {
	c.mu.Lock()
	c.active++
	if c.active > c.maxActive {
		c.maxActive = c.active
	}
	c.releases = append(c.releases, r)
	c.mu.Unlock()

	start := time.Now()
	time.Sleep(c.delay)
	end := time.Now()

	c.mu.Lock()
	c.active--
	c.intervals = append(c.intervals, interval{start: start, end: end})
	c.mu.Unlock()

	return c.err
}

type fakeBuilder struct {
	err  error
	opts []rocker.BuildOptions
}

func (b *fakeBuilder) Build(ctx context.Context, opts rocker.BuildOptions) error {
	b.opts = append(b.opts, opts)
	return b.err
}

type fakeUpdater struct {
	err   error
	hosts []string
}

func (u *fakeUpdater) Update(ctx context.Context, hostname string) error {
	u.hosts = append(u.hosts, hostname)
	return u.err
}

type fakeUploader struct {
	err     error
	batches [][]Step
}

func (u *fakeUploader) UploadSteps(ctx context.Context, steps []Step) error {
	u.batches = append(u.batches, steps)
	return u.err
}

type fakeRegistry struct {
	tags  map[string]bool
	calls []string
}

func (r *fakeRegistry) HasTag(ctx context.Context, repository, tag string) (bool, error) {
	r.calls = append(r.calls, repository+":"+tag)
	return r.tags[tag], nil
}

type approverFunc func(ctx context.Context, s Step) error

func (f approverFunc) Approve(ctx context.Context, s Step) error {
	return f(ctx, s)
}

type runnerFunc func(ctx context.Context, s Step) (Result, error)

func (f runnerFunc) Run(ctx context.Context, s Step) (Result, error) {
	return f(ctx, s)
}

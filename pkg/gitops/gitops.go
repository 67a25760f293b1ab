package gitops

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/variantdev/docship/pkg/cmdsite"
)

type Client struct {
	cmdr    cmdsite.RunCommand
	sh      *cmdsite.CommandSite
	wd      string
	gitPath string
}

func WD(wd string) Option {
	return func(c *Client) {
		c.wd = wd
	}
}

func Commander(cmdr cmdsite.RunCommand) Option {
	return func(c *Client) {
		c.cmdr = cmdr
	}
}

type Option func(*Client)

func New(opt ...Option) *Client {
	c := &Client{}

	for _, o := range opt {
		o(c)
	}

	opts := []cmdsite.Option{cmdsite.Dir(c.wd)}
	if c.cmdr != nil {
		opts = append(opts, cmdsite.RunCmd(c.cmdr))
	}

	c.sh = cmdsite.New(opts...)
	c.gitPath = "git"

	return c
}

// RevParse resolves ref to an abbreviated object name of exactly shortLen characters
func (c *Client) RevParse(ctx context.Context, shortLen int, ref string) (string, error) {
	stdout, _, err := c.sh.CaptureStrings(ctx, c.gitPath, []string{"rev-parse", fmt.Sprintf("--short=%d", shortLen), ref})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// Commit resolves ref to its full object name
func (c *Client) Commit(ctx context.Context, ref string) (string, error) {
	stdout, _, err := c.sh.CaptureStrings(ctx, c.gitPath, []string{"rev-parse", "--verify", ref + "^{commit}"})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

func (c *Client) Tag(ctx context.Context, name string) error {
	return c.git(ctx, "tag", []string{name})
}

func (c *Client) Push(ctx context.Context, remote, ref string) error {
	return c.git(ctx, "push", []string{remote, ref})
}

func (c *Client) GetCurrentBranch(ctx context.Context) (string, error) {
	stdout, _, err := c.sh.CaptureStrings(ctx, c.gitPath, []string{"rev-parse", "--abbrev-ref", "HEAD"})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

func (c *Client) GetPushURL(ctx context.Context, name string) (string, error) {
	stdout, _, err := c.sh.CaptureStrings(ctx, c.gitPath, []string{"remote", "get-url", "--push", name})
	if err != nil {
		return "", err
	}
	return stdout, nil
}

// Repo returns the owner/name of the GitHub repository behind the remote
func (c *Client) Repo(ctx context.Context, remote string) (string, error) {
	push, err := c.GetPushURL(ctx, remote)
	if err != nil {
		return "", err
	}
	p := strings.TrimSpace(push)
	p = strings.TrimSuffix(p, ".git")
	p = strings.TrimPrefix(p, "git@github.com:")
	p = strings.TrimPrefix(p, "https://github.com/")
	return p, nil
}

func (c *Client) git(ctx context.Context, cmd string, args []string) error {
	return c.sh.RunCommand(ctx, c.gitPath, append([]string{cmd}, args...), os.Stdout, os.Stderr)
}

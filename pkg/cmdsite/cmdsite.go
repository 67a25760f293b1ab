package cmdsite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"k8s.io/klog"
)

// RunCommand runs the named binary to completion, writing its output to stdout and stderr.
// env is added on top of the environment of the current process.
type RunCommand func(ctx context.Context, name string, args []string, stdout, stderr io.Writer, env map[string]string) error

type CommandSite struct {
	RunCmd RunCommand

	// Dir is the working directory of every command run from this site
	Dir string

	Env map[string]string
}

type Option func(*CommandSite)

func RunCmd(r RunCommand) Option {
	return func(s *CommandSite) {
		s.RunCmd = r
	}
}

func Dir(dir string) Option {
	return func(s *CommandSite) {
		s.Dir = dir
	}
}

func New(opts ...Option) *CommandSite {
	s := &CommandSite{
		Env: map[string]string{},
	}

	for _, o := range opts {
		o(s)
	}

	if s.RunCmd == nil {
		s.RunCmd = DefaultRunCommandIn(s.Dir)
	}

	return s
}

func DefaultRunCommand(ctx context.Context, name string, args []string, stdout, stderr io.Writer, env map[string]string) error {
	return DefaultRunCommandIn("")(ctx, name, args, stdout, stderr, env)
}

func DefaultRunCommandIn(dir string) RunCommand {
	return func(ctx context.Context, name string, args []string, stdout, stderr io.Writer, env map[string]string) error {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Dir = dir
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
		return cmd.Run()
	}
}

func (s *CommandSite) RunCommand(ctx context.Context, cmd string, args []string, stdout, stderr io.Writer) error {
	klog.V(1).Infof("running %s %s", cmd, strings.Join(args, " "))
	return s.RunCmd(ctx, cmd, args, stdout, stderr, s.Env)
}

func (s *CommandSite) CaptureStrings(ctx context.Context, binary string, args []string) (string, string, error) {
	stdout, stderr, err := s.CaptureBytes(ctx, binary, args)

	var so, se string

	if stdout != nil {
		so = string(stdout)
	}

	if stderr != nil {
		se = string(stderr)
	}

	return so, se, err
}

// CaptureBytes runs the binary and returns what it wrote.
// A failing command's stderr is folded into the returned error so that callers can surface it as-is.
func (s *CommandSite) CaptureBytes(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	err := s.RunCommand(ctx, binary, args, &stdout, &stderr)
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		klog.V(1).Info(msg)
		if msg != "" {
			err = fmt.Errorf("%s %s: %v: %s", binary, strings.Join(args, " "), err, msg)
		} else {
			err = fmt.Errorf("%s %s: %v", binary, strings.Join(args, " "), err)
		}
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

package shell

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

type FakeInput struct {
	Name string
	Args string
	Env  string
}

type FakeOutput struct {
	Stdout     string
	Stderr     string
	ExitStatus int
}

func NewFakeInput(name string, args []string, env map[string]string) FakeInput {
	envs := []string{}
	for k, v := range env {
		envs = append(envs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(envs)
	input := FakeInput{
		Name: name,
		Args: strings.Join(args, ","),
		Env:  strings.Join(envs, ","),
	}
	return input
}

// Fake is an Exec replacement answering from canned expectations.
type Fake struct {
	expectations map[FakeInput]FakeOutput

	mu    sync.Mutex
	calls []FakeInput
}

func NewFake(expectations map[FakeInput]FakeOutput) *Fake {
	return &Fake{expectations: expectations}
}

func (f *Fake) Calls() []FakeInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeInput{}, f.calls...)
}

func (f *Fake) Exec(_ context.Context, cmd *Command) Result {
	input := NewFakeInput(cmd.Name, cmd.Args, cmd.Env)

	f.mu.Lock()
	f.calls = append(f.calls, input)
	f.mu.Unlock()

	output, ok := f.expectations[input]
	if !ok {
		return Result{ExitStatus: 1, Error: fmt.Errorf("unexpected input: %v", input)}
	}

	if err := write(cmd.Stdout, output.Stdout); err != nil {
		return Result{ExitStatus: 1, Error: err}
	}

	if err := write(cmd.Stderr, output.Stderr); err != nil {
		return Result{ExitStatus: 1, Error: err}
	}

	if output.ExitStatus != 0 {
		return Result{ExitStatus: output.ExitStatus, Error: fmt.Errorf("exit status %d", output.ExitStatus)}
	}

	return Result{ExitStatus: 0, Error: nil}
}

func write(w io.Writer, s string) error {
	if w == nil || s == "" {
		return nil
	}
	n, err := io.WriteString(w, s)
	if err != nil {
		return err
	}
	if n != len(s) {
		return fmt.Errorf("insufficient write: wrote only %d of %d", n, len(s))
	}
	return nil
}

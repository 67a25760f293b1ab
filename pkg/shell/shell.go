package shell

import (
	"context"
	"os"
)

type Shell struct {
	Exec Exec
}

func New() *Shell {
	return &Shell{Exec: DefaultExec}
}

// Wait runs the command and wait until it returns
func (s *Shell) Wait(ctx context.Context, cmd *Command) Result {
	return s.Exec(ctx, cmd)
}

// Interact runs the command interactively, inheriting os.(Stdin|Stdout|Stderr) to the command
func (s *Shell) Interact(ctx context.Context, cmd *Command) Result {
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return s.Exec(ctx, cmd)
}

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Pipe starts the command and returns readers for its stdout and stderr.
// The result is sent once the command exits and both write ends are closed.
func (s *Shell) Pipe(ctx context.Context, cmd *Command) (<-chan Result, io.ReadCloser, io.ReadCloser) {
	res := make(chan Result, 1)

	stdout, stdoutW, err := pipe(cmd.Stdout)
	if err != nil {
		res <- Result{ExitStatus: 1, Error: fmt.Errorf("unable to pipe stdout: %v", err)}
		return res, nil, nil
	}

	stderr, stderrW, err := pipe(cmd.Stderr)
	if err != nil {
		stdout.Close()
		stdoutW.Close()
		res <- Result{ExitStatus: 1, Error: fmt.Errorf("unable to pipe stderr: %v", err)}
		return res, nil, nil
	}

	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	go func() {
		r := s.Wait(ctx, cmd)
		stdoutW.Close()
		stderrW.Close()
		res <- r
	}()

	return res, stdout, stderr
}

func pipe(current io.Writer) (*os.File, *os.File, error) {
	if current != nil {
		return nil, nil, errors.New("exec: output already set")
	}
	return os.Pipe()
}

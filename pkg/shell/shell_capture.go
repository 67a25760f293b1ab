package shell

import (
	"bufio"
	"context"
	"io"
	"strings"
)

type CaptureResult struct {
	ExitStatus int
	Stdout     string
	Stderr     string
}

type CaptureOpts struct {
	LogStdout func(string)
	LogStderr func(string)
}

// Capture runs the command, handing every output line to the log functions as it arrives
// and returning the whole output once the command exits.
func (s *Shell) Capture(ctx context.Context, cmd *Command, opts ...CaptureOpts) (*CaptureResult, error) {
	logStdout := func(string) {}
	logStderr := func(string) {}
	for _, o := range opts {
		if o.LogStdout != nil {
			logStdout = o.LogStdout
		}
		if o.LogStderr != nil {
			logStderr = o.LogStderr
		}
	}

	res, stdout, stderr := s.Pipe(ctx, cmd)
	if stdout == nil || stderr == nil {
		r := <-res
		return &CaptureResult{ExitStatus: r.ExitStatus}, r.Error
	}

	type line struct {
		text   string
		stderr bool
	}

	lines := make(chan line)
	done := make(chan struct{}, 2)

	scan := func(r io.ReadCloser, isErr bool) {
		defer func() { done <- struct{}{} }()
		defer r.Close()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- line{text: scanner.Text(), stderr: isErr}
		}
	}

	go scan(stdout, false)
	go scan(stderr, true)

	go func() {
		<-done
		<-done
		close(lines)
	}()

	var outs, errs []string

	// Coordinating stdout/stderr in this single place to not screw up message ordering
	for l := range lines {
		if l.stderr {
			logStderr(l.text)
			errs = append(errs, l.text)
		} else {
			logStdout(l.text)
			outs = append(outs, l.text)
		}
	}

	r := <-res

	return &CaptureResult{
		ExitStatus: r.ExitStatus,
		Stdout:     strings.Join(outs, "\n"),
		Stderr:     strings.Join(errs, "\n"),
	}, r.Error
}

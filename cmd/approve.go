package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/variantdev/docship/pkg/pipeline"
)

var errNotApproved = errors.New("not approved")

type autoApprover struct{}

func (autoApprover) Approve(ctx context.Context, s pipeline.Step) error {
	return nil
}

// promptApprover asks on the terminal before continuing past a block step
type promptApprover struct {
	in  io.Reader
	out io.Writer
}

func (a *promptApprover) Approve(ctx context.Context, s pipeline.Step) error {
	fmt.Fprintf(a.out, "%s [y/N] ", s.Name)

	// Reads from a terminal cannot be interrupted, so on cancellation the reader
	// is left blocked until the process exits. Approve is called at most once per run.
	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(a.in).ReadString('\n')
		answer <- strings.TrimSpace(line)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case line := <-answer:
		switch strings.ToLower(line) {
		case "y", "yes":
			return nil
		default:
			return errNotApproved
		}
	}
}

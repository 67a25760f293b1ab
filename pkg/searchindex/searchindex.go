// Package searchindex runs the external search index updater against a docs host.
package searchindex

import (
	"context"
	"fmt"

	"github.com/variantdev/docship/pkg/shell"
)

// ExitError is returned when the updater exits non-zero
type ExitError struct {
	Command    string
	ExitStatus int
	Err        error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d: %v", e.Command, e.ExitStatus, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

type Updater struct {
	Shell *shell.Shell

	// Command and Args form the updater invocation; the hostname is appended as the last argument
	Command string
	Args    []string

	Dir string
}

func New(sh *shell.Shell, command string, args ...string) *Updater {
	if sh == nil {
		sh = shell.New()
	}
	return &Updater{
		Shell:   sh,
		Command: command,
		Args:    args,
	}
}

// Update runs the updater with the standard streams of this process
func (u *Updater) Update(ctx context.Context, hostname string) error {
	args := append(append([]string{}, u.Args...), hostname)

	res := u.Shell.Interact(ctx, &shell.Command{
		Name: u.Command,
		Args: args,
		Dir:  u.Dir,
	})
	if res.Error != nil || res.ExitStatus != 0 {
		return &ExitError{Command: u.Command, ExitStatus: res.ExitStatus, Err: res.Error}
	}

	return nil
}

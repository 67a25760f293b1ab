package pipeline

import "fmt"

// BuildError is returned when the image builder fails
type BuildError struct {
	Image string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building image %s: %v", e.Image, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// DeployError is returned when deploying to an environment fails.
// The deployment status has already been marked as failed when this is returned from a tracked deployment.
type DeployError struct {
	Environment string
	Err         error
}

func (e *DeployError) Error() string {
	return fmt.Sprintf("deploying to %s: %v", e.Environment, e.Err)
}

func (e *DeployError) Unwrap() error {
	return e.Err
}

// VCSLookupError is returned when a commit cannot be resolved
type VCSLookupError struct {
	Ref string
	Err error
}

func (e *VCSLookupError) Error() string {
	return fmt.Sprintf("resolving commit %q: %v", e.Ref, e.Err)
}

func (e *VCSLookupError) Unwrap() error {
	return e.Err
}

// VCSPushError is returned when a tag cannot be created or pushed.
// A local tag may be left behind.
type VCSPushError struct {
	Remote string
	Tag    string
	Err    error
}

func (e *VCSPushError) Error() string {
	return fmt.Sprintf("pushing tag %s to %s: %v", e.Tag, e.Remote, e.Err)
}

func (e *VCSPushError) Unwrap() error {
	return e.Err
}

// IndexUpdateError is returned when the search index updater exits non-zero
type IndexUpdateError struct {
	Hostname   string
	ExitStatus int
	Err        error
}

func (e *IndexUpdateError) Error() string {
	return fmt.Sprintf("updating search index for %s (exit status %d): %v", e.Hostname, e.ExitStatus, e.Err)
}

func (e *IndexUpdateError) Unwrap() error {
	return e.Err
}

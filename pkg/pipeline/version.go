package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

const shortCommitLen = 12

var shortCommitPattern = regexp.MustCompile(`^[0-9a-f]{12}$`)

// RevParser resolves a ref to an abbreviated commit hash
type RevParser interface {
	RevParse(ctx context.Context, shortLen int, ref string) (string, error)
}

// VersionNamer names releases as YYYY-MM-DD-<12 hex chars of the commit>
type VersionNamer struct {
	VCS    RevParser
	Commit string

	Now func() time.Time
}

func (n *VersionNamer) Name(ctx context.Context) (string, error) {
	if n.Commit == "" {
		return "", &VCSLookupError{Ref: n.Commit, Err: fmt.Errorf("no commit given")}
	}

	short, err := n.VCS.RevParse(ctx, shortCommitLen, n.Commit)
	if err != nil {
		return "", &VCSLookupError{Ref: n.Commit, Err: err}
	}

	if !shortCommitPattern.MatchString(short) {
		return "", &VCSLookupError{Ref: n.Commit, Err: fmt.Errorf("unexpected abbreviated commit %q", short)}
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}

	return fmt.Sprintf("%s-%s", now().Format("2006-01-02"), short), nil
}

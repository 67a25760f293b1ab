package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestTagger(vcs *fakeVCS, uploader Uploader) *Tagger {
	return &Tagger{
		Namer: &VersionNamer{
			VCS:    vcs,
			Commit: "abcdef0123456789",
			Now:    func() time.Time { return time.Date(2024, time.January, 1, 12, 0, 0, 0, time.Local) },
		},
		VCS:       vcs,
		Planner:   NewPlanner(DefaultResolver(), "docs"),
		Uploader:  uploader,
		Remote:    "origin",
		TagPrefix: "docs/release-",
	}
}

func TestTagRelease(t *testing.T) {
	vcs := &fakeVCS{short: "abcdef012345"}
	uploader := &fakeUploader{}
	tagger := newTestTagger(vcs, uploader)

	res, err := tagger.TagRelease(context.Background(), BuildContext{Branch: "master"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != Succeeded {
		t.Errorf("unexpected outcome: %s", res.Outcome)
	}

	expectedCalls := []string{
		"rev-parse --short=12 abcdef0123456789",
		"tag docs/release-2024-01-01-abcdef012345",
		"push origin docs/release-2024-01-01-abcdef012345",
	}
	if d := cmp.Diff(expectedCalls, vcs.calls); d != "" {
		t.Errorf("unexpected vcs calls: %s", d)
	}

	if len(uploader.batches) != 1 {
		t.Fatalf("expected one upload, got %d", len(uploader.batches))
	}

	next := BuildContext{Branch: "master", Tag: "docs/release-2024-01-01-abcdef012345"}
	if d := cmp.Diff(tagger.Planner.Plan(next), uploader.batches[0]); d != "" {
		t.Errorf("unexpected uploaded steps: %s", d)
	}
	if d := cmp.Diff([]Action{ActionDeploy, ActionWait, ActionUpdateSearchIndex}, actionsOf(uploader.batches[0])); d != "" {
		t.Errorf("unexpected uploaded actions: %s", d)
	}
}

func TestTagRelease_PushRejected(t *testing.T) {
	rejected := errors.New("! [remote rejected] docs/release-2024-01-01-abcdef012345 (permission denied)")
	vcs := &fakeVCS{short: "abcdef012345", pushErr: rejected}
	uploader := &fakeUploader{}
	tagger := newTestTagger(vcs, uploader)

	_, err := tagger.TagRelease(context.Background(), BuildContext{Branch: "master"})

	var pushErr *VCSPushError
	if !errors.As(err, &pushErr) {
		t.Fatalf("expected VCSPushError, got %v", err)
	}
	if pushErr.Tag != "docs/release-2024-01-01-abcdef012345" || pushErr.Remote != "origin" {
		t.Errorf("unexpected error fields: %+v", pushErr)
	}
	if !errors.Is(err, rejected) {
		t.Errorf("expected the remote error to be wrapped: %v", err)
	}
	if len(uploader.batches) != 0 {
		t.Error("expected nothing to be uploaded")
	}
}

func TestTagRelease_LookupFailure(t *testing.T) {
	vcs := &fakeVCS{lookErr: errors.New("bad object")}
	tagger := newTestTagger(vcs, &fakeUploader{})

	_, err := tagger.TagRelease(context.Background(), BuildContext{Branch: "master"})

	var lookupErr *VCSLookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected VCSLookupError, got %v", err)
	}
	if len(vcs.calls) != 1 {
		t.Errorf("expected no tagging after a failed lookup, got %v", vcs.calls)
	}
}

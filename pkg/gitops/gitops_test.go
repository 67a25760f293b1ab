package gitops

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/variantdev/docship/pkg/cmdsite"
)

func TestRevParse(t *testing.T) {
	tester := cmdsite.NewTester(map[cmdsite.CommandInput]cmdsite.CommandOutput{
		cmdsite.NewInput("git", []string{"rev-parse", "--short=12", "0123456789abcdef0123"}, nil): {Stdout: "0123456789ab\n"},
	})

	c := New(Commander(tester.RunCommand))

	got, err := c.RevParse(context.Background(), 12, "0123456789abcdef0123")
	if err != nil {
		t.Fatal(err)
	}

	if got != "0123456789ab" {
		t.Errorf("unexpected hash: expected=%s, got=%s", "0123456789ab", got)
	}
}

func TestTagAndPush(t *testing.T) {
	tester := cmdsite.NewTester(map[cmdsite.CommandInput]cmdsite.CommandOutput{
		cmdsite.NewInput("git", []string{"tag", "docs/release-1"}, nil):           {},
		cmdsite.NewInput("git", []string{"push", "origin", "docs/release-1"}, nil): {Err: errors.New("exit status 1")},
	})

	c := New(Commander(tester.RunCommand))

	if err := c.Tag(context.Background(), "docs/release-1"); err != nil {
		t.Fatal(err)
	}

	if err := c.Push(context.Background(), "origin", "docs/release-1"); err == nil {
		t.Fatal("expected push to fail")
	}

	expected := []cmdsite.CommandInput{
		cmdsite.NewInput("git", []string{"tag", "docs/release-1"}, nil),
		cmdsite.NewInput("git", []string{"push", "origin", "docs/release-1"}, nil),
	}
	if d := cmp.Diff(expected, tester.Calls()); d != "" {
		t.Errorf("unexpected calls: %s", d)
	}
}

func TestRepo(t *testing.T) {
	testcases := []struct {
		url, expected string
	}{
		{url: "git@github.com:expo/expo.git\n", expected: "expo/expo"},
		{url: "https://github.com/expo/expo\n", expected: "expo/expo"},
	}

	for _, tc := range testcases {
		tester := cmdsite.NewTester(map[cmdsite.CommandInput]cmdsite.CommandOutput{
			cmdsite.NewInput("git", []string{"remote", "get-url", "--push", "origin"}, nil): {Stdout: tc.url},
		})
		c := New(Commander(tester.RunCommand))

		got, err := c.Repo(context.Background(), "origin")
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.expected {
			t.Errorf("unexpected repo: expected=%s, got=%s", tc.expected, got)
		}
	}
}

func TestCommitAndBranch(t *testing.T) {
	tester := cmdsite.NewTester(map[cmdsite.CommandInput]cmdsite.CommandOutput{
		cmdsite.NewInput("git", []string{"rev-parse", "--verify", "HEAD^{commit}"}, nil): {Stdout: "0123456789abcdef0123456789abcdef01234567\n"},
		cmdsite.NewInput("git", []string{"rev-parse", "--abbrev-ref", "HEAD"}, nil):      {Stdout: "master\n"},
	})

	c := New(Commander(tester.RunCommand))

	commit, err := c.Commit(context.Background(), "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if commit != "0123456789abcdef0123456789abcdef01234567" {
		t.Errorf("unexpected commit: %s", commit)
	}

	branch, err := c.GetCurrentBranch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if branch != "master" {
		t.Errorf("unexpected branch: %s", branch)
	}
}

package shell

import (
	"bytes"
	"context"
	"testing"
)

func TestCapture(t *testing.T) {
	sh := Shell{
		Exec: DefaultExec,
	}

	hello := &Command{
		Name: "sh",
		Args: []string{"-c", "echo hello; echo err1 1>&2; echo world; echo err2 1>&2"},
	}

	stdoutLog := &bytes.Buffer{}
	logStdout := func(s string) {
		stdoutLog.WriteString(s)
	}

	stderrLog := &bytes.Buffer{}
	logStderr := func(s string) {
		stderrLog.WriteString(s)
	}

	res, err := sh.Capture(context.Background(), hello, CaptureOpts{
		LogStdout: logStdout,
		LogStderr: logStderr,
	})

	{
		actual := stdoutLog.String()
		expected := "helloworld"
		if actual != expected {
			t.Errorf("unexpected stdout logged: expected=%s, got=%s", expected, actual)
		}
	}

	{
		actual := stderrLog.String()
		expected := "err1err2"
		if actual != expected {
			t.Errorf("unexpected stderr logged: expected=%s, got=%s", expected, actual)
		}
	}

	{
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		if res.ExitStatus != 0 {
			t.Errorf("unexpected exit status: expected=0, got=%d", res.ExitStatus)
		}
	}

	{
		actual := res.Stdout
		expected := "hello\nworld"
		if actual != expected {
			t.Errorf("unexpected stdout captured: expected=%s, got=%s", expected, actual)
		}
	}
}

func TestWait_ExitStatus(t *testing.T) {
	sh := New()

	r := sh.Wait(context.Background(), &Command{Name: "sh", Args: []string{"-c", "exit 3"}})
	if r.Error == nil {
		t.Fatal("expected error")
	}
	if r.ExitStatus != 3 {
		t.Errorf("unexpected exit status: expected=3, got=%d", r.ExitStatus)
	}
}

func TestFake(t *testing.T) {
	fake := NewFake(map[FakeInput]FakeOutput{
		NewFakeInput("yarn", []string{"run", "x"}, nil): {Stdout: "ok", ExitStatus: 2},
	})
	sh := &Shell{Exec: fake.Exec}

	out := &bytes.Buffer{}
	r := sh.Wait(context.Background(), &Command{Name: "yarn", Args: []string{"run", "x"}, Stdout: out})
	if r.ExitStatus != 2 || r.Error == nil {
		t.Errorf("unexpected result: %+v", r)
	}
	if out.String() != "ok" {
		t.Errorf("unexpected stdout: %q", out.String())
	}
	if n := len(fake.Calls()); n != 1 {
		t.Errorf("unexpected number of calls: %d", n)
	}
}

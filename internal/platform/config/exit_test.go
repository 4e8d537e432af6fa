package config

import (
	"bytes"
	"errors"
	"testing"
)

func captureExit(t *testing.T) (*bytes.Buffer, *int) {
	t.Helper()
	buf := &bytes.Buffer{}
	code := -1
	prevErr, prevExit := stderr, exitFunc
	stderr = buf
	exitFunc = func(c int) { code = c }
	t.Cleanup(func() {
		stderr = prevErr
		exitFunc = prevExit
	})
	return buf, &code
}

func TestExitfWritesAndExits(t *testing.T) {
	buf, code := captureExit(t)

	Exitf("fatal: %s", "something broke")

	if *code != 1 {
		t.Fatalf("exit code = %d, want 1", *code)
	}
	if got, want := buf.String(), "fatal: something broke\n"; got != want {
		t.Fatalf("stderr = %q, want %q", got, want)
	}
}

func TestExitOnError(t *testing.T) {
	buf, code := captureExit(t)

	ExitOnError("load scenario", nil)
	if *code != -1 || buf.Len() != 0 {
		t.Fatalf("nil error exited: code=%d out=%q", *code, buf.String())
	}

	ExitOnError("load scenario", errors.New("boom"))
	if *code != 1 {
		t.Fatalf("exit code = %d, want 1", *code)
	}
	if got, want := buf.String(), "load scenario: boom\n"; got != want {
		t.Fatalf("stderr = %q, want %q", got, want)
	}
}

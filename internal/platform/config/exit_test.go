package config

import (
	"bytes"
	"testing"
)

func TestExitfWritesMessageAndExitsWithCode1(t *testing.T) {
	var out bytes.Buffer
	code := -1
	prevWriter, prevExit := exitWriter, exitFunc
	exitWriter = &out
	exitFunc = func(c int) { code = c }
	t.Cleanup(func() {
		exitWriter, exitFunc = prevWriter, prevExit
	})

	Exitf("fatal: %s", "cauldron cracked")

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if out.String() != "fatal: cauldron cracked\n" {
		t.Fatalf("output = %q, want %q", out.String(), "fatal: cauldron cracked\n")
	}
}

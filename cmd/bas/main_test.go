package main

import (
	"errors"
	"testing"
)

func TestDefaultOutputNamePreservesCase(t *testing.T) {
	cases := map[string]string{
		"foo.asm":          "foo.obj",
		"Bar.ASM":          "Bar.obj",
		"/tmp/dir/baz.asm": "baz.obj",
		"noext":            "noext.obj",
	}
	for in, want := range cases {
		if got := defaultOutputName(in); got != want {
			t.Errorf("defaultOutputName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecoverErrPassesThroughErrors(t *testing.T) {
	orig := errors.New("boom")
	if got := recoverErr(orig); got != orig {
		t.Fatalf("recoverErr(error) = %v, want the same error value", got)
	}
}

func TestRecoverErrWrapsNonErrorPanicValues(t *testing.T) {
	err := recoverErr("something went wrong")
	if err == nil || err.Error() != "something went wrong" {
		t.Fatalf("recoverErr(string) = %v, want an error wrapping the string", err)
	}
}

func TestSegNoOfRoundTrips(t *testing.T) {
	for i := 0; i < 5; i++ {
		if int(segNoOf(i)) != i {
			t.Fatalf("segNoOf(%d) = %d, want %d", i, segNoOf(i), i)
		}
	}
}

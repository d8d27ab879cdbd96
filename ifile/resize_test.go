package ifile

import (
	"strings"
	"testing"

	"github.com/xyproto/bas/instr"
	"github.com/xyproto/bas/token"
)

func TestResizeNoOpWhenNothingIsProvisional(t *testing.T) {
	f := build(`
CODE SEGMENT
MOV AX, 1
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if f.ProvisionalSizes {
		t.Fatal("a fixed-size-only file should not leave anything provisional")
	}
	Resize(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
}

func TestResizeConvergesForwardJumpToShort(t *testing.T) {
	f := build(`
CODE SEGMENT
JMP there
NOP
there:
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if !f.ProvisionalSizes {
		t.Fatal("forward JMP should be provisional after pass 1")
	}
	Resize(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	if f.Recs[1].Size != 2 {
		t.Fatalf("JMP there size after resize = %d, want 2 (short, target one byte away)", f.Recs[1].Size)
	}
}

func TestJmpDollarConvergesToShortSelfJump(t *testing.T) {
	f := build(`
CODE SEGMENT
JMP $
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	Resize(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	if f.Recs[1].Size != 2 {
		t.Fatalf("JMP $ size = %d, want 2 (EB FE, a short jump to itself)", f.Recs[1].Size)
	}
}

func TestJumpsExpandsOutOfRangeShortJcc(t *testing.T) {
	var b strings.Builder
	b.WriteString("CODE SEGMENT\nJUMPS\nJZ there\n")
	for i := 0; i < 200; i++ {
		b.WriteString("NOP\n")
	}
	b.WriteString("there:\nCODE ENDS\n")

	f := build(b.String())
	sink := newSink()
	Pass1(f, sink)
	if !f.ProvisionalSizes {
		t.Fatal("a Jcc under JUMPS should be provisional even with no forward-size ambiguity")
	}
	initialRecCount := len(f.Recs)

	Resize(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	if len(f.Recs) <= initialRecCount {
		t.Fatalf("expected the out-of-range JZ to expand into extra records, got %d (started with %d)", len(f.Recs), initialRecCount)
	}

	jz := f.Recs[2]
	if !jz.expanded {
		t.Fatal("the JZ record should be marked expanded")
	}
	if want := instr.Reverse[token.JZ]; jz.Op != want {
		t.Fatalf("JZ should have been rewritten to its reverse condition, got %v want %v", jz.Op, want)
	}
	if f.Symtab.Lookup("@@0") == nil {
		t.Fatal("expected a synthetic @@0 local label to have been inserted")
	}
}

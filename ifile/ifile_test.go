package ifile

import (
	"strings"
	"testing"

	"github.com/xyproto/bas/diag"
)

// build turns a multi-line assembly snippet into a fresh IFILE with
// SourcePass already run, ready for Pass1/Resize.
func build(text string) *IFILE {
	src := NewSource("test.asm")
	for _, line := range strings.Split(strings.TrimLeft(text, "\n"), "\n") {
		src.Add(line)
	}
	f := New(src, false)
	SourcePass(f)
	return f
}

func newSink() *diag.Sink {
	return diag.NewSink(nil, 0)
}

func TestSourcePassSkipsBlankLines(t *testing.T) {
	f := build("MOV AX, 1\n\n   \nMOV BX, 2\n")
	if len(f.Recs) != 2 {
		t.Fatalf("got %d IRECs, want 2", len(f.Recs))
	}
}

func TestSegmentOpenCloseAndPC(t *testing.T) {
	f := build(`
CODE SEGMENT
MOV AX, 1
MOV BX, 2
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	seg := f.Segs.FindSegment("CODE")
	if seg < 0 {
		t.Fatal("CODE segment not found")
	}
	if pc := f.Segs.PC(seg); pc == 0 {
		t.Fatalf("PC did not advance past two MOVs, got %d", pc)
	}
}

func TestSegmentStillOpenAtEOFIsAnError(t *testing.T) {
	f := build(`
CODE SEGMENT
MOV AX, 1
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() == 0 {
		t.Fatal("expected an error for an unterminated open segment")
	}
}

func TestLabelDefinitionAndRedefinition(t *testing.T) {
	f := build(`
CODE SEGMENT
here:
MOV AX, 1
here:
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() == 0 {
		t.Fatal("expected a redefinition error for the second 'here:'")
	}
}

func TestEquDefinesAbsoluteSymbol(t *testing.T) {
	f := build(`
FIVE EQU 5
CODE SEGMENT
MOV AX, FIVE
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	sym := f.Symtab.Lookup("FIVE")
	if sym == nil || !sym.Defined() {
		t.Fatal("FIVE should be a defined symbol")
	}
	if sym.AbsValue() != 5 {
		t.Fatalf("FIVE = %d, want 5", sym.AbsValue())
	}
}

func TestEquRedefinitionIsAnError(t *testing.T) {
	f := build(`
FIVE EQU 5
FIVE EQU 6
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() == 0 {
		t.Fatal("expected an error redefining an EQU name")
	}
}

func TestOrgMayNotMoveBackwards(t *testing.T) {
	f := build(`
CODE SEGMENT
ORG 100h
MOV AX, 1
ORG 10h
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() == 0 {
		t.Fatal("expected an error for ORG moving the PC backwards")
	}
}

func TestOrgForwardPadsPC(t *testing.T) {
	f := build(`
CODE SEGMENT
ORG 10h
MOV AX, 1
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	seg := f.Segs.FindSegment("CODE")
	if f.Segs.PC(seg) <= 0x10 {
		t.Fatalf("PC = %#x, want > 0x10", f.Segs.PC(seg))
	}
}

func TestAlignPadsToPowerOfTwo(t *testing.T) {
	f := build(`
CODE SEGMENT
MOV AX, 1
ALIGN 16
MOV BX, 2
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	// CODE SEGMENT, MOV AX,1 (3 bytes), ALIGN 16, MOV BX,2, CODE ENDS
	alignRec := f.Recs[2]
	if alignRec.Size != 13 {
		t.Fatalf("ALIGN padding = %d, want 13 (PC 3 -> 16)", alignRec.Size)
	}
}

func TestAlignRejectsNonPowerOfTwo(t *testing.T) {
	f := build(`
CODE SEGMENT
ALIGN 3
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() == 0 {
		t.Fatal("expected an error for a non-power-of-two alignment")
	}
}

func TestAlignRejectsTooLarge(t *testing.T) {
	f := build(`
CODE SEGMENT
ALIGN 8192
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() == 0 {
		t.Fatal("expected an error for an alignment above 2^12")
	}
}

func TestModelTinyCreatesImplicitSegments(t *testing.T) {
	f := build(`
MODEL TINY
CODESEG
MOV AX, 1
DATASEG
DB 1
UDATASEG
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if f.ModelGroup == nil {
		t.Fatal("MODEL TINY did not set up a model group")
	}
	if f.CodeSeg == nil || f.DataSeg == nil || f.UdataSeg == nil {
		t.Fatal("MODEL TINY did not create all three implicit segments")
	}
}

func TestExtrnAndPublic(t *testing.T) {
	f := build(`
CODE SEGMENT
EXTRN foo:PROC
PUBLIC bar
bar:
MOV AX, 1
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	foo := f.Symtab.Lookup("foo")
	if foo == nil || !foo.External() {
		t.Fatal("foo should be an external symbol")
	}
	bar := f.Symtab.Lookup("bar")
	if bar == nil || !bar.Public() {
		t.Fatal("bar should be public")
	}
}

func TestUninitSegmentRejectsInitialisedData(t *testing.T) {
	f := build(`
BSS SEGMENT UNINIT
DB 1
BSS ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() == 0 {
		t.Fatal("expected an error for initialised data in an UNINIT segment")
	}
}

func TestDataDirectiveSizing(t *testing.T) {
	f := build(`
CODE SEGMENT
DB 1, 2, 3
DW 1, 2
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	seg := f.Segs.FindSegment("CODE")
	if f.Segs.PC(seg) != 7 {
		t.Fatalf("PC = %d, want 7 (3 bytes + 2 words)", f.Segs.PC(seg))
	}
}

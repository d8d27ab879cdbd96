package assemble

import (
	"os"
	"strings"
	"testing"

	"github.com/xyproto/bas/diag"
	"github.com/xyproto/bas/ifile"
	"github.com/xyproto/bas/ofile"
)

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

// build turns a multi-line assembly snippet into a fresh IFILE, ready
// for Pass1/Resize/Encode, mirroring ifile's own build test helper.
func build(text string) *ifile.IFILE {
	src := ifile.NewSource("test.asm")
	for _, line := range strings.Split(strings.TrimLeft(text, "\n"), "\n") {
		src.Add(line)
	}
	f := ifile.New(src, false)
	ifile.SourcePass(f)
	return f
}

func newSink() *diag.Sink {
	return diag.NewSink(nil, 0)
}

// assembleOK runs Pass1, Resize and Encode over f and fails the test if
// any stage reports an error.
func assembleOK(t *testing.T, f *ifile.IFILE) *ofile.Writer {
	t.Helper()
	sink := newSink()
	ifile.Pass1(f, sink)
	ifile.Resize(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors before encode: %d", sink.Errors())
	}
	w := Encode(f, sink, false)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors during encode: %d", sink.Errors())
	}
	return w
}

func codeBytes(t *testing.T, w *ofile.Writer) []byte {
	t.Helper()
	var all []byte
	for _, r := range w.Records {
		if r.Tag == ofile.Code {
			all = append(all, r.Bytes...)
		}
	}
	return all
}

func TestEncodeMovRegImm16(t *testing.T) {
	f := build(`
CODE SEGMENT
MOV AX, 1234h
CODE ENDS
`)
	w := assembleOK(t, f)
	got := codeBytes(t, w)
	want := []byte{0xB8, 0x34, 0x12}
	if string(got) != string(want) {
		t.Fatalf("MOV AX,1234h = % X, want % X", got, want)
	}
}

func TestEncodeShortJumpToSelf(t *testing.T) {
	f := build(`
CODE SEGMENT
JMP $
CODE ENDS
`)
	w := assembleOK(t, f)
	got := codeBytes(t, w)
	want := []byte{0xEB, 0xFE}
	if string(got) != string(want) {
		t.Fatalf("JMP $ = % X, want % X (EB FE)", got, want)
	}
}

func TestEncodeForwardShortJumpDisplacement(t *testing.T) {
	f := build(`
CODE SEGMENT
JMP there
NOP
there:
CODE ENDS
`)
	w := assembleOK(t, f)
	got := codeBytes(t, w)
	want := []byte{0xEB, 0x01, 0x90}
	if string(got) != string(want) {
		t.Fatalf("JMP there/NOP = % X, want % X", got, want)
	}
}

func TestEncodeNearJumpWidensDisplacement(t *testing.T) {
	var b strings.Builder
	b.WriteString("CODE SEGMENT\nJMP there\n")
	for i := 0; i < 200; i++ {
		b.WriteString("NOP\n")
	}
	b.WriteString("there:\nCODE ENDS\n")

	f := build(b.String())
	w := assembleOK(t, f)
	got := codeBytes(t, w)
	if len(got) < 3 || got[0] != 0xE9 {
		t.Fatalf("near JMP opcode = % X, want E9 leading a 2-byte displacement", got)
	}
	rel := int(got[1]) | int(got[2])<<8
	if rel != 200 {
		t.Fatalf("near JMP displacement = %d, want 200 (200 one-byte NOPs ahead)", rel)
	}
}

func TestEncodeFarJumpToIntraModuleLabelEmitsOffsetAndSegAddr(t *testing.T) {
	f := build(`
CODE SEGMENT
JMP FAR PTR there
there:
CODE ENDS
`)
	w := assembleOK(t, f)
	got := codeBytes(t, w)
	if len(got) != 5 || got[0] != 0xEA {
		t.Fatalf("far JMP = % X, want a 5-byte EA opcode", got)
	}
	if _, ok := w.Find(ofile.BeginOffset); !ok {
		t.Fatal("far JMP to an intra-module label should emit BEGIN_OFFSET for its offset half")
	}
	if _, ok := w.Find(ofile.BeginSegAddr); !ok {
		t.Fatal("far JMP to an intra-module label should emit BEGIN_SEG_ADDR for its segment half")
	}
}

func TestEncodeSegmentOverrideOnNonDefaultAssume(t *testing.T) {
	f := build(`
DATA SEGMENT
V DW 0
DATA ENDS
DGROUP GROUP DATA
CODE SEGMENT
ASSUME CS:CODE, DS:CODE, ES:DGROUP, SS:CODE
MOV AX, [V]
CODE ENDS
`)
	w := assembleOK(t, f)
	got := codeBytes(t, w)
	// got[0:2] is V's DW 0 from DATA; MOV AX,[V] follows in CODE.
	if len(got) < 3 || got[2] != 0x26 {
		t.Fatalf("MOV AX,[V] under ES:DGROUP/DS:CODE assume = % X, want a 26h ES override prefix", got)
	}
}

func TestEncodeNoSegmentOverrideWhenDefaultAddresses(t *testing.T) {
	f := build(`
DATA SEGMENT
V DW 0
DATA ENDS
DGROUP GROUP DATA
CODE SEGMENT
ASSUME CS:CODE, DS:DGROUP, ES:CODE, SS:CODE
MOV AX, [V]
CODE ENDS
`)
	w := assembleOK(t, f)
	got := codeBytes(t, w)
	// V's DW 0 from DATA, then MOV AX,[V] in CODE.
	want := []byte{0x00, 0x00, 0xA1, 0x00, 0x00}
	if string(got) != string(want) {
		t.Fatalf("MOV AX,[V] under default-addressing DS = % X, want % X (no override prefix)", got, want)
	}
}

func TestEncodeExternalCallEmitsExtrnUse(t *testing.T) {
	f := build(`
CODE SEGMENT
EXTRN far_routine:PROC
CALL far_routine
CODE ENDS
`)
	w := assembleOK(t, f)
	rec, ok := w.Find(ofile.BeginExtrnUse)
	if !ok {
		t.Fatal("CALL to an EXTRN symbol should emit BEGIN_EXTRN_USE")
	}
	_ = rec
}

func TestEncodePublicSymbolEmitsPublicRecord(t *testing.T) {
	f := build(`
CODE SEGMENT
PUBLIC entry
entry:
MOV AX, 0
CODE ENDS
`)
	w := assembleOK(t, f)
	name, ok := w.Find(ofile.Name)
	if !ok {
		t.Fatal("expected at least one NAME record")
	}
	_ = name

	found := false
	for i, r := range w.Records {
		if r.Tag == ofile.BeginPublic {
			if i+1 < len(w.Records) && w.Records[i+1].Tag == ofile.Name && string(w.Records[i+1].Bytes) == "entry" {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("expected a BEGIN_PUBLIC record naming entry")
	}
}

func TestEncodeUninitSegmentEmitsSpaceReservation(t *testing.T) {
	f := build(`
BSS SEGMENT UNINIT
buf DB 64 DUP(?)
BSS ENDS
`)
	w := assembleOK(t, f)
	space, ok := w.Find(ofile.Space)
	if !ok || space.Num != 64 {
		t.Fatalf("BSS SPACE = %v (ok=%v), want 64", space.Num, ok)
	}
}

func TestEncodeAlignEmitsZeroFilledPadding(t *testing.T) {
	f := build(`
CODE SEGMENT
MOV AL, 1
ALIGN 16
MOV BL, 2
CODE ENDS
`)
	w := assembleOK(t, f)
	got := codeBytes(t, w)
	if len(got) < 2 || got[0] != 0xB0 || got[1] != 0x01 {
		t.Fatalf("MOV AL,1 = % X, want B0 01 leading the stream", got)
	}
	last := got[len(got)-2:]
	if last[0] != 0xB3 || last[1] != 0x02 {
		t.Fatalf("MOV BL,2 = % X, want B3 02 trailing the stream", last)
	}
	for _, b := range got[2 : len(got)-2] {
		if b != 0 {
			t.Fatalf("ALIGN padding contained a non-zero byte: % X", got)
		}
	}
}

func TestRunEndToEndAgainstTempFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/in.asm"
	src := "CODE SEGMENT\nMOV AX, 1234h\nCODE ENDS\n"
	if err := writeTestFile(path, src); err != nil {
		t.Fatalf("writeTestFile: %v", err)
	}

	result, err := Run(path, Options{MaxErrors: 20})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := codeBytes(t, result.Obj)
	want := []byte{0xB8, 0x34, 0x12}
	if string(got) != string(want) {
		t.Fatalf("Run produced % X, want % X", got, want)
	}
}

func TestRunReportsSourceErrorAsErrorNotPanic(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/bad.asm"
	src := "CODE SEGMENT\nMOV 1234h, AX\nCODE ENDS\n"
	if err := writeTestFile(path, src); err != nil {
		t.Fatalf("writeTestFile: %v", err)
	}

	_, err := Run(path, Options{MaxErrors: 20})
	if err == nil {
		t.Fatal("expected an error for an operand combination with no matching row")
	}
}

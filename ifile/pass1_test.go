package ifile

import "testing"

func TestInstructionSizingRegImm(t *testing.T) {
	f := build(`
CODE SEGMENT
MOV AX, 1234h
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	if f.Recs[1].Size != 3 {
		t.Fatalf("MOV AX,imm16 size = %d, want 3", f.Recs[1].Size)
	}
}

func TestInstructionNoMatchingFormIsAnError(t *testing.T) {
	f := build(`
CODE SEGMENT
MOV 1234h, AX
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() == 0 {
		t.Fatal("expected an error for an operand combination with no matching row")
	}
}

func TestRepeatPrefixValidation(t *testing.T) {
	f := build(`
CODE SEGMENT
REP MOVSB
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	if f.Recs[1].Size != 2 {
		t.Fatalf("REP MOVSB size = %d, want 2 (prefix + opcode)", f.Recs[1].Size)
	}
}

func TestRepeatPrefixRejectsWrongMnemonic(t *testing.T) {
	f := build(`
CODE SEGMENT
REP ADD AX, BX
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() == 0 {
		t.Fatal("expected an error for REP ADD")
	}
}

func TestDirectJumpNearForwardIsProvisional(t *testing.T) {
	f := build(`
CODE SEGMENT
JMP there
NOP
there:
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	if !f.ProvisionalSizes {
		t.Fatal("a forward direct JMP should leave sizes provisional")
	}
	if f.Recs[1].Size != 2 {
		t.Fatalf("optimistic JMP size = %d, want 2 (short)", f.Recs[1].Size)
	}
}

func TestDirectJumpFarIsFixedFiveBytes(t *testing.T) {
	f := build(`
CODE SEGMENT
JMP FAR PTR there
there:
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	if f.Recs[1].Size != 5 {
		t.Fatalf("far JMP size = %d, want 5", f.Recs[1].Size)
	}
}

func TestJccBareLabelAndShortBothMatch(t *testing.T) {
	f := build(`
CODE SEGMENT
JZ there
there:
JNZ SHORT there
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors (the Jcc table should accept both bare and SHORT forms): %d", sink.Errors())
	}
	if f.Recs[1].Size != 2 {
		t.Fatalf("JZ there size = %d, want 2", f.Recs[1].Size)
	}
	if f.Recs[3].Size != 2 {
		t.Fatalf("JNZ SHORT there size = %d, want 2", f.Recs[3].Size)
	}
}

func TestDollarSymbolTracksCurrentInstruction(t *testing.T) {
	f := build(`
CODE SEGMENT
JMP $
CODE ENDS
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
	sym := f.Symtab.Lookup("$")
	if sym == nil || !sym.Defined() {
		t.Fatal("$ should be a defined relative symbol during instruction processing")
	}
}

func TestModelTinyDataSegUninitAcceptsUndefinedData(t *testing.T) {
	f := build(`
MODEL TINY
UDATASEG
buf DW ?
END
`)
	sink := newSink()
	Pass1(f, sink)
	if sink.Errors() != 0 {
		t.Fatalf("unexpected errors: %d", sink.Errors())
	}
}

package operand

import (
	"testing"

	"github.com/xyproto/bas/expr"
	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/symtab"
	"github.com/xyproto/bas/token"
)

type fakeDiag struct{ msgs []string }

func (f *fakeDiag) Errorf(format string, args ...interface{}) {
	f.msgs = append(f.msgs, format)
}

func newEnv() (*expr.Env, *lexer.Lexer, *fakeDiag) {
	d := &fakeDiag{}
	st := symtab.New(false)
	env := &expr.Env{Symtab: st, Diag: d}
	lx := lexer.New(nil)
	return env, lx, d
}

func parseLine(env *expr.Env, lx *lexer.Lexer, line string) *Operand {
	lx.Begin("t.asm", 1, line)
	return Parse(env, lx)
}

func TestReg8(t *testing.T) {
	env, lx, _ := newEnv()
	o := parseLine(env, lx, "AL")
	if o == nil || o.Class != Reg {
		t.Fatalf("expected Reg operand, got %+v", o)
	}
	if !o.Flags.Has(FAL) || !o.Flags.Has(FREG8) || !o.Flags.Has(FRM) || !o.Flags.Has(FRM8) {
		t.Fatalf("AL missing expected flags: %v", o.Flags)
	}
}

func TestReg16(t *testing.T) {
	env, lx, _ := newEnv()
	o := parseLine(env, lx, "DX")
	if o == nil || o.Class != Reg {
		t.Fatalf("expected Reg operand, got %+v", o)
	}
	if !o.Flags.Has(FDX) || !o.Flags.Has(FREG16) {
		t.Fatalf("DX missing expected flags: %v", o.Flags)
	}
}

func TestImmediateAbsolute(t *testing.T) {
	env, lx, _ := newEnv()
	o := parseLine(env, lx, "1234h")
	if o == nil || o.Class != Imm {
		t.Fatalf("expected Imm operand, got %+v", o)
	}
	if o.Imm.Val != 0x1234 {
		t.Fatalf("val = %#x, want 0x1234", o.Imm.Val)
	}
	if o.Flags.Has(FIMM8) {
		t.Fatalf("0x1234 should not fit IMM8")
	}
}

func TestImmediateOne(t *testing.T) {
	env, lx, _ := newEnv()
	o := parseLine(env, lx, "1")
	if !o.Flags.Has(FOF1) || !o.Flags.Has(FIMM8) || !o.Flags.Has(FIMM8U) {
		t.Fatalf("1 missing expected flags: %v", o.Flags)
	}
}

func TestMemoryBareDisplacement(t *testing.T) {
	env, lx, _ := newEnv()
	o := parseLine(env, lx, "[1234h]")
	if o == nil || o.Class != Mem {
		t.Fatalf("expected Mem operand, got %+v", o)
	}
	if !o.Flags.Has(FINDIR) {
		t.Fatalf("bare displacement must set FINDIR")
	}
	if o.Mem.DispType != AbsDisp || o.Mem.DispVal != 0x1234 {
		t.Fatalf("disp = %+v", o.Mem)
	}
}

func TestMemoryBaseIndexDisp(t *testing.T) {
	env, lx, _ := newEnv()
	o := parseLine(env, lx, "[BX+SI+5]")
	if o == nil || o.Class != Mem {
		t.Fatalf("expected Mem operand, got %+v", o)
	}
	if o.Mem.BaseReg != token.BX || o.Mem.IndexReg != token.SI {
		t.Fatalf("base/index = %d/%d, want BX/SI", o.Mem.BaseReg, o.Mem.IndexReg)
	}
	if o.Mem.DispType != AbsDisp || o.Mem.DispVal != 5 {
		t.Fatalf("disp = %+v", o.Mem)
	}
}

func TestMemorySizeOverride(t *testing.T) {
	env, lx, _ := newEnv()
	o := parseLine(env, lx, "BYTE PTR [BX]")
	if o == nil || o.Class != Mem {
		t.Fatalf("expected Mem operand, got %+v", o)
	}
	if !o.Flags.Has(FMEM8) || !o.Flags.Has(FRM8) {
		t.Fatalf("BYTE PTR [BX] missing size flags: %v", o.Flags)
	}
}

func TestShortJumpToLabel(t *testing.T) {
	env, lx, _ := newEnv()
	env.Symtab.InsertRelative("L1")
	o := parseLine(env, lx, "SHORT L1")
	if o == nil || o.Class != Jump {
		t.Fatalf("expected Jump operand, got %+v", o)
	}
	if o.Jump.Distance != DistShort || o.Jump.TargetKind != TargetLabel {
		t.Fatalf("jump = %+v", o.Jump)
	}
}

func TestBareLabelIsNearJump(t *testing.T) {
	env, lx, _ := newEnv()
	env.Symtab.InsertRelative("L1")
	o := parseLine(env, lx, "L1")
	if o == nil || o.Class != Jump {
		t.Fatalf("expected Jump operand for a bare relative label, got %+v", o)
	}
	if !o.Flags.Has(FNEARJ) {
		t.Fatalf("expected FNEARJ flag")
	}
}

func TestSTRegister(t *testing.T) {
	env, lx, _ := newEnv()
	o := parseLine(env, lx, "ST")
	if o == nil || o.Class != ST || !o.Flags.Has(FSTT) {
		t.Fatalf("expected ST(0)/STT, got %+v", o)
	}

	env2, lx2, _ := newEnv()
	o2 := parseLine(env2, lx2, "ST(3)")
	if o2 == nil || o2.Class != ST || !o2.Flags.Has(FSTI) {
		t.Fatalf("expected ST(3)/STI, got %+v", o2)
	}
}

func TestRelativeDifferenceIsNotAnOperand(t *testing.T) {
	env, lx, diag := newEnv()
	a := env.Symtab.InsertRelative("A")
	symtab.DefineRelative(a, 0, 10)
	b := env.Symtab.InsertRelative("B")
	symtab.DefineRelative(b, 0, 2)
	o := parseLine(env, lx, "A-B")
	if o != nil {
		t.Fatalf("expected nil operand for REL_DIFF, got %+v", o)
	}
	if len(diag.msgs) == 0 {
		t.Fatalf("expected a diagnostic")
	}
}

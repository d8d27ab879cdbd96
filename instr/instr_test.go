package instr

import (
	"testing"

	"github.com/xyproto/bas/operand"
	"github.com/xyproto/bas/token"
)

func TestFindMovAxImm(t *testing.T) {
	ax := operand.NewReg16(token.AX)
	imm := &operand.Operand{Class: operand.Imm, Imm: operand.ImmPayload{Val: 0x1234}}
	imm.Flags.Add(operand.FIMM)

	row := Find(DefaultMask, token.MOV, ax, imm, nil)
	if row == nil {
		t.Fatal("no row found for MOV AX, imm")
	}
	if row.Opcode1 != 0xB8 {
		t.Fatalf("opcode1 = %#x, want 0xB8", row.Opcode1)
	}
}

func TestFindXorRegReg(t *testing.T) {
	cx1 := operand.NewReg16(token.CX)
	cx2 := operand.NewReg16(token.CX)

	row := Find(DefaultMask, token.XOR, cx1, cx2, nil)
	if row == nil {
		t.Fatal("no row found for XOR CX, CX")
	}
	if row.Opcode1 != 0x33 {
		t.Fatalf("opcode1 = %#x, want 0x33 (reg16,rm16 form)", row.Opcode1)
	}
	if row.ModRM != RRM {
		t.Fatalf("modrm = %v, want RRM", row.ModRM)
	}
}

func TestFindMovMemByteImm(t *testing.T) {
	mem := operand.New()
	mem.Class = operand.Mem
	mem.Mem.BaseReg = token.BX
	mem.Mem.IndexReg = token.SI
	mem.Mem.DispType = operand.AbsDisp
	mem.Mem.DispVal = 5
	mem.Mem.SizeOverride = 1
	mem.Flags.Add(operand.FRM)
	mem.Flags.Add(operand.FRM8)
	mem.Flags.Add(operand.FMEM8)

	imm := &operand.Operand{Class: operand.Imm, Imm: operand.ImmPayload{Val: 7}}
	imm.Flags.Add(operand.FIMM)
	imm.Flags.Add(operand.FIMM8)
	imm.Flags.Add(operand.FIMM8U)

	row := Find(DefaultMask, token.MOV, mem, imm, nil)
	if row == nil {
		t.Fatal("no row found for MOV byte ptr [bx+si+5], imm8")
	}
	if row.Opcode1 != 0xC6 || row.ModRM != RMC || row.Reg != 0 {
		t.Fatalf("row = %+v, want opcode C6 /0", row)
	}
}

func TestCpuGating(t *testing.T) {
	ax := operand.NewReg16(token.AX)

	row := Find(DefaultMask, token.FNSTSW, ax, nil, nil)
	if row != nil {
		t.Fatalf("FNSTSW AX should not match without an 80287 selected, got %+v", row)
	}
	mask := SelectCPU(DefaultMask, token.P287)
	row = Find(mask, token.FNSTSW, ax, nil, nil)
	if row == nil {
		t.Fatal("FNSTSW AX should match once P287 is selected")
	}
}

func TestReverseConditionTotal(t *testing.T) {
	for tok := range jccOpcode {
		rev, ok := Reverse[tok]
		if !ok {
			t.Fatalf("%v has no reverse-condition mapping", tok)
		}
		if Reverse[rev] != tok {
			t.Fatalf("reverse of %v is %v, but reverse of that is %v, not %v", tok, rev, Reverse[rev], tok)
		}
	}
}

func TestValidRepeat(t *testing.T) {
	if !ValidRepeat(token.REP, token.MOVSB) {
		t.Fatal("REP MOVSB should be valid")
	}
	if ValidRepeat(token.REP, token.ADD) {
		t.Fatal("REP ADD should not be valid")
	}
	if RepeatByte(token.REPNE) != 0xF2 {
		t.Fatal("REPNE should encode as 0xF2")
	}
	if RepeatByte(token.REP) != 0xF3 {
		t.Fatal("REP should encode as 0xF3")
	}
}

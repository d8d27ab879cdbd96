package ifile

import (
	"github.com/xyproto/bas/expr"
	"github.com/xyproto/bas/instr"
	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/operand"
	"github.com/xyproto/bas/segment"
	"github.com/xyproto/bas/symtab"
	"github.com/xyproto/bas/token"
)

// processInstruction parses an opcode (with optional repeat prefix)
// and its operand list, resolves it against the instruction table and
// computes a provisional size, matching pass1.c's process_instruction.
// The same sizing logic is reused by the resize pass over a remembered
// OperandPos, since symbol values (and therefore displacement/segment-
// override widths) may have changed between passes.
func processInstruction(state *State, f *IFILE, lex *lexer.Lexer, irec *IREC) {
	irec.Size = 0
	irec.NearJumpSize = 0

	if state.CurSeg == segment.NoSeg {
		state.errorAtLex(lex, "instruction outside a segment")
		lex.DiscardLine()
		return
	}
	if f.Segs.Segment(state.CurSeg).Uninit() {
		state.errorAtLex(lex, "instruction in an UNINIT segment")
	}

	if token.IsRepeat(lex.Tok) {
		irec.Rep = lex.Tok
		if !token.IsOpcode(lex.Next()) {
			state.errorAtLex(lex, "an instruction is required after a repeat prefix")
			lex.DiscardLine()
			return
		}
		if !instr.ValidRepeat(irec.Rep, lex.Tok) {
			state.errorAtLex(lex, "this repeat prefix cannot precede %s", token.Name(lex.Tok))
			lex.DiscardLine()
			return
		}
	} else {
		irec.Rep = token.NONE
	}

	irec.Op = lex.Tok
	lex.Next()
	irec.OperandPos = lex.TokenPos()

	env := exprAt(state, f, lex)
	op1, op2, op3, ok := parseOperands(env, lex)
	if !ok {
		lex.DiscardLine()
		return
	}

	sizeInstruction(state, f, irec, op1, op2, op3)
}

// parseOperands consumes a comma-separated operand list of up to
// three operands, matching parse.c's parse_operands.
func parseOperands(env *expr.Env, lex *lexer.Lexer) (op1, op2, op3 *operand.Operand, ok bool) {
	if lex.Tok == token.EOL {
		return nil, nil, nil, true
	}
	op1 = operand.Parse(env, lex)
	if op1 == nil {
		return nil, nil, nil, false
	}
	if lex.Tok != token.COMMA {
		return op1, nil, nil, true
	}
	lex.Next()
	op2 = operand.Parse(env, lex)
	if op2 == nil {
		return op1, nil, nil, false
	}
	if lex.Tok != token.COMMA {
		return op1, op2, nil, true
	}
	lex.Next()
	op3 = operand.Parse(env, lex)
	if op3 == nil {
		return op1, op2, nil, false
	}
	return op1, op2, op3, true
}

// directJump reports whether op is a JMP to an immediate target: the
// special "JMP rel8(EB)/rel16(E9)/ptr16:16(EA)" path spec.md §4.4 keeps
// out of the instruction table, since a short-vs-near rel8/rel16 choice
// is resize-pass-chosen rather than statically fixed like every other
// row (the indirect "JMP r/m16" form, FF /4, is an ordinary table row).
func directJump(op token.Kind, op1 *operand.Operand) bool {
	return op == token.JMP && op1 != nil && op1.Class == operand.Jump
}

func sizeInstruction(state *State, f *IFILE, irec *IREC, op1, op2, op3 *operand.Operand) {
	if irec.Rep != token.NONE {
		irec.Size++
	}

	if directJump(irec.Op, op1) {
		irec.Def = nil
		irec.NearJumpSize = 1
		if op1.Jump.Distance == operand.DistFar {
			irec.Size += 5
		} else {
			irec.Size += 2
			f.ProvisionalSizes = true
		}
		f.Segs.IncPC(state.CurSeg, irec.Size)
		return
	}

	row := instr.Find(state.CPU, irec.Op, op1, op2, op3)
	if row == nil {
		state.errorAtLine(f, irec, "no form of %s matches these operands", token.Name(irec.Op))
		return
	}
	irec.Def = row

	size, provisional := computeInstructionSize(state, f, row, op1, op2)
	irec.Size += size
	if provisional {
		f.ProvisionalSizes = true
	}
	if _, isJcc := instr.Reverse[irec.Op]; isJcc && state.Jumps {
		// A short Jcc is only ever provisionally short: the resize pass
		// must still check its final displacement against the JUMPS
		// expansion threshold even once every operand is resolved.
		f.ProvisionalSizes = true
	}
	f.Segs.IncPC(state.CurSeg, irec.Size)
}

// computeInstructionSize sizes everything about a resolved instruction
// except the repeat-prefix byte (already folded in by the caller):
// WAIT prefix, segment override, opcode bytes, ModR/M byte plus its
// displacement, and the immediate slots. Grounded on pass1.c's
// process_instruction/rm_disp_len/segment_override_size/addressability.
func computeInstructionSize(state *State, f *IFILE, def *instr.INSDEF, op1, op2 *operand.Operand) (uint32, bool) {
	var size uint32
	provisional := false

	ovr, ovrProv := instructionSegmentOverrideSize(state, f, def, op1, op2)
	size += ovr
	provisional = provisional || ovrProv

	size += uint32(instr.WaitNeeded(state.CPU, def))
	size += uint32(def.Opcodes)

	switch def.ModRM {
	case instr.NoModRM:
		if memOperand(op1) != nil && memOperand(op1).Flags.Has(operand.FINDIR) {
			size += 2
		} else if memOperand(op2) != nil && memOperand(op2).Flags.Has(operand.FINDIR) {
			size += 2
		}
	default:
		size++
		var memOp *operand.Operand
		switch def.ModRM {
		case instr.RRM:
			memOp = op2
		case instr.RMR, instr.RMC:
			memOp = op1
		}
		if memOp != nil && memOp.Class == operand.Mem {
			d, p := rmDispLen(f, memOp)
			size += d
			provisional = provisional || p
		}
	}

	size += uint32(def.Imm1) + uint32(def.Imm2) + uint32(def.Imm3)
	return size, provisional
}

func memOperand(op *operand.Operand) *operand.Operand {
	if op != nil && op.Class == operand.Mem {
		return op
	}
	return nil
}

// rmDispLen sizes a memory operand's ModR/M displacement field, per
// spec.md §4.6's rm_disp_len table.
func rmDispLen(f *IFILE, op *operand.Operand) (uint32, bool) {
	m := &op.Mem
	if m.BaseReg == operand.BaseNone && m.IndexReg == operand.BaseNone {
		return 2, false
	}
	min := uint32(0)
	if m.BaseReg == token.BP && m.IndexReg == operand.BaseNone {
		min = 1
	}
	switch m.DispType {
	case operand.NoDisp:
		return min, false
	case operand.AbsDisp:
		return dispLength(m.DispVal, min), false
	case operand.RelDisp:
		sym, _ := m.DispLabel.(*symtab.Symbol)
		if sym == nil {
			return min, true
		}
		if sym.External() {
			return 2, false
		}
		if !sym.Defined() {
			return min, true
		}
		if RelocatableRelative(f.Segs, sym) {
			return 2, false
		}
		return dispLength(int64(sym.Offset()), min), false
	}
	return min, false
}

func dispLength(disp int64, min uint32) uint32 {
	if disp == 0 {
		return min
	}
	if disp >= -0x80 && disp < 0x80 {
		return 1
	}
	return 2
}

// instructionSegmentOverrideSize decides whether a non-default
// effective segment needs an explicit override prefix byte, per
// spec.md §4.12. LEA never needs one (it computes an address, never
// dereferences memory); string instructions never get one here (their
// table rows take no operands, so there is nothing to carry an override).
func instructionSegmentOverrideSize(state *State, f *IFILE, def *instr.INSDEF, op1, op2 *operand.Operand) (uint32, bool) {
	if def.Opcode1 == 0x8D && def.ModRM == instr.RRM { // LEA
		return 0, false
	}
	if instr.StringInstruction(def) {
		return 0, false
	}
	if m := memOperand(op1); m != nil {
		return segmentOverrideSize(state, f, m)
	}
	if m := memOperand(op2); m != nil {
		return segmentOverrideSize(state, f, m)
	}
	return 0, false
}

func segmentOverrideSize(state *State, f *IFILE, op *operand.Operand) (uint32, bool) {
	m := &op.Mem
	defaultSreg := token.SR_DS
	if m.BaseReg == token.BP {
		defaultSreg = token.SR_SS
	}

	if m.SregOverride != operand.BaseNone {
		if m.SregOverride != defaultSreg {
			return 1, false
		}
		return 0, false
	}

	if m.DispType != operand.RelDisp {
		return 0, false
	}
	sym, _ := m.DispLabel.(*symtab.Symbol)
	if sym == nil {
		return 0, true
	}
	addr, provisional := addressability(state, f, sym, defaultSreg)
	if addr {
		return 0, provisional
	}
	return 1, provisional
}

// addressability reports whether sym's segment is reachable through
// the ASSUME binding for defaultSreg without an override, per pass1.c's
// addressability. A symbol whose segment is not yet known is reported
// as not addressable and provisional, so pass 1 reserves an override
// byte and marks that size as provisional.
func addressability(state *State, f *IFILE, sym *symtab.Symbol, defaultSreg int) (bool, bool) {
	assumeSym := state.AssumeSym[defaultSreg]
	if assumeSym == nil {
		return false, false
	}
	if int(sym.Seg()) < 0 || int(sym.Seg()) >= f.Segs.SegmentCount() {
		return false, true
	}
	seg := segment.SegNo(sym.Seg())

	switch assumeSym.SectionKind() {
	case symtab.SectionSegment:
		return segment.SegNo(assumeSym.Ordinal()) == seg, false
	case symtab.SectionGroup:
		return f.Segs.Segment(seg).Group == segment.GroupNo(assumeSym.Ordinal()), false
	}
	return false, false
}

package ifile

import (
	"github.com/xyproto/bas/expr"
	"github.com/xyproto/bas/instr"
	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/operand"
	"github.com/xyproto/bas/symtab"
	"github.com/xyproto/bas/token"
)

// ParseOperands re-lexes an instruction's operand list from the current
// lexer position, for the encoding pass's re-parse-then-encode step
// (spec.md §4.9: "Instructions: re-run operand parsing, then call the
// encoder").
func ParseOperands(env *expr.Env, lex *lexer.Lexer) (op1, op2, op3 *operand.Operand, ok bool) {
	return parseOperands(env, lex)
}

// SegmentOverride reports whether a memory operand needs an explicit
// segment-override prefix byte once every symbol's segment/group/
// ASSUME binding is stable, and which segment register to emit it for,
// per spec.md §4.12. It is the encoding-pass twin of
// instructionSegmentOverrideSize/segmentOverrideSize: pass 1 only
// needed to know the BYTE COUNT, the encoder additionally needs to
// know WHICH register to encode.
func SegmentOverride(state *State, f *IFILE, def *instr.INSDEF, op1, op2 *operand.Operand) (needed bool, sreg int) {
	if def.Opcode1 == 0x8D && def.ModRM == instr.RRM { // LEA
		return false, 0
	}
	if instr.StringInstruction(def) {
		return false, 0
	}
	m := memOperand(op1)
	if m == nil {
		m = memOperand(op2)
	}
	if m == nil {
		return false, 0
	}
	return segmentOverrideReg(state, f, m)
}

func segmentOverrideReg(state *State, f *IFILE, op *operand.Operand) (bool, int) {
	mem := &op.Mem
	defaultSreg := token.SR_DS
	if mem.BaseReg == token.BP {
		defaultSreg = token.SR_SS
	}

	if mem.SregOverride != operand.BaseNone {
		if mem.SregOverride != defaultSreg {
			return true, mem.SregOverride
		}
		return false, 0
	}

	if mem.DispType != operand.RelDisp {
		return false, 0
	}
	sym, _ := mem.DispLabel.(*symtab.Symbol)
	if sym == nil {
		return false, 0
	}
	if addr, _ := addressability(state, f, sym, defaultSreg); addr {
		return false, 0
	}
	// scan ES, CS, SS, DS for any SR that addresses the symbol's
	// segment or group, per spec.md §4.12's "otherwise" fallback.
	for _, reg := range [...]int{token.SR_ES, token.SR_CS, token.SR_SS, token.SR_DS} {
		if state.AssumeSym[reg] == nil {
			continue
		}
		if addr, _ := addressability(state, f, sym, reg); addr {
			return reg != defaultSreg, reg
		}
	}
	return true, defaultSreg
}

// ModRMFields computes the mod/rm pair for a memory operand's ModR/M
// byte, per spec.md §4.10's standard 8086 base/index table.
func ModRMFields(op *operand.Operand, dispLen uint32) (mod, rm byte) {
	m := &op.Mem
	switch {
	case m.BaseReg == operand.BaseNone && m.IndexReg == operand.BaseNone:
		return 0, 6
	case m.BaseReg == token.BX && m.IndexReg == token.SI:
		rm = 0
	case m.BaseReg == token.BX && m.IndexReg == token.DI:
		rm = 1
	case m.BaseReg == token.BP && m.IndexReg == token.SI:
		rm = 2
	case m.BaseReg == token.BP && m.IndexReg == token.DI:
		rm = 3
	case m.BaseReg == operand.BaseNone && m.IndexReg == token.SI:
		rm = 4
	case m.BaseReg == operand.BaseNone && m.IndexReg == token.DI:
		rm = 5
	case m.BaseReg == token.BP && m.IndexReg == operand.BaseNone:
		rm = 6
	case m.BaseReg == token.BX && m.IndexReg == operand.BaseNone:
		rm = 7
	}
	switch dispLen {
	case 0:
		mod = 0
	case 1:
		mod = 1
	default:
		mod = 2
	}
	return mod, rm
}

// DisplacementLength re-derives a memory operand's ModR/M displacement
// byte count using the same rules pass 1/resize used to size it, now
// that every symbol position is stable. The encoder calls this instead
// of rmDispLen directly since the two packages are split.
func DisplacementLength(f *IFILE, op *operand.Operand) uint32 {
	n, _ := rmDispLen(f, op)
	return n
}

// DisplacementValue resolves a memory operand's displacement to a
// concrete signed value once symbols are stable, for little-endian
// emission by the encoder.
func DisplacementValue(op *operand.Operand) int64 {
	m := &op.Mem
	switch m.DispType {
	case operand.AbsDisp:
		return m.DispVal
	case operand.RelDisp:
		if sym, ok := m.DispLabel.(*symtab.Symbol); ok && sym != nil {
			return int64(sym.Offset())
		}
	}
	return 0
}

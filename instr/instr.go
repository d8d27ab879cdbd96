// Package instr implements INSDEF, the assembler's static instruction
// table, and the operand-flag matching algorithm that resolves an
// opcode mnemonic plus a tuple of classified operands to a table row.
// Grounded on spec.md §4.4/§4.9/§4.10/§4.12 for the table row shape,
// matching order and ModR/M category dispatch, and on
// _examples/original_source/Shared/instable.c/instable.h for the table
// data itself and on Assembler/common.c's select_cpu/wait_needed and
// Assembler/parse.c's init_state for the exact CPU-gating and WAIT-
// prefix arithmetic.
package instr

import (
	"github.com/xyproto/bas/operand"
	"github.com/xyproto/bas/token"
)

// ModRM names the eleven-plus arrangement a row's ModR/M byte (if any)
// is built from, per spec.md §4.10.
type ModRM int

const (
	NoModRM ModRM = iota // RMN: no ModR/M byte at all
	RRM                  // reg field = oper1 (register), rm = oper2 (r/m)
	RMR                  // rm = oper1 (r/m), reg field = oper2 (register)
	RMC                  // rm = oper1 (r/m), reg field fixed from row.Reg (opcode extension)
	REGRM                // REG: mod=3, reg=rm=oper1.reg
	SSI                  // mod=3, reg=row.Reg, rm=0 (ST, ST)
	SIS                  // mod=3, reg=row.Reg, rm=oper.Reg.No (ST(i), ST)
	SSC                  // mod=3, reg=row.Reg, rm=0 (ST, ST(i), reversed operand order from SIS)
	SIC                  // mod=3, reg=row.Reg, rm=oper.Reg.No (ST(i))
	STC                  // mod=3, reg=row.Reg, rm=0 (top of stack only)
	STK                  // mod=3, reg=row.Reg, rm=1
	CCC                  // ModR/M byte is a fixed opcode-extension byte (row.Opcode2)
)

// WaitCategory selects how many 0x9B WAIT prefix bytes a row needs and
// under which CPU, per spec.md §4.4/§4.9.
type WaitCategory int

const (
	NoWait WaitCategory = iota
	Wait                // one WAIT byte, 8086 only
	Wait286             // one WAIT byte, 8086 and 80286
	Wait2               // two WAIT bytes, 8086 only
)

// CPU is the processor-gating tag of an instruction row.
type CPU int

const (
	P86 CPU = iota
	P87
	P286N // 80286, real mode
	P286P // 80286, protected mode
	P287
)

// Mask is a bitset of enabled CPU tags, mutated by the P8086/P8087/
// P287/P286/P286N/PNO87 directives (spec.md §4.4).
type Mask uint

func cpuBit(c CPU) Mask { return 1 << uint(c) }

const (
	MaskP86   = Mask(1) << uint(P86)
	MaskP87   = Mask(1) << uint(P87)
	MaskP286N = Mask(1) << uint(P286N)
	MaskP286P = Mask(1) << uint(P286P)
	MaskP287  = Mask(1) << uint(P287)
)

// DefaultMask is the enabled-CPU set before any processor directive,
// matching init_state: base 8086 integer instructions plus the 8087
// FPU, both available with no directive needed.
const DefaultMask = MaskP86 | MaskP87

// Enabled reports whether row cpu c is permitted under mask.
func Enabled(mask Mask, c CPU) bool { return mask&cpuBit(c) != 0 }

// SelectCPU sets mask per one of the P8086/P8087/PNO87/P287/P286/P286N
// directive tokens, matching select_cpu exactly: P8086/P286/P286N
// replace the mask outright (the same way the reference assigns
// state->cpu rather than OR-ing it), while P8087/P287/PNO87 only add
// or remove FPU bits from whatever is already enabled.
func SelectCPU(mask Mask, tok token.Kind) Mask {
	switch tok {
	case token.P8086:
		return MaskP86 | MaskP87
	case token.P8087:
		return mask | MaskP87
	case token.PNO87:
		return mask &^ (MaskP87 | MaskP287)
	case token.P287:
		return mask | MaskP87 | MaskP287
	case token.P286:
		return MaskP86 | MaskP87 | MaskP286N | MaskP287 | MaskP286P
	case token.P286N:
		return MaskP86 | MaskP87 | MaskP286N | MaskP287
	}
	return mask
}

// ImmSize is the byte width of an immediate/displacement slot a row
// emits, 0 meaning absent.
type ImmSize int

// INSDEF is one immutable instruction-table row.
type INSDEF struct {
	Op     token.Kind
	Oper1  operand.FlagSet
	Oper2  operand.FlagSet
	Oper3  operand.FlagSet
	Opcodes  int // 1 or 2 opcode bytes before ModR/M
	Wait     WaitCategory
	Opcode1  byte
	Opcode2  byte
	OpcodeInc bool // opcode1 += operand register number (e.g. B8+reg)
	ModRM    ModRM
	Reg      int // fixed reg field / opcode extension, when ModRM needs one
	Imm1     ImmSize
	Imm2     ImmSize
	Imm3     ImmSize
	CPU      CPU
}

// StringInstruction reports whether def is one of the string
// instructions (MOVS/CMPS/SCAS/LODS/STOS/INS/OUTS family). No segment
// override is computed or emitted for them.
func StringInstruction(def *INSDEF) bool {
	switch def.Op {
	case token.MOVS, token.MOVSB, token.MOVSW,
		token.CMPS, token.CMPSB, token.CMPSW,
		token.SCAS, token.SCASB, token.SCASW,
		token.LODS, token.LODSB, token.LODSW,
		token.STOS, token.STOSB, token.STOSW,
		token.INS, token.INSB, token.INSW,
		token.OUTS, token.OUTSB, token.OUTSW:
		return true
	}
	return false
}

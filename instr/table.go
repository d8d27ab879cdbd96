package instr

import (
	"github.com/xyproto/bas/operand"
	"github.com/xyproto/bas/token"
)

func f(flags ...operand.Flag) operand.FlagSet {
	var s operand.FlagSet
	for _, fl := range flags {
		s.Add(fl)
	}
	return s
}

const none = operand.FNone

// Table is the static instruction catalogue, ordered most-specific-row
// first within each mnemonic's chain so that e.g. "AX, imm16" is tried
// before the general "r16, imm16" row, per spec.md §4.4/§9. It is a
// representative, extensible catalogue (SPEC_FULL.md §4) rather than an
// exhaustive transcription of the reference table, scoped to realise
// every matching-algorithm shape spec.md names and the concrete
// byte-level scenarios in spec.md §8.
var Table = []INSDEF{
	// --- data transfer ---
	{Op: token.MOV, Oper1: f(operand.FAL), Oper2: f(operand.FIMM8U), Opcodes: 1, Opcode1: 0xB0, OpcodeInc: false, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FREG8), Oper2: f(operand.FIMM8U), Opcodes: 1, Opcode1: 0xB0, OpcodeInc: true, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FAX), Oper2: f(operand.FIMM), Opcodes: 1, Opcode1: 0xB8, OpcodeInc: false, ModRM: NoModRM, Imm1: 2, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FREG16), Oper2: f(operand.FIMM), Opcodes: 1, Opcode1: 0xB8, OpcodeInc: true, ModRM: NoModRM, Imm1: 2, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FAL), Oper2: f(operand.FINDIR), Opcodes: 1, Opcode1: 0xA0, ModRM: NoModRM, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FAX), Oper2: f(operand.FINDIR), Opcodes: 1, Opcode1: 0xA1, ModRM: NoModRM, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FINDIR), Oper2: f(operand.FAL), Opcodes: 1, Opcode1: 0xA2, ModRM: NoModRM, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FINDIR), Oper2: f(operand.FAX), Opcodes: 1, Opcode1: 0xA3, ModRM: NoModRM, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FRM8), Oper2: f(operand.FIMM8U), Opcodes: 1, Opcode1: 0xC6, ModRM: RMC, Reg: 0, Imm1: 1, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FRM16), Oper2: f(operand.FIMM), Opcodes: 1, Opcode1: 0xC7, ModRM: RMC, Reg: 0, Imm1: 2, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FREG8), Oper2: f(operand.FRM8), Opcodes: 1, Opcode1: 0x8A, ModRM: RRM, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FRM8), Oper2: f(operand.FREG8), Opcodes: 1, Opcode1: 0x88, ModRM: RMR, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FREG16), Oper2: f(operand.FRM16), Opcodes: 1, Opcode1: 0x8B, ModRM: RRM, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FRM16), Oper2: f(operand.FREG16), Opcodes: 1, Opcode1: 0x89, ModRM: RMR, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FRM16), Oper2: f(operand.FSREG), Opcodes: 1, Opcode1: 0x8C, ModRM: RMR, CPU: P86},
	{Op: token.MOV, Oper1: f(operand.FSREG), Oper2: f(operand.FRM16), Opcodes: 1, Opcode1: 0x8E, ModRM: RRM, CPU: P86},

	{Op: token.XCHG, Oper1: f(operand.FAX), Oper2: f(operand.FREG16), Opcodes: 1, Opcode1: 0x90, OpcodeInc: true, ModRM: NoModRM, CPU: P86},
	{Op: token.XCHG, Oper1: f(operand.FREG8), Oper2: f(operand.FRM8), Opcodes: 1, Opcode1: 0x86, ModRM: RRM, CPU: P86},
	{Op: token.XCHG, Oper1: f(operand.FREG16), Oper2: f(operand.FRM16), Opcodes: 1, Opcode1: 0x87, ModRM: RRM, CPU: P86},

	{Op: token.LEA, Oper1: f(operand.FREG16), Oper2: f(operand.FMEM16, operand.FINDIR, operand.FRM), Opcodes: 1, Opcode1: 0x8D, ModRM: RRM, CPU: P86},
	{Op: token.LDS, Oper1: f(operand.FREG16), Oper2: f(operand.FRM), Opcodes: 1, Opcode1: 0xC5, ModRM: RRM, CPU: P86},
	{Op: token.LES, Oper1: f(operand.FREG16), Oper2: f(operand.FRM), Opcodes: 1, Opcode1: 0xC4, ModRM: RRM, CPU: P86},

	{Op: token.PUSH, Oper1: f(operand.FREG16), Opcodes: 1, Opcode1: 0x50, OpcodeInc: true, ModRM: NoModRM, CPU: P86},
	{Op: token.PUSH, Oper1: f(operand.FSREG), Opcodes: 1, Opcode1: 0x06, OpcodeInc: true, ModRM: NoModRM, CPU: P86},
	{Op: token.PUSH, Oper1: f(operand.FRM16), Opcodes: 1, Opcode1: 0xFF, ModRM: RMC, Reg: 6, CPU: P286N},
	{Op: token.POP, Oper1: f(operand.FREG16), Opcodes: 1, Opcode1: 0x58, OpcodeInc: true, ModRM: NoModRM, CPU: P86},
	{Op: token.POP, Oper1: f(operand.FSREG), Opcodes: 1, Opcode1: 0x07, OpcodeInc: true, ModRM: NoModRM, CPU: P86},
	{Op: token.POP, Oper1: f(operand.FRM16), Opcodes: 1, Opcode1: 0x8F, ModRM: RMC, Reg: 0, CPU: P86},

	{Op: token.IN, Oper1: f(operand.FAL), Oper2: f(operand.FIMM8U), Opcodes: 1, Opcode1: 0xE4, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.IN, Oper1: f(operand.FAX), Oper2: f(operand.FIMM8U), Opcodes: 1, Opcode1: 0xE5, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.IN, Oper1: f(operand.FAL), Oper2: f(operand.FDX), Opcodes: 1, Opcode1: 0xEC, ModRM: NoModRM, CPU: P86},
	{Op: token.IN, Oper1: f(operand.FAX), Oper2: f(operand.FDX), Opcodes: 1, Opcode1: 0xED, ModRM: NoModRM, CPU: P86},
	{Op: token.OUT, Oper1: f(operand.FIMM8U), Oper2: f(operand.FAL), Opcodes: 1, Opcode1: 0xE6, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.OUT, Oper1: f(operand.FIMM8U), Oper2: f(operand.FAX), Opcodes: 1, Opcode1: 0xE7, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.OUT, Oper1: f(operand.FDX), Oper2: f(operand.FAL), Opcodes: 1, Opcode1: 0xEE, ModRM: NoModRM, CPU: P86},
	{Op: token.OUT, Oper1: f(operand.FDX), Oper2: f(operand.FAX), Opcodes: 1, Opcode1: 0xEF, ModRM: NoModRM, CPU: P86},

	// --- arithmetic/logic group: ADD ADC SUB SBB AND OR XOR CMP ---
	// table-driven via arithOp below; see init().

	{Op: token.INC, Oper1: f(operand.FREG16), Opcodes: 1, Opcode1: 0x40, OpcodeInc: true, ModRM: NoModRM, CPU: P86},
	{Op: token.INC, Oper1: f(operand.FRM8), Opcodes: 1, Opcode1: 0xFE, ModRM: RMC, Reg: 0, CPU: P86},
	{Op: token.INC, Oper1: f(operand.FRM16), Opcodes: 1, Opcode1: 0xFF, ModRM: RMC, Reg: 0, CPU: P86},
	{Op: token.DEC, Oper1: f(operand.FREG16), Opcodes: 1, Opcode1: 0x48, OpcodeInc: true, ModRM: NoModRM, CPU: P86},
	{Op: token.DEC, Oper1: f(operand.FRM8), Opcodes: 1, Opcode1: 0xFE, ModRM: RMC, Reg: 1, CPU: P86},
	{Op: token.DEC, Oper1: f(operand.FRM16), Opcodes: 1, Opcode1: 0xFF, ModRM: RMC, Reg: 1, CPU: P86},
	{Op: token.NEG, Oper1: f(operand.FRM8), Opcodes: 1, Opcode1: 0xF6, ModRM: RMC, Reg: 3, CPU: P86},
	{Op: token.NEG, Oper1: f(operand.FRM16), Opcodes: 1, Opcode1: 0xF7, ModRM: RMC, Reg: 3, CPU: P86},
	{Op: token.NOT, Oper1: f(operand.FRM8), Opcodes: 1, Opcode1: 0xF6, ModRM: RMC, Reg: 2, CPU: P86},
	{Op: token.NOT, Oper1: f(operand.FRM16), Opcodes: 1, Opcode1: 0xF7, ModRM: RMC, Reg: 2, CPU: P86},
	{Op: token.MUL, Oper1: f(operand.FRM8), Opcodes: 1, Opcode1: 0xF6, ModRM: RMC, Reg: 4, CPU: P86},
	{Op: token.MUL, Oper1: f(operand.FRM16), Opcodes: 1, Opcode1: 0xF7, ModRM: RMC, Reg: 4, CPU: P86},
	{Op: token.IMUL, Oper1: f(operand.FRM8), Opcodes: 1, Opcode1: 0xF6, ModRM: RMC, Reg: 5, CPU: P86},
	{Op: token.IMUL, Oper1: f(operand.FRM16), Opcodes: 1, Opcode1: 0xF7, ModRM: RMC, Reg: 5, CPU: P86},
	{Op: token.DIV, Oper1: f(operand.FRM8), Opcodes: 1, Opcode1: 0xF6, ModRM: RMC, Reg: 6, CPU: P86},
	{Op: token.DIV, Oper1: f(operand.FRM16), Opcodes: 1, Opcode1: 0xF7, ModRM: RMC, Reg: 6, CPU: P86},
	{Op: token.IDIV, Oper1: f(operand.FRM8), Opcodes: 1, Opcode1: 0xF6, ModRM: RMC, Reg: 7, CPU: P86},
	{Op: token.IDIV, Oper1: f(operand.FRM16), Opcodes: 1, Opcode1: 0xF7, ModRM: RMC, Reg: 7, CPU: P86},
	{Op: token.TEST, Oper1: f(operand.FAL), Oper2: f(operand.FIMM8U), Opcodes: 1, Opcode1: 0xA8, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.TEST, Oper1: f(operand.FAX), Oper2: f(operand.FIMM), Opcodes: 1, Opcode1: 0xA9, ModRM: NoModRM, Imm1: 2, CPU: P86},
	{Op: token.TEST, Oper1: f(operand.FRM8), Oper2: f(operand.FIMM8U), Opcodes: 1, Opcode1: 0xF6, ModRM: RMC, Reg: 0, Imm1: 1, CPU: P86},
	{Op: token.TEST, Oper1: f(operand.FRM16), Oper2: f(operand.FIMM), Opcodes: 1, Opcode1: 0xF7, ModRM: RMC, Reg: 0, Imm1: 2, CPU: P86},
	{Op: token.TEST, Oper1: f(operand.FRM8), Oper2: f(operand.FREG8), Opcodes: 1, Opcode1: 0x84, ModRM: RMR, CPU: P86},
	{Op: token.TEST, Oper1: f(operand.FRM16), Oper2: f(operand.FREG16), Opcodes: 1, Opcode1: 0x85, ModRM: RMR, CPU: P86},

	// --- shift/rotate group ---
	{Op: token.SHL, Oper1: f(operand.FRM8), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD0, ModRM: RMC, Reg: 4, CPU: P86},
	{Op: token.SHL, Oper1: f(operand.FRM16), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD1, ModRM: RMC, Reg: 4, CPU: P86},
	{Op: token.SHL, Oper1: f(operand.FRM8), Oper2: f(operand.FCL), Opcodes: 1, Opcode1: 0xD2, ModRM: RMC, Reg: 4, CPU: P86},
	{Op: token.SHL, Oper1: f(operand.FRM16), Oper2: f(operand.FCL), Opcodes: 1, Opcode1: 0xD3, ModRM: RMC, Reg: 4, CPU: P86},
	{Op: token.SAL, Oper1: f(operand.FRM8), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD0, ModRM: RMC, Reg: 4, CPU: P86},
	{Op: token.SAL, Oper1: f(operand.FRM16), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD1, ModRM: RMC, Reg: 4, CPU: P86},
	{Op: token.SHR, Oper1: f(operand.FRM8), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD0, ModRM: RMC, Reg: 5, CPU: P86},
	{Op: token.SHR, Oper1: f(operand.FRM16), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD1, ModRM: RMC, Reg: 5, CPU: P86},
	{Op: token.SHR, Oper1: f(operand.FRM8), Oper2: f(operand.FCL), Opcodes: 1, Opcode1: 0xD2, ModRM: RMC, Reg: 5, CPU: P86},
	{Op: token.SHR, Oper1: f(operand.FRM16), Oper2: f(operand.FCL), Opcodes: 1, Opcode1: 0xD3, ModRM: RMC, Reg: 5, CPU: P86},
	{Op: token.SAR, Oper1: f(operand.FRM8), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD0, ModRM: RMC, Reg: 7, CPU: P86},
	{Op: token.SAR, Oper1: f(operand.FRM16), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD1, ModRM: RMC, Reg: 7, CPU: P86},
	{Op: token.SAR, Oper1: f(operand.FRM8), Oper2: f(operand.FCL), Opcodes: 1, Opcode1: 0xD2, ModRM: RMC, Reg: 7, CPU: P86},
	{Op: token.SAR, Oper1: f(operand.FRM16), Oper2: f(operand.FCL), Opcodes: 1, Opcode1: 0xD3, ModRM: RMC, Reg: 7, CPU: P86},
	{Op: token.ROL, Oper1: f(operand.FRM8), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD0, ModRM: RMC, Reg: 0, CPU: P86},
	{Op: token.ROL, Oper1: f(operand.FRM16), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD1, ModRM: RMC, Reg: 0, CPU: P86},
	{Op: token.ROR, Oper1: f(operand.FRM8), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD0, ModRM: RMC, Reg: 1, CPU: P86},
	{Op: token.ROR, Oper1: f(operand.FRM16), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD1, ModRM: RMC, Reg: 1, CPU: P86},
	{Op: token.RCL, Oper1: f(operand.FRM8), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD0, ModRM: RMC, Reg: 2, CPU: P86},
	{Op: token.RCL, Oper1: f(operand.FRM16), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD1, ModRM: RMC, Reg: 2, CPU: P86},
	{Op: token.RCR, Oper1: f(operand.FRM8), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD0, ModRM: RMC, Reg: 3, CPU: P86},
	{Op: token.RCR, Oper1: f(operand.FRM16), Oper2: f(operand.FOF1), Opcodes: 1, Opcode1: 0xD1, ModRM: RMC, Reg: 3, CPU: P86},

	// --- control transfer (special rows; JMP rel8/rel16 are NOT here,
	// per spec.md §4.4: they go through the dedicated direct-near-jump
	// path in the assemble package) ---
	{Op: token.CALL, Oper1: f(operand.FNEARJ), Opcodes: 1, Opcode1: 0xE8, ModRM: NoModRM, Imm1: 2, CPU: P86},
	{Op: token.CALL, Oper1: f(operand.FRM16), Opcodes: 1, Opcode1: 0xFF, ModRM: RMC, Reg: 2, CPU: P86},
	{Op: token.JMP, Oper1: f(operand.FRM16), Opcodes: 1, Opcode1: 0xFF, ModRM: RMC, Reg: 4, CPU: P86},
	{Op: token.RET, Opcodes: 1, Opcode1: 0xC3, ModRM: NoModRM, CPU: P86},
	{Op: token.RET, Oper1: f(operand.FIMM), Opcodes: 1, Opcode1: 0xC2, ModRM: NoModRM, Imm1: 2, CPU: P86},
	{Op: token.RETN, Opcodes: 1, Opcode1: 0xC3, ModRM: NoModRM, CPU: P86},
	{Op: token.RETF, Opcodes: 1, Opcode1: 0xCB, ModRM: NoModRM, CPU: P86},
	{Op: token.RETF, Oper1: f(operand.FIMM), Opcodes: 1, Opcode1: 0xCA, ModRM: NoModRM, Imm1: 2, CPU: P86},
	{Op: token.LOOP, Oper1: f(operand.FNEARJ), Opcodes: 1, Opcode1: 0xE2, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.LOOPE, Oper1: f(operand.FNEARJ), Opcodes: 1, Opcode1: 0xE1, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.LOOPZ, Oper1: f(operand.FNEARJ), Opcodes: 1, Opcode1: 0xE1, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.LOOPNE, Oper1: f(operand.FNEARJ), Opcodes: 1, Opcode1: 0xE0, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.LOOPNZ, Oper1: f(operand.FNEARJ), Opcodes: 1, Opcode1: 0xE0, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.JCXZ, Oper1: f(operand.FNEARJ), Opcodes: 1, Opcode1: 0xE3, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.INT, Oper1: f(operand.FIMM8U), Opcodes: 1, Opcode1: 0xCD, ModRM: NoModRM, Imm1: 1, CPU: P86},
	{Op: token.INT3, Opcodes: 1, Opcode1: 0xCC, ModRM: NoModRM, CPU: P86},
	{Op: token.INTO, Opcodes: 1, Opcode1: 0xCE, ModRM: NoModRM, CPU: P86},
	{Op: token.IRET, Opcodes: 1, Opcode1: 0xCF, ModRM: NoModRM, CPU: P86},
	{Op: token.IRETW, Opcodes: 1, Opcode1: 0xCF, ModRM: NoModRM, CPU: P86},

	// --- string instructions ---
	{Op: token.MOVSB, Opcodes: 1, Opcode1: 0xA4, ModRM: NoModRM, CPU: P86},
	{Op: token.MOVSW, Opcodes: 1, Opcode1: 0xA5, ModRM: NoModRM, CPU: P86},
	{Op: token.CMPSB, Opcodes: 1, Opcode1: 0xA6, ModRM: NoModRM, CPU: P86},
	{Op: token.CMPSW, Opcodes: 1, Opcode1: 0xA7, ModRM: NoModRM, CPU: P86},
	{Op: token.SCASB, Opcodes: 1, Opcode1: 0xAE, ModRM: NoModRM, CPU: P86},
	{Op: token.SCASW, Opcodes: 1, Opcode1: 0xAF, ModRM: NoModRM, CPU: P86},
	{Op: token.LODSB, Opcodes: 1, Opcode1: 0xAC, ModRM: NoModRM, CPU: P86},
	{Op: token.LODSW, Opcodes: 1, Opcode1: 0xAD, ModRM: NoModRM, CPU: P86},
	{Op: token.STOSB, Opcodes: 1, Opcode1: 0xAA, ModRM: NoModRM, CPU: P86},
	{Op: token.STOSW, Opcodes: 1, Opcode1: 0xAB, ModRM: NoModRM, CPU: P86},
	{Op: token.INSB, Opcodes: 1, Opcode1: 0x6C, ModRM: NoModRM, CPU: P286N},
	{Op: token.INSW, Opcodes: 1, Opcode1: 0x6D, ModRM: NoModRM, CPU: P286N},
	{Op: token.OUTSB, Opcodes: 1, Opcode1: 0x6E, ModRM: NoModRM, CPU: P286N},
	{Op: token.OUTSW, Opcodes: 1, Opcode1: 0x6F, ModRM: NoModRM, CPU: P286N},
	{Op: token.XLAT, Opcodes: 1, Opcode1: 0xD7, ModRM: NoModRM, CPU: P86},
	{Op: token.XLATB, Opcodes: 1, Opcode1: 0xD7, ModRM: NoModRM, CPU: P86},

	// --- flag / misc ---
	{Op: token.CLC, Opcodes: 1, Opcode1: 0xF8, ModRM: NoModRM, CPU: P86},
	{Op: token.STC, Opcodes: 1, Opcode1: 0xF9, ModRM: NoModRM, CPU: P86},
	{Op: token.CMC, Opcodes: 1, Opcode1: 0xF5, ModRM: NoModRM, CPU: P86},
	{Op: token.CLD, Opcodes: 1, Opcode1: 0xFC, ModRM: NoModRM, CPU: P86},
	{Op: token.STD, Opcodes: 1, Opcode1: 0xFD, ModRM: NoModRM, CPU: P86},
	{Op: token.CLI, Opcodes: 1, Opcode1: 0xFA, ModRM: NoModRM, CPU: P86},
	{Op: token.STI, Opcodes: 1, Opcode1: 0xFB, ModRM: NoModRM, CPU: P86},
	{Op: token.NOP, Opcodes: 1, Opcode1: 0x90, ModRM: NoModRM, CPU: P86},
	{Op: token.HLT, Opcodes: 1, Opcode1: 0xF4, ModRM: NoModRM, CPU: P86},
	{Op: token.LAHF, Opcodes: 1, Opcode1: 0x9F, ModRM: NoModRM, CPU: P86},
	{Op: token.SAHF, Opcodes: 1, Opcode1: 0x9E, ModRM: NoModRM, CPU: P86},
	{Op: token.PUSHF, Opcodes: 1, Opcode1: 0x9C, ModRM: NoModRM, CPU: P86},
	{Op: token.PUSHFW, Opcodes: 1, Opcode1: 0x9C, ModRM: NoModRM, CPU: P86},
	{Op: token.POPF, Opcodes: 1, Opcode1: 0x9D, ModRM: NoModRM, CPU: P86},
	{Op: token.POPFW, Opcodes: 1, Opcode1: 0x9D, ModRM: NoModRM, CPU: P86},
	{Op: token.CBW, Opcodes: 1, Opcode1: 0x98, ModRM: NoModRM, CPU: P86},
	{Op: token.CWD, Opcodes: 1, Opcode1: 0x99, ModRM: NoModRM, CPU: P86},
	{Op: token.AAA, Opcodes: 1, Opcode1: 0x37, ModRM: NoModRM, CPU: P86},
	{Op: token.AAS, Opcodes: 1, Opcode1: 0x3F, ModRM: NoModRM, CPU: P86},
	{Op: token.DAA, Opcodes: 1, Opcode1: 0x27, ModRM: NoModRM, CPU: P86},
	{Op: token.DAS, Opcodes: 1, Opcode1: 0x2F, ModRM: NoModRM, CPU: P86},
	{Op: token.AAM, Opcodes: 2, Opcode1: 0xD4, Opcode2: 0x0A, ModRM: NoModRM, CPU: P86},
	{Op: token.AAD, Opcodes: 2, Opcode1: 0xD5, Opcode2: 0x0A, ModRM: NoModRM, CPU: P86},
	{Op: token.LOCK, Opcodes: 1, Opcode1: 0xF0, ModRM: NoModRM, CPU: P86},
	{Op: token.WAIT, Opcodes: 1, Opcode1: 0x9B, ModRM: NoModRM, CPU: P86},

	// --- 8087 subset ---
	{Op: token.FLD, Oper1: f(operand.FMEM32), Opcodes: 1, Wait: Wait, Opcode1: 0xD9, ModRM: RMC, Reg: 0, CPU: P87},
	{Op: token.FLD, Oper1: f(operand.FMEM64), Opcodes: 1, Wait: Wait, Opcode1: 0xDD, ModRM: RMC, Reg: 0, CPU: P87},
	{Op: token.FLD, Oper1: f(operand.FMEM80), Opcodes: 1, Wait: Wait, Opcode1: 0xDB, ModRM: RMC, Reg: 5, CPU: P87},
	{Op: token.FLD, Oper1: f(operand.FSTI), Opcodes: 2, Wait: Wait, Opcode1: 0xD9, ModRM: SIC, Reg: 0, CPU: P87},
	{Op: token.FLD1, Opcodes: 2, Wait: Wait, Opcode1: 0xD9, Opcode2: 0xE8, ModRM: NoModRM, CPU: P87},
	{Op: token.FLDZ, Opcodes: 2, Wait: Wait, Opcode1: 0xD9, Opcode2: 0xEE, ModRM: NoModRM, CPU: P87},
	{Op: token.FST, Oper1: f(operand.FMEM32), Opcodes: 1, Wait: Wait, Opcode1: 0xD9, ModRM: RMC, Reg: 2, CPU: P87},
	{Op: token.FST, Oper1: f(operand.FMEM64), Opcodes: 1, Wait: Wait, Opcode1: 0xDD, ModRM: RMC, Reg: 2, CPU: P87},
	{Op: token.FST, Oper1: f(operand.FSTI), Opcodes: 2, Wait: Wait, Opcode1: 0xDD, ModRM: SIC, Reg: 2, CPU: P87},
	{Op: token.FSTP, Oper1: f(operand.FMEM32), Opcodes: 1, Wait: Wait, Opcode1: 0xD9, ModRM: RMC, Reg: 3, CPU: P87},
	{Op: token.FSTP, Oper1: f(operand.FMEM64), Opcodes: 1, Wait: Wait, Opcode1: 0xDD, ModRM: RMC, Reg: 3, CPU: P87},
	{Op: token.FSTP, Oper1: f(operand.FMEM80), Opcodes: 1, Wait: Wait, Opcode1: 0xDB, ModRM: RMC, Reg: 7, CPU: P87},
	{Op: token.FSTP, Oper1: f(operand.FSTI), Opcodes: 2, Wait: Wait, Opcode1: 0xDD, ModRM: SIC, Reg: 3, CPU: P87},
	{Op: token.FADD, Oper1: f(operand.FMEM32), Opcodes: 1, Wait: Wait, Opcode1: 0xD8, ModRM: RMC, Reg: 0, CPU: P87},
	{Op: token.FADD, Oper1: f(operand.FMEM64), Opcodes: 1, Wait: Wait, Opcode1: 0xDC, ModRM: RMC, Reg: 0, CPU: P87},
	{Op: token.FADDP, Opcodes: 2, Wait: Wait, Opcode1: 0xDE, Opcode2: 0xC1, ModRM: NoModRM, CPU: P87},
	{Op: token.FSUB, Oper1: f(operand.FMEM32), Opcodes: 1, Wait: Wait, Opcode1: 0xD8, ModRM: RMC, Reg: 4, CPU: P87},
	{Op: token.FSUB, Oper1: f(operand.FMEM64), Opcodes: 1, Wait: Wait, Opcode1: 0xDC, ModRM: RMC, Reg: 4, CPU: P87},
	{Op: token.FSUBP, Opcodes: 2, Wait: Wait, Opcode1: 0xDE, Opcode2: 0xE9, ModRM: NoModRM, CPU: P87},
	{Op: token.FMUL, Oper1: f(operand.FMEM32), Opcodes: 1, Wait: Wait, Opcode1: 0xD8, ModRM: RMC, Reg: 1, CPU: P87},
	{Op: token.FMUL, Oper1: f(operand.FMEM64), Opcodes: 1, Wait: Wait, Opcode1: 0xDC, ModRM: RMC, Reg: 1, CPU: P87},
	{Op: token.FMULP, Opcodes: 2, Wait: Wait, Opcode1: 0xDE, Opcode2: 0xC9, ModRM: NoModRM, CPU: P87},
	{Op: token.FDIV, Oper1: f(operand.FMEM32), Opcodes: 1, Wait: Wait, Opcode1: 0xD8, ModRM: RMC, Reg: 6, CPU: P87},
	{Op: token.FDIV, Oper1: f(operand.FMEM64), Opcodes: 1, Wait: Wait, Opcode1: 0xDC, ModRM: RMC, Reg: 6, CPU: P87},
	{Op: token.FDIVP, Opcodes: 2, Wait: Wait, Opcode1: 0xDE, Opcode2: 0xF9, ModRM: NoModRM, CPU: P87},
	{Op: token.FCOMP, Oper1: f(operand.FMEM32), Opcodes: 1, Wait: Wait, Opcode1: 0xD8, ModRM: RMC, Reg: 3, CPU: P87},
	{Op: token.FCOMPP, Opcodes: 2, Wait: Wait, Opcode1: 0xDE, Opcode2: 0xD9, ModRM: NoModRM, CPU: P87},
	{Op: token.FCHS, Opcodes: 2, Wait: Wait, Opcode1: 0xD9, Opcode2: 0xE0, ModRM: NoModRM, CPU: P87},
	{Op: token.FABS, Opcodes: 2, Wait: Wait, Opcode1: 0xD9, Opcode2: 0xE1, ModRM: NoModRM, CPU: P87},
	{Op: token.FINIT, Opcodes: 2, Wait: Wait, Opcode1: 0xDB, Opcode2: 0xE3, ModRM: NoModRM, CPU: P87},
	{Op: token.FNINIT, Opcodes: 2, Wait: NoWait, Opcode1: 0xDB, Opcode2: 0xE3, ModRM: NoModRM, CPU: P87},
	{Op: token.FNSTSW, Oper1: f(operand.FAX), Opcodes: 2, Wait: NoWait, Opcode1: 0xDF, Opcode2: 0xE0, ModRM: NoModRM, CPU: P287},
	{Op: token.FWAIT, Opcodes: 1, Opcode1: 0x9B, ModRM: NoModRM, CPU: P87},
}

// arithOp lists the eight ADD-family mnemonics with their /digit opcode
// extension and base "r/m8, reg8" opcode byte, from which the full
// eight-row-per-mnemonic pattern (AL/imm, AX/imm, r/m8/imm8, r/m16/imm,
// r/m8,r8, r8,r/m8, r/m16,r16, r16,r/m16) is generated in init(), per
// the reference table's well-known arithmetic-group regularity.
type arithOp struct {
	tok   token.Kind
	digit int
	base  byte // opcode of "r/m8, reg8" form; +1=r/m16,reg16; +2=reg8,r/m8; +3=reg16,r/m16
}

var arithOps = []arithOp{
	{token.ADD, 0, 0x00},
	{token.OR, 1, 0x08},
	{token.ADC, 2, 0x10},
	{token.SBB, 3, 0x18},
	{token.AND, 4, 0x20},
	{token.SUB, 5, 0x28},
	{token.XOR, 6, 0x30},
	{token.CMP, 7, 0x38},
}

func init() {
	for _, a := range arithOps {
		Table = append(Table,
			INSDEF{Op: a.tok, Oper1: f(operand.FAL), Oper2: f(operand.FIMM8U), Opcodes: 1, Opcode1: a.base + 4, ModRM: NoModRM, Imm1: 1, CPU: P86},
			INSDEF{Op: a.tok, Oper1: f(operand.FAX), Oper2: f(operand.FIMM), Opcodes: 1, Opcode1: a.base + 5, ModRM: NoModRM, Imm1: 2, CPU: P86},
			INSDEF{Op: a.tok, Oper1: f(operand.FRM8), Oper2: f(operand.FIMM8U), Opcodes: 1, Opcode1: 0x80, ModRM: RMC, Reg: a.digit, Imm1: 1, CPU: P86},
			INSDEF{Op: a.tok, Oper1: f(operand.FRM16), Oper2: f(operand.FIMM8), Opcodes: 1, Opcode1: 0x83, ModRM: RMC, Reg: a.digit, Imm1: 1, CPU: P86},
			INSDEF{Op: a.tok, Oper1: f(operand.FRM16), Oper2: f(operand.FIMM), Opcodes: 1, Opcode1: 0x81, ModRM: RMC, Reg: a.digit, Imm1: 2, CPU: P86},
			// reg,rm (Gb/Gv,Eb/Ev) is tried before rm,reg so that a
			// register-register pairing prefers the form that encodes
			// the first (destination) operand in the reg field, per
			// conventional assembler output and spec.md §8 scenario 2.
			INSDEF{Op: a.tok, Oper1: f(operand.FREG8), Oper2: f(operand.FRM8), Opcodes: 1, Opcode1: a.base + 2, ModRM: RRM, CPU: P86},
			INSDEF{Op: a.tok, Oper1: f(operand.FREG16), Oper2: f(operand.FRM16), Opcodes: 1, Opcode1: a.base + 3, ModRM: RRM, CPU: P86},
			INSDEF{Op: a.tok, Oper1: f(operand.FRM8), Oper2: f(operand.FREG8), Opcodes: 1, Opcode1: a.base, ModRM: RMR, CPU: P86},
			INSDEF{Op: a.tok, Oper1: f(operand.FRM16), Oper2: f(operand.FREG16), Opcodes: 1, Opcode1: a.base + 1, ModRM: RMR, CPU: P86},
		)
	}
	buildJccRows()
}

// jccOpcode maps each of the 30 Jcc mnemonics to its short-form
// opcode (0x70-0x7F range) and reverse-condition partner, per spec.md
// §4.7's "reverse condition mapping total over the 30 Jcc tokens".
var jccOpcode = map[token.Kind]byte{
	token.JO: 0x70, token.JNO: 0x71,
	token.JB: 0x72, token.JNAE: 0x72, token.JC: 0x72,
	token.JNB: 0x73, token.JAE: 0x73, token.JNC: 0x73,
	token.JE: 0x74, token.JZ: 0x74,
	token.JNE: 0x75, token.JNZ: 0x75,
	token.JBE: 0x76, token.JNA: 0x76,
	token.JA: 0x77, token.JNBE: 0x77,
	token.JS: 0x78,
	token.JNS: 0x79,
	token.JP: 0x7A, token.JPE: 0x7A,
	token.JNP: 0x7B, token.JPO: 0x7B,
	token.JL: 0x7C, token.JNGE: 0x7C,
	token.JGE: 0x7D, token.JNL: 0x7D,
	token.JLE: 0x7E, token.JNG: 0x7E,
	token.JG: 0x7F, token.JNLE: 0x7F,
}

// Reverse gives the reverse-condition Jcc token used by short-jump
// expansion (spec.md §4.7): "JE L" out of range becomes "JNE @@n" +
// "JMP L" + "@@n:".
var Reverse = map[token.Kind]token.Kind{
	token.JO: token.JNO, token.JNO: token.JO,
	token.JB: token.JAE, token.JAE: token.JB,
	token.JNAE: token.JNB, token.JNB: token.JNAE,
	token.JC: token.JNC, token.JNC: token.JC,
	token.JE: token.JNE, token.JNE: token.JE,
	token.JZ: token.JNZ, token.JNZ: token.JZ,
	token.JBE: token.JA, token.JA: token.JBE,
	token.JNA: token.JNBE, token.JNBE: token.JNA,
	token.JS: token.JNS, token.JNS: token.JS,
	token.JP: token.JNP, token.JNP: token.JP,
	token.JPE: token.JPO, token.JPO: token.JPE,
	token.JL: token.JGE, token.JGE: token.JL,
	token.JNGE: token.JNL, token.JNL: token.JNGE,
	token.JLE: token.JG, token.JG: token.JLE,
	token.JNG: token.JNLE, token.JNLE: token.JNG,
}

// Every Jcc mnemonic gets two rows rather than one requiring both
// flags at once: a bare label reference (parseExprOperand) carries
// FNEARJ alone and an explicit "Jcc SHORT label" carries FSHORTJ alone,
// and the 8086 has only the one rel8 encoding for either spelling (the
// JUMPS directive's resize-pass expansion is what stands in for a
// nonexistent long Jcc opcode).
func buildJccRows() {
	for tok, op := range jccOpcode {
		Table = append(Table, INSDEF{
			Op: tok, Oper1: f(operand.FSHORTJ), Opcodes: 1,
			Opcode1: op, ModRM: NoModRM, Imm1: 1, CPU: P86,
		})
		Table = append(Table, INSDEF{
			Op: tok, Oper1: f(operand.FNEARJ), Opcodes: 1,
			Opcode1: op, ModRM: NoModRM, Imm1: 1, CPU: P86,
		})
	}
	buildIndex()
}

// RepeatRow pairs a repeat-prefix token with the opcode tokens it may
// legally prefix, per spec.md §4.4's static validity table.
type RepeatRow struct {
	Prefix  token.Kind
	Opcodes []token.Kind
}

var repeatTable = []RepeatRow{
	{token.REP, []token.Kind{token.MOVSB, token.MOVSW, token.LODSB, token.LODSW, token.STOSB, token.STOSW, token.INSB, token.INSW, token.OUTSB, token.OUTSW}},
	{token.REPE, []token.Kind{token.CMPSB, token.CMPSW, token.SCASB, token.SCASW}},
	{token.REPZ, []token.Kind{token.CMPSB, token.CMPSW, token.SCASB, token.SCASW}},
	{token.REPNE, []token.Kind{token.CMPSB, token.CMPSW, token.SCASB, token.SCASW}},
	{token.REPNZ, []token.Kind{token.CMPSB, token.CMPSW, token.SCASB, token.SCASW}},
}

// RepeatByte is the prefix byte a repeat token emits: 0xF3 for REP/
// REPE/REPZ, 0xF2 for REPNE/REPNZ (spec.md §4.4).
func RepeatByte(prefix token.Kind) byte {
	switch prefix {
	case token.REPNE, token.REPNZ:
		return 0xF2
	default:
		return 0xF3
	}
}

// ValidRepeat reports whether prefix may precede opcode.
func ValidRepeat(prefix, opcode token.Kind) bool {
	for _, row := range repeatTable {
		if row.Prefix == prefix {
			for _, op := range row.Opcodes {
				if op == opcode {
					return true
				}
			}
			return false
		}
	}
	return false
}

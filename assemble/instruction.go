package assemble

import (
	"github.com/xyproto/bas/diag"
	"github.com/xyproto/bas/expr"
	"github.com/xyproto/bas/ifile"
	"github.com/xyproto/bas/instr"
	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/ofile"
	"github.com/xyproto/bas/operand"
	"github.com/xyproto/bas/segment"
	"github.com/xyproto/bas/symtab"
	"github.com/xyproto/bas/token"
)

// reloc is one pending relocation an instruction's bytes need, applied
// to the object stream once the code bytes carrying it are known, per
// spec.md §4.9's relocation-category table.
type reloc struct {
	kind    relocKind
	pos     uint16
	segNo   int
	groupNo int
	id      int
	jump    bool
}

type relocKind int

const (
	relocOffset relocKind = iota
	relocExtrnUse
	relocSegAddr
	relocGroupAddr
	relocGroupAbsJump
)

func emitReloc(w *ofile.Writer, r reloc) {
	switch r.kind {
	case relocOffset:
		w.BeginOffset(r.pos, r.segNo)
		w.EndOffset()
	case relocExtrnUse:
		w.BeginExtrnUse(r.pos, r.id, r.jump)
		w.EndExtrnUse()
	case relocSegAddr:
		w.BeginSegAddr(r.pos, r.segNo)
		w.EndSegAddr()
	case relocGroupAddr:
		w.BeginGroupAddr(r.pos, r.groupNo)
		w.EndGroupAddr()
	case relocGroupAbsJump:
		w.BeginGroupAbsJump(r.pos, r.groupNo)
		w.EndGroupAbsJump()
	}
}

// encodeInstruction re-parses irec's operand list from the remembered
// OperandPos and emits its final bytes plus any relocations, per
// spec.md §4.9. The size of what it emits is checked against irec.Size,
// fixed by pass 1/the resize pass: any mismatch is an assembler bug,
// not a source error, so it is fatal rather than diagnosed.
func encodeInstruction(state *ifile.State, f *ifile.IFILE, lex *lexer.Lexer, irec *ifile.IREC, w *ofile.Writer, sink *diag.Sink) {
	if state.CurSeg == segment.NoSeg {
		return
	}
	startPC := f.Segs.PC(state.CurSeg)
	lex.SetPos(irec.OperandPos)
	env := &expr.Env{Symtab: f.Symtab}
	op1, op2, op3, ok := ifile.ParseOperands(env, lex)
	if !ok {
		f.Segs.IncPC(state.CurSeg, irec.Size)
		return
	}

	var buf []byte
	var relocs []reloc

	switch {
	case irec.NearJumpSize != 0:
		buf, relocs = encodeDirectJump(state, f, irec, op1, startPC)
	case irec.Def != nil:
		buf, relocs = encodeResolvedInstruction(state, f, irec.Def, irec.Rep, op1, op2, op3, startPC)
	}

	if uint32(len(buf)) != irec.Size {
		diag.Fatal("internal: encoded %d bytes for a %d-byte record at %s:%d", len(buf), irec.Size, f.Source.Name, f.Lineno(irec))
	}

	w.Code(buf)
	for _, r := range relocs {
		emitReloc(w, r)
	}
	f.Segs.IncPC(state.CurSeg, irec.Size)
}

func appendLE16(buf []byte, v uint16) []byte {
	return append(buf, byte(v), byte(v>>8))
}

func appendDispN(buf []byte, v int64, n int) []byte {
	u := uint64(v)
	for i := 0; i < n; i++ {
		buf = append(buf, byte(u))
		u >>= 8
	}
	return buf
}

// encodeDirectJump encodes a direct JMP, deriving short/near/far from
// irec.Size rather than NearJumpSize: NearJumpSize is only ever set to
// 1 as an "this is a direct jump" marker by ifile (it never records a
// literal byte count), while irec.Size is the value the resize pass
// converged on, so it is the authoritative distance selector here.
func encodeDirectJump(state *ifile.State, f *ifile.IFILE, irec *ifile.IREC, op1 *operand.Operand, startPC uint32) ([]byte, []reloc) {
	sym, _ := op1.Jump.Label.(*symtab.Symbol)

	if irec.Size == 5 {
		buf := []byte{0xEA}
		var off, segv uint16
		var relocs []reloc
		if sym != nil {
			off = uint16(sym.Offset())
			if sym.External() {
				relocs = append(relocs,
					reloc{kind: relocExtrnUse, pos: uint16(startPC + 1), id: sym.ExternalID()},
					reloc{kind: relocExtrnUse, pos: uint16(startPC + 3), id: sym.ExternalID()})
			} else {
				relocs = append(relocs,
					reloc{kind: relocOffset, pos: uint16(startPC + 1), segNo: sym.Seg()},
					reloc{kind: relocSegAddr, pos: uint16(startPC + 3), segNo: sym.Seg()})
			}
		} else {
			off = op1.Jump.FarOff
			segv = op1.Jump.FarSeg
		}
		buf = appendLE16(buf, off)
		buf = appendLE16(buf, segv)
		return buf, relocs
	}

	opcode := byte(0xEB)
	dispLen := 1
	if irec.Size == 3 {
		opcode = 0xE9
		dispLen = 2
	}
	buf := []byte{opcode}

	if sym == nil {
		return appendDispN(buf, 0, dispLen), nil
	}
	if sym.External() {
		pos := uint16(startPC + 1)
		buf = appendDispN(buf, 0, dispLen)
		return buf, []reloc{{kind: relocExtrnUse, pos: pos, id: sym.ExternalID(), jump: true}}
	}

	// A near jump (dispLen==2) to a symbol the resize pass could not
	// treat as a plain same-segment relative displacement - because it
	// is only resolved at link time (RelocatableRelative) or lives in a
	// different segment - carries its raw 16-bit offset instead, per
	// spec.md §4.11: the linker turns that into a displacement once the
	// group is laid out, so no relative arithmetic happens here.
	if dispLen == 2 && (ifile.RelocatableRelative(f.Segs, sym) || int(sym.Seg()) != int(state.CurSeg)) {
		pos := uint16(startPC + 1)
		gno := segment.NoGroup
		if seg := f.Segs.Segment(segment.SegNo(sym.Seg())); seg.Group != segment.NoGroup {
			gno = seg.Group
		}
		buf = appendLE16(buf, uint16(sym.Offset()))
		return buf, []reloc{{kind: relocGroupAbsJump, pos: pos, groupNo: int(gno)}}
	}

	nextPC := startPC + uint32(len(buf)) + uint32(dispLen)
	rel := int64(sym.Offset()) - int64(nextPC)
	return appendDispN(buf, rel, dispLen), nil
}

func regOf(op *operand.Operand) int {
	if op == nil {
		return 0
	}
	return op.Reg.No
}

// memOperand returns op if it is a memory operand, else nil.
func memOperand(op *operand.Operand) *operand.Operand {
	if op != nil && op.Class == operand.Mem {
		return op
	}
	return nil
}

// stOperand returns whichever of op1/op2 is an ST(i) operand, for the
// SIS/SIC ModR/M categories.
func stOperand(op1, op2 *operand.Operand) *operand.Operand {
	if op1 != nil && op1.Class == operand.ST {
		return op1
	}
	if op2 != nil && op2.Class == operand.ST {
		return op2
	}
	return nil
}

func segOverridePrefix(sreg int) byte {
	switch sreg {
	case token.SR_ES:
		return 0x26
	case token.SR_CS:
		return 0x2E
	case token.SR_SS:
		return 0x36
	default:
		return 0x3E
	}
}

// encodeResolvedInstruction emits an ordinary (non-direct-jump) table
// row's bytes, in the order spec.md §4.9 fixes: WAIT, repeat prefix,
// segment override, opcode bytes, ModR/M plus displacement, then
// immediates.
func encodeResolvedInstruction(state *ifile.State, f *ifile.IFILE, def *instr.INSDEF, rep token.Kind, op1, op2, op3 *operand.Operand, startPC uint32) ([]byte, []reloc) {
	var buf []byte
	var relocs []reloc

	for i := 0; i < instr.WaitNeeded(state.CPU, def); i++ {
		buf = append(buf, 0x9B)
	}
	if rep != token.NONE {
		buf = append(buf, instr.RepeatByte(rep))
	}
	if needed, sreg := ifile.SegmentOverride(state, f, def, op1, op2); needed {
		buf = append(buf, segOverridePrefix(sreg))
	}

	opcode1 := def.Opcode1
	if def.OpcodeInc {
		opcode1 += byte(regOf(op1))
	}
	buf = append(buf, opcode1)
	if def.Opcodes == 2 {
		buf = append(buf, def.Opcode2)
	}

	switch def.ModRM {
	case instr.NoModRM:
		if m := directAddressOperand(op1, op2); m != nil {
			buf, relocs = appendDirectAddress(buf, relocs, startPC, m)
		}
	case instr.CCC:
		buf = append(buf, def.Opcode2)
	default:
		var mrm byte
		var disp []byte
		var mrmRelocs []reloc
		mrm, disp, mrmRelocs = encodeModRM(f, def, op1, op2, startPC, len(buf))
		buf = append(buf, mrm)
		buf = append(buf, disp...)
		relocs = append(relocs, mrmRelocs...)
	}

	buf = appendImmediates(f, buf, &relocs, def, op1, op2, op3, startPC)

	return buf, relocs
}

// directAddressOperand returns the memory operand of a NoModRM direct-
// address form (e.g. "MOV AL, [1234h]"/"MOV AL, label"), matching the
// FINDIR test computeInstructionSize used to size it.
func directAddressOperand(op1, op2 *operand.Operand) *operand.Operand {
	if m := memOperand(op1); m != nil && m.Flags.Has(operand.FINDIR) {
		return m
	}
	if m := memOperand(op2); m != nil && m.Flags.Has(operand.FINDIR) {
		return m
	}
	return nil
}

func appendDirectAddress(buf []byte, relocs []reloc, startPC uint32, m *operand.Operand) ([]byte, []reloc) {
	pos := startPC + uint32(len(buf))
	val := ifile.DisplacementValue(m)
	buf = appendDispN(buf, val, 2)
	if m.Mem.DispType == operand.RelDisp {
		if sym, ok := m.Mem.DispLabel.(*symtab.Symbol); ok && sym != nil {
			if sym.External() {
				relocs = append(relocs, reloc{kind: relocExtrnUse, pos: uint16(pos), id: sym.ExternalID()})
			} else {
				relocs = append(relocs, reloc{kind: relocOffset, pos: uint16(pos), segNo: sym.Seg()})
			}
		}
	}
	return buf, relocs
}

// encodeModRM dispatches the ModR/M byte (and any displacement bytes)
// by category, per spec.md §4.10.
func encodeModRM(f *ifile.IFILE, def *instr.INSDEF, op1, op2 *operand.Operand, startPC uint32, bufLenSoFar int) (byte, []byte, []reloc) {
	switch def.ModRM {
	case instr.RRM:
		return modRMWithRM(f, op2, regOf(op1), startPC, bufLenSoFar)
	case instr.RMR:
		return modRMWithRM(f, op1, regOf(op2), startPC, bufLenSoFar)
	case instr.RMC:
		return modRMWithRM(f, op1, def.Reg, startPC, bufLenSoFar)
	case instr.REGRM:
		no := byte(regOf(op1))
		return 0xC0 | no<<3 | no, nil, nil
	case instr.SSI:
		return 0xC0 | byte(def.Reg)<<3, nil, nil
	case instr.SIS:
		st := stOperand(op1, op2)
		return 0xC0 | byte(def.Reg)<<3 | byte(regOf(st)), nil, nil
	case instr.SSC:
		return 0xC0 | byte(def.Reg)<<3, nil, nil
	case instr.SIC:
		st := stOperand(op1, op2)
		return 0xC0 | byte(def.Reg)<<3 | byte(regOf(st)), nil, nil
	case instr.STC:
		return 0xC0 | byte(def.Reg)<<3, nil, nil
	case instr.STK:
		return 0xC0 | byte(def.Reg)<<3 | 1, nil, nil
	}
	return 0xC0, nil, nil
}

// modRMWithRM encodes a ModR/M byte whose rm field names a register or
// memory operand, with regField supplying the other three bits, per
// spec.md §4.10's standard 8086 mod/rm table.
func modRMWithRM(f *ifile.IFILE, rmOp *operand.Operand, regField int, startPC uint32, bufLenSoFar int) (byte, []byte, []reloc) {
	reg := byte(regField) << 3
	if rmOp == nil {
		return 0xC0 | reg, nil, nil
	}
	if rmOp.Class != operand.Mem {
		return 0xC0 | reg | byte(regOf(rmOp)), nil, nil
	}

	dispLen := ifile.DisplacementLength(f, rmOp)
	mod, rm := ifile.ModRMFields(rmOp, dispLen)
	mrm := mod<<6 | reg | rm
	val := ifile.DisplacementValue(rmOp)
	disp := appendDispN(nil, val, int(dispLen))

	var relocs []reloc
	if rmOp.Mem.DispType == operand.RelDisp {
		if sym, ok := rmOp.Mem.DispLabel.(*symtab.Symbol); ok && sym != nil {
			pos := startPC + uint32(bufLenSoFar) + 1
			if sym.External() {
				relocs = append(relocs, reloc{kind: relocExtrnUse, pos: uint16(pos), id: sym.ExternalID()})
			} else {
				relocs = append(relocs, reloc{kind: relocOffset, pos: uint16(pos), segNo: sym.Seg()})
			}
		}
	}
	return mrm, disp, relocs
}

// appendImmediates emits the row's Imm1/Imm2/Imm3 slots in order,
// pairing each non-zero slot with the next operand (in op1, op2, op3
// order) still carrying an immediate payload. Every row in the table
// has at most one immediate operand per slot, so this never needs to
// disambiguate which operand feeds which slot beyond left-to-right
// order.
func appendImmediates(f *ifile.IFILE, buf []byte, relocs *[]reloc, def *instr.INSDEF, op1, op2, op3 *operand.Operand, startPC uint32) []byte {
	var immOps []*operand.Operand
	for _, o := range [...]*operand.Operand{op1, op2, op3} {
		if o != nil && o.Class == operand.Imm {
			immOps = append(immOps, o)
		}
	}
	oi := 0
	for _, sz := range [...]instr.ImmSize{def.Imm1, def.Imm2, def.Imm3} {
		if sz == 0 {
			continue
		}
		var op *operand.Operand
		if oi < len(immOps) {
			op = immOps[oi]
			oi++
		}
		pos := startPC + uint32(len(buf))
		if op == nil && op1 != nil && op1.Class == operand.Jump {
			// A relative branch (CALL rel16, Jcc/LOOP/JCXZ rel8): the slot
			// holds the displacement from the end of the instruction.
			target, _ := op1.Jump.Label.(*symtab.Symbol)
			if target != nil && target.External() {
				buf = appendDispN(buf, 0, int(sz))
				*relocs = append(*relocs, reloc{kind: relocExtrnUse, pos: uint16(pos), id: target.ExternalID(), jump: true})
				continue
			}
			dest := int64(op1.Jump.Abs)
			if target != nil {
				dest = int64(target.Offset())
			}
			buf = appendDispN(buf, dest-int64(pos)-int64(sz), int(sz))
			continue
		}
		val, sym, external := immValue(op)
		buf = appendDispN(buf, val, int(sz))
		if sym == nil {
			continue
		}
		if external {
			*relocs = append(*relocs, reloc{kind: relocExtrnUse, pos: uint16(pos), id: sym.ExternalID()})
			continue
		}
		switch op.Imm.Kind {
		case operand.ImmSeg:
			*relocs = append(*relocs, reloc{kind: relocSegAddr, pos: uint16(pos), segNo: sym.Seg()})
		case operand.ImmSection:
			gno := segment.NoGroup
			if seg := f.Segs.Segment(segment.SegNo(sym.Seg())); seg.Group != segment.NoGroup {
				gno = seg.Group
			}
			*relocs = append(*relocs, reloc{kind: relocGroupAddr, pos: uint16(pos), groupNo: int(gno)})
		default:
			*relocs = append(*relocs, reloc{kind: relocOffset, pos: uint16(pos), segNo: sym.Seg()})
		}
	}
	return buf
}

func immValue(op *operand.Operand) (val int64, sym *symtab.Symbol, external bool) {
	if op == nil {
		return 0, nil, false
	}
	if s, ok := op.Imm.Label.(*symtab.Symbol); ok && s != nil {
		return int64(s.Offset()), s, s.External()
	}
	return op.Imm.Val, nil, false
}

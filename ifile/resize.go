package ifile

import (
	"github.com/xyproto/bas/diag"
	"github.com/xyproto/bas/instr"
	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/operand"
	"github.com/xyproto/bas/segment"
	"github.com/xyproto/bas/symtab"
	"github.com/xyproto/bas/token"
)

// Resize is pass 2: if pass 1 left any size provisional (a forward
// reference, a direct JMP, or a not-yet-addressable segment override),
// repeatedly re-walk the record stream, recomputing sizes from
// now-better-known symbol positions, until a full pass changes
// nothing. Grounded on resize.c's resize_pass. It also expands an
// out-of-range short Jcc into reversed-condition-plus-JMP form when
// the JUMPS directive is active, per spec.md §4.7.
func Resize(f *IFILE, sink *diag.Sink) *State {
	state := NewState(sink)
	if !f.ProvisionalSizes {
		return state
	}
	lex := lexer.New(sink)
	for {
		state = NewState(sink)
		f.ResetPC()
		changed := false
		for i := 0; i < len(f.Recs); i++ {
			if resizeIrec(state, f, lex, f.Recs[i]) {
				changed = true
			}
		}
		if !changed {
			return state
		}
	}
}

func resizeIrec(state *State, f *IFILE, lex *lexer.Lexer, irec *IREC) bool {
	lex.Begin(f.Source.Name, f.Lineno(irec), f.Text(irec))
	defineDollar(state, f)

	leading := ""
	if lex.Tok == token.LABEL {
		leading = lex.Val.Str
		next := lex.Next()
		if next == token.EQU {
			return false
		}
		if next == token.COLON {
			lex.Next()
		}
		if irec.Label != nil && irec.Label.Kind() == symtab.Relative {
			symtab.UpdateRelative(irec.Label, int(state.CurSeg), f.Segs.PC(state.CurSeg))
		}
	}

	if lex.Tok == token.SEGMENT && leading != "" {
		// "name SEGMENT": the segment's name precedes the keyword.
		if sym := f.Symtab.Lookup(leading); sym != nil && sym.Kind() == symtab.Section && sym.SectionKind() == symtab.SectionSegment {
			state.CurSeg = segment.SegNo(sym.Ordinal())
		}
		return false
	}

	switch {
	case lex.Tok == token.EOL:
		return false
	case token.IsDirective(lex.Tok):
		return resizeDirective(state, f, lex, irec)
	case token.IsOpcode(lex.Tok) || token.IsRepeat(lex.Tok):
		return resizeInstruction(state, f, lex, irec)
	default:
		return false
	}
}

// resizeDirective replays only the subset of directive effects that
// can change between resize iterations: open segment, ASSUME bindings,
// CPU mask, JUMPS, and anything that moves a segment's PC (ORG,
// ALIGN). Everything else (symbol/segment/group creation, EQU, EXTRN,
// PUBLIC) is permanently fixed by pass 1 and does not need replaying.
func resizeDirective(state *State, f *IFILE, lex *lexer.Lexer, irec *IREC) bool {
	switch lex.Tok {
	case token.SEGMENT:
		resizeSegment(state, f, lex)
	case token.ENDS:
		state.CurSeg = segment.NoSeg
	case token.ASSUME:
		resizeAssume(state, f, lex)
	case token.CODESEG:
		if f.ModelGroup != nil {
			assumeModelGroup(state, f)
			state.CurSeg = segment.SegNo(f.CodeSeg.Ordinal())
		}
	case token.DATASEG:
		if f.ModelGroup != nil {
			assumeModelGroup(state, f)
			state.CurSeg = segment.SegNo(f.DataSeg.Ordinal())
		}
	case token.UDATASEG:
		if f.ModelGroup != nil {
			assumeModelGroup(state, f)
			state.CurSeg = segment.SegNo(f.UdataSeg.Ordinal())
		}
	case token.ORG:
		resizeOrg(state, f, lex)
	case token.ALIGN:
		return resizeAlign(state, f, lex, irec)
	case token.JUMPS:
		state.Jumps = true
	case token.P8086, token.P8087, token.PNO87, token.P287, token.P286, token.P286N:
		state.CPU = instr.SelectCPU(state.CPU, lex.Tok)
	case token.DB, token.DW, token.DD, token.DQ, token.DT:
		if state.CurSeg != segment.NoSeg {
			f.Segs.IncPC(state.CurSeg, irec.Size)
		}
	}
	return false
}

func resizeSegment(state *State, f *IFILE, lex *lexer.Lexer) {
	if lex.Next() != token.LABEL {
		return
	}
	sym := f.Symtab.Lookup(lex.Val.Str)
	if sym != nil && sym.Kind() == symtab.Section && sym.SectionKind() == symtab.SectionSegment {
		state.CurSeg = segment.SegNo(sym.Ordinal())
	}
}

func resizeAssume(state *State, f *IFILE, lex *lexer.Lexer) {
	for {
		if lex.Next() != token.SREG {
			return
		}
		reg := lex.Val.RegNo
		if lex.Next() != token.COLON {
			return
		}
		if lex.Next() != token.LABEL {
			return
		}
		if sym := f.Symtab.Lookup(lex.Val.Str); sym != nil && sym.Kind() == symtab.Section {
			state.AssumeSym[reg] = sym
		}
		if lex.Next() != token.COMMA {
			return
		}
	}
}

func resizeOrg(state *State, f *IFILE, lex *lexer.Lexer) {
	if lex.Next() != token.NUM || state.CurSeg == segment.NoSeg {
		return
	}
	val := uint32(lex.Val.Num)
	if val >= f.Segs.PC(state.CurSeg) {
		f.Segs.SetPC(state.CurSeg, val)
	}
}

func resizeAlign(state *State, f *IFILE, lex *lexer.Lexer, irec *IREC) bool {
	lex.Next()
	p2, ok := parseAlignment(state, lex)
	if !ok || state.CurSeg == segment.NoSeg {
		return false
	}
	pc := f.Segs.PC(state.CurSeg)
	aligned := p2Aligned(pc, p2)
	newSize := aligned - pc
	changed := newSize != irec.Size
	irec.Size = newSize
	f.Segs.SetPC(state.CurSeg, aligned)
	return changed
}

// resizeInstruction re-sizes an already pass-1-processed instruction
// by re-lexing only its operand list from the remembered OperandPos,
// or, for an IREC the Jcc-expansion logic injected moments earlier in
// this same walk, runs the full first-time sizing pass once (an
// injected line starts with Op == token.NONE).
func resizeInstruction(state *State, f *IFILE, lex *lexer.Lexer, irec *IREC) bool {
	if state.CurSeg == segment.NoSeg {
		return false
	}

	if irec.Op == token.NONE {
		processInstruction(state, f, lex, irec)
		return true
	}

	lex.SetPos(irec.OperandPos)
	env := exprAt(state, f, lex)
	op1, op2, _, ok := parseOperands(env, lex)
	if !ok {
		f.Segs.IncPC(state.CurSeg, irec.Size)
		return false
	}

	if irec.NearJumpSize != 0 {
		return resizeDirectJump(state, f, irec, op1)
	}

	if state.Jumps && !irec.expanded {
		if _, ok := instr.Reverse[irec.Op]; ok {
			if maybeExpandJcc(state, f, irec, op1) {
				return true
			}
		}
	}

	if irec.Def == nil {
		f.Segs.IncPC(state.CurSeg, irec.Size)
		return false
	}

	newSize, provisional := computeInstructionSize(state, f, irec.Def, op1, op2)
	if irec.Rep != token.NONE {
		newSize++
	}
	if provisional {
		f.ProvisionalSizes = true
	}
	changed := newSize != irec.Size
	irec.Size = newSize
	f.Segs.IncPC(state.CurSeg, irec.Size)
	return changed
}

// resizeDirectJump re-derives the short (2), near (3) or far (5) byte
// count for a direct JMP, matching resize.c's size_near_jump/
// jump_same_module_segment.
func resizeDirectJump(state *State, f *IFILE, irec *IREC, op1 *operand.Operand) bool {
	var newSize uint32 = 3
	switch {
	case op1.Jump.Distance == operand.DistFar:
		newSize = 5
	default:
		sym, _ := op1.Jump.Label.(*symtab.Symbol)
		switch {
		case sym == nil:
			newSize = 2
		case !sym.Defined():
			newSize = 2
			f.ProvisionalSizes = true
		case sym.External() || RelocatableRelative(f.Segs, sym) || int(sym.Seg()) != int(state.CurSeg):
			newSize = 3
		default:
			nextPC := f.Segs.PC(state.CurSeg) + 2
			rel := int64(sym.Offset()) - int64(nextPC)
			if rel >= -0x80 && rel < 0x80 {
				newSize = 2
			} else {
				newSize = 3
			}
		}
	}
	changed := newSize != irec.Size
	irec.Size = newSize
	f.Segs.IncPC(state.CurSeg, newSize)
	return changed
}

// maybeExpandJcc mutates irec in place into the reversed-condition
// jump and injects an unconditional JMP plus a trailing local label,
// the moment a short Jcc's displacement is found to be out of range,
// per spec.md §4.7. It never fires twice for the same IREC (irec.expanded),
// which is what keeps the expansion cycle-free.
func maybeExpandJcc(state *State, f *IFILE, irec *IREC, op1 *operand.Operand) bool {
	if op1 == nil || op1.Class != operand.Jump {
		return false
	}
	sym, _ := op1.Jump.Label.(*symtab.Symbol)
	if sym == nil || !sym.Defined() || sym.External() || RelocatableRelative(f.Segs, sym) {
		return false
	}
	if int(sym.Seg()) != int(state.CurSeg) {
		return false
	}
	nextPC := f.Segs.PC(state.CurSeg) + 2
	rel := int64(sym.Offset()) - int64(nextPC)
	if rel >= -0x80 && rel < 0x80 {
		return false
	}

	reversed := instr.Reverse[irec.Op]
	local := f.Symtab.InsertLocal()

	mnemonic := token.Name(reversed)
	irec.Op = reversed
	irec.expanded = true
	irec.OperandPos = len(mnemonic) + 1
	f.setInject(irec, mnemonic+" "+local.Name())

	jmpIrec := f.InsertAfter(irec)
	f.setInject(jmpIrec, "JMP "+sym.Name())

	labelIrec := f.InsertAfter(jmpIrec)
	labelIrec.Label = local
	f.setInject(labelIrec, local.Name()+":")

	irec.Def = instr.Find(state.CPU, reversed, op1, nil, nil)
	irec.Size = 2
	f.Segs.IncPC(state.CurSeg, irec.Size)
	return true
}

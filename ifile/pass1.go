package ifile

import (
	"github.com/xyproto/bas/diag"
	"github.com/xyproto/bas/expr"
	"github.com/xyproto/bas/instr"
	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/segment"
	"github.com/xyproto/bas/symtab"
	"github.com/xyproto/bas/token"
)

// Pass1 walks every IREC the source pass produced, defines labels,
// dispatches directives and sizes instructions under optimistic
// assumptions about not-yet-defined symbols, setting
// f.ProvisionalSizes whenever a size depended on one. Grounded on
// pass1.c's pass1().
func Pass1(f *IFILE, sink *diag.Sink) *State {
	state := NewState(sink)
	lex := lexer.New(sink)
	f.ResetPC()
	for _, irec := range f.Recs {
		processIrec(state, f, lex, irec)
	}
	if state.CurSeg != segment.NoSeg {
		state.errorAtLine(f, f.Recs[len(f.Recs)-1], "segment %s is still open at end of file", f.Segs.Segment(state.CurSeg).Name)
	}
	return state
}

func processIrec(state *State, f *IFILE, lex *lexer.Lexer, irec *IREC) {
	lex.Begin(f.Source.Name, f.Lineno(irec), f.Text(irec))
	defineDollar(state, f)

	if lex.Tok == token.LABEL {
		defineLabel(state, f, irec, lex)
	}

	switch {
	case lex.Tok == token.EOL:
		return
	case token.IsDirective(lex.Tok):
		performDirective(state, f, lex, irec)
	case token.IsOpcode(lex.Tok) || token.IsRepeat(lex.Tok):
		processInstruction(state, f, lex, irec)
	default:
		state.errorAtLex(lex, "instruction or directive expected")
		lex.DiscardLine()
	}
}

// defineLabel consumes a leading LABEL token: either "name EQU ..."
// (irec.Label becomes an undefined ABSOLUTE symbol for doEqu to fill
// in) or "name[:] ..." (irec.Label is anchored as a RELATIVE symbol at
// the current segment's PC), matching pass1.c's define_label.
func defineLabel(state *State, f *IFILE, irec *IREC, lex *lexer.Lexer) {
	name := lex.Val.Str
	sym := f.Symtab.Lookup(name)

	if sym == nil {
		next := lex.Next()
		if next == token.EQU {
			irec.Label = f.Symtab.InsertAbsolute(name)
			return
		}
		if next == token.SEGMENT || next == token.GROUP {
			// "name SEGMENT"/"name GROUP": not an instruction label at
			// all, just the section's own name. Hand it to
			// doSegment/doGroup rather than trying to anchor it as a
			// relative label (it may be declared outside any segment).
			state.PendingName = name
			return
		}
		if lex.Tok == token.COLON {
			lex.Next()
		}
		if state.CurSeg == segment.NoSeg {
			state.errorAtLex(lex, "label outside segment: %s", name)
			return
		}
		sym = f.Symtab.InsertRelative(name)
		symtab.DefineRelative(sym, int(state.CurSeg), f.Segs.PC(state.CurSeg))
		sym.SetDataSize(token.DataSize(lex.Tok))
		irec.Label = sym
		return
	}

	irec.Label = sym
	next := lex.Next()
	if next == token.EQU {
		if sym.Kind() != symtab.Absolute {
			state.errorAtLex(lex, "name already used as a non-EQU symbol: %s", name)
		}
		return
	}
	if (next == token.ENDS || next == token.SEGMENT || next == token.GROUP) && sym.Kind() == symtab.Section {
		// "name ENDS": closes the segment/group already opened under
		// this name; performEnds re-validates it against state.CurSeg.
		// "name SEGMENT"/"name GROUP": reopening (or, for a dangling
		// forward reference, declaring) a section under a name already
		// known to the symbol table; doSegment/doGroup take it from here.
		if next != token.ENDS {
			state.PendingName = name
		}
		return
	}
	if lex.Tok == token.COLON {
		lex.Next()
	}
	if sym.Kind() != symtab.Relative {
		state.errorAtLex(lex, "not a relative label: %s", name)
		return
	}
	if sym.Defined() {
		state.errorAtLex(lex, "label already defined: %s", name)
		return
	}
	if state.CurSeg == segment.NoSeg {
		state.errorAtLex(lex, "label outside segment: %s", name)
		return
	}
	symtab.DefineRelative(sym, int(state.CurSeg), f.Segs.PC(state.CurSeg))
	sym.SetDataSize(token.DataSize(lex.Tok))
}

func performDirective(state *State, f *IFILE, lex *lexer.Lexer, irec *IREC) {
	switch lex.Tok {
	case token.IDEAL:
		lex.Next()
	case token.EQU:
		doEqu(state, f, lex, irec)
	case token.END:
		doEnd(state, f, lex)
	case token.SEGMENT:
		doSegment(state, f, lex)
	case token.ENDS:
		doEnds(state, f, lex)
	case token.ASSUME:
		doAssume(state, f, lex)
	case token.GROUP:
		doGroup(state, f, lex)
	case token.MODEL:
		doModel(state, f, lex)
	case token.CODESEG:
		lex.Next()
		performCodeseg(state, f, lex)
	case token.DATASEG:
		lex.Next()
		performDataseg(state, f, lex)
	case token.UDATASEG:
		lex.Next()
		performUdataseg(state, f, lex)
	case token.ORG:
		doOrg(state, f, lex)
	case token.ALIGN:
		doAlign(state, f, lex, irec)
	case token.EXTRN:
		doExtrn(state, f, lex)
	case token.PUBLIC:
		doPublic(state, f, lex)
	case token.DB, token.DW, token.DD, token.DQ, token.DT:
		defineData(state, f, lex, irec, lex.Tok)
	case token.JUMPS:
		state.Jumps = true
		lex.Next()
	case token.P8086, token.P8087, token.PNO87, token.P287, token.P286, token.P286N:
		state.CPU = instr.SelectCPU(state.CPU, lex.Tok)
		lex.Next()
	default:
		state.errorAtLex(lex, "directive not supported here: %s", token.Name(lex.Tok))
		lex.DiscardLine()
		return
	}
	if lex.Tok != token.EOL {
		state.errorAtLex(lex, "unexpected token after directive")
		lex.DiscardLine()
	}
}

// exprAt is a convenience wrapper used throughout this package's
// directive handlers: it builds a one-shot expression environment
// bound to lex's current position.
func exprAt(state *State, f *IFILE, lex *lexer.Lexer) *expr.Env {
	return state.env(f.Symtab, lex)
}

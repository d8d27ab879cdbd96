package ifile

import (
	"github.com/xyproto/bas/data"
	"github.com/xyproto/bas/expr"
	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/segment"
	"github.com/xyproto/bas/symtab"
	"github.com/xyproto/bas/token"
)

// doEqu evaluates an EQU value expression into irec.Label, which
// defineLabel has already inserted as an undefined ABSOLUTE symbol
// (or flagged as a name clash), matching pass1.c's do_equ.
func doEqu(state *State, f *IFILE, lex *lexer.Lexer, irec *IREC) {
	lex.Next()
	env := exprAt(state, f, lex)
	t, v := expr.Eval(env, lex)

	if irec.Label == nil || irec.Label.Kind() != symtab.Absolute {
		return
	}
	if irec.Label.Defined() {
		state.errorAtLex(lex, "EQU name already defined: %s", irec.Label.Name())
		return
	}
	switch t {
	case expr.Abs:
		symtab.DefineAbsolute(irec.Label, v.Num)
	case expr.Err:
	default:
		state.errorAtLex(lex, "an absolute numeric expression is required for EQU")
	}
}

// doEnd closes any still-open segment implicitly (matching what
// original_source/Assembler/pass1.c's do_end allows under a memory
// model) and records an optional start label, matching pass1.c's do_end.
func doEnd(state *State, f *IFILE, lex *lexer.Lexer) {
	if state.CurSeg != segment.NoSeg {
		if f.ModelGroup == nil {
			state.errorAtLex(lex, "segment %s is still open", f.Segs.Segment(state.CurSeg).Name)
		}
		state.CurSeg = segment.NoSeg
	}
	if lex.Next() != token.LABEL {
		return
	}
	name := lex.Val.Str
	lex.Next()
	if f.StartLabel != nil {
		state.errorAtLex(lex, "start label has already been set")
		return
	}
	sym := f.Symtab.Lookup(name)
	switch {
	case sym == nil:
		state.errorAtLex(lex, "start label not found: %s", name)
	case sym.Kind() != symtab.Relative:
		state.errorAtLex(lex, "start label must be a relative label: %s", name)
	case sym.External():
		state.errorAtLex(lex, "start label may not be external: %s", name)
	case !sym.Defined():
		state.errorAtLex(lex, "start label is not defined: %s", name)
	default:
		f.StartLabel = sym
	}
}

// doExtrn declares one or more external relative symbols, matching
// pass1.c's do_extrn/external_symbol.
func doExtrn(state *State, f *IFILE, lex *lexer.Lexer) {
	for {
		lex.Next()
		externalSymbol(state, f, lex)
		if lex.Tok != token.COMMA {
			break
		}
	}
}

func externalSymbol(state *State, f *IFILE, lex *lexer.Lexer) {
	if lex.Tok != token.LABEL {
		state.errorAtLex(lex, "label expected")
		return
	}
	name := lex.Val.Str
	if f.Symtab.Lookup(name) != nil {
		state.errorAtLex(lex, "symbol already declared: %s", name)
		lex.Next()
		if lex.Tok == token.COLON {
			lex.Next()
			lex.Next()
		}
		return
	}
	if state.CurSeg == segment.NoSeg {
		state.errorAtLex(lex, "EXTRN outside a segment")
		return
	}
	sym := f.Symtab.InsertExternal(name, int(state.CurSeg))

	if lex.Next() != token.COLON {
		state.errorAtLex(lex, "':' expected")
		return
	}
	switch lex.Next() {
	case token.BYTE:
		sym.SetDataSize(1)
	case token.WORD:
		sym.SetDataSize(2)
	case token.DWORD:
		sym.SetDataSize(4)
	case token.PROC:
		sym.SetDataSize(0)
	default:
		state.errorAtLex(lex, "data type expected (BYTE, WORD, DWORD or PROC)")
		return
	}
	lex.Next()
}

// doPublic exports one or more already- or not-yet-defined relative
// symbols, matching pass1.c's do_public/public_symbol.
func doPublic(state *State, f *IFILE, lex *lexer.Lexer) {
	for {
		lex.Next()
		publicSymbol(state, f, lex)
		if lex.Tok != token.COMMA {
			break
		}
	}
}

func publicSymbol(state *State, f *IFILE, lex *lexer.Lexer) {
	if lex.Tok != token.LABEL {
		state.errorAtLex(lex, "label expected")
		return
	}
	name := lex.Val.Str
	sym := f.Symtab.Lookup(name)
	switch {
	case sym == nil:
		sym = f.Symtab.InsertRelative(name)
		sym.SetPublic()
	case sym.Kind() == symtab.Relative:
		sym.SetPublic()
	default:
		state.errorAtLex(lex, "this kind of symbol cannot be PUBLIC: %s", name)
	}
	lex.Next()
}

// defineData parses and sizes one DB/DW/DD/DQ/DT directive's data
// list, consolidating the reference's five near-duplicate
// define_bytes/define_words/define_dwords/define_qwords/define_tbytes
// functions into one width-parameterised implementation, since the
// data package already generalises per-width parsing and sizing.
func defineData(state *State, f *IFILE, lex *lexer.Lexer, irec *IREC, tok token.Kind) {
	w, _ := data.WidthForToken(tok)
	if state.CurSeg == segment.NoSeg {
		state.errorAtLex(lex, "data directive outside a segment")
		lex.DiscardLine()
		return
	}
	lex.Next()
	env := exprAt(state, f, lex)
	nodes := data.Parse(env, lex)
	if nodes == nil {
		return
	}
	size, init := data.Size(env, w, nodes)

	uninitSeg := f.Segs.Segment(state.CurSeg).Uninit()
	if !init && !uninitSeg {
		state.errorAtLex(lex, "uninitialised data is only allowed in an UNINIT segment")
	} else if init && uninitSeg {
		state.errorAtLex(lex, "initialised data is not allowed in an UNINIT segment")
	}

	irec.Data = nodes
	irec.DataWidth = w
	irec.Size = size
	f.Segs.IncPC(state.CurSeg, size)
}

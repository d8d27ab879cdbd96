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

// State is the per-pass, per-call scratch state the reference
// implementation threads through pass1/resize as STATE: current open
// segment, enabled CPU set, the four ASSUME bindings, and the JUMPS
// flag. A fresh State is created at the start of every pass, matching
// init_state.
type State struct {
	CurSeg    segment.SegNo
	CPU       instr.Mask
	AssumeSym [token.NSREG]*symtab.Symbol
	Jumps     bool

	// PendingName carries a leading identifier defineLabel recognised
	// as a section name (the "name SEGMENT"/"name GROUP" forms) rather
	// than an instruction label, for doSegment/doGroup to pick up
	// instead of re-lexing a name that has already been consumed.
	PendingName string

	Sink *diag.Sink
}

// NewState creates a State with no open segment and the 8086 and 8087
// instruction sets enabled (instr.DefaultMask), matching init_state's
// defaults.
func NewState(sink *diag.Sink) *State {
	return &State{CurSeg: segment.NoSeg, CPU: instr.DefaultMask, Sink: sink}
}

// exprDiag adapts a (State, *lexer.Lexer) pair to expr.Errorf so the
// expression engine can report caret-anchored diagnostics through the
// same Sink as the rest of the pass.
type exprDiag struct {
	state *State
	lex   *lexer.Lexer
}

func (d exprDiag) Errorf(format string, args ...interface{}) {
	d.state.errorAtLex(d.lex, format, args...)
}

// env builds an *expr.Env bound to this state's symbol table and the
// given lexer's current position, for one expression parse/eval.
func (s *State) env(st *symtab.Table, lex *lexer.Lexer) *expr.Env {
	return &expr.Env{Symtab: st, Diag: exprDiag{state: s, lex: lex}}
}

// errorAtLex reports a diagnostic anchored at the lexer's current token
// (caret included), matching the reference's error2(state, lex, ...).
func (s *State) errorAtLex(lex *lexer.Lexer, format string, args ...interface{}) {
	if s.Sink == nil {
		return
	}
	loc := lex.Loc
	loc.Col = lex.TokenPos() + 1
	s.Sink.ErrorCaret(loc, lex.Text(), format, args...)
}

// errorAtLine reports a diagnostic anchored at an IREC's source line
// without a caret, matching the reference's error(state, ifile, ...).
func (s *State) errorAtLine(f *IFILE, irec *IREC, format string, args ...interface{}) {
	if s.Sink == nil {
		return
	}
	s.Sink.Error(diag.Loc{File: f.Source.Name, Line: f.Lineno(irec)}, format, args...)
}

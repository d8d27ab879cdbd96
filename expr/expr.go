// Package expr implements the assembler's expression engine: a small
// recursive-descent parser producing an AST, a typing pass that assigns
// each AST node one of the ET_* expression types, and an evaluation pass
// that reduces a typed AST to a VALUE. Grounded on
// _examples/original_source/Assembler/parse.c (parse_expr/add_expr/
// mult_expr/unary_expr/component_expr/primitive_expr, expr_type and
// eval), reshaped as Go structs instead of a tagged union plus
// recursive interpreter functions.
package expr

import (
	"fmt"

	"github.com/xyproto/bas/symtab"
)

// Type is the expression type lattice from spec.md §3/§4.5.
type Type int

const (
	Err Type = iota
	Undef
	Abs
	Rel
	RelDiff
	Str
	Sec
	Seg
	Offset
)

func (t Type) String() string {
	switch t {
	case Err:
		return "ERR"
	case Undef:
		return "UNDEF"
	case Abs:
		return "ABS"
	case Rel:
		return "REL"
	case RelDiff:
		return "REL_DIFF"
	case Str:
		return "STR"
	case Sec:
		return "SEC"
	case Seg:
		return "SEG"
	case Offset:
		return "OFFSET"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// MaxString is the longest string literal a VALUE can carry, matching
// the reference implementation's fixed-size val->string.content buffer.
const MaxString = 128

// Value is the discriminated result of evaluation: at most one of Num,
// Label or Str(ing) is meaningful, selected by the Type eval() returns
// alongside it.
type Value struct {
	Num    int64
	Label  *symtab.Symbol
	Str    []byte // at most MaxString bytes
}

// node kinds.
type kind int

const (
	kNum kind = iota
	kLabel
	kString
	kUndef
	kUnary
	kBinary
	kComponent
)

// Op identifies the operator token carried by unary, binary and
// component nodes. '+', '-', '*' are the add/subtract/multiply
// operators; the SEG/OFFSET component selectors have their own
// constants, OpSeg and OpOffset.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpNeg
	OpSeg
	OpOffset
)

// AST is one node of the parsed expression tree. Only the fields
// relevant to Kind are meaningful, mirroring the reference's tagged
// union of lhs/rhs, unary expr, num, label, string content and
// component op+sym.
type AST struct {
	kind kind

	num   int64
	label *symtab.Symbol
	str   []byte

	op       Op
	lhs, rhs *AST // binary
	inner    *AST // unary

	componentSym *symtab.Symbol
}

// Errorf is implemented by callers that want expr to report diagnostics
// through their own sink rather than returning a bare error, matching
// the reference's error(state, ifile, ...) funnel.
type Errorf interface {
	Errorf(format string, args ...interface{})
}

// Env supplies everything the parser and typer need from the
// surrounding assembler state: the symbol table for label lookups, and
// a diagnostic sink.
type Env struct {
	Symtab *symtab.Table
	Diag   Errorf
}

func (e *Env) errorf(format string, args ...interface{}) {
	e.Errorf(format, args...)
}

// Errorf reports a diagnostic through Env.Diag, a no-op if Diag is nil
// (as in tests that only exercise the happy path).
func (e *Env) Errorf(format string, args ...interface{}) {
	if e.Diag != nil {
		e.Diag.Errorf(format, args...)
	}
}

package expr

import "github.com/xyproto/bas/symtab"

// Type computes the expression type of ast without evaluating it,
// grounded on parse.c's expr_type/binary_type/unary_type/component_type/
// label_type. An UNKNOWN symbol reached here is lazily promoted to an
// undefined RELATIVE symbol, matching label_type's sym_init_relative
// call — referencing a name in an expression is what first commits it
// to being a label.
func (env *Env) Type(ast *AST) Type {
	if ast == nil {
		return Err
	}
	switch ast.kind {
	case kBinary:
		return env.binaryType(ast.op, ast.lhs, ast.rhs)
	case kUnary:
		return env.unaryType(ast.inner)
	case kComponent:
		if ast.op == OpSeg {
			return Seg
		}
		return Offset
	case kNum:
		return Abs
	case kLabel:
		return env.labelType(ast.label)
	case kString:
		return Str
	case kUndef:
		return Undef
	}
	return Err
}

func (env *Env) binaryType(op Op, lhs, rhs *AST) Type {
	t1 := env.Type(lhs)
	if t1 == Err {
		return Err
	}
	t2 := env.Type(rhs)
	if t2 == Err {
		return Err
	}
	if t1 == Abs && t2 == Abs {
		return Abs
	}
	if t1 == Rel && t2 == Rel && op == OpSub {
		return RelDiff
	}
	if t1 == Abs && t2 == RelDiff && op == OpSub {
		return RelDiff
	}
	env.errorf("invalid expression")
	return Err
}

func (env *Env) unaryType(arg *AST) Type {
	t := env.Type(arg)
	if t == Err {
		return Err
	}
	if t != Abs {
		env.errorf("invalid unary minus")
		return Err
	}
	return Abs
}

func (env *Env) labelType(sym *symtab.Symbol) Type {
	if sym.Kind() == symtab.Unknown {
		symtab.PromoteToRelative(sym)
	}
	switch sym.Kind() {
	case symtab.Absolute:
		return Abs
	case symtab.Relative:
		return Rel
	case symtab.Section:
		return Sec
	}
	env.errorf("invalid symbol in expression: %s", sym.Name())
	return Err
}

// Eval reduces a typed AST to a Value, grounded on parse.c's eval/
// eval_binary/eval_unary/eval_component/eval_label/eval_string. Callers
// must call Type first and only Eval when it did not return Err; Eval
// re-derives types bottom-up as it goes since the two passes share no
// mutable state beyond the symbol table.
func (env *Env) Eval(ast *AST) (Type, Value) {
	if ast == nil {
		return Err, Value{}
	}
	switch ast.kind {
	case kBinary:
		return env.evalBinary(ast.op, ast.lhs, ast.rhs)
	case kUnary:
		return env.evalUnary(ast.inner)
	case kComponent:
		if ast.op == OpSeg {
			return Seg, Value{Label: ast.componentSym}
		}
		return Offset, Value{Label: ast.componentSym}
	case kNum:
		return Abs, Value{Num: ast.num}
	case kLabel:
		return env.evalLabel(ast.label)
	case kString:
		return env.evalString(ast.str)
	case kUndef:
		return Undef, Value{}
	}
	return Err, Value{}
}

func (env *Env) evalBinary(op Op, lhs, rhs *AST) (Type, Value) {
	t1, v1 := env.Eval(lhs)
	if t1 == Err {
		return Err, Value{}
	}
	t2, v2 := env.Eval(rhs)
	if t2 == Err {
		return Err, Value{}
	}
	if t1 == Rel && t2 == Rel && op == OpSub {
		if v1.Label.Kind() != symtab.Relative || !v1.Label.Defined() ||
			v2.Label.Kind() != symtab.Relative || !v2.Label.Defined() {
			env.errorf("undefined labels in difference expression")
			return Err, Value{}
		}
		diff := relativeValue(v1.Label) - relativeValue(v2.Label)
		return RelDiff, Value{Num: diff}
	}
	if t1 == Abs && t2 == RelDiff && op == OpSub {
		return RelDiff, Value{Num: v1.Num - v2.Num}
	}
	// t1 == Abs && t2 == Abs
	switch op {
	case OpAdd:
		return Abs, Value{Num: v1.Num + v2.Num}
	case OpSub:
		return Abs, Value{Num: v1.Num - v2.Num}
	case OpMul:
		return Abs, Value{Num: v1.Num * v2.Num}
	}
	return Err, Value{}
}

// relativeValue is the signed byte offset a relative symbol contributes
// to a same-segment difference: its offset within its segment. Segment
// identity is deliberately ignored here, matching the reference
// implementation, which only ever forms REL_DIFF between labels the
// caller has already constrained to the same segment (e.g. two labels
// bracketing a data block).
func relativeValue(sym *symtab.Symbol) int64 {
	return int64(sym.Offset())
}

func (env *Env) evalUnary(arg *AST) (Type, Value) {
	t, v := env.Eval(arg)
	if t == Err {
		return Err, Value{}
	}
	v.Num = -v.Num
	return Abs, v
}

func (env *Env) evalLabel(sym *symtab.Symbol) (Type, Value) {
	if sym.Kind() == symtab.Unknown {
		symtab.PromoteToRelative(sym)
	}
	switch sym.Kind() {
	case symtab.Absolute:
		return Abs, Value{Num: sym.AbsValue()}
	case symtab.Relative:
		return Rel, Value{Label: sym}
	case symtab.Section:
		return Sec, Value{Label: sym}
	}
	env.errorf("invalid symbol in expression: %s", sym.Name())
	return Err, Value{}
}

func (env *Env) evalString(content []byte) (Type, Value) {
	if len(content) > MaxString {
		env.errorf("string too long")
		return Err, Value{}
	}
	return Str, Value{Str: content}
}

// MakeAbsolute reports whether (t, v) denotes an absolute numeric value,
// folding a one-byte STR into its ordinal and writing that ordinal into
// v.Num, matching parse.c's make_absolute (used by byte-sized operands
// and immediate contexts that accept a one-character string literal in
// place of a number, per spec.md §4.5).
func MakeAbsolute(t Type, v *Value) bool {
	if t == Str && len(v.Str) == 1 {
		v.Num = int64(v.Str[0])
		return true
	}
	return t == Abs
}


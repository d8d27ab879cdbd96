package expr

import (
	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/symtab"
	"github.com/xyproto/bas/token"
)

// Parse recognises one expression from lex's current token, leaving lex
// positioned just past the expression, per the grammar in spec.md §4.5:
//
//	expr       := add-expr
//	add-expr   := add-expr ('+'|'-') mult-expr | mult-expr
//	mult-expr  := mult-expr '*' unary-expr | unary-expr
//	unary-expr := '-' unary-expr | component-expr
//	component  := (SEG|OFFSET) relative-label | primitive-expr
//	primitive  := NUM | LABEL | STRING | '?' | '(' expr ')'
//
// Parse returns nil on a syntax error, which callers fold into Err.
func Parse(env *Env, lex *lexer.Lexer) *AST {
	return parseAdd(env, lex)
}

// Eval parses, types and evaluates one expression in a single call,
// matching parse.c's expr(). It returns Err on a syntax or type error.
func Eval(env *Env, lex *lexer.Lexer) (Type, Value) {
	ast := Parse(env, lex)
	if ast == nil {
		return Err, Value{}
	}
	if t := env.Type(ast); t == Err {
		return Err, Value{}
	}
	return env.Eval(ast)
}

func parseAdd(env *Env, lex *lexer.Lexer) *AST {
	node := parseMult(env, lex)
	if node == nil {
		return nil
	}
	for lex.Tok == token.PLUS || lex.Tok == token.MINUS {
		op := OpAdd
		if lex.Tok == token.MINUS {
			op = OpSub
		}
		lex.Next()
		rhs := parseMult(env, lex)
		if rhs == nil {
			return nil
		}
		node = &AST{kind: kBinary, op: op, lhs: node, rhs: rhs}
	}
	return node
}

func parseMult(env *Env, lex *lexer.Lexer) *AST {
	node := parseUnary(env, lex)
	if node == nil {
		return nil
	}
	for lex.Tok == token.STAR {
		lex.Next()
		rhs := parseUnary(env, lex)
		if rhs == nil {
			return nil
		}
		node = &AST{kind: kBinary, op: OpMul, lhs: node, rhs: rhs}
	}
	return node
}

func parseUnary(env *Env, lex *lexer.Lexer) *AST {
	if lex.Tok == token.MINUS {
		lex.Next()
		inner := parseUnary(env, lex)
		if inner == nil {
			return nil
		}
		return &AST{kind: kUnary, op: OpNeg, inner: inner}
	}
	return parseComponent(env, lex)
}

func parseComponent(env *Env, lex *lexer.Lexer) *AST {
	if lex.Tok == token.SEG || lex.Tok == token.OFFSET {
		op := OpSeg
		name := "SEG"
		if lex.Tok == token.OFFSET {
			op = OpOffset
			name = "OFFSET"
		}
		lex.Next()
		sym := relativeLabel(env, lex, name)
		if sym == nil {
			return nil
		}
		return &AST{kind: kComponent, op: op, componentSym: sym}
	}
	return parsePrimitive(env, lex)
}

// relativeLabel consumes a LABEL token that must name (or newly become) a
// relative symbol, per parse.c's relative_label.
func relativeLabel(env *Env, lex *lexer.Lexer, opName string) *symtab.Symbol {
	if lex.Tok != token.LABEL {
		env.errorf("%s requires symbol", opName)
		return nil
	}
	name := lex.Val.Str
	sym := env.Symtab.Lookup(name)
	if sym == nil {
		sym = env.Symtab.InsertRelative(name)
	} else if sym.Kind() != symtab.Relative {
		env.errorf("%s requires relative label", opName)
		return nil
	}
	lex.Next()
	return sym
}

func parsePrimitive(env *Env, lex *lexer.Lexer) *AST {
	switch lex.Tok {
	case token.NUM:
		node := &AST{kind: kNum, num: lex.Val.Num}
		lex.Next()
		return node
	case token.LABEL:
		name := lex.Val.Str
		sym := env.Symtab.Lookup(name)
		if sym == nil {
			sym = env.Symtab.InsertUnknown(name)
		}
		node := &AST{kind: kLabel, label: sym}
		lex.Next()
		return node
	case token.STR:
		content := []byte(lex.Val.Str)
		if len(content) > MaxString {
			env.errorf("string too long")
			lex.Next()
			return nil
		}
		node := &AST{kind: kString, str: content}
		lex.Next()
		return node
	case token.QUESTION:
		lex.Next()
		return &AST{kind: kUndef}
	case token.LPAREN:
		lex.Next()
		node := parseAdd(env, lex)
		if node == nil {
			return nil
		}
		if lex.Tok != token.RPAREN {
			env.errorf("expected )")
			return nil
		}
		lex.Next()
		return node
	default:
		env.errorf("expression expected")
		return nil
	}
}

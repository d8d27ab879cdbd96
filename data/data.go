// Package data implements the DATA node tree that DB/DW/DD/DQ/DT
// operand lists parse into, per spec.md §4.8:
//
//	data-list := datum (',' datum)*
//	datum     := expr                         -- EXPR node
//	           | expr DUP '(' data-list ')'   -- DUP node
//
// Grounded on _examples/original_source/Assembler/parsedata.c (the
// expr/DUP grammar) and common.h's per-width EXPR_SIZE_FN family
// (byte_expr_size .. tbyte_expr_size), reshaped as a Go interface with
// one implementation per node kind instead of a tagged struct, since
// the two node kinds carry genuinely disjoint payloads.
package data

import (
	"fmt"

	"github.com/xyproto/bas/expr"
	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/token"
)

// Width identifies which directive (DB/DW/DD/DQ/DT) a node list belongs
// to, which in turn selects the per-datum byte size and the set of
// expression types it accepts.
type Width int

const (
	DB Width = 1
	DW Width = 2
	DD Width = 4
	DQ Width = 8
	DT Width = 10
)

func (w Width) String() string {
	switch w {
	case DB:
		return "DB"
	case DW:
		return "DW"
	case DD:
		return "DD"
	case DQ:
		return "DQ"
	case DT:
		return "DT"
	}
	return fmt.Sprintf("Width(%d)", int(w))
}

func WidthForToken(tok token.Kind) (Width, bool) {
	switch tok {
	case token.DB:
		return DB, true
	case token.DW:
		return DW, true
	case token.DD:
		return DD, true
	case token.DQ:
		return DQ, true
	case token.DT:
		return DT, true
	}
	return 0, false
}

// Node is one element of a data-list: either an expression datum or a
// DUP repetition of a nested data-list.
type Node interface {
	// Size returns the node's total byte size under width w. init
	// reports whether every byte it contributes is statically known
	// (false for an uninitialised datum, e.g. `?` under UDATASEG).
	Size(env *expr.Env, w Width) (size uint32, init bool)
	// Emit appends the node's bytes under width w to buf, returning the
	// extended slice.
	Emit(env *expr.Env, w Width, buf []byte) []byte
}

// ExprNode is a single expr datum, one of STRING (under DB each byte of
// the string literal becomes one element, per spec.md §4.8/§8 scenario
// 5; under a wider width the literal stores its first character's code
// as a single element), '?' (uninitialised), or a
// numeric/label/section value truncated or sign-extended to width w.
type ExprNode struct {
	AST *expr.AST
}

func (n *ExprNode) Size(env *expr.Env, w Width) (uint32, bool) {
	t, v := env.Eval(n.AST)
	if t == expr.Undef {
		return uint32(w), false
	}
	if t == expr.Str && w == DB {
		return uint32(len(v.Str)), true
	}
	return uint32(w), t != expr.Err
}

func (n *ExprNode) Emit(env *expr.Env, w Width, buf []byte) []byte {
	t, v := env.Eval(n.AST)
	switch {
	case t == expr.Undef:
		return appendZeros(buf, uint32(w))
	case t == expr.Str && w == DB:
		return append(buf, v.Str...)
	case t == expr.Str:
		var n int64
		if len(v.Str) > 0 {
			n = int64(v.Str[0])
		}
		return appendLittleEndian(buf, n, w)
	default:
		return appendLittleEndian(buf, v.Num, w)
	}
}

// DupNode is `count DUP ( data-list )`.
type DupNode struct {
	CountAST *expr.AST
	Children []Node
}

func (n *DupNode) count(env *expr.Env) uint32 {
	_, v := env.Eval(n.CountAST)
	if v.Num < 0 {
		return 0
	}
	return uint32(v.Num)
}

func (n *DupNode) Size(env *expr.Env, w Width) (uint32, bool) {
	var childSize uint32
	init := true
	for _, c := range n.Children {
		s, i := c.Size(env, w)
		childSize += s
		init = init && i
	}
	return childSize * n.count(env), init
}

func (n *DupNode) Emit(env *expr.Env, w Width, buf []byte) []byte {
	c := n.count(env)
	for i := uint32(0); i < c; i++ {
		for _, child := range n.Children {
			buf = child.Emit(env, w, buf)
		}
	}
	return buf
}

func appendZeros(buf []byte, n uint32) []byte {
	for i := uint32(0); i < n; i++ {
		buf = append(buf, 0)
	}
	return buf
}

func appendLittleEndian(buf []byte, n int64, w Width) []byte {
	u := uint64(n)
	for i := Width(0); i < w; i++ {
		buf = append(buf, byte(u))
		u >>= 8
	}
	return buf
}

// Parse parses one data-list (a comma-separated sequence of datum
// productions) starting at lex's current token, stopping at EOL.
func Parse(env *expr.Env, lex *lexer.Lexer) []Node {
	var nodes []Node
	for {
		n := parseDatum(env, lex)
		if n == nil {
			return nodes
		}
		nodes = append(nodes, n)
		if lex.Tok != token.COMMA {
			break
		}
		lex.Next()
	}
	return nodes
}

func parseDatum(env *expr.Env, lex *lexer.Lexer) Node {
	ast := expr.Parse(env, lex)
	if ast == nil {
		return nil
	}
	if lex.Tok == token.DUP {
		lex.Next()
		if lex.Tok != token.LPAREN {
			env.Errorf("expected ( after DUP")
			return nil
		}
		lex.Next()
		children := Parse(env, lex)
		if lex.Tok != token.RPAREN {
			env.Errorf("expected ) to close DUP")
			return nil
		}
		lex.Next()
		return &DupNode{CountAST: ast, Children: children}
	}
	return &ExprNode{AST: ast}
}

// Size sums Size over a data-list, the total byte size pass 1 assigns
// the IREC.
func Size(env *expr.Env, w Width, nodes []Node) (uint32, bool) {
	var total uint32
	init := true
	for _, n := range nodes {
		s, i := n.Size(env, w)
		total += s
		init = init && i
	}
	return total, init
}

// Emit walks a data-list emitting its bytes in order.
func Emit(env *expr.Env, w Width, nodes []Node) []byte {
	var buf []byte
	for _, n := range nodes {
		buf = n.Emit(env, w, buf)
	}
	return buf
}

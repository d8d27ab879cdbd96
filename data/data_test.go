package data

import (
	"testing"

	"github.com/xyproto/bas/expr"
	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/symtab"
)

func newEnv() (*expr.Env, *lexer.Lexer) {
	st := symtab.New(false)
	env := &expr.Env{Symtab: st}
	lx := lexer.New(nil)
	return env, lx
}

func TestDupOfStringLiteral(t *testing.T) {
	env, lx := newEnv()
	lx.Begin("t.asm", 1, `3 DUP ('AB'), 0`)
	nodes := Parse(env, lx)

	size, init := Size(env, DB, nodes)
	if !init {
		t.Fatal("expected fully initialised data")
	}
	if size != 7 {
		t.Fatalf("size = %d, want 7", size)
	}

	bytes := Emit(env, DB, nodes)
	want := []byte{0x41, 0x42, 0x41, 0x42, 0x41, 0x42, 0x00}
	if len(bytes) != len(want) {
		t.Fatalf("bytes = %x, want %x", bytes, want)
	}
	for i := range want {
		if bytes[i] != want[i] {
			t.Fatalf("bytes = %x, want %x", bytes, want)
		}
	}
}

func TestSimpleByteList(t *testing.T) {
	env, lx := newEnv()
	lx.Begin("t.asm", 1, `1, 2, 3`)
	nodes := Parse(env, lx)
	size, _ := Size(env, DB, nodes)
	if size != 3 {
		t.Fatalf("size = %d, want 3", size)
	}
	bytes := Emit(env, DB, nodes)
	want := []byte{1, 2, 3}
	for i := range want {
		if bytes[i] != want[i] {
			t.Fatalf("bytes = %v, want %v", bytes, want)
		}
	}
}

func TestWordWidth(t *testing.T) {
	env, lx := newEnv()
	lx.Begin("t.asm", 1, `1234h`)
	nodes := Parse(env, lx)
	size, _ := Size(env, DW, nodes)
	if size != 2 {
		t.Fatalf("size = %d, want 2", size)
	}
	bytes := Emit(env, DW, nodes)
	if bytes[0] != 0x34 || bytes[1] != 0x12 {
		t.Fatalf("bytes = %x, want 34 12", bytes)
	}
}

func TestUninitialisedDatum(t *testing.T) {
	env, lx := newEnv()
	lx.Begin("t.asm", 1, `?`)
	nodes := Parse(env, lx)
	size, init := Size(env, DW, nodes)
	if init {
		t.Fatal("expected uninitialised")
	}
	if size != 2 {
		t.Fatalf("size = %d, want 2", size)
	}
}

func TestNestedDup(t *testing.T) {
	env, lx := newEnv()
	lx.Begin("t.asm", 1, `2 DUP (1, 2 DUP (9))`)
	nodes := Parse(env, lx)
	size, _ := Size(env, DB, nodes)
	// inner: 1 + 2*1 = 3 bytes per outer iteration, * 2 = 6
	if size != 6 {
		t.Fatalf("size = %d, want 6", size)
	}
	bytes := Emit(env, DB, nodes)
	want := []byte{1, 9, 9, 1, 9, 9}
	for i := range want {
		if bytes[i] != want[i] {
			t.Fatalf("bytes = %v, want %v", bytes, want)
		}
	}
}

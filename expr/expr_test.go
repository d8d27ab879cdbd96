package expr

import (
	"testing"

	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/symtab"
)

func newEnv() (*Env, *lexer.Lexer) {
	st := symtab.New(false)
	env := &Env{Symtab: st}
	lx := lexer.New(nil)
	return env, lx
}

func evalLine(t *testing.T, env *Env, lx *lexer.Lexer, line string) (Type, Value) {
	t.Helper()
	lx.Begin("t.asm", 1, line)
	return Eval(env, lx)
}

func TestArithmeticAbsolute(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"1+2", 3},
		{"10-4", 6},
		{"2*3+4", 10},
		{"2*(3+4)", 14},
		{"-5+10", 5},
		{"0x10+10", 26},
	}
	for _, c := range cases {
		env, lx := newEnv()
		typ, val := evalLine(t, env, lx, c.src)
		if typ != Abs {
			t.Fatalf("%s: type = %v, want Abs", c.src, typ)
		}
		if val.Num != c.want {
			t.Fatalf("%s: val = %d, want %d", c.src, val.Num, c.want)
		}
	}
}

func TestAbsoluteSimple(t *testing.T) {
	env, lx := newEnv()
	typ, val := evalLine(t, env, lx, "3+4*2")
	if typ != Abs {
		t.Fatalf("type = %v, want Abs", typ)
	}
	if val.Num != 11 {
		t.Fatalf("val = %d, want 11", val.Num)
	}
}

func TestUnaryMinusOnlyOnAbsolute(t *testing.T) {
	env, lx := newEnv()
	lbl := env.Symtab.InsertRelative("FOO")
	symtab.DefineRelative(lbl, 0, 10)
	typ, _ := evalLine(t, env, lx, "-FOO")
	if typ != Err {
		t.Fatalf("type = %v, want Err (unary minus on relative)", typ)
	}
}

func TestRelativeDifference(t *testing.T) {
	env, lx := newEnv()
	a := env.Symtab.InsertRelative("A")
	symtab.DefineRelative(a, 0, 20)
	b := env.Symtab.InsertRelative("B")
	symtab.DefineRelative(b, 0, 6)

	typ, val := evalLine(t, env, lx, "A-B")
	if typ != RelDiff {
		t.Fatalf("type = %v, want RelDiff", typ)
	}
	if val.Num != 14 {
		t.Fatalf("val = %d, want 14", val.Num)
	}
}

func TestAbsoluteMinusRelativeDifference(t *testing.T) {
	env, lx := newEnv()
	a := env.Symtab.InsertRelative("A")
	symtab.DefineRelative(a, 0, 20)
	b := env.Symtab.InsertRelative("B")
	symtab.DefineRelative(b, 0, 6)

	typ, val := evalLine(t, env, lx, "30-(A-B)")
	if typ != RelDiff {
		t.Fatalf("type = %v, want RelDiff", typ)
	}
	if val.Num != 16 {
		t.Fatalf("val = %d, want 16", val.Num)
	}
}

func TestRelativeDifferenceOfUndefinedIsError(t *testing.T) {
	env, lx := newEnv()
	env.Symtab.InsertRelative("A")
	env.Symtab.InsertRelative("B")
	typ, _ := evalLine(t, env, lx, "A-B")
	if typ != Err {
		t.Fatalf("type = %v, want Err", typ)
	}
}

func TestSegOffsetComponents(t *testing.T) {
	env, lx := newEnv()
	env.Symtab.InsertRelative("FOO")

	typ, val := evalLine(t, env, lx, "OFFSET FOO")
	if typ != Offset {
		t.Fatalf("type = %v, want Offset", typ)
	}
	if val.Label == nil || val.Label.Name() != "FOO" {
		t.Fatalf("label = %v, want FOO", val.Label)
	}

	env2, lx2 := newEnv()
	env2.Symtab.InsertRelative("BAR")
	typ2, val2 := evalLine(t, env2, lx2, "SEG BAR")
	if typ2 != Seg {
		t.Fatalf("type = %v, want Seg", typ2)
	}
	if val2.Label == nil || val2.Label.Name() != "BAR" {
		t.Fatalf("label = %v, want BAR", val2.Label)
	}
}

func TestStringLiteral(t *testing.T) {
	env, lx := newEnv()
	typ, val := evalLine(t, env, lx, `'A'`)
	if typ != Str {
		t.Fatalf("type = %v, want Str", typ)
	}
	if !MakeAbsolute(typ, &val) {
		t.Fatalf("MakeAbsolute on one-char string should succeed")
	}
	if val.Num != 'A' {
		t.Fatalf("val = %d, want %d", val.Num, 'A')
	}
}

func TestMultiCharStringIsNotAbsolute(t *testing.T) {
	env, lx := newEnv()
	typ, val := evalLine(t, env, lx, `'AB'`)
	if typ != Str {
		t.Fatalf("type = %v, want Str", typ)
	}
	if MakeAbsolute(typ, &val) {
		t.Fatalf("MakeAbsolute on two-char string should fail")
	}
}

func TestUndefExpr(t *testing.T) {
	env, lx := newEnv()
	typ, _ := evalLine(t, env, lx, "?")
	if typ != Undef {
		t.Fatalf("type = %v, want Undef", typ)
	}
}

func TestLabelFirstReferenceBecomesRelative(t *testing.T) {
	env, lx := newEnv()
	typ, val := evalLine(t, env, lx, "NEWLABEL")
	if typ != Rel {
		t.Fatalf("type = %v, want Rel", typ)
	}
	if val.Label.Kind() != symtab.Relative {
		t.Fatalf("kind = %v, want Relative", val.Label.Kind())
	}
}

func TestMixedAbsAndRelativeIsError(t *testing.T) {
	env, lx := newEnv()
	env.Symtab.InsertRelative("FOO")
	typ, _ := evalLine(t, env, lx, "FOO+1")
	if typ != Err {
		t.Fatalf("type = %v, want Err (REL + ABS has no rule)", typ)
	}
}

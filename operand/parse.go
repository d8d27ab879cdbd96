package operand

import (
	"github.com/xyproto/bas/expr"
	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/symtab"
	"github.com/xyproto/bas/token"
)

// sizeOverrideFlags maps a byte size to the RM/MEM flags a size
// override or a sized label contributes, per spec.md §4.3's "operand
// inherits the matching RMn/MEMn flags" rule.
func sizeOverrideFlags(size int) FlagSet {
	var s FlagSet
	switch size {
	case 1:
		s.Add(FRM8)
		s.Add(FMEM8)
	case 2:
		s.Add(FRM16)
		s.Add(FMEM16)
	case 4:
		s.Add(FMEM32)
	case 8:
		s.Add(FMEM64)
	case 10:
		s.Add(FMEM80)
	}
	return s
}

func sizeOverrideToken(tok token.Kind) (int, bool) {
	switch tok {
	case token.BYTE:
		return 1, true
	case token.WORD:
		return 2, true
	case token.DWORD:
		return 4, true
	case token.QWORD:
		return 8, true
	case token.TBYTE:
		return 10, true
	case token.FWORD:
		return 6, true
	}
	return 0, false
}

// Parse consumes one operand starting at lex's current token. env
// supplies the symbol table and diagnostic sink the embedded expression
// parser needs.
func Parse(env *expr.Env, lex *lexer.Lexer) *Operand {
	switch lex.Tok {
	case token.REG8:
		no := lex.Val.RegNo
		lex.Next()
		return NewReg8(no)
	case token.REG16:
		no := lex.Val.RegNo
		lex.Next()
		return NewReg16(no)
	case token.SREG:
		no := lex.Val.RegNo
		pos := lex.TokenPos()
		if lex.Next() == token.COLON {
			lex.SetPos(pos)
			return parseMemory(env, lex)
		}
		return NewSreg(no)
	case token.ST:
		lex.Next()
		if lex.Tok != token.LPAREN {
			return NewST(0)
		}
		lex.Next()
		if lex.Tok != token.NUM {
			env.Errorf("ST() requires a numeric index")
			return nil
		}
		n := int(lex.Val.Num)
		lex.Next()
		if lex.Tok != token.RPAREN {
			env.Errorf("expected )")
			return nil
		}
		lex.Next()
		if n < 0 || n > 7 {
			env.Errorf("ST index out of range: %d", n)
			return nil
		}
		return NewST(n)
	case token.SHORT, token.NEAR, token.FAR:
		return parseJump(env, lex)
	case token.LBRACKET, token.BYTE, token.WORD, token.DWORD, token.FWORD, token.QWORD, token.TBYTE, token.PTR:
		return parseMemory(env, lex)
	default:
		return parseExprOperand(env, lex)
	}
}

// parseMemory parses a `[...]` memory operand, with an optional leading
// size override (and optional PTR) and an optional leading SREG: override
// fused in by the caller dispatch above. Grounded on spec.md §4.3's base/
// index combination rules: {BX,BP}[+{SI,DI}][±disp], {SI,DI}[±disp], or a
// bare displacement (which sets FINDIR).
func parseMemory(env *expr.Env, lex *lexer.Lexer) *Operand {
	o := New()
	o.Class = Mem

	sizeOverride := 0
	if sz, ok := sizeOverrideToken(lex.Tok); ok {
		sizeOverride = sz
		lex.Next()
		if lex.Tok == token.PTR {
			lex.Next()
		}
	}
	o.Mem.SizeOverride = sizeOverride

	if lex.Tok == token.SREG {
		o.Mem.SregOverride = lex.Val.RegNo
		lex.Next()
		if lex.Tok != token.COLON {
			env.Errorf("expected : after segment register")
			return nil
		}
		lex.Next()
	}

	if lex.Tok != token.LBRACKET {
		env.Errorf("expected [")
		return nil
	}
	lex.Next()

	base, index := BaseNone, BaseNone
	if lex.Tok == token.REG16 {
		switch lex.Val.RegNo {
		case token.BX, token.BP, token.SI, token.DI:
			base = lex.Val.RegNo
			lex.Next()
		default:
			env.Errorf("invalid base register in memory operand")
			return nil
		}
		if lex.Tok == token.PLUS {
			plusPos := lex.TokenPos()
			lex.Next()
			if lex.Tok != token.REG16 {
				// "+disp" rather than "+index": rescan from the '+' so the
				// displacement loop below reads it.
				lex.SetPos(plusPos)
			} else {
				switch lex.Val.RegNo {
				case token.SI, token.DI:
					index = lex.Val.RegNo
					lex.Next()
				default:
					env.Errorf("invalid index register in memory operand")
					return nil
				}
			}
		}
	}

	sign := int64(1)
	haveDisp := false
	var dispType DispType = NoDisp
	var dispVal int64
	var dispLabel SymbolRef

	for lex.Tok == token.PLUS || lex.Tok == token.MINUS {
		if lex.Tok == token.MINUS {
			sign = -1
		}
		lex.Next()
		t, v := expr.Eval(env, lex)
		switch t {
		case expr.Abs:
			dispType = AbsDisp
			dispVal += sign * v.Num
			haveDisp = true
		case expr.Rel:
			dispType = RelDisp
			dispLabel = v.Label
			haveDisp = true
		default:
			env.Errorf("invalid memory displacement")
			return nil
		}
		sign = 1
	}

	if lex.Tok != token.RBRACKET {
		if !haveDisp && base == BaseNone {
			t, v := expr.Eval(env, lex)
			switch t {
			case expr.Abs:
				dispType = AbsDisp
				dispVal = v.Num
			case expr.Rel:
				dispType = RelDisp
				dispLabel = v.Label
			default:
				env.Errorf("invalid memory operand")
				return nil
			}
			haveDisp = true
		}
	}

	if lex.Tok != token.RBRACKET {
		env.Errorf("expected ]")
		return nil
	}
	lex.Next()

	o.Mem.BaseReg = base
	o.Mem.IndexReg = index
	o.Mem.DispType = dispType
	o.Mem.DispVal = dispVal
	o.Mem.DispLabel = dispLabel

	o.Flags.Add(FRM)
	if base == BaseNone && index == BaseNone {
		o.Flags.Add(FINDIR)
	}

	if sizeOverride != 0 {
		o.Flags |= sizeOverrideFlags(sizeOverride)
	} else if dispType == RelDisp {
		if sym, ok := dispLabel.(*symtab.Symbol); ok && sym.DataSize() > 0 {
			o.Flags |= sizeOverrideFlags(int(sym.DataSize()))
		}
	}

	return o
}

// parseJump parses a SHORT/NEAR/FAR jump target (the distance keyword
// may be followed by PTR), optionally prefixed
// with CS: (the only segment prefix the grammar accepts on a jump
// target, per spec.md §4.3).
func parseJump(env *expr.Env, lex *lexer.Lexer) *Operand {
	o := New()
	o.Class = Jump

	switch lex.Tok {
	case token.SHORT:
		o.Jump.Distance = DistShort
		o.Flags.Add(FSHORTJ)
	case token.NEAR:
		o.Jump.Distance = DistNear
		o.Flags.Add(FNEARJ)
	case token.FAR:
		o.Jump.Distance = DistFar
		o.Flags.Add(FFARJ)
	}
	lex.Next()
	if lex.Tok == token.PTR {
		lex.Next()
	}

	if lex.Tok == token.SREG && lex.Val.RegNo == token.SR_CS {
		lex.Next()
		if lex.Tok != token.COLON {
			env.Errorf("expected : after CS")
			return nil
		}
		lex.Next()
	}

	t, v := expr.Eval(env, lex)
	switch t {
	case expr.Abs:
		o.Jump.TargetKind = TargetAbs
		o.Jump.Abs = uint32(v.Num)
	case expr.Rel:
		o.Jump.TargetKind = TargetLabel
		o.Jump.Label = v.Label
	default:
		env.Errorf("invalid jump target")
		return nil
	}
	return o
}

// parseExprOperand parses a bare expression and maps its expression
// type onto an immediate or near-jump operand, per spec.md §4.3's
// "Otherwise" rule.
func parseExprOperand(env *expr.Env, lex *lexer.Lexer) *Operand {
	t, v := expr.Eval(env, lex)
	o := New()

	switch t {
	case expr.Abs:
		o.Class = Imm
		o.Imm = ImmPayload{Kind: ImmAbs, Val: v.Num}
		o.Flags.Add(FIMM)
		if v.Num >= -128 && v.Num <= 127 {
			o.Flags.Add(FIMM8)
		}
		if v.Num >= 0 && v.Num <= 255 {
			o.Flags.Add(FIMM8U)
		}
		if v.Num == 1 {
			o.Flags.Add(FOF1)
		}
		if v.Num == 3 {
			o.Flags.Add(FOF3)
		}
		return o

	case expr.Str:
		if expr.MakeAbsolute(t, &v) {
			o.Class = Imm
			o.Imm = ImmPayload{Kind: ImmAbs, Val: v.Num}
			o.Flags.Add(FIMM)
			o.Flags.Add(FIMM8)
			o.Flags.Add(FIMM8U)
			return o
		}
		env.Errorf("string operand too long for immediate use")
		return nil

	case expr.Rel:
		o.Class = Jump
		o.Jump = JumpPayload{Distance: DistNear, TargetKind: TargetLabel, Label: v.Label}
		o.Flags.Add(FNEARJ)
		return o

	case expr.Sec:
		o.Class = Imm
		o.Imm = ImmPayload{Kind: ImmSection, Label: v.Label}
		o.Flags.Add(FIMM)
		return o

	case expr.Seg:
		o.Class = Imm
		o.Imm = ImmPayload{Kind: ImmSeg, Label: v.Label}
		o.Flags.Add(FIMM)
		return o

	case expr.Offset:
		o.Class = Imm
		o.Imm = ImmPayload{Kind: ImmOffset, Label: v.Label}
		o.Flags.Add(FIMM)
		return o

	case expr.RelDiff:
		env.Errorf("relative difference is not a valid operand")
		return nil

	default:
		return nil
	}
}

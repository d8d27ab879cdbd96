package ifile

import (
	"strings"

	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/segment"
	"github.com/xyproto/bas/symtab"
	"github.com/xyproto/bas/token"
)

// doSegment opens a new or previously declared segment, parsing its
// optional PRIVATE/PUBLIC/STACK/UNINIT attribute and BYTE/WORD/DWORD/
// PARA/PAGE alignment, matching pass1.c's do_segment/get_segment_attributes.
func doSegment(state *State, f *IFILE, lex *lexer.Lexer) {
	name := state.PendingName
	state.PendingName = ""
	if name == "" {
		if lex.Next() != token.LABEL {
			state.errorAtLex(lex, "segment name expected")
			lex.DiscardLine()
			return
		}
		name = lex.Val.Str
	}
	if state.CurSeg != segment.NoSeg {
		state.errorAtLex(lex, "segment %s is already open", f.Segs.Segment(state.CurSeg).Name)
	}

	sym := f.Symtab.Lookup(name)
	var seg segment.SegNo
	reopen := false
	switch {
	case sym == nil:
		var err error
		seg, err = f.Segs.CreateSegment(name)
		if err != nil {
			state.errorAtLex(lex, "%s", err)
			lex.DiscardLine()
			return
		}
		f.Symtab.InsertSection(name, symtab.SectionSegment, int(seg))
		state.CurSeg = seg
	case sym.Kind() == symtab.Section && sym.SectionKind() == symtab.SectionSegment:
		seg = segment.SegNo(sym.Ordinal())
		state.CurSeg = seg
		reopen = true
	default:
		state.errorAtLex(lex, "segment name expected: %s", sym.Name())
		lex.DiscardLine()
		return
	}

	p2align := uint(segment.DefaultP2Align)
	attr := getSegmentAttributes(state, lex, &p2align)

	segm := f.Segs.Segment(seg)
	if reopen {
		if attr != 0 && attr != segm.Attr {
			state.errorAtLex(lex, "segment attributes clash with previous definition of %s", name)
		}
		if p2align != segm.P2Align {
			state.errorAtLex(lex, "segment alignment clashes with previous definition of %s", name)
		}
		return
	}
	if attr == 0 {
		attr = segment.AttrPrivate
	}
	if err := segment.SetAttr(segm, attr); err != nil {
		state.errorAtLex(lex, "%s", err)
	}
	segm.P2Align = p2align
}

func getSegmentAttributes(state *State, lex *lexer.Lexer, p2align *uint) segment.Attr {
	var attr segment.Attr
	alignTok := token.NONE
	for {
		tok := lex.Next()
		switch tok {
		case token.PRIVATE:
			attr |= segment.AttrPrivate
		case token.PUBLIC:
			attr |= segment.AttrPublic
		case token.STACK:
			attr |= segment.AttrStack
		case token.UNINIT:
			attr |= segment.AttrUninit
		case token.BYTE, token.WORD, token.DWORD, token.PARA, token.PAGE:
			if alignTok != token.NONE && alignTok != tok {
				state.errorAtLex(lex, "conflicting segment alignments")
			}
			alignTok = tok
		default:
			switch alignTok {
			case token.BYTE:
				*p2align = 0
			case token.WORD:
				*p2align = 1
			case token.DWORD:
				*p2align = 2
			case token.PARA:
				*p2align = 4
			case token.PAGE:
				*p2align = 8
			}
			return attr
		}
	}
}

// doEnds closes the currently open segment, matching pass1.c's
// perform_ends (shared with the "SEGMENT ... ENDS name" and the bare
// "ENDS" spellings).
func doEnds(state *State, f *IFILE, lex *lexer.Lexer) {
	lex.Next()
	performEnds(state, f, lex)
}

func performEnds(state *State, f *IFILE, lex *lexer.Lexer) {
	if state.CurSeg == segment.NoSeg {
		state.errorAtLex(lex, "no segment is open")
	}
	if lex.Tok == token.LABEL {
		name := lex.Val.Str
		sym := f.Symtab.Lookup(name)
		if sym == nil || sym.Kind() != symtab.Section || sym.SectionKind() != symtab.SectionSegment {
			state.errorAtLex(lex, "segment name expected: %s", name)
		} else if state.CurSeg != segment.NoSeg && segment.SegNo(sym.Ordinal()) != state.CurSeg {
			state.errorAtLex(lex, "mismatched segment name: %s", name)
		}
		lex.Next()
	}
	state.CurSeg = segment.NoSeg
}

// doAssume binds one or more SREG:name pairs, matching pass1.c's
// do_assume/assume.
func doAssume(state *State, f *IFILE, lex *lexer.Lexer) {
	for {
		lex.Next()
		assumeOne(state, f, lex)
		if lex.Tok != token.COMMA {
			break
		}
	}
}

func assumeOne(state *State, f *IFILE, lex *lexer.Lexer) {
	if lex.Tok != token.SREG {
		state.errorAtLex(lex, "segment register expected")
		return
	}
	reg := lex.Val.RegNo
	if lex.Next() != token.COLON {
		state.errorAtLex(lex, "':' expected")
		return
	}
	if lex.Next() != token.LABEL {
		state.errorAtLex(lex, "segment or group name expected")
		return
	}
	name := lex.Val.Str
	sym := f.Symtab.Lookup(name)
	switch {
	case sym == nil:
		state.errorAtLex(lex, "undefined: %s", name)
	case sym.Kind() != symtab.Section:
		state.errorAtLex(lex, "not a segment or group: %s", name)
	default:
		state.AssumeSym[reg] = sym
	}
	lex.Next()
}

// doGroup creates a GROUP symbol combining one or more already
// declared segments, matching pass1.c's do_group/get_group.
func doGroup(state *State, f *IFILE, lex *lexer.Lexer) {
	name := state.PendingName
	state.PendingName = ""
	if name == "" {
		if lex.Next() != token.LABEL {
			state.errorAtLex(lex, "group name expected")
			lex.DiscardLine()
			return
		}
		name = lex.Val.Str
	}
	if f.Symtab.Lookup(name) != nil {
		state.errorAtLex(lex, "name already used: %s", name)
		lex.DiscardLine()
		return
	}
	group, err := f.Segs.CreateGroup(name)
	if err != nil {
		state.errorAtLex(lex, "%s", err)
		lex.DiscardLine()
		return
	}
	f.Symtab.InsertSection(name, symtab.SectionGroup, int(group))

	for {
		lex.Next()
		groupSegment(state, f, lex, group)
		if lex.Tok != token.COMMA {
			break
		}
	}
}

func groupSegment(state *State, f *IFILE, lex *lexer.Lexer, group segment.GroupNo) {
	if lex.Tok != token.LABEL {
		state.errorAtLex(lex, "segment name expected")
		return
	}
	name := lex.Val.Str
	sym := f.Symtab.Lookup(name)
	switch {
	case sym == nil:
		state.errorAtLex(lex, "undefined: %s", name)
	case sym.Kind() != symtab.Section || sym.SectionKind() != symtab.SectionSegment:
		state.errorAtLex(lex, "not a segment: %s", name)
	default:
		seg := segment.SegNo(sym.Ordinal())
		segm := f.Segs.Segment(seg)
		if segm.Group != segment.NoGroup {
			state.errorAtLex(lex, "already a member of a group: %s", name)
		} else {
			segm.Group = group
		}
	}
	lex.Next()
}

// doModel implements "MODEL TINY", the only memory model this
// assembler carries forward from the original's larger MODEL grammar
// (spec.md's supplemented-features scope): it creates _CODE/_DATA/_BSS
// segments and a _GROUP group combining them, and ASSUMEs all four
// segment registers at that group, matching pass1.c's do_model/
// set_model_tiny.
func doModel(state *State, f *IFILE, lex *lexer.Lexer) {
	if lex.Next() != token.LABEL {
		state.errorAtLex(lex, "model name expected")
		lex.DiscardLine()
		return
	}
	modelName := lex.Val.Str
	lex.Next()

	if f.ModelGroup != nil {
		state.errorAtLex(lex, "a memory model has already been set")
		return
	}
	if !strings.EqualFold(modelName, "TINY") {
		state.errorAtLex(lex, "unsupported memory model: %s", modelName)
		return
	}
	if f.Segs.SegmentCount() > 0 || f.Segs.GroupCount() > 0 {
		state.errorAtLex(lex, "MODEL must appear before any segment or group is created")
		return
	}

	code := modelSection(state, f, lex, "_CODE")
	dataSeg := modelSection(state, f, lex, "_DATA")
	udataSeg := modelSection(state, f, lex, "_BSS")
	group := modelGroupSection(state, f, lex, "_GROUP")
	if code == nil || dataSeg == nil || udataSeg == nil || group == nil {
		return
	}

	gno := segment.GroupNo(group.Ordinal())
	for _, sym := range []*symtab.Symbol{code, dataSeg, udataSeg} {
		f.Segs.Segment(segment.SegNo(sym.Ordinal())).Group = gno
	}
	segment.SetAttr(f.Segs.Segment(segment.SegNo(code.Ordinal())), segment.AttrPublic)
	segment.SetAttr(f.Segs.Segment(segment.SegNo(dataSeg.Ordinal())), segment.AttrPublic)
	segment.SetAttr(f.Segs.Segment(segment.SegNo(udataSeg.Ordinal())), segment.AttrPublic|segment.AttrUninit)

	f.CodeSeg, f.DataSeg, f.UdataSeg, f.ModelGroup = code, dataSeg, udataSeg, group
	state.AssumeSym[token.SR_CS] = group
	state.AssumeSym[token.SR_DS] = group
	state.AssumeSym[token.SR_ES] = group
	state.AssumeSym[token.SR_SS] = group
}

func modelSection(state *State, f *IFILE, lex *lexer.Lexer, name string) *symtab.Symbol {
	if f.Symtab.Lookup(name) != nil {
		state.errorAtLex(lex, "cannot create implicit segment, name already used: %s", name)
		return nil
	}
	seg, err := f.Segs.CreateSegment(name)
	if err != nil {
		state.errorAtLex(lex, "%s", err)
		return nil
	}
	f.Segs.Segment(seg).P2Align = 1
	return f.Symtab.InsertSection(name, symtab.SectionSegment, int(seg))
}

func modelGroupSection(state *State, f *IFILE, lex *lexer.Lexer, name string) *symtab.Symbol {
	if f.Symtab.Lookup(name) != nil {
		state.errorAtLex(lex, "cannot create implicit group, name already used: %s", name)
		return nil
	}
	group, err := f.Segs.CreateGroup(name)
	if err != nil {
		state.errorAtLex(lex, "%s", err)
		return nil
	}
	return f.Symtab.InsertSection(name, symtab.SectionGroup, int(group))
}

// performCodeseg/performDataseg/performUdataseg reopen the memory
// model's implicit segments, re-asserting all four ASSUME bindings to
// the model group, matching common.c's perform_codeseg/perform_dataseg/
// perform_udataseg.
func performCodeseg(state *State, f *IFILE, lex *lexer.Lexer) {
	if f.ModelGroup == nil {
		state.errorAtLex(lex, "no memory model has been set")
		return
	}
	assumeModelGroup(state, f)
	state.CurSeg = segment.SegNo(f.CodeSeg.Ordinal())
}

func performDataseg(state *State, f *IFILE, lex *lexer.Lexer) {
	if f.ModelGroup == nil {
		state.errorAtLex(lex, "no memory model has been set")
		return
	}
	assumeModelGroup(state, f)
	state.CurSeg = segment.SegNo(f.DataSeg.Ordinal())
}

func performUdataseg(state *State, f *IFILE, lex *lexer.Lexer) {
	if f.ModelGroup == nil {
		state.errorAtLex(lex, "no memory model has been set")
		return
	}
	assumeModelGroup(state, f)
	state.CurSeg = segment.SegNo(f.UdataSeg.Ordinal())
}

func assumeModelGroup(state *State, f *IFILE) {
	g := f.ModelGroup
	state.AssumeSym[token.SR_CS] = g
	state.AssumeSym[token.SR_DS] = g
	state.AssumeSym[token.SR_ES] = g
	state.AssumeSym[token.SR_SS] = g
}

// doOrg advances the current segment's PC, matching pass1.c's do_org.
// It may only move it forward (spec.md §4's supplemented ORG rule).
func doOrg(state *State, f *IFILE, lex *lexer.Lexer) {
	if state.CurSeg == segment.NoSeg {
		state.errorAtLex(lex, "ORG outside a segment")
		lex.DiscardLine()
		return
	}
	if f.Segs.Segment(state.CurSeg).Uninit() {
		state.errorAtLex(lex, "ORG is not allowed in an UNINIT segment")
		lex.DiscardLine()
		return
	}
	if lex.Next() != token.NUM {
		state.errorAtLex(lex, "numeric origin expected")
		lex.DiscardLine()
		return
	}
	val := uint32(lex.Val.Num)
	if val < f.Segs.PC(state.CurSeg) {
		state.errorAtLex(lex, "ORG may not move the program counter backwards")
	} else {
		f.Segs.SetPC(state.CurSeg, val)
	}
	lex.Next()
}

// doAlign pads the current segment's PC up to the next boundary,
// matching pass1.c's do_align/parse_alignment, recording the padding
// as the IREC's size.
func doAlign(state *State, f *IFILE, lex *lexer.Lexer, irec *IREC) {
	if state.CurSeg == segment.NoSeg {
		state.errorAtLex(lex, "ALIGN outside a segment")
		lex.DiscardLine()
		return
	}
	lex.Next()
	p2, ok := parseAlignment(state, lex)
	if !ok {
		return
	}
	pc := f.Segs.PC(state.CurSeg)
	aligned := p2Aligned(pc, p2)
	irec.Size = aligned - pc
	f.Segs.SetPC(state.CurSeg, aligned)
}

func parseAlignment(state *State, lex *lexer.Lexer) (uint, bool) {
	if lex.Tok != token.NUM {
		state.errorAtLex(lex, "alignment value expected")
		lex.DiscardLine()
		return 0, false
	}
	val := lex.Val.Num
	lex.Next()
	if val <= 0 {
		state.errorAtLex(lex, "alignment must be a positive power of two")
		return 0, false
	}
	var p2 uint
	for val&1 == 0 {
		val >>= 1
		p2++
	}
	if val != 1 {
		state.errorAtLex(lex, "alignment must be a power of two")
		return 0, false
	}
	if p2 > segment.MaxP2Align {
		state.errorAtLex(lex, "alignment exceeds the maximum of %d", 1<<segment.MaxP2Align)
		return 0, false
	}
	return p2, true
}

func p2Aligned(pc uint32, p2 uint) uint32 {
	mask := uint32(1)<<p2 - 1
	return (pc + mask) &^ mask
}

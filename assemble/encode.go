// Package assemble implements the encoding pass (pass 3) and the
// top-level Run orchestrator that chains Pass0 (source scan) through
// Pass1, the resize pass and encoding into one OFILE stream, per
// spec.md §4.9-§4.12. Grounded on resize.go's re-lex-from-OperandPos
// technique, reused a third time now that every symbol position, every
// segment-override decision and every Jcc expansion is permanently
// fixed.
package assemble

import (
	"github.com/xyproto/bas/data"
	"github.com/xyproto/bas/diag"
	"github.com/xyproto/bas/expr"
	"github.com/xyproto/bas/ifile"
	"github.com/xyproto/bas/instr"
	"github.com/xyproto/bas/lexer"
	"github.com/xyproto/bas/ofile"
	"github.com/xyproto/bas/segment"
	"github.com/xyproto/bas/symtab"
	"github.com/xyproto/bas/token"
)

// Encode walks f's finalised IREC stream and emits the logical object
// directive stream, per spec.md §4.9's ordering: groups, segments,
// CASED, external definitions (stable ID order), publics, the IREC
// body, an optional START, then one OPEN_SEGMENT/SPACE/CLOSE_SEGMENT
// reservation per UNINIT segment.
func Encode(f *ifile.IFILE, sink *diag.Sink, caseSensitive bool) *ofile.Writer {
	w := ofile.New()

	for g := 0; g < f.Segs.GroupCount(); g++ {
		w.BeginGroup(f.Segs.Group(segment.GroupNo(g)).Name, g)
		w.EndGroup()
	}
	for s := 0; s < f.Segs.SegmentCount(); s++ {
		seg := f.Segs.Segment(segment.SegNo(s))
		w.BeginSegment(seg.Name, s, seg.P2Align, seg.Public(), seg.Stack(), seg.Uninit())
		w.EndSegment()
	}
	if caseSensitive {
		w.Cased()
	}
	for _, sym := range f.Symtab.Externals() {
		w.BeginExtrnDef(sym.Name(), sym.ExternalID())
		w.EndExtrnDef()
	}
	for _, sym := range f.Symtab.All() {
		if sym.Kind() == symtab.Relative && sym.Public() && !sym.External() {
			w.BeginPublic(sym.Name(), uint16(sym.Offset()))
			w.EndPublic()
		}
	}

	state := ifile.NewState(sink)
	lex := lexer.New(sink)
	f.ResetPC()
	for _, irec := range f.Recs {
		encodeIrec(state, f, lex, irec, w, sink)
	}

	if f.StartLabel != nil {
		w.BeginStart(uint16(f.StartLabel.Offset()))
		w.EndStart()
	}

	for s := 0; s < f.Segs.SegmentCount(); s++ {
		seg := f.Segs.Segment(segment.SegNo(s))
		if seg.Uninit() {
			w.OpenCloseUninit(uint16(f.Segs.PC(segment.SegNo(s))))
		}
	}

	return w
}

func encodeIrec(state *ifile.State, f *ifile.IFILE, lex *lexer.Lexer, irec *ifile.IREC, w *ofile.Writer, sink *diag.Sink) {
	lex.Begin(f.Source.Name, f.Lineno(irec), f.Text(irec))
	if state.CurSeg != segment.NoSeg {
		if sym := f.Symtab.Lookup("$"); sym != nil && sym.Kind() == symtab.Relative {
			symtab.DefineRelative(sym, int(state.CurSeg), f.Segs.PC(state.CurSeg))
		}
	}

	leading := ""
	if lex.Tok == token.LABEL {
		leading = lex.Val.Str
		next := lex.Next()
		if next == token.EQU {
			return
		}
		if next == token.COLON {
			lex.Next()
		}
	}

	if lex.Tok == token.SEGMENT && leading != "" {
		// "name SEGMENT": the segment's name precedes the keyword.
		if sym := f.Symtab.Lookup(leading); sym != nil && sym.Kind() == symtab.Section && sym.SectionKind() == symtab.SectionSegment {
			switchSeg(state, w, segment.SegNo(sym.Ordinal()))
		}
		return
	}

	switch {
	case lex.Tok == token.EOL:
		return
	case token.IsDirective(lex.Tok):
		encodeDirective(state, f, lex, irec, w)
	case token.IsOpcode(lex.Tok) || token.IsRepeat(lex.Tok):
		encodeInstruction(state, f, lex, irec, w, sink)
	}
}

func switchSeg(state *ifile.State, w *ofile.Writer, newSeg segment.SegNo) {
	if state.CurSeg != segment.NoSeg {
		w.CloseSegment()
	}
	state.CurSeg = newSeg
	if newSeg != segment.NoSeg {
		w.OpenSegment()
	}
}

func assumeModelGroup(state *ifile.State, f *ifile.IFILE) {
	g := f.ModelGroup
	state.AssumeSym[token.SR_CS] = g
	state.AssumeSym[token.SR_DS] = g
	state.AssumeSym[token.SR_ES] = g
	state.AssumeSym[token.SR_SS] = g
}

func encodeDirective(state *ifile.State, f *ifile.IFILE, lex *lexer.Lexer, irec *ifile.IREC, w *ofile.Writer) {
	switch lex.Tok {
	case token.SEGMENT:
		if lex.Next() != token.LABEL {
			return
		}
		sym := f.Symtab.Lookup(lex.Val.Str)
		if sym == nil || sym.Kind() != symtab.Section || sym.SectionKind() != symtab.SectionSegment {
			return
		}
		switchSeg(state, w, segment.SegNo(sym.Ordinal()))
	case token.ENDS, token.END:
		switchSeg(state, w, segment.NoSeg)
	case token.CODESEG:
		if f.ModelGroup != nil {
			assumeModelGroup(state, f)
			switchSeg(state, w, segment.SegNo(f.CodeSeg.Ordinal()))
		}
	case token.DATASEG:
		if f.ModelGroup != nil {
			assumeModelGroup(state, f)
			switchSeg(state, w, segment.SegNo(f.DataSeg.Ordinal()))
		}
	case token.UDATASEG:
		if f.ModelGroup != nil {
			assumeModelGroup(state, f)
			switchSeg(state, w, segment.SegNo(f.UdataSeg.Ordinal()))
		}
	case token.ASSUME:
		encodeAssume(state, f, lex)
	case token.ORG:
		encodeOrg(state, f, lex)
	case token.ALIGN:
		encodeAlign(state, f, lex, irec, w)
	case token.JUMPS:
		state.Jumps = true
	case token.P8086, token.P8087, token.PNO87, token.P287, token.P286, token.P286N:
		state.CPU = instr.SelectCPU(state.CPU, lex.Tok)
	case token.DB, token.DW, token.DD, token.DQ, token.DT:
		encodeData(state, f, irec, w)
	}
}

func encodeAssume(state *ifile.State, f *ifile.IFILE, lex *lexer.Lexer) {
	for {
		if lex.Next() != token.SREG {
			return
		}
		reg := lex.Val.RegNo
		if lex.Next() != token.COLON {
			return
		}
		if lex.Next() != token.LABEL {
			return
		}
		if sym := f.Symtab.Lookup(lex.Val.Str); sym != nil && sym.Kind() == symtab.Section {
			state.AssumeSym[reg] = sym
		}
		if lex.Next() != token.COMMA {
			return
		}
	}
}

func encodeOrg(state *ifile.State, f *ifile.IFILE, lex *lexer.Lexer) {
	if lex.Next() != token.NUM || state.CurSeg == segment.NoSeg {
		return
	}
	val := uint32(lex.Val.Num)
	if val >= f.Segs.PC(state.CurSeg) {
		f.Segs.SetPC(state.CurSeg, val)
	}
}

// encodeAlign emits irec.Size filler bytes (zero-filled; the value of
// alignment padding is never semantically significant) and advances
// the segment PC to match.
func encodeAlign(state *ifile.State, f *ifile.IFILE, lex *lexer.Lexer, irec *ifile.IREC, w *ofile.Writer) {
	if state.CurSeg == segment.NoSeg {
		return
	}
	if irec.Size > 0 {
		w.Code(make([]byte, irec.Size))
	}
	f.Segs.IncPC(state.CurSeg, irec.Size)
}

func encodeData(state *ifile.State, f *ifile.IFILE, irec *ifile.IREC, w *ofile.Writer) {
	if state.CurSeg == segment.NoSeg {
		return
	}
	env := &expr.Env{Symtab: f.Symtab}
	buf := data.Emit(env, irec.DataWidth, irec.Data)
	w.Code(buf)
	f.Segs.IncPC(state.CurSeg, irec.Size)
}


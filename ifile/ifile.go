package ifile

import (
	"github.com/xyproto/bas/data"
	"github.com/xyproto/bas/instr"
	"github.com/xyproto/bas/segment"
	"github.com/xyproto/bas/symtab"
	"github.com/xyproto/bas/token"
)

// lineRef identifies which Source (the real file, or the injections
// buffer) an IREC's text lives in, per the reference IREC.si sign
// convention ("positive => source line, negative => injection"),
// expressed here as an explicit tag rather than a signed overload.
type lineRef int

const (
	fromSource lineRef = iota
	fromInjection
)

// IREC is one intermediate-file record: a non-blank source line after
// pass 1 has classified it, per spec.md §3/§4.6.
type IREC struct {
	lineKind  lineRef
	lineIndex int

	Label *symtab.Symbol
	Rep   token.Kind
	Op    token.Kind

	// OperandPos is the lexer column pass 1 left off at after the label
	// and opcode/directive token, so the resize and encoding passes can
	// re-lex only the operand list instead of the whole line.
	OperandPos int

	// NearJumpSize is 0 for an ordinary instruction, or 1 for a direct
	// JMP whose short/near width pass 1 and the resize pass choose; that
	// width is carried in Size.
	NearJumpSize int

	Def  *instr.INSDEF
	Size uint32

	// Data and DataWidth hold a DB/DW/DD/DQ/DT directive's parsed
	// data-list, set by pass 1, re-walked unchanged by later passes.
	Data      []data.Node
	DataWidth data.Width

	// expanded marks a Jcc IREC the resize pass has already rewritten
	// into reversed-condition-plus-JMP form, so a later iteration never
	// re-expands it.
	expanded bool
}

// IFILE is the whole intermediate file: the ordered IREC sequence plus
// the symbol/segment/group tables and model-section bookkeeping that
// every pass shares, per spec.md §3.
type IFILE struct {
	Source *Source
	Recs   []*IREC

	Symtab *symtab.Table
	Segs   *segment.Table

	StartLabel       *symtab.Symbol
	ProvisionalSizes bool

	ModelGroup *symtab.Symbol
	CodeSeg    *symtab.Symbol
	DataSeg    *symtab.Symbol
	UdataSeg   *symtab.Symbol

	Injections *Source
}

// New creates an empty IFILE over src, matching new_ifile.
func New(src *Source, caseSensitive bool) *IFILE {
	return &IFILE{
		Source:     src,
		Symtab:     symtab.New(caseSensitive),
		Segs:       segment.New(),
		Injections: NewSource("(injections)"),
	}
}

// NewIrec appends a fresh IREC pointing at source line si and returns it.
func (f *IFILE) NewIrec(sourceIndex int) *IREC {
	irec := &IREC{lineKind: fromSource, lineIndex: sourceIndex}
	f.Recs = append(f.Recs, irec)
	return irec
}

// InsertAfter splices a fresh IREC immediately after after and returns
// it, used by the resize pass's short-jump expansion (spec.md §4.7) to
// grow the record stream in place.
func (f *IFILE) InsertAfter(after *IREC) *IREC {
	for i, r := range f.Recs {
		if r == after {
			irec := &IREC{}
			f.Recs = append(f.Recs, nil)
			copy(f.Recs[i+2:], f.Recs[i+1:])
			f.Recs[i+1] = irec
			return irec
		}
	}
	panic("ifile: InsertAfter: record not found")
}

// Inject appends a synthetic line (an expanded Jcc/JMP, or an @@N
// label line) to the injections buffer, returning its index.
func (f *IFILE) Inject(text string) int {
	return f.Injections.Add(text)
}

// Text returns the line an IREC was parsed from.
func (f *IFILE) Text(irec *IREC) string {
	if irec.lineKind == fromInjection {
		return f.Injections.Text(irec.lineIndex)
	}
	return f.Source.Text(irec.lineIndex)
}

// Lineno returns the 1-based source line number an IREC was parsed
// from, for diagnostics; injected lines report the line of the
// instruction they were expanded from isn't tracked separately, so they
// report their own position in the injections buffer.
func (f *IFILE) Lineno(irec *IREC) int {
	return irec.lineIndex + 1
}

func (f *IFILE) setInject(irec *IREC, text string) {
	irec.lineKind = fromInjection
	irec.lineIndex = f.Inject(text)
}

// ResetPC zeroes every segment's program counter, run at the start of
// pass 1 and at the start of each resize-pass iteration.
func (f *IFILE) ResetPC() { f.Segs.ResetPC() }

// RelocatableRelative reports whether sym's value is only known at link
// time because its segment is PUBLIC (combinable with same-named
// segments in other modules) or a member of a GROUP (position within
// the group not fixed until link time), per ifile.c's
// relocatable_relative.
func RelocatableRelative(segs *segment.Table, sym *symtab.Symbol) bool {
	if sym.Kind() != symtab.Relative {
		return false
	}
	seg := segment.SegNo(sym.Seg())
	if int(seg) < 0 || int(seg) >= segs.SegmentCount() {
		return false
	}
	s := segs.Segment(seg)
	return s.Public() || s.Group != segment.NoGroup
}

package ifile

import (
	"github.com/xyproto/bas/segment"
	"github.com/xyproto/bas/symtab"
)

// defineDollar anchors the special "$" symbol at the current segment's
// PC before an IREC's own operands are parsed, matching common.c's
// define_dollar: "$" always means the address of the instruction
// referencing it, re-evaluated fresh on every pass and every resize
// iteration.
func defineDollar(state *State, f *IFILE) {
	if state.CurSeg == segment.NoSeg {
		return
	}
	sym := f.Symtab.Lookup("$")
	if sym == nil {
		sym = f.Symtab.InsertRelative("$")
	}
	if sym.Kind() != symtab.Relative {
		return
	}
	symtab.DefineRelative(sym, int(state.CurSeg), f.Segs.PC(state.CurSeg))
}

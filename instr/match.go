package instr

import (
	"github.com/xyproto/bas/operand"
	"github.com/xyproto/bas/token"
)

// index maps an opcode token to the ordered chain of its table rows,
// built once at program start (spec.md §4.4/§9: "lazily built index
// maps each opcode token to the singly-linked chain of its rows").
var index map[token.Kind][]*INSDEF

func buildIndex() {
	index = make(map[token.Kind][]*INSDEF)
	for i := range Table {
		row := &Table[i]
		index[row.Op] = append(index[row.Op], row)
	}
}

// operandMatches reports whether op's flags satisfy a row's required
// flag set for one operand slot, per spec.md §4.4: "OF_NONE matches iff
// the operand type is OT_NONE", otherwise a contains-all test.
func operandMatches(want operand.FlagSet, op *operand.Operand) bool {
	if want == 0 {
		return op == nil
	}
	if op == nil {
		return false
	}
	return op.Flags.Contains(want)
}

// Find returns the first row for op whose operand-flag requirements are
// all satisfied by oper1/oper2/oper3 (nil for an absent operand) and
// whose CPU tag is enabled under mask, per spec.md §4.4's find_instruc.
// Table order is significant and deliberately preserved: more specific
// rows are listed before more general ones.
func Find(mask Mask, op token.Kind, oper1, oper2, oper3 *operand.Operand) *INSDEF {
	for _, row := range index[op] {
		if !Enabled(mask, row.CPU) {
			continue
		}
		if !operandMatches(row.Oper1, oper1) {
			continue
		}
		if !operandMatches(row.Oper2, oper2) {
			continue
		}
		if !operandMatches(row.Oper3, oper3) {
			continue
		}
		return row
	}
	return nil
}

// WaitNeeded reports how many 0x9B bytes def's wait category demands
// under the current CPU mask, grounded on Assembler/common.c's
// wait_needed: NOPR needs none, W286 always needs exactly one (the
// 80286 still requires it), WAIT needs one unless the 80286-or-later
// real-mode instruction set is enabled (cpu_enabled(P286N)), in which
// case the processor's own synchronisation makes it unnecessary, and
// WAI2 needs two, falling to one under that same P286N gate.
func WaitNeeded(mask Mask, def *INSDEF) int {
	switch def.Wait {
	case Wait:
		if Enabled(mask, P286N) {
			return 0
		}
		return 1
	case Wait286:
		return 1
	case Wait2:
		if Enabled(mask, P286N) {
			return 1
		}
		return 2
	default:
		return 0
	}
}

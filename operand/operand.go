// Package operand implements OPERAND, the classified form of one
// assembly operand, and the parser that turns lexer input into one.
// Grounded on _examples/original_source/Assembler/operand.h (the
// OPERAND union) and the operand-parsing rules of parse.c's
// parse_operands family, reshaped as a flat Go struct: the reference's
// C union is inherently "all fields present, interpret by tag", which
// spec.md §9 explicitly asks a rewrite to avoid, so each variant gets
// its own typed getter guarded by Class.
package operand

import "github.com/xyproto/bas/token"

// Class identifies which arm of Operand.Reg/Mem/Imm/Jump is valid.
type Class int

const (
	None Class = iota
	Reg
	Sreg
	Mem
	Imm
	Jump
	ST
)

// Flag is one bit of the multiset an INSDEF row's oper flags are
// matched against, per spec.md §4.3/§4.4. Grouped loosely by what kind
// of operand produces them.
type Flag uint64

const (
	FNone Flag = 1 << iota
	FRM           // any register-or-memory operand
	FRM8          // byte-sized register-or-memory
	FRM16         // word-sized register-or-memory
	FREG8         // byte general register
	FREG16        // word general register
	FAL
	FCL
	FAX
	FDX
	FSREG
	FSTT // ST or ST(0)
	FSTI // ST(1..7)
	FINDIR
	FMEM8
	FMEM16
	FMEM32
	FMEM64
	FMEM80
	FIMM
	FIMM8  // fits signed [-128,127]
	FIMM8U // fits unsigned [0,255]
	FOF1   // literal immediate value 1
	FOF3   // literal immediate value 3
	FSHORTJ
	FNEARJ
	FFARJ
)

// FlagSet is a bitset of Flag values, matching spec.md §9's guidance to
// key operand classes by a bitset rather than a length-bounded array.
type FlagSet uint64

func (s FlagSet) Has(f Flag) bool  { return s&FlagSet(f) != 0 }
func (s *FlagSet) Add(f Flag)      { *s |= FlagSet(f) }
func (s FlagSet) Contains(req FlagSet) bool {
	return s&req == req
}

// DispType discriminates a memory operand's displacement payload.
type DispType int

const (
	NoDisp DispType = iota
	AbsDisp
	RelDisp
)

// ImmKind discriminates an immediate operand's payload.
type ImmKind int

const (
	ImmAbs ImmKind = iota
	ImmOffset
	ImmSeg
	ImmSection
)

// JumpDistance is the selected branch width.
type JumpDistance int

const (
	DistShort JumpDistance = iota
	DistNear
	DistFar
)

// JumpTargetKind discriminates a jump operand's target payload.
type JumpTargetKind int

const (
	TargetAbs JumpTargetKind = iota
	TargetLabel
	TargetFar
)

// RegPayload is the Reg/Sreg/ST variant's payload: a register number
// and its size in bytes (1, 2 or 10 for ST).
type RegPayload struct {
	No   int
	Size int
}

// MemPayload is the Mem variant's payload.
type MemPayload struct {
	BaseReg      int // token.AX..token.DI register numbers, or -1 if absent
	IndexReg     int
	DispType     DispType
	DispVal      int64
	DispLabel    SymbolRef
	SregOverride int // token.SR_ES..SR_DS, or -1 if none given explicitly
	SizeOverride int // 0, 1, 2, 4, 8, 10
}

// ImmPayload is the Imm variant's payload.
type ImmPayload struct {
	Kind  ImmKind
	Val   int64
	Label SymbolRef
}

// JumpPayload is the Jump variant's payload.
type JumpPayload struct {
	Distance   JumpDistance
	TargetKind JumpTargetKind
	Abs        uint32
	Label      SymbolRef
	FarSeg     uint16
	FarOff     uint16
}

// SymbolRef is the minimal symbol-identity surface operand needs,
// satisfied by *symtab.Symbol without operand importing symtab's full
// API (kept thin so operand stays leaf-level in the dependency graph).
type SymbolRef interface {
	Name() string
}

// Operand is the classified form of one parsed operand.
type Operand struct {
	Class Class
	Flags FlagSet

	Reg  RegPayload
	Mem  MemPayload
	Imm  ImmPayload
	Jump JumpPayload
}

// BaseNone marks MemPayload.BaseReg/IndexReg as absent, since 0 is a
// valid register number (AX/BX...).
const BaseNone = -1

func New() *Operand {
	return &Operand{Mem: MemPayload{BaseReg: BaseNone, IndexReg: BaseNone, SregOverride: BaseNone}}
}

// reg8Flag/reg16Flag map a concrete register number to the AL/CL/AX/DX
// companion flags the matching rules single out (spec.md §4.3).
func reg8Flags(no int) FlagSet {
	var s FlagSet
	s.Add(FRM)
	s.Add(FRM8)
	s.Add(FREG8)
	switch no {
	case token.AL:
		s.Add(FAL)
	case token.CL:
		s.Add(FCL)
	}
	return s
}

func reg16Flags(no int) FlagSet {
	var s FlagSet
	s.Add(FRM)
	s.Add(FRM16)
	s.Add(FREG16)
	switch no {
	case token.AX:
		s.Add(FAX)
	case token.DX:
		s.Add(FDX)
	}
	return s
}

// NewReg8/NewReg16/NewSreg build register operands directly, for callers
// (the parser) that have already classified the token.
func NewReg8(no int) *Operand {
	o := New()
	o.Class = Reg
	o.Reg = RegPayload{No: no, Size: 1}
	o.Flags = reg8Flags(no)
	return o
}

func NewReg16(no int) *Operand {
	o := New()
	o.Class = Reg
	o.Reg = RegPayload{No: no, Size: 2}
	o.Flags = reg16Flags(no)
	return o
}

func NewSreg(no int) *Operand {
	o := New()
	o.Class = Sreg
	o.Reg = RegPayload{No: no, Size: 2}
	o.Flags.Add(FSREG)
	return o
}

// NewST builds an ST or ST(n) operand. n==0 and the bare ST form both
// count as STT; 0<n<8 is STI; n outside [0,7] is a caller error (the
// parser reports it before calling NewST).
func NewST(n int) *Operand {
	o := New()
	o.Class = ST
	o.Reg = RegPayload{No: n, Size: 10}
	if n == 0 {
		o.Flags.Add(FSTT)
	} else {
		o.Flags.Add(FSTI)
	}
	return o
}

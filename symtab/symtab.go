// Package symtab implements the assembler's symbol table: a hashed
// name-to-record mapping whose records are a discriminated union over
// unknown, relative, absolute and section symbols.
package symtab

import (
	"fmt"
	"strings"
)

// Kind discriminates the symbol union.
type Kind int

const (
	Unknown Kind = iota
	Relative
	Absolute
	Section
)

// SectionKind distinguishes a SECTION symbol's referent.
type SectionKind int

const (
	SectionSegment SectionKind = iota
	SectionGroup
)

// ID identifies a symbol by its insertion slot, stable for the life of
// the table.
type ID int

const NoExternal = -1

// Symbol is the discriminated union described in spec.md §3. Only the
// fields relevant to Kind are meaningful.
type Symbol struct {
	name    string
	kind    Kind
	defined bool

	// Relative
	seg        int
	offset     uint32
	public     bool
	externalID int // NoExternal unless external
	dataSize   uint

	// Absolute
	absVal int64

	// Section
	sectionKind SectionKind
	ordinal     int
}

func (s *Symbol) Name() string    { return s.name }
func (s *Symbol) Kind() Kind      { return s.kind }
func (s *Symbol) Defined() bool   { return s.defined }
func (s *Symbol) Seg() int        { return s.seg }
func (s *Symbol) Offset() uint32  { return s.offset }
func (s *Symbol) Public() bool    { return s.public }
func (s *Symbol) External() bool  { return s.externalID != NoExternal }
func (s *Symbol) ExternalID() int { return s.externalID }
func (s *Symbol) DataSize() uint  { return s.dataSize }
func (s *Symbol) AbsValue() int64 { return s.absVal }

func (s *Symbol) SectionKind() SectionKind { return s.sectionKind }
func (s *Symbol) Ordinal() int             { return s.ordinal }

func (s *Symbol) SetDataSize(n uint) { s.dataSize = n }
func (s *Symbol) SetPublic()         { s.public = true }

// Table is the symbol table. Name comparisons respect CaseSensitive.
type Table struct {
	CaseSensitive bool

	byName   map[string]*Symbol
	order    []*Symbol
	nextExtI int
	externs  []*Symbol // insertion-ordered external list, indexed by ExternalID
	nextLocal int
}

// New creates an empty symbol table.
func New(caseSensitive bool) *Table {
	return &Table{CaseSensitive: caseSensitive, byName: make(map[string]*Symbol)}
}

func (t *Table) key(name string) string {
	if t.CaseSensitive {
		return name
	}
	return strings.ToUpper(name)
}

// Lookup returns the symbol named name, or nil if undeclared.
func (t *Table) Lookup(name string) *Symbol {
	return t.byName[t.key(name)]
}

func (t *Table) insert(name string, kind Kind) *Symbol {
	sym := &Symbol{name: name, kind: kind, externalID: NoExternal}
	t.byName[t.key(name)] = sym
	t.order = append(t.order, sym)
	return sym
}

// InsertUnknown inserts a forward reference of kind Unknown. It is an
// error to call this for a name that already exists; callers must
// Lookup first.
func (t *Table) InsertUnknown(name string) *Symbol {
	return t.insert(name, Unknown)
}

// InsertRelative inserts an undefined RELATIVE symbol (not yet anchored
// to a segment/offset; see DefineRelative).
func (t *Table) InsertRelative(name string) *Symbol {
	return t.insert(name, Relative)
}

// InsertAbsolute inserts an undefined ABSOLUTE symbol.
func (t *Table) InsertAbsolute(name string) *Symbol {
	return t.insert(name, Absolute)
}

// InsertSection inserts a SECTION symbol (segment or group name).
func (t *Table) InsertSection(name string, kind SectionKind, ordinal int) *Symbol {
	sym := t.insert(name, Section)
	sym.sectionKind = kind
	sym.ordinal = ordinal
	sym.defined = true
	return sym
}

// InsertExternal inserts a RELATIVE symbol that is external to seg,
// assigning the next stable external ID.
func (t *Table) InsertExternal(name string, seg int) *Symbol {
	sym := t.insert(name, Relative)
	sym.seg = seg
	sym.externalID = t.nextExtI
	t.nextExtI++
	t.externs = append(t.externs, sym)
	sym.defined = true
	return sym
}

// PromoteToRelative turns an UNKNOWN symbol into an undefined RELATIVE
// symbol in place, as happens when an expression first references it.
func PromoteToRelative(sym *Symbol) {
	sym.kind = Relative
}

// DefineRelative anchors sym at (seg, offset). Re-defining an already
// defined symbol is a caller error (checked by callers, who hold the
// source location needed for diagnostics).
func DefineRelative(sym *Symbol, seg int, offset uint32) {
	sym.seg = seg
	sym.offset = offset
	sym.defined = true
}

// UpdateRelative rewrites the anchor of an already-defined relative
// symbol, used by the resize pass when a local label's position shifts.
func UpdateRelative(sym *Symbol, seg int, offset uint32) {
	sym.seg = seg
	sym.offset = offset
}

// DefineAbsolute assigns an EQU/`=` value.
func DefineAbsolute(sym *Symbol, val int64) {
	sym.absVal = val
	sym.defined = true
}

// InsertLocal inserts a fresh, uniquely-named undefined RELATIVE symbol
// for the resize pass's short-jump expansion (spec.md §4.7's injected
// "@@N" label), numbered per-table so repeated expansions never collide.
func (t *Table) InsertLocal() *Symbol {
	name := fmt.Sprintf("@@%d", t.nextLocal)
	t.nextLocal++
	return t.insert(name, Relative)
}

// Externals returns the external symbols in stable, definition-order
// external-ID order (0..N-1).
func (t *Table) Externals() []*Symbol { return t.externs }

// All returns every symbol in insertion order, for undefined-symbol
// reporting and intermediate printing.
func (t *Table) All() []*Symbol { return t.order }

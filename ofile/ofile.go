// Package ofile implements OFILE, the ordered stream of typed object
// tokens the encoding pass emits to, per spec.md §3/§6/§9. The actual
// OMF byte layout a linker would consume is out of scope (spec.md §1);
// what matters here is the logical directive stream itself, so Writer
// is an in-memory accumulator a test can inspect record-by-record
// rather than a binary file format, per the Design Notes §9 guidance
// to "define the directive enum and a writer trait" the encoder emits
// to.
package ofile

import (
	"fmt"
	"io"
)

// Tag names one OBJ_* directive, per spec.md §6's table.
type Tag int

const (
	BeginGroup Tag = iota
	EndGroup
	BeginSegment
	EndSegment
	BeginPublic
	EndPublic
	BeginExtrnDef
	EndExtrnDef
	BeginExtrnUse
	EndExtrnUse
	BeginOffset
	EndOffset
	BeginSegAddr
	EndSegAddr
	BeginGroupAddr
	EndGroupAddr
	BeginGroupAbsJump
	EndGroupAbsJump
	BeginStart
	EndStart

	Ordinal
	SegNo
	GroupNo
	P2Align

	Name
	Code
	Ds

	Pos
	Offset
	ID
	Space
	Dw

	Dd

	Dq
	Dt

	Db

	Public
	Stack
	Jump
	Cased
	OpenSegment
	CloseSegment
)

func (t Tag) String() string {
	switch t {
	case BeginGroup:
		return "BEGIN_GROUP"
	case EndGroup:
		return "END_GROUP"
	case BeginSegment:
		return "BEGIN_SEGMENT"
	case EndSegment:
		return "END_SEGMENT"
	case BeginPublic:
		return "BEGIN_PUBLIC"
	case EndPublic:
		return "END_PUBLIC"
	case BeginExtrnDef:
		return "BEGIN_EXTRN_DEF"
	case EndExtrnDef:
		return "END_EXTRN_DEF"
	case BeginExtrnUse:
		return "BEGIN_EXTRN_USE"
	case EndExtrnUse:
		return "END_EXTRN_USE"
	case BeginOffset:
		return "BEGIN_OFFSET"
	case EndOffset:
		return "END_OFFSET"
	case BeginSegAddr:
		return "BEGIN_SEG_ADDR"
	case EndSegAddr:
		return "END_SEG_ADDR"
	case BeginGroupAddr:
		return "BEGIN_GROUP_ADDR"
	case EndGroupAddr:
		return "END_GROUP_ADDR"
	case BeginGroupAbsJump:
		return "BEGIN_GROUP_ABS_JUMP"
	case EndGroupAbsJump:
		return "END_GROUP_ABS_JUMP"
	case BeginStart:
		return "BEGIN_START"
	case EndStart:
		return "END_START"
	case Ordinal:
		return "ORDINAL"
	case SegNo:
		return "SEGNO"
	case GroupNo:
		return "GROUPNO"
	case P2Align:
		return "P2ALIGN"
	case Name:
		return "NAME"
	case Code:
		return "CODE"
	case Ds:
		return "DS"
	case Pos:
		return "POS"
	case Offset:
		return "OFFSET"
	case ID:
		return "ID"
	case Space:
		return "SPACE"
	case Dw:
		return "DW"
	case Dd:
		return "DD"
	case Dq:
		return "DQ"
	case Dt:
		return "DT"
	case Db:
		return "DB"
	case Public:
		return "PUBLIC"
	case Stack:
		return "STACK"
	case Jump:
		return "JUMP"
	case Cased:
		return "CASED"
	case OpenSegment:
		return "OPEN_SEGMENT"
	case CloseSegment:
		return "CLOSE_SEGMENT"
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// Record is one directive in the stream. Only the field matching Tag's
// documented payload shape (spec.md §6) is meaningful for any given
// record: signal tags carry none, u8/u16/u32/u64 tags carry Num, and
// bytes+length tags (NAME/CODE/DS) carry Bytes.
type Record struct {
	Tag   Tag
	Num   uint64
	Bytes []byte
}

// Writer accumulates the OFILE record stream the encoding pass
// produces. It is the "writer trait" spec.md's Design Notes call for:
// tests capture Records directly rather than parsing a byte format.
type Writer struct {
	Records []Record
}

func New() *Writer { return &Writer{} }

func (w *Writer) signal(t Tag) { w.Records = append(w.Records, Record{Tag: t}) }

func (w *Writer) u8(t Tag, v uint8)   { w.Records = append(w.Records, Record{Tag: t, Num: uint64(v)}) }
func (w *Writer) u16(t Tag, v uint16) { w.Records = append(w.Records, Record{Tag: t, Num: uint64(v)}) }
func (w *Writer) u32(t Tag, v uint32) { w.Records = append(w.Records, Record{Tag: t, Num: uint64(v)}) }
func (w *Writer) u64(t Tag, v uint64) { w.Records = append(w.Records, Record{Tag: t, Num: v}) }
func (w *Writer) bytes(t Tag, b []byte) {
	cp := make([]byte, len(b))
	copy(cp, b)
	w.Records = append(w.Records, Record{Tag: t, Bytes: cp})
}

func (w *Writer) BeginGroup(name string, groupNo int) {
	w.signal(BeginGroup)
	w.bytes(Name, []byte(name))
	w.u8(GroupNo, uint8(groupNo))
}
func (w *Writer) EndGroup() { w.signal(EndGroup) }

func (w *Writer) BeginSegment(name string, segNo int, p2align uint, public, stack, uninit bool) {
	w.signal(BeginSegment)
	w.bytes(Name, []byte(name))
	w.u8(SegNo, uint8(segNo))
	w.u8(P2Align, uint8(p2align))
	if public {
		w.u8(Public, 1)
	}
	if stack {
		w.u8(Stack, 1)
	}
	if uninit {
		w.signal(OpenSegment)
		w.signal(CloseSegment)
	}
}
func (w *Writer) EndSegment() { w.signal(EndSegment) }

func (w *Writer) Cased() { w.signal(Cased) }

func (w *Writer) BeginExtrnDef(name string, id int) {
	w.signal(BeginExtrnDef)
	w.bytes(Name, []byte(name))
	w.u16(ID, uint16(id))
}
func (w *Writer) EndExtrnDef() { w.signal(EndExtrnDef) }

func (w *Writer) BeginPublic(name string, offset uint16) {
	w.signal(BeginPublic)
	w.bytes(Name, []byte(name))
	w.u16(Offset, offset)
}
func (w *Writer) EndPublic() { w.signal(EndPublic) }

func (w *Writer) BeginStart(offset uint16) {
	w.signal(BeginStart)
	w.u16(Offset, offset)
}
func (w *Writer) EndStart() { w.signal(EndStart) }

// OpenSegment/CloseSegment mark a body-level segment transition
// (SEGMENT/CODESEG/DATASEG/UDATASEG opening, ENDS/END closing), per
// spec.md §4.9's "directives emit open/close-segment signals at
// segment transitions".
func (w *Writer) OpenSegment()  { w.signal(OpenSegment) }
func (w *Writer) CloseSegment() { w.signal(CloseSegment) }

// Code emits a run of instruction/data bytes at the stream's current
// position within the currently open segment.
func (w *Writer) Code(b []byte) { w.bytes(Code, b) }

// OpenCloseUninit emits the OPEN_SEGMENT ... SPACE ... CLOSE_SEGMENT
// triple spec.md §4.9 requires once per UNINIT segment, reserving n
// bytes without any backing byte content.
func (w *Writer) OpenCloseUninit(n uint16) {
	w.signal(OpenSegment)
	w.u16(Space, n)
	w.signal(CloseSegment)
}

// BeginOffset/EndOffset: a relocation against an intra-module segment.
func (w *Writer) BeginOffset(pos uint16, segNo int) {
	w.signal(BeginOffset)
	w.u16(Pos, pos)
	w.u8(SegNo, uint8(segNo))
}
func (w *Writer) EndOffset() { w.signal(EndOffset) }

// BeginExtrnUse/EndExtrnUse: a relocation against an external symbol,
// optionally flagged as a JUMP-relative use (spec.md §4.9/§4.11).
func (w *Writer) BeginExtrnUse(pos uint16, id int, jump bool) {
	w.signal(BeginExtrnUse)
	w.u16(Pos, pos)
	w.u16(ID, uint16(id))
	if jump {
		w.u8(Jump, 1)
	}
}
func (w *Writer) EndExtrnUse() { w.signal(EndExtrnUse) }

func (w *Writer) BeginSegAddr(pos uint16, segNo int) {
	w.signal(BeginSegAddr)
	w.u16(Pos, pos)
	w.u8(SegNo, uint8(segNo))
}
func (w *Writer) EndSegAddr() { w.signal(EndSegAddr) }

func (w *Writer) BeginGroupAddr(pos uint16, groupNo int) {
	w.signal(BeginGroupAddr)
	w.u16(Pos, pos)
	w.u8(GroupNo, uint8(groupNo))
}
func (w *Writer) EndGroupAddr() { w.signal(EndGroupAddr) }

func (w *Writer) BeginGroupAbsJump(pos uint16, groupNo int) {
	w.signal(BeginGroupAbsJump)
	w.u16(Pos, pos)
	w.u8(GroupNo, uint8(groupNo))
}
func (w *Writer) EndGroupAbsJump() { w.signal(EndGroupAbsJump) }

// Find returns the first record carrying Tag t, for tests that want to
// assert on one specific directive instead of the whole stream.
func (w *Writer) Find(t Tag) (Record, bool) {
	for _, r := range w.Records {
		if r.Tag == t {
			return r, true
		}
	}
	return Record{}, false
}

// Dump renders the record stream as one line per record, in the
// directive-level form spec.md §6 documents (tag name plus payload).
// It is not the OMF byte format a real linker consumes (out of scope,
// spec.md §1): it exists so the CLI driver has something legible to
// write to -o without a linker on the other end.
func (w *Writer) Dump(out io.Writer) error {
	for _, r := range w.Records {
		var err error
		switch {
		case r.Bytes != nil:
			_, err = fmt.Fprintf(out, "%s %q\n", r.Tag, r.Bytes)
		case tagHasPayload(r.Tag):
			_, err = fmt.Fprintf(out, "%s %d\n", r.Tag, r.Num)
		default:
			_, err = fmt.Fprintf(out, "%s\n", r.Tag)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func tagHasPayload(t Tag) bool {
	switch t {
	case Ordinal, SegNo, GroupNo, P2Align, Pos, Offset, ID, Space, Dw, Dd, Dq, Dt, Db, Public, Stack, Jump:
		return true
	}
	return false
}

// Count returns how many records in the stream carry Tag t.
func (w *Writer) Count(t Tag) int {
	n := 0
	for _, r := range w.Records {
		if r.Tag == t {
			n++
		}
	}
	return n
}

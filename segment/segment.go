// Package segment implements the bounded segment and group registries
// that an IFILE owns: ordered segments and groups with attributes,
// optional group membership, alignment and a per-segment program
// counter.
package segment

import "fmt"

// SegNo and GroupNo are small integer handles into a Table, per the
// arena-and-handle design note in spec.md §9.
type SegNo int
type GroupNo int

const (
	NoSeg   SegNo   = -1
	NoGroup GroupNo = -1
)

const (
	MaxSegments = 8
	MaxGroups   = 8

	DefaultP2Align = 4
	MaxP2Align     = 12
)

// Attr is a bitset of segment attributes.
type Attr uint

const (
	AttrPrivate Attr = 1 << iota
	AttrPublic
	AttrStack
	AttrUninit
)

type Segment struct {
	Name    string
	Attr    Attr
	Group   GroupNo
	P2Align uint
	pc      uint32
}

func (s *Segment) Uninit() bool { return s.Attr&AttrUninit != 0 }
func (s *Segment) Public() bool { return s.Attr&AttrPublic != 0 }
func (s *Segment) Stack() bool  { return s.Attr&AttrStack != 0 }

type Group struct {
	Name string
}

// Table is the bounded segment and group registry owned by one IFILE.
type Table struct {
	segs   []*Segment
	groups []*Group
}

func New() *Table { return &Table{} }

// CreateSegment appends a new segment with default attributes, failing
// if the bound MaxSegments is exceeded.
func (t *Table) CreateSegment(name string) (SegNo, error) {
	if len(t.segs) >= MaxSegments {
		return NoSeg, fmt.Errorf("too many segments (max %d)", MaxSegments)
	}
	t.segs = append(t.segs, &Segment{Name: name, Group: NoGroup, P2Align: DefaultP2Align})
	return SegNo(len(t.segs) - 1), nil
}

// CreateGroup appends a new group, failing if MaxGroups is exceeded.
func (t *Table) CreateGroup(name string) (GroupNo, error) {
	if len(t.groups) >= MaxGroups {
		return NoGroup, fmt.Errorf("too many groups (max %d)", MaxGroups)
	}
	t.groups = append(t.groups, &Group{Name: name})
	return GroupNo(len(t.groups) - 1), nil
}

func (t *Table) SegmentCount() int { return len(t.segs) }
func (t *Table) GroupCount() int   { return len(t.groups) }

func (t *Table) Segment(n SegNo) *Segment { return t.segs[n] }
func (t *Table) Group(n GroupNo) *Group   { return t.groups[n] }

// FindSegment returns the SegNo of the segment named name, or NoSeg.
func (t *Table) FindSegment(name string) SegNo {
	for i, s := range t.segs {
		if s.Name == name {
			return SegNo(i)
		}
	}
	return NoSeg
}

// FindGroup returns the GroupNo of the group named name, or NoGroup.
func (t *Table) FindGroup(name string) GroupNo {
	for i, g := range t.groups {
		if g.Name == name {
			return GroupNo(i)
		}
	}
	return NoGroup
}

func (t *Table) PC(n SegNo) uint32      { return t.segs[n].pc }
func (t *Table) SetPC(n SegNo, pc uint32) { t.segs[n].pc = pc }
func (t *Table) IncPC(n SegNo, size uint32) { t.segs[n].pc += size }

// ResetPC zeroes every segment's program counter, run between passes.
func (t *Table) ResetPC() {
	for _, s := range t.segs {
		s.pc = 0
	}
}

// SetAttr OR's additional attribute bits into the segment, enforcing
// that PRIVATE is exclusive with PUBLIC and STACK.
func SetAttr(s *Segment, a Attr) error {
	if a&AttrPrivate != 0 && s.Attr&(AttrPublic|AttrStack) != 0 {
		return fmt.Errorf("PRIVATE is exclusive with PUBLIC/STACK")
	}
	if (a&(AttrPublic|AttrStack) != 0) && s.Attr&AttrPrivate != 0 {
		return fmt.Errorf("PUBLIC/STACK is exclusive with PRIVATE")
	}
	s.Attr |= a
	return nil
}

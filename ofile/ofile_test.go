package ofile

import "testing"

func TestBeginSegmentEmitsNameSegnoAndAlign(t *testing.T) {
	w := New()
	w.BeginSegment("CODE", 0, 4, true, false, false)
	w.EndSegment()

	if len(w.Records) != 6 {
		t.Fatalf("got %d records, want 6 (BEGIN_SEGMENT, NAME, SEGNO, P2ALIGN, PUBLIC, END_SEGMENT)", len(w.Records))
	}
	if w.Records[0].Tag != BeginSegment {
		t.Fatalf("first record = %v, want BEGIN_SEGMENT", w.Records[0].Tag)
	}
	name, ok := w.Find(Name)
	if !ok || string(name.Bytes) != "CODE" {
		t.Fatalf("NAME record = %q, want CODE", name.Bytes)
	}
	if w.Records[len(w.Records)-1].Tag != EndSegment {
		t.Fatal("stream should end with END_SEGMENT")
	}
}

func TestUninitSegmentEmitsOpenSpaceClose(t *testing.T) {
	w := New()
	w.OpenCloseUninit(16)

	if w.Count(OpenSegment) != 1 || w.Count(CloseSegment) != 1 {
		t.Fatal("expected exactly one OPEN_SEGMENT/CLOSE_SEGMENT pair")
	}
	space, ok := w.Find(Space)
	if !ok || space.Num != 16 {
		t.Fatalf("SPACE = %d, want 16", space.Num)
	}
}

func TestExternalDefsPreserveStableIDOrder(t *testing.T) {
	w := New()
	w.BeginExtrnDef("foo", 0)
	w.EndExtrnDef()
	w.BeginExtrnDef("bar", 1)
	w.EndExtrnDef()

	var ids []uint64
	for _, r := range w.Records {
		if r.Tag == ID {
			ids = append(ids, r.Num)
		}
	}
	if len(ids) != 2 || ids[0] != 0 || ids[1] != 1 {
		t.Fatalf("external IDs = %v, want [0 1] in definition order", ids)
	}
}

func TestExtrnUseCarriesJumpFlagOnlyWhenSet(t *testing.T) {
	w := New()
	w.BeginExtrnUse(3, 0, true)
	w.EndExtrnUse()
	if _, ok := w.Find(Jump); !ok {
		t.Fatal("expected a JUMP record when jump=true")
	}

	w2 := New()
	w2.BeginExtrnUse(3, 0, false)
	w2.EndExtrnUse()
	if _, ok := w2.Find(Jump); ok {
		t.Fatal("did not expect a JUMP record when jump=false")
	}
}

func TestCodeRecordPreservesBytes(t *testing.T) {
	w := New()
	w.Code([]byte{0xB8, 0x34, 0x12})
	rec, ok := w.Find(Code)
	if !ok {
		t.Fatal("expected a CODE record")
	}
	if len(rec.Bytes) != 3 || rec.Bytes[0] != 0xB8 || rec.Bytes[1] != 0x34 || rec.Bytes[2] != 0x12 {
		t.Fatalf("CODE bytes = % X, want B8 34 12", rec.Bytes)
	}
}

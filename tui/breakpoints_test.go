package tui

import "testing"

func TestAddBreakpointAssignsIncreasingIDs(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.Add(0x10, false)
	bp2 := bm.Add(0x20, false)

	if bp1.ID == bp2.ID {
		t.Fatalf("expected distinct IDs, got %d and %d", bp1.ID, bp2.ID)
	}
	if bm.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", bm.Count())
	}
}

func TestAddBreakpointAtExistingAddressReplaces(t *testing.T) {
	bm := NewBreakpointManager()

	first := bm.Add(0x10, false)
	second := bm.Add(0x10, true)

	if first.ID != second.ID {
		t.Fatalf("expected re-adding at the same address to reuse the breakpoint, got IDs %d and %d", first.ID, second.ID)
	}
	if !second.Temporary {
		t.Fatal("expected the replaced breakpoint to pick up the new Temporary flag")
	}
	if bm.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", bm.Count())
	}
}

func TestDeleteAtUnknownAddressErrors(t *testing.T) {
	bm := NewBreakpointManager()

	if err := bm.DeleteAt(0x42); err == nil {
		t.Fatal("expected an error deleting a breakpoint that was never set")
	}
}

func TestProcessHitIncrementsAndRemovesTemporary(t *testing.T) {
	bm := NewBreakpointManager()
	bm.Add(0x10, true)

	hit := bm.ProcessHit(0x10)
	if hit == nil {
		t.Fatal("expected a hit")
	}
	if hit.HitCount != 1 {
		t.Errorf("HitCount = %d, want 1", hit.HitCount)
	}
	if bm.Has(0x10) {
		t.Error("temporary breakpoint should be removed after its first hit")
	}
}

func TestProcessHitPersistentStaysSet(t *testing.T) {
	bm := NewBreakpointManager()
	bm.Add(0x10, false)

	bm.ProcessHit(0x10)
	bm.ProcessHit(0x10)

	bp := bm.Get(0x10)
	if bp == nil {
		t.Fatal("expected the breakpoint to remain set")
	}
	if bp.HitCount != 2 {
		t.Errorf("HitCount = %d, want 2", bp.HitCount)
	}
}

func TestProcessHitDisabledBreakpointIgnored(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.Add(0x10, false)
	bp.Enabled = false

	if hit := bm.ProcessHit(0x10); hit != nil {
		t.Error("expected a disabled breakpoint not to fire")
	}
}

func TestClearRemovesEverything(t *testing.T) {
	bm := NewBreakpointManager()
	bm.Add(0x10, false)
	bm.Add(0x20, false)

	bm.Clear()

	if bm.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after Clear", bm.Count())
	}
}

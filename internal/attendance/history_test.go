package attendance

import (
	"fmt"
	"testing"
	"time"
)

func feedRecord(n int) Record {
	return Record{
		ID:      fmt.Sprintf("rec-%d", n),
		TagID:   fmt.Sprintf("RF%03d", n),
		Outcome: OutcomeLogin,
		At:      time.Date(2024, time.January, 15, 8, 0, n, 0, time.UTC),
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(feedRecord(i))
	}

	if h.Len() != 3 {
		t.Fatalf("Len = %d, want capacity 3", h.Len())
	}
	got := h.Recent(10)
	want := []string{"rec-4", "rec-3", "rec-2"}
	if len(got) != len(want) {
		t.Fatalf("Recent returned %d records, want %d", len(got), len(want))
	}
	for i, rec := range got {
		if rec.ID != want[i] {
			t.Errorf("Recent[%d] = %s, want %s (newest first)", i, rec.ID, want[i])
		}
	}
}

func TestHistoryRecentLimit(t *testing.T) {
	h := NewHistory(10)
	for i := 0; i < 4; i++ {
		h.Append(feedRecord(i))
	}

	got := h.Recent(2)
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d records", len(got))
	}
	if got[0].ID != "rec-3" || got[1].ID != "rec-2" {
		t.Errorf("Recent(2) = [%s %s], want newest two", got[0].ID, got[1].ID)
	}

	if got := h.Recent(0); len(got) != 4 {
		t.Errorf("Recent(0) returned %d records, want all 4", len(got))
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(5)
	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
	if got := h.Recent(3); len(got) != 0 {
		t.Errorf("Recent on empty buffer returned %d records", len(got))
	}
}

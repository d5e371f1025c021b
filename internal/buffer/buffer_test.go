package buffer

import (
	"fmt"
	"testing"
	"time"

	"github.com/araroot/kotomine/internal/model"
)

func TestBuffer_AppendPreservesOrder(t *testing.T) {
	b := New(10)
	base := time.Now()
	for i := 0; i < 3; i++ {
		b.Append(model.SubtitleEvent{
			Text:       fmt.Sprintf("line-%d", i),
			Source:     "tab-1",
			ObservedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	snap := b.Snapshot("tab-1")
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	for i, ev := range snap {
		if want := fmt.Sprintf("line-%d", i); ev.Text != want {
			t.Errorf("position %d: got %q, want %q", i, ev.Text, want)
		}
	}
}

func TestBuffer_EvictsOldestAtCap(t *testing.T) {
	b := New(5)
	for i := 0; i < 12; i++ {
		b.Append(model.SubtitleEvent{Text: fmt.Sprintf("line-%d", i), Source: "tab-1"})
	}

	if n := b.Len("tab-1"); n != 5 {
		t.Fatalf("expected buffer capped at 5, got %d", n)
	}
	snap := b.Snapshot("tab-1")
	if snap[0].Text != "line-7" || snap[4].Text != "line-11" {
		t.Errorf("expected the most recent 5 events, got %q..%q", snap[0].Text, snap[4].Text)
	}
}

func TestBuffer_SourcesAreIndependent(t *testing.T) {
	b := New(5)
	b.Append(model.SubtitleEvent{Text: "a", Source: "tab-1"})
	b.Append(model.SubtitleEvent{Text: "b", Source: "tab-2"})

	if b.Len("tab-1") != 1 || b.Len("tab-2") != 1 {
		t.Errorf("sources should have independent logs")
	}

	b.Drop("tab-1")
	if b.Len("tab-1") != 0 {
		t.Error("dropped source should be empty")
	}
	if b.Len("tab-2") != 1 {
		t.Error("dropping one source must not affect another")
	}
}

func TestBuffer_SnapshotIsACopy(t *testing.T) {
	b := New(5)
	b.Append(model.SubtitleEvent{Text: "a", Source: "tab-1"})
	snap := b.Snapshot("tab-1")
	snap[0].Text = "mutated"

	if b.Snapshot("tab-1")[0].Text != "a" {
		t.Error("mutating a snapshot must not affect the buffer")
	}
}

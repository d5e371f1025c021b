package miner

import (
	"context"
	"testing"
	"time"

	"github.com/araroot/kotomine/internal/buffer"
	"github.com/araroot/kotomine/internal/model"
	"github.com/araroot/kotomine/internal/queue"
)

type fakeStore struct {
	persisted []model.SentenceCandidate
	loads     int
	saves     int
}

func (s *fakeStore) LoadCandidates(ctx context.Context) ([]model.SentenceCandidate, error) {
	s.loads++
	return s.persisted, nil
}

func (s *fakeStore) SaveCandidates(ctx context.Context, cands []model.SentenceCandidate) error {
	s.saves++
	s.persisted = cands
	return nil
}

type fakeDispatcher struct {
	calls int
	last  []model.SentenceCandidate
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, cands []model.SentenceCandidate) {
	d.calls++
	d.last = cands
}

func miningConfig() model.MiningConfig {
	cfg := model.DefaultConfig().Mining
	return cfg
}

func feed(buf *buffer.Buffer, source model.SourceID, base time.Time, lines []string, gaps []time.Duration) {
	at := base
	for i, line := range lines {
		if i > 0 {
			at = at.Add(gaps[i-1])
		}
		buf.Append(model.SubtitleEvent{
			Text:       line,
			Source:     source,
			Platform:   model.PlatformNetflix,
			ObservedAt: at,
		})
	}
}

func TestMine_TooFewEventsIsANoOp(t *testing.T) {
	buf := buffer.New(400)
	q := queue.New(600)
	m := New(miningConfig(), buf, q)

	feed(buf, "tab-1", time.Now(), []string{"思ったより", "やばいことになった"}, []time.Duration{500 * time.Millisecond})

	if batch := m.Mine(context.Background(), "tab-1"); batch != nil {
		t.Errorf("expected no-op below the event minimum, got %d candidates", len(batch))
	}
}

func TestMine_MergesAdjacentFragments(t *testing.T) {
	buf := buffer.New(400)
	q := queue.New(600)
	m := New(miningConfig(), buf, q)
	base := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)

	feed(buf, "tab-1", base,
		[]string{"思ったより", "やばいことになった", "よね"},
		[]time.Duration{500 * time.Millisecond, 400 * time.Millisecond})

	batch := m.Mine(context.Background(), "tab-1")
	if len(batch) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(batch))
	}
	c := batch[0]
	if c.Text != "やばいことになったよね" {
		t.Errorf("merged text = %q", c.Text)
	}
	if c.Before != "思ったより" {
		t.Errorf("before context = %q", c.Before)
	}
	if c.ID == "" {
		t.Error("candidate needs an identity hash")
	}

	got, ok := q.Get(c.ID)
	if !ok {
		t.Fatal("candidate should be in the queue")
	}
	if got.Occurrences != 1 {
		t.Errorf("first pass: occurrences = %d, want 1", got.Occurrences)
	}

	// The identical merged sentence observed again: same entry, count 2.
	m.Mine(context.Background(), "tab-1")
	got, _ = q.Get(c.ID)
	if got.Occurrences != 2 {
		t.Errorf("second pass: occurrences = %d, want 2", got.Occurrences)
	}
	if q.Len() != 1 {
		t.Errorf("re-observation created extra entries, queue len %d", q.Len())
	}
}

func TestMine_FiltersLowValueLines(t *testing.T) {
	buf := buffer.New(400)
	q := queue.New(600)
	m := New(miningConfig(), buf, q)
	base := time.Now()

	// Middle line is a bare interjection far from its neighbors, so nothing
	// merges and nothing passes classification.
	feed(buf, "tab-1", base,
		[]string{"前の行です。", "えっ！", "次の行です。"},
		[]time.Duration{10 * time.Second, 10 * time.Second})

	if batch := m.Mine(context.Background(), "tab-1"); len(batch) != 0 {
		t.Errorf("interjection should be filtered, got %d candidates", len(batch))
	}
}

func TestMine_PersistsAroundThePass(t *testing.T) {
	buf := buffer.New(400)
	q := queue.New(600)
	store := &fakeStore{persisted: []model.SentenceCandidate{{
		ID: "old", Text: "前に拾った文だった", LastSeenAt: 42, Occurrences: 3, Status: model.StatusNew,
	}}}
	disp := &fakeDispatcher{}
	m := New(miningConfig(), buf, q, WithStore(store), WithDispatcher(disp))

	feed(buf, "tab-1", time.Now(),
		[]string{"思ったより", "やばいことになった", "よね"},
		[]time.Duration{500 * time.Millisecond, 400 * time.Millisecond})

	m.Mine(context.Background(), "tab-1")

	if store.loads != 1 || store.saves != 1 {
		t.Errorf("expected read-merge-write, got %d loads / %d saves", store.loads, store.saves)
	}
	if _, ok := q.Get("old"); !ok {
		t.Error("persisted candidate should be restored into the queue")
	}
	if len(store.persisted) != 2 {
		t.Errorf("saved queue should hold restored + new, got %d", len(store.persisted))
	}
	if disp.calls != 1 {
		t.Errorf("dispatcher should run once per pass, got %d", disp.calls)
	}
}

func TestMaybeMine_ThrottleIsGlobalAcrossSources(t *testing.T) {
	buf := buffer.New(400)
	q := queue.New(600)
	now := time.Date(2026, 3, 1, 21, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := New(miningConfig(), buf, q, WithClock(clock))

	for _, src := range []model.SourceID{"tab-1", "tab-2"} {
		feed(buf, src, now.Add(-time.Minute),
			[]string{"思ったより", "やばいことになった", "よね"},
			[]time.Duration{500 * time.Millisecond, 400 * time.Millisecond})
	}

	if !m.MaybeMine(context.Background(), "tab-1") {
		t.Fatal("first pass should run")
	}
	// The throttle is deliberately process-wide, not per-source: a busy
	// source suppresses mining for a quiet one in the same window.
	if m.MaybeMine(context.Background(), "tab-2") {
		t.Error("second source should be throttled by the first source's pass")
	}

	now = now.Add(31 * time.Second)
	if !m.MaybeMine(context.Background(), "tab-2") {
		t.Error("pass should run again once the interval elapses")
	}
}

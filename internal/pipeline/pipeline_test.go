package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/araroot/kotomine/internal/model"
	"github.com/araroot/kotomine/internal/words"
)

type scriptedExtractor struct {
	mu      sync.Mutex
	results map[string]model.ExtractionResult
	block   map[string]chan struct{} // extraction stalls until the channel closes
	calls   []string
}

func newScriptedExtractor() *scriptedExtractor {
	return &scriptedExtractor{
		results: make(map[string]model.ExtractionResult),
		block:   make(map[string]chan struct{}),
	}
}

func (e *scriptedExtractor) Extract(ctx context.Context, subtitle string, platform model.Platform, deleted []string) (model.ExtractionResult, error) {
	e.mu.Lock()
	e.calls = append(e.calls, subtitle)
	gate := e.block[subtitle]
	res := e.results[subtitle]
	e.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.ExtractionResult{}, ctx.Err()
		}
	}
	return res, nil
}

type recordingDisplay struct {
	mu       sync.Mutex
	payloads []string
}

func (d *recordingDisplay) ShowWords(source model.SourceID, requestID int64, subtitle, translation string, insights []model.WordInsight) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.payloads = append(d.payloads, subtitle)
}

func (d *recordingDisplay) shown() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.payloads...)
}

type recordingSaver struct {
	mu    sync.Mutex
	saved []string
}

func (s *recordingSaver) Save(ctx context.Context, in words.SaveInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, in.Word)
	return words.WordID(in.Word), nil
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Extraction.MinInterval = time.Millisecond
	return cfg
}

func TestHandleLine_ExtractsDisplaysAndSaves(t *testing.T) {
	ext := newScriptedExtractor()
	ext.results["面倒なことになった"] = model.ExtractionResult{
		Translation: "this became a hassle",
		Words: []model.WordInsight{
			{Word: "面倒", Reading: "めんどう", Meaning: "hassle"},
			{Word: "やばい", Reading: "やばい", Meaning: "risky; awesome"}, // kana-only, not saved
		},
	}
	display := &recordingDisplay{}
	saver := &recordingSaver{}
	p := New(testConfig(), Deps{Extractor: ext, Display: display, Saver: saver})

	p.HandleLine(context.Background(), "面倒なことになった", "tab-1", model.PlatformNetflix, time.Now())
	p.Drain()

	if shown := display.shown(); len(shown) != 1 || shown[0] != "面倒なことになった" {
		t.Errorf("display payloads = %v", shown)
	}
	saver.mu.Lock()
	defer saver.mu.Unlock()
	if len(saver.saved) != 1 || saver.saved[0] != "面倒" {
		t.Errorf("auto-saved words = %v, want only the kanji word", saver.saved)
	}
}

func TestHandleLine_IgnoresLinesWithoutKanji(t *testing.T) {
	ext := newScriptedExtractor()
	p := New(testConfig(), Deps{Extractor: ext})

	p.HandleLine(context.Background(), "やばいよね", "tab-1", model.PlatformNetflix, time.Now())
	p.Drain()

	ext.mu.Lock()
	defer ext.mu.Unlock()
	if len(ext.calls) != 0 {
		t.Errorf("kana-only line should not reach extraction, calls = %v", ext.calls)
	}
}

func TestHandleLine_StaleReplyIsDiscarded(t *testing.T) {
	ext := newScriptedExtractor()
	gate := make(chan struct{})
	ext.block["一行目だった"] = gate
	ext.results["一行目だった"] = model.ExtractionResult{Words: []model.WordInsight{{Word: "一行"}}}
	ext.results["二行目になった"] = model.ExtractionResult{Words: []model.WordInsight{{Word: "二行"}}}
	display := &recordingDisplay{}
	p := New(testConfig(), Deps{Extractor: ext, Display: display})

	at := time.Now()
	p.HandleLine(context.Background(), "一行目だった", "tab-1", model.PlatformNetflix, at)

	// Wait until the first extraction is actually in flight.
	deadline := time.After(2 * time.Second)
	for {
		ext.mu.Lock()
		inFlight := len(ext.calls) > 0
		ext.mu.Unlock()
		if inFlight {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first extraction never started")
		case <-time.After(time.Millisecond):
		}
	}

	p.HandleLine(context.Background(), "二行目になった", "tab-1", model.PlatformNetflix, at.Add(time.Second))
	close(gate)
	p.Drain()

	for _, subtitle := range display.shown() {
		if subtitle == "一行目だった" {
			t.Error("superseded reply must not be displayed")
		}
	}
}

func TestHandleLine_FeedsMiningQueue(t *testing.T) {
	cfg := testConfig()
	cfg.Mining.Interval = 0 // mine on every line
	p := New(cfg, Deps{})

	at := time.Now()
	lines := []string{"昨日の話なんだけど、", "思ったより大変で", "結局朝までかかった"}
	for i, line := range lines {
		p.HandleLine(context.Background(), line, "tab-1", model.PlatformNetflix, at.Add(time.Duration(i)*time.Second))
	}
	p.Drain()

	if p.Queue().Len() == 0 {
		t.Error("mining should have queued at least one candidate")
	}
}

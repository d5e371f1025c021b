// Package pipeline wires the full subtitle flow: observation, buffering,
// throttled mining, vocabulary extraction and best-effort sync.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/araroot/kotomine/internal/buffer"
	"github.com/araroot/kotomine/internal/jptext"
	"github.com/araroot/kotomine/internal/miner"
	"github.com/araroot/kotomine/internal/model"
	"github.com/araroot/kotomine/internal/observe"
	"github.com/araroot/kotomine/internal/queue"
	"github.com/araroot/kotomine/internal/request"
	"github.com/araroot/kotomine/internal/words"
)

// Extractor requests vocabulary for one subtitle.
type Extractor interface {
	Extract(ctx context.Context, subtitle string, platform model.Platform, deletedWords []string) (model.ExtractionResult, error)
}

// WordSaver persists one extracted word.
type WordSaver interface {
	Save(ctx context.Context, in words.SaveInput) (string, error)
}

// DeletedWordsSource lists words the user marked as not useful.
type DeletedWordsSource interface {
	DeletedWords(ctx context.Context, userID string) []string
}

// Display is the surface extraction results are pushed to. Implementations
// must ignore payloads whose request id no longer matches what they most
// recently initiated; the pipeline already drops stale replies, so this is
// a second line of defense for out-of-order delivery.
type Display interface {
	ShowWords(source model.SourceID, requestID int64, subtitle, translation string, insights []model.WordInsight)
}

// Deps are the external collaborators a Pipeline talks to. Any of them may
// be nil; the corresponding step is skipped.
type Deps struct {
	Extractor  Extractor
	Saver      WordSaver
	Deleted    DeletedWordsSource
	Display    Display
	Store      miner.CandidateStore
	Dispatcher miner.Dispatcher
	OwnerID    string
}

// Pipeline is the per-background-context state of the whole flow. One
// instance is constructed per process and torn down with it; nothing here
// is ambient global state.
type Pipeline struct {
	cfg  *model.Config
	deps Deps

	observer *observe.Observer
	buf      *buffer.Buffer
	queue    *queue.Queue
	miner    *miner.Miner
	coord    *request.Coordinator

	mu   sync.Mutex
	show *model.ShowRef

	wg      sync.WaitGroup
	verbose bool
}

// New builds a Pipeline from configuration and collaborators.
func New(cfg *model.Config, deps Deps) *Pipeline {
	q := queue.New(cfg.Mining.QueueCap)
	buf := buffer.New(cfg.Mining.BufferCap)

	var opts []miner.Option
	if deps.Store != nil {
		opts = append(opts, miner.WithStore(deps.Store))
	}
	if deps.Dispatcher != nil {
		opts = append(opts, miner.WithDispatcher(deps.Dispatcher))
	}
	opts = append(opts, miner.WithVerbose(cfg.Output.Verbose))

	return &Pipeline{
		cfg:      cfg,
		deps:     deps,
		observer: observe.New(),
		buf:      buf,
		queue:    q,
		miner:    miner.New(cfg.Mining, buf, q, opts...),
		coord:    request.New(cfg.Extraction.MinInterval),
		verbose:  cfg.Output.Verbose,
	}
}

// SetShow updates the show context attached to subsequent observations.
func (p *Pipeline) SetShow(show *model.ShowRef) {
	p.mu.Lock()
	p.show = show
	p.mu.Unlock()
}

// Queue exposes the candidate queue, for diagnostics.
func (p *Pipeline) Queue() *queue.Queue {
	return p.queue
}

// HandleLine processes one raw subtitle emission: record it, maybe run a
// mining pass, and kick off extraction as a detached task whose errors are
// swallowed.
func (p *Pipeline) HandleLine(ctx context.Context, raw string, source model.SourceID, platform model.Platform, at time.Time) {
	p.mu.Lock()
	show := p.show
	p.mu.Unlock()

	ev, ok := p.observer.Observe(raw, source, platform, at, show)
	if !ok {
		return
	}

	p.buf.Append(ev)
	p.miner.MaybeMine(ctx, source)

	if p.deps.Extractor == nil {
		return
	}

	// The token is issued synchronously so a later line always supersedes
	// an earlier one; only the remote call itself is detached.
	reqCtx, tok := p.coord.Begin(context.Background(), ev.Source)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runExtraction(reqCtx, tok, ev)
	}()
}

// runExtraction performs the request-coordinated extraction for one event.
// Only the reply matching the source's latest request id is surfaced;
// cancellation is expected and silent.
func (p *Pipeline) runExtraction(ctx context.Context, tok request.Token, ev model.SubtitleEvent) {
	defer p.coord.Finish(tok)

	if err := p.coord.Wait(ctx); err != nil {
		return
	}

	var deleted []string
	if p.deps.Deleted != nil && p.deps.OwnerID != "" {
		deleted = p.deps.Deleted.DeletedWords(ctx, p.deps.OwnerID)
	}

	res, err := p.deps.Extractor.Extract(ctx, ev.Text, ev.Platform, deleted)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		if p.verbose {
			fmt.Fprintf(os.Stderr, "pipeline: extraction for %s: %v\n", ev.Source, err)
		}
		res = model.ExtractionResult{}
	}

	if !p.coord.Accept(tok) {
		return
	}

	if p.deps.Display != nil {
		p.deps.Display.ShowWords(ev.Source, tok.ID, ev.Text, res.Translation, res.Words)
	}
	p.autoSave(res, ev)
}

// autoSave persists every kanji-bearing word from the response. Kana-only
// items are usually too basic to be worth a card.
func (p *Pipeline) autoSave(res model.ExtractionResult, ev model.SubtitleEvent) {
	if p.deps.Saver == nil {
		return
	}
	for _, w := range res.Words {
		if !jptext.HasKanji(w.Word) {
			continue
		}
		_, err := p.deps.Saver.Save(context.Background(), words.SaveInput{
			Word:               w.Word,
			Reading:            w.Reading,
			Meaning:            w.Meaning,
			Context:            ev.Text,
			ContextTranslation: res.Translation,
			Platform:           ev.Platform,
		})
		if err != nil && p.verbose {
			fmt.Fprintf(os.Stderr, "pipeline: auto-save %q: %v\n", w.Word, err)
		}
	}
}

// CloseSource discards per-source state when its context is torn down.
func (p *Pipeline) CloseSource(source model.SourceID) {
	p.buf.Drop(source)
	p.observer.Forget(source)
}

// Drain waits for detached extraction tasks to finish. For shutdown and
// tests.
func (p *Pipeline) Drain() {
	p.wg.Wait()
}

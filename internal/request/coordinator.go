// Package request tracks the latest in-flight extraction request per source
// and suppresses stale replies.
package request

import (
	"context"
	"sync"
	"time"

	"github.com/araroot/kotomine/internal/model"
	"golang.org/x/time/rate"
)

// Token identifies one issued request. A token whose id no longer matches
// the source's latest is superseded; its reply must be discarded.
type Token struct {
	Source model.SourceID
	ID     int64
}

// Coordinator hands out monotonically increasing request ids per source,
// cancels the previous in-flight request when a new one is issued, and
// enforces a process-wide minimum spacing between dispatches.
type Coordinator struct {
	mu      sync.Mutex
	latest  map[model.SourceID]int64
	cancels map[model.SourceID]context.CancelFunc
	spacing *rate.Limiter
}

// New returns a Coordinator spacing dispatches at least minInterval apart
// across all sources.
func New(minInterval time.Duration) *Coordinator {
	if minInterval <= 0 {
		minInterval = 100 * time.Millisecond
	}
	return &Coordinator{
		latest:  make(map[model.SourceID]int64),
		cancels: make(map[model.SourceID]context.CancelFunc),
		spacing: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Begin registers a new request for the source, canceling any outstanding
// one, and returns a context to run the remote call under together with the
// request's token. The returned context is canceled as soon as a newer
// request for the same source begins.
func (c *Coordinator) Begin(parent context.Context, source model.SourceID) (context.Context, Token) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cancel, ok := c.cancels[source]; ok {
		cancel()
	}

	c.latest[source]++
	id := c.latest[source]

	ctx, cancel := context.WithCancel(parent)
	c.cancels[source] = cancel

	return ctx, Token{Source: source, ID: id}
}

// Wait blocks until the process-wide request spacing allows a dispatch.
func (c *Coordinator) Wait(ctx context.Context) error {
	return c.spacing.Wait(ctx)
}

// Accept reports whether a reply carrying the token is still current for
// its source. Stale replies are discarded silently by the caller.
func (c *Coordinator) Accept(tok Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest[tok.Source] == tok.ID
}

// Finish releases the source's cancelation handle if the token is still
// current, so a completed request does not hold it.
func (c *Coordinator) Finish(tok Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest[tok.Source] != tok.ID {
		return
	}
	if cancel, ok := c.cancels[tok.Source]; ok {
		cancel()
		delete(c.cancels, tok.Source)
	}
}

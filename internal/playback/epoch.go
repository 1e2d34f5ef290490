// internal/playback/epoch.go
package playback

import (
	"context"
	"sync"
)

// Epoch owns the generation counter of one controller. Only the newest
// generation may mutate the transcript; Do makes the check and the
// mutation one step.
//
// Requests take a ticket when they are made and claim a generation once
// ready. A ticket older than the last claimed one can no longer claim, so
// generations follow request order however long each request takes.
type Epoch struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc

	requested uint64
	claimed   uint64
}

// Token identifies one playback generation.
type Token struct {
	gen   uint64
	ctx   context.Context
	epoch *Epoch
}

// NewEpoch creates an epoch at generation zero.
func NewEpoch() *Epoch {
	return &Epoch{}
}

// Advance starts a new generation and cancels the previous token's context.
func (e *Epoch) Advance(parent context.Context) Token {
	tok, _ := e.Claim(parent, e.Reserve())
	return tok
}

// Reserve takes the next request ticket.
func (e *Epoch) Reserve() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requested++
	return e.requested
}

// Claim starts a new generation for ticket and cancels the previous
// token's context. It fails when a later ticket has already claimed.
func (e *Epoch) Claim(parent context.Context, ticket uint64) (Token, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ticket <= e.claimed {
		return Token{}, false
	}
	ctx, cancel := context.WithCancel(parent)
	if e.cancel != nil {
		e.cancel()
	}
	e.claimed = ticket
	e.gen++
	e.cancel = cancel
	return Token{gen: e.gen, ctx: ctx, epoch: e}, true
}

// Generation returns the current generation.
func (e *Epoch) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// Do runs fn only if t is still current. It reports whether fn ran.
func (e *Epoch) Do(t Token, fn func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.currentLocked(t) {
		return false
	}
	fn()
	return true
}

// Locked runs fn under the epoch lock without a generation check.
func (e *Epoch) Locked(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// Close cancels the current generation's context.
func (e *Epoch) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Epoch) currentLocked(t Token) bool {
	return t.epoch == e && t.gen == e.gen && t.ctx.Err() == nil
}

// Generation returns the token's generation number.
func (t Token) Generation() uint64 {
	return t.gen
}

// Context is cancelled once the token is superseded.
func (t Token) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

// Current reports whether t is still the authoritative generation.
func (t Token) Current() bool {
	if t.epoch == nil {
		return false
	}
	t.epoch.mu.Lock()
	defer t.epoch.mu.Unlock()
	return t.epoch.currentLocked(t)
}

// withContext carries values (spans) of ctx, which must derive from the
// token's own context.
func (t Token) withContext(ctx context.Context) Token {
	t.ctx = ctx
	return t
}

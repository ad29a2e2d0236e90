package status

import (
	"context"
	"sync/atomic"
)

var lineageKeys atomic.Uint32

const seqBits = 32

// Lifetime scopes everything a mounted view starts. Messages produced under
// a lifetime carry its ID so the view can drop the ones that outlive it.
type Lifetime struct {
	ctx    context.Context
	cancel context.CancelFunc
	id     uint64
}

// Lineage hands out the successive lifetimes of one view. An ID carries its
// lineage key in the high bits and a per-lineage sequence in the low bits,
// so Issued needs no record of past mounts.
type Lineage struct {
	key  uint64
	last uint64
}

func NewLineage() *Lineage {
	return &Lineage{key: uint64(lineageKeys.Add(1))}
}

// Begin starts the next lifetime under parent.
func (g *Lineage) Begin(parent context.Context) *Lifetime {
	g.last++
	ctx, cancel := context.WithCancel(parent)
	return &Lifetime{ctx: ctx, cancel: cancel, id: g.key<<seqBits | g.last}
}

// Issued reports whether id came from this lineage, live or ended.
func (g *Lineage) Issued(id uint64) bool {
	if g == nil {
		return false
	}
	seq := id & (1<<seqBits - 1)
	return id>>seqBits == g.key && seq > 0 && seq <= g.last
}

// NewLifetime begins a one-off mount under parent on a lineage of its own.
func NewLifetime(parent context.Context) *Lifetime {
	return NewLineage().Begin(parent)
}

// Context is cancelled when the lifetime ends.
func (l *Lifetime) Context() context.Context {
	if l == nil {
		return canceled
	}
	return l.ctx
}

// ID identifies this mount. IDs are never reused within a process.
func (l *Lifetime) ID() uint64 {
	if l == nil {
		return 0
	}
	return l.id
}

// End cancels the lifetime. Safe to call more than once.
func (l *Lifetime) End() {
	if l != nil {
		l.cancel()
	}
}

// Alive reports whether the lifetime has not ended.
func (l *Lifetime) Alive() bool {
	return l != nil && l.ctx.Err() == nil
}

// Owns reports whether a message tagged with id belongs to this lifetime
// and the lifetime is still alive.
func (l *Lifetime) Owns(id uint64) bool {
	return l.Alive() && id == l.id
}

var canceled = func() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}()

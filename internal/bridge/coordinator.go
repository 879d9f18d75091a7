package bridge

import (
	"context"
	"sync"
)

// Handler runs on the tick side and turns one request line into one
// response line.
type Handler interface {
	Handle(msg string) string
}

type HandlerFunc func(msg string) string

func (f HandlerFunc) Handle(msg string) string { return f(msg) }

// Phase is the position of the current request in the handoff cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequestPublished
	PhaseResponsePublished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequestPublished:
		return "request-published"
	case PhaseResponsePublished:
		return "response-published"
	default:
		return "unknown"
	}
}

type CoordinatorStats struct {
	Submitted uint64
	Served    uint64
	Abandoned uint64
}

// Coordinator is a single-slot rendezvous between a network goroutine that
// submits requests and a tick loop that serves them. At most one request is
// in flight; a new one is published only after the previous response has
// been consumed.
type Coordinator struct {
	mu   sync.Mutex
	cond *sync.Cond

	request       string
	response      string
	requestReady  bool
	responseReady bool

	// busy is held by a Submit from publish until it consumes its response.
	busy bool
	// gen identifies the request in the slot so a response computed for an
	// abandoned request is never delivered to a later one.
	gen     uint64
	stopped bool

	stats CoordinatorStats
}

func NewCoordinator() *Coordinator {
	c := &Coordinator{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Submit publishes msg and blocks until the tick side responds, ctx is done
// or the coordinator is stopped.
func (c *Coordinator) Submit(ctx context.Context, msg string) (string, error) {
	release := context.AfterFunc(ctx, c.wake)
	defer release()

	c.mu.Lock()
	defer c.mu.Unlock()

	for c.busy && !c.stopped && ctx.Err() == nil {
		c.cond.Wait()
	}
	if err := c.cancelled(ctx); err != nil {
		return "", err
	}

	c.busy = true
	c.gen++
	c.request = msg
	c.requestReady = true
	c.stats.Submitted++

	for !c.responseReady && !c.stopped && ctx.Err() == nil {
		c.cond.Wait()
	}
	if !c.responseReady {
		c.request = ""
		c.requestReady = false
		c.busy = false
		c.stats.Abandoned++
		c.cond.Broadcast()
		return "", c.cancelled(ctx)
	}

	resp := c.response
	c.response = ""
	c.responseReady = false
	c.busy = false
	c.cond.Broadcast()
	return resp, nil
}

// Tick serves the pending request, if any, and reports whether it did. It
// never waits for a request to arrive. h runs without the lock held.
func (c *Coordinator) Tick(h Handler) bool {
	c.mu.Lock()
	if !c.requestReady || c.stopped {
		c.mu.Unlock()
		return false
	}
	msg, gen := c.request, c.gen
	c.request = ""
	c.requestReady = false
	c.mu.Unlock()

	resp := h.Handle(msg)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy && c.gen == gen && !c.stopped {
		c.response = resp
		c.responseReady = true
		c.stats.Served++
		c.cond.Broadcast()
	}
	return true
}

// Stop abandons any handoff in progress and fails later Submits. It is safe
// to call more than once.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.cond.Broadcast()
	c.mu.Unlock()
}

func (c *Coordinator) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// Pending reports whether a request is waiting for the tick side.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requestReady
}

func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.responseReady:
		return PhaseResponsePublished
	case c.busy:
		return PhaseRequestPublished
	default:
		return PhaseIdle
	}
}

func (c *Coordinator) Stats() CoordinatorStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// wake takes the lock so a waiter that has checked ctx but not yet parked
// cannot miss the broadcast.
func (c *Coordinator) wake() {
	c.mu.Lock()
	c.cond.Broadcast()
	c.mu.Unlock()
}

func (c *Coordinator) cancelled(ctx context.Context) error {
	if c.stopped {
		return ErrStopped
	}
	return ctx.Err()
}

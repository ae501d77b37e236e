package power

import "sync"

// Result is the outcome of one coalesced bridge operation, delivered
// identically to every waiter of that operation's generation.
type Result struct {
	State State
	Err   error
}

// Coalescer guarantees at most one in-flight operation per key. The first
// caller for an idle key starts the underlying operation; callers arriving
// while it is in flight attach as waiters instead. When the operation
// completes, the whole waiter generation is swapped out atomically and every
// waiter receives the same Result in registration order, so a Join arriving
// during delivery starts a fresh operation rather than seeing a stale result.
type Coalescer struct {
	mu      sync.Mutex
	pending map[string][]chan Result
}

// NewCoalescer creates an empty Coalescer.
func NewCoalescer() *Coalescer {
	return &Coalescer{pending: make(map[string][]chan Result)}
}

// Join registers interest in the operation identified by key and returns a
// buffered channel that will receive exactly one Result. If no operation is
// in flight for key, start is invoked once; it must arrange for the done
// callback to be called exactly once with the operation's outcome.
func (c *Coalescer) Join(key string, start func(done func(Result))) <-chan Result {
	ch := make(chan Result, 1)

	c.mu.Lock()
	if waiters, inFlight := c.pending[key]; inFlight {
		c.pending[key] = append(waiters, ch)
		c.mu.Unlock()
		return ch
	}
	c.pending[key] = []chan Result{ch}
	c.mu.Unlock()

	start(func(res Result) { c.complete(key, res) })
	return ch
}

// InFlight reports whether an operation is currently outstanding for key.
func (c *Coalescer) InFlight(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[key]
	return ok
}

// complete swaps out the current waiter generation for key and fans the
// result out to all of its waiters. Channels are buffered, so delivery
// cannot block and happens strictly in registration order.
func (c *Coalescer) complete(key string, res Result) {
	c.mu.Lock()
	waiters := c.pending[key]
	delete(c.pending, key)
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- res
	}
}

package power

import (
	"context"
)

// Transport executes a single named receiver command through the command
// bridge and eventually yields the raw power status string the bridge
// reported, or an error. The engine is agnostic to how the command travels.
type Transport interface {
	Invoke(ctx context.Context, command string) (rawState string, err error)
}

// Bridge command names, as understood by the receiver command bridge.
const (
	cmdStatusQuery   = "power_status.query"
	cmdStatusWait    = "power_status_wait"
	cmdPowerOn       = "on"
	cmdPowerOnStart  = "start_on"
	cmdPowerOff      = "off"
	cmdPowerOffStart = "start_off"
	cmdNull          = "test_command.null_command"
)

// Coalescing keys. Each operation kind coalesces with itself only; the
// waiting and non-waiting power commands deliberately use distinct keys.
const (
	keyStatus   = "status"
	keyStable   = "stable"
	keyOn       = "on"
	keyOnStart  = "on-start"
	keyOff      = "off"
	keyOffStart = "off-start"
)

// Engine synchronizes the power state of one receiver. Concurrent calls to
// the same operation share a single in-flight bridge command; every
// completed command feeds the Tracker before its waiters are released, so
// state-change notifications are a side effect of all operations, not only
// of the polling loop.
//
// Opposite power commands are NOT mutually excluded: "on" and "off" coalesce
// under independent keys and the receiver is expected to serialize them
// itself.
type Engine struct {
	transport Transport
	coalescer *Coalescer
	tracker   *Tracker

	// rearm, when set, is called after every completed bridge command.
	// The poller uses it to push its next automatic tick out, since the
	// state was just sampled anyway.
	rearm func()
}

// NewEngine wires a Transport and a Tracker into an Engine.
func NewEngine(transport Transport, tracker *Tracker) *Engine {
	return &Engine{
		transport: transport,
		coalescer: NewCoalescer(),
		tracker:   tracker,
	}
}

// SetRearm registers the poller's re-arm hook. Must be called before the
// engine is shared between goroutines.
func (e *Engine) SetRearm(fn func()) {
	e.rearm = fn
}

// Current returns the last-known power state.
func (e *Engine) Current() State {
	return e.tracker.Current()
}

// QueryStatus issues (or joins) a status query and returns the observed
// state. On failure the state is Unknown and the error is non-nil.
func (e *Engine) QueryStatus(ctx context.Context) (State, error) {
	return e.await(ctx, e.execute(keyStatus, cmdStatusQuery))
}

// WaitForStable issues (or joins) a blocking status query that the bridge
// answers only once the receiver has left Warming/Cooling, bounded by the
// bridge's own timeout.
func (e *Engine) WaitForStable(ctx context.Context) (State, error) {
	return e.await(ctx, e.execute(keyStable, cmdStatusWait))
}

// PowerOn turns the receiver on. With waitForFinal the bridge blocks until
// the receiver reaches a stable On; otherwise it returns as soon as the
// receiver is on or warming, and callers needing final confirmation should
// follow up with WaitForStable.
func (e *Engine) PowerOn(ctx context.Context, waitForFinal bool) (State, error) {
	if waitForFinal {
		return e.await(ctx, e.execute(keyOn, cmdPowerOn))
	}
	return e.await(ctx, e.execute(keyOnStart, cmdPowerOnStart))
}

// PowerOff turns the receiver off, targeting Standby. Symmetric to PowerOn.
func (e *Engine) PowerOff(ctx context.Context, waitForFinal bool) (State, error) {
	if waitForFinal {
		return e.await(ctx, e.execute(keyOff, cmdPowerOff))
	}
	return e.await(ctx, e.execute(keyOffStart, cmdPowerOffStart))
}

// Ping sends the bridge's null command without touching the tracker. Used
// by the health endpoint.
func (e *Engine) Ping(ctx context.Context) error {
	_, err := e.transport.Invoke(ctx, cmdNull)
	return err
}

// execute starts (or joins) the coalesced bridge command for key. The
// bridge call runs under a background context: an in-flight command is
// never cancelled on behalf of a caller that lost interest, it is bounded
// only by the transport's own timeout.
func (e *Engine) execute(key, command string) <-chan Result {
	return e.coalescer.Join(key, func(done func(Result)) {
		go func() {
			raw, err := e.transport.Invoke(context.Background(), command)

			res := Result{State: StateUnknown}
			if err != nil {
				res.Err = err
			} else if res.State, err = ParseState(raw); err != nil {
				res.State = StateUnknown
				res.Err = err
			}

			e.tracker.Observe(res.State)
			done(res)
			if e.rearm != nil {
				e.rearm()
			}
		}()
	})
}

// await blocks until the coalesced result arrives or the caller's context
// is done. Abandoning a wait has no effect on the in-flight command.
func (e *Engine) await(ctx context.Context, ch <-chan Result) (State, error) {
	select {
	case res := <-ch:
		return res.State, res.Err
	case <-ctx.Done():
		return StateUnknown, ctx.Err()
	}
}

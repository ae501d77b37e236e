package power

import (
	"context"
	"log"
	"time"
)

// Poller drives the engine's self-adjusting status sampling loop: fast while
// the receiver is warming up or cooling down, slow at rest. The next tick is
// armed strictly after the previous tick's result is known, never on a fixed
// wall-clock cadence, so two ticks can never overlap.
type Poller struct {
	engine       *Engine
	stable       time.Duration
	transitional time.Duration

	// kick carries at most one pending "the state was just sampled
	// elsewhere" signal; the loop responds by pushing the next tick out.
	kick chan struct{}
}

// NewPoller creates a Poller. Both intervals must be positive; the
// transitional interval is expected to be much shorter than the stable one.
func NewPoller(engine *Engine, stable, transitional time.Duration) *Poller {
	return &Poller{
		engine:       engine,
		stable:       stable,
		transitional: transitional,
		kick:         make(chan struct{}, 1),
	}
}

// Rearm notifies the poller that a status observation just completed
// outside its own loop. Never blocks; redundant signals collapse.
func (p *Poller) Rearm() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Interval returns the polling delay appropriate to the given state.
func (p *Poller) Interval(s State) time.Duration {
	if s.IsTransitional() {
		return p.transitional
	}
	return p.stable
}

// Run samples the receiver until ctx is cancelled. The first tick fires
// immediately; each subsequent tick is scheduled, regardless of the previous
// tick's success or failure, at the interval matching the state it observed.
// Cancellation stops future re-arms without interrupting an in-flight tick.
func (p *Poller) Run(ctx context.Context) {
	log.Println("Starting power status poller...")

	p.tick(ctx)

	timer := time.NewTimer(p.Interval(p.engine.Current()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Power status poller shutting down.")
			return
		case <-p.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(p.Interval(p.engine.Current()))
		case <-timer.C:
			p.tick(ctx)
			// The tick's own completion also fires Rearm; absorb it so it
			// does not immediately reschedule again. A signal that slips in
			// after this drain only re-arms at the same interval.
			select {
			case <-p.kick:
			default:
			}
			timer.Reset(p.Interval(p.engine.Current()))
		}
	}
}

// tick performs one coalesced status query. Failures are logged and
// swallowed: the loop re-arms unconditionally, which is the only retry
// mechanism the engine has.
func (p *Poller) tick(ctx context.Context) {
	if state, err := p.engine.QueryStatus(ctx); err != nil {
		log.Printf("Power status poll failed: %v", err)
	} else {
		log.Printf("Power status poll: %s", state)
	}
}

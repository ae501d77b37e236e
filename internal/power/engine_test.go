package power

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is a function-field mock of the Transport interface.
type fakeTransport struct {
	InvokeFunc func(ctx context.Context, command string) (string, error)
}

func (f *fakeTransport) Invoke(ctx context.Context, command string) (string, error) {
	return f.InvokeFunc(ctx, command)
}

// blockingTransport answers every command with the configured state, but
// only after release is closed. entered receives the command name as soon
// as the call starts.
type blockingTransport struct {
	entered chan string
	release chan struct{}
	state   string
	calls   atomic.Int32
}

func (b *blockingTransport) Invoke(_ context.Context, command string) (string, error) {
	b.calls.Add(1)
	b.entered <- command
	<-b.release
	return b.state, nil
}

func TestEngine_QueryStatusCoalescesConcurrentCallers(t *testing.T) {
	bt := &blockingTransport{
		entered: make(chan string, 1),
		release: make(chan struct{}),
		state:   "On",
	}
	engine := NewEngine(bt, NewTracker(nil, nil))

	first := engine.execute(keyStatus, cmdStatusQuery)
	assert.Equal(t, cmdStatusQuery, <-bt.entered)

	// These joins arrive while the single bridge call is outstanding.
	second := engine.execute(keyStatus, cmdStatusQuery)
	third := engine.execute(keyStatus, cmdStatusQuery)

	close(bt.release)

	for _, ch := range []<-chan Result{first, second, third} {
		res := <-ch
		assert.Equal(t, StateOn, res.State)
		assert.NoError(t, res.Err)
	}
	assert.Equal(t, int32(1), bt.calls.Load(), "three concurrent queries must issue exactly one bridge call")
}

func TestEngine_WaitForStableOverlap(t *testing.T) {
	bt := &blockingTransport{
		entered: make(chan string, 1),
		release: make(chan struct{}),
		state:   "Standby",
	}
	engine := NewEngine(bt, NewTracker(nil, nil))

	first := engine.execute(keyStable, cmdStatusWait)
	assert.Equal(t, cmdStatusWait, <-bt.entered)

	// Two more waiters attach while the single wait-for-stable call is
	// still blocked server-side.
	second := engine.execute(keyStable, cmdStatusWait)
	third := engine.execute(keyStable, cmdStatusWait)

	close(bt.release)

	for _, ch := range []<-chan Result{first, second, third} {
		res := <-ch
		assert.Equal(t, StateStandby, res.State)
		assert.NoError(t, res.Err)
	}
	assert.Equal(t, int32(1), bt.calls.Load())

	// A call after resolution starts a brand-new bridge call.
	state, err := engine.WaitForStable(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StateStandby, state)
	assert.Equal(t, int32(2), bt.calls.Load())
}

func TestEngine_PowerCommandsPickTheRightBridgeCommand(t *testing.T) {
	testCases := []struct {
		name         string
		call         func(e *Engine) (State, error)
		wantCommand  string
		bridgeAnswer string
		wantState    State
	}{
		{
			name:         "power on waiting for final",
			call:         func(e *Engine) (State, error) { return e.PowerOn(context.Background(), true) },
			wantCommand:  cmdPowerOn,
			bridgeAnswer: "On",
			wantState:    StateOn,
		},
		{
			name:         "power on fire-and-return",
			call:         func(e *Engine) (State, error) { return e.PowerOn(context.Background(), false) },
			wantCommand:  cmdPowerOnStart,
			bridgeAnswer: "Warming",
			wantState:    StateWarming,
		},
		{
			name:         "power off waiting for final",
			call:         func(e *Engine) (State, error) { return e.PowerOff(context.Background(), true) },
			wantCommand:  cmdPowerOff,
			bridgeAnswer: "Standby",
			wantState:    StateStandby,
		},
		{
			name:         "power off fire-and-return",
			call:         func(e *Engine) (State, error) { return e.PowerOff(context.Background(), false) },
			wantCommand:  cmdPowerOffStart,
			bridgeAnswer: "Cooling",
			wantState:    StateCooling,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotCommand string
			transport := &fakeTransport{
				InvokeFunc: func(_ context.Context, command string) (string, error) {
					gotCommand = command
					return tc.bridgeAnswer, nil
				},
			}
			engine := NewEngine(transport, NewTracker(nil, nil))

			state, err := tc.call(engine)
			assert.NoError(t, err)
			assert.Equal(t, tc.wantState, state)
			assert.Equal(t, tc.wantCommand, gotCommand)
			assert.Equal(t, tc.wantState, engine.Current(), "every completion must feed the tracker")
		})
	}
}

func TestEngine_StartupQueryScenario(t *testing.T) {
	// Initial state Unknown; a status query resolving to On must fire one
	// raw transition (Unknown -> On) and one power flip (off -> on).
	tracker, rec := newRecordedTracker()
	transport := &fakeTransport{
		InvokeFunc: func(context.Context, string) (string, error) { return "On", nil },
	}
	engine := NewEngine(transport, tracker)

	state, err := engine.QueryStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateOn, state)

	require.Len(t, rec.transitions, 1)
	assert.Equal(t, StateUnknown, rec.transitions[0].Previous)
	assert.Equal(t, StateOn, rec.transitions[0].Current)
	assert.Equal(t, [][2]bool{{false, true}}, rec.powerFlips)
}

func TestEngine_StartOnFromStandbyScenario(t *testing.T) {
	tracker, rec := newRecordedTracker()
	transport := &fakeTransport{
		InvokeFunc: func(_ context.Context, command string) (string, error) {
			if command == cmdStatusQuery {
				return "Standby", nil
			}
			return "Warming", nil
		},
	}
	engine := NewEngine(transport, tracker)

	_, err := engine.QueryStatus(context.Background())
	require.NoError(t, err)

	state, err := engine.PowerOn(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, StateWarming, state)

	require.Len(t, rec.transitions, 2)
	assert.Equal(t, StateStandby, rec.transitions[1].Previous)
	assert.Equal(t, StateWarming, rec.transitions[1].Current)
	assert.Equal(t, [][2]bool{{false, true}}, rec.powerFlips)
}

func TestEngine_FailureCollapsesToUnknown(t *testing.T) {
	tracker, rec := newRecordedTracker()
	failure := errors.New("connection refused")
	answer := "On"
	var fail bool
	transport := &fakeTransport{
		InvokeFunc: func(context.Context, string) (string, error) {
			if fail {
				return "", failure
			}
			return answer, nil
		},
	}
	engine := NewEngine(transport, tracker)

	_, err := engine.QueryStatus(context.Background())
	require.NoError(t, err)

	fail = true
	state, err := engine.QueryStatus(context.Background())
	assert.Equal(t, StateUnknown, state)
	assert.ErrorIs(t, err, failure)

	// The failed observation still moved the tracker On -> Unknown.
	require.Len(t, rec.transitions, 2)
	assert.Equal(t, StateOn, rec.transitions[1].Previous)
	assert.Equal(t, StateUnknown, rec.transitions[1].Current)
}

func TestEngine_UninterpretableStateIsAnError(t *testing.T) {
	transport := &fakeTransport{
		InvokeFunc: func(context.Context, string) (string, error) { return "", nil },
	}
	engine := NewEngine(transport, NewTracker(nil, nil))

	state, err := engine.QueryStatus(context.Background())
	assert.Equal(t, StateUnknown, state)
	assert.Error(t, err)
}

func TestEngine_OppositeCommandsRunIndependently(t *testing.T) {
	// Deliberately no cross-command mutual exclusion: an off-start while
	// on-start is still resolving issues its own bridge call.
	bt := &blockingTransport{
		entered: make(chan string, 2),
		release: make(chan struct{}),
		state:   "Warming",
	}
	engine := NewEngine(bt, NewTracker(nil, nil))

	onCh := engine.execute(keyOnStart, cmdPowerOnStart)
	offCh := engine.execute(keyOffStart, cmdPowerOffStart)

	assert.Equal(t, cmdPowerOnStart, <-bt.entered)
	assert.Equal(t, cmdPowerOffStart, <-bt.entered)
	close(bt.release)

	<-onCh
	<-offCh
	assert.Equal(t, int32(2), bt.calls.Load())
}

func TestEngine_AbandonedCallerDoesNotCancelTheCommand(t *testing.T) {
	bt := &blockingTransport{
		entered: make(chan string, 1),
		release: make(chan struct{}),
		state:   "On",
	}
	engine := NewEngine(bt, NewTracker(nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	ch := engine.execute(keyStatus, cmdStatusQuery)
	<-bt.entered

	cancel()
	state, err := engine.await(ctx, ch)
	assert.Equal(t, StateUnknown, state)
	assert.ErrorIs(t, err, context.Canceled)

	// The in-flight command still completes and feeds the tracker.
	close(bt.release)
	res := <-ch
	assert.Equal(t, StateOn, res.State)
}

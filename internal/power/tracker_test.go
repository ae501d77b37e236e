package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type trackerRecorder struct {
	transitions []Transition
	powerFlips  [][2]bool
}

func newRecordedTracker() (*Tracker, *trackerRecorder) {
	rec := &trackerRecorder{}
	tr := NewTracker(
		func(t Transition) { rec.transitions = append(rec.transitions, t) },
		func(prev, cur bool) { rec.powerFlips = append(rec.powerFlips, [2]bool{prev, cur}) },
	)
	return tr, rec
}

func TestTracker_StartsUnknown(t *testing.T) {
	tr, _ := newRecordedTracker()
	assert.Equal(t, StateUnknown, tr.Current())
}

func TestTracker_ChangeFiresOnlyWhenDifferent(t *testing.T) {
	tr, rec := newRecordedTracker()

	assert.True(t, tr.Observe(StateOn))
	assert.False(t, tr.Observe(StateOn), "observing the same state twice is not a change")
	assert.True(t, tr.Observe(StateStandby))

	assert.Len(t, rec.transitions, 2)
	assert.Equal(t, StateUnknown, rec.transitions[0].Previous)
	assert.Equal(t, StateOn, rec.transitions[0].Current)
	assert.Equal(t, StateOn, rec.transitions[1].Previous)
	assert.Equal(t, StateStandby, rec.transitions[1].Current)
}

func TestTracker_PowerProjectionIsIndependent(t *testing.T) {
	testCases := []struct {
		name            string
		sequence        []State
		wantTransitions int
		wantPowerFlips  [][2]bool
	}{
		{
			name:            "On to Warming changes raw state but not projection",
			sequence:        []State{StateOn, StateWarming},
			wantTransitions: 2,
			wantPowerFlips:  [][2]bool{{false, true}},
		},
		{
			name:            "Warming to Standby fires both",
			sequence:        []State{StateWarming, StateStandby},
			wantTransitions: 2,
			wantPowerFlips:  [][2]bool{{false, true}, {true, false}},
		},
		{
			name:            "Cooling to Standby fires only the raw event",
			sequence:        []State{StateCooling, StateStandby},
			wantTransitions: 2,
			wantPowerFlips:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr, rec := newRecordedTracker()
			for _, s := range tc.sequence {
				tr.Observe(s)
			}
			assert.Len(t, rec.transitions, tc.wantTransitions)
			assert.Equal(t, tc.wantPowerFlips, rec.powerFlips)
		})
	}
}

func TestTracker_UnknownIsALegitimateObservation(t *testing.T) {
	tr, rec := newRecordedTracker()

	tr.Observe(StateOn)
	assert.True(t, tr.Observe(StateUnknown), "a failed query's Unknown still counts as a change")

	assert.Equal(t, StateUnknown, tr.Current())
	assert.Equal(t, Transition{Previous: StateOn, Current: StateUnknown, ObservedAt: rec.transitions[1].ObservedAt}, rec.transitions[1])
	assert.Equal(t, [][2]bool{{false, true}, {true, false}}, rec.powerFlips)
}

func TestTracker_NilCallbacksAreAllowed(t *testing.T) {
	tr := NewTracker(nil, nil)
	assert.True(t, tr.Observe(StateOn))
	assert.Equal(t, StateOn, tr.Current())
}

package power

import (
	"fmt"
	"strings"
)

// State is the receiver's reported power state.
type State string

const (
	StateUnknown   State = "Unknown"
	StateOn        State = "On"
	StateStandby   State = "Standby"
	StateCooling   State = "Cooling"
	StateWarming   State = "Warming"
	StateEmergency State = "Emergency"
)

// ParseState converts a raw status string from the bridge into a State.
// Matching is case-insensitive. An empty or unrecognized string is an error.
func ParseState(raw string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on":
		return StateOn, nil
	case "standby":
		return StateStandby, nil
	case "cooling":
		return StateCooling, nil
	case "warming":
		return StateWarming, nil
	case "emergency":
		return StateEmergency, nil
	case "unknown":
		return StateUnknown, nil
	}
	return StateUnknown, fmt.Errorf("unrecognized power state %q", raw)
}

// IsTransitional reports whether the receiver is expected to leave this
// state on its own within a bounded time.
func (s State) IsTransitional() bool {
	return s == StateWarming || s == StateCooling
}

// IsOn is the logical on/off projection: a warming receiver already counts
// as on; everything else (including Cooling) counts as off.
func (s State) IsOn() bool {
	return s == StateOn || s == StateWarming
}

func (s State) String() string {
	return string(s)
}

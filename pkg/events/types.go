package events

import "encoding/json"

// Event name constants.
const (
	DutyTransition   = "duty.transition"
	UndervoltageTrip = "undervoltage.trip"
)

// Event is a generic event published by the daemon, also delivered as an
// SSE event to API subscribers.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// DutyTransitionEvent is the typed payload for duty.transition.
type DutyTransitionEvent struct {
	From string `json:"from"`
	To   string `json:"to"`
	Tick uint64 `json:"tick"`
	Ts   int64  `json:"ts"`
}

// UndervoltageTripEvent is the typed payload for undervoltage.trip. Once
// published, the load stays off until the daemon is restarted.
type UndervoltageTripEvent struct {
	Sample    uint16 `json:"sample"`
	Threshold uint16 `json:"threshold"`
	Tick      uint64 `json:"tick"`
	Ts        int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified type T. It
// ignores the event name and simply unmarshals Data into T. If Data is
// empty, it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}

// Package fsm defines the dispatch loop lifecycle.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle        State = "idle"
	StateListening   State = "listening"
	StateDispatching State = "dispatching"
	StateStopped     State = "stopped"
)

const (
	EventStart   Event = "start"
	EventHeard   Event = "heard"
	EventMissed  Event = "missed"
	EventHandled Event = "handled"
	EventStop    Event = "stop"
)

func Transition(current State, event Event) (State, error) {
	if event == EventStop {
		switch current {
		case StateIdle, StateListening, StateDispatching:
			return StateStopped, nil
		}
	}

	switch current {
	case StateIdle:
		switch event {
		case EventStart:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateListening:
		switch event {
		case EventHeard:
			return StateDispatching, nil
		case EventMissed:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateDispatching:
		switch event {
		case EventHandled:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStopped:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// Terminal reports whether no further events are accepted.
func (s State) Terminal() bool {
	return s == StateStopped
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}

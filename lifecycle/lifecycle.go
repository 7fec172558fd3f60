// Package lifecycle holds the order and payment state machines. Every status
// change in the API goes through Next so illegal moves are rejected in one
// place instead of in each handler.
package lifecycle

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is wrapped by every rejected transition.
var ErrIllegalTransition = errors.New("illegal status transition")

// TransitionError describes a rejected transition.
type TransitionError struct {
	Machine string
	From    string
	Event   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s from %q", e.Machine, e.Event, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// table maps from-state and event to the resulting state.
type table[S ~string, E ~string] map[S]map[E]S

func (t table[S, E]) next(machine string, from S, ev E) (S, error) {
	if to, ok := t[from][ev]; ok {
		return to, nil
	}
	return from, &TransitionError{Machine: machine, From: string(from), Event: string(ev)}
}

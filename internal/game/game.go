package game

import (
	"errors"
	"time"
)

// Kind identifies one of the drills built on the engine.
type Kind string

const (
	KindArrow   Kind = "arrow"
	KindScan    Kind = "scan"
	KindStriker Kind = "striker"
)

// Kinds lists every drill in menu order.
var Kinds = []Kind{KindArrow, KindScan, KindStriker}

func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

var (
	ErrInvalidConfig     = errors.New("invalid game configuration")
	ErrContractViolation = errors.New("evaluation contract violation")
	ErrDeckExhausted     = errors.New("scenario deck exhausted")
	ErrUnknownGame       = errors.New("unknown game")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotIdle           = errors.New("session already started")
)

// rules holds what differs between drills: how the stimulus is presented,
// which inputs count and what happens when the response window expires.
// Implementations run on the session's goroutine and mutate it only
// through its transition methods.
type rules interface {
	kind() Kind

	// enterPending is called right after the trial spec is drawn.
	enterPending(s *Session)

	// pendingInput handles input that arrives before the window opens.
	pendingInput(s *Session, in Input) bool

	// openInput handles input while the response window is open.
	openInput(s *Session, in Input) bool

	// expire is called when the response window runs out.
	expire(s *Session)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

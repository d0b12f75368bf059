package session

import (
	"errors"
	"fmt"
)

var (
	// ErrProfanity rejects a comment that failed the profanity filter. The
	// comment is never published.
	ErrProfanity = errors.New("comment contains profanity")

	// ErrCooldown rejects a comment sent inside the cooldown window after
	// the previous one. No server round-trip happens.
	ErrCooldown = errors.New("comment cooldown in effect")

	// ErrUnknownReaction rejects a reaction kind outside the allowed set.
	ErrUnknownReaction = errors.New("unknown reaction kind")

	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session closed")

	// errSuperseded aborts a pinned listen attempt whose generation the
	// session has already moved past.
	errSuperseded = errors.New("listen superseded")
)

// A TransportError wraps a channel publish or subscribe failure. It is
// recoverable: the session may reconnect, and it never tears the session
// down on its own.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// An AggregationError wraps a failed leaderboard increment or fetch. The
// counters are advisory, so the failure is logged and the other board's
// write is not rolled back.
type AggregationError struct {
	Board  string
	Member string
	Err    error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate %s on board %s: %v", e.Member, e.Board, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

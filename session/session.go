// Package session is the client-side controller for one device's
// participation in a presentation: it holds the credentials, at most one
// live topic subscription, and the publish gates for comments.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/livedeck/reactions-backend/profanity"
)

const (
	defaultCooldown          = 10 * time.Second
	defaultReconnectAttempts = 5
	reconnectBaseDelay       = time.Second
	reconnectMaxDelay        = 30 * time.Second
)

// DefaultReactionKinds is the closed set of reaction identifiers accepted
// for aggregation when the config does not override it.
var DefaultReactionKinds = []string{"heart", "clap", "laugh", "wow", "fire"}

// Config configures a Session.
type Config struct {
	// Presentation is the slug identifying the topic and the leaderboards.
	Presentation string
	// Username is the device's self-declared display name.
	Username string

	Credentials CredentialSource
	Transport   Transport
	Boards      Leaderboard
	Filter      *profanity.Filter
	Logger      *slog.Logger

	// Cooldown is the client-side wait between comments. Defaults to ten
	// seconds.
	Cooldown time.Duration
	// ReactionKinds overrides the allowed reaction set.
	ReactionKinds []string
	// ReconnectAttempts bounds automatic resubscribes after a transport
	// error. Zero means the default; negative disables reconnecting.
	ReconnectAttempts int

	// OnComment receives comment events for display. Optional.
	OnComment func(username, message string)
	// OnReaction receives reaction events for display, after aggregation.
	// Optional.
	OnReaction func(username, kind string)

	clock func() time.Time
}

// A Session is one device's end-to-end participation in a presentation. It
// is constructed once, opened, and closed when the device navigates away;
// closing always releases any live subscription.
type Session struct {
	cfg       Config
	boards    [2]string // reaction-kind board, reacter board
	cooldown  time.Duration
	kinds     []string
	reconnect int
	clock     func() time.Time

	mu          sync.Mutex
	sub         Subscription
	gen         int
	closed      bool
	lastComment time.Time
}

// New validates the config and returns an unopened Session.
func New(cfg Config) (*Session, error) {
	if cfg.Presentation == "" {
		return nil, fmt.Errorf("presentation slug is required")
	}
	if cfg.Credentials == nil || cfg.Transport == nil || cfg.Boards == nil {
		return nil, fmt.Errorf("credentials, transport and boards are required")
	}
	if cfg.Filter == nil {
		cfg.Filter = profanity.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}

	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	kinds := cfg.ReactionKinds
	if len(kinds) == 0 {
		kinds = DefaultReactionKinds
	}
	reconnect := cfg.ReconnectAttempts
	if reconnect == 0 {
		reconnect = defaultReconnectAttempts
	}

	return &Session{
		cfg:       cfg,
		boards:    [2]string{cfg.Presentation, cfg.Presentation + "-reacters"},
		cooldown:  cooldown,
		kinds:     kinds,
		reconnect: reconnect,
		clock:     cfg.clock,
	}, nil
}

// Open acquires the device's token and starts listening. Without a valid
// token the session does not touch the channel or the boards.
func (s *Session) Open(ctx context.Context) error {
	if _, err := s.cfg.Credentials.Token(ctx); err != nil {
		return err
	}
	return s.Listen(ctx)
}

// Listen opens the presentation-topic subscription. Listening while already
// listening is a no-op; resuming after Pause opens a brand-new subscription.
func (s *Session) Listen(ctx context.Context) error {
	return s.listen(ctx, -1)
}

// listen opens the subscription. A non-negative wantGen pins the attempt to
// that generation: once Pause, Close or a user Listen has moved the session
// on, the attempt aborts with errSuperseded instead of resurrecting a
// subscription the user turned off.
func (s *Session) listen(ctx context.Context, wantGen int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if wantGen >= 0 && s.gen != wantGen {
		s.mu.Unlock()
		return errSuperseded
	}
	if s.sub != nil {
		s.mu.Unlock()
		return nil
	}
	gen := wantGen
	if gen < 0 {
		s.gen++
		gen = s.gen
	}
	s.mu.Unlock()

	if _, err := s.cfg.Credentials.Token(ctx); err != nil {
		return err
	}

	sub, err := s.cfg.Transport.Subscribe(ctx, s.cfg.Presentation,
		func(payload []byte) { s.dispatch(gen, payload) },
		func(err error) { s.handleTransportError(gen, err) },
	)
	if err != nil {
		return &TransportError{Op: "subscribe", Err: err}
	}

	s.mu.Lock()
	// The session may have been paused or closed while the subscribe was in
	// flight; a later-resolving setup must not resurrect it.
	if s.closed || s.gen != gen {
		s.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	s.sub = sub
	s.mu.Unlock()

	s.cfg.Logger.Info("Listening for reactions", "presentation", s.cfg.Presentation)
	return nil
}

// Pause releases the live subscription. Already-aggregated leaderboard state
// is untouched; a later Listen starts a fresh subscribing cycle.
func (s *Session) Pause() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.gen++
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
		s.cfg.Logger.Info("Paused listening", "presentation", s.cfg.Presentation)
	}
}

// Close releases the subscription and marks the session unusable. It is
// idempotent and must always run on teardown.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sub := s.sub
	s.sub = nil
	s.gen++
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	s.cfg.Logger.Info("Session closed", "presentation", s.cfg.Presentation)
}

// Listening reports whether a subscription is currently live.
func (s *Session) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sub != nil
}

// current reports whether callbacks minted at gen may still apply side
// effects.
func (s *Session) current(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.gen == gen
}

// dispatch routes one received payload. Reaction events feed both boards;
// comment events go to the display layer only; malformed payloads are
// dropped and logged, never fatal to the subscription.
func (s *Session) dispatch(gen int, payload []byte) {
	if !s.current(gen) {
		return
	}

	ev, err := parseEvent(payload)
	if err != nil {
		s.cfg.Logger.Warn("Dropping malformed payload", "error", err.Error())
		return
	}

	switch ev.Type {
	case EventReaction:
		if !slices.Contains(s.kinds, ev.Reaction) {
			s.cfg.Logger.Warn("Dropping unknown reaction kind", "reaction", ev.Reaction)
			return
		}
		s.aggregate(ev)
		if s.cfg.OnReaction != nil {
			s.cfg.OnReaction(ev.Username, ev.Reaction)
		}
	case EventComment:
		if s.cfg.OnComment != nil {
			s.cfg.OnComment(ev.Username, ev.Message)
		}
	}
}

// aggregate applies both increments for a reaction. The writes are best
// effort: a failure on one board is logged and does not roll back or block
// the other.
func (s *Session) aggregate(ev Event) {
	ctx := context.Background()

	if err := s.cfg.Boards.Increment(ctx, s.boards[1], ev.Username, 1); err != nil {
		aggErr := &AggregationError{Board: s.boards[1], Member: ev.Username, Err: err}
		s.cfg.Logger.Error("Could not update reacter board", "error", aggErr.Error())
	}
	if err := s.cfg.Boards.Increment(ctx, s.boards[0], ev.Reaction, 1); err != nil {
		aggErr := &AggregationError{Board: s.boards[0], Member: ev.Reaction, Err: err}
		s.cfg.Logger.Error("Could not update reaction board", "error", aggErr.Error())
	}
}

// handleTransportError surfaces a subscription failure and attempts a fresh
// subscribing cycle with capped exponential backoff. Retries are bounded;
// the session never spins on a dead transport.
func (s *Session) handleTransportError(gen int, err error) {
	terr := &TransportError{Op: "receive", Err: err}
	s.cfg.Logger.Error("Subscription failed", "error", terr.Error())

	s.mu.Lock()
	if s.closed || s.gen != gen {
		s.mu.Unlock()
		return
	}
	// The errored subscription is spent; release our reference so Listen
	// can open a new one.
	sub := s.sub
	s.sub = nil
	s.gen++
	resumeGen := s.gen
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	if s.reconnect < 0 {
		return
	}

	go func() {
		delay := reconnectBaseDelay
		for attempt := 1; attempt <= s.reconnect; attempt++ {
			time.Sleep(delay)
			if delay *= 2; delay > reconnectMaxDelay {
				delay = reconnectMaxDelay
			}

			lerr := s.listen(context.Background(), resumeGen)
			if lerr == nil || lerr == ErrClosed || lerr == errSuperseded {
				return
			}
			s.cfg.Logger.Error("Reconnect attempt failed", "attempt", attempt, "error", lerr.Error())
		}
		s.cfg.Logger.Error("Giving up on reconnect", "presentation", s.cfg.Presentation)
	}()
}

// SendReaction publishes a reaction event. Reactions bypass the profanity
// filter and the comment cooldown.
func (s *Session) SendReaction(ctx context.Context, kind string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if !slices.Contains(s.kinds, kind) {
		return fmt.Errorf("%w: %q", ErrUnknownReaction, kind)
	}

	return s.publish(ctx, Event{
		Type:     EventReaction,
		Username: s.cfg.Username,
		Reaction: kind,
	})
}

// SendComment publishes a comment event after the publish gate: the
// profanity filter first, then the cooldown. Rejections are local; nothing
// reaches the channel.
func (s *Session) SendComment(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	last := s.lastComment
	s.mu.Unlock()

	if s.cfg.Filter.IsProfane(text) {
		return ErrProfanity
	}
	if !last.IsZero() && s.clock().Sub(last) < s.cooldown {
		return ErrCooldown
	}

	err := s.publish(ctx, Event{
		Type:     EventComment,
		Username: s.cfg.Username,
		Message:  text,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lastComment = s.clock()
	s.mu.Unlock()
	return nil
}

// publish refreshes the token if needed and fans the event out. A publish
// with an expired, unrefreshable token never reaches the channel.
func (s *Session) publish(ctx context.Context, ev Event) error {
	if _, err := s.cfg.Credentials.Token(ctx); err != nil {
		return err
	}

	payload, err := ev.encode()
	if err != nil {
		return err
	}
	if err := s.cfg.Transport.Publish(ctx, s.cfg.Presentation, payload); err != nil {
		return &TransportError{Op: "publish", Err: err}
	}
	return nil
}

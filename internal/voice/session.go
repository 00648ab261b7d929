package voice

import (
	"context"
	"fmt"
	"sync"

	"github.com/soundlink/conductor/internal/logger"
	"github.com/soundlink/conductor/internal/node"
)

// State is the reconciliation state of a voice session.
type State int

const (
	// StateAwaitingFacts: neither signaling fact has arrived yet.
	StateAwaitingFacts State = iota
	// StatePartial: exactly one fact is present.
	StatePartial
	// StateReady: both facts present, handshake sent to the owning link.
	StateReady
	// StateMigrating: handshake being re-sent to a different link.
	StateMigrating
	// StateClosed: session torn down; all further signals are ignored.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingFacts:
		return "awaiting_facts"
	case StatePartial:
		return "partial"
	case StateReady:
		return "ready"
	case StateMigrating:
		return "migrating"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// AssertionError reports an internal invariant violation, such as a handshake
// attempted with no assigned link. It is fatal to the affected session only:
// the caller should close the session, not the process.
type AssertionError struct {
	GuildID string
	Reason  string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("voice session %s: %s", e.GuildID, e.Reason)
}

// Session reconciles the two asynchronously arriving signaling facts for one
// guild (the session id and the server assignment) into a single handshake
// sent to the owning node link. Fact handling is atomic with respect to
// handshake emission: both happen under the session lock, so interleaved
// signal delivery for the same guild can neither double-send nor lose a fact.
type Session struct {
	guildID string
	logger  logger.Logger

	mu            sync.Mutex
	state         State
	channelID     string
	textChannelID string
	sessionID     string
	endpoint      string
	token         string
	link          *node.Link
}

// Snapshot is a point-in-time view of a session, safe to serialize.
type Snapshot struct {
	GuildID       string `json:"guild_id"`
	ChannelID     string `json:"channel_id,omitempty"`
	TextChannelID string `json:"text_channel_id,omitempty"`
	State         string `json:"state"`
	Node          string `json:"node,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
	Endpoint      string `json:"endpoint,omitempty"`
}

// NewSession builds a session owned by the given link. The registry
// guarantees a link is assigned before the first fact can arrive.
func NewSession(guildID, channelID, textChannelID string, link *node.Link, log logger.Logger) *Session {
	return &Session{
		guildID:       guildID,
		channelID:     channelID,
		textChannelID: textChannelID,
		link:          link,
		logger:        log,
		state:         StateAwaitingFacts,
	}
}

func (s *Session) GuildID() string { return s.guildID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Link returns the currently owning link, nil once closed.
func (s *Session) Link() *node.Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		GuildID:       s.guildID,
		ChannelID:     s.channelID,
		TextChannelID: s.textChannelID,
		State:         s.state.String(),
		SessionID:     s.sessionID,
		Endpoint:      s.endpoint,
	}
	if s.link != nil {
		snap.Node = s.link.ID()
	}
	return snap
}

// HandleSessionUpdate stores the session-id fact. A duplicate of the already
// stored id is a no-op: no second handshake is emitted.
func (s *Session) HandleSessionUpdate(ctx context.Context, sessionID, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil
	}
	if channelID != "" {
		s.channelID = channelID
	}
	if s.sessionID == sessionID {
		return nil
	}
	s.sessionID = sessionID
	return s.reconcileLocked(ctx)
}

// HandleServerUpdate stores the server-assignment fact. An assignment with no
// reachable endpoint is absorbed without storing anything: the upstream
// service occasionally sends an incomplete update, and waiting for the next
// complete one is the policy, not an error. Duplicates are no-ops.
func (s *Session) HandleServerUpdate(ctx context.Context, endpoint, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil
	}
	if endpoint == "" {
		s.logger.Debug("ignoring partial server assignment",
			logger.String("guild", s.guildID))
		return nil
	}
	if s.endpoint == endpoint && s.token == token {
		return nil
	}
	s.endpoint = endpoint
	s.token = token
	return s.reconcileLocked(ctx)
}

// Migrate reassigns the owning link and re-sends the full handshake with the
// existing facts. Only valid from READY. No acknowledgment message exists
// upstream, so the MIGRATING -> READY transition is immediate and optimistic.
func (s *Session) Migrate(ctx context.Context, target *node.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return fmt.Errorf("voice session %s: migrate from %s not allowed", s.guildID, s.state)
	}
	if target == s.link {
		return nil
	}

	s.state = StateMigrating
	prev := s.link
	s.link = target
	target.AcquireSession()
	if prev != nil {
		prev.ReleaseSession()
	}

	err := s.emitLocked(ctx)
	s.state = StateReady

	var prevID string
	if prev != nil {
		prevID = prev.ID()
	}
	s.logger.Info("session migrated",
		logger.String("guild", s.guildID),
		logger.String("from", prevID),
		logger.String("to", target.ID()))
	return err
}

// Resend re-emits the handshake with the stored facts to the owning link.
// Used after a link reconnects; only a READY session has anything to resend.
func (s *Session) Resend(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return nil
	}
	return s.emitLocked(ctx)
}

// Close releases the owning link reference and moves to CLOSED. Valid from
// any state; pending facts are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return
	}
	if s.link != nil {
		s.link.ReleaseSession()
		s.link = nil
	}
	s.state = StateClosed
}

// reconcileLocked advances the state machine after a fact changed. Caller
// holds s.mu.
func (s *Session) reconcileLocked(ctx context.Context) error {
	if s.sessionID == "" || s.endpoint == "" {
		s.state = StatePartial
		return nil
	}
	if err := s.emitLocked(ctx); err != nil {
		return err
	}
	s.state = StateReady
	return nil
}

// emitLocked sends the handshake to the owning link. Caller holds s.mu.
func (s *Session) emitLocked(ctx context.Context) error {
	if s.link == nil {
		return &AssertionError{GuildID: s.guildID, Reason: "handshake with no assigned link"}
	}
	if !s.link.Ready() {
		return &AssertionError{
			GuildID: s.guildID,
			Reason:  fmt.Sprintf("handshake with link %s in state %s", s.link.ID(), s.link.Status()),
		}
	}
	return s.link.SendVoiceUpdate(ctx, s.guildID, s.sessionID, s.endpoint, s.token)
}

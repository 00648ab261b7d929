package voice

import (
	"context"
	"errors"
	"sync"

	"github.com/soundlink/conductor/internal/logger"
	"github.com/soundlink/conductor/internal/node"
)

// Registry owns the guild -> session mapping and session lifecycle. It is the
// single place where links get assigned to sessions, so the invariant that a
// session has a link before its first fact arrives is enforced here.
type Registry struct {
	pool    *node.Pool
	regions *RegionTable
	logger  logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry builds an empty registry over the given pool and region table.
func NewRegistry(pool *node.Pool, regions *RegionTable, log logger.Logger) *Registry {
	return &Registry{
		pool:     pool,
		regions:  regions,
		logger:   log,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the existing session for a guild, or creates one bound
// to the current best node. One session per guild.
func (r *Registry) GetOrCreate(guildID, channelID, textChannelID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[guildID]; ok {
		return s, nil
	}

	link, err := r.pool.Best()
	if err != nil {
		return nil, err
	}
	link.AcquireSession()

	s := NewSession(guildID, channelID, textChannelID, link, r.logger)
	r.sessions[guildID] = s

	r.logger.Info("voice session created",
		logger.String("guild", guildID),
		logger.String("node", link.ID()))
	return s, nil
}

// Get returns the session for a guild, or nil.
func (r *Registry) Get(guildID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[guildID]
}

// All returns every live session.
func (r *Registry) All() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Close tears down the session for a guild and removes it from the registry.
func (r *Registry) Close(guildID string) {
	r.mu.Lock()
	s := r.sessions[guildID]
	delete(r.sessions, guildID)
	r.mu.Unlock()

	if s != nil {
		s.Close()
		r.logger.Info("voice session closed", logger.String("guild", guildID))
	}
}

// SessionUpdate applies the session-id fact to a guild's session. A signal
// for a guild with no session is dropped: sessions are created by playback
// requests, not by stray signaling.
func (r *Registry) SessionUpdate(ctx context.Context, guildID, sessionID, channelID string) error {
	s := r.Get(guildID)
	if s == nil {
		r.logger.Debug("session update for unknown guild", logger.String("guild", guildID))
		return nil
	}
	return r.fatalToSession(guildID, s.HandleSessionUpdate(ctx, sessionID, channelID))
}

// ServerUpdate applies the server-assignment fact, then runs the region-aware
// migration policy: when the endpoint implies a region different from the
// owning link's and a CONNECTED link exists in that region, the session moves
// to the lowest-penalty such link. Locality is best-effort: the session
// stays valid when migration is skipped.
func (r *Registry) ServerUpdate(ctx context.Context, guildID, endpoint, token string) error {
	s := r.Get(guildID)
	if s == nil {
		r.logger.Debug("server update for unknown guild", logger.String("guild", guildID))
		return nil
	}

	if err := r.fatalToSession(guildID, s.HandleServerUpdate(ctx, endpoint, token)); err != nil {
		return err
	}
	if endpoint == "" || s.State() != StateReady {
		return nil
	}

	implied := r.regions.Infer(endpoint)
	if implied == "" {
		return nil
	}
	owner := s.Link()
	if owner == nil || owner.Region() == implied {
		return nil
	}

	target, ok := r.pool.BestInRegion(implied)
	if !ok || target == owner {
		r.logger.Debug("no connected link in implied region, keeping current",
			logger.String("guild", guildID),
			logger.String("region", implied))
		return nil
	}
	return r.fatalToSession(guildID, s.Migrate(ctx, target))
}

// fatalToSession closes a session whose invariant was violated. The error
// still propagates so the caller can notify whoever issued the request.
func (r *Registry) fatalToSession(guildID string, err error) error {
	var assertion *AssertionError
	if errors.As(err, &assertion) {
		r.logger.Error("session invariant violated, closing",
			logger.String("guild", guildID),
			logger.Error(err))
		r.Close(guildID)
	}
	return err
}

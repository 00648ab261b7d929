// Package orchestrator exposes the public request/search/signaling surface
// and composes the node pool, session registry, search cache and the catalog
// collaborators.
package orchestrator

import (
	"context"
	"errors"
	"strings"

	"github.com/soundlink/conductor/internal/catalog"
	"github.com/soundlink/conductor/internal/logger"
	"github.com/soundlink/conductor/internal/node"
	redisstore "github.com/soundlink/conductor/internal/store/redis"
	"github.com/soundlink/conductor/internal/track"
	"github.com/soundlink/conductor/internal/voice"
)

type Orchestrator struct {
	pool     *node.Pool
	sessions *voice.Registry
	catalogs *catalog.Registry
	cache    *searchCache
	store    *redisstore.Store // nil when the persistent layer is disabled
	logger   logger.Logger

	events *eventHub
}

// New wires the orchestrator. store may be nil.
func New(
	pool *node.Pool,
	sessions *voice.Registry,
	catalogs *catalog.Registry,
	store *redisstore.Store,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		pool:     pool,
		sessions: sessions,
		catalogs: catalogs,
		cache:    newSearchCache(),
		store:    store,
		logger:   log,
		events:   newEventHub(),
	}
}

// Session returns the guild's voice session, creating one bound to the
// current best node when none exists.
func (o *Orchestrator) Session(guildID, channelID, textChannelID string) (*voice.Session, error) {
	return o.sessions.GetOrCreate(guildID, channelID, textChannelID)
}

// SessionSnapshot returns a serializable view of a guild's session, or false
// when the guild has none.
func (o *Orchestrator) SessionSnapshot(guildID string) (voice.Snapshot, bool) {
	s := o.sessions.Get(guildID)
	if s == nil {
		return voice.Snapshot{}, false
	}
	return s.Snapshot(), true
}

// Play submits a playback request for a guild, creating the session when this
// is the guild's first one. A link that went unavailable under the session
// triggers one reselection: the session migrates to the current best node and
// the request is retried there.
func (o *Orchestrator) Play(ctx context.Context, guildID, channelID, encoded string) error {
	s, err := o.sessions.GetOrCreate(guildID, channelID, "")
	if err != nil {
		return err
	}

	link := s.Link()
	if link == nil {
		return &voice.AssertionError{GuildID: guildID, Reason: "playback on closed session"}
	}

	err = link.Play(ctx, guildID, encoded)
	if !errors.Is(err, node.ErrNodeUnavailable) {
		return err
	}

	best, selErr := o.pool.Best()
	if selErr != nil {
		return selErr
	}
	if s.State() == voice.StateReady && best != link {
		if err := s.Migrate(ctx, best); err != nil {
			return err
		}
	}
	return best.Play(ctx, guildID, encoded)
}

// Leave stops playback best-effort and destroys the guild's session.
func (o *Orchestrator) Leave(ctx context.Context, guildID string) {
	if s := o.sessions.Get(guildID); s != nil {
		if link := s.Link(); link != nil {
			if err := link.Stop(ctx, guildID); err != nil {
				o.logger.Debug("stop on leave failed",
					logger.String("guild", guildID),
					logger.Error(err))
			}
		}
	}
	o.sessions.Close(guildID)
}

// Search resolves a query to a load result. Catalog collaborators are probed
// first in priority order; the first URL-pattern match owns the query even
// when its result is empty. Only then the (possibly source-prefixed) query
// goes through the caches and finally the generic load on the best node.
// Failures on the catalog and generic paths resolve to LOAD_FAILED; only a
// pool with no connected node raises.
func (o *Orchestrator) Search(ctx context.Context, query, source string) (*track.LoadResult, error) {
	if result, owned, err := o.catalogs.Lookup(ctx, query); owned {
		if err != nil {
			o.logger.Warn("catalog lookup failed",
				logger.String("query", query),
				logger.Error(err))
			return track.Failed(), nil
		}
		return result, nil
	}

	final := query
	if source != "" && !strings.Contains(query, "://") {
		final = source + ":" + query
	}

	if result, ok := o.cache.get(final); ok {
		o.logger.Debug("search cache hit", logger.String("query", final))
		return result, nil
	}

	if o.store != nil {
		result, err := o.store.GetResult(ctx, final)
		if err != nil {
			o.logger.Warn("persistent cache lookup failed", logger.Error(err))
		} else if result != nil {
			o.cache.put(final, result)
			return result, nil
		}
	}

	link, err := o.pool.Best()
	if err != nil {
		return nil, err
	}

	resp, err := link.LoadTracks(ctx, final)
	if err != nil {
		o.logger.Warn("load failed on node",
			logger.String("node", link.ID()),
			logger.String("query", final),
			logger.Error(err))
		return track.Failed(), nil
	}

	result := wrapLoadResponse(resp)
	o.cache.put(final, result)
	if o.store != nil {
		if err := o.store.SaveResult(ctx, final, result, redisstore.DefaultResultTTL); err != nil {
			o.logger.Warn("persistent cache write failed", logger.Error(err))
		}
	}
	return result, nil
}

// wrapLoadResponse turns the node's wire reply into track value objects.
// Playlist duration is recomputed as the sum of member lengths; the
// upstream-reported aggregate is not trusted.
func wrapLoadResponse(resp *node.LoadTracksResponse) *track.LoadResult {
	tracks := make([]track.Track, 0, len(resp.Tracks))
	for _, td := range resp.Tracks {
		tracks = append(tracks, track.NewResolved(td.Encoded, td.Info))
	}

	result := &track.LoadResult{
		LoadType: resp.LoadType,
		Tracks:   tracks,
	}
	if resp.LoadType == track.LoadTypePlaylistLoaded {
		result.Playlist = &track.PlaylistInfo{
			Name:          resp.PlaylistInfo.Name,
			SelectedTrack: resp.PlaylistInfo.SelectedTrack,
			Duration:      track.TotalLength(tracks),
		}
	}
	return result
}

// DecodeTrack expands one opaque token via the best node. The returned track
// carries the original token, so re-encoding round-trips exactly.
func (o *Orchestrator) DecodeTrack(ctx context.Context, encoded string) (track.Resolved, error) {
	link, err := o.pool.Best()
	if err != nil {
		return track.Resolved{}, err
	}
	info, err := link.DecodeTrack(ctx, encoded)
	if err != nil {
		return track.Resolved{}, err
	}
	return track.NewResolved(encoded, info), nil
}

// DecodeTracks expands many tokens in one call.
func (o *Orchestrator) DecodeTracks(ctx context.Context, encoded []string) ([]track.Resolved, error) {
	link, err := o.pool.Best()
	if err != nil {
		return nil, err
	}
	data, err := link.DecodeTracks(ctx, encoded)
	if err != nil {
		return nil, err
	}
	out := make([]track.Resolved, 0, len(data))
	for _, td := range data {
		out = append(out, track.NewResolved(td.Encoded, td.Info))
	}
	return out, nil
}

// ResumeNode re-emits the handshake for every READY session owned by a link
// that just re-entered CONNECTED. Thin pass-through: sessions that cannot
// resend keep their state and surface the error in logs only.
func (o *Orchestrator) ResumeNode(ctx context.Context, link *node.Link) {
	for _, s := range o.sessions.All() {
		if s.Link() != link || s.State() != voice.StateReady {
			continue
		}
		if err := s.Resend(ctx); err != nil {
			o.logger.Warn("session resume failed",
				logger.String("guild", s.GuildID()),
				logger.String("node", link.ID()),
				logger.Error(err))
		}
	}
}

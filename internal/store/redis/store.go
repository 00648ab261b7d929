// Package redis persists search results across process restarts. The
// in-memory search cache stays authoritative; this layer is a best-effort
// warm store consulted only after an in-memory miss.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soundlink/conductor/internal/track"
)

// DefaultResultTTL bounds how long a persisted search result stays warm.
const DefaultResultTTL = 24 * time.Hour

// Store handles redis operations for search results.
type Store struct {
	client *redis.Client
}

// NewStore wraps a connected redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// storedTrack flattens the track interface for serialization. An empty
// Encoded marks a metadata-only track.
type storedTrack struct {
	Encoded string     `json:"encoded,omitempty"`
	Info    track.Info `json:"info"`
}

type storedResult struct {
	LoadType track.LoadType      `json:"loadType"`
	Playlist *track.PlaylistInfo `json:"playlistInfo,omitempty"`
	Tracks   []storedTrack       `json:"tracks"`
}

// SaveResult persists one search result under its final query string.
func (s *Store) SaveResult(ctx context.Context, query string, result *track.LoadResult, ttl time.Duration) error {
	stored := storedResult{
		LoadType: result.LoadType,
		Playlist: result.Playlist,
		Tracks:   make([]storedTrack, 0, len(result.Tracks)),
	}
	for _, t := range result.Tracks {
		st := storedTrack{Info: t.Info()}
		if r, ok := t.(track.Resolved); ok {
			st.Encoded = r.Encoded()
		}
		stored.Tracks = append(stored.Tracks, st)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal search result: %w", err)
	}
	if err := s.client.Set(ctx, ResultKey(query), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save search result: %w", err)
	}
	return nil
}

// GetResult retrieves a persisted result. A miss returns (nil, nil).
func (s *Store) GetResult(ctx context.Context, query string) (*track.LoadResult, error) {
	data, err := s.client.Get(ctx, ResultKey(query)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get search result: %w", err)
	}

	var stored storedResult
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search result: %w", err)
	}

	result := &track.LoadResult{
		LoadType: stored.LoadType,
		Playlist: stored.Playlist,
		Tracks:   make([]track.Track, 0, len(stored.Tracks)),
	}
	for _, st := range stored.Tracks {
		if st.Encoded != "" {
			result.Tracks = append(result.Tracks, track.NewResolved(st.Encoded, st.Info))
		} else {
			result.Tracks = append(result.Tracks, track.NewUnresolved(st.Info))
		}
	}
	return result, nil
}

// InvalidateResult drops a persisted result.
func (s *Store) InvalidateResult(ctx context.Context, query string) error {
	if err := s.client.Del(ctx, ResultKey(query)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate search result: %w", err)
	}
	return nil
}

// Package catalog models the external metadata services that resolve URLs to
// track or playlist descriptions. Conductor owns only the URL-pattern
// recognition and the lookup calls; each service's internal protocol stays on
// the other side of the Client interface.
package catalog

import (
	"context"
	"fmt"
	"regexp"

	"github.com/soundlink/conductor/internal/track"
)

// Kind names one catalog collaborator.
type Kind string

const (
	KindSpotify    Kind = "spotify"
	KindAppleMusic Kind = "applemusic"
	KindDeezer     Kind = "deezer"
)

// Collection is a titled set of tracks, as returned by album/playlist lookups.
type Collection struct {
	Title  string
	Tracks []track.Track
}

// Client is the lookup surface a catalog service must provide.
type Client interface {
	GetTrack(ctx context.Context, id string) (track.Track, error)
	GetAlbum(ctx context.Context, id string) (*Collection, error)
	GetPlaylist(ctx context.Context, id string) (*Collection, error)
}

// ArtistClient is the optional top-tracks capability.
type ArtistClient interface {
	GetArtistTopTracks(ctx context.Context, id string) (*Collection, error)
}

// VideoClient is the optional music-video capability.
type VideoClient interface {
	GetMusicVideo(ctx context.Context, id string) (track.Track, error)
}

// resource is the kind of entity a matched URL points at.
type resource string

const (
	resourceTrack    resource = "track"
	resourceAlbum    resource = "album"
	resourcePlaylist resource = "playlist"
	resourceArtist   resource = "artist"
	resourceVideo    resource = "video"
)

// Source pairs one collaborator kind with its URL pattern and client.
type Source struct {
	kind    Kind
	pattern *regexp.Regexp
	mapType func(string) resource
	client  Client
}

func (s *Source) Kind() Kind { return s.kind }

// Matches reports whether this source owns the query.
func (s *Source) Matches(query string) bool {
	return s.pattern.MatchString(query)
}

var (
	spotifyPattern = regexp.MustCompile(
		`^(?:https?://)?open\.spotify\.com/(?:[a-z]{2}(?:-[A-Z]{2})?/)?(track|album|playlist|artist)/([A-Za-z0-9]+)`)
	appleMusicPattern = regexp.MustCompile(
		`^(?:https?://)?music\.apple\.com/[a-z]{2}/(song|album|playlist|music-video)/(?:[^/]+/)?([\w.\-]+)`)
	deezerPattern = regexp.MustCompile(
		`^(?:https?://)?(?:www\.)?deezer\.com/(?:[a-z]{2}/)?(track|album|playlist)/(\d+)`)
)

// NewSpotifySource recognizes open.spotify.com URLs.
func NewSpotifySource(client Client) *Source {
	return &Source{
		kind:    KindSpotify,
		pattern: spotifyPattern,
		client:  client,
		mapType: func(t string) resource {
			if t == "artist" {
				return resourceArtist
			}
			return resource(t)
		},
	}
}

// NewAppleMusicSource recognizes music.apple.com URLs.
func NewAppleMusicSource(client Client) *Source {
	return &Source{
		kind:    KindAppleMusic,
		pattern: appleMusicPattern,
		client:  client,
		mapType: func(t string) resource {
			switch t {
			case "song":
				return resourceTrack
			case "music-video":
				return resourceVideo
			default:
				return resource(t)
			}
		},
	}
}

// NewDeezerSource recognizes deezer.com URLs.
func NewDeezerSource(client Client) *Source {
	return &Source{
		kind:    KindDeezer,
		pattern: deezerPattern,
		client:  client,
		mapType: func(t string) resource { return resource(t) },
	}
}

// Resolve performs the lookup for a query this source matched.
func (s *Source) Resolve(ctx context.Context, query string) (*track.LoadResult, error) {
	m := s.pattern.FindStringSubmatch(query)
	if m == nil {
		return nil, fmt.Errorf("catalog %s: query does not match pattern", s.kind)
	}
	res, id := s.mapType(m[1]), m[2]

	switch res {
	case resourceTrack:
		t, err := s.client.GetTrack(ctx, id)
		if err != nil {
			return nil, err
		}
		return singleTrackResult(t), nil

	case resourceVideo:
		vc, ok := s.client.(VideoClient)
		if !ok {
			return track.Empty(), nil
		}
		t, err := vc.GetMusicVideo(ctx, id)
		if err != nil {
			return nil, err
		}
		return singleTrackResult(t), nil

	case resourceAlbum:
		c, err := s.client.GetAlbum(ctx, id)
		if err != nil {
			return nil, err
		}
		return collectionResult(c), nil

	case resourcePlaylist:
		c, err := s.client.GetPlaylist(ctx, id)
		if err != nil {
			return nil, err
		}
		return collectionResult(c), nil

	case resourceArtist:
		ac, ok := s.client.(ArtistClient)
		if !ok {
			return track.Empty(), nil
		}
		c, err := ac.GetArtistTopTracks(ctx, id)
		if err != nil {
			return nil, err
		}
		return collectionResult(c), nil
	}
	return track.Empty(), nil
}

func singleTrackResult(t track.Track) *track.LoadResult {
	if t == nil {
		return track.Empty()
	}
	return &track.LoadResult{
		LoadType: track.LoadTypeTrackLoaded,
		Tracks:   []track.Track{t},
	}
}

func collectionResult(c *Collection) *track.LoadResult {
	if c == nil || len(c.Tracks) == 0 {
		return track.Empty()
	}
	return &track.LoadResult{
		LoadType: track.LoadTypePlaylistLoaded,
		Playlist: &track.PlaylistInfo{
			Name:          c.Title,
			SelectedTrack: -1,
			Duration:      track.TotalLength(c.Tracks),
		},
		Tracks: c.Tracks,
	}
}

// Registry iterates the enabled sources in fixed priority order. The first
// source whose pattern matches owns the query, even when its lookup comes
// back empty.
type Registry struct {
	sources []*Source
}

// NewRegistry builds a registry. Order is priority order.
func NewRegistry(sources ...*Source) *Registry {
	enabled := make([]*Source, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			enabled = append(enabled, s)
		}
	}
	return &Registry{sources: enabled}
}

// Lookup resolves a query through the first matching source. The second
// return value reports whether any source claimed the query at all.
func (r *Registry) Lookup(ctx context.Context, query string) (*track.LoadResult, bool, error) {
	for _, s := range r.sources {
		if !s.Matches(query) {
			continue
		}
		result, err := s.Resolve(ctx, query)
		return result, true, err
	}
	return nil, false, nil
}

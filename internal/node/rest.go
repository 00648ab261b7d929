package node

import (
	"context"
	"net/http"
	"net/url"

	"github.com/soundlink/conductor/internal/track"
)

// TrackData is the wire form of one track as the node reports it.
type TrackData struct {
	Encoded string     `json:"track"`
	Info    track.Info `json:"info"`
}

// PlaylistData is the wire form of playlist metadata.
type PlaylistData struct {
	Name          string `json:"name"`
	SelectedTrack int    `json:"selectedTrack"`
}

// LoadTracksResponse is the node's reply to a loadtracks request.
type LoadTracksResponse struct {
	LoadType     track.LoadType `json:"loadType"`
	PlaylistInfo PlaylistData   `json:"playlistInfo"`
	Tracks       []TrackData    `json:"tracks"`
}

// LoadTracks resolves an identifier (URL or source-prefixed query) on the node.
func (l *Link) LoadTracks(ctx context.Context, identifier string) (*LoadTracksResponse, error) {
	var out LoadTracksResponse
	path := "loadtracks?identifier=" + url.QueryEscape(identifier)
	if err := l.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecodeTrack expands one opaque encoded token into its metadata.
func (l *Link) DecodeTrack(ctx context.Context, encoded string) (track.Info, error) {
	var out track.Info
	path := "decodetrack?track=" + url.QueryEscape(encoded)
	if err := l.Request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return track.Info{}, err
	}
	return out, nil
}

// DecodeTracks expands many encoded tokens in one round trip.
func (l *Link) DecodeTracks(ctx context.Context, encoded []string) ([]TrackData, error) {
	var out []TrackData
	if err := l.Request(ctx, http.MethodPost, "decodetracks", encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type playPayload struct {
	GuildID string `json:"guildId"`
	Track   string `json:"track"`
}

// Play starts playback of an encoded track for a guild on this node.
func (l *Link) Play(ctx context.Context, guildID, encoded string) error {
	return l.Request(ctx, http.MethodPost, "play", playPayload{GuildID: guildID, Track: encoded}, nil)
}

type stopPayload struct {
	GuildID string `json:"guildId"`
}

// Stop halts playback for a guild on this node.
func (l *Link) Stop(ctx context.Context, guildID string) error {
	return l.Request(ctx, http.MethodPost, "stop", stopPayload{GuildID: guildID}, nil)
}

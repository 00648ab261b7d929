package track

import "encoding/json"

// LoadType tags the outcome of a load/search request.
type LoadType string

const (
	LoadTypeTrackLoaded    LoadType = "TRACK_LOADED"
	LoadTypePlaylistLoaded LoadType = "PLAYLIST_LOADED"
	LoadTypeSearchResult   LoadType = "SEARCH_RESULT"
	LoadTypeNoMatches      LoadType = "NO_MATCHES"
	LoadTypeLoadFailed     LoadType = "LOAD_FAILED"
)

// Info holds the descriptive metadata of a track.
//
// Length and Position are in milliseconds, matching the node wire format.
type Info struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Length     int64  `json:"length"`
	URI        string `json:"uri,omitempty"`
	IsStream   bool   `json:"isStream"`
	Position   int64  `json:"position"`
}

// Track is an immutable track value object.
//
// Two variants exist: Resolved carries the opaque encoded token and is
// playable as-is; Unresolved carries metadata only and still needs a
// resolution pass through a node or catalog before playback.
type Track interface {
	Info() Info
}

// Resolved is a playable track: it holds the encoded token the node
// understands.
type Resolved struct {
	encoded string
	info    Info
}

// NewResolved builds a resolved track from its encoded token and metadata.
func NewResolved(encoded string, info Info) Resolved {
	return Resolved{encoded: encoded, info: info}
}

func (r Resolved) Info() Info { return r.info }

// Encoded returns the opaque token accepted by the node's play and decode
// endpoints.
func (r Resolved) Encoded() string { return r.encoded }

func (r Resolved) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Track string `json:"track"`
		Info  Info   `json:"info"`
	}{r.encoded, r.info})
}

// Unresolved is a metadata-only track, typically produced by a catalog
// lookup before the generic load path has resolved it.
type Unresolved struct {
	info Info
}

// NewUnresolved builds a metadata-only track.
func NewUnresolved(info Info) Unresolved {
	return Unresolved{info: info}
}

func (u Unresolved) Info() Info { return u.info }

func (u Unresolved) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Info Info `json:"info"`
	}{u.info})
}

// PlaylistInfo describes the collection a playlist load belongs to.
type PlaylistInfo struct {
	Name          string `json:"name"`
	SelectedTrack int    `json:"selectedTrack"`
	// Duration is recomputed client-side as the sum of member lengths;
	// the upstream-reported aggregate is not trusted.
	Duration int64 `json:"duration"`
}

// LoadResult is the outcome of a search or load request.
type LoadResult struct {
	LoadType LoadType      `json:"loadType"`
	Playlist *PlaylistInfo `json:"playlistInfo,omitempty"`
	Tracks   []Track       `json:"tracks"`
}

// TotalLength sums the lengths of the member tracks, in milliseconds.
func TotalLength(tracks []Track) int64 {
	var total int64
	for _, t := range tracks {
		total += t.Info().Length
	}
	return total
}

// Failed builds a LOAD_FAILED result. Search failures on the generic path
// resolve to this instead of an error.
func Failed() *LoadResult {
	return &LoadResult{LoadType: LoadTypeLoadFailed, Tracks: []Track{}}
}

// Empty builds a NO_MATCHES result.
func Empty() *LoadResult {
	return &LoadResult{LoadType: LoadTypeNoMatches, Tracks: []Track{}}
}

// Package player models the desktop player's state snapshots and decides
// which snapshot changes are latency-sensitive enough to broadcast immediately.
package player

// TrackState mirrors the wire values reported by the desktop player.
type TrackState int

// Track states as sent by the desktop player API.
const (
	TrackStatePaused    TrackState = 0
	TrackStatePlaying   TrackState = 1
	TrackStateBuffering TrackState = 2
)

// Repeat modes as sent in queue metadata.
const (
	RepeatModeUnknown = -1
	RepeatModeNone    = 0
	RepeatModeAll     = 1
	RepeatModeOne     = 2
)

// Thumbnail is an artwork variant at a given resolution.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// QueueItem is a single entry in the playback queue. All fields are optional
// on the wire.
type QueueItem struct {
	Index      *int        `json:"index,omitempty"`
	Selected   bool        `json:"selected,omitempty"`
	VideoID    string      `json:"videoId,omitempty"`
	Title      string      `json:"title,omitempty"`
	Author     string      `json:"author,omitempty"`
	Duration   string      `json:"duration,omitempty"`
	Thumbnails []Thumbnail `json:"thumbnails,omitempty"`
}

// Queue is the playback queue as reported by the desktop player. Pointer
// fields distinguish "absent" from zero values; comparisons go through the
// defaulting helpers below.
type Queue struct {
	Items             []QueueItem `json:"items"`
	SelectedItemIndex *int        `json:"selectedItemIndex,omitempty"`
	RepeatMode        *int        `json:"repeatMode,omitempty"`
}

// Playback carries the controller-level portion of a snapshot.
type Playback struct {
	TrackState        TrackState `json:"trackState"`
	VideoProgress     float64    `json:"videoProgress"`
	Volume            int        `json:"volume"`
	Muted             bool       `json:"muted"`
	AdPlaying         bool       `json:"adPlaying"`
	Queue             *Queue     `json:"queue,omitempty"`
	QueueAutoplay     *bool      `json:"queueAutoplay,omitempty"`
	QueueAutoplayMode *string    `json:"queueAutoplayMode,omitempty"`
}

// Video identifies the active track and its display metadata.
type Video struct {
	ID              string      `json:"id"`
	Author          string      `json:"author"`
	Title           string      `json:"title"`
	Album           *string     `json:"album"`
	ChannelID       string      `json:"channelId,omitempty"`
	IsLive          bool        `json:"isLive,omitempty"`
	DurationSeconds float64     `json:"durationSeconds"`
	Thumbnails      []Thumbnail `json:"thumbnails,omitempty"`
}

// State is one snapshot from the upstream state stream. Snapshots are
// immutable once received; a new snapshot supersedes the previous one
// wholesale. Unknown wire fields are ignored during decoding.
type State struct {
	Player Playback `json:"player"`
	Video  Video    `json:"video"`
}

// selectedIndex returns the queue's selected item index, -1 when the queue or
// the selection is absent.
func selectedIndex(q *Queue) int {
	if q == nil || q.SelectedItemIndex == nil {
		return -1
	}
	return *q.SelectedItemIndex
}

// selectedVideoID returns the video id of the selected queue item, or empty
// when there is no selection or the index is out of range.
func selectedVideoID(q *Queue) string {
	idx := selectedIndex(q)
	if idx < 0 || idx >= len(q.Items) {
		return ""
	}
	return q.Items[idx].VideoID
}

// repeatMode returns the queue repeat mode, RepeatModeUnknown when absent.
func repeatMode(q *Queue) int {
	if q == nil || q.RepeatMode == nil {
		return RepeatModeUnknown
	}
	return *q.RepeatMode
}

// queueAutoplay returns the autoplay flag, false when absent.
func queueAutoplay(p *Playback) bool {
	if p.QueueAutoplay == nil {
		return false
	}
	return *p.QueueAutoplay
}

// queueAutoplayMode returns the autoplay mode string, empty when absent.
func queueAutoplayMode(p *Playback) string {
	if p.QueueAutoplayMode == nil {
		return ""
	}
	return *p.QueueAutoplayMode
}

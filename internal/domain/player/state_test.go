package player

import (
	"encoding/json"
	"testing"
)

func TestDecodePartialSnapshot(t *testing.T) {
	// Minimal upstream payload: no queue, no autoplay fields, extra unknown
	// fields. Decoding must not fail and defaults must be neutral.
	raw := `{
		"player": {"trackState": 1, "videoProgress": 42.5, "volume": 80, "muted": false, "adPlaying": false},
		"video": {"id": "abc123", "author": "Artist", "title": "Song", "album": null, "durationSeconds": 200, "likeCount": null},
		"somethingNew": {"ignored": true}
	}`

	var s State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if s.Player.TrackState != TrackStatePlaying {
		t.Errorf("trackState = %d, want playing", s.Player.TrackState)
	}
	if s.Player.Queue != nil {
		t.Error("absent queue should decode as nil")
	}
	if selectedIndex(s.Player.Queue) != -1 {
		t.Errorf("selectedIndex = %d, want -1 for absent queue", selectedIndex(s.Player.Queue))
	}
	if repeatMode(s.Player.Queue) != RepeatModeUnknown {
		t.Errorf("repeatMode = %d, want unknown for absent queue", repeatMode(s.Player.Queue))
	}
	if queueAutoplay(&s.Player) {
		t.Error("absent autoplay should default to false")
	}
	if queueAutoplayMode(&s.Player) != "" {
		t.Error("absent autoplay mode should default to empty string")
	}
	if s.Video.Album != nil {
		t.Error("null album should decode as nil")
	}
}

func TestSelectedVideoID(t *testing.T) {
	q := &Queue{
		Items:             []QueueItem{{VideoID: "a"}, {VideoID: "b"}},
		SelectedItemIndex: intp(1),
	}
	if got := selectedVideoID(q); got != "b" {
		t.Errorf("selectedVideoID = %q, want b", got)
	}
}

func TestSelectedVideoID_NoSelection(t *testing.T) {
	q := &Queue{Items: []QueueItem{{VideoID: "a"}}}
	if got := selectedVideoID(q); got != "" {
		t.Errorf("selectedVideoID = %q, want empty without selection", got)
	}
}

func TestSelectedVideoID_OutOfRange(t *testing.T) {
	q := &Queue{
		Items:             []QueueItem{{VideoID: "a"}},
		SelectedItemIndex: intp(5),
	}
	if got := selectedVideoID(q); got != "" {
		t.Errorf("selectedVideoID = %q, want empty for out-of-range index", got)
	}
}

func TestSelectedVideoID_NilQueue(t *testing.T) {
	if got := selectedVideoID(nil); got != "" {
		t.Errorf("selectedVideoID = %q, want empty for nil queue", got)
	}
}

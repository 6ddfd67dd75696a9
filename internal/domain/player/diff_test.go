package player

import "testing"

func intp(v int) *int       { return &v }
func boolp(v bool) *bool    { return &v }
func strp(v string) *string { return &v }

// playingSnapshot builds a minimal snapshot for the given track id.
func playingSnapshot(videoID string, progress float64) *State {
	return &State{
		Player: Playback{
			TrackState:    TrackStatePlaying,
			VideoProgress: progress,
			Volume:        50,
		},
		Video: Video{
			ID:     videoID,
			Author: "Artist",
			Title:  "Title",
		},
	}
}

func TestShouldBroadcastImmediately_FirstSnapshot(t *testing.T) {
	if !ShouldBroadcastImmediately(nil, playingSnapshot("a", 0)) {
		t.Error("first snapshot must always broadcast")
	}
}

func TestShouldBroadcastImmediately_TrackStateTransition(t *testing.T) {
	prev := playingSnapshot("a", 12)
	cur := playingSnapshot("a", 12)
	cur.Player.TrackState = TrackStatePaused

	if !ShouldBroadcastImmediately(prev, cur) {
		t.Error("play/pause transition must broadcast immediately")
	}
}

func TestShouldBroadcastImmediately_BufferingTransition(t *testing.T) {
	prev := playingSnapshot("a", 12)
	cur := playingSnapshot("a", 12)
	cur.Player.TrackState = TrackStateBuffering

	if !ShouldBroadcastImmediately(prev, cur) {
		t.Error("buffering transition must broadcast immediately")
	}
}

func TestShouldBroadcastImmediately_TrackChange(t *testing.T) {
	prev := playingSnapshot("a", 180)
	cur := playingSnapshot("b", 0)

	if !ShouldBroadcastImmediately(prev, cur) {
		t.Error("track change must broadcast immediately")
	}
}

func TestShouldBroadcastImmediately_ProgressTickIsDeferrable(t *testing.T) {
	prev := playingSnapshot("a", 12)
	cur := playingSnapshot("a", 13)

	if ShouldBroadcastImmediately(prev, cur) {
		t.Error("pure progress tick must be eligible for throttling")
	}
}

func TestShouldBroadcastImmediately_VolumeAndMuteAreDeferrable(t *testing.T) {
	prev := playingSnapshot("a", 12)
	cur := playingSnapshot("a", 12)
	cur.Player.Volume = 75
	cur.Player.Muted = true

	if ShouldBroadcastImmediately(prev, cur) {
		t.Error("volume/mute drift must be eligible for throttling")
	}
}

func TestQueueChange_PresenceFlip(t *testing.T) {
	prev := playingSnapshot("a", 12)
	cur := playingSnapshot("a", 12)
	cur.Player.Queue = &Queue{Items: []QueueItem{{VideoID: "a"}}}

	if !ShouldBroadcastImmediately(prev, cur) {
		t.Error("queue appearing must broadcast immediately")
	}
	if !ShouldBroadcastImmediately(cur, prev) {
		t.Error("queue disappearing must broadcast immediately")
	}
}

func TestQueueChange_ItemCount(t *testing.T) {
	prev := playingSnapshot("a", 12)
	prev.Player.Queue = &Queue{Items: []QueueItem{{VideoID: "a"}}}
	cur := playingSnapshot("a", 12)
	cur.Player.Queue = &Queue{Items: []QueueItem{{VideoID: "a"}, {VideoID: "b"}}}

	if !ShouldBroadcastImmediately(prev, cur) {
		t.Error("item count change must broadcast immediately")
	}
}

func TestQueueChange_SelectedIndex(t *testing.T) {
	prev := playingSnapshot("a", 12)
	prev.Player.Queue = &Queue{
		Items:             []QueueItem{{VideoID: "a"}, {VideoID: "b"}},
		SelectedItemIndex: intp(0),
	}
	cur := playingSnapshot("a", 12)
	cur.Player.Queue = &Queue{
		Items:             []QueueItem{{VideoID: "a"}, {VideoID: "b"}},
		SelectedItemIndex: intp(1),
	}

	if !ShouldBroadcastImmediately(prev, cur) {
		t.Error("selected index change must broadcast immediately")
	}
}

func TestQueueChange_SelectedIDGuard(t *testing.T) {
	// Same index, different content underneath it.
	prev := playingSnapshot("a", 12)
	prev.Player.Queue = &Queue{
		Items:             []QueueItem{{VideoID: "A"}, {VideoID: "x"}},
		SelectedItemIndex: intp(0),
	}
	cur := playingSnapshot("a", 12)
	cur.Player.Queue = &Queue{
		Items:             []QueueItem{{VideoID: "B"}, {VideoID: "x"}},
		SelectedItemIndex: intp(0),
	}

	if !ShouldBroadcastImmediately(prev, cur) {
		t.Error("selected item id change at the same index must broadcast immediately")
	}
}

func TestQueueChange_UnselectedReorderDoesNotForceBroadcast(t *testing.T) {
	// Items below the selection shuffled; count, selection and its id are
	// unchanged, so this rides along with the next broadcast.
	prev := playingSnapshot("a", 12)
	prev.Player.Queue = &Queue{
		Items:             []QueueItem{{VideoID: "a"}, {VideoID: "b"}, {VideoID: "c"}},
		SelectedItemIndex: intp(0),
	}
	cur := playingSnapshot("a", 13)
	cur.Player.Queue = &Queue{
		Items:             []QueueItem{{VideoID: "a"}, {VideoID: "c"}, {VideoID: "b"}},
		SelectedItemIndex: intp(0),
	}

	if ShouldBroadcastImmediately(prev, cur) {
		t.Error("reorder below the selection must not force an immediate broadcast")
	}
}

func TestQueueChange_RepeatMode(t *testing.T) {
	prev := playingSnapshot("a", 12)
	prev.Player.Queue = &Queue{Items: []QueueItem{{VideoID: "a"}}, RepeatMode: intp(RepeatModeNone)}
	cur := playingSnapshot("a", 12)
	cur.Player.Queue = &Queue{Items: []QueueItem{{VideoID: "a"}}, RepeatMode: intp(RepeatModeAll)}

	if !ShouldBroadcastImmediately(prev, cur) {
		t.Error("repeat mode change must broadcast immediately")
	}
}

func TestQueueChange_MissingRepeatModeEqualsUnknown(t *testing.T) {
	prev := playingSnapshot("a", 12)
	prev.Player.Queue = &Queue{Items: []QueueItem{{VideoID: "a"}}}
	cur := playingSnapshot("a", 12)
	cur.Player.Queue = &Queue{Items: []QueueItem{{VideoID: "a"}}, RepeatMode: intp(RepeatModeUnknown)}

	if ShouldBroadcastImmediately(prev, cur) {
		t.Error("missing repeat mode must compare equal to the unknown value")
	}
}

func TestQueueChange_Autoplay(t *testing.T) {
	prev := playingSnapshot("a", 12)
	prev.Player.Queue = &Queue{Items: []QueueItem{{VideoID: "a"}}}
	cur := playingSnapshot("a", 12)
	cur.Player.Queue = &Queue{Items: []QueueItem{{VideoID: "a"}}}
	cur.Player.QueueAutoplay = boolp(true)

	if !ShouldBroadcastImmediately(prev, cur) {
		t.Error("autoplay flag change must broadcast immediately")
	}
}

func TestQueueChange_AutoplayMode(t *testing.T) {
	prev := playingSnapshot("a", 12)
	prev.Player.Queue = &Queue{Items: []QueueItem{{VideoID: "a"}}}
	cur := playingSnapshot("a", 12)
	cur.Player.Queue = &Queue{Items: []QueueItem{{VideoID: "a"}}}
	cur.Player.QueueAutoplayMode = strp("RADIO")

	if !ShouldBroadcastImmediately(prev, cur) {
		t.Error("autoplay mode change must broadcast immediately")
	}
}

func TestQueueChange_BothQueuesAbsent(t *testing.T) {
	// With no queue on either side the autoplay fields are not consulted;
	// that matches the upstream app, which only sends them alongside a queue.
	prev := playingSnapshot("a", 12)
	cur := playingSnapshot("a", 13)
	cur.Player.QueueAutoplay = boolp(true)

	if ShouldBroadcastImmediately(prev, cur) {
		t.Error("autoplay without a queue must not force a broadcast")
	}
}

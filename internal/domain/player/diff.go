package player

// ShouldBroadcastImmediately reports whether the difference between the last
// broadcast snapshot and the current one is latency-sensitive. Progress,
// volume and mute drift are not: the frontend interpolates progress
// client-side, so those ticks may wait for the next throttle window.
func ShouldBroadcastImmediately(prev, cur *State) bool {
	if prev == nil {
		return true
	}

	if prev.Player.TrackState != cur.Player.TrackState {
		return true
	}

	if prev.Video.ID != cur.Video.ID {
		return true
	}

	return queueMetadataChanged(prev, cur)
}

// queueMetadataChanged compares queue metadata field by field, stopping at the
// first discriminator. Queue item contents other than the selected item's
// video id are deliberately not compared: a reorder below the selection rides
// along with the next broadcast instead of forcing one.
func queueMetadataChanged(prev, cur *State) bool {
	pq := prev.Player.Queue
	cq := cur.Player.Queue

	if pq == nil && cq == nil {
		return false
	}
	if pq == nil || cq == nil {
		return true
	}

	if len(pq.Items) != len(cq.Items) {
		return true
	}

	if selectedIndex(pq) != selectedIndex(cq) {
		return true
	}

	// Same index can point at different content after a queue swap.
	if selectedVideoID(pq) != selectedVideoID(cq) {
		return true
	}

	if repeatMode(pq) != repeatMode(cq) {
		return true
	}

	if queueAutoplay(&prev.Player) != queueAutoplay(&cur.Player) {
		return true
	}

	if queueAutoplayMode(&prev.Player) != queueAutoplayMode(&cur.Player) {
		return true
	}

	return false
}

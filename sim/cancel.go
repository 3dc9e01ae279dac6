package sim

// Cancel queries are pure reads over the compiled table and the current
// state. A window declared on frame f with length n is open while the
// frame-within-move counter is in [f, f+n).

// windowOpen reports whether w, declared on frame entry declFrame, covers
// the current frame index.
func windowOpen(w CancelWindow, declFrame, frameIdx int32) bool {
	return frameIdx >= declFrame && frameIdx < declFrame+w.Frames
}

// CanCancelTo reports whether the current frame allows a transition to
// target. A target that names no move is simply not reachable; malformed
// requests never fault the simulation.
func CanCancelTo(data *CharData, cs CharacterState, target int32) bool {
	m := data.Move(cs.moveID)
	if m == nil || data.Move(target) == nil {
		return false
	}
	for f := int32(0); f <= cs.frameIdx && int(f) < len(m.Frames); f++ {
		for _, w := range m.Frames[f].Cancels {
			if w.Target == target && windowOpen(w, f, cs.frameIdx) {
				return true
			}
		}
	}
	return false
}

// AvailableCancels collects every move reachable from the current frame, in
// the order the data declares the windows. Declaration order is the priority
// order when several cancels are legal at once and an outside decision layer
// must pick one. The result is appended to dst so steady-state callers can
// reuse a buffer; entries already in dst are kept as-is and never suppress
// a target found this call.
func AvailableCancels(data *CharData, cs CharacterState, dst []int32) []int32 {
	m := data.Move(cs.moveID)
	if m == nil {
		return dst
	}
	start := len(dst)
	for f := int32(0); f <= cs.frameIdx && int(f) < len(m.Frames); f++ {
		for _, w := range m.Frames[f].Cancels {
			if !windowOpen(w, f, cs.frameIdx) || data.Move(w.Target) == nil {
				continue
			}
			dup := false
			for _, id := range dst[start:] {
				if id == w.Target {
					dup = true
					break
				}
			}
			if !dup {
				dst = append(dst, w.Target)
			}
		}
	}
	return dst
}

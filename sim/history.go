package sim

// Rollback support. CharacterState is a plain value, so a snapshot is an
// assignment; History is the ring buffer a rollback-driven host keeps per
// character to rewind and re-simulate with corrected inputs.

type Copyable[T any] interface {
	Clone() T
}

// CopySlice refills dst from src, reusing dst's backing array when it can.
func CopySlice[T any](src, dst *[]T) {
	*(dst) = (*dst)[:0]
	for i := 0; i < len(*src); i++ {
		*(dst) = append(*(dst), (*src)[i])
	}
}

// DeepCopySlice is CopySlice for element types that own references.
func DeepCopySlice[T Copyable[T]](src, dst *[]T) {
	if len(*dst) >= len(*src) {
		*(dst) = (*dst)[0:len(*src)]
		for i := 0; i < len(*src); i++ {
			(*dst)[i] = (*src)[i].Clone()
		}
	} else {
		i := 0
		for ; i < len(*dst); i++ {
			(*dst)[i] = (*src)[i].Clone()
		}
		for ; i < len(*src); i++ {
			(*dst) = append(*dst, (*src)[i].Clone())
		}
	}
}

// Clone deep-copies a hit result so the copy owns its pair list.
func (hr HitResult) Clone() HitResult {
	result := hr
	result.Pairs = append([]HitPair(nil), hr.Pairs...)
	return result
}

// Clone deep-copies a frame result. Hosts that keep a per-tick result tape
// next to their state snapshots (to diff reported events after a rollback
// re-simulation) copy the tape with DeepCopySlice so rewritten ticks cannot
// alias the slices of the timeline they replaced.
func (fr FrameResult) Clone() FrameResult {
	result := fr
	result.Hit = fr.Hit.Clone()
	result.Events = append([]ResourceEvent(nil), fr.Events...)
	return result
}

type historySlot struct {
	tick  int32
	state CharacterState
	used  bool
}

// History is a fixed-size ring of per-tick snapshots keyed by tick number.
// Capacity bounds how far back a host can rewind; saving tick t overwrites
// the slot of tick t-capacity. All storage is allocated up front so the
// per-tick save path allocates nothing.
type History struct {
	slots []historySlot
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{slots: make([]historySlot, capacity)}
}

func (h *History) slot(tick int32) *historySlot {
	i := int(tick) % len(h.slots)
	if i < 0 {
		i += len(h.slots)
	}
	return &h.slots[i]
}

// Save records the state that entered tick t.
func (h *History) Save(tick int32, cs CharacterState) {
	slot := h.slot(tick)
	slot.tick = tick
	slot.state = cs
	slot.used = true
}

// Restore returns the snapshot for tick t, if it is still in the ring.
func (h *History) Restore(tick int32) (CharacterState, bool) {
	slot := h.slot(tick)
	if !slot.used || slot.tick != tick {
		return CharacterState{}, false
	}
	return slot.state, true
}

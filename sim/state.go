package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// CharacterState is the whole mutable simulation state of one character
// instance. It is a plain value with no interior pointers, so assignment is
// a complete deep copy; saving a rollback snapshot is `saved := state` and
// restoring it is the reverse. It is mutated only by NextFrame, which
// returns a replacement value instead of writing in place.
type CharacterState struct {
	moveID   int32
	frameIdx int32
	facing   float32
	pos      mgl32.Vec2
	res      [NumResources]int32
}

// NewCharacterState creates the round-start state: the given move at frame 0,
// facing right at the origin, resources at their declared defaults.
func NewCharacterState(data *CharData, moveID int32) (CharacterState, error) {
	if data.Move(moveID) == nil {
		return CharacterState{}, fmt.Errorf("%w: starting move %d does not exist", ErrDataFault, moveID)
	}
	cs := CharacterState{
		moveID: moveID,
		facing: 1,
	}
	for k := ResourceKind(0); k < NumResources; k++ {
		cs.res[k] = data.Resources[k].Default
	}
	return cs, nil
}

func (cs CharacterState) MoveID() int32 {
	return cs.moveID
}

// FrameIndex is the frame-within-move counter. It is always a valid index
// into the current move's frame sequence.
func (cs CharacterState) FrameIndex() int32 {
	return cs.frameIdx
}

func (cs CharacterState) Facing() float32 {
	return cs.facing
}

func (cs CharacterState) Pos() mgl32.Vec2 {
	return cs.pos
}

// SetFacing returns a copy with facing set to -1 or 1.
func (cs CharacterState) SetFacing(f float32) CharacterState {
	if f < 0 {
		cs.facing = -1
	} else {
		cs.facing = 1
	}
	return cs
}

// SetPos returns a copy placed at the given position.
func (cs CharacterState) SetPos(p mgl32.Vec2) CharacterState {
	cs.pos = p
	return cs
}

// ResourceSnapshot copies out all resource values.
func (cs CharacterState) ResourceSnapshot() [NumResources]int32 {
	return cs.res
}

// frameEntry resolves the current frame entry, or reports the table faults
// that make it unresolvable.
func (cs CharacterState) frameEntry(data *CharData) (*FrameEntry, error) {
	m := data.Move(cs.moveID)
	if m == nil {
		return nil, fmt.Errorf("%w: state references move %d which does not exist", ErrDataFault, cs.moveID)
	}
	if len(m.Frames) == 0 {
		return nil, fmt.Errorf("%w: move %d has no frames", ErrDataFault, m.ID)
	}
	if cs.frameIdx < 0 || int(cs.frameIdx) >= len(m.Frames) {
		return nil, fmt.Errorf("%w: frame index %d out of range for move %d", ErrDataFault, cs.frameIdx, m.ID)
	}
	return &m.Frames[cs.frameIdx], nil
}

// ActiveHitboxes places the current frame's active hitboxes in world space.
// The returned group shares the table's box slice; callers must not mutate it.
func ActiveHitboxes(data *CharData, cs CharacterState) (BoxGroup, error) {
	fe, err := cs.frameEntry(data)
	if err != nil {
		return BoxGroup{}, err
	}
	return cs.boxGroup(fe.Hitboxes), nil
}

// ActiveHurtboxes places the current frame's active hurtboxes in world space.
func ActiveHurtboxes(data *CharData, cs CharacterState) (BoxGroup, error) {
	fe, err := cs.frameEntry(data)
	if err != nil {
		return BoxGroup{}, err
	}
	return cs.boxGroup(fe.Hurtboxes), nil
}

func (cs CharacterState) boxGroup(boxes []Box) BoxGroup {
	return BoxGroup{
		Boxes:  boxes,
		Pos:    cs.pos,
		Scale:  mgl32.Vec2{1, 1},
		Facing: cs.facing,
	}
}

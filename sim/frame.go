package sim

import "fmt"

// TransitionKind says why a move change happened this tick.
type TransitionKind int32

const (
	// TransitionNone: the character stayed in its move and advanced a frame.
	TransitionNone TransitionKind = iota
	// TransitionCancel: player input selected a legal cancel target.
	TransitionCancel
	// TransitionAuto: the move ran out of frames and fell to its successor.
	TransitionAuto
)

func (t TransitionKind) String() string {
	switch t {
	case TransitionCancel:
		return "cancel"
	case TransitionAuto:
		return "auto"
	}
	return "none"
}

// FrameResult is the per-tick report handed back to the host. The host reads
// it to drive everything the core does not own: applying reported damage to
// the defender, rendering, score, match flow.
type FrameResult struct {
	Transition TransitionKind
	PrevMove   int32
	Move       int32
	FrameIndex int32
	Hit        HitResult
	// Damage and MeterGain echo the connecting frame's declared values when
	// Hit.Hit is set. Damage is the defender's pending health loss; the host
	// applies it to the defender with AddResource since the defender's state
	// is not an input of this call. MeterGain has already been applied here.
	Damage    int32
	MeterGain int32
	// Events lists resource writes that landed on a range boundary this
	// tick, e.g. health arriving at its minimum. The core reports these and
	// keeps simulating; acting on a knockout is the host's call.
	Events []ResourceEvent
}

// NextFrame advances one character by exactly one tick. It is a pure
// function of its explicit inputs: no I/O, no globals, no clock. Repeated
// calls with identical arguments produce bit-identical results, which is
// what makes re-simulating past ticks for rollback correct.
//
// The fixed step order is: cancel resolution, frame advance, collision
// against the opponent's hurtboxes, resource deltas. Reordering any of these
// changes game feel and breaks replay compatibility.
func NextFrame(data *CharData, cs CharacterState, input FrameInput, opponent BoxGroup) (CharacterState, FrameResult, error) {
	result := FrameResult{PrevMove: cs.moveID}

	// 1. Player-requested cancel. Unknown targets and closed windows fall
	// through to normal advancement; bad input never faults a tick.
	if input.Cancel != NoCancel && CanCancelTo(data, cs, input.Cancel) {
		cs.moveID = input.Cancel
		cs.frameIdx = 0
		result.Transition = TransitionCancel
	} else {
		// 2. Advance within the move, falling to the successor at the end.
		m := data.Move(cs.moveID)
		if m == nil {
			return cs, result, faultf("state references move %d which does not exist", cs.moveID)
		}
		if len(m.Frames) == 0 {
			return cs, result, faultf("move %d has no frames", m.ID)
		}
		cs.frameIdx++
		if int(cs.frameIdx) >= len(m.Frames) {
			succ := data.Move(m.Successor)
			if succ == nil {
				return cs, result, faultf("move %d successor %d does not exist", m.ID, m.Successor)
			}
			if len(succ.Frames) == 0 {
				return cs, result, faultf("move %d has no frames", succ.ID)
			}
			cs.moveID = succ.ID
			cs.frameIdx = 0
			result.Transition = TransitionAuto
		}
	}
	result.Move = cs.moveID
	result.FrameIndex = cs.frameIdx

	// 3. Collision, using the frame the character ended up on. A cancel that
	// fired above therefore hits with the target move's frame 0 boxes.
	fe, err := cs.frameEntry(data)
	if err != nil {
		return cs, result, err
	}
	result.Hit = CheckHits(cs.boxGroup(fe.Hitboxes), opponent, fe.MultiHit)

	// 4. Resource deltas for holding this frame, then hit rewards.
	var ev ResourceEvent
	for _, d := range fe.Deltas {
		cs, ev = AddResource(data, cs, d.Kind, d.Add)
		if ev.AtMin || ev.AtMax {
			result.Events = append(result.Events, ev)
		}
	}
	if result.Hit.Hit {
		result.Damage = fe.Damage
		result.MeterGain = fe.MeterGain
		cs, ev = AddResource(data, cs, Meter, fe.MeterGain)
		if ev.AtMin || ev.AtMax {
			result.Events = append(result.Events, ev)
		}
	}

	return cs, result, nil
}

func faultf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrDataFault}, args...)...)
}

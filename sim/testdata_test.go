package sim

import (
	"testing"

	"github.com/kamstrup/intmap"
	"github.com/stretchr/testify/require"
)

const (
	moveStand  int32 = 0
	moveJab    int32 = 200
	moveStrong int32 = 210
)

func testSpecs() [NumResources]ResourceSpec {
	var specs [NumResources]ResourceSpec
	specs[Health] = ResourceSpec{Min: 0, Max: 1000, Default: 1000}
	specs[Meter] = ResourceSpec{Min: 0, Max: 300, Default: 0}
	specs[Stamina] = ResourceSpec{Min: 0, Max: 100, Default: 100}
	specs[Guard] = ResourceSpec{Min: 0, Max: 50, Default: 50}
	return specs
}

func standHurtbox(id int32) Box {
	return Box{ID: id, Extents: [4]float32{-12, -60, 12, 0}, Active: true}
}

// testChar builds a small but complete table: an idle loop, a jab whose
// hitbox is active on frames 3-5 with a cancel window to the strong attack
// open on frames 2-5, and the strong attack itself.
func testChar(t *testing.T) *CharData {
	t.Helper()

	stand := Move{ID: moveStand, Name: "stand", Successor: moveStand}
	for i := 0; i < 4; i++ {
		stand.Frames = append(stand.Frames, FrameEntry{
			Hurtboxes: []Box{standHurtbox(1)},
		})
	}

	jab := Move{ID: moveJab, Name: "jab", Successor: moveStand}
	for i := 0; i < 10; i++ {
		fe := FrameEntry{Hurtboxes: []Box{standHurtbox(1)}}
		if i == 1 {
			fe.Deltas = []ResourceDelta{{Kind: Stamina, Add: -5}}
		}
		if i == 2 {
			fe.Cancels = []CancelWindow{{Target: moveStrong, Frames: 4}}
		}
		if i >= 3 && i <= 5 {
			fe.Hitboxes = []Box{{ID: 10, Extents: [4]float32{10, -40, 42, -20}, Active: true}}
			fe.Damage = 90
			fe.MeterGain = 30
		}
		jab.Frames = append(jab.Frames, fe)
	}

	strong := Move{ID: moveStrong, Name: "strong", Successor: moveStand}
	for i := 0; i < 6; i++ {
		fe := FrameEntry{Hurtboxes: []Box{standHurtbox(1)}}
		if i == 3 {
			fe.Hitboxes = []Box{{ID: 11, Extents: [4]float32{14, -50, 60, -10}, Active: true}}
			fe.Damage = 160
			fe.MeterGain = 60
			fe.Deltas = []ResourceDelta{{Kind: Meter, Add: -40}}
		}
		strong.Frames = append(strong.Frames, fe)
	}

	cd, err := NewCharData("testchar", []Move{stand, jab, strong}, testSpecs())
	require.NoError(t, err)
	return cd
}

// corruptChar builds an invalid table directly, sidestepping NewCharData's
// validation, to exercise the lazy fault paths that validated data never hits.
func corruptChar(bad Move) *CharData {
	cd := &CharData{
		Name:  "corrupt",
		moves: []Move{bad},
		index: intmap.New[int32, int32](4),
	}
	for k := ResourceKind(0); k < NumResources; k++ {
		cd.Resources[k] = ResourceSpec{Min: 0, Max: 1, Default: 0}
	}
	cd.index.Put(bad.ID, 0)
	return cd
}

// stateAt walks a fresh character to the requested move and frame index by
// simulating, so tests never fabricate states the engine could not reach.
func stateAt(t *testing.T, data *CharData, moveID, frameIdx int32) CharacterState {
	t.Helper()
	cs, err := NewCharacterState(data, moveID)
	require.NoError(t, err)
	for cs.FrameIndex() < frameIdx {
		next, _, err := NextFrame(data, cs, FrameInput{Cancel: NoCancel}, BoxGroup{})
		require.NoError(t, err)
		require.Equal(t, moveID, next.MoveID(), "walked out of move %d", moveID)
		cs = next
	}
	return cs
}

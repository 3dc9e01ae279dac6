package sim

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// BoxGroup is a set of collision boxes placed in world space: the owning
// character's position, facing and scale apply to every box in the group.
type BoxGroup struct {
	Boxes  []Box
	Pos    mgl32.Vec2
	Scale  mgl32.Vec2
	Facing float32
}

// HitPair records one overlapping hitbox/hurtbox pair by box id.
type HitPair struct {
	Hitbox  int32
	Hurtbox int32
}

// HitResult aggregates one tick's collision evaluation between an attacker's
// hitboxes and a defender's hurtboxes.
type HitResult struct {
	Hit   bool
	Pairs []HitPair
}

// worldRect resolves one box to world-space edges. Facing mirrors the
// x extents, negative scale flips like the facing does.
func worldRect(b Box, scl, pos mgl32.Vec2, facing float32) (left, top, right, bottom float32) {
	if scl[0] < 0 {
		facing *= -1
		scl[0] *= -1
	}
	l := b.Extents[0]
	r := b.Extents[2]
	if facing < 0 {
		l, r = -r, -l
	}
	left = l*scl[0] + pos[0]
	right = r*scl[0] + pos[0]
	top = b.Extents[1]*scl[1] + pos[1]
	bottom = b.Extents[3]*scl[1] + pos[1]
	return
}

// BoxesOverlap tests two placed boxes. Boundaries are inclusive: boxes that
// touch without penetrating overlap. The test is symmetric in its arguments.
// Inactive boxes never overlap anything.
func BoxesOverlap(a Box, sclA, posA mgl32.Vec2, facingA float32,
	b Box, sclB, posB mgl32.Vec2, facingB float32) bool {

	if !a.Active || !b.Active {
		return false
	}
	left1, top1, right1, bottom1 := worldRect(a, sclA, posA, facingA)
	left2, top2, right2, bottom2 := worldRect(b, sclB, posB, facingB)
	return left1 <= right2 &&
		left2 <= right1 &&
		top1 <= bottom2 &&
		top2 <= bottom1
}

// GroupsOverlap reports whether any box of one group overlaps any box of the
// other.
func GroupsOverlap(g1, g2 BoxGroup) bool {
	if g1.Boxes == nil || g2.Boxes == nil {
		return false
	}
	for i := range g1.Boxes {
		for j := range g2.Boxes {
			if BoxesOverlap(g1.Boxes[i], g1.Scale, g1.Pos, g1.Facing,
				g2.Boxes[j], g2.Scale, g2.Pos, g2.Facing) {
				return true
			}
		}
	}
	return false
}

// sortedByID returns iteration order over boxes, ascending by box id.
// Imposing a total order here keeps CheckHits bit-identical regardless of
// how the host happened to store the slices.
func sortedByID(boxes []Box) []int {
	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return boxes[order[a]].ID < boxes[order[b]].ID
	})
	return order
}

// CheckHits evaluates attacker hitboxes against defender hurtboxes. Both
// sides are walked in box-id order and the first overlapping pair is the
// primary result; with multiHit every overlapping pair is reported in that
// same order.
func CheckHits(attacker, defender BoxGroup, multiHit bool) HitResult {
	var result HitResult
	if len(attacker.Boxes) == 0 || len(defender.Boxes) == 0 {
		return result
	}
	defOrder := sortedByID(defender.Boxes)
	for _, i := range sortedByID(attacker.Boxes) {
		for _, j := range defOrder {
			if BoxesOverlap(attacker.Boxes[i], attacker.Scale, attacker.Pos, attacker.Facing,
				defender.Boxes[j], defender.Scale, defender.Pos, defender.Facing) {
				result.Hit = true
				result.Pairs = append(result.Pairs, HitPair{
					Hitbox:  attacker.Boxes[i].ID,
					Hurtbox: defender.Boxes[j].ID,
				})
				if !multiHit {
					return result
				}
			}
		}
	}
	return result
}

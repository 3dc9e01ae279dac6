package sim

import (
	"fmt"
	"math"
)

// ResourceKind identifies one scalar character attribute. The set is closed:
// it is fixed by the compiled data format, not extensible at runtime.
type ResourceKind int32

const (
	Health ResourceKind = iota
	Meter
	Stamina
	Guard
	NumResources
)

func (k ResourceKind) String() string {
	switch k {
	case Health:
		return "health"
	case Meter:
		return "meter"
	case Stamina:
		return "stamina"
	case Guard:
		return "guard"
	}
	return fmt.Sprintf("resource(%d)", int32(k))
}

// ResourceKindByName maps the exporter spelling back to a kind.
// Unknown names return NumResources.
func ResourceKindByName(name string) ResourceKind {
	for k := ResourceKind(0); k < NumResources; k++ {
		if k.String() == name {
			return k
		}
	}
	return NumResources
}

// ResourceSpec declares the legal range and round-start value of one resource.
type ResourceSpec struct {
	Min, Max, Default int32
}

// ResourceEvent reports one resource write that landed on a range boundary.
// AtMin/AtMax are only set when the write moved the value onto the boundary,
// not when it was already there, so a knockout fires exactly once.
type ResourceEvent struct {
	Kind  ResourceKind
	Value int32
	AtMin bool
	AtMax bool
}

// Resource reads a scalar by kind. Out-of-range kinds read as 0.
func (cs CharacterState) Resource(k ResourceKind) int32 {
	if k < 0 || k >= NumResources {
		return 0
	}
	return cs.res[k]
}

// SetResource writes a scalar with clamping to the declared range. Values
// outside the range are clamped, never rejected, so oversized damage or heal
// deltas cannot produce out-of-range state. Writes to unknown kinds are
// dropped.
func SetResource(data *CharData, cs CharacterState, k ResourceKind, v int32) (CharacterState, ResourceEvent) {
	ev := ResourceEvent{Kind: k}
	if k < 0 || k >= NumResources {
		return cs, ev
	}
	spec := data.Resources[k]
	prev := cs.res[k]
	cs.res[k] = Clamp(v, spec.Min, spec.Max)
	ev.Value = cs.res[k]
	ev.AtMin = cs.res[k] == spec.Min && prev != spec.Min
	ev.AtMax = cs.res[k] == spec.Max && prev != spec.Max
	return cs, ev
}

// AddResource applies a delta through SetResource. The intermediate sum is
// widened to int64 so that extreme deltas clamp instead of wrapping.
func AddResource(data *CharData, cs CharacterState, k ResourceKind, add int32) (CharacterState, ResourceEvent) {
	if add == 0 {
		return cs, ResourceEvent{Kind: k, Value: cs.Resource(k)}
	}
	sum := int64(cs.Resource(k)) + int64(add)
	if sum > math.MaxInt32 {
		sum = math.MaxInt32
	} else if sum < math.MinInt32 {
		sum = math.MinInt32
	}
	return SetResource(data, cs, k, int32(sum))
}

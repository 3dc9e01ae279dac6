package sim

import (
	"errors"
	"fmt"

	"github.com/kamstrup/intmap"
)

// ErrDataFault marks an internally inconsistent compiled table. It can only
// originate from a broken exporter, never from runtime input, so hosts should
// treat it as fatal during loading.
var ErrDataFault = errors.New("character data fault")

// Box is one collision rectangle, relative to the character origin.
// Extents follow the left, top, right, bottom convention, with Y growing
// downward and X growing toward the character's facing direction.
type Box struct {
	ID      int32
	Extents [4]float32
	Active  bool
}

// CancelWindow opens on the frame entry that declares it and stays open for
// Frames consecutive frames of the same move.
type CancelWindow struct {
	Target int32
	Frames int32
}

// ResourceDelta is applied every tick the character holds the declaring frame.
type ResourceDelta struct {
	Kind ResourceKind
	Add  int32
}

// FrameEntry is one tick's worth of move data.
type FrameEntry struct {
	Hitboxes  []Box
	Hurtboxes []Box
	Cancels   []CancelWindow
	Deltas    []ResourceDelta
	Damage    int32
	MeterGain int32
	MultiHit  bool
}

// Move is an ordered frame sequence. When the last frame elapses the
// character transitions to Successor at frame 0.
type Move struct {
	ID        int32
	Name      string
	Successor int32
	Frames    []FrameEntry
}

// CharData is the compiled character table. It is immutable after
// construction and may be shared read-only across any number of simulations.
type CharData struct {
	Name      string
	Resources [NumResources]ResourceSpec
	moves     []Move
	index     *intmap.Map[int32, int32]
}

// NewCharData builds and validates a table. Moves keep declaration order;
// lookup by id goes through an index so ids need not be dense.
func NewCharData(name string, moves []Move, specs [NumResources]ResourceSpec) (*CharData, error) {
	cd := &CharData{
		Name:      name,
		Resources: specs,
		moves:     moves,
		index:     intmap.New[int32, int32](len(moves) * 2),
	}
	for i := range moves {
		if _, ok := cd.index.Get(moves[i].ID); ok {
			return nil, fmt.Errorf("%w: duplicate move id %d", ErrDataFault, moves[i].ID)
		}
		cd.index.Put(moves[i].ID, int32(i))
	}
	if err := cd.validate(); err != nil {
		return nil, err
	}
	return cd, nil
}

// Move returns the move with the given id, or nil if the table has none.
func (cd *CharData) Move(id int32) *Move {
	i, ok := cd.index.Get(id)
	if !ok {
		return nil
	}
	return &cd.moves[i]
}

// Moves returns the move list in declaration order.
func (cd *CharData) Moves() []Move {
	return cd.moves
}

func (cd *CharData) validate() error {
	var errs []error
	for k := ResourceKind(0); k < NumResources; k++ {
		s := cd.Resources[k]
		if s.Min > s.Max {
			errs = append(errs, fmt.Errorf("%w: resource %v has min %d > max %d",
				ErrDataFault, k, s.Min, s.Max))
		}
		if s.Default < s.Min || s.Default > s.Max {
			errs = append(errs, fmt.Errorf("%w: resource %v default %d outside [%d, %d]",
				ErrDataFault, k, s.Default, s.Min, s.Max))
		}
	}
	for i := range cd.moves {
		m := &cd.moves[i]
		if len(m.Frames) == 0 {
			errs = append(errs, fmt.Errorf("%w: move %d (%s) has no frames", ErrDataFault, m.ID, m.Name))
		}
		if cd.Move(m.Successor) == nil {
			errs = append(errs, fmt.Errorf("%w: move %d (%s) successor %d does not exist",
				ErrDataFault, m.ID, m.Name, m.Successor))
		}
		for f := range m.Frames {
			fe := &m.Frames[f]
			for _, w := range fe.Cancels {
				if cd.Move(w.Target) == nil {
					errs = append(errs, fmt.Errorf("%w: move %d frame %d cancel target %d does not exist",
						ErrDataFault, m.ID, f, w.Target))
				}
				if w.Frames < 1 {
					errs = append(errs, fmt.Errorf("%w: move %d frame %d cancel window length %d",
						ErrDataFault, m.ID, f, w.Frames))
				}
			}
			for _, boxes := range [2][]Box{fe.Hitboxes, fe.Hurtboxes} {
				for _, b := range boxes {
					if b.Extents[0] > b.Extents[2] || b.Extents[1] > b.Extents[3] {
						errs = append(errs, fmt.Errorf("%w: move %d frame %d box %d has inverted extents",
							ErrDataFault, m.ID, f, b.ID))
					}
				}
			}
			for _, d := range fe.Deltas {
				if d.Kind < 0 || d.Kind >= NumResources {
					errs = append(errs, fmt.Errorf("%w: move %d frame %d unknown resource kind %d",
						ErrDataFault, m.ID, f, d.Kind))
				}
			}
		}
	}
	return errors.Join(errs...)
}

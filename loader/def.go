package loader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/okizeme-engine/okizeme/sim"
)

// FromDef decodes the def exporter format, an ini-style text file:
//
//	[Info]
//	name = suika
//
//	[Resources]
//	health = 0, 1000, 1000      ; min, max, default
//	meter = 0, 300, 0
//
//	[Move 0]
//	name = stand
//	successor = 0
//
//	[Move 0 Frame 0]
//	hurtbox = 1, -12, -60, 12, 0    ; id, left, top, right, bottom
//	hitbox = 10, 10, -40, 42, -20
//	cancel = 210, 4                 ; target, open frames
//	delta = stamina, -5
//	damage = 90
//	metergain = 30
//	multihit = 1
//
// Repeated hitbox/hurtbox/cancel/delta keys accumulate. A move's frame count
// is one past its highest declared frame section; undeclared frames in
// between are empty entries.
func FromDef(src []byte) (*sim.CharData, error) {
	f, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true}, src)
	if err != nil {
		return nil, fmt.Errorf("parsing def: %w", err)
	}

	name := f.Section("Info").Key("name").String()

	var specs [sim.NumResources]sim.ResourceSpec
	for _, key := range f.Section("Resources").Keys() {
		k := sim.ResourceKindByName(strings.ToLower(key.Name()))
		if k == sim.NumResources {
			return nil, fmt.Errorf("unknown resource %q", key.Name())
		}
		nums, err := splitInts(key.String(), 3)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", key.Name(), err)
		}
		specs[k] = sim.ResourceSpec{Min: nums[0], Max: nums[1], Default: nums[2]}
	}

	// First pass: collect move headers and the frame sections under them.
	type moveSections struct {
		head   *ini.Section
		frames map[int]*ini.Section
	}
	byID := map[int32]*moveSections{}
	var order []int32
	for _, sec := range f.Sections() {
		fields := strings.Fields(sec.Name())
		if len(fields) < 2 || !strings.EqualFold(fields[0], "Move") {
			continue
		}
		id64, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad move section name %q", sec.Name())
		}
		id := int32(id64)
		ms := byID[id]
		if ms == nil {
			ms = &moveSections{frames: map[int]*ini.Section{}}
			byID[id] = ms
			order = append(order, id)
		}
		switch {
		case len(fields) == 2:
			ms.head = sec
		case len(fields) == 4 && strings.EqualFold(fields[2], "Frame"):
			fidx, err := strconv.Atoi(fields[3])
			if err != nil || fidx < 0 {
				return nil, fmt.Errorf("bad frame section name %q", sec.Name())
			}
			ms.frames[fidx] = sec
		default:
			return nil, fmt.Errorf("bad move section name %q", sec.Name())
		}
	}

	var moves []sim.Move
	for _, id := range order {
		ms := byID[id]
		if ms.head == nil {
			return nil, fmt.Errorf("move %d has frame sections but no [Move %d] header", id, id)
		}
		m := sim.Move{
			ID:        id,
			Name:      ms.head.Key("name").String(),
			Successor: int32(ms.head.Key("successor").MustInt(0)),
		}
		count := 0
		for fidx := range ms.frames {
			if fidx+1 > count {
				count = fidx + 1
			}
		}
		m.Frames = make([]sim.FrameEntry, count)
		idxs := make([]int, 0, len(ms.frames))
		for fidx := range ms.frames {
			idxs = append(idxs, fidx)
		}
		sort.Ints(idxs)
		for _, fidx := range idxs {
			fe, err := defFrame(ms.frames[fidx])
			if err != nil {
				return nil, fmt.Errorf("move %d frame %d: %w", id, fidx, err)
			}
			m.Frames[fidx] = fe
		}
		moves = append(moves, m)
	}

	return finish(name, moves, specs)
}

// LoadDef reads and decodes a def file from disk.
func LoadDef(path string) (*sim.CharData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return FromDef(raw)
}

func defFrame(sec *ini.Section) (sim.FrameEntry, error) {
	fe := sim.FrameEntry{
		Damage:    int32(sec.Key("damage").MustInt(0)),
		MeterGain: int32(sec.Key("metergain").MustInt(0)),
		MultiHit:  sec.Key("multihit").MustBool(false),
	}
	var err error
	if fe.Hitboxes, err = defBoxes(sec, "hitbox"); err != nil {
		return fe, err
	}
	if fe.Hurtboxes, err = defBoxes(sec, "hurtbox"); err != nil {
		return fe, err
	}
	for _, v := range shadowValues(sec, "cancel") {
		nums, err := splitInts(v, 2)
		if err != nil {
			return fe, fmt.Errorf("cancel %q: %w", v, err)
		}
		fe.Cancels = append(fe.Cancels, sim.CancelWindow{Target: nums[0], Frames: nums[1]})
	}
	for _, v := range shadowValues(sec, "delta") {
		parts := splitAndTrim(v, ",")
		if len(parts) != 2 {
			return fe, fmt.Errorf("delta %q: want kind, amount", v)
		}
		add, err := strconv.ParseInt(parts[1], 10, 32)
		if err != nil {
			return fe, fmt.Errorf("delta %q: %w", v, err)
		}
		fe.Deltas = append(fe.Deltas, sim.ResourceDelta{
			Kind: sim.ResourceKindByName(strings.ToLower(parts[0])),
			Add:  int32(add),
		})
	}
	return fe, nil
}

func defBoxes(sec *ini.Section, key string) ([]sim.Box, error) {
	var boxes []sim.Box
	for _, v := range shadowValues(sec, key) {
		parts := splitAndTrim(v, ",")
		if len(parts) != 5 {
			return nil, fmt.Errorf("%s %q: want id, left, top, right, bottom", key, v)
		}
		id, err := strconv.ParseInt(parts[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", key, v, err)
		}
		b := sim.Box{ID: int32(id), Active: true}
		for i := 0; i < 4; i++ {
			f, err := strconv.ParseFloat(parts[i+1], 32)
			if err != nil {
				return nil, fmt.Errorf("%s %q: %w", key, v, err)
			}
			b.Extents[i] = float32(f)
		}
		boxes = append(boxes, b)
	}
	return boxes, nil
}

// shadowValues returns every value a repeated key took, or nothing if the
// key is absent.
func shadowValues(sec *ini.Section, key string) []string {
	if !sec.HasKey(key) {
		return nil
	}
	return sec.Key(key).ValueWithShadows()
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func splitInts(s string, want int) ([]int32, error) {
	parts := splitAndTrim(s, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("want %d comma separated values, got %d", want, len(parts))
	}
	out := make([]int32, want)
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return nil, err
		}
		out[i] = int32(v)
	}
	return out, nil
}

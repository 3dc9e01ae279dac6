package loader

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/okizeme-engine/okizeme/sim"
)

// FromJSON decodes the JSON exporter blob. Shape:
//
//	{
//	  "name": "suika",
//	  "resources": {"health": {"min": 0, "max": 1000, "default": 1000}, ...},
//	  "moves": [
//	    {"id": 0, "name": "stand", "successor": 0, "frames": [
//	      {"hitboxes": [{"id": 10, "box": [10, -40, 42, -20]}],
//	       "hurtboxes": [...],
//	       "cancels": [{"target": 210, "frames": 4}],
//	       "deltas": [{"kind": "stamina", "add": -5}],
//	       "damage": 90, "metergain": 30, "multihit": false}
//	    ]}
//	  ]
//	}
//
// Boxes are active unless "active" is explicitly false.
func FromJSON(raw []byte) (*sim.CharData, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("character json does not parse")
	}
	root := gjson.ParseBytes(raw)

	var specs [sim.NumResources]sim.ResourceSpec
	var badKind error
	root.Get("resources").ForEach(func(key, value gjson.Result) bool {
		k := sim.ResourceKindByName(key.String())
		if k == sim.NumResources {
			badKind = fmt.Errorf("unknown resource %q", key.String())
			return false
		}
		specs[k] = sim.ResourceSpec{
			Min:     int32(value.Get("min").Int()),
			Max:     int32(value.Get("max").Int()),
			Default: int32(value.Get("default").Int()),
		}
		return true
	})
	if badKind != nil {
		return nil, badKind
	}

	var moves []sim.Move
	for _, mv := range root.Get("moves").Array() {
		m := sim.Move{
			ID:        int32(mv.Get("id").Int()),
			Name:      mv.Get("name").String(),
			Successor: int32(mv.Get("successor").Int()),
		}
		for _, fr := range mv.Get("frames").Array() {
			fe := sim.FrameEntry{
				Damage:    int32(fr.Get("damage").Int()),
				MeterGain: int32(fr.Get("metergain").Int()),
				MultiHit:  fr.Get("multihit").Bool(),
			}
			fe.Hitboxes = jsonBoxes(fr.Get("hitboxes"))
			fe.Hurtboxes = jsonBoxes(fr.Get("hurtboxes"))
			for _, cw := range fr.Get("cancels").Array() {
				fe.Cancels = append(fe.Cancels, sim.CancelWindow{
					Target: int32(cw.Get("target").Int()),
					Frames: int32(cw.Get("frames").Int()),
				})
			}
			for _, d := range fr.Get("deltas").Array() {
				fe.Deltas = append(fe.Deltas, sim.ResourceDelta{
					Kind: sim.ResourceKindByName(d.Get("kind").String()),
					Add:  int32(d.Get("add").Int()),
				})
			}
			m.Frames = append(m.Frames, fe)
		}
		moves = append(moves, m)
	}

	return finish(root.Get("name").String(), moves, specs)
}

func jsonBoxes(list gjson.Result) []sim.Box {
	var boxes []sim.Box
	for _, b := range list.Array() {
		box := sim.Box{
			ID:     int32(b.Get("id").Int()),
			Active: true,
		}
		if a := b.Get("active"); a.Exists() {
			box.Active = a.Bool()
		}
		ext := b.Get("box").Array()
		for i := 0; i < len(ext) && i < 4; i++ {
			box.Extents[i] = float32(ext[i].Float())
		}
		boxes = append(boxes, box)
	}
	return boxes
}

// ToJSON renders a table back into the exporter blob, for round-trip
// tooling. The output decodes to an identical table through FromJSON.
func ToJSON(cd *sim.CharData) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	set := func(path string, value interface{}) {
		if err != nil {
			return
		}
		out, err = sjson.SetBytes(out, path, value)
	}

	set("name", cd.Name)
	for k := sim.ResourceKind(0); k < sim.NumResources; k++ {
		base := "resources." + k.String()
		set(base+".min", cd.Resources[k].Min)
		set(base+".max", cd.Resources[k].Max)
		set(base+".default", cd.Resources[k].Default)
	}
	for mi, m := range cd.Moves() {
		base := fmt.Sprintf("moves.%d", mi)
		set(base+".id", m.ID)
		set(base+".name", m.Name)
		set(base+".successor", m.Successor)
		for fi, fe := range m.Frames {
			fbase := fmt.Sprintf("%s.frames.%d", base, fi)
			set(fbase+".damage", fe.Damage)
			set(fbase+".metergain", fe.MeterGain)
			set(fbase+".multihit", fe.MultiHit)
			for bi, b := range fe.Hitboxes {
				setJSONBox(set, fmt.Sprintf("%s.hitboxes.%d", fbase, bi), b)
			}
			for bi, b := range fe.Hurtboxes {
				setJSONBox(set, fmt.Sprintf("%s.hurtboxes.%d", fbase, bi), b)
			}
			for ci, cw := range fe.Cancels {
				cbase := fmt.Sprintf("%s.cancels.%d", fbase, ci)
				set(cbase+".target", cw.Target)
				set(cbase+".frames", cw.Frames)
			}
			for di, d := range fe.Deltas {
				dbase := fmt.Sprintf("%s.deltas.%d", fbase, di)
				set(dbase+".kind", d.Kind.String())
				set(dbase+".add", d.Add)
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func setJSONBox(set func(string, interface{}), base string, b sim.Box) {
	set(base+".id", b.ID)
	set(base+".box", []float32{b.Extents[0], b.Extents[1], b.Extents[2], b.Extents[3]})
	set(base+".active", b.Active)
}

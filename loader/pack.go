package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/okizeme-engine/okizeme/sim"
)

// The binary pack format: "OKZP" magic, a version word, then little-endian
// records mirroring the in-memory table. Strings are u16 length prefixed,
// counts are u16, scalars are int32, box extents float32.

var packMagic = [4]byte{'O', 'K', 'Z', 'P'}

const packVersion uint16 = 1

// FromPack decodes the binary pack exporter output.
func FromPack(raw []byte) (*sim.CharData, error) {
	r := bytes.NewReader(raw)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != packMagic {
		return nil, fmt.Errorf("not a character pack")
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading pack version: %w", err)
	}
	if version != packVersion {
		return nil, fmt.Errorf("unsupported pack version %d", version)
	}

	name, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("reading pack name: %w", err)
	}

	var specs [sim.NumResources]sim.ResourceSpec
	for k := sim.ResourceKind(0); k < sim.NumResources; k++ {
		if err := binary.Read(r, binary.LittleEndian, &specs[k]); err != nil {
			return nil, fmt.Errorf("reading resource spec %v: %w", k, err)
		}
	}

	var moveCount uint16
	if err := binary.Read(r, binary.LittleEndian, &moveCount); err != nil {
		return nil, fmt.Errorf("reading move count: %w", err)
	}
	moves := make([]sim.Move, 0, moveCount)
	for i := uint16(0); i < moveCount; i++ {
		m, err := readMove(r)
		if err != nil {
			return nil, fmt.Errorf("reading move %d: %w", i, err)
		}
		moves = append(moves, m)
	}

	return finish(name, moves, specs)
}

// ToPack renders a table into the binary pack format.
func ToPack(cd *sim.CharData) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(packMagic[:])
	w := func(v interface{}) {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	w(packVersion)
	writeString(&buf, cd.Name)
	for k := sim.ResourceKind(0); k < sim.NumResources; k++ {
		w(cd.Resources[k])
	}
	moves := cd.Moves()
	w(uint16(len(moves)))
	for _, m := range moves {
		w(m.ID)
		writeString(&buf, m.Name)
		w(m.Successor)
		w(uint16(len(m.Frames)))
		for _, fe := range m.Frames {
			writeBoxes(&buf, fe.Hitboxes)
			writeBoxes(&buf, fe.Hurtboxes)
			w(uint16(len(fe.Cancels)))
			for _, cw := range fe.Cancels {
				w(cw)
			}
			w(uint16(len(fe.Deltas)))
			for _, d := range fe.Deltas {
				w(d)
			}
			w(fe.Damage)
			w(fe.MeterGain)
			var multi uint8
			if fe.MultiHit {
				multi = 1
			}
			w(multi)
		}
	}
	return buf.Bytes(), nil
}

func readMove(r *bytes.Reader) (sim.Move, error) {
	var m sim.Move
	if err := binary.Read(r, binary.LittleEndian, &m.ID); err != nil {
		return m, err
	}
	name, err := readString(r)
	if err != nil {
		return m, err
	}
	m.Name = name
	if err := binary.Read(r, binary.LittleEndian, &m.Successor); err != nil {
		return m, err
	}
	var frameCount uint16
	if err := binary.Read(r, binary.LittleEndian, &frameCount); err != nil {
		return m, err
	}
	m.Frames = make([]sim.FrameEntry, 0, frameCount)
	for i := uint16(0); i < frameCount; i++ {
		fe, err := readFrame(r)
		if err != nil {
			return m, fmt.Errorf("frame %d: %w", i, err)
		}
		m.Frames = append(m.Frames, fe)
	}
	return m, nil
}

func readFrame(r *bytes.Reader) (sim.FrameEntry, error) {
	var fe sim.FrameEntry
	var err error
	if fe.Hitboxes, err = readBoxes(r); err != nil {
		return fe, err
	}
	if fe.Hurtboxes, err = readBoxes(r); err != nil {
		return fe, err
	}
	var cancelCount uint16
	if err := binary.Read(r, binary.LittleEndian, &cancelCount); err != nil {
		return fe, err
	}
	for i := uint16(0); i < cancelCount; i++ {
		var cw sim.CancelWindow
		if err := binary.Read(r, binary.LittleEndian, &cw); err != nil {
			return fe, err
		}
		fe.Cancels = append(fe.Cancels, cw)
	}
	var deltaCount uint16
	if err := binary.Read(r, binary.LittleEndian, &deltaCount); err != nil {
		return fe, err
	}
	for i := uint16(0); i < deltaCount; i++ {
		var d sim.ResourceDelta
		if err := binary.Read(r, binary.LittleEndian, &d); err != nil {
			return fe, err
		}
		fe.Deltas = append(fe.Deltas, d)
	}
	if err := binary.Read(r, binary.LittleEndian, &fe.Damage); err != nil {
		return fe, err
	}
	if err := binary.Read(r, binary.LittleEndian, &fe.MeterGain); err != nil {
		return fe, err
	}
	var multi uint8
	if err := binary.Read(r, binary.LittleEndian, &multi); err != nil {
		return fe, err
	}
	fe.MultiHit = multi != 0
	return fe, nil
}

func readBoxes(r *bytes.Reader) ([]sim.Box, error) {
	var count uint16
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	var boxes []sim.Box
	for i := uint16(0); i < count; i++ {
		var b sim.Box
		if err := binary.Read(r, binary.LittleEndian, &b.ID); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &b.Extents); err != nil {
			return nil, err
		}
		var active uint8
		if err := binary.Read(r, binary.LittleEndian, &active); err != nil {
			return nil, err
		}
		b.Active = active != 0
		boxes = append(boxes, b)
	}
	return boxes, nil
}

func writeBoxes(buf *bytes.Buffer, boxes []sim.Box) {
	binary.Write(buf, binary.LittleEndian, uint16(len(boxes)))
	for _, b := range boxes {
		binary.Write(buf, binary.LittleEndian, b.ID)
		binary.Write(buf, binary.LittleEndian, b.Extents)
		var active uint8
		if b.Active {
			active = 1
		}
		binary.Write(buf, binary.LittleEndian, active)
	}
}

func readString(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
}

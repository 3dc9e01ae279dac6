// Package loader builds validated sim.CharData tables from the exporter
// formats: the JSON blob, the def text format and the binary pack. All
// parsing and I/O lives here; the simulation core only ever sees a table
// that already passed validation. Whichever format a table arrives in, the
// in-memory result is identical.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/okizeme-engine/okizeme/sim"
)

// Log receives load-time diagnostics. Hosts that want them assign a real
// logger; the default discards everything.
var Log = zerolog.Nop()

// Load reads a compiled character file, picking the decoder by extension:
// .json, .def, .okzp.
func Load(path string) (*sim.CharData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FromJSON(raw)
	case ".def":
		return FromDef(raw)
	case ".okzp":
		return FromPack(raw)
	}
	return nil, fmt.Errorf("unrecognized character file extension: %s", path)
}

// finish funnels every decoder through the same validating constructor, so
// a table that leaves this package can never fault the simulation.
func finish(name string, moves []sim.Move, specs [sim.NumResources]sim.ResourceSpec) (*sim.CharData, error) {
	cd, err := sim.NewCharData(name, moves, specs)
	if err != nil {
		return nil, err
	}
	frames := 0
	for _, m := range cd.Moves() {
		frames += len(m.Frames)
	}
	Log.Debug().
		Str("char", name).
		Int("moves", len(cd.Moves())).
		Int("frames", frames).
		Msg("compiled character table loaded")
	return cd, nil
}

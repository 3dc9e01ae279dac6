package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okizeme-engine/okizeme/sim"
)

const testJSON = `{
  "name": "suika",
  "resources": {
    "health": {"min": 0, "max": 1000, "default": 1000},
    "meter": {"min": 0, "max": 300, "default": 0},
    "stamina": {"min": 0, "max": 100, "default": 100},
    "guard": {"min": 0, "max": 50, "default": 50}
  },
  "moves": [
    {"id": 0, "name": "stand", "successor": 0, "frames": [
      {"hurtboxes": [{"id": 1, "box": [-12, -60, 12, 0]}]},
      {"hurtboxes": [{"id": 1, "box": [-12, -60, 12, 0]}]}
    ]},
    {"id": 200, "name": "jab", "successor": 0, "frames": [
      {"hurtboxes": [{"id": 1, "box": [-12, -60, 12, 0]}],
       "deltas": [{"kind": "stamina", "add": -5}]},
      {"hurtboxes": [{"id": 1, "box": [-12, -60, 12, 0]}],
       "cancels": [{"target": 210, "frames": 4}]},
      {"hurtboxes": [{"id": 1, "box": [-12, -60, 12, 0]}],
       "hitboxes": [{"id": 10, "box": [10, -40, 42, -20]}],
       "damage": 90, "metergain": 30}
    ]},
    {"id": 210, "name": "strong", "successor": 0, "frames": [
      {"hurtboxes": [{"id": 1, "box": [-12, -60, 12, 0]}], "multihit": true}
    ]}
  ]
}`

const testDef = `
[Info]
name = suika

[Resources]
health = 0, 1000, 1000
meter = 0, 300, 0
stamina = 0, 100, 100
guard = 0, 50, 50

[Move 0]
name = stand
successor = 0

[Move 0 Frame 0]
hurtbox = 1, -12, -60, 12, 0

[Move 0 Frame 1]
hurtbox = 1, -12, -60, 12, 0

[Move 200]
name = jab
successor = 0

[Move 200 Frame 0]
hurtbox = 1, -12, -60, 12, 0
delta = stamina, -5

[Move 200 Frame 1]
hurtbox = 1, -12, -60, 12, 0
cancel = 210, 4

[Move 200 Frame 2]
hurtbox = 1, -12, -60, 12, 0
hitbox = 10, 10, -40, 42, -20
damage = 90
metergain = 30

[Move 210]
name = strong
successor = 0

[Move 210 Frame 0]
hurtbox = 1, -12, -60, 12, 0
multihit = 1
`

func requireSuika(t *testing.T, cd *sim.CharData) {
	t.Helper()
	require.Equal(t, "suika", cd.Name)
	require.Len(t, cd.Moves(), 3)

	jab := cd.Move(200)
	require.NotNil(t, jab)
	require.Len(t, jab.Frames, 3)
	assert.Equal(t, "jab", jab.Name)
	assert.Equal(t, int32(0), jab.Successor)
	assert.Equal(t, []sim.ResourceDelta{{Kind: sim.Stamina, Add: -5}}, jab.Frames[0].Deltas)
	assert.Equal(t, []sim.CancelWindow{{Target: 210, Frames: 4}}, jab.Frames[1].Cancels)
	require.Len(t, jab.Frames[2].Hitboxes, 1)
	assert.Equal(t, sim.Box{ID: 10, Extents: [4]float32{10, -40, 42, -20}, Active: true},
		jab.Frames[2].Hitboxes[0])
	assert.Equal(t, int32(90), jab.Frames[2].Damage)
	assert.Equal(t, int32(30), jab.Frames[2].MeterGain)

	assert.True(t, cd.Move(210).Frames[0].MultiHit)
	assert.Equal(t, sim.ResourceSpec{Min: 0, Max: 300, Default: 0}, cd.Resources[sim.Meter])
}

func TestFromJSON(t *testing.T) {
	cd, err := FromJSON([]byte(testJSON))
	require.NoError(t, err)
	requireSuika(t, cd)
}

func TestFromDef(t *testing.T) {
	cd, err := FromDef([]byte(testDef))
	require.NoError(t, err)
	requireSuika(t, cd)
}

// Whichever exporter wrote the file, the in-memory table must be identical.
func TestFormatsAgree(t *testing.T) {
	fromJSON, err := FromJSON([]byte(testJSON))
	require.NoError(t, err)
	fromDef, err := FromDef([]byte(testDef))
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Name, fromDef.Name)
	assert.Equal(t, fromJSON.Resources, fromDef.Resources)
	assert.Equal(t, fromJSON.Moves(), fromDef.Moves())
}

func TestJSONRoundTrip(t *testing.T) {
	cd, err := FromJSON([]byte(testJSON))
	require.NoError(t, err)

	blob, err := ToJSON(cd)
	require.NoError(t, err)
	again, err := FromJSON(blob)
	require.NoError(t, err)

	assert.Equal(t, cd.Name, again.Name)
	assert.Equal(t, cd.Resources, again.Resources)
	assert.Equal(t, cd.Moves(), again.Moves())
}

func TestPackRoundTrip(t *testing.T) {
	cd, err := FromJSON([]byte(testJSON))
	require.NoError(t, err)

	pack, err := ToPack(cd)
	require.NoError(t, err)
	again, err := FromPack(pack)
	require.NoError(t, err)

	assert.Equal(t, cd.Name, again.Name)
	assert.Equal(t, cd.Resources, again.Resources)
	assert.Equal(t, cd.Moves(), again.Moves())
}

func TestPackRejectsGarbage(t *testing.T) {
	_, err := FromPack([]byte("not a pack at all"))
	require.Error(t, err)

	_, err = FromPack([]byte{'O', 'K', 'Z', 'P', 9, 0})
	require.Error(t, err, "unknown version must be refused")
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "suika.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(testJSON), 0o644))
	defPath := filepath.Join(dir, "suika.def")
	require.NoError(t, os.WriteFile(defPath, []byte(testDef), 0o644))

	cd, err := FromJSON([]byte(testJSON))
	require.NoError(t, err)
	pack, err := ToPack(cd)
	require.NoError(t, err)
	packPath := filepath.Join(dir, "suika.okzp")
	require.NoError(t, os.WriteFile(packPath, pack, 0o644))

	for _, path := range []string{jsonPath, defPath, packPath} {
		got, err := Load(path)
		require.NoError(t, err, path)
		requireSuika(t, got)
	}

	_, err = Load(filepath.Join(dir, "suika.exe"))
	require.Error(t, err)
}

func TestValidationFaults(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"zero length move", `{"name":"x","resources":{},"moves":[{"id":0,"successor":0,"frames":[]}]}`},
		{"missing successor", `{"name":"x","resources":{},"moves":[{"id":0,"successor":7,"frames":[{}]}]}`},
		{"dangling cancel", `{"name":"x","resources":{},"moves":[{"id":0,"successor":0,"frames":[{"cancels":[{"target":9,"frames":2}]}]}]}`},
		{"duplicate ids", `{"name":"x","resources":{},"moves":[{"id":0,"successor":0,"frames":[{}]},{"id":0,"successor":0,"frames":[{}]}]}`},
		{"inverted box", `{"name":"x","resources":{},"moves":[{"id":0,"successor":0,"frames":[{"hitboxes":[{"id":1,"box":[5,0,-5,10]}]}]}]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := FromJSON([]byte(c.json))
			require.ErrorIs(t, err, sim.ErrDataFault,
				"broken tables must be refused at load time, not discovered mid-match")
		})
	}
}

func TestFromJSONRejectsUnparseable(t *testing.T) {
	_, err := FromJSON([]byte("{nope"))
	require.Error(t, err)
	_, err = FromJSON([]byte(`{"resources": {"souls": {"min": 0}}}`))
	require.Error(t, err)
}

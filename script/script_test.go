package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const charJSON = `{
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
      {"hurtboxes": [{"id": 1, "box": [-12, -60, 12, 0]}]},
      {"hurtboxes": [{"id": 1, "box": [-12, -60, 12, 0]}],
       "cancels": [{"target": 210, "frames": 4}]},
      {"hurtboxes": [{"id": 1, "box": [-12, -60, 12, 0]}],
       "hitboxes": [{"id": 10, "box": [10, -40, 42, -20]}],
       "damage": 90, "metergain": 30}
    ]},
    {"id": 210, "name": "strong", "successor": 0, "frames": [
      {"hurtboxes": [{"id": 1, "box": [-12, -60, 12, 0]}]}
    ]}
  ]
}`

func charFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suika.json")
	require.NoError(t, os.WriteFile(path, []byte(charJSON), 0o644))
	return path
}

func TestScenarioHitAndDamage(t *testing.T) {
	r := NewRunner()
	defer r.Close()

	path := charFile(t)
	script := `
		loadChar(1, "` + path + `")
		loadChar(2, "` + path + `")
		setPos(2, 30, 0)
		setFacing(2, -1)
		setMove(1, 200)

		-- walk the jab onto its active frame
		step(); step()
		assert(move(1) == 200, "p1 should still be in the jab")
		assert(frame(1) == 2, "p1 should be on jab frame 2")
		assert(lastHit(1), "jab frame 2 should connect")
		assert(resource(2, "health") == 910, "p2 should have taken 90")
		assert(resource(1, "meter") == 30, "p1 should have gained meter")
		assert(ticks() == 2)
	`
	require.NoError(t, r.RunString(script))
	assert.Equal(t, int32(2), r.Tick())
}

func TestScenarioCancel(t *testing.T) {
	r := NewRunner()
	defer r.Close()

	path := charFile(t)
	script := `
		loadChar(1, "` + path + `")
		loadChar(2, "` + path + `")
		setPos(2, 500, 0)
		setMove(1, 200)

		step()
		assert(canCancel(1, 210), "window on jab frame 1 should be open")
		step(0, 210)
		assert(move(1) == 210, "cancel into strong")
		assert(frame(1) == 0)
		assert(lastTransition(1) == "cancel")
	`
	require.NoError(t, r.RunString(script))
}

func TestScenarioErrors(t *testing.T) {
	r := NewRunner()
	defer r.Close()

	require.Error(t, r.RunString(`step()`), "stepping with no characters loaded")
	require.Error(t, r.RunString(`loadChar(3, "x")`), "side out of range")
	require.Error(t, r.RunString(`lastHit(3)`), "side out of range on a read binding")
	require.Error(t, r.RunString(`lastTransition(0)`), "side out of range on a read binding")
	require.Error(t, r.RunString(`loadChar(1, "/no/such/file.json")`))
}

// Package script exposes the simulation to Lua scenarios. A scenario drives
// two characters tick by tick, which is how the replay runner and data
// authors exercise tables without a full game host around the core.
package script

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"

	"github.com/okizeme-engine/okizeme/loader"
	"github.com/okizeme-engine/okizeme/sim"
)

func luaRegister(l *lua.LState, name string, f func(*lua.LState) int) {
	l.Register(name, f)
}

func strArg(l *lua.LState, argi int) string {
	if !lua.LVCanConvToString(l.Get(argi)) {
		l.RaiseError("\nArgument %v is not a string: %v\n", argi, l.Get(argi))
	}
	return l.ToString(argi)
}

func numArg(l *lua.LState, argi int) float64 {
	num, ok := l.Get(argi).(lua.LNumber)
	if !ok {
		l.RaiseError("\nArgument %v is not a number: %v\n", argi, l.Get(argi))
	}
	return float64(num)
}

// optNumArg reads a trailing optional numeric argument.
func optNumArg(l *lua.LState, argi int, def float64) float64 {
	if l.GetTop() < argi || l.Get(argi) == lua.LNil {
		return def
	}
	return numArg(l, argi)
}

// side picks one of the two fighters: 1 or 2.
func (r *Runner) side(l *lua.LState, argi int) *fighter {
	switch int(numArg(l, argi)) {
	case 1:
		return &r.p1
	case 2:
		return &r.p2
	}
	l.RaiseError("\nArgument %v is not a player side (1 or 2)\n", argi)
	return nil
}

type fighter struct {
	data  *sim.CharData
	state sim.CharacterState
	last  sim.FrameResult
}

// Runner owns one Lua state wired to a two-fighter simulation.
type Runner struct {
	l    *lua.LState
	p1   fighter
	p2   fighter
	tick int32
}

func NewRunner() *Runner {
	r := &Runner{l: lua.NewState()}
	r.register()
	return r
}

// Close releases the Lua state.
func (r *Runner) Close() {
	r.l.Close()
}

// RunFile executes a scenario script from disk.
func (r *Runner) RunFile(path string) error {
	return r.l.DoFile(path)
}

// RunString executes an inline scenario, mostly for tests.
func (r *Runner) RunString(src string) error {
	return r.l.DoString(src)
}

// Tick returns how many simulation ticks the scenario has run.
func (r *Runner) Tick() int32 {
	return r.tick
}

func (r *Runner) register() {
	l := r.l

	// loadChar(side, path): load a character table for player 1 or 2 and
	// put them in the table's first declared move.
	luaRegister(l, "loadChar", func(l *lua.LState) int {
		f := r.side(l, 1)
		data, err := loader.Load(strArg(l, 2))
		if err != nil {
			l.RaiseError("\n%v\n", err)
		}
		if len(data.Moves()) == 0 {
			l.RaiseError("\nCharacter table declares no moves\n")
		}
		f.data = data
		state, err := sim.NewCharacterState(data, data.Moves()[0].ID)
		if err != nil {
			l.RaiseError("\n%v\n", err)
		}
		f.state = state
		return 0
	})

	// setMove(side, moveID): restart a fighter in the given move.
	luaRegister(l, "setMove", func(l *lua.LState) int {
		f := r.side(l, 1)
		state, err := sim.NewCharacterState(r.mustData(l, f), int32(numArg(l, 2)))
		if err != nil {
			l.RaiseError("\n%v\n", err)
		}
		// Keep placement and resources, restart the move.
		state = state.SetPos(f.state.Pos()).SetFacing(f.state.Facing())
		for k := sim.ResourceKind(0); k < sim.NumResources; k++ {
			state, _ = sim.SetResource(f.data, state, k, f.state.Resource(k))
		}
		f.state = state
		return 0
	})

	// setPos(side, x, y) / setFacing(side, f)
	luaRegister(l, "setPos", func(l *lua.LState) int {
		f := r.side(l, 1)
		f.state = f.state.SetPos(mgl32.Vec2{float32(numArg(l, 2)), float32(numArg(l, 3))})
		return 0
	})
	luaRegister(l, "setFacing", func(l *lua.LState) int {
		f := r.side(l, 1)
		f.state = f.state.SetFacing(float32(numArg(l, 2)))
		return 0
	})

	// step(bits1, cancel1, bits2, cancel2): advance both fighters one tick.
	// Cancels default to none. Reported damage is applied crosswise, the
	// way a game host consumes FrameResult.
	luaRegister(l, "step", func(l *lua.LState) int {
		in1 := sim.FrameInput{
			Held:   sim.InputBits(int32(optNumArg(l, 1, 0))),
			Cancel: int32(optNumArg(l, 2, float64(sim.NoCancel))),
		}
		in2 := sim.FrameInput{
			Held:   sim.InputBits(int32(optNumArg(l, 3, 0))),
			Cancel: int32(optNumArg(l, 4, float64(sim.NoCancel))),
		}
		if err := r.step(in1, in2); err != nil {
			l.RaiseError("\n%v\n", err)
		}
		return 0
	})

	// move(side) / frame(side) / resource(side, kind)
	luaRegister(l, "move", func(l *lua.LState) int {
		l.Push(lua.LNumber(r.side(l, 1).state.MoveID()))
		return 1
	})
	luaRegister(l, "frame", func(l *lua.LState) int {
		l.Push(lua.LNumber(r.side(l, 1).state.FrameIndex()))
		return 1
	})
	luaRegister(l, "resource", func(l *lua.LState) int {
		f := r.side(l, 1)
		kind := sim.ResourceKindByName(strArg(l, 2))
		l.Push(lua.LNumber(f.state.Resource(kind)))
		return 1
	})

	// lastHit(side): whether the fighter's previous tick connected.
	luaRegister(l, "lastHit", func(l *lua.LState) int {
		l.Push(lua.LBool(r.side(l, 1).last.Hit.Hit))
		return 1
	})

	// lastTransition(side): "none", "cancel" or "auto".
	luaRegister(l, "lastTransition", func(l *lua.LState) int {
		l.Push(lua.LString(r.side(l, 1).last.Transition.String()))
		return 1
	})

	// canCancel(side, target)
	luaRegister(l, "canCancel", func(l *lua.LState) int {
		f := r.side(l, 1)
		l.Push(lua.LBool(sim.CanCancelTo(r.mustData(l, f), f.state, int32(numArg(l, 2)))))
		return 1
	})

	// ticks()
	luaRegister(l, "ticks", func(l *lua.LState) int {
		l.Push(lua.LNumber(r.tick))
		return 1
	})
}

func (r *Runner) mustData(l *lua.LState, f *fighter) *sim.CharData {
	if f.data == nil {
		l.RaiseError("\nNo character loaded for that side\n")
	}
	return f.data
}

// step advances both fighters against each other's hurtboxes and applies
// reported damage crosswise, all from the pre-tick snapshots so neither
// side sees the other's mid-tick state.
func (r *Runner) step(in1, in2 sim.FrameInput) error {
	if r.p1.data == nil || r.p2.data == nil {
		return fmt.Errorf("both sides need a character before step")
	}
	hurt1, err := sim.ActiveHurtboxes(r.p1.data, r.p1.state)
	if err != nil {
		return err
	}
	hurt2, err := sim.ActiveHurtboxes(r.p2.data, r.p2.state)
	if err != nil {
		return err
	}

	next1, res1, err := sim.NextFrame(r.p1.data, r.p1.state, in1, hurt2)
	if err != nil {
		return err
	}
	next2, res2, err := sim.NextFrame(r.p2.data, r.p2.state, in2, hurt1)
	if err != nil {
		return err
	}

	if res1.Hit.Hit {
		next2, _ = sim.AddResource(r.p2.data, next2, sim.Health, -res1.Damage)
	}
	if res2.Hit.Hit {
		next1, _ = sim.AddResource(r.p1.data, next1, sim.Health, -res2.Damage)
	}

	r.p1.state, r.p2.state = next1, next2
	r.p1.last, r.p2.last = res1, res2
	r.tick++
	return nil
}

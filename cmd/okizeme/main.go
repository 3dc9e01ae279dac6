// okizeme is the replay runner: it loads a compiled character table and
// drives the simulation from a recorded input tape or a Lua scenario,
// reporting transitions, hits and resource events per tick. It is the host
// driver loop in miniature, useful for exporter authors checking what their
// tables actually do frame by frame.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"

	"github.com/okizeme-engine/okizeme/loader"
	"github.com/okizeme-engine/okizeme/script"
	"github.com/okizeme-engine/okizeme/sim"
)

var Version = "development"

type runConfig struct {
	Ticks    int     `ini:"ticks"`
	LogLevel string  `ini:"loglevel"`
	P2X      float32 `ini:"p2x"`
	P2Facing float32 `ini:"p2facing"`
}

func defaultConfig() runConfig {
	return runConfig{Ticks: 600, LogLevel: "info", P2X: 30, P2Facing: -1}
}

func loadConfig(path string) (runConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("loading config %s: %w", path, err)
	}
	if err := f.Section("Run").MapTo(&cfg); err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	charPath := flag.String("char", "", "compiled character file (.json, .def or .okzp)")
	replayPath := flag.String("replay", "", "input tape, one 'bits[,cancel]' line per tick")
	scriptPath := flag.String("script", "", "lua scenario to run instead of a tape")
	configPath := flag.String("config", "", "runner config (ini)")
	quiet := flag.Bool("quiet", false, "only print the final summary")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("okizeme", Version)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if *quiet {
		level = zerolog.ErrorLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
	loader.Log = log

	switch {
	case *scriptPath != "":
		runScript(log, *scriptPath)
	case *charPath != "" && *replayPath != "":
		runReplay(log, cfg, *charPath, *replayPath)
	default:
		fmt.Fprintln(os.Stderr, "usage: okizeme -char file -replay tape | okizeme -script scenario.lua")
		flag.PrintDefaults()
		os.Exit(2)
	}
}

func runScript(log zerolog.Logger, path string) {
	r := script.NewRunner()
	defer r.Close()
	if err := r.RunFile(path); err != nil {
		log.Error().Err(err).Str("script", path).Msg("scenario failed")
		os.Exit(1)
	}
	log.Info().Int32("ticks", r.Tick()).Str("script", path).Msg("scenario passed")
}

type tapeEntry struct {
	bits   sim.InputBits
	cancel int32
}

// readTape parses the replay format: one tick per line, "bits" or
// "bits,cancel", blank lines and #-comments skipped.
func readTape(path string) ([]tapeEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tape []tapeEntry
	sc := bufio.NewScanner(f)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry := tapeEntry{cancel: sim.NoCancel}
		parts := strings.SplitN(line, ",", 2)
		bits, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad input bits %q", path, lineNo, parts[0])
		}
		entry.bits = sim.InputBits(bits)
		if len(parts) == 2 {
			cancel, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad cancel target %q", path, lineNo, parts[1])
			}
			entry.cancel = int32(cancel)
		}
		tape = append(tape, entry)
	}
	return tape, sc.Err()
}

func runReplay(log zerolog.Logger, cfg runConfig, charPath, replayPath string) {
	data, err := loader.Load(charPath)
	if err != nil {
		log.Error().Err(err).Msg("character table refused")
		os.Exit(1)
	}
	tape, err := readTape(replayPath)
	if err != nil {
		log.Error().Err(err).Msg("replay tape refused")
		os.Exit(1)
	}

	if len(data.Moves()) == 0 {
		log.Error().Msg("character table declares no moves")
		os.Exit(1)
	}
	startMove := data.Moves()[0].ID
	player, err := sim.NewCharacterState(data, startMove)
	if err != nil {
		log.Error().Err(err).Msg("player setup failed")
		os.Exit(1)
	}
	dummy, err := sim.NewCharacterState(data, startMove)
	if err != nil {
		log.Error().Err(err).Msg("dummy setup failed")
		os.Exit(1)
	}
	dummy = dummy.SetPos(mgl32.Vec2{cfg.P2X, 0}).SetFacing(cfg.P2Facing)

	var prev sim.InputBits
	hits, transitions := 0, 0
	ticks := len(tape)
	if cfg.Ticks > 0 && cfg.Ticks < ticks {
		ticks = cfg.Ticks
	}
	for tick := 0; tick < ticks; tick++ {
		in := sim.MakeFrameInput(tape[tick].bits, prev, player.Facing(), tape[tick].cancel)
		prev = tape[tick].bits

		hurt, err := sim.ActiveHurtboxes(data, dummy)
		if err != nil {
			log.Error().Err(err).Int("tick", tick).Msg("data fault")
			os.Exit(1)
		}
		next, res, err := sim.NextFrame(data, player, in, hurt)
		if err != nil {
			log.Error().Err(err).Int("tick", tick).Msg("data fault")
			os.Exit(1)
		}
		player = next

		if res.Transition != sim.TransitionNone {
			transitions++
			log.Info().Int("tick", tick).
				Stringer("kind", res.Transition).
				Int32("from", res.PrevMove).Int32("to", res.Move).
				Msg("transition")
		}
		if res.Hit.Hit {
			hits++
			var ev sim.ResourceEvent
			dummy, ev = sim.AddResource(data, dummy, sim.Health, -res.Damage)
			log.Info().Int("tick", tick).
				Int32("damage", res.Damage).
				Int32("dummy_health", dummy.Resource(sim.Health)).
				Msg("hit")
			if ev.AtMin {
				log.Info().Int("tick", tick).Msg("dummy knocked out")
			}
		}
		for _, ev := range res.Events {
			log.Info().Int("tick", tick).
				Stringer("resource", ev.Kind).
				Int32("value", ev.Value).
				Bool("at_min", ev.AtMin).Bool("at_max", ev.AtMax).
				Msg("resource boundary")
		}
	}

	fmt.Printf("%s: %d ticks, %d transitions, %d hits, final move %d frame %d\n",
		data.Name, ticks, transitions, hits, player.MoveID(), player.FrameIndex())
}

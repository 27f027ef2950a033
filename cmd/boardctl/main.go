// Command boardctl is the development harness for the move-disambiguation
// engine: it drives pkg/engine from a scripted terminal sensor instead of
// real hall-effect hardware, and renders feedback as a dual ANSI board.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/squarewave/chessrig/pkg/board"
	"github.com/squarewave/chessrig/pkg/display"
	"github.com/squarewave/chessrig/pkg/engine"
	"github.com/squarewave/chessrig/pkg/feedback"
	"github.com/squarewave/chessrig/pkg/sensor"
)

const startingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func main() {
	fenFlag := flag.String("fen", "", "starting position FEN (default: standard start)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	sugar := logger.Sugar()

	session, err := newSession(*fenFlag)
	if err != nil {
		sugar.Fatalw("failed to start session", "fen", *fenFlag, "error", err)
	}

	session.run(sugar)
}

// session bundles the engine, its scripted sensor, and the terminal sink
// into the harness's control loop.
type session struct {
	eng       *engine.Engine
	sen       *sensor.ScriptedSensor
	sink      display.TerminalSink
	lastState *engine.GameState
}

func newSession(fen string) (*session, error) {
	if fen == "" {
		s := &session{eng: engine.New(), sen: sensor.New()}
		s.bootstrap()
		return s, nil
	}
	eng, sen, err := sessionFromFEN(fen)
	if err != nil {
		return nil, err
	}
	s := &session{eng: eng, sen: sen}
	s.bootstrap()
	return s, nil
}

func sessionFromFEN(fen string) (*engine.Engine, *sensor.ScriptedSensor, error) {
	fenFunc, err := chess.FEN(fen)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing fen %q: %w", fen, err)
	}
	game := chess.NewGame(fenFunc)
	pos := game.Position()

	eng := engine.FromPosition(pos)
	occ := engine.Occupancy(pos)
	sen, err := sensor.FromBitboards(occ.White, occ.Black)
	if err != nil {
		return nil, nil, fmt.Errorf("seeding sensor from fen: %w", err)
	}
	return eng, sen, nil
}

// bootstrap calls Tick once at startup, per spec.md's note that the
// terminal harness must tick once to obtain an initial GameState.
func (s *session) bootstrap() {
	s.lastState = s.eng.Tick(s.sen.ReadPositions())
}

func (s *session) reset() {
	s.eng = engine.New()
	s.sen = sensor.New()
	s.bootstrap()
}

func (s *session) load(fen string) error {
	eng, sen, err := sessionFromFEN(fen)
	if err != nil {
		return err
	}
	s.eng, s.sen = eng, sen
	s.bootstrap()
	return nil
}

func (s *session) runScript(script string) error {
	if err := s.sen.PushScript(script); err != nil {
		return err
	}
	return s.sen.Drain(func(occ board.ColorOccupancy) {
		s.lastState = s.eng.Tick(occ)
	})
}

func (s *session) run(sugar *zap.SugaredLogger) {
	clearScreen()
	s.draw()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			sugar.Infow("input closed, exiting", "error", err)
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "load":
			if len(fields) < 2 {
				fmt.Println("Usage: load <fen> | load startpos")
				continue
			}
			fen := startingFEN
			if fields[1] != "startpos" {
				fen = strings.TrimSpace(strings.TrimPrefix(line, "load"))
			}
			if err := s.load(fen); err != nil {
				sugar.Warnw("failed to load position", "fen", fen, "error", err)
				fmt.Println("invalid FEN:", err)
				continue
			}
			clearScreen()
			s.draw()
		case "r":
			s.reset()
			clearScreen()
			s.draw()
		case "p":
			clearScreen()
			s.draw()
		case "q":
			return
		default:
			if err := s.runScript(line); err != nil {
				sugar.Warnw("script failed", "script", line, "error", err)
				fmt.Println("error:", err)
				continue
			}
			clearScreen()
			s.draw()
		}
	}
}

func clearScreen() {
	fmt.Print("\x1b[2J\x1b[H")
}

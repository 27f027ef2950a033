// Package sensor provides a scriptable board.SensorSource used by tests and
// the terminal harness in place of real hall-effect hardware.
package sensor

import (
	"unicode"

	"github.com/squarewave/chessrig/pkg/board"
)

type batchEntry struct {
	square board.Square
	color  *board.Color
}

// ScriptedSensor is a mock board.SensorSource driven by the BoardScript
// mini-language: bare squares toggle with inferred color, W/B-prefixed
// squares toggle with an explicit color, whitespace separates tokens within
// a batch, and '.' closes a batch and queues it for the next tick.
type ScriptedSensor struct {
	positions      board.ColorOccupancy
	pendingBatches [][]batchEntry
}

// New creates a ScriptedSensor seeded with the standard starting position.
func New() *ScriptedSensor {
	s, err := FromBitboards(board.Rank1|board.Rank2, board.Rank7|board.Rank8)
	if err != nil {
		// The starting position never overlaps; this can only fail if the
		// rank masks above are wrong, which would be a programming error.
		panic(err)
	}
	return s
}

// FromBitboards creates a ScriptedSensor from explicit per-color bitboards.
func FromBitboards(white, black board.Bitboard) (*ScriptedSensor, error) {
	if err := checkOverlap(white, black); err != nil {
		return nil, err
	}
	return &ScriptedSensor{positions: board.ColorOccupancy{White: white, Black: black}}, nil
}

// ReadPositions returns the sensor's current per-color occupancy.
func (s *ScriptedSensor) ReadPositions() board.ColorOccupancy {
	return s.positions
}

// LoadBitboards replaces the sensor's occupancy directly, discarding any
// queued script batches.
func (s *ScriptedSensor) LoadBitboards(white, black board.Bitboard) error {
	if err := checkOverlap(white, black); err != nil {
		return err
	}
	s.positions = board.ColorOccupancy{White: white, Black: black}
	s.pendingBatches = nil
	return nil
}

// PushScript parses script and queues its batches for execution. On a parse
// error, no batches are queued — previously queued batches are unaffected.
func (s *ScriptedSensor) PushScript(script string) error {
	batches, err := parseScript(script)
	if err != nil {
		return err
	}
	s.pendingBatches = append(s.pendingBatches, batches...)
	return nil
}

// Tick executes the next pending batch and returns the resulting occupancy.
// ok is false if no batch was pending.
func (s *ScriptedSensor) Tick() (occ board.ColorOccupancy, ok bool, err error) {
	if len(s.pendingBatches) == 0 {
		return board.ColorOccupancy{}, false, nil
	}
	batch := s.pendingBatches[0]
	s.pendingBatches = s.pendingBatches[1:]
	for _, entry := range batch {
		if err := s.toggleSquare(entry.square, entry.color); err != nil {
			return board.ColorOccupancy{}, false, err
		}
	}
	return s.positions, true, nil
}

// Drain executes every pending batch in order, calling onTick after each.
func (s *ScriptedSensor) Drain(onTick func(board.ColorOccupancy)) error {
	for {
		occ, ok, err := s.Tick()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		onTick(occ)
	}
}

// Read implements board.SensorSource: it executes the next pending script
// batch, if any, and returns the resulting occupancy; with nothing queued
// it returns the current occupancy unchanged, matching spec's requirement
// that the engine tolerate arbitrarily long gaps between snapshots.
func (s *ScriptedSensor) Read() (board.ColorOccupancy, error) {
	occ, ticked, err := s.Tick()
	if err != nil {
		return board.ColorOccupancy{}, err
	}
	if !ticked {
		return s.positions, nil
	}
	return occ, nil
}

// toggleSquare flips sq in whichever color bitboard currently contains it;
// if sq is empty, color must be supplied.
func (s *ScriptedSensor) toggleSquare(sq board.Square, color *board.Color) error {
	var c board.Color
	switch {
	case s.positions.White.Contains(sq):
		c = board.White
	case s.positions.Black.Contains(sq):
		c = board.Black
	case color != nil:
		c = *color
	default:
		return &MissingColorError{Square: sq.String()}
	}
	if c == board.White {
		s.positions.White = s.positions.White.Toggle(sq)
	} else {
		s.positions.Black = s.positions.Black.Toggle(sq)
	}
	return nil
}

func checkOverlap(white, black board.Bitboard) error {
	overlap := white.Intersect(black)
	if overlap.IsEmpty() {
		return nil
	}
	squares := make([]string, 0, overlap.Count())
	overlap.ForEach(func(sq board.Square) { squares = append(squares, sq.String()) })
	return &OverlappingSquaresError{Squares: squares}
}

// parseScript tokenizes a BoardScript string into batches of square/color
// toggles, one batch per '.'-terminated segment. Tokens after the last '.'
// form one more batch.
func parseScript(script string) ([][]batchEntry, error) {
	batches := [][]batchEntry{{}}
	var token []rune

	flush := func() error {
		if len(token) == 0 {
			return nil
		}
		entry, err := parseToken(string(token))
		if err != nil {
			return err
		}
		last := len(batches) - 1
		batches[last] = append(batches[last], entry)
		token = token[:0]
		return nil
	}

	for _, ch := range script {
		switch {
		case ch == '.':
			if err := flush(); err != nil {
				return nil, err
			}
			batches = append(batches, []batchEntry{})
		case unicode.IsSpace(ch):
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			token = append(token, ch)
			expectedLen := 2
			if token[0] == 'W' || token[0] == 'B' {
				expectedLen = 3
			}
			if len(token) == expectedLen {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	nonEmpty := batches[:0]
	for _, b := range batches {
		if len(b) > 0 {
			nonEmpty = append(nonEmpty, b)
		}
	}
	return nonEmpty, nil
}

// parseToken parses one BoardScript token ("e2", "We4", "Be5") into a
// batchEntry.
func parseToken(token string) (batchEntry, error) {
	var color *board.Color
	squareStr := token
	switch token[0] {
	case 'W':
		c := board.White
		color = &c
		squareStr = token[1:]
	case 'B':
		c := board.Black
		color = &c
		squareStr = token[1:]
	}
	sq, err := board.ParseSquare(squareStr)
	if err != nil {
		return batchEntry{}, &InvalidSquareError{Token: token}
	}
	return batchEntry{square: sq, color: color}, nil
}

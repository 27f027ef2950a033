package main

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/squarewave/chessrig/pkg/board"
	"github.com/squarewave/chessrig/pkg/display"
	"github.com/squarewave/chessrig/pkg/feedback"
)

// draw renders both boards side by side: raw sensors on the left, the
// engine's interpreted state (with feedback highlights) on the right.
func (s *session) draw() {
	occ := s.sen.ReadPositions()
	sensorBB := occ.Occupied()
	fb := feedback.Compute(s.lastState)

	fmt.Println("chessrig terminal harness")
	fmt.Println()
	fmt.Println("Commands: <script> | load <fen> | r (reset) | p (refresh) | q (quit)")
	fmt.Println("Script format: e2 We4. (toggle squares, W/B prefix to place on an empty square, '.' to tick)")
	fmt.Println()

	s.drawSetupDiff(sensorBB)

	fmt.Println("+-----------------------------+-----------------------------+")
	fmt.Println("|       Raw Sensors           |       Game State            |")
	fmt.Println("+---+-------------------------+---+-------------------------+")

	for rank := 7; rank >= 0; rank-- {
		fmt.Printf("| %d |", rank+1)
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(file, rank)
			if sensorBB.Contains(sq) {
				fmt.Print(" # ")
			} else {
				fmt.Print(" . ")
			}
		}
		fmt.Print(" |")

		fmt.Printf(" %d |", rank+1)
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(file, rank)
			fmt.Print(s.gameStateSymbol(sq, sensorBB, fb))
		}
		fmt.Println(" |")
	}

	fmt.Println("+---+-------------------------+---+-------------------------+")
	fmt.Println("|   | a  b  c  d  e  f  g  h  |   | a  b  c  d  e  f  g  h  |")
	fmt.Println("+---+-------------------------+---+-------------------------+")

	fmt.Printf("Sensor: %#018x | Pieces: %d\n", uint64(sensorBB), sensorBB.Count())

	if sq, ok := s.lastState.LiftedPiece(); ok {
		fmt.Printf("\nLifted: %s\n", sq)
	}
	if sq, ok := s.lastState.CapturedPiece(); ok {
		fmt.Printf("\nCaptured: %s\n", sq)
	}
}

// drawSetupDiff prints a one-line diff between the raw sensor reading and
// the engine's expected position, borrowing the old GamePhase::Setup idea as
// a pure display convenience for seating pieces before play. It only ever
// prints before the first legal move has been committed; once a move has
// gone through, the dual board itself is the diff.
func (s *session) drawSetupDiff(sensorBB board.Bitboard) {
	if s.eng.HasCommitted() {
		return
	}
	mismatch := sensorBB.SymmetricDifference(s.eng.ExpectedOccupancy())
	if mismatch.IsEmpty() {
		return
	}
	squares := mismatch.Squares()
	names := make([]string, len(squares))
	for i, sq := range squares {
		names[i] = sq.String()
	}
	fmt.Printf("Setup: sensors differ from expected at %s\n\n", strings.Join(names, ", "))
}

func (s *session) gameStateSymbol(sq board.Square, sensorBB board.Bitboard, fb feedback.FeedbackMap) string {
	hasSensor := sensorBB.Contains(sq)
	tag, hasTag := fb.Get(sq)

	var symbol string
	if piece, ok := s.eng.PieceAt(sq); ok {
		if hasSensor {
			symbol = pieceSymbol(piece)
		} else {
			symbol = "o" // expected piece missing from the physical board
		}
	} else if hasSensor {
		symbol = "!" // unexpected piece present on the physical board
	} else {
		symbol = "."
	}

	return display.Colorize(symbol, tag, hasTag)
}

func pieceSymbol(p chess.Piece) string {
	var letter string
	switch p.Type() {
	case chess.Pawn:
		letter = "p"
	case chess.Knight:
		letter = "n"
	case chess.Bishop:
		letter = "b"
	case chess.Rook:
		letter = "r"
	case chess.Queen:
		letter = "q"
	case chess.King:
		letter = "k"
	default:
		letter = "?"
	}
	if p.Color() == chess.White {
		return strings.ToUpper(letter)
	}
	return letter
}

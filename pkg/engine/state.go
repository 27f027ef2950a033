package engine

import (
	"github.com/notnil/chess"

	"github.com/squarewave/chessrig/pkg/board"
	"github.com/squarewave/chessrig/pkg/feedback"
)

// GameState is the snapshot produced by every Tick: the legal moves in the
// committed position plus the transient lifted/captured/check information
// the feedback computer needs. It implements feedback.FeedbackSource.
type GameState struct {
	legalMoves []*chess.Move
	lifted     *board.Square
	captured   *board.Square
	kingSquare board.Square
	checkers   board.Bitboard
}

// LegalMoves returns the legal moves in the committed position.
func (s *GameState) LegalMoves() []*chess.Move {
	return s.legalMoves
}

// LiftedPiece returns the single own-color square whose piece is currently
// off the board, if exactly one such square exists.
func (s *GameState) LiftedPiece() (board.Square, bool) {
	if s.lifted == nil {
		return board.NoSquare, false
	}
	return *s.lifted, true
}

// CapturedPiece returns the single opponent-color square whose piece is
// currently off the board, if exactly one such square exists.
func (s *GameState) CapturedPiece() (board.Square, bool) {
	if s.captured == nil {
		return board.NoSquare, false
	}
	return *s.captured, true
}

// CheckInfo returns the king-in-check square and attacking squares, if the
// side to move is currently in check.
func (s *GameState) CheckInfo() (feedback.CheckInfo, bool) {
	if s.checkers.IsEmpty() {
		return feedback.CheckInfo{}, false
	}
	return feedback.CheckInfo{KingSquare: s.kingSquare, Checkers: s.checkers}, true
}

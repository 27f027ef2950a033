// Package feedback computes the per-square visual guidance that drives the
// light strip from the engine's game state.
package feedback

import (
	"github.com/notnil/chess"

	"github.com/squarewave/chessrig/pkg/board"
)

// SquareFeedback is the closed set of visual cues a square can carry.
type SquareFeedback int

const (
	// Destination marks a square where placing a piece completes a legal move.
	Destination SquareFeedback = iota
	// Capture marks a legal destination that captures an opponent piece.
	Capture
	// Origin marks a square whose piece is (or should be) lifted.
	Origin
	// Check marks the square of a king currently in check.
	Check
	// Checker marks the square of a piece currently giving check.
	Checker
)

// CheckInfo carries the king-in-check square and the squares of the pieces
// giving check, when the position to move is in check.
type CheckInfo struct {
	KingSquare board.Square
	Checkers   board.Bitboard
}

// FeedbackSource is everything the feedback computer needs from the engine's
// game state. GameState (pkg/engine) implements this interface.
type FeedbackSource interface {
	LegalMoves() []*chess.Move
	LiftedPiece() (board.Square, bool)
	CapturedPiece() (board.Square, bool)
	CheckInfo() (CheckInfo, bool)
}

// FeedbackMap is a total function from square to optional feedback tag,
// represented as a fixed 64-slot array for O(1) reads and value equality.
type FeedbackMap [64]*SquareFeedback

// Get returns the feedback tag for sq, if any.
func (m FeedbackMap) Get(sq board.Square) (SquareFeedback, bool) {
	if tag := m[sq]; tag != nil {
		return *tag, true
	}
	return 0, false
}

// IsEmpty reports whether no square carries feedback.
func (m FeedbackMap) IsEmpty() bool {
	for _, tag := range m {
		if tag != nil {
			return false
		}
	}
	return true
}

// Equal reports whether m and other carry the same tag at every square.
func (m FeedbackMap) Equal(other FeedbackMap) bool {
	for sq := 0; sq < 64; sq++ {
		a, aok := m.Get(board.Square(sq))
		b, bok := other.Get(board.Square(sq))
		if aok != bok || (aok && a != b) {
			return false
		}
	}
	return true
}

func (m *FeedbackMap) mark(sq board.Square, tag SquareFeedback) {
	t := tag
	m[sq] = &t
}

// DisplaySink is the external collaborator that renders a FeedbackMap onto
// the physical light strip (or, in this repository's harness, a terminal).
type DisplaySink interface {
	Render(FeedbackMap) error
}

// Compute implements the four-row feedback table: what to highlight given
// the current lifted/captured transient state, plus check/checker
// highlighting when the player is idle.
func Compute(source FeedbackSource) FeedbackMap {
	var m FeedbackMap

	captured, hasCaptured := source.CapturedPiece()
	lifted, hasLifted := source.LiftedPiece()

	switch {
	case !hasCaptured && !hasLifted:
		if info, inCheck := source.CheckInfo(); inCheck {
			m.mark(info.KingSquare, Check)
			info.Checkers.ForEach(func(sq board.Square) {
				m.mark(sq, Checker)
			})
		}
	case !hasCaptured && hasLifted:
		showDestinationsFor(&m, source.LegalMoves(), lifted)
	case hasCaptured && !hasLifted:
		showCaptureOptions(&m, source.LegalMoves(), captured)
	default:
		showCaptureCompletion(&m, source.LegalMoves(), lifted, captured)
	}

	return m
}

func showDestinationsFor(m *FeedbackMap, legalMoves []*chess.Move, from board.Square) {
	m.mark(from, Origin)
	for _, mv := range legalMoves {
		if board.Square(mv.S1()) != from {
			continue
		}
		m.mark(board.Square(mv.S2()), classifyMove(mv))
	}
}

func showCaptureOptions(m *FeedbackMap, legalMoves []*chess.Move, capturedSq board.Square) {
	for _, mv := range legalMoves {
		if !capturesSquare(mv, capturedSq) {
			continue
		}
		m.mark(board.Square(mv.S2()), Destination)
		m.mark(board.Square(mv.S1()), Origin)
	}
}

func showCaptureCompletion(m *FeedbackMap, legalMoves []*chess.Move, from, capturedSq board.Square) {
	m.mark(from, Origin)
	for _, mv := range legalMoves {
		if board.Square(mv.S1()) != from {
			continue
		}
		if !capturesSquare(mv, capturedSq) {
			continue
		}
		m.mark(board.Square(mv.S2()), Destination)
	}
}

func classifyMove(mv *chess.Move) SquareFeedback {
	if mv.HasTag(chess.Capture) || mv.HasTag(chess.EnPassant) {
		return Capture
	}
	return Destination
}

// capturesSquare reports whether mv removes the opponent piece standing on
// capturedSq. For a normal capture that is the destination square; for en
// passant it is the square behind the destination, same file as the
// destination and same rank as the origin.
func capturesSquare(mv *chess.Move, capturedSq board.Square) bool {
	if mv.HasTag(chess.EnPassant) {
		from, to := board.Square(mv.S1()), board.Square(mv.S2())
		epCaptureSq := board.NewSquare(to.File(), from.Rank())
		return epCaptureSq == capturedSq
	}
	if mv.HasTag(chess.Capture) {
		return board.Square(mv.S2()) == capturedSq
	}
	return false
}

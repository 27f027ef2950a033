// Package engine implements the move-disambiguation core: it reconciles a
// stream of physical sensor snapshots against a chess position's legal
// moves, committing at most one legal move per tick.
package engine

import (
	"github.com/notnil/chess"

	"github.com/squarewave/chessrig/pkg/board"
)

// Engine is the authoritative chess position plus the last occupancy
// snapshot it reconciled against. It holds no pointer graph: position is a
// value handle owned exclusively by the engine, and lastOccupancy is a
// plain 64-bit value.
type Engine struct {
	position      *chess.Position
	lastOccupancy board.Bitboard
	committed     bool
}

// New constructs an Engine from the standard starting position.
func New() *Engine {
	return FromPosition(chess.NewGame().Position())
}

// FromPosition constructs an Engine from an existing chess position. The
// last occupancy is seeded from the position's own occupied squares, so the
// first Tick with an unchanged snapshot is a no-op per the no-change
// short-circuit.
func FromPosition(pos *chess.Position) *Engine {
	return &Engine{
		position:      pos,
		lastOccupancy: occupancyOf(pos).Occupied(),
	}
}

// PieceAt reads through to the current committed position.
func (e *Engine) PieceAt(sq board.Square) (chess.Piece, bool) {
	p := e.position.Board().Piece(chess.Square(sq))
	if p == chess.NoPiece {
		return chess.NoPiece, false
	}
	return p, true
}

// HasCommitted reports whether processMoves has ever committed a legal move
// since this Engine was constructed. The terminal harness uses this to gate
// its pre-game "sensors vs. expected" setup diff, the old GamePhase::Setup
// idea reduced to a pure display convenience.
func (e *Engine) HasCommitted() bool {
	return e.committed
}

// ExpectedOccupancy returns the combined occupancy of the current committed
// position, for callers comparing it against a raw sensor reading.
func (e *Engine) ExpectedOccupancy() board.Bitboard {
	return occupancyOf(e.position).Occupied()
}

// Tick reconciles currentOccupancy against the engine's position. It may
// commit exactly one legal move, then always returns a GameState
// describing the (possibly just-committed) position and the transient
// lifted/captured/check information derived from currentOccupancy.
func (e *Engine) Tick(current board.ColorOccupancy) *GameState {
	currentBB := current.Occupied()
	e.processMoves(currentBB)

	own, opp := ownOppOccupancy(e.position)
	liftedBB := own.Without(currentBB)
	capturedBB := opp.Without(currentBB)

	kingSq, checkers := checkersOf(e.position)

	gs := &GameState{
		legalMoves: e.position.ValidMoves(),
		kingSquare: kingSq,
		checkers:   checkers,
	}
	if liftedBB.Single() {
		sq := liftedBB.First()
		gs.lifted = &sq
	}
	if capturedBB.Single() {
		sq := capturedBB.First()
		gs.captured = &sq
	}
	return gs
}

// processMoves implements the move-matching algorithm: no-change
// short-circuit, delta computation, the trigger gate, and candidate
// selection via promotion filter, capture-placement pre-filter, and
// occupancy-match commit.
func (e *Engine) processMoves(currentBB board.Bitboard) {
	if currentBB == e.lastOccupancy {
		return
	}

	placed := currentBB.Without(e.lastOccupancy)
	expected := occupancyOf(e.position).Occupied()
	lifted := expected.Without(currentBB)

	e.lastOccupancy = currentBB

	if placed.IsEmpty() && lifted.Count() != 2 {
		return
	}

	for _, mv := range e.position.ValidMoves() {
		promo := mv.Promo()
		if promo != chess.NoPieceType && promo != chess.Queen {
			continue
		}

		if mv.HasTag(chess.Capture) && !mv.HasTag(chess.EnPassant) {
			if board.Square(mv.S2()) != placed.First() {
				continue
			}
		}

		after := e.position.Update(mv)
		if occupancyOf(after).Occupied() == currentBB {
			e.position = after
			e.committed = true
			break
		}
	}
}

// ownOppOccupancy splits a position's occupancy into the side-to-move's own
// pieces and the opponent's.
func ownOppOccupancy(pos *chess.Position) (own, opp board.Bitboard) {
	occ := occupancyOf(pos)
	if pos.Turn() == chess.White {
		return occ.White, occ.Black
	}
	return occ.Black, occ.White
}

package engine

import (
	"github.com/notnil/chess"

	"github.com/squarewave/chessrig/pkg/board"
)

// Occupancy returns the per-color occupancy of pos. Exported for callers
// (the terminal harness) that need to seed a sensor from a loaded position.
func Occupancy(pos *chess.Position) board.ColorOccupancy {
	return occupancyOf(pos)
}

func toBoardColor(c chess.Color) board.Color {
	if c == chess.White {
		return board.White
	}
	return board.Black
}

func otherColor(c chess.Color) chess.Color {
	if c == chess.White {
		return chess.Black
	}
	return chess.White
}

// occupancyOf builds the per-color ColorOccupancy of a chess position by
// scanning every square, the same way intothevoid-nayan's pkg/chess builds
// its occupancy grids.
func occupancyOf(pos *chess.Position) board.ColorOccupancy {
	var white, black board.Bitboard
	b := pos.Board()
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := b.Piece(sq)
		if p == chess.NoPiece {
			continue
		}
		bsq := board.Square(sq)
		if p.Color() == chess.White {
			white = white.Set(bsq)
		} else {
			black = black.Set(bsq)
		}
	}
	return board.ColorOccupancy{White: white, Black: black}
}

// attackerBitboardsOf buckets every piece of the given color by type, for
// use with board.Attackers.
func attackerBitboardsOf(pos *chess.Position, color chess.Color) board.AttackerBitboards {
	var a board.AttackerBitboards
	b := pos.Board()
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := b.Piece(sq)
		if p == chess.NoPiece || p.Color() != color {
			continue
		}
		bsq := board.Square(sq)
		switch p.Type() {
		case chess.Pawn:
			a.Pawns = a.Pawns.Set(bsq)
		case chess.Knight:
			a.Knights = a.Knights.Set(bsq)
		case chess.Bishop:
			a.Bishops = a.Bishops.Set(bsq)
		case chess.Rook:
			a.Rooks = a.Rooks.Set(bsq)
		case chess.Queen:
			a.Queens = a.Queens.Set(bsq)
		case chess.King:
			a.Kings = a.Kings.Set(bsq)
		}
	}
	return a
}

// kingSquareOf returns the square of color's king, following the same
// board-scan idiom intothevoid-nayan's CheckedKingSquare uses.
func kingSquareOf(pos *chess.Position, color chess.Color) (board.Square, bool) {
	kingPiece := chess.WhiteKing
	if color == chess.Black {
		kingPiece = chess.BlackKing
	}
	b := pos.Board()
	for sq := chess.A1; sq <= chess.H8; sq++ {
		if b.Piece(sq) == kingPiece {
			return board.Square(sq), true
		}
	}
	return board.NoSquare, false
}

// checkersOf returns the king square of the side to move and the bitboard
// of enemy pieces currently attacking it (empty if not in check).
func checkersOf(pos *chess.Position) (kingSq board.Square, checkers board.Bitboard) {
	turn := pos.Turn()
	kingSq, ok := kingSquareOf(pos, turn)
	if !ok {
		return board.NoSquare, board.Empty
	}
	occupied := occupancyOf(pos).Occupied()
	enemy := otherColor(turn)
	attackers := attackerBitboardsOf(pos, enemy)
	checkers = board.Attackers(kingSq, occupied, attackers, toBoardColor(enemy))
	return kingSq, checkers
}

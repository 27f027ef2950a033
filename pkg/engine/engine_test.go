package engine

import (
	"testing"
	"unicode"

	"github.com/notnil/chess"

	"github.com/squarewave/chessrig/pkg/board"
)

func fromFEN(t *testing.T, fen string) *Engine {
	t.Helper()
	fenFunc, err := chess.FEN(fen)
	if err != nil {
		t.Fatalf("invalid FEN %q: %v", fen, err)
	}
	game := chess.NewGame(fenFunc)
	return FromPosition(game.Position())
}

// executeScript drives eng through a bare-square toggle choreography: tokens
// are 2-character squares, whitespace separates tokens within a tick, and
// '.' closes a tick. This is deliberately simpler than the full BoardScript
// mini-language in pkg/sensor (no color prefixes): Engine.Tick only ever
// consumes the combined occupancy, so a single running bitboard is enough
// to drive it, with no need to infer which color a toggle belongs to.
func executeScript(t *testing.T, eng *Engine, script string) {
	t.Helper()
	bb := eng.lastOccupancy
	var token []rune
	flush := func() {
		if len(token) == 0 {
			return
		}
		sq, err := board.ParseSquare(string(token))
		if err != nil {
			t.Fatalf("invalid test square %q in script %q: %v", string(token), script, err)
		}
		bb = bb.Toggle(sq)
		token = token[:0]
	}
	for _, ch := range script {
		switch {
		case ch == '.':
			flush()
			eng.Tick(board.ColorOccupancy{White: bb})
		case unicode.IsSpace(ch):
			flush()
		default:
			token = append(token, ch)
			if len(token) == 2 {
				flush()
			}
		}
	}
	flush()
}

func assertPiece(t *testing.T, eng *Engine, square string, pieceType chess.PieceType, color chess.Color) {
	t.Helper()
	sq, err := board.ParseSquare(square)
	if err != nil {
		t.Fatalf("bad test square %q: %v", square, err)
	}
	p, ok := eng.PieceAt(sq)
	if !ok {
		t.Fatalf("expected %v %v at %s, found empty", color, pieceType, square)
	}
	if p.Type() != pieceType || p.Color() != color {
		t.Fatalf("expected %v %v at %s, found %v", color, pieceType, square, p)
	}
}

func assertEmpty(t *testing.T, eng *Engine, square string) {
	t.Helper()
	sq, err := board.ParseSquare(square)
	if err != nil {
		t.Fatalf("bad test square %q: %v", square, err)
	}
	if p, ok := eng.PieceAt(sq); ok {
		t.Fatalf("expected empty at %s, found %v", square, p)
	}
}

func TestSimpleMove(t *testing.T) {
	cases := []struct {
		name   string
		script string
	}{
		{"one tick", "e2e3. "},
		{"two tick", "e2.  e3."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			eng := New()
			executeScript(t, eng, c.script)
			assertEmpty(t, eng, "e2")
			assertPiece(t, eng, "e3", chess.Pawn, chess.White)
		})
	}
}

func TestKnightMove(t *testing.T) {
	eng := New()
	executeScript(t, eng, "g1.  f3.")
	assertEmpty(t, eng, "g1")
	assertPiece(t, eng, "f3", chess.Knight, chess.White)
}

func TestIllegalMoveIgnored(t *testing.T) {
	eng := New()
	executeScript(t, eng, "e2.  e5.")
	assertPiece(t, eng, "e2", chess.Pawn, chess.White)
	assertEmpty(t, eng, "e5")
}

func TestGameSequence(t *testing.T) {
	eng := New()
	executeScript(t, eng, "e2e4. e7e5. g1f3. b8c6.")
	assertPiece(t, eng, "e4", chess.Pawn, chess.White)
	assertPiece(t, eng, "e5", chess.Pawn, chess.Black)
	assertPiece(t, eng, "f3", chess.Knight, chess.White)
	assertPiece(t, eng, "c6", chess.Knight, chess.Black)
}

const slidersFEN = "rnbqkbnr/1pp1pppp/8/p2p4/P2P4/8/1PP1PPPP/RNBQKBNR w KQkq a6 0 1"

func TestBishopMove(t *testing.T) {
	eng := fromFEN(t, slidersFEN)
	executeScript(t, eng, "c1. g5.")
	assertPiece(t, eng, "g5", chess.Bishop, chess.White)
	assertEmpty(t, eng, "c1")
}

func TestRookMove(t *testing.T) {
	eng := fromFEN(t, slidersFEN)
	executeScript(t, eng, "a1. a3.")
	assertPiece(t, eng, "a3", chess.Rook, chess.White)
	assertEmpty(t, eng, "a1")
}

func TestKingMove(t *testing.T) {
	eng := fromFEN(t, slidersFEN)
	executeScript(t, eng, "e1.  d2.")
	assertPiece(t, eng, "d2", chess.King, chess.White)
	assertEmpty(t, eng, "e1")
}

func TestQueenOrthogonalMove(t *testing.T) {
	eng := fromFEN(t, slidersFEN)
	executeScript(t, eng, "d1. d3.")
	assertPiece(t, eng, "d3", chess.Queen, chess.White)
	assertEmpty(t, eng, "d1")
}

func TestQueenDiagonalMove(t *testing.T) {
	eng := fromFEN(t, "rnbqkbnr/ppp1pppp/8/3p4/2P5/8/PP1PPPPP/RNBQKBNR w KQkq d6 0 1")
	executeScript(t, eng, "d1. a4.")
	assertPiece(t, eng, "a4", chess.Queen, chess.White)
	assertEmpty(t, eng, "d1")
}

func TestCapture(t *testing.T) {
	cases := []struct {
		name   string
		script string
	}{
		{"slow", "d5. e4.  d5."},
		{"quick take", "d5 e4.  d5."},
		{"quick move", "d5.  e4 d5."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			eng := fromFEN(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 1")
			executeScript(t, eng, c.script)
			assertPiece(t, eng, "d5", chess.Pawn, chess.White)
		})
	}
}

func TestPawnLift(t *testing.T) {
	eng := fromFEN(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 1")
	executeScript(t, eng, "e4.")
	assertPiece(t, eng, "d5", chess.Pawn, chess.Black)
	assertPiece(t, eng, "e4", chess.Pawn, chess.White)
}

func TestEnPassant(t *testing.T) {
	cases := []struct {
		name   string
		script string
	}{
		{"capture first", "e5. d5.  d6."},
		{"capture last", "e5.  d6.  d5."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			eng := fromFEN(t, "rnbqkbnr/1pp1pppp/p7/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 1")
			executeScript(t, eng, c.script)
			assertEmpty(t, eng, "e5")
			assertPiece(t, eng, "d6", chess.Pawn, chess.White)
			assertEmpty(t, eng, "d5")
		})
	}
}

func TestRegularPawnMoveWithEnPassantAvailable(t *testing.T) {
	cases := []struct {
		name   string
		script string
	}{
		{"correction", "e5d6.  d6.  e6.  "},
		{"direct", "e5e6."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			eng := fromFEN(t, "rnbqkbnr/1pp1pppp/p7/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 1")
			executeScript(t, eng, c.script)
			assertPiece(t, eng, "e6", chess.Pawn, chess.White)
			assertPiece(t, eng, "d5", chess.Pawn, chess.Black)
			assertEmpty(t, eng, "e5")
		})
	}
}

const kingSideCastleFEN = "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 0 1"

func TestCastleKingSide(t *testing.T) {
	cases := []struct {
		name   string
		script string
	}{
		{"king first, slow", "e1.  g1.  h1.  f1."},
		{"king first, quick", "e1g1. h1f1."},
		{"rook first, slow", "e1. h1. f1.  g1."},
		{"rook first, quick", "e1.  h1f1. g1."},
		{"two handed", "e1h1. f1g1."},
		{"rook slide", "e1.  h1g1.  g1f1.  g1. "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			eng := fromFEN(t, kingSideCastleFEN)
			executeScript(t, eng, c.script)
			assertPiece(t, eng, "g1", chess.King, chess.White)
			assertPiece(t, eng, "f1", chess.Rook, chess.White)
			assertEmpty(t, eng, "e1")
			assertEmpty(t, eng, "h1")
		})
	}
}

const queenSideCastleFEN = "r1bqkbnr/ppp3pp/2n1pp2/3p4/3P1B2/2NQ4/PPP1PPPP/R3KBNR w KQkq - 0 1"

func TestCastleQueenSide(t *testing.T) {
	cases := []struct {
		name   string
		script string
	}{
		{"king first, slow", "e1.  c1. a1. d1."},
		{"king first, quick", "e1c1.  a1d1."},
		{"rook first, slow", "e1. a1. d1. c1. "},
		{"quick", "e1. a1d1. c1."},
		{"two handed", "e1a1. c1d1."},
		{"rook slide", "e1. a1b1. b1c1. c1d1.  c1. "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			eng := fromFEN(t, queenSideCastleFEN)
			executeScript(t, eng, c.script)
			assertPiece(t, eng, "c1", chess.King, chess.White)
			assertPiece(t, eng, "d1", chess.Rook, chess.White)
			assertEmpty(t, eng, "e1")
			assertEmpty(t, eng, "a1")
		})
	}
}

const promotionFEN = "r1bqkbnr/pPpppppp/2n5/8/8/8/PP1PPPPP/RNBQKBNR w KQkq - 0 1"

func TestPromotion(t *testing.T) {
	eng := fromFEN(t, promotionFEN)
	executeScript(t, eng, "b7b8.")
	assertPiece(t, eng, "b8", chess.Queen, chess.White)
	assertEmpty(t, eng, "b7")
}

func TestPromotionCapture(t *testing.T) {
	eng := fromFEN(t, promotionFEN)
	executeScript(t, eng, "a8b7.  a8.")
	assertPiece(t, eng, "a8", chess.Queen, chess.White)
	assertEmpty(t, eng, "b7")
}

func TestTickReturnsValidState(t *testing.T) {
	eng := New()
	bb := eng.lastOccupancy

	state := eng.Tick(board.ColorOccupancy{White: bb})

	if len(state.LegalMoves()) != 20 {
		t.Errorf("legal move count = %d, want 20", len(state.LegalMoves()))
	}
	if _, ok := state.LiftedPiece(); ok {
		t.Error("expected no lifted piece on an unchanged snapshot")
	}
}

func TestTickDetectsSingleLiftedPiece(t *testing.T) {
	eng := New()
	bb := eng.lastOccupancy.Toggle(board.E2)

	state := eng.Tick(board.ColorOccupancy{White: bb})

	sq, ok := state.LiftedPiece()
	if !ok || sq != board.E2 {
		t.Errorf("LiftedPiece() = (%v, %v), want (E2, true)", sq, ok)
	}
}

func TestTickNoLiftedPieceWhenMultipleMissing(t *testing.T) {
	eng := New()
	bb := eng.lastOccupancy.Toggle(board.E2).Toggle(board.D2)

	state := eng.Tick(board.ColorOccupancy{White: bb})

	if _, ok := state.LiftedPiece(); ok {
		t.Error("expected no single lifted piece when two squares are missing")
	}
}

func TestCapturesCorrect(t *testing.T) {
	eng := fromFEN(t, "Q2qkbnr/p1pppppp/b1n5/8/8/8/PP1PPPPP/RNBQKBNR w KQk - 0 1")
	executeScript(t, eng, "a8. d8. d8.")
	assertPiece(t, eng, "c6", chess.Knight, chess.Black)
	assertPiece(t, eng, "d8", chess.Queen, chess.White)
	assertEmpty(t, eng, "a8")
}

// TestNoChangeIsNoOp covers spec.md P3: a snapshot identical to the last
// tick's occupancy leaves the position untouched.
func TestNoChangeIsNoOp(t *testing.T) {
	eng := New()
	before := eng.position.ValidMoves()
	eng.Tick(board.ColorOccupancy{White: eng.lastOccupancy})
	after := eng.position.ValidMoves()
	if len(before) != len(after) {
		t.Fatalf("no-change tick altered legal move count: %d -> %d", len(before), len(after))
	}
}

// TestRelift covers the ambiguity-rejection property: lifting a piece and
// replacing it on its origin produces no change in committed position.
func TestRelift(t *testing.T) {
	eng := New()
	executeScript(t, eng, "e2.  e2.")
	assertPiece(t, eng, "e2", chess.Pawn, chess.White)
}

// TestDoubleCheckFeedback covers scenario 6 from spec.md §8: a rook and a
// bishop both giving check is reported as two checkers.
func TestDoubleCheckFeedback(t *testing.T) {
	eng := fromFEN(t, "4k3/8/8/7B/8/8/8/4R2K b - - 0 1")
	state := eng.Tick(board.ColorOccupancy{White: eng.lastOccupancy})

	info, inCheck := state.CheckInfo()
	if !inCheck {
		t.Fatal("expected side to move to be in check")
	}
	if info.KingSquare != board.E8 {
		t.Errorf("king square = %v, want E8", info.KingSquare)
	}
	if info.Checkers.Count() != 2 {
		t.Errorf("checkers count = %d, want 2 (double check)", info.Checkers.Count())
	}
	if !info.Checkers.Contains(board.E1) || !info.Checkers.Contains(board.H5) {
		t.Errorf("checkers = %v, want E1 and H5", info.Checkers)
	}
}

package sensor

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors identifying the three ways a BoardScript can fail to
// parse or execute. Use errors.Is against these to classify a failure.
var (
	ErrInvalidSquare = errors.New("invalid square notation")
	ErrMissingColor  = errors.New("missing color for piece placement")
	ErrOverlap       = errors.New("square(s) occupied by both colors")
)

// InvalidSquareError reports a token that could not be parsed as a square.
type InvalidSquareError struct {
	Token string
}

func (e *InvalidSquareError) Error() string {
	return fmt.Sprintf("invalid square notation: %q", e.Token)
}

func (e *InvalidSquareError) Unwrap() error { return ErrInvalidSquare }

// MissingColorError reports a placement on an empty square with no color
// prefix.
type MissingColorError struct {
	Square string
}

func (e *MissingColorError) Error() string {
	return fmt.Sprintf("%s: missing color for piece placement", e.Square)
}

func (e *MissingColorError) Unwrap() error { return ErrMissingColor }

// OverlappingSquaresError reports squares claimed by both colors at once.
type OverlappingSquaresError struct {
	Squares []string
}

func (e *OverlappingSquaresError) Error() string {
	return fmt.Sprintf("square(s) occupied by both colors: %s", strings.Join(e.Squares, ", "))
}

func (e *OverlappingSquaresError) Unwrap() error { return ErrOverlap }

// Package display renders a feedback.FeedbackMap for a human at a terminal.
// Production boards render the same map onto a WS2812 light strip instead;
// this package is this repository's stand-in feedback.DisplaySink.
package display

import (
	"fmt"

	"github.com/squarewave/chessrig/pkg/board"
	"github.com/squarewave/chessrig/pkg/feedback"
)

const resetCode = "\x1b[0m"

// tagColor gives the ANSI background color used for each feedback tag.
var tagColor = map[feedback.SquareFeedback]string{
	feedback.Destination: "\x1b[44m", // blue: place here
	feedback.Capture:     "\x1b[41m", // red: capture here
	feedback.Origin:      "\x1b[42m", // green: piece origin
	feedback.Check:       "\x1b[45m", // magenta: king in check
	feedback.Checker:     "\x1b[43m", // yellow: piece giving check
}

// Colorize wraps symbol in the ANSI background color for tag. With no tag it
// returns symbol padded to the same width, uncolored.
func Colorize(symbol string, tag feedback.SquareFeedback, has bool) string {
	if !has {
		return fmt.Sprintf(" %s ", symbol)
	}
	return fmt.Sprintf("%s %s %s", tagColor[tag], symbol, resetCode)
}

// TagName returns a short human-readable name for tag, used in the legend.
func TagName(tag feedback.SquareFeedback) string {
	switch tag {
	case feedback.Destination:
		return "Destination"
	case feedback.Capture:
		return "Capture"
	case feedback.Origin:
		return "Origin"
	case feedback.Check:
		return "Check"
	case feedback.Checker:
		return "Checker"
	default:
		return "?"
	}
}

// TerminalSink is a feedback.DisplaySink that prints a plain legend of every
// highlighted square. The harness's dual-board view (cmd/boardctl) renders a
// richer picture by combining this package's Colorize helper with engine and
// sensor state that a DisplaySink alone does not have access to.
type TerminalSink struct{}

// Render implements feedback.DisplaySink.
func (TerminalSink) Render(m feedback.FeedbackMap) error {
	if m.IsEmpty() {
		fmt.Println("(no feedback)")
		return nil
	}
	for sq := 0; sq < 64; sq++ {
		tag, ok := m.Get(board.Square(sq))
		if !ok {
			continue
		}
		fmt.Printf("%s: %s\n", board.Square(sq), TagName(tag))
	}
	return nil
}

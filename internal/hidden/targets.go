package hidden

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/justinabrahms/hidetheking/internal/chess"
)

// Sides selects which colors hide a target.
type Sides string

const (
	Both      Sides = "both"
	WhiteOnly Sides = "white"
	BlackOnly Sides = "black"
	None      Sides = "none"
)

// ParseSides accepts the Sides names; the empty string means Both.
func ParseSides(s string) (Sides, error) {
	switch Sides(s) {
	case "", Both:
		return Both, nil
	case WhiteOnly, BlackOnly, None:
		return Sides(s), nil
	}
	return "", fmt.Errorf("unknown hidden sides %q", s)
}

func (s Sides) armed(c chess.Color) bool {
	switch s {
	case Both:
		return true
	case WhiteOnly:
		return c == chess.White
	case BlackOnly:
		return c == chess.Black
	}
	return false
}

// Targets holds the independent targets of both colors and routes captures
// to the one owning the captured piece.
type Targets struct {
	byColor [2]*Target
}

// NewRNG returns a seeded generator when seed is set and a time-seeded one
// otherwise.
func NewRNG(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Arm initializes the targets of the selected sides, White first.
func Arm(pieces []*chess.Piece, sides Sides, rng *rand.Rand) (*Targets, error) {
	ts := &Targets{}
	for _, c := range []chess.Color{chess.White, chess.Black} {
		t := NewTarget(c)
		if sides.armed(c) {
			if err := t.Initialize(pieces, rng); err != nil {
				return nil, err
			}
		}
		ts.byColor[c] = t
	}
	return ts, nil
}

// ReportCapture routes a capture to the captured piece's own color.
func (ts *Targets) ReportCapture(captured *chess.Piece, capturing chess.Color) (Resolution, bool) {
	if captured == nil || captured.Color == capturing {
		return Resolution{}, false
	}
	return ts.byColor[captured.Color].ReportCapture(captured, capturing)
}

func (ts *Targets) Target(c chess.Color) *Target {
	return ts.byColor[c]
}

// Snapshot returns the author-facing view of c's target.
func (ts *Targets) Snapshot(c chess.Color) Snapshot {
	return ts.byColor[c].Snapshot()
}

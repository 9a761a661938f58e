// Package hidden implements the "Hide the King" win condition: each side
// secretly designates one of its non-pawn pieces, and capturing the
// opponent's secret piece ends the game.
package hidden

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/justinabrahms/hidetheking/internal/chess"
)

var (
	ErrNoEligiblePiece = errors.New("no eligible hidden target")
	ErrAlreadyArmed    = errors.New("hidden target already initialized")
)

type State uint8

const (
	Uninitialized State = iota
	Armed
	Resolved
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Resolved:
		return "resolved"
	}
	return "uninitialized"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Resolution is raised when a hidden target is captured.
type Resolution struct {
	Winner chess.Color   `json:"winner"`
	Target chess.PieceID `json:"target"`
	Square chess.Square  `json:"square"`
	Reason string        `json:"reason"`
}

// Target is the hidden-target state machine of one color.
type Target struct {
	color  chess.Color
	state  State
	piece  *chess.Piece
	result *Resolution
}

func NewTarget(c chess.Color) *Target {
	return &Target{color: c}
}

// Initialize picks one live non-pawn piece of the target's color uniformly at
// random. Candidates are considered in ID order so a seeded rng gives a
// reproducible choice.
func (t *Target) Initialize(pieces []*chess.Piece, rng *rand.Rand) error {
	if t.state != Uninitialized {
		return ErrAlreadyArmed
	}
	var pool []*chess.Piece
	for _, p := range pieces {
		if p.Live() && p.Color == t.color && p.Kind != chess.Pawn {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		return fmt.Errorf("%s: %w", t.color, ErrNoEligiblePiece)
	}
	t.piece = pool[rng.Intn(len(pool))]
	t.state = Armed
	return nil
}

// ReportCapture resolves the target when captured is the armed piece. It
// returns false for any other piece, or when the target is not armed.
func (t *Target) ReportCapture(captured *chess.Piece, capturing chess.Color) (Resolution, bool) {
	if t.state != Armed || captured == nil || captured.ID != t.piece.ID {
		return Resolution{}, false
	}
	t.state = Resolved
	t.result = &Resolution{
		Winner: capturing,
		Target: captured.ID,
		Square: captured.Square,
		Reason: "hidden target captured",
	}
	return *t.result, true
}

// Is reports whether id is this side's hidden target.
func (t *Target) Is(id chess.PieceID) bool {
	return t.piece != nil && t.piece.ID == id
}

func (t *Target) Color() chess.Color { return t.color }
func (t *Target) State() State       { return t.state }

// Snapshot is the author-facing view of one side's hidden target.
type Snapshot struct {
	Color    chess.Color     `json:"color"`
	State    State           `json:"state"`
	PieceID  chess.PieceID   `json:"pieceId,omitempty"`
	Kind     chess.PieceKind `json:"kind,omitempty"`
	Square   chess.Square    `json:"square"`
	Captured bool            `json:"captured"`
}

func (t *Target) Snapshot() Snapshot {
	snap := Snapshot{Color: t.color, State: t.state, Square: chess.NoSquare}
	if t.piece != nil {
		snap.PieceID = t.piece.ID
		snap.Kind = t.piece.Kind
		snap.Square = t.piece.Square
		snap.Captured = t.piece.Captured
	}
	return snap
}

package chess

import (
	"fmt"
	"math/bits"
)

type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusDraw     GameStatus = "draw"
	StatusWhiteWon GameStatus = "white_won"
	StatusBlackWon GameStatus = "black_won"
)

// Method is the reason a game reached its terminal status.
type Method string

const (
	NoMethod             Method = ""
	Checkmate            Method = "checkmate"
	Stalemate            Method = "stalemate"
	FiftyMoveRule        Method = "fifty_move_rule"
	ThreefoldRepetition  Method = "threefold_repetition"
	InsufficientMaterial Method = "insufficient_material"
	HiddenTargetCaptured Method = "hidden_target_captured"
	Timeout              Method = "timeout"
	Resignation          Method = "resignation"
)

// WinStatus returns the terminal status that names c as the winner.
func WinStatus(c Color) GameStatus {
	if c == White {
		return StatusWhiteWon
	}
	return StatusBlackWon
}

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// ParseColor accepts "white"/"w" and "black"/"b".
func ParseColor(s string) (Color, error) {
	switch s {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("unknown color %q", s)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// pawnDirection is the rank delta of a forward pawn step.
func (c Color) pawnDirection() int {
	if c == White {
		return 1
	}
	return -1
}

func (c Color) homeRank() int {
	if c == White {
		return 0
	}
	return 7
}

type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (k PieceKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

func (k PieceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Symbol is the SAN letter of the kind; pawns have none.
func (k PieceKind) Symbol() string {
	switch k {
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	return ""
}

// CanPromoteTo reports whether a pawn may become k.
func (k PieceKind) CanPromoteTo() bool {
	return k == Queen || k == Rook || k == Bishop || k == Knight
}

// ParsePromotion maps "q", "r", "b", "n" (or full names) to a kind; anything else is NoKind.
func ParsePromotion(p string) PieceKind {
	switch p {
	case "q", "queen":
		return Queen
	case "r", "rook":
		return Rook
	case "b", "bishop":
		return Bishop
	case "n", "knight":
		return Knight
	case "k", "king":
		return King
	case "p", "pawn":
		return Pawn
	default:
		return NoKind
	}
}

// Square is rank*8+file, a1 = 0 and h8 = 63.
type Square int8

const NoSquare Square = -1

func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

func (s Square) File() int { return int(s) % 8 }
func (s Square) Rank() int { return int(s) / 8 }

func (s Square) Valid() bool {
	return s >= 0 && s < 64
}

// Light reports whether the square is a light square (file+rank odd).
func (s Square) Light() bool {
	return (s.File()+s.Rank())%2 == 1
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

func (s Square) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSquare reads algebraic coordinates such as "e4".
func ParseSquare(sq string) (Square, error) {
	if len(sq) != 2 {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, sq)
	}
	file := int(sq[0]) - 'a'
	rank := int(sq[1]) - '1'
	s := NewSquare(file, rank)
	if s == NoSquare {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, sq)
	}
	return s, nil
}

// SquareSet is a set of destination squares, one bit per square.
type SquareSet uint64

func (s SquareSet) Has(sq Square) bool {
	return sq.Valid() && s&(1<<uint(sq)) != 0
}

func (s *SquareSet) Add(sq Square) {
	*s |= 1 << uint(sq)
}

func (s SquareSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Squares lists the members in ascending order.
func (s SquareSet) Squares() []Square {
	out := make([]Square, 0, s.Len())
	for b := uint64(s); b != 0; b &= b - 1 {
		out = append(out, Square(bits.TrailingZeros64(b)))
	}
	return out
}

// PieceID identifies a piece record for the whole game, including after capture.
type PieceID int

// Piece is the record of one piece. Captured and promoted records stay in the
// game's registry so their identity can still be resolved.
type Piece struct {
	ID         PieceID   `json:"id"`
	Color      Color     `json:"color"`
	Kind       PieceKind `json:"kind"`
	Square     Square    `json:"square"`
	Moved      bool      `json:"moved"`
	Captured   bool      `json:"captured"`
	PromotedTo PieceID   `json:"promotedTo,omitempty"`
}

// Live reports whether the piece is still on the board.
func (p *Piece) Live() bool {
	return p != nil && !p.Captured && p.PromotedTo == 0
}

// Move is a candidate move submitted by input handling.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
}

// MaterialCount represents the material count for both sides
type MaterialCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// StandardPieceValues maps piece kinds to their standard values
var StandardPieceValues = map[PieceKind]int{
	Pawn:   1,
	Knight: 3,
	Bishop: 3,
	Rook:   5,
	Queen:  9,
	King:   0, // King has no material value
}

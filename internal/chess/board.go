package chess

import "fmt"

// Board is an 8x8 grid of piece references. It holds no rules logic and is
// cheap to copy by value, which the legality filter relies on.
type Board struct {
	squares [64]*Piece
}

func NewBoard() *Board {
	return &Board{}
}

func (b *Board) At(sq Square) *Piece {
	if !sq.Valid() {
		return nil
	}
	return b.squares[sq]
}

// Set stores p on sq without touching p.Square.
func (b *Board) Set(sq Square, p *Piece) {
	b.squares[sq] = p
}

func (b *Board) Clear(sq Square) {
	b.squares[sq] = nil
}

// Place stores p on sq and updates its recorded square.
func (b *Board) Place(p *Piece, sq Square) {
	p.Square = sq
	b.squares[sq] = p
}

// Pieces returns the pieces of color c in square order.
func (b *Board) Pieces(c Color) []*Piece {
	var out []*Piece
	for _, p := range b.squares {
		if p != nil && p.Color == c {
			out = append(out, p)
		}
	}
	return out
}

// KingSquare finds the king of color c.
func (b *Board) KingSquare(c Color) (Square, error) {
	for idx, p := range b.squares {
		if p != nil && p.Color == c && p.Kind == King {
			return Square(idx), nil
		}
	}
	return NoSquare, fmt.Errorf("%s king: %w", c, ErrNotFound)
}

// Validate checks that each color has exactly one king.
func (b *Board) Validate() error {
	var kings [2]int
	for _, p := range b.squares {
		if p != nil && p.Kind == King {
			kings[p.Color]++
		}
	}
	for c, n := range kings {
		if n != 1 {
			return fmt.Errorf("%w: %d %s kings", ErrInvalidState, n, Color(c))
		}
	}
	return nil
}

// String renders the board rank 8 first, upper case for White.
func (b *Board) String() string {
	buf := make([]byte, 0, 72)
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			buf = append(buf, pieceLetter(b.squares[rank*8+file]))
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}

func pieceLetter(p *Piece) byte {
	if p == nil {
		return '.'
	}
	letter := "?pnbrqk"[p.Kind]
	if p.Color == White {
		letter -= 'a' - 'A'
	}
	return letter
}

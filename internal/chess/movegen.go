package chess

type offset struct {
	df, dr int
}

var (
	knightOffsets = []offset{
		{1, 2}, {2, 1}, {2, -1}, {1, -2},
		{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
	}
	kingOffsets = []offset{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	bishopRays = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookRays   = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	queenRays  = append(append([]offset{}, bishopRays...), rookRays...)
)

func (s Square) offset(o offset) Square {
	return NewSquare(s.File()+o.df, s.Rank()+o.dr)
}

// PseudoLegalMoves returns the destinations the piece on from can reach by its
// movement pattern alone. enPassant is the current en-passant target or NoSquare.
// Whether the move exposes the mover's king is not considered.
func PseudoLegalMoves(b *Board, from Square, enPassant Square) SquareSet {
	p := b.At(from)
	if p == nil {
		return 0
	}
	switch p.Kind {
	case Pawn:
		return pawnMoves(b, p, from, enPassant)
	case Knight:
		return stepMoves(b, p, from, knightOffsets)
	case Bishop:
		return slideMoves(b, p, from, bishopRays)
	case Rook:
		return slideMoves(b, p, from, rookRays)
	case Queen:
		return slideMoves(b, p, from, queenRays)
	case King:
		return stepMoves(b, p, from, kingOffsets) | castlingCandidates(b, p, from)
	}
	return 0
}

func pawnMoves(b *Board, p *Piece, from, enPassant Square) SquareSet {
	var moves SquareSet
	dir := p.Color.pawnDirection()

	one := from.offset(offset{0, dir})
	if one != NoSquare && b.At(one) == nil {
		moves.Add(one)
		startRank := p.Color.homeRank() + dir
		if !p.Moved && from.Rank() == startRank {
			two := from.offset(offset{0, 2 * dir})
			if two != NoSquare && b.At(two) == nil {
				moves.Add(two)
			}
		}
	}

	for _, df := range []int{-1, 1} {
		diag := from.offset(offset{df, dir})
		if diag == NoSquare {
			continue
		}
		if target := b.At(diag); target != nil {
			if target.Color != p.Color {
				moves.Add(diag)
			}
		} else if diag == enPassant {
			moves.Add(diag)
		}
	}
	return moves
}

func stepMoves(b *Board, p *Piece, from Square, offsets []offset) SquareSet {
	var moves SquareSet
	for _, o := range offsets {
		to := from.offset(o)
		if to == NoSquare {
			continue
		}
		if target := b.At(to); target == nil || target.Color != p.Color {
			moves.Add(to)
		}
	}
	return moves
}

func slideMoves(b *Board, p *Piece, from Square, rays []offset) SquareSet {
	var moves SquareSet
	for _, ray := range rays {
		for to := from.offset(ray); to != NoSquare; to = to.offset(ray) {
			target := b.At(to)
			if target == nil {
				moves.Add(to)
				continue
			}
			if target.Color != p.Color {
				moves.Add(to)
			}
			break
		}
	}
	return moves
}

// castleSides lists the rook's starting file and the king's destination file.
var castleSides = []struct {
	rookFile int
	kingTo   int
}{
	{7, 6},
	{0, 2},
}

// castlingCandidates only checks that king and rook are unmoved and that the
// squares between them are empty. Attack safety belongs to the legality filter.
func castlingCandidates(b *Board, king *Piece, from Square) SquareSet {
	var moves SquareSet
	home := king.Color.homeRank()
	if king.Moved || from != NewSquare(4, home) {
		return 0
	}
	for _, cs := range castleSides {
		rook := b.At(NewSquare(cs.rookFile, home))
		if rook == nil || rook.Kind != Rook || rook.Color != king.Color || rook.Moved {
			continue
		}
		lo, hi := cs.rookFile, 4
		if lo > hi {
			lo, hi = hi, lo
		}
		empty := true
		for f := lo + 1; f < hi; f++ {
			if b.At(NewSquare(f, home)) != nil {
				empty = false
				break
			}
		}
		if empty {
			moves.Add(NewSquare(cs.kingTo, home))
		}
	}
	return moves
}

// CastleSide distinguishes kingside from queenside castling.
type CastleSide uint8

const (
	NoCastle CastleSide = iota
	Kingside
	Queenside
)

func (c CastleSide) String() string {
	switch c {
	case Kingside:
		return "kingside"
	case Queenside:
		return "queenside"
	}
	return ""
}

func (c CastleSide) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// castleSideOf reports which castling a king move from -> to is, if any.
func castleSideOf(p *Piece, from, to Square) CastleSide {
	if p.Kind != King || from.Rank() != to.Rank() {
		return NoCastle
	}
	switch to.File() - from.File() {
	case 2:
		return Kingside
	case -2:
		return Queenside
	}
	return NoCastle
}

// castleRookSquares returns the rook's origin and destination for a castling.
func castleRookSquares(c Color, side CastleSide) (Square, Square) {
	home := c.homeRank()
	if side == Kingside {
		return NewSquare(7, home), NewSquare(5, home)
	}
	return NewSquare(0, home), NewSquare(3, home)
}

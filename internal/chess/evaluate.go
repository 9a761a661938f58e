package chess

// attacks returns the squares the piece on from attacks. For every piece but
// the pawn and king this is its pseudo-legal set; pawns attack diagonally only
// and the king's castling candidates are never attacks. On an occupied square
// the result coincides with the pseudo-legal set.
func attacks(b *Board, from Square) SquareSet {
	p := b.At(from)
	if p == nil {
		return 0
	}
	switch p.Kind {
	case Pawn:
		var set SquareSet
		for _, df := range []int{-1, 1} {
			if sq := from.offset(offset{df, p.Color.pawnDirection()}); sq != NoSquare {
				set.Add(sq)
			}
		}
		return set
	case King:
		var set SquareSet
		for _, o := range kingOffsets {
			if sq := from.offset(o); sq != NoSquare {
				set.Add(sq)
			}
		}
		return set
	}
	return PseudoLegalMoves(b, from, NoSquare)
}

// IsSquareAttacked reports whether any piece of color by attacks sq.
func IsSquareAttacked(b *Board, sq Square, by Color) bool {
	for idx, p := range b.squares {
		if p == nil || p.Color != by {
			continue
		}
		if attacks(b, Square(idx)).Has(sq) {
			return true
		}
	}
	return false
}

// IsInCheck reports whether the king of color c is attacked. A board without
// that king reports false; Board.Validate catches that case.
func IsInCheck(b *Board, c Color) bool {
	kingSq, err := b.KingSquare(c)
	if err != nil {
		return false
	}
	return IsSquareAttacked(b, kingSq, c.Opposite())
}

// HasLegalMove reports whether any piece of color c has a legal move.
func HasLegalMove(b *Board, c Color, enPassant Square, rules Rules) bool {
	for idx, p := range b.squares {
		if p == nil || p.Color != c {
			continue
		}
		if LegalMoves(b, Square(idx), enPassant, rules) != 0 {
			return true
		}
	}
	return false
}

func IsCheckmate(b *Board, c Color, enPassant Square, rules Rules) bool {
	return IsInCheck(b, c) && !HasLegalMove(b, c, enPassant, rules)
}

func IsStalemate(b *Board, c Color, enPassant Square, rules Rules) bool {
	return !IsInCheck(b, c) && !HasLegalMove(b, c, enPassant, rules)
}

// IsInsufficientMaterial covers exactly: king vs king, king and a single minor
// piece vs king, and king and bishop vs king and bishop with both bishops on
// the same square color.
func IsInsufficientMaterial(b *Board) bool {
	var (
		counts  [2]int
		bishops [2]Square
		minors  [2]int
	)
	bishops[White], bishops[Black] = NoSquare, NoSquare
	for idx, p := range b.squares {
		if p == nil {
			continue
		}
		counts[p.Color]++
		switch p.Kind {
		case Bishop:
			bishops[p.Color] = Square(idx)
			minors[p.Color]++
		case Knight:
			minors[p.Color]++
		}
	}

	w, bl := counts[White], counts[Black]
	switch {
	case w == 1 && bl == 1:
		return true
	case w == 2 && bl == 1:
		return minors[White] == 1
	case w == 1 && bl == 2:
		return minors[Black] == 1
	case w == 2 && bl == 2:
		if bishops[White] == NoSquare || bishops[Black] == NoSquare {
			return false
		}
		return bishops[White].Light() == bishops[Black].Light()
	}
	return false
}

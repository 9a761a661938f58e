package chess

// Rules holds the rule switches that differ between the classic reference
// behavior and standard chess.
type Rules struct {
	// StrictCastling forbids castling out of check and across an attacked
	// square. When false only the emptiness of the transit squares is checked.
	StrictCastling bool `mapstructure:"strict_castling" json:"strictCastling"`
}

func DefaultRules() Rules {
	return Rules{StrictCastling: true}
}

// LegalMoves filters the pseudo-legal moves of the piece on from down to those
// that do not leave its own king in check. Every candidate is tried on a copy
// of the board so b is never touched.
func LegalMoves(b *Board, from Square, enPassant Square, rules Rules) SquareSet {
	p := b.At(from)
	if p == nil {
		return 0
	}
	var legal SquareSet
	for _, to := range PseudoLegalMoves(b, from, enPassant).Squares() {
		if castleSideOf(p, from, to) != NoCastle && rules.StrictCastling {
			if IsInCheck(b, p.Color) {
				continue
			}
			transit := NewSquare((from.File()+to.File())/2, from.Rank())
			if IsSquareAttacked(b, transit, p.Color.Opposite()) {
				continue
			}
		}
		scratch := simulate(b, from, to, enPassant)
		if !IsInCheck(&scratch, p.Color) {
			legal.Add(to)
		}
	}
	return legal
}

// simulate returns a copy of b with the move applied, including the removal of
// an en-passant victim and the rook hop of a castling.
func simulate(b *Board, from, to, enPassant Square) Board {
	scratch := *b
	p := scratch.squares[from]
	scratch.squares[from] = nil
	if victim := enPassantVictim(b, p, from, to, enPassant); victim != NoSquare {
		scratch.squares[victim] = nil
	}
	if side := castleSideOf(p, from, to); side != NoCastle {
		rookFrom, rookTo := castleRookSquares(p.Color, side)
		scratch.squares[rookTo] = scratch.squares[rookFrom]
		scratch.squares[rookFrom] = nil
	}
	scratch.squares[to] = p
	return scratch
}

// enPassantVictim returns the square of the pawn captured en passant by the
// move, or NoSquare if the move is not an en-passant capture. The victim sits
// on the destination file, on the mover's origin rank.
func enPassantVictim(b *Board, p *Piece, from, to, enPassant Square) Square {
	if p == nil || p.Kind != Pawn || to != enPassant || from.File() == to.File() {
		return NoSquare
	}
	if b.At(to) != nil {
		return NoSquare
	}
	victim := NewSquare(to.File(), from.Rank())
	if v := b.At(victim); v == nil || v.Kind != Pawn || v.Color == p.Color {
		return NoSquare
	}
	return victim
}

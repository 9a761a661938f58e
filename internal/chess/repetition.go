package chess

// CastlingRights is a bit set of the castlings still available, derived from
// the moved flags of kings and rooks.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside
)

func (r CastlingRights) String() string {
	if r == 0 {
		return "-"
	}
	out := ""
	for i, letter := range []string{"K", "Q", "k", "q"} {
		if r&(1<<uint(i)) != 0 {
			out += letter
		}
	}
	return out
}

func (r CastlingRights) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// CastlingRightsOf derives the rights from board contents and moved flags.
func CastlingRightsOf(b *Board) CastlingRights {
	var rights CastlingRights
	for _, c := range []Color{White, Black} {
		home := c.homeRank()
		king := b.At(NewSquare(4, home))
		if king == nil || king.Kind != King || king.Color != c || king.Moved {
			continue
		}
		for _, side := range []CastleSide{Kingside, Queenside} {
			rookSq, _ := castleRookSquares(c, side)
			rook := b.At(rookSq)
			if rook == nil || rook.Kind != Rook || rook.Color != c || rook.Moved {
				continue
			}
			bit := WhiteKingside
			if side == Queenside {
				bit = WhiteQueenside
			}
			if c == Black {
				bit <<= 2
			}
			rights |= bit
		}
	}
	return rights
}

// Fingerprint identifies a position for repetition purposes. Two positions
// with equal fingerprints have the same occupancy, side to move, castling
// rights and en-passant availability.
type Fingerprint struct {
	cells     [64]byte
	turn      Color
	castling  CastlingRights
	enPassant Square
}

// FingerprintOf computes the fingerprint of a position. The en-passant square
// only counts when a pawn of the side to move could actually capture onto it.
func FingerprintOf(b *Board, turn Color, enPassant Square) Fingerprint {
	fp := Fingerprint{
		turn:      turn,
		castling:  CastlingRightsOf(b),
		enPassant: NoSquare,
	}
	for idx, p := range b.squares {
		if p != nil {
			fp.cells[idx] = byte(p.Color)<<4 | byte(p.Kind)
		}
	}
	if enPassant != NoSquare && enPassantAvailable(b, turn, enPassant) {
		fp.enPassant = enPassant
	}
	return fp
}

func enPassantAvailable(b *Board, turn Color, enPassant Square) bool {
	for idx, p := range b.squares {
		if p == nil || p.Color != turn || p.Kind != Pawn {
			continue
		}
		if PseudoLegalMoves(b, Square(idx), enPassant).Has(enPassant) {
			return true
		}
	}
	return false
}

// RepetitionTracker counts how often each position occurred.
type RepetitionTracker struct {
	counts map[Fingerprint]int
}

func NewRepetitionTracker() *RepetitionTracker {
	return &RepetitionTracker{counts: make(map[Fingerprint]int)}
}

// RecordAndCheck counts the current position and reports whether it has now
// occurred three times.
func (t *RepetitionTracker) RecordAndCheck(b *Board, state State) bool {
	fp := FingerprintOf(b, state.Turn, state.EnPassant)
	t.counts[fp]++
	return t.counts[fp] >= 3
}

// Count returns how often the position has been recorded.
func (t *RepetitionTracker) Count(b *Board, state State) int {
	return t.counts[FingerprintOf(b, state.Turn, state.EnPassant)]
}

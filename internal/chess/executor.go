package chess

import (
	"fmt"
)

// CapturedPiece identifies the piece removed by a move.
type CapturedPiece struct {
	ID     PieceID   `json:"id"`
	Color  Color     `json:"color"`
	Kind   PieceKind `json:"kind"`
	Square Square    `json:"square"`
}

// ExecutionRecord describes one applied move. It is the only input notation,
// history and end-of-game evaluation need.
type ExecutionRecord struct {
	PieceID        PieceID        `json:"pieceId"`
	Color          Color          `json:"color"`
	Kind           PieceKind      `json:"kind"`
	From           Square         `json:"from"`
	To             Square         `json:"to"`
	Captured       *CapturedPiece `json:"captured,omitempty"`
	EnPassant      bool           `json:"enPassant"`
	Castle         CastleSide     `json:"castle,omitempty"`
	Promotion      PieceKind      `json:"promotion,omitempty"`
	PromotedID     PieceID        `json:"promotedId,omitempty"`
	Disambiguation string         `json:"disambiguation,omitempty"`
	Check          bool           `json:"check"`
	Checkmate      bool           `json:"checkmate"`
	Stalemate      bool           `json:"stalemate"`
	MoveNumber     int            `json:"moveNumber"`
	Status         GameStatus     `json:"status"`
	Method         Method         `json:"method,omitempty"`
}

// IsCapture reports whether the move removed an enemy piece.
func (r *ExecutionRecord) IsCapture() bool {
	return r.Captured != nil
}

// Apply validates and executes m. A rejected move returns ErrIllegalMove (or
// ErrGameOver) and leaves the game unchanged.
func (g *Game) Apply(m Move) (*ExecutionRecord, error) {
	if g.state.Status != StatusActive {
		return nil, ErrGameOver
	}
	p := g.board.At(m.From)
	if p == nil {
		return nil, fmt.Errorf("%w: no piece on %s", ErrIllegalMove, m.From)
	}
	if p.Color != g.state.Turn {
		return nil, fmt.Errorf("%w: %s is not to move", ErrIllegalMove, p.Color)
	}
	if !LegalMoves(g.board, m.From, g.state.EnPassant, g.rules).Has(m.To) {
		return nil, fmt.Errorf("%w: %s to %s", ErrIllegalMove, m.From, m.To)
	}

	promotion := NoKind
	if g.promotes(p, m.To) {
		promotion = m.Promotion
		if promotion == NoKind {
			promotion = Queen
		}
		if !promotion.CanPromoteTo() {
			return nil, fmt.Errorf("%w: cannot promote to %s", ErrIllegalMove, promotion)
		}
	}

	rec := &ExecutionRecord{
		PieceID:        p.ID,
		Color:          p.Color,
		Kind:           p.Kind,
		From:           m.From,
		To:             m.To,
		Promotion:      promotion,
		Disambiguation: g.disambiguate(p, m.From, m.To),
		MoveNumber:     g.state.FullMove,
	}
	g.execute(p, rec)

	if err := g.board.Validate(); err != nil {
		return nil, fmt.Errorf("after %s to %s: %w", m.From, m.To, err)
	}

	repeated := g.tracker.RecordAndCheck(g.board, g.state)
	turn := g.state.Turn
	rec.Check = IsInCheck(g.board, turn)
	hasMove := HasLegalMove(g.board, turn, g.state.EnPassant, g.rules)
	rec.Checkmate = rec.Check && !hasMove
	rec.Stalemate = !rec.Check && !hasMove

	decided := false
	if rec.Captured != nil && g.onCapture != nil {
		victim := g.pieces[rec.Captured.ID-1]
		if method, ok := g.onCapture(victim, rec.Color); ok {
			g.state.Status, g.state.Method = WinStatus(rec.Color), method
			decided = true
		}
	}
	if !decided {
		g.classify(rec.Check, hasMove, repeated)
	}
	rec.Status = g.state.Status
	rec.Method = g.state.Method
	return rec, nil
}

// execute performs the board and state updates of a validated move.
func (g *Game) execute(p *Piece, rec *ExecutionRecord) {
	from, to := rec.From, rec.To

	victimSq := NoSquare
	if target := g.board.At(to); target != nil {
		victimSq = to
	} else if sq := enPassantVictim(g.board, p, from, to, g.state.EnPassant); sq != NoSquare {
		victimSq = sq
		rec.EnPassant = true
	}
	if victimSq != NoSquare {
		victim := g.board.At(victimSq)
		victim.Captured = true
		g.board.Clear(victimSq)
		rec.Captured = &CapturedPiece{ID: victim.ID, Color: victim.Color, Kind: victim.Kind, Square: victimSq}
	}

	if side := castleSideOf(p, from, to); side != NoCastle {
		rookFrom, rookTo := castleRookSquares(p.Color, side)
		rook := g.board.At(rookFrom)
		g.board.Clear(rookFrom)
		g.board.Place(rook, rookTo)
		rook.Moved = true
		rec.Castle = side
	}

	g.board.Clear(from)
	g.board.Place(p, to)
	p.Moved = true

	if rec.Promotion != NoKind {
		promoted := g.newPiece(p.Color, rec.Promotion)
		promoted.Moved = true
		p.PromotedTo = promoted.ID
		g.board.Place(promoted, to)
		rec.PromotedID = promoted.ID
	}

	g.state.EnPassant = NoSquare
	if p.Kind == Pawn && abs(to.Rank()-from.Rank()) == 2 {
		g.state.EnPassant = NewSquare(from.File(), (from.Rank()+to.Rank())/2)
	}

	if p.Kind == Pawn || rec.Captured != nil {
		g.state.HalfMoveClock = 0
	} else {
		g.state.HalfMoveClock++
	}

	if g.state.Turn == Black {
		g.state.FullMove++
	}
	g.state.Turn = g.state.Turn.Opposite()
}

// disambiguate returns the origin file, rank or both when another piece of
// the same kind and color could also legally reach to.
func (g *Game) disambiguate(p *Piece, from, to Square) string {
	if p.Kind == Pawn || p.Kind == King {
		return ""
	}
	var sameFile, sameRank, others bool
	for idx, other := range g.board.squares {
		sq := Square(idx)
		if other == nil || other == p || other.Color != p.Color || other.Kind != p.Kind {
			continue
		}
		if !LegalMoves(g.board, sq, g.state.EnPassant, g.rules).Has(to) {
			continue
		}
		others = true
		if sq.File() == from.File() {
			sameFile = true
		}
		if sq.Rank() == from.Rank() {
			sameRank = true
		}
	}
	switch {
	case !others:
		return ""
	case !sameFile:
		return from.String()[:1]
	case !sameRank:
		return from.String()[1:]
	}
	return from.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

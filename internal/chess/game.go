package chess

import (
	"fmt"
)

// State is the non-board part of a position.
type State struct {
	Turn          Color      `json:"turn"`
	EnPassant     Square     `json:"enPassant"`
	HalfMoveClock int        `json:"halfMoveClock"`
	FullMove      int        `json:"fullMove"`
	Status        GameStatus `json:"status"`
	Method        Method     `json:"method,omitempty"`
}

// Game owns a board, its state and every piece record created for it. Only
// Apply and Conclude mutate it.
type Game struct {
	board   *Board
	state   State
	pieces  []*Piece
	tracker *RepetitionTracker
	rules   Rules

	onCapture CaptureObserver
}

// CaptureObserver is told about every capture right after the board update,
// before the resulting position is classified. Returning true ends the game
// in favour of the capturing color with the returned method.
type CaptureObserver func(captured *Piece, by Color) (Method, bool)

// ObserveCaptures installs fn as the capture observer.
func (g *Game) ObserveCaptures(fn CaptureObserver) {
	g.onCapture = fn
}

// Placement describes one piece of a custom starting position.
type Placement struct {
	Square Square
	Color  Color
	Kind   PieceKind
	Moved  bool
}

var backRank = [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StandardSetup lists the 32 pieces of the initial position, White first.
func StandardSetup() []Placement {
	out := make([]Placement, 0, 32)
	for _, c := range []Color{White, Black} {
		home := c.homeRank()
		for file, kind := range backRank {
			out = append(out, Placement{Square: NewSquare(file, home), Color: c, Kind: kind})
		}
		for file := 0; file < 8; file++ {
			out = append(out, Placement{Square: NewSquare(file, home+c.pawnDirection()), Color: c, Kind: Pawn})
		}
	}
	return out
}

// NewGame starts a game from the standard initial position.
func NewGame(rules Rules) *Game {
	g, err := NewGameFromSetup(rules, White, StandardSetup())
	if err != nil {
		// the standard setup is always valid
		panic(err)
	}
	return g
}

// NewGameFromSetup builds a game from explicit placements. The position must
// hold exactly one king per color.
func NewGameFromSetup(rules Rules, turn Color, setup []Placement) (*Game, error) {
	return NewGameFromState(rules, State{Turn: turn, EnPassant: NoSquare, FullMove: 1}, setup)
}

// NewGameFromState is NewGameFromSetup with explicit counters and en-passant
// square, as carried by an imported position. Status and Method are ignored.
func NewGameFromState(rules Rules, state State, setup []Placement) (*Game, error) {
	if state.HalfMoveClock < 0 || state.FullMove < 1 {
		return nil, fmt.Errorf("%w: bad move counters %d/%d", ErrInvalidState, state.HalfMoveClock, state.FullMove)
	}
	if state.EnPassant != NoSquare && (!state.EnPassant.Valid() || state.EnPassant.Rank() != state.Turn.Opposite().homeRank()+2*state.Turn.Opposite().pawnDirection()) {
		return nil, fmt.Errorf("%w: en-passant square %s", ErrInvalidState, state.EnPassant)
	}
	state.Status, state.Method = StatusActive, NoMethod
	turn := state.Turn
	g := &Game{
		board:   NewBoard(),
		tracker: NewRepetitionTracker(),
		rules:   rules,
		state:   state,
	}
	for _, pl := range setup {
		if !pl.Square.Valid() {
			return nil, fmt.Errorf("%w: placement off the board", ErrInvalidState)
		}
		if g.board.At(pl.Square) != nil {
			return nil, fmt.Errorf("%w: two pieces on %s", ErrInvalidState, pl.Square)
		}
		p := g.newPiece(pl.Color, pl.Kind)
		p.Moved = pl.Moved
		g.board.Place(p, pl.Square)
	}
	if err := g.board.Validate(); err != nil {
		return nil, err
	}
	if IsInCheck(g.board, turn.Opposite()) {
		return nil, fmt.Errorf("%w: side not to move is in check", ErrInvalidState)
	}

	repeated := g.tracker.RecordAndCheck(g.board, g.state)
	g.classify(IsInCheck(g.board, turn), HasLegalMove(g.board, turn, g.state.EnPassant, rules), repeated)
	return g, nil
}

func (g *Game) newPiece(c Color, k PieceKind) *Piece {
	p := &Piece{
		ID:     PieceID(len(g.pieces) + 1),
		Color:  c,
		Kind:   k,
		Square: NoSquare,
	}
	g.pieces = append(g.pieces, p)
	return p
}

// Board exposes the live board to readers. Callers must not modify it.
func (g *Game) Board() *Board {
	return g.board
}

func (g *Game) State() State {
	return g.state
}

func (g *Game) Rules() Rules {
	return g.rules
}

// Pieces returns every piece record, captured and promoted ones included.
func (g *Game) Pieces() []*Piece {
	return g.pieces
}

// Piece looks up a record by ID.
func (g *Game) Piece(id PieceID) (*Piece, error) {
	if id < 1 || int(id) > len(g.pieces) {
		return nil, fmt.Errorf("piece %d: %w", id, ErrNotFound)
	}
	return g.pieces[id-1], nil
}

// LegalMoves returns the legal destinations of the piece on from. It is empty
// when the square is empty, the piece is not the side to move, or the game
// has ended.
func (g *Game) LegalMoves(from Square) SquareSet {
	p := g.board.At(from)
	if p == nil || p.Color != g.state.Turn || g.state.Status != StatusActive {
		return 0
	}
	return LegalMoves(g.board, from, g.state.EnPassant, g.rules)
}

// ValidMoves lists every legal move of the side to move. Promotions are listed
// once per promotion kind.
func (g *Game) ValidMoves() []Move {
	var moves []Move
	for _, p := range g.board.Pieces(g.state.Turn) {
		for _, to := range g.LegalMoves(p.Square).Squares() {
			if g.promotes(p, to) {
				for _, k := range []PieceKind{Queen, Rook, Bishop, Knight} {
					moves = append(moves, Move{From: p.Square, To: to, Promotion: k})
				}
				continue
			}
			moves = append(moves, Move{From: p.Square, To: to})
		}
	}
	return moves
}

func (g *Game) promotes(p *Piece, to Square) bool {
	return p.Kind == Pawn && to.Rank() == p.Color.Opposite().homeRank()
}

// CastlingRights derives the current castling rights.
func (g *Game) CastlingRights() CastlingRights {
	return CastlingRightsOf(g.board)
}

// InCheck reports whether the side to move is in check.
func (g *Game) InCheck() bool {
	return IsInCheck(g.board, g.state.Turn)
}

// Conclude sets a terminal status decided outside the rules engine, such as
// a flag fall, a resignation or a captured hidden target.
func (g *Game) Conclude(status GameStatus, method Method) error {
	if g.state.Status != StatusActive {
		return ErrGameOver
	}
	if status == StatusActive {
		return fmt.Errorf("%w: cannot conclude as active", ErrInvalidState)
	}
	g.state.Status = status
	g.state.Method = method
	return nil
}

// classify sets the terminal status for the side to move. Checkmate is
// tested first so a mate on the hundredth half-move still wins.
func (g *Game) classify(inCheck, hasMove, repeated bool) {
	turn := g.state.Turn
	switch {
	case !hasMove && inCheck:
		g.state.Status, g.state.Method = WinStatus(turn.Opposite()), Checkmate
	case !hasMove:
		g.state.Status, g.state.Method = StatusDraw, Stalemate
	case IsInsufficientMaterial(g.board):
		g.state.Status, g.state.Method = StatusDraw, InsufficientMaterial
	case g.state.HalfMoveClock >= 100:
		g.state.Status, g.state.Method = StatusDraw, FiftyMoveRule
	case repeated:
		g.state.Status, g.state.Method = StatusDraw, ThreefoldRepetition
	}
}

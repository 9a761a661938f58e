// Package game runs Hide the King sessions: the rules engine, both hidden
// targets and an optional clock behind one lock per game.
package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/justinabrahms/hidetheking/internal/chess"
	"github.com/justinabrahms/hidetheking/internal/hidden"
	"github.com/rs/zerolog"
)

// Options configures a new game.
type Options struct {
	Seed        *int64
	HiddenSides hidden.Sides
	Rules       chess.Rules
	TimeControl TimeControl
	Setup       []chess.Placement // nil means the standard position
	Turn        chess.Color       // side to move for a custom Setup
	Logger      *zerolog.Logger
	Now         func() time.Time
}

// MoveResult is the outcome of a successful move.
type MoveResult struct {
	From      string                 `json:"from"`
	To        string                 `json:"to"`
	SAN       string                 `json:"san"`
	Check     bool                   `json:"check"`
	Checkmate bool                   `json:"checkmate"`
	Stalemate bool                   `json:"stalemate"`
	Draw      bool                   `json:"draw"`
	GameOver  bool                   `json:"gameOver"`
	Result    chess.GameStatus       `json:"result"`
	Method    chess.Method           `json:"method,omitempty"`
	Record    *chess.ExecutionRecord `json:"record"`
	Events    []Event                `json:"-"`
}

type Game struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	engine   *chess.Game
	targets  *hidden.Targets
	sides    hidden.Sides
	clock    *Clock
	history  []*chess.ExecutionRecord
	resolved *hidden.Resolution
	logger   zerolog.Logger
	now      func() time.Time
}

// New sets up the board, arms the hidden targets and starts the clock.
func New(id string, opts Options) (*Game, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("gameID", id).Logger()
	}
	sides := opts.HiddenSides
	if sides == "" {
		sides = hidden.Both
	}

	var engine *chess.Game
	if opts.Setup == nil {
		engine = chess.NewGame(opts.Rules)
	} else {
		var err error
		engine, err = chess.NewGameFromSetup(opts.Rules, opts.Turn, opts.Setup)
		if err != nil {
			return nil, fmt.Errorf("failed to set up board: %w", err)
		}
	}

	targets, err := hidden.Arm(engine.Pieces(), sides, hidden.NewRNG(opts.Seed))
	if err != nil {
		return nil, fmt.Errorf("failed to arm hidden targets: %w", err)
	}

	g := &Game{
		ID:        id,
		CreatedAt: now(),
		engine:    engine,
		targets:   targets,
		sides:     sides,
		logger:    logger,
		now:       now,
	}
	engine.ObserveCaptures(g.observeCapture)
	if opts.TimeControl.Enabled() {
		g.clock = NewClock(opts.TimeControl, engine.State().Turn, g.CreatedAt)
	}

	logger.Debug().
		Str("hiddenSides", string(sides)).
		Bool("strictCastling", opts.Rules.StrictCastling).
		Int("initialSeconds", opts.TimeControl.InitialSeconds).
		Msg("Game created")
	return g, nil
}

// observeCapture routes captures to the hidden targets while the engine is
// still inside Apply, so a captured target wins before the position is
// classified.
func (g *Game) observeCapture(captured *chess.Piece, by chess.Color) (chess.Method, bool) {
	res, ok := g.targets.ReportCapture(captured, by)
	if !ok {
		return chess.NoMethod, false
	}
	g.resolved = &res
	return chess.HiddenTargetCaptured, true
}

// Move parses and applies a move for the side to move.
func (g *Game) Move(from, to, promotion string) (*MoveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moveLocked(from, to, promotion)
}

// MoveAs is Move for a seated player: it fails with ErrNotYourTurn unless c
// is to move.
func (g *Game) MoveAs(c chess.Color, from, to, promotion string) (*MoveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if st := g.engine.State(); st.Status == chess.StatusActive && st.Turn != c {
		turn := st.Turn
		return nil, fmt.Errorf("%w: %s to move", ErrNotYourTurn, turn)
	}
	return g.moveLocked(from, to, promotion)
}

func (g *Game) moveLocked(from, to, promotion string) (*MoveResult, error) {
	now := g.now()
	if _, err := g.checkClockLocked(now); err != nil {
		return nil, err
	}

	m, err := parseMove(from, to, promotion)
	if err != nil {
		return nil, err
	}

	before := g.engine.State().Status
	g.resolved = nil
	rec, err := g.engine.Apply(m)
	if err != nil {
		g.logger.Debug().Err(err).Str("from", from).Str("to", to).Msg("Move rejected")
		return nil, err
	}
	g.history = append(g.history, rec)

	san := rec.SAN()
	events := []Event{MoveEvent{SAN: san, Record: rec}}
	if rec.Captured != nil {
		events = append(events, CapturedEvent{Piece: *rec.Captured, By: rec.Color})
	}
	if g.resolved != nil {
		events = append(events, HiddenTargetResolvedEvent{Resolution: *g.resolved})
		g.logger.Info().
			Str("winner", rec.Color.String()).
			Int("target", int(g.resolved.Target)).
			Msg("Hidden target captured")
	}

	state := g.engine.State()
	if state.Status != before {
		events = append(events, StatusChangedEvent{From: before, To: state.Status, Method: state.Method})
	}
	if g.clock != nil {
		if state.Status == chess.StatusActive {
			if err := g.clock.Press(rec.Color, now); err != nil {
				g.logger.Error().Err(err).Msg("Clock out of sync with game")
			}
		} else {
			g.clock.Stop(now)
		}
	}

	g.logger.Info().
		Str("san", san).
		Bool("check", rec.Check).
		Str("status", string(state.Status)).
		Msg("Move applied")

	return &MoveResult{
		From:      rec.From.String(),
		To:        rec.To.String(),
		SAN:       san,
		Check:     rec.Check,
		Checkmate: rec.Checkmate,
		Stalemate: rec.Stalemate,
		Draw:      state.Status == chess.StatusDraw,
		GameOver:  state.Status != chess.StatusActive,
		Result:    state.Status,
		Method:    state.Method,
		Record:    rec,
		Events:    events,
	}, nil
}

func parseMove(from, to, promotion string) (chess.Move, error) {
	fromSq, err := chess.ParseSquare(from)
	if err != nil {
		return chess.Move{}, err
	}
	toSq, err := chess.ParseSquare(to)
	if err != nil {
		return chess.Move{}, err
	}
	kind := chess.ParsePromotion(promotion)
	if promotion != "" && kind == chess.NoKind {
		return chess.Move{}, fmt.Errorf("%w: unknown promotion %q", chess.ErrIllegalMove, promotion)
	}
	return chess.Move{From: fromSq, To: toSq, Promotion: kind}, nil
}

// LegalMoves lists the legal destinations of the piece on from. Pieces of the
// side not to move have none.
func (g *Game) LegalMoves(from string) ([]string, error) {
	sq, err := chess.ParseSquare(from)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	squares := g.engine.LegalMoves(sq).Squares()
	out := make([]string, len(squares))
	for i, s := range squares {
		out[i] = s.String()
	}
	return out, nil
}

// Resign ends the game in favour of c's opponent.
func (g *Game) Resign(c chess.Color) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.concludeLocked(chess.WinStatus(c.Opposite()), chess.Resignation)
}

// CheckClock concludes the game when the side to move has run out of time.
func (g *Game) CheckClock() ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	events, err := g.checkClockLocked(g.now())
	if errors.Is(err, chess.ErrGameOver) {
		return events, nil
	}
	return events, err
}

// checkClockLocked returns ErrGameOver once the game has ended, whether by a
// flag fall detected now or earlier.
func (g *Game) checkClockLocked(now time.Time) ([]Event, error) {
	if g.engine.State().Status != chess.StatusActive {
		return nil, chess.ErrGameOver
	}
	if g.clock == nil {
		return nil, nil
	}
	flagged, ok := g.clock.Flagged(now)
	if !ok {
		return nil, nil
	}
	events, err := g.concludeLocked(chess.WinStatus(flagged.Opposite()), chess.Timeout)
	if err != nil {
		return nil, err
	}
	g.logger.Info().Str("flagged", flagged.String()).Msg("Flag fell")
	return events, fmt.Errorf("%s ran out of time: %w", flagged, chess.ErrGameOver)
}

func (g *Game) concludeLocked(status chess.GameStatus, method chess.Method) ([]Event, error) {
	before := g.engine.State().Status
	if err := g.engine.Conclude(status, method); err != nil {
		return nil, err
	}
	if g.clock != nil {
		g.clock.Stop(g.now())
	}
	return []Event{StatusChangedEvent{From: before, To: status, Method: method}}, nil
}

// State returns the current game state.
func (g *Game) State() chess.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engine.State()
}

// HiddenSnapshot is the author-facing view of c's hidden target. It must not
// be shown to c's opponent while the game is active.
func (g *Game) HiddenSnapshot(c chess.Color) hidden.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.targets.Snapshot(c)
}

// HiddenSides reports which colors hide a target in this game.
func (g *Game) HiddenSides() hidden.Sides {
	return g.sides
}

// Snapshot is the rendering view of a game.
type Snapshot struct {
	ID            string               `json:"id"`
	State         chess.State          `json:"state"`
	Castling      chess.CastlingRights `json:"castling"`
	InCheck       bool                 `json:"inCheck"`
	Pieces        []chess.Piece        `json:"pieces"`
	CapturedWhite []chess.Piece        `json:"capturedWhite"`
	CapturedBlack []chess.Piece        `json:"capturedBlack"`
	Material      chess.MaterialCount  `json:"materialCount"`
	History       []string             `json:"history"`
	HiddenSides   hidden.Sides         `json:"hiddenSides"`
	Clock         *ClockSnapshot       `json:"clock,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{
		ID:            g.ID,
		State:         g.engine.State(),
		Castling:      g.engine.CastlingRights(),
		InCheck:       g.engine.InCheck(),
		Pieces:        []chess.Piece{},
		CapturedWhite: copyPieces(g.engine.CapturedPieces(chess.White)),
		CapturedBlack: copyPieces(g.engine.CapturedPieces(chess.Black)),
		Material:      g.engine.GetMaterialCount(),
		History:       make([]string, len(g.history)),
		HiddenSides:   g.sides,
		CreatedAt:     g.CreatedAt,
	}
	for _, c := range []chess.Color{chess.White, chess.Black} {
		snap.Pieces = append(snap.Pieces, copyPieces(g.engine.Board().Pieces(c))...)
	}
	for i, rec := range g.history {
		snap.History[i] = rec.MoveText()
	}
	if g.clock != nil {
		cs := g.clock.Snapshot(g.now())
		snap.Clock = &cs
	}
	return snap
}

// ClockSnapshot returns the clock state, or false for untimed games.
func (g *Game) ClockSnapshot() (ClockSnapshot, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.clock == nil {
		return ClockSnapshot{}, false
	}
	return g.clock.Snapshot(g.now()), true
}

// History returns the records of all applied moves.
func (g *Game) History() []*chess.ExecutionRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*chess.ExecutionRecord(nil), g.history...)
}

func copyPieces(ps []*chess.Piece) []chess.Piece {
	out := make([]chess.Piece, len(ps))
	for i, p := range ps {
		out[i] = *p
	}
	return out
}

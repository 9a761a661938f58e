package game

import (
	"testing"
	"time"

	"github.com/justinabrahms/hidetheking/internal/chess"
	"github.com/justinabrahms/hidetheking/internal/hidden"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func place(t *testing.T, color chess.Color, kind chess.PieceKind, square string) chess.Placement {
	t.Helper()
	sq, err := chess.ParseSquare(square)
	require.NoError(t, err)
	return chess.Placement{Square: sq, Color: color, Kind: kind}
}

func playMoves(t *testing.T, g *Game, moves ...string) *MoveResult {
	t.Helper()
	var res *MoveResult
	for _, m := range moves {
		var err error
		res, err = g.Move(m[0:2], m[2:4], m[4:])
		require.NoError(t, err, "move %s", m)
	}
	return res
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type()
	}
	return out
}

// newSetupGame searches for a seed that hides a black piece of kind.
func newSetupGame(t *testing.T, setup []chess.Placement, kind chess.PieceKind) *Game {
	t.Helper()
	for seed := int64(0); seed < 100; seed++ {
		s := seed
		g, err := New("setup", Options{
			Seed:        &s,
			HiddenSides: hidden.BlackOnly,
			Rules:       chess.DefaultRules(),
			Setup:       setup,
			Turn:        chess.White,
		})
		require.NoError(t, err)
		if g.HiddenSnapshot(chess.Black).Kind == kind {
			return g
		}
	}
	t.Fatalf("no seed hides a black %s", kind)
	return nil
}

func TestNew_Defaults(t *testing.T) {
	g, err := New("g1", Options{Rules: chess.DefaultRules()})
	require.NoError(t, err)

	assert.Equal(t, "g1", g.ID)
	assert.Equal(t, hidden.Both, g.HiddenSides())
	assert.Equal(t, chess.StatusActive, g.State().Status)
	assert.Equal(t, hidden.Armed, g.HiddenSnapshot(chess.White).State)
	assert.Equal(t, hidden.Armed, g.HiddenSnapshot(chess.Black).State)
	_, timed := g.ClockSnapshot()
	assert.False(t, timed)
}

func TestNew_RejectsInvalidSetup(t *testing.T) {
	_, err := New("bad", Options{
		Setup: []chess.Placement{place(t, chess.White, chess.King, "e1")},
	})
	assert.ErrorIs(t, err, chess.ErrInvalidState)
}

func TestNew_SameSeedSameTargets(t *testing.T) {
	seed := int64(9)
	a, err := New("a", Options{Seed: &seed, Rules: chess.DefaultRules()})
	require.NoError(t, err)
	b, err := New("b", Options{Seed: &seed, Rules: chess.DefaultRules()})
	require.NoError(t, err)

	assert.Equal(t, a.HiddenSnapshot(chess.White), b.HiddenSnapshot(chess.White))
	assert.Equal(t, a.HiddenSnapshot(chess.Black), b.HiddenSnapshot(chess.Black))
}

func TestMove(t *testing.T) {
	g, err := New("g", Options{Rules: chess.DefaultRules(), HiddenSides: hidden.None})
	require.NoError(t, err)

	res, err := g.Move("e2", "e4", "")
	require.NoError(t, err)
	assert.Equal(t, "e2", res.From)
	assert.Equal(t, "e4", res.To)
	assert.Equal(t, "e4", res.SAN)
	assert.False(t, res.GameOver)
	assert.Equal(t, chess.StatusActive, res.Result)
	assert.Equal(t, []EventType{EventTypeMove}, eventTypes(res.Events))

	res = playMoves(t, g, "d7d5", "e4d5")
	assert.Equal(t, "exd5", res.SAN)
	assert.Equal(t, []EventType{EventTypeMove, EventTypeCapture}, eventTypes(res.Events))
	captured := res.Events[1].(CapturedEvent)
	assert.Equal(t, chess.White, captured.By)
	assert.Equal(t, chess.Pawn, captured.Piece.Kind)

	snap := g.Snapshot()
	assert.Equal(t, []string{"1. e4", "1... d5", "2. exd5"}, snap.History)
	assert.Len(t, snap.Pieces, 31)
	assert.Len(t, snap.CapturedBlack, 1)
	assert.Empty(t, snap.CapturedWhite)
	assert.Equal(t, 39, snap.Material.White)
	assert.Equal(t, 38, snap.Material.Black)
	assert.Len(t, g.History(), 3)
}

func TestMove_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		promotion string
		wantErr   error
	}{
		{"bad square", "z9", "e4", "", chess.ErrInvalidSquare},
		{"illegal", "e2", "e5", "", chess.ErrIllegalMove},
		{"unknown promotion", "e2", "e4", "x", chess.ErrIllegalMove},
		{"opponent piece", "e7", "e5", "", chess.ErrIllegalMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New("g", Options{Rules: chess.DefaultRules()})
			require.NoError(t, err)
			_, err = g.Move(tt.from, tt.to, tt.promotion)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, g.History())
		})
	}
}

func TestMoveAs_TurnGating(t *testing.T) {
	g, err := New("g", Options{Rules: chess.DefaultRules()})
	require.NoError(t, err)

	_, err = g.MoveAs(chess.Black, "e7", "e5", "")
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = g.MoveAs(chess.White, "e2", "e4", "")
	require.NoError(t, err)
	_, err = g.MoveAs(chess.White, "d2", "d4", "")
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = g.Resign(chess.Black)
	require.NoError(t, err)
	_, err = g.MoveAs(chess.White, "d2", "d4", "")
	assert.ErrorIs(t, err, chess.ErrGameOver)
}

func TestLegalMoves(t *testing.T) {
	g, err := New("g", Options{Rules: chess.DefaultRules()})
	require.NoError(t, err)

	moves, err := g.LegalMoves("e2")
	require.NoError(t, err)
	assert.Equal(t, []string{"e3", "e4"}, moves)

	moves, err = g.LegalMoves("g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"f3", "h3"}, moves)

	moves, err = g.LegalMoves("e7")
	require.NoError(t, err)
	assert.Empty(t, moves)

	_, err = g.LegalMoves("i9")
	assert.ErrorIs(t, err, chess.ErrInvalidSquare)
}

func TestHiddenCapture_WinsOverCheckmate(t *testing.T) {
	setup := []chess.Placement{
		place(t, chess.White, chess.King, "g1"),
		place(t, chess.White, chess.Rook, "a1"),
		place(t, chess.Black, chess.King, "h8"),
		place(t, chess.Black, chess.Rook, "a8"),
		place(t, chess.Black, chess.Pawn, "g7"),
		place(t, chess.Black, chess.Pawn, "h7"),
	}
	g := newSetupGame(t, setup, chess.Rook)

	res, err := g.Move("a1", "a8", "")
	require.NoError(t, err)

	assert.True(t, res.Checkmate, "the position is mate")
	assert.True(t, res.GameOver)
	assert.Equal(t, chess.StatusWhiteWon, res.Result)
	assert.Equal(t, chess.HiddenTargetCaptured, res.Method)
	assert.Equal(t, []EventType{EventTypeMove, EventTypeCapture, EventTypeHiddenTarget, EventTypeStatus}, eventTypes(res.Events))

	resolved := res.Events[2].(HiddenTargetResolvedEvent)
	assert.Equal(t, chess.White, resolved.Winner)
	assert.Equal(t, "a8", resolved.Square.String())

	status := res.Events[3].(StatusChangedEvent)
	assert.Equal(t, chess.StatusActive, status.From)
	assert.Equal(t, chess.StatusWhiteWon, status.To)
	assert.Equal(t, chess.HiddenTargetCaptured, status.Method)

	snap := g.HiddenSnapshot(chess.Black)
	assert.Equal(t, hidden.Resolved, snap.State)
	assert.True(t, snap.Captured)
}

func TestHiddenCapture_WinsOverInsufficientMaterial(t *testing.T) {
	setup := []chess.Placement{
		place(t, chess.White, chess.King, "e1"),
		place(t, chess.White, chess.Bishop, "c1"),
		place(t, chess.Black, chess.King, "e8"),
		place(t, chess.Black, chess.Knight, "b2"),
	}
	g := newSetupGame(t, setup, chess.Knight)

	res, err := g.Move("c1", "b2", "")
	require.NoError(t, err)
	assert.False(t, res.Draw)
	assert.Equal(t, chess.StatusWhiteWon, res.Result)
	assert.Equal(t, chess.HiddenTargetCaptured, res.Method)
}

func TestHiddenCapture_OtherPieceDoesNotEnd(t *testing.T) {
	setup := []chess.Placement{
		place(t, chess.White, chess.King, "e1"),
		place(t, chess.White, chess.Rook, "a1"),
		place(t, chess.Black, chess.King, "e8"),
		place(t, chess.Black, chess.Rook, "a8"),
		place(t, chess.Black, chess.Knight, "h8"),
	}
	g := newSetupGame(t, setup, chess.Knight)

	res, err := g.Move("a1", "a8", "")
	require.NoError(t, err)
	assert.Equal(t, chess.StatusActive, res.Result)
	assert.Equal(t, []EventType{EventTypeMove, EventTypeCapture}, eventTypes(res.Events))
	assert.Equal(t, hidden.Armed, g.HiddenSnapshot(chess.Black).State)
}

func TestCheckmate_StatusEvent(t *testing.T) {
	g, err := New("g", Options{Rules: chess.DefaultRules(), HiddenSides: hidden.None})
	require.NoError(t, err)

	res := playMoves(t, g, "f2f3", "e7e5", "g2g4", "d8h4")
	assert.Equal(t, "Qh4#", res.SAN)
	assert.Equal(t, chess.StatusBlackWon, res.Result)
	assert.Equal(t, chess.Checkmate, res.Method)
	assert.Equal(t, []EventType{EventTypeMove, EventTypeStatus}, eventTypes(res.Events))

	_, err = g.Move("a2", "a3", "")
	assert.ErrorIs(t, err, chess.ErrGameOver)
}

func TestResign(t *testing.T) {
	g, err := New("g", Options{Rules: chess.DefaultRules()})
	require.NoError(t, err)

	events, err := g.Resign(chess.White)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, StatusChangedEvent{From: chess.StatusActive, To: chess.StatusBlackWon, Method: chess.Resignation}, events[0])

	_, err = g.Resign(chess.Black)
	assert.ErrorIs(t, err, chess.ErrGameOver)
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestClockedGame(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	g, err := New("timed", Options{
		Rules:       chess.DefaultRules(),
		TimeControl: TimeControl{InitialSeconds: 60, IncrementSeconds: 5},
		Now:         clock.Now,
	})
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	playMoves(t, g, "e2e4")

	snap, ok := g.ClockSnapshot()
	require.True(t, ok)
	assert.Equal(t, int64(55000), snap.WhiteMS)
	assert.Equal(t, int64(60000), snap.BlackMS)
	assert.Equal(t, chess.Black, snap.Turn)
	assert.True(t, snap.Running)

	clock.Advance(30 * time.Second)
	events, err := g.CheckClock()
	require.NoError(t, err)
	assert.Empty(t, events)

	clock.Advance(31 * time.Second)
	events, err = g.CheckClock()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, StatusChangedEvent{From: chess.StatusActive, To: chess.StatusWhiteWon, Method: chess.Timeout}, events[0])

	_, err = g.Move("e7", "e5", "")
	assert.ErrorIs(t, err, chess.ErrGameOver)

	snap, _ = g.ClockSnapshot()
	assert.False(t, snap.Running)
	assert.Equal(t, "00:00", snap.Black)
	assert.Equal(t, "00:55", snap.White)

	events, err = g.CheckClock()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestClockedGame_MoveAfterFlagFall(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	g, err := New("timed", Options{
		Rules:       chess.DefaultRules(),
		TimeControl: TimeControl{InitialSeconds: 30},
		Now:         clock.Now,
	})
	require.NoError(t, err)

	clock.Advance(31 * time.Second)
	_, err = g.MoveAs(chess.White, "e2", "e4", "")
	assert.ErrorIs(t, err, chess.ErrGameOver)

	state := g.State()
	assert.Equal(t, chess.StatusBlackWon, state.Status)
	assert.Equal(t, chess.Timeout, state.Method)
	assert.Empty(t, g.History())
}

func TestClockStopsOnGameEnd(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	g, err := New("timed", Options{
		Rules:       chess.DefaultRules(),
		HiddenSides: hidden.None,
		TimeControl: TimeControl{InitialSeconds: 60},
		Now:         clock.Now,
	})
	require.NoError(t, err)

	for _, m := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		clock.Advance(time.Second)
		playMoves(t, g, m)
	}

	clock.Advance(time.Hour)
	snap, ok := g.ClockSnapshot()
	require.True(t, ok)
	assert.False(t, snap.Running)
	assert.Equal(t, int64(58000), snap.WhiteMS)
	assert.Equal(t, int64(58000), snap.BlackMS)
	assert.Equal(t, chess.StatusBlackWon, g.State().Status)
}

func newBlackToMoveGame(t *testing.T, clock *fakeClock) *Game {
	t.Helper()
	g, err := New("black-first", Options{
		Rules:       chess.DefaultRules(),
		HiddenSides: hidden.None,
		TimeControl: TimeControl{InitialSeconds: 60},
		Now:         clock.Now,
		Setup: []chess.Placement{
			place(t, chess.White, chess.King, "e1"),
			place(t, chess.White, chess.Rook, "a1"),
			place(t, chess.Black, chess.King, "e8"),
		},
		Turn: chess.Black,
	})
	require.NoError(t, err)
	return g
}

func TestClockedGame_BlackMovesFirst(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	g := newBlackToMoveGame(t, clock)

	snap, ok := g.ClockSnapshot()
	require.True(t, ok)
	assert.Equal(t, chess.Black, snap.Turn)

	clock.Advance(10 * time.Second)
	playMoves(t, g, "e8d8")

	snap, _ = g.ClockSnapshot()
	assert.Equal(t, int64(60000), snap.WhiteMS)
	assert.Equal(t, int64(50000), snap.BlackMS)
	assert.Equal(t, chess.White, snap.Turn)
}

func TestClockedGame_BlackFlagsFirst(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	g := newBlackToMoveGame(t, clock)

	clock.Advance(61 * time.Second)
	events, err := g.CheckClock()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, StatusChangedEvent{From: chess.StatusActive, To: chess.StatusWhiteWon, Method: chess.Timeout}, events[0])
}

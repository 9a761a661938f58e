package game

import (
	"fmt"
	"time"

	"github.com/justinabrahms/hidetheking/internal/chess"
)

// TimeControl represents the time control settings for a game
type TimeControl struct {
	InitialSeconds   int `mapstructure:"initial_seconds" json:"initial"`     // per player, 0 disables the clock
	IncrementSeconds int `mapstructure:"increment_seconds" json:"increment"` // added after each move
}

func (tc TimeControl) Enabled() bool {
	return tc.InitialSeconds > 0
}

// Clock is a two-sided chess clock. It only measures time; flagging a player
// is reported to the caller, which concludes the game.
type Clock struct {
	tc        TimeControl
	remaining [2]time.Duration
	turn      chess.Color
	since     time.Time
	running   bool
}

// NewClock starts first's time at start.
func NewClock(tc TimeControl, first chess.Color, start time.Time) *Clock {
	initial := time.Duration(tc.InitialSeconds) * time.Second
	return &Clock{
		tc:        tc,
		remaining: [2]time.Duration{initial, initial},
		turn:      first,
		since:     start,
		running:   true,
	}
}

// Remaining returns the time left for c at now.
func (c *Clock) Remaining(color chess.Color, now time.Time) time.Duration {
	left := c.remaining[color]
	if c.running && color == c.turn {
		left -= now.Sub(c.since)
	}
	if left < 0 {
		return 0
	}
	return left
}

// Press ends color's turn at now: its elapsed time is charged, the increment
// added and the opponent's time starts running.
func (c *Clock) Press(color chess.Color, now time.Time) error {
	if !c.running {
		return fmt.Errorf("clock stopped")
	}
	if color != c.turn {
		return fmt.Errorf("clock: %s pressed on %s's turn", color, c.turn)
	}
	c.remaining[color] = c.Remaining(color, now) + time.Duration(c.tc.IncrementSeconds)*time.Second
	c.turn = color.Opposite()
	c.since = now
	return nil
}

// Flagged reports the color whose time ran out, if any.
func (c *Clock) Flagged(now time.Time) (chess.Color, bool) {
	if !c.running {
		return c.turn, false
	}
	return c.turn, c.Remaining(c.turn, now) <= 0
}

// Stop freezes both times at now.
func (c *Clock) Stop(now time.Time) {
	if !c.running {
		return
	}
	c.remaining[c.turn] = c.Remaining(c.turn, now)
	c.running = false
}

func (c *Clock) Running() bool { return c.running }

// ClockSnapshot is the clock as presented to clients.
type ClockSnapshot struct {
	White     string      `json:"white"`
	Black     string      `json:"black"`
	WhiteMS   int64       `json:"whiteMs"`
	BlackMS   int64       `json:"blackMs"`
	Turn      chess.Color `json:"turn"`
	Running   bool        `json:"running"`
	Increment int         `json:"increment"`
}

func (c *Clock) Snapshot(now time.Time) ClockSnapshot {
	w, b := c.Remaining(chess.White, now), c.Remaining(chess.Black, now)
	return ClockSnapshot{
		White:     FormatRemaining(w),
		Black:     FormatRemaining(b),
		WhiteMS:   w.Milliseconds(),
		BlackMS:   b.Milliseconds(),
		Turn:      c.turn,
		Running:   c.running,
		Increment: c.tc.IncrementSeconds,
	}
}

// FormatRemaining formats time remaining as MM:SS
func FormatRemaining(remaining time.Duration) string {
	if remaining <= 0 {
		return "00:00"
	}
	total := int(remaining / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

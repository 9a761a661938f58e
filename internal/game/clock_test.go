package game

import (
	"testing"
	"time"

	"github.com/justinabrahms/hidetheking/internal/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(TimeControl{InitialSeconds: 300, IncrementSeconds: 2}, chess.White, start)

	assert.Equal(t, 300*time.Second, c.Remaining(chess.White, start))
	assert.Equal(t, 290*time.Second, c.Remaining(chess.White, start.Add(10*time.Second)))
	assert.Equal(t, 300*time.Second, c.Remaining(chess.Black, start.Add(10*time.Second)))

	assert.Error(t, c.Press(chess.Black, start.Add(time.Second)), "black cannot press on white's turn")

	require.NoError(t, c.Press(chess.White, start.Add(10*time.Second)))
	assert.Equal(t, 292*time.Second, c.Remaining(chess.White, start.Add(20*time.Second)))
	assert.Equal(t, 290*time.Second, c.Remaining(chess.Black, start.Add(20*time.Second)))

	_, flagged := c.Flagged(start.Add(299 * time.Second))
	assert.False(t, flagged)
	color, flagged := c.Flagged(start.Add(311 * time.Second))
	assert.True(t, flagged)
	assert.Equal(t, chess.Black, color)

	c.Stop(start.Add(20 * time.Second))
	assert.False(t, c.Running())
	assert.Equal(t, 290*time.Second, c.Remaining(chess.Black, start.Add(time.Hour)))
	_, flagged = c.Flagged(start.Add(time.Hour))
	assert.False(t, flagged)
	assert.Error(t, c.Press(chess.Black, start.Add(time.Hour)))
}

func TestClock_BlackFirst(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(TimeControl{InitialSeconds: 60}, chess.Black, start)

	assert.Equal(t, 60*time.Second, c.Remaining(chess.White, start.Add(10*time.Second)))
	assert.Equal(t, 50*time.Second, c.Remaining(chess.Black, start.Add(10*time.Second)))
	assert.Error(t, c.Press(chess.White, start.Add(10*time.Second)))

	require.NoError(t, c.Press(chess.Black, start.Add(10*time.Second)))
	snap := c.Snapshot(start.Add(10 * time.Second))
	assert.Equal(t, int64(60000), snap.WhiteMS)
	assert.Equal(t, int64(50000), snap.BlackMS)
	assert.Equal(t, chess.White, snap.Turn)
}

func TestClock_Snapshot(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(TimeControl{InitialSeconds: 90}, chess.White, start)

	snap := c.Snapshot(start.Add(15*time.Second + 500*time.Millisecond))
	assert.Equal(t, "01:14", snap.White)
	assert.Equal(t, "01:30", snap.Black)
	assert.Equal(t, int64(74500), snap.WhiteMS)
	assert.Equal(t, chess.White, snap.Turn)
	assert.True(t, snap.Running)
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
		{59 * time.Second, "00:59"},
		{61 * time.Second, "01:01"},
		{90*time.Minute + 5*time.Second, "90:05"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRemaining(tt.in))
		})
	}
}

func TestTimeControl_Enabled(t *testing.T) {
	assert.False(t, TimeControl{}.Enabled())
	assert.False(t, TimeControl{IncrementSeconds: 5}.Enabled())
	assert.True(t, TimeControl{InitialSeconds: 1}.Enabled())
}

package game

import (
	"sync"
	"testing"
	"time"

	"github.com/justinabrahms/hidetheking/internal/chess"
	"github.com/justinabrahms/hidetheking/internal/hidden"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	m := NewManager(Options{Rules: chess.DefaultRules(), HiddenSides: hidden.WhiteOnly})
	assert.Equal(t, hidden.WhiteOnly, m.Defaults().HiddenSides)

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	var ids []string
	for i := 0; i < 3; i++ {
		clock.Advance(time.Minute)
		g, err := m.NewGame(Options{Rules: chess.DefaultRules(), Now: clock.Now})
		require.NoError(t, err)
		assert.NotEmpty(t, g.ID)
		ids = append(ids, g.ID)
	}

	games := m.List()
	require.Len(t, games, 3)
	for i, g := range games {
		assert.Equal(t, ids[i], g.ID)
	}

	g, err := m.Get(ids[1])
	require.NoError(t, err)
	assert.Equal(t, ids[1], g.ID)

	require.NoError(t, m.Delete(ids[1]))
	_, err = m.Get(ids[1])
	assert.ErrorIs(t, err, ErrGameNotFound)
	assert.ErrorIs(t, m.Delete(ids[1]), ErrGameNotFound)
	assert.Len(t, m.List(), 2)
}

func TestManager_RejectsBadOptions(t *testing.T) {
	m := NewManager(Options{})
	_, err := m.NewGame(Options{Setup: []chess.Placement{{Square: 4, Color: chess.White, Kind: chess.King}}})
	assert.Error(t, err)
	assert.Empty(t, m.List())
}

func TestGame_ConcurrentMoves(t *testing.T) {
	g, err := New("race", Options{Rules: chess.DefaultRules()})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.MoveAs(chess.White, "e2", "e4", "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, g.History(), 1)
}

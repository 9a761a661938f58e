package game

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrGameActive   = errors.New("game is still in progress")
)

// Manager keeps the games of one process in memory.
type Manager struct {
	mu       sync.RWMutex
	games    map[string]*Game
	defaults Options
}

// NewManager returns a Manager that creates games with defaults unless a
// create call overrides them.
func NewManager(defaults Options) *Manager {
	return &Manager{games: make(map[string]*Game), defaults: defaults}
}

// Defaults returns the options new games start from.
func (m *Manager) Defaults() Options {
	return m.defaults
}

func (m *Manager) NewGame(opts Options) (*Game, error) {
	g, err := New(uuid.NewString(), opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	return g, nil
}

func (m *Manager) Get(id string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(m.games, id)
	return nil
}

// List returns all games, oldest first.
func (m *Manager) List() []*Game {
	m.mu.RLock()
	games := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, g)
	}
	m.mu.RUnlock()

	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})
	return games
}

package web

import (
	"bytes"
	"net/http"
	"time"

	"github.com/justinabrahms/hidetheking/internal/archive"
	"github.com/justinabrahms/hidetheking/internal/chess"
	"github.com/justinabrahms/hidetheking/internal/game"
	"github.com/justinabrahms/hidetheking/internal/hidden"
	"github.com/rs/zerolog/log"
)

// GameIndex represents a game available for spectating
type GameIndex struct {
	GameID         string              `json:"gameId"`
	Status         chess.GameStatus    `json:"status"`
	Method         chess.Method        `json:"method,omitempty"`
	Turn           chess.Color         `json:"turn"`
	MoveCount      int                 `json:"moveCount"`
	HiddenSides    hidden.Sides        `json:"hiddenSides"`
	CreatedAt      time.Time           `json:"createdAt"`
	SpectatorCount int                 `json:"spectatorCount"`
	MaterialCount  chess.MaterialCount `json:"materialCount"`
	Clock          *game.ClockSnapshot `json:"clock,omitempty"`
}

// ListGamesHandler returns all games, active ones only unless ?all=true.
func (s *Service) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "true"

	games := []GameIndex{}
	for _, g := range s.games.List() {
		snap := g.Snapshot()
		if !all && snap.State.Status != chess.StatusActive {
			continue
		}
		games = append(games, GameIndex{
			GameID:         snap.ID,
			Status:         snap.State.Status,
			Method:         snap.State.Method,
			Turn:           snap.State.Turn,
			MoveCount:      len(snap.History),
			HiddenSides:    snap.HiddenSides,
			CreatedAt:      snap.CreatedAt,
			SpectatorCount: s.hub.SpectatorCount(snap.ID),
			MaterialCount:  snap.Material,
			Clock:          snap.Clock,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"total": len(games),
	})
}

// ArchiveHandler exports a game as a CAR file holding one DAG-CBOR record.
// Hidden targets are included only once the game is over.
func (s *Service) ArchiveHandler(w http.ResponseWriter, r *http.Request) {
	g, err := s.gameFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := archive.Encode(archive.Game{
		ID:          g.ID,
		CreatedAt:   g.CreatedAt,
		State:       g.State(),
		HiddenSides: g.HiddenSides(),
		Moves:       g.History(),
		Hidden:      []hidden.Snapshot{g.HiddenSnapshot(chess.White), g.HiddenSnapshot(chess.Black)},
	})
	if err != nil {
		log.Error().Err(err).Str("gameID", g.ID).Msg("Failed to encode game record")
		http.Error(w, "Failed to export game", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	root, err := archive.WriteCAR(&buf, record)
	if err != nil {
		log.Error().Err(err).Str("gameID", g.ID).Msg("Failed to write CAR")
		http.Error(w, "Failed to export game", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.ipld.car")
	w.Header().Set("Content-Disposition", `attachment; filename="`+g.ID+`.car"`)
	w.Header().Set("X-Root-CID", root.String())
	_, _ = w.Write(buf.Bytes())
}

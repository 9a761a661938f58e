package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/justinabrahms/hidetheking/internal/auth"
	"github.com/justinabrahms/hidetheking/internal/chess"
	"github.com/justinabrahms/hidetheking/internal/config"
	"github.com/justinabrahms/hidetheking/internal/game"
	"github.com/justinabrahms/hidetheking/internal/hidden"
	"github.com/rs/zerolog/log"
)

type Service struct {
	games    *game.Manager
	seats    *auth.Seats
	hub      *Hub
	config   *config.Config
	upgrader websocket.Upgrader
}

func NewService(games *game.Manager, seats *auth.Seats, hub *Hub, cfg *config.Config) *Service {
	return &Service{
		games:  games,
		seats:  seats,
		hub:    hub,
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.Server.AllowedOrigins),
		},
	}
}

// Routes registers the API under /api.
func (s *Service) Routes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET")
	api.HandleFunc("/.well-known/jwks.json", s.JWKSHandler).Methods("GET")
	api.HandleFunc("/games", s.ListGamesHandler).Methods("GET")
	api.HandleFunc("/games", s.CreateGameHandler).Methods("POST")
	api.HandleFunc("/games/{id}", s.GetGameHandler).Methods("GET")
	api.HandleFunc("/games/{id}", s.DeleteGameHandler).Methods("DELETE")
	api.HandleFunc("/games/{id}/legal", s.LegalMovesHandler).Methods("GET")
	api.HandleFunc("/games/{id}/moves", s.MakeMoveHandler).Methods("POST")
	api.HandleFunc("/games/{id}/resign", s.ResignGameHandler).Methods("POST")
	api.HandleFunc("/games/{id}/clock", s.GetClockHandler).Methods("GET")
	api.HandleFunc("/games/{id}/hidden", s.HiddenTargetHandler).Methods("GET")
	api.HandleFunc("/games/{id}/archive", s.ArchiveHandler).Methods("GET")
	api.HandleFunc("/ws", s.WebSocketHandler).Methods("GET")
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, chess.ErrIllegalMove), errors.Is(err, chess.ErrInvalidSquare):
		status = http.StatusBadRequest
	case errors.Is(err, chess.ErrGameOver), errors.Is(err, game.ErrGameActive):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrWrongGame), errors.Is(err, game.ErrNotYourTurn):
		status = http.StatusForbidden
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Service) gameFromRequest(r *http.Request) (*game.Game, error) {
	return s.games.Get(mux.Vars(r)["id"])
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"games":  len(s.games.List()),
	})
}

func (s *Service) JWKSHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.seats.JWKS())
}

type CreateGameRequest struct {
	Seed             *int64 `json:"seed,omitempty"`
	HiddenSides      string `json:"hiddenSides,omitempty"`
	StrictCastling   *bool  `json:"strictCastling,omitempty"`
	InitialSeconds   *int   `json:"initialSeconds,omitempty"`
	IncrementSeconds *int   `json:"incrementSeconds,omitempty"`
}

type Seats struct {
	White string `json:"white"`
	Black string `json:"black"`
}

type CreateGameResponse struct {
	GameID string        `json:"gameId"`
	Seats  Seats         `json:"seats"`
	Game   game.Snapshot `json:"game"`
}

func (s *Service) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	opts := s.games.Defaults()
	opts.Seed = req.Seed
	if req.HiddenSides != "" {
		sides, err := hidden.ParseSides(req.HiddenSides)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.HiddenSides = sides
	}
	if req.StrictCastling != nil {
		opts.Rules.StrictCastling = *req.StrictCastling
	}
	if req.InitialSeconds != nil {
		opts.TimeControl.InitialSeconds = *req.InitialSeconds
	}
	if req.IncrementSeconds != nil {
		opts.TimeControl.IncrementSeconds = *req.IncrementSeconds
	}
	if opts.TimeControl.InitialSeconds < 0 || opts.TimeControl.IncrementSeconds < 0 {
		http.Error(w, "Time control must not be negative", http.StatusBadRequest)
		return
	}

	g, err := s.games.NewGame(opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create game")
		http.Error(w, "Failed to create game", http.StatusInternalServerError)
		return
	}

	var seats Seats
	for _, c := range []chess.Color{chess.White, chess.Black} {
		token, err := s.seats.Issue(g.ID, c)
		if err != nil {
			log.Error().Err(err).Str("gameID", g.ID).Msg("Failed to issue seat token")
			http.Error(w, "Failed to create game", http.StatusInternalServerError)
			return
		}
		if c == chess.White {
			seats.White = token
		} else {
			seats.Black = token
		}
	}

	log.Info().Str("gameID", g.ID).Str("hiddenSides", string(opts.HiddenSides)).Msg("Game created")
	writeJSON(w, http.StatusCreated, CreateGameResponse{GameID: g.ID, Seats: seats, Game: g.Snapshot()})
}

func (s *Service) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	g, err := s.gameFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

// DeleteGameHandler lets either seat drop a finished game from the server.
func (s *Service) DeleteGameHandler(w http.ResponseWriter, r *http.Request) {
	g, err := s.gameFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.seats.FromRequest(r, g.ID); err != nil {
		writeError(w, err)
		return
	}
	if g.State().Status == chess.StatusActive {
		writeError(w, game.ErrGameActive)
		return
	}
	if err := s.games.Delete(g.ID); err != nil {
		writeError(w, err)
		return
	}
	log.Info().Str("gameID", g.ID).Msg("Game deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) LegalMovesHandler(w http.ResponseWriter, r *http.Request) {
	g, err := s.gameFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	from := r.URL.Query().Get("from")
	moves, err := g.LegalMoves(from)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"from":  from,
		"moves": moves,
	})
}

type MakeMoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type MakeMoveResponse struct {
	*game.MoveResult
	Events []GameUpdate `json:"events"`
}

func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	g, err := s.gameFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	claims, err := s.seats.FromRequest(r, g.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	var req MakeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := g.MoveAs(claims.Color, req.From, req.To, req.Promotion)
	if err != nil {
		log.Debug().Err(err).Str("gameID", g.ID).Str("from", req.From).Str("to", req.To).Msg("Invalid move")
		writeError(w, err)
		return
	}

	log.Info().
		Str("gameID", g.ID).
		Str("san", result.SAN).
		Bool("check", result.Check).
		Str("status", string(result.Result)).
		Msg("Move executed successfully")

	s.hub.BroadcastEvents(g.ID, result.Events)
	writeJSON(w, http.StatusOK, MakeMoveResponse{MoveResult: result, Events: updates(g.ID, result.Events)})
}

func (s *Service) ResignGameHandler(w http.ResponseWriter, r *http.Request) {
	g, err := s.gameFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	claims, err := s.seats.FromRequest(r, g.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := g.Resign(claims.Color)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Info().Str("gameID", g.ID).Str("color", claims.Color.String()).Msg("Player resigned")

	s.hub.BroadcastEvents(g.ID, events)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"gameId": g.ID,
		"state":  g.State(),
	})
}

// GetClockHandler reports both clocks and concludes the game if the side to
// move has flagged.
func (s *Service) GetClockHandler(w http.ResponseWriter, r *http.Request) {
	g, err := s.gameFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := g.CheckClock()
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.BroadcastEvents(g.ID, events)

	clock, ok := g.ClockSnapshot()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"gameId": g.ID, "enabled": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"gameId":  g.ID,
		"enabled": true,
		"clock":   clock,
		"state":   g.State(),
	})
}

// HiddenTargetHandler shows a seat its own hidden target. Both targets are
// revealed once the game is over, or to anyone in debug mode.
func (s *Service) HiddenTargetHandler(w http.ResponseWriter, r *http.Request) {
	g, err := s.gameFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if s.config.Development.Debug || g.State().Status != chess.StatusActive {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"targets": []hidden.Snapshot{g.HiddenSnapshot(chess.White), g.HiddenSnapshot(chess.Black)},
		})
		return
	}

	claims, err := s.seats.FromRequest(r, g.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"targets": []hidden.Snapshot{g.HiddenSnapshot(claims.Color)},
	})
}

func updates(gameID string, events []game.Event) []GameUpdate {
	out := make([]GameUpdate, len(events))
	for i, e := range events {
		out[i] = GameUpdate{GameID: gameID, Type: string(e.Type()), Data: e}
	}
	return out
}

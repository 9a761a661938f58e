package main

import (
	"context"
	"crypto/ecdsa"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinabrahms/hidetheking/internal/auth"
	"github.com/justinabrahms/hidetheking/internal/config"
	"github.com/justinabrahms/hidetheking/internal/game"
	"github.com/justinabrahms/hidetheking/internal/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var showHelp bool
	var configPath string
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.StringVar(&configPath, "config", "", "Path to a config file")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Development.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.Development.LogLevel).Msg("Invalid log level")
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Development.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		log.Warn().Msg("Debug mode: hidden targets are visible to everyone")
	}

	key, err := loadSigningKey(cfg.Auth.KeyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load seat signing key")
	}
	seats := auth.NewSeats(key, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	defaults, err := cfg.GameOptions()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid game settings")
	}
	gameLogger := log.Logger.With().Str("component", "game").Logger()
	defaults.Logger = &gameLogger
	games := game.NewManager(defaults)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := web.NewHub()
	go hub.Run(ctx)

	service := web.NewService(games, seats, hub, cfg)

	router := mux.NewRouter()
	service.Routes(router)
	if cfg.Server.StaticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      web.Wrap(router, cfg.Server.AllowedOrigins, log.Logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("hiddenSides", string(defaults.HiddenSides)).
			Bool("strictCastling", defaults.Rules.StrictCastling).
			Int("initialSeconds", defaults.TimeControl.InitialSeconds).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func loadSigningKey(path string) (*ecdsa.PrivateKey, error) {
	if path == "" {
		log.Warn().Msg("No auth.key_file configured, seat tokens will not survive a restart")
		return auth.GenerateKey()
	}
	return auth.LoadKeyFile(path)
}

func showHelpMessage() {
	fmt.Println(`Hide the King server

DESCRIPTION:
    Runs Hide the King chess games: standard chess where each side also
    hides one of its non-pawn pieces, and capturing the opponent's hidden
    piece wins immediately. Serves a REST API and a WebSocket event stream.

USAGE:
    hidetheking-server [OPTIONS]

OPTIONS:
    -config PATH  Read this config file instead of ./config.yaml
    -h, --help    Show this help message

CONFIGURATION:
    config.yaml in the current directory or ./config, overridden by
    HIDETHEKING_* environment variables (e.g. HIDETHEKING_SERVER_PORT).

    Example config.yaml:
        server:
          host: localhost
          port: 8080
          allowed_origins: ["*"]

        auth:
          key_file: seat-key.pem   # from hidetheking-generate-seat-key
          token_ttl: 24h

        game:
          initial_seconds: 300     # 0 disables the clock
          increment_seconds: 0
          hidden_sides: both       # both, white, black or none

        rules:
          strict_castling: true    # no castling out of or through check

        development:
          debug: false             # true exposes both hidden targets
          log_level: info

API ENDPOINTS:
    GET  /api/health                  - Service health check
    GET  /api/.well-known/jwks.json   - Seat token verification key
    GET  /api/games                   - List games (?all=true for finished)
    POST /api/games                   - Create a game, returns both seat tokens
    GET  /api/games/{id}              - Board snapshot
    GET  /api/games/{id}/legal?from=  - Legal destinations of a piece
    POST /api/games/{id}/moves        - Submit a move (seat token)
    POST /api/games/{id}/resign       - Resign (seat token)
    GET  /api/games/{id}/clock        - Clock state, flags the side to move
    GET  /api/games/{id}/hidden       - Own hidden target (seat token)
    GET  /api/games/{id}/archive      - Game record as a CAR file
    GET  /api/ws?gameId=              - WebSocket event stream

EXAMPLES:
    curl -X POST http://localhost:8080/api/games \
      -H "Content-Type: application/json" \
      -d '{"hiddenSides": "both", "initialSeconds": 300}'

    curl -X POST http://localhost:8080/api/games/$GAME/moves \
      -H "Authorization: Bearer $WHITE_TOKEN" \
      -d '{"from": "e2", "to": "e4"}'`)
}

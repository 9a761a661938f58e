package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/justinabrahms/hidetheking/internal/spectate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// watch prints the event stream of one game.
func main() {
	var server, gameID, token string
	flag.StringVar(&server, "server", "http://localhost:8080", "Server base URL")
	flag.StringVar(&gameID, "game", "", "Game ID to watch")
	flag.StringVar(&token, "token", "", "Optional seat token")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if gameID == "" {
		fmt.Fprintln(os.Stderr, "usage: hidetheking-watch -game ID [-server URL] [-token TOKEN]")
		os.Exit(2)
	}

	url, err := spectate.StreamURL(server, gameID, token)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid server URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := spectate.NewClient(url, printUpdate, spectate.WithLogger(log.Logger))
	if err := client.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Stream failed")
	}
}

func printUpdate(u spectate.Update) error {
	switch u.Type {
	case "move":
		var move struct {
			SAN    string `json:"san"`
			Record struct {
				MoveNumber int    `json:"moveNumber"`
				Color      string `json:"color"`
			} `json:"record"`
		}
		if err := json.Unmarshal(u.Data, &move); err != nil {
			return err
		}
		dots := "."
		if move.Record.Color == "black" {
			dots = "..."
		}
		fmt.Printf("%d%s %s\n", move.Record.MoveNumber, dots, move.SAN)
	case "hidden_target":
		var res struct {
			Winner string `json:"winner"`
			Target int    `json:"target"`
		}
		if err := json.Unmarshal(u.Data, &res); err != nil {
			return err
		}
		fmt.Printf("hidden target #%d captured, %s wins\n", res.Target, res.Winner)
	case "status":
		var st struct {
			To     string `json:"to"`
			Method string `json:"method"`
		}
		if err := json.Unmarshal(u.Data, &st); err != nil {
			return err
		}
		fmt.Printf("game over: %s (%s)\n", st.To, st.Method)
	default:
		fmt.Printf("%s: %s\n", u.Type, u.Data)
	}
	return nil
}

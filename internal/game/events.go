package game

import (
	"github.com/justinabrahms/hidetheking/internal/chess"
	"github.com/justinabrahms/hidetheking/internal/hidden"
)

type EventType string

const (
	EventTypeMove         EventType = "move"
	EventTypeCapture      EventType = "capture"
	EventTypeStatus       EventType = "status"
	EventTypeHiddenTarget EventType = "hidden_target"
)

// Event is a domain event produced by a game operation. Callers consume the
// returned list; nothing is pushed through callbacks.
type Event interface {
	Type() EventType
}

// MoveEvent carries the record of an applied move.
type MoveEvent struct {
	SAN    string                 `json:"san"`
	Record *chess.ExecutionRecord `json:"record"`
}

func (MoveEvent) Type() EventType { return EventTypeMove }

// CapturedEvent is emitted for every capture.
type CapturedEvent struct {
	Piece chess.CapturedPiece `json:"piece"`
	By    chess.Color         `json:"by"`
}

func (CapturedEvent) Type() EventType { return EventTypeCapture }

// StatusChangedEvent is emitted when the game leaves the active status.
type StatusChangedEvent struct {
	From   chess.GameStatus `json:"from"`
	To     chess.GameStatus `json:"to"`
	Method chess.Method     `json:"method"`
}

func (StatusChangedEvent) Type() EventType { return EventTypeStatus }

// HiddenTargetResolvedEvent is emitted when a hidden target is captured.
type HiddenTargetResolvedEvent struct {
	hidden.Resolution
}

func (HiddenTargetResolvedEvent) Type() EventType { return EventTypeHiddenTarget }

package chess

import "errors"

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrInvalidState  = errors.New("invalid game state")
	ErrNotFound      = errors.New("not found")
	ErrInvalidSquare = errors.New("invalid square")
	ErrGameOver      = errors.New("game is over")
)

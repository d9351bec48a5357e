package lobby

import "errors"

var (
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrLobbyFull        = errors.New("lobby is full")
	ErrUsernameTaken    = errors.New("username already taken in this lobby")
	ErrNotEnoughPlayers = errors.New("not enough players to start the game")
	ErrCodesExhausted   = errors.New("could not allocate an unused lobby code")
)

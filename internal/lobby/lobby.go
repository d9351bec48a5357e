// Package lobby implements the shared game-lobby domain: code allocation,
// the membership protocol (join, host and imposter assignment), and the
// mapping between lobby entities and their record-store representation.
package lobby

import "time"

const (
	// MaxPlayers is the capacity of a lobby.
	MaxPlayers = 4

	// MinPlayersToStart is the smallest roster a game can start with.
	MinPlayersToStart = 2

	// CodeLength is the length of generated lobby codes.
	CodeLength = 6

	// codeAlphabet is the character set lobby codes are drawn from.
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Role-briefing strings set when a game starts.
const (
	imposterBriefing = "You are the imposter. Try to blend in!"
	playerBriefing   = "You are a regular player. Find the imposter!"
)

// Player is a participant in one lobby. Identity is immutable after join;
// only the score changes during play.
type Player struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Score     int
}

// Lobby is a shared session identified by its short code. Host and imposter
// ids are empty until assigned and, once set, always reference a roster
// member.
type Lobby struct {
	Code            string
	Name            string
	CreatedAt       time.Time
	HostID          string
	ImposterID      string
	ImposterMessage string
	PlayerMessage   string
	Players         []Player
}

// HasPlayerName reports whether name is already taken on the roster.
func (l *Lobby) HasPlayerName(name string) bool {
	for _, p := range l.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

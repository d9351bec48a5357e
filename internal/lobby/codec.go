package lobby

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/moyeshkhanal/partyGames/internal/store"
)

// Record field names. The camelCase shape is the canonical stored form;
// timestamps are RFC 3339 UTC strings at the store boundary.
const (
	fieldLobbyID         = "lobbyId"
	fieldName            = "name"
	fieldCreatedAt       = "createdAt"
	fieldHostID          = "hostPlayerId"
	fieldImposterID      = "imposterPlayerId"
	fieldImposterMessage = "imposterMessage"
	fieldPlayerMessage   = "playerMessage"
	fieldPlayers         = "players"
)

// playerDoc is the stored form of a Player inside the players JSON array.
type playerDoc struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	Score     int    `json:"score"`
}

// EncodeLobby converts a lobby to its flat record representation.
func EncodeLobby(l Lobby) (store.Record, error) {
	players, err := encodePlayers(l.Players)
	if err != nil {
		return nil, err
	}
	return store.Record{
		fieldLobbyID:         l.Code,
		fieldName:            l.Name,
		fieldCreatedAt:       encodeTime(l.CreatedAt),
		fieldHostID:          l.HostID,
		fieldImposterID:      l.ImposterID,
		fieldImposterMessage: l.ImposterMessage,
		fieldPlayerMessage:   l.PlayerMessage,
		fieldPlayers:         players,
	}, nil
}

// DecodeLobby converts a stored record back into a lobby. The host,
// imposter, and message fields are optional (absent before the matching
// lifecycle transition) and decode to empty strings; an absent players
// field decodes to an empty roster.
func DecodeLobby(rec store.Record) (Lobby, error) {
	createdAt, err := decodeTime(rec[fieldCreatedAt])
	if err != nil {
		return Lobby{}, fmt.Errorf("decoding lobby createdAt: %w", err)
	}
	players, err := decodePlayers(rec[fieldPlayers])
	if err != nil {
		return Lobby{}, err
	}
	return Lobby{
		Code:            rec[fieldLobbyID],
		Name:            rec[fieldName],
		CreatedAt:       createdAt,
		HostID:          rec[fieldHostID],
		ImposterID:      rec[fieldImposterID],
		ImposterMessage: rec[fieldImposterMessage],
		PlayerMessage:   rec[fieldPlayerMessage],
		Players:         players,
	}, nil
}

func encodePlayers(players []Player) (string, error) {
	docs := make([]playerDoc, 0, len(players))
	for _, p := range players {
		docs = append(docs, playerDoc{
			PlayerID:  p.ID,
			Name:      p.Name,
			CreatedAt: encodeTime(p.CreatedAt),
			Score:     p.Score,
		})
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("encoding players: %w", err)
	}
	return string(data), nil
}

func decodePlayers(raw string) ([]Player, error) {
	if raw == "" {
		return []Player{}, nil
	}
	var docs []playerDoc
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return nil, fmt.Errorf("decoding players: %w", err)
	}
	players := make([]Player, 0, len(docs))
	for _, d := range docs {
		createdAt, err := decodeTime(d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("decoding player %s createdAt: %w", d.PlayerID, err)
		}
		players = append(players, Player{
			ID:        d.PlayerID,
			Name:      d.Name,
			CreatedAt: createdAt,
			Score:     d.Score,
		})
	}
	return players, nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func decodeTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

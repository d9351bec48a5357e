package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moyeshkhanal/partyGames/internal/lobby"
)

type CreateLobbyRequest struct {
	Name string `json:"name"`
}

type CreateLobbyResponse struct {
	LobbyID string `json:"lobbyId"`
}

type JoinLobbyRequest struct {
	Username string `json:"username"`
	IsHost   bool   `json:"isHost"`
}

type JoinLobbyResponse struct {
	PlayerID string `json:"playerId"`
}

type PlayerInfo struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	Score     int    `json:"score"`
}

type ListPlayersResponse struct {
	Found   bool         `json:"found"`
	Players []PlayerInfo `json:"players"`
}

func handleCreateLobby(svc *lobby.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateLobbyRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		code, err := svc.CreateLobby(r.Context(), lobby.Lobby{Name: req.Name})
		if err != nil {
			writeLobbyError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreateLobbyResponse{LobbyID: code})
	}
}

func handleJoinLobby(svc *lobby.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinLobbyRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" {
			writeError(w, http.StatusBadRequest, "username is required")
			return
		}

		player, err := svc.JoinLobby(r.Context(), chi.URLParam(r, "code"), req.Username, req.IsHost)
		if err != nil {
			writeLobbyError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, JoinLobbyResponse{PlayerID: player.ID})
	}
}

func handleStartGame(svc *lobby.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.StartGame(r.Context(), chi.URLParam(r, "code")); err != nil {
			writeLobbyError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func handleDeleteLobby(svc *lobby.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteLobby(r.Context(), chi.URLParam(r, "code")); err != nil {
			writeLobbyError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func handleListPlayers(svc *lobby.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, found, err := svc.ListPlayers(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeLobbyError(w, err)
			return
		}

		resp := ListPlayersResponse{Found: found, Players: make([]PlayerInfo, 0, len(players))}
		for _, p := range players {
			resp.Players = append(resp.Players, PlayerInfo{
				PlayerID:  p.ID,
				Name:      p.Name,
				CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
				Score:     p.Score,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeLobbyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lobby.ErrLobbyNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, lobby.ErrLobbyFull),
		errors.Is(err, lobby.ErrUsernameTaken),
		errors.Is(err, lobby.ErrNotEnoughPlayers):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, lobby.ErrCodesExhausted):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

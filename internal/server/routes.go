package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/moyeshkhanal/partyGames/internal/lobby"
	"github.com/moyeshkhanal/partyGames/internal/store"
)

func addRoutes(r chi.Router, logger *slog.Logger, svc *lobby.Service, health store.Pinger) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Lobby API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, health))
	r.Get("/ws/echo", handleWSEcho(logger))

	r.Route("/api/lobbies", func(r chi.Router) {
		r.Post("/", handleCreateLobby(svc))
		r.Post("/{code}/join", handleJoinLobby(svc))
		r.Post("/{code}/start", handleStartGame(svc))
		r.Delete("/{code}", handleDeleteLobby(svc))
		r.Get("/{code}/players", handleListPlayers(svc))
	})
}

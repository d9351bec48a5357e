package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Lobby API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Shared game-lobby service: create, join, start, and tear down lobbies.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of the record store.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /ws/echo
	getWSEcho, _ := r.NewOperationContext(http.MethodGet, "/ws/echo")
	getWSEcho.SetSummary("WebSocket echo")
	getWSEcho.SetDescription("Upgrades to a WebSocket connection that echoes messages back.")
	getWSEcho.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSEcho)

	// POST /api/lobbies
	postLobby, _ := r.NewOperationContext(http.MethodPost, "/api/lobbies")
	postLobby.SetSummary("Create lobby")
	postLobby.SetDescription("Creates a lobby under a freshly allocated shareable code.")
	postLobby.AddReqStructure(CreateLobbyRequest{})
	postLobby.AddRespStructure(CreateLobbyResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postLobby.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postLobby.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postLobby)

	// POST /api/lobbies/{code}/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, "/api/lobbies/{code}/join")
	postJoin.SetSummary("Join lobby")
	postJoin.SetDescription("Adds a player to the lobby. A host-flagged join also designates the host.")
	postJoin.AddReqStructure(JoinLobbyRequest{})
	postJoin.AddRespStructure(JoinLobbyResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postJoin)

	// POST /api/lobbies/{code}/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/lobbies/{code}/start")
	postStart.SetSummary("Start game")
	postStart.SetDescription("Assigns the imposter at random and writes the role briefings.")
	postStart.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postStart)

	// DELETE /api/lobbies/{code}
	deleteLobby, _ := r.NewOperationContext(http.MethodDelete, "/api/lobbies/{code}")
	deleteLobby.SetSummary("Delete lobby")
	deleteLobby.SetDescription("Removes the lobby record entirely.")
	deleteLobby.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteLobby.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteLobby)

	// GET /api/lobbies/{code}/players
	getPlayers, _ := r.NewOperationContext(http.MethodGet, "/api/lobbies/{code}/players")
	getPlayers.SetSummary("List players")
	getPlayers.SetDescription("Returns the lobby's roster; found is false when the lobby is absent.")
	getPlayers.AddRespStructure(ListPlayersResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getPlayers)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

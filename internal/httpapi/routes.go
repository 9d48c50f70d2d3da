package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/imposterparty/backend/internal/hub"
	"github.com/imposterparty/backend/internal/ws"
)

// SetupRoutes builds the router with the hub injected. baseURL is the
// public address encoded into join QR codes.
func SetupRoutes(h *hub.Hub, log *zap.Logger, baseURL string) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	r.Get("/lobbies/{code}", LobbyInfo(h))
	r.Get("/lobbies/{code}/qr", LobbyQR(h, baseURL))
	return r
}

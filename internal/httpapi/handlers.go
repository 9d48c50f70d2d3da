package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/imposterparty/backend/internal/game"
	"github.com/imposterparty/backend/internal/hub"
	"github.com/imposterparty/backend/internal/lobby"
)

type lobbyInfo struct {
	Code        string `json:"code"`
	Category    string `json:"category"`
	PlayerCount int    `json:"playerCount"`
	Started     bool   `json:"started"`
}

func findLobby(h *hub.Hub, code string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
	return <-reply
}

// LobbyInfo reports whether a code is live and how full the lobby is, for
// pre-join checks without opening a socket.
func LobbyInfo(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		lb := findLobby(h, code)
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		// The lobby can stop between the registry lookup and here; treat a
		// dead actor like an unknown code rather than blocking.
		reply := make(chan lobby.View, 1)
		select {
		case lb.Inbox() <- lobby.GetState{Reply: reply}:
		case <-lb.Done():
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		var view lobby.View
		select {
		case view = <-reply:
		case <-lb.Done():
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(lobbyInfo{
			Code:        code,
			Category:    view.Category,
			PlayerCount: len(view.Players),
			Started:     view.Phase != game.PhaseWaiting,
		})
	}
}

// LobbyQR renders a QR code for the lobby's join link.
func LobbyQR(h *hub.Hub, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if findLobby(h, code) == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		link := baseURL + "/?code=" + url.QueryEscape(code)
		png, err := qrcode.Encode(link, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to render qr code", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/handler/http/middleware"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/response"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/jwt"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/sse"
)

type SSEHandler interface {
	GetToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type sseHandlerImpl struct {
	hub        *sse.Hub
	jwtService jwt.Service
}

func NewSSEHandler(hub *sse.Hub, jwtService jwt.Service) SSEHandler {
	return &sseHandlerImpl{
		hub:        hub,
		jwtService: jwtService,
	}
}

type sseTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// GetToken issues a short-lived token the dashboard passes as a query
// parameter when opening the stream, since EventSource cannot set headers.
func (h *sseHandlerImpl) GetToken(w http.ResponseWriter, r *http.Request) {
	userID, _, _, _ := middleware.Claims(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, sseTokenResponse{Token: token, ExpiresIn: expiresIn})
}

// Stream pushes live attendance events to a dashboard subscriber.
func (h *sseHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = "all"
	}

	events, cleanup := h.hub.Subscribe(topic)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"user_id\":\"%s\"}\n\n", userID)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zatekoja/claim-appeal/backend/internal/domain/providers"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/observability"
)

const defaultHeartbeatInterval = 30 * time.Second

// ClaimStreamHandler handles Server-Sent Events for newly generated appeals
type ClaimStreamHandler struct {
	eventBus          providers.EventBus
	heartbeatInterval time.Duration
}

// NewClaimStreamHandler creates a new stream handler. eventBus may be nil, in
// which case the stream answers 503.
func NewClaimStreamHandler(eventBus providers.EventBus) *ClaimStreamHandler {
	return &ClaimStreamHandler{
		eventBus:          eventBus,
		heartbeatInterval: defaultHeartbeatInterval,
	}
}

// StreamClaims handles GET /api/claims/stream
func (h *ClaimStreamHandler) StreamClaims(w http.ResponseWriter, r *http.Request) {
	if h.eventBus == nil {
		respondWithError(w, http.StatusServiceUnavailable, "claim stream is not available")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	logger := observability.LoggerFromContext(r.Context())

	eventChan, err := h.eventBus.Subscribe(r.Context(), providers.EventChannelClaimUpdates)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to subscribe to claim updates")
		respondWithError(w, http.StatusServiceUnavailable, "claim stream is not available")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	h.sendEvent(w, "connected", map[string]interface{}{
		"timestamp": time.Now(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Msg("Client disconnected from claim stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func (h *ClaimStreamHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		observability.GetLogger().Error().Err(err).Msg("Failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

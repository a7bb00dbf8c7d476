package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/zatekoja/claim-appeal/backend/internal/domain/entities"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/claim-appeal/backend/pkg/errors"
)

const maxRequestBodyBytes = 1 << 20

// AppealService is the application surface used by AppealHandler.
type AppealService interface {
	CreateAppeal(ctx context.Context, req *entities.AppealRequest) (*entities.AppealResponse, error)
	ListAppeals(ctx context.Context) ([]*entities.Claim, error)
	GetAppeal(ctx context.Context, id int64) (*entities.Claim, error)
}

// AppealHandler handles appeal generation and claim history requests
type AppealHandler struct {
	service AppealService
}

// NewAppealHandler creates a new appeal handler
func NewAppealHandler(service AppealService) *AppealHandler {
	return &AppealHandler{service: service}
}

// GenerateAppeal handles POST /api/generate-appeal
func (h *AppealHandler) GenerateAppeal(w http.ResponseWriter, r *http.Request) {
	var req entities.AppealRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.CreateAppeal(r.Context(), &req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// ListClaims handles GET /api/claims
func (h *AppealHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.service.ListAppeals(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, claims)
}

// GetClaim handles GET /api/claims/{id}
func (h *AppealHandler) GetClaim(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "claim ID must be an integer")
		return
	}

	claim, err := h.service.GetAppeal(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, claim)
}

// Helper functions

func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var message string
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, message)
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, message)
	case apperrors.ErrorTypeExternal:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("Upstream failure")
		respondWithError(w, http.StatusBadGateway, message)
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

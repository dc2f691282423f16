package handlers

import (
	"net/http"

	"github.com/Dosada05/betting-pool/middleware"
	"github.com/Dosada05/betting-pool/services"
)

type ResultHandler struct {
	resultService services.ResultService
}

func NewResultHandler(resultService services.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

func (h *ResultHandler) ComputePoints(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		mapServiceErrorToHTTP(w, r, services.ErrInvalidToken)
		return
	}

	board, err := h.resultService.ComputePoints(r.Context(), user)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, board)
}

func (h *ResultHandler) ScoreBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.resultService.ScoreBoard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, board)
}

func (h *ResultHandler) Results(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		mapServiceErrorToHTTP(w, r, services.ErrInvalidToken)
		return
	}

	result, err := h.resultService.Results(r.Context(), user)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, result)
}

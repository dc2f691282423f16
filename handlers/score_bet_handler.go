package handlers

import (
	"net/http"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/services"
)

type ScoreBetHandler struct {
	betService services.BetService
}

func NewScoreBetHandler(betService services.BetService) *ScoreBetHandler {
	return &ScoreBetHandler{betService: betService}
}

type scoreBetResponse struct {
	Phase    *phaseOut   `json:"phase"`
	Group    *groupOut   `json:"group"`
	ScoreBet scoreBetOut `json:"score_bet"`
}

func (h *ScoreBetHandler) respond(w http.ResponseWriter, r *http.Request, status int, user *models.User, bet *models.ScoreBet, lang models.Lang) {
	phase, group := betContext(bet.Match, lang)
	successResponse(w, r, status, scoreBetResponse{
		Phase:    phase,
		Group:    group,
		ScoreBet: newScoreBetOut(bet, h.betService.IsLocked(user), false, lang),
	})
}

func (h *ScoreBetHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}

	var input services.ScoreBetInput
	if err := readJSON(w, r, &input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	bet, err := h.betService.CreateScoreBet(r.Context(), user, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, user, bet, lang)
}

func (h *ScoreBetHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "betID")
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	bet, err := h.betService.GetScoreBet(r.Context(), user, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, user, bet, lang)
}

func (h *ScoreBetHandler) Modify(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "betID")
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var input services.ModifyScoreBetInput
	if err := readJSON(w, r, &input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	bet, err := h.betService.ModifyScoreBet(r.Context(), user, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, user, bet, lang)
}

func (h *ScoreBetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "betID")
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	bet, err := h.betService.DeleteScoreBet(r.Context(), user, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, user, bet, lang)
}

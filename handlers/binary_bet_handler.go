package handlers

import (
	"net/http"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/services"
)

type BinaryBetHandler struct {
	betService services.BetService
}

func NewBinaryBetHandler(betService services.BetService) *BinaryBetHandler {
	return &BinaryBetHandler{betService: betService}
}

type binaryBetResponse struct {
	Phase     *phaseOut    `json:"phase"`
	Group     *groupOut    `json:"group"`
	BinaryBet binaryBetOut `json:"binary_bet"`
}

func (h *BinaryBetHandler) respond(w http.ResponseWriter, r *http.Request, status int, user *models.User, bet *models.BinaryBet, lang models.Lang) {
	phase, group := betContext(bet.Match, lang)
	successResponse(w, r, status, binaryBetResponse{
		Phase:     phase,
		Group:     group,
		BinaryBet: newBinaryBetOut(bet, h.betService.IsLocked(user), false, lang),
	})
}

func (h *BinaryBetHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}

	var input services.BinaryBetInput
	if err := readJSON(w, r, &input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	bet, err := h.betService.CreateBinaryBet(r.Context(), user, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, user, bet, lang)
}

func (h *BinaryBetHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "betID")
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	bet, err := h.betService.GetBinaryBet(r.Context(), user, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, user, bet, lang)
}

func (h *BinaryBetHandler) Modify(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "betID")
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var input services.ModifyBinaryBetInput
	if err := readJSON(w, r, &input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	bet, err := h.betService.ModifyBinaryBet(r.Context(), user, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, user, bet, lang)
}

func (h *BinaryBetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}
	id, err := uuidParam(r, "betID")
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	bet, err := h.betService.DeleteBinaryBet(r.Context(), user, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, user, bet, lang)
}

package handlers

import (
	"net/http"

	"github.com/Dosada05/betting-pool/middleware"
	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/services"
	"github.com/go-chi/chi/v5"
)

type BetHandler struct {
	betService services.BetService
}

func NewBetHandler(betService services.BetService) *BetHandler {
	return &BetHandler{betService: betService}
}

type allBetsOut struct {
	Phases     []phaseOut          `json:"phases"`
	Groups     []groupWithPhaseOut `json:"groups"`
	ScoreBets  []scoreBetOut       `json:"score_bets"`
	BinaryBets []binaryBetOut      `json:"binary_bets"`
}

type phaseBetsOut struct {
	Phase      phaseOut       `json:"phase"`
	Groups     []groupOut     `json:"groups"`
	ScoreBets  []scoreBetOut  `json:"score_bets"`
	BinaryBets []binaryBetOut `json:"binary_bets"`
}

type groupBetsOut struct {
	Phase      *phaseOut      `json:"phase"`
	Group      groupOut       `json:"group"`
	ScoreBets  []scoreBetOut  `json:"score_bets"`
	BinaryBets []binaryBetOut `json:"binary_bets"`
}

type groupRankOut struct {
	Phase     *phaseOut          `json:"phase"`
	Group     groupOut           `json:"group"`
	GroupRank []groupPositionOut `json:"group_rank"`
}

// requestContext достаёт пользователя и язык запроса; при ошибке ответ уже записан.
func requestContext(w http.ResponseWriter, r *http.Request) (*models.User, models.Lang, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		mapServiceErrorToHTTP(w, r, services.ErrInvalidToken)
		return nil, "", false
	}
	lang, err := langFromRequest(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return nil, "", false
	}
	return user, lang, true
}

func phaseOf(group *models.Group, lang models.Lang) *phaseOut {
	if group.Phase == nil {
		return nil
	}
	p := newPhaseOut(group.Phase, lang)
	return &p
}

func (h *BetHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}

	bets, err := h.betService.GetAllBets(r.Context(), user)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, allBetsOut{
		Phases:     newPhasesOut(bets.Phases, lang),
		Groups:     newGroupsWithPhaseOut(bets.Groups, lang),
		ScoreBets:  newScoreBetsOut(bets.ScoreBets, bets.Locked, true, lang),
		BinaryBets: newBinaryBetsOut(bets.BinaryBets, bets.Locked, true, lang),
	})
}

func (h *BetHandler) GetByPhase(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}

	bets, err := h.betService.GetBetsByPhase(r.Context(), user, chi.URLParam(r, "phaseCode"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, phaseBetsOut{
		Phase:      newPhaseOut(bets.Phase, lang),
		Groups:     newGroupsOut(bets.Groups, lang),
		ScoreBets:  newScoreBetsOut(bets.ScoreBets, bets.Locked, true, lang),
		BinaryBets: newBinaryBetsOut(bets.BinaryBets, bets.Locked, true, lang),
	})
}

func (h *BetHandler) GetByGroup(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}

	bets, err := h.betService.GetBetsByGroup(r.Context(), user, chi.URLParam(r, "groupCode"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, groupBetsOut{
		Phase:      phaseOf(bets.Group, lang),
		Group:      newGroupOut(bets.Group, lang),
		ScoreBets:  newScoreBetsOut(bets.ScoreBets, bets.Locked, false, lang),
		BinaryBets: newBinaryBetsOut(bets.BinaryBets, bets.Locked, false, lang),
	})
}

func (h *BetHandler) GetGroupRank(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}

	rank, err := h.betService.GetGroupRank(r.Context(), user, chi.URLParam(r, "groupCode"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, groupRankOut{
		Phase:     phaseOf(rank.Group, lang),
		Group:     newGroupOut(rank.Group, lang),
		GroupRank: newGroupRankOut(rank.Positions, lang),
	})
}

package handlers

import (
	"net/http"

	"github.com/Dosada05/betting-pool/services"
	"github.com/go-chi/chi/v5"
)

// StructureHandler отдаёт фазы, группы, команды и матчи текущего пользователя.
type StructureHandler struct {
	structureService services.StructureService
}

func NewStructureHandler(structureService services.StructureService) *StructureHandler {
	return &StructureHandler{structureService: structureService}
}

func (h *StructureHandler) ListPhases(w http.ResponseWriter, r *http.Request) {
	lang, err := langFromRequest(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	phases, err := h.structureService.ListPhases(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, map[string]interface{}{"phases": newPhasesOut(phases, lang)})
}

func (h *StructureHandler) GetPhase(w http.ResponseWriter, r *http.Request) {
	lang, err := langFromRequest(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	phase, _, err := h.structureService.ListGroupsByPhase(r.Context(), chi.URLParam(r, "phaseCode"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, map[string]interface{}{"phase": newPhaseOut(phase, lang)})
}

func (h *StructureHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	lang, err := langFromRequest(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	phases, err := h.structureService.ListPhases(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	groups, err := h.structureService.ListGroups(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, map[string]interface{}{
		"phases": newPhasesOut(phases, lang),
		"groups": newGroupsWithPhaseOut(groups, lang),
	})
}

func (h *StructureHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	lang, err := langFromRequest(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	group, err := h.structureService.GetGroup(r.Context(), chi.URLParam(r, "groupCode"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, map[string]interface{}{
		"phase": phaseOf(group, lang),
		"group": newGroupOut(group, lang),
	})
}

func (h *StructureHandler) ListGroupsByPhase(w http.ResponseWriter, r *http.Request) {
	lang, err := langFromRequest(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	phase, groups, err := h.structureService.ListGroupsByPhase(r.Context(), chi.URLParam(r, "phaseCode"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, map[string]interface{}{
		"phase":  newPhaseOut(phase, lang),
		"groups": newGroupsOut(groups, lang),
	})
}

func (h *StructureHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	lang, err := langFromRequest(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	teams, err := h.structureService.ListTeams(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, map[string]interface{}{"teams": newTeamsOut(teams, lang)})
}

// GetTeam принимает UUID или двухбуквенный код команды.
func (h *StructureHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	lang, err := langFromRequest(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	team, err := h.structureService.GetTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, map[string]interface{}{"team": newTeamOut(team, lang)})
}

func (h *StructureHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	user, lang, ok := requestContext(w, r)
	if !ok {
		return
	}

	matches, err := h.structureService.ListMatches(r.Context(), user.ID,
		chi.URLParam(r, "phaseCode"), chi.URLParam(r, "groupCode"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, map[string]interface{}{"matches": newMatchesOut(matches, lang)})
}

package handlers

import (
	"net/http"

	"github.com/Dosada05/betting-pool/services"
)

type RuleHandler struct {
	ruleService services.RuleService
}

func NewRuleHandler(ruleService services.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

// Execute запускает правило {ruleID}. Права проверяет само правило.
func (h *RuleHandler) Execute(w http.ResponseWriter, r *http.Request) {
	user, _, ok := requestContext(w, r)
	if !ok {
		return
	}
	ruleID, err := uuidParam(r, "ruleID")
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := h.ruleService.Execute(r.Context(), user, ruleID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, "")
}

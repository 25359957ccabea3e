package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/repos"
	"github.com/chalodk/lims-sub002/internal/services"
)

type RuleHandler struct {
	log                   *logger.Logger
	interpretationService services.InterpretationService
	appliedRepo           repos.AppliedInterpretationRepo
}

func NewRuleHandler(log *logger.Logger, interpretationService services.InterpretationService, appliedRepo repos.AppliedInterpretationRepo) *RuleHandler {
	return &RuleHandler{
		log:                   log.With("handler", "RuleHandler"),
		interpretationService: interpretationService,
		appliedRepo:           appliedRepo,
	}
}

// GET /api/interpretation-rules?area=...&active=...
func (h *RuleHandler) ListRules(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		return
	}

	var filter repos.RuleFilter
	if area := c.Query("area"); area != "" {
		filter.TestArea = &area
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", err)
			return
		}
		filter.Active = &active
	}

	rules, err := h.interpretationService.GetRules(c.Request.Context(), companyID, filter)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, rules)
}

// POST /api/interpretation-rules
func (h *RuleHandler) CreateRule(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		return
	}

	var spec services.RuleSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	rule, err := h.interpretationService.CreateRule(c.Request.Context(), companyID, spec)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// POST /api/samples/:id/interpretations/evaluate
// Runs every active rule against the sample's results; returns the full
// current interpretation set afterwards.
func (h *RuleHandler) EvaluateSample(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		return
	}
	sampleID, ok := sampleIDFromPath(c)
	if !ok {
		return
	}

	interps, err := h.interpretationService.EvaluateAndApplyRules(c.Request.Context(), companyID, sampleID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, interps)
}

// GET /api/samples/:id/interpretations
func (h *RuleHandler) ListInterpretations(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		return
	}
	sampleID, ok := sampleIDFromPath(c)
	if !ok {
		return
	}

	interps, err := h.appliedRepo.GetBySampleID(c.Request.Context(), nil, companyID, sampleID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, interps)
}

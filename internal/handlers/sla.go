package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/repos"
	"github.com/chalodk/lims-sub002/internal/services"
)

type SLAHandler struct {
	log         *logger.Logger
	slaService  services.SLAService
	companyRepo repos.CompanyRepo
}

func NewSLAHandler(log *logger.Logger, slaService services.SLAService, companyRepo repos.CompanyRepo) *SLAHandler {
	return &SLAHandler{
		log:         log.With("handler", "SLAHandler"),
		slaService:  slaService,
		companyRepo: companyRepo,
	}
}

// GET /api/sla/stats
func (h *SLAHandler) GetStats(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		return
	}
	stats, err := h.slaService.GetSLAStats(c.Request.Context(), companyID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, stats)
}

// GET /api/sla/attention
// Samples at risk or breached, most overdue first.
func (h *SLAHandler) GetAttention(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		return
	}
	samples, err := h.slaService.GetSamplesNeedingAttention(c.Request.Context(), companyID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, samples)
}

// POST /cron/sla/sweep
// Scheduled batch recompute across every tenant. Per-record failures are
// folded into the summary counts; the call itself succeeds once authorized.
func (h *SLAHandler) CronSweep(c *gin.Context) {
	companies, err := h.companyRepo.List(c.Request.Context(), nil)
	if err != nil {
		RespondFromError(c, err)
		return
	}

	summaries := make(map[string]services.SLASweepSummary, len(companies))
	total := services.SLASweepSummary{}
	for _, company := range companies {
		summary := h.slaService.UpdateAllSLAStatuses(c.Request.Context(), company.ID)
		summaries[company.ID.String()] = summary
		total.Updated += summary.Updated
		total.Errors += summary.Errors
	}

	RespondOK(c, gin.H{
		"updated":   total.Updated,
		"errors":    total.Errors,
		"companies": summaries,
	})
}

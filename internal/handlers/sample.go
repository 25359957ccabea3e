package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chalodk/lims-sub002/internal/apperr"
	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/requestdata"
	"github.com/chalodk/lims-sub002/internal/services"
	"github.com/chalodk/lims-sub002/internal/types"
)

type SampleHandler struct {
	log           *logger.Logger
	sampleService services.SampleService
	slaService    services.SLAService
}

func NewSampleHandler(log *logger.Logger, sampleService services.SampleService, slaService services.SLAService) *SampleHandler {
	return &SampleHandler{
		log:           log.With("handler", "SampleHandler"),
		sampleService: sampleService,
		slaService:    slaService,
	}
}

func companyIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.CompanyID == uuid.Nil {
		RespondError(c, http.StatusForbidden, "forbidden", apperr.ErrUnauthorized)
		return uuid.Nil, false
	}
	return rd.CompanyID, true
}

func sampleIDFromPath(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/samples
func (h *SampleHandler) ListSamples(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		return
	}
	samples, err := h.sampleService.ListSamples(c.Request.Context(), companyID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, samples)
}

// POST /api/samples
func (h *SampleHandler) CreateSample(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		return
	}

	var sample types.Sample
	if err := c.ShouldBindJSON(&sample); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	sample.CompanyID = companyID

	created, err := h.sampleService.CreateSample(c.Request.Context(), &sample)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GET /api/samples/:id
func (h *SampleHandler) GetSample(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		return
	}
	sampleID, ok := sampleIDFromPath(c)
	if !ok {
		return
	}

	sample, err := h.sampleService.GetSample(c.Request.Context(), companyID, sampleID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, sample)
}

// PATCH /api/samples/:id
// Field-level edits, gated by the validated-results edit policy.
func (h *SampleHandler) UpdateSample(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		return
	}
	sampleID, ok := sampleIDFromPath(c)
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	if err := h.sampleService.UpdateSampleFields(c.Request.Context(), companyID, sampleID, fields); err != nil {
		if apperr.IsValidation(err) {
			RespondError(c, http.StatusForbidden, "field_locked", err)
			return
		}
		RespondFromError(c, err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}

// GET /api/samples/:id/results
func (h *SampleHandler) ListResults(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		return
	}
	sampleID, ok := sampleIDFromPath(c)
	if !ok {
		return
	}

	results, err := h.sampleService.GetResults(c.Request.Context(), companyID, sampleID)
	if err != nil {
		RespondFromError(c, err)
		return
	}
	RespondOK(c, results)
}

// POST /api/samples/:id/sla/refresh
// On-demand single-record SLA recompute. Failures surface as updated=false,
// never as a hard error.
func (h *SampleHandler) RefreshSLA(c *gin.Context) {
	companyID, ok := companyIDFromContext(c)
	if !ok {
		return
	}
	sampleID, ok := sampleIDFromPath(c)
	if !ok {
		return
	}

	updated := h.slaService.UpdateSampleSLAStatus(c.Request.Context(), companyID, sampleID)
	RespondOK(c, gin.H{"updated": updated})
}

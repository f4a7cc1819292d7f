package handlers

import (
	"context"
	"net/http"
	"time"

	"fieldserve/config"
	technicianRepo "fieldserve/database/repository/technician"
	"fieldserve/middleware"
	"fieldserve/models"
	"fieldserve/services/suggestion"
	"fieldserve/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SuggestionHandler exposes the booking suggestion engine to the portal UI.
type SuggestionHandler struct {
	Engine      suggestion.Engine
	Technicians technicianRepo.TechnicianRepository
	Logger      *zap.Logger
}

// NewSuggestionHandler creates a SuggestionHandler.
func NewSuggestionHandler(engine suggestion.Engine, techs technicianRepo.TechnicianRepository, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{Engine: engine, Technicians: techs, Logger: logger}
}

// Suggest handles POST /api/suggestions. A coordinator is waiting on the
// result, so the whole call runs under a request-scoped deadline.
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	var req models.NewCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	technicians, err := h.eligibleTechnicians(req)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load technicians", err.Error())
		utils.SuggestionRequests.WithLabelValues("error").Inc()
		return
	}

	deadline := time.Duration(config.AppConfig.SuggestDeadlineMs) * time.Millisecond
	if deadline <= 0 {
		deadline = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), deadline)
	defer cancel()

	start := time.Now()
	result, err := h.Engine.Suggest(ctx, req, technicians)
	utils.SuggestionDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if se, ok := err.(*suggestion.SuggestError); ok {
			utils.SuggestionRequests.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": se.Code, "message": se.Message}})
			return
		}
		h.Logger.Error("suggestion request failed",
			zap.String("requestID", middleware.GetRequestID(c)), zap.Error(err))
		utils.SuggestionRequests.WithLabelValues("error").Inc()
		utils.JSONError(c, http.StatusInternalServerError, "Failed to compute suggestions", "Please try again later")
		return
	}

	if ce := h.Logger.Check(zapcore.DebugLevel, "suggestion request served"); ce != nil {
		ce.Write(
			zap.String("requestID", middleware.GetRequestID(c)),
			zap.Int("topPicks", len(result.TopPicks)),
			zap.Int("dayGroups", len(result.ByDay)),
			zap.Bool("estimatesUnavailable", result.EstimatesUnavailable),
			zap.Strings("incomplete", result.IncompleteTechnicians),
		)
	}
	utils.SuggestionRequests.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, result)
}

// eligibleTechnicians resolves the request's technician subset, defaulting to
// all active technicians.
func (h *SuggestionHandler) eligibleTechnicians(req models.NewCaseRequest) ([]models.Technician, error) {
	if len(req.TechnicianIDs) > 0 {
		return h.Technicians.GetByIDs(req.TechnicianIDs)
	}
	return h.Technicians.GetAllActive()
}

package handlers

import (
	"net/http"

	"github.com/AntonioSTO/water-tracking-app/internal/auth"
	"github.com/AntonioSTO/water-tracking-app/internal/dto"
	"github.com/AntonioSTO/water-tracking-app/internal/service"

	"github.com/gin-gonic/gin"
)

// WaterHandler handles the protected water data endpoints.
type WaterHandler struct {
	svc *service.WaterService
}

// NewWaterHandler returns a new WaterHandler.
func NewWaterHandler(svc *service.WaterService) *WaterHandler {
	return &WaterHandler{svc: svc}
}

// GetData godoc
// @Summary      Current water data
// @Tags         water
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.WaterDataResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/data [get]
func (h *WaterHandler) GetData(c *gin.Context) {
	led, err := h.svc.Get(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		if err == service.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.WaterDataResponse{
		Consumed:   led.Consumed,
		Goal:       led.Goal,
		Streak:     led.Streak,
		BestStreak: led.BestStreak,
	})
}

// UpdateData godoc
// @Summary      Update consumed amount and/or goal
// @Tags         water
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.UpdateWaterRequest  true  "Partial update"
// @Success      200   {object}  dto.UpdateWaterResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/data [post]
func (h *WaterHandler) UpdateData(c *gin.Context) {
	var req dto.UpdateWaterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	led, err := h.svc.Update(c.Request.Context(), auth.UserIDFromContext(c), req.Consumed, req.Goal)
	if err != nil {
		if err == service.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.UpdateWaterResponse{
		Message:    "data updated successfully",
		Streak:     led.Streak,
		BestStreak: led.BestStreak,
	})
}

// Statistics godoc
// @Summary      Lifetime statistics
// @Tags         water
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.StatisticsResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/statistics [get]
func (h *WaterHandler) Statistics(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		if err == service.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.StatisticsResponse{
		LifetimeConsumed:        stats.LifetimeConsumed,
		AverageDailyConsumption: stats.AverageDailyConsumption,
		DaysSinceRegistration:   stats.DaysSinceRegistration,
		BestStreak:              stats.BestStreak,
		CurrentGoal:             stats.CurrentGoal,
	})
}

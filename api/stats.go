package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/service/stats"
)

type StatsHandler struct {
	service stats.StatsUseCase
}

func NewStatsHandler(service stats.StatsUseCase) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) Register(router *gin.RouterGroup) {
	router.GET("/stats/revenue", h.revenue)
	router.GET("/stats/occupancy", h.occupancy)
	router.GET("/stats/durations", h.durations)
	router.GET("/stats/peak-hours", h.peakHours)
	router.GET("/stats/top-providers", h.topProviders)
	router.GET("/stats/vehicles", h.vehicles)
	router.GET("/stats/utilization", h.utilization)
	router.GET("/stats/overview", h.overview)
}

func rangeParam(c *gin.Context) (stats.Range, error) {
	value := c.DefaultQuery("range", string(stats.RangeWeek))
	return stats.ParseRange(value)
}

func (h *StatsHandler) revenue(c *gin.Context) {
	rng, err := rangeParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := h.service.Revenue(c.Request.Context(), rng)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *StatsHandler) occupancy(c *gin.Context) {
	result, err := h.service.Occupancy(c.Request.Context(), c.Query("provider_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *StatsHandler) durations(c *gin.Context) {
	result, err := h.service.DurationBuckets(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *StatsHandler) peakHours(c *gin.Context) {
	result, err := h.service.PeakHours(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *StatsHandler) topProviders(c *gin.Context) {
	rng, err := rangeParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(c, domain.Validationf("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	result, err := h.service.TopProviders(c.Request.Context(), rng, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *StatsHandler) vehicles(c *gin.Context) {
	result, err := h.service.VehicleDistribution(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *StatsHandler) utilization(c *gin.Context) {
	rng, err := rangeParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := h.service.Utilization(c.Request.Context(), rng)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"utilization_percent": result})
}

func (h *StatsHandler) overview(c *gin.Context) {
	result, err := h.service.Overview(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

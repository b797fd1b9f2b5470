package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/service/slots"
)

type SlotHandler struct {
	service slots.SlotUseCase
}

type createSlotRequest struct {
	Code              string `json:"code"`
	ProviderID        string `json:"provider_id"`
	VehicleClass      string `json:"vehicle_class"`
	HasEVCharger      bool   `json:"has_ev_charger"`
	PricePerHourCents int64  `json:"price_per_hour_cents"`
}

type updatePriceRequest struct {
	PricePerHourCents int64 `json:"price_per_hour_cents"`
}

type slotResponse struct {
	ID                string `json:"id"`
	Code              string `json:"code"`
	ProviderID        string `json:"provider_id"`
	VehicleClass      string `json:"vehicle_class"`
	HasEVCharger      bool   `json:"has_ev_charger"`
	PricePerHourCents int64  `json:"price_per_hour_cents"`
	Status            string `json:"status"`
}

func toSlotResponse(s *domain.Slot) slotResponse {
	return slotResponse{
		ID:                s.ID,
		Code:              s.Code,
		ProviderID:        s.ProviderID,
		VehicleClass:      string(s.VehicleClass),
		HasEVCharger:      s.HasEVCharger,
		PricePerHourCents: s.PricePerHourCents,
		Status:            string(s.Status),
	}
}

func NewSlotHandler(service slots.SlotUseCase) *SlotHandler {
	return &SlotHandler{service: service}
}

func (h *SlotHandler) Register(router *gin.RouterGroup) {
	router.POST("/slots", h.create)
	router.GET("/slots", h.list)
	router.GET("/slots/:id", h.get)
	router.PUT("/slots/:id/price", h.updatePrice)
	router.POST("/slots/:id/out-of-service", h.outOfService)
	router.POST("/slots/:id/restore", h.restore)
}

func (h *SlotHandler) create(c *gin.Context) {
	var req createSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	slot, err := h.service.CreateSlot(c.Request.Context(), slots.CreateSlotInput{
		Code:              req.Code,
		ProviderID:        req.ProviderID,
		VehicleClass:      domain.VehicleClass(req.VehicleClass),
		HasEVCharger:      req.HasEVCharger,
		PricePerHourCents: req.PricePerHourCents,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSlotResponse(slot))
}

func (h *SlotHandler) list(c *gin.Context) {
	listed, err := h.service.ListSlots(c.Request.Context(), c.Query("provider_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]slotResponse, 0, len(listed))
	for i := range listed {
		resp = append(resp, toSlotResponse(&listed[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SlotHandler) get(c *gin.Context) {
	slot, err := h.service.GetSlot(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSlotResponse(slot))
}

func (h *SlotHandler) updatePrice(c *gin.Context) {
	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	slot, err := h.service.UpdatePrice(c.Request.Context(), c.Param("id"), req.PricePerHourCents)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSlotResponse(slot))
}

func (h *SlotHandler) outOfService(c *gin.Context) {
	slot, err := h.service.SetOutOfService(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSlotResponse(slot))
}

func (h *SlotHandler) restore(c *gin.Context) {
	slot, err := h.service.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSlotResponse(slot))
}

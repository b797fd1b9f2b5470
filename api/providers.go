package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/service/providers"
)

type ProviderHandler struct {
	service providers.ProviderUseCase
}

type registerProviderRequest struct {
	Name         string `json:"name"`
	OwnerContact string `json:"owner_contact"`
}

type setVerificationRequest struct {
	Status string `json:"status"`
}

type providerResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OwnerContact string `json:"owner_contact"`
	Verification string `json:"verification"`
	Online       bool   `json:"online"`
	Bookable     bool   `json:"bookable"`
}

func toProviderResponse(p *domain.Provider) providerResponse {
	return providerResponse{
		ID:           p.ID,
		Name:         p.Name,
		OwnerContact: p.OwnerContact,
		Verification: string(p.Verification),
		Online:       p.Online,
		Bookable:     p.Bookable(),
	}
}

func NewProviderHandler(service providers.ProviderUseCase) *ProviderHandler {
	return &ProviderHandler{service: service}
}

func (h *ProviderHandler) Register(router *gin.RouterGroup) {
	router.POST("/providers", h.register)
	router.GET("/providers", h.list)
	router.GET("/providers/:id", h.get)
	router.PUT("/providers/:id/verification", h.setVerification)
	router.POST("/providers/:id/toggle-online", h.toggleOnline)
}

func (h *ProviderHandler) register(c *gin.Context) {
	var req registerProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	provider, err := h.service.RegisterProvider(c.Request.Context(), providers.RegisterProviderInput{
		Name:         req.Name,
		OwnerContact: req.OwnerContact,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProviderResponse(provider))
}

func (h *ProviderHandler) list(c *gin.Context) {
	listed, err := h.service.ListProviders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]providerResponse, 0, len(listed))
	for i := range listed {
		resp = append(resp, toProviderResponse(&listed[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProviderHandler) get(c *gin.Context) {
	provider, err := h.service.GetProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProviderResponse(provider))
}

func (h *ProviderHandler) setVerification(c *gin.Context) {
	var req setVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	provider, err := h.service.SetVerification(c.Request.Context(), c.Param("id"), domain.VerificationStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProviderResponse(provider))
}

func (h *ProviderHandler) toggleOnline(c *gin.Context) {
	provider, err := h.service.ToggleOnline(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProviderResponse(provider))
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/repository"
	"github.com/parkspot/parkspot/internal/service/disputes"
)

type DisputeHandler struct {
	service disputes.DisputeUseCase
}

type createDisputeRequest struct {
	BookingID    string `json:"booking_id"`
	ReporterID   string `json:"reporter_id"`
	ReporterRole string `json:"reporter_role"`
	Type         string `json:"type"`
	Priority     string `json:"priority"`
	Subject      string `json:"subject"`
}

type resolveDisputeRequest struct {
	Note string `json:"note"`
}

type disputeResponse struct {
	ID             string `json:"id"`
	BookingID      string `json:"booking_id,omitempty"`
	ReporterID     string `json:"reporter_id"`
	ReporterRole   string `json:"reporter_role"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	Priority       string `json:"priority"`
	Subject        string `json:"subject"`
	ResolutionNote string `json:"resolution_note,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func toDisputeResponse(d *domain.Dispute) disputeResponse {
	return disputeResponse{
		ID:             d.ID,
		BookingID:      d.BookingID,
		ReporterID:     d.ReporterID,
		ReporterRole:   string(d.ReporterRole),
		Type:           string(d.Type),
		Status:         string(d.Status),
		Priority:       string(d.Priority),
		Subject:        d.Subject,
		ResolutionNote: d.ResolutionNote,
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      d.UpdatedAt.Format(time.RFC3339),
	}
}

func NewDisputeHandler(service disputes.DisputeUseCase) *DisputeHandler {
	return &DisputeHandler{service: service}
}

func (h *DisputeHandler) Register(router *gin.RouterGroup) {
	router.POST("/disputes", h.create)
	router.GET("/disputes", h.list)
	router.GET("/disputes/:id", h.get)
	router.POST("/disputes/:id/in-progress", h.startProgress)
	router.POST("/disputes/:id/resolve", h.resolve)
	router.POST("/disputes/:id/close", h.close)
}

func (h *DisputeHandler) create(c *gin.Context) {
	var req createDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	dispute, err := h.service.CreateDispute(c.Request.Context(), disputes.CreateDisputeInput{
		BookingID:    req.BookingID,
		ReporterID:   req.ReporterID,
		ReporterRole: domain.ReporterRole(req.ReporterRole),
		Type:         domain.DisputeType(req.Type),
		Priority:     domain.DisputePriority(req.Priority),
		Subject:      req.Subject,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDisputeResponse(dispute))
}

func (h *DisputeHandler) list(c *gin.Context) {
	filter := repository.DisputeFilter{
		Status:   domain.DisputeStatus(c.Query("status")),
		Priority: domain.DisputePriority(c.Query("priority")),
	}
	listed, err := h.service.ListDisputes(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]disputeResponse, 0, len(listed))
	for i := range listed {
		resp = append(resp, toDisputeResponse(&listed[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DisputeHandler) get(c *gin.Context) {
	dispute, err := h.service.GetDispute(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDisputeResponse(dispute))
}

func (h *DisputeHandler) startProgress(c *gin.Context) {
	dispute, err := h.service.StartProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDisputeResponse(dispute))
}

func (h *DisputeHandler) resolve(c *gin.Context) {
	var req resolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	dispute, err := h.service.ResolveDispute(c.Request.Context(), c.Param("id"), req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDisputeResponse(dispute))
}

func (h *DisputeHandler) close(c *gin.Context) {
	dispute, err := h.service.CloseDispute(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDisputeResponse(dispute))
}

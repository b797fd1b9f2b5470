package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/repository"
	"github.com/parkspot/parkspot/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	SlotID        string  `json:"slot_id"`
	DriverID      string  `json:"driver_id"`
	DurationHours float64 `json:"duration_hours"`
	// StartTime is optional RFC3339; defaults to now.
	StartTime string `json:"start_time"`
}

type completeBookingRequest struct {
	EndTime string `json:"end_time"`
}

type topUpRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type registerDriverRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	VehiclePlate string `json:"vehicle_plate"`
}

type bookingResponse struct {
	ID             string `json:"id"`
	SlotID         string `json:"slot_id"`
	DriverID       string `json:"driver_id"`
	Status         string `json:"status"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time,omitempty"`
	AmountCents    int64  `json:"amount_cents"`
	EstimatedCents int64  `json:"estimated_cents"`
}

type walletResponse struct {
	DriverID     string                `json:"driver_id"`
	BalanceCents int64                 `json:"balance_cents"`
	Entries      []walletEntryResponse `json:"entries"`
}

type walletEntryResponse struct {
	ID          string `json:"id"`
	BookingID   string `json:"booking_id,omitempty"`
	Kind        string `json:"kind"`
	AmountCents int64  `json:"amount_cents"`
	OccurredAt  string `json:"occurred_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:             b.ID,
		SlotID:         b.SlotID,
		DriverID:       b.DriverID,
		Status:         string(b.Status),
		StartTime:      b.StartTime.Format(time.RFC3339),
		AmountCents:    b.AmountCents,
		EstimatedCents: b.EstimatedCents,
	}
	if !b.EndTime.IsZero() {
		resp.EndTime = b.EndTime.Format(time.RFC3339)
	}
	return resp
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/bookings", h.create)
	router.GET("/bookings", h.list)
	router.GET("/bookings/:id", h.get)
	router.POST("/bookings/:id/check-in", h.checkIn)
	router.POST("/bookings/:id/complete", h.complete)
	router.DELETE("/bookings/:id", h.cancel)
	router.POST("/drivers", h.registerDriver)
	router.POST("/drivers/:id/topup", h.topUp)
	router.GET("/drivers/:id/wallet", h.wallet)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	var start time.Time
	if req.StartTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			writeError(c, domain.Validationf("start_time must be RFC3339: %v", err))
			return
		}
		start = parsed
	}

	booked, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		SlotID:        req.SlotID,
		DriverID:      req.DriverID,
		DurationHours: req.DurationHours,
		StartTime:     start,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(booked))
}

func (h *BookingHandler) list(c *gin.Context) {
	filter := repository.BookingFilter{
		DriverID:   c.Query("driver_id"),
		ProviderID: c.Query("provider_id"),
		SlotID:     c.Query("slot_id"),
		Status:     domain.BookingStatus(c.Query("status")),
	}
	bookings, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) get(c *gin.Context) {
	booked, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booked))
}

func (h *BookingHandler) checkIn(c *gin.Context) {
	booked, err := h.service.CheckIn(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booked))
}

func (h *BookingHandler) complete(c *gin.Context) {
	var req completeBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	var endTime time.Time
	if req.EndTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			writeError(c, domain.Validationf("end_time must be RFC3339: %v", err))
			return
		}
		endTime = parsed
	}

	booked, err := h.service.CompleteBooking(c.Request.Context(), c.Param("id"), endTime)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booked))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	booked, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(booked))
}

func (h *BookingHandler) registerDriver(c *gin.Context) {
	var req registerDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	driver, err := h.service.RegisterDriver(c.Request.Context(), booking.RegisterDriverInput{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		VehiclePlate: req.VehiclePlate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": driver.ID, "name": driver.Name, "balance_cents": driver.WalletBalanceCents})
}

func (h *BookingHandler) topUp(c *gin.Context) {
	var req topUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	driver, err := h.service.TopUpWallet(c.Request.Context(), c.Param("id"), req.AmountCents)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": driver.ID, "balance_cents": driver.WalletBalanceCents})
}

func (h *BookingHandler) wallet(c *gin.Context) {
	driver, entries, err := h.service.GetWallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := walletResponse{
		DriverID:     driver.ID,
		BalanceCents: driver.WalletBalanceCents,
		Entries:      make([]walletEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, walletEntryResponse{
			ID:          e.ID,
			BookingID:   e.BookingID,
			Kind:        string(e.Kind),
			AmountCents: e.AmountCents,
			OccurredAt:  e.OccurredAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, resp)
}

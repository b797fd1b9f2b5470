package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parkspot/parkspot/internal/service/booking"
	"github.com/parkspot/parkspot/internal/service/disputes"
	"github.com/parkspot/parkspot/internal/service/providers"
	"github.com/parkspot/parkspot/internal/service/slots"
	"github.com/parkspot/parkspot/internal/service/stats"
	"github.com/parkspot/parkspot/internal/store"
	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.New()
	assert.NoError(t, store.SeedDemo(context.Background(), mem))

	slotService := slots.NewSlotService(mem.Slots(), mem.Audit())
	bookingService := booking.NewBookingService(
		mem.Bookings(), mem.Drivers(), mem.Providers(), slotService, 15*time.Minute)
	statsService := stats.NewStatsService(
		mem.Bookings(), mem.Slots(), mem.Providers(), mem.Drivers(), mem.Disputes(), mem.Audit(), 0.25)

	router := NewRouter(Services{
		Slots:     slotService,
		Bookings:  bookingService,
		Stats:     statsService,
		Disputes:  disputes.NewDisputeService(mem.Disputes(), mem.Bookings()),
		Providers: providers.NewProviderService(mem.Providers()),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	assert.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	assert.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// The full booking walkthrough: a driver books the demo slot A-01 for two
// hours at 5000 cents per hour, a second driver is turned away, and completion
// charges 10000 cents and frees the slot.
func TestBookingWalkthrough(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	var slotList []struct {
		ID     string `json:"id"`
		Code   string `json:"code"`
		Status string `json:"status"`
	}
	resp, err := http.Get(base + "/slots?provider_id=provider-demo")
	assert.NoError(t, err)
	decode(t, resp, &slotList)
	assert.Len(t, slotList, 16)
	assert.Equal(t, "A-01", slotList[0].Code)
	slotID := slotList[0].ID

	var booked struct {
		ID             string `json:"id"`
		Status         string `json:"status"`
		EstimatedCents int64  `json:"estimated_cents"`
	}
	start := time.Now().UTC().Truncate(time.Second)
	resp = postJSON(t, base+"/bookings", map[string]interface{}{
		"slot_id":        slotID,
		"driver_id":      "driver-demo-1",
		"duration_hours": 2,
		"start_time":     start.Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &booked)
	assert.Equal(t, "active", booked.Status)
	assert.Equal(t, int64(10000), booked.EstimatedCents)

	// The slot is now occupied and a second driver cannot book it.
	resp = postJSON(t, base+"/bookings", map[string]interface{}{
		"slot_id":        slotID,
		"driver_id":      "driver-demo-2",
		"duration_hours": 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	var occupancy struct {
		Available int `json:"available"`
		Occupied  int `json:"occupied"`
		Total     int `json:"total"`
	}
	resp, err = http.Get(base + "/stats/occupancy")
	assert.NoError(t, err)
	decode(t, resp, &occupancy)
	assert.Equal(t, 1, occupancy.Occupied)
	assert.Equal(t, 15, occupancy.Available)

	var completed struct {
		Status      string `json:"status"`
		AmountCents int64  `json:"amount_cents"`
	}
	resp = postJSON(t, fmt.Sprintf("%s/bookings/%s/complete", base, booked.ID), map[string]interface{}{
		"end_time": start.Add(2 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &completed)
	assert.Equal(t, "completed", completed.Status)
	assert.Equal(t, int64(10000), completed.AmountCents)

	var slot struct {
		Status string `json:"status"`
	}
	resp, err = http.Get(base + "/slots/" + slotID)
	assert.NoError(t, err)
	decode(t, resp, &slot)
	assert.Equal(t, "available", slot.Status)

	var wallet struct {
		BalanceCents int64 `json:"balance_cents"`
		Entries      []struct {
			Kind        string `json:"kind"`
			AmountCents int64  `json:"amount_cents"`
		} `json:"entries"`
	}
	resp, err = http.Get(base + "/drivers/driver-demo-1/wallet")
	assert.NoError(t, err)
	decode(t, resp, &wallet)
	assert.Len(t, wallet.Entries, 1)
	assert.Equal(t, "charge", wallet.Entries[0].Kind)
}

func TestRouter_errorMapping(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	resp, err := http.Get(base + "/bookings/nope")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(base + "/stats/revenue?range=quarter")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, base+"/bookings", map[string]interface{}{
		"slot_id":        "slot-a-01",
		"driver_id":      "driver-demo-2",
		"duration_hours": 100,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
}

func TestRouter_health(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

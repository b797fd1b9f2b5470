package stats

import (
	"context"
	"testing"
	"time"

	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/store"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, mem *store.Store) *StatsService {
	t.Helper()
	return NewStatsService(
		mem.Bookings(), mem.Slots(), mem.Providers(), mem.Drivers(), mem.Disputes(), mem.Audit(),
		0.25,
		WithClock(func() time.Time { return testNow }),
	)
}

func seedCompleted(t *testing.T, mem *store.Store, id, slotID string, end time.Time, hours float64, amountCents int64) {
	t.Helper()
	ctx := context.Background()
	booking := &domain.Booking{
		ID:        id,
		SlotID:    slotID,
		DriverID:  "driver-1",
		StartTime: end.Add(-time.Duration(hours * float64(time.Hour))),
		Status:    domain.BookingStatusActive,
	}
	assert.NoError(t, mem.Bookings().Create(ctx, booking))
	_, err := mem.Bookings().Finish(ctx, id,
		[]domain.BookingStatus{domain.BookingStatusActive}, domain.BookingStatusCompleted, end, amountCents)
	assert.NoError(t, err)
}

func seedSlots(t *testing.T, mem *store.Store) {
	t.Helper()
	ctx := context.Background()
	for _, s := range []*domain.Slot{
		{ID: "slot-1", Code: "A-01", ProviderID: "provider-1", VehicleClass: domain.VehicleClassCar, Status: domain.SlotStatusAvailable},
		{ID: "slot-2", Code: "A-02", ProviderID: "provider-1", VehicleClass: domain.VehicleClassBike, Status: domain.SlotStatusOccupied},
		{ID: "slot-3", Code: "A-03", ProviderID: "provider-2", VehicleClass: domain.VehicleClassCar, Status: domain.SlotStatusReserved},
		{ID: "slot-4", Code: "A-04", ProviderID: "provider-2", VehicleClass: domain.VehicleClassTruck, Status: domain.SlotStatusOutOfService},
	} {
		assert.NoError(t, mem.Slots().Create(ctx, s))
	}
}

func TestRevenue_feePlusEarningsIsTotal(t *testing.T) {
	mem := store.New()
	seedSlots(t, mem)
	service := newService(t, mem)

	seedCompleted(t, mem, "b-1", "slot-1", testNow.Add(-24*time.Hour), 2, 10000)
	seedCompleted(t, mem, "b-2", "slot-2", testNow.Add(-48*time.Hour), 1, 3333)

	revenue, err := service.Revenue(context.Background(), RangeWeek)
	assert.NoError(t, err)
	assert.Equal(t, int64(13333), revenue.TotalCents)
	assert.Equal(t, revenue.TotalCents, revenue.PlatformFeeCents+revenue.ProviderEarningsCents)
	assert.Equal(t, int64(3333), revenue.PlatformFeeCents) // round(13333 * 0.25)
	assert.Len(t, revenue.Trend, 7)

	var trendTotal int64
	for _, p := range revenue.Trend {
		trendTotal += p.RevenueCents
	}
	assert.Equal(t, revenue.TotalCents, trendTotal)
}

func TestRevenue_growthAgainstPreviousWindow(t *testing.T) {
	mem := store.New()
	seedSlots(t, mem)
	service := newService(t, mem)

	// 20000 this week against 10000 the week before is +100%.
	seedCompleted(t, mem, "b-now", "slot-1", testNow.Add(-24*time.Hour), 2, 20000)
	seedCompleted(t, mem, "b-prev", "slot-1", testNow.Add(-9*24*time.Hour), 2, 10000)

	revenue, err := service.Revenue(context.Background(), RangeWeek)
	assert.NoError(t, err)
	assert.Equal(t, int64(20000), revenue.TotalCents)
	assert.InDelta(t, 100.0, revenue.GrowthPercent, 0.001)
}

func TestRevenue_growthZeroWhenNoPrevious(t *testing.T) {
	mem := store.New()
	seedSlots(t, mem)
	service := newService(t, mem)

	seedCompleted(t, mem, "b-1", "slot-1", testNow.Add(-24*time.Hour), 2, 20000)

	revenue, err := service.Revenue(context.Background(), RangeWeek)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, revenue.GrowthPercent)
}

func TestOccupancy_reservedCountsOccupied(t *testing.T) {
	mem := store.New()
	seedSlots(t, mem)
	service := newService(t, mem)

	stats, err := service.Occupancy(context.Background(), "")
	assert.NoError(t, err)
	// Out-of-service slot-4 is excluded from the totals.
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, 2, stats.Occupied)
	assert.Equal(t, 3, stats.Total)

	byProvider, err := service.Occupancy(context.Background(), "provider-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, byProvider.Total)
}

func TestDurationBuckets_lowerInclusiveEdges(t *testing.T) {
	mem := store.New()
	seedSlots(t, mem)
	service := newService(t, mem)

	end := testNow.Add(-time.Hour)
	seedCompleted(t, mem, "b-30m", "slot-1", end, 0.5, 100)
	seedCompleted(t, mem, "b-1h", "slot-1", end, 1, 100) // exactly 1h lands in 1-3h
	seedCompleted(t, mem, "b-3h", "slot-1", end, 3, 100) // exactly 3h lands in 3-6h
	seedCompleted(t, mem, "b-6h", "slot-1", end, 6, 100) // exactly 6h lands in >6h
	seedCompleted(t, mem, "b-8h", "slot-1", end, 8, 100)

	buckets, err := service.DurationBuckets(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []DurationBucket{
		{Label: "<1h", Count: 1},
		{Label: "1-3h", Count: 1},
		{Label: "3-6h", Count: 1},
		{Label: ">6h", Count: 2},
	}, buckets)
}

func TestPeakHours(t *testing.T) {
	mem := store.New()
	seedSlots(t, mem)
	service := newService(t, mem)
	ctx := context.Background()

	morning := time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)
	seedCompleted(t, mem, "b-1", "slot-1", morning.Add(2*time.Hour), 2, 100)
	seedCompleted(t, mem, "b-2", "slot-2", morning.Add(3*time.Hour), 3, 100)
	// Cancelled bookings do not count.
	assert.NoError(t, mem.Bookings().Create(ctx, &domain.Booking{
		ID: "b-3", SlotID: "slot-1", DriverID: "driver-1",
		StartTime: morning, Status: domain.BookingStatusCancelled,
	}))

	buckets, err := service.PeakHours(ctx)
	assert.NoError(t, err)
	assert.Len(t, buckets, 24)
	assert.Equal(t, 2, buckets[9].Bookings)
	assert.Equal(t, 0, buckets[10].Bookings)
}

func TestTopProviders_orderingAndTieBreaks(t *testing.T) {
	mem := store.New()
	seedSlots(t, mem)
	ctx := context.Background()
	assert.NoError(t, mem.Providers().Create(ctx, &domain.Provider{ID: "provider-1", Name: "Hub One", Verification: domain.VerificationApproved}))
	assert.NoError(t, mem.Providers().Create(ctx, &domain.Provider{ID: "provider-2", Name: "Hub Two", Verification: domain.VerificationApproved}))
	service := newService(t, mem)

	end := testNow.Add(-24 * time.Hour)
	seedCompleted(t, mem, "b-1", "slot-1", end, 2, 10000) // provider-1
	seedCompleted(t, mem, "b-2", "slot-2", end, 2, 5000)  // provider-1
	seedCompleted(t, mem, "b-3", "slot-3", end, 2, 20000) // provider-2

	ranks, err := service.TopProviders(ctx, RangeWeek, 5)
	assert.NoError(t, err)
	assert.Len(t, ranks, 2)
	assert.Equal(t, "provider-2", ranks[0].ProviderID)
	assert.Equal(t, int64(20000), ranks[0].RevenueCents)
	assert.Equal(t, "provider-1", ranks[1].ProviderID)
	assert.Equal(t, 2, ranks[1].Bookings)
	assert.Equal(t, "Hub One", ranks[1].Name)
}

func TestVehicleDistribution(t *testing.T) {
	mem := store.New()
	seedSlots(t, mem)
	service := newService(t, mem)

	end := testNow.Add(-24 * time.Hour)
	seedCompleted(t, mem, "b-1", "slot-1", end, 2, 100) // car
	seedCompleted(t, mem, "b-2", "slot-2", end, 2, 100) // bike
	seedCompleted(t, mem, "b-3", "slot-1", end, 2, 100) // car

	shares, err := service.VehicleDistribution(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []VehicleShare{
		{Class: domain.VehicleClassCar, Count: 2},
		{Class: domain.VehicleClassBike, Count: 1},
		{Class: domain.VehicleClassTruck, Count: 0},
	}, shares)
}

func TestUtilization(t *testing.T) {
	mem := store.New()
	ctx := context.Background()
	assert.NoError(t, mem.Slots().Create(ctx, &domain.Slot{
		ID: "slot-1", Code: "A-01", ProviderID: "provider-1",
		VehicleClass: domain.VehicleClassCar, Status: domain.SlotStatusAvailable,
	}))
	service := newService(t, mem)

	// Occupied for 7 of the last 7 days would be 100%; occupied for half the
	// window via audit events should land near 50%.
	windowStart := testNow.Truncate(24 * time.Hour).AddDate(0, 0, -6)
	mid := windowStart.Add(testNow.Sub(windowStart) / 2)
	assert.NoError(t, mem.Audit().Append(ctx, &domain.SlotEvent{
		ID: "e-1", SlotID: "slot-1", From: domain.SlotStatusAvailable, To: domain.SlotStatusOccupied, OccurredAt: mid,
	}))

	utilization, err := service.Utilization(ctx, RangeWeek)
	assert.NoError(t, err)
	assert.InDelta(t, 50.0, utilization, 1.0)
}

func TestOverview(t *testing.T) {
	mem := store.New()
	seedSlots(t, mem)
	ctx := context.Background()
	assert.NoError(t, mem.Providers().Create(ctx, &domain.Provider{ID: "provider-1", Name: "Hub One", Verification: domain.VerificationApproved, Online: true}))
	assert.NoError(t, mem.Providers().Create(ctx, &domain.Provider{ID: "provider-2", Name: "Hub Two", Verification: domain.VerificationPending, Online: true}))
	assert.NoError(t, mem.Drivers().Create(ctx, &domain.Driver{ID: "driver-1", Name: "Asha"}))
	assert.NoError(t, mem.Disputes().Create(ctx, &domain.Dispute{
		ID: "d-1", ReporterID: "driver-1", ReporterRole: domain.ReporterRoleDriver,
		Type: domain.DisputeTypeComplaint, Status: domain.DisputeStatusOpen, Priority: domain.DisputePriorityMedium,
	}))
	service := newService(t, mem)

	seedCompleted(t, mem, "b-1", "slot-1", testNow.Add(-24*time.Hour), 2, 10000)

	overview, err := service.Overview(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, overview.TotalDrivers)
	assert.Equal(t, 1, overview.ActiveProviders)
	assert.Equal(t, int64(10000), overview.MonthRevenueCents)
	assert.Equal(t, 1, overview.OpenDisputes)
}

func TestParseRange(t *testing.T) {
	for _, valid := range []string{"week", "month", "year"} {
		rng, err := ParseRange(valid)
		assert.NoError(t, err)
		assert.Equal(t, Range(valid), rng)
	}
	_, err := ParseRange("quarter")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestTrendBuckets_labels(t *testing.T) {
	// 2025-06-15 is a Sunday, so a week window runs Mon..Sun.
	start, points := trendBuckets(RangeWeek, testNow)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, "Mon", points[0].Bucket)
	assert.Equal(t, "Sun", points[6].Bucket)

	_, months := trendBuckets(RangeYear, testNow)
	assert.Len(t, months, 12)
	assert.Equal(t, "Jul", months[0].Bucket)
	assert.Equal(t, "Jun", months[11].Bucket)
}

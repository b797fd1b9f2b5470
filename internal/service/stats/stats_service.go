package stats

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/repository"
)

type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
)

func ParseRange(s string) (Range, error) {
	switch Range(s) {
	case RangeWeek, RangeMonth, RangeYear:
		return Range(s), nil
	}
	return "", domain.Validationf("unknown range %q, want week, month or year", s)
}

func (r Range) days() int {
	switch r {
	case RangeWeek:
		return 7
	case RangeMonth:
		return 30
	default:
		return 365
	}
}

type TrendPoint struct {
	Bucket       string `json:"bucket"`
	Bookings     int    `json:"bookings"`
	RevenueCents int64  `json:"revenue_cents"`
}

type RevenueStats struct {
	TotalCents            int64        `json:"total_cents"`
	PlatformFeeCents      int64        `json:"platform_fee_cents"`
	ProviderEarningsCents int64        `json:"provider_earnings_cents"`
	GrowthPercent         float64      `json:"growth_percent"`
	AvgDailyCents         int64        `json:"avg_daily_cents"`
	Trend                 []TrendPoint `json:"trend"`
}

type OccupancyStats struct {
	Available int `json:"available"`
	Occupied  int `json:"occupied"`
	Total     int `json:"total"`
}

type DurationBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type HourBucket struct {
	Hour     int `json:"hour"`
	Bookings int `json:"bookings"`
}

type ProviderRank struct {
	ProviderID   string `json:"provider_id"`
	Name         string `json:"name"`
	RevenueCents int64  `json:"revenue_cents"`
	Bookings     int    `json:"bookings"`
}

type VehicleShare struct {
	Class domain.VehicleClass `json:"class"`
	Count int                 `json:"count"`
}

type OverviewStats struct {
	TotalDrivers      int   `json:"total_drivers"`
	ActiveProviders   int   `json:"active_providers"`
	MonthRevenueCents int64 `json:"month_revenue_cents"`
	OpenDisputes      int   `json:"open_disputes"`
}

type StatsUseCase interface {
	Revenue(ctx context.Context, rng Range) (*RevenueStats, error)
	Occupancy(ctx context.Context, providerID string) (*OccupancyStats, error)
	DurationBuckets(ctx context.Context) ([]DurationBucket, error)
	PeakHours(ctx context.Context) ([]HourBucket, error)
	TopProviders(ctx context.Context, rng Range, limit int) ([]ProviderRank, error)
	VehicleDistribution(ctx context.Context) ([]VehicleShare, error)
	Utilization(ctx context.Context, rng Range) (float64, error)
	Overview(ctx context.Context) (*OverviewStats, error)
}

// Cache holds serialized report payloads for a short TTL. Every report is a
// deterministic fold over the store, so a stale hit is bounded by the TTL and
// never wrong in a way a refresh cannot fix.
type Cache interface {
	GetStats(ctx context.Context, key string, out interface{}) (bool, error)
	SetStats(ctx context.Context, key string, value interface{}) error
}

type StatsService struct {
	bookings  repository.BookingRepository
	slots     repository.SlotRepository
	providers repository.ProviderRepository
	drivers   repository.DriverRepository
	disputes  repository.DisputeRepository
	audit     repository.AuditRepository
	cache     Cache
	feeRate   float64
	now       func() time.Time
}

type StatsServiceOption func(*StatsService)

func WithCache(cache Cache) StatsServiceOption {
	return func(s *StatsService) { s.cache = cache }
}

func WithClock(now func() time.Time) StatsServiceOption {
	return func(s *StatsService) { s.now = now }
}

func NewStatsService(
	bookings repository.BookingRepository,
	slots repository.SlotRepository,
	providers repository.ProviderRepository,
	drivers repository.DriverRepository,
	disputes repository.DisputeRepository,
	audit repository.AuditRepository,
	feeRate float64,
	opts ...StatsServiceOption,
) *StatsService {
	service := &StatsService{
		bookings:  bookings,
		slots:     slots,
		providers: providers,
		drivers:   drivers,
		disputes:  disputes,
		audit:     audit,
		feeRate:   feeRate,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *StatsService) Revenue(ctx context.Context, rng Range) (*RevenueStats, error) {
	if s.cache != nil {
		var cached RevenueStats
		if ok, err := s.cache.GetStats(ctx, "revenue:"+string(rng), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	now := s.now().UTC()
	start, buckets := trendBuckets(rng, now)
	completed, err := s.bookings.List(ctx, repository.BookingFilter{Status: domain.BookingStatusCompleted})
	if err != nil {
		return nil, err
	}

	var total int64
	for _, b := range completed {
		if !inWindow(b.EndTime, start, now) {
			continue
		}
		total += b.AmountCents
		idx := bucketIndex(rng, start, b.EndTime)
		if idx >= 0 && idx < len(buckets) {
			buckets[idx].Bookings++
			buckets[idx].RevenueCents += b.AmountCents
		}
	}

	var prevTotal int64
	prevStart := previousWindowStart(rng, start)
	for _, b := range completed {
		if inWindow(b.EndTime, prevStart, start) {
			prevTotal += b.AmountCents
		}
	}

	growth := 0.0
	if prevTotal > 0 {
		growth = float64(total-prevTotal) / float64(prevTotal) * 100
	}

	fee := int64(math.Round(float64(total) * s.feeRate))
	result := &RevenueStats{
		TotalCents:            total,
		PlatformFeeCents:      fee,
		ProviderEarningsCents: total - fee,
		GrowthPercent:         growth,
		AvgDailyCents:         total / int64(rng.days()),
		Trend:                 buckets,
	}

	if s.cache != nil {
		_ = s.cache.SetStats(ctx, "revenue:"+string(rng), result)
	}
	return result, nil
}

// Occupancy counts current slot statuses. A reserved slot is already claimed,
// so it counts as occupied; out-of-service slots are excluded entirely.
func (s *StatsService) Occupancy(ctx context.Context, providerID string) (*OccupancyStats, error) {
	slots, err := s.slots.List(ctx, providerID)
	if err != nil {
		return nil, err
	}

	stats := &OccupancyStats{}
	for _, slot := range slots {
		switch slot.Status {
		case domain.SlotStatusAvailable:
			stats.Available++
		case domain.SlotStatusReserved, domain.SlotStatusOccupied:
			stats.Occupied++
		default:
			continue
		}
		stats.Total++
	}
	return stats, nil
}

var durationBucketLabels = []string{"<1h", "1-3h", "3-6h", ">6h"}

func (s *StatsService) DurationBuckets(ctx context.Context) ([]DurationBucket, error) {
	completed, err := s.bookings.List(ctx, repository.BookingFilter{Status: domain.BookingStatusCompleted})
	if err != nil {
		return nil, err
	}

	buckets := make([]DurationBucket, len(durationBucketLabels))
	for i, label := range durationBucketLabels {
		buckets[i].Label = label
	}
	for _, b := range completed {
		hours := b.EndTime.Sub(b.StartTime).Hours()
		switch {
		case hours < 1:
			buckets[0].Count++
		case hours < 3:
			buckets[1].Count++
		case hours < 6:
			buckets[2].Count++
		default:
			buckets[3].Count++
		}
	}
	return buckets, nil
}

func (s *StatsService) PeakHours(ctx context.Context) ([]HourBucket, error) {
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{})
	if err != nil {
		return nil, err
	}

	buckets := make([]HourBucket, 24)
	for i := range buckets {
		buckets[i].Hour = i
	}
	for _, b := range bookings {
		if b.Status != domain.BookingStatusCompleted && b.Status != domain.BookingStatusActive {
			continue
		}
		buckets[b.StartTime.UTC().Hour()].Bookings++
	}
	return buckets, nil
}

func (s *StatsService) TopProviders(ctx context.Context, rng Range, limit int) ([]ProviderRank, error) {
	now := s.now().UTC()
	start, _ := trendBuckets(rng, now)

	completed, err := s.bookings.List(ctx, repository.BookingFilter{Status: domain.BookingStatusCompleted})
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.List(ctx, "")
	if err != nil {
		return nil, err
	}
	providers, err := s.providers.List(ctx)
	if err != nil {
		return nil, err
	}

	slotProvider := make(map[string]string, len(slots))
	for _, slot := range slots {
		slotProvider[slot.ID] = slot.ProviderID
	}
	names := make(map[string]string, len(providers))
	for _, p := range providers {
		names[p.ID] = p.Name
	}

	byProvider := make(map[string]*ProviderRank)
	for _, b := range completed {
		if !inWindow(b.EndTime, start, now) {
			continue
		}
		providerID := slotProvider[b.SlotID]
		if providerID == "" {
			continue
		}
		rank, ok := byProvider[providerID]
		if !ok {
			rank = &ProviderRank{ProviderID: providerID, Name: names[providerID]}
			byProvider[providerID] = rank
		}
		rank.RevenueCents += b.AmountCents
		rank.Bookings++
	}

	ranks := make([]ProviderRank, 0, len(byProvider))
	for _, rank := range byProvider {
		ranks = append(ranks, *rank)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].RevenueCents != ranks[j].RevenueCents {
			return ranks[i].RevenueCents > ranks[j].RevenueCents
		}
		if ranks[i].Bookings != ranks[j].Bookings {
			return ranks[i].Bookings > ranks[j].Bookings
		}
		return ranks[i].ProviderID < ranks[j].ProviderID
	})
	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks, nil
}

func (s *StatsService) VehicleDistribution(ctx context.Context) ([]VehicleShare, error) {
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{})
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.List(ctx, "")
	if err != nil {
		return nil, err
	}

	classBySlot := make(map[string]domain.VehicleClass, len(slots))
	for _, slot := range slots {
		classBySlot[slot.ID] = slot.VehicleClass
	}

	counts := make(map[domain.VehicleClass]int)
	for _, b := range bookings {
		if b.Status != domain.BookingStatusCompleted && b.Status != domain.BookingStatusActive {
			continue
		}
		if class, ok := classBySlot[b.SlotID]; ok {
			counts[class]++
		}
	}

	shares := make([]VehicleShare, 0, len(counts))
	for _, class := range []domain.VehicleClass{domain.VehicleClassCar, domain.VehicleClassBike, domain.VehicleClassTruck} {
		shares = append(shares, VehicleShare{Class: class, Count: counts[class]})
	}
	return shares, nil
}

// Utilization folds the slot audit log into the share of slot-time spent
// occupied over the window, as a percentage.
func (s *StatsService) Utilization(ctx context.Context, rng Range) (float64, error) {
	now := s.now().UTC()
	start, _ := trendBuckets(rng, now)

	slots, err := s.slots.List(ctx, "")
	if err != nil {
		return 0, err
	}
	if len(slots) == 0 {
		return 0, nil
	}
	events, err := s.audit.List(ctx, "", start)
	if err != nil {
		return 0, err
	}

	bySlot := make(map[string][]domain.SlotEvent)
	for _, e := range events {
		bySlot[e.SlotID] = append(bySlot[e.SlotID], e)
	}

	var occupied time.Duration
	for _, slot := range slots {
		slotEvents := bySlot[slot.ID]
		if len(slotEvents) == 0 {
			if slot.Status == domain.SlotStatusOccupied {
				occupied += now.Sub(start)
			}
			continue
		}
		cursor := start
		status := slotEvents[0].From
		for _, e := range slotEvents {
			if status == domain.SlotStatusOccupied {
				occupied += e.OccurredAt.Sub(cursor)
			}
			cursor = e.OccurredAt
			status = e.To
		}
		if status == domain.SlotStatusOccupied {
			occupied += now.Sub(cursor)
		}
	}

	capacity := now.Sub(start) * time.Duration(len(slots))
	return float64(occupied) / float64(capacity) * 100, nil
}

func (s *StatsService) Overview(ctx context.Context) (*OverviewStats, error) {
	drivers, err := s.drivers.List(ctx)
	if err != nil {
		return nil, err
	}
	providers, err := s.providers.List(ctx)
	if err != nil {
		return nil, err
	}
	open, err := s.disputes.List(ctx, repository.DisputeFilter{Status: domain.DisputeStatusOpen})
	if err != nil {
		return nil, err
	}
	revenue, err := s.Revenue(ctx, RangeMonth)
	if err != nil {
		return nil, err
	}

	active := 0
	for _, p := range providers {
		if p.Bookable() {
			active++
		}
	}
	return &OverviewStats{
		TotalDrivers:      len(drivers),
		ActiveProviders:   active,
		MonthRevenueCents: revenue.TotalCents,
		OpenDisputes:      len(open),
	}, nil
}

// trendBuckets returns the window start and the zeroed trend points for the
// range: daily buckets labelled by weekday for a week, by day of month for a
// month, and monthly buckets for a year.
func trendBuckets(rng Range, now time.Time) (time.Time, []TrendPoint) {
	day := now.Truncate(24 * time.Hour)
	switch rng {
	case RangeWeek:
		start := day.AddDate(0, 0, -6)
		points := make([]TrendPoint, 7)
		for i := range points {
			points[i].Bucket = start.AddDate(0, 0, i).Weekday().String()[:3]
		}
		return start, points
	case RangeMonth:
		start := day.AddDate(0, 0, -29)
		points := make([]TrendPoint, 30)
		for i := range points {
			points[i].Bucket = strconv.Itoa(start.AddDate(0, 0, i).Day())
		}
		return start, points
	default:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
		points := make([]TrendPoint, 12)
		for i := range points {
			points[i].Bucket = start.AddDate(0, i, 0).Month().String()[:3]
		}
		return start, points
	}
}

func bucketIndex(rng Range, start, t time.Time) int {
	switch rng {
	case RangeWeek, RangeMonth:
		return int(t.Sub(start).Hours() / 24)
	default:
		return (t.Year()-start.Year())*12 + int(t.Month()) - int(start.Month())
	}
}

func previousWindowStart(rng Range, start time.Time) time.Time {
	switch rng {
	case RangeWeek:
		return start.AddDate(0, 0, -7)
	case RangeMonth:
		return start.AddDate(0, 0, -30)
	default:
		return start.AddDate(-1, 0, 0)
	}
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

var _ StatsUseCase = (*StatsService)(nil)

package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/parkspot/parkspot/internal/domain"
	"github.com/parkspot/parkspot/internal/kafka"
	"github.com/parkspot/parkspot/internal/repository"
	"github.com/parkspot/parkspot/internal/service/slots"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CheckIn(ctx context.Context, bookingID string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	CompleteBooking(ctx context.Context, bookingID string, endTime time.Time) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error)
	ExpireStaleHolds(ctx context.Context) ([]domain.Booking, error)
	RegisterDriver(ctx context.Context, input RegisterDriverInput) (*domain.Driver, error)
	TopUpWallet(ctx context.Context, driverID string, amountCents int64) (*domain.Driver, error)
	GetWallet(ctx context.Context, driverID string) (*domain.Driver, []domain.WalletEntry, error)
}

// Cache narrows the redis surface this service needs: the cross-instance slot
// lock. The store CAS remains the correctness guard.
type Cache interface {
	AcquireSlotLock(ctx context.Context, slotID string, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, slotID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	SlotID        string  `json:"slot_id"`
	DriverID      string  `json:"driver_id"`
	DurationHours float64 `json:"duration_hours"`
	// StartTime defaults to now when zero.
	StartTime time.Time `json:"start_time"`
}

type RegisterDriverInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	VehiclePlate string `json:"vehicle_plate"`
}

type BookingService struct {
	bookings  repository.BookingRepository
	drivers   repository.DriverRepository
	providers repository.ProviderRepository
	slots     slots.SlotUseCase
	cache     Cache
	producer  Producer

	bookingTopic string
	holdTTL      time.Duration
	occupyOnBook bool
	allowDebt    bool
	now          func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) { s.cache = cache }
}

func WithProducer(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = topic
	}
}

// WithHoldWindow disables occupy-on-book: the slot stays reserved until
// check-in or hold expiry.
func WithHoldWindow() BookingServiceOption {
	return func(s *BookingService) { s.occupyOnBook = false }
}

// WithStrictSettlement makes completion fail with insufficient_funds instead
// of recording the shortfall as wallet debt.
func WithStrictSettlement() BookingServiceOption {
	return func(s *BookingService) { s.allowDebt = false }
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) { s.now = now }
}

func NewBookingService(
	bookings repository.BookingRepository,
	drivers repository.DriverRepository,
	providers repository.ProviderRepository,
	slotSvc slots.SlotUseCase,
	holdTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		drivers:      drivers,
		providers:    providers,
		slots:        slotSvc,
		holdTTL:      holdTTL,
		occupyOnBook: true,
		allowDebt:    true,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.SlotID == "" || input.DriverID == "" {
		return nil, domain.Validationf("slot_id and driver_id are required")
	}
	if input.DurationHours <= 0 {
		return nil, domain.Validationf("duration must be positive")
	}

	slot, err := s.slots.GetSlot(ctx, input.SlotID)
	if err != nil {
		return nil, err
	}
	if slot.Status != domain.SlotStatusAvailable {
		return nil, domain.SlotUnavailablef("slot %s is not available", slot.Code)
	}

	provider, err := s.providers.GetByID(ctx, slot.ProviderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundf("provider %s not found", slot.ProviderID)
		}
		return nil, err
	}
	if !provider.Bookable() {
		return nil, domain.SlotUnavailablef("provider %s is not accepting bookings", provider.Name)
	}

	driver, err := s.drivers.GetByID(ctx, input.DriverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundf("driver %s not found", input.DriverID)
		}
		return nil, err
	}

	duration := time.Duration(input.DurationHours * float64(time.Hour))
	estimated := domain.ChargeCents(slot.PricePerHourCents, duration)
	if driver.WalletBalanceCents < estimated {
		return nil, domain.InsufficientFundsf("wallet balance %d does not cover estimated charge %d", driver.WalletBalanceCents, estimated)
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireSlotLock(ctx, slot.ID, s.holdTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.SlotUnavailablef("slot %s is being booked", slot.Code)
		}
		locked = true
	}

	bookingID := uuid.NewString()
	if _, err := s.slots.Reserve(ctx, slot.ID, bookingID); err != nil {
		if locked {
			_ = s.cache.ReleaseSlotLock(ctx, slot.ID)
		}
		return nil, err
	}

	start := input.StartTime
	if start.IsZero() {
		start = s.now().UTC()
	}
	booking := &domain.Booking{
		ID:             bookingID,
		SlotID:         slot.ID,
		DriverID:       driver.ID,
		StartTime:      start,
		Status:         domain.BookingStatusPending,
		EstimatedCents: estimated,
		HoldExpiresAt:  s.now().UTC().Add(s.holdTTL),
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		if _, relErr := s.slots.Release(ctx, slot.ID); relErr != nil {
			log.Printf("roll back reservation for slot %s: %v", slot.ID, relErr)
		}
		if locked {
			_ = s.cache.ReleaseSlotLock(ctx, slot.ID)
		}
		return nil, err
	}

	if s.occupyOnBook {
		if _, err := s.slots.Occupy(ctx, slot.ID); err != nil {
			s.abortCreate(ctx, booking.ID, slot.ID, locked)
			return nil, err
		}
		updated, err := s.bookings.UpdateStatus(ctx, booking.ID,
			[]domain.BookingStatus{domain.BookingStatusPending}, domain.BookingStatusActive)
		if err != nil {
			s.abortCreate(ctx, booking.ID, slot.ID, locked)
			return nil, err
		}
		booking = updated
		if locked {
			_ = s.cache.ReleaseSlotLock(ctx, slot.ID)
		}
	}

	s.publish(ctx, "booking_created", booking, slot.Code)
	return booking, nil
}

// abortCreate undoes a half-applied create: the slot goes back to available
// and the pending row is cancelled, so no slot stays reserved behind a
// booking that was never returned to the caller.
func (s *BookingService) abortCreate(ctx context.Context, bookingID, slotID string, locked bool) {
	if _, err := s.slots.Release(ctx, slotID); err != nil {
		log.Printf("roll back reservation for slot %s: %v", slotID, err)
	}
	if _, err := s.bookings.UpdateStatus(ctx, bookingID,
		[]domain.BookingStatus{domain.BookingStatusPending}, domain.BookingStatusCancelled); err != nil {
		log.Printf("cancel orphan booking %s: %v", bookingID, err)
	}
	if locked {
		_ = s.cache.ReleaseSlotLock(ctx, slotID)
	}
}

// CheckIn promotes a held booking to active and the slot to occupied. Only
// meaningful when the service runs with a hold window.
func (s *BookingService) CheckIn(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookings.UpdateStatus(ctx, bookingID,
		[]domain.BookingStatus{domain.BookingStatusPending}, domain.BookingStatusActive)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, domain.InvalidTransitionf("booking %s is not pending", bookingID)
		}
		return nil, bookingErr(err, bookingID)
	}

	if _, err := s.slots.Occupy(ctx, booking.SlotID); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.ReleaseSlotLock(ctx, booking.SlotID)
	}

	s.publish(ctx, "booking_checked_in", booking, "")
	return booking, nil
}

// CancelBooking is idempotent: cancelling a booking that already reached a
// terminal state returns it unchanged so client retries stay harmless.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, bookingErr(err, bookingID)
	}
	if current.Terminal() {
		return current, nil
	}

	booking, err := s.bookings.Finish(ctx, bookingID,
		[]domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusActive},
		domain.BookingStatusCancelled, s.now().UTC(), 0)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost a race against completion or expiry; still a no-op success.
			return s.bookings.GetByID(ctx, bookingID)
		}
		return nil, bookingErr(err, bookingID)
	}

	if _, err := s.slots.Release(ctx, booking.SlotID); err != nil {
		log.Printf("release slot %s after cancel: %v", booking.SlotID, err)
	}
	if s.cache != nil {
		_ = s.cache.ReleaseSlotLock(ctx, booking.SlotID)
	}

	s.publish(ctx, "booking_cancelled", booking, "")
	return booking, nil
}

func (s *BookingService) CompleteBooking(ctx context.Context, bookingID string, endTime time.Time) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, bookingErr(err, bookingID)
	}
	if current.Status != domain.BookingStatusActive {
		return nil, domain.InvalidTransitionf("booking %s is %s, only active bookings can be completed", bookingID, current.Status)
	}
	if endTime.IsZero() {
		endTime = s.now().UTC()
	}
	if endTime.Before(current.StartTime) {
		return nil, domain.Validationf("end_time precedes the booking start")
	}

	slot, err := s.slots.GetSlot(ctx, current.SlotID)
	if err != nil {
		return nil, err
	}
	amount := domain.ChargeCents(slot.PricePerHourCents, endTime.Sub(current.StartTime))

	if !s.allowDebt {
		driver, err := s.drivers.GetByID(ctx, current.DriverID)
		if err != nil {
			return nil, bookingErr(err, current.DriverID)
		}
		if driver.WalletBalanceCents < amount {
			return nil, domain.InsufficientFundsf("wallet balance %d does not cover charge %d", driver.WalletBalanceCents, amount)
		}
	}

	booking, err := s.bookings.Finish(ctx, bookingID,
		[]domain.BookingStatus{domain.BookingStatusActive}, domain.BookingStatusCompleted, endTime, amount)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, domain.InvalidTransitionf("booking %s is no longer active", bookingID)
		}
		return nil, bookingErr(err, bookingID)
	}

	s.settle(ctx, booking, amount)

	if _, err := s.slots.Release(ctx, booking.SlotID); err != nil {
		log.Printf("release slot %s after completion: %v", booking.SlotID, err)
	}

	s.publish(ctx, "booking_completed", booking, slot.Code)
	return booking, nil
}

// settle debits what the wallet covers and records the remainder as debt.
// Under strict settlement the balance was checked before the booking was
// finished, so debt entries only appear if a concurrent debit raced us.
func (s *BookingService) settle(ctx context.Context, booking *domain.Booking, amount int64) {
	if amount == 0 {
		return
	}
	debited, err := s.drivers.DebitUpTo(ctx, booking.DriverID, amount)
	if err != nil {
		log.Printf("debit wallet for booking %s: %v", booking.ID, err)
		return
	}
	if debited > 0 {
		s.appendWalletEntry(ctx, booking, domain.WalletEntryCharge, -debited)
	}
	if shortfall := amount - debited; shortfall > 0 {
		s.appendWalletEntry(ctx, booking, domain.WalletEntryDebt, -shortfall)
		log.Printf("booking %s completed with outstanding debt of %d cents", booking.ID, shortfall)
	}
}

func (s *BookingService) appendWalletEntry(ctx context.Context, booking *domain.Booking, kind domain.WalletEntryKind, amount int64) {
	entry := &domain.WalletEntry{
		ID:          uuid.NewString(),
		DriverID:    booking.DriverID,
		BookingID:   booking.ID,
		Kind:        kind,
		AmountCents: amount,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.drivers.AppendWalletEntry(ctx, entry); err != nil {
		log.Printf("append wallet entry for booking %s: %v", booking.ID, err)
	}
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, bookingErr(err, id)
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	if filter.Status != "" && !domain.ValidBookingStatus(filter.Status) {
		return nil, domain.Validationf("unknown booking status %q", filter.Status)
	}
	return s.bookings.List(ctx, filter)
}

// ExpireStaleHolds releases slots whose pending bookings never progressed to
// occupied within the hold window. Run periodically by the worker.
func (s *BookingService) ExpireStaleHolds(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpirePendingBefore(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}
	for _, b := range expired {
		if _, err := s.slots.Release(ctx, b.SlotID); err != nil {
			log.Printf("release slot %s after hold expiry: %v", b.SlotID, err)
		}
		if s.cache != nil {
			_ = s.cache.ReleaseSlotLock(ctx, b.SlotID)
		}
		s.publish(ctx, "booking_expired", &b, "")
	}
	return expired, nil
}

func (s *BookingService) RegisterDriver(ctx context.Context, input RegisterDriverInput) (*domain.Driver, error) {
	if input.Name == "" {
		return nil, domain.Validationf("driver name is required")
	}
	driver := &domain.Driver{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		VehiclePlate: input.VehiclePlate,
	}
	if err := s.drivers.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

func (s *BookingService) TopUpWallet(ctx context.Context, driverID string, amountCents int64) (*domain.Driver, error) {
	if amountCents <= 0 {
		return nil, domain.Validationf("top-up amount must be positive")
	}
	driver, err := s.drivers.Credit(ctx, driverID, amountCents)
	if err != nil {
		return nil, bookingErr(err, driverID)
	}
	entry := &domain.WalletEntry{
		ID:          uuid.NewString(),
		DriverID:    driverID,
		Kind:        domain.WalletEntryTopUp,
		AmountCents: amountCents,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.drivers.AppendWalletEntry(ctx, entry); err != nil {
		log.Printf("append top-up entry for driver %s: %v", driverID, err)
	}
	return driver, nil
}

func (s *BookingService) GetWallet(ctx context.Context, driverID string) (*domain.Driver, []domain.WalletEntry, error) {
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, nil, bookingErr(err, driverID)
	}
	entries, err := s.drivers.ListWalletEntries(ctx, driverID)
	if err != nil {
		return nil, nil, err
	}
	return driver, entries, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, slotCode string) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:           eventType,
		BookingID:      booking.ID,
		SlotID:         booking.SlotID,
		SlotCode:       slotCode,
		DriverID:       booking.DriverID,
		Status:         string(booking.Status),
		AmountCents:    booking.AmountCents,
		EstimatedCents: booking.EstimatedCents,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		log.Printf("publish %s event for booking %s: %v", eventType, booking.ID, err)
	}
}

func bookingErr(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFoundf("%s not found", id)
	}
	return err
}

var _ BookingUseCase = (*BookingService)(nil)

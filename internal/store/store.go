// Package store is the in-memory entity store. It implements the repository
// interfaces so services run identically against it or against Postgres.
// Records handed out are copies; the maps behind the mutexes are the single
// source of truth and every status change goes through a compare-and-swap.
package store

import "github.com/parkspot/parkspot/internal/repository"

type Store struct {
	slots     *SlotStore
	bookings  *BookingStore
	drivers   *DriverStore
	providers *ProviderStore
	disputes  *DisputeStore
	audit     *AuditLog
}

func New() *Store {
	slots := NewSlotStore()
	return &Store{
		slots:     slots,
		bookings:  NewBookingStore(slots),
		drivers:   NewDriverStore(),
		providers: NewProviderStore(),
		disputes:  NewDisputeStore(),
		audit:     NewAuditLog(),
	}
}

func (s *Store) Slots() repository.SlotRepository         { return s.slots }
func (s *Store) Bookings() repository.BookingRepository   { return s.bookings }
func (s *Store) Drivers() repository.DriverRepository     { return s.drivers }
func (s *Store) Providers() repository.ProviderRepository { return s.providers }
func (s *Store) Disputes() repository.DisputeRepository   { return s.disputes }
func (s *Store) Audit() repository.AuditRepository        { return s.audit }

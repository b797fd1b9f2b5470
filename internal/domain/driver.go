package domain

import "time"

type Driver struct {
	ID                 string
	Name               string
	Email              string
	Phone              string
	VehiclePlate       string
	WalletBalanceCents int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type WalletEntryKind string

const (
	WalletEntryTopUp  WalletEntryKind = "topup"
	WalletEntryCharge WalletEntryKind = "charge"
	WalletEntryRefund WalletEntryKind = "refund"
	WalletEntryDebt   WalletEntryKind = "debt"
)

// WalletEntry is one line of a driver's wallet history. AmountCents is signed:
// credits positive, charges negative. A debt entry records the shortfall when a
// booking completes with an insufficient balance.
type WalletEntry struct {
	ID          string
	DriverID    string
	BookingID   string
	Kind        WalletEntryKind
	AmountCents int64
	OccurredAt  time.Time
}

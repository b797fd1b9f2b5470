package domain

import "time"

type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "pending"
	VerificationApproved  VerificationStatus = "approved"
	VerificationRejected  VerificationStatus = "rejected"
	VerificationSuspended VerificationStatus = "suspended"
)

type Provider struct {
	ID           string
	Name         string
	OwnerContact string
	Verification VerificationStatus
	Online       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func ValidVerificationStatus(s VerificationStatus) bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected, VerificationSuspended:
		return true
	}
	return false
}

// Bookable reports whether new reservations may be taken against the
// provider's slots. In-flight bookings are unaffected by this gate.
func (p *Provider) Bookable() bool {
	return p.Verification == VerificationApproved && p.Online
}

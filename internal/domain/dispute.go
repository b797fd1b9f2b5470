package domain

import "time"

type DisputeType string

const (
	DisputeTypeRefund    DisputeType = "refund"
	DisputeTypeComplaint DisputeType = "complaint"
	DisputeTypeTechnical DisputeType = "technical"
	DisputeTypePayment   DisputeType = "payment"
)

type DisputeStatus string

const (
	DisputeStatusOpen       DisputeStatus = "open"
	DisputeStatusInProgress DisputeStatus = "in_progress"
	DisputeStatusResolved   DisputeStatus = "resolved"
	DisputeStatusClosed     DisputeStatus = "closed"
)

type DisputePriority string

const (
	DisputePriorityLow    DisputePriority = "low"
	DisputePriorityMedium DisputePriority = "medium"
	DisputePriorityHigh   DisputePriority = "high"
	DisputePriorityUrgent DisputePriority = "urgent"
)

type ReporterRole string

const (
	ReporterRoleDriver   ReporterRole = "driver"
	ReporterRoleProvider ReporterRole = "provider"
)

type Dispute struct {
	ID             string
	BookingID      string // optional
	ReporterID     string
	ReporterRole   ReporterRole
	Type           DisputeType
	Status         DisputeStatus
	Priority       DisputePriority
	Subject        string
	ResolutionNote string // set only on resolve
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func ValidDisputeType(t DisputeType) bool {
	switch t {
	case DisputeTypeRefund, DisputeTypeComplaint, DisputeTypeTechnical, DisputeTypePayment:
		return true
	}
	return false
}

func ValidDisputeStatus(s DisputeStatus) bool {
	switch s {
	case DisputeStatusOpen, DisputeStatusInProgress, DisputeStatusResolved, DisputeStatusClosed:
		return true
	}
	return false
}

func ValidDisputePriority(p DisputePriority) bool {
	switch p {
	case DisputePriorityLow, DisputePriorityMedium, DisputePriorityHigh, DisputePriorityUrgent:
		return true
	}
	return false
}

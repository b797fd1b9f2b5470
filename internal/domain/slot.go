package domain

import "time"

type SlotStatus string

const (
	SlotStatusAvailable    SlotStatus = "available"
	SlotStatusReserved     SlotStatus = "reserved"
	SlotStatusOccupied     SlotStatus = "occupied"
	SlotStatusOutOfService SlotStatus = "out_of_service"
)

type VehicleClass string

const (
	VehicleClassCar   VehicleClass = "car"
	VehicleClassBike  VehicleClass = "bike"
	VehicleClassTruck VehicleClass = "truck"
)

type Slot struct {
	ID                string
	Code              string
	ProviderID        string
	VehicleClass      VehicleClass
	HasEVCharger      bool
	PricePerHourCents int64
	Status            SlotStatus
	ActiveBookingID   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func ValidSlotStatus(s SlotStatus) bool {
	switch s {
	case SlotStatusAvailable, SlotStatusReserved, SlotStatusOccupied, SlotStatusOutOfService:
		return true
	}
	return false
}

func ValidVehicleClass(v VehicleClass) bool {
	switch v {
	case VehicleClassCar, VehicleClassBike, VehicleClassTruck:
		return true
	}
	return false
}

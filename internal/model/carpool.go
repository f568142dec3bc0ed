package model

import "time"

type Carpool struct {
	ID                string     `json:"id"`
	TeamID            string     `json:"team_id"`
	DriverID          string     `json:"driver_id"`
	EventID           *string    `json:"event_id,omitempty"`
	DepartureLocation string     `json:"departure_location" validate:"required"`
	DepartureTime     time.Time  `json:"departure_time" validate:"required"`
	ReturnTime        *time.Time `json:"return_time,omitempty"`
	AvailableSeats    int        `json:"available_seats" validate:"required,gt=0"`
	Notes             *string    `json:"notes,omitempty"`
}

type CarpoolRider struct {
	ID             string  `json:"id"`
	CarpoolID      string  `json:"carpool_id"`
	RiderID        string  `json:"rider_id"`
	PickupLocation *string `json:"pickup_location,omitempty"`
}

// VehicleClass is derived from seat capacity: anything over 8 seats is
// considered a bus.
type VehicleClass string

const (
	VehicleCar VehicleClass = "car"
	VehicleBus VehicleClass = "bus"

	busSeatThreshold = 8
)

func (c *Carpool) Class() VehicleClass {
	if c.AvailableSeats > busSeatThreshold {
		return VehicleBus
	}
	return VehicleCar
}

// Eligibility classifies the current user's relation to a carpool. The driver
// is never counted as a rider.
type Eligibility string

const (
	EligibilityDriver  Eligibility = "driver"
	EligibilityRiding  Eligibility = "riding"
	EligibilityCanJoin Eligibility = "can_join"
	EligibilityFull    Eligibility = "full"
)

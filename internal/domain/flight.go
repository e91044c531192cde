package domain

import (
	"fmt"
	"time"
)

type Flight struct {
	ID            int64     `json:"id"`
	CompanyID     int64     `json:"company_id"`
	OriginID      int64     `json:"origin_id"`
	DestinationID int64     `json:"destination_id"`
	Departure     time.Time `json:"departure_time"`
	Landing       time.Time `json:"landing_time"`
	Capacity      int       `json:"capacity"`
	Booked        int       `json:"booked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Available is the number of seats that can still be booked.
func (f Flight) Available() int {
	if f.Booked >= f.Capacity {
		return 0
	}
	return f.Capacity - f.Booked
}

// Validate checks the flight invariants. The returned error wraps ErrInvalidFlight.
func (f Flight) Validate() error {
	switch {
	case f.OriginID <= 0 || f.DestinationID <= 0:
		return fmt.Errorf("%w: origin and destination countries are required", ErrInvalidFlight)
	case f.OriginID == f.DestinationID:
		return fmt.Errorf("%w: origin country must differ from destination country", ErrInvalidFlight)
	case f.Departure.IsZero() || f.Landing.IsZero():
		return fmt.Errorf("%w: departure and landing times are required", ErrInvalidFlight)
	case !f.Departure.Before(f.Landing):
		return fmt.Errorf("%w: departure must be before landing", ErrInvalidFlight)
	case f.Capacity < 1:
		return fmt.Errorf("%w: capacity must be at least 1", ErrInvalidFlight)
	}
	return nil
}

// FlightPatch holds the fields of a partial flight update. Nil fields are left unchanged.
type FlightPatch struct {
	OriginID      *int64
	DestinationID *int64
	Departure     *time.Time
	Landing       *time.Time
	Capacity      *int
}

// Apply returns a copy of f with the patch applied.
func (p FlightPatch) Apply(f Flight) Flight {
	if p.OriginID != nil {
		f.OriginID = *p.OriginID
	}
	if p.DestinationID != nil {
		f.DestinationID = *p.DestinationID
	}
	if p.Departure != nil {
		f.Departure = *p.Departure
	}
	if p.Landing != nil {
		f.Landing = *p.Landing
	}
	if p.Capacity != nil {
		f.Capacity = *p.Capacity
	}
	return f
}

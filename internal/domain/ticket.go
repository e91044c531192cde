package domain

import "time"

type TicketStatus string

const (
	TicketStatusBooked   TicketStatus = "Booked"
	TicketStatusCanceled TicketStatus = "Canceled"
)

// Ticket is a seat reservation. FlightID is zero once the flight has been removed.
type Ticket struct {
	ID         int64        `json:"id"`
	FlightID   int64        `json:"flight_id"`
	CustomerID int64        `json:"customer_id"`
	Status     TicketStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (t Ticket) IsBooked() bool {
	return t.Status == TicketStatusBooked
}

package inventory

import (
	"context"

	"github.com/Domenick1991/flightdesk/internal/domain"
)

// Ledger is the single authority for admitting or rejecting a reservation.
// Implementations must make TryReserve atomic per flight: two callers racing
// for the last seat never both succeed.
type Ledger interface {
	TryReserve(ctx context.Context, flightID, customerID int64) (*domain.Ticket, error)
	Cancel(ctx context.Context, ticketID int64, requester domain.Principal) (*domain.Ticket, error)
}

// Admit decides whether one more ticket fits on a flight that currently has
// booked Booked tickets. hasBooking reports whether the customer already holds
// a Booked ticket on that flight.
func Admit(capacity, booked int, hasBooking bool) error {
	if hasBooking {
		return domain.ErrDuplicateBooking
	}
	if booked+1 > capacity {
		return domain.ErrCapacityExceeded
	}
	return nil
}

// CanCancel reports whether requester may cancel ticket.
func CanCancel(ticket domain.Ticket, requester domain.Principal) bool {
	return requester.IsAdmin() || ticket.CustomerID == requester.ID()
}

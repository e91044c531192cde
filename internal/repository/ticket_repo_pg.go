package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	inventory.Ledger
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Ticket, error)
}

type PGTicketRepository struct {
	pool *pgxpool.Pool
	q    querier
}

func NewTicketRepository(pool *pgxpool.Pool) *PGTicketRepository {
	return &PGTicketRepository{pool: pool, q: querier{pool: pool}}
}

const (
	ticketColumns = `id, flight_id, customer_id, status, created_at, updated_at`
	selectTicket  = `SELECT ` + ticketColumns + ` FROM tickets`
)

// TryReserve admits one ticket under the flight row lock: the count, the
// duplicate check and the insert commit together or not at all.
func (r *PGTicketRepository) TryReserve(ctx context.Context, flightID, customerID int64) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := withTx(ctx, r.pool, func(ctx context.Context) error {
		capacity, err := lockFlight(ctx, r.q, flightID)
		if err != nil {
			return err
		}

		var (
			booked     int
			hasBooking bool
		)
		if err := r.q.queryRow(ctx, `SELECT COUNT(*), COALESCE(BOOL_OR(customer_id = $2), false)
			FROM tickets WHERE flight_id = $1 AND status = $3`, flightID, customerID, domain.TicketStatusBooked).
			Scan(&booked, &hasBooking); err != nil {
			return fmt.Errorf("count booked tickets: %w", err)
		}

		if err := inventory.Admit(capacity, booked, hasBooking); err != nil {
			return err
		}

		ticket, err = scanTicket(r.q.queryRow(ctx, `INSERT INTO tickets (flight_id, customer_id, status)
			VALUES ($1, $2, $3)
			RETURNING `+ticketColumns, flightID, customerID, domain.TicketStatusBooked))
		if err != nil {
			if _, ok := uniqueViolation(err); ok {
				return domain.ErrDuplicateBooking
			}
			if isForeignKeyViolation(err) {
				return domain.ErrIdentityNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// Cancel moves a Booked ticket to Canceled. Canceled tickets are returned as is.
func (r *PGTicketRepository) Cancel(ctx context.Context, ticketID int64, requester domain.Principal) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := withTx(ctx, r.pool, func(ctx context.Context) error {
		current, err := scanTicket(r.q.queryRow(ctx, selectTicket+` WHERE id = $1 FOR UPDATE`, ticketID))
		if err != nil {
			return err
		}
		if !inventory.CanCancel(*current, requester) {
			return domain.ErrForbidden
		}
		if !current.IsBooked() {
			ticket = current
			return nil
		}

		ticket, err = scanTicket(r.q.queryRow(ctx, `UPDATE tickets SET status = $1, updated_at = now()
			WHERE id = $2
			RETURNING `+ticketColumns, domain.TicketStatusCanceled, ticketID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *PGTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return scanTicket(r.q.queryRow(ctx, selectTicket+` WHERE id = $1`, id))
}

func (r *PGTicketRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Ticket, error) {
	rows, err := r.q.query(ctx, selectTicket+` WHERE customer_id = $1 ORDER BY id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t        domain.Ticket
		flightID *int64
	)
	if err := row.Scan(&t.ID, &flightID, &t.CustomerID, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("scan ticket: %w", err)
	}
	if flightID != nil {
		t.FlightID = *flightID
	}
	return &t, nil
}

var _ TicketRepository = (*PGTicketRepository)(nil)

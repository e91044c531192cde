package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	ListByCompany(ctx context.Context, companyID int64) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, id int64, patch domain.FlightPatch) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) (int, error)
}

type PGFlightRepository struct {
	pool *pgxpool.Pool
	q    querier
}

func NewFlightRepository(pool *pgxpool.Pool) *PGFlightRepository {
	return &PGFlightRepository{pool: pool, q: querier{pool: pool}}
}

const selectFlight = `SELECT f.id, f.company_id, f.origin_id, f.destination_id, f.departure_time, f.landing_time, f.capacity,
	(SELECT COUNT(*) FROM tickets t WHERE t.flight_id = f.id AND t.status = 'Booked'),
	f.created_at, f.updated_at
FROM flights f`

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	return r.list(ctx, selectFlight+` ORDER BY f.departure_time, f.id`)
}

func (r *PGFlightRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.Flight, error) {
	return r.list(ctx, selectFlight+` WHERE f.company_id = $1 ORDER BY f.departure_time, f.id`, companyID)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.q.queryRow(ctx, selectFlight+` WHERE f.id = $1`, id))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	err := r.q.queryRow(ctx, `INSERT INTO flights (company_id, origin_id, destination_id, departure_time, landing_time, capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		flight.CompanyID, flight.OriginID, flight.DestinationID, flight.Departure, flight.Landing, flight.Capacity).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
	if err != nil {
		if c, ok := foreignKeyViolation(err); ok {
			if c == "flights_company_id_fkey" {
				return domain.ErrCompanyNotFound
			}
			return fmt.Errorf("%w: unknown country", domain.ErrInvalidFlight)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidFlight, err)
		}
		return fmt.Errorf("insert flight: %w", err)
	}
	flight.Booked = 0
	return nil
}

// Update applies patch under the flight row lock, so capacity cannot drop
// below the Booked count while reservations are in flight.
func (r *PGFlightRepository) Update(ctx context.Context, id int64, patch domain.FlightPatch) (*domain.Flight, error) {
	var updated domain.Flight
	err := withTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := lockFlight(ctx, r.q, id); err != nil {
			return err
		}
		current, err := scanFlight(r.q.queryRow(ctx, selectFlight+` WHERE f.id = $1`, id))
		if err != nil {
			return err
		}

		updated = patch.Apply(*current)
		if err := updated.Validate(); err != nil {
			return err
		}
		if updated.Capacity < current.Booked {
			return fmt.Errorf("%w: capacity %d is below %d booked tickets", domain.ErrInvalidFlight, updated.Capacity, current.Booked)
		}

		err = r.q.queryRow(ctx, `UPDATE flights
			SET origin_id = $1, destination_id = $2, departure_time = $3, landing_time = $4, capacity = $5, updated_at = now()
			WHERE id = $6
			RETURNING updated_at`,
			updated.OriginID, updated.DestinationID, updated.Departure, updated.Landing, updated.Capacity, id).
			Scan(&updated.UpdatedAt)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: unknown country", domain.ErrInvalidFlight)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete cancels the flight's Booked tickets and removes the flight. Tickets
// stay as Canceled history with their flight reference cleared. It returns the
// number of tickets canceled.
func (r *PGFlightRepository) Delete(ctx context.Context, id int64) (int, error) {
	var canceled int
	err := withTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := lockFlight(ctx, r.q, id); err != nil {
			return err
		}

		cmd, err := r.q.exec(ctx, `UPDATE tickets SET status = $1, updated_at = now() WHERE flight_id = $2 AND status = $3`,
			domain.TicketStatusCanceled, id, domain.TicketStatusBooked)
		if err != nil {
			return fmt.Errorf("cancel flight tickets: %w", err)
		}
		canceled = int(cmd.RowsAffected())

		if _, err := r.q.exec(ctx, `DELETE FROM flights WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete flight: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return canceled, nil
}

func (r *PGFlightRepository) list(ctx context.Context, sql string, args ...any) ([]domain.Flight, error) {
	rows, err := r.q.query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.CompanyID, &f.OriginID, &f.DestinationID, &f.Departure, &f.Landing, &f.Capacity, &f.Booked, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.CompanyID, &f.OriginID, &f.DestinationID, &f.Departure, &f.Landing, &f.Capacity, &f.Booked, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, fmt.Errorf("get flight: %w", err)
	}
	return &f, nil
}

// lockFlight takes the row lock that serializes everything touching the
// flight's seat count and returns its capacity.
func lockFlight(ctx context.Context, q querier, id int64) (int, error) {
	var capacity int
	if err := q.queryRow(ctx, `SELECT capacity FROM flights WHERE id = $1 FOR UPDATE`, id).Scan(&capacity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrFlightNotFound
		}
		return 0, fmt.Errorf("lock flight: %w", err)
	}
	return capacity, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)

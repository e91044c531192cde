package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CountryRepository interface {
	List(ctx context.Context) ([]domain.Country, error)
	GetByID(ctx context.Context, id int64) (*domain.Country, error)
	Create(ctx context.Context, country *domain.Country) error
}

type PGCountryRepository struct {
	q querier
}

func NewCountryRepository(pool *pgxpool.Pool) *PGCountryRepository {
	return &PGCountryRepository{q: querier{pool: pool}}
}

func (r *PGCountryRepository) List(ctx context.Context) ([]domain.Country, error) {
	rows, err := r.q.query(ctx, `SELECT id, name FROM countries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	countries := make([]domain.Country, 0)
	for rows.Next() {
		var c domain.Country
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

func (r *PGCountryRepository) GetByID(ctx context.Context, id int64) (*domain.Country, error) {
	var c domain.Country
	if err := r.q.queryRow(ctx, `SELECT id, name FROM countries WHERE id = $1`, id).Scan(&c.ID, &c.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCountryNotFound
		}
		return nil, fmt.Errorf("get country: %w", err)
	}
	return &c, nil
}

// Create inserts a country. Names are unique ignoring case.
func (r *PGCountryRepository) Create(ctx context.Context, country *domain.Country) error {
	err := r.q.queryRow(ctx, `INSERT INTO countries (name) VALUES ($1) RETURNING id`, country.Name).Scan(&country.ID)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrDuplicateCountry
		}
		return fmt.Errorf("insert country: %w", err)
	}
	return nil
}

func unknownCountry(id int64) error {
	return fmt.Errorf("%w: country %d does not exist", domain.ErrInvalidRequest, id)
}

var _ CountryRepository = (*PGCountryRepository)(nil)

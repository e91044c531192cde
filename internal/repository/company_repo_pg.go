package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CompanyRepository interface {
	List(ctx context.Context) ([]domain.Company, error)
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	GetByManager(ctx context.Context, managerID int64) (*domain.Company, error)
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, id int64) error
}

type PGCompanyRepository struct {
	q querier
}

func NewCompanyRepository(pool *pgxpool.Pool) *PGCompanyRepository {
	return &PGCompanyRepository{q: querier{pool: pool}}
}

const selectCompany = `SELECT id, name, COALESCE(country_id, 0), manager_id, created_at FROM companies`

func (r *PGCompanyRepository) List(ctx context.Context) ([]domain.Company, error) {
	rows, err := r.q.query(ctx, selectCompany+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]domain.Company, 0)
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CountryID, &c.ManagerID, &c.CreatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *PGCompanyRepository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	return r.get(ctx, selectCompany+` WHERE id = $1`, id)
}

func (r *PGCompanyRepository) GetByManager(ctx context.Context, managerID int64) (*domain.Company, error) {
	return r.get(ctx, selectCompany+` WHERE manager_id = $1`, managerID)
}

func (r *PGCompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	err := r.q.queryRow(ctx, `INSERT INTO companies (name, country_id, manager_id) VALUES ($1, NULLIF($2::bigint, 0), $3)
		RETURNING id, created_at`, company.Name, company.CountryID, company.ManagerID).
		Scan(&company.ID, &company.CreatedAt)
	if err != nil {
		if c, ok := uniqueViolation(err); ok && c == "companies_manager_id_key" {
			return domain.ErrManagerTaken
		}
		if c, ok := foreignKeyViolation(err); ok {
			if c == "companies_country_id_fkey" {
				return unknownCountry(company.CountryID)
			}
			return domain.ErrIdentityNotFound
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (r *PGCompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	cmd, err := r.q.exec(ctx, `UPDATE companies SET name = $1, country_id = NULLIF($2::bigint, 0) WHERE id = $3`, company.Name, company.CountryID, company.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return unknownCountry(company.CountryID)
		}
		return fmt.Errorf("update company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCompanyNotFound
	}
	return nil
}

// Delete removes an airline with no flights. Flights reference companies with
// ON DELETE RESTRICT, so the check is atomic.
func (r *PGCompanyRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCompanyHasFlights
		}
		return fmt.Errorf("delete company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCompanyNotFound
	}
	return nil
}

func (r *PGCompanyRepository) get(ctx context.Context, sql string, arg any) (*domain.Company, error) {
	var c domain.Company
	if err := r.q.queryRow(ctx, sql, arg).Scan(&c.ID, &c.Name, &c.CountryID, &c.ManagerID, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

var _ CompanyRepository = (*PGCompanyRepository)(nil)

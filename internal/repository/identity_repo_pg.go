package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id int64) (*domain.Identity, error)
	GetByToken(ctx context.Context, token string) (*domain.Identity, error)
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)
	List(ctx context.Context, role domain.Role) ([]domain.Identity, error)
	UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) (*domain.Identity, error)
	Delete(ctx context.Context, id int64) error
}

type PGIdentityRepository struct {
	pool *pgxpool.Pool
	q    querier
}

func NewIdentityRepository(pool *pgxpool.Pool) *PGIdentityRepository {
	return &PGIdentityRepository{pool: pool, q: querier{pool: pool}}
}

const selectIdentity = `SELECT u.id, u.username, u.first_name, u.last_name, u.role, t.value, u.created_at
FROM users u JOIN tokens t ON t.user_id = u.id`

// Create inserts the user and its token in one transaction.
func (r *PGIdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	return withTx(ctx, r.pool, func(ctx context.Context) error {
		err := r.q.queryRow(ctx, `INSERT INTO users (username, first_name, last_name, role)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`, identity.Username, identity.FirstName, identity.LastName, identity.Role).
			Scan(&identity.ID, &identity.CreatedAt)
		if err != nil {
			if c, ok := uniqueViolation(err); ok && c == "users_username_key" {
				return domain.ErrDuplicateUsername
			}
			return fmt.Errorf("insert user: %w", err)
		}

		if _, err := r.q.exec(ctx, `INSERT INTO tokens (user_id, value) VALUES ($1, $2)`, identity.ID, identity.Token); err != nil {
			if c, ok := uniqueViolation(err); ok && c == "tokens_value_key" {
				return domain.ErrTokenCollision
			}
			return fmt.Errorf("insert token: %w", err)
		}
		return nil
	})
}

func (r *PGIdentityRepository) GetByID(ctx context.Context, id int64) (*domain.Identity, error) {
	return r.get(ctx, selectIdentity+` WHERE u.id = $1`, id)
}

func (r *PGIdentityRepository) GetByToken(ctx context.Context, token string) (*domain.Identity, error) {
	return r.get(ctx, selectIdentity+` WHERE t.value = $1`, token)
}

func (r *PGIdentityRepository) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return r.get(ctx, selectIdentity+` WHERE u.username = $1`, username)
}

func (r *PGIdentityRepository) List(ctx context.Context, role domain.Role) ([]domain.Identity, error) {
	rows, err := r.q.query(ctx, selectIdentity+` WHERE u.role = $1 ORDER BY u.id`, role)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	identities := make([]domain.Identity, 0)
	for rows.Next() {
		var i domain.Identity
		if err := rows.Scan(&i.ID, &i.Username, &i.FirstName, &i.LastName, &i.Role, &i.Token, &i.CreatedAt); err != nil {
			return nil, err
		}
		identities = append(identities, i)
	}
	return identities, rows.Err()
}

func (r *PGIdentityRepository) UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) (*domain.Identity, error) {
	cmd, err := r.q.exec(ctx, `UPDATE users SET first_name = COALESCE($1, first_name), last_name = COALESCE($2, last_name)
		WHERE id = $3`, patch.FirstName, patch.LastName, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrIdentityNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the user; tokens and tickets go with it. Managers of an
// airline cannot be removed.
func (r *PGIdentityRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserManagesAirline
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

func (r *PGIdentityRepository) get(ctx context.Context, sql string, arg any) (*domain.Identity, error) {
	var i domain.Identity
	err := r.q.queryRow(ctx, sql, arg).Scan(&i.ID, &i.Username, &i.FirstName, &i.LastName, &i.Role, &i.Token, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &i, nil
}

var _ IdentityRepository = (*PGIdentityRepository)(nil)

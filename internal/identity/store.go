package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logs"
	"github.com/sirupsen/logrus"
)

type Repository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id int64) (*domain.Identity, error)
	GetByToken(ctx context.Context, token string) (*domain.Identity, error)
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)
	List(ctx context.Context, role domain.Role) ([]domain.Identity, error)
	UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) (*domain.Identity, error)
	Delete(ctx context.Context, id int64) error
}

// CompanyLookup tells whether an identity manages an airline.
type CompanyLookup interface {
	GetByManager(ctx context.Context, managerID int64) (*domain.Company, error)
}

// Cache keeps resolved identities by token. GetIdentity returns nil, nil on a miss.
type Cache interface {
	GetIdentity(ctx context.Context, token string) (*domain.Identity, error)
	SetIdentity(ctx context.Context, identity domain.Identity) error
	DeleteIdentity(ctx context.Context, token string) error
}

type NewIdentity struct {
	Username  string
	FirstName string
	LastName  string
	Role      domain.Role
}

type Store struct {
	repo      Repository
	companies CompanyLookup
	cache     Cache
	tokens    TokenGenerator
}

type StoreOption func(*Store)

func WithCache(cache Cache) StoreOption {
	return func(s *Store) {
		s.cache = cache
	}
}

func WithTokenGenerator(gen TokenGenerator) StoreOption {
	return func(s *Store) {
		if gen != nil {
			s.tokens = gen
		}
	}
}

func NewStore(repo Repository, companies CompanyLookup, opts ...StoreOption) *Store {
	s := &Store{
		repo:      repo,
		companies: companies,
		tokens:    GenerateToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIdentity stores a new identity together with its token. A token
// collision is re-rolled once; a second collision is returned as ErrTokenCollision.
func (s *Store) CreateIdentity(ctx context.Context, in NewIdentity) (*domain.Identity, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidRequest)
	}
	if in.Role != domain.RoleCustomer && in.Role != domain.RoleAdministrator {
		return nil, fmt.Errorf("%w: role %q cannot be assigned", domain.ErrInvalidRequest, in.Role)
	}

	for attempt := 0; attempt < 2; attempt++ {
		token, err := s.tokens()
		if err != nil {
			return nil, err
		}

		created := &domain.Identity{
			Username:  username,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Role:      in.Role,
			Token:     token,
		}
		err = s.repo.Create(ctx, created)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, domain.ErrTokenCollision) {
			return nil, err
		}
		logs.Logger.WithField("username", username).Warn("token collision on identity creation")
	}

	logs.Logger.WithFields(logrus.Fields{"username": username}).Error("token collided twice, check the token generator")
	return nil, domain.ErrTokenCollision
}

// Resolve returns the identity holding token.
func (s *Store) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrInvalidCredential
	}

	if s.cache != nil {
		cached, err := s.cache.GetIdentity(ctx, token)
		if err != nil {
			logs.Logger.WithError(err).Warn("identity cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	found, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrInvalidCredential
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetIdentity(ctx, *found); err != nil {
			logs.Logger.WithError(err).Warn("identity cache write failed")
		}
	}
	return found, nil
}

// RoleOf resolves the effective role: administrators stay administrators,
// anyone managing an airline is an airline manager, everyone else a customer.
func (s *Store) RoleOf(ctx context.Context, identity domain.Identity) (domain.Role, error) {
	if identity.Role == domain.RoleAdministrator {
		return domain.RoleAdministrator, nil
	}
	if s.companies == nil {
		return domain.RoleCustomer, nil
	}

	_, err := s.companies.GetByManager(ctx, identity.ID)
	switch {
	case err == nil:
		return domain.RoleAirlineManager, nil
	case errors.Is(err, domain.ErrCompanyNotFound):
		return domain.RoleCustomer, nil
	default:
		return "", err
	}
}

func (s *Store) Get(ctx context.Context, id int64) (*domain.Identity, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return s.repo.GetByUsername(ctx, strings.TrimSpace(username))
}

func (s *Store) List(ctx context.Context, role domain.Role) ([]domain.Identity, error) {
	return s.repo.List(ctx, role)
}

// UpdateProfile changes the first and last name. The cached identity is
// evicted so the next Resolve sees the new names.
func (s *Store) UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) (*domain.Identity, error) {
	if patch.FirstName != nil {
		first := strings.TrimSpace(*patch.FirstName)
		patch.FirstName = &first
	}
	if patch.LastName != nil {
		last := strings.TrimSpace(*patch.LastName)
		patch.LastName = &last
	}

	updated, err := s.repo.UpdateProfile(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, *updated)
	return updated, nil
}

// Remove deletes the identity and its token.
func (s *Store) Remove(ctx context.Context, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, *existing)
	return nil
}

func (s *Store) evict(ctx context.Context, identity domain.Identity) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteIdentity(ctx, identity.Token); err != nil {
		logs.Logger.WithError(err).WithField("user_id", identity.ID).Warn("identity cache eviction failed")
	}
}

package accounts

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/access"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/identity"
	"github.com/Domenick1991/flightdesk/internal/logs"
	"github.com/sirupsen/logrus"
)

type AccountUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Identity, error)
	AddCustomer(ctx context.Context, creds access.Credentials, input RegisterInput) (*domain.Identity, error)
	AddAdministrator(ctx context.Context, creds access.Credentials, input RegisterInput) (*domain.Identity, error)
	ListCustomers(ctx context.Context, creds access.Credentials) ([]domain.Identity, error)
	UpdateCustomer(ctx context.Context, creds access.Credentials, id int64, patch domain.ProfilePatch) (*domain.Identity, error)
	RemoveUser(ctx context.Context, creds access.Credentials, id int64) error
}

type Identities interface {
	CreateIdentity(ctx context.Context, in identity.NewIdentity) (*domain.Identity, error)
	List(ctx context.Context, role domain.Role) ([]domain.Identity, error)
	UpdateProfile(ctx context.Context, id int64, patch domain.ProfilePatch) (*domain.Identity, error)
	Remove(ctx context.Context, id int64) error
}

type RegisterInput struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AccountService struct {
	gate       access.Authorizer
	identities Identities
}

func NewAccountService(gate access.Authorizer, identities Identities) *AccountService {
	return &AccountService{gate: gate, identities: identities}
}

// Register creates a customer account. Credentials are checked upstream, so
// the caller is anonymous here.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.Identity, error) {
	return s.create(ctx, 0, input, domain.RoleCustomer)
}

func (s *AccountService) AddCustomer(ctx context.Context, creds access.Credentials, input RegisterInput) (*domain.Identity, error) {
	caller, err := s.authorizeAdmin(ctx, creds, http.MethodPost)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, caller.ID(), input, domain.RoleCustomer)
}

func (s *AccountService) AddAdministrator(ctx context.Context, creds access.Credentials, input RegisterInput) (*domain.Identity, error) {
	caller, err := s.authorizeAdmin(ctx, creds, http.MethodPost)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, caller.ID(), input, domain.RoleAdministrator)
}

func (s *AccountService) ListCustomers(ctx context.Context, creds access.Credentials) ([]domain.Identity, error) {
	if _, err := s.authorizeAdmin(ctx, creds, http.MethodGet); err != nil {
		return nil, err
	}
	return s.identities.List(ctx, domain.RoleCustomer)
}

// UpdateCustomer changes the names on a profile. Users update their own
// profile; administrators may update anyone's.
func (s *AccountService) UpdateCustomer(ctx context.Context, creds access.Credentials, id int64, patch domain.ProfilePatch) (*domain.Identity, error) {
	caller, err := s.gate.Authorize(ctx, access.Request{
		Method:      http.MethodPost,
		Credentials: creds,
		Owns: access.AdminOr(func(_ context.Context, caller domain.Principal) (bool, error) {
			return caller.ID() == id, nil
		}),
	})
	if err != nil {
		return nil, err
	}
	if patch == (domain.ProfilePatch{}) {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidRequest)
	}

	updated, err := s.identities.UpdateProfile(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	logs.Logger.WithFields(logrus.Fields{"user_id": id, "updated_by": caller.ID()}).Info("profile updated")
	return updated, nil
}

// RemoveUser deletes a user with their tickets and token. Users managing an
// airline are kept until the airline is removed.
func (s *AccountService) RemoveUser(ctx context.Context, creds access.Credentials, id int64) error {
	caller, err := s.authorizeAdmin(ctx, creds, http.MethodPost)
	if err != nil {
		return err
	}
	if caller.ID() == id {
		return fmt.Errorf("%w: administrators cannot remove themselves", domain.ErrInvalidRequest)
	}

	if err := s.identities.Remove(ctx, id); err != nil {
		return err
	}
	logs.Logger.WithFields(logrus.Fields{"user_id": id, "removed_by": caller.ID()}).Info("user removed")
	return nil
}

func (s *AccountService) authorizeAdmin(ctx context.Context, creds access.Credentials, method string) (domain.Principal, error) {
	return s.gate.Authorize(ctx, access.Request{
		Method:      method,
		Credentials: creds,
		Roles:       []domain.Role{domain.RoleAdministrator},
	})
}

func (s *AccountService) create(ctx context.Context, createdBy int64, input RegisterInput, role domain.Role) (*domain.Identity, error) {
	created, err := s.identities.CreateIdentity(ctx, identity.NewIdentity{
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      role,
	})
	if err != nil {
		return nil, err
	}

	entry := logs.Logger.WithFields(logrus.Fields{"user_id": created.ID, "role": role})
	if createdBy != 0 {
		entry = entry.WithField("created_by", createdBy)
	}
	entry.Info("user created")
	return created, nil
}

var _ AccountUseCase = (*AccountService)(nil)

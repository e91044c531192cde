package airlines

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/access"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logs"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/sirupsen/logrus"
)

type AirlineUseCase interface {
	List(ctx context.Context) ([]domain.Company, error)
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	AddAirline(ctx context.Context, creds access.Credentials, input AddAirlineInput) (*domain.Company, error)
	UpdateAirline(ctx context.Context, creds access.Credentials, id int64, input UpdateAirlineInput) (*domain.Company, error)
	RemoveAirline(ctx context.Context, creds access.Credentials, id int64) error
}

// Managers finds the user that is about to manage an airline.
type Managers interface {
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)
}

type AddAirlineInput struct {
	Name string `json:"name"`
	// CountryID is optional; zero leaves the airline without a country.
	CountryID       int64  `json:"country_id,omitempty"`
	ManagerUsername string `json:"manager"`
}

type UpdateAirlineInput struct {
	Name      *string `json:"name,omitempty"`
	CountryID *int64  `json:"country_id,omitempty"`
}

type AirlineService struct {
	gate      access.Authorizer
	companies repository.CompanyRepository
	managers  Managers
}

func NewAirlineService(gate access.Authorizer, companies repository.CompanyRepository, managers Managers) *AirlineService {
	return &AirlineService{gate: gate, companies: companies, managers: managers}
}

func (s *AirlineService) List(ctx context.Context) ([]domain.Company, error) {
	return s.companies.List(ctx)
}

func (s *AirlineService) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	return s.companies.GetByID(ctx, id)
}

// AddAirline registers an airline managed by an existing non-administrator user.
func (s *AirlineService) AddAirline(ctx context.Context, creds access.Credentials, input AddAirlineInput) (*domain.Company, error) {
	caller, err := s.gate.Authorize(ctx, access.Request{
		Method:      http.MethodPost,
		Credentials: creds,
		Roles:       []domain.Role{domain.RoleAdministrator},
	})
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(input.ManagerUsername) == "" {
		return nil, fmt.Errorf("%w: manager is required", domain.ErrInvalidRequest)
	}
	if input.CountryID < 0 {
		return nil, fmt.Errorf("%w: invalid country_id", domain.ErrInvalidRequest)
	}

	manager, err := s.managers.GetByUsername(ctx, input.ManagerUsername)
	if err != nil {
		return nil, err
	}
	if manager.Role == domain.RoleAdministrator {
		return nil, fmt.Errorf("%w: administrators cannot manage an airline", domain.ErrInvalidRequest)
	}

	company := &domain.Company{
		Name:      name,
		CountryID: input.CountryID,
		ManagerID: manager.ID,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}

	logs.Logger.WithFields(logrus.Fields{
		"company_id": company.ID,
		"manager_id": company.ManagerID,
		"added_by":   caller.ID(),
	}).Info("airline added")
	return company, nil
}

func (s *AirlineService) UpdateAirline(ctx context.Context, creds access.Credentials, id int64, input UpdateAirlineInput) (*domain.Company, error) {
	if _, err := s.gate.Authorize(ctx, access.Request{
		Method:      http.MethodPost,
		Credentials: creds,
		Roles:       []domain.Role{domain.RoleAirlineManager},
		Owns: func(ctx context.Context, caller domain.Principal) (bool, error) {
			company, err := s.companies.GetByID(ctx, id)
			if err != nil {
				return false, err
			}
			return company.ManagerID == caller.ID(), nil
		},
	}); err != nil {
		return nil, err
	}

	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidRequest)
		}
		company.Name = name
	}
	if input.CountryID != nil {
		if *input.CountryID < 0 {
			return nil, fmt.Errorf("%w: invalid country_id", domain.ErrInvalidRequest)
		}
		company.CountryID = *input.CountryID
	}

	if err := s.companies.Update(ctx, company); err != nil {
		return nil, err
	}
	logs.Logger.WithField("company_id", id).Info("airline updated")
	return company, nil
}

// RemoveAirline deletes an airline that has no flights left.
func (s *AirlineService) RemoveAirline(ctx context.Context, creds access.Credentials, id int64) error {
	if _, err := s.gate.Authorize(ctx, access.Request{
		Method:      http.MethodPost,
		Credentials: creds,
		Roles:       []domain.Role{domain.RoleAdministrator},
	}); err != nil {
		return err
	}

	if err := s.companies.Delete(ctx, id); err != nil {
		return err
	}
	logs.Logger.WithField("company_id", id).Info("airline removed")
	return nil
}

var _ AirlineUseCase = (*AirlineService)(nil)

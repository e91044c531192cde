package countries

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

type CountryUseCase interface {
	List(ctx context.Context) ([]domain.Country, error)
	GetByID(ctx context.Context, id int64) (*domain.Country, error)
	AddCountry(ctx context.Context, creds access.Credentials, name string) (*domain.Country, error)
}

type CountryService struct {
	gate      access.Authorizer
	countries repository.CountryRepository
}

func NewCountryService(gate access.Authorizer, countries repository.CountryRepository) *CountryService {
	return &CountryService{gate: gate, countries: countries}
}

func (s *CountryService) List(ctx context.Context) ([]domain.Country, error) {
	return s.countries.List(ctx)
}

func (s *CountryService) GetByID(ctx context.Context, id int64) (*domain.Country, error) {
	return s.countries.GetByID(ctx, id)
}

// AddCountry registers a country flights and airlines can refer to.
func (s *CountryService) AddCountry(ctx context.Context, creds access.Credentials, name string) (*domain.Country, error) {
	caller, err := s.gate.Authorize(ctx, access.Request{
		Method:      http.MethodPost,
		Credentials: creds,
		Roles:       []domain.Role{domain.RoleAdministrator},
	})
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidRequest)
	}

	country := &domain.Country{Name: name}
	if err := s.countries.Create(ctx, country); err != nil {
		return nil, err
	}
	logs.Logger.WithFields(logrus.Fields{"country_id": country.ID, "added_by": caller.ID()}).Info("country added")
	return country, nil
}

var _ CountryUseCase = (*CountryService)(nil)

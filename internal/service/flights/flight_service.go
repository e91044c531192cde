package flights

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightdesk/internal/access"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logs"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/sirupsen/logrus"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	ListOwnFlights(ctx context.Context, creds access.Credentials) ([]domain.Flight, error)
	AddFlight(ctx context.Context, creds access.Credentials, input AddFlightInput) (*domain.Flight, error)
	UpdateFlight(ctx context.Context, creds access.Credentials, id int64, patch domain.FlightPatch) (*domain.Flight, error)
	RemoveFlight(ctx context.Context, creds access.Credentials, id int64) (int, error)
}

// FlightCache holds the public flight list. Every invalidation bumps the
// version, and SetFlights drops a list read under an older version, so a list
// loaded before a booking committed cannot overwrite the invalidation.
type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	FlightsVersion(ctx context.Context) (int64, error)
	SetFlights(ctx context.Context, version int64, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type Companies interface {
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	GetByManager(ctx context.Context, managerID int64) (*domain.Company, error)
}

type AddFlightInput struct {
	// CompanyID is required for administrators. Managers always add to their own airline.
	CompanyID     int64     `json:"company_id,omitempty"`
	OriginID      int64     `json:"origin_id"`
	DestinationID int64     `json:"destination_id"`
	Departure     time.Time `json:"departure_time"`
	Landing       time.Time `json:"landing_time"`
	Capacity      int       `json:"capacity"`
}

type FlightService struct {
	gate      access.Authorizer
	repo      repository.FlightRepository
	companies Companies
	cache     FlightCache
}

func NewFlightService(gate access.Authorizer, repo repository.FlightRepository, companies Companies, cache FlightCache) *FlightService {
	return &FlightService{gate: gate, repo: repo, companies: companies, cache: cache}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	var (
		version   int64
		cacheable bool
	)
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			logs.Logger.WithError(err).Warn("flight cache read failed")
		} else if cached != nil {
			return cached, nil
		}

		// The version must be read before the repository.
		if version, err = s.cache.FlightsVersion(ctx); err != nil {
			logs.Logger.WithError(err).Warn("flight cache version read failed")
		} else {
			cacheable = true
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := s.cache.SetFlights(ctx, version, flights); err != nil {
			logs.Logger.WithError(err).Warn("flight cache write failed")
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) ListOwnFlights(ctx context.Context, creds access.Credentials) ([]domain.Flight, error) {
	caller, err := s.gate.Authorize(ctx, access.Request{
		Method:      http.MethodGet,
		Credentials: creds,
		Roles:       []domain.Role{domain.RoleAirlineManager},
	})
	if err != nil {
		return nil, err
	}

	company, err := s.companies.GetByManager(ctx, caller.ID())
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCompany(ctx, company.ID)
}

// AddFlight publishes a new flight. Managers add to the airline they manage;
// administrators name the airline.
func (s *FlightService) AddFlight(ctx context.Context, creds access.Credentials, input AddFlightInput) (*domain.Flight, error) {
	caller, err := s.gate.Authorize(ctx, access.Request{
		Method:      http.MethodPost,
		Credentials: creds,
		Roles:       []domain.Role{domain.RoleAirlineManager, domain.RoleAdministrator},
	})
	if err != nil {
		return nil, err
	}

	flight := domain.Flight{
		OriginID:      input.OriginID,
		DestinationID: input.DestinationID,
		Departure:     input.Departure,
		Landing:       input.Landing,
		Capacity:      input.Capacity,
	}
	if err := flight.Validate(); err != nil {
		return nil, err
	}

	var company *domain.Company
	if caller.IsAdmin() {
		if input.CompanyID == 0 {
			return nil, fmt.Errorf("%w: company_id is required", domain.ErrInvalidRequest)
		}
		company, err = s.companies.GetByID(ctx, input.CompanyID)
	} else {
		company, err = s.companies.GetByManager(ctx, caller.ID())
		if err == nil && input.CompanyID != 0 && input.CompanyID != company.ID {
			return nil, domain.ErrForbidden
		}
	}
	if err != nil {
		return nil, err
	}
	flight.CompanyID = company.ID

	if err := s.repo.Create(ctx, &flight); err != nil {
		return nil, err
	}

	logs.Logger.WithFields(logrus.Fields{
		"flight_id":  flight.ID,
		"company_id": flight.CompanyID,
		"capacity":   flight.Capacity,
	}).Info("flight added")
	s.invalidate(ctx)
	return &flight, nil
}

// UpdateFlight applies a partial update on behalf of the flight's airline manager.
func (s *FlightService) UpdateFlight(ctx context.Context, creds access.Credentials, id int64, patch domain.FlightPatch) (*domain.Flight, error) {
	if _, err := s.gate.Authorize(ctx, access.Request{
		Method:      http.MethodPost,
		Credentials: creds,
		Roles:       []domain.Role{domain.RoleAirlineManager},
		Owns:        s.managesFlight(id),
	}); err != nil {
		return nil, err
	}

	if patch == (domain.FlightPatch{}) {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidRequest)
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	logs.Logger.WithField("flight_id", id).Info("flight updated")
	s.invalidate(ctx)
	return updated, nil
}

// RemoveFlight deletes a flight and cancels its Booked tickets. It returns the
// number of tickets canceled.
func (s *FlightService) RemoveFlight(ctx context.Context, creds access.Credentials, id int64) (int, error) {
	if _, err := s.gate.Authorize(ctx, access.Request{
		Method:      http.MethodPost,
		Credentials: creds,
		Roles:       []domain.Role{domain.RoleAirlineManager, domain.RoleAdministrator},
		Owns:        access.AdminOr(s.managesFlight(id)),
	}); err != nil {
		return 0, err
	}

	canceled, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	logs.Logger.WithFields(logrus.Fields{
		"flight_id":        id,
		"tickets_canceled": canceled,
	}).Info("flight removed")
	s.invalidate(ctx)
	return canceled, nil
}

func (s *FlightService) managesFlight(id int64) access.OwnershipPredicate {
	return func(ctx context.Context, caller domain.Principal) (bool, error) {
		flight, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return false, err
		}
		company, err := s.companies.GetByID(ctx, flight.CompanyID)
		if err != nil {
			return false, err
		}
		return company.ManagerID == caller.ID(), nil
	}
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		logs.Logger.WithError(err).Warn("flight cache invalidation failed")
	}
}

var _ FlightUseCase = (*FlightService)(nil)

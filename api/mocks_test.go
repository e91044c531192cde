package api

import (
	"context"

	"github.com/Domenick1991/flightdesk/internal/access"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/accounts"
	"github.com/Domenick1991/flightdesk/internal/service/airlines"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/service/countries"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/stretchr/testify/mock"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) ListOwnFlights(ctx context.Context, creds access.Credentials) ([]domain.Flight, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) AddFlight(ctx context.Context, creds access.Credentials, input flights.AddFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, creds, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) UpdateFlight(ctx context.Context, creds access.Credentials, id int64, patch domain.FlightPatch) (*domain.Flight, error) {
	args := m.Called(ctx, creds, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) RemoveFlight(ctx context.Context, creds access.Credentials, id int64) (int, error) {
	args := m.Called(ctx, creds, id)
	return args.Int(0), args.Error(1)
}

type MockAirlineUseCase struct {
	mock.Mock
}

func (m *MockAirlineUseCase) List(ctx context.Context) ([]domain.Company, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Company), args.Error(1)
}

func (m *MockAirlineUseCase) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockAirlineUseCase) AddAirline(ctx context.Context, creds access.Credentials, input airlines.AddAirlineInput) (*domain.Company, error) {
	args := m.Called(ctx, creds, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockAirlineUseCase) UpdateAirline(ctx context.Context, creds access.Credentials, id int64, input airlines.UpdateAirlineInput) (*domain.Company, error) {
	args := m.Called(ctx, creds, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockAirlineUseCase) RemoveAirline(ctx context.Context, creds access.Credentials, id int64) error {
	args := m.Called(ctx, creds, id)
	return args.Error(0)
}

type MockAccountUseCase struct {
	mock.Mock
}

func (m *MockAccountUseCase) Register(ctx context.Context, input accounts.RegisterInput) (*domain.Identity, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockAccountUseCase) AddCustomer(ctx context.Context, creds access.Credentials, input accounts.RegisterInput) (*domain.Identity, error) {
	args := m.Called(ctx, creds, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockAccountUseCase) AddAdministrator(ctx context.Context, creds access.Credentials, input accounts.RegisterInput) (*domain.Identity, error) {
	args := m.Called(ctx, creds, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockAccountUseCase) ListCustomers(ctx context.Context, creds access.Credentials) ([]domain.Identity, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).([]domain.Identity), args.Error(1)
}

func (m *MockAccountUseCase) UpdateCustomer(ctx context.Context, creds access.Credentials, id int64, patch domain.ProfilePatch) (*domain.Identity, error) {
	args := m.Called(ctx, creds, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockAccountUseCase) RemoveUser(ctx context.Context, creds access.Credentials, id int64) error {
	args := m.Called(ctx, creds, id)
	return args.Error(0)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) BookTicket(ctx context.Context, creds access.Credentials, input booking.BookTicketInput) (*domain.Ticket, error) {
	args := m.Called(ctx, creds, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockBookingUseCase) CancelTicket(ctx context.Context, creds access.Credentials, ticketID int64) (*domain.Ticket, error) {
	args := m.Called(ctx, creds, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockBookingUseCase) ListOwnTickets(ctx context.Context, creds access.Credentials) ([]domain.Ticket, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

type MockCountryUseCase struct {
	mock.Mock
}

func (m *MockCountryUseCase) List(ctx context.Context) ([]domain.Country, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Country), args.Error(1)
}

func (m *MockCountryUseCase) GetByID(ctx context.Context, id int64) (*domain.Country, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Country), args.Error(1)
}

func (m *MockCountryUseCase) AddCountry(ctx context.Context, creds access.Credentials, name string) (*domain.Country, error) {
	args := m.Called(ctx, creds, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Country), args.Error(1)
}

var (
	_ flights.FlightUseCase    = (*MockFlightUseCase)(nil)
	_ airlines.AirlineUseCase  = (*MockAirlineUseCase)(nil)
	_ accounts.AccountUseCase  = (*MockAccountUseCase)(nil)
	_ booking.BookingUseCase   = (*MockBookingUseCase)(nil)
	_ countries.CountryUseCase = (*MockCountryUseCase)(nil)
)

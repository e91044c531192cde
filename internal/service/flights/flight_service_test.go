package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightdesk/internal/access"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/identity"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.Flight, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) Update(ctx context.Context, id int64, patch domain.FlightPatch) (*domain.Flight, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Delete(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) FlightsVersion(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, version int64, flights []domain.Flight) error {
	args := m.Called(ctx, version, flights)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestFlightService_List_FromCache(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	service := NewFlightService(nil, repo, nil, cache)

	cached := []domain.Flight{{ID: 1, OriginID: 1, DestinationID: 2}}
	cache.On("GetFlights", mock.Anything).Return(cached, nil)

	got, err := service.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, cached, got)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	service := NewFlightService(nil, repo, nil, cache)

	flights := []domain.Flight{{ID: 1}, {ID: 2}}
	cache.On("GetFlights", mock.Anything).Return(nil, nil)
	cache.On("FlightsVersion", mock.Anything).Return(int64(7), nil)
	repo.On("List", mock.Anything).Return(flights, nil)
	cache.On("SetFlights", mock.Anything, int64(7), flights).Return(nil)

	got, err := service.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, flights, got)
	cache.AssertExpectations(t)
}

func TestFlightService_List_CacheErrorFallsBack(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	service := NewFlightService(nil, repo, nil, cache)

	flights := []domain.Flight{{ID: 1}}
	cache.On("GetFlights", mock.Anything).Return(nil, errors.New("redis down"))
	cache.On("FlightsVersion", mock.Anything).Return(int64(0), errors.New("redis down"))
	repo.On("List", mock.Anything).Return(flights, nil)

	got, err := service.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, flights, got)
	cache.AssertNotCalled(t, "SetFlights", mock.Anything, mock.Anything, mock.Anything)
}

// versionedCache mirrors the Redis cache semantics in memory.
type versionedCache struct {
	version int64
	flights []domain.Flight
}

func (c *versionedCache) GetFlights(context.Context) ([]domain.Flight, error) {
	return c.flights, nil
}

func (c *versionedCache) FlightsVersion(context.Context) (int64, error) {
	return c.version, nil
}

func (c *versionedCache) SetFlights(_ context.Context, version int64, flights []domain.Flight) error {
	if version == c.version {
		c.flights = flights
	}
	return nil
}

func (c *versionedCache) InvalidateFlights(context.Context) error {
	c.version++
	c.flights = nil
	return nil
}

func TestFlightService_List_DoesNotCacheListReadBeforeInvalidation(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &versionedCache{}
	service := NewFlightService(nil, repo, nil, cache)

	stale := []domain.Flight{{ID: 1, Capacity: 1, Booked: 0}}
	repo.On("List", mock.Anything).Return(stale, nil).Run(func(mock.Arguments) {
		// a booking commits while the list is being read
		_ = cache.InvalidateFlights(context.Background())
	}).Once()

	got, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stale, got)
	assert.Nil(t, cache.flights)

	fresh := []domain.Flight{{ID: 1, Capacity: 1, Booked: 1}}
	repo.On("List", mock.Anything).Return(fresh, nil).Once()

	got, err = service.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	assert.Equal(t, fresh, cache.flights)
}

func TestFlightService_GetByID_NotFound(t *testing.T) {
	repo := &MockFlightRepository{}
	service := NewFlightService(nil, repo, nil, nil)
	repo.On("GetByID", mock.Anything, int64(9)).Return(nil, domain.ErrFlightNotFound)

	_, err := service.GetByID(context.Background(), 9)

	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

type world struct {
	store   *repository.MemoryStore
	service *FlightService
	cache   *MockCache

	manager, otherManager, customer, admin *domain.Identity
	company, otherCompany                  domain.Company
	russia, georgia                        domain.Country
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	identities := identity.NewStore(store.Identities, store.Companies)
	cache := &MockCache{}
	cache.On("InvalidateFlights", mock.Anything).Return(nil).Maybe()

	w := &world{
		store:   store,
		cache:   cache,
		service: NewFlightService(access.NewGate(identities), store.Flights, store.Companies, cache),
	}

	create := func(username string, role domain.Role) *domain.Identity {
		created, err := identities.CreateIdentity(ctx, identity.NewIdentity{Username: username, Role: role})
		require.NoError(t, err)
		return created
	}
	w.manager = create("manager", domain.RoleCustomer)
	w.otherManager = create("other", domain.RoleCustomer)
	w.customer = create("alice", domain.RoleCustomer)
	w.admin = create("root", domain.RoleAdministrator)

	w.russia = domain.Country{Name: "Russia"}
	require.NoError(t, store.Countries.Create(ctx, &w.russia))
	w.georgia = domain.Country{Name: "Georgia"}
	require.NoError(t, store.Countries.Create(ctx, &w.georgia))

	w.company = domain.Company{Name: "Aeroflot", ManagerID: w.manager.ID}
	require.NoError(t, store.Companies.Create(ctx, &w.company))
	w.otherCompany = domain.Company{Name: "S7", ManagerID: w.otherManager.ID}
	require.NoError(t, store.Companies.Create(ctx, &w.otherCompany))
	return w
}

func post(token string) access.Credentials {
	return access.Credentials{Method: "POST", Token: token}
}

func (w *world) validInput() AddFlightInput {
	departure := time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC)
	return AddFlightInput{
		OriginID:      w.russia.ID,
		DestinationID: w.georgia.ID,
		Departure:     departure,
		Landing:       departure.Add(150 * time.Minute),
		Capacity:      120,
	}
}

func TestFlightService_AddFlight_Manager(t *testing.T) {
	w := newWorld(t)

	flight, err := w.service.AddFlight(context.Background(), post(w.manager.Token), w.validInput())

	require.NoError(t, err)
	assert.Equal(t, w.company.ID, flight.CompanyID)
	assert.Equal(t, w.russia.ID, flight.OriginID)
	w.cache.AssertCalled(t, "InvalidateFlights", mock.Anything)

	own, err := w.service.ListOwnFlights(context.Background(), access.Credentials{Method: "GET", Token: w.manager.Token})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	other, err := w.service.ListOwnFlights(context.Background(), access.Credentials{Method: "GET", Token: w.otherManager.Token})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFlightService_AddFlight_ManagerForeignCompany(t *testing.T) {
	w := newWorld(t)
	input := w.validInput()
	input.CompanyID = w.otherCompany.ID

	_, err := w.service.AddFlight(context.Background(), post(w.manager.Token), input)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFlightService_AddFlight_Admin(t *testing.T) {
	w := newWorld(t)
	input := w.validInput()

	_, err := w.service.AddFlight(context.Background(), post(w.admin.Token), input)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	input.CompanyID = 999
	_, err = w.service.AddFlight(context.Background(), post(w.admin.Token), input)
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)

	input.CompanyID = w.otherCompany.ID
	flight, err := w.service.AddFlight(context.Background(), post(w.admin.Token), input)
	require.NoError(t, err)
	assert.Equal(t, w.otherCompany.ID, flight.CompanyID)
}

func TestFlightService_AddFlight_InvalidCreatesNothing(t *testing.T) {
	w := newWorld(t)
	cases := map[string]func(*AddFlightInput){
		"landing before departure": func(in *AddFlightInput) { in.Landing = in.Departure.Add(-time.Hour) },
		"same country":             func(in *AddFlightInput) { in.DestinationID = in.OriginID },
		"zero capacity":            func(in *AddFlightInput) { in.Capacity = 0 },
		"missing origin":           func(in *AddFlightInput) { in.OriginID = 0 },
		"unknown country":          func(in *AddFlightInput) { in.DestinationID = 404 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := w.validInput()
			mutate(&input)

			_, err := w.service.AddFlight(context.Background(), post(w.manager.Token), input)

			assert.ErrorIs(t, err, domain.ErrInvalidFlight)
		})
	}

	flights, err := w.store.Flights.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, flights)
}

func TestFlightService_AddFlight_CustomerForbidden(t *testing.T) {
	w := newWorld(t)

	_, err := w.service.AddFlight(context.Background(), post(w.customer.Token), w.validInput())

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFlightService_UpdateFlight(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	flight, err := w.service.AddFlight(ctx, post(w.manager.Token), w.validInput())
	require.NoError(t, err)

	capacity := 10
	_, err = w.service.UpdateFlight(ctx, post(w.otherManager.Token), flight.ID, domain.FlightPatch{Capacity: &capacity})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = w.service.UpdateFlight(ctx, post(w.manager.Token), 999, domain.FlightPatch{Capacity: &capacity})
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)

	_, err = w.service.UpdateFlight(ctx, post(w.manager.Token), flight.ID, domain.FlightPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	landing := flight.Departure.Add(-time.Minute)
	_, err = w.service.UpdateFlight(ctx, post(w.manager.Token), flight.ID, domain.FlightPatch{Landing: &landing})
	assert.ErrorIs(t, err, domain.ErrInvalidFlight)

	updated, err := w.service.UpdateFlight(ctx, post(w.manager.Token), flight.ID, domain.FlightPatch{Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Capacity)
	assert.Equal(t, flight.Landing, updated.Landing)
}

func TestFlightService_RemoveFlight(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	flight, err := w.service.AddFlight(ctx, post(w.manager.Token), w.validInput())
	require.NoError(t, err)

	ticket, err := w.store.Tickets.TryReserve(ctx, flight.ID, w.customer.ID)
	require.NoError(t, err)

	_, err = w.service.RemoveFlight(ctx, post(w.otherManager.Token), flight.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = w.service.RemoveFlight(ctx, access.Credentials{Method: "GET", Token: w.manager.Token}, flight.ID)
	assert.ErrorIs(t, err, domain.ErrMethodMismatch)

	canceled, err := w.service.RemoveFlight(ctx, post(w.manager.Token), flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, canceled)

	got, err := w.store.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCanceled, got.Status)
}

func TestFlightService_RemoveFlight_Admin(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	flight, err := w.service.AddFlight(ctx, post(w.manager.Token), w.validInput())
	require.NoError(t, err)

	canceled, err := w.service.RemoveFlight(ctx, post(w.admin.Token), flight.ID)
	require.NoError(t, err)
	assert.Zero(t, canceled)

	_, err = w.service.GetByID(ctx, flight.ID)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

package airlines

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/flightdesk/internal/access"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/identity"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type world struct {
	store      *repository.MemoryStore
	identities *identity.Store
	service    *AirlineService
	admin      *domain.Identity
	alice      *domain.Identity
	bob        *domain.Identity
	russia     domain.Country
}

func newWorld(t *testing.T) *world {
	t.Helper()
	store := repository.NewMemoryStore()
	identities := identity.NewStore(store.Identities, store.Companies)
	w := &world{
		store:      store,
		identities: identities,
		service:    NewAirlineService(access.NewGate(identities), store.Companies, identities),
	}

	create := func(username string, role domain.Role) *domain.Identity {
		created, err := identities.CreateIdentity(context.Background(), identity.NewIdentity{Username: username, Role: role})
		require.NoError(t, err)
		return created
	}
	w.admin = create("root", domain.RoleAdministrator)
	w.alice = create("alice", domain.RoleCustomer)
	w.bob = create("bob", domain.RoleCustomer)
	w.russia = domain.Country{Name: "Russia"}
	require.NoError(t, store.Countries.Create(context.Background(), &w.russia))
	return w
}

func post(token string) access.Credentials {
	return access.Credentials{Method: "POST", Token: token}
}

func TestAirlineService_AddAirline(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	company, err := w.service.AddAirline(ctx, post(w.admin.Token), AddAirlineInput{Name: " Aeroflot ", CountryID: w.russia.ID, ManagerUsername: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "Aeroflot", company.Name)
	assert.Equal(t, w.russia.ID, company.CountryID)
	assert.Equal(t, w.alice.ID, company.ManagerID)

	role, err := w.identities.RoleOf(ctx, *w.alice)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAirlineManager, role)

	_, err = w.service.AddAirline(ctx, post(w.admin.Token), AddAirlineInput{Name: "S7", ManagerUsername: "alice"})
	assert.ErrorIs(t, err, domain.ErrManagerTaken)

	all, err := w.service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAirlineService_AddAirline_Rejections(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		creds access.Credentials
		input AddAirlineInput
		want  error
	}{
		{"customer caller", post(w.alice.Token), AddAirlineInput{Name: "X", ManagerUsername: "bob"}, domain.ErrForbidden},
		{"wrong method", access.Credentials{Method: "GET", Token: w.admin.Token}, AddAirlineInput{Name: "X", ManagerUsername: "bob"}, domain.ErrMethodMismatch},
		{"missing name", post(w.admin.Token), AddAirlineInput{ManagerUsername: "bob"}, domain.ErrInvalidRequest},
		{"missing manager", post(w.admin.Token), AddAirlineInput{Name: "X"}, domain.ErrInvalidRequest},
		{"unknown manager", post(w.admin.Token), AddAirlineInput{Name: "X", ManagerUsername: "ghost"}, domain.ErrIdentityNotFound},
		{"administrator manager", post(w.admin.Token), AddAirlineInput{Name: "X", ManagerUsername: "root"}, domain.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.service.AddAirline(ctx, tt.creds, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAirlineService_UpdateAirline(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	aeroflot, err := w.service.AddAirline(ctx, post(w.admin.Token), AddAirlineInput{Name: "Aeroflot", ManagerUsername: "alice"})
	require.NoError(t, err)
	_, err = w.service.AddAirline(ctx, post(w.admin.Token), AddAirlineInput{Name: "S7", ManagerUsername: "bob"})
	require.NoError(t, err)

	name := "Aeroflot Russian Airlines"
	_, err = w.service.UpdateAirline(ctx, post(w.bob.Token), aeroflot.ID, UpdateAirlineInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = w.service.UpdateAirline(ctx, post(w.alice.Token), 999, UpdateAirlineInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)

	blank := " "
	_, err = w.service.UpdateAirline(ctx, post(w.alice.Token), aeroflot.ID, UpdateAirlineInput{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	unknown := int64(404)
	_, err = w.service.UpdateAirline(ctx, post(w.alice.Token), aeroflot.ID, UpdateAirlineInput{CountryID: &unknown})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	country := w.russia.ID
	updated, err := w.service.UpdateAirline(ctx, post(w.alice.Token), aeroflot.ID, UpdateAirlineInput{Name: &name, CountryID: &country})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	got, err := w.service.GetByID(ctx, aeroflot.ID)
	require.NoError(t, err)
	assert.Equal(t, w.russia.ID, got.CountryID)
	assert.Equal(t, w.alice.ID, got.ManagerID)
}

func TestAirlineService_RemoveAirline(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	company, err := w.service.AddAirline(ctx, post(w.admin.Token), AddAirlineInput{Name: "Aeroflot", ManagerUsername: "alice"})
	require.NoError(t, err)

	kazakhstan := domain.Country{Name: "Kazakhstan"}
	require.NoError(t, w.store.Countries.Create(ctx, &kazakhstan))
	departure := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	flight := domain.Flight{CompanyID: company.ID, OriginID: w.russia.ID, DestinationID: kazakhstan.ID,
		Departure: departure, Landing: departure.Add(3 * time.Hour), Capacity: 5}
	require.NoError(t, w.store.Flights.Create(ctx, &flight))

	err = w.service.RemoveAirline(ctx, post(w.alice.Token), company.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = w.service.RemoveAirline(ctx, post(w.admin.Token), company.ID)
	assert.ErrorIs(t, err, domain.ErrCompanyHasFlights)

	_, err = w.store.Flights.Delete(ctx, flight.ID)
	require.NoError(t, err)
	require.NoError(t, w.service.RemoveAirline(ctx, post(w.admin.Token), company.ID))

	_, err = w.service.GetByID(ctx, company.ID)
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)

	role, err := w.identities.RoleOf(ctx, *w.alice)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, role)
}

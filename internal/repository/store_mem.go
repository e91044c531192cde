package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/inventory"
)

// MemoryStore keeps every table in process memory. It is used when no
// database driver is configured and in tests. Metadata is guarded by one
// RWMutex; seat admission is additionally serialized per flight.
type MemoryStore struct {
	Identities *MemIdentityRepository
	Countries  *MemCountryRepository
	Companies  *MemCompanyRepository
	Flights    *MemFlightRepository
	Tickets    *MemTicketRepository
}

type memDB struct {
	mu    sync.RWMutex
	locks *inventory.FlightLocks

	users     map[int64]domain.Identity
	tokens    map[string]int64
	countries map[int64]domain.Country
	companies map[int64]domain.Company
	flights   map[int64]domain.Flight
	tickets   map[int64]domain.Ticket

	userSeq, countrySeq, companySeq, flightSeq, ticketSeq int64
}

func NewMemoryStore() *MemoryStore {
	db := &memDB{
		locks:     inventory.NewFlightLocks(),
		users:     make(map[int64]domain.Identity),
		tokens:    make(map[string]int64),
		countries: make(map[int64]domain.Country),
		companies: make(map[int64]domain.Company),
		flights:   make(map[int64]domain.Flight),
		tickets:   make(map[int64]domain.Ticket),
	}
	return &MemoryStore{
		Identities: &MemIdentityRepository{db: db},
		Countries:  &MemCountryRepository{db: db},
		Companies:  &MemCompanyRepository{db: db},
		Flights:    &MemFlightRepository{db: db},
		Tickets:    &MemTicketRepository{db: db},
	}
}

// bookedLocked counts Booked tickets on a flight. Caller holds db.mu.
func (db *memDB) bookedLocked(flightID int64) int {
	n := 0
	for _, t := range db.tickets {
		if t.FlightID == flightID && t.IsBooked() {
			n++
		}
	}
	return n
}

// checkFlightCountriesLocked reports an unknown country id. Caller holds db.mu.
func (db *memDB) checkFlightCountriesLocked(f domain.Flight) error {
	for _, id := range []int64{f.OriginID, f.DestinationID} {
		if _, ok := db.countries[id]; !ok {
			return fmt.Errorf("%w: unknown country", domain.ErrInvalidFlight)
		}
	}
	return nil
}

type MemIdentityRepository struct {
	db *memDB
}

func (r *MemIdentityRepository) Create(_ context.Context, identity *domain.Identity) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Username == identity.Username {
			return domain.ErrDuplicateUsername
		}
	}
	if _, taken := r.db.tokens[identity.Token]; taken {
		return domain.ErrTokenCollision
	}

	r.db.userSeq++
	identity.ID = r.db.userSeq
	identity.CreatedAt = time.Now().UTC()
	r.db.users[identity.ID] = *identity
	r.db.tokens[identity.Token] = identity.ID
	return nil
}

func (r *MemIdentityRepository) GetByID(_ context.Context, id int64) (*domain.Identity, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return &u, nil
}

func (r *MemIdentityRepository) GetByToken(_ context.Context, token string) (*domain.Identity, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.tokens[token]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	u := r.db.users[id]
	return &u, nil
}

func (r *MemIdentityRepository) GetByUsername(_ context.Context, username string) (*domain.Identity, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *MemIdentityRepository) List(_ context.Context, role domain.Role) ([]domain.Identity, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	identities := make([]domain.Identity, 0)
	for _, u := range r.db.users {
		if u.Role == role {
			identities = append(identities, u)
		}
	}
	sort.Slice(identities, func(i, j int) bool { return identities[i].ID < identities[j].ID })
	return identities, nil
}

func (r *MemIdentityRepository) UpdateProfile(_ context.Context, id int64, patch domain.ProfilePatch) (*domain.Identity, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	u = patch.Apply(u)
	r.db.users[id] = u
	return &u, nil
}

func (r *MemIdentityRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	for _, c := range r.db.companies {
		if c.ManagerID == id {
			return domain.ErrUserManagesAirline
		}
	}

	for ticketID, t := range r.db.tickets {
		if t.CustomerID == id {
			delete(r.db.tickets, ticketID)
		}
	}
	delete(r.db.tokens, u.Token)
	delete(r.db.users, id)
	return nil
}

type MemCountryRepository struct {
	db *memDB
}

func (r *MemCountryRepository) List(_ context.Context) ([]domain.Country, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	countries := make([]domain.Country, 0, len(r.db.countries))
	for _, c := range r.db.countries {
		countries = append(countries, c)
	}
	sort.Slice(countries, func(i, j int) bool { return countries[i].ID < countries[j].ID })
	return countries, nil
}

func (r *MemCountryRepository) GetByID(_ context.Context, id int64) (*domain.Country, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.countries[id]
	if !ok {
		return nil, domain.ErrCountryNotFound
	}
	return &c, nil
}

func (r *MemCountryRepository) Create(_ context.Context, country *domain.Country) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, c := range r.db.countries {
		if strings.EqualFold(c.Name, country.Name) {
			return domain.ErrDuplicateCountry
		}
	}
	r.db.countrySeq++
	country.ID = r.db.countrySeq
	r.db.countries[country.ID] = *country
	return nil
}

type MemCompanyRepository struct {
	db *memDB
}

func (r *MemCompanyRepository) List(_ context.Context) ([]domain.Company, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	companies := make([]domain.Company, 0, len(r.db.companies))
	for _, c := range r.db.companies {
		companies = append(companies, c)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].ID < companies[j].ID })
	return companies, nil
}

func (r *MemCompanyRepository) GetByID(_ context.Context, id int64) (*domain.Company, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.companies[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	return &c, nil
}

func (r *MemCompanyRepository) GetByManager(_ context.Context, managerID int64) (*domain.Company, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, c := range r.db.companies {
		if c.ManagerID == managerID {
			return &c, nil
		}
	}
	return nil, domain.ErrCompanyNotFound
}

func (r *MemCompanyRepository) Create(_ context.Context, company *domain.Company) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[company.ManagerID]; !ok {
		return domain.ErrIdentityNotFound
	}
	if _, ok := r.db.countries[company.CountryID]; company.CountryID != 0 && !ok {
		return unknownCountry(company.CountryID)
	}
	for _, c := range r.db.companies {
		if c.ManagerID == company.ManagerID {
			return domain.ErrManagerTaken
		}
	}

	r.db.companySeq++
	company.ID = r.db.companySeq
	company.CreatedAt = time.Now().UTC()
	r.db.companies[company.ID] = *company
	return nil
}

func (r *MemCompanyRepository) Update(_ context.Context, company *domain.Company) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.companies[company.ID]
	if !ok {
		return domain.ErrCompanyNotFound
	}
	if _, ok := r.db.countries[company.CountryID]; company.CountryID != 0 && !ok {
		return unknownCountry(company.CountryID)
	}
	current.Name = company.Name
	current.CountryID = company.CountryID
	r.db.companies[company.ID] = current
	return nil
}

func (r *MemCompanyRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.companies[id]; !ok {
		return domain.ErrCompanyNotFound
	}
	for _, f := range r.db.flights {
		if f.CompanyID == id {
			return domain.ErrCompanyHasFlights
		}
	}
	delete(r.db.companies, id)
	return nil
}

type MemFlightRepository struct {
	db *memDB
}

func (r *MemFlightRepository) List(_ context.Context) ([]domain.Flight, error) {
	return r.filter(func(domain.Flight) bool { return true }), nil
}

func (r *MemFlightRepository) ListByCompany(_ context.Context, companyID int64) ([]domain.Flight, error) {
	return r.filter(func(f domain.Flight) bool { return f.CompanyID == companyID }), nil
}

func (r *MemFlightRepository) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	f, ok := r.db.flights[id]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	f.Booked = r.db.bookedLocked(id)
	return &f, nil
}

func (r *MemFlightRepository) Create(_ context.Context, flight *domain.Flight) error {
	if err := flight.Validate(); err != nil {
		return err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.companies[flight.CompanyID]; !ok {
		return domain.ErrCompanyNotFound
	}
	if err := r.db.checkFlightCountriesLocked(*flight); err != nil {
		return err
	}

	now := time.Now().UTC()
	r.db.flightSeq++
	flight.ID = r.db.flightSeq
	flight.Booked = 0
	flight.CreatedAt = now
	flight.UpdatedAt = now
	r.db.flights[flight.ID] = *flight
	return nil
}

func (r *MemFlightRepository) Update(_ context.Context, id int64, patch domain.FlightPatch) (*domain.Flight, error) {
	release := r.db.locks.Lock(id)
	defer release()

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.flights[id]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	booked := r.db.bookedLocked(id)

	updated := patch.Apply(current)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := r.db.checkFlightCountriesLocked(updated); err != nil {
		return nil, err
	}
	if updated.Capacity < booked {
		return nil, fmt.Errorf("%w: capacity %d is below %d booked tickets", domain.ErrInvalidFlight, updated.Capacity, booked)
	}

	updated.UpdatedAt = time.Now().UTC()
	r.db.flights[id] = updated
	updated.Booked = booked
	return &updated, nil
}

func (r *MemFlightRepository) Delete(_ context.Context, id int64) (int, error) {
	release := r.db.locks.Lock(id)
	defer release()

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.flights[id]; !ok {
		return 0, domain.ErrFlightNotFound
	}

	canceled := 0
	now := time.Now().UTC()
	for ticketID, t := range r.db.tickets {
		if t.FlightID != id {
			continue
		}
		if t.IsBooked() {
			t.Status = domain.TicketStatusCanceled
			t.UpdatedAt = now
			canceled++
		}
		t.FlightID = 0
		r.db.tickets[ticketID] = t
	}
	delete(r.db.flights, id)
	return canceled, nil
}

func (r *MemFlightRepository) filter(keep func(domain.Flight) bool) []domain.Flight {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	flights := make([]domain.Flight, 0)
	for id, f := range r.db.flights {
		if !keep(f) {
			continue
		}
		f.Booked = r.db.bookedLocked(id)
		flights = append(flights, f)
	}
	sort.Slice(flights, func(i, j int) bool {
		if !flights[i].Departure.Equal(flights[j].Departure) {
			return flights[i].Departure.Before(flights[j].Departure)
		}
		return flights[i].ID < flights[j].ID
	})
	return flights
}

type MemTicketRepository struct {
	db *memDB
}

// TryReserve holds the flight's lock across count, duplicate check and insert.
func (r *MemTicketRepository) TryReserve(_ context.Context, flightID, customerID int64) (*domain.Ticket, error) {
	release := r.db.locks.Lock(flightID)
	defer release()

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	flight, ok := r.db.flights[flightID]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	if _, ok := r.db.users[customerID]; !ok {
		return nil, domain.ErrIdentityNotFound
	}

	booked, hasBooking := 0, false
	for _, t := range r.db.tickets {
		if t.FlightID != flightID || !t.IsBooked() {
			continue
		}
		booked++
		if t.CustomerID == customerID {
			hasBooking = true
		}
	}
	if err := inventory.Admit(flight.Capacity, booked, hasBooking); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r.db.ticketSeq++
	ticket := domain.Ticket{
		ID:         r.db.ticketSeq,
		FlightID:   flightID,
		CustomerID: customerID,
		Status:     domain.TicketStatusBooked,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.db.tickets[ticket.ID] = ticket
	return &ticket, nil
}

func (r *MemTicketRepository) Cancel(_ context.Context, ticketID int64, requester domain.Principal) (*domain.Ticket, error) {
	r.db.mu.RLock()
	current, ok := r.db.tickets[ticketID]
	r.db.mu.RUnlock()
	if !ok {
		return nil, domain.ErrTicketNotFound
	}

	if current.FlightID != 0 {
		release := r.db.locks.Lock(current.FlightID)
		defer release()
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok = r.db.tickets[ticketID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	if !inventory.CanCancel(current, requester) {
		return nil, domain.ErrForbidden
	}
	if !current.IsBooked() {
		return &current, nil
	}

	current.Status = domain.TicketStatusCanceled
	current.UpdatedAt = time.Now().UTC()
	r.db.tickets[ticketID] = current
	return &current, nil
}

func (r *MemTicketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, ok := r.db.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return &t, nil
}

func (r *MemTicketRepository) ListByCustomer(_ context.Context, customerID int64) ([]domain.Ticket, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	tickets := make([]domain.Ticket, 0)
	for _, t := range r.db.tickets {
		if t.CustomerID == customerID {
			tickets = append(tickets, t)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets, nil
}

var (
	_ IdentityRepository = (*MemIdentityRepository)(nil)
	_ CountryRepository  = (*MemCountryRepository)(nil)
	_ CompanyRepository  = (*MemCompanyRepository)(nil)
	_ FlightRepository   = (*MemFlightRepository)(nil)
	_ TicketRepository   = (*MemTicketRepository)(nil)
)

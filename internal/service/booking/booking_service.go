package booking

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/access"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/logs"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	BookTicket(ctx context.Context, creds access.Credentials, input BookTicketInput) (*domain.Ticket, error)
	CancelTicket(ctx context.Context, creds access.Credentials, ticketID int64) (*domain.Ticket, error)
	ListOwnTickets(ctx context.Context, creds access.Credentials) ([]domain.Ticket, error)
}

// Customers looks up the customer an administrator books for.
type Customers interface {
	Get(ctx context.Context, id int64) (*domain.Identity, error)
	RoleOf(ctx context.Context, identity domain.Identity) (domain.Role, error)
}

// Cache drops the public flight list once seat counts change.
type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload any, maxRetries int) error
}

type BookTicketInput struct {
	FlightID int64 `json:"flight_id"`
	// CustomerID is required for administrators and optional for customers.
	CustomerID int64 `json:"customer_id,omitempty"`
}

type BookingService struct {
	gate               access.Authorizer
	tickets            repository.TicketRepository
	customers          Customers
	cache              Cache
	producer           Producer
	ticketTopic        string
	notificationsTopic string
	publishRetries     int
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

// WithProducer enables ticket events on ticketTopic and, when it differs,
// on notificationsTopic.
func WithProducer(producer Producer, ticketTopic, notificationsTopic string, retries int) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.ticketTopic = ticketTopic
		s.notificationsTopic = notificationsTopic
		s.publishRetries = retries
	}
}

func NewBookingService(
	gate access.Authorizer,
	tickets repository.TicketRepository,
	customers Customers,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		gate:           gate,
		tickets:        tickets,
		customers:      customers,
		publishRetries: 1,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// BookTicket reserves a seat. Customers book for themselves; administrators
// book on behalf of the customer named in input.
func (s *BookingService) BookTicket(ctx context.Context, creds access.Credentials, input BookTicketInput) (*domain.Ticket, error) {
	caller, err := s.gate.Authorize(ctx, access.Request{
		Method:      http.MethodPost,
		Credentials: creds,
		Roles:       []domain.Role{domain.RoleCustomer, domain.RoleAdministrator},
	})
	if err != nil {
		return nil, err
	}
	if input.FlightID <= 0 {
		return nil, fmt.Errorf("%w: flight_id is required", domain.ErrInvalidRequest)
	}

	customerID, err := s.customerFor(ctx, caller, input.CustomerID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.tickets.TryReserve(ctx, input.FlightID, customerID)
	if err != nil {
		logs.Logger.WithFields(logrus.Fields{
			"flight_id":   input.FlightID,
			"customer_id": customerID,
		}).WithError(err).Info("reservation rejected")
		return nil, err
	}

	logs.Logger.WithFields(logrus.Fields{
		"ticket_id":   ticket.ID,
		"flight_id":   ticket.FlightID,
		"customer_id": ticket.CustomerID,
		"booked_by":   caller.ID(),
	}).Info("ticket booked")
	s.afterChange(ctx, kafka.EventTicketBooked, ticket)
	return ticket, nil
}

func (s *BookingService) CancelTicket(ctx context.Context, creds access.Credentials, ticketID int64) (*domain.Ticket, error) {
	caller, err := s.gate.Authorize(ctx, access.Request{
		Method:      http.MethodPost,
		Credentials: creds,
		Owns: access.AdminOr(func(ctx context.Context, caller domain.Principal) (bool, error) {
			ticket, err := s.tickets.GetByID(ctx, ticketID)
			if err != nil {
				return false, err
			}
			return ticket.CustomerID == caller.ID(), nil
		}),
	})
	if err != nil {
		return nil, err
	}

	wasBooked := true
	if current, err := s.tickets.GetByID(ctx, ticketID); err == nil {
		wasBooked = current.IsBooked()
	}

	ticket, err := s.tickets.Cancel(ctx, ticketID, caller)
	if err != nil {
		return nil, err
	}
	if wasBooked {
		logs.Logger.WithFields(logrus.Fields{
			"ticket_id":   ticket.ID,
			"flight_id":   ticket.FlightID,
			"canceled_by": caller.ID(),
		}).Info("ticket canceled")
		s.afterChange(ctx, kafka.EventTicketCanceled, ticket)
	}
	return ticket, nil
}

func (s *BookingService) ListOwnTickets(ctx context.Context, creds access.Credentials) ([]domain.Ticket, error) {
	caller, err := s.gate.Authorize(ctx, access.Request{
		Method:      http.MethodGet,
		Credentials: creds,
		Roles:       []domain.Role{domain.RoleCustomer},
	})
	if err != nil {
		return nil, err
	}
	return s.tickets.ListByCustomer(ctx, caller.ID())
}

func (s *BookingService) customerFor(ctx context.Context, caller domain.Principal, requested int64) (int64, error) {
	if !caller.IsAdmin() {
		if requested != 0 && requested != caller.ID() {
			return 0, domain.ErrForbidden
		}
		return caller.ID(), nil
	}

	if requested == 0 {
		return 0, fmt.Errorf("%w: customer_id is required when booking on behalf of a customer", domain.ErrInvalidRequest)
	}
	customer, err := s.customers.Get(ctx, requested)
	if err != nil {
		return 0, err
	}
	role, err := s.customers.RoleOf(ctx, *customer)
	if err != nil {
		return 0, err
	}
	if role != domain.RoleCustomer {
		return 0, fmt.Errorf("%w: user %d is not a customer", domain.ErrInvalidRequest, requested)
	}
	return customer.ID, nil
}

// afterChange runs the side effects of a committed ticket change. Failures are
// logged and never undo the change.
func (s *BookingService) afterChange(ctx context.Context, eventType string, ticket *domain.Ticket) {
	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			logs.Logger.WithError(err).Warn("flight cache invalidation failed")
		}
	}
	if err := s.publish(ctx, eventType, ticket); err != nil {
		logs.Logger.WithError(err).WithFields(logrus.Fields{
			"event":     eventType,
			"ticket_id": ticket.ID,
		}).Warn("failed to publish ticket event")
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, ticket *domain.Ticket) error {
	if s.producer == nil || s.ticketTopic == "" {
		return nil
	}
	event := kafka.NewTicketEvent(eventType, *ticket)
	if err := s.producer.PublishWithRetry(ctx, s.ticketTopic, event.Key(), event, s.publishRetries); err != nil {
		return err
	}
	if s.notificationsTopic != "" && s.notificationsTopic != s.ticketTopic {
		return s.producer.PublishWithRetry(ctx, s.notificationsTopic, event.Key(), event, s.publishRetries)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)

package email

import (
	"context"

	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/logs"
	"github.com/sirupsen/logrus"
)

// Sender delivers ticket notifications. Delivery is a log line for now.
type Sender struct {
	log logrus.FieldLogger
}

func NewSender() *Sender {
	return &Sender{log: logs.Logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	s.log.WithFields(logrus.Fields{
		"event":       event.Type,
		"ticket_id":   event.TicketID,
		"flight_id":   event.FlightID,
		"customer_id": event.CustomerID,
		"status":      event.Status,
	}).Info("ticket notification sent")
	return nil
}

package api

import (
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// CustomerHandler serves ticket operations. Routes accept any method so that
// the access gate can reject the wrong one.
type CustomerHandler struct {
	service booking.BookingUseCase
}

type bookTicketRequest struct {
	tokenRequest
	FlightID   int64 `json:"flight_id" form:"flight_id"`
	CustomerID int64 `json:"customer_id" form:"customer_id"`
}

func NewCustomerHandler(service booking.BookingUseCase) *CustomerHandler {
	return &CustomerHandler{service: service}
}

func (h *CustomerHandler) Register(router *gin.RouterGroup) {
	router.Any("/tickets/add", h.book)
	router.Any("/tickets/mine", h.mine)
	router.Any("/tickets/:id/cancel", h.cancel)
}

func (h *CustomerHandler) book(c *gin.Context) {
	var req bookTicketRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	ticket, err := h.service.BookTicket(c.Request.Context(), req.credentials(c), booking.BookTicketInput{
		FlightID:   req.FlightID,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *CustomerHandler) cancel(c *gin.Context) {
	var req tokenRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	ticket, err := h.service.CancelTicket(c.Request.Context(), req.credentials(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *CustomerHandler) mine(c *gin.Context) {
	var req tokenRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	tickets, err := h.service.ListOwnTickets(c.Request.Context(), req.credentials(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

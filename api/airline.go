package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/airlines"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
)

// AirlineHandler serves airline managers: their flights and their airline.
type AirlineHandler struct {
	flights  flights.FlightUseCase
	airlines airlines.AirlineUseCase
}

type flightRequest struct {
	tokenRequest
	CompanyID     int64      `json:"company_id" form:"company_id"`
	OriginID      *int64     `json:"origin_id" form:"origin_id"`
	DestinationID *int64     `json:"destination_id" form:"destination_id"`
	Departure     *time.Time `json:"departure_time" form:"departure_time"`
	Landing       *time.Time `json:"landing_time" form:"landing_time"`
	Capacity      *int       `json:"capacity" form:"capacity"`
}

func (r flightRequest) addInput() flights.AddFlightInput {
	in := flights.AddFlightInput{CompanyID: r.CompanyID}
	if r.OriginID != nil {
		in.OriginID = *r.OriginID
	}
	if r.DestinationID != nil {
		in.DestinationID = *r.DestinationID
	}
	if r.Departure != nil {
		in.Departure = *r.Departure
	}
	if r.Landing != nil {
		in.Landing = *r.Landing
	}
	if r.Capacity != nil {
		in.Capacity = *r.Capacity
	}
	return in
}

func (r flightRequest) patch() domain.FlightPatch {
	return domain.FlightPatch{
		OriginID:      r.OriginID,
		DestinationID: r.DestinationID,
		Departure:     r.Departure,
		Landing:       r.Landing,
		Capacity:      r.Capacity,
	}
}

type airlineRequest struct {
	tokenRequest
	Name      *string `json:"name" form:"name"`
	CountryID *int64  `json:"country_id" form:"country_id"`
}

type removeFlightResponse struct {
	FlightID        int64 `json:"flight_id"`
	CanceledTickets int   `json:"canceled_tickets"`
}

func NewAirlineHandler(flightSvc flights.FlightUseCase, airlineSvc airlines.AirlineUseCase) *AirlineHandler {
	return &AirlineHandler{flights: flightSvc, airlines: airlineSvc}
}

func (h *AirlineHandler) Register(router *gin.RouterGroup) {
	router.Any("/airline/flights", h.ownFlights)
	router.Any("/airline/flights/add", h.addFlight)
	router.Any("/airline/flights/:id/update", h.updateFlight)
	router.Any("/airline/flights/:id/remove", h.removeFlight)
	router.Any("/airline/:id/update", h.updateAirline)
}

func (h *AirlineHandler) ownFlights(c *gin.Context) {
	var req tokenRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	list, err := h.flights.ListOwnFlights(c.Request.Context(), req.credentials(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(list))
}

func (h *AirlineHandler) addFlight(c *gin.Context) {
	var req flightRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	flight, err := h.flights.AddFlight(c.Request.Context(), req.credentials(c), req.addInput())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flightResponse{Flight: *flight, Available: flight.Available()})
}

func (h *AirlineHandler) updateFlight(c *gin.Context) {
	var req flightRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	flight, err := h.flights.UpdateFlight(c.Request.Context(), req.credentials(c), id, req.patch())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flightResponse{Flight: *flight, Available: flight.Available()})
}

func (h *AirlineHandler) removeFlight(c *gin.Context) {
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

	canceled, err := h.flights.RemoveFlight(c.Request.Context(), req.credentials(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, removeFlightResponse{FlightID: id, CanceledTickets: canceled})
}

func (h *AirlineHandler) updateAirline(c *gin.Context) {
	var req airlineRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	company, err := h.airlines.UpdateAirline(c.Request.Context(), req.credentials(c), id, airlines.UpdateAirlineInput{
		Name:      req.Name,
		CountryID: req.CountryID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

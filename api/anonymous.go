package api

import (
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/accounts"
	"github.com/Domenick1991/flightdesk/internal/service/airlines"
	"github.com/Domenick1991/flightdesk/internal/service/countries"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
)

// AnonymousHandler serves the public catalogue and self-registration.
type AnonymousHandler struct {
	flights   flights.FlightUseCase
	airlines  airlines.AirlineUseCase
	countries countries.CountryUseCase
	accounts  accounts.AccountUseCase
}

type registerRequest struct {
	Username  string `json:"username" form:"username"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
}

// identityResponse exposes the token, which is only shown on creation.
type identityResponse struct {
	domain.Identity
	Token string `json:"token"`
}

// messageResponse is the body of successful calls that return no entity.
type messageResponse struct {
	Message string `json:"message"`
}

type flightResponse struct {
	domain.Flight
	Available int `json:"available"`
}

func NewAnonymousHandler(flightSvc flights.FlightUseCase, airlineSvc airlines.AirlineUseCase, countrySvc countries.CountryUseCase, accountSvc accounts.AccountUseCase) *AnonymousHandler {
	return &AnonymousHandler{flights: flightSvc, airlines: airlineSvc, countries: countrySvc, accounts: accountSvc}
}

func (h *AnonymousHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights", h.listFlights)
	router.GET("/flights/:id", h.getFlight)
	router.GET("/airlines", h.listAirlines)
	router.GET("/airlines/:id", h.getAirline)
	router.GET("/countries", h.listCountries)
	router.GET("/countries/:id", h.getCountry)
	router.POST("/register", h.register)
}

func (h *AnonymousHandler) listFlights(c *gin.Context) {
	list, err := h.flights.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(list))
}

func (h *AnonymousHandler) getFlight(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	flight, err := h.flights.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flightResponse{Flight: *flight, Available: flight.Available()})
}

func (h *AnonymousHandler) listAirlines(c *gin.Context) {
	list, err := h.airlines.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AnonymousHandler) getAirline(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	company, err := h.airlines.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *AnonymousHandler) listCountries(c *gin.Context) {
	list, err := h.countries.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AnonymousHandler) getCountry(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	country, err := h.countries.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, country)
}

func (h *AnonymousHandler) register(c *gin.Context) {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	created, err := h.accounts.Register(c.Request.Context(), accounts.RegisterInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, identityResponse{Identity: *created, Token: created.Token})
}

func toFlightResponses(list []domain.Flight) []flightResponse {
	out := make([]flightResponse, 0, len(list))
	for _, f := range list {
		out = append(out, flightResponse{Flight: f, Available: f.Available()})
	}
	return out
}

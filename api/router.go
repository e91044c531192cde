package api

import (
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/service/accounts"
	"github.com/Domenick1991/flightdesk/internal/service/airlines"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/Domenick1991/flightdesk/internal/service/countries"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Flights   flights.FlightUseCase
	Airlines  airlines.AirlineUseCase
	Countries countries.CountryUseCase
	Bookings  booking.BookingUseCase
	Accounts  accounts.AccountUseCase
}

// NewRouter builds the gin engine with every route set under /api.
func NewRouter(svc Services) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), AccessLog(), Recovery())
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "route not found", Code: codeNotFound})
	})

	group := router.Group("/api")
	NewAnonymousHandler(svc.Flights, svc.Airlines, svc.Countries, svc.Accounts).Register(group)
	NewCustomerHandler(svc.Bookings).Register(group)
	NewProfileHandler(svc.Accounts).Register(group)
	NewAirlineHandler(svc.Flights, svc.Airlines).Register(group)
	NewAdminHandler(svc.Accounts, svc.Airlines, svc.Countries).Register(group)
	return router
}

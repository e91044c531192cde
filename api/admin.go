package api

import (
	"context"
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/access"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/accounts"
	"github.com/Domenick1991/flightdesk/internal/service/airlines"
	"github.com/Domenick1991/flightdesk/internal/service/countries"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	accounts  accounts.AccountUseCase
	airlines  airlines.AirlineUseCase
	countries countries.CountryUseCase
}

type userRequest struct {
	tokenRequest
	registerRequest
}

type addAirlineRequest struct {
	tokenRequest
	Name      string `json:"name" form:"name"`
	CountryID int64  `json:"country_id" form:"country_id"`
	Manager   string `json:"manager" form:"manager"`
}

type addCountryRequest struct {
	tokenRequest
	Name string `json:"name" form:"name"`
}

func NewAdminHandler(accountSvc accounts.AccountUseCase, airlineSvc airlines.AirlineUseCase, countrySvc countries.CountryUseCase) *AdminHandler {
	return &AdminHandler{accounts: accountSvc, airlines: airlineSvc, countries: countrySvc}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.Any("/admin/customers", h.listCustomers)
	router.Any("/admin/customers/add", h.addCustomer)
	router.Any("/admin/administrators/add", h.addAdministrator)
	router.Any("/admin/users/:id/remove", h.removeUser)
	router.Any("/admin/airlines/add", h.addAirline)
	router.Any("/admin/airlines/:id/remove", h.removeAirline)
	router.Any("/admin/countries/add", h.addCountry)
}

func (h *AdminHandler) listCustomers(c *gin.Context) {
	var req tokenRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	customers, err := h.accounts.ListCustomers(c.Request.Context(), req.credentials(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *AdminHandler) addCustomer(c *gin.Context) {
	h.addUser(c, h.accounts.AddCustomer)
}

func (h *AdminHandler) addAdministrator(c *gin.Context) {
	h.addUser(c, h.accounts.AddAdministrator)
}

func (h *AdminHandler) addUser(c *gin.Context, create func(ctx context.Context, creds access.Credentials, input accounts.RegisterInput) (*domain.Identity, error)) {
	var req userRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	created, err := create(c.Request.Context(), req.credentials(c), accounts.RegisterInput{
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

func (h *AdminHandler) removeUser(c *gin.Context) {
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

	if err := h.accounts.RemoveUser(c.Request.Context(), req.credentials(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "user removed"})
}

func (h *AdminHandler) addAirline(c *gin.Context) {
	var req addAirlineRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	company, err := h.airlines.AddAirline(c.Request.Context(), req.credentials(c), airlines.AddAirlineInput{
		Name:            req.Name,
		CountryID:       req.CountryID,
		ManagerUsername: req.Manager,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *AdminHandler) removeAirline(c *gin.Context) {
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

	if err := h.airlines.RemoveAirline(c.Request.Context(), req.credentials(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "airline removed"})
}

func (h *AdminHandler) addCountry(c *gin.Context) {
	var req addCountryRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	country, err := h.countries.AddCountry(c.Request.Context(), req.credentials(c), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, country)
}

package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logs"
	"github.com/gin-gonic/gin"
)

const (
	codeMethodMismatch     = "method_mismatch"
	codeInvalidCredential  = "invalid_credential"
	codeForbidden          = "forbidden"
	codeNotFound           = "not_found"
	codeCapacityExceeded   = "capacity_exceeded"
	codeDuplicateBooking   = "duplicate_booking"
	codeInvalidFlight      = "invalid_flight"
	codeDuplicateUsername  = "duplicate_username"
	codeManagerTaken       = "manager_taken"
	codeAirlineHasFlights  = "airline_has_flights"
	codeUserManagesAirline = "user_manages_airline"
	codeDuplicateCountry   = "duplicate_country"
	codeInvalidRequest     = "invalid_request"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var badRequests = []struct {
	err  error
	code string
}{
	{domain.ErrMethodMismatch, codeMethodMismatch},
	{domain.ErrInvalidCredential, codeInvalidCredential},
	{domain.ErrCapacityExceeded, codeCapacityExceeded},
	{domain.ErrDuplicateBooking, codeDuplicateBooking},
	{domain.ErrInvalidFlight, codeInvalidFlight},
	{domain.ErrDuplicateUsername, codeDuplicateUsername},
	{domain.ErrManagerTaken, codeManagerTaken},
	{domain.ErrCompanyHasFlights, codeAirlineHasFlights},
	{domain.ErrUserManagesAirline, codeUserManagesAirline},
	{domain.ErrDuplicateCountry, codeDuplicateCountry},
	{domain.ErrInvalidRequest, codeInvalidRequest},
}

func errorStatus(err error) (int, string) {
	if errors.Is(err, domain.ErrForbidden) {
		return http.StatusForbidden, codeForbidden
	}
	if domain.IsNotFound(err) {
		return http.StatusNotFound, codeNotFound
	}
	for _, br := range badRequests {
		if errors.Is(err, br.err) {
			return http.StatusBadRequest, br.code
		}
	}
	return http.StatusInternalServerError, codeInternalError
}

func writeError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logs.Logger.WithError(err).WithField("request_id", RequestIDFrom(c)).Error("request failed")
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Code: code})
}

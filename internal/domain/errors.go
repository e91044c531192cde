package domain

import "errors"

var (
	ErrMethodMismatch    = errors.New("incorrect http method")
	ErrInvalidCredential = errors.New("invalid token")
	ErrForbidden         = errors.New("forbidden")

	ErrIdentityNotFound  = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrTokenCollision    = errors.New("token collision")

	ErrCompanyNotFound    = errors.New("airline not found")
	ErrCompanyHasFlights  = errors.New("airline still has flights")
	ErrManagerTaken       = errors.New("user already manages an airline")
	ErrUserManagesAirline = errors.New("user manages an airline")

	ErrCountryNotFound  = errors.New("country not found")
	ErrDuplicateCountry = errors.New("country already exists")

	ErrFlightNotFound = errors.New("flight not found")
	ErrInvalidFlight  = errors.New("invalid flight")

	ErrTicketNotFound   = errors.New("ticket not found")
	ErrCapacityExceeded = errors.New("max number of tickets has been reached")
	ErrDuplicateBooking = errors.New("ticket already booked for this flight")
	ErrInvalidRequest   = errors.New("invalid request")
)

// IsNotFound reports whether err refers to a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrIdentityNotFound) ||
		errors.Is(err, ErrCompanyNotFound) ||
		errors.Is(err, ErrCountryNotFound) ||
		errors.Is(err, ErrFlightNotFound) ||
		errors.Is(err, ErrTicketNotFound)
}

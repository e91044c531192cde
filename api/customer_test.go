package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Domenick1991/flightdesk/internal/access"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCustomerHandler_book_JSON(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewCustomerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]any{"token": "tok", "flight_id": 1})
	c.Request = httptest.NewRequest("POST", "/api/tickets/add", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	ticket := &domain.Ticket{ID: 1, FlightID: 1, CustomerID: 2, Status: domain.TicketStatusBooked}
	mockService.On("BookTicket", c.Request.Context(),
		access.Credentials{Method: "POST", Token: "tok"},
		booking.BookTicketInput{FlightID: 1},
	).Return(ticket, nil)

	handler.book(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Booked"`)
	mockService.AssertExpectations(t)
}

func TestCustomerHandler_book_Form(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewCustomerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	form := url.Values{"token": {"tok"}, "flight_id": {"4"}, "customer_id": {"9"}}
	c.Request = httptest.NewRequest("POST", "/api/tickets/add", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	mockService.On("BookTicket", mock.Anything,
		access.Credentials{Method: "POST", Token: "tok"},
		booking.BookTicketInput{FlightID: 4, CustomerID: 9},
	).Return(&domain.Ticket{ID: 2, FlightID: 4, CustomerID: 9, Status: domain.TicketStatusBooked}, nil)

	handler.book(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestCustomerHandler_book_Errors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrMethodMismatch, http.StatusBadRequest, codeMethodMismatch},
		{domain.ErrInvalidCredential, http.StatusBadRequest, codeInvalidCredential},
		{domain.ErrForbidden, http.StatusForbidden, codeForbidden},
		{domain.ErrFlightNotFound, http.StatusNotFound, codeNotFound},
		{domain.ErrCapacityExceeded, http.StatusBadRequest, codeCapacityExceeded},
		{domain.ErrDuplicateBooking, http.StatusBadRequest, codeDuplicateBooking},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewCustomerHandler(mockService)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/api/tickets/add?token=tok&flight_id=1", nil)

			mockService.On("BookTicket", mock.Anything, access.Credentials{Method: "GET", Token: "tok"}, booking.BookTicketInput{FlightID: 1}).
				Return(nil, tt.err)

			handler.book(c)

			assert.Equal(t, tt.status, w.Code)
			var body errorResponse
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.err.Error(), body.Error)
		})
	}
}

func TestCustomerHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewCustomerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	c.Request = httptest.NewRequest("POST", "/api/tickets/12/cancel", strings.NewReader(`{"token":"tok"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	ticket := &domain.Ticket{ID: 12, FlightID: 1, CustomerID: 2, Status: domain.TicketStatusCanceled}
	mockService.On("CancelTicket", mock.Anything, access.Credentials{Method: "POST", Token: "tok"}, int64(12)).Return(ticket, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Canceled"`)
}

func TestCustomerHandler_mine(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewCustomerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/tickets/mine?token=tok", nil)

	mockService.On("ListOwnTickets", mock.Anything, access.Credentials{Method: "GET", Token: "tok"}).
		Return([]domain.Ticket{{ID: 1}, {ID: 2}}, nil)

	handler.mine(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestCustomerHandler_book_MalformedBody(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewCustomerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/tickets/add", strings.NewReader(`{"flight_id":`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.book(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), codeInvalidRequest)
	mockService.AssertNotCalled(t, "BookTicket", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerHandler_book_QueryTokenIgnoredOnPost(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewCustomerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/tickets/add?token=tok", strings.NewReader(`{"flight_id":3}`))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("BookTicket", mock.Anything, access.Credentials{Method: "POST"}, booking.BookTicketInput{FlightID: 3}).
		Return(nil, domain.ErrInvalidCredential)

	handler.book(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), codeInvalidCredential)
	mockService.AssertExpectations(t)
}

func TestCustomerHandler_book_FormIgnoresQuery(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewCustomerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	form := url.Values{"flight_id": {"4"}}
	c.Request = httptest.NewRequest("POST", "/api/tickets/add?token=tok", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	mockService.On("BookTicket", mock.Anything, access.Credentials{Method: "POST"}, booking.BookTicketInput{FlightID: 4}).
		Return(nil, domain.ErrInvalidCredential)

	handler.book(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

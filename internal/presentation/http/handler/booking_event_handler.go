package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/clientbook-api/internal/application/service"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	"github.com/sangkips/clientbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/clientbook-api/internal/presentation/http/dto/response"
)

// BookingEventHandler receives booking lifecycle events from the booking
// subsystem.
type BookingEventHandler struct {
	eventService *service.BookingEventService
}

// NewBookingEventHandler creates a new booking event handler
func NewBookingEventHandler(eventService *service.BookingEventService) *BookingEventHandler {
	return &BookingEventHandler{eventService: eventService}
}

// Created links a new booking to a client and refreshes the client's stats
func (h *BookingEventHandler) Created(c *gin.Context) {
	var req request.BookingCreatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	source := enum.ClientSource(req.Source)
	if !source.IsValid() {
		source = enum.ClientSourceOnline
	}

	result, err := h.eventService.OnBookingCreated(c.Request.Context(), GetBusinessID(c), &service.BookingCreatedInput{
		BookingID: optionalUUID(req.BookingID),
		Contact: identity.Contact{
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Date:   req.Date,
		Source: source,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Booking processed", result)
}

// StatusChanged refreshes the stats of the client a booking belongs to
func (h *BookingEventHandler) StatusChanged(c *gin.Context) {
	var req request.BookingStatusChangedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if req.BookingID == "" && req.ClientID == "" {
		response.BadRequest(c, "booking_id or client_id is required")
		return
	}

	result, err := h.eventService.OnBookingStatusChanged(c.Request.Context(), GetBusinessID(c), &service.BookingStatusChangedInput{
		ClientID:  optionalUUID(req.ClientID),
		BookingID: optionalUUID(req.BookingID),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Booking status processed", result)
}

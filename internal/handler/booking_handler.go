package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/acs-institute-api/internal/dto"
	"github.com/noah-isme/acs-institute-api/internal/models"
	"github.com/noah-isme/acs-institute-api/internal/service"
	appErrors "github.com/noah-isme/acs-institute-api/pkg/errors"
	"github.com/noah-isme/acs-institute-api/pkg/response"
)

type bookingService interface {
	Services(ctx context.Context) ([]models.SalonService, error)
	Options() dto.BookingOptionsResponse
	Book(ctx context.Context, req service.BookAppointmentRequest) (*models.Appointment, error)
	Appointments(ctx context.Context) ([]models.Appointment, error)
}

// BookingHandler exposes the salon booking flow.
type BookingHandler struct {
	booking bookingService
}

// NewBookingHandler constructs BookingHandler.
func NewBookingHandler(booking bookingService) *BookingHandler {
	return &BookingHandler{booking: booking}
}

// Services godoc
// @Summary List salon services
// @Tags Salon
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /salon/services [get]
func (h *BookingHandler) Services(c *gin.Context) {
	services, err := h.booking.Services(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, services)
}

// Slots godoc
// @Summary Bookable dates and time slots
// @Tags Salon
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /salon/slots [get]
func (h *BookingHandler) Slots(c *gin.Context) {
	response.OK(c, h.booking.Options())
}

// Book godoc
// @Summary Book an appointment
// @Tags Salon
// @Accept json
// @Produce json
// @Param payload body service.BookAppointmentRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /salon/appointments [post]
func (h *BookingHandler) Book(c *gin.Context) {
	var req service.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	appointment, err := h.booking.Book(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appointment)
}

// Appointments godoc
// @Summary List appointments
// @Tags Salon
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /salon/appointments [get]
func (h *BookingHandler) Appointments(c *gin.Context) {
	appointments, err := h.booking.Appointments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, appointments)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/acs-institute-api/internal/dto"
	"github.com/noah-isme/acs-institute-api/internal/models"
	appErrors "github.com/noah-isme/acs-institute-api/pkg/errors"
)

const (
	bookingDateLayout  = "2006-01-02"
	firstSlotMinutes   = 9 * 60
	lastSlotMinutes    = 19*60 + 30
	slotStepMinutes    = 30
	defaultBookingDays = 30
)

type salonStore interface {
	ListServices(ctx context.Context) ([]models.SalonService, error)
	FindServiceByID(ctx context.Context, id string) (*models.SalonService, error)
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
	InsertAppointment(ctx context.Context, appointment *models.Appointment) error
}

// BookAppointmentRequest is the salon booking form.
type BookAppointmentRequest struct {
	ServiceID string  `json:"service_id" validate:"required"`
	Date      string  `json:"date" validate:"required"`
	Time      string  `json:"time" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     string  `json:"phone" validate:"required"`
	Notes     *string `json:"notes"`
}

// BookingService runs the salon booking flow.
type BookingService struct {
	store       salonStore
	bookingDays int
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewBookingService constructs BookingService. bookingDays <= 0 selects 30.
func NewBookingService(store salonStore, bookingDays int, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if bookingDays <= 0 {
		bookingDays = defaultBookingDays
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{store: store, bookingDays: bookingDays, validator: validate, logger: logger, now: time.Now}
}

// Services lists the treatment catalog.
func (s *BookingService) Services(ctx context.Context) ([]models.SalonService, error) {
	services, err := s.store.ListServices(ctx)
	if err != nil {
		return nil, appErrors.Backend(err, "failed to list services")
	}
	return services, nil
}

// Appointments lists bookings, newest first.
func (s *BookingService) Appointments(ctx context.Context) ([]models.Appointment, error) {
	appointments, err := s.store.ListAppointments(ctx)
	if err != nil {
		return nil, appErrors.Backend(err, "failed to list appointments")
	}
	return appointments, nil
}

// Options returns the bookable dates, starting tomorrow, and the daily time
// slots.
func (s *BookingService) Options() dto.BookingOptionsResponse {
	return dto.BookingOptionsResponse{Dates: s.availableDates(), Times: timeSlots()}
}

// Book validates the request and stores a confirmed appointment priced from
// the chosen service.
func (s *BookingService) Book(ctx context.Context, req BookAppointmentRequest) (*models.Appointment, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if !contains(s.availableDates(), req.Date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date must be within the next %d days", s.bookingDays))
	}
	if !contains(timeSlots(), req.Time) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time is not a bookable slot")
	}

	service, err := s.store.FindServiceByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Backend(err, "failed to load service")
	}

	appointment := &models.Appointment{
		ServiceID:     service.ID,
		ServiceName:   service.Name,
		Date:          req.Date,
		Time:          req.Time,
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
		Status:        models.AppointmentStatusConfirmed,
		Price:         service.Price,
		Notes:         req.Notes,
	}
	if err := s.store.InsertAppointment(ctx, appointment); err != nil {
		s.logger.Error("failed to book appointment", zap.String("service_id", service.ID), zap.Error(err))
		return nil, appErrors.Backend(err, "failed to book appointment")
	}
	s.logger.Info("appointment booked", zap.String("appointment_id", appointment.ID), zap.String("date", req.Date))
	return appointment, nil
}

func (s *BookingService) availableDates() []string {
	today := s.now().UTC()
	dates := make([]string, 0, s.bookingDays)
	for i := 1; i <= s.bookingDays; i++ {
		dates = append(dates, today.AddDate(0, 0, i).Format(bookingDateLayout))
	}
	return dates
}

func timeSlots() []string {
	slots := make([]string, 0, (lastSlotMinutes-firstSlotMinutes)/slotStepMinutes+1)
	for m := firstSlotMinutes; m <= lastSlotMinutes; m += slotStepMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/acs-institute-api/internal/models"
)

const appointmentColumns = `id, service_id, service_name, appointment_date, appointment_time, customer_name, customer_email,
        customer_phone, status, price, notes, created_at`

// SalonRepository persists salon services and appointments in PostgreSQL.
type SalonRepository struct {
	db *sqlx.DB
}

// NewSalonRepository constructs the repository.
func NewSalonRepository(db *sqlx.DB) *SalonRepository {
	return &SalonRepository{db: db}
}

// ListServices returns the catalog, oldest first.
func (r *SalonRepository) ListServices(ctx context.Context) ([]models.SalonService, error) {
	const query = `SELECT id, name, description, duration, price, image, created_at FROM salon_services ORDER BY created_at ASC`
	var services []models.SalonService
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("list salon services: %w", err)
	}
	return services, nil
}

// FindServiceByID returns one service.
func (r *SalonRepository) FindServiceByID(ctx context.Context, id string) (*models.SalonService, error) {
	const query = `SELECT id, name, description, duration, price, image, created_at FROM salon_services WHERE id = $1`
	var service models.SalonService
	if err := r.db.GetContext(ctx, &service, query, id); err != nil {
		return nil, err
	}
	return &service, nil
}

// ListAppointments returns appointments, newest first.
func (r *SalonRepository) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY created_at DESC`
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

// InsertAppointment persists a booking.
func (r *SalonRepository) InsertAppointment(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	appointment.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO appointments (id, service_id, service_name, appointment_date, appointment_time, customer_name,
        customer_email, customer_phone, status, price, notes, created_at)
        VALUES (:id, :service_id, :service_name, :appointment_date, :appointment_time, :customer_name,
        :customer_email, :customer_phone, :status, :price, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

// MemorySalon is the in-process salon store used without a database.
type MemorySalon struct {
	mu           sync.RWMutex
	services     []models.SalonService
	appointments []models.Appointment
	seq          int64
}

// NewMemorySalon seeds the sample service catalog.
func NewMemorySalon() *MemorySalon {
	return &MemorySalon{services: SampleSalonServices()}
}

func (m *MemorySalon) ListServices(context.Context) ([]models.SalonService, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.SalonService(nil), m.services...), nil
}

func (m *MemorySalon) FindServiceByID(_ context.Context, id string) (*models.SalonService, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.services {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MemorySalon) ListAppointments(context.Context) ([]models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.appointments)
	out := make([]models.Appointment, n)
	for i, a := range m.appointments {
		out[n-1-i] = a
	}
	return out, nil
}

func (m *MemorySalon) InsertAppointment(_ context.Context, appointment *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if appointment.ID == "" {
		appointment.ID = strconv.FormatInt(m.seq, 10)
	}
	appointment.CreatedAt = time.Now().UTC()
	m.appointments = append(m.appointments, *appointment)
	return nil
}

package models

import "time"

// SalonService is a bookable treatment in the salon variant.
type SalonService struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Duration    int       `db:"duration" json:"duration"`
	Price       float64   `db:"price" json:"price"`
	Image       string    `db:"image" json:"image"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AppointmentStatus tracks an appointment booking.
type AppointmentStatus string

// Appointment statuses.
const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment is a booked salon slot.
type Appointment struct {
	ID            string            `db:"id" json:"id"`
	ServiceID     string            `db:"service_id" json:"service_id"`
	ServiceName   string            `db:"service_name" json:"service_name"`
	Date          string            `db:"appointment_date" json:"date"`
	Time          string            `db:"appointment_time" json:"time"`
	CustomerName  string            `db:"customer_name" json:"customer_name"`
	CustomerEmail string            `db:"customer_email" json:"customer_email"`
	CustomerPhone string            `db:"customer_phone" json:"customer_phone"`
	Status        AppointmentStatus `db:"status" json:"status"`
	Price         float64           `db:"price" json:"price"`
	Notes         *string           `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
}

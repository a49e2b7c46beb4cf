/*
Package booking owns the ordering record and its admin lifecycle.

OWNERSHIP:
  The Booking is the source of truth for what the client agreed to pay
  (the embedded Quote). The Shift it spawns is the source of truth for
  what actually happened. One Booking spawns exactly one Shift, at
  creation time.

KEY CONCEPTS IN THIS FILE (types.go):
  - Booking: client/patient identity, selected tasks, schedule, Quote
  - Status / PaymentStatus enums
  - Store: persistence contract for bookings
*/
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/pswdirect/care-engine/pricing"
)

// =============================================================================
// STATUS ENUMS
// =============================================================================

type Status string

const (
	StatusPending    Status = "pending"
	StatusActive     Status = "active"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusArchived   Status = "archived"
)

type PaymentStatus string

const (
	PaymentInvoicePending PaymentStatus = "invoice-pending"
	PaymentPaid           PaymentStatus = "paid"
	PaymentRefunded       PaymentStatus = "refunded"
)

// =============================================================================
// BOOKING
// =============================================================================

type Booking struct {
	ID string

	ClientName  string
	ClientEmail string
	PatientName string
	Address     string

	// WithinCoverage is precomputed by the caller; the engine does no
	// geocoding.
	WithinCoverage bool

	TaskIDs []string

	ScheduledDate  time.Time
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	IsASAP         bool

	Quote *pricing.Quote

	ShiftID  string
	WorkerID string

	PaymentStatus PaymentStatus
	Status        Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNoTasks: a booking cannot be created without at least one task.
	// (A null quote is a valid transient UI state; a persisted booking is
	// past that point.)
	ErrNoTasks = errors.New("no tasks selected")

	// ErrIllegalBookingState is returned when an admin action does not
	// apply to the booking's current status.
	ErrIllegalBookingState = errors.New("action not allowed in current booking state")

	// ErrOutsideCoverage is returned when the caller marked the address
	// as outside the service area.
	ErrOutsideCoverage = errors.New("address outside coverage area")
)

// =============================================================================
// STORE
// =============================================================================

type Store interface {
	CreateBooking(ctx context.Context, b Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBooking(ctx context.Context, b Booking) error
	ListBookings(ctx context.Context) ([]Booking, error)
}

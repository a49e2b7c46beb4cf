/*
service.go - Booking creation and admin actions

PURPOSE:
  Create prices the request (surge evaluation + quote) and spawns the
  booking's single Shift with the category and service names copied from
  the catalog, so downstream payroll never re-infers them.

CONFIG SNAPSHOTS:
  Every operation takes a pricing.Snapshot fetched by the caller. The
  service holds no ambient configuration; "live vs. snapshotted rate" is
  the caller's explicit choice.

ADMIN ACTIONS:
  AssignWorker, Cancel, Archive, Restore, MarkPaid, Refund - each checks
  status legality first. SyncShift maps shift transitions back onto the
  booking status (claimed -> active, checked-in -> in-progress,
  completed -> completed).
*/
package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pswdirect/care-engine/pricing"
	"github.com/pswdirect/care-engine/shift"
)

// Service wires booking persistence to the pricing engine and the shift
// store.
type Service struct {
	Bookings Store
	Shifts   shift.Store

	// Now is injectable for tests.
	Now func() time.Time
}

func NewService(bookings Store, shifts shift.Store) *Service {
	return &Service{Bookings: bookings, Shifts: shifts, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// =============================================================================
// CREATE
// =============================================================================

// CreateRequest carries already-validated primitives from the booking flow.
type CreateRequest struct {
	ClientName  string
	ClientEmail string
	PatientName string
	Address     string

	// WithinCoverage is precomputed upstream (no geocoding here).
	WithinCoverage bool

	TaskIDs []string

	ScheduledDate  time.Time
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	IsASAP         bool

	// ExplicitDurationHours, when non-nil, is the caller-chosen duration
	// for duration-based flows.
	ExplicitDurationHours *decimal.Decimal
}

// Create prices the request and persists the booking plus its one shift.
func (s *Service) Create(ctx context.Context, req CreateRequest, snap pricing.Snapshot) (Booking, shift.Shift, error) {
	if len(req.TaskIDs) == 0 {
		return Booking{}, shift.Shift{}, ErrNoTasks
	}
	if !req.WithinCoverage {
		return Booking{}, shift.Shift{}, ErrOutsideCoverage
	}

	clock := ""
	if !req.ScheduledStart.IsZero() {
		clock = req.ScheduledStart.Format("15:04")
	}
	multiplier := pricing.EvaluateSurge(snap.Rules, snap.Config, req.ScheduledDate, clock, req.IsASAP)
	quote := pricing.Price(snap.Catalog, snap.Config, req.TaskIDs, multiplier, req.ExplicitDurationHours)
	if quote == nil {
		return Booking{}, shift.Shift{}, ErrNoTasks
	}

	now := s.now()
	b := Booking{
		ID:             uuid.NewString(),
		ClientName:     req.ClientName,
		ClientEmail:    req.ClientEmail,
		PatientName:    req.PatientName,
		Address:        req.Address,
		WithinCoverage: req.WithinCoverage,
		TaskIDs:        append([]string(nil), req.TaskIDs...),
		ScheduledDate:  req.ScheduledDate,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		IsASAP:         req.IsASAP,
		Quote:          quote,
		PaymentStatus:  PaymentInvoicePending,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	sh := shift.Shift{
		ID:             uuid.NewString(),
		BookingID:      b.ID,
		Services:       snap.Catalog.ServiceNames(req.TaskIDs),
		Category:       snap.Catalog.HighestCategory(req.TaskIDs),
		ScheduledDate:  req.ScheduledDate,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		Status:         shift.StatusAvailable,
	}
	b.ShiftID = sh.ID

	if err := s.Bookings.CreateBooking(ctx, b); err != nil {
		return Booking{}, shift.Shift{}, err
	}
	if err := s.Shifts.CreateShift(ctx, sh); err != nil {
		return Booking{}, shift.Shift{}, err
	}
	return b, sh, nil
}

// =============================================================================
// ADMIN ACTIONS
// =============================================================================

// AssignWorker records an admin-side worker assignment on the booking.
// The claim itself still goes through the shift lifecycle.
func (s *Service) AssignWorker(ctx context.Context, bookingID, workerID string) (Booking, error) {
	return s.update(ctx, bookingID, func(b *Booking) error {
		switch b.Status {
		case StatusPending, StatusActive:
			b.WorkerID = workerID
			b.Status = StatusActive
			return nil
		default:
			return ErrIllegalBookingState
		}
	})
}

func (s *Service) Cancel(ctx context.Context, bookingID string) (Booking, error) {
	return s.update(ctx, bookingID, func(b *Booking) error {
		switch b.Status {
		case StatusPending, StatusActive:
			b.Status = StatusCancelled
			return nil
		default:
			return ErrIllegalBookingState
		}
	})
}

func (s *Service) Archive(ctx context.Context, bookingID string) (Booking, error) {
	return s.update(ctx, bookingID, func(b *Booking) error {
		switch b.Status {
		case StatusCompleted, StatusCancelled:
			b.Status = StatusArchived
			return nil
		default:
			return ErrIllegalBookingState
		}
	})
}

func (s *Service) Restore(ctx context.Context, bookingID string) (Booking, error) {
	return s.update(ctx, bookingID, func(b *Booking) error {
		if b.Status != StatusArchived {
			return ErrIllegalBookingState
		}
		b.Status = StatusCompleted
		return nil
	})
}

func (s *Service) MarkPaid(ctx context.Context, bookingID string) (Booking, error) {
	return s.update(ctx, bookingID, func(b *Booking) error {
		if b.PaymentStatus != PaymentInvoicePending {
			return ErrIllegalBookingState
		}
		b.PaymentStatus = PaymentPaid
		return nil
	})
}

func (s *Service) Refund(ctx context.Context, bookingID string) (Booking, error) {
	return s.update(ctx, bookingID, func(b *Booking) error {
		if b.PaymentStatus != PaymentPaid {
			return ErrIllegalBookingState
		}
		b.PaymentStatus = PaymentRefunded
		return nil
	})
}

// SyncShift maps a shift transition back onto the booking status.
func (s *Service) SyncShift(ctx context.Context, sh shift.Shift) (Booking, error) {
	return s.update(ctx, sh.BookingID, func(b *Booking) error {
		switch sh.Status {
		case shift.StatusClaimed:
			b.WorkerID = sh.WorkerID
			b.Status = StatusActive
		case shift.StatusCheckedIn:
			b.Status = StatusInProgress
		case shift.StatusCompleted:
			b.Status = StatusCompleted
		}
		return nil
	})
}

func (s *Service) update(ctx context.Context, bookingID string, apply func(*Booking) error) (Booking, error) {
	b, err := s.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, err
	}
	if err := apply(&b); err != nil {
		return Booking{}, err
	}
	b.UpdatedAt = s.now()
	if err := s.Bookings.UpdateBooking(ctx, b); err != nil {
		return Booking{}, err
	}
	return b, nil
}

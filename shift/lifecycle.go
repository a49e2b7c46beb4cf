/*
lifecycle.go - The shift state machine

PURPOSE:
  Implements claim, check-in and sign-out as conditional writes against
  the Store, computes the overtime determination at sign-out, and fires
  the completion notification.

TWO CLOCKS:
  Overtime flagging compares sign-out against the SCHEDULED end; payroll
  later computes pay on the ACTUAL worked span (check-in to sign-out).
  These are intentionally different clocks.

NOTIFICATIONS:
  Sign-out notifies the ordering client with the care summary. The send is
  fire-and-forget: a failure is logged and never blocks or rolls back the
  completed transition.
*/
package shift

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pswdirect/care-engine/pricing"
)

// =============================================================================
// NOTIFIER - External collaborator, fire-and-forget
// =============================================================================

// Notifier dispatches email/push events. Implementations must be safe to
// call from a goroutine; errors are the implementation's problem to report.
type Notifier interface {
	Notify(event string, payload map[string]string) error
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) Notify(string, map[string]string) error { return nil }

// RateResolver returns the hourly worker pay rate for a category. Sign-out
// uses it to snapshot the rate onto the shift.
type RateResolver func(pricing.Category) decimal.Decimal

// =============================================================================
// LIFECYCLE MANAGER
// =============================================================================

// Lifecycle advances shifts through the state machine.
type Lifecycle struct {
	Store    Store
	Notifier Notifier

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewLifecycle(store Store, notifier Notifier) *Lifecycle {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Lifecycle{Store: store, Notifier: notifier, Now: time.Now}
}

func (l *Lifecycle) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// =============================================================================
// CLAIM - available -> claimed
// =============================================================================

// Claim assigns the shift to a worker. At most one claimant ever wins:
// the write is conditional on the stored status being exactly 'available'
// at write time. The loser receives ErrAlreadyClaimed.
func (l *Lifecycle) Claim(ctx context.Context, shiftID, workerID, workerName string) (Shift, error) {
	updated, err := l.Store.TransitionShift(ctx, shiftID, StatusAvailable, func(s *Shift) error {
		now := l.now()
		s.WorkerID = workerID
		s.WorkerName = workerName
		s.ClaimedAt = &now
		s.Status = StatusClaimed
		return nil
	})
	if err != nil {
		return Shift{}, l.mapConflict(ctx, shiftID, err, StatusAvailable, ErrAlreadyClaimed)
	}
	return updated, nil
}

// =============================================================================
// CHECK-IN - claimed -> checked-in
// =============================================================================

// CheckIn records the worker's arrival location and timestamp.
func (l *Lifecycle) CheckIn(ctx context.Context, shiftID, location string) (Shift, error) {
	updated, err := l.Store.TransitionShift(ctx, shiftID, StatusClaimed, func(s *Shift) error {
		now := l.now()
		s.CheckedInAt = &now
		s.CheckInLocation = location
		s.Status = StatusCheckedIn
		return nil
	})
	if err != nil {
		return Shift{}, l.mapConflict(ctx, shiftID, err, StatusClaimed, ErrNotClaimed)
	}
	return updated, nil
}

// =============================================================================
// SIGN-OUT - checked-in -> completed
// =============================================================================

// SignOutParams carries the per-call inputs for sign-out. GraceMinutes and
// RateFor come from the caller's current config snapshot; the engine holds
// no ambient configuration.
type SignOutParams struct {
	CareRecord  string
	NotifyEmail string

	// GraceMinutes is the overtime grace threshold (flag is inclusive at
	// this value).
	GraceMinutes int

	// RateFor resolves the pay rate snapshot for the shift category.
	// Optional; without it no snapshot is recorded and settlement falls
	// back to live rates.
	RateFor RateResolver
}

// SignOut completes the shift. Overtime minutes are measured against the
// scheduled end, floored at zero; the binary overtime flag is set at the
// grace threshold. Billing-block rounding happens later, on the invoice
// side, not here.
func (l *Lifecycle) SignOut(ctx context.Context, shiftID string, p SignOutParams) (Shift, error) {
	updated, err := l.Store.TransitionShift(ctx, shiftID, StatusCheckedIn, func(s *Shift) error {
		now := l.now()
		s.SignedOutAt = &now
		s.CareRecord = p.CareRecord
		s.OvertimeMinutes = overtimeMinutes(now, s.ScheduledEnd)
		s.FlaggedForOvertime = s.OvertimeMinutes >= p.GraceMinutes
		if p.RateFor != nil {
			s.PayRateSnapshot = p.RateFor(s.Category)
		}
		s.Status = StatusCompleted
		return nil
	})
	if err != nil {
		return Shift{}, l.mapConflict(ctx, shiftID, err, StatusCheckedIn, ErrNotCheckedIn)
	}

	// Fire-and-forget: a failed notification must not block settlement or
	// roll back the completed state.
	go func(s Shift, email string) {
		payload := map[string]string{
			"shift_id":     s.ID,
			"booking_id":   s.BookingID,
			"worker_name":  s.WorkerName,
			"care_record":  s.CareRecord,
			"notify_email": email,
		}
		if err := l.Notifier.Notify("shift.completed", payload); err != nil {
			log.Printf("shift %s: completion notification failed: %v", s.ID, err)
		}
	}(updated, p.NotifyEmail)

	return updated, nil
}

// overtimeMinutes floors the overrun to whole minutes, never negative.
func overtimeMinutes(signedOut, scheduledEnd time.Time) int {
	if !signedOut.After(scheduledEnd) {
		return 0
	}
	return int(signedOut.Sub(scheduledEnd) / time.Minute)
}

// mapConflict turns a store-level status conflict into the user-facing
// transition error for the attempted operation. Other errors (store
// unreachable, not found) pass through untouched.
func (l *Lifecycle) mapConflict(ctx context.Context, shiftID string, err error, expected Status, sentinel error) error {
	if !errors.Is(err, ErrStatusConflict) {
		return err
	}
	actual := Status("")
	if current, getErr := l.Store.GetShift(ctx, shiftID); getErr == nil {
		actual = current.Status
	}
	return &TransitionError{ShiftID: shiftID, Expected: expected, Actual: actual, Sentinel: sentinel}
}

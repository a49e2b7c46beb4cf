/*
Package shift owns the operational record a worker interacts with and the
strict state machine that advances it.

LIFECYCLE:

  available --claim--> claimed --checkIn--> checked-in --signOut--> completed

  Forward-only. No worker-side cancellation. Completed is terminal: there
  is no re-opening, corrections happen through payroll's admin path, never
  by mutating a completed shift.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: what actually happened, as opposed to the Booking (what the
    client agreed to pay)
  - Status: the state machine position
  - Sentinel errors for illegal transitions

INVARIANTS:
  - CheckedInAt implies ClaimedAt is set
  - SignedOutAt implies CheckedInAt is set
  - OvertimeMinutes is meaningful only once SignedOutAt is set, and >= 0

SEE ALSO:
  - store.go: conditional-write persistence contract
  - lifecycle.go: the transition logic
*/
package shift

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pswdirect/care-engine/pricing"
)

// =============================================================================
// STATUS - Strict forward-only state machine
// =============================================================================

type Status string

const (
	StatusAvailable Status = "available"
	StatusClaimed   Status = "claimed"
	StatusCheckedIn Status = "checked-in"
	StatusCompleted Status = "completed"
)

// =============================================================================
// SHIFT
// =============================================================================

// Shift is the operational record derived 1:1 from a Booking.
//
// Category is persisted at creation time, copied from the task catalog, so
// payroll never has to re-infer it from free-text service names. Shifts
// written before this field existed fall back to keyword classification in
// the payroll package.
//
// PayRateSnapshot is captured at sign-out so that later admin edits to the
// pay-rate table cannot silently rewrite historical payroll.
type Shift struct {
	ID        string
	BookingID string

	WorkerID   string
	WorkerName string

	Services []string
	Category pricing.Category

	ScheduledDate  time.Time
	ScheduledStart time.Time
	ScheduledEnd   time.Time

	ClaimedAt       *time.Time
	CheckedInAt     *time.Time
	CheckInLocation string
	SignedOutAt     *time.Time

	OvertimeMinutes    int
	FlaggedForOvertime bool
	PayRateSnapshot    decimal.Decimal

	CareRecord string

	Status Status
}

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAlreadyClaimed is returned when claim races another worker or hits
	// a shift that already left 'available'. The loser must not retry
	// automatically - picking a different job is a user action.
	ErrAlreadyClaimed = errors.New("shift already claimed")

	// ErrNotClaimed is returned by check-in on a shift that is not 'claimed'.
	ErrNotClaimed = errors.New("shift not claimed")

	// ErrNotCheckedIn is returned by sign-out on a shift that is not 'checked-in'.
	ErrNotCheckedIn = errors.New("shift not checked in")

	// ErrShiftNotFound is returned when the shift id is unknown.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrStatusConflict is the store-level conditional-write failure: the
	// persisted status was not the expected one at write time. The manager
	// maps it onto the user-facing transition error above.
	ErrStatusConflict = errors.New("shift status conflict")
)

// TransitionError carries the context of a rejected transition.
type TransitionError struct {
	ShiftID  string
	Expected Status
	Actual   Status
	Sentinel error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("shift %s: expected status %q, found %q", e.ShiftID, e.Expected, e.Actual)
}

func (e *TransitionError) Unwrap() error { return e.Sentinel }

// IsInvalidTransition reports whether err is one of the user-facing
// transition rejections (recoverable locally: reload the job list).
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrAlreadyClaimed) ||
		errors.Is(err, ErrNotClaimed) ||
		errors.Is(err, ErrNotCheckedIn)
}

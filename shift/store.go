/*
store.go - Conditional-write persistence contract for shifts

PURPOSE:
  Defines the interface between the lifecycle manager and the database.
  Multiple server instances may run against the same store, so every state
  transition is a compare-and-swap keyed on the CURRENT persisted status -
  never a read-then-write, and never an in-process lock.

TRANSITION CONTRACT:
  TransitionShift(ctx, id, from, apply) must atomically:
    1. Load the shift
    2. Fail with ErrStatusConflict unless its status == from
    3. Apply the mutation
    4. Persist, again conditional on status == from at write time
  Exactly one of two racing calls with the same 'from' may succeed.

IMPLEMENTATIONS:
  - store/memory: mutex-guarded maps (tests/dev)
  - store/sqlite: status-guarded UPDATE, RowsAffected == 0 => conflict
  - store/dynamo: DynamoDB ConditionExpression on #status

FAILURE SEMANTICS:
  Store errors propagate to the caller as retryable failures. The engine
  itself never retries: a careless retry of claim could break the
  at-most-one-claimant invariant.
*/
package shift

import (
	"context"
	"time"
)

// Store persists shifts. TransitionShift is the only mutation path after
// creation.
type Store interface {
	// CreateShift persists a new shift (status available).
	CreateShift(ctx context.Context, s Shift) error

	// GetShift loads a shift. Returns ErrShiftNotFound for unknown ids.
	GetShift(ctx context.Context, id string) (Shift, error)

	// TransitionShift applies a conditional state change. The apply
	// function mutates the loaded shift (including its Status); the write
	// succeeds only if the persisted status still equals from.
	// Returns ErrStatusConflict when the condition fails.
	TransitionShift(ctx context.Context, id string, from Status, apply func(*Shift) error) (Shift, error)

	// ShiftsByStatus lists shifts in a given state (the job board reads
	// 'available', settlement review reads 'completed').
	ShiftsByStatus(ctx context.Context, status Status) ([]Shift, error)

	// CompletedShifts lists completed shifts whose scheduled date falls in
	// [from, to], for settlement.
	CompletedShifts(ctx context.Context, from, to time.Time) ([]Shift, error)
}

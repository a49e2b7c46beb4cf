// Package memory provides an in-memory store implementation (tests/dev).
//
// The compare-and-swap semantics of TransitionShift are the reference
// behavior the other backends must match: the status check and the write
// happen under one lock, so exactly one of two racing transitions with the
// same expected status can win.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pswdirect/care-engine/booking"
	"github.com/pswdirect/care-engine/payroll"
	"github.com/pswdirect/care-engine/pricing"
	"github.com/pswdirect/care-engine/shift"
)

// Store holds everything behind one mutex. Seeded with the default
// catalog, pricing config, surge rules, and pay rates.
type Store struct {
	mu sync.RWMutex

	shifts   map[string]shift.Shift
	bookings map[string]booking.Booking

	config   pricing.Config
	rules    []pricing.SurgeRule
	payRates payroll.PayRates
	tasks    []pricing.TaskDefinition
}

func New() *Store {
	return &Store{
		shifts:   make(map[string]shift.Shift),
		bookings: make(map[string]booking.Booking),
		config:   pricing.DefaultConfig(),
		rules:    pricing.DefaultSurgeRules(),
		payRates: payroll.DefaultPayRates(),
		tasks:    pricing.DefaultTasks(),
	}
}

// =============================================================================
// SHIFT STORE
// =============================================================================

func (m *Store) CreateShift(_ context.Context, s shift.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[s.ID] = s
	return nil
}

func (m *Store) GetShift(_ context.Context, id string) (shift.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return s, nil
}

// TransitionShift checks the status and writes under the same lock.
func (m *Store) TransitionShift(_ context.Context, id string, from shift.Status, apply func(*shift.Shift) error) (shift.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	if s.Status != from {
		return shift.Shift{}, shift.ErrStatusConflict
	}
	if err := apply(&s); err != nil {
		return shift.Shift{}, err
	}
	m.shifts[id] = s
	return s, nil
}

func (m *Store) ShiftsByStatus(_ context.Context, status shift.Status) ([]shift.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []shift.Shift
	for _, s := range m.shifts {
		if s.Status == status {
			out = append(out, s)
		}
	}
	sortShifts(out)
	return out, nil
}

func (m *Store) CompletedShifts(_ context.Context, from, to time.Time) ([]shift.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []shift.Shift
	for _, s := range m.shifts {
		if s.Status != shift.StatusCompleted {
			continue
		}
		if !from.IsZero() && s.ScheduledDate.Before(from) {
			continue
		}
		if !to.IsZero() && s.ScheduledDate.After(to) {
			continue
		}
		out = append(out, s)
	}
	sortShifts(out)
	return out, nil
}

func sortShifts(shifts []shift.Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].ScheduledDate.Equal(shifts[j].ScheduledDate) {
			return shifts[i].ScheduledDate.Before(shifts[j].ScheduledDate)
		}
		return shifts[i].ID < shifts[j].ID
	})
}

// =============================================================================
// BOOKING STORE
// =============================================================================

func (m *Store) CreateBooking(_ context.Context, b booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
	return nil
}

func (m *Store) GetBooking(_ context.Context, id string) (booking.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrBookingNotFound
	}
	return b, nil
}

func (m *Store) UpdateBooking(_ context.Context, b booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; !ok {
		return booking.ErrBookingNotFound
	}
	m.bookings[b.ID] = b
	return nil
}

func (m *Store) ListBookings(_ context.Context) ([]booking.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]booking.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// CONFIG STORE
// =============================================================================

func (m *Store) PricingConfig(_ context.Context) (pricing.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config, nil
}

// SavePricingConfig clamps bounded fields on write and returns the stored
// value.
func (m *Store) SavePricingConfig(_ context.Context, cfg pricing.Config) (pricing.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = cfg.Clamp()
	return m.config, nil
}

func (m *Store) SurgeRules(_ context.Context) ([]pricing.SurgeRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]pricing.SurgeRule(nil), m.rules...), nil
}

func (m *Store) SaveSurgeRules(_ context.Context, rules []pricing.SurgeRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append([]pricing.SurgeRule(nil), rules...)
	return nil
}

func (m *Store) PayRates(_ context.Context) (payroll.PayRates, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payRates, nil
}

func (m *Store) SavePayRates(_ context.Context, rates payroll.PayRates) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payRates = rates
	return nil
}

func (m *Store) Tasks(_ context.Context) ([]pricing.TaskDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]pricing.TaskDefinition(nil), m.tasks...), nil
}

func (m *Store) SaveTask(_ context.Context, t pricing.TaskDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == t.ID {
			m.tasks[i] = t
			return nil
		}
	}
	m.tasks = append(m.tasks, t)
	return nil
}

// DisableTask soft-disables; historical shifts keep referencing the task.
func (m *Store) DisableTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i].Disabled = true
			return nil
		}
	}
	return nil
}

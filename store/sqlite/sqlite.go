/*
Package sqlite provides the SQLite-backed store.

PURPOSE:
  Implements shift, booking, and configuration persistence on SQLite. The
  same patterns apply to PostgreSQL in production - only minor SQL dialect
  differences.

CONDITIONAL TRANSITIONS:
  The shift state machine is enforced at the database, not in process:

    UPDATE shifts SET ... WHERE id = ? AND status = ?

  RowsAffected == 0 means another writer moved the status first; the call
  fails with shift.ErrStatusConflict. This holds across multiple server
  instances sharing one database file (or one Postgres), which an
  in-process lock would not.

KEY TABLES:
  shifts          operational records + state machine position
  bookings        ordering records with the embedded quote as JSON
  tasks           billable task catalog (soft-disable only)
  pricing_config  single-row config, clamped on save
  surge_rules     high-demand windows
  pay_rates       single-row worker rate table

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer at a time, better crash recovery.

MONEY:
  Decimals are stored as TEXT and re-parsed with shopspring/decimal; no
  float round-trips.

USAGE:
  st, err := sqlite.New("./data/care.db")  // ":memory:" for tests
  defer st.Close()

SEE ALSO:
  - shift/store.go: the transition contract
  - store/memory: reference semantics
  - store/dynamo: the same CAS via ConditionExpression
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/pswdirect/care-engine/booking"
	"github.com/pswdirect/care-engine/payroll"
	"github.com/pswdirect/care-engine/pricing"
	"github.com/pswdirect/care-engine/shift"
)

type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and migrates the schema. Seeds the
// default catalog, config, and rates on first run.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := store.seed(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed defaults: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL,
		worker_id TEXT,
		worker_name TEXT,
		services_json TEXT NOT NULL,
		category TEXT NOT NULL,
		scheduled_date TEXT NOT NULL,
		scheduled_start TEXT NOT NULL,
		scheduled_end TEXT NOT NULL,
		claimed_at TEXT,
		checked_in_at TEXT,
		check_in_location TEXT,
		signed_out_at TEXT,
		overtime_minutes INTEGER NOT NULL DEFAULT 0,
		flagged_for_overtime INTEGER NOT NULL DEFAULT 0,
		pay_rate_snapshot TEXT NOT NULL DEFAULT '0',
		care_record TEXT,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_status ON shifts(status);
	CREATE INDEX IF NOT EXISTS idx_shifts_status_date ON shifts(status, scheduled_date);
	CREATE INDEX IF NOT EXISTS idx_shifts_booking ON shifts(booking_id);

	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		client_name TEXT NOT NULL,
		client_email TEXT,
		patient_name TEXT,
		address TEXT,
		within_coverage INTEGER NOT NULL DEFAULT 1,
		task_ids_json TEXT NOT NULL,
		scheduled_date TEXT NOT NULL,
		scheduled_start TEXT NOT NULL,
		scheduled_end TEXT NOT NULL,
		is_asap INTEGER NOT NULL DEFAULT 0,
		quote_json TEXT,
		shift_id TEXT,
		worker_id TEXT,
		payment_status TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		included_minutes INTEGER NOT NULL,
		category TEXT NOT NULL,
		disabled INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS pricing_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS surge_rules (
		id TEXT PRIMARY KEY,
		rule_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pay_rates (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		standard TEXT NOT NULL,
		hospital TEXT NOT NULL,
		doctor TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) seed() error {
	ctx := context.Background()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		for _, t := range pricing.DefaultTasks() {
			if err := s.SaveTask(ctx, t); err != nil {
				return err
			}
		}
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pricing_config`).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.SavePricingConfig(ctx, pricing.DefaultConfig()); err != nil {
			return err
		}
		if err := s.SaveSurgeRules(ctx, pricing.DefaultSurgeRules()); err != nil {
			return err
		}
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pay_rates`).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		if err := s.SavePayRates(ctx, payroll.DefaultPayRates()); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SHIFT STORE
// =============================================================================

func (s *Store) CreateShift(ctx context.Context, sh shift.Shift) error {
	services, err := json.Marshal(sh.Services)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shifts (
			id, booking_id, worker_id, worker_name, services_json, category,
			scheduled_date, scheduled_start, scheduled_end,
			claimed_at, checked_in_at, check_in_location, signed_out_at,
			overtime_minutes, flagged_for_overtime, pay_rate_snapshot,
			care_record, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sh.ID, sh.BookingID, sh.WorkerID, sh.WorkerName, string(services), string(sh.Category),
		formatDate(sh.ScheduledDate), formatTime(sh.ScheduledStart), formatTime(sh.ScheduledEnd),
		formatTimePtr(sh.ClaimedAt), formatTimePtr(sh.CheckedInAt), sh.CheckInLocation, formatTimePtr(sh.SignedOutAt),
		sh.OvertimeMinutes, boolToInt(sh.FlaggedForOvertime), sh.PayRateSnapshot.String(),
		sh.CareRecord, string(sh.Status),
	)
	return err
}

func (s *Store) GetShift(ctx context.Context, id string) (shift.Shift, error) {
	row := s.db.QueryRowContext(ctx, selectShift+` WHERE id = ?`, id)
	sh, err := scanShift(row)
	if err == sql.ErrNoRows {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return sh, err
}

// TransitionShift enforces the state machine with a status-guarded UPDATE.
// The read is only to build the mutated row; the guard is on the write.
func (s *Store) TransitionShift(ctx context.Context, id string, from shift.Status, apply func(*shift.Shift) error) (shift.Shift, error) {
	sh, err := s.GetShift(ctx, id)
	if err != nil {
		return shift.Shift{}, err
	}
	if sh.Status != from {
		return shift.Shift{}, shift.ErrStatusConflict
	}
	if err := apply(&sh); err != nil {
		return shift.Shift{}, err
	}

	services, err := json.Marshal(sh.Services)
	if err != nil {
		return shift.Shift{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE shifts SET
			worker_id = ?, worker_name = ?, services_json = ?, category = ?,
			claimed_at = ?, checked_in_at = ?, check_in_location = ?, signed_out_at = ?,
			overtime_minutes = ?, flagged_for_overtime = ?, pay_rate_snapshot = ?,
			care_record = ?, status = ?
		WHERE id = ? AND status = ?`,
		sh.WorkerID, sh.WorkerName, string(services), string(sh.Category),
		formatTimePtr(sh.ClaimedAt), formatTimePtr(sh.CheckedInAt), sh.CheckInLocation, formatTimePtr(sh.SignedOutAt),
		sh.OvertimeMinutes, boolToInt(sh.FlaggedForOvertime), sh.PayRateSnapshot.String(),
		sh.CareRecord, string(sh.Status),
		id, string(from),
	)
	if err != nil {
		return shift.Shift{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return shift.Shift{}, err
	}
	if affected == 0 {
		// Someone else moved the status between our read and write.
		return shift.Shift{}, shift.ErrStatusConflict
	}
	return sh, nil
}

func (s *Store) ShiftsByStatus(ctx context.Context, status shift.Status) ([]shift.Shift, error) {
	rows, err := s.db.QueryContext(ctx,
		selectShift+` WHERE status = ? ORDER BY scheduled_date, id`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShifts(rows)
}

func (s *Store) CompletedShifts(ctx context.Context, from, to time.Time) ([]shift.Shift, error) {
	query := selectShift + ` WHERE status = ?`
	args := []any{string(shift.StatusCompleted)}
	if !from.IsZero() {
		query += ` AND scheduled_date >= ?`
		args = append(args, formatDate(from))
	}
	if !to.IsZero() {
		query += ` AND scheduled_date <= ?`
		args = append(args, formatDate(to))
	}
	query += ` ORDER BY scheduled_date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShifts(rows)
}

const selectShift = `
	SELECT id, booking_id, worker_id, worker_name, services_json, category,
		scheduled_date, scheduled_start, scheduled_end,
		claimed_at, checked_in_at, check_in_location, signed_out_at,
		overtime_minutes, flagged_for_overtime, pay_rate_snapshot,
		care_record, status
	FROM shifts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (shift.Shift, error) {
	var sh shift.Shift
	var services, category, date, start, end, snapshot, status string
	var claimedAt, checkedInAt, location, signedOutAt, careRecord sql.NullString
	var workerID, workerName sql.NullString
	var flagged int

	err := row.Scan(
		&sh.ID, &sh.BookingID, &workerID, &workerName, &services, &category,
		&date, &start, &end,
		&claimedAt, &checkedInAt, &location, &signedOutAt,
		&sh.OvertimeMinutes, &flagged, &snapshot,
		&careRecord, &status,
	)
	if err != nil {
		return shift.Shift{}, err
	}

	sh.WorkerID = workerID.String
	sh.WorkerName = workerName.String
	if err := json.Unmarshal([]byte(services), &sh.Services); err != nil {
		return shift.Shift{}, err
	}
	sh.Category = pricing.Category(category)
	sh.ScheduledDate = parseDate(date)
	sh.ScheduledStart = parseTime(start)
	sh.ScheduledEnd = parseTime(end)
	sh.ClaimedAt = parseTimePtr(claimedAt)
	sh.CheckedInAt = parseTimePtr(checkedInAt)
	sh.CheckInLocation = location.String
	sh.SignedOutAt = parseTimePtr(signedOutAt)
	sh.FlaggedForOvertime = flagged != 0
	sh.PayRateSnapshot, err = decimal.NewFromString(snapshot)
	if err != nil {
		return shift.Shift{}, err
	}
	sh.CareRecord = careRecord.String
	sh.Status = shift.Status(status)
	return sh, nil
}

func scanShifts(rows *sql.Rows) ([]shift.Shift, error) {
	var out []shift.Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

// =============================================================================
// BOOKING STORE
// =============================================================================

func (s *Store) CreateBooking(ctx context.Context, b booking.Booking) error {
	taskIDs, err := json.Marshal(b.TaskIDs)
	if err != nil {
		return err
	}
	quote, err := marshalQuote(b.Quote)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bookings (
			id, client_name, client_email, patient_name, address, within_coverage,
			task_ids_json, scheduled_date, scheduled_start, scheduled_end, is_asap,
			quote_json, shift_id, worker_id, payment_status, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ClientName, b.ClientEmail, b.PatientName, b.Address, boolToInt(b.WithinCoverage),
		string(taskIDs), formatDate(b.ScheduledDate), formatTime(b.ScheduledStart), formatTime(b.ScheduledEnd), boolToInt(b.IsASAP),
		quote, b.ShiftID, b.WorkerID, string(b.PaymentStatus), string(b.Status),
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	return err
}

func (s *Store) GetBooking(ctx context.Context, id string) (booking.Booking, error) {
	row := s.db.QueryRowContext(ctx, selectBooking+` WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return booking.Booking{}, booking.ErrBookingNotFound
	}
	return b, err
}

func (s *Store) UpdateBooking(ctx context.Context, b booking.Booking) error {
	taskIDs, err := json.Marshal(b.TaskIDs)
	if err != nil {
		return err
	}
	quote, err := marshalQuote(b.Quote)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings SET
			client_name = ?, client_email = ?, patient_name = ?, address = ?, within_coverage = ?,
			task_ids_json = ?, scheduled_date = ?, scheduled_start = ?, scheduled_end = ?, is_asap = ?,
			quote_json = ?, shift_id = ?, worker_id = ?, payment_status = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		b.ClientName, b.ClientEmail, b.PatientName, b.Address, boolToInt(b.WithinCoverage),
		string(taskIDs), formatDate(b.ScheduledDate), formatTime(b.ScheduledStart), formatTime(b.ScheduledEnd), boolToInt(b.IsASAP),
		quote, b.ShiftID, b.WorkerID, string(b.PaymentStatus), string(b.Status), formatTime(b.UpdatedAt),
		b.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (s *Store) ListBookings(ctx context.Context) ([]booking.Booking, error) {
	rows, err := s.db.QueryContext(ctx, selectBooking+` ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

const selectBooking = `
	SELECT id, client_name, client_email, patient_name, address, within_coverage,
		task_ids_json, scheduled_date, scheduled_start, scheduled_end, is_asap,
		quote_json, shift_id, worker_id, payment_status, status, created_at, updated_at
	FROM bookings`

func scanBooking(row rowScanner) (booking.Booking, error) {
	var b booking.Booking
	var taskIDs, date, start, end, createdAt, updatedAt, paymentStatus, status string
	var clientEmail, patientName, address, quote, shiftID, workerID sql.NullString
	var withinCoverage, isASAP int

	err := row.Scan(
		&b.ID, &b.ClientName, &clientEmail, &patientName, &address, &withinCoverage,
		&taskIDs, &date, &start, &end, &isASAP,
		&quote, &shiftID, &workerID, &paymentStatus, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return booking.Booking{}, err
	}

	b.ClientEmail = clientEmail.String
	b.PatientName = patientName.String
	b.Address = address.String
	b.WithinCoverage = withinCoverage != 0
	if err := json.Unmarshal([]byte(taskIDs), &b.TaskIDs); err != nil {
		return booking.Booking{}, err
	}
	b.ScheduledDate = parseDate(date)
	b.ScheduledStart = parseTime(start)
	b.ScheduledEnd = parseTime(end)
	b.IsASAP = isASAP != 0
	if quote.Valid && quote.String != "" {
		var q pricing.Quote
		if err := json.Unmarshal([]byte(quote.String), &q); err != nil {
			return booking.Booking{}, err
		}
		b.Quote = &q
	}
	b.ShiftID = shiftID.String
	b.WorkerID = workerID.String
	b.PaymentStatus = booking.PaymentStatus(paymentStatus)
	b.Status = booking.Status(status)
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}

func marshalQuote(q *pricing.Quote) (string, error) {
	if q == nil {
		return "", nil
	}
	raw, err := json.Marshal(q)
	return string(raw), err
}

// =============================================================================
// CONFIG STORE
// =============================================================================

func (s *Store) PricingConfig(ctx context.Context) (pricing.Config, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT config_json FROM pricing_config WHERE id = 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return pricing.DefaultConfig(), nil
	}
	if err != nil {
		return pricing.Config{}, err
	}
	var cfg pricing.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return pricing.Config{}, err
	}
	return cfg, nil
}

func (s *Store) SavePricingConfig(ctx context.Context, cfg pricing.Config) (pricing.Config, error) {
	cfg = cfg.Clamp()
	raw, err := json.Marshal(cfg)
	if err != nil {
		return pricing.Config{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pricing_config (id, config_json) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET config_json = excluded.config_json`,
		string(raw))
	if err != nil {
		return pricing.Config{}, err
	}
	return cfg, nil
}

func (s *Store) SurgeRules(ctx context.Context) ([]pricing.SurgeRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rule_json FROM surge_rules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pricing.SurgeRule
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var r pricing.SurgeRule
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) SaveSurgeRules(ctx context.Context, rules []pricing.SurgeRule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM surge_rules`); err != nil {
		return err
	}
	for _, r := range rules {
		raw, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO surge_rules (id, rule_json) VALUES (?, ?)`, r.ID, string(raw)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) PayRates(ctx context.Context) (payroll.PayRates, error) {
	var standard, hospital, doctor string
	err := s.db.QueryRowContext(ctx,
		`SELECT standard, hospital, doctor FROM pay_rates WHERE id = 1`).
		Scan(&standard, &hospital, &doctor)
	if err == sql.ErrNoRows {
		return payroll.DefaultPayRates(), nil
	}
	if err != nil {
		return payroll.PayRates{}, err
	}

	var rates payroll.PayRates
	if rates.Standard, err = decimal.NewFromString(standard); err != nil {
		return payroll.PayRates{}, err
	}
	if rates.Hospital, err = decimal.NewFromString(hospital); err != nil {
		return payroll.PayRates{}, err
	}
	if rates.Doctor, err = decimal.NewFromString(doctor); err != nil {
		return payroll.PayRates{}, err
	}
	return rates, nil
}

func (s *Store) SavePayRates(ctx context.Context, rates payroll.PayRates) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pay_rates (id, standard, hospital, doctor) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			standard = excluded.standard,
			hospital = excluded.hospital,
			doctor = excluded.doctor`,
		rates.Standard.String(), rates.Hospital.String(), rates.Doctor.String())
	return err
}

func (s *Store) Tasks(ctx context.Context) ([]pricing.TaskDefinition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, included_minutes, category, disabled FROM tasks ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pricing.TaskDefinition
	for rows.Next() {
		var t pricing.TaskDefinition
		var category string
		var disabled int
		if err := rows.Scan(&t.ID, &t.Name, &t.IncludedMinutes, &category, &disabled); err != nil {
			return nil, err
		}
		t.Category = pricing.Category(category)
		t.Disabled = disabled != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) SaveTask(ctx context.Context, t pricing.TaskDefinition) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, name, included_minutes, category, disabled) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			included_minutes = excluded.included_minutes,
			category = excluded.category,
			disabled = excluded.disabled`,
		t.ID, t.Name, t.IncludedMinutes, string(t.Category), boolToInt(t.Disabled))
	return err
}

func (s *Store) DisableTask(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET disabled = 1 WHERE id = ?`, id)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func parseDate(s string) time.Time {
	if strings.TrimSpace(s) == "" {
		return time.Time{}
	}
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if strings.TrimSpace(s) == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresLedger persists bookings in a bookings table. The table is
// insert-only; no update or delete statements exist on purpose.
type PostgresLedger struct {
	db *sql.DB
}

// NewPostgresLedger creates a Postgres-backed ledger.
func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	if db == nil {
		panic("booking: db cannot be nil")
	}
	return &PostgresLedger{db: db}
}

// Create inserts a booking row.
func (l *PostgresLedger) Create(ctx context.Context, b *Booking) error {
	if b == nil || b.ID == "" {
		return errors.New("booking: cannot store booking without an id")
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO bookings (
			booking_id, confirmation_code, status,
			appointment_type, appointment_type_name, duration_minutes,
			day, date, start_time, end_time,
			patient_name, patient_email, patient_phone,
			reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		b.ID, b.ConfirmationCode, b.Status,
		b.AppointmentType, b.AppointmentTypeName, b.Duration,
		b.Day, b.Date, b.StartTime, b.EndTime,
		b.Patient.Name, b.Patient.Email, b.Patient.Phone,
		b.Reason, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("booking: failed to insert %s: %w", b.ID, err)
	}
	return nil
}

// Get loads a booking row by ID. Returns ErrNotFound for unknown IDs.
func (l *PostgresLedger) Get(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	err := l.db.QueryRowContext(ctx, `
		SELECT booking_id, confirmation_code, status,
			appointment_type, appointment_type_name, duration_minutes,
			day, date, start_time, end_time,
			patient_name, patient_email, patient_phone,
			reason, created_at
		FROM bookings
		WHERE booking_id = $1`, id,
	).Scan(
		&b.ID, &b.ConfirmationCode, &b.Status,
		&b.AppointmentType, &b.AppointmentTypeName, &b.Duration,
		&b.Day, &b.Date, &b.StartTime, &b.EndTime,
		&b.Patient.Name, &b.Patient.Email, &b.Patient.Phone,
		&b.Reason, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("booking: failed to load %s: %w", id, err)
	}
	return &b, nil
}

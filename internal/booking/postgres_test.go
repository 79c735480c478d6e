package booking

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresLedgerCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := NewPostgresLedger(db)
	b := sampleBooking()

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(
			b.ID, b.ConfirmationCode, b.Status,
			b.AppointmentType, b.AppointmentTypeName, b.Duration,
			b.Day, b.Date, b.StartTime, b.EndTime,
			b.Patient.Name, b.Patient.Email, b.Patient.Phone,
			b.Reason, b.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, ledger.Create(context.Background(), b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedgerCreateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := NewPostgresLedger(db)
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(errors.New("connection reset"))

	assert.Error(t, ledger.Create(context.Background(), sampleBooking()))
}

func TestPostgresLedgerGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := NewPostgresLedger(db)
	b := sampleBooking()

	rows := sqlmock.NewRows([]string{
		"booking_id", "confirmation_code", "status",
		"appointment_type", "appointment_type_name", "duration_minutes",
		"day", "date", "start_time", "end_time",
		"patient_name", "patient_email", "patient_phone",
		"reason", "created_at",
	}).AddRow(
		b.ID, b.ConfirmationCode, b.Status,
		b.AppointmentType, b.AppointmentTypeName, b.Duration,
		b.Day, b.Date, b.StartTime, b.EndTime,
		b.Patient.Name, b.Patient.Email, b.Patient.Phone,
		b.Reason, b.CreatedAt,
	)
	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs(b.ID).
		WillReturnRows(rows)

	got, err := ledger.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ConfirmationCode, got.ConfirmationCode)
	assert.Equal(t, b.Patient, got.Patient)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedgerGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := NewPostgresLedger(db)
	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs("APPT-UNKNOWN").
		WillReturnError(sql.ErrNoRows)

	_, err = ledger.Get(context.Background(), "APPT-UNKNOWN")
	assert.ErrorIs(t, err, ErrNotFound)
}

package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient is the contact snapshot frozen into a booking.
type Patient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Booking is an immutable ledger record. Created exactly once per
// successful finalize and never mutated or deleted afterwards.
type Booking struct {
	ID                  string    `json:"bookingId"`
	ConfirmationCode    string    `json:"confirmationCode"`
	Status              string    `json:"status"`
	AppointmentType     string    `json:"appointmentType"`
	AppointmentTypeName string    `json:"appointmentTypeName"`
	Duration            int       `json:"duration"`
	Day                 string    `json:"day,omitempty"`
	Date                string    `json:"date"`
	StartTime           string    `json:"startTime"`
	EndTime             string    `json:"endTime"`
	Patient             Patient   `json:"patient"`
	Reason              string    `json:"reason"`
	CreatedAt           time.Time `json:"createdAt"`
}

// StatusConfirmed is the only status a booking ever carries.
const StatusConfirmed = "confirmed"

// NewID generates a date-stamped booking identifier, e.g.
// APPT-20250609-1A2B3C4D.
func NewID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("APPT-%s-%s", now.Format("20060102"), suffix)
}

// NewConfirmationCode generates a short code quoted back to the patient.
func NewConfirmationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

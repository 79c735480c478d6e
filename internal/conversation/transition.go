package conversation

import (
	"strings"

	"github.com/clinicware/intake-agent/internal/session"
)

// restartKeywords re-open a completed session for another booking.
var restartKeywords = []string{"new", "another", "book", "schedule"}

func wantsRestart(message string) bool {
	lower := strings.ToLower(message)
	for _, word := range restartKeywords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// applyExtracted merges the oracle's field guesses into the session and
// nudges the phase. Transitions are deliberately permissive: whichever
// field just became non-empty drives the phase, in this fixed order, so
// an out-of-order extraction (say a time preference before a type) still
// lands. Contact fields and the reason are first-value-wins per booking
// cycle; appointment type, date, and time preference always take the
// latest extraction.
func applyExtracted(sess *session.Session, ex Extracted) {
	if ex.Reason != "" && sess.Booking.Reason == "" {
		sess.Booking.Reason = ex.Reason
		sess.Collected[session.FieldReason] = true
		sess.Phase = session.PhaseSelectingType
	}

	if ex.AppointmentType != "" {
		sess.Booking.AppointmentType = ex.AppointmentType
		sess.Collected[session.FieldAppointmentType] = true
		sess.Phase = session.PhaseUnderstanding
	}

	if ex.Name != "" && sess.Patient.Name == "" {
		sess.Patient.Name = ex.Name
		sess.Collected[session.FieldName] = true
	}

	if ex.Phone != "" && sess.Patient.Phone == "" {
		sess.Patient.Phone = ex.Phone
		sess.Collected[session.FieldPhone] = true
	}

	if ex.Email != "" && sess.Patient.Email == "" {
		sess.Patient.Email = ex.Email
		sess.Collected[session.FieldEmail] = true
	}

	if ex.Date != "" {
		sess.Booking.PreferredDate = ex.Date
		sess.Collected[session.FieldDate] = true
	}

	if ex.TimePreference != "" {
		sess.Booking.PreferredTime = ex.TimePreference
		sess.Collected[session.FieldTime] = true
		sess.Phase = session.PhaseShowingSlots
	}
}

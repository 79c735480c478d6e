package session

import (
	"time"

	"github.com/clinicware/intake-agent/internal/schedule"
)

// Phase marks the coarse stage of a booking conversation. Transitions are
// advisory nudges applied as fields are collected; complete is terminal
// until a restart request arrives.
type Phase string

const (
	PhaseGreeting       Phase = "greeting"
	PhaseSelectingType  Phase = "selecting_appointment_type"
	PhaseUnderstanding  Phase = "understanding_needs"
	PhaseShowingSlots   Phase = "showing_slots"
	PhaseCollectingInfo Phase = "collecting_info"
	PhaseConfirming     Phase = "confirming"
	PhaseComplete       Phase = "complete"
)

// Message is one entry of a session transcript.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// PatientInfo holds contact details collected during intake. Each field is
// set at most once per booking cycle; later extractions are ignored.
type PatientInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Complete reports whether all three contact fields are present.
func (p PatientInfo) Complete() bool {
	return p.Name != "" && p.Email != "" && p.Phone != ""
}

// BookingDetails is the booking-in-progress attached to a session.
type BookingDetails struct {
	AppointmentType string         `json:"appointmentType,omitempty"`
	PreferredDate   string         `json:"preferredDate,omitempty"`
	PreferredTime   string         `json:"preferredTime,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	SelectedSlot    *schedule.Slot `json:"selectedSlot,omitempty"`
}

// Collected-info flag keys. The flags are an informational echo for
// clients and never gate finalization.
const (
	FieldAppointmentType = "appointment_type"
	FieldReason          = "reason"
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldDate            = "date"
	FieldTime            = "time"
)

// Session is the per-conversation mutable state.
type Session struct {
	ID        string          `json:"sessionId"`
	Phase     Phase           `json:"phase"`
	Messages  []Message       `json:"messages"`
	Patient   PatientInfo     `json:"patientInfo"`
	Booking   BookingDetails  `json:"bookingDetails"`
	Collected map[string]bool `json:"collectedInfo"`
}

// New creates a fresh session in the greeting phase.
func New(id string) *Session {
	return &Session{
		ID:        id,
		Phase:     PhaseGreeting,
		Collected: emptyCollected(),
	}
}

func emptyCollected() map[string]bool {
	return map[string]bool{
		FieldAppointmentType: false,
		FieldReason:          false,
		FieldName:            false,
		FieldEmail:           false,
		FieldPhone:           false,
		FieldDate:            false,
		FieldTime:            false,
	}
}

// Reset clears patient info, booking details, and collected flags for a
// new booking cycle. The session ID and transcript are preserved.
func (s *Session) Reset() {
	s.Phase = PhaseGreeting
	s.Patient = PatientInfo{}
	s.Booking = BookingDetails{}
	s.Collected = emptyCollected()
}

// Append records a transcript message stamped with the current time.
func (s *Session) Append(role, content string) {
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Clone returns a deep copy so store callers can mutate freely.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = append([]Message(nil), s.Messages...)
	out.Collected = make(map[string]bool, len(s.Collected))
	for k, v := range s.Collected {
		out.Collected[k] = v
	}
	if s.Booking.SelectedSlot != nil {
		slot := *s.Booking.SelectedSlot
		out.Booking.SelectedSlot = &slot
	}
	return &out
}

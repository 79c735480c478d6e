package notify

import (
	"context"
	"fmt"

	"github.com/clinicware/intake-agent/internal/booking"
	"github.com/clinicware/intake-agent/pkg/logging"
)

// Service sends patient-facing notifications. Sending is best-effort:
// failures are logged and never fail the caller's request.
type Service struct {
	email      EmailSender
	clinicName string
	logger     *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, clinicName string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if clinicName == "" {
		clinicName = "HealthFirst Clinic"
	}
	return &Service{
		email:      email,
		clinicName: clinicName,
		logger:     logger,
	}
}

// SendBookingConfirmation emails the patient their appointment details.
func (s *Service) SendBookingConfirmation(ctx context.Context, b *booking.Booking) {
	if s == nil || s.email == nil || b == nil || b.Patient.Email == "" {
		return
	}

	msg := EmailMessage{
		To:      b.Patient.Email,
		ToName:  b.Patient.Name,
		Subject: fmt.Sprintf("Appointment confirmed: %s on %s", b.AppointmentTypeName, b.Date),
		Body:    confirmationBody(s.clinicName, b),
	}

	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("booking confirmation email failed",
			"error", err,
			"booking_id", b.ID,
			"to", b.Patient.Email,
		)
		return
	}
	s.logger.Info("booking confirmation email sent", "booking_id", b.ID, "to", b.Patient.Email)
}

func confirmationBody(clinicName string, b *booking.Booking) string {
	day := b.Day
	if day == "" {
		day = b.Date
	}
	return fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your %s is confirmed for %s, %s at %s (%d minutes).\n"+
			"Confirmation code: %s\n"+
			"Booking reference: %s\n\n"+
			"If you need to reschedule, reply to this email or call the front desk.\n\n"+
			"%s",
		b.Patient.Name,
		b.AppointmentTypeName,
		day, b.Date, b.StartTime, b.Duration,
		b.ConfirmationCode,
		b.ID,
		clinicName,
	)
}

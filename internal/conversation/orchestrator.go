package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinicware/intake-agent/internal/booking"
	"github.com/clinicware/intake-agent/internal/notify"
	"github.com/clinicware/intake-agent/internal/schedule"
	"github.com/clinicware/intake-agent/internal/session"
	"github.com/clinicware/intake-agent/pkg/logging"
)

// TurnResult is the outward envelope of one conversation turn.
type TurnResult struct {
	Response       string
	Phase          session.Phase
	Intent         string
	AvailableSlots []schedule.Slot
	Booking        *booking.Booking
	Patient        session.PatientInfo
	BookingDetails session.BookingDetails
	NextAction     string
	ShowTypes      bool
}

// OrchestratorConfig wires the orchestrator's dependencies.
type OrchestratorConfig struct {
	Store     session.Store
	Ledger    booking.Ledger
	Finder    *schedule.Finder
	Intents   *IntentAgent
	Responder *Responder
	Notifier  *notify.Service // optional
	Logger    *logging.Logger
	Tracer    trace.Tracer
}

// Orchestrator drives the booking state machine: it merges oracle output
// into session state, decides whether a booking may finalize, and
// produces the response envelope.
type Orchestrator struct {
	store     session.Store
	ledger    booking.Ledger
	finder    *schedule.Finder
	intents   *IntentAgent
	responder *Responder
	notifier  *notify.Service
	logger    *logging.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewOrchestrator creates an orchestrator. Store, ledger, finder, and
// both agents are hard dependencies.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Store == nil {
		panic("conversation: orchestrator requires a session store")
	}
	if cfg.Ledger == nil {
		panic("conversation: orchestrator requires a booking ledger")
	}
	if cfg.Finder == nil {
		panic("conversation: orchestrator requires a slot finder")
	}
	if cfg.Intents == nil || cfg.Responder == nil {
		panic("conversation: orchestrator requires intent and responder agents")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("intake.internal.conversation")
	}
	return &Orchestrator{
		store:     cfg.Store,
		ledger:    cfg.Ledger,
		finder:    cfg.Finder,
		intents:   cfg.Intents,
		responder: cfg.Responder,
		notifier:  cfg.Notifier,
		logger:    cfg.Logger,
		tracer:    cfg.Tracer,
		now:       time.Now,
	}
}

// Handle processes one inbound chat message for a session, creating the
// session on first contact.
func (o *Orchestrator) Handle(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	ctx, span := o.tracer.Start(ctx, "conversation.turn")
	defer span.End()

	sess, err := o.store.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			span.RecordError(err)
			return nil, fmt.Errorf("conversation: failed to load session: %w", err)
		}
		sess = session.New(sessionID)
	}

	if sess.Phase == session.PhaseComplete && wantsRestart(message) {
		sess.Reset()
	}

	sess.Append("user", message)

	result := o.intents.Analyze(ctx, sess, message)

	applyExtracted(sess, result.Extracted)
	o.applySlotSelection(sess, result.Extracted)

	var slots []schedule.Slot
	if result.NextAction == actionShowSlots && sess.Booking.AppointmentType != "" {
		slots = o.finder.Find(sess.Booking.AppointmentType, sess.Booking.PreferredDate, sess.Booking.PreferredTime)
	}

	var booked *booking.Booking
	if result.ReadyToBook && canFinalize(sess) {
		booked = o.finalize(ctx, sess)
	}

	var response string
	if booked != nil {
		sess.Phase = session.PhaseComplete
		response = confirmationMessage(sess, booked)
		slots = nil
		if o.notifier != nil {
			o.notifier.SendBookingConfirmation(ctx, booked)
		}
	} else {
		response = o.responder.Generate(ctx, sess, result, slots)
	}

	sess.Append("assistant", response)

	if err := o.store.Put(ctx, sess); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to persist session: %w", err)
	}

	turnsTotal.WithLabelValues(string(sess.Phase)).Inc()

	return &TurnResult{
		Response:       response,
		Phase:          sess.Phase,
		Intent:         result.Intent,
		AvailableSlots: slots,
		Booking:        booked,
		Patient:        sess.Patient,
		BookingDetails: sess.Booking,
		NextAction:     result.NextAction,
		ShowTypes:      result.NextAction == actionShowTypes,
	}, nil
}

// applySlotSelection resolves a slot choice, either a literal date and
// start time or a 1-based index into the currently matching list. The
// index is interpreted against a fresh lookup with the session's stored
// filters, not against any previously shown list. Out-of-range and
// non-numeric selections are ignored silently.
func (o *Orchestrator) applySlotSelection(sess *session.Session, ex Extracted) {
	if ex.SpecificSlot != nil {
		slot := schedule.Slot{
			Date:      ex.SpecificSlot.Date,
			StartTime: ex.SpecificSlot.StartTime,
			EndTime:   ex.SpecificSlot.EndTime,
		}
		// Backfill end time and duration from the schedule. When no day
		// matches, the slot is stored incomplete and blocks finalize.
		if slot.EndTime == "" && sess.Booking.AppointmentType != "" {
			for _, cand := range o.finder.Find(sess.Booking.AppointmentType, slot.Date, "") {
				if cand.Date == slot.Date && cand.StartTime == slot.StartTime {
					slot = cand
					break
				}
			}
		}
		sess.Booking.SelectedSlot = &slot
		sess.Phase = session.PhaseCollectingInfo
		return
	}

	if ex.SlotSelection != "" && sess.Booking.AppointmentType != "" {
		idx, err := strconv.Atoi(strings.TrimSpace(string(ex.SlotSelection)))
		if err != nil {
			return
		}
		available := o.finder.Find(sess.Booking.AppointmentType, sess.Booking.PreferredDate, sess.Booking.PreferredTime)
		if idx < 1 || idx > len(available) {
			return
		}
		slot := available[idx-1]
		sess.Booking.SelectedSlot = &slot
		sess.Phase = session.PhaseCollectingInfo
	}
}

// canFinalize is the only hard gate in the flow: full contact info plus a
// selected slot that carries an end time.
func canFinalize(sess *session.Session) bool {
	return sess.Patient.Complete() &&
		sess.Booking.SelectedSlot != nil &&
		sess.Booking.SelectedSlot.EndTime != ""
}

// finalize appends an immutable booking to the ledger. On a ledger
// failure it logs and returns nil so the turn degrades to a normal reply.
func (o *Orchestrator) finalize(ctx context.Context, sess *session.Session) *booking.Booking {
	info, _ := schedule.TypeByCode(sess.Booking.AppointmentType)
	slot := sess.Booking.SelectedSlot
	now := o.now()

	reason := sess.Booking.Reason
	if reason == "" {
		reason = "General consultation"
	}

	b := &booking.Booking{
		ID:                  booking.NewID(now),
		ConfirmationCode:    booking.NewConfirmationCode(),
		Status:              booking.StatusConfirmed,
		AppointmentType:     sess.Booking.AppointmentType,
		AppointmentTypeName: info.Name,
		Duration:            info.Duration,
		Day:                 slot.Day,
		Date:                slot.Date,
		StartTime:           slot.StartTime,
		EndTime:             slot.EndTime,
		Patient: booking.Patient{
			Name:  sess.Patient.Name,
			Email: sess.Patient.Email,
			Phone: sess.Patient.Phone,
		},
		Reason:    reason,
		CreatedAt: now,
	}

	if err := o.ledger.Create(ctx, b); err != nil {
		o.logger.Error("booking ledger write failed", "error", err, "session_id", sess.ID)
		return nil
	}

	bookingsTotal.Inc()
	o.logger.Info("booking finalized",
		"booking_id", b.ID,
		"session_id", sess.ID,
		"appointment_type", b.AppointmentType,
		"date", b.Date,
	)
	return b
}

// confirmationMessage is templated rather than oracle-generated so the
// confirmation always quotes the real code.
func confirmationMessage(sess *session.Session, b *booking.Booking) string {
	return fmt.Sprintf(
		"Perfect! All set. Your appointment is confirmed for %s, %s at %s. "+
			"You'll receive a confirmation email at %s with all the details. "+
			"Your confirmation code is %s.",
		b.Day, b.Date, b.StartTime, sess.Patient.Email, b.ConfirmationCode,
	)
}

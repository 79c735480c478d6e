package conversation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinicware/intake-agent/internal/booking"
	"github.com/clinicware/intake-agent/internal/schedule"
	"github.com/clinicware/intake-agent/internal/session"
	"github.com/clinicware/intake-agent/pkg/logging"
)

// Handler wires HTTP requests to the orchestrator and stores.
type Handler struct {
	orch   *Orchestrator
	store  session.Store
	ledger booking.Ledger
	logger *logging.Logger
}

// NewHandler creates the intake HTTP handler.
func NewHandler(orch *Orchestrator, store session.Store, ledger booking.Ledger, logger *logging.Logger) *Handler {
	if orch == nil || store == nil || ledger == nil {
		panic("conversation: handler requires orchestrator, store, and ledger")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{orch: orch, store: store, ledger: ledger, logger: logger}
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Response         string                       `json:"response"`
	Phase            session.Phase                `json:"phase"`
	Intent           string                       `json:"intent"`
	AvailableSlots   []schedule.Slot              `json:"availableSlots"`
	Booking          *booking.Booking             `json:"booking"`
	PatientInfo      session.PatientInfo          `json:"patientInfo"`
	BookingDetails   session.BookingDetails       `json:"bookingDetails"`
	NextAction       string                       `json:"nextAction"`
	AppointmentTypes map[string]schedule.TypeInfo `json:"appointmentTypes,omitempty"`
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode chat request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" || req.Message == "" {
		http.Error(w, "sessionId and message are required", http.StatusBadRequest)
		return
	}

	turn, err := h.orch.Handle(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("failed to process chat turn", "error", err, "session_id", req.SessionID)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	resp := chatResponse{
		Response:       turn.Response,
		Phase:          turn.Phase,
		Intent:         turn.Intent,
		AvailableSlots: turn.AvailableSlots,
		Booking:        turn.Booking,
		PatientInfo:    turn.Patient,
		BookingDetails: turn.BookingDetails,
		NextAction:     turn.NextAction,
	}
	if resp.AvailableSlots == nil {
		resp.AvailableSlots = []schedule.Slot{}
	}
	if turn.ShowTypes {
		resp.AppointmentTypes = schedule.Catalog()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type selectSlotRequest struct {
	SessionID string        `json:"sessionId"`
	Slot      schedule.Slot `json:"slot"`
}

// SelectSlot handles POST /api/select-slot. The slot is stored verbatim
// and the session advances to collecting contact details.
func (h *Handler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	var req selectSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode select-slot request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}

	sess, err := h.store.Get(r.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Session not found"})
			return
		}
		h.logger.Error("failed to load session", "error", err, "session_id", req.SessionID)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	slot := req.Slot
	sess.Booking.SelectedSlot = &slot
	sess.Booking.PreferredDate = slot.Date
	sess.Phase = session.PhaseCollectingInfo

	if err := h.store.Put(r.Context(), sess); err != nil {
		h.logger.Error("failed to persist session", "error", err, "session_id", req.SessionID)
		http.Error(w, "Failed to persist session", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"selectedSlot": slot,
	})
}

// GetBooking handles GET /api/bookings/{bookingID}.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingID")

	b, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Booking not found"})
			return
		}
		h.logger.Error("failed to load booking", "error", err, "booking_id", id)
		http.Error(w, "Failed to load booking", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, b)
}

type resetRequest struct {
	SessionID string `json:"sessionId"`
}

// ResetSession handles POST /api/reset-session. Unknown sessions report
// not_found with a 200 rather than failing.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode reset request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess, err := h.store.Get(r.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			h.writeJSON(w, http.StatusOK, map[string]string{"status": "not_found"})
			return
		}
		h.logger.Error("failed to load session", "error", err, "session_id", req.SessionID)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	sess.Reset()
	if err := h.store.Put(r.Context(), sess); err != nil {
		h.logger.Error("failed to persist session", "error", err, "session_id", req.SessionID)
		http.Error(w, "Failed to persist session", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicware/intake-agent/internal/booking"
	"github.com/clinicware/intake-agent/internal/schedule"
	"github.com/clinicware/intake-agent/internal/session"
)

func newTestHandler(t *testing.T) (*Handler, *orchFixture) {
	t.Helper()
	f := newOrchFixture(t)
	return NewHandler(f.orch, f.store, f.ledger, nil), f
}

func testRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/chat", h.Chat)
	r.Post("/api/select-slot", h.SelectSlot)
	r.Get("/api/bookings/{bookingID}", h.GetBooking)
	r.Post("/api/reset-session", h.ResetSession)
	r.Get("/api/health", h.Health)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	h, f := newTestHandler(t)
	router := testRouter(h)
	f.script(t, IntentResult{
		Intent:     "provide_reason",
		Extracted:  Extracted{Reason: "bad headache"},
		NextAction: actionShowTypes,
	}, "Here are our options.")

	rec := postJSON(t, router, "/api/chat", map[string]string{
		"sessionId": "sess-1",
		"message":   "I have a bad headache",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Here are our options.", resp.Response)
	assert.Equal(t, session.PhaseSelectingType, resp.Phase)
	assert.Equal(t, actionShowTypes, resp.NextAction)
	assert.NotNil(t, resp.AvailableSlots)
	assert.Empty(t, resp.AvailableSlots)
	// show_appointment_types carries the catalog in the envelope.
	require.Len(t, resp.AppointmentTypes, 4)
	assert.Equal(t, 30, resp.AppointmentTypes[schedule.TypeGeneralConsultation].Duration)
}

func TestChatEndpointValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	tests := []struct {
		name string
		body string
	}{
		{"malformed body", `{"sessionId": `},
		{"missing message", `{"sessionId":"sess-1"}`},
		{"missing session", `{"message":"hello"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSelectSlotEndpoint(t *testing.T) {
	h, f := newTestHandler(t)
	router := testRouter(h)
	require.NoError(t, f.store.Put(context.Background(), session.New("sess-1")))

	rec := postJSON(t, router, "/api/select-slot", map[string]any{
		"sessionId": "sess-1",
		"slot": schedule.Slot{
			Day: "Monday", Date: "2025-06-09", StartTime: "14:00", EndTime: "14:30", Duration: 30,
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status       string        `json:"status"`
		SelectedSlot schedule.Slot `json:"selectedSlot"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "14:00", resp.SelectedSlot.StartTime)

	sess, err := f.store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.PhaseCollectingInfo, sess.Phase)
	require.NotNil(t, sess.Booking.SelectedSlot)
	assert.Equal(t, "2025-06-09", sess.Booking.PreferredDate)
}

func TestSelectSlotUnknownSession(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	rec := postJSON(t, router, "/api/select-slot", map[string]any{
		"sessionId": "nope",
		"slot":      schedule.Slot{Date: "2025-06-09", StartTime: "14:00"},
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Session not found"}`, rec.Body.String())
}

func TestGetBookingEndpoint(t *testing.T) {
	h, f := newTestHandler(t)
	router := testRouter(h)
	b := &booking.Booking{
		ID:               "APPT-20250608-ABCDEF01",
		ConfirmationCode: "A1B2C3",
		Status:           booking.StatusConfirmed,
		AppointmentType:  schedule.TypeGeneralConsultation,
		Date:             "2025-06-09",
		StartTime:        "14:00",
		Patient:          booking.Patient{Name: "Ana Ruiz", Email: "ana@example.com", Phone: "555-0101"},
		CreatedAt:        time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.ledger.Create(context.Background(), b))

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/APPT-20250608-ABCDEF01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got booking.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "A1B2C3", got.ConfirmationCode)
	assert.Equal(t, "Ana Ruiz", got.Patient.Name)
}

func TestGetBookingNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/APPT-00000000-00000000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Booking not found"}`, rec.Body.String())
}

func TestResetSessionEndpoint(t *testing.T) {
	h, f := newTestHandler(t)
	router := testRouter(h)
	sess := session.New("sess-1")
	sess.Phase = session.PhaseCollectingInfo
	sess.Patient.Name = "Ana Ruiz"
	require.NoError(t, f.store.Put(context.Background(), sess))

	rec := postJSON(t, router, "/api/reset-session", map[string]string{"sessionId": "sess-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"reset"}`, rec.Body.String())

	stored, err := f.store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.PhaseGreeting, stored.Phase)
	assert.Empty(t, stored.Patient.Name)
}

func TestResetSessionUnknown(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	rec := postJSON(t, router, "/api/reset-session", map[string]string{"sessionId": "nope"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"not_found"}`, rec.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	_, err := time.Parse(time.RFC3339, resp["timestamp"])
	assert.NoError(t, err)
}

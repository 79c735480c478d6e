package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/clinicware/intake-agent/internal/booking"
	"github.com/clinicware/intake-agent/internal/conversation"
	"github.com/clinicware/intake-agent/internal/schedule"
	"github.com/clinicware/intake-agent/internal/session"
	"github.com/clinicware/intake-agent/pkg/logging"
)

// TurnProcessor runs one conversation turn. The orchestrator satisfies it.
type TurnProcessor interface {
	Handle(ctx context.Context, sessionID, message string) (*conversation.TurnResult, error)
}

// TranscriptReader replays prior messages to a reconnecting visitor.
type TranscriptReader interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// Handler bridges WebSocket chat connections to the conversation engine.
type Handler struct {
	processor TurnProcessor
	sessions  TranscriptReader
	logger    *logging.Logger
}

// InboundMessage is what the chat widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type             string                       `json:"type"` // "message", "session", "history", "pong", "error"
	Text             string                       `json:"text,omitempty"`
	Role             string                       `json:"role,omitempty"`
	SessionID        string                       `json:"sessionId,omitempty"`
	Timestamp        string                       `json:"timestamp,omitempty"`
	Phase            session.Phase                `json:"phase,omitempty"`
	AvailableSlots   []schedule.Slot              `json:"availableSlots,omitempty"`
	Booking          *booking.Booking             `json:"booking,omitempty"`
	AppointmentTypes map[string]schedule.TypeInfo `json:"appointmentTypes,omitempty"`
	Messages         []HistoryMessage             `json:"messages,omitempty"`
}

// HistoryMessage is a simplified transcript entry for history replay.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a web chat handler.
func NewHandler(processor TurnProcessor, sessions TranscriptReader, logger *logging.Logger) *Handler {
	if processor == nil {
		panic("webchat: handler requires a turn processor")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{processor: processor, sessions: sessions, logger: logger}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// WebSocketServer returns the handler for GET /chat/ws. Visitors may pass
// ?session=<id> to resume; otherwise a fresh session ID is issued.
func (h *Handler) WebSocketServer() websocket.Handler {
	return websocket.Handler(h.serveWS)
}

func (h *Handler) serveWS(conn *websocket.Conn) {
	defer conn.Close()

	r := conn.Request()
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	h.sendHistory(r.Context(), conn, sessionID)

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.processMessage(r.Context(), conn, sessionID, msg.Text)
	}
}

func (h *Handler) sendHistory(ctx context.Context, conn *websocket.Conn, sessionID string) {
	if h.sessions == nil {
		return
	}
	sess, err := h.sessions.Get(ctx, sessionID)
	if err != nil || len(sess.Messages) == 0 {
		return
	}
	history := make([]HistoryMessage, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		history = append(history, HistoryMessage{
			Role:      m.Role,
			Text:      m.Content,
			Timestamp: m.Timestamp,
		})
	}
	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: history})
}

func (h *Handler) processMessage(ctx context.Context, conn *websocket.Conn, sessionID, text string) {
	turn, err := h.processor.Handle(ctx, sessionID, text)
	if err != nil {
		h.logger.Error("webchat: turn failed", "error", err, "session_id", sessionID)
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type: "error",
			Text: "Sorry, something went wrong. Please try again.",
		})
		return
	}

	out := OutboundMessage{
		Type:           "message",
		Role:           "assistant",
		Text:           turn.Response,
		SessionID:      sessionID,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Phase:          turn.Phase,
		AvailableSlots: turn.AvailableSlots,
		Booking:        turn.Booking,
	}
	if turn.ShowTypes {
		out.AppointmentTypes = schedule.Catalog()
	}
	_ = websocket.JSON.Send(conn, out)
}

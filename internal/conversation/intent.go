package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/clinicware/intake-agent/internal/session"
	"github.com/clinicware/intake-agent/pkg/logging"
)

// Next actions suggested by the intent oracle.
const (
	actionAskReason     = "ask_reason"
	actionShowTypes     = "show_appointment_types"
	actionShowSlots     = "show_slots"
	actionRestart       = "restart"
	actionConfirmBook   = "confirm_booking"
	defaultLLMTimeout   = 60 * time.Second
	intentDefaultIntent = "unknown"
)

// SlotRef is a literal date plus start time extracted by the oracle.
// EndTime is normally absent and backfilled from the schedule.
type SlotRef struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
}

// flexString tolerates the oracle returning either a JSON string or a
// bare number for numeric-ish fields.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// Extracted carries the oracle's structured field guesses.
type Extracted struct {
	Reason          string     `json:"reason"`
	AppointmentType string     `json:"appointment_type"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Date            string     `json:"date"`
	TimePreference  string     `json:"time_preference"`
	SpecificSlot    *SlotRef   `json:"specific_slot"`
	SlotSelection   flexString `json:"slot_selection"`
}

// IntentResult is the oracle's full answer for one turn.
type IntentResult struct {
	Intent      string    `json:"intent"`
	Extracted   Extracted `json:"extracted"`
	NextAction  string    `json:"next_action"`
	ReadyToBook bool      `json:"ready_to_book"`
	IsGreeting  bool      `json:"is_greeting"`
}

func fallbackIntentResult() IntentResult {
	return IntentResult{
		Intent:     intentDefaultIntent,
		NextAction: actionAskReason,
	}
}

// IntentAgent delegates intent extraction to an LLM and parses its
// strict-JSON reply. Any call or parse failure silently degrades to an
// empty, non-ready result; the agent never retries.
type IntentAgent struct {
	llm     LLMClient
	timeout time.Duration
	logger  *logging.Logger
}

// NewIntentAgent creates an intent agent over the given LLM client.
func NewIntentAgent(llm LLMClient, timeout time.Duration, logger *logging.Logger) *IntentAgent {
	if llm == nil {
		panic("conversation: intent agent requires an LLM client")
	}
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IntentAgent{llm: llm, timeout: timeout, logger: logger}
}

// Analyze asks the oracle what the user meant and what to do next.
func (a *IntentAgent) Analyze(ctx context.Context, sess *session.Session, userMessage string) IntentResult {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := buildIntentPrompt(sess, userMessage)

	start := time.Now()
	resp, err := a.llm.Complete(ctx, LLMRequest{
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		Temperature: -1,
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmLatency.WithLabelValues("intent", status).Observe(time.Since(start).Seconds())
	if err != nil {
		a.logger.Error("intent analysis failed", "error", err, "session_id", sess.ID)
		return fallbackIntentResult()
	}
	observeLLMUsage("intent", resp.Usage)

	var result IntentResult
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Text)), &result); err != nil {
		a.logger.Error("intent response was not valid JSON", "error", err, "session_id", sess.ID)
		return fallbackIntentResult()
	}
	if result.NextAction == "" {
		result.NextAction = actionAskReason
	}
	return result
}

// stripCodeFences removes markdown fences models wrap JSON answers in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

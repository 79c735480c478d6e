package conversation

import (
	"context"
	"time"

	"github.com/clinicware/intake-agent/internal/schedule"
	"github.com/clinicware/intake-agent/internal/session"
	"github.com/clinicware/intake-agent/pkg/logging"
)

// Responder delegates reply wording to an LLM. On any failure it
// substitutes one fixed fallback sentence rather than surfacing an error.
type Responder struct {
	llm     LLMClient
	timeout time.Duration
	logger  *logging.Logger
}

// NewResponder creates a responder over the given LLM client.
func NewResponder(llm LLMClient, timeout time.Duration, logger *logging.Logger) *Responder {
	if llm == nil {
		panic("conversation: responder requires an LLM client")
	}
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Responder{llm: llm, timeout: timeout, logger: logger}
}

// Generate produces the assistant's reply for the chosen next action.
// Slots are only rendered into the prompt when the action is show_slots.
func (r *Responder) Generate(ctx context.Context, sess *session.Session, result IntentResult, slots []schedule.Slot) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prompt := buildResponsePrompt(sess, result.NextAction, slots)

	start := time.Now()
	resp, err := r.llm.Complete(ctx, LLMRequest{
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		Temperature: -1,
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmLatency.WithLabelValues("responder", status).Observe(time.Since(start).Seconds())
	if err != nil {
		r.logger.Error("response generation failed", "error", err, "session_id", sess.ID)
		return responderFallbackReply
	}
	observeLLMUsage("responder", resp.Usage)

	if resp.Text == "" {
		return responderFallbackReply
	}
	return resp.Text
}

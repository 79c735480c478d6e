package conversation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clinicware/intake-agent/internal/schedule"
	"github.com/clinicware/intake-agent/internal/session"
)

const (
	intentHistoryWindow    = 8
	responseHistoryWindow  = 4
	responseSlotsShown     = 5
	responderFallbackReply = "I'm here to help you schedule your appointment. What brings you in today?"
)

func renderHistory(messages []session.Message, window int) string {
	if len(messages) > window {
		messages = messages[len(messages)-window:]
	}
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}
	return strings.Join(lines, "\n")
}

func renderSelectedSlot(slot *schedule.Slot) string {
	if slot == nil {
		return "none"
	}
	data, err := json.Marshal(slot)
	if err != nil {
		return "none"
	}
	return string(data)
}

func buildIntentPrompt(sess *session.Session, userMessage string) string {
	collected, _ := json.Marshal(sess.Collected)

	return fmt.Sprintf(`You are analyzing a medical appointment booking conversation with a specific flow.

CONVERSATION FLOW:
1. First: Get reason for visit
2. Then: Show appointment type options and get selection
3. Then: Ask for date/time preference
4. Then: Show available slots
5. Then: Collect patient details (name, phone, email)
6. Finally: Confirm booking

Current State:
- Phase: %s
- Collected: %s
- Patient: name=%s, email=%s, phone=%s
- Booking: type=%s, reason=%s, date=%s, time=%s
- Selected Slot: %s

Recent Conversation:
%s

User Message: %q

Appointment Types Available:
- general_consultation (30 min): For common health concerns, symptoms like headaches, fever, cough
- specialist_consultation (60 min): For serious/chronic conditions, specialized care
- physical_exam (45 min): Annual checkups, comprehensive exams
- followup (15 min): Quick follow-ups for previous visits

Analyze and return JSON with:
{
    "intent": "provide_reason|select_appointment_type|select_time|provide_info|confirm|new_booking|select_slot",
    "extracted": {
        "reason": "extracted reason or null",
        "appointment_type": "general_consultation|specialist_consultation|physical_exam|followup or null",
        "name": "extracted name or null",
        "email": "extracted email or null",
        "phone": "extracted phone or null",
        "date": "YYYY-MM-DD format or null",
        "time_preference": "morning|afternoon|evening or null",
        "specific_slot": {"date": "YYYY-MM-DD", "start_time": "HH:MM"} or null,
        "slot_selection": "which slot number user selected (1-5) or null"
    },
    "next_action": "ask_reason|show_appointment_types|ask_time_preference|show_slots|collect_name|collect_phone|collect_email|confirm_booking|restart",
    "ready_to_book": true/false,
    "is_greeting": true/false
}

Rules:
1. If user greets ("hello", "hi"), set is_greeting=true, next_action="ask_reason"
2. If user provides reason but no type selected, next_action="show_appointment_types"
3. Extract appointment type from keywords (e.g., "follow-up" -> followup, "physical" -> physical_exam)
4. If appointment type selected, next_action="ask_time_preference"
5. If time preference given, next_action="show_slots"
6. If slot selected and have type, next_action starts collecting: "collect_name" -> "collect_phone" -> "collect_email"
7. ready_to_book=true ONLY when we have: name, email, phone, selected_slot
8. If user says "new appointment" or "book another" after completion, set next_action="restart"
9. Parse dates like "tomorrow", "Jan 16", "Wednesday", "06-11-2025"
10. Parse times like "2:00 PM", "afternoon", "morning", "1PM" as {date: "YYYY-MM-DD", start_time: "13:00"}
11. When user selects a slot number (e.g., "1", "first", "option 1"), set slot_selection to that number
12. When extracting specific_slot, ONLY include date and start_time, NOT end_time (it will be looked up)

Respond ONLY with valid JSON.`,
		sess.Phase,
		collected,
		sess.Patient.Name, sess.Patient.Email, sess.Patient.Phone,
		sess.Booking.AppointmentType, sess.Booking.Reason, sess.Booking.PreferredDate, sess.Booking.PreferredTime,
		renderSelectedSlot(sess.Booking.SelectedSlot),
		renderHistory(sess.Messages, intentHistoryWindow),
		userMessage,
	)
}

func buildResponsePrompt(sess *session.Session, nextAction string, slots []schedule.Slot) string {
	have, _ := json.Marshal(map[string]any{
		"reason":           sess.Booking.Reason,
		"appointment_type": sess.Booking.AppointmentType,
		"name":             sess.Patient.Name,
		"email":            sess.Patient.Email,
		"phone":            sess.Patient.Phone,
		"date":             sess.Booking.PreferredDate,
		"time":             sess.Booking.PreferredTime,
		"selected_slot":    sess.Booking.SelectedSlot,
	})

	var recommended string
	if nextAction == actionShowTypes && sess.Booking.Reason != "" {
		if info, ok := schedule.TypeByCode(schedule.RecommendType(sess.Booking.Reason)); ok {
			recommended = fmt.Sprintf("\n- Recommended type for this reason: %s (%d min)", info.Name, info.Duration)
		}
	}

	var slotsText strings.Builder
	if len(slots) > 0 && nextAction == actionShowSlots {
		slotsText.WriteString("\n\nAvailable slots to show:\n")
		for i, slot := range slots {
			if i == responseSlotsShown {
				break
			}
			fmt.Fprintf(&slotsText, "%d. %s, %s at %s\n", i+1, slot.Day, slot.Date, slot.StartTime)
		}
	}

	return fmt.Sprintf(`You are a warm, professional medical appointment assistant.

Current Situation:
- Phase: %s
- What we have: %s
- Next action: %s%s

Recent conversation:
%s%s

Response Guidelines by Action:

ask_reason:
- "I'd be happy to help you schedule an appointment! What's the main reason for your visit today?"

show_appointment_types:
- Acknowledge their reason warmly
- Recommend the most appropriate type based on their reason
- Present ALL 4 options with durations clearly:
  Example: "I understand. For [reason], I'd recommend a [recommended type] ([X] minutes) where the doctor can [what they do].

  We also have these options:
  - General Consultation (30 min) - For common health concerns
  - Specialist Consultation (60 min) - For serious/chronic conditions
  - Physical Exam (45 min) - Comprehensive health checkup
  - Follow-up (15 min) - Quick follow-up visit

  Which type would work best for you?"

ask_time_preference:
- "Perfect! When would you like to come in? Do you have a preference for morning, afternoon, or evening appointments?"

show_slots:
- Present available slots conversationally
- Format: "Let me check our [morning/afternoon/evening] availability this week. I have these options:"
- List 3-5 slots with full details: day, date, and time
- End with: "Which works best for you?"

collect_name:
- "Great choice! Before I confirm, I'll need a few details. What's your full name?"

collect_phone:
- "Thank you! What's the best phone number to reach you?"

collect_email:
- "And your email address for the confirmation?"

Rules:
- NEVER repeat information already provided
- Keep responses natural and conversational
- Be concise (2-4 sentences unless listing options)
- Don't mention phase or internal state
- Format times as "2:00 PM" not "14:00"

Write ONLY the assistant's response.`,
		sess.Phase,
		have,
		nextAction,
		recommended,
		renderHistory(sess.Messages, responseHistoryWindow),
		slotsText.String(),
	)
}

package schedule

import "testing"

func TestRecommendType(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   string
	}{
		{"followup wording", "I need a follow up on my labs", TypeFollowup},
		{"checkup", "routine checkup please", TypeFollowup},
		{"physical", "annual physical", TypePhysicalExam},
		{"exam", "complete exam for insurance", TypePhysicalExam},
		{"specialist", "referral to a cardiologist", TypeSpecialistConsultation},
		{"chronic", "chronic back pain", TypeSpecialistConsultation},
		{"default", "I have a bad headache", TypeGeneralConsultation},
		{"empty input", "", TypeGeneralConsultation},
		{"case insensitive", "FOLLOW-UP visit", TypeFollowup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecommendType(tt.reason); got != tt.want {
				t.Fatalf("RecommendType(%q) = %s, want %s", tt.reason, got, tt.want)
			}
		})
	}
}

// Priority: followup keywords outrank physical, which outrank specialist.
func TestRecommendTypePriority(t *testing.T) {
	if got := RecommendType("follow up after my physical with the specialist"); got != TypeFollowup {
		t.Fatalf("expected followup to win, got %s", got)
	}
	if got := RecommendType("physical exam with a specialist"); got != TypePhysicalExam {
		t.Fatalf("expected physical_exam to win, got %s", got)
	}
}

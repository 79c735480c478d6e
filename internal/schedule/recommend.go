package schedule

import "strings"

// Keyword lists checked in priority order by RecommendType.
var (
	followupKeywords   = []string{"followup", "follow-up", "follow up", "checkup", "check up", "routine check"}
	physicalKeywords   = []string{"physical", "exam", "annual", "complete exam"}
	specialistKeywords = []string{"specialist", "cardiologist", "dermatologist", "neurologist", "serious", "chronic"}
)

// RecommendType maps a free-text visit reason to an appointment type code.
// Matching is case-insensitive substring containment; the first list with
// a hit wins and anything unmatched defaults to a general consultation.
func RecommendType(reason string) string {
	lower := strings.ToLower(reason)

	if containsAny(lower, followupKeywords) {
		return TypeFollowup
	}
	if containsAny(lower, physicalKeywords) {
		return TypePhysicalExam
	}
	if containsAny(lower, specialistKeywords) {
		return TypeSpecialistConsultation
	}
	return TypeGeneralConsultation
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

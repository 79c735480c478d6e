package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Appointment type codes recognized across the service.
const (
	TypeGeneralConsultation    = "general_consultation"
	TypeSpecialistConsultation = "specialist_consultation"
	TypePhysicalExam           = "physical_exam"
	TypeFollowup               = "followup"
)

// TypeInfo describes one entry of the fixed appointment-type catalog.
type TypeInfo struct {
	Name        string `json:"name"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

var catalog = map[string]TypeInfo{
	TypeGeneralConsultation: {
		Name:        "General Consultation",
		Duration:    30,
		Description: "Standard doctor visit for general health concerns",
	},
	TypeSpecialistConsultation: {
		Name:        "Specialist Consultation",
		Duration:    60,
		Description: "Extended consultation with a specialist",
	},
	TypePhysicalExam: {
		Name:        "Physical Exam",
		Duration:    45,
		Description: "Comprehensive physical examination",
	},
	TypeFollowup: {
		Name:        "Follow-up",
		Duration:    15,
		Description: "Quick follow-up for previous visit",
	},
}

// Catalog returns a copy of the fixed appointment-type catalog.
func Catalog() map[string]TypeInfo {
	out := make(map[string]TypeInfo, len(catalog))
	for code, info := range catalog {
		out[code] = info
	}
	return out
}

// TypeByCode looks up a catalog entry. ok is false for unknown codes.
func TypeByCode(code string) (TypeInfo, bool) {
	info, ok := catalog[code]
	return info, ok
}

// Slot is a concrete bookable interval for an appointment type.
type Slot struct {
	Day       string `json:"day,omitempty"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime,omitempty"`
	Duration  int    `json:"duration,omitempty"`
}

// Day is one schedule day for an appointment type, in file order.
type Day struct {
	Name  string
	Date  string
	Slots []DaySlot
}

// DaySlot is a raw slot entry from the schedule file.
type DaySlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

// TypeSchedule holds the weekly availability for one appointment type.
// Days preserve the order they appear in the schedule file.
type TypeSchedule struct {
	DurationMinutes int
	Days            []Day
}

// UnmarshalJSON decodes the schedule object while preserving day order,
// which a plain map would randomize.
func (ts *TypeSchedule) UnmarshalJSON(data []byte) error {
	var aux struct {
		DurationMinutes int             `json:"duration_minutes"`
		Schedule        json.RawMessage `json:"schedule"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	ts.DurationMinutes = aux.DurationMinutes
	ts.Days = nil
	if len(aux.Schedule) == 0 || string(aux.Schedule) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(aux.Schedule))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("schedule: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("schedule: expected day name, got %v", keyTok)
		}
		var day struct {
			Date  string    `json:"date"`
			Slots []DaySlot `json:"slots"`
		}
		if err := dec.Decode(&day); err != nil {
			return fmt.Errorf("schedule: day %q: %w", name, err)
		}
		ts.Days = append(ts.Days, Day{Name: name, Date: day.Date, Slots: day.Slots})
	}
	return nil
}

// Table is the full read-only schedule, keyed by appointment type code.
// Loaded once at startup and never mutated afterwards.
type Table struct {
	types map[string]*TypeSchedule
}

// NewTable builds a table from pre-decoded type schedules. Used by tests.
func NewTable(types map[string]*TypeSchedule) *Table {
	if types == nil {
		types = make(map[string]*TypeSchedule)
	}
	return &Table{types: types}
}

// LoadTable reads and decodes the schedule JSON file at path.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schedule: failed to read %s: %w", path, err)
	}
	return ParseTable(data)
}

// ParseTable decodes schedule JSON from a byte slice.
func ParseTable(data []byte) (*Table, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schedule: failed to decode table: %w", err)
	}
	types := make(map[string]*TypeSchedule, len(raw))
	for code, blob := range raw {
		var ts TypeSchedule
		if err := json.Unmarshal(blob, &ts); err != nil {
			return nil, fmt.Errorf("schedule: type %q: %w", code, err)
		}
		types[code] = &ts
	}
	return &Table{types: types}, nil
}

// Type returns the schedule for one appointment type, or nil if unknown.
func (t *Table) Type(code string) *TypeSchedule {
	return t.types[code]
}

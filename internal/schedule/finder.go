package schedule

import (
	"strconv"
	"strings"
)

// maxSlots caps how many slots a single lookup returns.
const maxSlots = 10

// Finder filters the static schedule table by date and coarse
// time-of-day preference.
type Finder struct {
	table *Table
}

// NewFinder creates a slot finder over a loaded table.
func NewFinder(table *Table) *Finder {
	if table == nil {
		panic("schedule: table cannot be nil")
	}
	return &Finder{table: table}
}

// Find returns up to ten available slots for the given appointment type.
// date, when non-empty, must match a day's date exactly. timePreference
// accepts morning/am, afternoon/pm, and evening; any other token leaves
// slots unfiltered. Unknown types, unknown dates, and malformed slot
// times all yield an empty result rather than an error.
func (f *Finder) Find(typeCode, date, timePreference string) []Slot {
	ts := f.table.Type(typeCode)
	if ts == nil {
		return nil
	}

	pref := strings.ToLower(strings.TrimSpace(timePreference))
	var out []Slot
	for _, day := range ts.Days {
		if date != "" && day.Date != date {
			continue
		}
		for _, s := range day.Slots {
			if !s.Available {
				continue
			}
			if pref != "" {
				hour, ok := startHour(s.StartTime)
				if !ok {
					return nil
				}
				if !matchesPreference(pref, hour) {
					continue
				}
			}
			out = append(out, Slot{
				Day:       day.Name,
				Date:      day.Date,
				StartTime: s.StartTime,
				EndTime:   s.EndTime,
				Duration:  ts.DurationMinutes,
			})
			if len(out) == maxSlots {
				return out
			}
		}
	}
	return out
}

func startHour(startTime string) (int, bool) {
	h, _, found := strings.Cut(startTime, ":")
	if !found {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	return hour, true
}

// matchesPreference classifies a start hour into the fixed bands:
// morning <12, afternoon 12..16, evening >=17.
func matchesPreference(pref string, hour int) bool {
	switch pref {
	case "morning", "am":
		return hour < 12
	case "afternoon", "pm":
		return hour >= 12 && hour < 17
	case "evening":
		return hour >= 17
	default:
		return true
	}
}

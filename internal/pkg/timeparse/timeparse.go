// Extracting event start/end instants from free-text date/time blocks.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// clockRe matches 12-hour clock mentions like "6:00 PM", "11:30am" or
// "9:15 p.m.".
var clockRe = regexp.MustCompile(`(?i)\b(\d{1,2}):([0-5][0-9])\s*([ap])\.?m\.?\b`)

// Window is a time-of-day range used as the fallback when a text block does
// not contain two parseable clock times.
type Window struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

// DefaultWindow is the 18:00-19:00 local fallback applied to records whose
// upstream text yields fewer than two clock times.
var DefaultWindow = Window{StartHour: 18, EndHour: 19}

// Parse extracts a start/end instant pair from raw free text, anchored to the
// calendar date of ref in ref's location.
//
// The first clock time found becomes the start, the second the end. If the
// end does not come after the start (an event advertised as
// "9:00 PM - 1:00 AM"), the end rolls over to the next day rather than being
// clamped; overnight events keep their full duration. With fewer than two
// clock times both instants fall back to def. Parse never fails: malformed
// text degrades to the fallback window.
func Parse(raw string, ref time.Time, def Window) (time.Time, time.Time) {
	matches := clockRe.FindAllStringSubmatch(raw, 3)
	if len(matches) < 2 {
		return anchor(ref, def.StartHour, def.StartMinute), anchor(ref, def.EndHour, def.EndMinute)
	}

	sh, sm, ok1 := clockFrom(matches[0])
	eh, em, ok2 := clockFrom(matches[1])
	if !ok1 || !ok2 {
		return anchor(ref, def.StartHour, def.StartMinute), anchor(ref, def.EndHour, def.EndMinute)
	}

	start := anchor(ref, sh, sm)
	end := anchor(ref, eh, em)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// clockFrom converts one regexp match into 24-hour clock values.
func clockFrom(m []string) (hour, minute int, ok bool) {
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	if hour == 12 {
		hour = 0
	}
	if strings.EqualFold(m[3], "p") {
		hour += 12
	}
	return hour, minute, true
}

func anchor(ref time.Time, hour, minute int) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location())
}

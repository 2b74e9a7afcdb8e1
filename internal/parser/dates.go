package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var monthAbbrevs = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// extractDates pulls a due date and clock time out of the lowercased message.
// Relative patterns are mutually exclusive and checked in priority order:
// today, tomorrow, next week, "in N days". A month-name + day mention is
// evaluated afterwards and unconditionally overrides whatever the relative
// pass produced, using the reference year. Time of day is independent.
// Empty strings mean no match.
func extractDates(message string, now time.Time) (date, clock string) {
	switch {
	case reToday.MatchString(message):
		date = now.Format("2006-01-02")
	case reTomorrow.MatchString(message):
		date = now.AddDate(0, 0, 1).Format("2006-01-02")
	case reNextWeek.MatchString(message):
		date = now.AddDate(0, 0, 7).Format("2006-01-02")
	default:
		if m := reInDays.FindStringSubmatch(message); m != nil {
			days, _ := strconv.Atoi(m[1])
			date = now.AddDate(0, 0, days).Format("2006-01-02")
		}
	}

	if m := reMonthDay.FindStringSubmatch(message); m != nil {
		if month := monthIndex(m[1]); month > 0 {
			day, _ := strconv.Atoi(m[2])
			date = fmt.Sprintf("%04d-%02d-%02d", now.Year(), month, day)
		}
	}

	if m := reClock.FindStringSubmatch(message); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes := m[2]
		if minutes == "" {
			minutes = "00"
		}
		switch m[3] {
		case "pm":
			if hours < 12 {
				hours += 12
			}
		case "am":
			if hours == 12 {
				hours = 0
			}
		}
		clock = fmt.Sprintf("%02d:%s", hours, minutes)
	}

	return date, clock
}

// monthIndex returns 1..12 for a recognized month prefix, 0 otherwise.
func monthIndex(abbrev string) int {
	for i, m := range monthAbbrevs {
		if strings.HasPrefix(abbrev, m) {
			return i + 1
		}
	}
	return 0
}

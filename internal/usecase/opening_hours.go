package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

const hoursPerWeek = 168.0

var alwaysOpenPatterns = []string{"24/7", "24/24", "always open", "mo-su 00:00-24:00", "24 hours", "24h"}

// dayRangePattern matches "Mo-Fr 09:00-17:00" after lowercasing.
var dayRangePattern = regexp.MustCompile(`([a-z]{2})-([a-z]{2})\s+(\d{1,2}):(\d{2})-(\d{1,2}):(\d{2})`)

var weekdays = map[string]int{"mo": 1, "tu": 2, "we": 3, "th": 4, "fr": 5, "sa": 6, "su": 7}

// IsAlwaysOpen reports whether an OSM opening_hours value reads as 24/7.
func IsAlwaysOpen(openingHours string) bool {
	lower := strings.ToLower(openingHours)
	for _, p := range alwaysOpenPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// WeeklyOpenHours estimates how many hours per week a place is open from its
// opening_hours tag. Only "day-day hh:mm-hh:mm" clauses are understood; clauses
// separated by ';' are summed and the total is capped at 168. Anything that
// cannot be parsed counts as 0.
func WeeklyOpenHours(openingHours *string) float64 {
	if openingHours == nil {
		return 0
	}
	value := strings.ToLower(strings.TrimSpace(*openingHours))
	if value == "" {
		return 0
	}
	if IsAlwaysOpen(value) {
		return hoursPerWeek
	}

	total := 0.0
	for _, clause := range strings.Split(value, ";") {
		total += clauseHours(strings.TrimSpace(clause))
	}
	if total > hoursPerWeek {
		return hoursPerWeek
	}
	return total
}

func clauseHours(clause string) float64 {
	m := dayRangePattern.FindStringSubmatch(clause)
	if m == nil {
		return 0
	}

	startDay, ok1 := weekdays[m[1]]
	endDay, ok2 := weekdays[m[2]]
	if !ok1 || !ok2 {
		return 0
	}

	var days int
	if endDay >= startDay {
		days = endDay - startDay + 1
	} else {
		// wraps over the weekend, e.g. Fr-Mo
		days = (7 - startDay + 1) + endDay
	}

	start := clockHours(m[3], m[4])
	end := clockHours(m[5], m[6])

	perDay := end - start
	if end < start {
		perDay = (24 - start) + end
	}

	return float64(days) * perDay
}

func clockHours(h, m string) float64 {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	return float64(hours) + float64(minutes)/60
}

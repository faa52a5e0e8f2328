package mstodo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// The canonical recurrence string is the RRULE subset both providers'
// users actually produce: FREQ, INTERVAL, BYDAY, BYMONTHDAY, BYMONTH.
// Graph expresses the same subset as daily / weekly / absoluteMonthly /
// absoluteYearly patterns. Rules outside the subset are dropped rather
// than mangled.

var dayToGraph = map[string]string{
	"MO": "monday",
	"TU": "tuesday",
	"WE": "wednesday",
	"TH": "thursday",
	"FR": "friday",
	"SA": "saturday",
	"SU": "sunday",
}

var dayFromGraph = func() map[string]string {
	m := make(map[string]string, len(dayToGraph))
	for k, v := range dayToGraph {
		m[v] = k
	}
	return m
}()

// ruleToRecurrence parses an RRULE into a Graph recurrence. Returns nil
// for rules outside the supported subset.
func ruleToRecurrence(rule string) *patternedRecurrence {
	parts := map[string]string{}
	for _, kv := range strings.Split(strings.TrimPrefix(rule, "RRULE:"), ";") {
		if kv == "" {
			continue
		}
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil
		}
		parts[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}

	interval := 1
	if v, ok := parts["INTERVAL"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil
		}
		interval = n
	}

	p := recurrencePattern{Interval: interval}
	switch parts["FREQ"] {
	case "DAILY":
		p.Type = "daily"
	case "WEEKLY":
		p.Type = "weekly"
		for _, d := range strings.Split(parts["BYDAY"], ",") {
			if d == "" {
				continue
			}
			name, ok := dayToGraph[strings.ToUpper(d)]
			if !ok {
				return nil
			}
			p.DaysOfWeek = append(p.DaysOfWeek, name)
		}
	case "MONTHLY":
		p.Type = "absoluteMonthly"
		if v, ok := parts["BYMONTHDAY"]; ok {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 31 {
				return nil
			}
			p.DayOfMonth = n
		}
	case "YEARLY":
		p.Type = "absoluteYearly"
		if v, ok := parts["BYMONTH"]; ok {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 12 {
				return nil
			}
			p.Month = n
		}
		if v, ok := parts["BYMONTHDAY"]; ok {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 31 {
				return nil
			}
			p.DayOfMonth = n
		}
	default:
		return nil
	}

	return &patternedRecurrence{
		Pattern: p,
		Range:   recurrenceRange{Type: "noEnd"},
	}
}

// recurrenceToRule renders a Graph recurrence as an RRULE. Unsupported
// pattern types come back empty.
func recurrenceToRule(rec *patternedRecurrence) string {
	p := rec.Pattern
	var freq string
	switch p.Type {
	case "daily":
		freq = "DAILY"
	case "weekly":
		freq = "WEEKLY"
	case "absoluteMonthly":
		freq = "MONTHLY"
	case "absoluteYearly":
		freq = "YEARLY"
	default:
		return ""
	}

	rule := "FREQ=" + freq
	if p.Interval > 1 {
		rule += fmt.Sprintf(";INTERVAL=%d", p.Interval)
	}
	if freq == "WEEKLY" && len(p.DaysOfWeek) > 0 {
		days := make([]string, 0, len(p.DaysOfWeek))
		for _, d := range p.DaysOfWeek {
			if abbr, ok := dayFromGraph[strings.ToLower(d)]; ok {
				days = append(days, abbr)
			}
		}
		sort.Slice(days, func(i, j int) bool { return weekdayOrder(days[i]) < weekdayOrder(days[j]) })
		if len(days) > 0 {
			rule += ";BYDAY=" + strings.Join(days, ",")
		}
	}
	if freq == "YEARLY" && p.Month > 0 {
		rule += fmt.Sprintf(";BYMONTH=%d", p.Month)
	}
	if (freq == "MONTHLY" || freq == "YEARLY") && p.DayOfMonth > 0 {
		rule += fmt.Sprintf(";BYMONTHDAY=%d", p.DayOfMonth)
	}
	return rule
}

// weekdayOrder keeps BYDAY lists stable across round trips.
func weekdayOrder(abbr string) int {
	order := []string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}
	for i, d := range order {
		if d == abbr {
			return i
		}
	}
	return len(order)
}

package mstodo

import (
	"testing"
)

func TestRuleToRecurrence(t *testing.T) {
	cases := []struct {
		name string
		rule string
		typ  string
	}{
		{"daily", "FREQ=DAILY", "daily"},
		{"every third day", "FREQ=DAILY;INTERVAL=3", "daily"},
		{"weekly with days", "FREQ=WEEKLY;BYDAY=MO,WE,FR", "weekly"},
		{"monthly", "FREQ=MONTHLY;BYMONTHDAY=15", "absoluteMonthly"},
		{"yearly", "FREQ=YEARLY;BYMONTH=3;BYMONTHDAY=14", "absoluteYearly"},
		{"rrule prefix accepted", "RRULE:FREQ=DAILY", "daily"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ruleToRecurrence(tc.rule)
			if rec == nil {
				t.Fatalf("ruleToRecurrence(%q) = nil", tc.rule)
			}
			if rec.Pattern.Type != tc.typ {
				t.Errorf("type = %q, want %q", rec.Pattern.Type, tc.typ)
			}
			if rec.Range.Type != "noEnd" {
				t.Errorf("range = %q", rec.Range.Type)
			}
		})
	}
}

func TestRuleToRecurrenceRejectsUnsupported(t *testing.T) {
	for _, rule := range []string{
		"FREQ=HOURLY",
		"FREQ=WEEKLY;BYDAY=XX",
		"FREQ=MONTHLY;BYMONTHDAY=40",
		"FREQ=DAILY;INTERVAL=0",
		"garbage",
	} {
		if rec := ruleToRecurrence(rule); rec != nil {
			t.Errorf("ruleToRecurrence(%q) = %+v, want nil", rule, rec)
		}
	}
}

func TestRecurrenceRoundTrip(t *testing.T) {
	rules := []string{
		"FREQ=DAILY",
		"FREQ=DAILY;INTERVAL=2",
		"FREQ=WEEKLY;BYDAY=MO,WE,FR",
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=TU",
		"FREQ=MONTHLY;BYMONTHDAY=1",
		"FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=24",
	}
	for _, rule := range rules {
		rec := ruleToRecurrence(rule)
		if rec == nil {
			t.Fatalf("ruleToRecurrence(%q) = nil", rule)
		}
		if got := recurrenceToRule(rec); got != rule {
			t.Errorf("round trip %q -> %q", rule, got)
		}
	}
}

func TestRecurrenceToRuleDayOrderStable(t *testing.T) {
	rec := &patternedRecurrence{
		Pattern: recurrencePattern{
			Type:       "weekly",
			Interval:   1,
			DaysOfWeek: []string{"friday", "monday", "wednesday"},
		},
		Range: recurrenceRange{Type: "noEnd"},
	}
	if got := recurrenceToRule(rec); got != "FREQ=WEEKLY;BYDAY=MO,WE,FR" {
		t.Errorf("rule = %q", got)
	}
}

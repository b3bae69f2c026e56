// Package recurrence evaluates schedule frequencies and KEY=VALUE recurrence
// rules into the next occurrence instant.
package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RuleFreq is the FREQ key of a custom rule.
type RuleFreq string

const (
	FreqMinutely RuleFreq = "MINUTELY"
	FreqDaily    RuleFreq = "DAILY"
	FreqWeekly   RuleFreq = "WEEKLY"
	FreqMonthly  RuleFreq = "MONTHLY"
)

var (
	ErrEmptyRule       = errors.New("recurrence rule is empty")
	ErrUnknownFreq     = errors.New("recurrence rule has missing or unrecognized FREQ")
	ErrInvalidInterval = errors.New("INTERVAL must be a positive integer")
	ErrInvalidByDay    = errors.New("BYDAY must be a comma separated list of MO,TU,WE,TH,FR,SA,SU")
	ErrInvalidMonthDay = errors.New("BYMONTHDAY must be between 1 and 31")
)

var weekdayCodes = map[string]time.Weekday{
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
	"SU": time.Sunday,
}

// Rule is a parsed custom recurrence rule.
type Rule struct {
	Freq       RuleFreq
	Interval   int
	ByDay      []time.Weekday
	ByMonthDay int // 0 when unset
}

// ParseRule parses "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,FR". Keys are case
// insensitive and unknown keys are ignored.
func ParseRule(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rule{}, ErrEmptyRule
	}

	rule := Rule{Interval: 1}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return Rule{}, fmt.Errorf("malformed rule segment %q", part)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.ToUpper(strings.TrimSpace(value))

		switch key {
		case "FREQ":
			rule.Freq = RuleFreq(value)
		case "INTERVAL":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return Rule{}, ErrInvalidInterval
			}
			rule.Interval = n
		case "BYDAY":
			days, err := parseByDay(value)
			if err != nil {
				return Rule{}, err
			}
			rule.ByDay = days
		case "BYMONTHDAY":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 || n > 31 {
				return Rule{}, ErrInvalidMonthDay
			}
			rule.ByMonthDay = n
		}
	}

	switch rule.Freq {
	case FreqMinutely, FreqDaily, FreqWeekly, FreqMonthly:
	default:
		return Rule{}, ErrUnknownFreq
	}
	return rule, nil
}

func parseByDay(value string) ([]time.Weekday, error) {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, code := range strings.Split(value, ",") {
		wd, ok := weekdayCodes[strings.TrimSpace(code)]
		if !ok {
			return nil, ErrInvalidByDay
		}
		if !seen[wd] {
			seen[wd] = true
			days = append(days, wd)
		}
	}
	if len(days) == 0 {
		return nil, ErrInvalidByDay
	}
	return days, nil
}

// IsMinutely reports whether the rule is the minute-granularity test cadence.
func (r Rule) IsMinutely() bool {
	return r.Freq == FreqMinutely
}

func (r Rule) hasByDay(wd time.Weekday) bool {
	for _, d := range r.ByDay {
		if d == wd {
			return true
		}
	}
	return false
}

// IsAligned reports whether t already sits on a BYDAY/BYMONTHDAY slot of the
// rule. Rules without a refinement are always aligned.
func (r Rule) IsAligned(t time.Time) bool {
	switch {
	case r.Freq == FreqWeekly && len(r.ByDay) > 0:
		return r.hasByDay(t.Weekday())
	case r.Freq == FreqMonthly && r.ByMonthDay > 0:
		return t.Day() == clampDay(t.Year(), t.Month(), r.ByMonthDay)
	}
	return true
}

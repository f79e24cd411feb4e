package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"egxcli/pkg/contracts/domain"
)

// dateLayouts are tried in order; day comes before month.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02/01/06",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"02-01-2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02-Jan-2006",
	"2 Jan 2006",
}

// ParseNum converts a cell to a number. Thousands separators, a trailing
// percent sign and surrounding whitespace are ignored; anything else that
// fails to parse is missing.
func ParseNum(s string) domain.Num {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Missing()
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.Missing()
	}
	return domain.Num(v)
}

// ParseDayFirst parses a date with day before month. The zero time is
// returned for values that match no known layout.
func ParseDayFirst(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

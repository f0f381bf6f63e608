// Package timeparsing parses the period bounds accepted on the command line.
//
// Inputs are tried in layers, first match wins:
//  1. Compact offset (-2w, -1q, +6h) relative to now
//  2. Absolute timestamp (date-only or RFC3339)
//  3. Natural language (yesterday, last monday, 3 weeks ago)
package timeparsing

import (
	"regexp"
	"strconv"
	"time"
)

var offsetRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmqy])$`)

// Offset is a calendar offset such as "two weeks back".
type Offset struct {
	Amount int  // negative for the past
	Unit   byte // one of h d w m q y
}

// ParseOffset parses [+-]N followed by a unit: h(ours), d(ays), w(eeks),
// m(onths), q(uarters) or y(ears). Without a sign the offset is forward.
func ParseOffset(s string) (Offset, bool) {
	m := offsetRe.FindStringSubmatch(s)
	if m == nil {
		return Offset{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return Offset{}, false
	}
	if m[1] == "-" {
		n = -n
	}
	return Offset{Amount: n, Unit: m[3][0]}, true
}

// From applies the offset to t. Calendar units follow time.AddDate, so
// Jan 31 + 1m normalizes into March.
func (o Offset) From(t time.Time) time.Time {
	switch o.Unit {
	case 'h':
		return t.Add(time.Duration(o.Amount) * time.Hour)
	case 'd':
		return t.AddDate(0, 0, o.Amount)
	case 'w':
		return t.AddDate(0, 0, 7*o.Amount)
	case 'm':
		return t.AddDate(0, o.Amount, 0)
	case 'q':
		return t.AddDate(0, 3*o.Amount, 0)
	case 'y':
		return t.AddDate(o.Amount, 0, 0)
	}
	return t
}

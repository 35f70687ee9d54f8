package function

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mwatts/graphlite"
)

func init() {
	for _, fn := range temporalFns {
		DefaultRegistry.Register(fn)
	}
}

var temporalFns = []Function{
	&builtin{name: "DATE_ADD", minArgs: 2, maxArgs: 2, exec: execDateAdd},
	&builtin{name: "DATE_SUB", minArgs: 2, maxArgs: 2, exec: execDateSub},
}

// durationUnitSeconds maps a DURATION(n, unit) unit letter to its length in
// seconds (§4.6: S, M, H, D, W, a 30-day month, a 365-day year).
var durationUnitSeconds = map[string]float64{
	"S": 1,
	"M": 60,
	"H": 3600,
	"D": 86400,
	"W": 7 * 86400,
	"MO": 30 * 86400,
	"Y": 365 * 86400,
}

// ParseDuration evaluates DURATION(n, unit) per §4.6.
func ParseDuration(n float64, unit string) (time.Duration, error) {
	secs, ok := durationUnitSeconds[strings.ToUpper(unit)]
	if !ok {
		return 0, fmt.Errorf("DURATION: unknown unit %q", unit)
	}
	return time.Duration(n * secs * float64(time.Second)), nil
}

// execDateAdd adds a duration to a datetime. For a named-timezone value the
// arithmetic is DST-aware: convert UTC to local wall time in the annotated
// zone, add, convert back to UTC (§4.6). Fixed-offset and naive UTC values
// add directly since no DST transition applies to them.
func execDateAdd(ctx *Context) (graphlite.Value, error) {
	return addDuration(ctx.Args[0], ctx.Args[1], 1)
}

func execDateSub(ctx *Context) (graphlite.Value, error) {
	return addDuration(ctx.Args[0], ctx.Args[1], -1)
}

func addDuration(dt, amount graphlite.Value, sign float64) (graphlite.Value, error) {
	if dt.Kind != graphlite.KindDateTime && dt.Kind != graphlite.KindDateTimeFixedOffset && dt.Kind != graphlite.KindDateTimeNamedTz {
		return graphlite.Value{}, fmt.Errorf("DATE_ADD/DATE_SUB: first argument is not a datetime")
	}
	d, ok := amount.AsFloat()
	if !ok {
		return graphlite.Value{}, fmt.Errorf("DATE_ADD/DATE_SUB: second argument is not numeric")
	}
	delta := time.Duration(sign * d * float64(time.Second))

	switch dt.Kind {
	case graphlite.KindDateTimeNamedTz:
		loc, err := time.LoadLocation(dt.TzName)
		if err != nil {
			return graphlite.Value{}, fmt.Errorf("DATE_ADD/DATE_SUB: unknown zone %q: %w", dt.TzName, err)
		}
		local := dt.DateTime.In(loc)
		wall := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC).Add(delta)
		shifted := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), loc)
		return graphlite.NewDateTimeNamedTz(shifted.UTC(), dt.TzName), nil
	case graphlite.KindDateTimeFixedOffset:
		return graphlite.NewDateTimeFixedOffset(dt.DateTime.Add(delta), dt.Offset), nil
	default:
		return graphlite.NewDateTime(dt.DateTime.Add(delta)), nil
	}
}

// AddCalendarMonths adds whole months to a datetime, clamping to the last
// valid day of the resulting month (Dec+1 -> Jan next year; negative
// intervals symmetric, §4.6).
func AddCalendarMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	totalMonths := int(m) - 1 + months
	year := y + totalMonths/12
	monthIdx := totalMonths % 12
	if monthIdx < 0 {
		monthIdx += 12
		year--
	}
	newMonth := time.Month(monthIdx + 1)
	lastDay := daysInMonth(year, newMonth)
	if d > lastDay {
		d = lastDay
	}
	return time.Date(year, newMonth, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseISODateTime parses the "T"-shaped datetime literal text recognized by
// DATETIME(...) at parse time; the validator checks only the shape, this
// does the actual parse for the executor. Accepts RFC3339 and the bare
// "YYYY-MM-DDTHH:MM:SS" form.
func ParseISODateTime(s string) (graphlite.Value, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		_, offset := t.Zone()
		if offset == 0 && (strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "+00:00")) {
			return graphlite.NewDateTime(t), nil
		}
		return graphlite.NewDateTimeFixedOffset(t, time.Duration(offset)*time.Second), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return graphlite.NewDateTime(t), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return graphlite.NewDateTime(t), nil
	}
	return graphlite.Value{}, fmt.Errorf("invalid datetime literal %q", s)
}

// ParseISODuration parses a DURATION(...) literal's "P..." text into a
// time.Duration, applying the same unit-seconds table as ParseDuration.
func ParseISODuration(s string) (time.Duration, error) {
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid duration literal %q: must start with P", s)
	}
	body := strings.TrimPrefix(s, "P")
	datePart, timePart, hasTime := strings.Cut(body, "T")
	var total time.Duration

	num := ""
	for _, c := range datePart {
		switch {
		case c >= '0' && c <= '9':
			num += string(c)
		case c == 'Y':
			n, _ := strconv.ParseFloat(num, 64)
			d, _ := ParseDuration(n, "Y")
			total += d
			num = ""
		case c == 'M':
			n, _ := strconv.ParseFloat(num, 64)
			d, _ := ParseDuration(n, "MO")
			total += d
			num = ""
		case c == 'W':
			n, _ := strconv.ParseFloat(num, 64)
			d, _ := ParseDuration(n, "W")
			total += d
			num = ""
		case c == 'D':
			n, _ := strconv.ParseFloat(num, 64)
			d, _ := ParseDuration(n, "D")
			total += d
			num = ""
		}
	}
	if hasTime {
		num = ""
		for _, c := range timePart {
			switch {
			case c >= '0' && c <= '9' || c == '.':
				num += string(c)
			case c == 'H':
				n, _ := strconv.ParseFloat(num, 64)
				d, _ := ParseDuration(n, "H")
				total += d
				num = ""
			case c == 'M':
				n, _ := strconv.ParseFloat(num, 64)
				d, _ := ParseDuration(n, "M")
				total += d
				num = ""
			case c == 'S':
				n, _ := strconv.ParseFloat(num, 64)
				d, _ := ParseDuration(n, "S")
				total += d
				num = ""
			}
		}
	}
	return total, nil
}

// README: Time-of-day, month-day and weekday parsing for rule windows.
package pricing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

var weekdays = map[DayOfWeek]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

func (d DayOfWeek) Weekday() (time.Weekday, bool) {
	wd, ok := weekdays[DayOfWeek(strings.ToLower(string(d)))]
	return wd, ok
}

// schedule is the parsed form of a simulation's scheduled date and time.
type schedule struct {
	date    time.Time
	hasDate bool
	minute  int // minutes since midnight
	hasTime bool
}

func parseSchedule(sim RouteSimulation) (schedule, error) {
	var s schedule
	if v := strings.TrimSpace(sim.ScheduledDate); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return schedule{}, err
		}
		s.date, s.hasDate = d, true
	}
	if v := strings.TrimSpace(sim.ScheduledTime); v != "" {
		m, err := parseClock(v)
		if err != nil {
			return schedule{}, err
		}
		s.minute, s.hasTime = m, true
	}
	return s, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidInput, s)
	}
	return d, nil
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	h, m, ok := splitPair(s, ":")
	if !ok || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: time %q", ErrInvalidInput, s)
	}
	return h*60 + m, nil
}

// parseMonthDay parses "MM-DD" into month*100+day. Feb 29 is accepted.
func parseMonthDay(s string) (int, error) {
	mo, d, ok := splitPair(s, "-")
	if !ok || mo < 1 || mo > 12 || d < 1 || d > daysIn(time.Month(mo)) {
		return 0, fmt.Errorf("%w: month-day %q", ErrInvalidInput, s)
	}
	return mo*100 + d, nil
}

func monthDayOf(t time.Time) int {
	return int(t.Month())*100 + t.Day()
}

func daysIn(m time.Month) int {
	// 2024 is a leap year so February allows the 29th.
	return time.Date(2024, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func splitPair(s, sep string) (int, int, bool) {
	p := strings.SplitN(strings.TrimSpace(s), sep, 2)
	if len(p) != 2 || len(p[0]) == 0 || len(p[0]) > 2 || len(p[1]) != 2 {
		return 0, 0, false
	}
	a, err := strconv.Atoi(p[0])
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(p[1])
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}

// inWindow reports whether v lies in [start, end]. When end < start the window wraps.
func inWindow(v, start, end int) bool {
	if start <= end {
		return v >= start && v <= end
	}
	return v >= start || v <= end
}

// window is an optional [start, end] pair; a missing end defaults to hi, a missing start to lo.
type window struct {
	start, end int
	present    bool
}

func parseWindow(start, end string, lo, hi int, parse func(string) (int, error)) (window, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return window{}, nil
	}
	w := window{start: lo, end: hi, present: true}
	var err error
	if start != "" {
		if w.start, err = parse(start); err != nil {
			return window{}, err
		}
	}
	if end != "" {
		if w.end, err = parse(end); err != nil {
			return window{}, err
		}
	}
	return w, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

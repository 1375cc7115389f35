package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCleanupSchedule runs the cleanups daily at 03:00.
const DefaultCleanupSchedule = "0 3 * * *"

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Schedule is a validated five-field cron expression.
type Schedule struct {
	expr  string
	sched cron.Schedule
}

func ParseSchedule(expr string) (Schedule, error) {
	expr = strings.Join(strings.Fields(expr), " ")
	sched, err := parser.Parse(expr)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}
	return Schedule{expr: expr, sched: sched}, nil
}

func (s Schedule) String() string { return s.expr }

// Next returns the first activation after from.
func (s Schedule) Next(from time.Time) time.Time {
	return s.sched.Next(from)
}

// Describe renders common shapes in words and falls back to the expression.
func (s Schedule) Describe() string {
	f := strings.Fields(s.expr)
	minute, hour, dom, month, dow := f[0], f[1], f[2], f[3], f[4]
	if dom != "*" || month != "*" {
		return "Custom schedule: " + s.expr
	}

	if n, ok := strings.CutPrefix(minute, "*/"); ok && hour == "*" && dow == "*" {
		return "Every " + n + " minutes"
	}
	m, err := strconv.Atoi(minute)
	if err != nil {
		return "Custom schedule: " + s.expr
	}
	if hour == "*" && dow == "*" {
		return fmt.Sprintf("Every hour at :%02d", m)
	}
	if n, ok := strings.CutPrefix(hour, "*/"); ok && dow == "*" {
		return fmt.Sprintf("Every %s hours at :%02d", n, m)
	}
	h, err := strconv.Atoi(hour)
	if err != nil {
		return "Custom schedule: " + s.expr
	}
	at := fmt.Sprintf("%02d:%02d", h, m)
	if dow == "*" {
		return "Daily at " + at
	}
	if d, err := strconv.Atoi(dow); err == nil && d >= 0 && d <= 7 {
		return "Weekly on " + time.Weekday(d%7).String() + " at " + at
	}
	return "Custom schedule: " + s.expr
}

package calendar

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

// Calendar maps a cycle and an instant to cycle boundaries.
// A boundary is the local start of the interval: midnight for daily,
// Monday midnight for weekly, the 1st for monthly, January 1st for yearly,
// and the latest activation at or before the instant for custom cycles.
// Days are calendar days in the zone, not 24h spans.
type Calendar struct {
	parser cron.Parser

	mu        sync.RWMutex
	schedules map[string]cron.Schedule
}

// New creates a Calendar
func New() *Calendar {
	return &Calendar{
		parser: cron.NewParser(
			cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		),
		schedules: make(map[string]cron.Schedule),
	}
}

// Validate checks that the cycle can produce boundaries
func (c *Calendar) Validate(cy domain.Cycle) error {
	switch cy.Kind {
	case domain.CycleDaily, domain.CycleWeekly, domain.CycleMonthly, domain.CycleYearly:
		return nil
	case domain.CycleCustom:
		_, err := c.schedule(cy.Expr)
		return err
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidCycle, ErrMsgNoBoundaryForNone)
}

// BoundaryContaining returns the start of the cycle interval that contains t
func (c *Calendar) BoundaryContaining(cy domain.Cycle, t time.Time, loc *time.Location) (time.Time, error) {
	local := t.In(zone(loc))
	y, m, d := local.Date()

	switch cy.Kind {
	case domain.CycleDaily:
		return time.Date(y, m, d, 0, 0, 0, 0, local.Location()), nil
	case domain.CycleWeekly:
		sinceMonday := (int(local.Weekday()) + 6) % 7
		return time.Date(y, m, d-sinceMonday, 0, 0, 0, 0, local.Location()), nil
	case domain.CycleMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, local.Location()), nil
	case domain.CycleYearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, local.Location()), nil
	case domain.CycleCustom:
		sched, err := c.schedule(cy.Expr)
		if err != nil {
			return time.Time{}, err
		}
		return previousActivation(sched, local, cy.Expr)
	}
	return time.Time{}, fmt.Errorf("%w: %s", domain.ErrInvalidCycle, ErrMsgNoBoundaryForNone)
}

// NextBoundary returns the first boundary strictly after t
func (c *Calendar) NextBoundary(cy domain.Cycle, t time.Time, loc *time.Location) (time.Time, error) {
	local := t.In(zone(loc))

	if cy.Kind == domain.CycleCustom {
		sched, err := c.schedule(cy.Expr)
		if err != nil {
			return time.Time{}, err
		}
		next := sched.Next(local)
		if next.IsZero() {
			return time.Time{}, fmt.Errorf("%w: %s: %q", domain.ErrConfiguration, ErrMsgCustomNeverFires, cy.Expr)
		}
		return next, nil
	}

	start, err := c.BoundaryContaining(cy, local, loc)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := start.Date()

	var next time.Time
	switch cy.Kind {
	case domain.CycleDaily:
		next = time.Date(y, m, d+1, 0, 0, 0, 0, start.Location())
	case domain.CycleWeekly:
		next = time.Date(y, m, d+7, 0, 0, 0, 0, start.Location())
	case domain.CycleMonthly:
		next = time.Date(y, m+1, 1, 0, 0, 0, 0, start.Location())
	case domain.CycleYearly:
		next = time.Date(y+1, time.January, 1, 0, 0, 0, 0, start.Location())
	}
	return next, nil
}

// PreviousBoundary returns the boundary one step before BoundaryContaining(t)
func (c *Calendar) PreviousBoundary(cy domain.Cycle, t time.Time, loc *time.Location) (time.Time, error) {
	current, err := c.BoundaryContaining(cy, t, loc)
	if err != nil {
		return time.Time{}, err
	}
	return c.BoundaryContaining(cy, current.Add(-time.Nanosecond), loc)
}

// Sequence lists the boundaries in (after, upTo], oldest first, returning at most limit of them.
// more is true when boundaries beyond the limit remain; callers pick them up later, never skip them.
func (c *Calendar) Sequence(cy domain.Cycle, after, upTo time.Time, loc *time.Location, limit int) (boundaries []time.Time, more bool, err error) {
	b, err := c.NextBoundary(cy, after, loc)
	if err != nil {
		return nil, false, err
	}

	for !b.After(upTo) {
		if limit > 0 && len(boundaries) >= limit {
			return boundaries, true, nil
		}
		boundaries = append(boundaries, b)

		next, err := c.NextBoundary(cy, b, loc)
		if err != nil {
			return nil, false, err
		}
		if !next.After(b) {
			return nil, false, fmt.Errorf("%w: %s at %s", domain.ErrConfiguration, ErrMsgNonMonotonic, b)
		}
		b = next
	}
	return boundaries, false, nil
}

func (c *Calendar) schedule(expr string) (cron.Schedule, error) {
	c.mu.RLock()
	sched, ok := c.schedules[expr]
	c.mu.RUnlock()
	if ok {
		return sched, nil
	}

	sched, err := c.parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", domain.ErrConfiguration, ErrMsgParseCustomCycle, expr, err)
	}
	if _, fixed := sched.(cron.ConstantDelaySchedule); fixed {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfiguration, ErrMsgCustomFixedInterval)
	}

	c.mu.Lock()
	c.schedules[expr] = sched
	c.mu.Unlock()
	return sched, nil
}

// previousActivation finds the latest activation at or before t by widening a
// look-back window until it contains one.
func previousActivation(sched cron.Schedule, t time.Time, expr string) (time.Time, error) {
	for window := customLookbackStart; window <= customLookbackLimit; window *= 2 {
		found := sched.Next(t.Add(-window))
		if found.IsZero() || found.After(t) {
			continue
		}
		for {
			next := sched.Next(found)
			if next.IsZero() || next.After(t) {
				return found, nil
			}
			found = next
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s: %q", domain.ErrConfiguration, ErrMsgCustomNeverFires, expr)
}

func zone(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

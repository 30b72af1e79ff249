package domain

import (
	"fmt"
	"hash/fnv"
	"strings"

	"golang.org/x/text/cases"
)

// Scope decides where a variable's values are stored
type Scope string

const (
	ScopePlayer Scope = "player"
	ScopeGlobal Scope = "global"
)

// CycleKind is the reset cadence of a variable
type CycleKind string

const (
	CycleNone    CycleKind = "none"
	CycleDaily   CycleKind = "daily"
	CycleWeekly  CycleKind = "weekly"
	CycleMonthly CycleKind = "monthly"
	CycleYearly  CycleKind = "yearly"
	CycleCustom  CycleKind = "custom"
)

// CustomCyclePrefix introduces a cron expression in a cycle string, e.g. "custom:0 6 * * MON"
const CustomCyclePrefix = "custom:"

// Cycle is a reset cadence. Expr is only set for CycleCustom.
type Cycle struct {
	Kind CycleKind `json:"kind"`
	Expr string    `json:"expr,omitempty"`
}

// fold lowercases s for matching. A Caser is stateful, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// ParseScope parses a scope name case-insensitively
func ParseScope(s string) (Scope, error) {
	switch Scope(fold(s)) {
	case ScopePlayer:
		return ScopePlayer, nil
	case ScopeGlobal, "server":
		return ScopeGlobal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
}

// ParseCycle parses "daily", "weekly", "monthly", "yearly", "none" (or empty)
// and "custom:<cron expression>".
func ParseCycle(s string) (Cycle, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Cycle{Kind: CycleNone}, nil
	}

	folded := fold(trimmed)
	if strings.HasPrefix(folded, CustomCyclePrefix) {
		expr := strings.TrimSpace(trimmed[len(CustomCyclePrefix):])
		if expr == "" {
			return Cycle{}, fmt.Errorf("%w: empty custom expression", ErrInvalidCycle)
		}
		return Cycle{Kind: CycleCustom, Expr: expr}, nil
	}

	switch kind := CycleKind(folded); kind {
	case CycleNone, CycleDaily, CycleWeekly, CycleMonthly, CycleYearly:
		return Cycle{Kind: kind}, nil
	}
	return Cycle{}, fmt.Errorf("%w: %q", ErrInvalidCycle, s)
}

// IsNone reports whether the cycle never resets
func (c Cycle) IsNone() bool {
	return c.Kind == "" || c.Kind == CycleNone
}

// Name is the stable identifier used in progress keys.
// Custom cycles are named after a hash of their expression so that
// two variables sharing an expression share a global fallback entry.
func (c Cycle) Name() string {
	if c.Kind != CycleCustom {
		return string(c.Kind)
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(c.Expr))
	return fmt.Sprintf("%s-%08x", CycleCustom, h.Sum32())
}

func (c Cycle) String() string {
	if c.Kind == CycleCustom {
		return CustomCyclePrefix + c.Expr
	}
	return string(c.Kind)
}

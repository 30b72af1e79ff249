package action

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

// Step is one parsed post-reset action
type Step struct {
	Kind  string
	Arg   string
	Delay time.Duration
}

// NeedsPlayer reports whether the step only makes sense with a player context
func (s Step) NeedsPlayer() bool {
	return s.Kind == KindPlayer || s.Kind == KindMessage
}

// ParseSteps parses every line of a definition's reset_actions
func ParseSteps(lines []string) ([]Step, error) {
	steps := make([]Step, 0, len(lines))
	for i, line := range lines {
		step, err := ParseStep(line)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i+1, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// ParseStep parses a single "[tag] argument" line
func ParseStep(line string) (Step, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") {
		return Step{}, fmt.Errorf("%w: %s: %q", domain.ErrInvalidAction, ErrMsgMissingTag, line)
	}
	end := strings.Index(line, "]")
	if end < 0 {
		return Step{}, fmt.Errorf("%w: %s: %q", domain.ErrInvalidAction, ErrMsgMissingTag, line)
	}

	kind := strings.ToLower(strings.TrimSpace(line[1:end]))
	arg := strings.TrimSpace(line[end+1:])
	if arg == "" {
		return Step{}, fmt.Errorf("%w: %s: %q", domain.ErrInvalidAction, ErrMsgEmptyArgument, line)
	}

	switch kind {
	case KindConsole, KindOp, KindPlayer, KindMessage:
		return Step{Kind: kind, Arg: arg}, nil
	case KindDelay:
		d, err := parseDelay(arg)
		if err != nil {
			return Step{}, err
		}
		return Step{Kind: kind, Arg: arg, Delay: d}, nil
	}
	return Step{}, fmt.Errorf("%w: %s %q", domain.ErrInvalidAction, ErrMsgUnknownTag, kind)
}

// parseDelay accepts whole seconds ("20") or a Go duration ("1m30s")
func parseDelay(arg string) (time.Duration, error) {
	var d time.Duration
	if secs, err := strconv.Atoi(arg); err == nil {
		d = time.Duration(secs) * time.Second
	} else {
		d, err = time.ParseDuration(arg)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q", domain.ErrInvalidAction, ErrMsgInvalidDelay, arg)
		}
	}
	if d < 0 || d > MaxDelay {
		return 0, fmt.Errorf("%w: %s %q", domain.ErrInvalidAction, ErrMsgInvalidDelay, arg)
	}
	return d, nil
}

// Render substitutes placeholders. Player placeholders are left untouched without a player.
func Render(arg, variableKey string, player *domain.Player) string {
	pairs := []string{PlaceholderVariable, variableKey}
	if player != nil {
		pairs = append(pairs, PlaceholderPlayer, player.Name, PlaceholderPlayerID, player.ID)
	}
	return strings.NewReplacer(pairs...).Replace(arg)
}

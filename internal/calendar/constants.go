package calendar

import "time"

const (
	// customLookbackStart is the first window searched for the previous activation of a custom cycle
	customLookbackStart = time.Minute

	// customLookbackLimit bounds the search; a custom cycle with no activation in this span is misconfigured
	customLookbackLimit = 5 * 366 * 24 * time.Hour
)

// Error messages
const (
	ErrMsgParseCustomCycle    = "failed to parse custom cycle"
	ErrMsgCustomNeverFires    = "custom cycle has no activation in range"
	ErrMsgCustomFixedInterval = "custom cycle must be calendar aligned, @every is not supported"
	ErrMsgNoBoundaryForNone   = "cycle kind none has no boundaries"
	ErrMsgNonMonotonic        = "boundary sequence did not advance"
)

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/osse101/CycleVars_Go/internal/cycle"
	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/logger"
)

// CycleEngine is the part of the reset engine exposed to admins
type CycleEngine interface {
	Status() []cycle.VariableStatus
	RunOnce(ctx context.Context) []cycle.Outcome
	NextBoundary(def domain.VariableDefinition) (time.Time, error)
}

// ProgressSnapshotter lists persisted cycle progress
type ProgressSnapshotter interface {
	Snapshot(ctx context.Context) ([]domain.ProgressEntry, error)
}

// CycledDefinitions lists the variables that take part in resets
type CycledDefinitions interface {
	Cycled() []domain.VariableDefinition
}

// UpcomingReset is the next boundary of a cycled variable
type UpcomingReset struct {
	Variable     string     `json:"variable"`
	Cycle        string     `json:"cycle"`
	NextBoundary *time.Time `json:"next_boundary,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// CycleStatusResponse is returned by the cycle status endpoint
type CycleStatusResponse struct {
	Variables []cycle.VariableStatus `json:"variables"`
	Progress  []domain.ProgressEntry `json:"progress"`
	Upcoming  []UpcomingReset        `json:"upcoming"`
}

// CycleRunResponse is returned by the manual run endpoint
type CycleRunResponse struct {
	Outcomes []cycle.Outcome `json:"outcomes"`
	Failed   int             `json:"failed"`
}

// AdminCycleHandler handles admin endpoints for cycle resets
type AdminCycleHandler struct {
	engine   CycleEngine
	progress ProgressSnapshotter
	defs     CycledDefinitions
}

// NewAdminCycleHandler creates a new AdminCycleHandler
func NewAdminCycleHandler(engine CycleEngine, progress ProgressSnapshotter, defs CycledDefinitions) *AdminCycleHandler {
	return &AdminCycleHandler{engine: engine, progress: progress, defs: defs}
}

// HandleGetStatus returns engine status, persisted progress and upcoming boundaries
// GET /api/v1/admin/cycle/status
func (h *AdminCycleHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	entries, err := h.progress.Snapshot(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error(ErrMsgGetProgressFailed, "error", err)
		respondError(w, http.StatusServiceUnavailable, ErrMsgGetProgressFailed)
		return
	}

	defs := h.defs.Cycled()
	upcoming := make([]UpcomingReset, 0, len(defs))
	for _, def := range defs {
		u := UpcomingReset{Variable: def.Key, Cycle: def.Cycle.String()}
		if next, err := h.engine.NextBoundary(def); err != nil {
			u.Error = err.Error()
		} else {
			u.NextBoundary = &next
		}
		upcoming = append(upcoming, u)
	}

	respondJSON(w, http.StatusOK, CycleStatusResponse{
		Variables: h.engine.Status(),
		Progress:  entries,
		Upcoming:  upcoming,
	})
}

// HandleRun processes every cycled variable synchronously
// POST /api/v1/admin/cycle/run
func (h *AdminCycleHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Info(LogMsgManualRunTriggered)

	outcomes := h.engine.RunOnce(r.Context())
	failed := 0
	for _, out := range outcomes {
		if out.Error != "" {
			failed++
		}
	}

	log.Info(LogMsgManualRunCompleted, "variables", len(outcomes), "failed", failed)
	respondJSON(w, http.StatusOK, CycleRunResponse{Outcomes: outcomes, Failed: failed})
}

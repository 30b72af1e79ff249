package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/variable"
)

// ValueService reads and writes variable values
type ValueService interface {
	Get(ctx context.Context, key, playerID string) (*domain.VariableValue, error)
	Set(ctx context.Context, key, playerID, value string) (*domain.VariableValue, error)
}

// DefinitionReloader re-reads variable definitions
type DefinitionReloader interface {
	Reload(ctx context.Context) (*variable.LoadResult, error)
}

// SetValueRequest is the body of PUT /variables/{key}. Player is omitted for global variables.
type SetValueRequest struct {
	Player string `json:"player,omitempty" validate:"omitempty,uuid"`
	Value  string `json:"value" validate:"max=4096"`
}

// VariableHandler serves variable values
type VariableHandler struct {
	values ValueService
}

// NewVariableHandler creates a new VariableHandler
func NewVariableHandler(values ValueService) *VariableHandler {
	return &VariableHandler{values: values}
}

// HandleGetValue returns the current value of a variable
// GET /api/v1/variables/{key}?player=<uuid>
func (h *VariableHandler) HandleGetValue(w http.ResponseWriter, r *http.Request) {
	player, ok := getPlayerParam(w, GetOptionalQueryParam(r, "player", ""))
	if !ok {
		return
	}

	v, err := h.values.Get(r.Context(), chi.URLParam(r, "key"), player)
	if err != nil {
		respondServiceError(w, r, ErrMsgGetValueFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// HandleSetValue writes a variable value stamped with the current time
// PUT /api/v1/variables/{key}
func (h *VariableHandler) HandleSetValue(w http.ResponseWriter, r *http.Request) {
	var req SetValueRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Set value"); err != nil {
		return
	}

	v, err := h.values.Set(r.Context(), chi.URLParam(r, "key"), req.Player, req.Value)
	if err != nil {
		respondServiceError(w, r, ErrMsgSetValueFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// AdminVariablesHandler handles admin operations on variable definitions
type AdminVariablesHandler struct {
	registry DefinitionReloader
}

// NewAdminVariablesHandler creates a new AdminVariablesHandler
func NewAdminVariablesHandler(registry DefinitionReloader) *AdminVariablesHandler {
	return &AdminVariablesHandler{registry: registry}
}

// ReloadResponse summarizes a definitions reload
type ReloadResponse struct {
	Message string            `json:"message"`
	Loaded  int               `json:"loaded"`
	Cycled  int               `json:"cycled"`
	Skipped map[string]string `json:"skipped,omitempty"`
}

// HandleReload re-reads the definitions file. On failure the previous definitions stay active.
// POST /api/v1/admin/variables/reload
func (h *AdminVariablesHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	res, err := h.registry.Reload(r.Context())
	if err != nil {
		respondServiceError(w, r, ErrMsgReloadDefinitionsFailed, err)
		return
	}

	respondJSON(w, http.StatusOK, ReloadResponse{
		Message: MsgDefinitionsReloaded,
		Loaded:  res.Loaded,
		Cycled:  res.Cycled,
		Skipped: res.Skipped,
	})
}

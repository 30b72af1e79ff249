package variable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/CycleVars_Go/internal/action"
	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/logger"
)

// DefinitionsFile is the JSON layout of the definitions file
type DefinitionsFile struct {
	Version   string            `json:"version"`
	Variables []DefinitionEntry `json:"variables"`
}

// DefinitionEntry is one variable as written in the definitions file
type DefinitionEntry struct {
	Key          string          `json:"key" validate:"required,max=64,printascii,excludesall=:"`
	Scope        string          `json:"scope" validate:"required"`
	Cycle        string          `json:"cycle"`
	ResetActions []string        `json:"reset_actions"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

// CycleValidator checks that a cycle can be evaluated
type CycleValidator interface {
	Validate(c domain.Cycle) error
}

// LoadResult summarizes a load
type LoadResult struct {
	Loaded  int               `json:"loaded"`
	Cycled  int               `json:"cycled"`
	Skipped map[string]string `json:"skipped,omitempty"`
}

// Registry holds the variable definitions. Each load replaces the whole set,
// so a tick always sees one consistent snapshot.
type Registry struct {
	path     string
	cycles   CycleValidator
	validate *validator.Validate

	mu   sync.RWMutex
	defs map[string]domain.VariableDefinition
}

// NewRegistry creates an empty registry backed by path. path may be empty for
// registries populated with Register.
func NewRegistry(path string, cycles CycleValidator) *Registry {
	return &Registry{
		path:     path,
		cycles:   cycles,
		validate: validator.New(),
		defs:     make(map[string]domain.VariableDefinition),
	}
}

// Load reads the definitions file. Invalid entries are logged and skipped;
// only an unreadable or unparsable file fails. A missing file loads nothing.
func (r *Registry) Load(ctx context.Context) (*LoadResult, error) {
	log := logger.FromContext(ctx)

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn(LogMsgDefinitionsMissing, "path", r.path)
		r.replace(map[string]domain.VariableDefinition{})
		return &LoadResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgReadDefinitions, err)
	}

	var file DefinitionsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, ErrMsgParseDefinitions, err)
	}

	defs := make(map[string]domain.VariableDefinition, len(file.Variables))
	result := &LoadResult{Skipped: make(map[string]string)}
	for i, entry := range file.Variables {
		def, err := r.parseEntry(entry)
		if err == nil {
			if _, dup := defs[def.Key]; dup {
				err = fmt.Errorf("%w: %q", domain.ErrDuplicateKey, def.Key)
			}
		}
		if err != nil {
			name := entry.Key
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			result.Skipped[name] = err.Error()
			log.Error(LogMsgDefinitionSkipped, "variable", name, "error", err)
			continue
		}
		defs[def.Key] = def
		if def.HasCycle() {
			result.Cycled++
		}
	}
	result.Loaded = len(defs)

	r.replace(defs)
	log.Info(LogMsgDefinitionsLoaded, "path", r.path, "loaded", result.Loaded,
		"cycled", result.Cycled, "skipped", len(result.Skipped))
	return result, nil
}

// Reload re-reads the definitions file. On failure the previous set stays active.
func (r *Registry) Reload(ctx context.Context) (*LoadResult, error) {
	return r.Load(ctx)
}

// Register adds or replaces a single definition after validating it
func (r *Registry) Register(def domain.VariableDefinition) error {
	if err := r.check(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]domain.VariableDefinition, len(r.defs)+1)
	for k, v := range r.defs {
		next[k] = v
	}
	next[def.Key] = def
	r.defs = next
	return nil
}

// Get returns the definition for key
func (r *Registry) Get(key string) (domain.VariableDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[key]
	if !ok {
		return domain.VariableDefinition{}, fmt.Errorf("%w: %q", domain.ErrDefinitionNotFound, key)
	}
	return def, nil
}

// List returns every definition ordered by key
func (r *Registry) List() []domain.VariableDefinition {
	return r.filter(func(domain.VariableDefinition) bool { return true })
}

// Cycled returns the definitions that take part in cycle resets, ordered by key
func (r *Registry) Cycled() []domain.VariableDefinition {
	return r.filter(domain.VariableDefinition.HasCycle)
}

func (r *Registry) filter(keep func(domain.VariableDefinition) bool) []domain.VariableDefinition {
	r.mu.RLock()
	defs := r.defs
	r.mu.RUnlock()

	out := make([]domain.VariableDefinition, 0, len(defs))
	for _, def := range defs {
		if keep(def) {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *Registry) replace(defs map[string]domain.VariableDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = defs
}

func (r *Registry) parseEntry(entry DefinitionEntry) (domain.VariableDefinition, error) {
	if err := r.validate.Struct(entry); err != nil {
		return domain.VariableDefinition{}, fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, ErrMsgInvalidEntry, err)
	}

	scope, err := domain.ParseScope(entry.Scope)
	if err != nil {
		return domain.VariableDefinition{}, err
	}
	cycle, err := domain.ParseCycle(entry.Cycle)
	if err != nil {
		return domain.VariableDefinition{}, err
	}

	def := domain.VariableDefinition{
		Key:          entry.Key,
		Scope:        scope,
		Cycle:        cycle,
		ResetActions: entry.ResetActions,
		Payload:      entry.Payload,
	}
	return def, r.check(def)
}

// check validates the parts of a definition that need collaborators
func (r *Registry) check(def domain.VariableDefinition) error {
	if def.Key == "" || len(def.Key) > MaxKeyLength || strings.ContainsAny(def.Key, " :") {
		return fmt.Errorf("%w: %s: bad key %q", domain.ErrConfiguration, ErrMsgInvalidEntry, def.Key)
	}
	if def.Scope != domain.ScopePlayer && def.Scope != domain.ScopeGlobal {
		return fmt.Errorf("%w: %q", domain.ErrInvalidScope, def.Scope)
	}
	if def.HasCycle() && r.cycles != nil {
		if err := r.cycles.Validate(def.Cycle); err != nil {
			return err
		}
	}
	if _, err := action.ParseSteps(def.ResetActions); err != nil {
		return err
	}
	return nil
}

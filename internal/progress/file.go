package progress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/logger"
)

// FileRepository keeps progress in a flat YAML file:
//
//	cycle.last-daily-reset: 1760572800000
//	cycle.variable.daily_kills.last-reset-time: 1760572800000
//
// Values are epoch milliseconds. Every write replaces the file atomically.
type FileRepository struct {
	path string

	mu      sync.Mutex
	entries map[string]int64
}

// NewFileRepository loads path, treating a missing file as empty
func NewFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{path: path, entries: make(map[string]int64)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgReadFile, err)
	}

	if err := yaml.Unmarshal(data, &r.entries); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgParseFile, err)
	}
	if r.entries == nil {
		r.entries = make(map[string]int64)
	}
	return r, nil
}

func (r *FileRepository) GetProgress(ctx context.Context, key string) (*time.Time, error) {
	fileKey, err := toFileKey(key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ms, ok := r.entries[fileKey]
	if !ok {
		return nil, nil
	}
	t := domain.FromEpochMillis(ms)
	return &t, nil
}

func (r *FileRepository) AdvanceProgress(ctx context.Context, key string, boundary time.Time) (bool, error) {
	fileKey, err := toFileKey(key)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ms := domain.ToEpochMillis(boundary)
	if current, ok := r.entries[fileKey]; ok && current >= ms {
		return false, nil
	}
	if err := r.writeLocked(fileKey, &ms); err != nil {
		return false, err
	}
	return true, nil
}

func (r *FileRepository) OverwriteProgress(ctx context.Context, key string, boundary time.Time) error {
	fileKey, err := toFileKey(key)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ms := domain.ToEpochMillis(boundary)
	return r.writeLocked(fileKey, &ms)
}

func (r *FileRepository) DeleteProgress(ctx context.Context, key string) error {
	fileKey, err := toFileKey(key)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[fileKey]; !ok {
		return nil
	}
	return r.writeLocked(fileKey, nil)
}

func (r *FileRepository) ListProgress(ctx context.Context) ([]domain.ProgressEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]domain.ProgressEntry, 0, len(r.entries))
	for fileKey, ms := range r.entries {
		key, ok := fromFileKey(fileKey)
		if !ok {
			logger.FromContext(ctx).Debug(LogMsgUnknownFileKey, "key", fileKey)
			continue
		}
		entries = append(entries, domain.ProgressEntry{Key: key, Boundary: domain.FromEpochMillis(ms)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// writeLocked applies one change and persists the whole mapping. A nil value deletes.
// The in-memory mapping only changes once the file is durable. Caller must hold mu.
func (r *FileRepository) writeLocked(fileKey string, ms *int64) error {
	next := make(map[string]int64, len(r.entries)+1)
	for k, v := range r.entries {
		next[k] = v
	}
	if ms == nil {
		delete(next, fileKey)
	} else {
		next[fileKey] = *ms
	}

	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWriteFile, err)
	}
	if err := atomicWriteFile(r.path, data); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWriteFile, err)
	}

	r.entries = next
	return nil
}

// atomicWriteFile writes data next to path, syncs it and renames it over path
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return fmt.Errorf("creating progress directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".progress-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := f.Name()

	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, filePermission); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	succeeded = true
	return nil
}

// toFileKey maps "global:<cycle>" and "variable:<key>" to the persisted layout
func toFileKey(key string) (string, error) {
	switch {
	case !domain.IsValidProgressKey(key):
	case strings.HasPrefix(key, domain.ProgressKeyGlobalPrefix):
		return FileKeyGlobalPrefix + strings.TrimPrefix(key, domain.ProgressKeyGlobalPrefix) + FileKeyGlobalSuffix, nil
	case strings.HasPrefix(key, domain.ProgressKeyVariablePrefix):
		return FileKeyVariablePrefix + strings.TrimPrefix(key, domain.ProgressKeyVariablePrefix) + FileKeyVariableSuffix, nil
	}
	return "", fmt.Errorf("%w: %s %q", domain.ErrInvalidInput, ErrMsgInvalidKey, key)
}

func fromFileKey(fileKey string) (string, bool) {
	if strings.HasPrefix(fileKey, FileKeyVariablePrefix) && strings.HasSuffix(fileKey, FileKeyVariableSuffix) {
		name := strings.TrimSuffix(strings.TrimPrefix(fileKey, FileKeyVariablePrefix), FileKeyVariableSuffix)
		if name != "" {
			return domain.VariableProgressKey(name), true
		}
	}
	if strings.HasPrefix(fileKey, FileKeyGlobalPrefix) && strings.HasSuffix(fileKey, FileKeyGlobalSuffix) {
		name := strings.TrimSuffix(strings.TrimPrefix(fileKey, FileKeyGlobalPrefix), FileKeyGlobalSuffix)
		if name != "" {
			return domain.ProgressKeyGlobalPrefix + name, true
		}
	}
	return "", false
}

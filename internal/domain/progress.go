package domain

import (
	"strings"
	"time"
)

// Progress key namespaces
const (
	ProgressKeyGlobalPrefix   = "global:"
	ProgressKeyVariablePrefix = "variable:"
)

// GlobalProgressKey is the fallback entry shared by every variable of a cycle
func GlobalProgressKey(c Cycle) string {
	return ProgressKeyGlobalPrefix + c.Name()
}

// VariableProgressKey is the entry owned by a single variable
func VariableProgressKey(variableKey string) string {
	return ProgressKeyVariablePrefix + variableKey
}

// IsValidProgressKey reports whether key belongs to one of the progress namespaces
func IsValidProgressKey(key string) bool {
	for _, prefix := range []string{ProgressKeyGlobalPrefix, ProgressKeyVariablePrefix} {
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return true
		}
	}
	return false
}

// ProgressEntry is the last fully processed boundary for a progress key
type ProgressEntry struct {
	Key      string    `json:"key"`
	Boundary time.Time `json:"boundary"`
}

// ToEpochMillis converts a boundary to its persisted form
func ToEpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromEpochMillis converts a persisted boundary back to a UTC instant
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

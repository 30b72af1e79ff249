package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/variable"
)

const testPlayerID = "6f1c1f7e-2f4b-4c5e-9d1a-2b1f0c3d4e5f"

func newVariableRouter(values ValueService) http.Handler {
	h := NewVariableHandler(values)
	r := chi.NewRouter()
	r.Get("/variables/{key}", h.HandleGetValue)
	r.Put("/variables/{key}", h.HandleSetValue)
	return r
}

func TestHandleGetValue(t *testing.T) {
	stamp := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	t.Run("player value", func(t *testing.T) {
		svc := &MockValueService{}
		svc.On("Get", mock.Anything, "daily_kills", testPlayerID).
			Return(&domain.VariableValue{Key: "daily_kills", PlayerID: testPlayerID, Value: "3", UpdatedAt: stamp}, nil)

		w := httptest.NewRecorder()
		newVariableRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/variables/daily_kills?player="+testPlayerID, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"value":"3"`)
		assert.Contains(t, w.Body.String(), `"player_id":"`+testPlayerID+`"`)
		svc.AssertExpectations(t)
	})

	t.Run("global value", func(t *testing.T) {
		svc := &MockValueService{}
		svc.On("Get", mock.Anything, "event_total", "").
			Return(&domain.VariableValue{Key: "event_total", Value: "9", UpdatedAt: stamp}, nil)

		w := httptest.NewRecorder()
		newVariableRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/variables/event_total", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "player_id")
	})

	t.Run("player must be a uuid", func(t *testing.T) {
		svc := &MockValueService{}

		w := httptest.NewRecorder()
		newVariableRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/variables/daily_kills?player=steve", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgInvalidPlayerID)
		svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})

	errCases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"unknown variable", domain.ErrDefinitionNotFound, http.StatusNotFound, ErrMsgDefinitionNotFound},
		{"reset value", domain.ErrValueNotFound, http.StatusNotFound, ErrMsgValueNotFoundError},
		{"scope mismatch", fmt.Errorf("%w: player required", domain.ErrInvalidInput), http.StatusBadRequest, ErrMsgInvalidInputError},
		{"store down", fmt.Errorf("%w: timeout", domain.ErrTransientStore), http.StatusServiceUnavailable, ErrMsgUnavailableError},
		{"unexpected", assert.AnError, http.StatusInternalServerError, ErrMsgGenericServerError},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockValueService{}
			svc.On("Get", mock.Anything, "daily_kills", "").Return(nil, tt.err)

			w := httptest.NewRecorder()
			newVariableRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/variables/daily_kills", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantMsg)
		})
	}
}

func TestHandleSetValue(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &MockValueService{}
		svc.On("Set", mock.Anything, "daily_kills", testPlayerID, "4").
			Return(&domain.VariableValue{Key: "daily_kills", PlayerID: testPlayerID, Value: "4"}, nil)

		body := `{"player":"` + testPlayerID + `","value":"4"}`
		w := httptest.NewRecorder()
		newVariableRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/variables/daily_kills", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"value":"4"`)
		svc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := &MockValueService{}

		w := httptest.NewRecorder()
		newVariableRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/variables/daily_kills", strings.NewReader("{")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgInvalidRequest)
	})

	t.Run("validation error", func(t *testing.T) {
		svc := &MockValueService{}

		w := httptest.NewRecorder()
		body := `{"player":"steve","value":"4"}`
		newVariableRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/variables/daily_kills", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"player":"Must be a UUID"`)
		svc.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleReload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		reg := &MockReloader{}
		reg.On("Reload", mock.Anything).Return(&variable.LoadResult{
			Loaded:  3,
			Cycled:  2,
			Skipped: map[string]string{"broken": "invalid cycle"},
		}, nil)

		w := httptest.NewRecorder()
		NewAdminVariablesHandler(reg).HandleReload(w, httptest.NewRequest(http.MethodPost, "/admin/variables/reload", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"loaded":3`)
		assert.Contains(t, w.Body.String(), `"broken":"invalid cycle"`)
	})

	t.Run("unreadable file keeps previous definitions", func(t *testing.T) {
		reg := &MockReloader{}
		reg.On("Reload", mock.Anything).Return(nil, fmt.Errorf("%w: bad json", domain.ErrConfiguration))

		w := httptest.NewRecorder()
		NewAdminVariablesHandler(reg).HandleReload(w, httptest.NewRequest(http.MethodPost, "/admin/variables/reload", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgConfigurationError)
	})
}

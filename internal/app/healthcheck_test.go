package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	a := &App{logger: newLogger("error", "text", io.Discard)}
	a.cycles.Store(2)

	rec := httptest.NewRecorder()
	a.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\ncycles: 2\n", rec.Body.String())
}

func TestNewLogger(t *testing.T) {
	assert.True(t, newLogger("debug", "json", io.Discard).Enabled(t.Context(), -4))
	assert.False(t, newLogger("bogus", "text", io.Discard).Enabled(t.Context(), -4))
	assert.False(t, newLogger("warn", "text", io.Discard).Enabled(t.Context(), 0))
}

package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "channelling/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
		assert.EqualValues(t, 500, body["status"])
	})

	t.Run("uncoded error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("pq: connection refused"))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		require.Equal(t, http.StatusBadRequest, w.Code)
		var body ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "bad_request", body.Error)
		assert.Equal(t, "invalid input", body.Description)
		assert.Equal(t, fixed, body.Timestamp)
		assert.Equal(t, http.StatusBadRequest, body.Status)
	})

	t.Run("validation carries field messages", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Validation("validation failed", "code: is required", "description: is required"))

		require.Equal(t, http.StatusBadRequest, w.Code)
		var body ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "validation_failed", body.Error)
		assert.Equal(t, []string{"code: is required", "description: is required"}, body.Errors)
	})

	t.Run("wrapped coded error keeps its code", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, fmt.Errorf("update: %w", dErrors.New(dErrors.CodeStaleWrite, "stale")))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeNotFound:        http.StatusNotFound,
		dErrors.CodeDuplicateKey:    http.StatusUnprocessableEntity,
		dErrors.CodeStaleWrite:      http.StatusUnprocessableEntity,
		dErrors.CodeUnauthenticated: http.StatusUnauthorized,
		dErrors.CodeValidation:      http.StatusBadRequest,
		dErrors.CodeBadRequest:      http.StatusBadRequest,
		dErrors.CodeInternal:        http.StatusInternalServerError,
		dErrors.Code("mystery"):     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusFor(code), string(code))
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Code string `json:"code"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"LK"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "LK", dst.Code)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":`))
	err := DecodeJSON(r, &dst)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))

	r = httptest.NewRequest(http.MethodPost, "/", nil)
	err = DecodeJSON(r, &dst)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

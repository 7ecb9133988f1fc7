package httputil

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	err := WriteJSON(w, 200, map[string]string{"key": "value"})
	require.NoError(t, err)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "value", body["key"])
}

func TestWriteErrorMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteErrorMessage(w, 400, "something went wrong")

	assert.Equal(t, 400, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "something went wrong", body["error"])
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w *httptest.ResponseRecorder)
		status int
	}{
		{name: "bad request", write: func(w *httptest.ResponseRecorder) { WriteBadRequest(w, "bad") }, status: 400},
		{name: "unauthorized", write: func(w *httptest.ResponseRecorder) { WriteUnauthorized(w, "no") }, status: 401},
		{name: "forbidden", write: func(w *httptest.ResponseRecorder) { WriteForbidden(w, "no") }, status: 403},
		{name: "not found", write: func(w *httptest.ResponseRecorder) { WriteNotFoundError(w, "gone") }, status: 404},
		{name: "conflict", write: func(w *httptest.ResponseRecorder) { WriteConflict(w, "dup") }, status: 409},
		{name: "internal", write: func(w *httptest.ResponseRecorder) { WriteInternalError(w, errors.New("boom")) }, status: 500},
		{name: "no content", write: func(w *httptest.ResponseRecorder) { WriteNoContent(w) }, status: 204},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteCreated(w, map[string]int{"id": 1}))
	assert.Equal(t, 201, w.Code)
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akorchev/notesafe/internal/errs"
)

func decodePayload(t *testing.T, rec *httptest.ResponseRecorder) payload {
	t.Helper()
	var p payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	writeData(rec, http.StatusCreated, map[string]string{"id": "x"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	p := decodePayload(t, rec)
	require.True(t, p.Success)
}

func TestWriteError_Validation(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errs.Validation("validation failed", []errs.FieldIssue{{Field: "title", Message: "must not be empty"}}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodePayload(t, rec)
	require.False(t, p.Success)
	require.Equal(t, "VALIDATION_ERROR", p.Code)
	require.NotNil(t, p.Issues)
}

func TestWriteError_SentinelMapping(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errs.ErrNotFound)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", decodePayload(t, rec).Code)

	rec = httptest.NewRecorder()
	writeError(rec, errs.ErrAlreadyExists)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestWriteError_MasksNonOperational(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection reset by peer"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	p := decodePayload(t, rec)
	require.Equal(t, "INTERNAL_SERVER_ERROR", p.Code)
	require.Equal(t, "internal server error", p.Message)
	require.NotContains(t, rec.Body.String(), "connection reset")
}

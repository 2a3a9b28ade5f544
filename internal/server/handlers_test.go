package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/csvclean/internal/config"
	"github.com/inferloop/csvclean/pkg/errors"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Metrics.Enabled = false
	// No key configured: the report path degrades to the local fallback.
	cfg.Report.APIKey = ""

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv, err := NewServer(cfg, logger)
	require.NoError(t, err)
	return srv
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestHandleClean(t *testing.T) {
	srv := testServer(t)

	csv := "name,age\nJohn,30\n  JOHN  ,30\nJane,28\n"
	body, contentType := multipartUpload(t, "data.csv", csv)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clean", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.GetRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CleanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Summary.OriginalRows)
	assert.Equal(t, 2, resp.Summary.CleanedRows)
	assert.Equal(t, 1, resp.Summary.DuplicatesRemoved)
	assert.NotEmpty(t, resp.Report)

	cleaned, err := base64.StdEncoding.DecodeString(resp.CleanedCSVBase64)
	require.NoError(t, err)
	assert.Equal(t, "name,age\njohn,30\njane,28\n", string(cleaned))

	script, err := base64.StdEncoding.DecodeString(resp.CleaningScriptBase64)
	require.NoError(t, err)
	assert.Contains(t, string(script), "def clean_data(")

	require.NotEmpty(t, resp.Steps)
	assert.Equal(t, "load_csv", resp.Steps[0].Name)
}

func TestHandleCleanRejectsNonCSV(t *testing.T) {
	srv := testServer(t)

	body, contentType := multipartUpload(t, "data.txt", "name\nvalue\n")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clean", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.GetRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeInvalidFormat, resp.Error.Code)
}

func TestHandleCleanMissingFileField(t *testing.T) {
	srv := testServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clean", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	srv.GetRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeMissingField, resp.Error.Code)
}

func TestHandleCleanEmptyCSV(t *testing.T) {
	srv := testServer(t)

	body, contentType := multipartUpload(t, "data.csv", "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clean", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.GetRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeEmptyInput, resp.Error.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestHandleVersion(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp VersionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Name)
	assert.NotEmpty(t, resp.Version)
}

func TestRequestIDHeader(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDHeaderPreserved(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "given-id")
	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, req)

	assert.Equal(t, "given-id", rec.Header().Get("X-Request-ID"))
}

package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/csvclean/internal/cleaning"
	"github.com/inferloop/csvclean/internal/dataset"
	"github.com/inferloop/csvclean/internal/report"
	"github.com/inferloop/csvclean/internal/script"
	"github.com/inferloop/csvclean/pkg/constants"
	"github.com/inferloop/csvclean/pkg/errors"
)

// multipartMemoryLimit caps the in-memory portion of a parsed upload;
// larger parts spill to temp files.
const multipartMemoryLimit = 32 << 20

// CleanResponse is the full payload returned for a successful cleaning
// run. The CSV and replay script are base64 encoded so the JSON payload
// stays safe to embed anywhere.
type CleanResponse struct {
	Success              bool             `json:"success"`
	Message              string           `json:"message"`
	CleanedCSVBase64     string           `json:"cleaned_csv_base64"`
	CleaningScriptBase64 string           `json:"cleaning_script_base64"`
	Report               string           `json:"report"`
	Summary              cleaning.Summary `json:"summary"`
	Steps                []cleaning.Step  `json:"steps"`
}

// VersionResponse is the payload of the version endpoint.
type VersionResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// handleClean accepts a multipart CSV upload, runs the cleaning
// pipeline, and returns the cleaned data with its artifacts.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		s.writeError(w, r, errors.NewValidationError(errors.CodeInvalidInput,
			"request must be multipart/form-data with a \"file\" field"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, errors.NewValidationError(errors.CodeMissingField,
			"missing \"file\" upload field"))
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		s.writeError(w, r, errors.NewValidationError(errors.CodeInvalidFormat,
			"only .csv files are supported"))
		return
	}

	table, err := dataset.ReadCSV(file)
	if err != nil {
		s.metrics.ObserveClean("load_error", time.Since(start), nil)
		s.writeError(w, r, err)
		return
	}
	originalStats := report.BuildTableStats(table, s.pipeline.Classifier())

	result, err := s.pipeline.Clean(r.Context(), table)
	if err != nil {
		s.metrics.ObserveClean("error", time.Since(start), nil)
		s.writeError(w, r, err)
		return
	}
	result.Steps = append([]cleaning.Step{{
		Name:        "load_csv",
		Description: fmt.Sprintf("Loaded CSV with %d rows and %d columns", table.RowCount(), table.ColumnCount()),
	}}, result.Steps...)

	var csvBuf bytes.Buffer
	if err := dataset.WriteCSV(&csvBuf, result.Table); err != nil {
		s.metrics.ObserveClean("error", time.Since(start), nil)
		s.writeError(w, r, errors.WrapError(err, errors.ErrorTypeInternal,
			errors.CodeInternalError, "failed to encode cleaned CSV"))
		return
	}

	replayScript, err := script.Emit(result.Steps, result.Table.ColumnNames(), s.pipeline.Config())
	if err != nil {
		s.metrics.ObserveClean("error", time.Since(start), nil)
		s.writeError(w, r, errors.WrapError(err, errors.ErrorTypeInternal,
			errors.CodeInternalError, "failed to render cleaning script"))
		return
	}

	narrative := s.generator.Generate(r.Context(), report.Input{
		Original: originalStats,
		Cleaned:  report.BuildTableStats(result.Table, s.pipeline.Classifier()),
		Steps:    result.Steps,
		Summary:  result.Summary,
	})

	s.metrics.ObserveClean("success", time.Since(start), &result.Summary)

	s.logger.WithFields(logrus.Fields{
		"filename":    header.Filename,
		"rows_in":     result.Summary.OriginalRows,
		"rows_out":    result.Summary.CleanedRows,
		"duration_ms": time.Since(start).Milliseconds(),
		"request_id":  getRequestID(r),
	}).Info("Cleaning request completed")

	s.writeJSON(w, http.StatusOK, CleanResponse{
		Success:              true,
		Message:              "Data cleaned successfully",
		CleanedCSVBase64:     base64.StdEncoding.EncodeToString(csvBuf.Bytes()),
		CleaningScriptBase64: base64.StdEncoding.EncodeToString([]byte(replayScript)),
		Report:               narrative,
		Summary:              result.Summary,
		Steps:                result.Steps,
	})
}

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleVersion reports build information.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, VersionResponse{
		Name:    constants.AppName,
		Version: constants.AppVersion,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleIndex describes the service and its endpoints.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":        constants.AppName,
		"description": constants.AppDescription,
		"version":     constants.AppVersion,
		"endpoints": map[string]string{
			"clean":   "POST " + constants.APIPrefix + "/clean",
			"health":  "GET /health",
			"version": "GET /version",
		},
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, errors.NewValidationError(errors.CodeInvalidInput,
		"unknown endpoint: "+r.URL.Path))
}

// writeJSON writes v as a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps an error to its HTTP status and writes the standard
// error envelope.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.WrapError(err, errors.ErrorTypeInternal,
			errors.CodeInternalError, "internal server error")
	}

	s.logger.WithFields(logrus.Fields{
		"code":       appErr.Code,
		"type":       appErr.Type,
		"path":       r.URL.Path,
		"request_id": getRequestID(r),
		"error":      appErr.Error(),
	}).Warn("Request failed")

	s.writeJSON(w, appErr.HTTPStatus, errors.ErrorResponse{
		Error:     appErr,
		RequestID: getRequestID(r),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
	})
}

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sheetline/sheetline/internal/core"
	"github.com/sheetline/sheetline/internal/logging"
	"github.com/sheetline/sheetline/internal/sheet"
)

// defaultSampleRows is the template sample row count when the client
// does not specify one.
const defaultSampleRows = 5

// handleLoad ingests a spreadsheet: provisions the target table and loads
// every row inside a single transaction.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "targetID")

	ds, fileName, raw, err := s.readUpload(w, r)
	if err != nil {
		return // readUpload already responded
	}

	logger := logging.WithFields(r.Context(),
		"target_id", targetID,
		"file_name", fileName,
	)

	if s.blobs != nil {
		ref, err := s.blobs.Save(fileName, bytes.NewReader(raw))
		if err != nil {
			logger.Warn("upload retention failed", "error", err)
		} else {
			logger.Info("upload retained", "blob_ref", ref)
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Ingest.Timeout)
	defer cancel()

	result, err := s.service.ProvisionAndLoad(ctx, targetID, ds, fileName)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logger.Info("dataset loaded", "table", result.TableName, "rows", result.RowsLoaded)
	writeJSON(w, http.StatusOK, result)
}

// handleMappings suggests header-to-field mappings for an uploaded file.
func (s *Server) handleMappings(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "targetID")

	ds, _, _, err := s.readUpload(w, r)
	if err != nil {
		return
	}

	mappings, err := s.service.SuggestMappings(r.Context(), targetID, ds)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"mappings": mappings})
}

// handleValidate checks an uploaded file against the target's field set.
// The mode query parameter selects structural, rows, or full validation.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "targetID")

	mode, ok := parseMode(r.URL.Query().Get("mode"))
	if !ok {
		badRequest(w, "mode must be structural, rows, or full")
		return
	}

	ds, _, _, err := s.readUpload(w, r)
	if err != nil {
		return
	}

	result, err := s.service.Validate(r.Context(), targetID, ds, mode)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSummary computes dataset statistics without touching storage.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ds, _, _, err := s.readUpload(w, r)
	if err != nil {
		return
	}

	writeJSON(w, http.StatusOK, s.service.Summarize(ds))
}

// handleTemplate generates a downloadable template for the target's field
// set. Query parameters: rows (sample row count), format (csv or xlsx).
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "targetID")

	rows := parseIntParam(r, "rows", defaultSampleRows)
	if rows > s.cfg.Ingest.TemplateRowLimit {
		rows = s.cfg.Ingest.TemplateRowLimit
	}

	format := sheet.FormatCSV
	if r.URL.Query().Get("format") == string(sheet.FormatXLSX) {
		format = sheet.FormatXLSX
	}

	data, err := s.service.GenerateTemplate(r.Context(), targetID, rows, sheet.WriterFor(format))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", sheet.ContentType(format))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "template_"+targetID+"."+string(format)))
	w.Write(data)
}

// handleGetFields returns the declared field set for a target.
func (s *Server) handleGetFields(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "targetID")

	fields, err := s.fields.FieldsForTarget(r.Context(), targetID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"fields": fields})
}

// handlePutFields replaces the declared field set for a target.
func (s *Server) handlePutFields(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "targetID")

	var body struct {
		Fields []core.SemanticField `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if len(body.Fields) == 0 {
		badRequest(w, "field set must not be empty")
		return
	}

	if err := s.fields.SaveFields(r.Context(), targetID, body.Fields); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"saved": len(body.Fields)})
}

// handleRuns returns recent ingestion runs for a target, newest first.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "targetID")

	runs, err := s.runs.ListForTarget(r.Context(), targetID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// readUpload extracts and parses the multipart "file" field. It writes the
// error response itself so handlers can return on failure without duplicating
// the response logic. The raw bytes are returned for optional retention.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*core.Dataset, string, []byte, error) {
	maxSize := s.cfg.Ingest.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		badRequest(w, "file too large or invalid form")
		return nil, "", nil, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "no file provided")
		return nil, "", nil, err
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, core.ParseErr("read upload", err))
		return nil, "", nil, err
	}

	ds, err := sheet.Parse(bytes.NewReader(raw), header.Filename)
	if err != nil {
		s.respondError(w, r, err)
		return nil, "", nil, err
	}

	return ds, header.Filename, raw, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// parseMode resolves the validation mode parameter. An empty value means full.
func parseMode(val string) (core.ValidationMode, bool) {
	switch core.ValidationMode(val) {
	case core.ModeStructural, core.ModeRows, core.ModeFull:
		return core.ValidationMode(val), true
	case "":
		return core.ModeFull, true
	default:
		return "", false
	}
}

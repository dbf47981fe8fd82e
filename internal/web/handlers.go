package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mquintana/itemcheck/internal/export"
	"github.com/mquintana/itemcheck/internal/logging"
	"github.com/mquintana/itemcheck/internal/session"
	"github.com/mquintana/itemcheck/internal/validation"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loginRequest is the credential payload for POST /api/auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the issued bearer token.
type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleLogin exchanges credentials for a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "INVALID_BODY", "request body must be JSON with username and password")
		return
	}

	token, expiry, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiry})
}

// handleUpload accepts a multipart spreadsheet upload and creates a session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		respondBadRequest(w, "INVALID_UPLOAD", "expected multipart form with a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondBadRequest(w, "INVALID_UPLOAD", "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.Upload.MaxFileSize+1))
	if err != nil {
		respondBadRequest(w, "INVALID_UPLOAD", "could not read uploaded file")
		return
	}

	sess, err := s.service.CreateFromUpload(r.Context(), header.Filename, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("file uploaded",
		"session_id", sess.ID,
		"file_name", sess.FileName,
		"rows", sess.RowCount,
		"columns", len(sess.Columns),
	)

	writeJSON(w, http.StatusCreated, sess.Summary())
}

// handleListSessions lists stored sessions, newest first.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	infos, err := s.service.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if infos == nil {
		infos = []session.Info{}
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleGetSession returns a single session summary.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	sess, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Summary())
}

// handleGetColumns returns the column headers of an uploaded file so the
// client can build the categorization form.
func (s *Server) handleGetColumns(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	sess, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file_name": sess.FileName,
		"columns":   sess.Columns,
	})
}

// handleDeleteSession removes a session and its stored data.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	if err := s.service.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetCategorization stores the variable role assignment.
func (s *Server) handleSetCategorization(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	var schema validation.Schema
	if err := json.NewDecoder(r.Body).Decode(&schema); err != nil {
		respondBadRequest(w, "INVALID_BODY", "request body must be a JSON categorization")
		return
	}

	sess, err := s.service.SetCategorization(r.Context(), id, &schema)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("categorization updated", "session_id", id)
	writeJSON(w, http.StatusOK, sess.Summary())
}

// handlePreValidate runs only the identification completeness check.
func (s *Server) handlePreValidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	errs, err := s.service.PreValidate(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if errs == nil {
		errs = []validation.Error{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"can_proceed": len(errs) == 0,
		"errors":      errs,
	})
}

// handleRunValidation executes the full validation pipeline.
func (s *Server) handleRunValidation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	logger := logging.WithFields(r.Context(), "session_id", id)
	logger.Info("validation started")

	outcome, err := s.service.Run(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	switch outcome.Kind {
	case validation.OutcomeOK:
		logger.Info("validation completed", "status", outcome.Report.Summary.ValidationStatus)
		writeJSON(w, http.StatusOK, outcome)
	case validation.OutcomePreValidationFailed:
		logger.Info("validation blocked by identification gaps", "errors", len(outcome.Errors))
		writeJSON(w, http.StatusUnprocessableEntity, outcome)
	default:
		logger.Error("validation run failed", "errors", len(outcome.Errors))
		writeJSON(w, http.StatusInternalServerError, outcome)
	}
}

// handleGetReport returns the stored report of the last successful run.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	report, err := s.service.Report(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleExportExcel streams the annotated validation workbook.
func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.reportSession(w, r)
	if !ok {
		return
	}

	buf, err := export.ReportWorkbook(sess.Data, sess.Report)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	serveDownload(w, buf.Bytes(), "reporte_validacion.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// handleExportNormalized streams the normalized-column workbook.
func (s *Server) handleExportNormalized(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	sess, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !sess.HasCategorization() {
		s.respondError(w, r, session.ErrNoCategorization)
		return
	}

	buf, err := export.NormalizedWorkbook(sess.Data, sess.Schema)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	serveDownload(w, buf.Bytes(), "datos_normalizados.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// handleExportPDF streams the PDF summary of the last report.
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.reportSession(w, r)
	if !ok {
		return
	}

	buf, err := export.SummaryPDF(sess.FileName, sess.Report)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	serveDownload(w, buf.Bytes(), "resumen_validacion.pdf", "application/pdf")
}

// sessionID parses the {sessionID} route parameter.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondBadRequest(w, "INVALID_SESSION_ID", "session ID must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// reportSession loads the session and requires a completed report.
func (s *Server) reportSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return nil, false
	}

	sess, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	if !sess.HasReport() {
		s.respondError(w, r, session.ErrNoReport)
		return nil, false
	}
	return sess, true
}

// serveDownload writes a file attachment response.
func serveDownload(w http.ResponseWriter, data []byte, fileName, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Write(data)
}

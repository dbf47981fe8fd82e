package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mquintana/itemcheck/internal/auth"
	"github.com/mquintana/itemcheck/internal/config"
	"github.com/mquintana/itemcheck/internal/session"
	"github.com/mquintana/itemcheck/internal/validation"
)

// fakeStore is an in-memory session.Store for handler tests.
type fakeStore struct {
	sessions map[uuid.UUID]*session.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[uuid.UUID]*session.Session)}
}

func (f *fakeStore) Create(_ context.Context, s *session.Session) error {
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeStore) Get(_ context.Context, id uuid.UUID) (*session.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) SetSchema(_ context.Context, id uuid.UUID, schema *validation.Schema, at time.Time) error {
	s, ok := f.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	s.Schema = schema
	s.Report = nil
	s.UpdatedAt = at
	return nil
}

func (f *fakeStore) SetReport(_ context.Context, id uuid.UUID, report *validation.Report, at time.Time) error {
	s, ok := f.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	s.Report = report
	s.UpdatedAt = at
	return nil
}

func (f *fakeStore) List(_ context.Context) ([]session.Info, error) {
	infos := make([]session.Info, 0, len(f.sessions))
	for _, s := range f.sessions {
		infos = append(infos, s.Summary())
	}
	return infos, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.sessions[id]; !ok {
		return session.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeStore) DeleteExpired(_ context.Context, cutoff time.Time, limit int) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: time.Minute},
		Upload: config.UploadConfig{MaxFileSize: 1 << 20, MaxRows: 10000},
		Rate:   config.RateLimitConfig{Enabled: false},
		Security: config.SecurityConfig{
			EnableCSP: true,
		},
	}
}

// newTestServer builds a Server with in-memory storage and a known login.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	authn := auth.New("0123456789abcdef0123456789abcdef", time.Hour, "admin", string(hash))

	svc := session.NewService(newFakeStore(), validation.NewEngine(),
		session.Limits{MaxFileSize: 1 << 20, MaxRows: 10000})

	return NewServer(svc, authn, testConfig())
}

// login returns a valid bearer token from the test server.
func login(t *testing.T, srv *Server) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "hunter2"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// uploadCSV posts a multipart CSV upload and returns the new session ID.
func uploadCSV(t *testing.T, srv *Server, token, csv string) uuid.UUID {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "items.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var info session.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	return info.ID
}

// authedJSON performs an authenticated request with an optional JSON body.
func authedJSON(t *testing.T, srv *Server, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

const sampleCSV = "ID_Item,Forma,Area,Clave\n1,A,Mat,A\n2,A,Mat,B\n3,B,Len,C\n"

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Code)
}

func TestAPI_RequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadFlow(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	id := uploadCSV(t, srv, token, sampleCSV)

	rec := authedJSON(t, srv, token, http.MethodGet, "/api/sessions/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info session.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "items.csv", info.FileName)
	assert.Equal(t, 3, info.RowCount)
	assert.False(t, info.HasSchema)

	rec = authedJSON(t, srv, token, http.MethodGet, "/api/files/"+id.String()+"/columns", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cols struct {
		FileName string   `json:"file_name"`
		Columns  []string `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cols))
	assert.Equal(t, []string{"ID_Item", "Forma", "Area", "Clave"}, cols.Columns)
}

func TestUpload_BadFile(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "items.txt")
	require.NoError(t, err)
	fw.Write([]byte("not a spreadsheet"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UPLOAD_REJECTED", resp.Code)
}

func TestValidationFlow(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	id := uploadCSV(t, srv, token, sampleCSV)

	// Run before categorizing: conflict.
	rec := authedJSON(t, srv, token, http.MethodPost, "/api/validation/"+id.String()+"/run", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Assign roles.
	schema := map[string]any{
		"instrument_vars": []string{"Forma"},
		"item_id_vars":    []string{"ID_Item"},
		"metadata_vars":   []string{"Clave"},
	}
	rec = authedJSON(t, srv, token, http.MethodPut, "/api/sessions/"+id.String()+"/categorization", schema)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Prevalidate: clean identification columns.
	rec = authedJSON(t, srv, token, http.MethodPost, "/api/validation/"+id.String()+"/prevalidate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pre struct {
		CanProceed bool `json:"can_proceed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pre))
	assert.True(t, pre.CanProceed)

	// Full run.
	rec = authedJSON(t, srv, token, http.MethodPost, "/api/validation/"+id.String()+"/run", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var outcome validation.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Equal(t, validation.OutcomeOK, outcome.Kind)

	// Report is now retrievable.
	rec = authedJSON(t, srv, token, http.MethodGet, "/api/validation/"+id.String()+"/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report validation.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 3, report.Summary.TotalItems)
	assert.Equal(t, 2, report.Summary.TotalInstruments)
}

func TestValidationRun_PreValidationFailure(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	// Second row has no ID.
	id := uploadCSV(t, srv, token, "ID_Item,Forma\n1,A\n,A\n")

	schema := map[string]any{
		"instrument_vars": []string{"Forma"},
		"item_id_vars":    []string{"ID_Item"},
	}
	rec := authedJSON(t, srv, token, http.MethodPut, "/api/sessions/"+id.String()+"/categorization", schema)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = authedJSON(t, srv, token, http.MethodPost, "/api/validation/"+id.String()+"/run", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var outcome validation.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Equal(t, validation.OutcomePreValidationFailed, outcome.Kind)
	require.NotEmpty(t, outcome.Errors)
	assert.Equal(t, validation.CodeMissingValuesInIdentification, outcome.Errors[0].Code)
}

func TestSetCategorization_Invalid(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	id := uploadCSV(t, srv, token, sampleCSV)

	// References a column the dataset does not have.
	schema := map[string]any{
		"item_id_vars": []string{"No_Existe"},
	}
	rec := authedJSON(t, srv, token, http.MethodPut, "/api/sessions/"+id.String()+"/categorization", schema)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_CATEGORIZATION", resp.Code)
}

func TestExportEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	id := uploadCSV(t, srv, token, sampleCSV)

	// Exports require a completed run.
	rec := authedJSON(t, srv, token, http.MethodGet, "/api/export/"+id.String()+"/excel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	schema := map[string]any{
		"instrument_vars": []string{"Forma"},
		"item_id_vars":    []string{"ID_Item"},
	}
	rec = authedJSON(t, srv, token, http.MethodPut, "/api/sessions/"+id.String()+"/categorization", schema)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = authedJSON(t, srv, token, http.MethodPost, "/api/validation/"+id.String()+"/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = authedJSON(t, srv, token, http.MethodGet, "/api/export/"+id.String()+"/excel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reporte_validacion.xlsx")

	rec = authedJSON(t, srv, token, http.MethodGet, "/api/export/"+id.String()+"/normalized", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = authedJSON(t, srv, token, http.MethodGet, "/api/export/"+id.String()+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	id := uploadCSV(t, srv, token, sampleCSV)

	rec := authedJSON(t, srv, token, http.MethodDelete, "/api/sessions/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = authedJSON(t, srv, token, http.MethodGet, "/api/sessions/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBadSessionID(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	rec := authedJSON(t, srv, token, http.MethodGet, "/api/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_SESSION_ID", resp.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	assert.True(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))

	// Different IP has its own bucket.
	assert.True(t, rl.allow("5.6.7.8"))
}

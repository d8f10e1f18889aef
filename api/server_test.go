package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"rightswatch/config"
	"rightswatch/core/monitoring"
	"rightswatch/core/rbac"
	"rightswatch/core/store"
	"rightswatch/core/uploads"
	"rightswatch/core/utils"
)

func newTestServer(t *testing.T, mutate ...func(*config.AppConfig)) *Server {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.AppConfig{
		DBDriver: "sqlite",
		DBURL:    filepath.Join(dir, "test.db"),
		HTTP:     config.HTTPConfig{MaxBodyBytes: 1 << 20, CORSOrigins: []string{"http://localhost:3000"}},
		Uploads:  config.UploadsConfig{Dir: filepath.Join(dir, "uploads"), MaxBytes: 1 << 20},
	}
	for _, m := range mutate {
		m(cfg)
	}
	logger := utils.NewLoggerTo(io.Discard, "error", "text")
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	policy, err := rbac.NewPolicy(rbac.DefaultGrants())
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	return NewServer(cfg, ServerDeps{
		Cases:         store.NewCasesStore(db),
		StatusHistory: store.NewStatusHistoryStore(db),
		Reports:       store.NewReportsStore(db),
		Analytics:     store.NewAnalyticsStore(db),
		Individuals:   store.NewIndividualsStore(db),
		Uploads:       uploads.NewStorage(cfg.Uploads.Dir, cfg.Uploads.MaxBytes),
		Policy:        policy,
		Metrics:       monitoring.NewMetrics(),
		Health:        db.PingContext,
	}, logger)
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func caseBody(caseID, violations, coords string) string {
	return `{
		"case_id": "` + caseID + `",
		"title": "Detention of journalists",
		"description": "Three reporters held without charge",
		"violation_types": "` + violations + `",
		"location": {"country": "Freedonia", "region": "North", "coordinates": ` + coords + `},
		"date_occurred": "2024-03-01T09:30:00Z",
		"date_reported": "2024-03-02",
		"evidence": [{"type": "photo", "url": "/uploads/a.jpg"}],
		"created_by": "analyst-1"
	}`
}

func reportBody(reportID, city, violations string) string {
	return `{
		"report_id": "` + reportID + `",
		"reporter_type": "witness",
		"anonymous": true,
		"incident_details": {
			"date": "2024-03-01",
			"location": {"country": "Freedonia", "city": "` + city + `", "coordinates": [10.5, 20.25]},
			"description": "Crowd dispersed with force",
			"violation_types": ` + violations + `
		}
	}`
}

func TestCaseLifecycle(t *testing.T) {
	s := newTestServer(t)

	rr := do(t, s, http.MethodPost, "/cases/", caseBody("HRC-100", "detention, torture", "[30.1, 50.4]"))
	if rr.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	created := decode[map[string]string](t, rr)
	if created["case_id"] != "HRC-100" || created["id"] == "" {
		t.Fatalf("unexpected create response %v", created)
	}

	rr = do(t, s, http.MethodGet, "/cases/HRC-100", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get: %d", rr.Code)
	}
	got := decode[map[string]any](t, rr)
	if got["status"] != "new" || got["id"] != created["id"] {
		t.Fatalf("unexpected case %v", got)
	}
	if vt, _ := got["violation_types"].([]any); len(vt) != 2 || vt[0] != "detention" {
		t.Fatalf("violation types not normalized: %v", got["violation_types"])
	}

	rr = do(t, s, http.MethodPatch, "/cases/HRC-100?status=under_investigation", "")
	if rr.Code != http.StatusOK || decode[map[string]string](t, rr)["msg"] != "Case status updated and tracked." {
		t.Fatalf("patch: %d %s", rr.Code, rr.Body.String())
	}
	// Same value again is accepted and still tracked.
	rr = do(t, s, http.MethodPatch, "/cases/HRC-100", `{"status": "under_investigation"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("repeat patch: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, s, http.MethodGet, "/cases/HRC-100/history", "")
	history := decode[[]map[string]any](t, rr)
	if len(history) != 2 || history[0]["status"] != "under_investigation" {
		t.Fatalf("unexpected history %v", history)
	}

	rr = do(t, s, http.MethodPut, "/cases/HRC-100", caseBody("OTHER", "torture", "[1, 2]"))
	if rr.Code != http.StatusOK {
		t.Fatalf("put: %d %s", rr.Code, rr.Body.String())
	}
	if decode[map[string]string](t, rr)["case_id"] != "HRC-100" {
		t.Fatalf("path key must win on replace")
	}
	rr = do(t, s, http.MethodGet, "/cases/HRC-100/history", "")
	if n := len(decode[[]map[string]any](t, rr)); n != 2 {
		t.Fatalf("replace must not add history, got %d entries", n)
	}

	rr = do(t, s, http.MethodDelete, "/cases/HRC-100", "")
	if rr.Code != http.StatusOK || decode[map[string]string](t, rr)["msg"] != "Case archived" {
		t.Fatalf("delete: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, s, http.MethodDelete, "/cases/HRC-100", "")
	if rr.Code != http.StatusNotFound || decode[map[string]string](t, rr)["detail"] != "Case not found" {
		t.Fatalf("second delete: %d %s", rr.Code, rr.Body.String())
	}
}

func TestCreateCaseConflict(t *testing.T) {
	s := newTestServer(t)
	if rr := do(t, s, http.MethodPost, "/cases/", caseBody("HRC-1", "a", "[1, 2]")); rr.Code != http.StatusOK {
		t.Fatalf("create: %d", rr.Code)
	}
	rr := do(t, s, http.MethodPost, "/cases/", caseBody("HRC-1", "b", "[1, 2]"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestCreateCaseRejectsCoordinateArity(t *testing.T) {
	s := newTestServer(t)
	rr := do(t, s, http.MethodPost, "/cases/", caseBody("HRC-2", "a", "[1, 2, 3]"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if detail := decode[map[string]string](t, rr)["detail"]; !strings.Contains(detail, "[longitude, latitude]") {
		t.Fatalf("detail should name the expected shape: %q", detail)
	}
}

func TestCreateCaseAcceptsLegacyPoint(t *testing.T) {
	s := newTestServer(t)
	rr := do(t, s, http.MethodPost, "/cases/", caseBody("HRC-3", "a", `{"type": "Point", "coordinates": [5, 6]}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	got := decode[map[string]any](t, do(t, s, http.MethodGet, "/cases/HRC-3", ""))
	loc := got["location"].(map[string]any)
	coords := loc["coordinates"].([]any)
	if len(coords) != 2 || coords[0].(float64) != 5 {
		t.Fatalf("expected unwrapped coordinates, got %v", coords)
	}
}

func TestPatchCaseStatusErrors(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/cases/", caseBody("HRC-4", "a", "[1, 2]"))

	if rr := do(t, s, http.MethodPatch, "/cases/HRC-4?status=closed", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: expected 400, got %d", rr.Code)
	}
	if rr := do(t, s, http.MethodPatch, "/cases/HRC-4", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing status: expected 400, got %d", rr.Code)
	}
	rr := do(t, s, http.MethodPatch, "/cases/missing?status=resolved", "")
	if rr.Code != http.StatusNotFound || decode[map[string]string](t, rr)["detail"] != "Case not updated" {
		t.Fatalf("missing case: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, s, http.MethodGet, "/cases/HRC-4/history", "")
	if n := len(decode[[]map[string]any](t, rr)); n != 0 {
		t.Fatalf("failed updates must not be tracked, got %d entries", n)
	}
}

func TestListCasesFilters(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/cases/", caseBody("A", "torture", "[1, 2]"))
	do(t, s, http.MethodPost, "/cases/", caseBody("B", "torture, detention", "[1, 2]"))
	do(t, s, http.MethodPatch, "/cases/B?status=resolved", "")

	all := decode[[]map[string]any](t, do(t, s, http.MethodGet, "/cases/", ""))
	if len(all) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(all))
	}
	got := decode[[]map[string]any](t, do(t, s, http.MethodGet, "/cases/?violation=detention&status=resolved&country=Freedonia", ""))
	if len(got) != 1 || got[0]["case_id"] != "B" {
		t.Fatalf("unexpected filtered list %v", got)
	}
	got = decode[[]map[string]any](t, do(t, s, http.MethodGet, "/cases/?violation=detention&status=new", ""))
	if len(got) != 0 {
		t.Fatalf("filters must be conjunctive, got %v", got)
	}
}

func TestReportsAndAnalytics(t *testing.T) {
	s := newTestServer(t)
	for _, body := range []string{
		reportBody("R-1", "Alpha", `["a", "b"]`),
		reportBody("R-2", "Alpha", `"a, b"`),
		reportBody("R-3", "Beta", `[]`),
	} {
		if rr := do(t, s, http.MethodPost, "/reports/", body); rr.Code != http.StatusOK {
			t.Fatalf("create report: %d %s", rr.Code, rr.Body.String())
		}
	}

	rr := do(t, s, http.MethodPatch, "/reports/R-1", `{"status": "verified"}`)
	if rr.Code != http.StatusOK || decode[map[string]string](t, rr)["msg"] != "Report status updated" {
		t.Fatalf("patch report: %d %s", rr.Code, rr.Body.String())
	}
	if rr := do(t, s, http.MethodPatch, "/reports/R-404?status=x", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	got := decode[[]map[string]any](t, do(t, s, http.MethodGet, "/reports/?status=verified", ""))
	if len(got) != 1 || got[0]["report_id"] != "R-1" {
		t.Fatalf("unexpected reports %v", got)
	}

	violations := decode[[]store.ViolationCount](t, do(t, s, http.MethodGet, "/analytics/violations", ""))
	want := []store.ViolationCount{{Value: "a", Count: 2}, {Value: "b", Count: 2}}
	if len(violations) != 2 || violations[0] != want[0] || violations[1] != want[1] {
		t.Fatalf("unexpected violation counts %v", violations)
	}
	short := decode[[]store.ViolationCount](t, do(t, s, http.MethodGet, "/reports/analytics", ""))
	if len(short) != 2 {
		t.Fatalf("unexpected report analytics %v", short)
	}

	cities := decode[[]map[string]any](t, do(t, s, http.MethodGet, "/analytics/geodata", ""))
	if len(cities) != 2 {
		t.Fatalf("unexpected geodata %v", cities)
	}
	timeline := decode[[]store.TimelineBucket](t, do(t, s, http.MethodGet, "/analytics/timeline", ""))
	if len(timeline) != 1 || timeline[0].Count != 3 {
		t.Fatalf("unexpected timeline %v", timeline)
	}

	if rr := do(t, s, http.MethodDelete, "/reports/R-3", ""); rr.Code != http.StatusOK {
		t.Fatalf("delete report: %d", rr.Code)
	}
	if rr := do(t, s, http.MethodGet, "/reports/R-3", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rr.Code)
	}
}

func TestCreateReportRejectsUnknownEvidenceType(t *testing.T) {
	s := newTestServer(t)
	body := strings.Replace(reportBody("R-9", "Alpha", `[]`), `"anonymous": true,`, `"anonymous": true, "evidence": [{"type": "audio", "url": "x"}],`, 1)
	rr := do(t, s, http.MethodPost, "/reports/", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestIndividualsCreateRequiresAdminRole(t *testing.T) {
	s := newTestServer(t)
	body := `{"demographics": {"age": 34}, "risk_assessment": {"level": "high"}, "cases_involved": ["HRC-1"]}`

	rr := do(t, s, http.MethodPost, "/individuals/", body)
	if rr.Code != http.StatusForbidden || decode[map[string]string](t, rr)["detail"] != "Invalid role" {
		t.Fatalf("missing role: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, s, http.MethodPost, "/individuals/", body, "X-Role", "viewer")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("viewer: expected 403, got %d", rr.Code)
	}
	rr = do(t, s, http.MethodPost, "/individuals/", body, "X-Role", "admin")
	if rr.Code != http.StatusOK {
		t.Fatalf("admin: %d %s", rr.Code, rr.Body.String())
	}
	id := decode[map[string]string](t, rr)["id"]

	rr = do(t, s, http.MethodPatch, "/individuals/"+id+"/risk", `{"level": "low"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("risk: %d %s", rr.Code, rr.Body.String())
	}
	got := decode[map[string]any](t, do(t, s, http.MethodGet, "/individuals/"+id, ""))
	if risk := got["risk_assessment"].(map[string]any); risk["level"] != "low" {
		t.Fatalf("risk not updated: %v", got)
	}
	if rr := do(t, s, http.MethodGet, "/individuals/999", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func uploadRequest(t *testing.T, name string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write(content)
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/upload/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadStoresAndServesFile(t *testing.T) {
	s := newTestServer(t)
	content := []byte("evidence bytes")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, uploadRequest(t, "../photo-one.jpg", content))
	if rr.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rr.Code, rr.Body.String())
	}
	stored := decode[uploads.Stored](t, rr)
	if !strings.HasSuffix(stored.Filename, "_photo-one.jpg") || stored.Size != int64(len(content)) || len(stored.Checksum) != 64 {
		t.Fatalf("unexpected stored file %+v", stored)
	}

	req := httptest.NewRequest(http.MethodGet, stored.URL, nil)
	rr = httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != string(content) {
		t.Fatalf("serve: %d %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("directory listing must be hidden, got %d", rr.Code)
	}
}

func TestUploadTooLarge(t *testing.T) {
	s := newTestServer(t, func(cfg *config.AppConfig) { cfg.Uploads.MaxBytes = 8 })
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, uploadRequest(t, "big.bin", bytes.Repeat([]byte("x"), 64)))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	if rr := do(t, s, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rr.Code)
	}
	do(t, s, http.MethodGet, "/cases/", "")
	rr := do(t, s, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `rightswatch_http_requests_total{method="GET",route="/cases`) {
		t.Fatalf("request metric missing:\n%s", rr.Body.String())
	}
}

func TestMalformedDateIsKeptVerbatim(t *testing.T) {
	s := newTestServer(t)
	body := strings.Replace(caseBody("HRC-5", "a", "[1, 2]"), `"2024-03-01T09:30:00Z"`, `"not-a-date"`, 1)
	if rr := do(t, s, http.MethodPost, "/cases/", body); rr.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	got := decode[map[string]any](t, do(t, s, http.MethodGet, "/cases/HRC-5", ""))
	if got["date_occurred"] != "not-a-date" {
		t.Fatalf("expected verbatim date, got %v", got["date_occurred"])
	}
}

func TestRequestLineIsDebugOnly(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	var buf bytes.Buffer
	s := &Server{logger: utils.NewLoggerTo(&buf, "info", "text")}
	rr := httptest.NewRecorder()
	s.jsonMiddleware(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/cases", nil))
	if rr.Code != http.StatusNoContent || rr.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected response %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
	if buf.Len() != 0 {
		t.Fatalf("request line logged at info level: %s", buf.String())
	}

	s.logger = utils.NewLoggerTo(&buf, "debug", "text")
	s.jsonMiddleware(ok).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cases", nil))
	if !strings.Contains(buf.String(), "REQ GET /cases") {
		t.Fatalf("expected request line at debug level, got %s", buf.String())
	}
}

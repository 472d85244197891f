package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbucket.org/itb77/chantier_backend/config"
	"bitbucket.org/itb77/chantier_backend/middlewares"
	"bitbucket.org/itb77/chantier_backend/models"
	"bitbucket.org/itb77/chantier_backend/storage"
	"github.com/gin-gonic/gin"
)

// stubExtractor replaces the external image service in tests.
type stubExtractor struct {
	rows []map[string]any
	err  error
}

func (s *stubExtractor) Extract(ctx context.Context, image []byte, mimeType string, columns []string, instruction string) ([]map[string]any, error) {
	return s.rows, s.err
}

func newTestRouter(extractor *stubExtractor) (*gin.Engine, *app) {
	gin.SetMode(gin.TestMode)

	a := &app{
		cfg: &config.AppConfig{
			BaseDir:          "CHANTIERS_ITB77",
			AdminPassword:    "secret",
			ExtractTimeout:   5 * time.Second,
			MaxScanSizeBytes: 10 * 1024 * 1024,
		},
		sites:     models.NewSiteService(storage.NewMemoryStore(), "CHANTIERS_ITB77"),
		reviews:   models.NewReviewRegistry(),
		extractor: extractor,
	}

	router := gin.New()
	router.Use(middlewares.AuthMiddleware())
	a.registerRoutes(router)
	return router, a
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func pngUpload(t *testing.T, kind string) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, 0, color.White)
	}
	var imgBuf bytes.Buffer
	if err := png.Encode(&imgBuf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("kind", kind); err != nil {
		t.Fatalf("write field: %v", err)
	}
	fw, err := mw.CreateFormFile("file", "bon.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(imgBuf.Bytes()); err != nil {
		t.Fatalf("write file: %v", err)
	}
	mw.Close()
	return &body, mw.FormDataContentType()
}

func TestScanToRecapWorkflow(t *testing.T) {
	extractor := &stubExtractor{rows: []map[string]any{
		{"Fournisseur": "Lafarge", "Designation": "Voile RDC Bat A", "Type de Beton": "C25/30", "Volume (m3)": 12.5, "Doute": false},
	}}
	router, _ := newTestRouter(extractor)

	if w := doJSON(t, router, http.MethodPost, "/api/chantiers", gin.H{"name": "Melun"}); w.Code != http.StatusCreated {
		t.Fatalf("create site: %d %s", w.Code, w.Body.String())
	}

	w := doJSON(t, router, http.MethodPut, "/api/chantiers/Melun/previsionnel", gin.H{
		"lines": []gin.H{{"designation": "Voile", "planned": 20, "zone": "SUPER"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("set budget: %d %s", w.Code, w.Body.String())
	}

	body, contentType := pngUpload(t, "beton")
	req := httptest.NewRequest(http.MethodPost, "/api/chantiers/Melun/scans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("scan: %d %s", rec.Code, rec.Body.String())
	}
	batch := decodeBody(t, rec)
	batchId, _ := batch["id"].(string)
	if batchId == "" {
		t.Fatalf("no batch id in %v", batch)
	}
	rows, _ := batch["rows"].([]any)
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rows)
	}

	if w := doJSON(t, router, http.MethodPost, "/api/scans/"+batchId+"/commit", nil); w.Code != http.StatusOK {
		t.Fatalf("commit: %d %s", w.Code, w.Body.String())
	}
	// The batch is gone after commit.
	if w := doJSON(t, router, http.MethodGet, "/api/scans/"+batchId, nil); w.Code != http.StatusNotFound {
		t.Fatalf("batch survived commit: %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/chantiers/Melun/recap", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("recap: %d %s", w.Code, w.Body.String())
	}
	recap := decodeBody(t, w)
	lines, _ := recap["lines"].([]any)
	var voile map[string]any
	for _, l := range lines {
		m := l.(map[string]any)
		if m["designation"] == "Voile" && m["zone"] == "SUPER" {
			voile = m
		}
	}
	if voile == nil {
		t.Fatalf("no Voile/SUPER line in %v", lines)
	}
	if voile["actual"] != "12.5" || voile["remaining"] != "7.5" || voile["percent"] != "62.5" {
		t.Fatalf("line = %v", voile)
	}
	if voile["active"] != true {
		t.Fatalf("line = %v", voile)
	}
}

func TestScanUnknownTermFlagged(t *testing.T) {
	extractor := &stubExtractor{rows: []map[string]any{
		{"Designation": "Enrobé parking", "Volume (m3)": 3},
	}}
	router, _ := newTestRouter(extractor)
	doJSON(t, router, http.MethodPost, "/api/chantiers", gin.H{"name": "Melun"})

	body, contentType := pngUpload(t, "beton")
	req := httptest.NewRequest(http.MethodPost, "/api/chantiers/Melun/scans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("scan: %d %s", rec.Code, rec.Body.String())
	}

	batch := decodeBody(t, rec)
	rows := batch["rows"].([]any)
	if rows[0].(map[string]any)["doute"] != true {
		t.Fatalf("rows = %v", rows)
	}
	terms, _ := batch["unknownTerms"].([]any)
	if len(terms) != 1 || terms[0] != "Enrobé parking" {
		t.Fatalf("unknownTerms = %v", terms)
	}
}

func TestScanExtractionFailure(t *testing.T) {
	extractor := &stubExtractor{err: fmt.Errorf("service exploded")}
	router, _ := newTestRouter(extractor)
	doJSON(t, router, http.MethodPost, "/api/chantiers", gin.H{"name": "Melun"})

	body, contentType := pngUpload(t, "beton")
	req := httptest.NewRequest(http.MethodPost, "/api/chantiers/Melun/scans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("got %d, want 502", rec.Code)
	}
}

func TestDiscardLeavesLedgerUntouched(t *testing.T) {
	extractor := &stubExtractor{rows: []map[string]any{
		{"Designation": "Voile RDC", "Volume (m3)": 5},
	}}
	router, a := newTestRouter(extractor)
	doJSON(t, router, http.MethodPost, "/api/chantiers", gin.H{"name": "Melun"})

	body, contentType := pngUpload(t, "beton")
	req := httptest.NewRequest(http.MethodPost, "/api/chantiers/Melun/scans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	batchId := decodeBody(t, rec)["id"].(string)

	if w := doJSON(t, router, http.MethodDelete, "/api/scans/"+batchId, nil); w.Code != http.StatusOK {
		t.Fatalf("discard: %d", w.Code)
	}

	wb, _, err := a.sites.LoadWorkbook(context.Background(), "Melun")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(wb.Concrete) != 0 {
		t.Fatalf("ledger rows = %d after discard", len(wb.Concrete))
	}
}

func TestCreateSiteDuplicate(t *testing.T) {
	router, _ := newTestRouter(&stubExtractor{})
	if w := doJSON(t, router, http.MethodPost, "/api/chantiers", gin.H{"name": "Melun"}); w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/api/chantiers", gin.H{"name": "Melun"}); w.Code != http.StatusConflict {
		t.Fatalf("got %d, want 409", w.Code)
	}
}

func TestUnknownSiteIs404(t *testing.T) {
	router, _ := newTestRouter(&stubExtractor{})
	for _, path := range []string{
		"/api/chantiers/Nulle-Part",
		"/api/chantiers/Nulle-Part/recap",
		"/api/chantiers/Nulle-Part/previsionnel",
	} {
		if w := doJSON(t, router, http.MethodGet, path, nil); w.Code != http.StatusNotFound {
			t.Fatalf("%s: got %d, want 404", path, w.Code)
		}
	}
}

func TestPointagesRequireAdmin(t *testing.T) {
	router, _ := newTestRouter(&stubExtractor{})
	doJSON(t, router, http.MethodPost, "/api/chantiers", gin.H{"name": "Melun"})

	if w := doJSON(t, router, http.MethodGet, "/api/chantiers/Melun/pointages", nil); w.Code != http.StatusForbidden {
		t.Fatalf("anonymous access: %d, want 403", w.Code)
	}

	if w := doJSON(t, router, http.MethodPost, "/api/auth/admin", gin.H{"password": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", w.Code)
	}
	w := doJSON(t, router, http.MethodPost, "/api/auth/admin", gin.H{"password": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	token := decodeBody(t, w)["token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/chantiers/Melun/pointages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin access: %d %s", rec.Code, rec.Body.String())
	}
	if current, _ := decodeBody(t, rec)["current"].(string); current == "" {
		t.Fatal("no current folder suggestion")
	}
}

func TestBudgetSeededOnFirstRead(t *testing.T) {
	router, _ := newTestRouter(&stubExtractor{})
	doJSON(t, router, http.MethodPost, "/api/chantiers", gin.H{"name": "Melun"})

	w := doJSON(t, router, http.MethodGet, "/api/chantiers/Melun/previsionnel", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get budget: %d", w.Code)
	}
	lines, _ := decodeBody(t, w)["lines"].([]any)
	if len(lines) != len(models.StandardBudgetItems) {
		t.Fatalf("lines = %d, want %d", len(lines), len(models.StandardBudgetItems))
	}
}

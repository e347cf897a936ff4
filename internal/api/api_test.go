package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/logomagic/internal/api"
	"github.com/JaimeStill/logomagic/internal/config"
	"github.com/JaimeStill/logomagic/internal/docstore"
	"github.com/JaimeStill/logomagic/internal/infrastructure"
	"github.com/JaimeStill/logomagic/pkg/logging"
	"github.com/JaimeStill/logomagic/pkg/module"
	"github.com/JaimeStill/logomagic/pkg/pagination"
)

func newRouter(t *testing.T, opts ...func(*config.Config)) (*module.Router, *api.Domain, *infrastructure.Infrastructure) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Documents.Provider = config.DocumentsMemory
	cfg.Storage.BasePath = t.TempDir()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	infra, err := infrastructure.NewWithLogger(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("infrastructure: %v", err)
	}

	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(runtime, cfg)

	m, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		t.Fatalf("NewModule() failed: %v", err)
	}

	router := module.NewRouter()
	router.Mount(m)
	return router, domain, infra
}

func TestModule_OpenAPI(t *testing.T) {
	router, _, _ := newRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, p := range []string{"/api/intake", "/api/intake/confirm-contact"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("openapi.json missing %s", p)
		}
	}
	if _, ok := doc.Paths["/api/records/{collection}"]; ok {
		t.Error("openapi.json documents record endpoints that are not mounted")
	}
}

func enableRecords(cfg *config.Config) {
	cfg.API.Records.Enabled = true
}

func TestModule_RecordsDisabledByDefault(t *testing.T) {
	router, domain, _ := newRouter(t)

	id, err := domain.Records.Append(context.Background(), docstore.CollectionUsers, map[string]any{"email": "alice@example.com"})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	for _, path := range []string{"/api/records/users", "/api/records/users/" + id.String()} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, w.Code)
		}
		if strings.Contains(w.Body.String(), "alice@example.com") {
			t.Errorf("GET %s exposed a record", path)
		}
	}
}

func TestModule_RecordsEnabled(t *testing.T) {
	router, _, _ := newRouter(t, enableRecords)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))
	if !strings.Contains(w.Body.String(), "/api/records/{collection}") {
		t.Error("openapi.json missing record endpoints")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/records/users", nil))
	if w.Code != http.StatusOK {
		t.Errorf("GET /api/records/users status = %d", w.Code)
	}
}

func TestModule_SubmissionWritesRecordAndBlobs(t *testing.T) {
	router, domain, infra := newRouter(t, enableRecords)
	var cookie *http.Cookie

	send := func(r *http.Request) *httptest.ResponseRecorder {
		t.Helper()
		if cookie != nil {
			r.AddCookie(cookie)
		}
		r.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		for _, c := range w.Result().Cookies() {
			cookie = c
		}
		if w.Code != http.StatusOK {
			t.Fatalf("%s %s: status = %d, body = %s", r.Method, r.URL.Path, w.Code, w.Body.String())
		}
		return w
	}

	file := func(path, name string) *http.Request {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
		hdr.Set("Content-Type", "image/png")
		part, _ := mw.CreatePart(hdr)
		part.Write([]byte("\x89PNG\r\n\x1a\n"))
		mw.Close()

		r := httptest.NewRequest(http.MethodPost, path, &body)
		r.Header.Set("Content-Type", mw.FormDataContentType())
		return r
	}

	form := func(path, body string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return r
	}

	send(file("/api/intake/logo", "a.png"))
	send(file("/api/intake/target", "b.png"))
	send(form("/api/intake/submit", "placement=top-left%2C+100px"))
	send(form("/api/intake/confirm-cost", ""))
	send(form("/api/intake/confirm-contact", "email=ada%40example.com&name=Ada"))

	result, err := domain.Records.List(context.Background(), docstore.CollectionUsers, pagination.PageRequest{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("users = %d, want 1", result.Total)
	}

	user := result.Data[0].Fields
	if !strings.HasSuffix(user["logoUrl"].(string), "/logos/a.png") {
		t.Errorf("logoUrl = %v", user["logoUrl"])
	}

	for _, key := range []string{"logos/a.png", "target-images/b.png"} {
		if _, err := infra.Storage.Retrieve(context.Background(), key); err != nil {
			t.Errorf("blob %s not stored: %v", key, err)
		}
	}

	w := send(httptest.NewRequest(http.MethodGet, "/api/records/users", nil))
	if !strings.Contains(w.Body.String(), "ada@example.com") {
		t.Errorf("records listing = %s", w.Body.String())
	}
}

func TestDomain_StartStopsWithLifecycle(t *testing.T) {
	_, domain, infra := newRouter(t)

	if err := domain.Start(infra.Lifecycle); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := infra.Lifecycle.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

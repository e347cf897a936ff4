package intake_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/logomagic/internal/intake"
	"github.com/JaimeStill/logomagic/internal/sessions"
	"github.com/JaimeStill/logomagic/internal/upload"
	"github.com/JaimeStill/logomagic/internal/wizard"
	"github.com/JaimeStill/logomagic/pkg/logging"
	"github.com/JaimeStill/logomagic/pkg/openapi"
	"github.com/JaimeStill/logomagic/pkg/routes"
	"github.com/google/uuid"
)

const cookieName = "logomagic_session"

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memUploader struct {
	mu   sync.Mutex
	fail bool
	keys []string
}

func (m *memUploader) Upload(ctx context.Context, f *upload.File, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", &upload.UploadError{Path: path, Err: errors.New("bucket unreachable")}
	}
	m.keys = append(m.keys, path)
	return "/blobs/" + path, nil
}

type memRecorder struct {
	mu      sync.Mutex
	records map[string][]map[string]any
}

func (m *memRecorder) Append(ctx context.Context, collection string, fields map[string]any) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string][]map[string]any)
	}
	m.records[collection] = append(m.records[collection], fields)
	return uuid.New(), nil
}

type client struct {
	t      *testing.T
	server http.Handler
	cookie *http.Cookie
}

func setup(t *testing.T) (*client, *memUploader, *memRecorder) {
	t.Helper()

	up := &memUploader{}
	rec := &memRecorder{}
	factory := func() *wizard.Orchestrator {
		return wizard.New(wizard.Config{InvoiceURL: "https://example.com/invoice"}, up, rec, logging.Discard())
	}
	reg := sessions.New(sessions.Config{TTL: time.Hour}, factory, logging.Discard())
	binder := sessions.NewBinder(reg, sessions.CookieConfig{Name: cookieName, MaxAge: time.Hour})

	h := intake.NewHandler(binder, logging.Discard(), "/app", 1<<20)
	mux := http.NewServeMux()
	routes.Register(mux, "/api", nil, h.Routes())

	return &client{t: t, server: mux}, up, rec
}

func (c *client) do(r *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		r.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.server.ServeHTTP(w, r)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == cookieName {
			c.cookie = ck
		}
	}
	return w
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "application/json")
	return c.do(r)
}

func (c *client) upload(path string, fields map[string]string, field, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if field != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		hdr.Set("Content-Type", contentType)
		part, _ := mw.CreatePart(hdr)
		part.Write(data)
	}
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, path, &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Accept", "application/json")
	return c.do(r)
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) wizard.View {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var v wizard.View
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	return body["error"]
}

func (c *client) fillWizard() {
	c.t.Helper()
	c.upload("/intake/logo", nil, "file", "a.png", "image/png", pngHeader)
	c.upload("/intake/target", nil, "file", "b.png", "image/png", pngHeader)
	w := c.post("/intake/submit", url.Values{"placement": {"top-left, 100px"}})
	if w.Code != http.StatusOK {
		c.t.Fatalf("submit status = %d, body = %s", w.Code, w.Body.String())
	}
	c.post("/intake/confirm-cost", nil)
}

func TestGet_StartsSession(t *testing.T) {
	c, _, _ := setup(t)

	r := httptest.NewRequest(http.MethodGet, "/intake", nil)
	r.Header.Set("Accept", "application/json")
	v := decodeView(t, c.do(r))

	if c.cookie == nil || c.cookie.Value == "" {
		t.Fatal("no session cookie set")
	}
	if v.Step != wizard.StepLogo || v.Dialog != wizard.DialogNone {
		t.Errorf("initial view = step %d dialog %s", v.Step, v.Dialog)
	}
	if v.InvoiceURL != "https://example.com/invoice" {
		t.Errorf("InvoiceURL = %q", v.InvoiceURL)
	}
}

func TestFlow_SubmissionAndPayment(t *testing.T) {
	c, up, rec := setup(t)

	v := decodeView(t, c.upload("/intake/logo", nil, "file", "a.png", "image/png", pngHeader))
	if v.Step != wizard.StepTargetImage || v.Logo == nil || v.Logo.Name != "a.png" {
		t.Fatalf("after logo: %+v", v)
	}

	c.fillWizard()

	v = decodeView(t, c.post("/intake/confirm-contact", url.Values{"email": {"Ada@Example.com"}, "name": {"Ada"}}))
	if v.Dialog != wizard.DialogPurchase {
		t.Fatalf("dialog = %s, want purchase", v.Dialog)
	}
	if v.Submission == nil || !strings.Contains(v.Submission.LogoURL, "logos/a.png") {
		t.Errorf("submission = %+v", v.Submission)
	}
	if len(rec.records["users"]) != 1 {
		t.Fatalf("users = %d, want 1", len(rec.records["users"]))
	}

	w := c.post("/intake/buy", nil)
	var link map[string]string
	json.NewDecoder(w.Body).Decode(&link)
	if link["invoice_url"] != "https://example.com/invoice" {
		t.Errorf("buy = %v", link)
	}

	decodeView(t, c.post("/intake/paid", nil))
	v = decodeView(t, c.upload("/intake/payment-details", map[string]string{"transaction_id": "TXN123"}, "receipt", "r.png", "image/png", pngHeader))

	if v.Dialog != wizard.DialogReceipt || v.Receipt == nil || len(v.Receipt.ReceiptNumber) != 8 {
		t.Fatalf("after payment: dialog %s receipt %+v", v.Dialog, v.Receipt)
	}
	payments := rec.records["payments"]
	if len(payments) != 1 || payments[0]["transactionId"] != "TXN123" || payments[0]["userId"] != "Ada@Example.com" {
		t.Errorf("payments = %v", payments)
	}
	if up.keys[len(up.keys)-1] != "paypal-receipts/r.png" {
		t.Errorf("last upload = %s", up.keys[len(up.keys)-1])
	}

	v = decodeView(t, c.post("/intake/receipt/dismiss", nil))
	if v.Dialog != wizard.DialogNone {
		t.Errorf("dialog = %s after dismiss", v.Dialog)
	}
}

func TestConfirmContact_UploadFailureHidesCause(t *testing.T) {
	c, up, rec := setup(t)
	c.fillWizard()
	up.fail = true

	w := c.post("/intake/confirm-contact", url.Values{"email": {"ada@example.com"}, "name": {"Ada"}})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if msg := errorBody(t, w); msg != wizard.MsgUploadFailed {
		t.Errorf("error = %q, want the generic message", msg)
	}
	if len(rec.records["users"]) != 0 {
		t.Error("user record written after failed upload")
	}

	r := httptest.NewRequest(http.MethodGet, "/intake", nil)
	r.Header.Set("Accept", "application/json")
	if v := decodeView(t, c.do(r)); v.Dialog != wizard.DialogContactInfo {
		t.Errorf("dialog = %s, want contact-info", v.Dialog)
	}
}

func TestSubmit_Validation(t *testing.T) {
	c, _, _ := setup(t)

	w := c.post("/intake/submit", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if msg := errorBody(t, w); msg != wizard.MsgLogoRequired {
		t.Errorf("error = %q", msg)
	}
}

func TestInvalidTransition(t *testing.T) {
	c, _, _ := setup(t)

	for _, path := range []string{"/intake/confirm-cost", "/intake/paid", "/intake/report-payment", "/intake/receipt/dismiss"} {
		if w := c.post(path, nil); w.Code != http.StatusConflict {
			t.Errorf("%s status = %d, want 409", path, w.Code)
		}
	}
}

func TestUpload_Errors(t *testing.T) {
	c, _, _ := setup(t)

	tests := []struct {
		name        string
		field       string
		contentType string
		data        []byte
		want        int
	}{
		{"missing file", "", "", nil, http.StatusBadRequest},
		{"wrong field", "logo", "image/png", pngHeader, http.StatusBadRequest},
		{"not an image", "file", "text/plain", []byte("hello"), http.StatusUnsupportedMediaType},
		{"too large", "file", "image/png", append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 3<<19)...), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := c.upload("/intake/logo", nil, tt.field, "x.png", tt.contentType, tt.data)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestOutsideClick(t *testing.T) {
	c, _, _ := setup(t)
	c.fillWizard()

	v := decodeView(t, c.post("/intake/outside-click", nil))
	if v.Dialog != wizard.DialogContactInfo {
		t.Errorf("contact dialog closed by outside click")
	}
}

func TestHTMLFormPost_Redirects(t *testing.T) {
	c, _, _ := setup(t)

	post := func(path string, form url.Values) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.Header.Set("Accept", "text/html")
		return c.do(r)
	}

	w := post("/intake/placement", url.Values{"placement": {"center"}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/app/" {
		t.Errorf("placement: %d %s", w.Code, w.Header().Get("Location"))
	}

	w = post("/intake/submit", nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/app/" {
		t.Errorf("validation failure should redirect to the page showing the message: %d %s", w.Code, w.Header().Get("Location"))
	}

	w = post("/intake/paid", nil)
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/app/?error=") {
		t.Errorf("transition failure Location = %q", loc)
	}

	w = post("/intake/buy", nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "https://example.com/invoice" {
		t.Errorf("buy: %d %s", w.Code, w.Header().Get("Location"))
	}
}

func TestRoutes_DocumentedInSpec(t *testing.T) {
	h := intake.NewHandler(nil, logging.Discard(), "/app", 1)
	spec := openapi.NewSpec("test", "0")
	routes.Register(http.NewServeMux(), "/api", spec, h.Routes())

	for _, p := range []string{"/api/intake", "/api/intake/confirm-contact", "/api/intake/payment-details"} {
		if spec.Paths[p] == nil {
			t.Errorf("%s not documented", p)
		}
	}
	if spec.Components.Schemas["WizardView"] == nil {
		t.Error("WizardView schema missing")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{intake.ErrMissingFile, http.StatusBadRequest},
		{intake.ErrMalformedForm, http.StatusBadRequest},
		{upload.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{upload.ErrUnsupportedType, http.StatusUnsupportedMediaType},
		{&upload.UploadError{Path: "logos/a.png", Err: errors.New("x")}, http.StatusBadGateway},
		{&wizard.ValidationError{Message: "m"}, http.StatusUnprocessableEntity},
		{wizard.ErrBusy, http.StatusConflict},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := intake.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

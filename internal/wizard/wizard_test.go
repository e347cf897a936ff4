package wizard_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/logomagic/internal/upload"
	"github.com/JaimeStill/logomagic/internal/wizard"
	"github.com/JaimeStill/logomagic/pkg/logging"
	"github.com/google/uuid"
)

const invoiceURL = "https://example.com/invoice"

type fakeUploader struct {
	mu     sync.Mutex
	paths  []string
	failOn string
	block  chan struct{}
}

func (f *fakeUploader) Upload(ctx context.Context, file *upload.File, path string) (string, error) {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn != "" && strings.HasPrefix(path, f.failOn) {
		return "", &upload.UploadError{Path: path, Err: errors.New("quota exceeded")}
	}
	f.paths = append(f.paths, path)
	return "https://store.example/" + path, nil
}

type appended struct {
	collection string
	fields     map[string]any
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []appended
	err     error
}

func (f *fakeRecorder) Append(ctx context.Context, collection string, fields map[string]any) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.records = append(f.records, appended{collection, fields})
	return uuid.New(), nil
}

func (f *fakeRecorder) count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, r := range f.records {
		if r.collection == collection {
			n++
		}
	}
	return n
}

func newOrchestrator() (*wizard.Orchestrator, *fakeUploader, *fakeRecorder) {
	up := &fakeUploader{}
	rec := &fakeRecorder{}
	o := wizard.New(wizard.Config{InvoiceURL: invoiceURL}, up, rec, logging.Discard())
	return o, up, rec
}

func file(name string) *upload.File {
	return &upload.File{Name: name, ContentType: "image/png", Data: []byte("data-" + name)}
}

// filled returns an orchestrator with both images and a placement, at the contact dialog.
func filled(t *testing.T) (*wizard.Orchestrator, *fakeUploader, *fakeRecorder) {
	t.Helper()
	o, up, rec := newOrchestrator()

	o.SetLogo(file("a.png"))
	o.SetTargetImage(file("b.png"))
	o.SetPlacement("top-left, 100px")

	if err := o.Submit(); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := o.ConfirmCost(); err != nil {
		t.Fatalf("ConfirmCost() error = %v", err)
	}
	o.SetContact("ada@example.com", "Ada")
	return o, up, rec
}

// purchased returns an orchestrator with a saved submission and the purchase dialog open.
func purchased(t *testing.T) (*wizard.Orchestrator, *fakeUploader, *fakeRecorder) {
	t.Helper()
	o, up, rec := filled(t)
	if _, err := o.ConfirmContact(context.Background()); err != nil {
		t.Fatalf("ConfirmContact() error = %v", err)
	}
	return o, up, rec
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"ada@example.com", true},
		{"Ada.Lovelace+intake@Mail.Example.CO", true},
		{"a@b.io", true},
		{"x_y%z-1@sub-domain.example.org", true},
		{"", false},
		{"ada.example.com", false},
		{"@example.com", false},
		{"ada@", false},
		{"ada@example", false},
		{"ada@example.c", false},
		{"ada@example.c0m", false},
		{"ada lovelace@example.com", false},
		{"ada@exa mple.com", false},
		{"ada@@example.com", false},
		{"adá@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := wizard.IsValidEmail(tt.input); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidEmail_WithoutAtAlwaysRejected(t *testing.T) {
	inputs := []string{"plain", "a.b.c", "name.example.com", "x%y.zz", "UPPER.CASE.COM"}
	for _, s := range inputs {
		if wizard.IsValidEmail(s) {
			t.Errorf("IsValidEmail(%q) = true for a string without @", s)
		}
	}
}

func TestIsValidEmail_LocalDomainTLDAccepted(t *testing.T) {
	for _, local := range []string{"a", "first.last", "x+y"} {
		for _, tld := range []string{"io", "com", "museum"} {
			s := fmt.Sprintf("%s@domain.%s", local, tld)
			if !wizard.IsValidEmail(s) {
				t.Errorf("IsValidEmail(%q) = false", s)
			}
		}
	}
}

func TestNavigation_Bounds(t *testing.T) {
	o, _, _ := newOrchestrator()

	o.Retreat()
	o.Retreat()
	if got := o.Snapshot().Step; got != wizard.StepLogo {
		t.Errorf("Retreat at step 0 moved to %d", got)
	}

	o.SetLogo(file("a.png"))
	o.SetTargetImage(file("b.png"))
	o.SetPlacement("center")

	o.Advance()
	o.Advance()
	if got := o.Snapshot().Step; got != wizard.StepPlacement {
		t.Errorf("Advance at step 2 moved to %d", got)
	}
}

func TestNavigation_GatedAdvance(t *testing.T) {
	o, _, _ := newOrchestrator()

	o.Advance()
	if got := o.Snapshot().Step; got != wizard.StepLogo {
		t.Fatalf("Advance without logo moved to %d", got)
	}

	o.SetLogo(file("a.png"))
	v := o.Snapshot()
	if v.Step != wizard.StepTargetImage {
		t.Fatalf("SetLogo should advance to step 1, got %d", v.Step)
	}
	if v.CanAdvance {
		t.Error("CanAdvance should be false without a target image")
	}

	o.Advance()
	if got := o.Snapshot().Step; got != wizard.StepTargetImage {
		t.Fatalf("Advance without target moved to %d", got)
	}

	o.Retreat()
	v = o.Snapshot()
	if v.Step != wizard.StepLogo || !v.CanAdvance || v.CanRetreat {
		t.Errorf("after Retreat: step %d can_advance %v can_retreat %v", v.Step, v.CanAdvance, v.CanRetreat)
	}
	o.Advance()
	o.SetTargetImage(file("b.png"))
	if got := o.Snapshot().Step; got != wizard.StepPlacement {
		t.Errorf("SetTargetImage should advance to step 2, got %d", got)
	}
}

func TestCanSubmit(t *testing.T) {
	for mask := range 8 {
		hasLogo, hasTarget, hasPlacement := mask&1 != 0, mask&2 != 0, mask&4 != 0

		o, _, _ := newOrchestrator()
		if hasLogo {
			o.SetLogo(file("a.png"))
		}
		if hasTarget {
			o.SetTargetImage(file("b.png"))
		}
		if hasPlacement {
			o.SetPlacement("bottom-right")
		}

		want := hasLogo && hasTarget && hasPlacement
		if got := o.CanSubmit(); got != want {
			t.Errorf("logo=%v target=%v placement=%v: CanSubmit() = %v, want %v",
				hasLogo, hasTarget, hasPlacement, got, want)
		}
		if got := o.Snapshot().CanSubmit; got != want {
			t.Errorf("Snapshot().CanSubmit = %v, want %v", got, want)
		}
	}
}

func TestCanConfirmContact(t *testing.T) {
	tests := []struct {
		email, name string
		want        bool
		invalid     bool
	}{
		{"ada@example.com", "Ada", true, false},
		{"ada@example.com", "   ", false, false},
		{"ada@example.com", "", false, false},
		{"not-an-email", "Ada", false, true},
		{" ada@example.com ", "Ada", false, true},
		{"", "Ada", false, false},
	}

	for _, tt := range tests {
		o, _, _ := newOrchestrator()
		o.SetContact(tt.email, tt.name)

		if got := o.CanConfirmContact(); got != tt.want {
			t.Errorf("(%q, %q) CanConfirmContact() = %v, want %v", tt.email, tt.name, got, tt.want)
		}
		if got := o.EmailInvalid(); got != tt.invalid {
			t.Errorf("(%q) EmailInvalid() = %v, want %v", tt.email, got, tt.invalid)
		}
	}
}

func TestSubmit_Validation(t *testing.T) {
	o, _, _ := newOrchestrator()

	err := o.Submit()
	var ve *wizard.ValidationError
	if !errors.As(err, &ve) || ve.Message != wizard.MsgLogoRequired {
		t.Fatalf("Submit() error = %v, want logo validation", err)
	}
	if got := o.Snapshot().ErrorMessage; got != wizard.MsgLogoRequired {
		t.Errorf("ErrorMessage = %q", got)
	}

	o.SetLogo(file("a.png"))
	if err := o.Submit(); !errors.As(err, &ve) || ve.Message != wizard.MsgTargetRequired {
		t.Fatalf("Submit() error = %v, want target validation", err)
	}
	if o.Snapshot().Dialog != wizard.DialogNone {
		t.Error("failed Submit must not open a dialog")
	}
}

func TestSubmissionScenario(t *testing.T) {
	o, up, rec := filled(t)

	sub, err := o.ConfirmContact(context.Background())
	if err != nil {
		t.Fatalf("ConfirmContact() error = %v", err)
	}

	if len(rec.records) != 1 {
		t.Fatalf("wrote %d records, want 1", len(rec.records))
	}
	user := rec.records[0]
	if user.collection != "users" {
		t.Errorf("collection = %q, want users", user.collection)
	}
	if url, _ := user.fields["logoUrl"].(string); !strings.Contains(url, "logos/a.png") {
		t.Errorf("logoUrl = %q", url)
	}
	if url, _ := user.fields["targetImageUrl"].(string); !strings.Contains(url, "target-images/b.png") {
		t.Errorf("targetImageUrl = %q", url)
	}
	if user.fields["logoPlacement"] != "top-left, 100px" || user.fields["email"] != "ada@example.com" || user.fields["name"] != "Ada" {
		t.Errorf("unexpected fields: %v", user.fields)
	}
	if _, ok := user.fields["createdAt"].(time.Time); !ok {
		t.Error("createdAt should be a timestamp")
	}

	if got := strings.Join(up.paths, ","); got != "logos/a.png,target-images/b.png" {
		t.Errorf("upload order = %s", got)
	}
	if sub.LogoURL == "" || sub.TargetImageURL == "" {
		t.Error("submission should carry both URLs")
	}

	v := o.Snapshot()
	if v.Dialog != wizard.DialogPurchase || v.Loading || v.ErrorMessage != "" {
		t.Errorf("after success: dialog %s loading %v error %q", v.Dialog, v.Loading, v.ErrorMessage)
	}
}

func TestSubmission_LogoUploadFails(t *testing.T) {
	o, up, rec := filled(t)
	up.failOn = "logos/"
	before := o.Snapshot()

	_, err := o.ConfirmContact(context.Background())

	var uploadErr *upload.UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("ConfirmContact() error = %v, want *UploadError", err)
	}
	if len(rec.records) != 0 {
		t.Errorf("wrote %d records after failed upload", len(rec.records))
	}

	v := o.Snapshot()
	if v.Dialog != wizard.DialogContactInfo {
		t.Errorf("dialog = %s, want contact-info", v.Dialog)
	}
	if v.ErrorMessage != wizard.MsgUploadFailed {
		t.Errorf("ErrorMessage = %q, want %q", v.ErrorMessage, wizard.MsgUploadFailed)
	}
	if v.Step != before.Step || v.Placement != before.Placement || v.Logo.Name != before.Logo.Name || v.TargetImage.Name != before.TargetImage.Name {
		t.Error("wizard state changed after failure")
	}
	if strings.Contains(v.ErrorMessage, "quota") {
		t.Error("underlying cause leaked to the user")
	}
}

func TestSubmission_TargetUploadFailsLeavesLogo(t *testing.T) {
	o, up, rec := filled(t)
	up.failOn = "target-images/"

	if _, err := o.ConfirmContact(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(up.paths) != 1 || up.paths[0] != "logos/a.png" {
		t.Errorf("uploaded paths = %v, want the orphaned logo only", up.paths)
	}
	if len(rec.records) != 0 {
		t.Error("no record may be written without both URLs")
	}
}

func TestSubmission_PersistFails(t *testing.T) {
	o, _, rec := filled(t)
	rec.err = errors.New("connection refused")

	_, err := o.ConfirmContact(context.Background())

	var persistErr *wizard.PersistError
	if !errors.As(err, &persistErr) || persistErr.Collection != "users" {
		t.Fatalf("ConfirmContact() error = %v, want *PersistError", err)
	}
	if wizard.MapHTTPStatus(err) != http.StatusBadGateway {
		t.Errorf("MapHTTPStatus() = %d", wizard.MapHTTPStatus(err))
	}

	v := o.Snapshot()
	if v.Dialog != wizard.DialogContactInfo || v.ErrorMessage != wizard.MsgUploadFailed {
		t.Errorf("dialog %s message %q", v.Dialog, v.ErrorMessage)
	}

	rec.err = nil
	if _, err := o.ConfirmContact(context.Background()); err != nil {
		t.Fatalf("retry ConfirmContact() error = %v", err)
	}
	if o.Snapshot().ErrorMessage != "" {
		t.Error("successful retry should clear the error")
	}
}

func TestConfirmContact_Validation(t *testing.T) {
	o, up, _ := filled(t)
	o.SetContact("bad-email", "Ada")

	_, err := o.ConfirmContact(context.Background())
	var ve *wizard.ValidationError
	if !errors.As(err, &ve) || ve.Message != wizard.MsgContactRequired {
		t.Fatalf("ConfirmContact() error = %v, want contact validation", err)
	}
	if len(up.paths) != 0 {
		t.Error("validation failure must precede any upload")
	}
	if wizard.MapHTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Errorf("MapHTTPStatus() = %d", wizard.MapHTTPStatus(err))
	}
}

func TestConfirmContact_Busy(t *testing.T) {
	o, up, rec := filled(t)
	up.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := o.ConfirmContact(context.Background())
		done <- err
	}()

	deadline := time.After(2 * time.Second)
	for !o.Snapshot().Loading {
		select {
		case <-deadline:
			t.Fatal("pipeline never started")
		case <-time.After(time.Millisecond):
		}
	}

	if v := o.Snapshot(); v.CanConfirmContact || v.CanSubmit {
		t.Error("controls should be disabled while loading")
	}
	if _, err := o.ConfirmContact(context.Background()); !errors.Is(err, wizard.ErrBusy) {
		t.Errorf("second ConfirmContact() error = %v, want ErrBusy", err)
	}

	close(up.block)
	if err := <-done; err != nil {
		t.Fatalf("ConfirmContact() error = %v", err)
	}
	if rec.count("users") != 1 {
		t.Errorf("users written = %d, want 1", rec.count("users"))
	}
}

func TestPaymentDetailsScenario(t *testing.T) {
	o, up, rec := purchased(t)

	if got := o.BuyNow(); got != invoiceURL {
		t.Errorf("BuyNow() = %q", got)
	}
	if o.Snapshot().Dialog != wizard.DialogPurchase {
		t.Fatal("BuyNow must not change the dialog")
	}

	if err := o.ConfirmPaid(); err != nil {
		t.Fatalf("ConfirmPaid() error = %v", err)
	}
	if o.CanSubmitPayment() {
		t.Error("CanSubmitPayment should be false before details are entered")
	}

	o.SetPaymentDetails("TXN123", &upload.File{Name: "receipt.pdf", ContentType: "application/pdf", Data: []byte("%PDF")})
	receipt, err := o.SubmitPaymentDetails(context.Background())
	if err != nil {
		t.Fatalf("SubmitPaymentDetails() error = %v", err)
	}

	if n := rec.count("payments"); n != 1 {
		t.Fatalf("payments written = %d, want 1", n)
	}
	payment := rec.records[len(rec.records)-1].fields
	if payment["transactionId"] != "TXN123" {
		t.Errorf("transactionId = %v", payment["transactionId"])
	}
	if payment["userId"] != "ada@example.com" {
		t.Errorf("userId = %v, want the session email", payment["userId"])
	}
	if url, _ := payment["receiptUrl"].(string); !strings.Contains(url, "paypal-receipts/receipt.pdf") {
		t.Errorf("receiptUrl = %q", url)
	}
	if up.paths[len(up.paths)-1] != "paypal-receipts/receipt.pdf" {
		t.Errorf("last upload = %q", up.paths[len(up.paths)-1])
	}

	if !regexp.MustCompile(`^[A-Z0-9]{8}$`).MatchString(receipt.ReceiptNumber) {
		t.Errorf("ReceiptNumber = %q, want 8 uppercase alphanumerics", receipt.ReceiptNumber)
	}
	if receipt.Item != wizard.ReceiptItem {
		t.Errorf("Item = %q", receipt.Item)
	}

	v := o.Snapshot()
	if v.Dialog != wizard.DialogReceipt || v.Receipt == nil || v.Receipt.ReceiptNumber != receipt.ReceiptNumber {
		t.Errorf("receipt dialog not shown: %+v", v)
	}

	if err := o.DismissReceipt(); err != nil {
		t.Fatalf("DismissReceipt() error = %v", err)
	}
	if o.Snapshot().Dialog != wizard.DialogNone {
		t.Error("DismissReceipt should close all dialogs")
	}
}

func TestPaymentDetails_Failure(t *testing.T) {
	o, up, rec := purchased(t)
	o.ConfirmPaid()
	o.SetPaymentDetails("TXN9", file("r.png"))
	up.failOn = "paypal-receipts/"

	if _, err := o.SubmitPaymentDetails(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if rec.count("payments") != 0 {
		t.Error("payment written after failed receipt upload")
	}

	v := o.Snapshot()
	if v.Dialog != wizard.DialogPaymentDetails || v.ErrorMessage != wizard.MsgPaymentFailed {
		t.Errorf("dialog %s message %q", v.Dialog, v.ErrorMessage)
	}
}

func TestPaymentDetails_Validation(t *testing.T) {
	o, _, _ := purchased(t)
	o.ConfirmPaid()
	o.SetPaymentDetails("  ", file("r.png"))

	_, err := o.SubmitPaymentDetails(context.Background())
	var ve *wizard.ValidationError
	if !errors.As(err, &ve) || ve.Message != wizard.MsgPaymentRequired {
		t.Errorf("SubmitPaymentDetails() error = %v, want payment validation", err)
	}
}

func TestPaymentReport(t *testing.T) {
	up := &fakeUploader{}
	rec := &fakeRecorder{}
	o := wizard.New(wizard.Config{
		InvoiceURL:    invoiceURL,
		ReceiptNumber: func() string { return "ABCD1234" },
	}, up, rec, logging.Discard())

	o.SetLogo(file("a.png"))
	o.SetTargetImage(file("b.png"))
	o.SetPlacement("center")
	o.Submit()
	o.ConfirmCost()
	o.SetContact("ada@example.com", "Ada")
	if _, err := o.ConfirmContact(context.Background()); err != nil {
		t.Fatalf("ConfirmContact() error = %v", err)
	}
	written := len(rec.records)

	if err := o.OpenPaymentReport(); err != nil {
		t.Fatalf("OpenPaymentReport() error = %v", err)
	}
	receipt, err := o.ReportPayment()
	if err != nil {
		t.Fatalf("ReportPayment() error = %v", err)
	}
	if receipt.ReceiptNumber != "ABCD1234" {
		t.Errorf("ReceiptNumber = %q", receipt.ReceiptNumber)
	}
	if len(rec.records) != written {
		t.Error("reporting a payment must not persist anything")
	}
	if o.Snapshot().Dialog != wizard.DialogReceipt {
		t.Error("receipt dialog should be open")
	}
}

func TestClickOutside(t *testing.T) {
	t.Run("contact info stays open", func(t *testing.T) {
		o, _, _ := filled(t)
		o.ClickOutside()
		if got := o.Snapshot().Dialog; got != wizard.DialogContactInfo {
			t.Errorf("dialog = %s, want contact-info", got)
		}
	})

	t.Run("confirm cost closes", func(t *testing.T) {
		o, _, _ := newOrchestrator()
		o.SetLogo(file("a.png"))
		o.SetTargetImage(file("b.png"))
		o.SetPlacement("center")
		o.Submit()
		o.ClickOutside()
		if got := o.Snapshot().Dialog; got != wizard.DialogNone {
			t.Errorf("dialog = %s, want none", got)
		}
	})

	t.Run("purchase closes", func(t *testing.T) {
		o, _, _ := purchased(t)
		o.ClickOutside()
		if got := o.Snapshot().Dialog; got != wizard.DialogNone {
			t.Errorf("dialog = %s, want none", got)
		}
	})

	t.Run("payment details stays open", func(t *testing.T) {
		o, _, _ := purchased(t)
		o.ConfirmPaid()
		o.ClickOutside()
		if got := o.Snapshot().Dialog; got != wizard.DialogPaymentDetails {
			t.Errorf("dialog = %s, want payment-details", got)
		}
	})
}

func TestInvalidTransitions(t *testing.T) {
	o, _, _ := newOrchestrator()

	checks := map[string]error{
		"ConfirmCost":       o.ConfirmCost(),
		"ConfirmPaid":       o.ConfirmPaid(),
		"OpenPaymentReport": o.OpenPaymentReport(),
		"DismissReceipt":    o.DismissReceipt(),
	}
	for name, err := range checks {
		if !errors.Is(err, wizard.ErrInvalidTransition) {
			t.Errorf("%s() error = %v, want ErrInvalidTransition", name, err)
		}
	}

	if _, err := o.ReportPayment(); !errors.Is(err, wizard.ErrInvalidTransition) {
		t.Errorf("ReportPayment() error = %v", err)
	}
	if _, err := o.ConfirmContact(context.Background()); !errors.Is(err, wizard.ErrInvalidTransition) {
		t.Errorf("ConfirmContact() error = %v", err)
	}
	if _, err := o.SubmitPaymentDetails(context.Background()); !errors.Is(err, wizard.ErrInvalidTransition) {
		t.Errorf("SubmitPaymentDetails() error = %v", err)
	}
	if o.Snapshot().Dialog != wizard.DialogNone {
		t.Error("invalid transitions must not change the dialog")
	}
	if wizard.MapHTTPStatus(wizard.ErrInvalidTransition) != http.StatusConflict {
		t.Error("ErrInvalidTransition should map to 409")
	}
}

func TestSubmit_WhileDialogOpen(t *testing.T) {
	o, _, _ := filled(t)
	if err := o.Submit(); !errors.Is(err, wizard.ErrInvalidTransition) {
		t.Errorf("Submit() with contact dialog open error = %v", err)
	}
	if o.Snapshot().Dialog != wizard.DialogContactInfo {
		t.Error("Submit must not replace an open dialog")
	}
}

func TestNewReceiptNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	seen := make(map[string]bool)
	for range 100 {
		n := wizard.NewReceiptNumber()
		if !pattern.MatchString(n) {
			t.Fatalf("NewReceiptNumber() = %q", n)
		}
		seen[n] = true
	}
	if len(seen) < 95 {
		t.Errorf("only %d distinct receipt numbers in 100", len(seen))
	}
}

func TestDialog_JSON(t *testing.T) {
	data, err := json.Marshal(wizard.View{Dialog: wizard.DialogPaymentReported})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"dialog":"payment-reported"`) {
		t.Errorf("dialog encoded as %s", data)
	}

	var d wizard.Dialog
	if err := d.UnmarshalText([]byte("purchase")); err != nil || d != wizard.DialogPurchase {
		t.Errorf("UnmarshalText(purchase) = %v, %v", d, err)
	}
	if err := d.UnmarshalText([]byte("modal")); err == nil {
		t.Error("UnmarshalText should reject unknown dialogs")
	}
}

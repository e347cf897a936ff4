// Package wizard drives the three-step logo intake: logo upload, target
// image upload, and placement description, followed by the contact,
// purchase, and payment reporting dialogs. One Orchestrator serves one
// browser session.
package wizard

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/logomagic/internal/upload"
	"github.com/google/uuid"
)

// Step indexes the wizard panels.
type Step int

const (
	StepLogo Step = iota
	StepTargetImage
	StepPlacement
)

const maxStep = StepPlacement

// ReceiptItem is the line item shown on every receipt.
const ReceiptItem = "1 Credit for LogoMagic Pro"

// Uploader writes a file to the object store and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, file *upload.File, path string) (string, error)
}

// Recorder appends a record to a document store collection.
type Recorder interface {
	Append(ctx context.Context, collection string, fields map[string]any) (uuid.UUID, error)
}

// Config holds orchestrator settings.
type Config struct {
	InvoiceURL string

	// Now and ReceiptNumber default to time.Now and NewReceiptNumber.
	Now           func() time.Time
	ReceiptNumber func() string
}

// Submission is the result of a successful contact confirmation.
type Submission struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Placement      string    `json:"placement"`
	LogoURL        string    `json:"logo_url"`
	TargetImageURL string    `json:"target_image_url"`
}

// ReceiptView is the confirmation shown after payment is reported.
// It is display-only and not tied to a verified payment.
type ReceiptView struct {
	ReceiptNumber string    `json:"receipt_number"`
	Date          time.Time `json:"date"`
	Item          string    `json:"item"`
}

// NewReceiptNumber returns 8 uppercase hexadecimal characters from a random UUID.
func NewReceiptNumber() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// Orchestrator owns the wizard state for a single session. All methods are
// safe for concurrent use; network calls run outside the lock.
type Orchestrator struct {
	mu       sync.Mutex
	uploader Uploader
	records  Recorder
	logger   *slog.Logger
	cfg      Config

	step      Step
	logo      *upload.File
	target    *upload.File
	placement string

	email string
	name  string

	transactionID string
	paymentFile   *upload.File

	dialog       Dialog
	loading      bool
	errorMessage string
	submission   *Submission
	receipt      *ReceiptView
}

// New creates an Orchestrator at step 0 with no dialog open.
func New(cfg Config, uploader Uploader, records Recorder, logger *slog.Logger) *Orchestrator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ReceiptNumber == nil {
		cfg.ReceiptNumber = NewReceiptNumber
	}

	return &Orchestrator{
		uploader: uploader,
		records:  records,
		logger:   logger.With("system", "wizard"),
		cfg:      cfg,
	}
}

// SetLogo stores the logo and advances past the logo step.
func (o *Orchestrator) SetLogo(f *upload.File) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if f == nil {
		return
	}
	o.logo = f
	o.advance()
}

// SetTargetImage stores the target image and advances past the target step.
func (o *Orchestrator) SetTargetImage(f *upload.File) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if f == nil {
		return
	}
	o.target = f
	o.advance()
}

// SetPlacement records the logo placement description.
func (o *Orchestrator) SetPlacement(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.placement = s
}

// SetContact records the email and name entered in the contact dialog.
func (o *Orchestrator) SetContact(email, name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.email = email
	o.name = name
}

// SetPaymentDetails records the transaction id and, when non-nil, the receipt file.
func (o *Orchestrator) SetPaymentDetails(transactionID string, receipt *upload.File) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.transactionID = strings.TrimSpace(transactionID)
	if receipt != nil {
		o.paymentFile = receipt
	}
}

// Advance moves to the next step when the current step's input is present.
// It never moves past the placement step.
func (o *Orchestrator) Advance() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.advance()
}

// Retreat moves to the previous step, stopping at the first.
func (o *Orchestrator) Retreat() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.step > StepLogo {
		o.step--
	}
}

func (o *Orchestrator) advance() {
	if o.step < maxStep && o.stepComplete() {
		o.step++
	}
}

func (o *Orchestrator) stepComplete() bool {
	switch o.step {
	case StepLogo:
		return o.logo != nil
	case StepTargetImage:
		return o.target != nil
	default:
		return o.placement != ""
	}
}

// CanSubmit reports whether logo, target image, and placement are all present.
func (o *Orchestrator) CanSubmit() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.canSubmit()
}

func (o *Orchestrator) canSubmit() bool {
	return o.logo != nil && o.target != nil && o.placement != ""
}

// EmailInvalid reports whether a non-empty email fails validation.
func (o *Orchestrator) EmailInvalid() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.email != "" && !IsValidEmail(o.email)
}

// CanConfirmContact reports whether the email is valid and the name is not blank.
func (o *Orchestrator) CanConfirmContact() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.canConfirmContact()
}

func (o *Orchestrator) canConfirmContact() bool {
	return IsValidEmail(o.email) && strings.TrimSpace(o.name) != ""
}

// CanSubmitPayment reports whether a transaction id and receipt are present.
func (o *Orchestrator) CanSubmitPayment() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.canSubmitPayment()
}

func (o *Orchestrator) canSubmitPayment() bool {
	return o.transactionID != "" && o.paymentFile != nil
}

// BuyNow returns the external invoice URL. State is unchanged.
func (o *Orchestrator) BuyNow() string {
	return o.cfg.InvoiceURL
}

// fail records a user-facing message for err and returns it.
// The caller must hold o.mu.
func (o *Orchestrator) fail(err error) error {
	if ve, ok := err.(*ValidationError); ok {
		o.errorMessage = ve.Message
	}
	return err
}

func (o *Orchestrator) newReceipt() *ReceiptView {
	return &ReceiptView{
		ReceiptNumber: o.cfg.ReceiptNumber(),
		Date:          o.cfg.Now().UTC(),
		Item:          ReceiptItem,
	}
}

package wizard

import "github.com/JaimeStill/logomagic/internal/upload"

// FileInfo describes a selected file without its contents.
type FileInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func fileInfo(f *upload.File) *FileInfo {
	if f == nil {
		return nil
	}
	return &FileInfo{Name: f.Name, ContentType: f.ContentType, Size: f.Size()}
}

// View is an immutable snapshot of the orchestrator for rendering.
type View struct {
	Step        Step      `json:"step"`
	Logo        *FileInfo `json:"logo,omitempty"`
	TargetImage *FileInfo `json:"target_image,omitempty"`
	Placement   string    `json:"placement"`

	CanAdvance bool `json:"can_advance"`
	CanRetreat bool `json:"can_retreat"`
	CanSubmit  bool `json:"can_submit"`

	Email             string `json:"email"`
	Name              string `json:"name"`
	EmailInvalid      bool   `json:"email_invalid"`
	CanConfirmContact bool   `json:"can_confirm_contact"`

	TransactionID    string    `json:"transaction_id"`
	PaymentReceipt   *FileInfo `json:"payment_receipt,omitempty"`
	CanSubmitPayment bool      `json:"can_submit_payment"`

	Dialog       Dialog       `json:"dialog"`
	Loading      bool         `json:"loading"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Submission   *Submission  `json:"submission,omitempty"`
	Receipt      *ReceiptView `json:"receipt,omitempty"`
	InvoiceURL   string       `json:"invoice_url"`
}

// Snapshot returns the current state for the presentation layer.
func (o *Orchestrator) Snapshot() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	v := View{
		Step:              o.step,
		Logo:              fileInfo(o.logo),
		TargetImage:       fileInfo(o.target),
		Placement:         o.placement,
		CanAdvance:        o.step < maxStep && o.stepComplete(),
		CanRetreat:        o.step > StepLogo,
		CanSubmit:         o.canSubmit() && !o.loading,
		Email:             o.email,
		Name:              o.name,
		EmailInvalid:      o.email != "" && !IsValidEmail(o.email),
		CanConfirmContact: o.canConfirmContact() && !o.loading,
		TransactionID:     o.transactionID,
		PaymentReceipt:    fileInfo(o.paymentFile),
		CanSubmitPayment:  o.canSubmitPayment() && !o.loading,
		Dialog:            o.dialog,
		Loading:           o.loading,
		ErrorMessage:      o.errorMessage,
		InvoiceURL:        o.cfg.InvoiceURL,
	}

	if o.submission != nil {
		s := *o.submission
		v.Submission = &s
	}
	if o.receipt != nil {
		r := *o.receipt
		v.Receipt = &r
	}
	return v
}

// Open reports whether d is the open dialog. Templates use it to pick a modal.
func (v View) Open(d string) bool {
	return v.Dialog.String() == d
}

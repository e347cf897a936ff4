package wizard

import "fmt"

// Dialog is the single modal open over the wizard.
type Dialog int

const (
	DialogNone Dialog = iota
	DialogConfirmCost
	DialogContactInfo
	DialogPurchase
	DialogPaymentDetails
	DialogPaymentReported
	DialogReceipt
)

var dialogNames = [...]string{
	DialogNone:            "none",
	DialogConfirmCost:     "confirm-cost",
	DialogContactInfo:     "contact-info",
	DialogPurchase:        "purchase",
	DialogPaymentDetails:  "payment-details",
	DialogPaymentReported: "payment-reported",
	DialogReceipt:         "receipt",
}

func (d Dialog) String() string {
	if d < 0 || int(d) >= len(dialogNames) {
		return fmt.Sprintf("dialog(%d)", int(d))
	}
	return dialogNames[d]
}

func (d Dialog) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Dialog) UnmarshalText(text []byte) error {
	for i, name := range dialogNames {
		if name == string(text) {
			*d = Dialog(i)
			return nil
		}
	}
	return fmt.Errorf("unknown dialog %q", text)
}

// closesOnOutsideClick lists the dialogs dismissed by a click outside them.
func (d Dialog) closesOnOutsideClick() bool {
	return d == DialogConfirmCost || d == DialogPurchase
}

// transition moves from one dialog to another under the lock.
// The caller must hold o.mu.
func (o *Orchestrator) transition(from, to Dialog) error {
	if o.loading {
		return ErrBusy
	}
	if o.dialog != from {
		return fmt.Errorf("%w: %s is open, want %s", ErrInvalidTransition, o.dialog, from)
	}
	o.dialog = to
	return nil
}

// Submit opens the cost confirmation when logo, target image, and placement are present.
func (o *Orchestrator) Submit() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.loading {
		return ErrBusy
	}
	if o.dialog != DialogNone {
		return fmt.Errorf("%w: %s is open", ErrInvalidTransition, o.dialog)
	}

	o.errorMessage = ""
	switch {
	case o.logo == nil:
		return o.fail(&ValidationError{Field: "logo", Message: MsgLogoRequired})
	case o.target == nil:
		return o.fail(&ValidationError{Field: "target_image", Message: MsgTargetRequired})
	case o.placement == "":
		return o.fail(&ValidationError{Field: "placement", Message: MsgPlacementRequired})
	}

	o.dialog = DialogConfirmCost
	return nil
}

// ConfirmCost moves from the cost confirmation to the contact form.
func (o *Orchestrator) ConfirmCost() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transition(DialogConfirmCost, DialogContactInfo)
}

// ConfirmPaid moves from the purchase dialog to the payment details form.
func (o *Orchestrator) ConfirmPaid() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transition(DialogPurchase, DialogPaymentDetails)
}

// OpenPaymentReport moves from the purchase dialog to the payment report prompt.
func (o *Orchestrator) OpenPaymentReport() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transition(DialogPurchase, DialogPaymentReported)
}

// ReportPayment issues a receipt for a self-reported payment. Nothing is persisted.
func (o *Orchestrator) ReportPayment() (*ReceiptView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.transition(DialogPaymentReported, DialogReceipt); err != nil {
		return nil, err
	}

	o.receipt = o.newReceipt()
	o.logger.Info("payment reported", "email", o.email, "receipt_number", o.receipt.ReceiptNumber)

	rv := *o.receipt
	return &rv, nil
}

// DismissReceipt closes the receipt so another logo can be ordered.
func (o *Orchestrator) DismissReceipt() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transition(DialogReceipt, DialogNone)
}

// ClickOutside closes the cost confirmation or purchase dialog.
// Every other dialog stays open.
func (o *Orchestrator) ClickOutside() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.loading && o.dialog.closesOnOutsideClick() {
		o.dialog = DialogNone
	}
}

package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JaimeStill/logomagic/internal/docstore"
	"github.com/JaimeStill/logomagic/internal/upload"
)

type contactInput struct {
	logo, target *upload.File
	placement    string
	email, name  string
}

// ConfirmContact uploads the logo and target image, then writes the user record.
// On success the purchase dialog opens. On failure the contact dialog stays open,
// the generic upload message is shown, and wizard state is unchanged. Objects
// uploaded before a later failure are not removed.
func (o *Orchestrator) ConfirmContact(ctx context.Context) (*Submission, error) {
	in, err := o.beginContact()
	if err != nil {
		return nil, err
	}

	sub, err := o.submit(ctx, in)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.loading = false

	if err != nil {
		o.logger.Error("submission failed", "email", in.email, "error", err)
		o.errorMessage = MsgUploadFailed
		return nil, err
	}

	o.submission = sub
	o.errorMessage = ""
	o.dialog = DialogPurchase
	o.logger.Info("submission saved", "id", sub.ID, "email", sub.Email)

	cp := *sub
	return &cp, nil
}

func (o *Orchestrator) beginContact() (contactInput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.loading {
		return contactInput{}, ErrBusy
	}
	if o.dialog != DialogContactInfo {
		return contactInput{}, fmt.Errorf("%w: %s is open, want %s", ErrInvalidTransition, o.dialog, DialogContactInfo)
	}
	if !o.canConfirmContact() || strings.TrimSpace(o.placement) == "" {
		return contactInput{}, o.fail(&ValidationError{Field: "contact", Message: MsgContactRequired})
	}
	if o.logo == nil {
		return contactInput{}, o.fail(&ValidationError{Field: "logo", Message: MsgLogoRequired})
	}
	if o.target == nil {
		return contactInput{}, o.fail(&ValidationError{Field: "target_image", Message: MsgTargetRequired})
	}

	o.loading = true
	o.errorMessage = ""

	return contactInput{
		logo:      o.logo,
		target:    o.target,
		placement: o.placement,
		email:     o.email,
		name:      o.name,
	}, nil
}

func (o *Orchestrator) submit(ctx context.Context, in contactInput) (*Submission, error) {
	logoURL, err := o.store(ctx, upload.CategoryLogos, in.logo)
	if err != nil {
		return nil, err
	}

	targetURL, err := o.store(ctx, upload.CategoryTargetImages, in.target)
	if err != nil {
		return nil, err
	}

	id, err := o.records.Append(ctx, docstore.CollectionUsers, map[string]any{
		"email":          in.email,
		"name":           in.name,
		"logoPlacement":  in.placement,
		"logoUrl":        logoURL,
		"targetImageUrl": targetURL,
		"createdAt":      o.cfg.Now().UTC(),
	})
	if err != nil {
		return nil, &PersistError{Collection: docstore.CollectionUsers, Err: err}
	}

	return &Submission{
		ID:             id,
		Email:          in.email,
		Name:           in.name,
		Placement:      in.placement,
		LogoURL:        logoURL,
		TargetImageURL: targetURL,
	}, nil
}

func (o *Orchestrator) store(ctx context.Context, category string, f *upload.File) (string, error) {
	key, err := upload.Path(category, f.Name)
	if err != nil {
		return "", &upload.UploadError{Path: category + "/" + f.Name, Err: err}
	}

	url, err := o.uploader.Upload(ctx, f, key)
	if err != nil {
		var uploadErr *upload.UploadError
		if !errors.As(err, &uploadErr) {
			err = &upload.UploadError{Path: key, Err: err}
		}
		return "", err
	}
	return url, nil
}

type paymentInput struct {
	email         string
	transactionID string
	receipt       *upload.File
}

// SubmitPaymentDetails uploads the payment receipt and writes the payment record
// keyed by the session's email, then opens the receipt dialog. On failure the
// payment details dialog stays open with the generic payment message.
func (o *Orchestrator) SubmitPaymentDetails(ctx context.Context) (*ReceiptView, error) {
	in, err := o.beginPayment()
	if err != nil {
		return nil, err
	}

	err = o.pay(ctx, in)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.loading = false

	if err != nil {
		o.logger.Error("payment details failed", "email", in.email, "transaction_id", in.transactionID, "error", err)
		o.errorMessage = MsgPaymentFailed
		return nil, err
	}

	o.errorMessage = ""
	o.dialog = DialogReceipt
	o.receipt = o.newReceipt()
	o.logger.Info("payment details saved", "email", in.email, "receipt_number", o.receipt.ReceiptNumber)

	rv := *o.receipt
	return &rv, nil
}

func (o *Orchestrator) beginPayment() (paymentInput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.loading {
		return paymentInput{}, ErrBusy
	}
	if o.dialog != DialogPaymentDetails {
		return paymentInput{}, fmt.Errorf("%w: %s is open, want %s", ErrInvalidTransition, o.dialog, DialogPaymentDetails)
	}
	if !o.canSubmitPayment() {
		return paymentInput{}, o.fail(&ValidationError{Field: "payment", Message: MsgPaymentRequired})
	}

	o.loading = true
	o.errorMessage = ""

	return paymentInput{
		email:         o.email,
		transactionID: o.transactionID,
		receipt:       o.paymentFile,
	}, nil
}

func (o *Orchestrator) pay(ctx context.Context, in paymentInput) error {
	receiptURL, err := o.store(ctx, upload.CategoryReceipts, in.receipt)
	if err != nil {
		return err
	}

	_, err = o.records.Append(ctx, docstore.CollectionPayments, map[string]any{
		"userId":        in.email,
		"transactionId": in.transactionID,
		"receiptUrl":    receiptURL,
		"createdAt":     o.cfg.Now().UTC(),
	})
	if err != nil {
		return &PersistError{Collection: docstore.CollectionPayments, Err: err}
	}
	return nil
}

// Package intake exposes the wizard orchestrator over HTTP. Every request
// operates on the orchestrator bound to its session cookie. JSON clients
// receive the resulting snapshot; browser form posts are redirected back to
// the wizard page.
package intake

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/JaimeStill/logomagic/internal/sessions"
	"github.com/JaimeStill/logomagic/internal/upload"
	"github.com/JaimeStill/logomagic/internal/wizard"
	"github.com/JaimeStill/logomagic/pkg/handlers"
	"github.com/JaimeStill/logomagic/pkg/routes"
)

// multipartMemory is the part of a multipart body kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// formOverhead is added to the upload limit to allow for multipart framing and text fields.
const formOverhead = 1 << 20

type Handler struct {
	binder    *sessions.Binder
	logger    *slog.Logger
	appPath   string
	maxUpload int64
}

// NewHandler creates the intake handler. Form posts redirect to appPath;
// uploaded files larger than maxUpload bytes are rejected.
func NewHandler(binder *sessions.Binder, logger *slog.Logger, appPath string, maxUpload int64) *Handler {
	return &Handler{
		binder:    binder,
		logger:    logger.With("handler", "intake"),
		appPath:   strings.TrimSuffix(appPath, "/"),
		maxUpload: maxUpload,
	}
}

// Routes returns the intake endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/intake",
		Tags:        []string{"Intake"},
		Description: "Logo intake wizard bound to the session cookie",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Get, OpenAPI: Spec.Get},
			{Method: "POST", Pattern: "/logo", Handler: h.action(h.setLogo), OpenAPI: Spec.Logo},
			{Method: "POST", Pattern: "/target", Handler: h.action(h.setTarget), OpenAPI: Spec.Target},
			{Method: "POST", Pattern: "/placement", Handler: h.action(setPlacement), OpenAPI: Spec.Placement},
			{Method: "POST", Pattern: "/advance", Handler: h.action(advance), OpenAPI: Spec.Advance},
			{Method: "POST", Pattern: "/retreat", Handler: h.action(retreat), OpenAPI: Spec.Retreat},
			{Method: "POST", Pattern: "/submit", Handler: h.action(submit), OpenAPI: Spec.Submit},
			{Method: "POST", Pattern: "/confirm-cost", Handler: h.action(confirmCost), OpenAPI: Spec.ConfirmCost},
			{Method: "POST", Pattern: "/contact", Handler: h.action(setContact), OpenAPI: Spec.Contact},
			{Method: "POST", Pattern: "/confirm-contact", Handler: h.action(confirmContact), OpenAPI: Spec.ConfirmContact},
			{Method: "POST", Pattern: "/buy", Handler: h.Buy, OpenAPI: Spec.Buy},
			{Method: "POST", Pattern: "/paid", Handler: h.action(confirmPaid), OpenAPI: Spec.Paid},
			{Method: "POST", Pattern: "/payment-details", Handler: h.action(h.submitPayment), OpenAPI: Spec.PaymentDetails},
			{Method: "POST", Pattern: "/payment-report", Handler: h.action(openPaymentReport), OpenAPI: Spec.PaymentReport},
			{Method: "POST", Pattern: "/report-payment", Handler: h.action(reportPayment), OpenAPI: Spec.ReportPayment},
			{Method: "POST", Pattern: "/receipt/dismiss", Handler: h.action(dismissReceipt), OpenAPI: Spec.DismissReceipt},
			{Method: "POST", Pattern: "/outside-click", Handler: h.action(clickOutside), OpenAPI: Spec.OutsideClick},
		},
		Schemas: Spec.Schemas(),
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o := h.binder.Orchestrator(w, r)
	if handlers.WantsHTML(r) {
		handlers.SeeOther(w, r, h.appPath+"/")
		return
	}
	handlers.RespondJSON(w, http.StatusOK, o.Snapshot())
}

// Buy returns the invoice URL, or sends a browser straight to it.
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	o := h.binder.Orchestrator(w, r)
	invoice := o.BuyNow()

	if handlers.WantsHTML(r) {
		http.Redirect(w, r, invoice, http.StatusSeeOther)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"invoice_url": invoice})
}

type operation func(o *wizard.Orchestrator, r *http.Request) error

// action runs op against the session orchestrator and writes the outcome.
func (h *Handler) action(op operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)
		o := h.binder.Orchestrator(w, r)

		if err := parseForm(r); err != nil {
			h.fail(w, r, o, err)
			return
		}
		if err := op(o, r); err != nil {
			h.fail(w, r, o, err)
			return
		}

		if handlers.WantsHTML(r) {
			handlers.SeeOther(w, r, h.appPath+"/")
			return
		}
		handlers.RespondJSON(w, http.StatusOK, o.Snapshot())
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, o *wizard.Orchestrator, err error) {
	status := MapHTTPStatus(err)
	public := publicError(err, o.Snapshot())

	if !handlers.WantsHTML(r) {
		handlers.RespondError(w, h.logger, status, public)
		return
	}

	h.logger.Warn("form action failed", "path", r.URL.Path, "status", status, "error", err)
	target := h.appPath + "/"
	if !surfaced(err) {
		target += "?error=" + url.QueryEscape(public.Error())
	}
	handlers.SeeOther(w, r, target)
}

// surfaced reports whether the wizard snapshot already carries a message for err.
func surfaced(err error) bool {
	var (
		validationErr *wizard.ValidationError
		persistErr    *wizard.PersistError
		uploadErr     *upload.UploadError
	)
	return errors.As(err, &validationErr) || errors.As(err, &persistErr) || errors.As(err, &uploadErr)
}

// publicError hides remote failure causes behind the snapshot's generic message.
func publicError(err error, view wizard.View) error {
	var (
		persistErr *wizard.PersistError
		uploadErr  *upload.UploadError
	)
	if (errors.As(err, &persistErr) || errors.As(err, &uploadErr)) && view.ErrorMessage != "" {
		return errors.New(view.ErrorMessage)
	}
	return err
}

func parseForm(r *http.Request) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return upload.ErrFileTooLarge
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedForm, err)
	}
	return nil
}

func (h *Handler) formFile(r *http.Request, field string, validate func(*upload.File) error) (*upload.File, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, ErrMissingFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedForm, err)
	}
	file.Close()

	f, err := upload.ReadFile(header, h.maxUpload)
	if err != nil {
		return nil, err
	}
	if err := validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (h *Handler) setLogo(o *wizard.Orchestrator, r *http.Request) error {
	f, err := h.formFile(r, "file", upload.ValidateImage)
	if err != nil {
		return err
	}
	o.SetLogo(f)
	return nil
}

func (h *Handler) setTarget(o *wizard.Orchestrator, r *http.Request) error {
	f, err := h.formFile(r, "file", upload.ValidateImage)
	if err != nil {
		return err
	}
	o.SetTargetImage(f)
	return nil
}

// submitPayment records the transaction id and, when attached, the receipt,
// then runs the payment pipeline. A receipt chosen in an earlier post is kept.
func (h *Handler) submitPayment(o *wizard.Orchestrator, r *http.Request) error {
	receipt, err := h.formFile(r, "receipt", upload.ValidateReceipt)
	if err != nil && !errors.Is(err, ErrMissingFile) {
		return err
	}

	o.SetPaymentDetails(r.FormValue("transaction_id"), receipt)
	_, err = o.SubmitPaymentDetails(r.Context())
	return err
}

func setPlacement(o *wizard.Orchestrator, r *http.Request) error {
	o.SetPlacement(r.FormValue("placement"))
	return nil
}

func advance(o *wizard.Orchestrator, r *http.Request) error {
	o.Advance()
	return nil
}

func retreat(o *wizard.Orchestrator, r *http.Request) error {
	o.Retreat()
	return nil
}

// submit accepts the placement text in the same post as the submit button.
func submit(o *wizard.Orchestrator, r *http.Request) error {
	if _, ok := r.Form["placement"]; ok {
		o.SetPlacement(r.FormValue("placement"))
	}
	return o.Submit()
}

func confirmCost(o *wizard.Orchestrator, r *http.Request) error {
	return o.ConfirmCost()
}

func setContact(o *wizard.Orchestrator, r *http.Request) error {
	o.SetContact(r.FormValue("email"), r.FormValue("name"))
	return nil
}

// confirmContact accepts the contact fields in the same post as the confirm button.
func confirmContact(o *wizard.Orchestrator, r *http.Request) error {
	if _, ok := r.Form["email"]; ok {
		o.SetContact(r.FormValue("email"), r.FormValue("name"))
	}
	_, err := o.ConfirmContact(r.Context())
	return err
}

func confirmPaid(o *wizard.Orchestrator, r *http.Request) error {
	return o.ConfirmPaid()
}

func openPaymentReport(o *wizard.Orchestrator, r *http.Request) error {
	return o.OpenPaymentReport()
}

func reportPayment(o *wizard.Orchestrator, r *http.Request) error {
	_, err := o.ReportPayment()
	return err
}

func dismissReceipt(o *wizard.Orchestrator, r *http.Request) error {
	return o.DismissReceipt()
}

func clickOutside(o *wizard.Orchestrator, r *http.Request) error {
	o.ClickOutside()
	return nil
}

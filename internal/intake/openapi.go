package intake

import "github.com/JaimeStill/logomagic/pkg/openapi"

type spec struct {
	Get            *openapi.Operation
	Logo           *openapi.Operation
	Target         *openapi.Operation
	Placement      *openapi.Operation
	Advance        *openapi.Operation
	Retreat        *openapi.Operation
	Submit         *openapi.Operation
	ConfirmCost    *openapi.Operation
	Contact        *openapi.Operation
	ConfirmContact *openapi.Operation
	Buy            *openapi.Operation
	Paid           *openapi.Operation
	PaymentDetails *openapi.Operation
	PaymentReport  *openapi.Operation
	ReportPayment  *openapi.Operation
	DismissReceipt *openapi.Operation
	OutsideClick   *openapi.Operation
}

func formBody(contentType string, props map[string]*openapi.Property, required ...string) *openapi.RequestBody {
	return &openapi.RequestBody{
		Required: len(required) > 0,
		Content: map[string]*openapi.MediaType{
			contentType: {
				Schema: &openapi.Schema{
					Type:       "object",
					Properties: props,
					Required:   required,
				},
			},
		},
	}
}

func viewResponses(extra map[int]*openapi.Response) map[int]*openapi.Response {
	responses := map[int]*openapi.Response{
		200: openapi.ResponseJSON("Wizard state after the action", "WizardView"),
		303: {Description: "Form post redirected to the wizard page"},
	}
	for code, r := range extra {
		responses[code] = r
	}
	return responses
}

func transition(summary, description string) *openapi.Operation {
	return &openapi.Operation{
		Summary:     summary,
		Description: description,
		Responses: viewResponses(map[int]*openapi.Response{
			409: openapi.ResponseRef("Conflict"),
		}),
	}
}

var fileUpload = &openapi.Operation{
	RequestBody: openapi.RequestBodyMultipart("file", "Image or video file"),
	Responses: viewResponses(map[int]*openapi.Response{
		400: openapi.ResponseRef("BadRequest"),
		413: {Description: "File exceeds the upload limit"},
		415: {Description: "File is not an image or video"},
	}),
}

var Spec = spec{
	Get: &openapi.Operation{
		Summary:     "Get wizard state",
		Description: "Returns the session's wizard snapshot, starting a session when none exists",
		Responses:   viewResponses(nil),
	},
	Logo:   withSummary(fileUpload, "Select logo", "Stores the logo and advances past the logo step"),
	Target: withSummary(fileUpload, "Select target image", "Stores the target image and advances past the target step"),
	Placement: &openapi.Operation{
		Summary: "Set placement description",
		RequestBody: formBody("application/x-www-form-urlencoded", map[string]*openapi.Property{
			"placement": {Type: "string", Example: "top-left, 100px"},
		}, "placement"),
		Responses: viewResponses(nil),
	},
	Advance: &openapi.Operation{
		Summary:     "Next step",
		Description: "Moves forward when the current step is complete; otherwise unchanged",
		Responses:   viewResponses(nil),
	},
	Retreat: &openapi.Operation{
		Summary:   "Previous step",
		Responses: viewResponses(nil),
	},
	Submit: &openapi.Operation{
		Summary:     "Submit wizard",
		Description: "Opens the cost confirmation when logo, target image, and placement are present",
		RequestBody: formBody("application/x-www-form-urlencoded", map[string]*openapi.Property{
			"placement": {Type: "string", Description: "Optional; replaces the placement before submitting"},
		}),
		Responses: viewResponses(map[int]*openapi.Response{
			409: openapi.ResponseRef("Conflict"),
			422: {Description: "Logo, target image, or placement missing"},
		}),
	},
	ConfirmCost: transition("Confirm cost", "Moves from the cost confirmation to the contact form"),
	Contact: &openapi.Operation{
		Summary: "Set contact details",
		RequestBody: formBody("application/x-www-form-urlencoded", map[string]*openapi.Property{
			"email": {Type: "string", Format: "email"},
			"name":  {Type: "string"},
		}, "email", "name"),
		Responses: viewResponses(nil),
	},
	ConfirmContact: &openapi.Operation{
		Summary:     "Confirm contact and upload",
		Description: "Uploads the logo and target image and saves the user record, then opens the purchase dialog",
		RequestBody: formBody("application/x-www-form-urlencoded", map[string]*openapi.Property{
			"email": {Type: "string", Format: "email", Description: "Optional; replaces the contact email"},
			"name":  {Type: "string", Description: "Optional; replaces the contact name"},
		}),
		Responses: viewResponses(map[int]*openapi.Response{
			409: openapi.ResponseRef("Conflict"),
			422: {Description: "Contact details or images missing"},
			502: {Description: "Upload or save failed"},
		}),
	},
	Buy: &openapi.Operation{
		Summary:     "Buy credits",
		Description: "Returns the invoice URL; browsers are redirected to it",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Invoice link", "InvoiceLink"),
			303: {Description: "Redirect to the invoice"},
		},
	},
	Paid: transition("Payment completed", "Moves from the purchase dialog to the payment details form"),
	PaymentDetails: &openapi.Operation{
		Summary:     "Submit payment details",
		Description: "Uploads the payment receipt and saves the payment record, then opens the receipt",
		RequestBody: formBody("multipart/form-data", map[string]*openapi.Property{
			"transaction_id": {Type: "string", Example: "TXN123"},
			"receipt":        {Type: "string", Format: "binary", Description: "Image or PDF receipt; optional when chosen earlier"},
		}, "transaction_id"),
		Responses: viewResponses(map[int]*openapi.Response{
			409: openapi.ResponseRef("Conflict"),
			415: {Description: "Receipt is not an image or PDF"},
			422: {Description: "Transaction id or receipt missing"},
			502: {Description: "Upload or save failed"},
		}),
	},
	PaymentReport:  transition("Report payment", "Moves from the purchase dialog to the payment report prompt"),
	ReportPayment:  transition("Confirm reported payment", "Issues a receipt for a self-reported payment"),
	DismissReceipt: transition("Dismiss receipt", "Closes the receipt so another logo can be ordered"),
	OutsideClick: &openapi.Operation{
		Summary:     "Click outside dialog",
		Description: "Closes the cost confirmation or purchase dialog; other dialogs stay open",
		Responses:   viewResponses(nil),
	},
}

func withSummary(op *openapi.Operation, summary, description string) *openapi.Operation {
	cp := *op
	cp.Summary = summary
	cp.Description = description
	return &cp
}

func (spec) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"WizardView": {
			Type: "object",
			Properties: map[string]*openapi.Property{
				"step":                {Type: "integer", Description: "Current step, 0 to 2"},
				"logo":                {Type: "object", Description: "Selected logo file"},
				"target_image":        {Type: "object", Description: "Selected target image file"},
				"placement":           {Type: "string"},
				"can_advance":         {Type: "boolean"},
				"can_retreat":         {Type: "boolean"},
				"can_submit":          {Type: "boolean"},
				"email":               {Type: "string"},
				"name":                {Type: "string"},
				"email_invalid":       {Type: "boolean"},
				"can_confirm_contact": {Type: "boolean"},
				"transaction_id":      {Type: "string"},
				"payment_receipt":     {Type: "object", Description: "Selected receipt file"},
				"can_submit_payment":  {Type: "boolean"},
				"dialog": {
					Type: "string",
					Enum: []string{"none", "confirm-cost", "contact-info", "purchase", "payment-details", "payment-reported", "receipt"},
				},
				"loading":       {Type: "boolean"},
				"error_message": {Type: "string"},
				"submission":    {Type: "object", Description: "Saved submission with uploaded file URLs"},
				"receipt":       {Type: "object", Description: "Receipt number, date, and item"},
				"invoice_url":   {Type: "string", Format: "uri"},
			},
		},
		"InvoiceLink": {
			Type: "object",
			Properties: map[string]*openapi.Property{
				"invoice_url": {Type: "string", Format: "uri"},
			},
		},
	}
}

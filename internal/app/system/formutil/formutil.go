// Package formutil provides helpers for form re-rendering with validation errors.
//
// When a form submission fails validation, the form should be re-rendered with:
// - The user's previously entered values (echoed back)
// - An error message explaining what went wrong
// - All the context data needed for the form (category list, interns, etc.)
//
// Example usage:
//
//	type activityFormData struct {
//		formutil.Base
//		Category    string
//		Description string
//	}
//
//	data := activityFormData{Category: cat, Description: desc}
//	formutil.SetBase(&data.Base, r, "Yeni Aktivite", "/activities")
//	data.SetResult(res)
//	templates.Render(w, r, "activity_form", data)
package formutil

import (
	"net/http"

	"github.com/dalemusser/stajyerlog/internal/app/system/inputval"
	"github.com/dalemusser/stajyerlog/internal/app/system/viewdata"
)

// Base contains common fields for form pages that can be embedded in form data structs.
type Base struct {
	viewdata.BaseVM
	Error       string
	FieldErrors map[string]string
}

// SetBase populates the page fields from the request context.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, title, backDefault)
}

// SetError sets the form-level error message.
func (b *Base) SetError(msg string) {
	b.Error = msg
}

// SetResult copies validation failures onto the form. The first message
// becomes the form-level error; each field keeps its own first message.
func (b *Base) SetResult(res *inputval.Result) {
	if res == nil || !res.HasErrors() {
		return
	}
	b.Error = res.First()
	b.FieldErrors = make(map[string]string, len(res.Errors))
	for _, e := range res.Errors {
		if e.Field == "" {
			continue
		}
		if _, seen := b.FieldErrors[e.Field]; !seen {
			b.FieldErrors[e.Field] = e.Message
		}
	}
}

// FieldError returns the message for field, or "".
func (b Base) FieldError(field string) string {
	return b.FieldErrors[field]
}

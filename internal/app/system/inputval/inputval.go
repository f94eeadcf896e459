// Package inputval validates form input and carries Turkish error messages
// back to the re-rendered form. Rules run through waffle's validate package
// with a registered "tr" message locale.
package inputval

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/waffle/pantry/validate"
)

// Messages shown next to a form.
const (
	MsgNameShort         = "İsim en az 2 karakter olmalıdır"
	MsgEmailInvalid      = "Geçerli bir e-posta adresi giriniz"
	MsgPasswordShort     = "Şifre en az 8 karakter olmalıdır"
	MsgPasswordMismatch  = "Şifreler eşleşmiyor"
	MsgFieldsRequired    = "Lütfen tüm alanları doldurun"
	MsgCategoryRequired  = "Kategori seçiniz"
	MsgDescriptionShort  = "Açıklama en az 10 karakter olmalıdır"
	MsgDateInvalid       = "Geçerli bir tarih seçiniz"
	MsgDateOutOfRange    = "Tarih 1 Ocak 2024 ile bugün arasında olmalıdır"
	MsgCurrentPassword   = "Mevcut şifrenizi giriniz"
	MsgInvalidActivityID = "Geçersiz aktivite"
)

// Bounds.
const (
	MinNameLen        = 2
	MinPasswordLen    = 8
	MinDescriptionLen = 10
	DateLayout        = "2006-01-02"
)

// EarliestActivityDate is the first day an activity may be logged for.
var EarliestActivityDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Rule tags registered on the validator. Each one fails with the message
// key of the same name.
const (
	ruleName        = "person_name"
	ruleEmail       = "mail"
	rulePassword    = "password"
	ruleDescription = "description"
	ruleCurrent     = "current"
)

var trMessages = map[string]string{
	"required":      MsgFieldsRequired,
	"eqfield":       MsgPasswordMismatch,
	ruleName:        MsgNameShort,
	ruleEmail:       MsgEmailInvalid,
	rulePassword:    MsgPasswordShort,
	ruleDescription: MsgDescriptionShort,
	ruleCurrent:     MsgCurrentPassword,
}

var validator = newValidator()

func newValidator() *validate.Validator {
	msgs := validate.NewMessageProvider()
	msgs.RegisterLocale("tr", trMessages)
	msgs.SetLocale("tr")
	msgs.SetFallback("tr")

	v := validate.New(validate.WithMessages(msgs))
	v.RegisterRuleFunc(ruleName, stringRule(IsValidName), ruleName)
	v.RegisterRuleFunc(ruleEmail, stringRule(IsValidEmail), ruleEmail)
	v.RegisterRuleFunc(rulePassword, stringRule(IsValidPassword), rulePassword)
	v.RegisterRuleFunc(ruleDescription, stringRule(IsValidDescription), ruleDescription)
	v.RegisterRuleFunc(ruleCurrent, stringRule(func(s string) bool { return s != "" }), ruleCurrent)
	return v
}

func stringRule(fn func(string) bool) func(any) bool {
	return func(v any) bool {
		s, _ := v.(string)
		return fn(s)
	}
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Result collects errors in the order rules ran.
type Result struct {
	Errors []FieldError
}

// check runs the tagged rules of form and collects every failure.
func check(form any) *Result {
	res := &Result{}
	err := validator.Struct(form)
	if err == nil {
		return res
	}
	var errs validate.Errors
	if !errors.As(err, &errs) {
		res.Add("", err.Error())
		return res
	}
	for _, e := range errs {
		res.Add(e.Field, e.Message)
	}
	return res
}

// Add records a failure for field.
func (r *Result) Add(field, msg string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: msg})
}

// Check records msg for field when ok is false.
func (r *Result) Check(ok bool, field, msg string) {
	if !ok {
		r.Add(field, msg)
	}
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// For returns the first message for field, or "".
func (r *Result) For(field string) string {
	for _, e := range r.Errors {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// IsValidName reports whether name has at least MinNameLen characters.
func IsValidName(name string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(name)) >= MinNameLen
}

// IsValidEmail requires an "@" with text on both sides and no whitespace.
// Unlike validate's built-in email rule it accepts non-ASCII local parts
// and intranet domains.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	return ok && local != "" && domain != "" && !strings.ContainsAny(email, " \t")
}

// IsValidPassword reports whether pw has at least MinPasswordLen characters.
func IsValidPassword(pw string) bool {
	return utf8.RuneCountInString(pw) >= MinPasswordLen
}

// IsValidDescription reports whether desc has at least MinDescriptionLen characters.
func IsValidDescription(desc string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(desc)) >= MinDescriptionLen
}

// ParseDate parses a yyyy-MM-dd form value as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsDateInRange reports whether day lies between EarliestActivityDate and
// the calendar day of now, inclusive, both read in day's location.
func IsDateInRange(day, now time.Time) bool {
	loc := day.Location()
	earliest := time.Date(EarliestActivityDate.Year(), EarliestActivityDate.Month(), EarliestActivityDate.Day(), 0, 0, 0, 0, loc)
	n := now.In(loc)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	return !day.Before(earliest) && !day.After(today)
}

type credentialsForm struct {
	Email    string `json:"email" validate:"mail"`
	Password string `json:"password" validate:"password"`
}

// Credentials validates a login form.
func Credentials(email, password string) *Result {
	return check(credentialsForm{Email: email, Password: password})
}

type registrationForm struct {
	Name     string `json:"name" validate:"person_name"`
	Email    string `json:"email" validate:"mail"`
	Password string `json:"password" validate:"password"`
	Confirm  string `json:"confirm" validate:"eqfield=Password"`
}

// Registration validates the sign-up form in the order the fields appear.
func Registration(name, email, password, confirm string) *Result {
	return check(registrationForm{Name: name, Email: email, Password: password, Confirm: confirm})
}

type nameForm struct {
	Name string `json:"name" validate:"person_name"`
}

// Name validates the settings name form.
func Name(name string) *Result {
	return check(nameForm{Name: name})
}

type passwordChangeForm struct {
	Current  string `json:"current" validate:"current"`
	Password string `json:"password" validate:"password"`
	Confirm  string `json:"confirm" validate:"eqfield=Password"`
}

// PasswordChange validates the settings password form.
func PasswordChange(current, next, confirm string) *Result {
	return check(passwordChangeForm{Current: current, Password: next, Confirm: confirm})
}

type activityForm struct {
	Category    string `json:"category" validate:"required"`
	Description string `json:"description" validate:"required,description"`
	Date        string `json:"date" validate:"required"`
}

// Activity validates an activity form. It returns the parsed date, valid
// only when the result has no errors. A blank field reports only
// MsgFieldsRequired.
func Activity(category, description, date string, loc *time.Location, now time.Time) (time.Time, *Result) {
	res := check(activityForm{Category: category, Description: description, Date: date})
	for _, e := range res.Errors {
		if e.Message == MsgFieldsRequired {
			return time.Time{}, &Result{Errors: []FieldError{{Message: MsgFieldsRequired}}}
		}
	}

	day, ok := ParseDate(date, loc)
	if !ok {
		res.Add("date", MsgDateInvalid)
		return time.Time{}, res
	}
	res.Check(IsDateInRange(day, now), "date", MsgDateOutOfRange)
	return day, res
}

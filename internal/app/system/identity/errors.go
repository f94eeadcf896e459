// internal/app/system/identity/errors.go
package identity

import (
	"errors"
	"fmt"
)

// Error is a failure with a stable code and a message safe to show users.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrLoginFailed       = &Error{Code: "login_failed", Message: "Giriş başarısız"}
	ErrEmailTaken        = &Error{Code: "email_taken", Message: "Bu e-posta adresi zaten kayıtlı"}
	ErrRegisterFailed    = &Error{Code: "register_failed", Message: "Kayıt başarısız"}
	ErrLogoutFailed      = &Error{Code: "logout_failed", Message: "Çıkış başarısız"}
	ErrNoSession         = &Error{Code: "no_session", Message: "Kullanıcı bulunamadı"}
	ErrProfileNotFound   = &Error{Code: "profile_not_found", Message: "Profil bulunamadı"}
	ErrUpdateNameFailed  = &Error{Code: "update_name_failed", Message: "Profil güncellenemedi"}
	ErrWrongPassword     = &Error{Code: "wrong_password", Message: "Mevcut şifre hatalı"}
	ErrUpdatePassFailed  = &Error{Code: "update_password_failed", Message: "Şifre güncellenemedi"}
	ErrListInternsFailed = &Error{Code: "list_interns_failed", Message: "Stajyerler getirilemedi"}
)

// GenericMessage is shown when an error carries no user message.
const GenericMessage = "Bir hata oluştu"

// Message returns the user-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return GenericMessage
}

// Code returns the stable code for err, or "" when err is not an identity error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// wrap joins a sentinel with the low-level cause so errors.Is matches both.
func wrap(sentinel *Error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

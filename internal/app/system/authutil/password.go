// internal/app/system/authutil/password.go
package authutil

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores bytes past 72
)

var (
	ErrPasswordTooShort = errors.New("Şifre en az 8 karakter olmalıdır")
	ErrPasswordTooLong  = errors.New("Şifre en fazla 72 karakter olabilir")
	ErrPasswordCommon   = errors.New("Bu şifre çok yaygın, lütfen başka bir şifre seçin")
)

var commonPasswords = map[string]struct{}{
	"12345678":  {},
	"123456789": {},
	"password":  {},
	"password1": {},
	"qwertyui":  {},
	"iloveyou":  {},
	"11111111":  {},
	"sifre123":  {},
	"şifre123":  {},
	"parola123": {},
}

// ValidatePassword checks length and rejects a short list of common passwords.
func ValidatePassword(pw string) error {
	n := utf8.RuneCountInString(pw)
	if n < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, bad := commonPasswords[strings.ToLower(pw)]; bad {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules is the hint shown under password fields.
func PasswordRules() string {
	return "En az 8 karakter. Yaygın şifreler kabul edilmez."
}

// HashPassword returns a bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash.
func CheckPassword(pw, hash string) bool {
	if pw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

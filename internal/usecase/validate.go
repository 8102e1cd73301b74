package usecase

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/Discdoor/dd-auth/internal/infra/config"
)

var (
	emailPattern        = regexp.MustCompile(`(?i)^[A-Z0-9_!#$%&'*+/=?` + "`" + `{|}~^.-]+@[A-Z0-9.-]+$`)
	discriminantPattern = regexp.MustCompile(`^[0-9]{4}$`)
)

// validateUsername enforces the configured username length window.
func validateUsername(username string, cfg config.AccountSettings) error {
	if len(username) < cfg.UsernameMinLength || len(username) > cfg.UsernameMaxLength {
		return fmt.Errorf("%w: username must be between %d and %d characters", ErrValidation, cfg.UsernameMinLength, cfg.UsernameMaxLength)
	}
	return nil
}

// validatePassword enforces the configured password length window.
func validatePassword(password string, cfg config.AccountSettings) error {
	if len(password) < cfg.PasswordMinLength || len(password) > cfg.PasswordMaxLength {
		return fmt.Errorf("%w: password must be between %d and %d characters", ErrValidation, cfg.PasswordMinLength, cfg.PasswordMaxLength)
	}
	return nil
}

// validateEmail checks shape and the configured length ceiling.
func validateEmail(email string, cfg config.AccountSettings) error {
	if email == "" || len(email) > cfg.EmailMaxLength {
		return fmt.Errorf("%w: email must be between 1 and %d characters", ErrValidation, cfg.EmailMaxLength)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	return nil
}

// validateDiscriminant checks the four digit zero padded form.
func validateDiscriminant(discriminant string) error {
	if !discriminantPattern.MatchString(discriminant) {
		return fmt.Errorf("%w: discriminant must be four digits", ErrValidation)
	}
	return nil
}

// validateHTTPURL accepts absolute http or https URLs only.
func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: url must be an absolute http(s) address", ErrValidation)
	}
	return nil
}

package security

import (
	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordStrength scores a candidate password from 0 (trivially guessable)
// to 4. Advisory only: length rules alone gate account creation, but weak
// scores are logged and surfaced to clients as a hint.
func PasswordStrength(password string, userInputs ...string) int {
	if password == "" {
		return 0
	}
	return zxcvbn.PasswordStrength(password, userInputs).Score
}

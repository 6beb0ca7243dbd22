package identity

import (
	"fmt"
	"strings"

	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
)

// Normalize strips every non-digit from a CPF and returns the bare eleven
// digits. Only the digit count is checked here; odd separators are fine.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 11 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cpf must have eleven digits")
	}
	return digits, nil
}

// Format renders eleven bare digits in the 000.000.000-00 shape.
func Format(digits string) string {
	if len(digits) != 11 {
		return digits
	}
	return fmt.Sprintf("%s.%s.%s-%s", digits[0:3], digits[3:6], digits[6:9], digits[9:11])
}

// Validate checks the CPF checksum. It accepts formatted or bare input and
// returns the normalized digits on success.
func Validate(raw string) (string, error) {
	digits, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	if allIdentical(digits) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cpf checksum is invalid")
	}
	if checkDigit(digits, 9) != int(digits[9]-'0') || checkDigit(digits, 10) != int(digits[10]-'0') {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cpf checksum is invalid")
	}
	return digits, nil
}

// checkDigit computes the verifier at position pos (9 or 10) from the
// preceding digits. The weight for the first digit is pos+1 and decreases
// to 2; the verifier is 11 minus the weighted sum mod 11, with results of
// ten or eleven mapping to zero.
func checkDigit(digits string, pos int) int {
	sum := 0
	for i := 0; i < pos; i++ {
		sum += int(digits[i]-'0') * (pos + 1 - i)
	}
	d := 11 - sum%11
	if d >= 10 {
		return 0
	}
	return d
}

func allIdentical(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

package credentials

import (
	"crypto/rand"
	"math/big"
	"strings"

	"dicteeclash/internal/morph"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ShareCodeLength is the number of characters in a list share code
const ShareCodeLength = 6

// GenerateShareCode generates a random uppercase alphanumeric list code
func GenerateShareCode() (string, error) {
	return randomString(codeAlphabet, ShareCodeLength)
}

// GenerateStudentCode generates a code in the format "NAME-XXXX", where NAME
// is the first five letters of the student's name without accents.
func GenerateStudentCode(name string) (string, error) {
	suffix, err := randomString(codeAlphabet, 4)
	if err != nil {
		return "", err
	}
	return StudentCodePrefix(name) + "-" + suffix, nil
}

// StudentCodePrefix returns the NAME part of a student code. Names without
// any latin letter fall back to "ELEVE".
func StudentCodePrefix(name string) string {
	folded := strings.ToUpper(morph.Normalize(name))
	var b strings.Builder
	for _, r := range folded {
		if b.Len() == 5 {
			break
		}
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "ELEVE"
	}
	return b.String()
}

// NormalizeCode uppercases and trims a user-typed code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func randomString(alphabet string, n int) (string, error) {
	out := make([]byte, n)
	limit := big.NewInt(int64(len(alphabet)))
	for i := range out {
		num, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[num.Int64()]
	}
	return string(out), nil
}

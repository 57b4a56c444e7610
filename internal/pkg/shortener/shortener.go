package shortener

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	gosimpleslug "github.com/gosimple/slug"
)

const (
	// 8 random bytes hex-encoded: a 16 character one-time password.
	passwordBytes = 8
	// 2 random bytes hex-encoded: the 4 character slug suffix.
	slugSuffixBytes = 2

	fallbackSlugBase = "corretor"
)

// RandomPassword generates the one-time credential mailed to a freshly
// provisioned corretor. The email is the only delivery channel; there is no
// resend path, a lost credential needs a manual reset.
func RandomPassword() (string, error) {
	return randomHex(passwordBytes)
}

// MakeSlug builds the subdomain slug for a corretor site: the name (or the
// email, or a fixed fallback) lowercased, transliterated and hyphenated,
// plus a short random suffix. Uniqueness is probabilistic; the unique index
// on corretores.slug is the real guard against the rare collision.
func MakeSlug(nome, email string) (string, error) {
	base := strings.TrimSpace(nome)
	if base == "" {
		base = strings.TrimSpace(email)
	}
	if base == "" {
		base = fallbackSlugBase
	}

	s := gosimpleslug.Make(base)
	if s == "" {
		s = fallbackSlugBase
	}

	suffix, err := randomHex(slugSuffixBytes)
	if err != nil {
		return "", err
	}
	return s + "-" + suffix, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read secure random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

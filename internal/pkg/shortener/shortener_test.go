package shortener

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*-[0-9a-f]{4}$`)

func TestMakeSlug_AccentStripping(t *testing.T) {
	got, err := MakeSlug("João Silva", "x@y.com")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "joao-silva-"), "slug %q should start with joao-silva-", got)
	assert.Regexp(t, slugPattern, got)
}

func TestMakeSlug_SuffixVaries(t *testing.T) {
	a, err := MakeSlug("João Silva", "x@y.com")
	assert.NoError(t, err)
	b, err := MakeSlug("João Silva", "x@y.com")
	assert.NoError(t, err)
	assert.NotEqual(t, a, b, "two slugs for identical input should differ in suffix")
}

func TestMakeSlug_Fallbacks(t *testing.T) {
	fromEmail, err := MakeSlug("", "maria@example.com")
	assert.NoError(t, err)
	assert.Regexp(t, slugPattern, fromEmail)
	assert.NotContains(t, fromEmail, "@")

	fallback, err := MakeSlug("", "")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(fallback, "corretor-"))
}

func TestRandomPassword(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		pw, err := RandomPassword()
		assert.NoError(t, err)
		assert.Len(t, pw, 16)
		assert.Regexp(t, `^[0-9a-f]{16}$`, pw)
		if _, dup := seen[pw]; dup {
			t.Fatalf("generated duplicate password %q", pw)
		}
		seen[pw] = struct{}{}
	}
}

package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "lamp-01", SanitizeString("  lamp-01  ", 64))
	assert.Equal(t, "abc", SanitizeString("abcdef", 3))
	assert.Equal(t, "abcdef", SanitizeString("abcdef", 0))
	assert.Equal(t, "", SanitizeString("   ", 64))
}

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePathName(t *testing.T) {
	assert.Equal(t, "my_clip_final.mp4", SanitizePathName(`my clip:final.mp4`))
	assert.Equal(t, "a_b_c", SanitizePathName(`a\b/c`))
	assert.Equal(t, "plain.mp4", SanitizePathName("plain.mp4"))
	// runs of unsafe characters collapse to a single underscore
	assert.Equal(t, "a_b", SanitizePathName(`a  ::  b`))
}

func TestSanitizeFormatToken(t *testing.T) {
	assert.Equal(t, "9x16", SanitizeFormatToken("9:16"))
	assert.Equal(t, "1x1", SanitizeFormatToken("1:1"))
	assert.Equal(t, "169", SanitizeFormatToken("169"))
}

func TestGenerateRandStringWithUpperLowerNum(t *testing.T) {
	s := GenerateRandStringWithUpperLowerNum(16)
	assert.Len(t, s, 16)
	for _, c := range s {
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		assert.True(t, ok, "unexpected character %q", c)
	}
	assert.NotEqual(t, GenerateRandStringWithUpperLowerNum(16), GenerateRandStringWithUpperLowerNum(16))
}

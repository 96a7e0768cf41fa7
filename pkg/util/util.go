package util

import (
	"math/rand"
	"regexp"
	"strings"
)

var unsafePathChars = regexp.MustCompile(`[\\/:*?"<>|=\s]+`)

// SanitizePathName strips characters that break file paths or ffmpeg args.
func SanitizePathName(name string) string {
	return unsafePathChars.ReplaceAllString(name, "_")
}

// SanitizeFormatToken converts an aspect token like "9:16" into a string
// safe to embed in file names ("9x16").
func SanitizeFormatToken(format string) string {
	return strings.ReplaceAll(format, ":", "x")
}

const randCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandStringWithUpperLowerNum returns a random alphanumeric string.
func GenerateRandStringWithUpperLowerNum(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = randCharset[rand.Intn(len(randCharset))]
	}
	return string(b)
}

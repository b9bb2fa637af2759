package preview

import (
	"encoding/base64"
	"strings"
	"unicode"
)

const defaultContentType = "application/octet-stream"

// EncodeDataURI turns a downloaded payload into an inline asset string.
func EncodeDataURI(data []byte, contentType string) string {
	var b strings.Builder
	encoded := base64.StdEncoding.EncodedLen(len(data))
	b.Grow(len("data:;base64,") + len(contentType) + encoded)

	b.WriteString("data:")
	b.WriteString(normalizeContentType(contentType))
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// normalizeContentType lower-cases and strips whitespace, keeping parameters.
func normalizeContentType(contentType string) string {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, contentType)

	if normalized == "" {
		return defaultContentType
	}
	return normalized
}

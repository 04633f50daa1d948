package imaging

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrEmptyPayload is returned when nothing decodable remains after cleaning.
var ErrEmptyPayload = errors.New("empty base64 payload")

// DecodeBase64 decodes a base64 image payload as clients actually send them:
// with or without a data-URI prefix, URL-safe or standard alphabet, broken
// padding, embedded whitespace.
func DecodeBase64(s string) ([]byte, error) {
	// Strip "data:image/...;base64," style prefixes.
	if idx := strings.IndexByte(s, ','); idx >= 0 && strings.HasPrefix(s, "data:") {
		s = s[idx+1:]
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9',
			r == '+', r == '/', r == '=':
			b.WriteRune(r)
		case r == '-':
			b.WriteByte('+')
		case r == '_':
			b.WriteByte('/')
			// Everything else (whitespace, stray characters) is dropped.
		}
	}
	cleaned := strings.TrimRight(b.String(), "=")
	if cleaned == "" {
		return nil, ErrEmptyPayload
	}

	data, err := base64.RawStdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return data, nil
}

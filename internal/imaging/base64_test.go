package imaging

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase64(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46}
	std := base64.StdEncoding.EncodeToString(payload)

	tests := []struct {
		name  string
		input string
	}{
		{"plain standard alphabet", std},
		{"data uri prefix", "data:image/jpeg;base64," + std},
		{"url-safe alphabet", base64.URLEncoding.EncodeToString(payload)},
		{"no padding", base64.RawStdEncoding.EncodeToString(payload)},
		{"embedded whitespace", std[:4] + "\n " + std[4:]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBase64(tt.input)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestDecodeBase64Empty(t *testing.T) {
	for _, input := range []string{"", "   \n\t", "data:image/png;base64,"} {
		_, err := DecodeBase64(input)
		assert.ErrorIs(t, err, ErrEmptyPayload, "input %q", input)
	}
}

func TestDecodeBase64Invalid(t *testing.T) {
	// Five characters cannot form a valid unpadded base64 group.
	_, err := DecodeBase64("abcde")
	assert.Error(t, err)
}

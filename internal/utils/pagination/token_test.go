package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRunToken(t *testing.T) {
	executedAt := time.Date(2024, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeRunToken(executedAt, 42)
	assert.NotEmpty(t, token)

	gotAt, gotID, err := DecodeRunToken(token)
	require.NoError(t, err)
	assert.True(t, executedAt.Equal(gotAt))
	assert.Equal(t, int64(42), gotID)
}

func TestDecodeRunToken_Invalid(t *testing.T) {
	cases := map[string]string{
		"not base64":   "%%%",
		"no separator": base64.URLEncoding.EncodeToString([]byte("2024-05-15T14:30:45Z")),
		"bad time":     base64.URLEncoding.EncodeToString([]byte("yesterday|4")),
		"bad id":       base64.URLEncoding.EncodeToString([]byte("2024-05-15T14:30:45Z|x")),
		"zero id":      base64.URLEncoding.EncodeToString([]byte("2024-05-15T14:30:45Z|0")),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeRunToken(token)
			assert.Error(t, err)
		})
	}
}

package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_RoundTrip(t *testing.T) {
	link := "http://localhost:9000/docs/report.pdf?X-Amz-Algorithm=AWS4-HMAC-SHA256&X-Amz-Expires=3600" +
		strings.Repeat("&X-Amz-SignedHeaders=host", 8)

	packed := Compress(link)
	assert.Less(t, len(packed), len(link))

	got, err := Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, link, got)
}

func TestDecompress_Garbage(t *testing.T) {
	_, err := Decompress([]byte("not a zstd frame"))
	assert.Error(t, err)
}

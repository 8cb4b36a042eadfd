package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Encoding
	}{
		{
			name: "utf-8 bom",
			data: []byte{0xEF, 0xBB, 0xBF, 'i', 'd'},
			want: EncodingUTF8,
		},
		{
			name: "plain ascii",
			data: []byte("id,header,body"),
			want: EncodingUTF8,
		},
		{
			name: "valid multibyte utf-8",
			data: []byte("Dobrodošli"),
			want: EncodingUTF8,
		},
		{
			name: "windows-1252 high bytes",
			data: []byte{'c', 'a', 'f', 0xE9},
			want: EncodingWindows1252,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEncoding(tt.data))
		})
	}
}

func TestDecode(t *testing.T) {
	out, err := Decode([]byte{'c', 'a', 'f', 0xE9}, EncodingWindows1252)
	require.NoError(t, err)
	assert.Equal(t, "café", out)

	out, err = Decode([]byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	// Mislabeled UTF-8 must not be decoded twice.
	out, err = Decode([]byte("café"), EncodingWindows1252)
	require.NoError(t, err)
	assert.Equal(t, "café", out)
}

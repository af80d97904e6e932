package document

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	cases := map[string][]byte{
		"empty":       {},
		"single byte": {0x42},
		"short text":  []byte("attestation de residence"),
		"binary":      {0x00, 0xFF, 0x10, 0x00, 0x7F},
	}

	rng := rand.New(rand.NewSource(1))
	large := make([]byte, 10<<20)
	_, err := rng.Read(large)
	require.NoError(t, err)
	cases["10MB random"] = large

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			compressed, err := compress(raw)
			require.NoError(t, err)

			got, err := decompress(compressed)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(raw, got), "round trip must reproduce the input exactly")
		})
	}
}

func TestCompressShrinksRepetitiveInput(t *testing.T) {
	raw := bytes.Repeat([]byte("piece justificative "), 1024)

	compressed, err := compress(raw)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(raw))
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := decompress([]byte("not a flate stream"))
	require.Error(t, err)
}

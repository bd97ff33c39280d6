package attachment

import (
	"bytes"
	"encoding/base64"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-portal/internal/config"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util/errorutil"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec(0)
	rng := rand.New(rand.NewSource(42))

	cases := map[string][]byte{
		"empty":       {},
		"png header":  pngHeader,
		"text":        []byte("Monitor broken in Lab 101"),
		"random 4k":   randomBytes(rng, 4096),
		"exact limit": randomBytes(rng, config.MaxAttachmentBytes),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			blob, err := codec.Encode(raw)
			require.NoError(t, err)

			again, err := codec.Encode(raw)
			require.NoError(t, err)
			assert.Equal(t, blob, again, "encoding is deterministic")

			decoded, err := codec.Decode(blob)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(raw, decoded))
		})
	}
}

func TestCodecRejectsOversizedInput(t *testing.T) {
	codec := NewCodec(config.MaxAttachmentBytes)

	_, err := codec.Encode(make([]byte, 6_291_456))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = codec.Encode(make([]byte, config.MaxAttachmentBytes+1))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	oversized := base64.StdEncoding.EncodeToString(make([]byte, config.MaxAttachmentBytes+1))
	_, err = codec.Decode(EncodedBlob(oversized))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestCodecDecode(t *testing.T) {
	codec := NewCodec(1024)

	t.Run("data URL carries sniffed type", func(t *testing.T) {
		blob, err := codec.Encode(pngHeader)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(blob), "data:image/png;base64,"))
	})

	t.Run("accepts bare base64 from browsers", func(t *testing.T) {
		raw := []byte("photo-bytes")
		decoded, err := codec.Decode(EncodedBlob(base64.StdEncoding.EncodeToString(raw)))
		require.NoError(t, err)
		assert.Equal(t, raw, decoded)
	})

	t.Run("accepts data URL with client supplied type", func(t *testing.T) {
		raw := []byte("jpeg-ish")
		decoded, err := codec.Decode(EncodedBlob("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)))
		require.NoError(t, err)
		assert.Equal(t, raw, decoded)
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		for _, blob := range []EncodedBlob{"data:image/png,notbase64", "data:image/png;base64", "%%%not-base64%%%"} {
			_, err := codec.Decode(blob)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation), "blob %q", blob)
		}
	})

	t.Run("enforces a smaller configured limit", func(t *testing.T) {
		_, err := codec.Encode(make([]byte, 1025))
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
		assert.Equal(t, 1024, codec.MaxBytes())
	})
}

func randomBytes(rng *rand.Rand, n int) []byte {
	buf := make([]byte, n)
	_, _ = rng.Read(buf)
	return buf
}

func TestDataURLUsesStoredTypeWithoutLimit(t *testing.T) {
	raw := make([]byte, 2048)
	blob := DataURL(raw, "image/jpeg")
	assert.True(t, strings.HasPrefix(string(blob), "data:image/jpeg;base64,"))

	small := NewCodec(1024)
	decoded, err := NewCodec(0).Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
	_, err = small.Encode(raw)
	assert.Error(t, err, "the codec limit still applies to new input")

	assert.Equal(t, "data:image/png;base64,", string(DataURL(pngHeader, ""))[:len("data:image/png;base64,")])
}

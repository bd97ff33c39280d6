// Package attachment converts optional complaint photos to and from the
// inline data-URL form exchanged with the presentation layer.
package attachment

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/spec-kit/complaint-portal/internal/config"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util/errorutil"
)

// EncodedBlob is the inline representation of an attachment:
// "data:<mime>;base64,<payload>".
type EncodedBlob string

const dataURLPrefix = "data:"

// Codec encodes and decodes size-bounded attachments.
type Codec struct {
	maxBytes int
}

// NewCodec builds a codec. Limits outside (0, 5 MiB] fall back to 5 MiB.
func NewCodec(maxBytes int) *Codec {
	if maxBytes <= 0 || maxBytes > config.MaxAttachmentBytes {
		maxBytes = config.MaxAttachmentBytes
	}
	return &Codec{maxBytes: maxBytes}
}

// MaxBytes returns the configured raw size limit.
func (c *Codec) MaxBytes() int {
	return c.maxBytes
}

// Encode renders raw bytes as a data URL. The output depends only on the input.
func (c *Codec) Encode(raw []byte) (EncodedBlob, error) {
	if len(raw) > c.maxBytes {
		return "", tooLarge(len(raw), c.maxBytes)
	}
	return DataURL(raw, ""), nil
}

// DataURL renders stored bytes with a known MIME type, sniffing it when
// mime is empty. No size limit applies; bytes already accepted stay readable.
func DataURL(raw []byte, mime string) EncodedBlob {
	if mime == "" {
		mime = DetectType(raw)
	}
	return EncodedBlob(dataURLPrefix + mime + ";base64," + base64.StdEncoding.EncodeToString(raw))
}

// Decode reverses Encode. Bare base64 without the data URL header is accepted too.
func (c *Codec) Decode(blob EncodedBlob) ([]byte, error) {
	payload := strings.TrimSpace(string(blob))
	if strings.HasPrefix(payload, dataURLPrefix) {
		header, data, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, apperrors.NewValidationError("attachment must be a base64 data URL", nil)
		}
		payload = data
	}
	// Reject before allocating when the encoded length alone proves the payload is too big.
	if base64.StdEncoding.DecodedLen(len(payload)) > c.maxBytes+2 {
		return nil, tooLarge(base64.StdEncoding.DecodedLen(len(payload)), c.maxBytes)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperrors.NewValidationError("attachment is not valid base64", map[string]any{"reason": err.Error()})
	}
	if len(raw) > c.maxBytes {
		return nil, tooLarge(len(raw), c.maxBytes)
	}
	return raw, nil
}

// DetectType sniffs the MIME type of raw content.
func DetectType(raw []byte) string {
	mime, _, _ := strings.Cut(mimetype.Detect(raw).String(), ";")
	return mime
}

func tooLarge(size, limit int) error {
	return apperrors.NewValidationError(
		fmt.Sprintf("attachment exceeds %d bytes", limit),
		map[string]any{"size_bytes": size, "max_bytes": limit},
	)
}

package estimate

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/crypto/blake2b"
)

// Image is a captured product photo with its declared media type.
type Image struct {
	Data     []byte
	MIMEType string
}

// NewImage sniffs the media type from the magic bytes and rejects anything
// that is not an image.
func NewImage(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil, fmt.Errorf("unrecognized image format")
	}
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("unsupported file type %s", kind.MIME.Value)
	}
	return &Image{Data: data, MIMEType: kind.MIME.Value}, nil
}

// Key identifies the image by content. Two images with the same bytes and
// media type share a key.
func (i *Image) Key() string {
	if i == nil {
		return ""
	}
	sum := blake2b.Sum256(append([]byte(i.MIMEType+"\x00"), i.Data...))
	return hex.EncodeToString(sum[:])
}

// DataURL encodes the image as data:<mime>;base64,<bytes>.
func (i *Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// ParseDataURL decodes a base64 data URL produced by DataURL.
func ParseDataURL(s string) (*Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data url")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data url")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, fmt.Errorf("data url is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	return &Image{Data: data, MIMEType: mimeType}, nil
}

package proof

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"eventportal/internal/apperr"
)

// MaxSize is the largest accepted proof artifact.
const MaxSize = 5 << 20

var (
	allowedExt  = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true}
	allowedMIME = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/gif":  true,
	}
)

// Upload is a proof-of-attendance file as received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Validate applies the proof acceptance policy: a jpeg, png or gif image
// by extension, declared content type and sniffed content, no larger than
// MaxSize.
func Validate(u *Upload) error {
	if u == nil || len(u.Data) == 0 {
		return apperr.ErrMissingProof
	}
	if len(u.Data) > MaxSize {
		return apperr.ErrProofTooLarge
	}
	if !allowedExt[strings.ToLower(filepath.Ext(u.Filename))] {
		return apperr.ErrInvalidProofType
	}
	declared, _, err := mime.ParseMediaType(u.ContentType)
	if err != nil || !allowedMIME[strings.ToLower(declared)] {
		return apperr.ErrInvalidProofType
	}
	if !allowedMIME[mimetype.Detect(u.Data).String()] {
		return apperr.ErrInvalidProofType
	}
	return nil
}

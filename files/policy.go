package files

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/config"
)

// Policy is the set of limits every upload is checked against.
type Policy struct {
	MaxSize  int64
	MaxFiles int
	// Allowed maps a lower-case extension without the dot to the MIME types
	// accepted for it.
	Allowed map[string][]string
}

// PolicyFromConfig builds a Policy from the upload configuration.
func PolicyFromConfig(cfg *config.UploadConfig) Policy {
	return Policy{MaxSize: cfg.MaxFileSize, MaxFiles: cfg.MaxFiles, Allowed: cfg.AllowedTypes}
}

// Candidate is what is known about an upload before any byte is stored.
type Candidate struct {
	Name     string
	MimeType string
	Size     int64
}

// Validate checks c against the allow-list and the size ceiling. The
// extension and the declared MIME type must both belong to the same
// allow-list entry.
func (p Policy) Validate(c Candidate) error {
	ext := extensionOf(c.Name)
	accepted, ok := p.Allowed[ext]
	if !ok || ext == "" {
		return apperror.NewUnsupportedType(fmt.Sprintf("file type not allowed: %q", c.Name))
	}

	declared := normalizeMIME(c.MimeType)
	if !containsString(accepted, declared) {
		return apperror.NewUnsupportedType(fmt.Sprintf("content type %q not allowed for .%s files", c.MimeType, ext))
	}

	if c.Size > p.MaxSize {
		return apperror.NewTooLarge(fmt.Sprintf("file exceeds the maximum size of %s", humanSize(p.MaxSize)))
	}
	return nil
}

// ValidateBatch validates every candidate before anything is written. A
// single-file batch reports that file's own error; larger batches report one
// BatchPartialFailure listing each rejected file.
func (p Policy) ValidateBatch(cs []Candidate) error {
	if len(cs) == 0 {
		return apperror.NewBadRequestError("no files uploaded", nil)
	}
	if p.MaxFiles > 0 && len(cs) > p.MaxFiles {
		return apperror.NewTooManyFiles(fmt.Sprintf("at most %d files may be uploaded at once", p.MaxFiles))
	}
	if len(cs) == 1 {
		return p.Validate(cs[0])
	}

	var details []apperror.FieldError
	for _, c := range cs {
		if err := p.Validate(c); err != nil {
			details = append(details, apperror.FieldError{Field: c.Name, Message: apperror.FromError(err).Message})
		}
	}
	if len(details) > 0 {
		return apperror.NewBatchPartialFailure(
			fmt.Sprintf("%d of %d files rejected; nothing was stored", len(details), len(cs)), details)
	}
	return nil
}

func extensionOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(baseName(name)), "."))
}

// normalizeMIME strips parameters and lower-cases the media type.
func normalizeMIME(v string) string {
	mediaType, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return mediaType
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func humanSize(n int64) string {
	const mib = 1 << 20
	if n >= mib && n%mib == 0 {
		return fmt.Sprintf("%d MB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}

package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/futig/mini-rag/internal/config"
	"github.com/futig/mini-rag/internal/entity"
)

// Validator validates file uploads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewFileValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateUpload checks that a file was sent and that it fits the size limit
func (v *Validator) ValidateUpload(fh *multipart.FileHeader) error {
	if fh == nil || fh.Filename == "" {
		return fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	if fh.Size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, fh.Filename, fh.Size, v.cfg.MaxFileSize)
	}

	return nil
}

// SanitizeFilename sanitizes a filename for safe storage
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filepath.Clean("/" + filename))
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	return replacer.Replace(filename)
}

package fingerprint

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evidenceledger/veritas/internal/apperr"
)

// AllowedMediaTypes lists the document types that may be fingerprinted.
var AllowedMediaTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"image/png",
}

// AllowedExtensions lists the file name extensions that may be fingerprinted.
var AllowedExtensions = []string{".pdf", ".docx", ".png"}

// CheckDocument rejects a file only when both its declared media type and its
// file name extension fail the allow-list.
func CheckDocument(fileName, mediaType string) error {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if slices.Contains(AllowedMediaTypes, mt) {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if slices.Contains(AllowedExtensions, ext) {
		return nil
	}

	if mt == "" {
		mt = "unknown"
	}
	return apperr.Validation("file type not allowed",
		fmt.Sprintf("accepted formats: PDF, DOCX, PNG; detected type %s, name %s", mt, fileName))
}

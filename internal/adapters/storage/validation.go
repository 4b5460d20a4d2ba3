package storage

import (
	"fmt"
	"strings"

	"github.com/y0shih/AlertMe-Nest/platform/apperr"
)

// AllowedContentTypes lists the evidence formats a report may carry.
var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/heic": true,

	"application/pdf": true,

	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,

	"audio/mpeg": true,
	"audio/wav":  true,
	"audio/ogg":  true,
	"audio/webm": true,
}

func (s *MinIOService) ValidateContentType(contentType string) error {
	return validateContentType(contentType)
}

func (s *MinIOService) ValidateFileSize(sizeBytes int64) error {
	return validateFileSize(sizeBytes, s.maxFileSize)
}

func validateContentType(contentType string) error {
	normalized := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	if !AllowedContentTypes[normalized] {
		return apperr.Validation(fmt.Sprintf("content type %q is not allowed", contentType))
	}
	return nil
}

func validateFileSize(sizeBytes, maxBytes int64) error {
	if sizeBytes <= 0 {
		return apperr.Validation("file size must be greater than 0")
	}
	if maxBytes > 0 && sizeBytes > maxBytes {
		return apperr.Validation(fmt.Sprintf("file size %d bytes exceeds maximum of %d bytes", sizeBytes, maxBytes))
	}
	return nil
}

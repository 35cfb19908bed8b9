// services/errors.go - Errors shared by the services
package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidTransition    = errors.New("status change not allowed")
	ErrAlreadySent          = errors.New("notification already sent")
	ErrNoCollegeID          = errors.New("registration has no college ID upload")
	ErrUploadTooLarge       = errors.New("college ID upload too large")
	ErrUnsupportedUpload    = errors.New("College ID must be an image or PDF")
	ErrInvalidCredentials   = errors.New("Invalid credentials")
	ErrInvalidSession       = errors.New("invalid or expired session")
	ErrSheetsDisabled       = errors.New("Google Sheets export is not configured")
	ErrPassUnavailable      = errors.New("check-in passes are only issued to verified teams")
)

// UploadTooLargeError reports an upload over the configured limit. It matches
// ErrUploadTooLarge under errors.Is.
type UploadTooLargeError struct {
	MaxBytes int64
}

func (e *UploadTooLargeError) Error() string {
	return UploadLimitMessage(e.MaxBytes)
}

func (e *UploadTooLargeError) Is(target error) bool {
	return target == ErrUploadTooLarge
}

// UploadLimitMessage is the user-facing message for a college ID over maxBytes.
func UploadLimitMessage(maxBytes int64) string {
	var size string
	switch {
	case maxBytes >= 1<<20 && maxBytes%(1<<20) == 0:
		size = fmt.Sprintf("%dMB", maxBytes>>20)
	case maxBytes >= 1<<10 && maxBytes%(1<<10) == 0:
		size = fmt.Sprintf("%dKB", maxBytes>>10)
	default:
		size = fmt.Sprintf("%d bytes", maxBytes)
	}
	return "College ID must be " + size + " or smaller"
}

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsFieldErrors unwraps err into FieldErrors when it is one.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

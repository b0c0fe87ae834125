package errcodes

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecordFound         = errors.New("record not found")
	ErrContextCancelled      = errors.New("context cancelled")
	ErrInvalidRepositoryName = errors.New("invalid repository name, expected owner/name")
	ErrDataIntegrity         = errors.New("data integrity violation")
	ErrExternalFetch         = errors.New("external fetch failure")
	ErrEmptyHistory          = errors.New("repository has no commits")
	ErrInvalidTimeBins       = errors.New("invalid time bins")
	ErrMissingParent         = errors.New("mainline parent not found")
)

// Integrity wraps ErrDataIntegrity with a formatted reason.
func Integrity(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDataIntegrity, fmt.Sprintf(format, args...))
}

// External wraps err as an ErrExternalFetch, keeping err in the chain.
func External(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrExternalFetch, err)
}

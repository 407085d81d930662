package contract

import "errors"

// Error kinds that stop a run before any check is made.
var (
	// ErrSchemaFormat marks a malformed or incomplete schema document.
	ErrSchemaFormat = errors.New("invalid schema document")

	// ErrDataSourceOpen marks a data file that is missing, unreadable or of an unsupported format.
	ErrDataSourceOpen = errors.New("cannot open data file")
)

// ErrMandatoryFailures is returned by validate with --fail-on-mandatory when
// any mandatory item failed.
var ErrMandatoryFailures = errors.New("mandatory items failed")

// IsRunError reports whether err means the check could not run at all,
// as opposed to a check that ran and found noncompliance.
func IsRunError(err error) bool {
	return errors.Is(err, ErrSchemaFormat) || errors.Is(err, ErrDataSourceOpen)
}

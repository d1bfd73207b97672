package validation

import (
	"fmt"

	dErrors "deedgate/pkg/domain-errors"
)

// Upload limits
const (
	// MaxDocumentBytes is the default cap on an uploaded deed document (10 MiB).
	MaxDocumentBytes = 10 << 20

	// MultipartOverhead is the allowance for form fields on top of the document itself.
	MultipartOverhead = 64 * 1024
)

// String element length limits
const (
	MaxNameLength        = 120
	MaxOwnerIDLength     = 64
	MaxTitleLength       = 200
	MaxLocationLength    = 200
	MaxDescriptionLength = 4000
	MaxContactLength     = 255
	MinOwnerIDLength     = 5
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

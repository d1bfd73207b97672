package documents

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	dErrors "deedgate/pkg/domain-errors"
)

// Accepted deed formats.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
)

var acceptedTypes = []string{ContentTypePDF, ContentTypeJPEG, ContentTypePNG}

// ValidateUpload checks size and sniffed type of a deed upload and returns the
// detected content type. The client-declared type is ignored.
func ValidateUpload(data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", dErrors.New(dErrors.CodeValidation, "document is empty")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("document is %s; the limit is %s", humanize.IBytes(uint64(len(data))), humanize.IBytes(uint64(maxBytes))))
	}

	detected := http.DetectContentType(data)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	for _, t := range acceptedTypes {
		if detected == t {
			return detected, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "document must be a PDF, JPEG or PNG file")
}

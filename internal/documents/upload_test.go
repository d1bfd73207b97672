package documents

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "deedgate/pkg/domain-errors"
)

var (
	pdfBytes  = []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 16)...)
)

func TestValidateUploadAcceptsDeedFormats(t *testing.T) {
	cases := map[string]struct {
		data []byte
		want string
	}{
		"pdf":  {pdfBytes, ContentTypePDF},
		"png":  {pngBytes, ContentTypePNG},
		"jpeg": {jpegBytes, ContentTypeJPEG},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ValidateUpload(tc.data, 1<<20)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateUploadRejects(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := ValidateUpload(nil, 1<<20)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("plain text", func(t *testing.T) {
		_, err := ValidateUpload([]byte("deed of title #42"), 1<<20)
		require.Error(t, err)
		assert.Equal(t, "document must be a PDF, JPEG or PNG file", err.Error())
	})

	t.Run("too large", func(t *testing.T) {
		data := append(append([]byte(nil), pdfBytes...), bytes.Repeat([]byte{' '}, 2048)...)
		_, err := ValidateUpload(data, 1024)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "the limit is 1.0 KiB")
	})
}

package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/requestcontext"
)

// Validatable is implemented by request types that support validation.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request types that support normalization.
type Normalizable interface {
	Normalize()
}

// Sanitizable is implemented by request types that support sanitization.
type Sanitizable interface {
	Sanitize()
}

// PrepareRequest sanitizes, normalizes, and validates a request.
func PrepareRequest(req any) error {
	if s, ok := req.(Sanitizable); ok {
		s.Sanitize()
	}
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// FormFields is implemented by request types that are populated from multipart values.
type FormFields interface {
	Bind(values map[string][]string)
}

// Upload is one file part read fully into memory.
type Upload struct {
	Filename string
	Data     []byte
}

// MultipartForm is a parsed multipart request.
type MultipartForm struct {
	form     *multipart.Form
	maxBytes int64
}

// ParseMultipart bounds the body to maxBytes plus form overhead and parses it.
// On failure it writes the error response and returns false.
func ParseMultipart(w http.ResponseWriter, r *http.Request, logger *slog.Logger, maxBytes, overhead int64) (*MultipartForm, bool) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+overhead)
	if err := r.ParseMultipartForm(overhead); err != nil {
		logger.WarnContext(ctx, "failed to parse multipart body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, dErrors.New(dErrors.CodeValidation, "request body too large"))
			return nil, false
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart body"))
		return nil, false
	}
	return &MultipartForm{form: r.MultipartForm, maxBytes: maxBytes}, true
}

// DecodeMultipart binds form values into T and prepares it.
func DecodeMultipart[T any, PT interface {
	*T
	FormFields
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, form *MultipartForm) (*T, bool) {
	req := PT(new(T))
	req.Bind(form.form.Value)
	if err := PrepareRequest(req); err != nil {
		writePrepareError(w, r, logger, err)
		return nil, false
	}
	return (*T)(req), true
}

// maxJSONBody bounds JSON request bodies; none of them carry documents.
const maxJSONBody = 64 << 10

// DecodeJSON decodes the request body into T. On failure it writes a bad request
// response and returns false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	var req T
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := r.Context()
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return &req, true
}

// DecodeAndPrepare decodes the JSON body into T and prepares it.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger)
	if !ok {
		return nil, false
	}
	if err := PrepareRequest(req); err != nil {
		writePrepareError(w, r, logger, err)
		return nil, false
	}
	return req, true
}

func writePrepareError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	ctx := r.Context()
	logger.WarnContext(ctx, "invalid request",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	// Preserve the code of a domain error.
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		WriteError(w, err)
		return
	}
	WriteError(w, dErrors.New(dErrors.CodeValidation, err.Error()))
}

// File reads the named file part. Missing or oversized files are validation errors.
func (f *MultipartForm) File(field string) (*Upload, error) {
	headers := f.form.File[field]
	if len(headers) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s is required", field))
	}
	fh := headers[0]
	if f.maxBytes > 0 && fh.Size > f.maxBytes {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds the upload limit", field))
	}
	file, err := fh.Open()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("%s could not be read", field))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, fmt.Sprintf("%s could not be read", field))
	}
	return &Upload{Filename: fh.Filename, Data: data}, nil
}

// FormValue returns the first trimmed value for key in values.
func FormValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// Close removes any temporary files backing the form.
func (f *MultipartForm) Close() {
	_ = f.form.RemoveAll()
}

package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "deedgate/pkg/domain-errors"
)

type nameRequest struct {
	Name       string
	normalized bool
}

func (r *nameRequest) Bind(values map[string][]string) {
	r.Name = FormValue(values, "name")
}

func (r *nameRequest) Normalize() { r.normalized = true }

func (r *nameRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Name == "forbidden" {
		return dErrors.New(dErrors.CodeBadRequest, "name is reserved")
	}
	return nil
}

func multipartRequest(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for k, data := range files {
		part, err := mw.CreateFormFile(k, k+".pdf")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestParseMultipartAndDecode(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("binds, normalizes and validates", func(t *testing.T) {
		req := multipartRequest(t, map[string]string{"name": "  Lakeview  "}, map[string][]byte{"document": []byte("%PDF-1.4")})
		w := httptest.NewRecorder()

		form, ok := ParseMultipart(w, req, logger, 1<<20, 1024)
		require.True(t, ok)
		defer form.Close()

		got, ok := DecodeMultipart[nameRequest](w, req, logger, form)
		require.True(t, ok)
		assert.Equal(t, "Lakeview", got.Name)
		assert.True(t, got.normalized)

		upload, err := form.File("document")
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4"), upload.Data)
		assert.Equal(t, "document.pdf", upload.Filename)
	})

	t.Run("plain validation error maps to validation", func(t *testing.T) {
		req := multipartRequest(t, map[string]string{}, nil)
		w := httptest.NewRecorder()
		form, ok := ParseMultipart(w, req, logger, 1<<20, 1024)
		require.True(t, ok)

		_, ok = DecodeMultipart[nameRequest](w, req, logger, form)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decodeError(t, w).Error)
	})

	t.Run("domain error code is preserved", func(t *testing.T) {
		req := multipartRequest(t, map[string]string{"name": "forbidden"}, nil)
		w := httptest.NewRecorder()
		form, ok := ParseMultipart(w, req, logger, 1<<20, 1024)
		require.True(t, ok)

		_, ok = DecodeMultipart[nameRequest](w, req, logger, form)
		assert.False(t, ok)
		resp := decodeError(t, w)
		assert.Equal(t, "bad_request", resp.Error)
		assert.Equal(t, "name is reserved", resp.ErrorDescription)
	})

	t.Run("missing file is a validation error", func(t *testing.T) {
		req := multipartRequest(t, map[string]string{"name": "x"}, nil)
		w := httptest.NewRecorder()
		form, ok := ParseMultipart(w, req, logger, 1<<20, 1024)
		require.True(t, ok)

		_, err := form.File("document")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		req := multipartRequest(t, nil, map[string][]byte{"document": bytes.Repeat([]byte("a"), 4096)})
		w := httptest.NewRecorder()

		_, ok := ParseMultipart(w, req, logger, 1024, 512)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non multipart body is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		_, ok := ParseMultipart(w, req, logger, 1024, 512)
		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeError(t, w).Error)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jsonRequest := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	t.Run("decodes and prepares", func(t *testing.T) {
		w := httptest.NewRecorder()
		got, ok := DecodeAndPrepare[nameRequest](w, jsonRequest(`{"name":"Lakeview"}`), logger)
		require.True(t, ok)
		assert.Equal(t, "Lakeview", got.Name)
		assert.True(t, got.normalized)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[nameRequest](w, jsonRequest(`{"name":`), logger)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid request body", decodeError(t, w).ErrorDescription)
	})

	t.Run("plain validation error becomes a validation response", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[nameRequest](w, jsonRequest(`{}`), logger)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "validation", resp.Error)
		assert.Equal(t, "name is required", resp.ErrorDescription)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		big := `{"name":"` + string(bytes.Repeat([]byte("a"), maxJSONBody)) + `"}`
		_, ok := DecodeJSON[nameRequest](w, jsonRequest(big), logger)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

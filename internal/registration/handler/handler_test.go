package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"deedgate/internal/records/models"
	"deedgate/internal/registration"
	"deedgate/internal/registration/handler/mocks"
	dErrors "deedgate/pkg/domain-errors"
	"deedgate/pkg/requestcontext"
)

var pdf = []byte("%PDF-1.7\n1 0 obj << /Type /Catalog >> endobj\n")

type HandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *mocks.MockService
	handler     *Handler
	principal   *requestcontext.Principal
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	s.handler = New(s.mockService, slog.New(slog.NewTextHandler(io.Discard, nil)), 1<<20)
	s.principal = &requestcontext.Principal{Email: "admin@example.com", Admin: true}
}

func (s *HandlerSuite) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if s.principal != nil {
				req = req.WithContext(requestcontext.WithPrincipal(req.Context(), *s.principal))
			}
			next.ServeHTTP(w, req)
		})
	})
	s.handler.Register(r)
	return r
}

func validFields() map[string]string {
	return map[string]string{
		"ownerFirst":    "Jane",
		"ownerLast":     "Doe",
		"ownerId":       "ID-778812",
		"propertyTitle": "Lakeview Cottage",
		"propertyType":  "Land",
		"location":      "Austin",
		"size":          "1450",
		"beds":          "0",
		"baths":         "0",
		"year":          "1998",
		"wallet":        "0x8ba1f109551bd432803012645ac136ddd64dba72",
		"contact":       "jane@example.com",
	}
}

func (s *HandlerSuite) do(fields map[string]string, document []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		s.Require().NoError(mw.WriteField(k, v))
	}
	if document != nil {
		part, err := mw.CreateFormFile("document", "deed.pdf")
		s.Require().NoError(err)
		_, err = part.Write(document)
		s.Require().NoError(err)
	}
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/registry", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) errorDescription(rec *httptest.ResponseRecorder) string {
	var body map[string]string
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error_description"]
}

func (s *HandlerSuite) TestRegisterCreated() {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.mockService.EXPECT().
		Register(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c registration.Capability, cmd registration.RegisterCommand) (*registration.RegisterResult, error) {
			s.True(c.Admin)
			s.Equal("admin@example.com", c.Actor)
			s.Equal("application/pdf", cmd.ContentType)
			s.Equal(pdf, cmd.Document)
			s.Equal(models.PropertyTypeLand, cmd.Declaration.PropertyType)
			s.Equal("jane@example.com", cmd.Contact)
			s.False(cmd.SkipPublish)
			s.Nil(cmd.PriceWei)
			return &registration.RegisterResult{
				RecordHash:   "0854f47289294531dbfb8e8c4a5ba4849c26f189f20e70cbbd385d1ccf9002cf",
				ContentHash:  "e410f6d4",
				MetadataHash: "abc",
				RegisterTx:   "0x01",
				ListingTx:    "0x02",
				ContractID:   689600123,
				Entry:        &models.RegistryEntry{RegisteredBy: "admin@example.com", CreatedAt: created},
			}, nil
		})

	rec := s.do(validFields(), pdf)

	s.Equal(http.StatusCreated, rec.Code)
	var resp RegisterResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("689600123", resp.ContractID)
	s.Equal("0x02", resp.ListingTx)
	s.Equal(created, resp.RegisteredAt)
}

func (s *HandlerSuite) TestPublishAndPriceOptions() {
	fields := validFields()
	fields["publish"] = "false"
	fields["priceWei"] = "5000"
	s.mockService.EXPECT().
		Register(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ registration.Capability, cmd registration.RegisterCommand) (*registration.RegisterResult, error) {
			s.True(cmd.SkipPublish)
			s.Equal(int64(5000), cmd.PriceWei.Int64())
			return &registration.RegisterResult{RecordHash: "aa", ContentHash: "bb"}, nil
		})

	rec := s.do(fields, pdf)

	s.Equal(http.StatusCreated, rec.Code)
	s.NotContains(rec.Body.String(), "contract_id")
}

func (s *HandlerSuite) TestRejectsUnsupportedDocument() {
	rec := s.do(validFields(), []byte("plain text is not a deed"))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("document must be a PDF, JPEG or PNG file", s.errorDescription(rec))
}

func (s *HandlerSuite) TestValidation() {
	cases := map[string]struct {
		field, value, msg string
	}{
		"bad contact": {"contact", "not a contact", "contact must be a phone number or an email"},
		"bad wallet":  {"wallet", "0x123", "wallet must be a valid wallet address"},
		"zero price":  {"priceWei", "0", "price_wei must be a positive integer"},
		"empty beds":  {"beds", "", "beds is required"},
		"blank year":  {"year", "\t", "year must not be blank"},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			fields := validFields()
			fields[tc.field] = tc.value

			rec := s.do(fields, pdf)

			s.Equal(http.StatusBadRequest, rec.Code)
			s.Equal(tc.msg, s.errorDescription(rec))
		})
	}
}

func (s *HandlerSuite) TestServiceErrors() {
	cases := []struct {
		err    error
		status int
	}{
		{dErrors.New(dErrors.CodeForbidden, "only admins can register hashes on-chain"), http.StatusForbidden},
		{dErrors.New(dErrors.CodeConflict, "this deed is already registered"), http.StatusConflict},
		{dErrors.New(dErrors.CodeUnavailable, "registration backend unavailable; retry later"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		s.Run(tc.err.Error(), func() {
			s.mockService.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.err)

			rec := s.do(validFields(), pdf)

			s.Equal(tc.status, rec.Code)
			s.Equal(tc.err.Error(), s.errorDescription(rec))
		})
	}
}

func (s *HandlerSuite) TestUnauthenticated() {
	s.principal = nil

	rec := s.do(validFields(), pdf)

	s.Equal(http.StatusUnauthorized, rec.Code)
}

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "deedgate/pkg/domain-errors"
)

type ValidationSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

type sampleRequest struct {
	OwnerID      string `validate:"required,min=5"`
	PropertyType string `validate:"required,oneof=Land Apartment"`
	Contact      string `validate:"omitempty,contact"`
	Title        string `validate:"notblank"`
}

func (s *ValidationSuite) TestValidRequestPasses() {
	s.NoError(Validate(sampleRequest{OwnerID: "ID-778812", PropertyType: "Land", Contact: "+1 512 555 0100", Title: "Lot 4"}))
}

func (s *ValidationSuite) TestMessages() {
	cases := []struct {
		name string
		req  sampleRequest
		msg  string
	}{
		{"required", sampleRequest{PropertyType: "Land", Title: "x"}, "owner_id is required"},
		{"min", sampleRequest{OwnerID: "ab", PropertyType: "Land", Title: "x"}, "owner_id must be at least 5 characters"},
		{"oneof", sampleRequest{OwnerID: "ID-778812", PropertyType: "Castle", Title: "x"}, "property_type must be one of [Land Apartment]"},
		{"contact", sampleRequest{OwnerID: "ID-778812", PropertyType: "Land", Contact: "call me", Title: "x"}, "contact must be a phone number or an email"},
		{"notblank", sampleRequest{OwnerID: "ID-778812", PropertyType: "Land", Title: "   "}, "title must not be blank"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			err := Validate(tc.req)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Equal(tc.msg, err.Error())
		})
	}
}

func (s *ValidationSuite) TestIsContact() {
	s.True(IsContact("jane@example.com"))
	s.True(IsContact("+44 (20) 7946-0958"))
	s.False(IsContact("Jane <jane@example.com>"))
	s.False(IsContact("12"))
	s.False(IsContact(""))
}

func (s *ValidationSuite) TestCheckStringLength() {
	s.NoError(CheckStringLength("title", strings.Repeat("a", MaxTitleLength), MaxTitleLength))
	err := CheckStringLength("title", strings.Repeat("a", MaxTitleLength+1), MaxTitleLength)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

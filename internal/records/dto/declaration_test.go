package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "deedgate/pkg/domain-errors"
)

func completeDeclaration() Declaration {
	return Declaration{
		OwnerFirst:    "Jane",
		OwnerLast:     "Doe",
		OwnerID:       "ID-778812",
		PropertyTitle: "Lakeview Cottage",
		PropertyType:  "Land",
		Location:      "Austin",
		Size:          "1450",
		Beds:          "0",
		Baths:         "0",
		Year:          "1998",
	}
}

func TestDeclarationRequiresEveryFact(t *testing.T) {
	d := completeDeclaration()
	require.NoError(t, d.Validate())

	cases := map[string]func(*Declaration){
		"size":  func(d *Declaration) { d.Size = "" },
		"beds":  func(d *Declaration) { d.Beds = "" },
		"baths": func(d *Declaration) { d.Baths = "" },
		"year":  func(d *Declaration) { d.Year = "" },
	}
	for field, clear := range cases {
		t.Run(field+" empty", func(t *testing.T) {
			d := completeDeclaration()
			clear(&d)
			err := d.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, field+" is required", err.Error())
		})
	}
}

func TestDeclarationRejectsBlankNumbers(t *testing.T) {
	d := completeDeclaration()
	d.Beds = "   "
	err := d.Validate()
	require.Error(t, err)
	assert.Equal(t, "beds must not be blank", err.Error())
}

func TestBindKeepsFactsVerbatim(t *testing.T) {
	var d Declaration
	d.Bind(map[string][]string{
		"ownerFirst": {" Jane "},
		"beds":       {"3 "},
		"year":       {"1998"},
	})
	assert.Equal(t, " Jane ", d.OwnerFirst)
	assert.Equal(t, "3 ", d.Beds)
	assert.Equal(t, "", d.Size)
	assert.Equal(t, "1998", d.Model().Year)
}

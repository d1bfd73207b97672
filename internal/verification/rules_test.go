package verification

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"deedgate/internal/records/models"
)

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"3", 3},
		{" 3 ", 3},
		{"3.0", 3},
		{"+3", 3},
		{"-2.5", -2.5},
		{".5", 0.5},
		{"1.", 1},
		{"1e3", 1000},
		{"1E-2", 0.01},
		{"0x1F", 31},
		{"0o17", 15},
		{"0b101", 5},
		{"007", 7},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e400", math.Inf(1)},
		{" 12\n", 12},
		{"\uFEFF3\u2028", 3},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, CoerceNumber(tc.in))
		})
	}
}

func TestCoerceNumberNaN(t *testing.T) {
	for _, in := range []string{"three", "3 beds", "1,5", "0x", "0xZ", "-0x10", "infinity", "NaN", "1_000", "5e", "0b102", "1.2.3", "\u00853"} {
		t.Run(in, func(t *testing.T) {
			assert.True(t, math.IsNaN(CoerceNumber(in)), "%q should be NaN", in)
		})
	}
}

func TestNumberOrZero(t *testing.T) {
	assert.Equal(t, 250000.0, NumberOrZero("250000"))
	assert.Equal(t, 0.0, NumberOrZero("call for price"))
	assert.Equal(t, 0.0, NumberOrZero("Infinity"))
	assert.Equal(t, 0.0, NumberOrZero(""))
}

func registered() models.Declaration {
	return models.Declaration{
		OwnerFirst:    "Jane",
		OwnerLast:     "Doe",
		OwnerID:       "ID-778812",
		PropertyTitle: "Lakeview Cottage",
		PropertyType:  models.PropertyTypeResidentialHouse,
		Location:      "Austin",
		Size:          "1450",
		Beds:          "3",
		Baths:         "2",
		Year:          "1998",
	}
}

func TestMatchIdentity(t *testing.T) {
	t.Run("identical declarations match", func(t *testing.T) {
		assert.True(t, MatchIdentity(registered(), registered()))
	})

	t.Run("names and location ignore case and surrounding space", func(t *testing.T) {
		d := registered()
		d.OwnerFirst = "  JANE"
		d.OwnerLast = "doe "
		d.Location = " austin "
		assert.True(t, MatchIdentity(d, registered()))
	})

	t.Run("names trim a byte order mark like numbers do", func(t *testing.T) {
		d := registered()
		d.OwnerFirst = "\uFEFFJane"
		d.Location = "Austin\uFEFF"
		d.Beds = "\uFEFF3"
		assert.True(t, MatchIdentity(d, registered()))
	})

	t.Run("numbers compare after coercion", func(t *testing.T) {
		d := registered()
		d.Size = "1450.0"
		d.Beds = " 3 "
		d.Baths = "0x2"
		assert.True(t, MatchIdentity(d, registered()))
	})

	mismatches := map[string]func(*models.Declaration){
		"first name":     func(d *models.Declaration) { d.OwnerFirst = "Janet" },
		"last name":      func(d *models.Declaration) { d.OwnerLast = "Doer" },
		"owner id case":  func(d *models.Declaration) { d.OwnerID = "id-778812" },
		"owner id space": func(d *models.Declaration) { d.OwnerID = "ID-778812 " },
		"title case":     func(d *models.Declaration) { d.PropertyTitle = "lakeview cottage" },
		"property type":  func(d *models.Declaration) { d.PropertyType = models.PropertyTypeLand },
		"location":       func(d *models.Declaration) { d.Location = "Dallas" },
		"size":           func(d *models.Declaration) { d.Size = "1451" },
		"beds":           func(d *models.Declaration) { d.Beds = "4" },
		"baths nan":      func(d *models.Declaration) { d.Baths = "two" },
		"year padded":    func(d *models.Declaration) { d.Year = "01998" },
	}
	for name, mutate := range mismatches {
		t.Run(name, func(t *testing.T) {
			d := registered()
			mutate(&d)
			assert.False(t, MatchIdentity(d, registered()))
		})
	}

	t.Run("NaN never equals NaN", func(t *testing.T) {
		a, b := registered(), registered()
		a.Beds, b.Beds = "three", "three"
		assert.False(t, MatchIdentity(a, b))
	})
}

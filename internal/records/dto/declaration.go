package dto

import (
	"deedgate/internal/records/models"
	"deedgate/pkg/validation"
)

// Declaration is the multipart form shape of the declared property facts. Field names
// match the hashed keys, with the owner split into first and last name. Every fact is
// mandatory; a land plot declares "0" beds rather than leaving the field empty.
type Declaration struct {
	OwnerFirst    string `validate:"required,notblank,max=120"`
	OwnerLast     string `validate:"required,notblank,max=120"`
	OwnerID       string `validate:"required,min=5,max=64"`
	PropertyTitle string `validate:"required,notblank,max=200"`
	PropertyType  string `validate:"required,oneof='Residential House' Apartment Land 'Commercial Property'"`
	Location      string `validate:"required,notblank,max=200"`
	Size          string `validate:"required,notblank,max=32"`
	Beds          string `validate:"required,notblank,max=32"`
	Baths         string `validate:"required,notblank,max=32"`
	Year          string `validate:"required,notblank,max=8"`
}

// Bind reads the declaration fields verbatim. They feed the record hash, so
// nothing is trimmed or normalized here.
func (d *Declaration) Bind(values map[string][]string) {
	d.OwnerFirst = raw(values, "ownerFirst")
	d.OwnerLast = raw(values, "ownerLast")
	d.OwnerID = raw(values, "ownerId")
	d.PropertyTitle = raw(values, "propertyTitle")
	d.PropertyType = raw(values, "propertyType")
	d.Location = raw(values, "location")
	d.Size = raw(values, "size")
	d.Beds = raw(values, "beds")
	d.Baths = raw(values, "baths")
	d.Year = raw(values, "year")
}

func (d *Declaration) Validate() error {
	return validation.Validate(d)
}

func (d *Declaration) Model() models.Declaration {
	return models.Declaration{
		OwnerFirst:    d.OwnerFirst,
		OwnerLast:     d.OwnerLast,
		OwnerID:       d.OwnerID,
		PropertyTitle: d.PropertyTitle,
		PropertyType:  models.PropertyType(d.PropertyType),
		Location:      d.Location,
		Size:          d.Size,
		Beds:          d.Beds,
		Baths:         d.Baths,
		Year:          d.Year,
	}
}

func raw(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

package models

import (
	"deedgate/internal/fingerprint"
	strs "deedgate/pkg/string"
)

// Declaration is the set of property facts a submitter or registrant declares for a deed.
// Numeric fields stay strings: they are hashed verbatim and only coerced when compared.
type Declaration struct {
	OwnerFirst    string
	OwnerLast     string
	OwnerID       string
	PropertyTitle string
	PropertyType  PropertyType
	Location      string
	Size          string
	Beds          string
	Baths         string
	Year          string
}

// OwnerName joins first and last name the way the record hash expects.
func (d Declaration) OwnerName() string {
	return strs.TrimSpace(d.OwnerFirst + " " + d.OwnerLast)
}

// Facts projects the declaration onto the hashed fields.
func (d Declaration) Facts() fingerprint.Facts {
	return fingerprint.Facts{
		Owner:         d.OwnerName(),
		OwnerID:       d.OwnerID,
		PropertyTitle: d.PropertyTitle,
		PropertyType:  string(d.PropertyType),
		Location:      d.Location,
		Size:          d.Size,
		Beds:          d.Beds,
		Baths:         d.Baths,
		Year:          d.Year,
	}
}

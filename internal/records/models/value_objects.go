package models

// PropertyType is the declared kind of property. The stored value is the wire value
// hashed into the record hash, so labels must never be renamed.
type PropertyType string

const (
	PropertyTypeResidentialHouse PropertyType = "Residential House"
	PropertyTypeApartment        PropertyType = "Apartment"
	PropertyTypeLand             PropertyType = "Land"
	PropertyTypeCommercial       PropertyType = "Commercial Property"
)

// PropertyTypes lists the accepted values in display order.
var PropertyTypes = []PropertyType{
	PropertyTypeResidentialHouse,
	PropertyTypeApartment,
	PropertyTypeLand,
	PropertyTypeCommercial,
}

func (t PropertyType) IsValid() bool {
	for _, v := range PropertyTypes {
		if t == v {
			return true
		}
	}
	return false
}

func (t PropertyType) String() string { return string(t) }

// ListingStatus tracks the sale state shown in the catalogue.
type ListingStatus string

const (
	ListingStatusForSale ListingStatus = "for_sale"
	ListingStatusSold    ListingStatus = "sold"
)

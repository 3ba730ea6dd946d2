package kernel

import (
	"fooddelivery/internal/pkg/errs"
	"fooddelivery/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when an Address instance was not
// created through the NewAddress factory function.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError("Address must be created via NewAddress")

// GeoPoint holds optional delivery coordinates attached to an address.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Address is the delivery destination for an order. All postal fields are
// required; coordinates are optional and only carried when the client
// supplied them.
//
// Address is an immutable value object: two addresses are equal when all of
// their postal fields match.
type Address struct {
	street  string
	city    string
	state   string
	zipCode string
	geo     *GeoPoint

	guard guard.ConstructorGuard
}

// NewAddress creates a validated delivery address. Every postal field must be
// non-blank; geo may be nil.
func NewAddress(street, city, state, zipCode string, geo *GeoPoint) (Address, error) {
	if street == "" {
		return Address{}, errs.NewValueIsRequiredError("street")
	}
	if city == "" {
		return Address{}, errs.NewValueIsRequiredError("city")
	}
	if state == "" {
		return Address{}, errs.NewValueIsRequiredError("state")
	}
	if zipCode == "" {
		return Address{}, errs.NewValueIsRequiredError("zipCode")
	}

	var geoCopy *GeoPoint
	if geo != nil {
		g := *geo
		geoCopy = &g
	}

	return Address{
		street:  street,
		city:    city,
		state:   state,
		zipCode: zipCode,
		geo:     geoCopy,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Street returns the street line of the address.
func (a Address) Street() string {
	return a.street
}

// City returns the city of the address.
func (a Address) City() string {
	return a.city
}

// State returns the state or region of the address.
func (a Address) State() string {
	return a.state
}

// ZipCode returns the postal code of the address.
func (a Address) ZipCode() string {
	return a.zipCode
}

// Geo returns the optional coordinates of the address, or nil when the client
// did not provide any.
func (a Address) Geo() *GeoPoint {
	if a.geo == nil {
		return nil
	}
	g := *a.geo
	return &g
}

// IsEqual compares two addresses by their postal fields. Coordinates do not
// participate in equality.
func (a Address) IsEqual(other Address) bool {
	return a.street == other.street &&
		a.city == other.city &&
		a.state == other.state &&
		a.zipCode == other.zipCode
}

// Validate ensures the Address was created through NewAddress.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

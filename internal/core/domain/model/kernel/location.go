package kernel

import (
	"errors"
	"fmt"

	"storefront/internal/pkg/errs"
	"storefront/internal/pkg/guard"
)

const (
	// LatitudeMin is the minimum valid latitude in decimal degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the maximum valid latitude in decimal degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the minimum valid longitude in decimal degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the maximum valid longitude in decimal degrees.
	LongitudeMax = 180.0
)

// ErrLocationIsNotConstructed is returned when attempting to use an improperly
// initialized Location. Locations must be created via NewLocation.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location represents a delivery destination: a validated WGS84 coordinate pair
// plus the human-readable address it was resolved from.
// Location is an immutable value object; the zero value is invalid and fails Validate.
//
// Example:
//
//	loc, err := kernel.NewLocation(-4.0435, 39.6682, "Moi Avenue 12", "Mombasa")
//	if err != nil {
//	    // Handle validation error
//	}
type Location struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	address   string
	city      string

	guard guard.ConstructorGuard
}

// NewLocation creates a Location with validated coordinates.
// Latitude must lie in [LatitudeMin, LatitudeMax] and longitude in
// [LongitudeMin, LongitudeMax]; the address must be non-empty. The city is
// optional display data and is not validated beyond being stored verbatim.
func NewLocation(latitude, longitude float64, address, city string) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		loc.setLatitude(latitude),
		loc.setLongitude(longitude),
		loc.setAddress(address),
	); err != nil {
		return Location{}, err
	}

	loc.city = city
	return loc, nil
}

// Validate checks if the Location was properly constructed via NewLocation.
// The zero value fails this validation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Latitude returns the latitude in decimal degrees.
func (l Location) Latitude() float64 {
	return l.latitude
}

// Longitude returns the longitude in decimal degrees.
func (l Location) Longitude() float64 {
	return l.longitude
}

// Address returns the street address.
func (l Location) Address() string {
	return l.address
}

// City returns the city name, which may be empty.
func (l Location) City() string {
	return l.city
}

// String returns "Location(lat,lng)" for logging and debugging.
func (l Location) String() string {
	return fmt.Sprintf("Location(%g,%g)", l.latitude, l.longitude)
}

// IsEqual compares two locations by coordinates and address.
// Both locations must be properly constructed.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l == other, nil
}

// setLatitude sets the latitude with range validation.
// Pointer receiver is intentional: private setters self-encapsulate
// validation during construction.
func (l *Location) setLatitude(latitude float64) error {
	if latitude < LatitudeMin || latitude > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, LatitudeMin, LatitudeMax)
	}

	l.latitude = latitude
	return nil
}

func (l *Location) setLongitude(longitude float64) error {
	if longitude < LongitudeMin || longitude > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, LongitudeMin, LongitudeMax)
	}

	l.longitude = longitude
	return nil
}

func (l *Location) setAddress(address string) error {
	if address == "" {
		return errs.NewValueIsRequiredError("address")
	}

	l.address = address
	return nil
}

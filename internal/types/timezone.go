package types

import (
	"strings"
	"time"

	ierr "github.com/nextstep/nextstep/internal/errors"
)

// timezoneAbbreviationMap maps common three-letter timezone abbreviations to
// IANA identifiers. Tenant settings accept either form; storage keeps the
// resolved IANA name.
var timezoneAbbreviationMap = map[string]string{
	"IST": "Asia/Kolkata",

	"EST": "America/New_York",
	"CST": "America/Chicago",
	"MST": "America/Denver",
	"PST": "America/Los_Angeles",

	"GMT": "Europe/London",
	"BST": "Europe/London",
	"CET": "Europe/Berlin",
	"EET": "Europe/Athens",
	"WET": "Europe/Lisbon",

	"JST":  "Asia/Tokyo",
	"KST":  "Asia/Seoul",
	"AEST": "Australia/Sydney",
	"AWST": "Australia/Perth",

	"MSK": "Europe/Moscow",
	"EAT": "Africa/Nairobi",
	"WAT": "Africa/Lagos",
}

// ResolveTimezone converts a timezone abbreviation to its IANA identifier, or
// returns the input unchanged when it is not a known abbreviation.
func ResolveTimezone(timezone string) string {
	if ianaName, exists := timezoneAbbreviationMap[strings.ToUpper(timezone)]; exists {
		return ianaName
	}
	return timezone
}

// ValidateTimezone checks that the (resolved) timezone loads.
func ValidateTimezone(timezone string) error {
	if _, err := time.LoadLocation(ResolveTimezone(timezone)); err != nil {
		return ierr.WithError(err).
			WithHintf("Unknown timezone %q, use an IANA name like Asia/Kolkata", timezone).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// LocationFor loads the location for a tenant day-boundary timezone, falling
// back to UTC when empty or unloadable. Callers that need hard validation use
// ValidateTimezone at write time; reads stay total.
func LocationFor(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(ResolveTimezone(timezone))
	if err != nil {
		return time.UTC
	}
	return loc
}

package enums

import "fmt"

// CoworkerPriceType selects how an invited coworker is compensated.
type CoworkerPriceType string

const (
	CoworkerPriceTypeHourly CoworkerPriceType = "hourly"
	CoworkerPriceTypeFixed  CoworkerPriceType = "fixed"
)

var validCoworkerPriceTypes = []CoworkerPriceType{
	CoworkerPriceTypeHourly,
	CoworkerPriceTypeFixed,
}

// String implements fmt.Stringer.
func (c CoworkerPriceType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CoworkerPriceType.
func (c CoworkerPriceType) IsValid() bool {
	for _, candidate := range validCoworkerPriceTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCoworkerPriceType converts raw input into a CoworkerPriceType.
func ParseCoworkerPriceType(value string) (CoworkerPriceType, error) {
	for _, candidate := range validCoworkerPriceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coworker price type %q", value)
}

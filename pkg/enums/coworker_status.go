package enums

import "fmt"

// CoworkerStatus tracks a coworker invitation inside an order.
type CoworkerStatus string

const (
	CoworkerStatusPending  CoworkerStatus = "pending"
	CoworkerStatusAccepted CoworkerStatus = "accepted"
	CoworkerStatusRejected CoworkerStatus = "rejected"
)

var validCoworkerStatuses = []CoworkerStatus{
	CoworkerStatusPending,
	CoworkerStatusAccepted,
	CoworkerStatusRejected,
}

// String implements fmt.Stringer.
func (c CoworkerStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CoworkerStatus.
func (c CoworkerStatus) IsValid() bool {
	for _, candidate := range validCoworkerStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCoworkerStatus converts raw input into a CoworkerStatus.
func ParseCoworkerStatus(value string) (CoworkerStatus, error) {
	for _, candidate := range validCoworkerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coworker status %q", value)
}

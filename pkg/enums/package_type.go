package enums

import "fmt"

// PackageType names the pricing tier snapshotted into an order.
type PackageType string

const (
	PackageTypeBasic    PackageType = "basic"
	PackageTypeStandard PackageType = "standard"
	PackageTypePremium  PackageType = "premium"
	PackageTypeCustom   PackageType = "custom"
)

var validPackageTypes = []PackageType{
	PackageTypeBasic,
	PackageTypeStandard,
	PackageTypePremium,
	PackageTypeCustom,
}

// String implements fmt.Stringer.
func (p PackageType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PackageType.
func (p PackageType) IsValid() bool {
	for _, candidate := range validPackageTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePackageType converts raw input into a PackageType.
func ParsePackageType(value string) (PackageType, error) {
	for _, candidate := range validPackageTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid package type %q", value)
}

package enums

import "fmt"

// ProductStatus tracks custody state for a product record.
type ProductStatus string

const (
	ProductStatusCreated   ProductStatus = "created"
	ProductStatusInTransit ProductStatus = "in_transit"
)

var validProductStatuses = []ProductStatus{
	ProductStatusCreated,
	ProductStatusInTransit,
}

// String implements fmt.Stringer.
func (p ProductStatus) String() string {
	return string(p)
}

// IsValid reports whether the value matches the canonical product status enum.
func (p ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductStatus converts the raw string to ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}

package enums

import "fmt"

// MovementType categorizes a custody log entry.
type MovementType string

const (
	MovementTypeTransfer   MovementType = "transfer"
	MovementTypeHarvest    MovementType = "harvest"
	MovementTypeProcessing MovementType = "processing"
	MovementTypeDelivery   MovementType = "delivery"
)

var validMovementTypes = []MovementType{
	MovementTypeTransfer,
	MovementTypeHarvest,
	MovementTypeProcessing,
	MovementTypeDelivery,
}

// String implements fmt.Stringer.
func (m MovementType) String() string {
	return string(m)
}

// IsValid reports whether the value matches the canonical movement type enum.
func (m MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMovementType converts the raw string to MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}

package enums

import "fmt"

// ProfileRole describes the allowed values for the `role` column on profiles.
// Certifier is the only role permitted to decide certification requests.
type ProfileRole string

const (
	ProfileRoleFarmer    ProfileRole = "farmer"
	ProfileRoleProcessor ProfileRole = "processor"
	ProfileRoleConsumer  ProfileRole = "consumer"
	ProfileRoleCertifier ProfileRole = "certifier"
)

var validProfileRoles = []ProfileRole{
	ProfileRoleFarmer,
	ProfileRoleProcessor,
	ProfileRoleConsumer,
	ProfileRoleCertifier,
}

// String implements fmt.Stringer.
func (p ProfileRole) String() string {
	return string(p)
}

// IsValid reports whether the value matches the canonical profile role enum.
func (p ProfileRole) IsValid() bool {
	for _, candidate := range validProfileRoles {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProfileRole converts the raw string to ProfileRole.
func ParseProfileRole(value string) (ProfileRole, error) {
	for _, candidate := range validProfileRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid profile role %q", value)
}

// Package auth provides JWT authentication middleware, the closed role
// enumeration, and role-based route guards.
package auth

import "fmt"

// Role is the closed set of actor roles.
type Role string

const (
	RolePatient  Role = "patient"
	RoleHospital Role = "hospital"
	RoleDoctor   Role = "doctor"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a role string against the closed enumeration.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleHospital, RoleDoctor, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

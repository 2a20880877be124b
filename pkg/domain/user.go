package domain

import (
	"errors"
	"fmt"
)

type Role string

const (
	// Regular user: may handle own instances only.
	RoleUser Role = "user"

	// Administrator: may read and stop any instance.
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func AsRole(role string) (Role, error) {
	switch role {
	case string(RoleUser):
		return RoleUser, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("'%s' is not Role", role)
	}
}

// UserContext identifies the requester of an operation.
//
// It arrives pre-authenticated with each request and is never persisted.
type UserContext struct {
	OwnerId string
	Role    Role
}

var ErrAccessDenied = errors.New("access denied")

package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the closed set of principal roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(strings.TrimSpace(s)); st {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

// Principal is the identity bound to an authenticated request.
type Principal struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Role    Role   `json:"role"`
	Blocked bool   `json:"blocked"`
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// NewID returns a fresh entity identifier.
func NewID() string { return uuid.NewString() }

// ValidID reports whether s is a well-formed entity identifier.
func ValidID(s string) bool {
	return uuid.Validate(strings.TrimSpace(s)) == nil
}

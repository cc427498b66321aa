package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the permission tier of a user
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
)

// Roles returns every role in declaration order
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleMember}
}

// ParseRole converts a case-insensitive string into a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q: must be one of ADMIN, MANAGER, MEMBER", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Region partitions users and restaurants for visibility and permissions
type Region string

const (
	RegionIndia   Region = "INDIA"
	RegionAmerica Region = "AMERICA"
)

// Regions returns every region in declaration order
func Regions() []Region {
	return []Region{RegionIndia, RegionAmerica}
}

// ParseRegion converts a case-insensitive string into a Region
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid region %q: must be one of INDIA, AMERICA", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known regions
func (r Region) Valid() bool {
	switch r {
	case RegionIndia, RegionAmerica:
		return true
	}
	return false
}

func (r *Region) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRegion(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses returns every order status in declaration order
func OrderStatuses() []OrderStatus {
	return []OrderStatus{StatusPending, StatusPaid, StatusCancelled}
}

// ParseOrderStatus converts a case-insensitive string into an OrderStatus
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid order status %q: must be one of PENDING, PAID, CANCELLED", s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Settles reports whether moving to s pays or cancels the order
func (s OrderStatus) Settles() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanTransitionTo reports whether next follows the documented lifecycle:
// PENDING -> PAID|CANCELLED, PAID -> CANCELLED. CANCELLED is terminal.
// Setting the current status again is not a transition and is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusCancelled
	case StatusPaid:
		return next == StatusCancelled
	}
	return false
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

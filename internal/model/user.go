package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Role is a user privilege tag as reported by the auth service.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
	RoleParent  Role = "PARENT"
)

// FlexID is an opaque identifier that the backend serializes either as a
// JSON string or as a JSON number, depending on the originating service.
type FlexID string

// UnmarshalJSON accepts both string and numeric forms.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("parsing id: %w", err)
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parsing id: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

// User is the authenticated account returned by the auth service.
type User struct {
	ID             FlexID     `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Phone          string     `json:"phone,omitempty"`
	DocumentNumber string     `json:"documentNumber,omitempty"`
	Roles          []Role     `json:"roles"`
	EmailVerified  bool       `json:"emailVerified,omitempty"`
	Active         bool       `json:"active"`
	StudentID      *int64     `json:"studentId,omitempty"`
	TeacherID      *int64     `json:"teacherId,omitempty"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

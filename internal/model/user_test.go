package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIDAcceptsStringAndNumber(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want FlexID
	}{
		{"string", `{"id":"abc-123"}`, "abc-123"},
		{"number", `{"id":42}`, "42"},
		{"large number", `{"id":9007199254740993}`, "9007199254740993"},
		{"null", `{"id":null}`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &u))
			assert.Equal(t, tc.want, u.ID)
		})
	}
}

func TestFlexIDRejectsGarbage(t *testing.T) {
	var u User
	err := json.Unmarshal([]byte(`{"id":{"nested":true}}`), &u)
	assert.Error(t, err)
}

func TestHasRole(t *testing.T) {
	u := &User{Roles: []Role{RoleTeacher, RoleAdmin}}

	assert.True(t, u.HasRole(RoleAdmin))
	assert.True(t, u.HasRole(RoleTeacher))
	assert.False(t, u.HasRole(RoleStudent))

	var nilUser *User
	assert.False(t, nilUser.HasRole(RoleAdmin))
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ana Souza", (&User{FirstName: "Ana", LastName: "Souza"}).FullName())
	assert.Equal(t, "Ana", (&User{FirstName: "Ana"}).FullName())
	assert.Equal(t, "Souza", (&User{LastName: "Souza"}).FullName())
	assert.Empty(t, (*User)(nil).FullName())
}

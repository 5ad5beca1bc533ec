package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_StudentUID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Jane", want: "user_jane"},
		{name: "two words", in: "Jane Doe", want: "user_jane_doe"},
		{name: "surrounding whitespace", in: "  Jane Doe  ", want: "user_jane_doe"},
		{name: "whitespace runs collapse", in: "Jane   van  Doe", want: "user_jane_van_doe"},
		{name: "tabs and newlines", in: "Jane\tvan\nDoe", want: "user_jane_van_doe"},
		{name: "mixed case", in: "JANE DOE", want: "user_jane_doe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StudentUID(tt.in))
		})
	}

	// same display name, same identity
	assert.Equal(t, StudentUID("Jane Doe"), StudentUID("  jane   doe "))
}

func Test_User_password(t *testing.T) {
	var usr User
	assert.NoError(t, usr.SetPassword("s3cret"))
	assert.NotEmpty(t, usr.PasswordHash)

	assert.NoError(t, usr.CheckPassword("s3cret"))
	assert.Error(t, usr.CheckPassword("wrong"))
}

func Test_User_roles(t *testing.T) {
	usr := User{Roles: []string{RoleStudent}}
	assert.True(t, usr.IsStudent())
	assert.False(t, usr.IsTeacher())
	assert.False(t, usr.IsAdmin())

	usr.Roles = append(usr.Roles, RoleTeacher)
	assert.True(t, usr.IsTeacher())

	assert.Equal(t, 20, MaxRolePriority(usr.Roles))
	assert.Equal(t, 30, MaxRolePriority(AllRoles))
}

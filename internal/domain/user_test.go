package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (stubHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func TestNewUser(t *testing.T) {
	user, err := NewUser(" Ada ", " ada@example.org ", "s3cret", "forensic", stubHasher{})
	require.NoError(t, err)

	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.org", user.Email)
	assert.Equal(t, "hashed:s3cret", user.Password)
	assert.Equal(t, DepartmentForensic, user.Department)
}

func TestNewUser_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		userName   string
		email      string
		password   string
		department string
		want       error
	}{
		{"missing name", "", "ada@example.org", "pw", "admin", ErrInvalidInput},
		{"missing email", "Ada", "", "pw", "admin", ErrInvalidInput},
		{"malformed email", "Ada", "ada", "pw", "admin", ErrInvalidInput},
		{"missing password", "Ada", "ada@example.org", "", "admin", ErrInvalidInput},
		{"unknown department", "Ada", "ada@example.org", "pw", "finance", ErrInvalidDepartment},
		{"department casing", "Ada", "ada@example.org", "pw", "Admin", ErrInvalidDepartment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.userName, tt.email, tt.password, tt.department, stubHasher{})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewCredentials(t *testing.T) {
	creds, err := NewCredentials("ada@example.org", "pw", "account")
	require.NoError(t, err)
	assert.Equal(t, DepartmentAccount, creds.Department)

	_, err = NewCredentials("", "pw", "account")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewCredentials("ada@example.org", "pw", "")
	require.ErrorIs(t, err, ErrInvalidDepartment)
}

func TestDepartment(t *testing.T) {
	assert.Equal(t, "Academics", DepartmentAcademics.Title())
	assert.True(t, DepartmentAdmin.Holds("ADMIN"))
	assert.False(t, DepartmentAdmin.Holds(""))
	assert.False(t, DepartmentAdmin.Holds("account"))
}

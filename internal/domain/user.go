package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/hilthontt/doctrack/internal/infrastructure/validate"
)

type User struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Password   string     `json:"-"`
	Department Department `json:"department"`
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	// Create fails with ErrEmailTaken when the email is already registered
	// in any department.
	Create(ctx context.Context, user *User) error
	FindByEmailAndDepartment(ctx context.Context, email string, department Department) (*User, error)
}

var (
	validateName = validate.Field("name", validate.Required(), validate.MaxLength(100))

	validateEmail = validate.Field("email",
		validate.Required(),
		validate.MaxLength(254),
		validate.NoSpaces(),
		validate.Email(),
	)

	// bcrypt only looks at the first 72 bytes
	validatePassword = validate.Field("password", validate.Required(), validate.MaxLength(72))
)

// NewUser validates signup input and returns a user whose Password is
// already hashed.
func NewUser(rawName, rawEmail, password, rawDepartment string, hasher PasswordHasher) (*User, error) {
	name := strings.TrimSpace(rawName)
	email := strings.TrimSpace(rawEmail)

	for _, check := range []struct {
		v     validate.Validator
		value string
	}{
		{validateName, name},
		{validateEmail, email},
		{validatePassword, password},
	} {
		if err := check.v(check.value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	department, err := ParseDepartment(strings.TrimSpace(rawDepartment))
	if err != nil {
		return nil, err
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &User{
		Name:       name,
		Email:      email,
		Password:   hash,
		Department: department,
	}, nil
}

// Credentials is a validated login attempt.
type Credentials struct {
	Email      string
	Password   string
	Department Department
}

func NewCredentials(rawEmail, password, rawDepartment string) (*Credentials, error) {
	email := strings.TrimSpace(rawEmail)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	department, err := ParseDepartment(strings.TrimSpace(rawDepartment))
	if err != nil {
		return nil, err
	}

	return &Credentials{Email: email, Password: password, Department: department}, nil
}

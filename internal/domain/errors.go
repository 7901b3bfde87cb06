package domain

import "errors"

var (
	// validation
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidDepartment = errors.New("invalid department")
	ErrInvalidAction     = errors.New("invalid action")

	// accounts
	ErrEmailTaken         = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email, department, or password")

	// documents
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentExists   = errors.New("document already exists")
	ErrCodeNotFound     = errors.New("qr code not found")
)

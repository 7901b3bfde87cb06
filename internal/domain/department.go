package domain

import (
	"fmt"
	"strings"
)

type Department string

const (
	DepartmentAdmin     Department = "admin"
	DepartmentForensic  Department = "forensic"
	DepartmentAccount   Department = "account"
	DepartmentAcademics Department = "academics"
)

// Departments is the closed set accepted at signup, login and listing.
var Departments = []Department{
	DepartmentAdmin,
	DepartmentForensic,
	DepartmentAccount,
	DepartmentAcademics,
}

// ParseDepartment matches raw exactly; "Admin" is not a department.
func ParseDepartment(raw string) (Department, error) {
	for _, d := range Departments {
		if string(d) == raw {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDepartment, raw)
}

func (d Department) String() string {
	return string(d)
}

// Title returns the display form, e.g. "Forensic".
func (d Department) Title() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

// Holds reports whether a document currently sitting at place belongs to d.
func (d Department) Holds(place string) bool {
	return place != "" && strings.EqualFold(place, string(d))
}

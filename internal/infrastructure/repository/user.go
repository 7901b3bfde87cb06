package repository

import (
	"context"
	"fmt"

	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/spreadsheet"
)

var userColumns = []string{"Name", "Email", "Password", "Department"}

type userRepository struct {
	store *tableStore
}

// NewUserRepository stores accounts as rows of the workbook at path.
func NewUserRepository(path string) domain.UserRepository {
	return &userRepository{store: newTableStore(path)}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	t, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	users := make([]domain.User, 0, len(t.Rows))
	for _, row := range t.Rows {
		users = append(users, decodeUser(row))
	}
	return users, nil
}

// Create checks for the email and appends under the same lock, so two
// signups with one address can't both succeed.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.Email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	return r.store.Update(ctx, func(t *spreadsheet.Table) error {
		for _, row := range t.Rows {
			if row["Email"] == user.Email {
				return fmt.Errorf("%w: %s", domain.ErrEmailTaken, user.Email)
			}
		}

		t.Header = userColumns
		t.Rows = append(t.Rows, spreadsheet.Row{
			"Name":       user.Name,
			"Email":      user.Email,
			"Password":   user.Password,
			"Department": user.Department.String(),
		})
		return nil
	})
}

func (r *userRepository) FindByEmailAndDepartment(ctx context.Context, email string, department domain.Department) (*domain.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Email == email && users[i].Department == department {
			return &users[i], nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func decodeUser(row spreadsheet.Row) domain.User {
	return domain.User{
		Name:       row["Name"],
		Email:      row["Email"],
		Password:   row["Password"],
		Department: domain.Department(row["Department"]),
	}
}

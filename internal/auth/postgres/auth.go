package postgres

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal/auth"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForEmail(email string) (string, int64, error) {
	var passwordHash sql.NullString
	var userID int64
	query := `SELECT id, password_hash FROM users WHERE email = ? AND is_active = true`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, auth.ErrUserNotFound
		}
		return "", 0, err
	}
	if !passwordHash.Valid {
		// OAuth-provisioned account, no local password
		return "", 0, auth.ErrInvalidCredentials
	}
	return passwordHash.String, userID, nil
}

func (r *Repository) GetSessionUser(userID int64) (*auth.User, error) {
	var user auth.User

	query := `SELECT id, email, name, role, hourly_rate FROM users WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.HourlyRate); err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *Repository) GetByEmail(email string) (*auth.User, error) {
	var user auth.User

	query := `SELECT id, email, name, role, hourly_rate FROM users WHERE email = ? AND is_active = true`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.HourlyRate); err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

// Create provisions a user on first OAuth sign-in. New arrivals are
// developers with a zero rate until an admin sets one.
func (r *Repository) Create(email, name string) (*auth.User, error) {
	err := r.db.Exec(
		`INSERT INTO users (email, name, role, hourly_rate, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, 0, true, now(), now())`,
		email, name, auth.RoleDeveloper,
	).Error
	if err != nil {
		return nil, err
	}

	user, err := r.GetByEmail(email)
	if err != nil {
		return nil, errors.Join(errors.New("created user not readable"), err)
	}
	return user, nil
}

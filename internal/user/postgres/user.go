package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal/user"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) List() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(u *user.User) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"name":        u.Name,
			"role":        u.Role,
			"hourly_rate": u.HourlyRate,
			"jira_linked": u.JiraLinked,
			"is_active":   u.IsActive,
			"updated_at":  time.Now(),
		}).Error
}

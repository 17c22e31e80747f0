package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal/task"
)

// TaskRepository implements the task.Repository interface using GORM
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) task.Repository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(t *task.Task) error {
	return r.db.Create(t).Error
}

func (r *TaskRepository) GetByID(id int64) (*task.Task, error) {
	var t task.Task
	err := r.db.Where("id = ?", id).First(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Update(t *task.Task) error {
	return r.db.Model(&task.Task{}).
		Where("id = ?", t.ID).
		Updates(map[string]interface{}{
			"description": t.Description,
			"hours":       t.Hours,
			"updated_at":  t.UpdatedAt,
		}).Error
}

func (r *TaskRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&task.Task{}).Error
}

func (r *TaskRepository) ListByWeek(weekID int64, statusFilter string) ([]*task.Task, error) {
	var tasks []*task.Task
	q := r.db.Where("week_id = ?", weekID)
	if statusFilter != "" && statusFilter != task.FilterAll {
		q = q.Where("status = ?", statusFilter)
	}
	err := q.Order("created_at ASC").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByUserAndWeek(userID, weekID int64) ([]*task.Task, error) {
	var tasks []*task.Task
	err := r.db.Where("user_id = ? AND week_id = ?", userID, weekID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// UpdateReview only touches pending rows so a settled task stays settled even
// under racing reviewers.
func (r *TaskRepository) UpdateReview(id int64, status, comment string, reviewerID int64, reviewedAt time.Time) error {
	updates := map[string]interface{}{
		"status":      status,
		"reviewed_by": reviewerID,
		"reviewed_at": reviewedAt,
		"updated_at":  reviewedAt,
	}
	if comment != "" {
		updates["admin_comment"] = comment
	}

	result := r.db.Model(&task.Task{}).
		Where("id = ? AND status = ?", id, task.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return task.ErrTaskNotPending
	}
	return nil
}

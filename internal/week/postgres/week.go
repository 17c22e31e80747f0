package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal/week"
)

// WeekRepository implements the week.Repository interface using GORM
type WeekRepository struct {
	db *gorm.DB
}

func NewWeekRepository(db *gorm.DB) week.Repository {
	return &WeekRepository{db: db}
}

func (r *WeekRepository) Create(w *week.Week) error {
	return r.db.Create(w).Error
}

func (r *WeekRepository) GetByID(id int64) (*week.Week, error) {
	var w week.Week
	err := r.db.Where("id = ?", id).First(&w).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, week.ErrWeekNotFound
		}
		return nil, err
	}
	return &w, nil
}

// OpenWeek returns the open week. Ordering is defensive: the service refuses
// to open a second week, but stale data should still resolve predictably.
func (r *WeekRepository) OpenWeek() (*week.Week, error) {
	var w week.Week
	err := r.db.Where("is_open = ?", true).
		Order("start_date DESC").
		First(&w).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, week.ErrNoOpenWeek
		}
		return nil, err
	}
	return &w, nil
}

func (r *WeekRepository) SetOpen(id int64, isOpen bool) error {
	return r.db.Model(&week.Week{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_open":    isOpen,
			"updated_at": time.Now(),
		}).Error
}

func (r *WeekRepository) ListWithTaskCounts() ([]*week.WeekWithCounts, error) {
	var rows []*week.WeekWithCounts
	err := r.db.Raw(`
		SELECT w.id, w.start_date, w.end_date, w.is_open, w.created_at, w.updated_at,
		       COUNT(t.id) AS total_tasks,
		       COALESCE(SUM(CASE WHEN t.status = 'pending' THEN 1 ELSE 0 END), 0)  AS pending_tasks,
		       COALESCE(SUM(CASE WHEN t.status = 'approved' THEN 1 ELSE 0 END), 0) AS approved_tasks,
		       COALESCE(SUM(CASE WHEN t.status = 'rejected' THEN 1 ELSE 0 END), 0) AS rejected_tasks
		FROM weeks w
		LEFT JOIN tasks t ON t.week_id = w.id
		GROUP BY w.id
		ORDER BY w.start_date DESC`).
		Scan(&rows).Error
	return rows, err
}

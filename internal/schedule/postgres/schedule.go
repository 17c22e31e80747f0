package postgres

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/timesheet-management/internal/schedule"
)

// ScheduleRepository implements the schedule.Repository interface using GORM
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) schedule.Repository {
	return &ScheduleRepository{db: db}
}

// Upsert writes the schedule in one conflict-aware statement. A plain
// read-then-insert would let two concurrent calls both insert.
func (r *ScheduleRepository) Upsert(s *schedule.WorkSchedule) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"days_per_week", "hours_per_day", "updated_by", "updated_at",
		}),
	}).Create(s).Error
}

func (r *ScheduleRepository) GetByUserID(userID int64) (*schedule.WorkSchedule, error) {
	var s schedule.WorkSchedule
	err := r.db.Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, schedule.ErrScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

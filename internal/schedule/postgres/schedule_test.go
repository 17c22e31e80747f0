package postgres

import (
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal/schedule"
)

func TestScheduleRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ScheduleRepository Suite")
}

type SQLiteWorkSchedule struct {
	ID          int64     `gorm:"primaryKey"`
	UserID      int64     `gorm:"column:user_id;uniqueIndex;not null"`
	DaysPerWeek int       `gorm:"column:days_per_week;not null"`
	HoursPerDay float64   `gorm:"column:hours_per_day;not null"`
	UpdatedBy   int64     `gorm:"column:updated_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (SQLiteWorkSchedule) TableName() string {
	return "work_schedules"
}

var _ = Describe("ScheduleRepository", func() {
	var (
		db   *gorm.DB
		repo schedule.Repository
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		err = db.AutoMigrate(&SQLiteWorkSchedule{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewScheduleRepository(db)
	})

	AfterEach(func() {
		Expect(db.Exec("DROP TABLE work_schedules").Error).NotTo(HaveOccurred())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	newSchedule := func(userID int64, days int, hours float64) *schedule.WorkSchedule {
		now := time.Now()
		return &schedule.WorkSchedule{
			UserID:      userID,
			DaysPerWeek: days,
			HoursPerDay: hours,
			UpdatedBy:   1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	countRows := func(userID int64) int64 {
		var count int64
		Expect(db.Model(&SQLiteWorkSchedule{}).Where("user_id = ?", userID).Count(&count).Error).NotTo(HaveOccurred())
		return count
	}

	Describe("Upsert", func() {
		It("inserts a new schedule", func() {
			Expect(repo.Upsert(newSchedule(10, 5, 8))).To(Succeed())

			got, err := repo.GetByUserID(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.DaysPerWeek).To(Equal(5))
		})

		It("updates in place on a second write for the same user", func() {
			Expect(repo.Upsert(newSchedule(10, 5, 8))).To(Succeed())
			Expect(repo.Upsert(newSchedule(10, 3, 6))).To(Succeed())

			Expect(countRows(10)).To(Equal(int64(1)))

			got, err := repo.GetByUserID(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.DaysPerWeek).To(Equal(3))
			Expect(got.HoursPerDay).To(Equal(6.0))
		})

		It("converges on one row under concurrent writes for a new user", func() {
			var wg sync.WaitGroup
			errs := make([]error, 2)

			wg.Add(2)
			go func() {
				defer wg.Done()
				errs[0] = repo.Upsert(newSchedule(42, 5, 8))
			}()
			go func() {
				defer wg.Done()
				errs[1] = repo.Upsert(newSchedule(42, 4, 7))
			}()
			wg.Wait()

			Expect(errs[0]).NotTo(HaveOccurred())
			Expect(errs[1]).NotTo(HaveOccurred())
			Expect(countRows(42)).To(Equal(int64(1)))
		})
	})

	Describe("GetByUserID", func() {
		It("returns a typed error for an unknown user", func() {
			_, err := repo.GetByUserID(999)

			Expect(err).To(Equal(schedule.ErrScheduleNotFound))
		})
	})
})

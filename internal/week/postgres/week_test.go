package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal/week"
)

func TestWeekRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "WeekRepository Suite")
}

type SQLiteWeek struct {
	ID        int64     `gorm:"primaryKey"`
	StartDate time.Time `gorm:"column:start_date;not null"`
	EndDate   time.Time `gorm:"column:end_date;not null"`
	IsOpen    bool      `gorm:"column:is_open;default:false"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SQLiteWeek) TableName() string {
	return "weeks"
}

type SQLiteTask struct {
	ID          int64     `gorm:"primaryKey"`
	UserID      int64     `gorm:"column:user_id;not null"`
	WeekID      int64     `gorm:"column:week_id;not null"`
	Description string    `gorm:"not null"`
	Hours       float64   `gorm:"not null"`
	Status      string    `gorm:"default:'pending'"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (SQLiteTask) TableName() string {
	return "tasks"
}

var _ = Describe("WeekRepository", func() {
	var (
		db   *gorm.DB
		repo week.Repository
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteWeek{}, &SQLiteTask{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewWeekRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	newWeek := func(start string, open bool) *week.Week {
		startDate, err := time.Parse("2006-01-02", start)
		Expect(err).NotTo(HaveOccurred())
		return &week.Week{
			StartDate: startDate,
			EndDate:   startDate.AddDate(0, 0, 6),
			IsOpen:    open,
		}
	}

	Describe("OpenWeek", func() {
		It("returns the open week", func() {
			closed := newWeek("2025-03-03", false)
			open := newWeek("2025-03-10", true)
			Expect(repo.Create(closed)).To(Succeed())
			Expect(repo.Create(open)).To(Succeed())

			got, err := repo.OpenWeek()

			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(open.ID))
		})

		It("returns a typed error when nothing is open", func() {
			Expect(repo.Create(newWeek("2025-03-03", false))).To(Succeed())

			_, err := repo.OpenWeek()

			Expect(err).To(Equal(week.ErrNoOpenWeek))
		})
	})

	Describe("SetOpen", func() {
		It("toggles the flag", func() {
			w := newWeek("2025-03-10", true)
			Expect(repo.Create(w)).To(Succeed())

			Expect(repo.SetOpen(w.ID, false)).To(Succeed())

			got, err := repo.GetByID(w.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.IsOpen).To(BeFalse())
		})
	})

	Describe("ListWithTaskCounts", func() {
		It("counts tasks per status", func() {
			w := newWeek("2025-03-10", true)
			Expect(repo.Create(w)).To(Succeed())

			for _, status := range []string{"pending", "approved", "approved", "rejected"} {
				task := &SQLiteTask{
					UserID:      10,
					WeekID:      w.ID,
					Description: "work",
					Hours:       2,
					Status:      status,
				}
				Expect(db.Create(task).Error).NotTo(HaveOccurred())
			}

			rows, err := repo.ListWithTaskCounts()

			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].TotalTasks).To(Equal(int64(4)))
			Expect(rows[0].PendingTasks).To(Equal(int64(1)))
			Expect(rows[0].ApprovedTasks).To(Equal(int64(2)))
			Expect(rows[0].RejectedTasks).To(Equal(int64(1)))
		})

		It("includes weeks without tasks", func() {
			Expect(repo.Create(newWeek("2025-03-10", false))).To(Succeed())

			rows, err := repo.ListWithTaskCounts()

			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].TotalTasks).To(Equal(int64(0)))
		})
	})
})

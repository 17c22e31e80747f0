package schedule_test

import (
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/schedule"
)

func TestScheduleService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ScheduleService Suite")
}

type mockScheduleRepo struct {
	byUser map[int64]*schedule.WorkSchedule
	nextID int64
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{byUser: make(map[int64]*schedule.WorkSchedule), nextID: 1}
}

func (m *mockScheduleRepo) Upsert(s *schedule.WorkSchedule) error {
	if existing, ok := m.byUser[s.UserID]; ok {
		existing.DaysPerWeek = s.DaysPerWeek
		existing.HoursPerDay = s.HoursPerDay
		existing.UpdatedBy = s.UpdatedBy
		existing.UpdatedAt = s.UpdatedAt
		s.ID = existing.ID
		return nil
	}
	s.ID = m.nextID
	m.nextID++
	cp := *s
	m.byUser[s.UserID] = &cp
	return nil
}

func (m *mockScheduleRepo) GetByUserID(userID int64) (*schedule.WorkSchedule, error) {
	s, ok := m.byUser[userID]
	if !ok {
		return nil, schedule.ErrScheduleNotFound
	}
	cp := *s
	return &cp, nil
}

type mockRates struct {
	rates map[int64]float64
}

func (m *mockRates) HourlyRateFor(userID int64) (float64, error) {
	rate, ok := m.rates[userID]
	if !ok {
		return 0, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}
	return rate, nil
}

var _ = Describe("Schedule Service", func() {
	var (
		repo      *mockScheduleRepo
		rates     *mockRates
		service   *schedule.Service
		admin     *auth.User
		hr        *auth.User
		developer *auth.User
	)

	BeforeEach(func() {
		repo = newMockScheduleRepo()
		rates = &mockRates{rates: map[int64]float64{10: 50}}
		service = schedule.NewService(repo, rates, slog.New(slog.NewTextHandler(os.Stderr, nil)))
		admin = &auth.User{ID: 1, Role: auth.RoleAdmin}
		hr = &auth.User{ID: 2, Role: auth.RoleHR}
		developer = &auth.User{ID: 10, Role: auth.RoleDeveloper, HourlyRate: 50}
	})

	Describe("UpsertSchedule", func() {
		It("creates a schedule for an admin", func() {
			sched, err := service.UpsertSchedule(admin, developer.ID, schedule.UpsertScheduleDTO{
				DaysPerWeek: 5,
				HoursPerDay: 8,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(sched.ExpectedWeeklyHours()).To(Equal(40.0))
		})

		It("replaces an existing schedule instead of adding a row", func() {
			_, err := service.UpsertSchedule(admin, developer.ID, schedule.UpsertScheduleDTO{
				DaysPerWeek: 5,
				HoursPerDay: 8,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpsertSchedule(admin, developer.ID, schedule.UpsertScheduleDTO{
				DaysPerWeek: 3,
				HoursPerDay: 6,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.byUser).To(HaveLen(1))
			Expect(repo.byUser[developer.ID].DaysPerWeek).To(Equal(3))
		})

		It("rejects days outside 1..7", func() {
			_, err := service.UpsertSchedule(admin, developer.ID, schedule.UpsertScheduleDTO{
				DaysPerWeek: 8,
				HoursPerDay: 8,
			})

			Expect(err).To(HaveOccurred())
		})

		It("rejects non-positive hours", func() {
			_, err := service.UpsertSchedule(admin, developer.ID, schedule.UpsertScheduleDTO{
				DaysPerWeek: 5,
				HoursPerDay: 0,
			})

			Expect(err).To(HaveOccurred())
		})

		It("refuses unknown users", func() {
			_, err := service.UpsertSchedule(admin, 999, schedule.UpsertScheduleDTO{
				DaysPerWeek: 5,
				HoursPerDay: 8,
			})

			Expect(err).To(HaveOccurred())
		})

		It("refuses non-admins", func() {
			_, err := service.UpsertSchedule(hr, developer.ID, schedule.UpsertScheduleDTO{
				DaysPerWeek: 5,
				HoursPerDay: 8,
			})

			Expect(err).To(Equal(schedule.ErrNotAllowed))
		})
	})

	Describe("GetSchedule", func() {
		BeforeEach(func() {
			_, err := service.UpsertSchedule(admin, developer.ID, schedule.UpsertScheduleDTO{
				DaysPerWeek: 5,
				HoursPerDay: 8,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("derives expected hours and earnings", func() {
			view, err := service.GetSchedule(developer, developer.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(view.ExpectedWeeklyHours).To(Equal(40.0))
			Expect(view.ExpectedWeeklyEarnings).To(Equal(2000.0))
		})

		It("lets reviewers read any schedule", func() {
			_, err := service.GetSchedule(hr, developer.ID)

			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses developers reading others' schedules", func() {
			other := &auth.User{ID: 77, Role: auth.RoleDeveloper}

			_, err := service.GetSchedule(other, developer.ID)

			Expect(err).To(Equal(schedule.ErrNotAllowed))
		})

		It("reports a missing schedule", func() {
			_, err := service.GetSchedule(admin, 999)

			Expect(err).To(Equal(schedule.ErrScheduleNotFound))
		})
	})
})

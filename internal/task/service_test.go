package task_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/task"
	"github.com/frahmantamala/timesheet-management/internal/week"
)

func TestTaskService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TaskService Suite")
}

type mockTaskRepo struct {
	tasks  map[int64]*task.Task
	nextID int64
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[int64]*task.Task), nextID: 1}
}

func (m *mockTaskRepo) Create(t *task.Task) error {
	t.ID = m.nextID
	m.nextID++
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockTaskRepo) GetByID(id int64) (*task.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaskRepo) Update(t *task.Task) error {
	stored, ok := m.tasks[t.ID]
	if !ok {
		return task.ErrTaskNotFound
	}
	stored.Description = t.Description
	stored.Hours = t.Hours
	stored.UpdatedAt = t.UpdatedAt
	return nil
}

func (m *mockTaskRepo) Delete(id int64) error {
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) ListByWeek(weekID int64, statusFilter string) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range m.tasks {
		if t.WeekID != weekID {
			continue
		}
		if statusFilter != "" && statusFilter != task.FilterAll && t.Status != statusFilter {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockTaskRepo) ListByUserAndWeek(userID, weekID int64) ([]*task.Task, error) {
	var out []*task.Task
	for _, t := range m.tasks {
		if t.UserID == userID && t.WeekID == weekID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) UpdateReview(id int64, status, comment string, reviewerID int64, reviewedAt time.Time) error {
	t, ok := m.tasks[id]
	if !ok {
		return task.ErrTaskNotFound
	}
	if t.Status != task.StatusPending {
		return task.ErrTaskNotPending
	}
	t.Status = status
	if comment != "" {
		t.AdminComment = &comment
	}
	t.ReviewedBy = &reviewerID
	t.ReviewedAt = &reviewedAt
	return nil
}

type mockWeekRepo struct {
	open *week.Week
}

func (m *mockWeekRepo) OpenWeek() (*week.Week, error) {
	if m.open == nil {
		return nil, week.ErrNoOpenWeek
	}
	return m.open, nil
}

var _ = Describe("Task Service", func() {
	var (
		repo      *mockTaskRepo
		weeks     *mockWeekRepo
		service   *task.Service
		developer *auth.User
		reviewer  *auth.User
		ctx       context.Context
	)

	BeforeEach(func() {
		repo = newMockTaskRepo()
		weeks = &mockWeekRepo{open: &week.Week{ID: 1, IsOpen: true}}
		bus := events.NewEventBus(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		service = task.NewService(repo, weeks, bus, slog.New(slog.NewTextHandler(os.Stderr, nil)))
		developer = &auth.User{ID: 10, Email: "dev@example.com", Role: auth.RoleDeveloper, HourlyRate: 50}
		reviewer = &auth.User{ID: 20, Email: "hr@example.com", Role: auth.RoleHR}
		ctx = context.Background()
	})

	Describe("CreateTask", func() {
		It("creates a pending task in the open week", func() {
			created, err := service.CreateTask(developer, task.CreateTaskDTO{
				Description: "implement billing export",
				Hours:       6,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.Status).To(Equal(task.StatusPending))
			Expect(created.WeekID).To(Equal(int64(1)))
			Expect(created.UserID).To(Equal(developer.ID))
		})

		It("fails when no week is open", func() {
			weeks.open = nil

			_, err := service.CreateTask(developer, task.CreateTaskDTO{
				Description: "implement billing export",
				Hours:       6,
			})

			Expect(err).To(Equal(week.ErrNoOpenWeek))
		})

		It("rejects non-positive hours", func() {
			_, err := service.CreateTask(developer, task.CreateTaskDTO{
				Description: "implement billing export",
				Hours:       0,
			})

			Expect(err).To(HaveOccurred())
		})

		It("rejects an empty description", func() {
			_, err := service.CreateTask(developer, task.CreateTaskDTO{
				Description: "   ",
				Hours:       4,
			})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateTask", func() {
		var existing *task.Task

		BeforeEach(func() {
			var err error
			existing, err = service.CreateTask(developer, task.CreateTaskDTO{
				Description: "fix flaky sync job",
				Hours:       3,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("updates description and hours for the owner", func() {
			updated, err := service.UpdateTask(developer, existing.ID, task.UpdateTaskDTO{
				Description: "fix flaky sync job and add retries",
				Hours:       5,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Hours).To(Equal(5.0))
		})

		It("refuses edits by another user", func() {
			other := &auth.User{ID: 99, Role: auth.RoleDeveloper}

			_, err := service.UpdateTask(other, existing.ID, task.UpdateTaskDTO{
				Description: "hijack",
				Hours:       1,
			})

			Expect(err).To(Equal(task.ErrTaskNotOwned))
		})

		It("refuses edits once the task is reviewed", func() {
			_, err := service.ReviewTask(ctx, reviewer, existing.ID, task.ReviewTaskDTO{Status: task.StatusApproved})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateTask(developer, existing.ID, task.UpdateTaskDTO{
				Description: "too late",
				Hours:       2,
			})

			Expect(err).To(Equal(task.ErrTaskNotPending))
		})
	})

	Describe("DeleteTask", func() {
		It("deletes a pending task owned by the caller", func() {
			created, err := service.CreateTask(developer, task.CreateTaskDTO{
				Description: "write onboarding docs",
				Hours:       2,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteTask(developer, created.ID)).To(Succeed())

			_, err = repo.GetByID(created.ID)
			Expect(err).To(Equal(task.ErrTaskNotFound))
		})

		It("refuses to delete an approved task", func() {
			created, err := service.CreateTask(developer, task.CreateTaskDTO{
				Description: "write onboarding docs",
				Hours:       2,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ReviewTask(ctx, reviewer, created.ID, task.ReviewTaskDTO{Status: task.StatusApproved})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteTask(developer, created.ID)).To(Equal(task.ErrTaskNotPending))
		})
	})

	Describe("ReviewTask", func() {
		var pending *task.Task

		BeforeEach(func() {
			var err error
			pending, err = service.CreateTask(developer, task.CreateTaskDTO{
				Description: "migrate legacy reports",
				Hours:       8,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("approves a pending task and records the reviewer", func() {
			reviewed, err := service.ReviewTask(ctx, reviewer, pending.ID, task.ReviewTaskDTO{Status: task.StatusApproved})

			Expect(err).NotTo(HaveOccurred())
			Expect(reviewed.Status).To(Equal(task.StatusApproved))
			Expect(reviewed.ReviewedBy).NotTo(BeNil())
			Expect(*reviewed.ReviewedBy).To(Equal(reviewer.ID))
			Expect(reviewed.ReviewedAt).NotTo(BeNil())
		})

		It("requires a comment when rejecting", func() {
			_, err := service.ReviewTask(ctx, reviewer, pending.ID, task.ReviewTaskDTO{Status: task.StatusRejected})

			Expect(err).To(HaveOccurred())

			stored, getErr := repo.GetByID(pending.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(task.StatusPending))
		})

		It("rejects with a comment and stores it", func() {
			reviewed, err := service.ReviewTask(ctx, reviewer, pending.ID, task.ReviewTaskDTO{
				Status:  task.StatusRejected,
				Comment: "hours look inflated, please split the task",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(reviewed.Status).To(Equal(task.StatusRejected))
			Expect(reviewed.AdminComment).NotTo(BeNil())
			Expect(*reviewed.AdminComment).To(Equal("hours look inflated, please split the task"))
		})

		It("refuses re-review of a settled task", func() {
			_, err := service.ReviewTask(ctx, reviewer, pending.ID, task.ReviewTaskDTO{Status: task.StatusApproved})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ReviewTask(ctx, reviewer, pending.ID, task.ReviewTaskDTO{
				Status:  task.StatusRejected,
				Comment: "changed my mind",
			})

			Expect(err).To(Equal(task.ErrTaskNotPending))
		})

		It("refuses review by a developer", func() {
			_, err := service.ReviewTask(ctx, developer, pending.ID, task.ReviewTaskDTO{Status: task.StatusApproved})

			Expect(err).To(Equal(task.ErrNotAllowed))
		})
	})

	Describe("ListTasksForReview", func() {
		BeforeEach(func() {
			first, err := service.CreateTask(developer, task.CreateTaskDTO{Description: "task one", Hours: 2})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateTask(developer, task.CreateTaskDTO{Description: "task two", Hours: 3})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ReviewTask(ctx, reviewer, first.ID, task.ReviewTaskDTO{Status: task.StatusApproved})
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists all tasks in the open week by default", func() {
			tasks, err := service.ListTasksForReview(reviewer, "")

			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(2))
		})

		It("narrows to a single status", func() {
			tasks, err := service.ListTasksForReview(reviewer, task.FilterApproved)

			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(1))
			Expect(tasks[0].Status).To(Equal(task.StatusApproved))
		})

		It("rejects an unknown filter", func() {
			_, err := service.ListTasksForReview(reviewer, "archived")

			Expect(err).To(HaveOccurred())
		})

		It("refuses developers", func() {
			_, err := service.ListTasksForReview(developer, "")

			Expect(err).To(Equal(task.ErrNotAllowed))
		})
	})

	Describe("ComputeWeekSummary", func() {
		It("sums hours and payouts, counting only approved hours as approved", func() {
			first, err := service.CreateTask(developer, task.CreateTaskDTO{Description: "task one", Hours: 4})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateTask(developer, task.CreateTaskDTO{Description: "task two", Hours: 6})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ReviewTask(ctx, reviewer, first.ID, task.ReviewTaskDTO{Status: task.StatusApproved})
			Expect(err).NotTo(HaveOccurred())

			summary, err := service.ComputeWeekSummary(developer)

			Expect(err).NotTo(HaveOccurred())
			Expect(summary.TaskCount).To(Equal(2))
			Expect(summary.TotalHours).To(Equal(10.0))
			Expect(summary.ApprovedHours).To(Equal(4.0))
			Expect(summary.ApprovedHours).To(BeNumerically("<=", summary.TotalHours))
			Expect(summary.TotalPayout).To(Equal(500.0))
			Expect(summary.ApprovedPayout).To(Equal(200.0))
		})

		It("excludes other users' tasks", func() {
			other := &auth.User{ID: 77, Role: auth.RoleDeveloper, HourlyRate: 80}
			_, err := service.CreateTask(other, task.CreateTaskDTO{Description: "someone else", Hours: 9})
			Expect(err).NotTo(HaveOccurred())

			summary, err := service.ComputeWeekSummary(developer)

			Expect(err).NotTo(HaveOccurred())
			Expect(summary.TaskCount).To(Equal(0))
			Expect(summary.TotalHours).To(Equal(0.0))
		})
	})
})

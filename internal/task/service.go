package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/week"
)

// Repository defines the data access methods for tasks
type Repository interface {
	Create(task *Task) error
	GetByID(id int64) (*Task, error)
	Update(task *Task) error
	Delete(id int64) error
	ListByWeek(weekID int64, statusFilter string) ([]*Task, error)
	ListByUserAndWeek(userID, weekID int64) ([]*Task, error)
	UpdateReview(id int64, status, comment string, reviewerID int64, reviewedAt time.Time) error
}

// WeekRepository is the slice of the week store this workflow needs.
type WeekRepository interface {
	OpenWeek() (*week.Week, error)
}

type Service struct {
	repo   Repository
	weeks  WeekRepository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, weeks WeekRepository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		weeks:  weeks,
		bus:    bus,
		logger: logger,
	}
}

// CreateTask submits work against the currently open week.
func (s *Service) CreateTask(actor *auth.User, dto CreateTaskDTO) (*Task, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("task validation failed", "error", err, "user_id", actor.ID)
		return nil, err
	}

	open, err := s.weeks.OpenWeek()
	if err != nil || open == nil {
		s.logger.Warn("task rejected: no open week", "user_id", actor.ID)
		return nil, week.ErrNoOpenWeek
	}

	now := time.Now()
	task := &Task{
		UserID:      actor.ID,
		WeekID:      open.ID,
		Description: dto.Description,
		Hours:       dto.Hours,
		Status:      StatusPending,
		IssueRef:    dto.IssueRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(task); err != nil {
		s.logger.Error("failed to create task", "error", err, "user_id", actor.ID)
		return nil, err
	}

	s.logger.Info("task created",
		"task_id", task.ID,
		"user_id", actor.ID,
		"week_id", open.ID,
		"hours", dto.Hours)

	return task, nil
}

// UpdateTask edits a submission. Only the owner may edit and only while the
// task is still pending review.
func (s *Service) UpdateTask(actor *auth.User, taskID int64, dto UpdateTaskDTO) (*Task, error) {
	task, err := s.repo.GetByID(taskID)
	if err != nil {
		return nil, ErrTaskNotFound
	}

	if task.UserID != actor.ID {
		s.logger.Warn("task update denied: not owner", "task_id", taskID, "user_id", actor.ID, "owner_id", task.UserID)
		return nil, ErrTaskNotOwned
	}
	if !task.IsPending() {
		s.logger.Warn("task update denied: not pending", "task_id", taskID, "status", task.Status)
		return nil, ErrTaskNotPending
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	task.Description = dto.Description
	task.Hours = dto.Hours
	task.UpdatedAt = time.Now()

	if err := s.repo.Update(task); err != nil {
		s.logger.Error("failed to update task", "error", err, "task_id", taskID)
		return nil, err
	}

	return task, nil
}

// DeleteTask removes a submission under the same ownership and status
// constraints as UpdateTask.
func (s *Service) DeleteTask(actor *auth.User, taskID int64) error {
	task, err := s.repo.GetByID(taskID)
	if err != nil {
		return ErrTaskNotFound
	}

	if task.UserID != actor.ID {
		s.logger.Warn("task delete denied: not owner", "task_id", taskID, "user_id", actor.ID)
		return ErrTaskNotOwned
	}
	if !task.IsPending() {
		s.logger.Warn("task delete denied: not pending", "task_id", taskID, "status", task.Status)
		return ErrTaskNotPending
	}

	if err := s.repo.Delete(taskID); err != nil {
		s.logger.Error("failed to delete task", "error", err, "task_id", taskID)
		return err
	}

	s.logger.Info("task deleted", "task_id", taskID, "user_id", actor.ID)
	return nil
}

// ReviewTask settles a pending task. Rejection requires a comment; the
// reviewer and timestamp are recorded either way.
func (s *Service) ReviewTask(ctx context.Context, actor *auth.User, taskID int64, dto ReviewTaskDTO) (*Task, error) {
	if !auth.Authorize(actor, auth.ActionReviewTasks) {
		s.logger.Warn("task review denied", "task_id", taskID, "user_id", actor.ID, "role", actor.Role)
		return nil, ErrNotAllowed
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	task, err := s.repo.GetByID(taskID)
	if err != nil {
		return nil, ErrTaskNotFound
	}

	if !task.CanBeReviewed() {
		s.logger.Warn("task review denied: already settled", "task_id", taskID, "status", task.Status)
		return nil, ErrTaskNotPending
	}

	reviewedAt := time.Now()
	if err := s.repo.UpdateReview(taskID, dto.Status, dto.Comment, actor.ID, reviewedAt); err != nil {
		s.logger.Error("failed to record task review", "error", err, "task_id", taskID)
		return nil, err
	}

	task.Status = dto.Status
	if dto.Comment != "" {
		task.AdminComment = &dto.Comment
	}
	task.ReviewedBy = &actor.ID
	task.ReviewedAt = &reviewedAt

	if err := s.bus.PublishSync(ctx, events.NewTaskReviewedEvent(taskID, actor.ID, dto.Status, dto.Comment)); err != nil {
		s.logger.Error("failed to publish task review event", "error", err, "task_id", taskID)
	}

	s.logger.Info("task reviewed",
		"task_id", taskID,
		"status", dto.Status,
		"reviewer_id", actor.ID)

	return task, nil
}

// ListTasksForReview returns tasks in the open week, optionally narrowed to
// one status.
func (s *Service) ListTasksForReview(actor *auth.User, statusFilter string) ([]*Task, error) {
	if !auth.Authorize(actor, auth.ActionReviewTasks) {
		s.logger.Warn("review listing denied", "user_id", actor.ID, "role", actor.Role)
		return nil, ErrNotAllowed
	}

	if statusFilter == "" {
		statusFilter = FilterAll
	}
	if !ValidStatusFilter(statusFilter) {
		return nil, internal.NewValidationError("invalid status filter", internal.ErrCodeValidationFailed)
	}

	open, err := s.weeks.OpenWeek()
	if err != nil || open == nil {
		return nil, week.ErrNoOpenWeek
	}

	tasks, err := s.repo.ListByWeek(open.ID, statusFilter)
	if err != nil {
		s.logger.Error("failed to list tasks for review", "error", err, "week_id", open.ID)
		return nil, err
	}

	return tasks, nil
}

// ListMyTasks returns the caller's tasks in the open week.
func (s *Service) ListMyTasks(actor *auth.User) ([]*Task, error) {
	open, err := s.weeks.OpenWeek()
	if err != nil || open == nil {
		return nil, week.ErrNoOpenWeek
	}

	tasks, err := s.repo.ListByUserAndWeek(actor.ID, open.ID)
	if err != nil {
		s.logger.Error("failed to list user tasks", "error", err, "user_id", actor.ID)
		return nil, err
	}

	return tasks, nil
}

// ComputeWeekSummary derives hour and payout totals for the caller's tasks
// in the open week.
func (s *Service) ComputeWeekSummary(actor *auth.User) (*WeekSummary, error) {
	open, err := s.weeks.OpenWeek()
	if err != nil || open == nil {
		return nil, week.ErrNoOpenWeek
	}

	tasks, err := s.repo.ListByUserAndWeek(actor.ID, open.ID)
	if err != nil {
		s.logger.Error("failed to load tasks for summary", "error", err, "user_id", actor.ID)
		return nil, err
	}

	summary := &WeekSummary{WeekID: open.ID, TaskCount: len(tasks)}
	for _, t := range tasks {
		summary.TotalHours += t.Hours
		if t.Status == StatusApproved {
			summary.ApprovedHours += t.Hours
		}
	}
	summary.TotalPayout = summary.TotalHours * actor.HourlyRate
	summary.ApprovedPayout = summary.ApprovedHours * actor.HourlyRate

	return summary, nil
}

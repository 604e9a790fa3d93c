// Package task contains the business logic for tasks: CRUD, kanban status
// moves, checklist ticking and the admin dashboard.
//
// The derived progress percentage and updated_at are recomputed here before
// every save, so a task at rest is always consistent with its checklist.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/teamtask/taskboard/internal/apperr"
	"github.com/teamtask/taskboard/internal/models"
	"github.com/teamtask/taskboard/internal/policy"
)

// TaskRepository describes the storage contract for tasks.
type TaskRepository interface {
	CreateTask(ctx context.Context, task models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, task models.Task) (int, error)
	DeleteTask(ctx context.Context, id string) (int, error)
	ListTasks(ctx context.Context) ([]*models.Task, error)
	ListTasksForUser(ctx context.Context, uid string) ([]*models.Task, error)
	ListTasksByStatus(ctx context.Context, status string) ([]*models.Task, error)
	ListTasksByStatusForUser(ctx context.Context, status, uid string) ([]*models.Task, error)
}

// UserDirectory resolves user references for display and lists users for the
// dashboard.
type UserDirectory interface {
	GetUserRefs(ctx context.Context, uids []string) (map[string]models.UserRef, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// Cache describes the methods used to cache single-task reads.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service implements the task operations.
type Service struct {
	repo  TaskRepository
	users UserDirectory
	cache Cache
	log   *slog.Logger
}

// New creates a new task Service.
func New(repo TaskRepository, users UserDirectory, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		users: users,
		cache: cache,
		log:   log,
	}
}

const cacheTTL = time.Hour

func cacheKey(id string) string {
	return fmt.Sprintf("task:%s", id)
}

// Create makes a new task. The creator becomes the owner; the assignee
// defaults to the creator, and only admins may assign someone else — for
// everyone else the field is stripped, not rejected.
func (s *Service) Create(ctx context.Context, caller models.Caller, req models.DummyTask) (*models.TaskView, error) {
	const op = "services.task.Create"

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	assignedTo := caller.UID
	if req.AssignedTo != "" && policy.CanSetAssignee(caller.Role) {
		assignedTo = req.AssignedTo
	}
	status := req.Status
	if status == "" {
		status = models.StatusToday
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := time.Now().UTC()
	task := models.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   caller.UID,
		AssignedTo:  &assignedTo,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		Points:      models.NewPoints(req.Points),
		Files:       []models.FileRef{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	task.RecalcProgress()

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new task", slog.String("id", task.ID))

	if err := s.cache.Set(cacheKey(task.ID), task, cacheTTL); err != nil {
		s.log.Warn("failed to cache task", slog.String("key", cacheKey(task.ID)), slog.Any("err", err))
	}

	return s.view(ctx, &task)
}

// List returns tasks visible to the caller, newest created first. Admins see
// everything; other users only tasks they created or are assigned to — the
// filter is applied server-side so unauthorized data never leaves the service.
func (s *Service) List(ctx context.Context, caller models.Caller) ([]*models.TaskView, error) {
	const op = "services.task.List"

	var tasks []*models.Task
	var err error
	if policy.IsAdmin(caller.Role) {
		tasks, err = s.repo.ListTasks(ctx)
	} else {
		tasks, err = s.repo.ListTasksForUser(ctx, caller.UID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.views(ctx, tasks)
}

// ListByStatus returns the caller's visible tasks in one kanban column.
// An empty column is an empty list, not an error.
func (s *Service) ListByStatus(ctx context.Context, caller models.Caller, status string) ([]*models.TaskView, error) {
	const op = "services.task.ListByStatus"

	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%s: status %q: %w", op, status, apperr.ErrNotFound)
	}

	var tasks []*models.Task
	var err error
	if policy.IsAdmin(caller.Role) {
		tasks, err = s.repo.ListTasksByStatus(ctx, status)
	} else {
		tasks, err = s.repo.ListTasksByStatusForUser(ctx, status, caller.UID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.views(ctx, tasks)
}

// Read returns a single task by ID, going through the cache. The same
// visibility rule as List applies: a task the caller neither created nor is
// assigned to answers not-found, so its existence is not revealed.
func (s *Service) Read(ctx context.Context, caller models.Caller, id string) (*models.TaskView, error) {
	const op = "services.task.Read"

	var task *models.Task
	found, err := s.cache.Get(cacheKey(id), &task)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", cacheKey(id)), slog.Any("err", err))
		found = false
	}
	if !found {
		task, err = s.repo.GetTask(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.cache.Set(cacheKey(id), task, cacheTTL); err != nil {
			s.log.Warn("failed to cache task", slog.String("key", cacheKey(id)), slog.Any("err", err))
		}
	}
	if !policy.CanViewTask(caller.Role, caller.UID, task) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return s.view(ctx, task)
}

// UpdateStatus moves a task to another kanban column. An assignee overwrite
// in the same request is honored only for admins.
func (s *Service) UpdateStatus(ctx context.Context, caller models.Caller, id string, req models.DummyStatusUpdate) (*models.TaskView, error) {
	const op = "services.task.UpdateStatus"

	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	task.Status = req.Status
	if req.AssignedTo != "" && policy.CanSetAssignee(caller.Role) {
		task.AssignedTo = &req.AssignedTo
	}

	return s.save(ctx, op, task)
}

// Update edits a task's fields. Only the creator or an admin may edit;
// provided fields overwrite, omitted fields stay unchanged. A new points list
// replaces the whole checklist and discards all completion marks. Changing
// the assignee stays admin-only and is stripped for everyone else.
func (s *Service) Update(ctx context.Context, caller models.Caller, id string, req models.DummyTaskUpdate) (*models.TaskView, error) {
	const op = "services.task.Update"

	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !policy.CanEditTask(caller.Role, caller.UID, task) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.AssignedTo != nil && policy.CanSetAssignee(caller.Role) {
		task.AssignedTo = req.AssignedTo
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		task.DueDate = dueDate
	}
	if req.Points != nil {
		task.Points = models.NewPoints(*req.Points)
	}

	return s.save(ctx, op, task)
}

// Assign reassigns a task to another user. Admin only.
func (s *Service) Assign(ctx context.Context, caller models.Caller, id, assignedTo string) (*models.TaskView, error) {
	const op = "services.task.Assign"

	if !policy.CanSetAssignee(caller.Role) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	task.AssignedTo = &assignedTo
	return s.save(ctx, op, task)
}

// TickPoint marks a checklist point completed by the caller. Ticking twice is
// idempotent; checklists are collaborative, so task ownership is not required.
func (s *Service) TickPoint(ctx context.Context, caller models.Caller, id string, pointIdx int) (*models.TaskView, error) {
	const op = "services.task.TickPoint"

	if !policy.CanTickPoint(caller.Role) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if pointIdx < 0 || pointIdx >= len(task.Points) {
		return nil, fmt.Errorf("%s: point %d: %w", op, pointIdx, apperr.ErrNotFound)
	}
	task.Points[pointIdx].Tick(caller.UID)
	return s.save(ctx, op, task)
}

// UntickPoint removes the caller's completion mark from a point. Removing an
// absent mark is a no-op, not an error.
func (s *Service) UntickPoint(ctx context.Context, caller models.Caller, id string, pointIdx int) (*models.TaskView, error) {
	const op = "services.task.UntickPoint"

	if !policy.CanTickPoint(caller.Role) {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if pointIdx < 0 || pointIdx >= len(task.Points) {
		return nil, fmt.Errorf("%s: point %d: %w", op, pointIdx, apperr.ErrNotFound)
	}
	task.Points[pointIdx].Untick(caller.UID)
	return s.save(ctx, op, task)
}

// AddFile appends a file metadata record to a task. The bytes themselves are
// stored by an external collaborator; only the path reference is kept.
func (s *Service) AddFile(ctx context.Context, caller models.Caller, id string, req models.DummyFile) (*models.TaskView, error) {
	const op = "services.task.AddFile"

	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	task.Files = append(task.Files, models.FileRef{
		Filename:     req.Filename,
		OriginalName: req.OriginalName,
		Path:         req.Path,
		UploadedBy:   caller.UID,
		UploadedAt:   time.Now().UTC(),
	})
	return s.save(ctx, op, task)
}

// Remove hard-deletes a task. Admin only.
func (s *Service) Remove(ctx context.Context, caller models.Caller, id string) error {
	const op = "services.task.Remove"

	if !policy.CanDeleteTask(caller.Role) {
		return fmt.Errorf("%s: %w", op, apperr.ErrForbidden)
	}
	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey(id)), slog.Any("err", err))
	}
	count, err := s.repo.DeleteTask(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	s.log.Info("deleted task", slog.String("id", id))
	return nil
}

// Dashboard aggregates all tasks and users with the progress- and
// status-bucketed counters the admin board renders.
func (s *Service) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	const op = "services.task.Dashboard"

	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := models.DashboardStats{
		TotalTasks: len(tasks),
		TotalUsers: len(users),
	}
	for _, t := range tasks {
		switch {
		case t.Progress >= 100:
			stats.CompletedTasks++
		case t.Progress > 0:
			stats.InProgressTasks++
		default:
			stats.TodoTasks++
		}
		switch t.Status {
		case models.StatusDone:
			stats.DoneTasks++
		case models.StatusCanceled:
			stats.CanceledTasks++
		}
	}

	views, err := s.views(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	summaries := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}

	return &models.Dashboard{
		Tasks: views,
		Users: summaries,
		Stats: stats,
	}, nil
}

// save re-establishes the derived-field invariants (progress, updated_at),
// writes the task, refreshes the cache and returns the resolved view.
func (s *Service) save(ctx context.Context, op string, task *models.Task) (*models.TaskView, error) {
	task.RecalcProgress()
	task.UpdatedAt = time.Now().UTC()

	count, err := s.repo.UpdateTask(ctx, *task)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}

	if err := s.cache.Set(cacheKey(task.ID), task, cacheTTL); err != nil {
		s.log.Warn("failed to cache task", slog.String("key", cacheKey(task.ID)), slog.Any("err", err))
	}
	return s.view(ctx, task)
}

func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid due date: %w", err)
	}
	parsed = parsed.UTC()
	return &parsed, nil
}

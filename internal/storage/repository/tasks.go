package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/teamtask/taskboard/internal/models"
)

const taskColumns = `id, title, description, created_by, assigned_to, status,
			  priority, due_date, points, files, progress, created_at, updated_at`

// CreateTask inserts a new task row with its checklist and files as JSONB.
func (s *Storage) CreateTask(ctx context.Context, task models.Task) error {
	const op = "storage.CreateTask"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	pointsJSON, filesJSON, err := marshalDocs(task)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO tasks (id, title, description, created_by, assigned_to, status,
			      priority, due_date, points, files, progress, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := s.DB.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.CreatedBy, task.AssignedTo,
		task.Status, task.Priority, task.DueDate, pointsJSON, filesJSON,
		task.Progress, task.CreatedAt, task.UpdatedAt); err != nil {
		return translateError(op, err)
	}
	return nil
}

// GetTask returns a task by ID or apperr.ErrNotFound.
func (s *Storage) GetTask(ctx context.Context, id string) (*models.Task, error) {
	const op = "storage.GetTask"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(op, err)
	}
	return task, nil
}

// UpdateTask overwrites every mutable field of a task row and returns the
// number of updated rows. The caller has already recomputed progress and
// refreshed updated_at.
func (s *Storage) UpdateTask(ctx context.Context, task models.Task) (int, error) {
	const op = "storage.UpdateTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	pointsJSON, filesJSON, err := marshalDocs(task)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE tasks
			  SET title = $1, description = $2, assigned_to = $3, status = $4,
			      priority = $5, due_date = $6, points = $7, files = $8,
			      progress = $9, updated_at = $10
			  WHERE id = $11`
	result, err := s.DB.ExecContext(ctx, query,
		task.Title, task.Description, task.AssignedTo, task.Status, task.Priority,
		task.DueDate, pointsJSON, filesJSON, task.Progress, task.UpdatedAt, task.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteTask removes a task row and returns the number of deleted rows.
func (s *Storage) DeleteTask(ctx context.Context, id string) (int, error) {
	const op = "storage.DeleteTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM tasks WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListTasks returns all tasks, newest created first.
func (s *Storage) ListTasks(ctx context.Context) ([]*models.Task, error) {
	const op = "storage.ListTasks"
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	return s.queryTasks(ctx, op, query)
}

// ListTasksForUser returns tasks the user created or is assigned to,
// newest created first.
func (s *Storage) ListTasksForUser(ctx context.Context, uid string) ([]*models.Task, error) {
	const op = "storage.ListTasksForUser"
	query := `SELECT ` + taskColumns + ` FROM tasks
			  WHERE created_by = $1 OR assigned_to = $1
			  ORDER BY created_at DESC`
	return s.queryTasks(ctx, op, query, uid)
}

// ListTasksByStatus returns all tasks in one status column, newest first.
func (s *Storage) ListTasksByStatus(ctx context.Context, status string) ([]*models.Task, error) {
	const op = "storage.ListTasksByStatus"
	query := `SELECT ` + taskColumns + ` FROM tasks
			  WHERE status = $1
			  ORDER BY created_at DESC`
	return s.queryTasks(ctx, op, query, status)
}

// ListTasksByStatusForUser returns the user's own-or-assigned tasks in one
// status column, newest first.
func (s *Storage) ListTasksByStatusForUser(ctx context.Context, status, uid string) ([]*models.Task, error) {
	const op = "storage.ListTasksByStatusForUser"
	query := `SELECT ` + taskColumns + ` FROM tasks
			  WHERE status = $1 AND (created_by = $2 OR assigned_to = $2)
			  ORDER BY created_at DESC`
	return s.queryTasks(ctx, op, query, status, uid)
}

func (s *Storage) queryTasks(ctx context.Context, op, query string, args ...any) ([]*models.Task, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task       models.Task
		assignedTo sql.NullString
		dueDate    sql.NullTime
		pointsJSON []byte
		filesJSON  []byte
	)
	if err := row.Scan(&task.ID, &task.Title, &task.Description, &task.CreatedBy,
		&assignedTo, &task.Status, &task.Priority, &dueDate, &pointsJSON,
		&filesJSON, &task.Progress, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		task.AssignedTo = &assignedTo.String
	}
	if dueDate.Valid {
		due := dueDate.Time.UTC()
		task.DueDate = &due
	}
	if err := json.Unmarshal(pointsJSON, &task.Points); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(filesJSON, &task.Files); err != nil {
		return nil, err
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}

func marshalDocs(task models.Task) (pointsJSON, filesJSON []byte, err error) {
	points := task.Points
	if points == nil {
		points = []models.Point{}
	}
	files := task.Files
	if files == nil {
		files = []models.FileRef{}
	}
	pointsJSON, err = json.Marshal(points)
	if err != nil {
		return nil, nil, err
	}
	filesJSON, err = json.Marshal(files)
	if err != nil {
		return nil, nil, err
	}
	return pointsJSON, filesJSON, nil
}

package models

import (
	"math"
	"time"
)

// Status columns of the kanban board.
const (
	StatusToday     = "today"
	StatusThisWeek  = "this-week"
	StatusThisMonth = "this-month"
	StatusLater     = "later"
	StatusDone      = "done"
	StatusCanceled  = "canceled"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidStatus reports whether s is one of the six status columns.
func ValidStatus(s string) bool {
	switch s {
	case StatusToday, StatusThisWeek, StatusThisMonth, StatusLater, StatusDone, StatusCanceled:
		return true
	}
	return false
}

// Point is a single checklist entry of a task. CompletedBy holds the UIDs of
// users who marked the point done, each at most once.
type Point struct {
	Text        string   `json:"text"`
	CompletedBy []string `json:"completed_by"`
}

// Completed reports whether at least one user marked the point done.
func (p *Point) Completed() bool {
	return len(p.CompletedBy) > 0
}

// Tick adds uid to the completion set. Adding a uid that is already present
// is a no-op, so ticking is idempotent.
func (p *Point) Tick(uid string) {
	for _, existing := range p.CompletedBy {
		if existing == uid {
			return
		}
	}
	p.CompletedBy = append(p.CompletedBy, uid)
}

// Untick removes uid from the completion set. Removing an absent uid is a no-op.
func (p *Point) Untick(uid string) {
	kept := p.CompletedBy[:0]
	for _, existing := range p.CompletedBy {
		if existing != uid {
			kept = append(kept, existing)
		}
	}
	p.CompletedBy = kept
}

// FileRef is the metadata of a file attached to a task. The bytes themselves
// live outside the service; only the path reference is stored.
type FileRef struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"path"`
	UploadedBy   string    `json:"uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Task is a unit of work with a checklist, status column, priority, a single
// assignee and a derived completion percentage.
type Task struct {
	ID          string
	Title       string
	Description string
	CreatedBy   string     // creator UID, immutable after creation
	AssignedTo  *string    // assignee UID, nil means unassigned
	Status      string
	Priority    string
	DueDate     *time.Time
	Points      []Point
	Files       []FileRef
	Progress    int // derived, see RecalcProgress
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecalcProgress recomputes the derived progress percentage from the checklist
// completion state: round(100 * completed / total), 0 when there are no points.
// Callers must invoke it before every save so progress is never stale at rest.
func (t *Task) RecalcProgress() {
	if len(t.Points) == 0 {
		t.Progress = 0
		return
	}
	completed := 0
	for i := range t.Points {
		if t.Points[i].Completed() {
			completed++
		}
	}
	t.Progress = int(math.Round(float64(completed) / float64(len(t.Points)) * 100))
}

// NewPoints converts checklist text lines into points with empty completion sets.
func NewPoints(texts []string) []Point {
	points := make([]Point, 0, len(texts))
	for _, text := range texts {
		points = append(points, Point{Text: text, CompletedBy: []string{}})
	}
	return points
}

// PointView is a checklist entry with user references resolved for display.
type PointView struct {
	Text        string    `json:"text"`
	CompletedBy []UserRef `json:"completed_by"`
}

// FileView is a file record with the uploader resolved for display.
type FileView struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"path"`
	UploadedBy   UserRef   `json:"uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// TaskView is the API representation of a task: every user reference is
// resolved to {uid, username}. A reference to a deleted user resolves to a
// UserRef with an empty username; clients render it as "Unassigned".
type TaskView struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	CreatedBy   UserRef     `json:"created_by"`
	AssignedTo  *UserRef    `json:"assigned_to,omitempty"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	Points      []PointView `json:"points"`
	Files       []FileView  `json:"files"`
	Progress    int         `json:"progress"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// DummyTask receives the data of a create-task request. Points arrive as
// plain text lines; each becomes a checklist entry with no completion marks.
type DummyTask struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty"`
	AssignedTo  string   `json:"assigned_to,omitempty" validate:"omitempty,uuid"`
	Status      string   `json:"status,omitempty" validate:"omitempty,oneof=today this-week this-month later done canceled"`
	Priority    string   `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate     string   `json:"due_date,omitempty"`
	Points      []string `json:"points,omitempty"`
}

// DummyTaskUpdate receives the data of a task edit. Nil fields stay unchanged;
// a non-nil Points slice replaces the whole checklist and discards all prior
// completion marks.
type DummyTaskUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	AssignedTo  *string   `json:"assigned_to,omitempty" validate:"omitempty,uuid"`
	Priority    *string   `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate     *string   `json:"due_date,omitempty"`
	Points      *[]string `json:"points,omitempty"`
}

// DummyStatusUpdate receives the data of a kanban column move.
type DummyStatusUpdate struct {
	Status     string `json:"status" validate:"required,oneof=today this-week this-month later done canceled"`
	AssignedTo string `json:"assigned_to,omitempty" validate:"omitempty,uuid"`
}

// DummyAssign receives the data of an admin reassignment.
type DummyAssign struct {
	AssignedTo string `json:"assigned_to" validate:"required,uuid"`
}

// DummyFile receives the metadata of an attached file.
type DummyFile struct {
	Filename     string `json:"filename" validate:"required"`
	OriginalName string `json:"original_name" validate:"required"`
	Path         string `json:"path" validate:"required"`
}

// DashboardStats aggregates task counts for the admin dashboard.
// Completed/InProgress/Todo bucket by derived progress; Done/Canceled keep the
// legacy status-based counts the board still displays.
type DashboardStats struct {
	TotalTasks      int `json:"total_tasks"`
	CompletedTasks  int `json:"completed_tasks"`
	InProgressTasks int `json:"in_progress_tasks"`
	TodoTasks       int `json:"todo_tasks"`
	DoneTasks       int `json:"done_tasks"`
	CanceledTasks   int `json:"canceled_tasks"`
	TotalUsers      int `json:"total_users"`
}

// Dashboard is the admin dashboard payload.
type Dashboard struct {
	Tasks []*TaskView    `json:"tasks"`
	Users []UserSummary  `json:"users"`
	Stats DashboardStats `json:"stats"`
}

package task

import (
	"context"
	"fmt"

	"github.com/teamtask/taskboard/internal/models"
)

// views resolves every user reference inside the tasks to {uid, username}
// pairs with a single directory lookup. A reference to a deleted user stays
// in place and resolves to an empty username; clients render such an
// assignee as "Unassigned".
func (s *Service) views(ctx context.Context, tasks []*models.Task) ([]*models.TaskView, error) {
	const op = "services.task.views"

	uidSet := make(map[string]struct{})
	for _, t := range tasks {
		collectUIDs(t, uidSet)
	}
	uids := make([]string, 0, len(uidSet))
	for uid := range uidSet {
		uids = append(uids, uid)
	}

	refs, err := s.users.GetUserRefs(ctx, uids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, buildView(t, refs))
	}
	return result, nil
}

func (s *Service) view(ctx context.Context, task *models.Task) (*models.TaskView, error) {
	views, err := s.views(ctx, []*models.Task{task})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func collectUIDs(t *models.Task, set map[string]struct{}) {
	set[t.CreatedBy] = struct{}{}
	if t.AssignedTo != nil {
		set[*t.AssignedTo] = struct{}{}
	}
	for i := range t.Points {
		for _, uid := range t.Points[i].CompletedBy {
			set[uid] = struct{}{}
		}
	}
	for i := range t.Files {
		set[t.Files[i].UploadedBy] = struct{}{}
	}
}

func buildView(t *models.Task, refs map[string]models.UserRef) *models.TaskView {
	resolve := func(uid string) models.UserRef {
		if ref, ok := refs[uid]; ok {
			return ref
		}
		// Dangling reference: the user was deleted, keep the uid.
		return models.UserRef{UID: uid}
	}

	view := &models.TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		CreatedBy:   resolve(t.CreatedBy),
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Progress:    t.Progress,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Points:      make([]models.PointView, 0, len(t.Points)),
		Files:       make([]models.FileView, 0, len(t.Files)),
	}
	if t.AssignedTo != nil {
		assignee := resolve(*t.AssignedTo)
		view.AssignedTo = &assignee
	}
	for i := range t.Points {
		pv := models.PointView{
			Text:        t.Points[i].Text,
			CompletedBy: make([]models.UserRef, 0, len(t.Points[i].CompletedBy)),
		}
		for _, uid := range t.Points[i].CompletedBy {
			pv.CompletedBy = append(pv.CompletedBy, resolve(uid))
		}
		view.Points = append(view.Points, pv)
	}
	for i := range t.Files {
		view.Files = append(view.Files, models.FileView{
			Filename:     t.Files[i].Filename,
			OriginalName: t.Files[i].OriginalName,
			Path:         t.Files[i].Path,
			UploadedBy:   resolve(t.Files[i].UploadedBy),
			UploadedAt:   t.Files[i].UploadedAt,
		})
	}
	return view
}

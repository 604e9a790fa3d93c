package task

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teamtask/taskboard/internal/apperr"
	"github.com/teamtask/taskboard/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateTask(ctx context.Context, task models.Task) error {
	return m.Called(ctx, task).Error(0)
}
func (m *RepoMock) GetTask(ctx context.Context, id string) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}
func (m *RepoMock) UpdateTask(ctx context.Context, task models.Task) (int, error) {
	args := m.Called(ctx, task)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) DeleteTask(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ListTasks(ctx context.Context) ([]*models.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}
func (m *RepoMock) ListTasksForUser(ctx context.Context, uid string) ([]*models.Task, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}
func (m *RepoMock) ListTasksByStatus(ctx context.Context, status string) ([]*models.Task, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}
func (m *RepoMock) ListTasksByStatusForUser(ctx context.Context, status, uid string) ([]*models.Task, error) {
	args := m.Called(ctx, status, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

type DirectoryMock struct{ mock.Mock }

func (m *DirectoryMock) GetUserRefs(ctx context.Context, uids []string) (map[string]models.UserRef, error) {
	args := m.Called(ctx, uids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.UserRef), args.Error(1)
}
func (m *DirectoryMock) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(r *RepoMock, d *DirectoryMock, c *CacheMock) *Service {
	return New(r, d, c, newNoopLogger())
}

var (
	adminCaller = models.Caller{UID: "admin-uid", Username: "admin", Role: models.RoleAdmin}
	userCaller  = models.Caller{UID: "user-uid", Username: "bob", Role: models.RoleUser}
)

func anyRefs(d *DirectoryMock) {
	d.On("GetUserRefs", mock.Anything, mock.Anything).
		Return(map[string]models.UserRef{}, nil)
}

func TestCreate_NonAdminAssigneeStripped(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	c.On("Set", mock.Anything, mock.Anything, cacheTTL).Return(nil)
	r.On("CreateTask", mock.Anything, mock.MatchedBy(func(task models.Task) bool {
		return task.AssignedTo != nil && *task.AssignedTo == userCaller.UID
	})).Return(nil).Once()

	svc := newService(r, d, c)
	view, err := svc.Create(context.Background(), userCaller, models.DummyTask{
		Title:      "write report",
		AssignedTo: "3f6c9a9e-76f3-4bb0-9f68-aaaaaaaaaaaa",
	})
	require.NoError(t, err)
	require.NotNil(t, view.AssignedTo)
	assert.Equal(t, userCaller.UID, view.AssignedTo.UID)
	r.AssertExpectations(t)
}

func TestCreate_AdminAssigneeHonored(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	c.On("Set", mock.Anything, mock.Anything, cacheTTL).Return(nil)
	r.On("CreateTask", mock.Anything, mock.MatchedBy(func(task models.Task) bool {
		return task.AssignedTo != nil && *task.AssignedTo == "3f6c9a9e-76f3-4bb0-9f68-aaaaaaaaaaaa"
	})).Return(nil).Once()

	svc := newService(r, d, c)
	_, err := svc.Create(context.Background(), adminCaller, models.DummyTask{
		Title:      "write report",
		AssignedTo: "3f6c9a9e-76f3-4bb0-9f68-aaaaaaaaaaaa",
	})
	require.NoError(t, err)
	r.AssertExpectations(t)
}

func TestCreate_Defaults(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	c.On("Set", mock.Anything, mock.Anything, cacheTTL).Return(nil)
	r.On("CreateTask", mock.Anything, mock.MatchedBy(func(task models.Task) bool {
		return task.Status == models.StatusToday &&
			task.Priority == models.PriorityMedium &&
			task.Progress == 0 &&
			len(task.Points) == 2
	})).Return(nil).Once()

	svc := newService(r, d, c)
	view, err := svc.Create(context.Background(), userCaller, models.DummyTask{
		Title:  "write report",
		Points: []string{"draft", "review"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, view.Progress)
	assert.Len(t, view.Points, 2)
	r.AssertExpectations(t)
}

func TestCreate_InvalidDueDate(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	svc := newService(r, d, c)

	_, err := svc.Create(context.Background(), userCaller, models.DummyTask{
		Title:   "write report",
		DueDate: "not-a-date",
	})
	assert.Error(t, err)
	r.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
}

func TestList_AdminSeesAll(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	r.On("ListTasks", mock.Anything).Return([]*models.Task{{ID: "t1"}, {ID: "t2"}}, nil).Once()

	svc := newService(r, d, c)
	views, err := svc.List(context.Background(), adminCaller)
	require.NoError(t, err)
	assert.Len(t, views, 2)
	r.AssertNotCalled(t, "ListTasksForUser", mock.Anything, mock.Anything)
}

func TestList_UserSeesOwnOrAssigned(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	r.On("ListTasksForUser", mock.Anything, userCaller.UID).Return([]*models.Task{{ID: "t1"}}, nil).Once()

	svc := newService(r, d, c)
	views, err := svc.List(context.Background(), userCaller)
	require.NoError(t, err)
	assert.Len(t, views, 1)
	r.AssertNotCalled(t, "ListTasks", mock.Anything)
}

func TestListByStatus_InvalidStatus(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	svc := newService(r, d, c)

	_, err := svc.ListByStatus(context.Background(), userCaller, "archived")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListByStatus_EmptyColumn(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	r.On("ListTasksByStatusForUser", mock.Anything, models.StatusLater, userCaller.UID).
		Return([]*models.Task{}, nil).Once()

	svc := newService(r, d, c)
	views, err := svc.ListByStatus(context.Background(), userCaller, models.StatusLater)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestUpdate_ForbiddenForStranger(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	r.On("GetTask", mock.Anything, "t1").
		Return(&models.Task{ID: "t1", CreatedBy: "someone-else"}, nil).Once()

	svc := newService(r, d, c)
	title := "new title"
	_, err := svc.Update(context.Background(), userCaller, "t1", models.DummyTaskUpdate{Title: &title})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	r.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything)
}

func TestUpdate_PointsReplaceDiscardsMarks(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	c.On("Set", mock.Anything, mock.Anything, cacheTTL).Return(nil)
	existing := &models.Task{
		ID:        "t1",
		CreatedBy: userCaller.UID,
		Points: []models.Point{
			{Text: "old", CompletedBy: []string{userCaller.UID}},
		},
		Progress: 100,
	}
	r.On("GetTask", mock.Anything, "t1").Return(existing, nil).Once()
	r.On("UpdateTask", mock.Anything, mock.MatchedBy(func(task models.Task) bool {
		return len(task.Points) == 2 &&
			len(task.Points[0].CompletedBy) == 0 &&
			task.Progress == 0
	})).Return(1, nil).Once()

	svc := newService(r, d, c)
	points := []string{"fresh-1", "fresh-2"}
	view, err := svc.Update(context.Background(), userCaller, "t1", models.DummyTaskUpdate{Points: &points})
	require.NoError(t, err)
	assert.Equal(t, 0, view.Progress)
	r.AssertExpectations(t)
}

func TestAssign_AdminOnly(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	svc := newService(r, d, c)

	_, err := svc.Assign(context.Background(), userCaller, "t1", "3f6c9a9e-76f3-4bb0-9f68-aaaaaaaaaaaa")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	r.AssertNotCalled(t, "GetTask", mock.Anything, mock.Anything)
}

func TestTickPoint_UpdatesProgress(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	c.On("Set", mock.Anything, mock.Anything, cacheTTL).Return(nil)
	existing := &models.Task{
		ID:        "t1",
		CreatedBy: "someone-else",
		Points:    models.NewPoints([]string{"a", "b"}),
	}
	r.On("GetTask", mock.Anything, "t1").Return(existing, nil).Once()
	r.On("UpdateTask", mock.Anything, mock.MatchedBy(func(task models.Task) bool {
		return task.Progress == 50 && task.Points[0].Completed()
	})).Return(1, nil).Once()

	svc := newService(r, d, c)
	view, err := svc.TickPoint(context.Background(), userCaller, "t1", 0)
	require.NoError(t, err)
	assert.Equal(t, 50, view.Progress)
	r.AssertExpectations(t)
}

func TestTickPoint_IndexOutOfRange(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	r.On("GetTask", mock.Anything, "t1").
		Return(&models.Task{ID: "t1", Points: models.NewPoints([]string{"a"})}, nil).Once()

	svc := newService(r, d, c)
	_, err := svc.TickPoint(context.Background(), userCaller, "t1", 5)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	r.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything)
}

func TestUntickPoint_AbsentMarkIsNoop(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	c.On("Set", mock.Anything, mock.Anything, cacheTTL).Return(nil)
	existing := &models.Task{
		ID:        "t1",
		CreatedBy: "someone-else",
		Points: []models.Point{
			{Text: "a", CompletedBy: []string{"another-uid"}},
		},
	}
	r.On("GetTask", mock.Anything, "t1").Return(existing, nil).Once()
	r.On("UpdateTask", mock.Anything, mock.MatchedBy(func(task models.Task) bool {
		return task.Progress == 100
	})).Return(1, nil).Once()

	svc := newService(r, d, c)
	view, err := svc.UntickPoint(context.Background(), userCaller, "t1", 0)
	require.NoError(t, err)
	assert.Equal(t, 100, view.Progress)
}

func TestRead_CacheHitSkipsRepo(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	c.On("Get", "task:t1", mock.Anything).Run(func(args mock.Arguments) {
		ptr := args.Get(1).(**models.Task)
		*ptr = &models.Task{ID: "t1", Title: "cached", CreatedBy: userCaller.UID}
	}).Return(true, nil).Once()

	svc := newService(r, d, c)
	view, err := svc.Read(context.Background(), userCaller, "t1")
	require.NoError(t, err)
	assert.Equal(t, "cached", view.Title)
	r.AssertNotCalled(t, "GetTask", mock.Anything, mock.Anything)
}

func TestRead_CacheMissFallsThrough(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	c.On("Get", "task:t1", mock.Anything).Return(false, nil).Once()
	c.On("Set", "task:t1", mock.Anything, cacheTTL).Return(nil).Once()
	r.On("GetTask", mock.Anything, "t1").
		Return(&models.Task{ID: "t1", Title: "from db", CreatedBy: userCaller.UID}, nil).Once()

	svc := newService(r, d, c)
	view, err := svc.Read(context.Background(), userCaller, "t1")
	require.NoError(t, err)
	assert.Equal(t, "from db", view.Title)
	c.AssertExpectations(t)
}

func TestRead_HiddenFromStranger(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	other := "other-uid"
	c.On("Get", "task:t1", mock.Anything).Return(false, nil).Once()
	c.On("Set", "task:t1", mock.Anything, cacheTTL).Return(nil).Once()
	r.On("GetTask", mock.Anything, "t1").
		Return(&models.Task{ID: "t1", CreatedBy: "creator-uid", AssignedTo: &other}, nil).Once()

	svc := newService(r, d, c)
	_, err := svc.Read(context.Background(), userCaller, "t1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	d.AssertNotCalled(t, "GetUserRefs", mock.Anything, mock.Anything)
}

func TestRead_AdminSeesAnyTask(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	other := "other-uid"
	c.On("Get", "task:t1", mock.Anything).Return(false, nil).Once()
	c.On("Set", "task:t1", mock.Anything, cacheTTL).Return(nil).Once()
	r.On("GetTask", mock.Anything, "t1").
		Return(&models.Task{ID: "t1", Title: "secret", CreatedBy: "creator-uid", AssignedTo: &other}, nil).Once()

	svc := newService(r, d, c)
	view, err := svc.Read(context.Background(), adminCaller, "t1")
	require.NoError(t, err)
	assert.Equal(t, "secret", view.Title)
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name       string
		caller     models.Caller
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name:   "forbidden for non-admin",
			caller: userCaller,
			setupMocks: func(_ *RepoMock, _ *CacheMock) {
			},
			wantErr: apperr.ErrForbidden,
		},
		{
			name:   "not found when nothing deleted",
			caller: adminCaller,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Invalidate", "task:t1").Return(nil).Once()
				r.On("DeleteTask", mock.Anything, "t1").Return(0, nil).Once()
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:   "success",
			caller: adminCaller,
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Invalidate", "task:t1").Return(nil).Once()
				r.On("DeleteTask", mock.Anything, "t1").Return(1, nil).Once()
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
			tt.setupMocks(r, c)

			svc := newService(r, d, c)
			err := svc.Remove(context.Background(), tt.caller, "t1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			r.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestDashboard_Buckets(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	anyRefs(d)
	tasks := []*models.Task{
		{ID: "t1", Progress: 100, Status: models.StatusDone},
		{ID: "t2", Progress: 50, Status: models.StatusToday},
		{ID: "t3", Progress: 0, Status: models.StatusCanceled},
		{ID: "t4", Progress: 0, Status: models.StatusLater},
	}
	r.On("ListTasks", mock.Anything).Return(tasks, nil).Once()
	d.On("ListUsers", mock.Anything).Return([]*models.User{
		{UID: "u1", Role: models.RoleAdmin},
		{UID: "u2", Role: models.RoleUser},
	}, nil).Once()

	svc := newService(r, d, c)
	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, dash.Stats.TotalTasks)
	assert.Equal(t, 1, dash.Stats.CompletedTasks)
	assert.Equal(t, 1, dash.Stats.InProgressTasks)
	assert.Equal(t, 2, dash.Stats.TodoTasks)
	assert.Equal(t, 1, dash.Stats.DoneTasks)
	assert.Equal(t, 1, dash.Stats.CanceledTasks)
	assert.Equal(t, 2, dash.Stats.TotalUsers)
	assert.Len(t, dash.Tasks, 4)
	assert.Len(t, dash.Users, 2)
}

func TestViews_DanglingReferenceKeepsUID(t *testing.T) {
	r, d, c := new(RepoMock), new(DirectoryMock), new(CacheMock)
	deleted := "deleted-uid"
	d.On("GetUserRefs", mock.Anything, mock.Anything).
		Return(map[string]models.UserRef{
			"creator-uid": {UID: "creator-uid", Username: "alice"},
		}, nil).Once()

	svc := newService(r, d, c)
	views, err := svc.views(context.Background(), []*models.Task{
		{ID: "t1", CreatedBy: "creator-uid", AssignedTo: &deleted},
	})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "alice", views[0].CreatedBy.Username)
	require.NotNil(t, views[0].AssignedTo)
	assert.Equal(t, deleted, views[0].AssignedTo.UID)
	assert.Empty(t, views[0].AssignedTo.Username)
}

package update

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/teamtask/taskboard/internal/apperr"
	"github.com/teamtask/taskboard/internal/http/middlewarectx"
	"github.com/teamtask/taskboard/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, caller models.Caller, id string, req models.DummyTaskUpdate) (*models.TaskView, error) {
	args := m.Called(ctx, caller, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskView), args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	caller := models.Caller{UID: "uid-1", Username: "alice", Role: models.RoleUser}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "successful title update",
			body: `{"title":"renamed"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, caller, "t1", mock.MatchedBy(func(req models.DummyTaskUpdate) bool {
					return req.Title != nil && *req.Title == "renamed" && req.Points == nil
				})).Return(&models.TaskView{ID: "t1", Title: "renamed"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"renamed"`,
		},
		{
			name:           "invalid priority fails validation",
			body:           `{"priority":"urgent"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Priority must be one of`,
		},
		{
			name: "stranger edit answers 403",
			body: `{"title":"renamed"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, caller, "t1", mock.Anything).
					Return(nil, fmt.Errorf("services.task.Update: %w", apperr.ErrForbidden))
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"status":"Error"`,
		},
		{
			name: "unknown task answers 404",
			body: `{"title":"renamed"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, caller, "t1", mock.Anything).
					Return(nil, fmt.Errorf("services.task.Update: %w", apperr.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"status":"Error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPut, "/tasks/t1", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("taskID", "t1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middlewarectx.CallerKey, caller)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/teamtask/taskboard/internal/lib/jwt"
	"github.com/teamtask/taskboard/internal/models"
)

type ParserMock struct{ mock.Mock }

func (m *ParserMock) ParseToken(tokenStr string) (*jwt.CustomClaims, error) {
	args := m.Called(tokenStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.CustomClaims), args.Error(1)
}

func TestJWTMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		authHeader     string
		setupMock      func(*ParserMock)
		expectedStatus int
		expectCaller   bool
	}{
		{
			name:       "valid token passes caller through",
			authHeader: "Bearer good-token",
			setupMock: func(m *ParserMock) {
				m.On("ParseToken", "good-token").Return(&jwt.CustomClaims{
					Username: "alice",
					Role:     models.RoleAdmin,
					UserUID:  "uid-1",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectCaller:   true,
		},
		{
			name:           "missing header answers 401",
			authHeader:     "",
			setupMock:      func(_ *ParserMock) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "header without bearer prefix answers 401",
			authHeader:     "Token abc",
			setupMock:      func(_ *ParserMock) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token answers 401",
			authHeader: "Bearer bad-token",
			setupMock: func(m *ParserMock) {
				m.On("ParseToken", "bad-token").Return(nil, errors.New("token expired"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := new(ParserMock)
			tt.setupMock(parser)

			var gotCaller models.Caller
			var callerFound bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCaller, callerFound = CallerFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			JWTMiddleware(parser, logger)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectCaller {
				assert.True(t, callerFound)
				assert.Equal(t, "uid-1", gotCaller.UID)
				assert.Equal(t, models.RoleAdmin, gotCaller.Role)
			}
			parser.AssertExpectations(t)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		caller         *models.Caller
		expectedStatus int
	}{
		{
			name:           "admin passes",
			caller:         &models.Caller{UID: "uid-1", Role: models.RoleAdmin},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "plain user answers 403",
			caller:         &models.Caller{UID: "uid-2", Role: models.RoleUser},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "no caller answers 401",
			caller:         nil,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			if tt.caller != nil {
				req = req.WithContext(context.WithValue(req.Context(), CallerKey, *tt.caller))
			}
			w := httptest.NewRecorder()

			RequireAdmin(logger)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

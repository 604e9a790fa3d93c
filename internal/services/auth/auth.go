// Package auth contains the business logic for authentication, user
// management and profile self-service.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/teamtask/taskboard/internal/apperr"
	"github.com/teamtask/taskboard/internal/lib/jwt"
	"github.com/teamtask/taskboard/internal/lib/password"
	"github.com/teamtask/taskboard/internal/models"
)

// UserRepository describes the storage contract for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
	ExistsUserWithEmail(ctx context.Context, email string) (bool, error)
	ExistsUserWithUsername(ctx context.Context, username string) (bool, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUserProfile(ctx context.Context, user models.User) (int, error)
	DeleteUser(ctx context.Context, uid string) (int, error)
}

// Service implements login, user CRUD and profile updates.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New creates a new auth Service.
func New(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Login checks the user's password and issues a signed token. An unknown
// email and a wrong password both surface as ErrInvalidCredentials, so the
// response does not reveal which one failed.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, models.UserSummary, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", models.UserSummary{}, fmt.Errorf("%s: %w", op, apperr.ErrInvalidCredentials)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", models.UserSummary{}, fmt.Errorf("%s: %w", op, apperr.ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", models.UserSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", slog.String("uid", user.UID))
	return token, user.Summary(), nil
}

// CreateUser registers a new user with a hashed password. The email is
// checked first, then the username; either being taken is ErrConflict.
func (s *Service) CreateUser(ctx context.Context, req models.DummyUser) (models.UserSummary, error) {
	const op = "services.auth.CreateUser"

	taken, err := s.users.ExistsUserWithEmail(ctx, req.Email)
	if err != nil {
		return models.UserSummary{}, fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return models.UserSummary{}, fmt.Errorf("%s: email: %w", op, apperr.ErrConflict)
	}
	taken, err = s.users.ExistsUserWithUsername(ctx, req.Username)
	if err != nil {
		return models.UserSummary{}, fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return models.UserSummary{}, fmt.Errorf("%s: username: %w", op, apperr.ErrConflict)
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return models.UserSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	role := models.RoleUser
	if req.IsAdmin {
		role = models.RoleAdmin
	}
	user := models.User{
		UID:          uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		PhoneNumber:  req.PhoneNumber,
		Role:         role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return models.UserSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created new user", slog.String("uid", user.UID))
	return user.Summary(), nil
}

// ListUsers returns the public views of all users.
func (s *Service) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	const op = "services.auth.ListUsers"

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		result = append(result, u.Summary())
	}
	return result, nil
}

// DeleteUser hard-deletes a user. Tasks referencing the user keep their
// dangling references.
func (s *Service) DeleteUser(ctx context.Context, uid string) error {
	const op = "services.auth.DeleteUser"

	count, err := s.users.DeleteUser(ctx, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	s.log.Info("deleted user", slog.String("uid", uid))
	return nil
}

// GetProfile returns the public view of the caller's own record.
func (s *Service) GetProfile(ctx context.Context, uid string) (models.UserSummary, error) {
	const op = "services.auth.GetProfile"

	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return models.UserSummary{}, fmt.Errorf("%s: %w", op, err)
	}
	return user.Summary(), nil
}

// UpdateProfile updates the caller's own phone number and/or password. The
// identity comes from the verified token, never from a client-supplied id.
// A password change requires the current password to match.
func (s *Service) UpdateProfile(ctx context.Context, uid string, req models.DummyProfileUpdate) (models.UserSummary, error) {
	const op = "services.auth.UpdateProfile"

	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return models.UserSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.NewPassword != "" {
		if err := password.CompareHash(user.PasswordHash, req.CurrentPassword); err != nil {
			return models.UserSummary{}, fmt.Errorf("%s: %w", op, apperr.ErrInvalidCredentials)
		}
		hashed, err := password.GetHash(req.NewPassword)
		if err != nil {
			return models.UserSummary{}, fmt.Errorf("%s: %w", op, err)
		}
		user.PasswordHash = hashed
	}

	if _, err := s.users.UpdateUserProfile(ctx, *user); err != nil {
		return models.UserSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("updated profile", slog.String("uid", uid))
	return user.Summary(), nil
}

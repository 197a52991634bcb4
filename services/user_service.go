package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/repositories"
	"github.com/google/uuid"
)

type UpdateProfileInput struct {
	MinecraftName *string `json:"minecraftName" validate:"omitempty,max=16"`
	DiscordName   *string `json:"discordName" validate:"omitempty,max=37"`
}

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.User, error)

	ListUsers(ctx context.Context) ([]*models.User, error)
	ChangeRole(ctx context.Context, session *Session, targetID uuid.UUID, role models.UserRole) (*models.User, error)
	SetBanned(ctx context.Context, session *Session, targetID uuid.UUID, banned bool) (*models.User, error)
	// StartImpersonation returns a token acting as targetID on behalf of the real user.
	StartImpersonation(ctx context.Context, session *Session, targetID uuid.UUID) (string, *models.User, error)
	EndImpersonation(ctx context.Context, session *Session) (string, *models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	sessions SessionService
	audit    AuditService
}

func NewUserService(userRepo repositories.UserRepository, sessions SessionService, audit AuditService) UserService {
	return &userService{
		userRepo: userRepo,
		sessions: sessions,
		audit:    audit,
	}
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.getUser(ctx, userID)
}

func (s *userService) UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.User, error) {
	input.MinecraftName = trimOptional(input.MinecraftName)
	input.DiscordName = trimOptional(input.DiscordName)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdateHandles(ctx, userID, input.MinecraftName, input.DiscordName)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) ChangeRole(ctx context.Context, session *Session, targetID uuid.UUID, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if targetID == session.RealUserID {
		return nil, ErrSelfAction
	}

	target, err := s.getUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	previous := target.Role

	updated, err := s.userRepo.UpdateRole(ctx, targetID, role)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.audit.Record(ctx, session.RealUserID, models.AuditRoleChange, "user", targetID.String(), map[string]any{
		"from": previous,
		"to":   role,
	})
	return updated, nil
}

func (s *userService) SetBanned(ctx context.Context, session *Session, targetID uuid.UUID, banned bool) (*models.User, error) {
	if targetID == session.RealUserID {
		return nil, ErrSelfAction
	}

	updated, err := s.userRepo.SetBanned(ctx, targetID, banned)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update ban state: %w", err)
	}

	action := models.AuditUserUnban
	if banned {
		action = models.AuditUserBan
	}
	s.audit.Record(ctx, session.RealUserID, action, "user", targetID.String(), nil)
	return updated, nil
}

func (s *userService) StartImpersonation(ctx context.Context, session *Session, targetID uuid.UUID) (string, *models.User, error) {
	if targetID == session.RealUserID {
		return "", nil, ErrSelfAction
	}

	target, err := s.getUser(ctx, targetID)
	if err != nil {
		return "", nil, err
	}

	realID := session.RealUserID
	token, err := s.sessions.IssueToken(target.ID, &realID)
	if err != nil {
		return "", nil, err
	}

	s.audit.Record(ctx, realID, models.AuditImpersonationStart, "user", targetID.String(), map[string]any{
		"displayName": target.DisplayName,
	})
	return token, target, nil
}

// EndImpersonation always returns a token for the real user. A session that
// is not impersonating gets a fresh token and the exit is still audited.
func (s *userService) EndImpersonation(ctx context.Context, session *Session) (string, *models.User, error) {
	realUser, err := s.getUser(ctx, session.RealUserID)
	if err != nil {
		return "", nil, err
	}
	token, err := s.sessions.IssueToken(realUser.ID, nil)
	if err != nil {
		return "", nil, err
	}

	s.audit.Record(ctx, session.RealUserID, models.AuditImpersonationEnd, "user", session.UserID.String(), nil)
	return token, realUser, nil
}

func (s *userService) getUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}

// trimOptional clears blank handles so they are stored as NULL.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

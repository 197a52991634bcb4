package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionService interface {
	// SignIn upserts the user forwarded by the identity provider and returns
	// a fresh session token for them.
	SignIn(ctx context.Context, identity models.ExternalIdentity) (string, *models.User, error)
	// IssueToken signs a token acting as userID. realUserID is set only while
	// a super admin impersonates userID.
	IssueToken(userID uuid.UUID, realUserID *uuid.UUID) (string, error)
	Resolve(ctx context.Context, token string) (*Session, error)
}

type sessionClaims struct {
	UserID     string `json:"user_id"`
	RealUserID string `json:"real_user_id,omitempty"`
	jwt.RegisteredClaims
}

type sessionService struct {
	userRepo    repositories.UserRepository
	jwtSecret   []byte
	ttl         time.Duration
	superAdmins map[string]struct{}
	now         func() time.Time
	log         *zap.Logger
}

func NewSessionService(
	userRepo repositories.UserRepository,
	jwtSecret string,
	ttl time.Duration,
	superAdminExternalIDs []string,
	log *zap.Logger,
) SessionService {
	admins := make(map[string]struct{}, len(superAdminExternalIDs))
	for _, id := range superAdminExternalIDs {
		admins[id] = struct{}{}
	}
	return &sessionService{
		userRepo:    userRepo,
		jwtSecret:   []byte(jwtSecret),
		ttl:         ttl,
		superAdmins: admins,
		now:         time.Now,
		log:         log,
	}
}

func (s *sessionService) SignIn(ctx context.Context, identity models.ExternalIdentity) (string, *models.User, error) {
	if err := validateStruct(identity); err != nil {
		return "", nil, err
	}

	_, promote := s.superAdmins[identity.ExternalID]
	user, err := s.userRepo.UpsertByExternalID(ctx, identity, promote)
	if err != nil {
		return "", nil, fmt.Errorf("failed to upsert user on sign-in: %w", err)
	}
	if promote {
		s.log.Info("bootstrap super admin signed in", zap.String("user_id", user.ID.String()))
	}

	token, err := s.IssueToken(user.ID, nil)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *sessionService) IssueToken(userID uuid.UUID, realUserID *uuid.UUID) (string, error) {
	now := s.now()
	claims := sessionClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if realUserID != nil {
		claims.RealUserID = realUserID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *sessionService) Resolve(ctx context.Context, tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, ErrUnauthorized
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	realUserID := userID
	if claims.RealUserID != "" {
		if realUserID, err = uuid.Parse(claims.RealUserID); err != nil {
			return nil, ErrUnauthorized
		}
	}

	// Effective user must still exist even while impersonating.
	if _, err = s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	realUser, err := s.loadUser(ctx, realUserID)
	if err != nil {
		return nil, err
	}
	// A demoted super admin loses the impersonated session on the next request.
	if realUserID != userID && realUser.Role != models.RoleSuperAdmin {
		return nil, ErrUnauthorized
	}

	return &Session{
		UserID:     userID,
		RealUserID: realUserID,
		Role:       realUser.Role,
		Banned:     realUser.Banned,
	}, nil
}

func (s *sessionService) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	return user, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-hub/metrics"
	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultAuditListLimit = 100
	maxAuditListLimit     = 500
	auditWriteTimeout     = 5 * time.Second
)

// AuditService records privileged actions. Record never fails the caller.
type AuditService interface {
	Record(ctx context.Context, actorID uuid.UUID, action, targetType, targetID string, details map[string]any)
	List(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

type auditService struct {
	repo repositories.AuditRepository
	now  func() time.Time
	log  *zap.Logger
}

func NewAuditService(repo repositories.AuditRepository, log *zap.Logger) AuditService {
	return &auditService{repo: repo, now: time.Now, log: log}
}

func (s *auditService) Record(ctx context.Context, actorID uuid.UUID, action, targetType, targetID string, details map[string]any) {
	entry := &models.AuditLog{
		ID:         uuid.NewString(),
		ActorID:    actorID.String(),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		CreatedAt:  s.now().UTC(),
	}
	// The action has already committed; a client disconnect must not drop its entry.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if err := s.repo.Insert(writeCtx, entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		s.log.Error("failed to record audit entry",
			zap.String("action", action),
			zap.String("actor_id", entry.ActorID),
			zap.String("target_id", targetID),
			zap.Error(err),
		)
	}
}

func (s *auditService) List(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = defaultAuditListLimit
	}
	if limit > maxAuditListLimit {
		limit = maxAuditListLimit
	}
	entries, err := s.repo.ListRecent(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

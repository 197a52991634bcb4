package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Dosada05/tournament-hub/metrics"
	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/repositories"
	"github.com/Dosada05/tournament-hub/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateTournamentInput struct {
	Name                 string     `json:"name" validate:"required,max=100"`
	Type                 string     `json:"type" validate:"required,max=50"`
	Date                 string     `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime            string     `json:"startTime" validate:"required,datetime=15:04"`
	RegistrationDeadline *time.Time `json:"registrationDeadline,omitempty"`
	ScheduledAt          time.Time  `json:"scheduledAt"`
	MaxTeams             int        `json:"maxTeams" validate:"required,min=1,max=256"`
	TeamSize             int        `json:"teamSize" validate:"required,min=1,max=16"`
	// Draft tournaments stay hidden until moved to scheduled.
	Draft bool `json:"draft"`
}

type TournamentService interface {
	// ListPublic opens due registrations and returns every non-draft tournament.
	ListPublic(ctx context.Context) ([]*models.Tournament, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	CheckNameAvailable(ctx context.Context, tournamentID uuid.UUID, name string) (bool, error)
	ListTeams(ctx context.Context, tournamentID uuid.UUID) (models.TournamentStatus, []models.TeamSummary, error)
	// OpenDueRegistrations applies the scheduled -> registration_open transition.
	OpenDueRegistrations(ctx context.Context) (int64, error)

	Create(ctx context.Context, actorID uuid.UUID, input CreateTournamentInput) (*models.Tournament, error)
	ChangeStatus(ctx context.Context, actorID, tournamentID uuid.UUID, next models.TournamentStatus) (*models.Tournament, error)
	UploadBanner(ctx context.Context, actorID, tournamentID uuid.UUID, file io.Reader, size int64, contentType string) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	uploader       storage.FileUploader
	audit          AuditService
	notifier       Notifier
	now            func() time.Time
	log            *zap.Logger
}

// NewTournamentService builds the service. uploader may be nil when banner
// storage is not configured.
func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	audit AuditService,
	notifier Notifier,
	log *zap.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		uploader:       uploader,
		audit:          audit,
		notifier:       notifier,
		now:            time.Now,
		log:            log,
	}
}

func (s *tournamentService) ListPublic(ctx context.Context) ([]*models.Tournament, error) {
	// The list is still correct if this fails: AdvanceIfDue below covers it.
	if _, err := s.OpenDueRegistrations(ctx); err != nil {
		s.log.Warn("lazy registration opening failed", zap.Error(err))
	}

	tournaments, err := s.tournamentRepo.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	now := s.now()
	for _, t := range tournaments {
		t.AdvanceIfDue(now)
		populateBannerURL(t, s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	t.AdvanceIfDue(s.now())
	populateBannerURL(t, s.uploader)
	return t, nil
}

// getPublic is GetByID for anonymous routes: drafts do not exist there.
func (s *tournamentService) getPublic(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == models.StatusDraft {
		return nil, ErrTournamentNotFound
	}
	return t, nil
}

func (s *tournamentService) CheckNameAvailable(ctx context.Context, tournamentID uuid.UUID, name string) (bool, error) {
	name = normalizeTeamName(name)
	if err := validateTeamName(name); err != nil {
		return false, err
	}
	if _, err := s.getPublic(ctx, tournamentID); err != nil {
		return false, err
	}

	exists, err := s.teamRepo.NameExists(ctx, tournamentID, name)
	if err != nil {
		return false, fmt.Errorf("failed to check team name: %w", err)
	}
	return !exists, nil
}

func (s *tournamentService) ListTeams(ctx context.Context, tournamentID uuid.UUID) (models.TournamentStatus, []models.TeamSummary, error) {
	t, err := s.getPublic(ctx, tournamentID)
	if err != nil {
		return "", nil, err
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to list teams for tournament %s: %w", tournamentID, err)
	}
	return t.Status, teams, nil
}

func (s *tournamentService) OpenDueRegistrations(ctx context.Context) (int64, error) {
	opened, err := s.tournamentRepo.OpenDueRegistrations(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if opened > 0 {
		metrics.TournamentsOpened.Add(float64(opened))
		s.log.Info("opened registration for scheduled tournaments", zap.Int64("count", opened))
	}
	return opened, nil
}

func (s *tournamentService) Create(ctx context.Context, actorID uuid.UUID, input CreateTournamentInput) (*models.Tournament, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Type = strings.TrimSpace(input.Type)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.ScheduledAt.IsZero() {
		return nil, ValidationErrors{{Field: "scheduledAt", Tag: "required"}}
	}
	if input.RegistrationDeadline != nil && !input.RegistrationDeadline.After(input.ScheduledAt) {
		return nil, ErrTournamentInvalidSchedule
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return nil, ValidationErrors{{Field: "date", Tag: "datetime", Param: "2006-01-02"}}
	}

	status := models.StatusScheduled
	if input.Draft {
		status = models.StatusDraft
	}

	t := &models.Tournament{
		Name:                 input.Name,
		Type:                 input.Type,
		Date:                 date,
		StartTime:            input.StartTime,
		RegistrationDeadline: input.RegistrationDeadline,
		ScheduledAt:          input.ScheduledAt,
		MaxTeams:             input.MaxTeams,
		TeamSize:             input.TeamSize,
		Status:               status,
	}
	if err = s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentInvalidData) {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.audit.Record(ctx, actorID, models.AuditTournamentCreate, "tournament", t.ID.String(), map[string]any{
		"name":     t.Name,
		"status":   t.Status,
		"maxTeams": t.MaxTeams,
		"teamSize": t.TeamSize,
	})
	return t, nil
}

func (s *tournamentService) ChangeStatus(ctx context.Context, actorID, tournamentID uuid.UUID, next models.TournamentStatus) (*models.Tournament, error) {
	if !next.Valid() {
		return nil, ErrTournamentInvalidStatus
	}

	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}

	current := t.Status
	if !current.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, current, next)
	}

	if err = s.tournamentRepo.UpdateStatus(ctx, tournamentID, current, next); err != nil {
		if errors.Is(err, repositories.ErrTournamentStatusChanged) {
			return nil, ErrTournamentStatusConflict
		}
		return nil, fmt.Errorf("failed to update tournament status: %w", err)
	}
	t.Status = next
	populateBannerURL(t, s.uploader)

	s.audit.Record(ctx, actorID, models.AuditTournamentStatus, "tournament", t.ID.String(), map[string]any{
		"from": current,
		"to":   next,
	})
	s.notifier.Notify(ctx, models.Event{
		Type:    models.EventTournamentStatus,
		Room:    models.TournamentRoom(t.ID.String()),
		Payload: map[string]any{"tournamentId": t.ID, "status": next},
	})
	return t, nil
}

func (s *tournamentService) UploadBanner(ctx context.Context, actorID, tournamentID uuid.UUID, file io.Reader, size int64, contentType string) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrFeatureDisabled
	}
	ext, ok := bannerExtension(contentType)
	if !ok || size <= 0 || size > maxBannerSize {
		return nil, ErrInvalidBanner
	}

	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}
	previousKey := derefString(t.BannerKey)

	key := fmt.Sprintf("tournaments/%s/banner-%s%s", tournamentID, uuid.NewString(), ext)
	if _, err = s.uploader.Upload(ctx, key, contentType, io.LimitReader(file, maxBannerSize)); err != nil {
		return nil, fmt.Errorf("failed to upload banner: %w", err)
	}

	if err = s.tournamentRepo.UpdateBannerKey(ctx, tournamentID, &key); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to remove orphaned banner", zap.String("key", key), zap.Error(delErr))
		}
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to save banner key: %w", err)
	}

	if previousKey != "" {
		if delErr := s.uploader.Delete(ctx, previousKey); delErr != nil {
			s.log.Warn("failed to delete previous banner", zap.String("key", previousKey), zap.Error(delErr))
		}
	}

	t.BannerKey = &key
	t.AdvanceIfDue(s.now())
	populateBannerURL(t, s.uploader)

	s.audit.Record(ctx, actorID, models.AuditTournamentBanner, "tournament", t.ID.String(), map[string]any{
		"key": key,
	})
	return t, nil
}

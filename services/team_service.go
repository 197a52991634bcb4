package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-hub/metrics"
	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateTeamInput struct {
	TeamName string      `json:"teamName"`
	Players  []uuid.UUID `json:"players"`
}

type TeamService interface {
	// CreateTeam registers a team and takes one tournament slot atomically.
	// The captain is always part of the roster.
	CreateTeam(ctx context.Context, tournamentID, captainID uuid.UUID, input CreateTeamInput) (*models.Team, error)
	GetMyTeams(ctx context.Context, userID uuid.UUID) ([]*models.Team, error)
	// GetTeamDetail is visible only to the captain and players; everyone
	// else gets ErrTeamNotFound.
	GetTeamDetail(ctx context.Context, userID, teamID uuid.UUID) (*models.TeamDetail, error)
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	notifier       Notifier
	now            func() time.Time
	log            *zap.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	notifier Notifier,
	log *zap.Logger,
) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		notifier:       notifier,
		now:            time.Now,
		log:            log,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, tournamentID, captainID uuid.UUID, input CreateTeamInput) (*models.Team, error) {
	team, err := s.createTeam(ctx, tournamentID, captainID, input)
	metrics.TeamRegistrations.WithLabelValues(registrationResult(err)).Inc()
	return team, err
}

func (s *teamService) createTeam(ctx context.Context, tournamentID, captainID uuid.UUID, input CreateTeamInput) (*models.Team, error) {
	name := normalizeTeamName(input.TeamName)
	if err := validateTeamName(name); err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}

	players, err := buildRoster(captainID, input.Players, tournament.TeamSize)
	if err != nil {
		return nil, err
	}

	now := s.now()
	// Reservation below only matches registration_open rows.
	if tournament.Status == models.StatusScheduled && !tournament.ScheduledAt.After(now) {
		if _, err = s.tournamentRepo.OpenDueRegistrations(ctx, now); err != nil {
			s.log.Warn("failed to open due registration before team create", zap.Error(err))
		}
	}

	team := &models.Team{
		TournamentID: tournamentID,
		TeamName:     name,
		CaptainID:    captainID,
		Players:      players,
		Status:       models.TeamStatusRegistered,
	}

	if err = s.teamRepo.Register(ctx, team, now); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentSlotUnavailable):
			return nil, s.explainNoSlot(ctx, tournamentID, now)
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamPlayerInvalid):
			return nil, ErrUnknownPlayer
		default:
			return nil, fmt.Errorf("failed to register team: %w", err)
		}
	}

	s.notifier.Notify(ctx, models.Event{
		Type: models.EventTeamRegistered,
		Room: models.TournamentRoom(tournamentID.String()),
		Payload: map[string]any{
			"tournamentId": tournamentID,
			"team":         models.TeamSummary{ID: team.ID, Name: team.TeamName, CreatedAt: team.CreatedAt},
		},
	})
	return team, nil
}

// explainNoSlot re-reads the tournament after a failed reservation so the
// caller can tell a missing tournament from a full or closed one.
func (s *teamService) explainNoSlot(ctx context.Context, tournamentID uuid.UUID, now time.Time) error {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to re-read tournament %s: %w", tournamentID, err)
	}
	t.AdvanceIfDue(now)
	switch {
	case t.AcceptsRegistrations(now):
		// A slot was freed between the reservation and the re-read.
		return ErrCapacityExceeded
	case t.RegisteredTeams >= t.MaxTeams:
		return ErrTournamentFull
	default:
		return ErrRegistrationClosed
	}
}

func (s *teamService) GetMyTeams(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for user %s: %w", userID, err)
	}
	return teams, nil
}

func (s *teamService) GetTeamDetail(ctx context.Context, userID, teamID uuid.UUID) (*models.TeamDetail, error) {
	detail, err := s.teamRepo.GetDetail(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", teamID, err)
	}
	if !detail.HasMember(userID) {
		return nil, ErrTeamNotFound
	}
	return detail, nil
}

// buildRoster rejects duplicates and nil ids, puts the captain first and
// checks the final size against teamSize.
func buildRoster(captainID uuid.UUID, players []uuid.UUID, teamSize int) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(players)+1)
	roster := make([]uuid.UUID, 0, len(players)+1)
	roster = append(roster, captainID)
	seen[captainID] = struct{}{}

	captainListed := false
	for _, id := range players {
		if id == uuid.Nil {
			return nil, ErrUnknownPlayer
		}
		if id == captainID {
			if captainListed {
				return nil, ErrDuplicatePlayers
			}
			captainListed = true
			continue
		}
		if _, dup := seen[id]; dup {
			return nil, ErrDuplicatePlayers
		}
		seen[id] = struct{}{}
		roster = append(roster, id)
	}

	if len(roster) > teamSize {
		return nil, ErrTooManyPlayers
	}
	return roster, nil
}

func registrationResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity"
	case errors.Is(err, ErrTeamNameConflict):
		return "conflict"
	case errors.Is(err, ErrTournamentNotFound):
		return "not_found"
	case errors.Is(err, ErrTeamNameRequired),
		errors.Is(err, ErrTeamNameTooLong),
		errors.Is(err, ErrTooManyPlayers),
		errors.Is(err, ErrDuplicatePlayers),
		errors.Is(err, ErrUnknownPlayer):
		return "invalid"
	default:
		return "error"
	}
}

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

type InviteInput struct {
	TeamName  string    `json:"teamName"`
	InviteeID uuid.UUID `json:"inviteeId"`
}

type InviteService interface {
	InviteToTeam(ctx context.Context, captainID, tournamentID uuid.UUID, input InviteInput) (*models.TeamInvite, error)
	ListMyInvites(ctx context.Context, userID uuid.UUID) ([]*models.TeamInvite, error)
	// RespondToInvite accepts or rejects a pending invite addressed to inviteeID.
	// A capacity failure on accept leaves the invite pending.
	RespondToInvite(ctx context.Context, inviteeID, inviteID uuid.UUID, accept bool) (*models.TeamInvite, error)
}

type inviteService struct {
	inviteRepo repositories.InviteRepository
	teamRepo   repositories.TeamRepository
	notifier   Notifier
	now        func() time.Time
	log        *zap.Logger
}

func NewInviteService(
	inviteRepo repositories.InviteRepository,
	teamRepo repositories.TeamRepository,
	notifier Notifier,
	log *zap.Logger,
) InviteService {
	return &inviteService{
		inviteRepo: inviteRepo,
		teamRepo:   teamRepo,
		notifier:   notifier,
		now:        time.Now,
		log:        log,
	}
}

func (s *inviteService) InviteToTeam(ctx context.Context, captainID, tournamentID uuid.UUID, input InviteInput) (*models.TeamInvite, error) {
	name := normalizeTeamName(input.TeamName)
	if err := validateTeamName(name); err != nil {
		return nil, err
	}
	if input.InviteeID == uuid.Nil {
		return nil, ValidationErrors{{Field: "inviteeId", Tag: "required"}}
	}
	if input.InviteeID == captainID {
		return nil, ErrSelfInvite
	}

	team, err := s.teamRepo.GetByName(ctx, tournamentID, name)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %q: %w", name, err)
	}
	if team.CaptainID != captainID {
		return nil, ErrNotTeamCaptain
	}
	if team.HasMember(input.InviteeID) {
		return nil, ErrAlreadyOnTeam
	}

	invite := &models.TeamInvite{
		CaptainID:    captainID,
		TournamentID: tournamentID,
		TeamName:     team.TeamName,
		InviteeID:    input.InviteeID,
	}
	if err = s.inviteRepo.Create(ctx, invite); err != nil {
		switch {
		case errors.Is(err, repositories.ErrInviteConflict):
			return nil, ErrInviteConflict
		case errors.Is(err, repositories.ErrInviteUserInvalid):
			return nil, ErrUserNotFound
		default:
			return nil, fmt.Errorf("failed to create invite: %w", err)
		}
	}
	return invite, nil
}

func (s *inviteService) ListMyInvites(ctx context.Context, userID uuid.UUID) ([]*models.TeamInvite, error) {
	invites, err := s.inviteRepo.ListPendingByInvitee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites for user %s: %w", userID, err)
	}
	return invites, nil
}

func (s *inviteService) RespondToInvite(ctx context.Context, inviteeID, inviteID uuid.UUID, accept bool) (*models.TeamInvite, error) {
	action := "reject"
	if accept {
		action = "accept"
	}

	invite, err := s.respond(ctx, inviteeID, inviteID, accept)
	result := "success"
	if err != nil {
		result = "error"
		if errors.Is(err, ErrTeamFull) {
			result = "capacity"
		}
	}
	metrics.InviteResponses.WithLabelValues(action, result).Inc()
	return invite, err
}

func (s *inviteService) respond(ctx context.Context, inviteeID, inviteID uuid.UUID, accept bool) (*models.TeamInvite, error) {
	invite, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite %s: %w", inviteID, err)
	}
	// Чужие приглашения не раскрываем.
	if invite.InviteeID != inviteeID {
		return nil, ErrInviteNotFound
	}
	if invite.Status != models.InvitePending {
		return nil, ErrInviteAlreadyResolved
	}

	now := s.now()
	if !accept {
		if err = s.inviteRepo.Reject(ctx, inviteID, inviteeID, now); err != nil {
			if errors.Is(err, repositories.ErrInviteResolved) {
				return nil, ErrInviteAlreadyResolved
			}
			return nil, fmt.Errorf("failed to reject invite: %w", err)
		}
		invite.Status = models.InviteRejected
		invite.RespondedAt = &now
		return invite, nil
	}

	team, err := s.teamRepo.GetByName(ctx, invite.TournamentID, invite.TeamName)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team for invite: %w", err)
	}

	if err = s.inviteRepo.Accept(ctx, inviteID, inviteeID, team.ID, now); err != nil {
		switch {
		case errors.Is(err, repositories.ErrInviteResolved):
			return nil, ErrInviteAlreadyResolved
		case errors.Is(err, repositories.ErrTeamFull):
			return nil, ErrTeamFull
		case errors.Is(err, repositories.ErrTeamMemberConflict):
			return nil, ErrAlreadyOnTeam
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		default:
			return nil, fmt.Errorf("failed to accept invite: %w", err)
		}
	}

	invite.Status = models.InviteAccepted
	invite.RespondedAt = &now

	s.notifier.Notify(ctx, models.Event{
		Type: models.EventInviteAccepted,
		Room: models.TournamentRoom(invite.TournamentID.String()),
		Payload: map[string]any{
			"teamId": team.ID,
			"userId": inviteeID,
		},
	})
	return invite, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/google/uuid"
)

var (
	ErrInviteNotFound = errors.New("invite not found")
	// ErrInviteConflict: the (captain, tournament, team name, invitee) tuple already exists.
	ErrInviteConflict    = errors.New("invite conflict")
	ErrInviteUserInvalid = errors.New("invite user reference invalid")
	// ErrInviteResolved: the invite is no longer pending.
	ErrInviteResolved = errors.New("invite already resolved")
	// ErrTeamFull: the conditional seat reservation matched no row.
	ErrTeamFull = errors.New("team is full")
	// ErrTeamMemberConflict: the user already has a roster row on the team.
	ErrTeamMemberConflict = errors.New("user already on team")
)

// InviteRepository определяет интерфейс для работы с приглашениями в команду.
type InviteRepository interface {
	// Create вставляет приглашение в статусе pending.
	// Заполняет ID, Status и CreatedAt у переданного объекта.
	Create(ctx context.Context, invite *models.TeamInvite) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.TeamInvite, error)

	// ListPendingByInvitee возвращает ожидающие ответа приглашения пользователя, новые первыми.
	ListPendingByInvitee(ctx context.Context, inviteeID uuid.UUID) ([]*models.TeamInvite, error)

	// Accept marks the invite accepted, takes a seat on teamID and adds the
	// invitee to the roster in one transaction. Nothing is written when any
	// step fails.
	Accept(ctx context.Context, inviteID, inviteeID, teamID uuid.UUID, now time.Time) error

	// Reject marks the invite rejected while it is still pending.
	Reject(ctx context.Context, inviteID, inviteeID uuid.UUID, now time.Time) error
}

type postgresInviteRepository struct {
	db *sql.DB
}

func NewPostgresInviteRepository(db *sql.DB) InviteRepository {
	return &postgresInviteRepository{db: db}
}

const inviteColumns = `id, captain_id, tournament_id, team_name, invitee_id, status, created_at, responded_at`

func scanInvite(row interface{ Scan(...interface{}) error }) (*models.TeamInvite, error) {
	invite := &models.TeamInvite{}
	err := row.Scan(
		&invite.ID,
		&invite.CaptainID,
		&invite.TournamentID,
		&invite.TeamName,
		&invite.InviteeID,
		&invite.Status,
		&invite.CreatedAt,
		&invite.RespondedAt,
	)
	if err != nil {
		return nil, err
	}
	return invite, nil
}

func (r *postgresInviteRepository) Create(ctx context.Context, invite *models.TeamInvite) error {
	query := `
		INSERT INTO team_invites (captain_id, tournament_id, team_name, invitee_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at`

	err := r.db.QueryRowContext(ctx, query,
		invite.CaptainID,
		invite.TournamentID,
		invite.TeamName,
		invite.InviteeID,
	).Scan(&invite.ID, &invite.Status, &invite.CreatedAt)

	if err != nil {
		if pqErr, ok := asPQError(err, pqUniqueViolation); ok && pqErr.Constraint == "team_invites_tuple_key" {
			return ErrInviteConflict
		}
		if _, ok := asPQError(err, pqForeignKeyViolation); ok {
			return ErrInviteUserInvalid
		}
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (r *postgresInviteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TeamInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM team_invites WHERE id = $1`

	invite, err := scanInvite(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}

func (r *postgresInviteRepository) ListPendingByInvitee(ctx context.Context, inviteeID uuid.UUID) ([]*models.TeamInvite, error) {
	query := `
		SELECT ` + inviteColumns + `
		FROM team_invites
		WHERE invitee_id = $1 AND status = 'pending'
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	invites := make([]*models.TeamInvite, 0)
	for rows.Next() {
		invite, scanErr := scanInvite(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		invites = append(invites, invite)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *postgresInviteRepository) Accept(ctx context.Context, inviteID, inviteeID, teamID uuid.UUID, now time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := resolveInvite(ctx, tx, inviteID, inviteeID, models.InviteAccepted, now); err != nil {
			return err
		}

		seat := `
			UPDATE teams t SET player_count = t.player_count + 1
			FROM tournaments tr
			WHERE t.id = $1 AND tr.id = t.tournament_id AND t.player_count < tr.team_size`

		result, err := tx.ExecContext(ctx, seat, teamID)
		if err != nil {
			return fmt.Errorf("failed to reserve team seat: %w", err)
		}
		if err = checkAffectedRows(result, ErrTeamFull); err != nil {
			return err
		}

		insertPlayer := `INSERT INTO team_players (team_id, user_id, joined_at) VALUES ($1, $2, $3)`
		if _, err = tx.ExecContext(ctx, insertPlayer, teamID, inviteeID, now); err != nil {
			if pqErr, ok := asPQError(err, pqUniqueViolation); ok && pqErr.Constraint == "team_players_pkey" {
				return ErrTeamMemberConflict
			}
			if _, ok := asPQError(err, pqForeignKeyViolation); ok {
				return ErrTeamNotFound
			}
			return fmt.Errorf("failed to add team player: %w", err)
		}
		return nil
	})
}

func (r *postgresInviteRepository) Reject(ctx context.Context, inviteID, inviteeID uuid.UUID, now time.Time) error {
	return resolveInvite(ctx, r.db, inviteID, inviteeID, models.InviteRejected, now)
}

func resolveInvite(ctx context.Context, exec SQLExecutor, inviteID, inviteeID uuid.UUID, status models.InviteStatus, now time.Time) error {
	query := `
		UPDATE team_invites SET status = $3, responded_at = $4
		WHERE id = $1 AND invitee_id = $2 AND status = 'pending'`

	result, err := exec.ExecContext(ctx, query, inviteID, inviteeID, status, now)
	if err != nil {
		return fmt.Errorf("failed to resolve invite: %w", err)
	}
	return checkAffectedRows(result, ErrInviteResolved)
}

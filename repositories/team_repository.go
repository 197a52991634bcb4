package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound = errors.New("team not found")
	// ErrTeamNameConflict: an equal name (case-insensitive) already exists in the tournament.
	ErrTeamNameConflict = errors.New("team name conflict")
	// ErrTeamPlayerInvalid: a player id does not reference an existing user.
	ErrTeamPlayerInvalid = errors.New("team player reference invalid")
	// ErrTournamentSlotUnavailable: the conditional slot reservation matched no row.
	ErrTournamentSlotUnavailable = errors.New("no tournament slot available")
)

type TeamRepository interface {
	// Register reserves a tournament slot and inserts the team with its
	// players in one transaction. team.Players must already include the captain.
	Register(ctx context.Context, team *models.Team, now time.Time) error
	GetByName(ctx context.Context, tournamentID uuid.UUID, teamName string) (*models.Team, error)
	NameExists(ctx context.Context, tournamentID uuid.UUID, teamName string) (bool, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.TeamSummary, error)
	// ListByUser returns teams where the user is captain or player, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Team, error)
	GetDetail(ctx context.Context, teamID uuid.UUID) (*models.TeamDetail, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Register(ctx context.Context, team *models.Team, now time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		reserve := `
			UPDATE tournaments SET registered_teams = registered_teams + 1
			WHERE id = $1
			  AND status = 'registration_open'
			  AND registered_teams < max_teams
			  AND (registration_deadline IS NULL OR registration_deadline > $2)`

		result, err := tx.ExecContext(ctx, reserve, team.TournamentID, now)
		if err != nil {
			return fmt.Errorf("failed to reserve tournament slot: %w", err)
		}
		if err = checkAffectedRows(result, ErrTournamentSlotUnavailable); err != nil {
			return err
		}

		insertTeam := `
			INSERT INTO teams (tournament_id, team_name, captain_id, player_count, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`

		err = tx.QueryRowContext(ctx, insertTeam,
			team.TournamentID, team.TeamName, team.CaptainID, len(team.Players), team.Status,
		).Scan(&team.ID, &team.CreatedAt)
		if err != nil {
			if pqErr, ok := asPQError(err, pqUniqueViolation); ok && pqErr.Constraint == "teams_tournament_name_key" {
				return ErrTeamNameConflict
			}
			if _, ok := asPQError(err, pqForeignKeyViolation); ok {
				return ErrTeamPlayerInvalid
			}
			return fmt.Errorf("failed to insert team: %w", err)
		}

		insertPlayers := `
			INSERT INTO team_players (team_id, user_id, joined_at)
			SELECT $1, p, $3 FROM unnest($2::uuid[]) AS p`

		if _, err = tx.ExecContext(ctx, insertPlayers, team.ID, pq.Array(uuidStrings(team.Players)), now); err != nil {
			if _, ok := asPQError(err, pqForeignKeyViolation); ok {
				return ErrTeamPlayerInvalid
			}
			return fmt.Errorf("failed to insert team players: %w", err)
		}

		team.PlayerCount = len(team.Players)
		return nil
	})
}

const teamSelect = `
	SELECT t.id, t.tournament_id, t.team_name, t.captain_id, t.player_count, t.status, t.created_at,
	       COALESCE(array_agg(tp.user_id::text ORDER BY tp.joined_at) FILTER (WHERE tp.user_id IS NOT NULL), '{}')
	FROM teams t
	LEFT JOIN team_players tp ON tp.team_id = t.id`

func scanTeam(row interface{ Scan(...interface{}) error }) (*models.Team, error) {
	var team models.Team
	var players pq.StringArray
	if err := row.Scan(
		&team.ID, &team.TournamentID, &team.TeamName, &team.CaptainID,
		&team.PlayerCount, &team.Status, &team.CreatedAt, &players,
	); err != nil {
		return nil, err
	}
	ids, err := parseUUIDs(players)
	if err != nil {
		return nil, err
	}
	team.Players = ids
	return &team, nil
}

func (r *postgresTeamRepository) GetByName(ctx context.Context, tournamentID uuid.UUID, teamName string) (*models.Team, error) {
	query := teamSelect + `
		WHERE t.tournament_id = $1 AND lower(t.team_name) = lower($2)
		GROUP BY t.id`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, tournamentID, teamName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team by name: %w", err)
	}
	return team, nil
}

func (r *postgresTeamRepository) NameExists(ctx context.Context, tournamentID uuid.UUID, teamName string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM teams WHERE tournament_id = $1 AND lower(team_name) = lower($2))`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tournamentID, teamName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check team name: %w", err)
	}
	return exists, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.TeamSummary, error) {
	query := `
		SELECT id, team_name, created_at
		FROM teams
		WHERE tournament_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.TeamSummary, 0)
	for rows.Next() {
		var s models.TeamSummary
		if scanErr := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	query := teamSelect + `
		WHERE t.captain_id = $1
		   OR EXISTS (SELECT 1 FROM team_players m WHERE m.team_id = t.id AND m.user_id = $1)
		GROUP BY t.id
		ORDER BY t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan team: %w", scanErr)
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) GetDetail(ctx context.Context, teamID uuid.UUID) (*models.TeamDetail, error) {
	query := `
		SELECT t.id, t.team_name, t.status, t.captain_id, t.created_at,
		       tr.id, tr.name, tr.date, tr.start_time, tr.status
		FROM teams t
		JOIN tournaments tr ON tr.id = t.tournament_id
		WHERE t.id = $1`

	d := &models.TeamDetail{}
	err := r.db.QueryRowContext(ctx, query, teamID).Scan(
		&d.ID, &d.TeamName, &d.Status, &d.CaptainID, &d.CreatedAt,
		&d.TournamentID, &d.TournamentName, &d.TournamentDate, &d.StartTime, &d.Tournament,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team detail: %w", err)
	}

	playersQuery := `
		SELECT u.id, u.display_name, u.minecraft_name, u.discord_name, tp.joined_at
		FROM team_players tp
		JOIN users u ON u.id = tp.user_id
		WHERE tp.team_id = $1
		ORDER BY tp.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, playersQuery, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team players: %w", err)
	}
	defer rows.Close()

	d.Players = make([]models.TeamPlayer, 0)
	for rows.Next() {
		var p models.TeamPlayer
		if scanErr := rows.Scan(&p.UserID, &p.DisplayName, &p.MinecraftName, &p.DiscordName, &p.JoinedAt); scanErr != nil {
			return nil, scanErr
		}
		p.IsCaptain = p.UserID == d.CaptainID
		d.Players = append(d.Players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

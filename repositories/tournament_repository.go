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
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentStatusChanged = errors.New("tournament status changed concurrently")
	ErrTournamentInvalidData   = errors.New("tournament violates a table constraint")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	// ListPublic returns every tournament not in draft, ordered by date then start time.
	ListPublic(ctx context.Context) ([]*models.Tournament, error)
	// OpenDueRegistrations moves scheduled tournaments whose opening time has
	// passed to registration_open and returns how many rows changed.
	OpenDueRegistrations(ctx context.Context, now time.Time) (int64, error)
	// UpdateStatus is a compare-and-set: it only applies while the stored
	// status still equals from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.TournamentStatus) error
	UpdateBannerKey(ctx context.Context, id uuid.UUID, bannerKey *string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, name, type, date, start_time, registration_deadline, scheduled_at,
	max_teams, team_size, registered_teams, status, banner_key, created_at`

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Type, &t.Date, &t.StartTime, &t.RegistrationDeadline, &t.ScheduledAt,
		&t.MaxTeams, &t.TeamSize, &t.RegisteredTeams, &t.Status, &t.BannerKey, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, type, date, start_time, registration_deadline, scheduled_at,
			max_teams, team_size, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, registered_teams, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Type, t.Date, t.StartTime, t.RegistrationDeadline, t.ScheduledAt,
		t.MaxTeams, t.TeamSize, t.Status,
	).Scan(&t.ID, &t.RegisteredTeams, &t.CreatedAt)
	if err != nil {
		if _, ok := asPQError(err, pqCheckViolation); ok {
			return ErrTournamentInvalidData
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	return getTournament(ctx, r.db, id)
}

func getTournament(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t, err := scanTournament(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListPublic(ctx context.Context) ([]*models.Tournament, error) {
	statuses := make([]string, len(models.PublicStatuses))
	for i, s := range models.PublicStatuses {
		statuses[i] = string(s)
	}

	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status = ANY($1::tournament_status[])
		ORDER BY date ASC, start_time ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) OpenDueRegistrations(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE tournaments SET status = 'registration_open'
		WHERE status = 'scheduled' AND scheduled_at <= $1`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to open due registrations: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $3 WHERE id = $1 AND status = $2`

	result, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update tournament status: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentStatusChanged)
}

func (r *postgresTournamentRepository) UpdateBannerKey(ctx context.Context, id uuid.UUID, bannerKey *string) error {
	query := `UPDATE tournaments SET banner_key = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, bannerKey)
	if err != nil {
		return fmt.Errorf("failed to update tournament banner key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

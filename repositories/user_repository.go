package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserExternalIDConflict = errors.New("user external id conflict")
)

type UserRepository interface {
	// UpsertByExternalID creates the user on first sign-in or refreshes the
	// provider-owned fields. When promote is true the stored role is raised
	// to super_admin.
	UpsertByExternalID(ctx context.Context, identity models.ExternalIdentity, promote bool) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.UserRole) (*models.User, error)
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) (*models.User, error)
	UpdateHandles(ctx context.Context, id uuid.UUID, minecraftName, discordName *string) (*models.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, external_id, email, display_name, minecraft_name, discord_name, role, banned, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.ExternalID,
		&user.Email,
		&user.DisplayName,
		&user.MinecraftName,
		&user.DiscordName,
		&user.Role,
		&user.Banned,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *postgresUserRepository) UpsertByExternalID(ctx context.Context, identity models.ExternalIdentity, promote bool) (*models.User, error) {
	// Игровые ники от провайдера берем только если пользователь их еще не задал сам.
	query := `
		INSERT INTO users (external_id, email, display_name, minecraft_name, discord_name, role)
		VALUES ($1, $2, $3, $4, $5, CASE WHEN $6 THEN 'super_admin'::user_role ELSE 'player'::user_role END)
		ON CONFLICT (external_id) DO UPDATE SET
			email          = EXCLUDED.email,
			display_name   = EXCLUDED.display_name,
			minecraft_name = COALESCE(users.minecraft_name, EXCLUDED.minecraft_name),
			discord_name   = COALESCE(users.discord_name, EXCLUDED.discord_name),
			role           = CASE WHEN $6 THEN 'super_admin'::user_role ELSE users.role END,
			updated_at     = now()
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		identity.ExternalID,
		identity.Email,
		identity.DisplayName,
		identity.MinecraftName,
		identity.DiscordName,
		promote,
	))
	if err != nil {
		if _, ok := asPQError(err, pqUniqueViolation); ok {
			return nil, ErrUserExternalIDConflict
		}
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan user: %w", scanErr)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *postgresUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.UserRole) (*models.User, error) {
	query := `UPDATE users SET role = $2, updated_at = now() WHERE id = $1 RETURNING ` + userColumns
	return r.updateReturning(ctx, query, id, role)
}

func (r *postgresUserRepository) SetBanned(ctx context.Context, id uuid.UUID, banned bool) (*models.User, error) {
	query := `UPDATE users SET banned = $2, updated_at = now() WHERE id = $1 RETURNING ` + userColumns
	return r.updateReturning(ctx, query, id, banned)
}

func (r *postgresUserRepository) UpdateHandles(ctx context.Context, id uuid.UUID, minecraftName, discordName *string) (*models.User, error) {
	query := `
		UPDATE users SET minecraft_name = $2, discord_name = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	return r.updateReturning(ctx, query, id, minecraftName, discordName)
}

func (r *postgresUserRepository) updateReturning(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

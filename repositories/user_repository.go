package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/betting-pool/models"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserNameConflict = errors.New("user name conflict")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.User) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.User, error)
	GetByName(ctx context.Context, exec SQLExecutor, name string) (*models.User, error)
	UpdatePassword(ctx context.Context, exec SQLExecutor, id uuid.UUID, password string) error
	// ListPlayers returns every user but the admin, best score first.
	ListPlayers(ctx context.Context, exec SQLExecutor) ([]*models.User, error)
	UpdateResults(ctx context.Context, exec SQLExecutor, user *models.User) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `
	id, name, first_name, last_name, password, created_at,
	number_match_guess, number_score_guess, number_qualified_teams_guess, number_first_qualified_guess,
	number_quarter_final_guess, number_semi_final_guess, number_final_guess, number_winner_guess, points`

func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, name, first_name, last_name, password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.FirstName,
		user.LastName,
		user.Password,
	).Scan(&user.CreatedAt)

	if err != nil {
		if constraint, ok := constraintViolation(err, uniqueViolation); ok && constraint == "users_name_key" {
			return ErrUserNameConflict
		}
		return fmt.Errorf("failed to create user %s: %w", user.Name, err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByName(ctx context.Context, exec SQLExecutor, name string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE name = $1`
	return r.scanUser(getExecutor(r.db, exec).QueryRowContext(ctx, query, name))
}

func (r *postgresUserRepository) UpdatePassword(ctx context.Context, exec SQLExecutor, id uuid.UUID, password string) error {
	result, err := getExecutor(r.db, exec).ExecContext(ctx,
		`UPDATE users SET password = $1 WHERE id = $2`, password, id)
	if err != nil {
		return fmt.Errorf("failed to update password of user %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) ListPlayers(ctx context.Context, exec SQLExecutor) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE name <> $1 ORDER BY points DESC, name ASC`

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, models.AdminName)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return users, nil
}

func (r *postgresUserRepository) UpdateResults(ctx context.Context, exec SQLExecutor, user *models.User) error {
	query := `
		UPDATE users SET
			number_match_guess = $1,
			number_score_guess = $2,
			number_qualified_teams_guess = $3,
			number_first_qualified_guess = $4,
			number_quarter_final_guess = $5,
			number_semi_final_guess = $6,
			number_final_guess = $7,
			number_winner_guess = $8,
			points = $9
		WHERE id = $10`

	result, err := getExecutor(r.db, exec).ExecContext(ctx, query,
		user.NumberMatchGuess,
		user.NumberScoreGuess,
		user.NumberQualifiedTeamsGuess,
		user.NumberFirstQualifiedGuess,
		user.NumberQuarterFinalGuess,
		user.NumberSemiFinalGuess,
		user.NumberFinalGuess,
		user.NumberWinnerGuess,
		user.Points,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update results of user %s: %w", user.ID, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.FirstName,
		&user.LastName,
		&user.Password,
		&user.CreatedAt,
		&user.NumberMatchGuess,
		&user.NumberScoreGuess,
		&user.NumberQualifiedTeamsGuess,
		&user.NumberFirstQualifiedGuess,
		&user.NumberQuarterFinalGuess,
		&user.NumberSemiFinalGuess,
		&user.NumberFinalGuess,
		&user.NumberWinnerGuess,
		&user.Points,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

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
	ErrGroupPositionNotFound = errors.New("group position not found")
	ErrGroupPositionConflict = errors.New("group position already exists for user, group and team")
)

type GroupPositionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, position *models.GroupPosition) error
	// ListByUserAndGroup returns the rows ordered by team code; callers sort them by rank.
	ListByUserAndGroup(ctx context.Context, exec SQLExecutor, userID, groupID uuid.UUID) ([]*models.GroupPosition, error)
	Save(ctx context.Context, exec SQLExecutor, position *models.GroupPosition) error
	// MarkForRecomputation flags every row of the user for the given teams as stale.
	MarkForRecomputation(ctx context.Context, exec SQLExecutor, userID uuid.UUID, teamIDs ...uuid.UUID) error
}

type postgresGroupPositionRepository struct {
	db *sql.DB
}

func NewPostgresGroupPositionRepository(db *sql.DB) GroupPositionRepository {
	return &postgresGroupPositionRepository{db: db}
}

func (r *postgresGroupPositionRepository) Create(ctx context.Context, exec SQLExecutor, position *models.GroupPosition) error {
	if position.ID == uuid.Nil {
		position.ID = uuid.New()
	}
	query := `
		INSERT INTO group_positions (id, user_id, group_id, team_id, won, drawn, lost, goals_for, goals_against, need_recomputation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := getExecutor(r.db, exec).ExecContext(ctx, query,
		position.ID,
		position.UserID,
		position.GroupID,
		position.TeamID,
		position.Won,
		position.Drawn,
		position.Lost,
		position.GoalsFor,
		position.GoalsAgainst,
		position.NeedRecomputation,
	)
	if err != nil {
		if constraint, ok := constraintViolation(err, uniqueViolation); ok && constraint == "group_positions_user_group_team_key" {
			return ErrGroupPositionConflict
		}
		return fmt.Errorf("failed to create group position: %w", err)
	}
	return nil
}

func (r *postgresGroupPositionRepository) ListByUserAndGroup(ctx context.Context, exec SQLExecutor, userID, groupID uuid.UUID) ([]*models.GroupPosition, error) {
	query := `
		SELECT gp.id, gp.user_id, gp.group_id, gp.team_id, gp.won, gp.drawn, gp.lost,
		       gp.goals_for, gp.goals_against, gp.need_recomputation,
		       t.id, t.code, t.description_fr, t.description_en, t.flag_url
		FROM group_positions gp
		JOIN teams t ON t.id = gp.team_id
		WHERE gp.user_id = $1 AND gp.group_id = $2
		ORDER BY t.code ASC`

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group positions: %w", err)
	}
	defer rows.Close()

	positions := make([]*models.GroupPosition, 0, 4)
	for rows.Next() {
		var p models.GroupPosition
		var t models.Team
		err := rows.Scan(
			&p.ID, &p.UserID, &p.GroupID, &p.TeamID, &p.Won, &p.Drawn, &p.Lost,
			&p.GoalsFor, &p.GoalsAgainst, &p.NeedRecomputation,
			&t.ID, &t.Code, &t.DescriptionFR, &t.DescriptionEN, &t.FlagURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group position: %w", err)
		}
		p.Team = &t
		positions = append(positions, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group positions: %w", err)
	}
	return positions, nil
}

func (r *postgresGroupPositionRepository) Save(ctx context.Context, exec SQLExecutor, position *models.GroupPosition) error {
	query := `
		UPDATE group_positions SET
			won = $1, drawn = $2, lost = $3, goals_for = $4, goals_against = $5, need_recomputation = $6
		WHERE id = $7`

	result, err := getExecutor(r.db, exec).ExecContext(ctx, query,
		position.Won,
		position.Drawn,
		position.Lost,
		position.GoalsFor,
		position.GoalsAgainst,
		position.NeedRecomputation,
		position.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save group position %s: %w", position.ID, err)
	}
	return checkAffectedRows(result, ErrGroupPositionNotFound)
}

func (r *postgresGroupPositionRepository) MarkForRecomputation(ctx context.Context, exec SQLExecutor, userID uuid.UUID, teamIDs ...uuid.UUID) error {
	for _, teamID := range teamIDs {
		_, err := getExecutor(r.db, exec).ExecContext(ctx,
			`UPDATE group_positions SET need_recomputation = TRUE WHERE user_id = $1 AND team_id = $2`,
			userID, teamID)
		if err != nil {
			return fmt.Errorf("failed to mark group position of team %s for recomputation: %w", teamID, err)
		}
	}
	return nil
}

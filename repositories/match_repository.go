package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/betting-pool/models"
	"github.com/google/uuid"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchFilter narrows a per-user match listing. Empty fields are ignored.
type MatchFilter struct {
	UserID    *uuid.UUID
	GroupID   *uuid.UUID
	PhaseCode string
	GroupCode string
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error)
	GetByUserGroupIndex(ctx context.Context, exec SQLExecutor, userID, groupID uuid.UUID, index int) (*models.Match, error)
	UpdateTeams(ctx context.Context, exec SQLExecutor, id uuid.UUID, team1ID, team2ID *uuid.UUID) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
	List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	query := `
		INSERT INTO matches (id, group_id, index, team1_id, team2_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := getExecutor(r.db, exec).ExecContext(ctx, query,
		match.ID,
		match.GroupID,
		match.Index,
		match.Team1ID,
		match.Team2ID,
		match.UserID,
	)
	if err != nil {
		return mapMatchWriteError(err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error) {
	row := getExecutor(r.db, exec).QueryRowContext(ctx, matchSelect+` WHERE m.id = $1`, id)
	var s matchScan
	if err := row.Scan(s.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return s.match(), nil
}

func (r *postgresMatchRepository) GetByUserGroupIndex(ctx context.Context, exec SQLExecutor, userID, groupID uuid.UUID, index int) (*models.Match, error) {
	row := getExecutor(r.db, exec).QueryRowContext(ctx,
		matchSelect+` WHERE m.user_id = $1 AND m.group_id = $2 AND m.index = $3`,
		userID, groupID, index)
	var s matchScan
	if err := row.Scan(s.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d of group %s: %w", index, groupID, err)
	}
	return s.match(), nil
}

func (r *postgresMatchRepository) UpdateTeams(ctx context.Context, exec SQLExecutor, id uuid.UUID, team1ID, team2ID *uuid.UUID) error {
	result, err := getExecutor(r.db, exec).ExecContext(ctx,
		`UPDATE matches SET team1_id = $1, team2_id = $2 WHERE id = $3`, team1ID, team2ID, id)
	if err != nil {
		return mapMatchWriteError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	result, err := getExecutor(r.db, exec).ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.Match, error) {
	where, args := filter.clauses()
	query := matchSelect + where + ` ORDER BY p.index ASC, g.index ASC, m.index ASC`

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var s matchScan
		if err := rows.Scan(s.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, s.match())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}

func mapMatchWriteError(err error) error {
	if constraint, ok := constraintViolation(err, foreignKeyViolation); ok {
		switch constraint {
		case "matches_group_id_fkey":
			return ErrGroupNotFound
		case "matches_team1_id_fkey", "matches_team2_id_fkey":
			return ErrTeamNotFound
		case "matches_user_id_fkey":
			return ErrUserNotFound
		}
	}
	return fmt.Errorf("failed to write match: %w", err)
}

func (f MatchFilter) clauses() (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != nil {
		add("m.user_id = $%d", *f.UserID)
	}
	if f.GroupID != nil {
		add("m.group_id = $%d", *f.GroupID)
	}
	if f.PhaseCode != "" {
		add("p.code = $%d", f.PhaseCode)
	}
	if f.GroupCode != "" {
		add("g.code = $%d", f.GroupCode)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const matchColumns = `
	m.id, m.group_id, m.index, m.team1_id, m.team2_id, m.user_id,
	g.id, g.code, g.description_fr, g.description_en, g.index, g.phase_id,
	p.id, p.code, p.description_fr, p.description_en, p.index,
	t1.id, t1.code, t1.description_fr, t1.description_en, t1.flag_url,
	t2.id, t2.code, t2.description_fr, t2.description_en, t2.flag_url`

const matchJoins = `
	JOIN tournament_groups g ON g.id = m.group_id
	JOIN phases p ON p.id = g.phase_id
	LEFT JOIN teams t1 ON t1.id = m.team1_id
	LEFT JOIN teams t2 ON t2.id = m.team2_id`

const matchSelect = `SELECT ` + matchColumns + ` FROM matches m` + matchJoins

// matchScan receives one joined match row: the match, its group and phase, and both optional teams.
type matchScan struct {
	m       models.Match
	g       models.Group
	p       models.Phase
	team1ID uuid.NullUUID
	team2ID uuid.NullUUID
	t1, t2  nullTeam
}

type nullTeam struct {
	id                            uuid.NullUUID
	code, descFR, descEN, flagURL sql.NullString
}

func (t *nullTeam) dest() []interface{} {
	return []interface{}{&t.id, &t.code, &t.descFR, &t.descEN, &t.flagURL}
}

func (t *nullTeam) team() *models.Team {
	if !t.id.Valid {
		return nil
	}
	return &models.Team{
		ID:            t.id.UUID,
		Code:          t.code.String,
		DescriptionFR: t.descFR.String,
		DescriptionEN: t.descEN.String,
		FlagURL:       t.flagURL.String,
	}
}

func (s *matchScan) dest() []interface{} {
	dest := []interface{}{
		&s.m.ID, &s.m.GroupID, &s.m.Index, &s.team1ID, &s.team2ID, &s.m.UserID,
		&s.g.ID, &s.g.Code, &s.g.DescriptionFR, &s.g.DescriptionEN, &s.g.Index, &s.g.PhaseID,
		&s.p.ID, &s.p.Code, &s.p.DescriptionFR, &s.p.DescriptionEN, &s.p.Index,
	}
	dest = append(dest, s.t1.dest()...)
	return append(dest, s.t2.dest()...)
}

func (s *matchScan) match() *models.Match {
	m := s.m
	m.Team1ID = nullableUUID(s.team1ID)
	m.Team2ID = nullableUUID(s.team2ID)
	g := s.g
	p := s.p
	g.Phase = &p
	m.Group = &g
	m.Team1 = s.t1.team()
	m.Team2 = s.t2.team()
	return &m
}

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
	ErrPhaseNotFound          = errors.New("phase not found")
	ErrGroupNotFound          = errors.New("group not found")
	ErrTeamNotFound           = errors.New("team not found")
	ErrMatchReferenceConflict = errors.New("match reference already exists for group and index")
	ErrStructureConflict      = errors.New("structure entry already exists")
)

// StructureRepository covers phases, groups, teams and match references.
// The structure is seeded once before signups and read-only afterwards.
type StructureRepository interface {
	CreatePhase(ctx context.Context, exec SQLExecutor, phase *models.Phase) error
	CreateGroup(ctx context.Context, exec SQLExecutor, group *models.Group) error
	CreateTeam(ctx context.Context, exec SQLExecutor, team *models.Team) error
	CreateMatchReference(ctx context.Context, exec SQLExecutor, ref *models.MatchReference) error

	ListPhases(ctx context.Context, exec SQLExecutor) ([]*models.Phase, error)
	GetPhaseByCode(ctx context.Context, exec SQLExecutor, code string) (*models.Phase, error)

	ListGroups(ctx context.Context, exec SQLExecutor) ([]*models.Group, error)
	ListGroupsByPhaseCode(ctx context.Context, exec SQLExecutor, phaseCode string) ([]*models.Group, error)
	GetGroupByCode(ctx context.Context, exec SQLExecutor, code string) (*models.Group, error)
	GetGroupByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Group, error)

	ListTeams(ctx context.Context, exec SQLExecutor) ([]*models.Team, error)
	GetTeamByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Team, error)
	GetTeamByCode(ctx context.Context, exec SQLExecutor, code string) (*models.Team, error)
	GetTeamByDescriptionEN(ctx context.Context, exec SQLExecutor, description string) (*models.Team, error)

	ListMatchReferences(ctx context.Context, exec SQLExecutor) ([]*models.MatchReference, error)
}

type postgresStructureRepository struct {
	db *sql.DB
}

func NewPostgresStructureRepository(db *sql.DB) StructureRepository {
	return &postgresStructureRepository{db: db}
}

func (r *postgresStructureRepository) CreatePhase(ctx context.Context, exec SQLExecutor, phase *models.Phase) error {
	if phase.ID == uuid.Nil {
		phase.ID = uuid.New()
	}
	_, err := getExecutor(r.db, exec).ExecContext(ctx,
		`INSERT INTO phases (id, code, description_fr, description_en, index) VALUES ($1, $2, $3, $4, $5)`,
		phase.ID, phase.Code, phase.DescriptionFR, phase.DescriptionEN, phase.Index)
	if err != nil {
		if _, ok := constraintViolation(err, uniqueViolation); ok {
			return fmt.Errorf("%w: phase %s", ErrStructureConflict, phase.Code)
		}
		return fmt.Errorf("failed to create phase %s: %w", phase.Code, err)
	}
	return nil
}

func (r *postgresStructureRepository) CreateGroup(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	_, err := getExecutor(r.db, exec).ExecContext(ctx,
		`INSERT INTO tournament_groups (id, code, description_fr, description_en, index, phase_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		group.ID, group.Code, group.DescriptionFR, group.DescriptionEN, group.Index, group.PhaseID)
	if err != nil {
		if _, ok := constraintViolation(err, uniqueViolation); ok {
			return fmt.Errorf("%w: group %s", ErrStructureConflict, group.Code)
		}
		if _, ok := constraintViolation(err, foreignKeyViolation); ok {
			return ErrPhaseNotFound
		}
		return fmt.Errorf("failed to create group %s: %w", group.Code, err)
	}
	return nil
}

func (r *postgresStructureRepository) CreateTeam(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	_, err := getExecutor(r.db, exec).ExecContext(ctx,
		`INSERT INTO teams (id, code, description_fr, description_en, flag_url) VALUES ($1, $2, $3, $4, $5)`,
		team.ID, team.Code, team.DescriptionFR, team.DescriptionEN, team.FlagURL)
	if err != nil {
		if _, ok := constraintViolation(err, uniqueViolation); ok {
			return fmt.Errorf("%w: team %s", ErrStructureConflict, team.Code)
		}
		return fmt.Errorf("failed to create team %s: %w", team.Code, err)
	}
	return nil
}

func (r *postgresStructureRepository) CreateMatchReference(ctx context.Context, exec SQLExecutor, ref *models.MatchReference) error {
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	_, err := getExecutor(r.db, exec).ExecContext(ctx,
		`INSERT INTO match_references (id, group_id, index, team1_id, team2_id, bet_kind)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		ref.ID, ref.GroupID, ref.Index, ref.Team1ID, ref.Team2ID, string(ref.BetKind))
	if err != nil {
		if constraint, ok := constraintViolation(err, uniqueViolation); ok && constraint == "match_references_group_index_key" {
			return ErrMatchReferenceConflict
		}
		if constraint, ok := constraintViolation(err, foreignKeyViolation); ok {
			if constraint == "match_references_group_id_fkey" {
				return ErrGroupNotFound
			}
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to create match reference: %w", err)
	}
	return nil
}

func (r *postgresStructureRepository) ListPhases(ctx context.Context, exec SQLExecutor) ([]*models.Phase, error) {
	rows, err := getExecutor(r.db, exec).QueryContext(ctx,
		`SELECT id, code, description_fr, description_en, index FROM phases ORDER BY index ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list phases: %w", err)
	}
	defer rows.Close()

	phases := make([]*models.Phase, 0)
	for rows.Next() {
		var p models.Phase
		if err := rows.Scan(&p.ID, &p.Code, &p.DescriptionFR, &p.DescriptionEN, &p.Index); err != nil {
			return nil, fmt.Errorf("failed to scan phase: %w", err)
		}
		phases = append(phases, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating phases: %w", err)
	}
	return phases, nil
}

func (r *postgresStructureRepository) GetPhaseByCode(ctx context.Context, exec SQLExecutor, code string) (*models.Phase, error) {
	var p models.Phase
	err := getExecutor(r.db, exec).QueryRowContext(ctx,
		`SELECT id, code, description_fr, description_en, index FROM phases WHERE code = $1`, code).
		Scan(&p.ID, &p.Code, &p.DescriptionFR, &p.DescriptionEN, &p.Index)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseNotFound
		}
		return nil, fmt.Errorf("failed to get phase %s: %w", code, err)
	}
	return &p, nil
}

const groupSelect = `
	SELECT g.id, g.code, g.description_fr, g.description_en, g.index, g.phase_id,
	       p.id, p.code, p.description_fr, p.description_en, p.index
	FROM tournament_groups g
	JOIN phases p ON p.id = g.phase_id`

func (r *postgresStructureRepository) ListGroups(ctx context.Context, exec SQLExecutor) ([]*models.Group, error) {
	return r.queryGroups(ctx, exec, groupSelect+` ORDER BY g.index ASC`)
}

func (r *postgresStructureRepository) ListGroupsByPhaseCode(ctx context.Context, exec SQLExecutor, phaseCode string) ([]*models.Group, error) {
	return r.queryGroups(ctx, exec, groupSelect+` WHERE p.code = $1 ORDER BY g.index ASC`, phaseCode)
}

func (r *postgresStructureRepository) GetGroupByCode(ctx context.Context, exec SQLExecutor, code string) (*models.Group, error) {
	return r.scanGroup(getExecutor(r.db, exec).QueryRowContext(ctx, groupSelect+` WHERE g.code = $1`, code))
}

func (r *postgresStructureRepository) GetGroupByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Group, error) {
	return r.scanGroup(getExecutor(r.db, exec).QueryRowContext(ctx, groupSelect+` WHERE g.id = $1`, id))
}

func (r *postgresStructureRepository) queryGroups(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Group, error) {
	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		g, err := r.scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

func (r *postgresStructureRepository) scanGroup(row rowScanner) (*models.Group, error) {
	var g models.Group
	var p models.Phase
	err := row.Scan(
		&g.ID, &g.Code, &g.DescriptionFR, &g.DescriptionEN, &g.Index, &g.PhaseID,
		&p.ID, &p.Code, &p.DescriptionFR, &p.DescriptionEN, &p.Index,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group: %w", err)
	}
	g.Phase = &p
	return &g, nil
}

const teamSelect = `SELECT id, code, description_fr, description_en, flag_url FROM teams`

func (r *postgresStructureRepository) ListTeams(ctx context.Context, exec SQLExecutor) ([]*models.Team, error) {
	rows, err := getExecutor(r.db, exec).QueryContext(ctx, teamSelect+` ORDER BY code ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}
	return teams, nil
}

func (r *postgresStructureRepository) GetTeamByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Team, error) {
	return scanTeam(getExecutor(r.db, exec).QueryRowContext(ctx, teamSelect+` WHERE id = $1`, id))
}

func (r *postgresStructureRepository) GetTeamByCode(ctx context.Context, exec SQLExecutor, code string) (*models.Team, error) {
	return scanTeam(getExecutor(r.db, exec).QueryRowContext(ctx, teamSelect+` WHERE code = $1`, code))
}

func (r *postgresStructureRepository) GetTeamByDescriptionEN(ctx context.Context, exec SQLExecutor, description string) (*models.Team, error) {
	return scanTeam(getExecutor(r.db, exec).QueryRowContext(ctx, teamSelect+` WHERE description_en = $1`, description))
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	if err := row.Scan(&t.ID, &t.Code, &t.DescriptionFR, &t.DescriptionEN, &t.FlagURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team: %w", err)
	}
	return &t, nil
}

func (r *postgresStructureRepository) ListMatchReferences(ctx context.Context, exec SQLExecutor) ([]*models.MatchReference, error) {
	rows, err := getExecutor(r.db, exec).QueryContext(ctx, `
		SELECT mr.id, mr.group_id, mr.index, mr.team1_id, mr.team2_id, mr.bet_kind
		FROM match_references mr
		JOIN tournament_groups g ON g.id = mr.group_id
		ORDER BY g.index ASC, mr.index ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list match references: %w", err)
	}
	defer rows.Close()

	refs := make([]*models.MatchReference, 0)
	for rows.Next() {
		var ref models.MatchReference
		var team1, team2 uuid.NullUUID
		var kind string
		if err := rows.Scan(&ref.ID, &ref.GroupID, &ref.Index, &team1, &team2, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan match reference: %w", err)
		}
		ref.Team1ID = nullableUUID(team1)
		ref.Team2ID = nullableUUID(team2)
		ref.BetKind = models.BetKind(kind)
		refs = append(refs, &ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match references: %w", err)
	}
	return refs, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/repositories"
	"github.com/google/uuid"
)

var teamCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// StructureService is the read side of the tournament structure and of a user's own matches.
type StructureService interface {
	ListPhases(ctx context.Context) ([]*models.Phase, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	GetGroup(ctx context.Context, code string) (*models.Group, error)
	ListGroupsByPhase(ctx context.Context, phaseCode string) (*models.Phase, []*models.Group, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	// GetTeam accepts either a team uuid or a two letter team code.
	GetTeam(ctx context.Context, idOrCode string) (*models.Team, error)
	ListMatches(ctx context.Context, userID uuid.UUID, phaseCode, groupCode string) ([]*models.Match, error)
}

type structureService struct {
	structureRepo repositories.StructureRepository
	matchRepo     repositories.MatchRepository
}

func NewStructureService(structureRepo repositories.StructureRepository, matchRepo repositories.MatchRepository) StructureService {
	return &structureService{structureRepo: structureRepo, matchRepo: matchRepo}
}

func (s *structureService) ListPhases(ctx context.Context) ([]*models.Phase, error) {
	return s.structureRepo.ListPhases(ctx, nil)
}

func (s *structureService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.structureRepo.ListGroups(ctx, nil)
}

func (s *structureService) GetGroup(ctx context.Context, code string) (*models.Group, error) {
	group, err := s.structureRepo.GetGroupByCode(ctx, nil, code)
	if err != nil {
		return nil, mapStructureError(err, code)
	}
	return group, nil
}

func (s *structureService) ListGroupsByPhase(ctx context.Context, phaseCode string) (*models.Phase, []*models.Group, error) {
	phase, err := s.structureRepo.GetPhaseByCode(ctx, nil, phaseCode)
	if err != nil {
		return nil, nil, mapStructureError(err, phaseCode)
	}
	groups, err := s.structureRepo.ListGroupsByPhaseCode(ctx, nil, phaseCode)
	if err != nil {
		return nil, nil, err
	}
	return phase, groups, nil
}

func (s *structureService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	return s.structureRepo.ListTeams(ctx, nil)
}

func (s *structureService) GetTeam(ctx context.Context, idOrCode string) (*models.Team, error) {
	var (
		team *models.Team
		err  error
	)
	if id, parseErr := uuid.Parse(idOrCode); parseErr == nil {
		team, err = s.structureRepo.GetTeamByID(ctx, nil, id)
	} else if teamCodePattern.MatchString(idOrCode) {
		team, err = s.structureRepo.GetTeamByCode(ctx, nil, idOrCode)
	} else {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTeamID, idOrCode)
	}
	if err != nil {
		return nil, mapStructureError(err, idOrCode)
	}
	return team, nil
}

func (s *structureService) ListMatches(ctx context.Context, userID uuid.UUID, phaseCode, groupCode string) ([]*models.Match, error) {
	if phaseCode != "" {
		if _, err := s.structureRepo.GetPhaseByCode(ctx, nil, phaseCode); err != nil {
			return nil, mapStructureError(err, phaseCode)
		}
	}
	if groupCode != "" {
		if _, err := s.structureRepo.GetGroupByCode(ctx, nil, groupCode); err != nil {
			return nil, mapStructureError(err, groupCode)
		}
	}
	return s.matchRepo.List(ctx, nil, repositories.MatchFilter{
		UserID:    &userID,
		PhaseCode: phaseCode,
		GroupCode: groupCode,
	})
}

// mapStructureError converts repository lookups into service errors carrying the requested key.
func mapStructureError(err error, key string) error {
	switch {
	case errors.Is(err, repositories.ErrPhaseNotFound):
		return fmt.Errorf("%w: %s", ErrPhaseNotFound, key)
	case errors.Is(err, repositories.ErrGroupNotFound):
		return fmt.Errorf("%w: %s", ErrGroupNotFound, key)
	case errors.Is(err, repositories.ErrTeamNotFound):
		return fmt.Errorf("%w: %s", ErrTeamNotFound, key)
	case errors.Is(err, repositories.ErrMatchNotFound):
		return fmt.Errorf("%w: %s", ErrMatchNotFound, key)
	case errors.Is(err, repositories.ErrBetNotFound):
		return fmt.Errorf("%w: %s", ErrBetNotFound, key)
	case errors.Is(err, repositories.ErrUserNotFound):
		return fmt.Errorf("%w: %s", ErrUserNotFound, key)
	default:
		return err
	}
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/betting-pool/brackets"
	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/repositories"
	"github.com/Dosada05/betting-pool/utils"
	"github.com/google/uuid"
)

// groupRanker returns a user's standings for a group, rebuilding them from the
// user's score bets when any row was flagged stale.
type groupRanker struct {
	positionRepo repositories.GroupPositionRepository
	betRepo      repositories.BetRepository
}

func (g *groupRanker) rank(ctx context.Context, exec repositories.SQLExecutor, userID, groupID uuid.UUID) ([]*models.GroupPosition, error) {
	positions, err := g.positionRepo.ListByUserAndGroup(ctx, exec, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group positions: %w", err)
	}

	if !brackets.NeedsRecomputation(positions) {
		brackets.SortGroupRank(positions)
		return positions, nil
	}

	bets, err := g.betRepo.ListScoreBets(ctx, exec, repositories.MatchFilter{UserID: &userID, GroupID: &groupID})
	if err != nil {
		return nil, fmt.Errorf("failed to load score bets for group rank: %w", err)
	}

	matches := make([]brackets.ScoredMatch, 0, len(bets))
	for _, bet := range bets {
		matches = append(matches, brackets.ScoredMatch{
			Team1ID: bet.Match.Team1ID,
			Team2ID: bet.Match.Team2ID,
			Score1:  bet.Score1,
			Score2:  bet.Score2,
		})
	}

	ranked := brackets.ComputeGroupRank(positions, matches)
	for _, p := range ranked {
		if err := g.positionRepo.Save(ctx, exec, p); err != nil {
			return nil, fmt.Errorf("failed to save group position: %w", err)
		}
	}
	return ranked, nil
}

// phaseRanks ranks every group of a phase, keyed by group code.
func (g *groupRanker) phaseRanks(ctx context.Context, exec repositories.SQLExecutor, userID uuid.UUID, groups []*models.Group) (brackets.GroupRanks, error) {
	ranks := make(brackets.GroupRanks, len(groups))
	for _, group := range groups {
		rank, err := g.rank(ctx, exec, userID, group.ID)
		if err != nil {
			return nil, err
		}
		ranks[group.Code] = rank
	}
	return ranks, nil
}

// progression fills the knockout matches of one user from their group standings.
type progression struct {
	rule          *models.RuleComputeFinalePhaseFromGroupRank
	structureRepo repositories.StructureRepository
	matchRepo     repositories.MatchRepository
	ranker        *groupRanker
}

func (p *progression) configured() bool {
	return p != nil && p.rule != nil
}

func (p *progression) run(ctx context.Context, exec repositories.SQLExecutor, userID uuid.UUID) (int, error) {
	toGroup, err := p.structureRepo.GetGroupByCode(ctx, exec, p.rule.ToGroup)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrGroupNotFound, p.rule.ToGroup)
		}
		return 0, err
	}

	groups, err := p.structureRepo.ListGroupsByPhaseCode(ctx, exec, p.rule.FromPhase)
	if err != nil {
		return 0, fmt.Errorf("failed to load groups of phase %s: %w", p.rule.FromPhase, err)
	}

	ranks, err := p.ranker.phaseRanks(ctx, exec, userID, groups)
	if err != nil {
		return 0, err
	}

	assignments := brackets.ComputeFinalePhase(p.rule, ranks)

	// Все целевые матчи ищем до первой записи: правило применяется целиком или никак.
	targets := make([]*models.Match, len(assignments))
	for i, a := range assignments {
		match, err := p.matchRepo.GetByUserGroupIndex(ctx, exec, userID, toGroup.ID, a.MatchIndex)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return 0, fmt.Errorf("%w: index %d of group %s", ErrMatchNotFound, a.MatchIndex, toGroup.Code)
			}
			return 0, err
		}
		targets[i] = match
	}

	updated := 0
	for i, a := range assignments {
		match := targets[i]
		if utils.SameUUID(match.Team1ID, a.Team1ID) && utils.SameUUID(match.Team2ID, a.Team2ID) {
			continue
		}
		if err := p.matchRepo.UpdateTeams(ctx, exec, match.ID, a.Team1ID, a.Team2ID); err != nil {
			return 0, fmt.Errorf("failed to update teams of match %s: %w", match.ID, err)
		}
		updated++
	}
	return updated, nil
}

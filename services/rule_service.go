package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/repositories"
	"github.com/google/uuid"
)

// RuleService dispatches the configured tournament rules by their fixed identifiers.
type RuleService interface {
	Execute(ctx context.Context, user *models.User, ruleID uuid.UUID) error
	ComputeFinalePhase(ctx context.Context, user *models.User) (int, error)
}

type ruleService struct {
	txr         repositories.Transactor
	progression *progression
	results     ResultService
}

func NewRuleService(
	txr repositories.Transactor,
	structureRepo repositories.StructureRepository,
	matchRepo repositories.MatchRepository,
	betRepo repositories.BetRepository,
	positionRepo repositories.GroupPositionRepository,
	rules models.Rules,
	results ResultService,
) RuleService {
	return &ruleService{
		txr: txr,
		progression: &progression{
			rule:          rules.ComputeFinalePhaseFromGroupRank,
			structureRepo: structureRepo,
			matchRepo:     matchRepo,
			ranker:        &groupRanker{positionRepo: positionRepo, betRepo: betRepo},
		},
		results: results,
	}
}

func (s *ruleService) Execute(ctx context.Context, user *models.User, ruleID uuid.UUID) error {
	switch ruleID {
	case models.RuleIDComputeFinalePhaseFromGroupRank:
		if !s.progression.configured() {
			break
		}
		_, err := s.ComputeFinalePhase(ctx, user)
		return err
	case models.RuleIDComputePoints:
		// Доступно только администратору.
		_, err := s.results.ComputePoints(ctx, user)
		return err
	}
	return fmt.Errorf("%w: %s", ErrRuleNotFound, ruleID)
}

func (s *ruleService) ComputeFinalePhase(ctx context.Context, user *models.User) (int, error) {
	if !s.progression.configured() {
		return 0, fmt.Errorf("%w: %s", ErrRuleNotFound, models.RuleIDComputeFinalePhaseFromGroupRank)
	}

	var updated int
	err := s.txr.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		var err error
		updated, err = s.progression.run(ctx, exec, user.ID)
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.Info("finale phase computed",
		slog.String("user", user.Name),
		slog.String("to_group", s.progression.rule.ToGroup),
		slog.Int("matches", updated),
	)
	return updated, nil
}

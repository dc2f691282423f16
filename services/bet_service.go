package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type AllBets struct {
	Phases     []*models.Phase
	Groups     []*models.Group
	ScoreBets  []*models.ScoreBet
	BinaryBets []*models.BinaryBet
	Locked     bool
}

type PhaseBets struct {
	Phase      *models.Phase
	Groups     []*models.Group
	ScoreBets  []*models.ScoreBet
	BinaryBets []*models.BinaryBet
	Locked     bool
}

type GroupBets struct {
	Group      *models.Group
	ScoreBets  []*models.ScoreBet
	BinaryBets []*models.BinaryBet
	Locked     bool
}

type GroupRank struct {
	Group     *models.Group
	Positions []*models.GroupPosition
}

type BetService interface {
	IsLocked(user *models.User) bool

	GetAllBets(ctx context.Context, user *models.User) (*AllBets, error)
	GetBetsByPhase(ctx context.Context, user *models.User, phaseCode string) (*PhaseBets, error)
	GetBetsByGroup(ctx context.Context, user *models.User, groupCode string) (*GroupBets, error)
	GetGroupRank(ctx context.Context, user *models.User, groupCode string) (*GroupRank, error)

	CreateScoreBet(ctx context.Context, user *models.User, input ScoreBetInput) (*models.ScoreBet, error)
	GetScoreBet(ctx context.Context, user *models.User, id uuid.UUID) (*models.ScoreBet, error)
	ModifyScoreBet(ctx context.Context, user *models.User, id uuid.UUID, input ModifyScoreBetInput) (*models.ScoreBet, error)
	DeleteScoreBet(ctx context.Context, user *models.User, id uuid.UUID) (*models.ScoreBet, error)

	CreateBinaryBet(ctx context.Context, user *models.User, input BinaryBetInput) (*models.BinaryBet, error)
	GetBinaryBet(ctx context.Context, user *models.User, id uuid.UUID) (*models.BinaryBet, error)
	ModifyBinaryBet(ctx context.Context, user *models.User, id uuid.UUID, input ModifyBinaryBetInput) (*models.BinaryBet, error)
	DeleteBinaryBet(ctx context.Context, user *models.User, id uuid.UUID) (*models.BinaryBet, error)
}

type betService struct {
	txr           repositories.Transactor
	betRepo       repositories.BetRepository
	matchRepo     repositories.MatchRepository
	positionRepo  repositories.GroupPositionRepository
	structureRepo repositories.StructureRepository
	ranker        *groupRanker
	progression   *progression
	lock          time.Time
	now           Clock
}

func NewBetService(
	txr repositories.Transactor,
	betRepo repositories.BetRepository,
	matchRepo repositories.MatchRepository,
	positionRepo repositories.GroupPositionRepository,
	structureRepo repositories.StructureRepository,
	rules models.Rules,
	lock time.Time,
	now Clock,
) BetService {
	if now == nil {
		now = SystemClock
	}
	ranker := &groupRanker{positionRepo: positionRepo, betRepo: betRepo}
	return &betService{
		txr:           txr,
		betRepo:       betRepo,
		matchRepo:     matchRepo,
		positionRepo:  positionRepo,
		structureRepo: structureRepo,
		ranker:        ranker,
		progression: &progression{
			rule:          rules.ComputeFinalePhaseFromGroupRank,
			structureRepo: structureRepo,
			matchRepo:     matchRepo,
			ranker:        ranker,
		},
		lock: lock,
		now:  now,
	}
}

func (s *betService) IsLocked(user *models.User) bool {
	return IsLocked(user, s.now(), s.lock)
}

func (s *betService) GetAllBets(ctx context.Context, user *models.User) (*AllBets, error) {
	result := &AllBets{Locked: s.IsLocked(user)}
	filter := repositories.MatchFilter{UserID: &user.ID}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.Phases, err = s.structureRepo.ListPhases(gCtx, nil)
		return err
	})
	g.Go(func() (err error) {
		result.Groups, err = s.structureRepo.ListGroups(gCtx, nil)
		return err
	})
	g.Go(func() (err error) {
		result.ScoreBets, err = s.betRepo.ListScoreBets(gCtx, nil, filter)
		return err
	})
	g.Go(func() (err error) {
		result.BinaryBets, err = s.betRepo.ListBinaryBets(gCtx, nil, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load bets: %w", err)
	}
	return result, nil
}

func (s *betService) GetBetsByPhase(ctx context.Context, user *models.User, phaseCode string) (*PhaseBets, error) {
	phase, err := s.structureRepo.GetPhaseByCode(ctx, nil, phaseCode)
	if err != nil {
		return nil, mapStructureError(err, phaseCode)
	}

	result := &PhaseBets{Phase: phase, Locked: s.IsLocked(user)}
	filter := repositories.MatchFilter{UserID: &user.ID, PhaseCode: phaseCode}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.Groups, err = s.structureRepo.ListGroupsByPhaseCode(gCtx, nil, phaseCode)
		return err
	})
	g.Go(func() (err error) {
		result.ScoreBets, err = s.betRepo.ListScoreBets(gCtx, nil, filter)
		return err
	})
	g.Go(func() (err error) {
		result.BinaryBets, err = s.betRepo.ListBinaryBets(gCtx, nil, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load bets of phase %s: %w", phaseCode, err)
	}
	return result, nil
}

func (s *betService) GetBetsByGroup(ctx context.Context, user *models.User, groupCode string) (*GroupBets, error) {
	group, err := s.structureRepo.GetGroupByCode(ctx, nil, groupCode)
	if err != nil {
		return nil, mapStructureError(err, groupCode)
	}

	result := &GroupBets{Group: group, Locked: s.IsLocked(user)}
	filter := repositories.MatchFilter{UserID: &user.ID, GroupID: &group.ID}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.ScoreBets, err = s.betRepo.ListScoreBets(gCtx, nil, filter)
		return err
	})
	g.Go(func() (err error) {
		result.BinaryBets, err = s.betRepo.ListBinaryBets(gCtx, nil, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load bets of group %s: %w", groupCode, err)
	}
	return result, nil
}

func (s *betService) GetGroupRank(ctx context.Context, user *models.User, groupCode string) (*GroupRank, error) {
	group, err := s.structureRepo.GetGroupByCode(ctx, nil, groupCode)
	if err != nil {
		return nil, mapStructureError(err, groupCode)
	}

	var positions []*models.GroupPosition
	err = s.txr.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		positions, err = s.ranker.rank(ctx, exec, user.ID, group.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &GroupRank{Group: group, Positions: positions}, nil
}

func (s *betService) CreateScoreBet(ctx context.Context, user *models.User, input ScoreBetInput) (*models.ScoreBet, error) {
	if s.IsLocked(user) {
		return nil, ErrLockedBets
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var bet *models.ScoreBet
	err := s.txr.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		match := &models.Match{
			GroupID: input.Group.ID,
			Index:   input.Index,
			Team1ID: &input.Team1.ID,
			Team2ID: &input.Team2.ID,
			UserID:  user.ID,
		}
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return mapStructureError(err, "score bet match")
		}

		created := &models.ScoreBet{MatchID: match.ID, Score1: input.Team1.Score, Score2: input.Team2.Score}
		if err := s.betRepo.CreateScoreBet(ctx, exec, created); err != nil {
			return fmt.Errorf("failed to create score bet: %w", err)
		}

		if err := s.positionRepo.MarkForRecomputation(ctx, exec, user.ID, input.Team1.ID, input.Team2.ID); err != nil {
			return err
		}
		if err := s.progress(ctx, exec, user); err != nil {
			return err
		}

		var err error
		bet, err = s.betRepo.GetScoreBet(ctx, exec, user.ID, created.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bet, nil
}

func (s *betService) GetScoreBet(ctx context.Context, user *models.User, id uuid.UUID) (*models.ScoreBet, error) {
	bet, err := s.betRepo.GetScoreBet(ctx, nil, user.ID, id, false)
	if err != nil {
		return nil, mapStructureError(err, id.String())
	}
	return bet, nil
}

func (s *betService) ModifyScoreBet(ctx context.Context, user *models.User, id uuid.UUID, input ModifyScoreBetInput) (*models.ScoreBet, error) {
	if s.IsLocked(user) {
		return nil, ErrLockedBets
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var bet *models.ScoreBet
	err := s.txr.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		var err error
		bet, err = s.betRepo.GetScoreBet(ctx, exec, user.ID, id, true)
		if err != nil {
			return mapStructureError(err, id.String())
		}

		score1, score2 := bet.Score1, bet.Score2
		if input.Team1 != nil {
			score1 = input.Team1.Score
		}
		if input.Team2 != nil {
			score2 = input.Team2.Score
		}
		if sameScore(bet.Score1, score1) && sameScore(bet.Score2, score2) {
			return nil
		}

		slog.Info("modified score bet",
			slog.String("user", user.Name),
			slog.String("bet_id", bet.ID.String()),
			slog.String("from", formatScore(bet.Score1, bet.Score2)),
			slog.String("to", formatScore(score1, score2)),
		)

		bet.Score1, bet.Score2 = score1, score2
		if err := s.betRepo.UpdateScoreBet(ctx, exec, bet); err != nil {
			return err
		}
		if err := s.markMatchTeams(ctx, exec, user.ID, bet.Match); err != nil {
			return err
		}
		return s.progress(ctx, exec, user)
	})
	if err != nil {
		return nil, err
	}
	return bet, nil
}

func (s *betService) DeleteScoreBet(ctx context.Context, user *models.User, id uuid.UUID) (*models.ScoreBet, error) {
	if s.IsLocked(user) {
		return nil, ErrLockedBets
	}

	var bet *models.ScoreBet
	err := s.txr.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		var err error
		bet, err = s.betRepo.GetScoreBet(ctx, exec, user.ID, id, true)
		if err != nil {
			return mapStructureError(err, id.String())
		}
		if err := s.markMatchTeams(ctx, exec, user.ID, bet.Match); err != nil {
			return err
		}
		// Удаление матча каскадом удаляет и ставку.
		if err := s.matchRepo.Delete(ctx, exec, bet.MatchID); err != nil {
			return mapStructureError(err, bet.MatchID.String())
		}
		return s.progress(ctx, exec, user)
	})
	if err != nil {
		return nil, err
	}
	return bet, nil
}

func (s *betService) CreateBinaryBet(ctx context.Context, user *models.User, input BinaryBetInput) (*models.BinaryBet, error) {
	if s.IsLocked(user) {
		return nil, ErrLockedBets
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var bet *models.BinaryBet
	err := s.txr.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		match := &models.Match{
			GroupID: input.Group.ID,
			Index:   input.Index,
			Team1ID: &input.Team1.ID,
			Team2ID: &input.Team2.ID,
			UserID:  user.ID,
		}
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return mapStructureError(err, "binary bet match")
		}

		created := &models.BinaryBet{MatchID: match.ID, IsOneWon: input.IsOneWon}
		if err := s.betRepo.CreateBinaryBet(ctx, exec, created); err != nil {
			return fmt.Errorf("failed to create binary bet: %w", err)
		}

		var err error
		bet, err = s.betRepo.GetBinaryBet(ctx, exec, user.ID, created.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bet, nil
}

func (s *betService) GetBinaryBet(ctx context.Context, user *models.User, id uuid.UUID) (*models.BinaryBet, error) {
	bet, err := s.betRepo.GetBinaryBet(ctx, nil, user.ID, id, false)
	if err != nil {
		return nil, mapStructureError(err, id.String())
	}
	return bet, nil
}

func (s *betService) ModifyBinaryBet(ctx context.Context, user *models.User, id uuid.UUID, input ModifyBinaryBetInput) (*models.BinaryBet, error) {
	if s.IsLocked(user) {
		return nil, ErrLockedBets
	}

	var bet *models.BinaryBet
	err := s.txr.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		current, err := s.betRepo.GetBinaryBet(ctx, exec, user.ID, id, true)
		if err != nil {
			return mapStructureError(err, id.String())
		}

		if input.IsOneWon.Set {
			slog.Info("modified binary bet",
				slog.String("user", user.Name),
				slog.String("bet_id", current.ID.String()),
				slog.Any("from", current.IsOneWon),
				slog.Any("to", input.IsOneWon.Value),
			)
			current.IsOneWon = input.IsOneWon.Value
			if err := s.betRepo.UpdateBinaryBet(ctx, exec, current); err != nil {
				return err
			}
		}

		if input.Team1 != nil || input.Team2 != nil {
			team1, team2 := current.Match.Team1ID, current.Match.Team2ID
			if input.Team1 != nil {
				team1 = input.Team1.ID
			}
			if input.Team2 != nil {
				team2 = input.Team2.ID
			}
			if err := s.matchRepo.UpdateTeams(ctx, exec, current.MatchID, team1, team2); err != nil {
				return mapStructureError(err, current.MatchID.String())
			}
		}

		bet, err = s.betRepo.GetBinaryBet(ctx, exec, user.ID, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bet, nil
}

func (s *betService) DeleteBinaryBet(ctx context.Context, user *models.User, id uuid.UUID) (*models.BinaryBet, error) {
	if s.IsLocked(user) {
		return nil, ErrLockedBets
	}

	var bet *models.BinaryBet
	err := s.txr.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		var err error
		bet, err = s.betRepo.GetBinaryBet(ctx, exec, user.ID, id, true)
		if err != nil {
			return mapStructureError(err, id.String())
		}
		if err := s.matchRepo.Delete(ctx, exec, bet.MatchID); err != nil {
			return mapStructureError(err, bet.MatchID.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bet, nil
}

// progress re-runs the knockout progression after a score bet change. Missing
// knockout groups or matches only mean the bracket is not seeded for this user.
func (s *betService) progress(ctx context.Context, exec repositories.SQLExecutor, user *models.User) error {
	if !s.progression.configured() {
		return nil
	}
	_, err := s.progression.run(ctx, exec, user.ID)
	if errors.Is(err, ErrGroupNotFound) || errors.Is(err, ErrMatchNotFound) {
		slog.Warn("knockout progression skipped", slog.String("user", user.Name), slog.Any("error", err))
		return nil
	}
	return err
}

func (s *betService) markMatchTeams(ctx context.Context, exec repositories.SQLExecutor, userID uuid.UUID, match *models.Match) error {
	teams := make([]uuid.UUID, 0, 2)
	if match.Team1ID != nil {
		teams = append(teams, *match.Team1ID)
	}
	if match.Team2ID != nil {
		teams = append(teams, *match.Team2ID)
	}
	return s.positionRepo.MarkForRecomputation(ctx, exec, userID, teams...)
}

func sameScore(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatScore(score1, score2 *int) string {
	return fmt.Sprintf("%s-%s", scoreString(score1), scoreString(score2))
}

func scoreString(score *int) string {
	if score == nil {
		return "null"
	}
	return fmt.Sprint(*score)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/repositories"
	"github.com/Dosada05/betting-pool/scoring"
	"github.com/google/uuid"
)

// ScoreBoardCache keeps the last computed leaderboard. Implementations live in storage.
type ScoreBoardCache interface {
	Get(ctx context.Context) ([]models.UserResult, bool, error)
	Set(ctx context.Context, board []models.UserResult) error
	Invalidate(ctx context.Context) error
}

type ResultService interface {
	ComputePoints(ctx context.Context, caller *models.User) ([]models.UserResult, error)
	ScoreBoard(ctx context.Context) ([]models.UserResult, error)
	Results(ctx context.Context, user *models.User) (*models.UserResult, error)
}

type resultService struct {
	txr           repositories.Transactor
	userRepo      repositories.UserRepository
	betRepo       repositories.BetRepository
	structureRepo repositories.StructureRepository
	ranker        *groupRanker
	rule          *models.RuleComputePoints
	cache         ScoreBoardCache
}

func NewResultService(
	txr repositories.Transactor,
	userRepo repositories.UserRepository,
	betRepo repositories.BetRepository,
	structureRepo repositories.StructureRepository,
	positionRepo repositories.GroupPositionRepository,
	rules models.Rules,
	cache ScoreBoardCache,
) ResultService {
	return &resultService{
		txr:           txr,
		userRepo:      userRepo,
		betRepo:       betRepo,
		structureRepo: structureRepo,
		ranker:        &groupRanker{positionRepo: positionRepo, betRepo: betRepo},
		rule:          rules.ComputePoints,
		cache:         cache,
	}
}

// serializable is the isolation of the scoring pass, which must see one snapshot of every bet.
var serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

func (s *resultService) ComputePoints(ctx context.Context, caller *models.User) ([]models.UserResult, error) {
	if !caller.IsAdmin() {
		return nil, ErrUnauthorizedAccessToAdminAPI
	}
	if s.rule == nil {
		return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, models.RuleIDComputePoints)
	}

	var players []*models.User
	err := s.txr.WithinTx(ctx, serializable, func(exec repositories.SQLExecutor) error {
		input, err := s.scoringInput(ctx, exec)
		if err != nil {
			return err
		}
		if err := scoring.Compute(*s.rule, *input); err != nil {
			if errors.Is(err, scoring.ErrNoAdmin) {
				return ErrNoAdminUser
			}
			return err
		}
		for _, player := range input.Players {
			if err := s.userRepo.UpdateResults(ctx, exec, player); err != nil {
				return fmt.Errorf("failed to store results of %s: %w", player.Name, err)
			}
		}
		players = input.Players
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate score board cache", slog.Any("error", err))
	}

	board := rankPlayers(players)
	slog.Info("points computed", slog.Int("players", len(board)))
	return board, nil
}

func (s *resultService) scoringInput(ctx context.Context, exec repositories.SQLExecutor) (*scoring.Input, error) {
	admin, err := s.userRepo.GetByName(ctx, exec, models.AdminName)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrNoAdminUser
		}
		return nil, err
	}

	players, err := s.userRepo.ListPlayers(ctx, exec)
	if err != nil {
		return nil, err
	}

	scoreBets, err := s.betRepo.ListScoreBets(ctx, exec, repositories.MatchFilter{})
	if err != nil {
		return nil, err
	}
	binaryBets, err := s.betRepo.ListBinaryBets(ctx, exec, repositories.MatchFilter{})
	if err != nil {
		return nil, err
	}
	groups, err := s.structureRepo.ListGroupsByPhaseCode(ctx, exec, models.GroupPhaseCode)
	if err != nil {
		return nil, err
	}

	input := &scoring.Input{
		Admin:     admin,
		Players:   players,
		ScoreBets: make([]scoring.ScoreBet, 0, len(scoreBets)),
		Sheets:    make(map[uuid.UUID]scoring.Sheet, len(players)+1),
	}
	for _, bet := range scoreBets {
		input.ScoreBets = append(input.ScoreBets, scoring.ScoreBet{
			UserID: bet.Match.UserID,
			Match:  scoring.MatchKey{GroupID: bet.Match.GroupID, Index: bet.Match.Index},
			Bet:    bet,
		})
	}

	users := append([]*models.User{admin}, players...)
	for _, user := range users {
		sheet := scoring.Sheet{
			GroupRanks:    make(map[uuid.UUID][]*models.GroupPosition, len(groups)),
			KnockoutTeams: make(map[string][]uuid.UUID),
		}
		for _, group := range groups {
			rank, err := s.ranker.rank(ctx, exec, user.ID, group.ID)
			if err != nil {
				return nil, err
			}
			sheet.GroupRanks[group.ID] = rank
		}
		input.Sheets[user.ID] = sheet
	}

	for _, bet := range binaryBets {
		sheet, ok := input.Sheets[bet.Match.UserID]
		if !ok || bet.Match.Group == nil {
			continue
		}
		code := bet.Match.Group.Code
		if bet.Match.Team1ID != nil && bet.Match.Team2ID != nil {
			sheet.KnockoutTeams[code] = append(sheet.KnockoutTeams[code], *bet.Match.Team1ID, *bet.Match.Team2ID)
		}
		if code == scoring.FinalGroup {
			sheet.Winner = bet.WinnerID()
			input.Sheets[bet.Match.UserID] = sheet
		}
	}
	return input, nil
}

func (s *resultService) ScoreBoard(ctx context.Context) ([]models.UserResult, error) {
	if board, ok, err := s.cache.Get(ctx); err != nil {
		slog.Warn("score board cache unavailable", slog.Any("error", err))
	} else if ok {
		return board, nil
	}

	players, err := s.userRepo.ListPlayers(ctx, nil)
	if err != nil {
		return nil, err
	}
	board := rankPlayers(players)

	if err := s.cache.Set(ctx, board); err != nil {
		slog.Warn("failed to cache score board", slog.Any("error", err))
	}
	return board, nil
}

func (s *resultService) Results(ctx context.Context, user *models.User) (*models.UserResult, error) {
	if user.IsAdmin() {
		return nil, ErrNoResultsForAdminUser
	}

	// Без кэша: только что зарегистрированного игрока может не быть в сохранённой таблице.
	players, err := s.userRepo.ListPlayers(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, line := range rankPlayers(players) {
		if line.UserID == user.ID {
			result := line
			return &result, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUserNotFound, user.Name)
}

// rankPlayers orders by points, best first, and numbers the lines from 1.
func rankPlayers(players []*models.User) []models.UserResult {
	sorted := make([]*models.User, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Points > sorted[j].Points
	})

	board := make([]models.UserResult, 0, len(sorted))
	for i, player := range sorted {
		board = append(board, models.NewUserResult(player, i+1))
	}
	return board
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/officialresults"
	"github.com/Dosada05/betting-pool/repositories"
	"github.com/google/uuid"
)

type SyncReport struct {
	Matches    int
	ScoreBets  int
	BinaryBets int
}

// SyncService copies official results into the admin's bets.
type SyncService interface {
	Synchronize(ctx context.Context) (*SyncReport, error)
}

type syncService struct {
	txr           repositories.Transactor
	userRepo      repositories.UserRepository
	structureRepo repositories.StructureRepository
	matchRepo     repositories.MatchRepository
	betRepo       repositories.BetRepository
	positionRepo  repositories.GroupPositionRepository
	fetcher       officialresults.Fetcher
	url           string
}

func NewSyncService(
	txr repositories.Transactor,
	userRepo repositories.UserRepository,
	structureRepo repositories.StructureRepository,
	matchRepo repositories.MatchRepository,
	betRepo repositories.BetRepository,
	positionRepo repositories.GroupPositionRepository,
	fetcher officialresults.Fetcher,
	url string,
) SyncService {
	return &syncService{
		txr:           txr,
		userRepo:      userRepo,
		structureRepo: structureRepo,
		matchRepo:     matchRepo,
		betRepo:       betRepo,
		positionRepo:  positionRepo,
		fetcher:       fetcher,
		url:           url,
	}
}

type groupMatch struct {
	groupIndex int
	index      int
}

func (s *syncService) Synchronize(ctx context.Context) (*SyncReport, error) {
	if s.url == "" {
		return nil, errors.New("OFFICIAL_RESULTS_URL is not configured")
	}

	page, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, err
	}

	groups, err := s.structureRepo.ListGroups(ctx, nil)
	if err != nil {
		return nil, err
	}
	headings := make([]officialresults.GroupHeading, 0, len(groups))
	for _, g := range groups {
		headings = append(headings, officialresults.GroupHeading{Index: g.Index, DescriptionEN: g.DescriptionEN})
	}

	matches, err := officialresults.Extract(strings.NewReader(page), headings)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{Matches: len(matches)}
	err = s.txr.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		return s.apply(ctx, exec, matches, report)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("official results synchronized",
		slog.Int("matches", report.Matches),
		slog.Int("score_bets", report.ScoreBets),
		slog.Int("binary_bets", report.BinaryBets),
	)
	return report, nil
}

func (s *syncService) apply(ctx context.Context, exec repositories.SQLExecutor, matches []officialresults.Match, report *SyncReport) error {
	admin, err := s.userRepo.GetByName(ctx, exec, models.AdminName)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrNoAdminUser
		}
		return err
	}

	filter := repositories.MatchFilter{UserID: &admin.ID}
	scoreBets, err := s.betRepo.ListScoreBets(ctx, exec, filter)
	if err != nil {
		return err
	}
	binaryBets, err := s.betRepo.ListBinaryBets(ctx, exec, filter)
	if err != nil {
		return err
	}

	scoreByKey := make(map[groupMatch]*models.ScoreBet, len(scoreBets))
	for _, bet := range scoreBets {
		scoreByKey[groupMatch{bet.Match.Group.Index, bet.Match.Index}] = bet
	}
	binaryByKey := make(map[groupMatch]*models.BinaryBet, len(binaryBets))
	for _, bet := range binaryBets {
		binaryByKey[groupMatch{bet.Match.Group.Index, bet.Match.Index}] = bet
	}

	for _, m := range matches {
		key := groupMatch{m.GroupIndex, m.Index}

		if bet, ok := scoreByKey[key]; ok {
			bet.Score1, bet.Score2 = m.Team1.Score, m.Team2.Score
			if err := s.betRepo.UpdateScoreBet(ctx, exec, bet); err != nil {
				return err
			}
			teams := make([]uuid.UUID, 0, 2)
			for _, id := range []*uuid.UUID{bet.Match.Team1ID, bet.Match.Team2ID} {
				if id != nil {
					teams = append(teams, *id)
				}
			}
			if err := s.positionRepo.MarkForRecomputation(ctx, exec, admin.ID, teams...); err != nil {
				return err
			}
			report.ScoreBets++
		}

		if bet, ok := binaryByKey[key]; ok {
			applied, err := s.applyBinary(ctx, exec, bet, m)
			if err != nil {
				return err
			}
			if applied {
				report.BinaryBets++
			}
		}
	}
	return nil
}

// applyBinary sets the knockout teams and the winner. Matches whose teams are unknown are skipped.
func (s *syncService) applyBinary(ctx context.Context, exec repositories.SQLExecutor, bet *models.BinaryBet, m officialresults.Match) (bool, error) {
	team1, err := s.structureRepo.GetTeamByDescriptionEN(ctx, exec, m.Team1.Description)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return false, nil
		}
		return false, err
	}
	team2, err := s.structureRepo.GetTeamByDescriptionEN(ctx, exec, m.Team2.Description)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.matchRepo.UpdateTeams(ctx, exec, bet.MatchID, &team1.ID, &team2.ID); err != nil {
		return false, fmt.Errorf("failed to set teams of match %s: %w", bet.MatchID, err)
	}

	switch {
	case m.Team1.Won != nil:
		won := *m.Team1.Won
		bet.IsOneWon = &won
	case m.Team1.Score != nil && m.Team2.Score != nil:
		won := *m.Team1.Score > *m.Team2.Score
		bet.IsOneWon = &won
	default:
		bet.IsOneWon = nil
	}
	if err := s.betRepo.UpdateBinaryBet(ctx, exec, bet); err != nil {
		return false, err
	}
	return true, nil
}

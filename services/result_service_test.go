package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/betting-pool/models"
	"github.com/google/uuid"
)

var testPointsRule = &models.RuleComputePoints{
	BaseCorrectResult:              1,
	MultiplyingFactorCorrectResult: 4,
	BaseCorrectScore:               3,
	MultiplyingFactorCorrectScore:  7,
	TeamQualified:                  10,
	FirstTeamQualified:             20,
}

func newResultServices(env *testEnv, rules models.Rules) (ResultService, RuleService, *memScoreBoardCache) {
	results := NewResultService(env.txr, env.users, env.bets, env.structure, env.positions, rules, env.cache)
	ruleSvc := NewRuleService(env.txr, env.structure, env.matches, env.bets, env.positions, rules, results)
	return results, ruleSvc, env.cache
}

func TestComputePoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")

	for user, score := range map[*models.User][2]int{admin: {2, 1}, alice: {2, 1}, bob: {0, 0}} {
		bet := env.scoreBet(t, user, 1)
		if _, err := env.betSvc.ModifyScoreBet(ctx, user, bet.ID, setScore(score[0], score[1])); err != nil {
			t.Fatalf("ModifyScoreBet(%s) error = %v", user.Name, err)
		}
	}

	results, _, cache := newResultServices(env, models.Rules{ComputePoints: testPointsRule})
	if err := cache.Set(ctx, []models.UserResult{{FullName: "stale"}}); err != nil {
		t.Fatalf("cache.Set() error = %v", err)
	}

	if _, err := results.ComputePoints(ctx, alice); !errors.Is(err, ErrUnauthorizedAccessToAdminAPI) {
		t.Fatalf("ComputePoints(player) error = %v, want ErrUnauthorizedAccessToAdminAPI", err)
	}

	board, err := results.ComputePoints(ctx, admin)
	if err != nil {
		t.Fatalf("ComputePoints() error = %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("ComputePoints() returned %d lines, want 2", len(board))
	}
	// 1 + 4 за исход и 3 + 7 за точный счёт: угадала только alice.
	if board[0].UserID != alice.ID || board[0].Rank != 1 || board[0].Points != 15 {
		t.Errorf("first line = %+v, want alice rank 1 with 15 points", board[0])
	}
	if board[0].NumberMatchGuess != 1 || board[0].NumberScoreGuess != 1 {
		t.Errorf("alice guesses = %d/%d, want 1/1", board[0].NumberMatchGuess, board[0].NumberScoreGuess)
	}
	if board[1].UserID != bob.ID || board[1].Rank != 2 || board[1].Points != 0 {
		t.Errorf("second line = %+v, want bob rank 2 with 0 points", board[1])
	}

	if _, ok, _ := cache.Get(ctx); ok {
		t.Errorf("score board cache still holds the stale board")
	}

	scoreBoard, err := results.ScoreBoard(ctx)
	if err != nil {
		t.Fatalf("ScoreBoard() error = %v", err)
	}
	if len(scoreBoard) != 2 || scoreBoard[0].Points != 15 {
		t.Errorf("ScoreBoard() = %+v, want alice first with 15 points", scoreBoard)
	}
	if cached, ok, _ := cache.Get(ctx); !ok || len(cached) != 2 {
		t.Errorf("ScoreBoard() did not fill the cache")
	}

	mine, err := results.Results(ctx, bob)
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}
	if mine.Rank != 2 {
		t.Errorf("Results(bob).Rank = %d, want 2", mine.Rank)
	}
	if _, err := results.Results(ctx, admin); !errors.Is(err, ErrNoResultsForAdminUser) {
		t.Errorf("Results(admin) error = %v, want ErrNoResultsForAdminUser", err)
	}
}

func TestComputePointsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t)
	alice := env.signup(t, "alice")
	for _, user := range []*models.User{admin, alice} {
		bet := env.scoreBet(t, user, 2)
		if _, err := env.betSvc.ModifyScoreBet(ctx, user, bet.ID, setScore(1, 0)); err != nil {
			t.Fatalf("ModifyScoreBet() error = %v", err)
		}
	}

	results, _, _ := newResultServices(env, models.Rules{ComputePoints: testPointsRule})
	first, err := results.ComputePoints(ctx, admin)
	if err != nil {
		t.Fatalf("ComputePoints() error = %v", err)
	}
	second, err := results.ComputePoints(ctx, admin)
	if err != nil {
		t.Fatalf("ComputePoints() error = %v", err)
	}
	if first[0].Points != second[0].Points || first[0].NumberMatchGuess != second[0].NumberMatchGuess {
		t.Errorf("second run = %+v, want %+v", second[0], first[0])
	}
}

func TestComputePointsWithoutAdmin(t *testing.T) {
	env := newTestEnv(t)
	results, _, _ := newResultServices(env, models.Rules{ComputePoints: testPointsRule})

	caller := &models.User{ID: uuid.New(), Name: models.AdminName}
	if _, err := results.ComputePoints(context.Background(), caller); !errors.Is(err, ErrNoAdminUser) {
		t.Errorf("ComputePoints() error = %v, want ErrNoAdminUser", err)
	}
}

func TestRuleServiceExecute(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	alice := env.signup(t, "alice")

	tests := []struct {
		name    string
		rules   models.Rules
		user    *models.User
		ruleID  uuid.UUID
		wantErr error
	}{
		{name: "unknown rule", user: admin, ruleID: uuid.New(), wantErr: ErrRuleNotFound},
		{name: "finale not configured", user: admin, ruleID: models.RuleIDComputeFinalePhaseFromGroupRank, wantErr: ErrRuleNotFound},
		{name: "points not configured", user: admin, ruleID: models.RuleIDComputePoints, wantErr: ErrRuleNotFound},
		{
			name:    "points by a player",
			rules:   models.Rules{ComputePoints: testPointsRule},
			user:    alice,
			ruleID:  models.RuleIDComputePoints,
			wantErr: ErrUnauthorizedAccessToAdminAPI,
		},
		{
			name:   "points by the admin",
			rules:  models.Rules{ComputePoints: testPointsRule},
			user:   admin,
			ruleID: models.RuleIDComputePoints,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ruleSvc, _ := newResultServices(env, tt.rules)
			if err := ruleSvc.Execute(context.Background(), tt.user, tt.ruleID); !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestScoreBoardShowsNewPlayers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "alice")
	results, _, cache := newResultServices(env, models.Rules{ComputePoints: testPointsRule})

	board, err := results.ScoreBoard(ctx)
	if err != nil {
		t.Fatalf("ScoreBoard() error = %v", err)
	}
	if len(board) != 1 {
		t.Fatalf("ScoreBoard() = %d lines, want 1", len(board))
	}
	if _, ok, _ := cache.Get(ctx); !ok {
		t.Fatal("ScoreBoard() did not fill the cache")
	}

	bob := env.signup(t, "bob")
	if _, ok, _ := cache.Get(ctx); ok {
		t.Error("signup left the cached score board in place")
	}

	board, err = results.ScoreBoard(ctx)
	if err != nil {
		t.Fatalf("ScoreBoard() error = %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("ScoreBoard() = %d lines, want 2", len(board))
	}
	found := false
	for _, line := range board {
		if line.UserID == bob.ID {
			found = true
			if line.Points != 0 {
				t.Errorf("bob points = %v, want 0", line.Points)
			}
		}
	}
	if !found {
		t.Errorf("ScoreBoard() = %+v, bob is missing", board)
	}
}

// Package scoring awards points to every player by comparing their bets with the admin's.
package scoring

import (
	"errors"

	"github.com/Dosada05/betting-pool/brackets"
	"github.com/Dosada05/betting-pool/models"
	"github.com/google/uuid"
)

var ErrNoAdmin = errors.New("admin user is required to compute points")

// Knockout group codes, named after the number of teams left.
const (
	QuarterFinalGroup = "4"
	SemiFinalGroup    = "2"
	FinalGroup        = "1"
)

// MatchKey identifies the same match across users.
type MatchKey struct {
	GroupID uuid.UUID
	Index   int
}

type ScoreBet struct {
	UserID uuid.UUID
	Match  MatchKey
	Bet    *models.ScoreBet
}

// Sheet gathers what one user predicted beyond single match scores.
type Sheet struct {
	// GroupRanks holds the sorted standings of every group-stage group, keyed by group id.
	GroupRanks map[uuid.UUID][]*models.GroupPosition
	// KnockoutTeams lists the teams placed in each knockout group, keyed by group code.
	KnockoutTeams map[string][]uuid.UUID
	Winner        *uuid.UUID
}

type Input struct {
	Admin     *models.User
	Players   []*models.User
	ScoreBets []ScoreBet
	Sheets    map[uuid.UUID]Sheet
}

type matchTally struct {
	correctResult map[uuid.UUID]bool
	correctScore  map[uuid.UUID]bool
}

// Compute rewrites the counters and points of every player in place.
// Running it twice on the same input yields the same values.
func Compute(rule models.RuleComputePoints, in Input) error {
	if in.Admin == nil {
		return ErrNoAdmin
	}

	tallies := tallyScoreBets(in)
	n := len(in.Players)
	adminSheet := in.Sheets[in.Admin.ID]
	bonuses := rule.Bonuses()

	for _, player := range in.Players {
		player.ResetResults()

		for _, tally := range tallies {
			if tally.correctResult[player.ID] {
				player.NumberMatchGuess++
				player.Points += float64(rule.BaseCorrectResult) +
					float64(rule.MultiplyingFactorCorrectResult)*density(n, len(tally.correctResult))
			}
			if tally.correctScore[player.ID] {
				player.NumberScoreGuess++
				player.Points += float64(rule.BaseCorrectScore) +
					float64(rule.MultiplyingFactorCorrectScore)*density(n, len(tally.correctScore))
			}
		}

		sheet := in.Sheets[player.ID]
		player.NumberQualifiedTeamsGuess, player.NumberFirstQualifiedGuess = qualificationGuesses(adminSheet, sheet)
		player.Points += float64(player.NumberQualifiedTeamsGuess * rule.TeamQualified)
		player.Points += float64(player.NumberFirstQualifiedGuess * rule.FirstTeamQualified)

		player.NumberQuarterFinalGuess = intersection(sheet.KnockoutTeams[QuarterFinalGroup], adminSheet.KnockoutTeams[QuarterFinalGroup])
		player.NumberSemiFinalGuess = intersection(sheet.KnockoutTeams[SemiFinalGroup], adminSheet.KnockoutTeams[SemiFinalGroup])
		player.NumberFinalGuess = intersection(sheet.KnockoutTeams[FinalGroup], adminSheet.KnockoutTeams[FinalGroup])
		if sheet.Winner != nil && adminSheet.Winner != nil && *sheet.Winner == *adminSheet.Winner {
			player.NumberWinnerGuess = 1
		}

		player.Points += float64(bonuses.QuarterFinal * player.NumberQuarterFinalGuess)
		player.Points += float64(bonuses.SemiFinal * player.NumberSemiFinalGuess)
		player.Points += float64(bonuses.Final * player.NumberFinalGuess)
		player.Points += float64(bonuses.Winner * player.NumberWinnerGuess)
	}
	return nil
}

// density is the share of players who missed, scaled to [0, 1].
// With a single player there is nobody to compare with and the term vanishes.
func density(players, correct int) float64 {
	if players <= 1 {
		return 0
	}
	return float64(players-correct) / float64(players-1)
}

func tallyScoreBets(in Input) []matchTally {
	references := make(map[MatchKey]*models.ScoreBet)
	order := make([]MatchKey, 0)
	for _, sb := range in.ScoreBets {
		if sb.UserID == in.Admin.ID {
			if _, seen := references[sb.Match]; !seen {
				order = append(order, sb.Match)
			}
			references[sb.Match] = sb.Bet
		}
	}

	players := make(map[uuid.UUID]bool, len(in.Players))
	for _, p := range in.Players {
		players[p.ID] = true
	}

	byMatch := make(map[MatchKey]*matchTally, len(references))
	for _, key := range order {
		byMatch[key] = &matchTally{correctResult: map[uuid.UUID]bool{}, correctScore: map[uuid.UUID]bool{}}
	}
	for _, sb := range in.ScoreBets {
		if !players[sb.UserID] {
			continue
		}
		reference, ok := references[sb.Match]
		if !ok {
			continue
		}
		if sb.Bet.IsSameResult(reference) {
			byMatch[sb.Match].correctResult[sb.UserID] = true
			if sb.Bet.IsSameScore(reference) {
				byMatch[sb.Match].correctScore[sb.UserID] = true
			}
		}
	}

	tallies := make([]matchTally, 0, len(order))
	for _, key := range order {
		tallies = append(tallies, *byMatch[key])
	}
	return tallies
}

// qualificationGuesses counts, over groups both users completed, how many of the
// admin's top two teams the player also placed in the top two, and how many winners match.
func qualificationGuesses(admin, player Sheet) (qualified, first int) {
	for groupID, adminRank := range admin.GroupRanks {
		if len(adminRank) < 2 || !brackets.AllPlayed(adminRank) {
			continue
		}
		playerRank := player.GroupRanks[groupID]
		if len(playerRank) < 2 || !brackets.AllPlayed(playerRank) {
			continue
		}

		adminTop := []uuid.UUID{adminRank[0].TeamID, adminRank[1].TeamID}
		playerTop := []uuid.UUID{playerRank[0].TeamID, playerRank[1].TeamID}
		qualified += intersection(playerTop, adminTop)
		if playerRank[0].TeamID == adminRank[0].TeamID {
			first++
		}
	}
	return qualified, first
}

func intersection(a, b []uuid.UUID) int {
	set := make(map[uuid.UUID]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(a))
	count := 0
	for _, id := range a {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := set[id]; ok {
			count++
		}
	}
	return count
}

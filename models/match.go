package models

import "github.com/google/uuid"

type Match struct {
	ID      uuid.UUID  `json:"id"`
	GroupID uuid.UUID  `json:"group_id"`
	Index   int        `json:"index"`
	Team1ID *uuid.UUID `json:"team1_id,omitempty"`
	Team2ID *uuid.UUID `json:"team2_id,omitempty"`
	UserID  uuid.UUID  `json:"user_id"`

	Group *Group `json:"group,omitempty"`
	Team1 *Team  `json:"team1,omitempty"`
	Team2 *Team  `json:"team2,omitempty"`
}

type ScoreBet struct {
	ID      uuid.UUID `json:"id"`
	MatchID uuid.UUID `json:"match_id"`
	Score1  *int      `json:"score1"`
	Score2  *int      `json:"score2"`

	Match *Match `json:"match,omitempty"`
}

// IsSameResult reports whether both bets predict the same outcome. A missing score never matches.
func (b *ScoreBet) IsSameResult(other *ScoreBet) bool {
	if b.Score1 == nil || b.Score2 == nil || other.Score1 == nil || other.Score2 == nil {
		return false
	}
	return sign(*b.Score1-*b.Score2) == sign(*other.Score1-*other.Score2)
}

func (b *ScoreBet) IsSameScore(other *ScoreBet) bool {
	if b.Score1 == nil || b.Score2 == nil || other.Score1 == nil || other.Score2 == nil {
		return false
	}
	return *b.Score1 == *other.Score1 && *b.Score2 == *other.Score2
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

type BinaryBet struct {
	ID       uuid.UUID `json:"id"`
	MatchID  uuid.UUID `json:"match_id"`
	IsOneWon *bool     `json:"is_one_won"`

	Match *Match `json:"match,omitempty"`
}

// Won splits is_one_won into the per-team view. Both are nil while the bet is undecided.
func (b *BinaryBet) Won() (team1, team2 *bool) {
	if b.IsOneWon == nil {
		return nil, nil
	}
	one := *b.IsOneWon
	two := !one
	return &one, &two
}

// WinnerID returns the team the bet designates as winner, nil when undecided or when the slot is still empty.
func (b *BinaryBet) WinnerID() *uuid.UUID {
	if b.IsOneWon == nil || b.Match == nil {
		return nil
	}
	if *b.IsOneWon {
		return b.Match.Team1ID
	}
	return b.Match.Team2ID
}

package models

import "github.com/google/uuid"

// GroupPosition is one row of a user's predicted standings table for a group.
type GroupPosition struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	GroupID           uuid.UUID `json:"group_id"`
	TeamID            uuid.UUID `json:"team_id"`
	Won               int       `json:"won"`
	Drawn             int       `json:"drawn"`
	Lost              int       `json:"lost"`
	GoalsFor          int       `json:"goals_for"`
	GoalsAgainst      int       `json:"goals_against"`
	NeedRecomputation bool      `json:"-"`

	Team *Team `json:"team,omitempty"`
}

func (p *GroupPosition) Played() int {
	return p.Won + p.Drawn + p.Lost
}

func (p *GroupPosition) GoalsDifference() int {
	return p.GoalsFor - p.GoalsAgainst
}

func (p *GroupPosition) Points() int {
	return 3*p.Won + p.Drawn
}

func (p *GroupPosition) Reset() {
	p.Won = 0
	p.Drawn = 0
	p.Lost = 0
	p.GoalsFor = 0
	p.GoalsAgainst = 0
}

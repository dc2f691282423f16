package models

import "github.com/google/uuid"

// GroupPhaseCode is the code of the round-robin phase that feeds the knockout bracket.
const GroupPhaseCode = "GROUP"

type Phase struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	DescriptionFR string    `json:"description_fr"`
	DescriptionEN string    `json:"description_en"`
	Index         int       `json:"index"`
}

func (p *Phase) Description(lang Lang) string {
	return localized(lang, p.DescriptionFR, p.DescriptionEN)
}

type Group struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	DescriptionFR string    `json:"description_fr"`
	DescriptionEN string    `json:"description_en"`
	Index         int       `json:"index"`
	PhaseID       uuid.UUID `json:"phase_id"`

	Phase *Phase `json:"phase,omitempty"`
}

func (g *Group) Description(lang Lang) string {
	return localized(lang, g.DescriptionFR, g.DescriptionEN)
}

type BetKind string

const (
	BetKindScore  BetKind = "SCORE"
	BetKindBinary BetKind = "BINARY"
)

func (k BetKind) IsValid() bool {
	return k == BetKindScore || k == BetKindBinary
}

// MatchReference is the template every user's Match is copied from at signup.
type MatchReference struct {
	ID      uuid.UUID  `json:"id"`
	GroupID uuid.UUID  `json:"group_id"`
	Index   int        `json:"index"`
	Team1ID *uuid.UUID `json:"team1_id,omitempty"`
	Team2ID *uuid.UUID `json:"team2_id,omitempty"`
	BetKind BetKind    `json:"bet_kind"`
}

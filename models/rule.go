package models

import "github.com/google/uuid"

var (
	RuleIDComputeFinalePhaseFromGroupRank = uuid.MustParse("492345de-8d4a-45b6-8b94-d219f2b0c3e9")
	RuleIDComputePoints                   = uuid.MustParse("62d46542-8cf1-4a3b-af77-a5086f10ac59")
)

const ThirdPlaceRank = 3

// RankRef points at a team by its final rank inside a source group.
// An empty Group with rank 3 is a slot filled from the best third-placed teams.
type RankRef struct {
	Rank  int    `yaml:"rank" json:"rank"`
	Group string `yaml:"group" json:"group"`
}

func (r RankRef) IsThirdPlaceSlot() bool {
	return r.Group == "" && r.Rank == ThirdPlaceRank
}

type Versus struct {
	Team1 RankRef `yaml:"team1" json:"team1"`
	Team2 RankRef `yaml:"team2" json:"team2"`
}

type RuleComputeFinalePhaseFromGroupRank struct {
	ToGroup           string              `yaml:"to_group" json:"to_group"`
	FromPhase         string              `yaml:"from_phase" json:"from_phase"`
	Versus            []Versus            `yaml:"versus" json:"versus"`
	ThirdPlaceLookup  map[string][]string `yaml:"third_place_lookup,omitempty" json:"third_place_lookup,omitempty"`
	ThirdPlaceMatchup []int               `yaml:"third_place_matchup,omitempty" json:"third_place_matchup,omitempty"`
}

// UsesThirdPlaceTable is true only when both the lookup and the matchup are configured.
func (r *RuleComputeFinalePhaseFromGroupRank) UsesThirdPlaceTable() bool {
	return r.ThirdPlaceLookup != nil && r.ThirdPlaceMatchup != nil
}

type KnockoutBonuses struct {
	QuarterFinal int `yaml:"quarter_final" json:"quarter_final"`
	SemiFinal    int `yaml:"semi_final" json:"semi_final"`
	Final        int `yaml:"final" json:"final"`
	Winner       int `yaml:"winner" json:"winner"`
}

var DefaultKnockoutBonuses = KnockoutBonuses{
	QuarterFinal: 30,
	SemiFinal:    60,
	Final:        120,
	Winner:       200,
}

type RuleComputePoints struct {
	BaseCorrectResult              int `yaml:"base_correct_result" json:"base_correct_result"`
	MultiplyingFactorCorrectResult int `yaml:"multiplying_factor_correct_result" json:"multiplying_factor_correct_result"`
	BaseCorrectScore               int `yaml:"base_correct_score" json:"base_correct_score"`
	MultiplyingFactorCorrectScore  int `yaml:"multiplying_factor_correct_score" json:"multiplying_factor_correct_score"`
	TeamQualified                  int `yaml:"team_qualified" json:"team_qualified"`
	FirstTeamQualified             int `yaml:"first_team_qualified" json:"first_team_qualified"`

	KnockoutBonuses *KnockoutBonuses `yaml:"knockout_bonuses,omitempty" json:"knockout_bonuses,omitempty"`
}

func (r RuleComputePoints) Bonuses() KnockoutBonuses {
	if r.KnockoutBonuses == nil {
		return DefaultKnockoutBonuses
	}
	return *r.KnockoutBonuses
}

// Rules is the tournament rule set loaded at startup. A nil entry means the rule is not configured.
type Rules struct {
	ComputeFinalePhaseFromGroupRank *RuleComputeFinalePhaseFromGroupRank `yaml:"compute_finale_phase_from_group_rank,omitempty"`
	ComputePoints                   *RuleComputePoints                   `yaml:"compute_points,omitempty"`
}

package handlers

import (
	"github.com/Dosada05/betting-pool/models"
	"github.com/google/uuid"
)

// Ответы API. Описания выбираются по языку запроса.

type idOut struct {
	ID uuid.UUID `json:"id"`
}

type flagOut struct {
	URL string `json:"url"`
}

type teamOut struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Flag        flagOut   `json:"flag"`
}

type teamWithScoreOut struct {
	teamOut
	Score *int `json:"score"`
}

type teamWithWonOut struct {
	teamOut
	Won *bool `json:"won"`
}

type phaseOut struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
}

type groupOut struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
}

type groupWithPhaseOut struct {
	groupOut
	Phase idOut `json:"phase"`
}

type scoreBetOut struct {
	ID      uuid.UUID         `json:"id"`
	Index   int               `json:"index"`
	Locked  bool              `json:"locked"`
	MatchID uuid.UUID         `json:"match_id"`
	Group   *idOut            `json:"group,omitempty"`
	Team1   *teamWithScoreOut `json:"team1"`
	Team2   *teamWithScoreOut `json:"team2"`
}

type binaryBetOut struct {
	ID      uuid.UUID       `json:"id"`
	Index   int             `json:"index"`
	Locked  bool            `json:"locked"`
	MatchID uuid.UUID       `json:"match_id"`
	Group   *idOut          `json:"group,omitempty"`
	Team1   *teamWithWonOut `json:"team1"`
	Team2   *teamWithWonOut `json:"team2"`
}

type groupPositionOut struct {
	Team            teamOut `json:"team"`
	Played          int     `json:"played"`
	Won             int     `json:"won"`
	Drawn           int     `json:"drawn"`
	Lost            int     `json:"lost"`
	GoalsFor        int     `json:"goals_for"`
	GoalsAgainst    int     `json:"goals_against"`
	GoalsDifference int     `json:"goals_difference"`
	Points          int     `json:"points"`
}

type matchOut struct {
	ID    uuid.UUID `json:"id"`
	Index int       `json:"index"`
	Group idOut     `json:"group"`
	Team1 *teamOut  `json:"team1"`
	Team2 *teamOut  `json:"team2"`
}

type userOut struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type authOut struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Token string    `json:"token"`
}

func newTeamOut(team *models.Team, lang models.Lang) teamOut {
	return teamOut{
		ID:          team.ID,
		Code:        team.Code,
		Description: team.Description(lang),
		Flag:        flagOut{URL: team.FlagURL},
	}
}

func newTeamsOut(teams []*models.Team, lang models.Lang) []teamOut {
	out := make([]teamOut, 0, len(teams))
	for _, t := range teams {
		out = append(out, newTeamOut(t, lang))
	}
	return out
}

func newPhaseOut(phase *models.Phase, lang models.Lang) phaseOut {
	return phaseOut{ID: phase.ID, Code: phase.Code, Description: phase.Description(lang)}
}

func newPhasesOut(phases []*models.Phase, lang models.Lang) []phaseOut {
	out := make([]phaseOut, 0, len(phases))
	for _, p := range phases {
		out = append(out, newPhaseOut(p, lang))
	}
	return out
}

func newGroupOut(group *models.Group, lang models.Lang) groupOut {
	return groupOut{ID: group.ID, Code: group.Code, Description: group.Description(lang)}
}

func newGroupsOut(groups []*models.Group, lang models.Lang) []groupOut {
	out := make([]groupOut, 0, len(groups))
	for _, g := range groups {
		out = append(out, newGroupOut(g, lang))
	}
	return out
}

func newGroupsWithPhaseOut(groups []*models.Group, lang models.Lang) []groupWithPhaseOut {
	out := make([]groupWithPhaseOut, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupWithPhaseOut{groupOut: newGroupOut(g, lang), Phase: idOut{ID: g.PhaseID}})
	}
	return out
}

// newScoreBetOut maps a bet with its joined match. withGroup adds the group reference for listings spanning several groups.
func newScoreBetOut(bet *models.ScoreBet, locked, withGroup bool, lang models.Lang) scoreBetOut {
	out := scoreBetOut{ID: bet.ID, Locked: locked, MatchID: bet.MatchID}
	if m := bet.Match; m != nil {
		out.Index = m.Index
		if withGroup {
			out.Group = &idOut{ID: m.GroupID}
		}
		if m.Team1 != nil {
			out.Team1 = &teamWithScoreOut{teamOut: newTeamOut(m.Team1, lang), Score: bet.Score1}
		}
		if m.Team2 != nil {
			out.Team2 = &teamWithScoreOut{teamOut: newTeamOut(m.Team2, lang), Score: bet.Score2}
		}
	}
	return out
}

func newScoreBetsOut(bets []*models.ScoreBet, locked, withGroup bool, lang models.Lang) []scoreBetOut {
	out := make([]scoreBetOut, 0, len(bets))
	for _, b := range bets {
		out = append(out, newScoreBetOut(b, locked, withGroup, lang))
	}
	return out
}

func newBinaryBetOut(bet *models.BinaryBet, locked, withGroup bool, lang models.Lang) binaryBetOut {
	out := binaryBetOut{ID: bet.ID, Locked: locked, MatchID: bet.MatchID}
	won1, won2 := bet.Won()
	if m := bet.Match; m != nil {
		out.Index = m.Index
		if withGroup {
			out.Group = &idOut{ID: m.GroupID}
		}
		if m.Team1 != nil {
			out.Team1 = &teamWithWonOut{teamOut: newTeamOut(m.Team1, lang), Won: won1}
		}
		if m.Team2 != nil {
			out.Team2 = &teamWithWonOut{teamOut: newTeamOut(m.Team2, lang), Won: won2}
		}
	}
	return out
}

func newBinaryBetsOut(bets []*models.BinaryBet, locked, withGroup bool, lang models.Lang) []binaryBetOut {
	out := make([]binaryBetOut, 0, len(bets))
	for _, b := range bets {
		out = append(out, newBinaryBetOut(b, locked, withGroup, lang))
	}
	return out
}

func newGroupRankOut(positions []*models.GroupPosition, lang models.Lang) []groupPositionOut {
	out := make([]groupPositionOut, 0, len(positions))
	for _, p := range positions {
		row := groupPositionOut{
			Played:          p.Played(),
			Won:             p.Won,
			Drawn:           p.Drawn,
			Lost:            p.Lost,
			GoalsFor:        p.GoalsFor,
			GoalsAgainst:    p.GoalsAgainst,
			GoalsDifference: p.GoalsDifference(),
			Points:          p.Points(),
		}
		if p.Team != nil {
			row.Team = newTeamOut(p.Team, lang)
		} else {
			row.Team = teamOut{ID: p.TeamID}
		}
		out = append(out, row)
	}
	return out
}

func newMatchesOut(matches []*models.Match, lang models.Lang) []matchOut {
	out := make([]matchOut, 0, len(matches))
	for _, m := range matches {
		mo := matchOut{ID: m.ID, Index: m.Index, Group: idOut{ID: m.GroupID}}
		if m.Team1 != nil {
			t := newTeamOut(m.Team1, lang)
			mo.Team1 = &t
		}
		if m.Team2 != nil {
			t := newTeamOut(m.Team2, lang)
			mo.Team2 = &t
		}
		out = append(out, mo)
	}
	return out
}

// betContext returns the phase and group a bet's match belongs to.
func betContext(m *models.Match, lang models.Lang) (*phaseOut, *groupOut) {
	if m == nil || m.Group == nil {
		return nil, nil
	}
	group := newGroupOut(m.Group, lang)
	if m.Group.Phase == nil {
		return nil, &group
	}
	phase := newPhaseOut(m.Group.Phase, lang)
	return &phase, &group
}

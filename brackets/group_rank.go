package brackets

import (
	"sort"

	"github.com/Dosada05/betting-pool/models"
	"github.com/google/uuid"
)

// ComputeGroupRank rebuilds the standings of a group from scratch using the given
// score bets. Matches with a missing score or an undecided team are ignored.
// Every row has its recomputation flag cleared. The result is sorted.
func ComputeGroupRank(positions []*models.GroupPosition, matches []ScoredMatch) []*models.GroupPosition {
	byTeam := make(map[uuid.UUID]*models.GroupPosition, len(positions))
	for _, p := range positions {
		p.Reset()
		p.NeedRecomputation = false
		byTeam[p.TeamID] = p
	}

	for _, m := range matches {
		if m.Team1ID == nil || m.Team2ID == nil || m.Score1 == nil || m.Score2 == nil {
			continue
		}
		s1, s2 := *m.Score1, *m.Score2
		team1, team2 := byTeam[*m.Team1ID], byTeam[*m.Team2ID]

		if team1 != nil {
			team1.GoalsFor += s1
			team1.GoalsAgainst += s2
		}
		if team2 != nil {
			team2.GoalsFor += s2
			team2.GoalsAgainst += s1
		}

		switch {
		case s1 > s2:
			win(team1)
			lose(team2)
		case s1 < s2:
			lose(team1)
			win(team2)
		default:
			draw(team1)
			draw(team2)
		}
	}

	SortGroupRank(positions)
	return positions
}

func win(p *models.GroupPosition) {
	if p != nil {
		p.Won++
	}
}

func lose(p *models.GroupPosition) {
	if p != nil {
		p.Lost++
	}
}

func draw(p *models.GroupPosition) {
	if p != nil {
		p.Drawn++
	}
}

// SortGroupRank orders standings by points, goal difference then goals scored, all descending.
// Equal rows keep their relative order.
func SortGroupRank(positions []*models.GroupPosition) {
	sort.SliceStable(positions, func(i, j int) bool {
		return Better(positions[i], positions[j])
	})
}

// Better reports whether a ranks strictly above b.
func Better(a, b *models.GroupPosition) bool {
	if a.Points() != b.Points() {
		return a.Points() > b.Points()
	}
	if a.GoalsDifference() != b.GoalsDifference() {
		return a.GoalsDifference() > b.GoalsDifference()
	}
	return a.GoalsFor > b.GoalsFor
}

// AllPlayed reports whether every team of the group has played all of its matches.
// An empty group is never complete.
func AllPlayed(rank []*models.GroupPosition) bool {
	if len(rank) == 0 {
		return false
	}
	for _, p := range rank {
		if p.Played() != len(rank)-1 {
			return false
		}
	}
	return true
}

// NeedsRecomputation is true as soon as one row of the group is stale.
func NeedsRecomputation(rank []*models.GroupPosition) bool {
	for _, p := range rank {
		if p.NeedRecomputation {
			return true
		}
	}
	return false
}

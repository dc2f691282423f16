package brackets

import (
	"testing"

	"github.com/Dosada05/betting-pool/models"
	"github.com/google/uuid"
)

func intPtr(v int) *int { return &v }

func idPtr(id uuid.UUID) *uuid.UUID { return &id }

func TestComputeGroupRankTieBreak(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	names := map[uuid.UUID]string{a: "A", b: "B", c: "C", d: "D"}

	positions := []*models.GroupPosition{
		{TeamID: a, NeedRecomputation: true},
		{TeamID: b, NeedRecomputation: true},
		{TeamID: c},
		{TeamID: d, Won: 9, GoalsFor: 40},
	}
	bet := func(t1, t2 uuid.UUID, s1, s2 int) ScoredMatch {
		return ScoredMatch{Team1ID: idPtr(t1), Team2ID: idPtr(t2), Score1: intPtr(s1), Score2: intPtr(s2)}
	}
	matches := []ScoredMatch{
		bet(a, b, 1, 0),
		bet(a, c, 0, 0),
		bet(a, d, 3, 0),
		bet(b, c, 2, 2),
		bet(b, d, 0, 0),
		bet(c, d, 5, 0),
	}

	rank := ComputeGroupRank(positions, matches)

	want := []struct {
		team   string
		points int
		diff   int
		goals  int
	}{
		{"A", 7, 4, 4},
		{"C", 5, 5, 7},
		{"B", 2, -1, 2},
		{"D", 1, -8, 0},
	}
	if len(rank) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rank), len(want))
	}
	for i, w := range want {
		p := rank[i]
		if names[p.TeamID] != w.team {
			t.Errorf("position %d: got team %s, want %s", i+1, names[p.TeamID], w.team)
		}
		if p.Points() != w.points || p.GoalsDifference() != w.diff || p.GoalsFor != w.goals {
			t.Errorf("team %s: got (%d, %+d, %d), want (%d, %+d, %d)",
				w.team, p.Points(), p.GoalsDifference(), p.GoalsFor, w.points, w.diff, w.goals)
		}
		if p.NeedRecomputation {
			t.Errorf("team %s still flagged for recomputation", w.team)
		}
	}
	if !AllPlayed(rank) {
		t.Error("expected every team to have played all matches")
	}
}

func TestComputeGroupRankSkipsIncompleteBets(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	positions := []*models.GroupPosition{{TeamID: a}, {TeamID: b}}

	rank := ComputeGroupRank(positions, []ScoredMatch{
		{Team1ID: idPtr(a), Team2ID: idPtr(b), Score1: intPtr(2), Score2: nil},
		{Team1ID: idPtr(a), Team2ID: nil, Score1: intPtr(1), Score2: intPtr(0)},
	})

	for _, p := range rank {
		if p.Played() != 0 || p.GoalsFor != 0 || p.GoalsAgainst != 0 {
			t.Errorf("team %s: expected empty row, got %+v", p.TeamID, *p)
		}
	}
	if AllPlayed(rank) {
		t.Error("group without results must not be complete")
	}
}

func TestSortGroupRankOrdering(t *testing.T) {
	rows := []*models.GroupPosition{
		{TeamID: uuid.New(), Won: 1, GoalsFor: 1},
		{TeamID: uuid.New(), Won: 2, GoalsFor: 2, GoalsAgainst: 3},
		{TeamID: uuid.New(), Won: 2, GoalsFor: 5, GoalsAgainst: 2},
		{TeamID: uuid.New(), Won: 2, GoalsFor: 6, GoalsAgainst: 3},
		{TeamID: uuid.New(), Drawn: 3},
	}

	SortGroupRank(rows)

	for i := 1; i < len(rows); i++ {
		if Better(rows[i], rows[i-1]) {
			t.Errorf("row %d ranks above row %d", i, i-1)
		}
	}
	if rows[0].GoalsFor != 6 {
		t.Errorf("expected goals scored to break the tie, got %d first", rows[0].GoalsFor)
	}
}

func TestAllPlayed(t *testing.T) {
	tests := []struct {
		name string
		rank []*models.GroupPosition
		want bool
	}{
		{"empty", nil, false},
		{"complete pair", []*models.GroupPosition{{Won: 1}, {Lost: 1}}, true},
		{"one missing", []*models.GroupPosition{{Won: 2}, {Lost: 1, Drawn: 1}, {Drawn: 1}}, false},
		{"complete triple", []*models.GroupPosition{{Won: 2}, {Lost: 1, Drawn: 1}, {Drawn: 1, Lost: 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllPlayed(tt.rank); got != tt.want {
				t.Errorf("AllPlayed() = %v, want %v", got, tt.want)
			}
		})
	}
}

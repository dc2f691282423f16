package brackets

import (
	"errors"
	"testing"

	"github.com/Dosada05/betting-pool/models"
	"github.com/google/uuid"
)

// completeGroup builds a finished four-team group whose third place has the given record.
func completeGroup(thirdWon int) []*models.GroupPosition {
	return []*models.GroupPosition{
		{TeamID: uuid.New(), Won: 3},
		{TeamID: uuid.New(), Won: 2, Lost: 1, GoalsFor: 5},
		{TeamID: uuid.New(), Won: thirdWon, Lost: 3 - thirdWon},
		{TeamID: uuid.New(), Lost: 3},
	}
}

func twelveGroups() GroupRanks {
	groups := GroupRanks{}
	for _, code := range []string{"A", "B", "C", "D"} {
		groups[code] = completeGroup(1)
	}
	for _, code := range []string{"E", "F", "G", "H", "I", "J", "K", "L"} {
		groups[code] = completeGroup(2)
	}
	return groups
}

var scenarioLookup = map[string][]string{
	"EFGHIJKL": {"3E", "3J", "3I", "3F", "3H", "3G", "3L", "3K"},
}

var scenarioMatchup = []int{11, 15, 7, 1, 8, 2, 16, 12}

// roundOf32 has third-place slots on the matchup indexes and static winner/runner-up pairs elsewhere.
func roundOf32() *models.RuleComputeFinalePhaseFromGroupRank {
	dynamic := map[int]bool{}
	for _, idx := range scenarioMatchup {
		dynamic[idx] = true
	}
	letters := "ABCDEFGHIJKL"
	versus := make([]models.Versus, 16)
	for i := range versus {
		index := i + 1
		home := string(letters[i%len(letters)])
		away := string(letters[(i+1)%len(letters)])
		if dynamic[index] {
			versus[i] = models.Versus{
				Team1: models.RankRef{Rank: 1, Group: home},
				Team2: models.RankRef{Rank: 3},
			}
			continue
		}
		versus[i] = models.Versus{
			Team1: models.RankRef{Rank: 1, Group: home},
			Team2: models.RankRef{Rank: 2, Group: away},
		}
	}
	return &models.RuleComputeFinalePhaseFromGroupRank{
		ToGroup:           "16",
		FromPhase:         models.GroupPhaseCode,
		Versus:            versus,
		ThirdPlaceLookup:  scenarioLookup,
		ThirdPlaceMatchup: scenarioMatchup,
	}
}

func TestResolveThirdPlaceAssignment(t *testing.T) {
	got, err := ResolveThirdPlaceAssignment(twelveGroups(), scenarioLookup, scenarioMatchup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[int]string{1: "F", 2: "G", 7: "I", 8: "H", 11: "E", 12: "K", 15: "J", 16: "L"}
	if len(got) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(got), len(want), got)
	}
	for slot, group := range want {
		if got[slot] != group {
			t.Errorf("slot %d: got %q, want %q", slot, got[slot], group)
		}
	}
}

func TestComputeFinalePhaseThirdPlaceSlots(t *testing.T) {
	groups := twelveGroups()
	want := map[int]string{1: "F", 2: "G", 7: "I", 8: "H", 11: "E", 12: "K", 15: "J", 16: "L"}

	assignments := ComputeFinalePhase(roundOf32(), groups)
	if len(assignments) != 16 {
		t.Fatalf("got %d assignments, want 16", len(assignments))
	}

	for _, a := range assignments {
		group, isDynamic := want[a.MatchIndex]
		if !isDynamic {
			continue
		}
		third := groups[group][2].TeamID
		if a.Team2ID == nil || *a.Team2ID != third {
			t.Errorf("match %d: expected third place of group %s", a.MatchIndex, group)
		}
	}
}

func TestComputeFinalePhaseIncompleteGroup(t *testing.T) {
	groups := twelveGroups()
	groups["A"][3].Lost = 2 // played == 2

	rule := roundOf32()
	// every static entry is fed by the incomplete group
	for i, v := range rule.Versus {
		if !v.Team2.IsThirdPlaceSlot() {
			rule.Versus[i] = models.Versus{
				Team1: models.RankRef{Rank: 1, Group: "A"},
				Team2: models.RankRef{Rank: 2, Group: "B"},
			}
		}
	}

	assignments := ComputeFinalePhase(rule, groups)
	if len(assignments) != 0 {
		t.Fatalf("expected no slot to be written, got %d assignments", len(assignments))
	}

	got, err := ResolveThirdPlaceAssignment(groups, scenarioLookup, scenarioMatchup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty assignment while a group is incomplete, got %v", got)
	}
}

func TestComputeFinalePhaseStaticSlots(t *testing.T) {
	groups := GroupRanks{
		"A": completeGroup(1),
		"B": completeGroup(1),
		"C": {{TeamID: uuid.New(), Won: 1}, {TeamID: uuid.New()}},
	}
	rule := &models.RuleComputeFinalePhaseFromGroupRank{
		ToGroup:   "4",
		FromPhase: models.GroupPhaseCode,
		Versus: []models.Versus{
			{Team1: models.RankRef{Rank: 1, Group: "A"}, Team2: models.RankRef{Rank: 2, Group: "B"}},
			{Team1: models.RankRef{Rank: 1, Group: "B"}, Team2: models.RankRef{Rank: 2, Group: "C"}},
			{Team1: models.RankRef{Rank: 1, Group: "A"}, Team2: models.RankRef{Rank: 5, Group: "B"}},
		},
	}

	assignments := ComputeFinalePhase(rule, groups)
	if len(assignments) != 2 {
		t.Fatalf("got %d assignments, want 2", len(assignments))
	}

	first := assignments[0]
	if first.MatchIndex != 1 || *first.Team1ID != groups["A"][0].TeamID || *first.Team2ID != groups["B"][1].TeamID {
		t.Errorf("unexpected first assignment: %+v", first)
	}
	second := assignments[1]
	if second.MatchIndex != 3 {
		t.Errorf("expected match 2 to be skipped, got index %d", second.MatchIndex)
	}
	if second.Team2ID != nil {
		t.Errorf("rank outside the group must stay unresolved")
	}
}

func TestResolveThirdPlaceAssignmentUnknownKey(t *testing.T) {
	groups := twelveGroups()
	_, err := ResolveThirdPlaceAssignment(groups, map[string][]string{}, scenarioMatchup)
	if !errors.Is(err, ErrUnknownThirdPlaceCombination) {
		t.Fatalf("expected ErrUnknownThirdPlaceCombination, got %v", err)
	}

	assignments := ComputeFinalePhase(&models.RuleComputeFinalePhaseFromGroupRank{
		Versus: []models.Versus{
			{Team1: models.RankRef{Rank: 1, Group: "E"}, Team2: models.RankRef{Rank: 3}},
			{Team1: models.RankRef{Rank: 1, Group: "F"}, Team2: models.RankRef{Rank: 2, Group: "G"}},
		},
		ThirdPlaceLookup:  map[string][]string{},
		ThirdPlaceMatchup: scenarioMatchup,
	}, groups)
	if len(assignments) != 1 || assignments[0].MatchIndex != 2 {
		t.Errorf("expected only the static entry, got %+v", assignments)
	}
}

func TestQualifiedKeyAndEntries(t *testing.T) {
	if got := QualifiedKey([]string{"J", "E", "L", "F"}); got != "EFJL" {
		t.Errorf("QualifiedKey() = %q, want EFJL", got)
	}
	if g, err := ParseThirdPlaceEntry("3K"); err != nil || g != "K" {
		t.Errorf("ParseThirdPlaceEntry(3K) = %q, %v", g, err)
	}
	for _, bad := range []string{"", "3", "2A", "K"} {
		if _, err := ParseThirdPlaceEntry(bad); !errors.Is(err, ErrInvalidThirdPlaceEntry) {
			t.Errorf("ParseThirdPlaceEntry(%q): expected ErrInvalidThirdPlaceEntry, got %v", bad, err)
		}
	}
}

package brackets

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Dosada05/betting-pool/models"
)

// ComputeFinalePhase resolves the knockout matchups described by rule from the
// standings of the source phase. Entries whose source groups are not complete
// are left out of the result. Indexes in the result are 1-based, matching Match.Index.
func ComputeFinalePhase(rule *models.RuleComputeFinalePhaseFromGroupRank, groups GroupRanks) []Assignment {
	thirdPlace := map[int]string{}
	if rule.UsesThirdPlaceTable() {
		var err error
		thirdPlace, err = ResolveThirdPlaceAssignment(groups, rule.ThirdPlaceLookup, rule.ThirdPlaceMatchup)
		if err != nil {
			slog.Warn("third place slots left empty", slog.String("to_group", rule.ToGroup), slog.Any("error", err))
			thirdPlace = map[int]string{}
		}
	}

	assignments := make([]Assignment, 0, len(rule.Versus))
	for i, versus := range rule.Versus {
		index := i + 1
		group1, group2 := versus.Team1.Group, versus.Team2.Group

		dynamic1 := versus.Team1.IsThirdPlaceSlot()
		dynamic2 := versus.Team2.IsThirdPlaceSlot()

		if dynamic1 || dynamic2 {
			resolved, ok := thirdPlace[index]
			if !ok {
				continue
			}
			if dynamic1 {
				group1 = resolved
			}
			if dynamic2 {
				group2 = resolved
			}
		}

		if !AllPlayed(groups[group1]) || !AllPlayed(groups[group2]) {
			continue
		}

		assignments = append(assignments, Assignment{
			MatchIndex: index,
			Team1ID:    teamAt(groups[group1], versus.Team1.Rank),
			Team2ID:    teamAt(groups[group2], versus.Team2.Rank),
		})
	}
	return assignments
}

type thirdPlaced struct {
	group    string
	position *models.GroupPosition
}

// ResolveThirdPlaceAssignment picks the best third-placed teams and maps every
// knockout match index listed in matchup to the group its third-placed team comes from.
// The map is empty until every group of the phase is complete.
func ResolveThirdPlaceAssignment(groups GroupRanks, lookup map[string][]string, matchup []int) (map[int]string, error) {
	for _, rank := range groups {
		if !AllPlayed(rank) {
			return map[int]string{}, nil
		}
	}

	candidates := make([]thirdPlaced, 0, len(groups))
	for code, rank := range groups {
		if len(rank) >= models.ThirdPlaceRank {
			candidates = append(candidates, thirdPlaced{group: code, position: rank[models.ThirdPlaceRank-1]})
		}
	}
	// Map iteration order is random: settle exact ties by group code before ranking.
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].group < candidates[j].group })
	sort.SliceStable(candidates, func(i, j int) bool {
		return Better(candidates[i].position, candidates[j].position)
	})

	n := len(matchup)
	if n > len(candidates) {
		return nil, fmt.Errorf("%w: %d third places required, %d available", ErrUnknownThirdPlaceCombination, n, len(candidates))
	}

	qualified := make([]string, 0, n)
	for _, c := range candidates[:n] {
		qualified = append(qualified, c.group)
	}
	key := QualifiedKey(qualified)

	row, ok := lookup[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownThirdPlaceCombination, key)
	}
	if len(row) != n {
		return nil, fmt.Errorf("%w: row %s has %d entries, expected %d", ErrInvalidThirdPlaceEntry, key, len(row), n)
	}

	assignment := make(map[int]string, n)
	for i, entry := range row {
		group, err := ParseThirdPlaceEntry(entry)
		if err != nil {
			return nil, err
		}
		assignment[matchup[i]] = group
	}
	return assignment, nil
}

// QualifiedKey concatenates the group codes in lexicographic order.
func QualifiedKey(groups []string) string {
	sorted := append([]string(nil), groups...)
	sort.Strings(sorted)
	return strings.Join(sorted, "")
}

// ParseThirdPlaceEntry turns "3X" into "X".
func ParseThirdPlaceEntry(entry string) (string, error) {
	group, ok := strings.CutPrefix(entry, "3")
	if !ok || group == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidThirdPlaceEntry, entry)
	}
	return group, nil
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Dosada05/betting-pool/brackets"
	"github.com/Dosada05/betting-pool/models"
	"gopkg.in/yaml.v3"
)

var ErrInvalidRules = errors.New("invalid rules configuration")

// LoadRules reads the YAML rule set from path.
func LoadRules(path string) (*models.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (*models.Rules, error) {
	var rules models.Rules
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if err := ValidateRules(&rules); err != nil {
		return nil, err
	}
	return &rules, nil
}

func ValidateRules(rules *models.Rules) error {
	if finale := rules.ComputeFinalePhaseFromGroupRank; finale != nil {
		if finale.ToGroup == "" || finale.FromPhase == "" {
			return fmt.Errorf("%w: to_group and from_phase are required", ErrInvalidRules)
		}
		for i, v := range finale.Versus {
			for _, ref := range []models.RankRef{v.Team1, v.Team2} {
				if ref.Rank < 1 {
					return fmt.Errorf("%w: versus %d has rank %d", ErrInvalidRules, i+1, ref.Rank)
				}
				if ref.Group == "" && !ref.IsThirdPlaceSlot() {
					return fmt.Errorf("%w: versus %d uses an empty group with rank %d", ErrInvalidRules, i+1, ref.Rank)
				}
			}
		}
		if (finale.ThirdPlaceLookup == nil) != (finale.ThirdPlaceMatchup == nil) {
			return fmt.Errorf("%w: third_place_lookup and third_place_matchup go together", ErrInvalidRules)
		}
		for key, row := range finale.ThirdPlaceLookup {
			if len(row) != len(finale.ThirdPlaceMatchup) {
				return fmt.Errorf("%w: lookup %s has %d entries, matchup has %d",
					ErrInvalidRules, key, len(row), len(finale.ThirdPlaceMatchup))
			}
			for _, entry := range row {
				if _, err := brackets.ParseThirdPlaceEntry(entry); err != nil {
					return fmt.Errorf("%w: lookup %s: %v", ErrInvalidRules, key, err)
				}
			}
		}
	}
	return nil
}

var scoringEnv = []struct {
	name  string
	field func(*models.RuleComputePoints) *int
}{
	{"BASE_CORRECT_RESULT", func(r *models.RuleComputePoints) *int { return &r.BaseCorrectResult }},
	{"MULTIPLYING_FACTOR_CORRECT_RESULT", func(r *models.RuleComputePoints) *int { return &r.MultiplyingFactorCorrectResult }},
	{"BASE_CORRECT_SCORE", func(r *models.RuleComputePoints) *int { return &r.BaseCorrectScore }},
	{"MULTIPLYING_FACTOR_CORRECT_SCORE", func(r *models.RuleComputePoints) *int { return &r.MultiplyingFactorCorrectScore }},
	{"TEAM_QUALIFIED", func(r *models.RuleComputePoints) *int { return &r.TeamQualified }},
	{"FIRST_TEAM_QUALIFIED", func(r *models.RuleComputePoints) *int { return &r.FirstTeamQualified }},
}

// applyScoringOverrides lets the environment win over the rules file for scoring constants.
func applyScoringOverrides(rules *models.Rules) error {
	for _, env := range scoringEnv {
		raw := os.Getenv(env.name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s environment variable: %w", env.name, err)
		}
		if rules.ComputePoints == nil {
			rules.ComputePoints = &models.RuleComputePoints{}
		}
		*env.field(rules.ComputePoints) = value
	}
	return nil
}

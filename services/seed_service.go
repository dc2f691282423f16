package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/repositories"
	"github.com/google/uuid"
)

type SeedPhase struct {
	Code          string `json:"code"`
	DescriptionFR string `json:"description_fr"`
	DescriptionEN string `json:"description_en"`
	Index         int    `json:"index"`
}

type SeedGroup struct {
	Code          string `json:"code"`
	PhaseCode     string `json:"phase_code"`
	DescriptionFR string `json:"description_fr"`
	DescriptionEN string `json:"description_en"`
	Index         int    `json:"index"`
}

type SeedTeam struct {
	Code          string `json:"code"`
	DescriptionFR string `json:"description_fr"`
	DescriptionEN string `json:"description_en"`
	FlagURL       string `json:"flag_url"`
}

// SeedMatch references its group and teams by code. Knockout slots leave the teams empty.
type SeedMatch struct {
	GroupCode string         `json:"group_code"`
	Index     int            `json:"index"`
	Team1Code string         `json:"team1_code,omitempty"`
	Team2Code string         `json:"team2_code,omitempty"`
	BetKind   models.BetKind `json:"bet_kind"`
}

type SeedData struct {
	Phases  []SeedPhase
	Groups  []SeedGroup
	Teams   []SeedTeam
	Matches []SeedMatch
}

type SeedReport struct {
	Phases  int
	Groups  int
	Teams   int
	Matches int
}

// SeedService loads the tournament structure before the first signup.
type SeedService interface {
	Seed(ctx context.Context, data *SeedData) (*SeedReport, error)
}

// LoadSeedData reads phases.json, groups.json, teams.json and matches.json from dir.
func LoadSeedData(dir fs.FS) (*SeedData, error) {
	data := &SeedData{}
	files := []struct {
		name string
		dest any
	}{
		{"phases.json", &data.Phases},
		{"groups.json", &data.Groups},
		{"teams.json", &data.Teams},
		{"matches.json", &data.Matches},
	}
	for _, f := range files {
		raw, err := fs.ReadFile(dir, f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(raw, f.dest); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.name, err)
		}
	}
	return data, nil
}

type seedService struct {
	txr           repositories.Transactor
	structureRepo repositories.StructureRepository
}

func NewSeedService(txr repositories.Transactor, structureRepo repositories.StructureRepository) SeedService {
	return &seedService{txr: txr, structureRepo: structureRepo}
}

func (s *seedService) Seed(ctx context.Context, data *SeedData) (*SeedReport, error) {
	report := &SeedReport{}
	err := s.txr.WithinTx(ctx, nil, func(exec repositories.SQLExecutor) error {
		phases := make(map[string]uuid.UUID, len(data.Phases))
		for _, in := range data.Phases {
			phase := &models.Phase{Code: in.Code, DescriptionFR: in.DescriptionFR, DescriptionEN: in.DescriptionEN, Index: in.Index}
			if err := s.structureRepo.CreatePhase(ctx, exec, phase); err != nil {
				return err
			}
			phases[phase.Code] = phase.ID
		}

		groups := make(map[string]uuid.UUID, len(data.Groups))
		for _, in := range data.Groups {
			phaseID, ok := phases[in.PhaseCode]
			if !ok {
				return fmt.Errorf("%w: group %s references phase %s", ErrPhaseNotFound, in.Code, in.PhaseCode)
			}
			group := &models.Group{
				Code:          in.Code,
				DescriptionFR: in.DescriptionFR,
				DescriptionEN: in.DescriptionEN,
				Index:         in.Index,
				PhaseID:       phaseID,
			}
			if err := s.structureRepo.CreateGroup(ctx, exec, group); err != nil {
				return err
			}
			groups[group.Code] = group.ID
		}

		teams := make(map[string]uuid.UUID, len(data.Teams))
		for _, in := range data.Teams {
			team := &models.Team{Code: in.Code, DescriptionFR: in.DescriptionFR, DescriptionEN: in.DescriptionEN, FlagURL: in.FlagURL}
			if err := s.structureRepo.CreateTeam(ctx, exec, team); err != nil {
				return err
			}
			teams[team.Code] = team.ID
		}

		teamRef := func(code string) (*uuid.UUID, error) {
			if code == "" {
				return nil, nil
			}
			id, ok := teams[code]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, code)
			}
			return &id, nil
		}

		for _, in := range data.Matches {
			groupID, ok := groups[in.GroupCode]
			if !ok {
				return fmt.Errorf("%w: %s", ErrGroupNotFound, in.GroupCode)
			}
			kind := in.BetKind
			if kind == "" {
				kind = models.BetKindScore
			}
			if !kind.IsValid() {
				return fmt.Errorf("%w: unknown bet kind %q", ErrValidationFailed, kind)
			}
			team1, err := teamRef(in.Team1Code)
			if err != nil {
				return err
			}
			team2, err := teamRef(in.Team2Code)
			if err != nil {
				return err
			}
			ref := &models.MatchReference{GroupID: groupID, Index: in.Index, Team1ID: team1, Team2ID: team2, BetKind: kind}
			if err := s.structureRepo.CreateMatchReference(ctx, exec, ref); err != nil {
				return err
			}
		}

		report.Phases = len(phases)
		report.Groups = len(groups)
		report.Teams = len(teams)
		report.Matches = len(data.Matches)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("tournament structure seeded",
		slog.Int("phases", report.Phases),
		slog.Int("groups", report.Groups),
		slog.Int("teams", report.Teams),
		slog.Int("matches", report.Matches),
	)
	return report, nil
}

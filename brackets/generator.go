package brackets

import (
	"errors"

	"github.com/Dosada05/betting-pool/models"
	"github.com/google/uuid"
)

var (
	ErrUnknownThirdPlaceCombination = errors.New("no third place lookup entry for qualified groups")
	ErrInvalidThirdPlaceEntry       = errors.New("invalid third place lookup entry")
)

// GroupRanks maps a group code to its standings, best team first.
type GroupRanks map[string][]*models.GroupPosition

// Assignment is the pair of teams written into the knockout match at MatchIndex.
// A nil team id is a slot that could not be resolved.
type Assignment struct {
	MatchIndex int
	Team1ID    *uuid.UUID
	Team2ID    *uuid.UUID
}

// ScoredMatch is the part of a score bet the standings computation needs.
type ScoredMatch struct {
	Team1ID *uuid.UUID
	Team2ID *uuid.UUID
	Score1  *int
	Score2  *int
}

func teamAt(rank []*models.GroupPosition, position int) *uuid.UUID {
	if position < 1 || position > len(rank) {
		return nil
	}
	id := rank[position-1].TeamID
	return &id
}

package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ValidationError is a request that is well formed JSON but breaks the input schema.
type ValidationError struct {
	Path    string
	Schema  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

func newValidationError(path, schema, format string, args ...interface{}) error {
	return &ValidationError{Path: path, Schema: schema, Message: fmt.Sprintf(format, args...)}
}

// OptionalBool tells an absent field apart from an explicit null.
type OptionalBool struct {
	Set   bool
	Value *bool
}

func (o *OptionalBool) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type IDInput struct {
	ID uuid.UUID `json:"id"`
}

type TeamScoreInput struct {
	ID    uuid.UUID `json:"id"`
	Score *int      `json:"score,omitempty"`
}

type ScoreBetInput struct {
	Index int            `json:"index"`
	Team1 TeamScoreInput `json:"team1"`
	Team2 TeamScoreInput `json:"team2"`
	Group IDInput        `json:"group"`
}

func (in ScoreBetInput) validate() error {
	if in.Index < 1 {
		return newValidationError("/index", "minimum", "must be greater than or equal to 1")
	}
	if err := validateScore("/team1/score", in.Team1.Score); err != nil {
		return err
	}
	return validateScore("/team2/score", in.Team2.Score)
}

type ScoreInput struct {
	Score *int `json:"score"`
}

type ModifyScoreBetInput struct {
	Team1 *ScoreInput `json:"team1,omitempty"`
	Team2 *ScoreInput `json:"team2,omitempty"`
}

func (in ModifyScoreBetInput) validate() error {
	if in.Team1 != nil {
		if err := validateScore("/team1/score", in.Team1.Score); err != nil {
			return err
		}
	}
	if in.Team2 != nil {
		return validateScore("/team2/score", in.Team2.Score)
	}
	return nil
}

type BinaryBetInput struct {
	IsOneWon *bool   `json:"is_one_won"`
	Index    int     `json:"index"`
	Team1    IDInput `json:"team1"`
	Team2    IDInput `json:"team2"`
	Group    IDInput `json:"group"`
}

func (in BinaryBetInput) validate() error {
	if in.Index < 1 {
		return newValidationError("/index", "minimum", "must be greater than or equal to 1")
	}
	return nil
}

type OptionalTeamInput struct {
	ID *uuid.UUID `json:"id"`
}

type ModifyBinaryBetInput struct {
	IsOneWon OptionalBool       `json:"is_one_won"`
	Team1    *OptionalTeamInput `json:"team1,omitempty"`
	Team2    *OptionalTeamInput `json:"team2,omitempty"`
}

func validateScore(path string, score *int) error {
	if score != nil && *score < 0 {
		return newValidationError(path, "minimum", "must be greater than or equal to 0")
	}
	return nil
}

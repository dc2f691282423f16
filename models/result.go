package models

import "github.com/google/uuid"

// UserResult is one line of the leaderboard.
type UserResult struct {
	UserID                    uuid.UUID `json:"-"`
	Rank                      int       `json:"rank"`
	FirstName                 string    `json:"first_name"`
	LastName                  string    `json:"last_name"`
	FullName                  string    `json:"full_name"`
	NumberMatchGuess          int       `json:"number_match_guess"`
	NumberScoreGuess          int       `json:"number_score_guess"`
	NumberQualifiedTeamsGuess int       `json:"number_qualified_teams_guess"`
	NumberFirstQualifiedGuess int       `json:"number_first_qualified_guess"`
	NumberQuarterFinalGuess   int       `json:"number_quarter_final_guess"`
	NumberSemiFinalGuess      int       `json:"number_semi_final_guess"`
	NumberFinalGuess          int       `json:"number_final_guess"`
	NumberWinnerGuess         int       `json:"number_winner_guess"`
	Points                    float64   `json:"points"`
}

func NewUserResult(user *User, rank int) UserResult {
	return UserResult{
		UserID:                    user.ID,
		Rank:                      rank,
		FirstName:                 user.FirstName,
		LastName:                  user.LastName,
		FullName:                  user.FullName(),
		NumberMatchGuess:          user.NumberMatchGuess,
		NumberScoreGuess:          user.NumberScoreGuess,
		NumberQualifiedTeamsGuess: user.NumberQualifiedTeamsGuess,
		NumberFirstQualifiedGuess: user.NumberFirstQualifiedGuess,
		NumberQuarterFinalGuess:   user.NumberQuarterFinalGuess,
		NumberSemiFinalGuess:      user.NumberSemiFinalGuess,
		NumberFinalGuess:          user.NumberFinalGuess,
		NumberWinnerGuess:         user.NumberWinnerGuess,
		Points:                    user.Points,
	}
}

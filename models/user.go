package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminName is the login of the reference principal whose bets are the ground truth for scoring.
const AdminName = "admin"

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`

	NumberMatchGuess          int     `json:"number_match_guess"`
	NumberScoreGuess          int     `json:"number_score_guess"`
	NumberQualifiedTeamsGuess int     `json:"number_qualified_teams_guess"`
	NumberFirstQualifiedGuess int     `json:"number_first_qualified_guess"`
	NumberQuarterFinalGuess   int     `json:"number_quarter_final_guess"`
	NumberSemiFinalGuess      int     `json:"number_semi_final_guess"`
	NumberFinalGuess          int     `json:"number_final_guess"`
	NumberWinnerGuess         int     `json:"number_winner_guess"`
	Points                    float64 `json:"points"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Name == AdminName
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// ResetResults zeroes every aggregate counter and the points.
func (u *User) ResetResults() {
	u.NumberMatchGuess = 0
	u.NumberScoreGuess = 0
	u.NumberQualifiedTeamsGuess = 0
	u.NumberFirstQualifiedGuess = 0
	u.NumberQuarterFinalGuess = 0
	u.NumberSemiFinalGuess = 0
	u.NumberFinalGuess = 0
	u.NumberWinnerGuess = 0
	u.Points = 0
}

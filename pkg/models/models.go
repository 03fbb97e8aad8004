package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Winner values for a Game. A game stays at WinnerUndecided until the
// result ingestor decides it; a push against the spread never leaves 0.
const (
	WinnerUndecided = 0
	WinnerTeam1     = 1
	WinnerTeam2     = 2
)

// RankingType values for a User.
const (
	RankingPublic  = "PUBLIC"
	RankingPrivate = "PRIVATE"
)

// MaxSlipUnits is the total stake a single weekly slip may carry.
const MaxSlipUnits = 5

// Game is one NFL matchup in one week. Team1 is the home side and the
// spread is quoted relative to it, so Team1Spread == -Team2Spread.
// Games are keyed by (Week, ID); provider ids alone are not unique
// across weeks.
type Game struct {
	ID          string    `json:"id"`
	Week        int       `json:"week"`
	Team1       string    `json:"team1"`
	Team2       string    `json:"team2"`
	Team1Spread float64   `json:"team1Spread"`
	Team2Spread float64   `json:"team2Spread"`
	Team1Price  int       `json:"team1Price"`
	Team2Price  int       `json:"team2Price"`
	Team1URL    string    `json:"team1Url"`
	Team2URL    string    `json:"team2Url"`
	Date        time.Time `json:"date"`
	Winner      int       `json:"winner"`
}

// DisplayDate renders the kickoff as the web app shows it, e.g.
// "Sunday @ 7:15pm" in US Central time.
func (g *Game) DisplayDate() string {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		loc = time.UTC
	}
	local := g.Date.In(loc)

	hour := local.Hour()
	period := "am"
	if hour >= 12 {
		period = "pm"
		if hour > 12 {
			hour -= 12
		}
	}
	if hour == 0 {
		hour = 12
	}

	return fmt.Sprintf("%s @ %d:%02d%s", local.Weekday(), hour, local.Minute(), period)
}

// BetSlipItem is a single leg inside a slip: one side of one game with a
// stake. TeamID is 1 for the home side, 2 for the away side.
type BetSlipItem struct {
	GameID string          `json:"gameId"`
	TeamID int             `json:"teamId"`
	Units  decimal.Decimal `json:"units"`
}

// Bet is one user's full slip for one week, keyed by (UserID, Week).
// Profit is meaningful only once ScoringComplete is true.
type Bet struct {
	UserID          string          `json:"userId"`
	Week            int             `json:"week"`
	BetSlip         []BetSlipItem   `json:"betSlip"`
	ScoringComplete bool            `json:"scoringComplete"`
	Profit          decimal.Decimal `json:"profit"`
	Date            time.Time       `json:"date"`
}

// TotalUnits sums the stakes across all legs of the slip.
func (b *Bet) TotalUnits() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.BetSlip {
		total = total.Add(item.Units)
	}
	return total
}

// User is an account holder. TotalProfit is the running signed sum of
// profit across all scored bets, maintained by the settlement engine.
type User struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	TotalProfit decimal.Decimal `json:"totalProfit"`
	RankingType string          `json:"rankingType"`
}

// ErrorResponse is the JSON error body returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

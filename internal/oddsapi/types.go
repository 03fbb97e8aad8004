package oddsapi

import "time"

// Event is one upcoming or live game in the odds feed.
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one book's view of an event.
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Market is one market (e.g. spreads) within a bookmaker entry.
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is one side of a market. The API does not guarantee outcome
// order, so consumers must match by Name rather than by index.
type Outcome struct {
	Name  string  `json:"name"`
	Point float64 `json:"point"`
	Price int     `json:"price"`
}

// EventScore is one entry in the scores feed.
type EventScore struct {
	ID           string       `json:"id"`
	SportKey     string       `json:"sport_key"`
	CommenceTime time.Time    `json:"commence_time"`
	Completed    bool         `json:"completed"`
	HomeTeam     string       `json:"home_team"`
	AwayTeam     string       `json:"away_team"`
	Scores       []ScoreEntry `json:"scores"`
}

// ScoreEntry is a single team's score line. Score arrives as a string.
type ScoreEntry struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

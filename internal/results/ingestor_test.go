package results

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jharring9/wager-wire/internal/oddsapi"
	"github.com/jharring9/wager-wire/pkg/models"
)

var seasonStart = time.Date(2023, time.September, 5, 0, 0, 0, 0, time.UTC)

type fakeScores struct {
	scores []oddsapi.EventScore
	err    error
}

func (f *fakeScores) FetchScores(ctx context.Context, daysFrom int) ([]oddsapi.EventScore, error) {
	return f.scores, f.err
}

type fakeStore struct {
	games   map[string]*models.Game
	winners map[string]int
}

func newFakeStore(games ...*models.Game) *fakeStore {
	f := &fakeStore{games: make(map[string]*models.Game), winners: make(map[string]int)}
	for _, g := range games {
		f.games[key(g.Week, g.ID)] = g
	}
	return f
}

func key(week int, id string) string { return fmt.Sprintf("%d/%s", week, id) }

func (f *fakeStore) GetGame(ctx context.Context, week int, id string) (*models.Game, error) {
	return f.games[key(week, id)], nil
}

func (f *fakeStore) SetGameWinner(ctx context.Context, week int, id string, winner int) error {
	f.winners[key(week, id)] = winner
	return nil
}

func completedScore(id string, kickoff time.Time, home, away string, homeScore, awayScore int) oddsapi.EventScore {
	return oddsapi.EventScore{
		ID:           id,
		CommenceTime: kickoff,
		Completed:    true,
		HomeTeam:     home,
		AwayTeam:     away,
		Scores: []oddsapi.ScoreEntry{
			{Name: away, Score: fmt.Sprintf("%d", awayScore)},
			{Name: home, Score: fmt.Sprintf("%d", homeScore)},
		},
	}
}

var kickoff = time.Date(2023, 11, 12, 18, 0, 0, 0, time.UTC) // week 10

func TestDecideWinner(t *testing.T) {
	tests := []struct {
		name        string
		homeScore   int
		awayScore   int
		team1Spread float64
		want        int
	}{
		{"home favored and covers", 24, 20, -3.5, models.WinnerTeam1},
		{"home favored, away covers", 20, 24, -3.5, models.WinnerTeam2},
		{"pickem tie pushes", 21, 21, 0, models.WinnerUndecided},
		{"home wins outright but misses spread", 23, 20, -3.5, models.WinnerTeam2},
		{"home wins by two, away covers spread", 23, 21, -3.5, models.WinnerTeam2},
		{"whole number spread exact push", 24, 21, -3, models.WinnerUndecided},
		{"away favored and covers", 17, 27, 6.5, models.WinnerTeam2},
		{"away favored, home covers", 20, 24, 6.5, models.WinnerTeam1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideWinner(tt.homeScore, tt.awayScore, tt.team1Spread)
			if got != tt.want {
				t.Errorf("DecideWinner(%d, %d, %v) = %d, want %d",
					tt.homeScore, tt.awayScore, tt.team1Spread, got, tt.want)
			}
		})
	}
}

func TestRunWritesWinner(t *testing.T) {
	store := newFakeStore(&models.Game{
		ID: "g1", Week: 10,
		Team1: "Green Bay Packers", Team2: "Chicago Bears",
		Team1Spread: -3.5, Team2Spread: 3.5,
	})
	scores := &fakeScores{scores: []oddsapi.EventScore{
		completedScore("g1", kickoff, "Green Bay Packers", "Chicago Bears", 24, 20),
	}}

	ingestor := New(Config{Scores: scores, Store: store, SeasonStart: seasonStart})

	count, err := ingestor.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if got := store.winners["10/g1"]; got != models.WinnerTeam1 {
		t.Errorf("winner = %d, want %d", got, models.WinnerTeam1)
	}
}

func TestRunSkipsIncompleteEntries(t *testing.T) {
	store := newFakeStore(&models.Game{ID: "g1", Week: 10, Team1Spread: -3.5})

	inProgress := completedScore("g1", kickoff, "Green Bay Packers", "Chicago Bears", 10, 7)
	inProgress.Completed = false
	noScores := completedScore("g1", kickoff, "Green Bay Packers", "Chicago Bears", 0, 0)
	noScores.Scores = nil

	scores := &fakeScores{scores: []oddsapi.EventScore{inProgress, noScores}}
	ingestor := New(Config{Scores: scores, Store: store, SeasonStart: seasonStart})

	count, err := ingestor.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 || len(store.winners) != 0 {
		t.Errorf("count = %d, winners = %v, want none", count, store.winners)
	}
}

func TestRunSkipsUnknownGames(t *testing.T) {
	store := newFakeStore()
	scores := &fakeScores{scores: []oddsapi.EventScore{
		completedScore("ghost", kickoff, "Green Bay Packers", "Chicago Bears", 24, 20),
	}}

	ingestor := New(Config{Scores: scores, Store: store, SeasonStart: seasonStart})

	count, err := ingestor.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestRunPushLeavesWinnerUnset(t *testing.T) {
	store := newFakeStore(&models.Game{
		ID: "g1", Week: 10,
		Team1: "Green Bay Packers", Team2: "Chicago Bears",
		Team1Spread: -3,
	})
	scores := &fakeScores{scores: []oddsapi.EventScore{
		completedScore("g1", kickoff, "Green Bay Packers", "Chicago Bears", 24, 21),
	}}

	ingestor := New(Config{Scores: scores, Store: store, SeasonStart: seasonStart})

	count, err := ingestor.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if _, wrote := store.winners["10/g1"]; wrote {
		t.Error("push should not write a winner")
	}
}

func TestRunIdempotent(t *testing.T) {
	store := newFakeStore(&models.Game{
		ID: "g1", Week: 10,
		Team1: "Green Bay Packers", Team2: "Chicago Bears",
		Team1Spread: -3.5,
	})
	scores := &fakeScores{scores: []oddsapi.EventScore{
		completedScore("g1", kickoff, "Green Bay Packers", "Chicago Bears", 24, 20),
	}}

	ingestor := New(Config{Scores: scores, Store: store, SeasonStart: seasonStart})

	for run := 0; run < 2; run++ {
		if _, err := ingestor.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if got := store.winners["10/g1"]; got != models.WinnerTeam1 {
			t.Errorf("run %d: winner = %d, want %d", run, got, models.WinnerTeam1)
		}
	}
}

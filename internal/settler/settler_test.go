package settler

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jharring9/wager-wire/pkg/models"
)

type fakeStore struct {
	bets      map[int][]*models.Bet
	games     map[string]*models.Game
	users     map[string]decimal.Decimal
	gameReads int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bets:  make(map[int][]*models.Bet),
		games: make(map[string]*models.Game),
		users: make(map[string]decimal.Decimal),
	}
}

func gameKey(week int, id string) string { return fmt.Sprintf("%d/%s", week, id) }

func (f *fakeStore) addGame(g *models.Game) {
	f.games[gameKey(g.Week, g.ID)] = g
}

func (f *fakeStore) addBet(b *models.Bet) {
	f.bets[b.Week] = append(f.bets[b.Week], b)
	if _, ok := f.users[b.UserID]; !ok {
		f.users[b.UserID] = decimal.Zero
	}
}

func (f *fakeStore) BetsByWeek(ctx context.Context, week int) ([]*models.Bet, error) {
	return f.bets[week], nil
}

func (f *fakeStore) GetGame(ctx context.Context, week int, id string) (*models.Game, error) {
	f.gameReads++
	return f.games[gameKey(week, id)], nil
}

func (f *fakeStore) SettleBet(ctx context.Context, userID string, week int, profit decimal.Decimal) (bool, error) {
	for _, bet := range f.bets[week] {
		if bet.UserID != userID {
			continue
		}
		if bet.ScoringComplete {
			return false, nil
		}
		bet.Profit = profit
		bet.ScoringComplete = true
		f.users[userID] = f.users[userID].Add(profit)
		return true, nil
	}
	return false, nil
}

func units(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func leg(gameID string, teamID int, stake int64) models.BetSlipItem {
	return models.BetSlipItem{GameID: gameID, TeamID: teamID, Units: units(stake)}
}

func TestScoreWeekAggregatesProfit(t *testing.T) {
	store := newFakeStore()
	store.addGame(&models.Game{ID: "g1", Week: 5, Winner: models.WinnerTeam1})
	store.addGame(&models.Game{ID: "g2", Week: 5, Winner: models.WinnerTeam2})
	store.addBet(&models.Bet{
		UserID: "alice@example.com",
		Week:   5,
		BetSlip: []models.BetSlipItem{
			leg("g1", 1, 2), // win +2
			leg("g2", 1, 1), // loss -1
		},
	})

	engine := New(Config{Store: store})

	scored, err := engine.ScoreWeek(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scored != 1 {
		t.Errorf("scored = %d, want 1", scored)
	}

	bet := store.bets[5][0]
	if !bet.ScoringComplete {
		t.Error("bet not marked scored")
	}
	if !bet.Profit.Equal(units(1)) {
		t.Errorf("profit = %s, want 1", bet.Profit)
	}
	if !store.users["alice@example.com"].Equal(units(1)) {
		t.Errorf("total profit = %s, want 1", store.users["alice@example.com"])
	}
}

func TestScoreWeekUndecidedAndMissingLegsAreNeutral(t *testing.T) {
	store := newFakeStore()
	store.addGame(&models.Game{ID: "push", Week: 5, Winner: models.WinnerUndecided})
	store.addGame(&models.Game{ID: "won", Week: 5, Winner: models.WinnerTeam2})
	store.addBet(&models.Bet{
		UserID: "bob@example.com",
		Week:   5,
		BetSlip: []models.BetSlipItem{
			leg("push", 1, 3),    // undecided: 0
			leg("missing", 2, 3), // never ingested: 0
			leg("won", 2, 2),     // win +2
		},
	})

	engine := New(Config{Store: store})

	if _, err := engine.ScoreWeek(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.bets[5][0].Profit; !got.Equal(units(2)) {
		t.Errorf("profit = %s, want 2", got)
	}
}

func TestScoreWeekIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addGame(&models.Game{ID: "g1", Week: 5, Winner: models.WinnerTeam1})
	store.addBet(&models.Bet{
		UserID:  "alice@example.com",
		Week:    5,
		BetSlip: []models.BetSlipItem{leg("g1", 1, 2)},
	})

	engine := New(Config{Store: store})

	scored, err := engine.ScoreWeek(context.Background(), 5)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if scored != 1 {
		t.Fatalf("first run scored = %d, want 1", scored)
	}

	scored, err = engine.ScoreWeek(context.Background(), 5)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if scored != 0 {
		t.Errorf("second run scored = %d, want 0", scored)
	}
	if !store.users["alice@example.com"].Equal(units(2)) {
		t.Errorf("total profit = %s, want 2 (unchanged)", store.users["alice@example.com"])
	}
}

func TestScoreWeekSkipsScoredBetsWithoutGameReads(t *testing.T) {
	store := newFakeStore()
	store.addGame(&models.Game{ID: "g1", Week: 5, Winner: models.WinnerTeam1})
	store.addBet(&models.Bet{
		UserID:          "alice@example.com",
		Week:            5,
		BetSlip:         []models.BetSlipItem{leg("g1", 1, 2)},
		ScoringComplete: true,
		Profit:          units(2),
	})
	store.users["alice@example.com"] = units(2)

	engine := New(Config{Store: store})

	scored, err := engine.ScoreWeek(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scored != 0 {
		t.Errorf("scored = %d, want 0", scored)
	}
	if store.gameReads != 0 {
		t.Errorf("game reads = %d, want 0", store.gameReads)
	}
	if !store.bets[5][0].Profit.Equal(units(2)) || !store.users["alice@example.com"].Equal(units(2)) {
		t.Error("scored bet or owner total was touched")
	}
}

func TestTotalProfitConservationAcrossWeeks(t *testing.T) {
	store := newFakeStore()
	store.addGame(&models.Game{ID: "w1g", Week: 1, Winner: models.WinnerTeam1})
	store.addGame(&models.Game{ID: "w2g", Week: 2, Winner: models.WinnerTeam2})
	store.addGame(&models.Game{ID: "w3g", Week: 3, Winner: models.WinnerTeam1})

	store.addBet(&models.Bet{
		UserID:  "carol@example.com",
		Week:    1,
		BetSlip: []models.BetSlipItem{leg("w1g", 1, 3)}, // +3
	})
	store.addBet(&models.Bet{
		UserID:  "carol@example.com",
		Week:    2,
		BetSlip: []models.BetSlipItem{leg("w2g", 1, 2)}, // -2
	})
	store.addBet(&models.Bet{
		UserID:  "carol@example.com",
		Week:    3,
		BetSlip: []models.BetSlipItem{leg("w3g", 1, 1)}, // +1
	})

	engine := New(Config{Store: store})
	for week := 1; week <= 3; week++ {
		if _, err := engine.ScoreWeek(context.Background(), week); err != nil {
			t.Fatalf("week %d: %v", week, err)
		}
	}

	sum := decimal.Zero
	for _, bets := range store.bets {
		for _, bet := range bets {
			if !bet.ScoringComplete {
				t.Fatalf("bet for week %d left unscored", bet.Week)
			}
			sum = sum.Add(bet.Profit)
		}
	}

	total := store.users["carol@example.com"]
	if !total.Equal(sum) {
		t.Errorf("total profit %s != sum of bet profits %s", total, sum)
	}
	if !total.Equal(units(2)) {
		t.Errorf("total profit = %s, want 2", total)
	}
}

func TestScoreWeekFractionalUnits(t *testing.T) {
	store := newFakeStore()
	store.addGame(&models.Game{ID: "g1", Week: 5, Winner: models.WinnerTeam2})
	half := decimal.RequireFromString("0.5")
	store.addBet(&models.Bet{
		UserID:  "dave@example.com",
		Week:    5,
		BetSlip: []models.BetSlipItem{{GameID: "g1", TeamID: 2, Units: half}},
	})

	engine := New(Config{Store: store})

	if _, err := engine.ScoreWeek(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.users["dave@example.com"]; !got.Equal(half) {
		t.Errorf("total profit = %s, want 0.5", got)
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/okian/skirmish/internal/domain/playerstats"
)

func rec(player, session string, score float64) playerstats.SessionStats {
	return playerstats.SessionStats{Player: player, SessionID: session, Score: score}
}

func TestHistoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	improved, err := store.Append(ctx, rec("Aelwyn", "s1", 62.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !improved {
		t.Error("first record should set the best score")
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	entry, err := store.Rank(ctx, "Aelwyn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 || entry.Score != 62.5 || entry.SessionID != "s1" || entry.Sessions != 1 {
		t.Errorf("unexpected entry %+v", entry)
	}

	history, err := store.History(ctx, "Aelwyn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 || history[0].SessionID != "s1" {
		t.Errorf("unexpected history %+v", history)
	}
}

func TestHistoryStore_BestScore(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore()

	steps := []struct {
		session  string
		score    float64
		improved bool
	}{
		{"s1", 50, true},
		{"s2", 40, false},
		{"s3", 50, false},
		{"s4", 75, true},
	}
	for _, step := range steps {
		improved, err := store.Append(ctx, rec("You", step.session, step.score))
		if err != nil {
			t.Fatalf("append %s: %v", step.session, err)
		}
		if improved != step.improved {
			t.Errorf("append %s: improved = %v, want %v", step.session, improved, step.improved)
		}
	}

	entry, err := store.Rank(ctx, "You")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Score != 75 || entry.SessionID != "s4" || entry.Sessions != 4 {
		t.Errorf("unexpected entry %+v", entry)
	}
	if store.Records() != 4 {
		t.Errorf("expected 4 records, got %d", store.Records())
	}

	history, _ := store.History(ctx, "You")
	for i, want := range []string{"s1", "s2", "s3", "s4"} {
		if history[i].SessionID != want {
			t.Errorf("history[%d] = %s, want %s", i, history[i].SessionID, want)
		}
	}
}

func TestHistoryStore_Ordering(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(WithShardCount(3))

	for _, r := range []playerstats.SessionStats{
		rec("Mira", "a", 40),
		rec("Aelwyn", "b", 80),
		rec("Zed", "c", 80),
		rec("Bram", "d", 80),
		rec("Kel", "e", 10),
	} {
		if _, err := store.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	top, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Aelwyn", "Bram", "Zed", "Mira", "Kel"}
	if len(top) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(top))
	}
	for i, name := range want {
		if top[i].Player != name || top[i].Rank != i+1 {
			t.Errorf("top[%d] = %+v, want %s at rank %d", i, top[i], name, i+1)
		}
	}

	entry, _ := store.Rank(ctx, "Zed")
	if entry.Rank != 3 {
		t.Errorf("expected Zed at rank 3, got %d", entry.Rank)
	}

	top2, _ := store.TopN(ctx, 2)
	if len(top2) != 2 || top2[1].Player != "Bram" {
		t.Errorf("unexpected top 2: %+v", top2)
	}
}

func TestHistoryStore_RankMovesWithImprovement(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore()

	_, _ = store.Append(ctx, rec("A", "1", 90))
	_, _ = store.Append(ctx, rec("B", "2", 50))
	_, _ = store.Append(ctx, rec("B", "3", 95))

	entry, _ := store.Rank(ctx, "B")
	if entry.Rank != 1 {
		t.Errorf("expected B to move to rank 1, got %d", entry.Rank)
	}
	entry, _ = store.Rank(ctx, "A")
	if entry.Rank != 2 {
		t.Errorf("expected A at rank 2, got %d", entry.Rank)
	}
	if store.Count(ctx) != 2 {
		t.Errorf("expected 2 players, got %d", store.Count(ctx))
	}
}

func TestHistoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(WithMaxLimit(2))

	if _, err := store.Append(ctx, rec("", "s", 1)); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", err)
	}
	if _, err := store.Append(ctx, rec("You", "", 1)); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", err)
	}
	if _, err := store.History(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Rank(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := store.Append(cancelled, rec("You", "s", 1)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	for i := 0; i < 5; i++ {
		_, _ = store.Append(ctx, rec(fmt.Sprintf("p%d", i), "s", float64(i)))
	}
	top, err := store.TopN(ctx, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 2 {
		t.Errorf("expected limit capped at 2, got %d", len(top))
	}
}

func TestHistoryStore_EmptyTopN(t *testing.T) {
	store := NewHistoryStore()
	top, err := store.TopN(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 0 {
		t.Errorf("expected empty leaderboard, got %+v", top)
	}
}

func TestHistoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore()
	players, perPlayer := 20, 25

	var wg sync.WaitGroup
	for p := 0; p < players; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			name := fmt.Sprintf("player-%02d", p)
			for i := 0; i < perPlayer; i++ {
				if _, err := store.Append(ctx, rec(name, fmt.Sprintf("s%d", i), float64(p*100+i))); err != nil {
					t.Errorf("append: %v", err)
				}
				_, _ = store.TopN(ctx, 5)
			}
		}(p)
	}
	wg.Wait()

	if store.Count(ctx) != players {
		t.Errorf("expected %d players, got %d", players, store.Count(ctx))
	}
	if store.Records() != int64(players*perPlayer) {
		t.Errorf("expected %d records, got %d", players*perPlayer, store.Records())
	}
	top, _ := store.TopN(ctx, 1)
	if top[0].Player != "player-19" || top[0].Score != float64(19*100+perPlayer-1) {
		t.Errorf("unexpected leader %+v", top[0])
	}
}

func TestToFixedPoint(t *testing.T) {
	if toFixedPoint(math.NaN()) != 0 {
		t.Error("NaN should map to zero")
	}
	if toFixedPoint(math.Inf(1)) != scoreFP(math.MaxInt64) {
		t.Error("+Inf should saturate")
	}
	if got := toFixedPoint(12.3456789).float(); math.Abs(got-12.345679) > 1e-9 {
		t.Errorf("expected six decimal rounding, got %v", got)
	}
}

func BenchmarkHistoryStore_Append(b *testing.B) {
	ctx := context.Background()
	store := NewHistoryStore()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Append(ctx, rec(fmt.Sprintf("p%d", i%1000), fmt.Sprintf("s%d", i), float64(i%100)))
	}
}

func BenchmarkHistoryStore_TopN(b *testing.B) {
	ctx := context.Background()
	store := NewHistoryStore()
	for i := 0; i < 10000; i++ {
		_, _ = store.Append(ctx, rec(fmt.Sprintf("p%d", i), "s", float64(i%997)))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.TopN(ctx, 100)
	}
}

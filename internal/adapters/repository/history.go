package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/skirmish/internal/domain/playerstats"
	"github.com/okian/skirmish/internal/domain/types"
	"github.com/okian/skirmish/pkg/metrics"
)

const (
	defaultShardCount = 8
	defaultMaxLimit   = 100
)

// best is a player's top session, the key of the leaderboard index.
type best struct {
	score     scoreFP
	sessionID string
}

type shard struct {
	mu      sync.RWMutex
	records map[string][]playerstats.SessionStats
}

// HistoryStore is an in-memory Store. Per-player records are spread over
// shards by player name; the leaderboard is a single treap keyed by best
// score. A shard lock is never held while taking the leaderboard lock.
type HistoryStore struct {
	shardCount int
	maxLimit   int
	shards     []*shard

	mu   sync.RWMutex
	root *node
	best map[string]best

	records atomic.Int64
}

// NewHistoryStore constructs an empty history store.
func NewHistoryStore(opts ...Option) *HistoryStore {
	s := &HistoryStore{
		shardCount: defaultShardCount,
		maxLimit:   defaultMaxLimit,
		best:       make(map[string]best),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[string][]playerstats.SessionStats)}
	}

	metrics.UpdateHistorySize(0, 0)
	return s
}

func (s *HistoryStore) shardFor(player string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(player))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Append implements Store.Append.
func (s *HistoryStore) Append(ctx context.Context, rec playerstats.SessionStats) (bool, error) { //nolint:gocritic // hugeParam: records are stored by value
	start := time.Now()
	defer func() {
		metrics.RecordOperationLatency(metrics.OpRecord, float64(time.Since(start).Microseconds())/1000)
	}()

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("append history: %w", err)
	}
	if rec.Player == "" || rec.SessionID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_record")
		return false, fmt.Errorf("%w: player %q session %q", ErrInvalidRecord, rec.Player, rec.SessionID)
	}

	sh := s.shardFor(rec.Player)
	sh.mu.Lock()
	sh.records[rec.Player] = append(sh.records[rec.Player], rec)
	sh.mu.Unlock()
	total := s.records.Add(1)

	score := toFixedPoint(rec.Score)

	s.mu.Lock()
	old, known := s.best[rec.Player]
	improved := !known || score > old.score
	if improved {
		if known {
			s.root = remove(s.root, rec.Player, old.score)
		}
		s.best[rec.Player] = best{score: score, sessionID: rec.SessionID}
		s.root = insert(s.root, rec.Player, score)
	}
	players := len(s.best)
	s.mu.Unlock()

	metrics.UpdateHistorySize(int(total), players)
	return improved, nil
}

// History implements Store.History. The returned slice is a copy.
func (s *HistoryStore) History(_ context.Context, player string) ([]playerstats.SessionStats, error) {
	sh := s.shardFor(player)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	recs, ok := sh.records[player]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, fmt.Errorf("%w: %s", ErrNotFound, player)
	}
	out := make([]playerstats.SessionStats, len(recs))
	copy(out, recs)
	return out, nil
}

func (s *HistoryStore) sessions(player string) int {
	sh := s.shardFor(player)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return len(sh.records[player])
}

// Rank implements Store.Rank in O(log n).
func (s *HistoryStore) Rank(_ context.Context, player string) (types.Entry, error) {
	s.mu.RLock()
	b, ok := s.best[player]
	pos := -1
	if ok {
		pos = position(s.root, player, b.score)
	}
	s.mu.RUnlock()

	if pos < 0 {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, player)
	}
	return types.Entry{
		Rank:      pos + 1,
		Player:    player,
		Score:     b.score.float(),
		SessionID: b.sessionID,
		Sessions:  s.sessions(player),
	}, nil
}

// TopN implements Store.TopN. Limits above the configured maximum are capped.
func (s *HistoryStore) TopN(_ context.Context, n int) ([]types.Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	if n > s.maxLimit {
		n = s.maxLimit
	}

	s.mu.RLock()
	out := make([]types.Entry, 0, min(n, len(s.best)))
	walk(s.root, func(nd *node) bool {
		out = append(out, types.Entry{
			Rank:      len(out) + 1,
			Player:    nd.player,
			Score:     nd.score.float(),
			SessionID: s.best[nd.player].sessionID,
		})
		return len(out) < n
	})
	s.mu.RUnlock()

	for i := range out {
		out[i].Sessions = s.sessions(out[i].Player)
	}
	return out, nil
}

// Count implements Store.Count.
func (s *HistoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.best)
}

// Records returns the number of session records held.
func (s *HistoryStore) Records() int64 { return s.records.Load() }

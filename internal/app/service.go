// Package service wires the analysis components into one facade used by the
// CLI: session detection, fight summaries, timelines, breakdowns, player
// statistics and the in-memory player history.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/skirmish/internal/adapters/mq/queue"
	"github.com/okian/skirmish/internal/adapters/mq/worker"
	repository "github.com/okian/skirmish/internal/adapters/repository"
	"github.com/okian/skirmish/internal/config"
	"github.com/okian/skirmish/internal/domain/breakdown"
	"github.com/okian/skirmish/internal/domain/dedupe"
	"github.com/okian/skirmish/internal/domain/fight"
	"github.com/okian/skirmish/internal/domain/model"
	"github.com/okian/skirmish/internal/domain/playerstats"
	"github.com/okian/skirmish/internal/domain/rate"
	"github.com/okian/skirmish/internal/domain/scoring"
	"github.com/okian/skirmish/internal/domain/session"
	"github.com/okian/skirmish/internal/domain/timeline"
	"github.com/okian/skirmish/internal/domain/types"
	"github.com/okian/skirmish/pkg/logger"
	"github.com/okian/skirmish/pkg/metrics"
)

// Service holds the configured calculators. Everything except the history
// store is immutable after New, so one Service may be shared by goroutines.
type Service struct {
	detector   *session.Detector
	summarizer *fight.Summarizer
	timelines  *timeline.Generator
	stats      *playerstats.Calculator

	history repository.Store
	deduper dedupe.Deduper

	workerCount int
	queueSize   int

	logger logger.Logger
}

// New builds every component from cfg. A nil cfg means defaults. Invalid
// configuration is reported here rather than on first use.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	detector, err := session.NewDetector(
		session.WithGapThreshold(cfg.Session.Gap),
		session.WithMinEvents(cfg.Session.MinEvents),
		session.WithMinDuration(cfg.Session.MinDuration),
		session.WithDominanceRatio(cfg.Session.DominanceRatio),
	)
	if err != nil {
		return nil, fmt.Errorf("build session detector: %w", err)
	}
	rates, err := rate.NewCalculator(
		rate.WithWindow(cfg.Rate.Window),
		rate.WithInterval(cfg.Rate.Interval),
	)
	if err != nil {
		return nil, fmt.Errorf("build rate calculator: %w", err)
	}
	keys, err := fight.NewDetector(
		fight.WithBurstDamage(cfg.KeyEvents.BurstDamage),
		fight.WithBurstHealing(cfg.KeyEvents.BurstHealing),
	)
	if err != nil {
		return nil, fmt.Errorf("build key event detector: %w", err)
	}
	summarizer, err := fight.NewSummarizer(fight.WithRates(rates), fight.WithDetector(keys))
	if err != nil {
		return nil, fmt.Errorf("build summarizer: %w", err)
	}
	timelines, err := timeline.NewGenerator(
		timeline.WithPrecision(cfg.Timeline.Precision),
		timeline.WithRawText(cfg.Timeline.RawText),
	)
	if err != nil {
		return nil, fmt.Errorf("build timeline generator: %w", err)
	}
	scorer, err := scoring.NewWeightedScorer(
		scoring.WithWeights(cfg.Scoring.Weights),
		scoring.WithReferences(cfg.Scoring.References),
		scoring.WithThresholds(cfg.Scoring.Thresholds),
	)
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}
	stats, err := playerstats.NewCalculator(
		playerstats.WithRates(rates),
		playerstats.WithScorer(scorer),
		playerstats.WithRollingWindow(cfg.PlayerStats.RollingWindow),
		playerstats.WithMinConfidence(cfg.PlayerStats.MinConfidence),
		playerstats.WithStableSlope(cfg.PlayerStats.StableSlope),
		playerstats.WithConsistencyThresholds(cfg.PlayerStats.Consistency),
	)
	if err != nil {
		return nil, fmt.Errorf("build player stats calculator: %w", err)
	}
	deduper, err := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.History.DedupeSize))
	if err != nil {
		return nil, fmt.Errorf("build deduper: %w", err)
	}

	s := &Service{
		detector:    detector,
		summarizer:  summarizer,
		timelines:   timelines,
		stats:       stats,
		deduper:     deduper,
		workerCount: cfg.Workers.Count,
		queueSize:   cfg.Workers.QueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.history == nil {
		s.history = repository.NewHistoryStore(
			repository.WithShardCount(cfg.History.ShardCount),
			repository.WithMaxLimit(cfg.History.MaxLeaderboardLimit),
		)
	}
	return s, nil
}

func observe(op string, start time.Time) {
	metrics.RecordOperationLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// DetectSessions splits an ordered event stream into sessions and noise runs.
func (s *Service) DetectSessions(ctx context.Context, events []model.Event) (session.Detection, error) {
	defer observe(metrics.OpDetect, time.Now())

	if err := ctx.Err(); err != nil {
		return session.Detection{}, fmt.Errorf("detect sessions: %w", err)
	}
	det, err := s.detector.DetectAll(events)
	if err != nil {
		kind := "invalid_input"
		if errors.Is(err, model.ErrOutOfOrder) {
			kind = "out_of_order"
		}
		metrics.RecordErrorByComponent("session", kind)
		return session.Detection{}, fmt.Errorf("detect sessions: %w", err)
	}

	metrics.RecordEventsAnalyzed(len(events))
	metrics.RecordSessionsDetected(len(det.Sessions), len(det.Noise))
	s.logger.Debug(ctx, "sessions detected",
		logger.Int("events", len(events)),
		logger.Int("sessions", len(det.Sessions)),
		logger.Int("noise", len(det.Noise)),
	)
	return det, nil
}

// Summarize builds the fight summary of one session.
func (s *Service) Summarize(ctx context.Context, sess model.Session) (fight.Summary, error) { //nolint:gocritic // hugeParam: sessions are passed by value
	defer observe(metrics.OpSummarize, time.Now())

	if err := ctx.Err(); err != nil {
		return fight.Summary{}, fmt.Errorf("summarize session %s: %w", sess.ID, err)
	}
	sum := s.summarizer.Summarize(sess)
	metrics.RecordSummaryBuilt()
	for _, k := range sum.KeyEvents {
		metrics.RecordKeyEvent(string(k.Reason))
	}
	return sum, nil
}

// summarySink stores each summary at its job's batch index.
type summarySink struct {
	out []fight.Summary
}

func (k *summarySink) Store(_ context.Context, index int, sum fight.Summary) error { //nolint:gocritic // hugeParam: matches worker.Sink
	if index < 0 || index >= len(k.out) {
		return fmt.Errorf("%w: %d of %d", ErrBadIndex, index, len(k.out))
	}
	k.out[index] = sum
	return nil
}

// SummarizeAll summarizes sessions on a worker pool. The result is in input
// order. Cancellation is checked between sessions; a cancelled batch returns
// the context error and no partial result.
func (s *Service) SummarizeAll(ctx context.Context, sessions []model.Session) ([]fight.Summary, error) {
	if len(sessions) == 0 {
		return nil, ctx.Err()
	}
	start := time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sink := &summarySink{out: make([]fight.Summary, len(sessions))}
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(min(s.workerCount, len(sessions)), q, s.summarizer, sink)
	pool.Start(runCtx)

	for i := range sessions {
		if err := q.Put(runCtx, queue.Job{Index: i, Session: sessions[i]}); err != nil {
			cancel()
			_ = pool.Shutdown(context.Background())
			return nil, fmt.Errorf("summarize sessions: %w", err)
		}
	}
	if err := q.Close(); err != nil {
		return nil, fmt.Errorf("summarize sessions: %w", err)
	}

	if err := pool.Wait(ctx); err != nil {
		return nil, fmt.Errorf("summarize sessions: %w", err)
	}
	// Workers also stop early when ctx ends; their output is then incomplete.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("summarize sessions: %w", err)
	}

	s.logger.Debug(ctx, "batch summarized",
		logger.Int("sessions", len(sessions)),
		logger.Int("workers", pool.Size()),
		logger.Duration("elapsed", time.Since(start)),
	)
	return sink.out, nil
}

// Timeline renders a session's timeline and applies filter to it.
func (s *Service) Timeline(ctx context.Context, sess model.Session, filter timeline.Filter) (timeline.Result, error) { //nolint:gocritic // hugeParam: sessions are passed by value
	defer observe(metrics.OpTimeline, time.Now())

	if err := ctx.Err(); err != nil {
		return timeline.Result{}, fmt.Errorf("timeline of session %s: %w", sess.ID, err)
	}
	res := timeline.Apply(s.timelines.Generate(sess), filter)
	metrics.RecordTimelineQuery(len(res.Entries))
	return res, nil
}

// DamageBreakdown groups a session's damage along dims. A non-empty source
// keeps only damage dealt by that entity.
func (s *Service) DamageBreakdown(ctx context.Context, sess model.Session, source string, dims ...breakdown.Dimension) (breakdown.DamageReport, error) { //nolint:gocritic // hugeParam: sessions are passed by value
	if err := ctx.Err(); err != nil {
		return breakdown.DamageReport{}, fmt.Errorf("damage breakdown: %w", err)
	}
	events := model.DamageEvents(sess.Events)
	if source != "" {
		kept := events[:0:0]
		for _, d := range events {
			if d.Source.Name == source {
				kept = append(kept, d)
			}
		}
		events = kept
	}
	report, err := breakdown.Damage(events, dims...)
	if err != nil {
		metrics.RecordErrorByComponent("breakdown", "invalid_dimension")
		return breakdown.DamageReport{}, fmt.Errorf("damage breakdown: %w", err)
	}
	return report, nil
}

// HealingBreakdown groups a session's healing along dims. A non-empty source
// keeps only healing done by that entity.
func (s *Service) HealingBreakdown(ctx context.Context, sess model.Session, source string, dims ...breakdown.Dimension) (breakdown.HealingReport, error) { //nolint:gocritic // hugeParam: sessions are passed by value
	if err := ctx.Err(); err != nil {
		return breakdown.HealingReport{}, fmt.Errorf("healing breakdown: %w", err)
	}
	events := model.HealingEvents(sess.Events)
	if source != "" {
		kept := events[:0:0]
		for _, h := range events {
			if h.Source.Name == source {
				kept = append(kept, h)
			}
		}
		events = kept
	}
	report, err := breakdown.Healing(events, dims...)
	if err != nil {
		metrics.RecordErrorByComponent("breakdown", "invalid_dimension")
		return breakdown.HealingReport{}, fmt.Errorf("healing breakdown: %w", err)
	}
	return report, nil
}

// PlayerStats aggregates a player's figures over the sessions they took part in.
func (s *Service) PlayerStats(ctx context.Context, player string, sessions []model.Session) (playerstats.Aggregate, error) {
	defer observe(metrics.OpAggregate, time.Now())

	if err := ctx.Err(); err != nil {
		return playerstats.Aggregate{}, fmt.Errorf("player stats: %w", err)
	}
	agg, err := s.stats.Compute(player, sessions)
	if err != nil {
		return playerstats.Aggregate{}, fmt.Errorf("player stats: %w", err)
	}
	metrics.RecordAggregateComputed()
	return agg, nil
}

// Record stores one record per player character in sess. A player already
// recorded for the session is skipped. The records stored by this call are
// returned.
func (s *Service) Record(ctx context.Context, sess model.Session) ([]playerstats.SessionStats, error) { //nolint:gocritic // hugeParam: sessions are passed by value
	var stored []playerstats.SessionStats
	for _, p := range sess.Participants {
		if !p.Entity.IsPlayer() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stored, fmt.Errorf("record session %s: %w", sess.ID, err)
		}

		name := p.Entity.Name
		key := dedupe.Key(name, sess.ID)
		if s.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordHistoryDuplicate()
			s.logger.Debug(ctx, "session already recorded",
				logger.String("player", name),
				logger.String("session_id", sess.ID),
			)
			continue
		}

		rec, err := s.stats.Extract(sess, name)
		if err != nil {
			s.deduper.Unrecord(ctx, key)
			return stored, fmt.Errorf("record session %s: %w", sess.ID, err)
		}
		improved, err := s.history.Append(ctx, rec)
		if err != nil {
			s.deduper.Unrecord(ctx, key)
			return stored, fmt.Errorf("record session %s: %w", sess.ID, err)
		}
		if improved {
			s.logger.Debug(ctx, "new best session",
				logger.String("player", name),
				logger.Float64("score", rec.Score),
			)
		}
		stored = append(stored, rec)
	}
	return stored, nil
}

// History aggregates everything recorded for player.
func (s *Service) History(ctx context.Context, player string) (playerstats.Aggregate, error) {
	defer observe(metrics.OpAggregate, time.Now())

	if player == "" {
		return playerstats.Aggregate{}, ErrEmptyPlayer
	}
	recs, err := s.history.History(ctx, player)
	if err != nil {
		return playerstats.Aggregate{}, fmt.Errorf("history of %q: %w", player, err)
	}
	metrics.RecordAggregateComputed()
	return s.stats.Aggregate(player, recs), nil
}

// Leaderboard returns the top n players by best session score.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.history.TopN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return entries, nil
}

// Rank returns one player's leaderboard entry.
func (s *Service) Rank(ctx context.Context, player string) (types.Entry, error) {
	e, err := s.history.Rank(ctx, player)
	if err != nil {
		return types.Entry{}, fmt.Errorf("rank of %q: %w", player, err)
	}
	return e, nil
}

// Players returns the number of players with recorded history.
func (s *Service) Players(ctx context.Context) int { return s.history.Count(ctx) }

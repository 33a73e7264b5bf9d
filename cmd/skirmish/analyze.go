package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/skirmish/internal/adapters/export"
	"github.com/okian/skirmish/internal/domain/breakdown"
	"github.com/okian/skirmish/internal/domain/fight"
	"github.com/okian/skirmish/internal/domain/model"
	"github.com/okian/skirmish/internal/domain/timeline"
	"github.com/okian/skirmish/pkg/logger"
)

const (
	defaultPlayer = "You"
	defaultLimit  = 10
)

// pick selects a session by id or by 1-based position.
func pick(sessions []model.Session, ref string) (model.Session, error) {
	if len(sessions) == 0 {
		return model.Session{}, ErrNoSessions
	}
	for _, s := range sessions {
		if s.ID == ref {
			return s, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(sessions) {
		return sessions[n-1], nil
	}
	return model.Session{}, fmt.Errorf("%w: %q (have %d)", ErrSessionNotFound, ref, len(sessions))
}

func newSessionsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List detected encounters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			det, err := c.detect(cmd)
			if err != nil {
				return err
			}
			return c.out.Sessions(export.NewSessionList(det.Sessions, len(det.Noise)))
		},
	}
}

func newSummaryCmd(c *cli) *cobra.Command {
	var ref string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize encounters: meters, key events and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			det, err := c.detect(cmd)
			if err != nil {
				return err
			}
			if ref == "" {
				summaries, err := c.svc.SummarizeAll(cmd.Context(), det.Sessions)
				if err != nil {
					return err
				}
				return c.out.Summaries(summaries)
			}
			s, err := pick(det.Sessions, ref)
			if err != nil {
				return err
			}
			sum, err := c.svc.Summarize(cmd.Context(), s)
			if err != nil {
				return err
			}
			return c.out.Summaries([]fight.Summary{sum})
		},
	}
	cmd.Flags().StringVarP(&ref, "session", "s", "", "session id or 1-based number (default: all)")
	return cmd
}

func newTimelineCmd(c *cli) *cobra.Command {
	var (
		ref      string
		types    []string
		entity   string
		minValue int64
		critOnly bool
	)
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the event timeline of one encounter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := timeline.Filter{Entity: entity, CriticalOnly: critOnly}
			for _, t := range types {
				m, err := timeline.ParseMarker(t)
				if err != nil {
					return err
				}
				filter.Types = append(filter.Types, m)
			}
			if cmd.Flags().Changed("min-value") {
				filter.MinValue = &minValue
			}

			det, err := c.detect(cmd)
			if err != nil {
				return err
			}
			s, err := pick(det.Sessions, ref)
			if err != nil {
				return err
			}
			res, err := c.svc.Timeline(cmd.Context(), s, filter)
			if err != nil {
				return err
			}
			c.logger.Debug(cmd.Context(), "timeline filtered",
				logger.String("session_id", s.ID),
				logger.Int("matched", res.Counters.Matched),
				logger.Int("total", res.Counters.Total),
			)
			return c.out.Timeline(s.ID, res)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&ref, "session", "s", "1", "session id or 1-based number")
	flags.StringSliceVarP(&types, "type", "t", nil, "entry types to keep: damage, healing, control, death, other")
	flags.StringVar(&entity, "entity", "", "keep entries with this source or target")
	flags.Int64Var(&minValue, "min-value", 0, "keep entries with at least this amount")
	flags.BoolVar(&critOnly, "crit-only", false, "keep critical hits and heals only")
	return cmd
}

func newBreakdownCmd(c *cli) *cobra.Command {
	var (
		ref     string
		healing bool
		by      []string
		source  string
	)
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Group one encounter's damage or healing by ability, type, action, source or target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dims := make([]breakdown.Dimension, 0, len(by))
			for _, d := range by {
				dims = append(dims, breakdown.Dimension(d))
			}

			det, err := c.detect(cmd)
			if err != nil {
				return err
			}
			s, err := pick(det.Sessions, ref)
			if err != nil {
				return err
			}
			if healing {
				r, err := c.svc.HealingBreakdown(cmd.Context(), s, source, dims...)
				if err != nil {
					return err
				}
				return c.out.HealingBreakdown(r)
			}
			r, err := c.svc.DamageBreakdown(cmd.Context(), s, source, dims...)
			if err != nil {
				return err
			}
			return c.out.DamageBreakdown(r)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&ref, "session", "s", "1", "session id or 1-based number")
	flags.BoolVar(&healing, "healing", false, "break down healing instead of damage")
	flags.StringSliceVar(&by, "by", []string{string(breakdown.ByAbility)}, "grouping: ability, category, action, source, target")
	flags.StringVar(&source, "source", "", "only count events from this entity")
	return cmd
}

func newStatsCmd(c *cli) *cobra.Command {
	var player string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate one player's performance across all encounters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			det, err := c.detect(cmd)
			if err != nil {
				return err
			}
			agg, err := c.svc.PlayerStats(cmd.Context(), player, det.Sessions)
			if err != nil {
				return err
			}
			return c.out.Stats(agg)
		},
	}
	cmd.Flags().StringVarP(&player, "player", "p", defaultPlayer, "player name")
	return cmd
}

func newLeaderboardCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank players by their best encounter score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			det, err := c.detect(cmd)
			if err != nil {
				return err
			}
			for _, s := range det.Sessions {
				if _, err := c.svc.Record(cmd.Context(), s); err != nil {
					return err
				}
			}
			entries, err := c.svc.Leaderboard(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return c.out.Leaderboard(entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultLimit, "number of players to show")
	return cmd
}

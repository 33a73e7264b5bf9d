package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/skirmish/internal/adapters/codec"
	"github.com/okian/skirmish/internal/synth"
	"github.com/okian/skirmish/pkg/logger"
)

func newGenerateCmd(c *cli) *cobra.Command {
	var (
		seed       uint64
		encounters int
		noise      bool
		party      []string
		start      string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a deterministic synthetic combat log as JSON Lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []synth.Option{
				synth.WithSeed(seed),
				synth.WithEncounters(encounters),
				synth.WithNoise(noise),
				synth.WithParty(party...),
			}
			if start != "" {
				t, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				opts = append(opts, synth.WithStart(t))
			}
			gen, err := synth.NewGenerator(opts...)
			if err != nil {
				return err
			}
			events, err := gen.Generate(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil {
						c.logger.Warn(cmd.Context(), "failed to close output", logger.Error(cerr))
					}
				}()
				w = f
			}
			if err := codec.WriteAll(w, events); err != nil {
				return fmt.Errorf("failed to write events: %w", err)
			}
			c.logger.Info(cmd.Context(), "synthetic log written",
				logger.Int("events", len(events)),
				logger.Int("encounters", encounters),
			)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Uint64Var(&seed, "seed", 1, "random seed; equal seeds give equal logs")
	flags.IntVar(&encounters, "encounters", 5, "number of encounters")
	flags.BoolVar(&noise, "noise", false, "add stray events between encounters")
	flags.StringSliceVar(&party, "party", nil, "party members fighting beside You (default Aelwyn,Bram,Mira)")
	flags.StringVar(&start, "start", "", "RFC 3339 timestamp of the first event")
	flags.StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

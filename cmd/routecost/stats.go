package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/routecost/lookup"
)

var errNoSamples = errors.New("routecost: no sample files")

func newStatsCmd(configPath *string) *cobra.Command {
	var (
		flags   sourceFlags
		workers int
	)

	cmd := &cobra.Command{
		Use:   "stats SAMPLE...",
		Short: "Count tag occurrences in sample files",
		Long: `Stats counts the tag values found in sample files, one record of name=value
tags per line, and prints them ranked by frequency in metadata line format.
Names outside the vocabulary are skipped; new values of known names are
added. Files are split across workers, each counting into its own registry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errNoSamples
			}

			s, err := openSession(cmd.Context(), *configPath, &flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close(cmd.Context()) }()

			merged, err := s.countSamples(cmd.Context(), args, workers)
			if err != nil {
				return err
			}
			return merged.WriteStats(cmd.OutOrStdout())
		},
	}
	flags.AddFlags(cmd.Flags())
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "number of parallel workers")
	return cmd
}

// countSamples counts files across up to workers goroutines and merges the
// per-worker histograms in worker order.
func (s *session) countSamples(ctx context.Context, files []string, workers int) (*lookup.Registry, error) {
	workers = max(1, min(workers, len(files)))
	counted := make([]*lookup.Registry, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			reg, err := s.freshRegistry()
			if err != nil {
				return err
			}
			for i := w; i < len(files); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := readRecordFile(files[i], countInto(reg)); err != nil {
					return err
				}
			}
			counted[w] = reg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := s.freshRegistry()
	if err != nil {
		return nil, err
	}
	for _, reg := range counted {
		merged.MergeStats(reg)
	}
	return merged, nil
}

func countInto(reg *lookup.Registry) func(tags []tag) error {
	return func(tags []tag) error {
		for _, t := range tags {
			if reg.NameIndex(t.name) == lookup.NotFound {
				continue
			}
			reg.Register(t.name, t.value)
		}
		reg.ResetCurrent()
		return nil
	}
}

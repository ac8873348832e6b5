package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/routecost/health"
	"github.com/jonwraymond/routecost/profile"
)

var errUnhealthy = errors.New("routecost: unhealthy")

func newCheckCmd(configPath *string) *cobra.Command {
	var (
		flags  sourceFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "check [SAMPLE...]",
		Short: "Report the health of the loaded vocabularies",
		Long: `Check reports whether any value domain is full. Given sample files, it
also replays their records through the selected context's result cache and
reports the cache hit ratio. The command fails when any check is unhealthy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, *configPath, &flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close(ctx) }()

			agg := health.NewAggregator()
			names := make([]string, 0, len(s.registries))
			for name := range s.registries {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				agg.Register("domain/"+name, health.NewDomainChecker("domain/"+name, s.registries[name]))
			}

			if len(args) > 0 {
				pc, err := s.replay(ctx, args)
				if err != nil {
					return err
				}
				name := "cache/" + pc.Name()
				agg.Register(name, health.NewCacheChecker(name, pc.Stats, s.cfg.CacheChecker()))
			}

			report, status, err := agg.Report(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				err = report.WriteJSON(cmd.OutOrStdout())
			} else {
				err = report.WriteText(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}
			if status == health.StatusUnhealthy {
				return errUnhealthy
			}
			return nil
		},
	}
	flags.AddFlags(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// replay evaluates every sample record in order through a compiled unit
// profile, leaving the cache counters of the returned context populated.
func (s *session) replay(ctx context.Context, files []string) (*profile.Context, error) {
	pc, err := s.evaluator(ctx, unitProfile)
	if err != nil {
		return nil, err
	}
	cd, reg := pc.Codec(), pc.Registry()

	for _, path := range files {
		err := readRecordFile(path, func(tags []tag) error {
			vec, err := vectorOf(reg, tags, false)
			if err != nil {
				return err
			}
			buf, err := cd.Encode(vec)
			if err != nil {
				return err
			}
			_, err = pc.Evaluate(false, buf, nil)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
	}
	return pc, nil
}

// unitProfile sets costfactor to 1 in the way and node sections.
var unitProfile = profile.ParserFunc(func(_ context.Context, d profile.Declarer) ([]profile.Expression, error) {
	if d.Context() == profile.ContextGlobal {
		return nil, nil
	}
	return []profile.Expression{assign{idx: d.LookupVariable(profile.VarCostFactor), value: 1}}, nil
})

type assign struct {
	idx   int
	value float32
}

func (a assign) Evaluate(env profile.Env) float32 {
	return env.WriteVariable(a.idx, a.value)
}

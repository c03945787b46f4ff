package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aoe-motors/lead-tracker/internal/pkg/distlock"
	"github.com/aoe-motors/lead-tracker/internal/service/scoring"
)

type rescorer interface {
	Rescore(ctx context.Context, requestID string, dryRun bool) (*scoring.RescoreResult, error)
}

type rescorerFactory func(ctx context.Context) (rescorer, func(), error)

func newRootCmd(open rescorerFactory) *cobra.Command {
	root := &cobra.Command{
		Use:          "leadctl",
		Short:        "Inspect and repair lead engagement scores",
		SilenceUsage: true,
	}
	root.AddCommand(newRescoreCmd(open), newClassifyCmd())
	return root
}

func newRescoreCmd(open rescorerFactory) *cobra.Command {
	var dryRun, asJSON bool
	cmd := &cobra.Command{
		Use:   "rescore REQUEST_ID...",
		Short: "Recompute scores from the interaction log",
		Long: "Replays each lead's interaction log (first open +1, every video or " +
			"brochure click +2, capped at 15) and writes the result unless --dry-run is set.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			r, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			var failed int
			for _, id := range args {
				res, err := r.Rescore(ctx, strings.TrimSpace(id), dryRun)
				if err != nil {
					failed++
					if errors.Is(err, distlock.ErrNotAcquired) {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: another rescore holds the lock\n", id)
					} else {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", id, err)
					}
					continue
				}
				if err := printResult(cmd, res, asJSON); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d leads failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute without writing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON lines")
	return cmd
}

func printResult(cmd *cobra.Command, res *scoring.RescoreResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return json.NewEncoder(out).Encode(res)
	}
	verb := "unchanged"
	switch {
	case res.Changed && res.DryRun:
		verb = "would change"
	case res.Changed:
		verb = "updated"
	}
	_, err := fmt.Fprintf(out, "%s: %s %d/%s -> %d/%s (%d events)\n",
		res.RequestID, verb, res.PreviousScore, res.PreviousTier, res.Score, res.Tier, res.Events)
	return err
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify EVENT_TYPE",
		Short: "Show how an event type is scored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventType := strings.TrimSpace(args[0])
			rule := scoring.Classify(eventType)
			out := cmd.OutOrStdout()
			switch {
			case !rule.Scored():
				_, err := fmt.Fprintf(out, "%s: not scored (click=%t)\n", eventType, rule.Click)
				return err
			case rule.FirstOccurrenceOnly:
				_, err := fmt.Fprintf(out, "%s: +%d on first occurrence only (click=%t)\n", eventType, rule.Points, rule.Click)
				return err
			default:
				_, err := fmt.Fprintf(out, "%s: +%d every time (click=%t)\n", eventType, rule.Points, rule.Click)
				return err
			}
		},
	}
}

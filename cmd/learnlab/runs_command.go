package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"learnlab/internal/runs"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent generation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			listed, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(listed) == 0 {
				cmd.Println("No runs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(listed))
			for _, run := range listed {
				rows = append(rows, []string{
					shortID(run.ID),
					run.OutputType,
					string(run.Status),
					runs.StageLabel(run.Stage),
					yesNo(run.CacheHit),
					truncate(run.Question, 48),
					run.CreatedAt.Local().Format(time.DateTime),
				})
			}
			cmd.Println(renderTable(
				[]string{"Run", "Type", "Status", "Stage", "Cached", "Question", "Started"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}

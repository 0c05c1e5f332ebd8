package main

import (
	"time"

	"github.com/spf13/cobra"

	"learnlab/internal/cache"
	"learnlab/internal/config"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the podcast cache",
	}
	cmd.AddCommand(newCacheShowCommand(ctx))
	cmd.AddCommand(newCacheClearCommand(ctx))
	return cmd
}

func openCache(cfg *config.Config) (*cache.Store, error) {
	return cache.Open(cfg.CacheDir(), time.Duration(cfg.Cache.TTLHours)*time.Hour)
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List cached podcast bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Entries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("Cache is empty.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, bundle := range entries {
				rows = append(rows, []string{
					truncate(bundle.Topic, 48),
					bundle.DocumentID,
					bundle.AudioURL,
					bundle.CreatedAt,
				})
			}
			cmd.Println(renderTable(
				[]string{"Topic", "Document", "Audio", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached podcast bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear()
			if err != nil {
				return err
			}
			cmd.Printf("Removed %d cached bundle(s).\n", removed)
			return nil
		},
	}
}

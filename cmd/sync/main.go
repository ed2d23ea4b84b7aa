// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command sync runs one list synchronisation job and exits.
//
//	sync mangadex          copy MangaDex reading statuses into the library
//	sync mangadex-ratings  store the ratings of the followed MangaDex titles
//	sync mangaupdates      two-way sync of the MangaUpdates reading lists
//
// It shares the bootstrap of the API server without serving HTTP, so it can be
// scheduled from cron or a Kubernetes CronJob. A failed run, including one
// refused because another run holds the lock, exits with status 1.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "sync",
	Short:         "Run one shelfsync list synchronisation",
	Long:          `Synchronise the library with the configured MangaDex and MangaUpdates accounts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(mangadexCmd, mangadexRatingsCmd, mangaupdatesCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/hyperengineering/boxoffice/internal/assistant"
	"github.com/hyperengineering/boxoffice/internal/config"
	"github.com/hyperengineering/boxoffice/internal/store"
	"github.com/spf13/cobra"
)

var eventsDBPath string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List all events in the database",
	Args:  cobra.NoArgs,
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsDBPath, "db", "",
		"Database path (overrides config and BOXOFFICE_DB_PATH)")
}

func runEvents(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	dbPath := eventsDBPath
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dbPath = cfg.Database.Path
	}

	db, err := store.NewEventStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	events, err := db.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	if len(events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events found.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), assistant.FormatEventTable(events))
	return nil
}

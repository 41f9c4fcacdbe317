package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/padsync/padsync"
	"github.com/padsync/padsync/pkg/core"
	"github.com/spf13/cobra"
)

var (
	statusWatch bool
	statusJSON  bool
)

var statusCmd = &cobra.Command{
	Use:   "status [pattern]",
	Short: "Show the sync state of vault documents",
	Long: `Status lists documents matching the glob pattern (all markdown documents
by default) and whether each is linked and locally modified since its last
sync. With --watch it keeps reporting as files change on disk. Status never
touches the network.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}

		engine := newEngine()
		printStatuses(engine, pattern)

		if !statusWatch {
			return
		}

		v, err := padsync.Init(vaultPath, padsync.WithLogger(slog.Default()))
		if err != nil {
			fatal("Failed to open vault", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		changes, err := v.Watch(ctx)
		if err != nil {
			fatal("Failed to start watcher", err)
		}

		for range changes {
			printStatuses(engine, pattern)
		}
	},
}

func printStatuses(engine *core.Engine, pattern string) {
	statuses, err := engine.Status(pattern)
	if err != nil {
		report(err)
	}

	if statusJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(statuses); err != nil {
			fatal("Failed to encode JSON", err)
		}
		return
	}

	for _, st := range statuses {
		switch {
		case !st.Linked:
			fmt.Printf("  unsynced  %s\n", st.Path)
		case st.Dirty:
			fmt.Printf("  modified  %s (%s)\n", st.Path, st.URL)
		default:
			fmt.Printf("  synced    %s (%s)\n", st.Path, st.URL)
		}
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Keep reporting as files change")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/padsync/padsync"
	"github.com/padsync/padsync/pkg/core"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	vaultPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "padsync",
	Short: "Keep local markdown documents in sync with a pad host",
	Long: `padsync pairs markdown documents in a local vault with remotely hosted
notes. Sync metadata lives in each document's front matter; conflicts are
detected and surfaced, never silently merged.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&vaultPath, "vault", ".", "Vault directory")
}

// newEngine builds the sync engine from configuration and global flags.
func newEngine() *core.Engine {
	cfg, err := padsync.LoadConfig(vaultPath)
	if err != nil {
		fatal("Failed to load configuration", err)
	}

	engine, err := padsync.New(vaultPath,
		padsync.WithConfig(cfg),
		padsync.WithLogger(slog.Default()),
	)
	if err != nil {
		fatal("Failed to open vault", err)
	}
	return engine
}

// report converts a classified error into the single user-visible message
// for this invocation and exits non-zero. This is the only place the
// taxonomy becomes user-facing text.
func report(err error) {
	var msg string
	switch core.KindOf(err) {
	case core.KindAuthRequired:
		msg = "No access token configured. Set PADSYNC_ACCESS_TOKEN or add access-token to your config."
	case core.KindAuthInvalid:
		msg = "The pad host rejected your access token. Generate a new one and update your config."
	case core.KindPermissionDenied:
		msg = "You do not have permission to modify this note."
	case core.KindNoteNotFound:
		msg = "The remote note no longer exists."
	case core.KindRateLimited:
		msg = "The pad host is rate-limiting requests. Try again in a moment."
	case core.KindServerError:
		msg = "The pad host reported a server error. Try again later."
	case core.KindConnectionFailed:
		msg = "Could not reach the pad host. Check your connection."
	case core.KindConflictRemote:
		msg = "The remote note changed since the last sync. Pull first, or push with --force to overwrite it."
	case core.KindConflictLocal:
		msg = "The local document changed since the last sync. Push first, or pull with --force to overwrite it."
	case core.KindMetadataMissing:
		msg = "This document is linked but has no lastSync record. Use --force to sync anyway."
	case core.KindNotLinked:
		msg = "This document is not linked to a remote note. Push it first."
	case core.KindInvalidURL:
		msg = "That is not a recognized note URL."
	case core.KindNoDocument:
		msg = "No such document in the vault."
	default:
		msg = err.Error()
	}
	fmt.Fprintln(os.Stderr, "Error:", msg)
	os.Exit(1)
}

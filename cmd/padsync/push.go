package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var pushForce bool

var pushCmd = &cobra.Command{
	Use:   "push [file]",
	Short: "Upload a document to the pad host",
	Long: `Push creates a remote note for an unsynced document, or updates the
linked note's content. Unless --force is given, the push is rejected when
the remote note changed since the last sync.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine := newEngine()

		note, err := engine.Push(context.Background(), args[0], pushForce)
		if err != nil {
			report(err)
		}

		fmt.Printf("Pushed %s (note %s)\n", args[0], note.ID)
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().BoolVarP(&pushForce, "force", "f", false, "Skip the conflict check and overwrite the remote note")
}

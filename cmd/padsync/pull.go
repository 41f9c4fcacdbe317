package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var pullForce bool

var pullCmd = &cobra.Command{
	Use:   "pull [file]",
	Short: "Download the linked remote note into a document",
	Long: `Pull replaces the document's body with the linked note's content and
refreshes its sync metadata. Unless --force is given, the pull is rejected
when the local document changed since the last sync.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine := newEngine()

		note, err := engine.Pull(context.Background(), args[0], pullForce)
		if err != nil {
			report(err)
		}

		fmt.Printf("Pulled %s (note %s)\n", args[0], note.ID)
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
	pullCmd.Flags().BoolVarP(&pullForce, "force", "f", false, "Skip the conflict check and overwrite the local document")
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cloneCmd = &cobra.Command{
	Use:   "clone [url]",
	Short: "Create a vault document from a remote note URL",
	Long: `Clone fetches the note behind a share URL and materializes it as a new
vault document, linked and ready to sync. When a document linked to that
note already exists, no duplicate is created and the existing document is
reported instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine := newEngine()

		res, err := engine.Clone(context.Background(), args[0])
		if err != nil {
			report(err)
		}

		if res.Existing {
			fmt.Printf("Already linked: %s\n", res.Path)
			return
		}
		fmt.Printf("Cloned into %s\n", res.Path)
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}

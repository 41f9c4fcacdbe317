package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var urlCmd = &cobra.Command{
	Use:   "url [file]",
	Short: "Print the canonical remote URL of a linked document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine := newEngine()

		u, err := engine.RemoteURL(args[0])
		if err != nil {
			report(err)
		}

		fmt.Println(u)
	},
}

func init() {
	rootCmd.AddCommand(urlCmd)
}

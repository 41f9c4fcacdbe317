package main

import (
	"fmt"

	"github.com/padsync/padsync"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of padsync",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("padsync version %s\n", padsync.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

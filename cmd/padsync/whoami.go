package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Verify the access token and print the current user",
	Run: func(cmd *cobra.Command, args []string) {
		engine := newEngine()

		user, err := engine.Whoami(context.Background())
		if err != nil {
			report(err)
		}

		fmt.Printf("%s (%s)\n", user.Name, user.UserPath)
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

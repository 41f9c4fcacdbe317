package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete [file]",
	Short: "Delete the linked remote note and unlink the document",
	Long: `Delete removes the remote note from the pad host and strips the sync
metadata from the document's front matter. The local document and its
unrelated metadata are kept. Deleting a note that is already gone from the
server still succeeds.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine := newEngine()

		confirm := promptConfirm
		if deleteYes {
			confirm = nil
		}

		deleted, err := engine.Delete(context.Background(), args[0], confirm)
		if err != nil {
			report(err)
		}
		if !deleted {
			fmt.Println("Aborted.")
			return
		}

		fmt.Printf("Deleted remote note and unlinked %s\n", args[0])
	},
}

// promptConfirm asks on stdin. Anything but y/yes declines.
func promptConfirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}

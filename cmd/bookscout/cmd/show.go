package cmd

import (
	"fmt"
	"os"
	"strconv"

	"bookscout/lib/display"
	"bookscout/lib/notify"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show N",
	Short: "Identifies result N from the last search. Does not navigate anywhere.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "%q is not a result position\n", args[0])
			os.Exit(1)
		}

		records, err := store.LoadLastResults(cmd.Context())
		if err != nil {
			notifier.Notify(err.Error(), notify.Error)
			os.Exit(1)
		}
		if n > len(records) {
			notifier.Notify(fmt.Sprintf("no result at position %d", n), notify.Error)
			os.Exit(1)
		}

		record := records[n-1]
		notifier.Notify(display.Describe(record), notify.Success)
		if record.Url != "" {
			fmt.Printf("listing: %s\n", record.Url)
		}
	},
}

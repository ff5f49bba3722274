package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bookscout/lib/display"
	"bookscout/lib/historystore"
	"bookscout/lib/notify"

	"github.com/spf13/cobra"
)

var (
	historyMatch string
	clearYes     bool
)

func init() {
	historyCmd.Flags().StringVar(&historyMatch, "match", "", "only show entries matching this term")
	historyClearCmd.Flags().BoolVar(&clearYes, "yes", false, "skip the confirmation prompt")
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyReplayCmd)
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Prints the most recent searches, newest first.",
	Run: func(cmd *cobra.Command, args []string) {
		entries := store.List()
		if historyMatch != "" {
			entries = historystore.Match(entries, historyMatch)
		}

		shown := display.RenderHistory(os.Stdout, entries, time.Now())
		if shown {
			fmt.Println(`(use "bookscout history replay N" to refill the form, "bookscout history clear" to wipe)`)
		}
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Deletes the entire search history after confirmation.",
	Run: func(cmd *cobra.Command, args []string) {
		confirmed := clearYes
		if !confirmed {
			fmt.Print("Clear all search history? [y/N]: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				os.Exit(1)
			}
			answer := strings.ToLower(strings.TrimSpace(line))
			confirmed = answer == "y" || answer == "yes"
		}

		cleared, err := store.Clear(cmd.Context(), confirmed)
		if err != nil {
			notifier.Notify(err.Error(), notify.Error)
			os.Exit(1)
		}
		if !cleared {
			fmt.Println("history unchanged")
			return
		}
		notifier.Notify("search history cleared", notify.Success)
	},
}

var historyReplayCmd = &cobra.Command{
	Use:   "replay N",
	Short: "Refills the search form from history entry N without submitting.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "%q is not a history position\n", args[0])
			os.Exit(1)
		}

		state, err := store.Replay(n - 1)
		if err != nil {
			notifier.Notify(err.Error(), notify.Error)
			os.Exit(1)
		}

		display.RenderForm(os.Stdout, state.BookName, state.Isbn, state.Author, state.Site)
		fmt.Println(`(nothing was submitted; run "bookscout search" with these values or "bookscout session" to edit them)`)
	},
}

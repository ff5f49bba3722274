package cmd

import (
	"fmt"
	"os"
	"time"

	"bookscout/lib/display"
	"bookscout/lib/notify"
	"bookscout/lib/searchform"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var searchForm searchform.State

func init() {
	searchCmd.Flags().StringVar(&searchForm.BookName, "title", "", "book title to search for")
	searchCmd.Flags().StringVar(&searchForm.Isbn, "isbn", "", "ISBN to search for")
	searchCmd.Flags().StringVar(&searchForm.Author, "author", "", "author to search for")
	searchCmd.Flags().StringVar(&searchForm.Site, "site", "openlibrary", "retailer site to search")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Searches the selected site and records the query in history.",
	Run: func(cmd *cobra.Command, args []string) {
		// advisory only, never blocks submission
		if searchform.FieldFeedback("isbn", searchForm.Isbn) == searchform.FeedbackInvalid {
			fmt.Fprintln(os.Stderr, text.FgYellow.Sprint("note: that does not look like an ISBN"))
		}

		query := searchForm.Collect(time.Now())
		err := searchform.Validate(query)
		if err != nil {
			// caught before any network call; nothing the user typed is lost
			notifier.Notify(err.Error(), notify.Error)
			os.Exit(1)
		}

		ctx := cmd.Context()
		res, err := client.Search(ctx, query)
		if err != nil {
			notifier.Notify(err.Error(), notify.Error)
			os.Exit(1)
		}

		capture := display.RenderResults(os.Stdout, res)
		if capture != nil {
			err = store.SaveLastResults(ctx, capture.Records)
		} else {
			// an empty result set invalidates the previous capture,
			// otherwise export would ship records the user is no
			// longer looking at
			err = store.ClearLastResults(ctx)
		}
		if err != nil {
			notifier.Notify(err.Error(), notify.Error)
			os.Exit(1)
		}

		_, err = store.Record(ctx, query, time.Now())
		if err != nil {
			notifier.Notify(err.Error(), notify.Error)
			os.Exit(1)
		}

		message := res.Message
		if message == "" {
			message = fmt.Sprintf("found %d books", len(res.Results))
		}
		notifier.Notify(message, notify.Success)
		if capture != nil {
			fmt.Println(`(use "bookscout export" to export these results, "bookscout show N" to inspect one)`)
		}
	},
}

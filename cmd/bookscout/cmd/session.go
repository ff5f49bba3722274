package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"bookscout/lib/autosave"
	"bookscout/lib/bookapi"
	"bookscout/lib/display"
	"bookscout/lib/notify"
	"bookscout/lib/searchform"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Interactive search form with draft autosave and restore.",
	Run: func(cmd *cobra.Command, args []string) {
		runSession(cmd.Context())
	},
}

// prompt reads one field value. An empty line keeps the current value,
// "-" clears it.
func prompt(reader *bufio.Reader, label, current string) (string, error) {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return current, err
	}
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return current, nil
	case "-":
		return "", nil
	}
	return line, nil
}

func runSession(ctx context.Context) {
	reader := bufio.NewReader(os.Stdin)

	var mu sync.Mutex
	var form searchform.State

	// the draft is restored at most once per session and quietly: no
	// validation feedback and no network calls happen here
	draft, found, err := store.LoadDraft(ctx)
	if err != nil {
		notifier.Notify(err.Error(), notify.Error)
	} else if found {
		form = draft
		fmt.Println("restored your saved draft:")
		display.RenderForm(os.Stdout, form.BookName, form.Isbn, form.Author, form.Site)
	}

	task := autosave.NewTask(autosave.DefaultInterval, func(ctx context.Context) error {
		mu.Lock()
		snapshot := form
		mu.Unlock()
		return store.SaveDraft(ctx, snapshot)
	})
	task.Start(ctx)
	defer task.Stop()

	for {
		err := editForm(reader, &mu, &form)
		if err != nil {
			return
		}

		query := form.Collect(time.Now())
		err = searchform.Validate(query)
		if err != nil {
			// the form keeps what the user typed
			notifier.Notify(err.Error(), notify.Error)
			continue
		}

		res, err := client.Search(ctx, query)
		if err != nil {
			notifier.Notify(err.Error(), notify.Error)
			continue
		}

		capture := display.RenderResults(os.Stdout, res)
		if capture != nil {
			err = store.SaveLastResults(ctx, capture.Records)
		} else {
			err = store.ClearLastResults(ctx)
		}
		if err != nil {
			notifier.Notify(err.Error(), notify.Error)
		}

		_, err = store.Record(ctx, query, time.Now())
		if err != nil {
			notifier.Notify(err.Error(), notify.Error)
		}

		if capture == nil {
			continue
		}

		stop, err := resultActions(ctx, reader, capture.Records)
		if stop || err != nil {
			return
		}
	}
}

func editForm(reader *bufio.Reader, mu *sync.Mutex, form *searchform.State) error {
	fields := []struct {
		label string
		name  string
		get   func() string
		set   func(string)
	}{
		{"Title", "bookName", func() string { return form.BookName }, func(v string) { form.BookName = v }},
		{"ISBN", "isbn", func() string { return form.Isbn }, func(v string) { form.Isbn = v }},
		{"Author", "author", func() string { return form.Author }, func(v string) { form.Author = v }},
		{fmt.Sprintf("Site (%s)", strings.Join(bookapi.Sites, "/")), "site", func() string { return form.Site }, func(v string) { form.Site = v }},
	}

	for _, f := range fields {
		value, err := prompt(reader, f.label, f.get())
		if err != nil {
			return err
		}
		mu.Lock()
		f.set(value)
		mu.Unlock()

		// advisory per-field cue, never blocks submission
		if searchform.FieldFeedback(f.name, value) == searchform.FeedbackInvalid {
			fmt.Println(text.FgYellow.Sprint("  note: that does not look like an ISBN"))
		}
	}
	return nil
}

func resultActions(ctx context.Context, reader *bufio.Reader, records []bookapi.BookRecord) (stop bool, err error) {
	for {
		fmt.Print("action (N to select, export, search, quit): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return true, err
		}
		line = strings.TrimSpace(strings.ToLower(line))

		switch {
		case line == "quit" || line == "q":
			return true, nil
		case line == "search" || line == "":
			return false, nil
		case line == "export":
			runExport(ctx, records)
		default:
			n, convErr := strconv.Atoi(line)
			if convErr != nil || n < 1 || n > len(records) {
				fmt.Println("try a result number, export, search, or quit")
				continue
			}
			notifier.Notify(display.Describe(records[n-1]), notify.Success)
		}
	}
}

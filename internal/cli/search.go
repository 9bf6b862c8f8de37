package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/slimeyayush/altair-frontend/internal/search"
)

func newSearchCommand(rt *runtime) *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search products; -i reads queries from stdin as you type",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return runInteractiveSearch(rt, cmd)
			}
			if len(args) == 0 {
				return NewExitError(ExitUsage, "a query is required without -i")
			}
			return runSearchOnce(rt, cmd, strings.Join(args, " "))
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read one query per line and search after a pause")
	return cmd
}

// runInteractiveSearch feeds every stdin line to a debouncer. Lines arriving
// faster than the debounce delay only search for the last one. At end of
// input it waits for the final query's result.
func runInteractiveSearch(rt *runtime, cmd *cobra.Command) error {
	a, err := rt.App(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	deb := a.NewSearch(ctx)
	defer deb.Close()

	results := make(chan search.Result, 8)
	unsub := deb.Subscribe(func(r search.Result) {
		select {
		case results <- r:
		case <-ctx.Done():
		}
	})
	defer unsub()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	out := rt.out()
	show := func(r search.Result) error {
		return out.Print(r, func(w io.Writer) {
			fmt.Fprintf(w, "Results for %q:\n", r.Query)
			renderProducts(w, r.Products)
		})
	}

	var last string
	for lines != nil {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			last = strings.TrimSpace(line)
			deb.Input(last)
		case r := <-results:
			if err := show(r); err != nil {
				return err
			}
			if r.Query == last {
				last = ""
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if last == "" {
		return nil
	}

	wait := time.NewTimer(a.Config().SearchDebounce + a.Config().RequestTimeout)
	defer wait.Stop()
	for {
		select {
		case r := <-results:
			if err := show(r); err != nil {
				return err
			}
			if r.Query == last {
				return nil
			}
		case <-wait.C:
			return NewExitError(ExitFailure, "search for %q timed out", last)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

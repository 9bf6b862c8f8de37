package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slimeyayush/altair-frontend/pkg/health"
)

func newDoctorCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check local storage and the backend connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			rep := a.Checks().Run(cmd.Context())
			if rep.Status != health.StatusDown {
				return rt.out().Print(rep, func(w io.Writer) { renderReport(w, rep) })
			}
			// JSON output carries only the error envelope.
			if rt.opts.Format == FormatText {
				renderReport(rt.streams.Out, rep)
			}
			return NewExitError(ExitFailure, "storefront is not ready: %s", failedChecks(rep))
		},
	}
}

func renderReport(w io.Writer, rep health.Report) {
	for _, c := range rep.Checks {
		line := fmt.Sprintf("%-8s %-4s %4dms", c.Name, c.Status, c.LatencyMS)
		if c.Error != "" {
			line += "  " + c.Error
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "overall: %s\n", rep.Status)
}

func failedChecks(rep health.Report) string {
	var names []string
	for _, c := range rep.Checks {
		if c.Status == health.StatusDown && c.Critical {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, ", ")
}

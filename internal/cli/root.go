// Package cli is the storefront's terminal client.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/slimeyayush/altair-frontend/internal/app"
	"github.com/slimeyayush/altair-frontend/internal/config"
	"github.com/slimeyayush/altair-frontend/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON}

// Loader builds the application for one invocation.
type Loader func(ctx context.Context, opts *RootOptions) (*app.App, error)

// DefaultLoader reads the environment and logs to stderr.
func DefaultLoader(stderr io.Writer) Loader {
	return func(ctx context.Context, opts *RootOptions) (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, WrapExitError(ExitUsage, "invalid configuration", err)
		}
		level := cfg.LogLevel
		if opts.Verbose {
			level = "debug"
		}
		log := logger.NewWithWriter(app.ServiceName, level, cfg.LogFormat, stderr)
		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return nil, WrapExitError(ExitFailure, "start storefront", err)
		}
		return a, nil
	}
}

// Streams are the process's standard streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// runtime builds the application on first use and shares it between the
// command and its post-run hook.
type runtime struct {
	opts    *RootOptions
	load    Loader
	streams Streams
	app     *app.App
}

func (r *runtime) App(cmd *cobra.Command) (*app.App, error) {
	if r.app != nil {
		return r.app, nil
	}
	a, err := r.load(cmd.Context(), r.opts)
	if err != nil {
		return nil, err
	}
	a.Start(cmd.Context())
	r.app = a
	return a, nil
}

func (r *runtime) out() *OutputFormatter {
	return &OutputFormatter{Format: r.opts.Format, Writer: r.streams.Out, ErrWriter: r.streams.Err}
}

func (r *runtime) shutdown(ctx context.Context) {
	if r.app == nil {
		return
	}
	_ = r.app.Shutdown(ctx)
	r.app = nil
}

// Execute runs the command line in args and returns the process exit code.
func Execute(ctx context.Context, args []string, streams Streams, load Loader) int {
	rt := &runtime{opts: &RootOptions{Format: FormatText}, load: load, streams: streams}
	cmd := newRootCommand(rt)
	cmd.SetArgs(args)
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)

	err := cmd.ExecuteContext(ctx)
	rt.shutdown(context.WithoutCancel(ctx))
	if err != nil {
		rt.out().Fail(err)
	}
	return ExitCodeFor(err)
}

func newRootCommand(rt *runtime) *cobra.Command {
	opts := rt.opts
	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Altair Medical storefront",
		Long:          "Browse the Altair Medical catalog, manage your cart, check out and run the back office.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitUsage, "invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cmd.SetContext(logger.WithCorrelationID(cmd.Context(), uuid.NewString()))
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitUsage, "invalid flags", err)
	})

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug output to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json)")

	cmd.AddCommand(newProductsCommand(rt))
	cmd.AddCommand(newSearchCommand(rt))
	cmd.AddCommand(newCartCommand(rt))
	cmd.AddCommand(newCheckoutCommand(rt))
	cmd.AddCommand(newLoginCommand(rt))
	cmd.AddCommand(newLogoutCommand(rt))
	cmd.AddCommand(newWhoamiCommand(rt))
	cmd.AddCommand(newProfileCommand(rt))
	cmd.AddCommand(newRentCPAPCommand(rt))
	cmd.AddCommand(newContactCommand(rt))
	cmd.AddCommand(newAdminCommand(rt))
	cmd.AddCommand(newDoctorCommand(rt))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitUsage, "invalid %s id %q", kind, s)
	}
	return id, nil
}

func parseInt(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, NewExitError(ExitUsage, "invalid %s %q", name, s)
	}
	return n, nil
}

// message is the JSON payload of commands that only report a line of text.
type message struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

func printMessage(rt *runtime, text string) error {
	return rt.out().Print(message{Message: text}, func(w io.Writer) {
		fmt.Fprintln(w, text)
	})
}

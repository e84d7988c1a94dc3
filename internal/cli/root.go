package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	ConfigPath string
	Document   string
	Database   string
	RedisURL   string
	Instance   string

	// Logger is built from Verbose before any subcommand runs.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the autoedit CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "autoedit",
		Short: "Edit automation records and inspect their traces",
		Long: `autoedit keeps a YAML document of automation records.

Records are addressed by their id. Writing a record merges the new fields
into the existing ones and keeps the document's order; records without an
id get one assigned. Every write requests a reload over the service bus.
Recorded runs of each automation can be listed and inspected.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			logLevel := slog.LevelInfo
			if opts.Verbose {
				logLevel = slog.LevelDebug
			}
			opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: logLevel,
			}))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "path to autoedit.yml")
	flags.StringVar(&opts.Document, "document", "", "records document (overrides config)")
	flags.StringVar(&opts.Database, "db", "", "trace database (overrides config)")
	flags.StringVar(&opts.RedisURL, "redis", "", "redis URL of the service bus (overrides config)")
	flags.StringVar(&opts.Instance, "instance", "", "service bus instance name (overrides config)")

	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

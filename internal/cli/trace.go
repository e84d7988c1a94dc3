package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/autoedit/internal/editor"
	"github.com/roach88/autoedit/internal/trace"
)

// ImportResult is the payload of trace import.
type ImportResult struct {
	Imported int `json:"imported"`
}

// NewTraceCommand creates the trace command group.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded runs",
		Long: `Inspect the recorded runs of each automation.

Examples:
  autoedit trace list
  autoedit trace get morning --format json
  autoedit trace import runs.json`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [id]",
		Short: "Show full traces for one automation, or for all when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = editor.NormalizeID(args[0])
			}
			return runTraceQuery(rootOpts, cmd, func(q *trace.Query) (map[string][]trace.Trace, error) {
				return q.Get(cmd.Context(), id)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Summarize recorded runs of every automation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraceQuery(rootOpts, cmd, func(q *trace.Query) (map[string][]trace.Trace, error) {
				return q.List(cmd.Context())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Append runs from a JSON array of traces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraceImport(rootOpts, args[0], cmd)
		},
	})

	return cmd
}

func runTraceQuery(opts *RootOptions, cmd *cobra.Command, query func(*trace.Query) (map[string][]trace.Trace, error)) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return formatter.Fail(ErrCodeStorage, ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	traces, err := query(trace.NewQuery(st))
	if err != nil {
		return formatter.Fail(ErrCodeStorage, ExitCommandError, "failed to query traces", err)
	}

	return formatter.Render(traces, func(w io.Writer) error {
		return writeTracesText(w, traces, opts.Verbose)
	})
}

func runTraceImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return formatter.Fail(ErrCodeInvalid, ExitFailure, "failed to read traces", err)
	}
	var traces []trace.Trace
	if err := json.Unmarshal(data, &traces); err != nil {
		return formatter.Fail(ErrCodeInvalid, ExitFailure, "failed to parse traces", err)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return formatter.Fail(ErrCodeStorage, ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	for i, tr := range traces {
		if tr.Domain == "" {
			tr.Domain = cfg.Domain
		}
		if err := st.Append(cmd.Context(), tr); err != nil {
			return formatter.Fail(ErrCodeStorage, ExitCommandError, fmt.Sprintf("failed to import trace %d", i), err)
		}
		formatter.VerboseLog("imported %s for %s", tr.RunID, tr.ItemID)
	}

	result := ImportResult{Imported: len(traces)}
	return formatter.Render(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "imported %d traces\n", result.Imported)
		return err
	})
}

var (
	stateOK      = color.New(color.FgGreen).SprintFunc()
	stateFailed  = color.New(color.FgRed).SprintFunc()
	stateRunning = color.New(color.FgYellow).SprintFunc()
)

// writeTracesText prints traces grouped by item, items sorted by id.
func writeTracesText(w io.Writer, traces map[string][]trace.Trace, verbose bool) error {
	if len(traces) == 0 {
		_, err := fmt.Fprintln(w, "No traces recorded")
		return err
	}

	ids := make([]string, 0, len(traces))
	for id := range traces {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Fprintf(w, "%s\n", id)
		if len(traces[id]) == 0 {
			fmt.Fprintln(w, "  (no runs)")
			continue
		}
		for _, tr := range traces[id] {
			fmt.Fprintf(w, "  %s  %-8s  %s  %s\n",
				tr.RunID,
				stateLabel(tr),
				tr.Timestamp.Start.UTC().Format(time.RFC3339),
				duration(tr))
			if tr.Error != "" {
				fmt.Fprintf(w, "      error: %s\n", tr.Error)
			}
			if verbose {
				if tr.Trigger != "" {
					fmt.Fprintf(w, "      trigger: %s\n", tr.Trigger)
				}
				if tr.LastStep != "" {
					fmt.Fprintf(w, "      last step: %s\n", tr.LastStep)
				}
			}
		}
	}
	return nil
}

func stateLabel(tr trace.Trace) string {
	switch {
	case tr.State == trace.StateRunning:
		return stateRunning(tr.State)
	case tr.Error != "":
		return stateFailed("error")
	default:
		return stateOK(tr.State)
	}
}

func duration(tr trace.Trace) string {
	if !tr.Finished() {
		return "-"
	}
	return tr.Timestamp.Finish.Sub(tr.Timestamp.Start).String()
}

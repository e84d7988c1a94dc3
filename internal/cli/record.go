package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/autoedit/internal/editor"
	"github.com/roach88/autoedit/internal/record"
)

// SetOptions holds flags for the set command.
type SetOptions struct {
	*RootOptions
	File string
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Create or update a record",
		Long: `Merge fields into the record with the given id, creating it when absent.

The body is a YAML (or JSON) mapping read from --file, or from stdin when
--file is "-". Without --file the record is created with only its id.
Fields in the body replace fields of the same name; other fields are kept.

Examples:
  autoedit set morning --file morning.yaml
  echo 'alias: Morning' | autoedit set morning --file -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", `body file ("-" for stdin)`)

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}
}

func runGet(opts *RootOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	ed, closeFn, err := openEditor(cfg, opts.logger())
	if err != nil {
		return formatter.Fail(ErrCodeConfig, ExitCommandError, "failed to set up editor", err)
	}
	defer closeFn()

	rec, err := ed.Get(cmd.Context(), id)
	if err != nil {
		return formatter.FailEditor("get failed", err)
	}

	return formatter.Render(rec, func(w io.Writer) error {
		data, err := yaml.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
}

func runSet(opts *SetOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	body, err := readBody(opts.File, cmd.InOrStdin())
	if err != nil {
		return formatter.Fail(ErrCodeInvalid, ExitFailure, "failed to read body", err)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	ed, closeFn, err := openEditor(cfg, opts.logger())
	if err != nil {
		return formatter.Fail(ErrCodeConfig, ExitCommandError, "failed to set up editor", err)
	}
	defer closeFn()

	formatter.VerboseLog("writing %s to %s", id, cfg.Document)
	result, err := ed.Upsert(cmd.Context(), id, body)
	if err != nil {
		return formatter.FailEditor("set failed", err)
	}

	return formatter.Render(result, func(w io.Writer) error {
		verb := "updated"
		if result.Action == editor.ActionCreate {
			verb = "created"
		}
		_, err := fmt.Fprintf(w, "%s %s (index %d)\n", verb, result.ID, result.Index)
		return err
	})
}

func runDelete(opts *RootOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	ed, closeFn, err := openEditor(cfg, opts.logger())
	if err != nil {
		return formatter.Fail(ErrCodeConfig, ExitCommandError, "failed to set up editor", err)
	}
	defer closeFn()

	result, err := ed.Apply(cmd.Context(), editor.Request{ID: id, Action: editor.ActionDelete})
	if err != nil {
		return formatter.FailEditor("delete failed", err)
	}

	return formatter.Render(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "deleted %s\n", result.ID)
		return err
	})
}

// readBody loads a request body from path, or from stdin when path is "-".
// An empty path or blank input yields a nil body.
func readBody(path string, stdin io.Reader) (*record.Record, error) {
	if path == "" {
		return nil, nil
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	body := record.New()
	if err := yaml.Unmarshal(data, body); err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}
	return body, nil
}

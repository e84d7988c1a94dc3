package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	return runCLIContext(context.Background(), t, stdin, args...)
}

func runCLIContext(ctx context.Context, t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// workspace returns --document and --db flags pointing into a temp dir.
func workspace(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{
		"--document", filepath.Join(dir, "automations.yaml"),
		"--db", filepath.Join(dir, "traces.db"),
	}
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "autoedit", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"get"}, {"set"}, {"delete"}, {"watch"},
		{"trace", "get"}, {"trace", "list"}, {"trace", "import"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "document", "db", "redis", "instance"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := runCLI(t, nil, append(workspace(t), "--format", "xml", "trace", "list")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestMissingConfigFile(t *testing.T) {
	_, stderr, err := runCLI(t, nil, "--config", "/nonexistent/autoedit.yml", "get", "abc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "Error [E003]")
}

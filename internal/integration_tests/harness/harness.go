// Package harness runs the application end to end for the integration
// tests: files are written to a temporary catalog directory, arguments go
// through the real CLI parser, and the selected action runs to completion.
package harness

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/curriculum/internal/app"
	"github.com/vk/curriculum/internal/cli"
	"github.com/vk/curriculum/internal/testutil"
)

// Result holds the outcomes of an integration test run.
type Result struct {
	Dir       string
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// Run writes files into a fresh catalog directory and runs the application
// with args followed by that directory as the catalog path.
func Run(t *testing.T, files map[string]string, args ...string) *Result {
	t.Helper()
	return RunWithContext(context.Background(), t, files, args...)
}

// RunWithContext is Run with a caller-provided context.
func RunWithContext(ctx context.Context, t *testing.T, files map[string]string, args ...string) *Result {
	t.Helper()

	dir := testutil.WriteFiles(t, files)
	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}
	res := &Result{Dir: dir}

	t.Cleanup(func() {
		if os.Getenv("CURRICULUM_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	fullArgs := append([]string{"-log-level", "debug"}, args...)
	fullArgs = append(fullArgs, dir)
	cfg, exit, err := cli.Parse(fullArgs, out)
	require.NoError(t, err, "cli.Parse() failed")
	require.False(t, exit, "cli.Parse() asked to exit")

	loader, saver, err := app.SelectLoader(cfg.CatalogPath, cfg.DataDir)
	require.NoError(t, err)

	res.App, res.Err = app.NewApp(out, logs, cfg, loader, saver)
	if res.Err == nil {
		res.Err = res.App.Run(ctx)
	}

	res.Output = out.String()
	res.LogOutput = logs.String()
	return res
}

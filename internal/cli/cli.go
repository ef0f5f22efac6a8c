package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/curriculum/internal/app"
	"github.com/vk/curriculum/internal/catalog"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Values come from the defaults, then the -config settings file, then any
// flag given explicitly.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("curriculum", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprintf(output, `
Curriculum - prerequisite graph and eligibility engine for a study programme.

Usage:
  curriculum [options] [CATALOG_PATH]

Arguments:
  CATALOG_PATH
    Path to a .hcl file, a directory of .hcl files, or a JSON data directory.

Actions:
  %s

Options:
`, strings.Join(app.Actions, ", "))
		flagSet.PrintDefaults()
	}

	defaults := app.DefaultConfig()

	catalogFlag := flagSet.String("catalog", "", "Path to the catalog file or directory.")
	cFlag := flagSet.String("c", "", "Path to the catalog file or directory (shorthand).")
	settingsFlag := flagSet.String("config", "", "Path to a YAML settings file.")
	dataDirFlag := flagSet.String("data-dir", "", "Directory where edits and backups are written.")
	actionFlag := flagSet.String("action", defaults.Action, "Action to run.")
	courseFlag := flagSet.String("course", "", "Target course code for the eligibility action.")
	completedFlag := flagSet.String("completed", "", "Comma-separated list of completed course codes.")
	transitiveFlag := flagSet.Bool("transitive", defaults.Transitive, "Require every transitive prerequisite, not just direct ones.")
	formatFlag := flagSet.String("format", defaults.ExportFormat, "Export format. Options: 'json', 'csv' or 'xlsx'.")
	outFlag := flagSet.String("out", "", "Write the export to this file instead of standard output.")
	backupFlag := flagSet.String("backup-name", "", "Name of the backup to write, or to restore with the restore action.")
	portFlag := flagSet.Int("port", defaults.HTTPPort, "Port for the HTTP API of the serve action.")
	notifyFlag := flagSet.String("notify-url", "", "socket.io hub to announce catalog edits to (serve action).")
	minCreditsFlag := flagSet.Int("min-credits", defaults.Limits.MinCredits, "Minimum credits of a registration.")
	maxCreditsFlag := flagSet.Int("max-credits", defaults.Limits.MaxCredits, "Maximum credits of a registration.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := defaults
	if *settingsFlag != "" {
		settings, err := app.LoadSettings(*settingsFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg = settings
		slog.Debug("Settings file loaded.", "path", *settingsFlag)
	}

	// Explicit flags win over the settings file.
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-dir":
			cfg.DataDir = *dataDirFlag
		case "action":
			cfg.Action = *actionFlag
		case "course":
			cfg.Course = *courseFlag
		case "completed":
			cfg.Completed = catalog.SplitCodes(*completedFlag)
		case "transitive":
			cfg.Transitive = *transitiveFlag
		case "format":
			cfg.ExportFormat = *formatFlag
		case "out":
			cfg.OutputPath = *outFlag
		case "backup-name":
			cfg.BackupName = *backupFlag
		case "port":
			cfg.HTTPPort = *portFlag
		case "notify-url":
			cfg.NotifyURL = *notifyFlag
		case "min-credits":
			cfg.Limits.MinCredits = *minCreditsFlag
		case "max-credits":
			cfg.Limits.MaxCredits = *maxCreditsFlag
		case "log-format":
			cfg.LogFormat = *logFormatFlag
		case "log-level":
			cfg.LogLevel = *logLevelFlag
		}
	})

	switch {
	case *catalogFlag != "":
		cfg.CatalogPath = *catalogFlag
	case *cFlag != "":
		cfg.CatalogPath = *cFlag
	case flagSet.NArg() > 0:
		cfg.CatalogPath = flagSet.Arg(0)
	}
	slog.Debug("Catalog path determined.", "path", cfg.CatalogPath)

	if cfg.CatalogPath == "" {
		slog.Debug("No catalog path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

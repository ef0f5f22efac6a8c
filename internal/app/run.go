package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/ctxlog"
	"github.com/vk/curriculum/internal/dag"
	"github.com/vk/curriculum/internal/export"
	"github.com/vk/curriculum/internal/inmemorycatalog"
)

// ErrNoBackupTarget is returned by the backup action when the catalog has no
// writable data directory.
var ErrNoBackupTarget = errors.New("backup needs a JSON data directory")

// ErrBackupRequired is returned by the restore action when no backup name is
// given; the available backups are listed first.
var ErrBackupRequired = errors.New("restore needs a backup name")

// Run executes the configured action.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "action", a.config.Action)
	a.logger.Debug("App.Run method started.", "action", a.config.Action)

	var err error
	switch a.config.Action {
	case ActionCheck, "":
		err = a.check(ctx)
	case ActionOrder:
		err = a.order(ctx)
	case ActionLayout:
		err = a.layout(ctx)
	case ActionTable:
		err = a.table(ctx)
	case ActionEligibility:
		err = a.eligibility(ctx)
	case ActionExport:
		err = a.exportCatalog(ctx)
	case ActionBackup:
		err = a.backup(ctx)
	case ActionRestore:
		err = a.restore(ctx)
	case ActionServe:
		err = a.serve(ctx)
	default:
		err = fmt.Errorf("unknown action %q", a.config.Action)
	}

	a.logger.Debug("App.Run method finished.", "error", err)
	return err
}

// check reports catalog size and the first cycle, if any. A cyclic catalog
// is an error so the exit status can gate a pipeline.
func (a *App) check(ctx context.Context) error {
	g, err := dag.Build(ctx, a.store)
	if err != nil {
		return err
	}
	nodes := g.Nodes()
	edges := g.Edges()
	fmt.Fprintf(a.outW, "courses: %d\nprerequisite edges: %d\n", len(nodes), len(edges))

	if err := g.DetectCycles(); err != nil {
		fmt.Fprintf(a.outW, "status: CYCLE\n%v\n", err)
		return err
	}
	fmt.Fprintln(a.outW, "status: OK")
	return nil
}

// order prints the study order grouped into levels: every course in a level
// only depends on courses in earlier levels.
func (a *App) order(ctx context.Context) error {
	g, err := dag.Build(ctx, a.store)
	if err != nil {
		return err
	}
	levels, err := g.Levels()
	if err != nil {
		return err
	}
	for i, level := range levels {
		fmt.Fprintf(a.outW, "%d: %s\n", i+1, strings.Join(level, ", "))
	}
	return nil
}

func (a *App) layout(ctx context.Context) error {
	g, err := dag.Build(ctx, a.store)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	return enc.Encode(g.Render())
}

func (a *App) table(ctx context.Context) error {
	w := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COURSE\tPREREQUISITES\tCOUNT")
	for _, row := range catalog.Table(ctx, a.store) {
		fmt.Fprintf(w, "%s\t%s\t%d\n", row.Course, strings.Join(row.Prerequisites, ", "), row.Count)
	}
	return w.Flush()
}

func (a *App) eligibility(ctx context.Context) error {
	g, err := dag.Build(ctx, a.store)
	if err != nil {
		return err
	}
	verdict, err := g.Check(a.config.Course, dag.NewCompleted(a.config.Completed...), a.config.Transitive)
	if err != nil {
		return err
	}
	if verdict.Eligible {
		fmt.Fprintf(a.outW, "%s: eligible\n", a.config.Course)
		return nil
	}
	fmt.Fprintf(a.outW, "%s: not eligible, missing %s\n", a.config.Course, strings.Join(verdict.Missing, ", "))
	return nil
}

func (a *App) exportCatalog(ctx context.Context) error {
	format, err := export.ParseFormat(a.config.ExportFormat)
	if err != nil {
		return err
	}
	snapshot := catalog.Snapshot(ctx, a.store, a.model)

	if a.config.OutputPath == "" {
		if err := export.Write(ctx, a.outW, format, snapshot); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return nil
	}

	f, err := os.Create(a.config.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := writeAndClose(f, func(w io.Writer) error {
		return export.Write(ctx, w, format, snapshot)
	}); err != nil {
		return err
	}
	a.logger.Info("Export written.", "path", a.config.OutputPath, "format", format)
	return nil
}

// writeAndClose runs write against wc and closes it. A failed close is
// reported, since it can mean buffered data never reached the file.
func writeAndClose(wc io.WriteCloser, write func(io.Writer) error) error {
	if err := write(wc); err != nil {
		wc.Close()
		return fmt.Errorf("export failed: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return nil
}

func (a *App) backup(ctx context.Context) error {
	b, ok := a.saver.(Backuper)
	if !ok {
		return ErrNoBackupTarget
	}
	path, err := b.Backup(ctx, catalog.Snapshot(ctx, a.store, a.model), a.config.BackupName)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.outW, path)
	return nil
}

// restore replaces the saved catalog with a backup. The backup is loaded into
// a fresh store first, so a backup that does not validate leaves the data
// directory untouched.
func (a *App) restore(ctx context.Context) error {
	r, ok := a.saver.(Restorer)
	if !ok {
		return ErrNoBackupTarget
	}
	if a.config.BackupName == "" {
		names, err := r.Backups()
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}
		fmt.Fprintln(a.outW, "available backups:")
		for _, name := range names {
			fmt.Fprintf(a.outW, "  %s\n", name)
		}
		return ErrBackupRequired
	}

	m, err := r.ReadBackup(ctx, a.config.BackupName)
	if err != nil {
		return err
	}
	store := inmemorycatalog.New()
	if err := catalog.Populate(ctx, store, m); err != nil {
		return fmt.Errorf("backup %s is not a valid catalog: %w", a.config.BackupName, err)
	}
	if err := a.saver.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to save restored catalog: %w", err)
	}
	a.model, a.store = m, store
	a.logger.Info("Backup restored.", "name", a.config.BackupName)
	fmt.Fprintf(a.outW, "restored %s: %d courses\n", a.config.BackupName, len(store.AllCourseCodes(ctx)))
	return nil
}

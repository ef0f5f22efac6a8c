// Package jsondoc reads and writes a catalog kept as a directory of flat JSON
// documents, one per entity kind. Every read and write covers a whole file;
// there are no partial updates.
package jsondoc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/config"
	"github.com/vk/curriculum/internal/ctxlog"
)

// Loader is the JSON data-directory implementation of config.Loader and
// config.Saver.
type Loader struct {
	dir string
}

// NewLoader creates a loader. Save writes to dir; when dir is empty, the first
// directory passed to Load is used instead.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Dir returns the directory Save writes to.
func (l *Loader) Dir() string {
	return l.dir
}

// Load reads every data directory in paths and merges them into one model.
// Later directories win for courses that appear more than once, prerequisites
// included. Missing files load as empty.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("JSON loader started.", "path_count", len(paths))

	m := config.NewModel()
	for _, dir := range paths {
		if err := l.loadDir(ctx, dir, m); err != nil {
			return nil, err
		}
		if l.dir == "" {
			l.dir = dir
		}
	}

	logger.Debug("JSON loading complete.",
		"courses", len(m.Courses),
		"prerequisites", len(m.Prerequisites),
		"placements", len(m.Placements),
		"exchanges", len(m.Exchanges),
	)
	return m, nil
}

func (l *Loader) loadDir(ctx context.Context, dir string, m *config.Model) error {
	raw := make(map[string]json.RawMessage, len(documentFiles))
	for _, f := range documentFiles {
		data, err := readRaw(filepath.Join(dir, f.name))
		if err != nil {
			return err
		}
		raw[f.key] = data
	}
	doc, err := decodeDocument(raw, func(key string) string {
		return filepath.Join(dir, fileForKey(key))
	})
	if err != nil {
		return err
	}
	mergeDocument(ctx, doc, m)
	return nil
}

// mergeDocument adds every record of doc to m. A course defined again
// replaces its earlier prerequisites; the prerequisite mapping of doc is
// authoritative and inline lists only fill gaps.
func mergeDocument(ctx context.Context, doc *Document, m *config.Model) {
	logger := ctxlog.FromContext(ctx)

	inline := make(map[string][]string)
	for _, rec := range doc.Courses {
		c := rec.toModel()
		m.Courses = append(m.Courses, c)
		delete(m.Prerequisites, c.Code)
		if p := catalog.SplitCodes(rec.Prerequisites); len(p) > 0 {
			inline[c.Code] = p
		}
	}
	for _, rec := range doc.Tracks {
		c := rec.toModel()
		m.Courses = append(m.Courses, c)
		delete(m.Prerequisites, c.Code)
		m.Placements = append(m.Placements, &config.Placement{Course: c.Code, Track: rec.Track, Term: c.Term})
		if p := catalog.SplitCodes(rec.Prerequisites); len(p) > 0 {
			inline[c.Code] = p
		}
	}

	for code, list := range doc.Prerequisites {
		m.Prerequisites[code] = list
	}
	for code, list := range inline {
		if _, ok := doc.Prerequisites[code]; !ok {
			logger.Debug("Using inline prerequisites.", "code", code, "prerequisites", list)
			m.Prerequisites[code] = list
		}
	}

	for _, p := range doc.Profiles {
		m.Profiles = append(m.Profiles, &config.Profile{Code: p.Code, Name: p.Name, Description: p.Description})
	}
	for _, o := range doc.Outcomes {
		m.Outcomes = append(m.Outcomes, &config.Outcome{Code: o.Code, Domain: o.Domain, Description: o.Description})
	}
	for _, e := range doc.Exchanges {
		maxCredits := e.MaxCredits
		if maxCredits == 0 {
			maxCredits = e.Credits
		}
		m.Exchanges = append(m.Exchanges, &config.Exchange{
			Activity:    e.Activity,
			Credits:     e.Credits,
			MaxCredits:  maxCredits,
			Terms:       e.Terms,
			Description: e.Description,
			Kind:        e.Kind,
		})
	}
}

// Save writes every document of m to the loader's directory, creating it
// when needed.
func (l *Loader) Save(ctx context.Context, m *config.Model) error {
	if l.dir == "" {
		return errors.New("jsondoc: no data directory to save to")
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", l.dir, err)
	}

	doc := NewDocument(m)
	for _, f := range documentFiles {
		if err := writeFile(filepath.Join(l.dir, f.name), f.value(doc)); err != nil {
			return err
		}
	}
	ctxlog.FromContext(ctx).Debug("Catalog saved.", "dir", l.dir, "courses", len(m.Courses))
	return nil
}

// Backup writes a combined snapshot of m to backups/<name>.json under the
// loader's directory and returns its path. An empty name is replaced by a
// generated one.
func (l *Loader) Backup(ctx context.Context, m *config.Model, name string) (string, error) {
	if l.dir == "" {
		return "", errors.New("jsondoc: no data directory to back up to")
	}
	if name == "" {
		name = fmt.Sprintf("backup-%s-%s", time.Now().Format("20060102"), uuid.NewString())
	}
	path := filepath.Join(l.dir, "backups", name+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := writeFile(path, NewDocument(m)); err != nil {
		return "", err
	}
	ctxlog.FromContext(ctx).Info("Backup written.", "path", path)
	return path, nil
}

// Backups lists the names of existing backups, sorted.
func (l *Loader) Backups() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.dir, "backups"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name()[:len(e.Name())-len(".json")])
		}
	}
	sort.Strings(names)
	return names, nil
}

// ReadBackup decodes the named backup into a model. Backups written by older
// dashboards, with a nested track mapping or an empty prerequisite list, are
// accepted too.
func (l *Loader) ReadBackup(ctx context.Context, name string) (*config.Model, error) {
	path := filepath.Join(l.dir, "backups", name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup %s: %w", name, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	doc, err := decodeDocument(raw, func(key string) string { return path + ": " + key })
	if err != nil {
		return nil, err
	}

	m := config.NewModel()
	mergeDocument(ctx, doc, m)
	ctxlog.FromContext(ctx).Debug("Backup read.", "path", path, "courses", len(m.Courses))
	return m, nil
}

// readFile decodes path into v. A missing or blank file leaves v untouched.
func readFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// readRaw returns the contents of path, or nil for a missing or blank file.
func readRaw(path string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := readFile(path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// decodeDocument decodes the raw documents keyed by their combined-document
// key. where names a document in error messages.
func decodeDocument(raw map[string]json.RawMessage, where func(key string) string) (*Document, error) {
	doc := &Document{Prerequisites: map[string][]string{}}
	for _, f := range []struct {
		key string
		v   any
	}{
		{keyProfiles, &doc.Profiles},
		{keyOutcomes, &doc.Outcomes},
		{keyCourses, &doc.Courses},
		{keyExchanges, &doc.Exchanges},
	} {
		if len(bytes.TrimSpace(raw[f.key])) == 0 {
			continue
		}
		if err := json.Unmarshal(raw[f.key], f.v); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", where(f.key), err)
		}
	}

	tracks, err := decodeTracks(raw[keyTracks])
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", where(keyTracks), err)
	}
	doc.Tracks = tracks

	prereqs, err := decodePrerequisites(raw[keyPrerequisites])
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", where(keyPrerequisites), err)
	}
	doc.Prerequisites = prereqs
	return doc, nil
}

// decodeTracks accepts both the flat tagged list and the nested
// track -> courses mapping.
func decodeTracks(raw json.RawMessage) ([]trackRecord, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0] != '{' {
		var flat []trackRecord
		if err := json.Unmarshal(raw, &flat); err != nil {
			return nil, err
		}
		return flat, nil
	}

	var nested map[string][]courseRecord
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(nested))
	for name := range nested {
		names = append(names, name)
	}
	sort.Strings(names)
	var flat []trackRecord
	for _, name := range names {
		for _, rec := range nested[name] {
			flat = append(flat, trackRecord{Track: name, courseRecord: rec})
		}
	}
	return flat, nil
}

// decodePrerequisites reads the sparse mapping. A freshly initialised file
// holds an empty list rather than an object.
func decodePrerequisites(raw json.RawMessage) (map[string][]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return map[string][]string{}, nil
	}
	if raw[0] == '[' {
		var list []any
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		if len(list) > 0 {
			return nil, errors.New("expected an object mapping course codes to prerequisites")
		}
		return map[string][]string{}, nil
	}
	prereqs := map[string][]string{}
	if err := json.Unmarshal(raw, &prereqs); err != nil {
		return nil, err
	}
	for code, list := range prereqs {
		if len(list) == 0 {
			delete(prereqs, code)
		}
	}
	return prereqs, nil
}

func writeFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/curriculum/internal/config"
	"github.com/vk/curriculum/internal/ctxlog"
	"github.com/vk/curriculum/internal/fsutil"
	"github.com/vk/curriculum/internal/schema"
)

// Extension is the file extension of HCL catalog files.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL catalog loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found under paths and merges all discovered
// blocks into a single model. Files are processed in lexical order, so a
// course defined twice takes the definition from the later file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindAll(paths, Extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := config.NewModel()
	parser := hclparse.NewParser()
	evalCtx := EvalContext()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.File
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := l.merge(ctx, model, &root); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.",
		"courses", len(model.Courses),
		"prerequisites", len(model.Prerequisites),
		"placements", len(model.Placements),
		"exchanges", len(model.Exchanges),
	)
	return model, nil
}

// merge translates the blocks of one file into the model.
func (l *Loader) merge(ctx context.Context, model *config.Model, root *schema.File) error {
	for _, c := range root.Courses {
		course, err := translateCourse(c)
		if err != nil {
			return err
		}
		addCourse(model, course, c.Prerequisites)
	}
	for _, t := range root.Tracks {
		if t.Name == "" {
			return fmt.Errorf("track block must have a non-empty name")
		}
		for _, c := range t.Courses {
			course, err := translateCourse(c)
			if err != nil {
				return fmt.Errorf("track %q: %w", t.Name, err)
			}
			addCourse(model, course, c.Prerequisites)
			model.Placements = append(model.Placements, &config.Placement{
				Course: course.Code,
				Track:  t.Name,
				Term:   course.Term,
			})
		}
	}
	for _, p := range root.Profiles {
		model.Profiles = append(model.Profiles, translateProfile(p))
	}
	for _, o := range root.Outcomes {
		model.Outcomes = append(model.Outcomes, translateOutcome(o))
	}
	for _, e := range root.Exchanges {
		model.Exchanges = append(model.Exchanges, translateExchange(e))
	}
	ctxlog.FromContext(ctx).Debug("Merged HCL blocks.", "courses", len(root.Courses), "tracks", len(root.Tracks))
	return nil
}

func addCourse(model *config.Model, c *config.Course, prereqs []string) {
	model.Courses = append(model.Courses, c)
	delete(model.Prerequisites, c.Code)
	if len(prereqs) > 0 {
		model.Prerequisites[c.Code] = append([]string{}, prereqs...)
	}
}


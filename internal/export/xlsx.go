package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vk/curriculum/internal/config"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported workbook, in tab order.
const (
	SheetCourses       = "Courses"
	SheetPrerequisites = "Prerequisites"
	SheetTracks        = "Tracks"
	SheetExchanges     = "Exchanges"
)

// XLSX writes a workbook with one sheet per entity kind.
func XLSX(w io.Writer, m *config.Model) error {
	f := excelize.NewFile()
	defer f.Close()

	// The new file starts with a default sheet; reuse it for the first tab.
	if err := f.SetSheetName(f.GetSheetName(0), SheetCourses); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{SheetPrerequisites, SheetTracks, SheetExchanges} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	if err := writeSheet(f, SheetCourses, toAny(courseHeader), anyRows(courseRows(m))); err != nil {
		return err
	}

	var prereqRows [][]any
	codes := make([]string, 0, len(m.Prerequisites))
	for code := range m.Prerequisites {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		list := m.Prerequisites[code]
		prereqRows = append(prereqRows, []any{code, strings.Join(list, ", "), len(list)})
	}
	if err := writeSheet(f, SheetPrerequisites, []any{"course", "prerequisites", "count"}, prereqRows); err != nil {
		return err
	}

	var trackRows [][]any
	for _, p := range m.Placements {
		trackRows = append(trackRows, []any{p.Track, p.Term, p.Course})
	}
	if err := writeSheet(f, SheetTracks, []any{"track", "term", "course"}, trackRows); err != nil {
		return err
	}

	var exchangeRows [][]any
	for _, e := range m.Exchanges {
		exchangeRows = append(exchangeRows, []any{e.Activity, e.Kind, e.Credits, e.MaxCredits, e.Terms, e.Description})
	}
	if err := writeSheet(f, SheetExchanges, []any{"activity", "kind", "credits", "max_credits", "terms", "description"}, exchangeRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toAny(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func anyRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = toAny(row)
	}
	return out
}

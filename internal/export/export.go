// Package export renders a catalog snapshot into the download formats offered
// to curriculum staff: the combined JSON document, a CSV course listing, and
// an XLSX workbook with one sheet per entity kind.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/config"
	"github.com/vk/curriculum/internal/ctxlog"
	"github.com/vk/curriculum/internal/jsondoc"
)

// Format names an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name given on the command line or in a
// query string.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want json, csv or xlsx)", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Write renders m in the given format.
func Write(ctx context.Context, w io.Writer, format Format, m *config.Model) error {
	ctxlog.FromContext(ctx).Debug("Exporting catalog.", "format", format, "courses", len(m.Courses))
	switch format {
	case FormatJSON:
		return JSON(w, m)
	case FormatCSV:
		return CSV(w, m)
	case FormatXLSX:
		return XLSX(w, m)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// JSON writes the combined document, the same shape as a backup.
func JSON(w io.Writer, m *config.Model) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsondoc.NewDocument(m))
}

// courseHeader is shared by the CSV listing and the Courses sheet.
var courseHeader = []string{"code", "name", "credits", "term", "delivery", "outcomes", "prerequisites", "tracks"}

// CSV writes one row per course.
func CSV(w io.Writer, m *config.Model) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(courseHeader); err != nil {
		return err
	}
	for _, row := range courseRows(m) {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PrerequisitesCSV writes the prerequisite table.
func PrerequisitesCSV(w io.Writer, rows []catalog.PrerequisiteRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"course", "prerequisites", "count"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Course, strings.Join(r.Prerequisites, ", "), strconv.Itoa(r.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func courseRows(m *config.Model) [][]string {
	tracks := make(map[string][]string)
	for _, p := range m.Placements {
		tracks[p.Course] = append(tracks[p.Course], p.Track)
	}
	rows := make([][]string, 0, len(m.Courses))
	for _, c := range m.Courses {
		rows = append(rows, []string{
			c.Code,
			c.Name,
			strconv.Itoa(c.Credits),
			strconv.Itoa(c.Term),
			c.Delivery,
			strings.Join(c.Outcomes, ", "),
			strings.Join(m.Prerequisites[c.Code], ", "),
			strings.Join(tracks[c.Code], ", "),
		})
	}
	return rows
}

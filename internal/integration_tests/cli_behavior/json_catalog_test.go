package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/curriculum/internal/integration_tests/harness"
	"github.com/vk/curriculum/internal/jsondoc"
)

// TestCLI_LoadsJSONDataDirectory validates that a directory without HCL files
// is read as the JSON document store, including the nested track mapping and
// inline prerequisite strings.
func TestCLI_LoadsJSONDataDirectory(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		jsondoc.CoursesFile: `[
			{"Kode": "ILK101", "Nama": "Matematika Diskrit", "SKS": 3, "Semester": 1, "Jenis": "Teori"},
			{"Kode": "ILK102", "Nama": "Pemrograman Dasar", "SKS": 3, "Semester": 1, "Jenis": "Praktikum"},
			{"Kode": "ILK201", "Nama": "Algoritma & Struktur Data", "SKS": 3, "Semester": 2, "Prasyarat": "ILK102"}
		]`,
		jsondoc.TracksFile: `{
			"Data Science": [{"Kode": "DS501", "Nama": "Data Mining", "SKS": 3, "Semester": 5}]
		}`,
		jsondoc.PrerequisitesFile: `{"DS501": ["ILK101", "ILK201"]}`,
	}

	// --- Act ---
	result := harness.Run(t, files, "-action", "eligibility", "-course", "DS501", "-completed", "ILK201", "-transitive")

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, "DS501: not eligible, missing ILK101, ILK102\n", result.Output)
}

// TestCLI_BackupWritesIntoDataDirectory validates the backup action against a
// JSON catalog.
func TestCLI_BackupWritesIntoDataDirectory(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		jsondoc.CoursesFile: `[{"Kode": "A", "Nama": "Alpha", "SKS": 2, "Semester": 1}]`,
	}

	result := harness.Run(t, files, "-action", "backup", "-backup-name", "before-term")

	require.NoError(t, result.Err)
	require.Contains(t, result.Output, "before-term.json")
	require.FileExists(t, result.Dir+"/backups/before-term.json")
}

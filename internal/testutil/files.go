package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleCatalogHCL is a small but complete catalog used across packages:
// five compulsory courses over three terms, two tracks, and one of each
// supporting block.
const SampleCatalogHCL = `
course "ILK101" {
  name     = "Algoritma dan Pemrograman"
  credits  = 3
  term     = 1
  delivery = delivery.theory_lab
  outcomes = ["CPL01"]
}

course "ILK102" {
  name     = "Matematika Diskrit"
  credits  = 3
  term     = 1
  delivery = delivery.theory
}

course "ILK201" {
  name          = "Struktur Data"
  credits       = 3
  term          = 2
  prerequisites = ["ILK101"]
}

course "ILK202" {
  name          = "Basis Data"
  credits       = 3
  term          = 2
  prerequisites = ["ILK101", "ILK102"]
}

course "ILK301" {
  name          = "Rekayasa Perangkat Lunak"
  credits       = 3
  term          = 3
  prerequisites = ["ILK201"]
}

track "Data Science" {
  course "DS501" {
    name          = "Machine Learning"
    credits       = 3
    term          = 5
    prerequisites = ["ILK202"]
  }
}

track "Software Engineering" {
  course "SE501" {
    name          = "Arsitektur Perangkat Lunak"
    credits       = 3
    term          = 5
    delivery      = delivery.project
    prerequisites = ["ILK201"]
  }
}

profile "PL1" {
  name        = "Software Engineer"
  description = "Builds and maintains software systems."
}

outcome "CPL01" {
  domain      = "Keterampilan Khusus"
  description = "Designs algorithms for computational problems."
}

exchange "Magang" {
  credits     = 20
  terms       = "5-7"
  kind        = "Magang"
  description = "Industry internship."
}
`

// WriteFiles writes the given files, keyed by relative path, into a fresh
// temporary directory and returns its path.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// SampleCatalogDir writes SampleCatalogHCL into a temporary directory and
// returns its path.
func SampleCatalogDir(t *testing.T) string {
	t.Helper()
	return WriteFiles(t, map[string]string{"catalog/main.hcl": SampleCatalogHCL})
}

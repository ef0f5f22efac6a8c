package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/curriculum/internal/api"
	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/inmemorycatalog"
	"github.com/vk/curriculum/internal/jsondoc"
	"github.com/vk/curriculum/internal/testutil"
)

// TestEditing_EditsSurviveReload edits a JSON catalog over HTTP, then loads
// the data directory from scratch and checks that the edits were persisted.
func TestEditing_EditsSurviveReload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	// --- Arrange ---
	dir := testutil.WriteFiles(t, map[string]string{
		jsondoc.CoursesFile: `[
			{"Kode": "A", "Nama": "Alpha", "SKS": 3, "Semester": 1},
			{"Kode": "B", "Nama": "Beta", "SKS": 3, "Semester": 1},
			{"Kode": "C", "Nama": "Gamma", "SKS": 3, "Semester": 2}
		]`,
		jsondoc.PrerequisitesFile: `[]`,
		jsondoc.ExchangesFile:     `[{"Kegiatan": "Magang", "SKS": 20, "Semester": "5-7", "Deskripsi": "", "Jenis": "Magang"}]`,
	})
	loader := jsondoc.NewLoader(dir)
	model, err := loader.Load(ctx, dir)
	require.NoError(t, err)
	store := inmemorycatalog.New()
	require.NoError(t, catalog.Populate(ctx, store, model))
	router := api.New(ctx, store, model, api.WithSaver(loader)).Router()

	send := func(method, path string, body any) int {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	// --- Act ---
	require.Equal(t, http.StatusOK, send(http.MethodPut, "/api/courses/C/prerequisites", map[string]any{"prerequisites": []string{"A", "B"}}))
	require.Equal(t, http.StatusOK, send(http.MethodDelete, "/api/courses/B", nil))

	// --- Assert ---
	reloaded, err := jsondoc.NewLoader("").Load(ctx, dir)
	require.NoError(t, err)

	var codes []string
	for _, c := range reloaded.Courses {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"A", "C"}, codes)
	assert.Equal(t, map[string][]string{"C": {"A"}}, reloaded.Prerequisites)
	require.Len(t, reloaded.Exchanges, 1, "records the store does not own are saved too")
	assert.Equal(t, "5-7", reloaded.Exchanges[0].Terms)
}

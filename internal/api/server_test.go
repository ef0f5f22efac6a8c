package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/config"
	"github.com/vk/curriculum/internal/inmemorycatalog"
	"github.com/vk/curriculum/internal/notify"
)

type recordingSaver struct {
	mu     sync.Mutex
	models []*config.Model
	err    error
}

func (r *recordingSaver) Save(_ context.Context, m *config.Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.models = append(r.models, m)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(_ context.Context, ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func sampleModel() *config.Model {
	m := config.NewModel()
	m.Courses = []*config.Course{
		{Code: "A", Name: "Alpha", Credits: 3, Term: 1},
		{Code: "B", Name: "Beta", Credits: 3, Term: 1},
		{Code: "C", Name: "Gamma", Credits: 3, Term: 2},
		{Code: "X", Name: "Data Mining", Credits: 3, Term: 5},
	}
	m.Prerequisites = map[string][]string{"C": {"A", "B"}, "X": {"C"}}
	m.Placements = []*config.Placement{{Course: "X", Track: "Data Science", Term: 5}}
	m.Exchanges = []*config.Exchange{{Activity: "Magang", Credits: 20, MaxCredits: 20}}
	return m
}

func newTestServer(t *testing.T, opts ...Option) (*gin.Engine, catalog.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	m := sampleModel()
	store := inmemorycatalog.New()
	require.NoError(t, catalog.Populate(ctx, store, m))
	return New(ctx, store, m, opts...).Router(), store
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decode unwraps the response envelope into data.
func decode(t *testing.T, w *httptest.ResponseRecorder, data any) *ErrorDetail {
	t.Helper()
	var env struct {
		Data  json.RawMessage `json:"data"`
		Error *ErrorDetail    `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.Error
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK\n", w.Body.String())
}

func TestCourses(t *testing.T) {
	r, _ := newTestServer(t)

	t.Run("list", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/courses", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var courses []CourseView
		decode(t, w, &courses)
		require.Len(t, courses, 4)
		assert.Equal(t, "A", courses[0].Code)
		assert.Equal(t, []string{"A", "B"}, courses[2].Prerequisites)
		assert.Equal(t, []string{"Data Science"}, courses[3].Tracks)
	})

	t.Run("filter by term", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/courses?term=1", nil)
		var courses []CourseView
		decode(t, w, &courses)
		assert.Len(t, courses, 2)

		w = do(t, r, http.MethodGet, "/api/courses?term=first", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("detail", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/courses/C", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var detail CourseDetail
		decode(t, w, &detail)
		assert.Equal(t, []string{"X"}, detail.Dependents)
		assert.Equal(t, []string{"A", "B"}, detail.Transitive)
	})

	t.Run("unknown course", func(t *testing.T) {
		w := do(t, r, http.MethodGet, "/api/courses/NOPE", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		e := decode(t, w, nil)
		require.NotNil(t, e)
		assert.Equal(t, ErrorCodeNotFound, e.Code)
	})
}

func TestPrerequisiteTable(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/prerequisites", nil)
	var rows []catalog.PrerequisiteRow
	decode(t, w, &rows)
	assert.Equal(t, []catalog.PrerequisiteRow{
		{Course: "C", Prerequisites: []string{"A", "B"}, Count: 2},
		{Course: "X", Prerequisites: []string{"C"}, Count: 1},
	}, rows)

	w = do(t, r, http.MethodGet, "/api/prerequisites?format=csv", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "course,prerequisites,count\n"))
}

func TestGraphAndOrder(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Nodes []struct{ Code string } `json:"nodes"`
		Edges []catalog.Edge          `json:"edges"`
		Cycle []string                `json:"cycle"`
	}
	decode(t, w, &view)
	assert.Len(t, view.Nodes, 4)
	assert.Len(t, view.Edges, 3)
	assert.Empty(t, view.Cycle)

	w = do(t, r, http.MethodGet, "/api/graph/order", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var order OrderView
	decode(t, w, &order)
	assert.Equal(t, []string{"A", "B", "C", "X"}, order.Order)
	assert.Equal(t, [][]string{{"A", "B"}, {"C"}, {"X"}}, order.Levels)
}

func TestEligibility(t *testing.T) {
	r, _ := newTestServer(t)

	testCases := []struct {
		name     string
		query    string
		status   int
		eligible bool
		missing  []string
	}{
		{"direct met", "course=X&completed=C", http.StatusOK, true, []string{}},
		{"direct unmet", "course=C&completed=A", http.StatusOK, false, []string{"B"}},
		{"transitive unmet", "course=X&completed=C&transitive=true", http.StatusOK, false, []string{"A", "B"}},
		{"no prerequisites", "course=A", http.StatusOK, true, []string{}},
		{"unknown target", "course=ZZ", http.StatusNotFound, false, nil},
		{"missing target", "completed=A", http.StatusBadRequest, false, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodGet, "/api/eligibility?"+tc.query, nil)
			require.Equal(t, tc.status, w.Code)
			if tc.status != http.StatusOK {
				return
			}
			var verdict struct {
				Eligible bool     `json:"eligible"`
				Missing  []string `json:"missing"`
			}
			decode(t, w, &verdict)
			assert.Equal(t, tc.eligible, verdict.Eligible)
			assert.Equal(t, tc.missing, verdict.Missing)
		})
	}
}

func TestTracksAndExchanges(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/tracks", nil)
	var tracks map[string][]PlacementView
	decode(t, w, &tracks)
	assert.Equal(t, map[string][]PlacementView{
		"Data Science": {{Course: "X", Name: "Data Mining", Term: 5}},
	}, tracks)

	w = do(t, r, http.MethodGet, "/api/exchanges", nil)
	var exchanges []config.Exchange
	decode(t, w, &exchanges)
	require.Len(t, exchanges, 1)
	assert.Equal(t, "Magang", exchanges[0].Activity)
}

func TestRegistration(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodPost, "/api/registration", map[string]any{
		"term":      2,
		"completed": []string{"A"},
		"selected":  []string{"C"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		TotalCredits int    `json:"total_credits"`
		Status       string `json:"status"`
		Selected     []struct {
			Code     string   `json:"code"`
			Eligible bool     `json:"eligible"`
			Missing  []string `json:"missing"`
		} `json:"selected"`
	}
	decode(t, w, &res)
	assert.Equal(t, 3, res.TotalCredits)
	assert.Equal(t, "under", res.Status)
	require.Len(t, res.Selected, 1)
	assert.False(t, res.Selected[0].Eligible)
	assert.Equal(t, []string{"B"}, res.Selected[0].Missing)

	w = do(t, r, http.MethodPost, "/api/registration", map[string]any{"term": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEdits(t *testing.T) {
	t.Run("set prerequisites persists and reports cycles", func(t *testing.T) {
		saver := &recordingSaver{}
		r, store := newTestServer(t, WithSaver(saver))

		w := do(t, r, http.MethodPut, "/api/courses/A/prerequisites", PrerequisitesRequest{Prerequisites: []string{"X"}})
		require.Equal(t, http.StatusOK, w.Code)
		var res EditResult
		decode(t, w, &res)
		assert.Equal(t, []string{"X"}, res.Prerequisites)
		assert.Equal(t, []string{"A", "C", "X"}, res.Cycle)
		assert.Equal(t, []string{"X"}, store.PrerequisitesOf(context.Background(), "A"))

		require.Len(t, saver.models, 1)
		assert.Equal(t, []string{"X"}, saver.models[0].Prerequisites["A"])
		assert.Len(t, saver.models[0].Exchanges, 1)

		w = do(t, r, http.MethodGet, "/api/graph/order", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown prerequisite is rejected", func(t *testing.T) {
		saver := &recordingSaver{}
		r, store := newTestServer(t, WithSaver(saver))

		w := do(t, r, http.MethodPut, "/api/courses/C/prerequisites", PrerequisitesRequest{Prerequisites: []string{"Y"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, []string{"A", "B"}, store.PrerequisitesOf(context.Background(), "C"))
		assert.Empty(t, saver.models)
	})

	t.Run("self reference is rejected", func(t *testing.T) {
		r, _ := newTestServer(t)
		w := do(t, r, http.MethodPut, "/api/courses/C/prerequisites", PrerequisitesRequest{Prerequisites: []string{"C"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		r, _ := newTestServer(t)
		req := httptest.NewRequest(http.MethodPut, "/api/courses/C/prerequisites", strings.NewReader("{"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete cascades", func(t *testing.T) {
		saver := &recordingSaver{}
		r, store := newTestServer(t, WithSaver(saver))

		w := do(t, r, http.MethodDelete, "/api/courses/C", nil)
		require.Equal(t, http.StatusOK, w.Code)
		_, present := store.Prerequisites(context.Background())["X"]
		assert.False(t, present)
		require.Len(t, saver.models, 1)

		w = do(t, r, http.MethodDelete, "/api/courses/C", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("save failure", func(t *testing.T) {
		saver := &recordingSaver{err: errors.New("disk full")}
		r, _ := newTestServer(t, WithSaver(saver))

		w := do(t, r, http.MethodDelete, "/api/courses/A", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestEditNotifications(t *testing.T) {
	n := &recordingNotifier{}
	r, _ := newTestServer(t, WithNotifier(n))

	w := do(t, r, http.MethodPut, "/api/courses/C/prerequisites", PrerequisitesRequest{Prerequisites: []string{"B"}})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodPut, "/api/courses/C/prerequisites", PrerequisitesRequest{Prerequisites: []string{"Y"}})
	require.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, r, http.MethodDelete, "/api/courses/X", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, n.events, 2, "failed edits are not announced")
	assert.Equal(t, notify.KindPrerequisitesSet, n.events[0].Kind)
	assert.Equal(t, "C", n.events[0].Course)
	assert.Equal(t, []string{"B"}, n.events[0].Prerequisites)
	assert.Equal(t, notify.KindCourseRemoved, n.events[1].Kind)
	assert.Equal(t, "X", n.events[1].Course)
}

func TestExport(t *testing.T) {
	r, _ := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "X,Data Mining,3,5,,,C,Data Science")

	w = do(t, r, http.MethodGet, "/api/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package inmemorycatalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/curriculum/internal/catalog"
)

// seed adds courses with the given codes, all in term 1 with 3 credits.
func seed(t *testing.T, s catalog.Store, codes ...string) {
	t.Helper()
	for _, code := range codes {
		require.NoError(t, s.UpsertCourse(context.Background(), catalog.Course{Code: code, Name: code, Credits: 3, Term: 1}))
	}
}

func TestUpsertCourse(t *testing.T) {
	ctx := context.Background()

	t.Run("insert and overwrite", func(t *testing.T) {
		s := New()
		require.NoError(t, s.UpsertCourse(ctx, catalog.Course{Code: "ILK101", Name: "Matematika Diskrit", Credits: 3, Term: 1}))
		require.NoError(t, s.UpsertCourse(ctx, catalog.Course{Code: "ILK101", Name: "Discrete Math", Credits: 4, Term: 2}))

		c, ok := s.Course(ctx, "ILK101")
		require.True(t, ok)
		assert.Equal(t, "Discrete Math", c.Name)
		assert.Equal(t, 4, c.Credits)
		assert.Equal(t, []string{"ILK101"}, s.AllCourseCodes(ctx))
	})

	t.Run("overwrite keeps prerequisites", func(t *testing.T) {
		s := New()
		seed(t, s, "A", "B")
		require.NoError(t, s.SetPrerequisites(ctx, "B", []string{"A"}))
		require.NoError(t, s.UpsertCourse(ctx, catalog.Course{Code: "B", Name: "renamed", Credits: 2, Term: 2}))
		assert.Equal(t, []string{"A"}, s.PrerequisitesOf(ctx, "B"))
	})

	t.Run("invalid records are rejected", func(t *testing.T) {
		s := New()
		err := s.UpsertCourse(ctx, catalog.Course{Code: "", Credits: 3, Term: 1})
		assert.ErrorIs(t, err, catalog.ErrInvalidCourse)
		err = s.UpsertCourse(ctx, catalog.Course{Code: "X", Credits: 0, Term: 1})
		assert.ErrorIs(t, err, catalog.ErrInvalidCourse)
		err = s.UpsertCourse(ctx, catalog.Course{Code: "X", Credits: 3, Term: 0})
		assert.ErrorIs(t, err, catalog.ErrInvalidCourse)
		assert.Empty(t, s.AllCourseCodes(ctx))
	})
}

func TestSetPrerequisites(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps declared order and drops duplicates", func(t *testing.T) {
		s := New()
		seed(t, s, "A", "B", "C")
		require.NoError(t, s.SetPrerequisites(ctx, "C", []string{"B", "A", "B"}))
		assert.Equal(t, []string{"B", "A"}, s.PrerequisitesOf(ctx, "C"))
	})

	t.Run("unknown prerequisite leaves catalog unchanged", func(t *testing.T) {
		s := New()
		seed(t, s, "X", "A")
		require.NoError(t, s.SetPrerequisites(ctx, "X", []string{"A"}))

		err := s.SetPrerequisites(ctx, "X", []string{"Y"})
		require.Error(t, err)
		assert.ErrorIs(t, err, catalog.ErrUnknownCourse)

		var unknown *catalog.UnknownCourseError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, []string{"Y"}, unknown.Codes)
		assert.Equal(t, []string{"A"}, s.PrerequisitesOf(ctx, "X"))
	})

	t.Run("unknown target course", func(t *testing.T) {
		s := New()
		seed(t, s, "A")
		err := s.SetPrerequisites(ctx, "nope", []string{"A"})
		assert.ErrorIs(t, err, catalog.ErrUnknownCourse)
		assert.Empty(t, s.Prerequisites(ctx))
	})

	t.Run("empty list deletes the entry", func(t *testing.T) {
		s := New()
		seed(t, s, "A", "B")
		require.NoError(t, s.SetPrerequisites(ctx, "B", []string{"A"}))
		require.NoError(t, s.SetPrerequisites(ctx, "B", nil))

		_, present := s.Prerequisites(ctx)["B"]
		assert.False(t, present)
		assert.NotNil(t, s.PrerequisitesOf(ctx, "B"))
		assert.Empty(t, s.PrerequisitesOf(ctx, "B"))
	})

	t.Run("self reference is rejected", func(t *testing.T) {
		s := New()
		seed(t, s, "A")
		err := s.SetPrerequisites(ctx, "A", []string{"A"})
		assert.ErrorIs(t, err, catalog.ErrSelfPrerequisite)
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		s := New()
		seed(t, s, "A", "B")
		require.NoError(t, s.SetPrerequisites(ctx, "B", []string{"A"}))
		list := s.PrerequisitesOf(ctx, "B")
		list[0] = "mutated"
		assert.Equal(t, []string{"A"}, s.PrerequisitesOf(ctx, "B"))
	})
}

func TestRemoveCourse(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades to dependents and placements", func(t *testing.T) {
		s := New()
		seed(t, s, "A", "B", "C")
		require.NoError(t, s.SetPrerequisites(ctx, "B", []string{"A"}))
		require.NoError(t, s.SetPrerequisites(ctx, "C", []string{"A", "B"}))
		require.NoError(t, s.Place(ctx, catalog.Placement{Course: "A", Track: "Data Science", Term: 5}))

		require.NoError(t, s.RemoveCourse(ctx, "A"))

		assert.Equal(t, []string{"B", "C"}, s.AllCourseCodes(ctx))
		assert.Equal(t, map[string][]string{"C": {"B"}}, s.Prerequisites(ctx))
		assert.Empty(t, s.Placements(ctx))
	})

	t.Run("unknown course", func(t *testing.T) {
		s := New()
		assert.ErrorIs(t, s.RemoveCourse(ctx, "missing"), catalog.ErrUnknownCourse)
	})
}

func TestPlacements(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s, "DS501", "DS601", "SE501")

	require.NoError(t, s.Place(ctx, catalog.Placement{Course: "DS601", Track: "Data Science", Term: 6}))
	require.NoError(t, s.Place(ctx, catalog.Placement{Course: "DS501", Track: "Data Science", Term: 5}))
	require.NoError(t, s.Place(ctx, catalog.Placement{Course: "SE501", Track: "Software Engineering"}))

	assert.Equal(t, []catalog.Placement{
		{Course: "DS501", Track: "Data Science", Term: 5},
		{Course: "DS601", Track: "Data Science", Term: 6},
		{Course: "SE501", Track: "Software Engineering", Term: 1},
	}, s.Placements(ctx))

	assert.ErrorIs(t, s.Place(ctx, catalog.Placement{Course: "XX", Track: "Data Science"}), catalog.ErrUnknownCourse)

	require.NoError(t, s.RemoveTrack(ctx, "Data Science"))
	assert.Len(t, s.Placements(ctx), 1)
}

func TestCoursesOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.UpsertCourse(ctx, catalog.Course{Code: "ILK201", Credits: 3, Term: 2}))
	require.NoError(t, s.UpsertCourse(ctx, catalog.Course{Code: "ILK102", Credits: 3, Term: 1}))
	require.NoError(t, s.UpsertCourse(ctx, catalog.Course{Code: "ILK101", Credits: 3, Term: 1}))

	var codes []string
	for _, c := range s.Courses(ctx) {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"ILK101", "ILK102", "ILK201"}, codes)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s, "base")

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := string(rune('a'+i%26)) + string(rune('a'+i/26))
			_ = s.UpsertCourse(ctx, catalog.Course{Code: code, Credits: 1, Term: 1})
			_ = s.SetPrerequisites(ctx, code, []string{"base"})
			_ = s.PrerequisitesOf(ctx, code)
			_ = s.AllCourseCodes(ctx)
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.AllCourseCodes(ctx), 51)
	assert.Len(t, s.Prerequisites(ctx), 50)
}

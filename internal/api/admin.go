package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/notify"
)

// CourseRequest is the body of a course upsert. The code comes from the path.
type CourseRequest struct {
	Name     string   `json:"name" binding:"required"`
	Credits  int      `json:"credits"`
	Term     int      `json:"term"`
	Delivery string   `json:"delivery"`
	Outcomes []string `json:"outcomes"`
}

// PlacementRequest is the optional body of a track placement. A zero term
// places the course in its own term.
type PlacementRequest struct {
	Term int `json:"term"`
}

func (s *Server) upsertCourse(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrorCodeValidationFailed, "invalid course data", err.Error())
		return
	}
	delivery, err := catalog.ParseDeliveryType(req.Delivery)
	if err != nil {
		handleError(c, fmt.Errorf("%w: %v", catalog.ErrInvalidCourse, err))
		return
	}
	course := catalog.Course{
		Code:     code,
		Name:     req.Name,
		Credits:  req.Credits,
		Term:     req.Term,
		Delivery: delivery,
		Outcomes: catalog.SplitCodes(strings.Join(req.Outcomes, ",")),
	}

	s.editMu.Lock()
	defer s.editMu.Unlock()

	_, existed := s.store.Course(ctx, code)
	if err := s.store.UpsertCourse(ctx, course); err != nil {
		handleError(c, err)
		return
	}
	if err := s.persist(ctx); err != nil {
		handleError(c, fmt.Errorf("failed to save catalog: %w", err))
		return
	}
	s.notifier.Notify(ctx, notify.Event{Kind: notify.KindCourseSaved, Course: code, Time: time.Now()})

	stored, _ := s.store.Course(ctx, code)
	view := s.courseView(c, stored, s.tracksByCourse(c))
	if existed {
		respondOK(c, view)
		return
	}
	c.JSON(http.StatusCreated, Response{Data: view, Timestamp: time.Now()})
}

func (s *Server) placeCourse(c *gin.Context) {
	ctx := c.Request.Context()
	track, code := c.Param("track"), c.Param("code")

	var req PlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, ErrorCodeValidationFailed, "invalid placement data", err.Error())
		return
	}
	if req.Term < 0 {
		fail(c, http.StatusBadRequest, ErrorCodeValidationFailed, "term must not be negative", req.Term)
		return
	}

	s.editMu.Lock()
	defer s.editMu.Unlock()

	if err := s.store.Place(ctx, catalog.Placement{Course: code, Track: track, Term: req.Term}); err != nil {
		handleError(c, err)
		return
	}
	if err := s.persist(ctx); err != nil {
		handleError(c, fmt.Errorf("failed to save catalog: %w", err))
		return
	}
	s.notifier.Notify(ctx, notify.Event{Kind: notify.KindCoursePlaced, Course: code, Track: track, Time: time.Now()})

	view := PlacementView{Course: code}
	for _, p := range s.store.Placements(ctx) {
		if p.Course == code && p.Track == track {
			course, _ := s.store.Course(ctx, code)
			view = PlacementView{Course: code, Name: course.Name, Term: p.Term}
		}
	}
	respondOK(c, view)
}

func (s *Server) removeTrack(c *gin.Context) {
	ctx := c.Request.Context()
	track := c.Param("track")

	s.editMu.Lock()
	defer s.editMu.Unlock()

	if _, ok := catalog.ByTrack(s.store.Placements(ctx))[track]; !ok {
		fail(c, http.StatusNotFound, ErrorCodeNotFound, fmt.Sprintf("unknown track %q", track), nil)
		return
	}
	if err := s.store.RemoveTrack(ctx, track); err != nil {
		handleError(c, err)
		return
	}
	if err := s.persist(ctx); err != nil {
		handleError(c, fmt.Errorf("failed to save catalog: %w", err))
		return
	}
	s.notifier.Notify(ctx, notify.Event{Kind: notify.KindTrackRemoved, Track: track, Time: time.Now()})
	respondOK(c, gin.H{"removed": track})
}

func (s *Server) summary(c *gin.Context) {
	respondOK(c, catalog.Summarize(c.Request.Context(), s.store, s.base))
}

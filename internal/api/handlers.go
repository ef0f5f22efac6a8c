package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/config"
	"github.com/vk/curriculum/internal/dag"
	"github.com/vk/curriculum/internal/export"
	"github.com/vk/curriculum/internal/notify"
	"github.com/vk/curriculum/internal/registration"
)

// CourseView is a course with its prerequisites and track placements.
type CourseView struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Credits       int      `json:"credits"`
	Term          int      `json:"term"`
	Delivery      string   `json:"delivery"`
	Outcomes      []string `json:"outcomes"`
	Prerequisites []string `json:"prerequisites"`
	Tracks        []string `json:"tracks"`
}

// CourseDetail adds graph neighbourhood information to a course.
type CourseDetail struct {
	CourseView
	Dependents []string `json:"dependents"`
	Transitive []string `json:"transitive_prerequisites"`
}

// PlacementView is one course of a track.
type PlacementView struct {
	Course string `json:"course"`
	Name   string `json:"name"`
	Term   int    `json:"term"`
}

// OrderView is a study order together with its term-like levels.
type OrderView struct {
	Order  []string   `json:"order"`
	Levels [][]string `json:"levels"`
}

// PrerequisitesRequest is the body of a prerequisite edit.
type PrerequisitesRequest struct {
	Prerequisites []string `json:"prerequisites"`
}

// EditResult reports the state after an edit.
type EditResult struct {
	Course        string   `json:"course"`
	Prerequisites []string `json:"prerequisites"`
	// Cycle is non-empty when the edited catalog contains a cycle.
	Cycle []string `json:"cycle"`
}

func (s *Server) health(c *gin.Context) {
	s.logger.Debug("Health check endpoint hit.", "remote_addr", c.Request.RemoteAddr, "path", c.Request.URL.Path)
	c.String(http.StatusOK, "OK\n")
}

func (s *Server) courseView(c *gin.Context, course catalog.Course, tracks map[string][]string) CourseView {
	outcomes := course.Outcomes
	if outcomes == nil {
		outcomes = []string{}
	}
	onTracks := tracks[course.Code]
	if onTracks == nil {
		onTracks = []string{}
	}
	return CourseView{
		Code:          course.Code,
		Name:          course.Name,
		Credits:       course.Credits,
		Term:          course.Term,
		Delivery:      string(course.Delivery),
		Outcomes:      outcomes,
		Prerequisites: s.store.PrerequisitesOf(c.Request.Context(), course.Code),
		Tracks:        onTracks,
	}
}

func (s *Server) tracksByCourse(c *gin.Context) map[string][]string {
	out := make(map[string][]string)
	for _, p := range s.store.Placements(c.Request.Context()) {
		out[p.Course] = append(out[p.Course], p.Track)
	}
	return out
}

func (s *Server) listCourses(c *gin.Context) {
	term := 0
	if raw := c.Query("term"); raw != "" {
		t, err := strconv.Atoi(raw)
		if err != nil || t < 1 {
			fail(c, http.StatusBadRequest, ErrorCodeValidationFailed, "term must be a positive integer", raw)
			return
		}
		term = t
	}

	tracks := s.tracksByCourse(c)
	views := []CourseView{}
	for _, course := range s.store.Courses(c.Request.Context()) {
		if term != 0 && course.Term != term {
			continue
		}
		views = append(views, s.courseView(c, course, tracks))
	}
	respondOK(c, views)
}

func (s *Server) getCourse(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")
	course, found := s.store.Course(ctx, code)
	if !found {
		handleError(c, &catalog.UnknownCourseError{Codes: []string{code}})
		return
	}

	g, err := dag.Build(ctx, s.store)
	if err != nil {
		handleError(c, err)
		return
	}
	dependents, err := g.Dependents(code)
	if err != nil {
		handleError(c, err)
		return
	}
	transitive, err := g.TransitivePrerequisites(code)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, CourseDetail{
		CourseView: s.courseView(c, course, s.tracksByCourse(c)),
		Dependents: dependents,
		Transitive: transitive,
	})
}

func (s *Server) setPrerequisites(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	var req PrerequisitesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrorCodeValidationFailed, "invalid prerequisite data", err.Error())
		return
	}

	s.editMu.Lock()
	defer s.editMu.Unlock()

	if err := s.store.SetPrerequisites(ctx, code, req.Prerequisites); err != nil {
		handleError(c, err)
		return
	}
	if err := s.persist(ctx); err != nil {
		handleError(c, fmt.Errorf("failed to save catalog: %w", err))
		return
	}

	g, err := dag.Build(ctx, s.store)
	if err != nil {
		handleError(c, err)
		return
	}
	cycle := g.DetectCycle()
	if cycle == nil {
		cycle = []string{}
	} else {
		s.logger.Warn("Prerequisite edit introduced a cycle.", "course", code, "cycle", cycle)
	}
	prereqs := s.store.PrerequisitesOf(ctx, code)
	s.notifier.Notify(ctx, notify.Event{Kind: notify.KindPrerequisitesSet, Course: code, Prerequisites: prereqs, Time: time.Now()})
	respondOK(c, EditResult{Course: code, Prerequisites: prereqs, Cycle: cycle})
}

func (s *Server) removeCourse(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	s.editMu.Lock()
	defer s.editMu.Unlock()

	if err := s.store.RemoveCourse(ctx, code); err != nil {
		handleError(c, err)
		return
	}
	if err := s.persist(ctx); err != nil {
		handleError(c, fmt.Errorf("failed to save catalog: %w", err))
		return
	}
	s.notifier.Notify(ctx, notify.Event{Kind: notify.KindCourseRemoved, Course: code, Time: time.Now()})
	respondOK(c, gin.H{"removed": code})
}

func (s *Server) listPrerequisites(c *gin.Context) {
	rows := catalog.Table(c.Request.Context(), s.store)
	if c.Query("format") == string(export.FormatCSV) {
		c.Header("Content-Type", export.FormatCSV.ContentType())
		c.Status(http.StatusOK)
		if err := export.PrerequisitesCSV(c.Writer, rows); err != nil {
			s.logger.Error("Failed to write prerequisite CSV.", "error", err)
		}
		return
	}
	respondOK(c, rows)
}

func (s *Server) graph(c *gin.Context) {
	g, err := dag.Build(c.Request.Context(), s.store)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, g.Render())
}

func (s *Server) order(c *gin.Context) {
	g, err := dag.Build(c.Request.Context(), s.store)
	if err != nil {
		handleError(c, err)
		return
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		handleError(c, err)
		return
	}
	levels, err := g.Levels()
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, OrderView{Order: order, Levels: levels})
}

func (s *Server) eligibility(c *gin.Context) {
	target := c.Query("course")
	if target == "" {
		fail(c, http.StatusBadRequest, ErrorCodeValidationFailed, "query parameter 'course' is required", nil)
		return
	}
	transitive, _ := strconv.ParseBool(c.DefaultQuery("transitive", "false"))
	completed := dag.NewCompleted(catalog.SplitCodes(c.Query("completed"))...)

	g, err := dag.Build(c.Request.Context(), s.store)
	if err != nil {
		handleError(c, err)
		return
	}
	verdict, err := g.Check(target, completed, transitive)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, verdict)
}

func (s *Server) tracks(c *gin.Context) {
	ctx := c.Request.Context()
	out := make(map[string][]PlacementView)
	for track, list := range catalog.ByTrack(s.store.Placements(ctx)) {
		views := make([]PlacementView, 0, len(list))
		for _, p := range list {
			course, _ := s.store.Course(ctx, p.Course)
			views = append(views, PlacementView{Course: p.Course, Name: course.Name, Term: p.Term})
		}
		out[track] = views
	}
	respondOK(c, out)
}

func (s *Server) exchanges(c *gin.Context) {
	exchanges := s.base.Exchanges
	if exchanges == nil {
		exchanges = []*config.Exchange{}
	}
	respondOK(c, exchanges)
}

func (s *Server) exportCatalog(c *gin.Context) {
	ctx := c.Request.Context()
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error(), nil)
		return
	}
	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=curriculum.%s", format))
	c.Status(http.StatusOK)
	if err := export.Write(ctx, c.Writer, format, catalog.Snapshot(ctx, s.store, s.base)); err != nil {
		s.logger.Error("Export failed.", "format", format, "error", err)
	}
}

func (s *Server) simulateRegistration(c *gin.Context) {
	var req registration.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrorCodeValidationFailed, "invalid registration request", err.Error())
		return
	}
	sim := registration.New(s.store, s.base.Exchanges, s.limits)
	res, err := sim.Simulate(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respondOK(c, res)
}

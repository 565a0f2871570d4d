// Package server exposes today's journal state over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/brimstone/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Tiliavir/worktimer/internal/journal"
	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/render"
	"github.com/Tiliavir/worktimer/internal/summary"
)

var log = logger.New()

// Server is a read-only status server. Requests are served one at a time;
// writes made by other processes are not coordinated.
type Server struct {
	mu      sync.Mutex
	journal *journal.Journal
	render  *render.Renderer
	echo    *echo.Echo
}

// New returns a server reading from j. Periods missing from j's store are
// served as empty timesheets with targetHours and are never created.
func New(j *journal.Journal, targetHours int) *Server {
	ro := *j
	ro.Store = readOnlyStore{Store: j.Store, targetHours: targetHours}
	ro.Picker = nil
	s := &Server{journal: &ro, render: render.Plain(nil)}
	s.setupEcho()
	return s
}

var errReadOnly = errors.New("status server does not write timesheets")

type readOnlyStore struct {
	journal.Store
	targetHours int
}

func (r readOnlyStore) LoadTimesheet(key string) (*model.Timesheet, error) {
	keys, err := r.Store.Keys()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(keys, key) {
		return model.NewTimesheet(r.targetHours), nil
	}
	return r.Store.LoadTimesheet(key)
}

func (r readOnlyStore) SaveTimesheet(string, *model.Timesheet) error {
	return errReadOnly
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			req, res := c.Request(), c.Response()
			log.Debug("http request",
				log.Field("method", req.Method),
				log.Field("uri", req.RequestURI),
				log.Field("status", res.Status),
				log.Field("duration", time.Since(start).String()),
			)
			return err
		}
	})
	e.Use(middleware.Recover())

	e.GET("/", s.handleText)
	e.GET("/health", s.handleHealth)
	api := e.Group("/api")
	api.GET("/today", s.handleToday)
	api.GET("/summary", s.handleSummary)

	s.echo = e
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start listens on addr until the server is shut down.
func (s *Server) Start(addr string) error {
	log.Info("serving journal", log.Field("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type blockResponse struct {
	Start     string  `json:"start"`
	Stop      string  `json:"stop,omitempty"`
	Minutes   int     `json:"minutes"`
	Lunch     int     `json:"lunch"`
	Comment   *string `json:"comment,omitempty"`
	ProjectID *int    `json:"project_id,omitempty"`
}

type estimateResponse struct {
	End          string `json:"end"`
	LunchMinutes int    `json:"lunch_minutes"`
	Message      string `json:"message"`
}

type todayResponse struct {
	Date           string            `json:"date"`
	WorkedMinutes  int               `json:"worked_minutes"`
	LunchMinutes   int               `json:"lunch_minutes"`
	TimeOffMinutes int               `json:"time_off_minutes"`
	FlexMinutes    int               `json:"flex_minutes"`
	Blocks         []blockResponse   `json:"blocks"`
	Estimate       *estimateResponse `json:"estimate,omitempty"`
}

type summaryResponse struct {
	Month            string  `json:"month"`
	WorkedMinutes    int     `json:"worked_minutes"`
	WorkedHours      float64 `json:"worked_hours"`
	ExpectedHours    float64 `json:"expected_hours"`
	TargetHours      int     `json:"target_hours"`
	MonthlyFlex      int     `json:"monthly_flex"`
	CurrentWeekFlex  int     `json:"current_week_flex"`
	PreviousWeekFlex int     `json:"previous_week_flex"`
	TotalFlex        int     `json:"total_flex"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) today(ctx context.Context) (*model.Day, todayResponse, error) {
	day, err := s.journal.Today(ctx)
	if err != nil {
		return nil, todayResponse{}, err
	}
	resp := todayResponse{
		Date:           day.Date,
		WorkedMinutes:  day.WorkedTime(),
		LunchMinutes:   day.Lunch(),
		TimeOffMinutes: day.TimeOffMinutes,
		FlexMinutes:    day.FlexMinutes,
		Blocks:         []blockResponse{},
	}
	for _, b := range day.WorkBlocks {
		if !b.Started() {
			continue
		}
		br := blockResponse{
			Start:     b.Start.Short(),
			Lunch:     b.Lunch,
			Comment:   b.Comment,
			ProjectID: b.ProjectID,
		}
		if b.Stopped() {
			br.Stop = b.Stop.Short()
			br.Minutes = b.WorkedTime()
		}
		resp.Blocks = append(resp.Blocks, br)
	}
	if est, ok := s.journal.EstimateEnd(day); ok {
		resp.Estimate = &estimateResponse{
			End:          est.End.Short(),
			LunchMinutes: est.LunchMinutes,
			Message:      est.String(),
		}
	}
	return day, resp, nil
}

func (s *Server) handleToday(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, resp, err := s.today(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSummary(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := summary.Load(c.Request().Context(), s.journal, s.journal.Settings.QuotaMinutes())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summaryResponse{
		Month:            o.Month.Label,
		WorkedMinutes:    o.Month.WorkedMinutes,
		WorkedHours:      o.Month.WorkedHours(),
		ExpectedHours:    o.Month.ExpectedHours,
		TargetHours:      o.Month.TargetHours,
		MonthlyFlex:      o.Month.FlexMinutes,
		CurrentWeekFlex:  o.CurrentWeekFlex,
		PreviousWeekFlex: o.PreviousWeekFlex,
		TotalFlex:        o.TotalFlex,
	})
}

func (s *Server) handleText(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := c.Request().Context()
	o, err := summary.Load(ctx, s.journal, s.journal.Settings.QuotaMinutes())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	day, resp, err := s.today(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if s.journal.Projects != nil {
		projects, err := s.journal.Projects.LoadProjects()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		s.render.SetProjects(projects)
	}
	text := s.render.Banner(o.Month) + "\n\n" + s.render.Day(day)
	if resp.Estimate != nil {
		text += "\n\n" + resp.Estimate.Message
	}
	return c.String(http.StatusOK, text+"\n")
}

// Package api serves the extractor over HTTP. Loads and exports run as
// background jobs that clients poll and cancel.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/samcharles93/ffaudio/internal/logger"
	"github.com/samcharles93/ffaudio/internal/session"
	"github.com/samcharles93/ffaudio/pkg/fastfile"
)

type Server struct {
	session *session.Session
	jobs    *JobStore
	log     logger.Logger
	clock   func() time.Time
	wg      sync.WaitGroup
}

// NewServer takes ownership of sess; only job workers touch it.
func NewServer(sess *session.Session, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		session: sess,
		jobs:    NewJobStore(),
		log:     log,
		clock:   time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/profiles", s.handleListProfiles)
	e.POST("/v1/loads", s.handleLoad)
	e.POST("/v1/archives", s.handleLoadArchive)
	e.GET("/v1/sounds", s.handleListSounds)
	e.POST("/v1/exports", s.handleExport)
	e.GET("/v1/jobs/:id", s.handleGetJob)
	e.POST("/v1/jobs/:id/cancel", s.handleCancelJob)
	e.DELETE("/v1/session", s.handleClearSession)
}

// Close cancels the running job, waits for it and releases the session.
func (s *Server) Close(ctx context.Context) error {
	if id := s.jobs.CancelActive(); id != "" {
		s.log.Info("cancelling running job", "job", id)
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.session.Close(ctx)
	return nil
}

func (s *Server) handleListProfiles(c *echo.Context) error {
	profiles := fastfile.Profiles()
	out := ProfileList{Object: "list", Data: make([]ProfileObject, 0, len(profiles))}
	for _, p := range profiles {
		obj := ProfileObject{
			Name:    p.Name,
			Magic:   p.Magic.String(),
			Version: fmt.Sprintf("0x%X", p.Version),
			Codec:   p.Codec(),
		}
		if p.Alias != nil {
			obj.Alias = p.Alias.Name
		}
		out.Data = append(out.Data, obj)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleLoad(c *echo.Context) error {
	path, err := decodePath(c)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	return s.startJob(c, JobLoad, func(ctx context.Context, id string) (func(*Job), error) {
		container, err := s.session.Load(ctx, path, s.progress(ctx, id))
		if err != nil {
			s.jobs.Publish("", nil)
			return nil, err
		}
		s.jobs.Publish(s.session.Profile(), s.session.Sounds())
		result := &LoadResult{
			Path:    container.Path,
			Profile: container.Profile.Name,
			Codec:   container.Profile.Codec(),
			Sounds:  len(container.Sounds),
		}
		for _, sc := range container.Sidecars {
			result.Sidecars = append(result.Sidecars, sc.Key())
		}
		return func(j *Job) { j.Load = result }, nil
	})
}

func (s *Server) handleLoadArchive(c *echo.Context) error {
	path, err := decodePath(c)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	return s.startJob(c, JobArchive, func(ctx context.Context, id string) (func(*Job), error) {
		sounds, err := s.session.LoadArchive(ctx, path)
		if err != nil {
			s.jobs.Publish("", nil)
			return nil, err
		}
		s.jobs.Publish(s.session.Profile(), sounds)
		result := &LoadResult{Path: path, Profile: s.session.Profile(), Sounds: len(sounds)}
		return func(j *Job) { j.Load = result }, nil
	})
}

func (s *Server) handleListSounds(c *echo.Context) error {
	profile, sounds := s.jobs.Loaded()
	sounds = fastfile.FilterSounds(sounds, c.QueryParam("filter"))
	if sounds == nil {
		sounds = []fastfile.Sound{}
	}
	return c.JSON(http.StatusOK, SoundList{Object: "list", Profile: profile, Data: sounds})
}

func (s *Server) handleExport(c *echo.Context) error {
	req, err := decodeOptionalJSON[ExportRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if profile, _ := s.jobs.Loaded(); profile == "" {
		return writeBadRequest(c, session.ErrNothingLoaded.Error())
	}
	return s.startJob(c, JobExport, func(ctx context.Context, id string) (func(*Job), error) {
		sounds := s.session.Select(req.Filter, req.Names)
		report, err := s.session.Export(ctx, sounds, s.progress(ctx, id))
		if err != nil {
			return nil, err
		}
		if report.Cancelled {
			return func(j *Job) { j.Export = report }, fastfile.ErrCancelled
		}
		return func(j *Job) { j.Export = report }, nil
	})
}

func (s *Server) handleGetJob(c *echo.Context) error {
	job, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "job not found")
	}
	return c.JSON(http.StatusOK, job)
}

func (s *Server) handleCancelJob(c *echo.Context) error {
	job, ok := s.jobs.Cancel(c.Param("id"))
	if !ok {
		return writeNotFound(c, "job not found")
	}
	if job.Status != JobRunning {
		return writeConflict(c, fmt.Sprintf("job is already %s", job.Status))
	}
	return c.JSON(http.StatusAccepted, job)
}

// handleClearSession runs synchronously but still claims the worker slot.
func (s *Server) handleClearSession(c *echo.Context) error {
	job, err := s.jobs.Start(JobClear, nil, s.clock())
	if err != nil {
		return writeConflict(c, err.Error())
	}
	s.session.Clear(logger.WithContext(c.Request().Context(), s.log))
	s.jobs.Publish("", nil)
	s.jobs.Finish(job.ID, JobCompleted, s.clock(), nil)
	return c.JSON(http.StatusOK, ClearResponse{Object: "session", Cleared: true})
}

type jobFunc func(ctx context.Context, id string) (func(*Job), error)

// startJob claims the worker slot and runs fn in the background. The job
// context outlives the request.
func (s *Server) startJob(c *echo.Context, kind JobKind, fn jobFunc) error {
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), s.log))
	job, err := s.jobs.Start(kind, cancel, s.clock())
	if err != nil {
		cancel()
		return writeError(c, statusFor(err), "conflict_error", err.Error(), "", "")
	}

	log := s.log.With("job", job.ID, "kind", string(kind))
	log.Info("job started")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		update, err := fn(logger.WithContext(ctx, log), job.ID)
		switch {
		case err == nil:
			s.jobs.Finish(job.ID, JobCompleted, s.clock(), update)
			log.Info("job completed")
		case isCancelled(err):
			s.jobs.Finish(job.ID, JobCancelled, s.clock(), update)
			log.Info("job cancelled")
		default:
			s.jobs.Finish(job.ID, JobFailed, s.clock(), func(j *Job) { j.Error = jobError(err) })
			log.Error("job failed", "error", err)
		}
	}()
	return c.JSON(http.StatusAccepted, job)
}

func (s *Server) progress(ctx context.Context, id string) fastfile.ProgressFunc {
	return func(p float64) bool {
		s.jobs.SetProgress(id, p)
		return ctx.Err() == nil
	}
}

func decodePath(c *echo.Context) (string, error) {
	req, err := decodeJSON[LoadRequest](c.Request().Body)
	if err != nil {
		return "", newInvalidRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return "", newInvalidRequest("path is required")
	}
	return path, nil
}

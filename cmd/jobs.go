package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/bulk"
	"github.com/sells-group/company-profiler/internal/model"
	"github.com/sells-group/company-profiler/internal/pipeline"
	"github.com/sells-group/company-profiler/internal/report"
	"github.com/sells-group/company-profiler/internal/store"
)

// errEmptySession is returned when a session report is requested before any
// profile was added.
var errEmptySession = eris.New("session has no items")

// errBadUpload marks an upload that could not be decoded into rows.
var errBadUpload = eris.New("bad upload")

// profileRunner produces one profile per input.
type profileRunner interface {
	Run(ctx context.Context, in model.Input) (*pipeline.Outcome, error)
}

// jobService runs profile requests, persists them as jobs and writes their
// reports. It is shared by the CLI commands and the HTTP API.
type jobService struct {
	runner    profileRunner
	bulk      *bulk.Runner
	store     store.Store
	renderer  report.Renderer
	exportDir string
	now       func() time.Time
}

func newJobService(env *pipelineEnv) *jobService {
	return &jobService{
		runner:    env.Pipeline,
		bulk:      env.Bulk,
		store:     env.Store,
		renderer:  env.Renderer,
		exportDir: env.ExportDir,
		now:       time.Now,
	}
}

// scrape runs one input and stores the result as a job with its report.
func (s *jobService) scrape(ctx context.Context, kind model.JobKind, in model.Input) (*model.Job, *pipeline.Outcome, error) {
	out, err := s.runner.Run(ctx, in)
	if err != nil {
		return nil, nil, err
	}

	job := &model.Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    model.JobStatusDone,
		Input:     in,
		Profiles:  []model.Profile{out.Profile},
		CreatedAt: s.now().UTC(),
	}
	if err := s.finish(ctx, job); err != nil {
		return nil, nil, err
	}
	return job, out, nil
}

// bulkUpload parses an uploaded file and runs every row.
func (s *jobService) bulkUpload(ctx context.Context, name string, data []byte, mode model.Mode) (*model.Job, error) {
	rows, err := bulk.ParseRows(name, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadUpload, err)
	}

	res, err := s.bulk.Run(ctx, rows, mode)
	if err != nil {
		return nil, err
	}

	job := &model.Job{
		ID:         uuid.New().String(),
		Kind:       model.JobKindBulk,
		Status:     model.JobStatusDone,
		Input:      model.Input{Mode: mode},
		SourceFile: name,
		Profiles:   res.Profiles,
		Errors:     res.Errors,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.finish(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) finish(ctx context.Context, job *model.Job) error {
	path, err := report.WriteFile(s.renderer, s.exportDir, report.FileName("job", job.ID), job.Profiles)
	if err != nil {
		return err
	}
	job.ReportPath = path

	if _, err := s.store.SaveJob(ctx, job); err != nil {
		return eris.Wrap(err, "save job")
	}
	zap.L().Info("job saved",
		zap.String("job_id", job.ID),
		zap.String("kind", string(job.Kind)),
		zap.Int("profiles", len(job.Profiles)),
		zap.Int("errors", len(job.Errors)),
	)
	return nil
}

// sessionAdd runs in and appends the profile to a session. The session is
// checked before the pipeline runs.
func (s *jobService) sessionAdd(ctx context.Context, sessionID string, in model.Input) (int, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return 0, err
	}
	out, err := s.runner.Run(ctx, in)
	if err != nil {
		return 0, err
	}
	return s.store.AppendToSession(ctx, sessionID, out.Profile)
}

// sessionReport writes the report of every profile in a session.
func (s *jobService) sessionReport(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if len(sess.Items) == 0 {
		return "", errEmptySession
	}
	return report.WriteFile(s.renderer, s.exportDir, report.FileName("session", sess.ID), sess.Items)
}

// isNotFound reports whether err means the addressed resource is missing.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, errEmptySession)
}

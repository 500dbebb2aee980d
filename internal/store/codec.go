package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/company-profiler/internal/model"
)

// jobRow is the column form of a job shared by both drivers.
type jobRow struct {
	input    []byte
	profiles []byte
	errors   []byte
}

// prepareJob assigns an ID and timestamp when missing and encodes the JSON
// columns.
func prepareJob(job *model.Job) (jobRow, error) {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = model.JobStatusDone
	}
	if job.Profiles == nil {
		job.Profiles = []model.Profile{}
	}

	var row jobRow
	var err error
	if row.input, err = json.Marshal(job.Input); err != nil {
		return row, eris.Wrap(err, "store: marshal input")
	}
	if row.profiles, err = json.Marshal(job.Profiles); err != nil {
		return row, eris.Wrap(err, "store: marshal profiles")
	}
	if row.errors, err = json.Marshal(job.Errors); err != nil {
		return row, eris.Wrap(err, "store: marshal errors")
	}
	return row, nil
}

type scannable interface {
	Scan(dest ...any) error
}

// scanJob reads id, kind, status, input, source_file, profiles, errors,
// report_path, created_at.
func scanJob(row scannable) (*model.Job, error) {
	var (
		job                     model.Job
		kind, status            string
		input, profiles, errors []byte
	)
	if err := row.Scan(&job.ID, &kind, &status, &input, &job.SourceFile, &profiles, &errors, &job.ReportPath, &job.CreatedAt); err != nil {
		return nil, err
	}
	job.Kind = model.JobKind(kind)
	job.Status = model.JobStatus(status)
	if err := json.Unmarshal(input, &job.Input); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal input")
	}
	if err := json.Unmarshal(profiles, &job.Profiles); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal profiles")
	}
	if len(errors) > 0 {
		if err := json.Unmarshal(errors, &job.Errors); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal errors")
		}
	}
	job.CreatedAt = job.CreatedAt.UTC()
	return &job, nil
}

func decodeItems(raw []byte) ([]model.Profile, error) {
	items := []model.Profile{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal session items")
	}
	return items, nil
}

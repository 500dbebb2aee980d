package model

import (
	"strings"
	"time"
)

// Input describes one profile request. URL wins over CompanyName when both
// are set.
type Input struct {
	URL         string `json:"url,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Geography   string `json:"geography,omitempty"`
	Mode        Mode   `json:"mode"`
}

// HasURL reports whether the input carries a direct site URL.
func (in Input) HasURL() bool {
	return strings.TrimSpace(in.URL) != ""
}

// HasName reports whether the input carries a company name.
func (in Input) HasName() bool {
	return strings.TrimSpace(in.CompanyName) != ""
}

// JobKind describes how a job was submitted.
type JobKind string

const (
	JobKindURL  JobKind = "url"
	JobKindName JobKind = "name"
	JobKindBulk JobKind = "bulk"
)

// JobStatus is the terminal state recorded with a job.
type JobStatus string

const (
	JobStatusDone   JobStatus = "DONE"
	JobStatusFailed JobStatus = "FAILED"
)

// Job is a persisted extraction record.
type Job struct {
	ID         string    `json:"job_id"`
	Kind       JobKind   `json:"kind"`
	Status     JobStatus `json:"status"`
	Input      Input     `json:"input"`
	SourceFile string    `json:"source_file,omitempty"`
	Profiles   []Profile `json:"profiles"`
	Errors     []string  `json:"errors,omitempty"`
	ReportPath string    `json:"excel_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Session accumulates profiles across several requests so they can be
// downloaded as one report.
type Session struct {
	ID        string    `json:"session_id"`
	Items     []Profile `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

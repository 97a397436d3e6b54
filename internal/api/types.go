package api

import (
	"github.com/samcharles93/ffaudio/internal/export"
	"github.com/samcharles93/ffaudio/pkg/fastfile"
)

type JobKind string

const (
	JobLoad    JobKind = "load"
	JobArchive JobKind = "archive"
	JobExport  JobKind = "export"
	JobClear   JobKind = "clear"
)

type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Job is the polled state of one background operation.
type Job struct {
	ID          string         `json:"id"`
	Object      string         `json:"object"`
	Kind        JobKind        `json:"kind"`
	Status      JobStatus      `json:"status"`
	Progress    float64        `json:"progress"`
	CreatedAt   int64          `json:"created_at"`
	CompletedAt *int64         `json:"completed_at,omitempty"`
	Error       *ResponseError `json:"error,omitempty"`
	Load        *LoadResult    `json:"load,omitempty"`
	Export      *export.Report `json:"export,omitempty"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

type LoadRequest struct {
	Path string `json:"path"`
}

type ExportRequest struct {
	Filter string   `json:"filter,omitempty"`
	Names  []string `json:"names,omitempty"`
}

type LoadResult struct {
	Path     string   `json:"path"`
	Profile  string   `json:"profile"`
	Codec    string   `json:"codec,omitempty"`
	Sidecars []string `json:"sidecars,omitempty"`
	Sounds   int      `json:"sounds"`
}

type ProfileObject struct {
	Name    string `json:"name"`
	Magic   string `json:"magic"`
	Version string `json:"version"`
	Codec   string `json:"codec"`
	Alias   string `json:"alias,omitempty"`
}

type ProfileList struct {
	Object string          `json:"object"`
	Data   []ProfileObject `json:"data"`
}

type SoundList struct {
	Object  string           `json:"object"`
	Profile string           `json:"profile"`
	Data    []fastfile.Sound `json:"data"`
}

type ClearResponse struct {
	Object  string `json:"object"`
	Cleared bool   `json:"cleared"`
}

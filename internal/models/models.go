package models

import "time"

// TaskStatus represents the current status of a scan task
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusProcessing TaskStatus = "processing"
	StatusComplete   TaskStatus = "complete"
	StatusFailed     TaskStatus = "failed"
)

// Task represents one message queued for scanning
type Task struct {
	ID           string
	FilePath     string
	Status       TaskStatus
	Error        error
	FileSize     int64
	StartTime    time.Time
	CompleteTime time.Time
}

// TaskResult is the outcome of scanning and profiling one message
type TaskResult struct {
	Task            Task
	Scan            *ScanResult
	Recommendations []Recommendation
	Summary         Summary
}

// StatusUpdate represents a message from a worker about task status
type StatusUpdate struct {
	WorkerID        int
	TaskID          string
	Status          TaskStatus
	Message         string
	Error           error
	Result          *TaskResult
	ProcessingStats ProcessingStats
}

// ProcessingStats tracks statistics for a single processing operation
type ProcessingStats struct {
	StartTime time.Time
	EndTime   time.Time
	FileSize  int64
	Duration  time.Duration
	WorkerID  int
}

// Stats tracks overall job statistics
type Stats struct {
	Discovered       int
	Processed        int
	Successful       int
	Failed           int
	StartTime        time.Time
	EndTime          time.Time
	TotalFileSize    int64
	AverageSpeed     float64 // bytes per second
	EstimatedWork    time.Duration
	CriticalFindings int
	EstimatedOCRCost float64 // dollars, at the configured PDF mode
	Workers          int
}

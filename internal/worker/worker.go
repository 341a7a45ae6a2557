package worker

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"emlscout/internal/models"
	"emlscout/internal/recommend"
	"emlscout/internal/report"
	"emlscout/internal/scanner"
)

// Options configures what a worker produces for each message
type Options struct {
	Preferences *recommend.Preferences
	ReportDir   string // write a PDF report per message when set
	RichReports bool
}

// Worker scans messages taken from the task channel and builds recommendations
type Worker struct {
	id         int
	taskChan   <-chan models.Task
	statusChan chan<- models.StatusUpdate
	scanner    *scanner.Scanner
	engine     *recommend.Engine
	opts       Options
	logger     logrus.FieldLogger
	done       chan struct{}
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// NewWorker creates a new worker
func NewWorker(id int, taskChan <-chan models.Task, statusChan chan<- models.StatusUpdate,
	sc *scanner.Scanner, engine *recommend.Engine, opts Options, logger logrus.FieldLogger) *Worker {
	return &Worker{
		id:         id,
		taskChan:   taskChan,
		statusChan: statusChan,
		scanner:    sc,
		engine:     engine,
		opts:       opts,
		logger:     logger.WithField("worker", id),
		done:       make(chan struct{}),
		stopChan:   make(chan struct{}),
	}
}

// Start begins the worker's processing loop
func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)

		for {
			select {
			case <-ctx.Done():
				return

			case <-w.stopChan:
				w.logger.Debug("Worker stopping on request")
				return

			case task, ok := <-w.taskChan:
				if !ok {
					return
				}
				w.processTask(ctx, task)
			}
		}
	}()
}

// Done returns a channel that is closed when the worker completes
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Stop requests the worker to stop
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

// processTask scans one message and reports the outcome
func (w *Worker) processTask(ctx context.Context, task models.Task) {
	stats := models.ProcessingStats{
		StartTime: time.Now(),
		FileSize:  task.FileSize,
		WorkerID:  w.id,
	}

	w.sendStatus(ctx, models.StatusUpdate{
		TaskID:  task.ID,
		Status:  models.StatusProcessing,
		Message: "Started scanning",
	})

	result, err := w.analyze(ctx, task)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	update := models.StatusUpdate{
		TaskID:          task.ID,
		ProcessingStats: stats,
	}
	if err != nil {
		w.logger.WithError(err).WithField("file", task.FilePath).Warn("Scan failed")
		update.Status = models.StatusFailed
		update.Message = "Scan failed"
		update.Error = err
	} else {
		update.Status = models.StatusComplete
		update.Message = fmt.Sprintf("Scan complete in %s", stats.Duration.Round(time.Millisecond))
		update.Result = result
	}
	w.sendStatus(ctx, update)
}

// analyze runs the scanner and the recommendation engine for one task
func (w *Worker) analyze(ctx context.Context, task models.Task) (result *models.TaskResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Errorf("Panic while scanning %s: %v\n%s", task.FilePath, r, debug.Stack())
			result = nil
			err = fmt.Errorf("panic while scanning: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scan, err := w.scanner.Scan(task.FilePath)
	if err != nil {
		return nil, err
	}

	recs := w.engine.Generate(scan, w.opts.Preferences)
	result = &models.TaskResult{
		Task:            task,
		Scan:            scan,
		Recommendations: recs,
		Summary:         recommend.Summarize(recs),
	}

	if w.opts.ReportDir != "" {
		if err := w.writeReport(ctx, scan, recs); err != nil {
			// The analysis itself succeeded; a missing report is only logged.
			w.logger.WithError(err).WithField("file", task.FilePath).Warn("Failed to write report")
		}
	}

	return result, nil
}

// writeReport renders the per-message PDF report
func (w *Worker) writeReport(ctx context.Context, scan *models.ScanResult, recs []models.Recommendation) error {
	path, err := report.OutputPath(w.opts.ReportDir, scan.Source, ".pdf")
	if err != nil {
		return err
	}

	renderer, err := report.New(scan, recs).WritePDF(ctx, path, w.opts.RichReports)
	if err != nil {
		return err
	}

	w.logger.WithFields(logrus.Fields{
		"report":   filepath.Base(path),
		"renderer": renderer,
	}).Debug("Report written")
	return nil
}

// sendStatus delivers a status update to the manager unless the context ends first
func (w *Worker) sendStatus(ctx context.Context, update models.StatusUpdate) {
	update.WorkerID = w.id

	select {
	case w.statusChan <- update:
	case <-ctx.Done():
		w.logger.WithField("task", update.TaskID).Debug("Context cancelled, status update dropped")
	}
}

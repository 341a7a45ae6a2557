package manager

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"emlscout/internal/config"
	"emlscout/internal/models"
	"emlscout/internal/recommend"
	"emlscout/internal/scanner"
	"emlscout/internal/worker"
)

const (
	// Time between progress updates when verbose mode is on
	verboseUpdateInterval = 5 * time.Second

	// Maximum number of failed files listed after a run
	maxFailedListed = 10
)

// Option customizes a Manager
type Option func(*Manager)

// WithProgressWriter sends the progress bar to w instead of stderr
func WithProgressWriter(w io.Writer) Option {
	return func(m *Manager) {
		m.progressOut = w
	}
}

// Manager handles task discovery and distribution
type Manager struct {
	config        *config.Config
	scanner       *scanner.Scanner
	engine        *recommend.Engine
	preferences   *recommend.Preferences
	logger        logrus.FieldLogger
	workers       []*worker.Worker
	taskChan      chan models.Task
	statusChan    chan models.StatusUpdate
	statsLock     sync.RWMutex
	stats         models.Stats
	cancel        context.CancelFunc
	progressBar   *progressbar.ProgressBar
	progressOut   io.Writer
	tasksByID     map[string]models.Task
	tasksByIDLock sync.RWMutex
	failedTasks   []models.Task
	results       []*models.TaskResult
}

// NewManager creates a new manager instance
func NewManager(cfg *config.Config, sc *scanner.Scanner, engine *recommend.Engine,
	prefs *recommend.Preferences, logger logrus.FieldLogger, opts ...Option) *Manager {
	m := &Manager{
		config:      cfg,
		scanner:     sc,
		engine:      engine,
		preferences: prefs,
		logger:      logger,
		taskChan:    make(chan models.Task, 100),
		statusChan:  make(chan models.StatusUpdate, 100),
		tasksByID:   make(map[string]models.Task),
		progressOut: os.Stderr,
		stats: models.Stats{
			StartTime: time.Now(),
			Workers:   cfg.WorkerCount,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start discovers messages under the configured source and scans them all.
// It returns once every discovered message has been processed or ctx ends.
func (m *Manager) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	defer cancel()

	files, err := m.discoverFiles()
	if err != nil {
		return fmt.Errorf("file discovery failed: %w", err)
	}

	var totalSize int64
	for _, fileInfo := range files {
		totalSize += fileInfo.Size
	}

	m.statsLock.Lock()
	m.stats.StartTime = time.Now()
	m.stats.Discovered = len(files)
	m.stats.TotalFileSize = totalSize
	m.statsLock.Unlock()

	m.logger.WithFields(logrus.Fields{
		"files": len(files),
		"size":  humanize.IBytes(uint64(totalSize)),
	}).Info("Discovered EML files")

	m.process(ctx, files)

	m.statsLock.Lock()
	m.stats.EndTime = time.Now()
	m.statsLock.Unlock()

	m.reportFailures()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}
	return nil
}

// Stop gracefully shuts down processing
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Stats returns current statistics
func (m *Manager) Stats() models.Stats {
	m.statsLock.RLock()
	defer m.statsLock.RUnlock()
	return m.stats
}

// Results returns the successful task results ordered by file path
func (m *Manager) Results() []*models.TaskResult {
	m.statsLock.RLock()
	defer m.statsLock.RUnlock()

	results := make([]*models.TaskResult, len(m.results))
	copy(results, m.results)
	sort.Slice(results, func(i, j int) bool {
		return results[i].Task.FilePath < results[j].Task.FilePath
	})
	return results
}

// FailedTasks returns the tasks that could not be scanned
func (m *Manager) FailedTasks() []models.Task {
	m.statsLock.RLock()
	defer m.statsLock.RUnlock()

	failed := make([]models.Task, len(m.failedTasks))
	copy(failed, m.failedTasks)
	return failed
}

// FileInfo represents a discovered file
type FileInfo struct {
	Path string
	Size int64
}

// discoverFiles finds all EML files in the source directory. A source that is
// a single file is returned as is, whatever its extension.
func (m *Manager) discoverFiles() ([]FileInfo, error) {
	root := m.config.SourceDir

	rootInfo, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !rootInfo.IsDir() {
		return []FileInfo{{Path: root, Size: rootInfo.Size()}}, nil
	}

	var files []FileInfo
	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories if not recursive
		if info.IsDir() && !m.config.RecursiveScan && path != root {
			return filepath.SkipDir
		}

		if !info.IsDir() && strings.ToLower(filepath.Ext(path)) == ".eml" {
			files = append(files, FileInfo{
				Path: path,
				Size: info.Size(),
			})
		}

		return nil
	}

	if err := filepath.Walk(root, walkFn); err != nil {
		return nil, err
	}

	return files, nil
}

// process fans the files out to the worker pool and waits for every status update
func (m *Manager) process(ctx context.Context, files []FileInfo) {
	m.progressBar = progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(m.progressOut),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	m.initWorkers(ctx)

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		m.monitorStatus()
	}()

	if m.config.Verbose {
		go m.verboseProgressUpdates(ctx)
	}

	go m.enqueue(ctx, files)

	for _, w := range m.workers {
		<-w.Done()
	}
	close(m.statusChan)
	<-monitorDone
}

// enqueue turns discovered files into tasks and closes the task channel
func (m *Manager) enqueue(ctx context.Context, files []FileInfo) {
	defer close(m.taskChan)

	for _, fileInfo := range files {
		task := models.Task{
			ID:        uuid.NewString(),
			FilePath:  fileInfo.Path,
			Status:    models.StatusPending,
			FileSize:  fileInfo.Size,
			StartTime: time.Now(),
		}

		m.tasksByIDLock.Lock()
		m.tasksByID[task.ID] = task
		m.tasksByIDLock.Unlock()

		select {
		case m.taskChan <- task:
		case <-ctx.Done():
			return
		}
	}
}

// initWorkers creates and starts the worker pool
func (m *Manager) initWorkers(ctx context.Context) {
	opts := worker.Options{
		Preferences: m.preferences,
		ReportDir:   m.config.ReportDir,
		RichReports: m.config.RichReports,
	}

	m.workers = make([]*worker.Worker, m.config.WorkerCount)
	for i := 0; i < m.config.WorkerCount; i++ {
		m.workers[i] = worker.NewWorker(i, m.taskChan, m.statusChan, m.scanner, m.engine, opts, m.logger)
		m.workers[i].Start(ctx)
	}
}

// monitorStatus processes status updates from workers until the channel closes
func (m *Manager) monitorStatus() {
	for update := range m.statusChan {
		m.handleStatusUpdate(update)
	}
}

// handleStatusUpdate processes a worker status update
func (m *Manager) handleStatusUpdate(update models.StatusUpdate) {
	m.tasksByIDLock.Lock()
	task, exists := m.tasksByID[update.TaskID]
	if exists {
		task.Status = update.Status
		task.Error = update.Error
		if update.Status == models.StatusComplete || update.Status == models.StatusFailed {
			task.CompleteTime = time.Now()
		}
		m.tasksByID[update.TaskID] = task
	}
	m.tasksByIDLock.Unlock()

	m.statsLock.Lock()
	defer m.statsLock.Unlock()

	switch update.Status {
	case models.StatusComplete:
		m.stats.Processed++
		m.stats.Successful++
		_ = m.progressBar.Add(1)

		// Update speed calculation
		duration := update.ProcessingStats.Duration.Seconds()
		if duration > 0 && update.ProcessingStats.FileSize > 0 {
			speed := float64(update.ProcessingStats.FileSize) / duration
			// Weighted average to smooth out the speed
			if m.stats.AverageSpeed == 0 {
				m.stats.AverageSpeed = speed
			} else {
				m.stats.AverageSpeed = (m.stats.AverageSpeed * 0.7) + (speed * 0.3)
			}
		}

		if result := update.Result; result != nil {
			result.Task = task
			m.results = append(m.results, result)
			if result.Scan != nil {
				m.stats.EstimatedWork += result.Scan.EstimatedTime
				m.stats.EstimatedOCRCost += recommend.EstimateOCRCost(result.Scan.Attachments, m.ocrMode())
			}
			m.stats.CriticalFindings += result.Summary.ByLevel[models.LevelCritical]
		}

	case models.StatusFailed:
		m.stats.Processed++
		m.stats.Failed++
		_ = m.progressBar.Add(1)

		if exists {
			m.failedTasks = append(m.failedTasks, task)
		}
		m.logger.WithError(update.Error).WithField("task", update.TaskID).Debug("Task failed")
	}
}

// ocrMode is the PDF mode the batch cost is priced at
func (m *Manager) ocrMode() recommend.OCRMode {
	if m.preferences != nil && m.preferences.PDFMode != "" {
		return m.preferences.PDFMode
	}
	return recommend.OCRModeAll
}

// reportFailures logs the files that could not be scanned
func (m *Manager) reportFailures() {
	failed := m.FailedTasks()
	if len(failed) == 0 {
		return
	}

	m.logger.Warnf("Failed to scan %d files", len(failed))
	for i, task := range failed {
		if i == maxFailedListed {
			m.logger.Warnf("  ... and %d more", len(failed)-maxFailedListed)
			break
		}
		m.logger.Warnf("  - %s: %v", task.FilePath, task.Error)
	}
}

// verboseProgressUpdates shows detailed progress in verbose mode
func (m *Manager) verboseProgressUpdates(ctx context.Context) {
	ticker := time.NewTicker(verboseUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			stats := m.Stats()
			if stats.Discovered == 0 {
				continue
			}

			remainingFiles := stats.Discovered - stats.Processed
			var estRemaining time.Duration
			if stats.AverageSpeed > 0 && stats.Processed > 0 {
				avgFileSize := float64(stats.TotalFileSize) / float64(stats.Discovered)
				estRemaining = time.Duration(float64(remainingFiles)*avgFileSize/stats.AverageSpeed) * time.Second
			}

			m.logger.WithFields(logrus.Fields{
				"processed": stats.Processed,
				"total":     stats.Discovered,
				"percent":   fmt.Sprintf("%.1f", float64(stats.Processed)/float64(stats.Discovered)*100),
				"workers":   stats.Workers,
				"speed":     humanize.IBytes(uint64(stats.AverageSpeed)) + "/s",
				"eta":       estRemaining.Round(time.Second).String(),
				"critical":  stats.CriticalFindings,
			}).Info("Status")
		}
	}
}

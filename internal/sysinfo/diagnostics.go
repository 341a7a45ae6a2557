package sysinfo

import (
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// ProcessInfo holds information about the process
type ProcessInfo struct {
	PID             int
	Goroutines      int
	Memory          MemStats
	CPUCores        int
	AvailableMemory string
	GoVersion       string
	StartTime       time.Time
	ElapsedTime     time.Duration
}

// MemStats holds memory statistics information
type MemStats struct {
	Alloc     string
	Sys       string
	NumGC     uint32
	HeapInUse string
}

// GetProcessInfo returns diagnostic information about the running process
func GetProcessInfo(startTime time.Time) ProcessInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return ProcessInfo{
		PID:        os.Getpid(),
		Goroutines: runtime.NumGoroutine(),
		Memory: MemStats{
			Alloc:     humanize.IBytes(m.Alloc),
			Sys:       humanize.IBytes(m.Sys),
			NumGC:     m.NumGC,
			HeapInUse: humanize.IBytes(m.HeapInuse),
		},
		CPUCores:        runtime.NumCPU(),
		AvailableMemory: humanize.IBytes(AvailableMemory()),
		GoVersion:       runtime.Version(),
		StartTime:       startTime,
		ElapsedTime:     time.Since(startTime),
	}
}

// LogDiagnostics logs detailed diagnostic information
func LogDiagnostics(logger logrus.FieldLogger, startTime time.Time) {
	info := GetProcessInfo(startTime)

	logger.WithFields(logrus.Fields{
		"pid":              info.PID,
		"go_version":       info.GoVersion,
		"cpu_cores":        info.CPUCores,
		"available_memory": info.AvailableMemory,
		"goroutines":       info.Goroutines,
		"runtime":          info.ElapsedTime.Round(time.Millisecond).String(),
		"heap_in_use":      info.Memory.HeapInUse,
		"alloc":            info.Memory.Alloc,
		"sys":              info.Memory.Sys,
		"gc_cycles":        info.Memory.NumGC,
	}).Info("Diagnostic report")
}

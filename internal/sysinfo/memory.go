package sysinfo

import (
	"github.com/shirou/gopsutil/v4/mem"
)

// DefaultAvailableMemory is assumed when the platform does not report it
const DefaultAvailableMemory uint64 = 4 * 1024 * 1024 * 1024

var virtualMemory = mem.VirtualMemory

// AvailableMemory returns the memory available to new processes in bytes
func AvailableMemory() uint64 {
	vm, err := virtualMemory()
	if err != nil || vm == nil || vm.Available == 0 {
		return DefaultAvailableMemory
	}
	return vm.Available
}
